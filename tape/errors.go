package tape

import "fmt"

type TapeError struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
	Turn    int    `json:"turn,omitempty"`
}

func (e *TapeError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("tape error(turn=%d reason=%s): %s", e.Turn, e.Reason, e.Message)
}
