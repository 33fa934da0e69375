package tape

import (
	"brewsim/brew"

	"google.golang.org/protobuf/types/known/structpb"
)

// MatchSpec fully describes a reproducible match.
type MatchSpec struct {
	Seed    int64      `json:"seed"`
	Turns   int        `json:"turns,omitempty"`
	Seats   []SeatSpec `json:"seats"`
	Rules   []string   `json:"rules,omitempty"` // empty means the base rule set
	Fortune bool       `json:"fortune,omitempty"`
	Scripts []string   `json:"scripts,omitempty"` // Lua rule files
}

type SeatSpec struct {
	Name    string `json:"name,omitempty"`
	Profile string `json:"profile"`
}

type Tape struct {
	TapeVersion int     `json:"tape_version"`
	Seed        int64   `json:"seed"`
	Events      []Event `json:"events"`

	Result brew.Result `json:"-"`
}

type Event struct {
	Type        string           `json:"type"`
	Seq         uint64           `json:"seq"`
	Value       *structpb.Struct `json:"value,omitempty"`
	EnvelopeB64 string           `json:"envelope_b64,omitempty"`
}

// Types returns the event types in order.
func (t *Tape) Types() []string {
	out := make([]string, 0, len(t.Events))
	for _, e := range t.Events {
		out = append(out, e.Type)
	}
	return out
}
