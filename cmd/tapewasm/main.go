//go:build js && wasm

package main

import (
	"encoding/json"
	"errors"
	"syscall/js"

	"brewsim/brew/strategy"
	"brewsim/tape"
)

type generateRequest struct {
	Spec     tape.MatchSpec     `json:"spec"`
	Profiles []strategy.Profile `json:"profiles,omitempty"`
}

type generateResponse struct {
	OK    bool            `json:"ok"`
	Tape  *tape.WireTape  `json:"tape,omitempty"`
	Error *tape.TapeError `json:"error,omitempty"`
}

func main() {
	js.Global().Set("__brewsimTape", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 1 {
			return mustJSON(generateResponse{
				Error: &tape.TapeError{Reason: "invalid_request", Message: "missing request payload"},
			})
		}
		return mustJSON(handleGenerate(args[0].String()))
	}))

	select {}
}

func handleGenerate(raw string) generateResponse {
	var req generateRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return generateResponse{Error: &tape.TapeError{Reason: "invalid_json", Message: err.Error()}}
	}
	// browsers cannot read rule files
	if len(req.Spec.Scripts) > 0 {
		return generateResponse{Error: &tape.TapeError{Reason: "scripts_unsupported", Message: "Lua rule files are not available in the browser"}}
	}

	reg := strategy.NewRegistry()
	if len(req.Profiles) > 0 {
		raw, _ := json.Marshal(req.Profiles)
		if err := reg.LoadFromJSON(raw); err != nil {
			return generateResponse{Error: &tape.TapeError{Reason: "invalid_profiles", Message: err.Error()}}
		}
	}

	tp, err := tape.Generate(req.Spec, reg)
	if err != nil {
		var tapeErr *tape.TapeError
		if errors.As(err, &tapeErr) {
			return generateResponse{Error: tapeErr}
		}
		return generateResponse{Error: &tape.TapeError{Reason: "tape_generation_failed", Message: err.Error()}}
	}
	return generateResponse{OK: true, Tape: tape.ToWireTape(tp)}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		fallback := generateResponse{Error: &tape.TapeError{Reason: "marshal_failed", Message: err.Error()}}
		b2, _ := json.Marshal(fallback)
		return string(b2)
	}
	return string(b)
}
