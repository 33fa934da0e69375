package tape

import (
	"encoding/base64"
	"fmt"

	"brewsim/brew"
	"brewsim/brew/strategy"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const Version = 1

// Generate plays the match spec describes and records every event. The
// same spec always yields the same tape.
func Generate(spec MatchSpec, reg *strategy.Registry) (*Tape, error) {
	if spec.Seed == 0 {
		return nil, &TapeError{Reason: "missing_seed", Message: "a tape needs a fixed non-zero seed"}
	}

	b := newTapeBuilder()
	m, err := NewMatch(spec, reg, nil, b.addEvent)
	if err != nil {
		return nil, err
	}
	defer m.Close()
	b.game = m.Game

	res, err := m.Run()
	if err != nil {
		return nil, err
	}
	if b.err != nil {
		return nil, b.err
	}
	b.addResult(res)
	if b.err != nil {
		return nil, b.err
	}

	return &Tape{
		TapeVersion: Version,
		Seed:        spec.Seed,
		Events:      b.events,
		Result:      res,
	}, nil
}

type tapeBuilder struct {
	game   *brew.Game
	seq    uint64
	events []Event
	err    error
}

func newTapeBuilder() *tapeBuilder {
	return &tapeBuilder{events: make([]Event, 0, 512)}
}

func (b *tapeBuilder) addEvent(ev brew.Event) {
	fields := eventFields(ev)
	if ev.Kind == brew.EventTurnEnd && b.game != nil {
		fields["state"] = snapshotFields(b.game.Snapshot())
	}
	b.push(ev.Kind.String(), ev.Turn, fields)
}

func (b *tapeBuilder) addResult(res brew.Result) {
	b.push("result", res.Turns, resultFields(res))
}

func (b *tapeBuilder) push(typ string, turn int, fields map[string]any) {
	if b.err != nil {
		return
	}
	b.seq++
	fields["type"] = typ
	fields["seq"] = b.seq
	fields["turn"] = turn
	env, err := structpb.NewStruct(fields)
	if err != nil {
		b.err = &TapeError{Reason: "encode_failed", Message: err.Error(), Turn: turn}
		return
	}
	bin, err := proto.MarshalOptions{Deterministic: true}.Marshal(env)
	if err != nil {
		b.err = &TapeError{Reason: "encode_failed", Message: err.Error(), Turn: turn}
		return
	}
	b.events = append(b.events, Event{
		Type:        typ,
		Seq:         b.seq,
		Value:       env,
		EnvelopeB64: base64.StdEncoding.EncodeToString(bin),
	})
}

// DecodeEnvelope parses an EnvelopeB64 value back into its struct.
func DecodeEnvelope(b64 string) (*structpb.Struct, error) {
	bin, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	out := &structpb.Struct{}
	if err := proto.Unmarshal(bin, out); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return out, nil
}
