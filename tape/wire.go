package tape

type WireTape struct {
	TapeVersion int         `json:"tapeVersion"`
	Seed        int64       `json:"seed"`
	Events      []WireEvent `json:"events"`
}

type WireEvent struct {
	Type        string `json:"type"`
	Seq         uint64 `json:"seq"`
	EnvelopeB64 string `json:"envelopeB64"`
}

func ToWireTape(t *Tape) *WireTape {
	if t == nil {
		return nil
	}
	out := &WireTape{
		TapeVersion: t.TapeVersion,
		Seed:        t.Seed,
		Events:      make([]WireEvent, 0, len(t.Events)),
	}
	for _, e := range t.Events {
		out.Events = append(out.Events, WireEvent{
			Type:        e.Type,
			Seq:         e.Seq,
			EnvelopeB64: e.EnvelopeB64,
		})
	}
	return out
}
