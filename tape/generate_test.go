package tape

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"brewsim/brew/strategy"
)

func baseMatchSpec() MatchSpec {
	return MatchSpec{
		Seed: 42,
		Seats: []SeatSpec{
			{Name: "YOU", Profile: "prefer_blue"},
			{Name: "P1", Profile: "simple"},
			{Name: "P2", Profile: "prefer_red"},
		},
		Fortune: true,
	}
}

func TestGenerate_IsDeterministic(t *testing.T) {
	spec := baseMatchSpec()

	tapeA, err := Generate(spec, strategy.NewRegistry())
	if err != nil {
		t.Fatalf("Generate A failed: %v", err)
	}
	tapeB, err := Generate(spec, strategy.NewRegistry())
	if err != nil {
		t.Fatalf("Generate B failed: %v", err)
	}

	if !reflect.DeepEqual(ToWireTape(tapeA), ToWireTape(tapeB)) {
		t.Fatalf("expected deterministic tape for the same MatchSpec")
	}
	if len(tapeA.Events) == 0 {
		t.Fatalf("expected non-empty tape")
	}

	counts := map[string]int{}
	types := tapeA.Types()
	for i, e := range tapeA.Events {
		if e.Seq != uint64(i+1) {
			t.Fatalf("event %d has seq %d", i, e.Seq)
		}
		if types[i] != e.Type {
			t.Fatalf("Types()[%d] = %s, want %s", i, types[i], e.Type)
		}
		counts[e.Type]++
	}
	if counts["turnStart"] != 9 || counts["fortuneCard"] != 9 || counts["matchEnd"] != 1 || counts["result"] != 1 {
		t.Fatalf("unexpected event counts: %v", counts)
	}
	if counts["cauldronFinished"] != 27 {
		t.Fatalf("expected one cauldronFinished per player and turn, got %d", counts["cauldronFinished"])
	}
	if last := tapeA.Events[len(tapeA.Events)-1]; last.Type != "result" {
		t.Fatalf("last event: %s", last.Type)
	}
}

func TestGenerate_EnvelopeRoundTrip(t *testing.T) {
	tp, err := Generate(baseMatchSpec(), nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for _, e := range tp.Events[:20] {
		got, err := DecodeEnvelope(e.EnvelopeB64)
		if err != nil {
			t.Fatalf("DecodeEnvelope: %v", err)
		}
		if got.Fields["type"].GetStringValue() != e.Type {
			t.Fatalf("decoded type %q, want %q", got.Fields["type"].GetStringValue(), e.Type)
		}
		if uint64(got.Fields["seq"].GetNumberValue()) != e.Seq {
			t.Fatalf("decoded seq mismatch at %d", e.Seq)
		}
	}
}

func TestGenerate_DifferentSeedsDiffer(t *testing.T) {
	a, err := Generate(baseMatchSpec(), nil)
	if err != nil {
		t.Fatalf("Generate A failed: %v", err)
	}
	spec := baseMatchSpec()
	spec.Seed = 43
	b, err := Generate(spec, nil)
	if err != nil {
		t.Fatalf("Generate B failed: %v", err)
	}
	if reflect.DeepEqual(ToWireTape(a), ToWireTape(b)) {
		t.Fatalf("different seeds produced identical tapes")
	}
}

func TestGenerate_ReturnsTapeError(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*MatchSpec)
		reason string
	}{
		{"zero seed", func(s *MatchSpec) { s.Seed = 0 }, "missing_seed"},
		{"no seats", func(s *MatchSpec) { s.Seats = nil }, "invalid_seats"},
		{"unknown profile", func(s *MatchSpec) { s.Seats[1].Profile = "gambler" }, "unknown_profile"},
		{"unknown rule", func(s *MatchSpec) { s.Rules = []string{"orange", "teal"} }, "unknown_rule"},
		{"missing script", func(s *MatchSpec) { s.Scripts = []string{"/nonexistent/pack.lua"} }, "script_failed"},
	}
	for _, c := range cases {
		spec := baseMatchSpec()
		c.mutate(&spec)
		_, err := Generate(spec, nil)
		var tapeErr *TapeError
		if !errors.As(err, &tapeErr) {
			t.Fatalf("%s: expected TapeError, got %T %v", c.name, err, err)
		}
		if tapeErr.Reason != c.reason {
			t.Fatalf("%s: unexpected reason: %s", c.name, tapeErr.Reason)
		}
	}
}

func TestGenerate_ScriptErrorBecomesInvariantViolation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.lua")
	src := "function cauldron_finished(ctx)\n  error(\"boom\")\nend\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	spec := baseMatchSpec()
	spec.Scripts = []string{path}

	_, err := Generate(spec, nil)
	var tapeErr *TapeError
	if !errors.As(err, &tapeErr) || tapeErr.Reason != "invariant_violated" {
		t.Fatalf("expected invariant_violated, got %v", err)
	}
	if tapeErr.Turn != 1 {
		t.Fatalf("expected failure on turn 1, got %d", tapeErr.Turn)
	}
}

// Every chip left in a finished cauldron must be accounted for by the draw
// log: fill draws and chips placed by a rule draw, minus chips poured off by
// the flask. Yellow is left out because it returns a white chip silently.
func TestGenerate_DrawLogAccountsForCauldron(t *testing.T) {
	ruleDraws := 0
	for seed := int64(1); seed <= 12; seed++ {
		spec := MatchSpec{
			Seed: seed,
			Seats: []SeatSpec{
				{Name: "A", Profile: "prefer_blue"},
				{Name: "B", Profile: "prefer_blue"},
				{Name: "C", Profile: "simple"},
			},
			Rules: []string{"orange", "black", "green", "red", "blue", "purple"},
		}
		tp, err := Generate(spec, nil)
		if err != nil {
			t.Fatalf("seed %d: Generate failed: %v", seed, err)
		}

		logged := map[int]int{}
		for _, e := range tp.Events {
			f := e.Value.GetFields()
			player := int(f["player"].GetNumberValue())
			switch e.Type {
			case "turnStart":
				logged = map[int]int{}
			case "draw":
				logged[player]++
			case "flaskSpent":
				logged[player]--
			case "ruleDraw":
				ruleDraws++
				if len(f["chips"].GetListValue().GetValues()) == 0 {
					t.Fatalf("seed %d: ruleDraw without chips", seed)
				}
				if f["placed"].GetBoolValue() {
					logged[player]++
				}
			case "cauldronFinished":
				held := len(f["chips"].GetListValue().GetValues())
				if held != logged[player] {
					t.Fatalf("seed %d turn %v player %d: cauldron holds %d chips, log accounts for %d",
						seed, f["turn"].GetNumberValue(), player, held, logged[player])
				}
			case "turnEnd":
				state := f["state"].GetStructValue()
				if state == nil || len(state.GetFields()["players"].GetListValue().GetValues()) != 3 {
					t.Fatalf("seed %d: turnEnd without player state", seed)
				}
			}
		}
	}
	if ruleDraws == 0 {
		t.Fatalf("no blue rule draw in any match")
	}
}
