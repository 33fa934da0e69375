package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"brewsim/tape"
)

func TestParseConfigFromArgs_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("BREWSIM_MATCHES", "50")
	t.Setenv("BREWSIM_PLAYERS", "simple, prefer_red")
	t.Setenv("BREWSIM_LEDGER_MODE", "sqlite")

	var cfg Config
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	if err := ParseConfigFromArgs(&cfg, fs, []string{"-matches", "7", "-rules", "orange,black"}); err != nil {
		t.Fatalf("ParseConfigFromArgs err: %v", err)
	}
	if cfg.Matches != 7 {
		t.Fatalf("matches: got %d, want 7", cfg.Matches)
	}
	if !reflect.DeepEqual(cfg.Players, []string{"simple", "prefer_red"}) {
		t.Fatalf("players: got %v", cfg.Players)
	}
	if !reflect.DeepEqual(cfg.Rules, []string{"orange", "black"}) {
		t.Fatalf("rules: got %v", cfg.Rules)
	}
	if cfg.Ledger.Mode != "sqlite" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestRunPrintsStandingsAndWritesTape(t *testing.T) {
	t.Setenv("BREWSIM_LEDGER_MODE", "noop")
	tapePath := filepath.Join(t.TempDir(), "tape.json")

	var out bytes.Buffer
	args := []string{
		"-matches", "5",
		"-seed", "11",
		"-players", "simple,prefer_blue,simple",
		"-fortune",
		"-log-level", "error",
		"-tape", tapePath,
	}
	if err := run(context.Background(), args, &out); err != nil {
		t.Fatalf("run err: %v", err)
	}
	text := out.String()
	for _, want := range []string{"master seed 11", "1:simple", "2:prefer_blue", "3:simple"} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}

	raw, err := os.ReadFile(tapePath)
	if err != nil {
		t.Fatalf("read tape: %v", err)
	}
	var wt tape.WireTape
	if err := json.Unmarshal(raw, &wt); err != nil {
		t.Fatalf("decode tape: %v", err)
	}
	if wt.TapeVersion != tape.Version || len(wt.Events) == 0 || wt.Seed == 0 {
		t.Fatalf("unexpected tape: version=%d events=%d seed=%d", wt.TapeVersion, len(wt.Events), wt.Seed)
	}
}

func TestRunRejectsUnknownLogLevel(t *testing.T) {
	t.Setenv("BREWSIM_LEDGER_MODE", "noop")
	if err := run(context.Background(), []string{"-log-level", "loud"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for unknown log level")
	}
}
