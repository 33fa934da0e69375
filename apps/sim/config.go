package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"brewsim/apps/sim/internal/ledger"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is read from BREWSIM_* variables first; flags override it.
type Config struct {
	Matches   int      `env:"BREWSIM_MATCHES" envDefault:"1000"`
	Workers   int      `env:"BREWSIM_WORKERS" envDefault:"0"`
	Seed      int64    `env:"BREWSIM_SEED" envDefault:"0"`
	Players   []string `env:"BREWSIM_PLAYERS" envSeparator:"," envDefault:"simple,prefer_blue"`
	Rules     []string `env:"BREWSIM_RULES" envSeparator:","`
	Scripts   []string `env:"BREWSIM_SCRIPTS" envSeparator:","`
	Fortune   bool     `env:"BREWSIM_FORTUNE" envDefault:"false"`
	Profiles  string   `env:"BREWSIM_PROFILES"`
	SaveTapes bool     `env:"BREWSIM_SAVE_TAPES" envDefault:"false"`
	TapeOut   string   `env:"BREWSIM_TAPE_OUT"`
	LogLevel  string   `env:"BREWSIM_LOG_LEVEL" envDefault:"info"`

	Ledger ledger.Config
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ParseConfigFromArgs loads defaults from env and then parses flags.
func ParseConfigFromArgs(cfg *Config, fs *flag.FlagSet, args []string) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	if err := ParseEnv(cfg); err != nil {
		return err
	}

	players := strings.Join(cfg.Players, ",")
	rules := strings.Join(cfg.Rules, ",")
	scripts := strings.Join(cfg.Scripts, ",")
	fs.IntVar(&cfg.Matches, "matches", cfg.Matches, "number of matches to play")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "parallel matches (0 = GOMAXPROCS)")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "master seed (0 = random)")
	fs.StringVar(&players, "players", players, "comma separated strategy profile IDs, one per seat")
	fs.StringVar(&rules, "rules", rules, "comma separated rule names (empty = base game)")
	fs.StringVar(&scripts, "scripts", scripts, "comma separated Lua rule files")
	fs.BoolVar(&cfg.Fortune, "fortune", cfg.Fortune, "draw a fortune card every turn")
	fs.StringVar(&cfg.Profiles, "profiles", cfg.Profiles, "JSON file with extra strategy profiles")
	fs.BoolVar(&cfg.SaveTapes, "save-tapes", cfg.SaveTapes, "store every match tape in the ledger")
	fs.StringVar(&cfg.TapeOut, "tape", cfg.TapeOut, "write the tape of the first match to this JSON file")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.Ledger.Mode, "ledger", cfg.Ledger.Mode, "ledger backend: noop, sqlite or postgres")

	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.Players = splitList(players)
	cfg.Rules = splitList(rules)
	cfg.Scripts = splitList(scripts)
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// newLogger builds a development logger at debug level and a production one otherwise.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	var zcfg zap.Config
	if lvl == zapcore.DebugLevel {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
