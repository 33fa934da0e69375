package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"brewsim/apps/sim/internal/ledger"
	"brewsim/apps/sim/internal/montecarlo"
	"brewsim/brew/strategy"
	"brewsim/tape"

	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("[Sim] %v", err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	var cfg Config
	fs := flag.NewFlagSet("brewsim", flag.ContinueOnError)
	if err := ParseConfigFromArgs(&cfg, fs, args); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	reg := strategy.NewRegistry()
	if cfg.Profiles != "" {
		if err := reg.LoadFromFile(cfg.Profiles); err != nil {
			return err
		}
	}
	logger.Debug("strategy profiles ready", zap.Int("count", reg.Count()))

	spec := tape.MatchSpec{
		Rules:   cfg.Rules,
		Fortune: cfg.Fortune,
		Scripts: cfg.Scripts,
	}
	for i, id := range cfg.Players {
		spec.Seats = append(spec.Seats, tape.SeatSpec{Name: fmt.Sprintf("%d:%s", i+1, id), Profile: id})
	}

	ledgerService, ledgerMode, err := ledger.NewService(cfg.Ledger, logger)
	if err != nil {
		return fmt.Errorf("init ledger: %w", err)
	}
	defer ledgerService.Close()
	logger.Info("ledger ready", zap.String("mode", ledgerMode))

	report, err := montecarlo.Run(ctx, montecarlo.Options{
		Matches:    cfg.Matches,
		Workers:    cfg.Workers,
		MasterSeed: cfg.Seed,
		Spec:       spec,
		Registry:   reg,
		Ledger:     ledgerService,
		SaveTapes:  cfg.SaveTapes,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	if cfg.TapeOut != "" {
		if err := writeTape(cfg.TapeOut, spec, report.Outcomes[0].Seed, reg); err != nil {
			return err
		}
		logger.Info("tape written", zap.String("path", cfg.TapeOut), zap.Int64("seed", report.Outcomes[0].Seed))
	}

	printReport(out, report, cfg.Matches)
	return nil
}

func writeTape(path string, spec tape.MatchSpec, seed int64, reg *strategy.Registry) error {
	spec.Seed = seed
	tp, err := tape.Generate(spec, reg)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(tape.ToWireTape(tp), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

func printReport(out io.Writer, r *montecarlo.Report, matches int) {
	fmt.Fprintf(out, "batch %s  master seed %d  matches %d\n", r.BatchID, r.MasterSeed, matches)
	fmt.Fprintf(out, "%-24s %8s %8s %10s\n", "seat", "wins", "win%", "mean VP")
	for _, name := range r.Standings() {
		wins := r.Wins[name]
		fmt.Fprintf(out, "%-24s %8d %7.1f%% %10.2f\n", name, wins, 100*float64(wins)/float64(matches), r.MeanPoints[name])
	}
}
