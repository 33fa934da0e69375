// Package montecarlo plays many seeded matches of one setup on a bounded
// worker pool.
package montecarlo

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"brewsim/apps/sim/internal/ledger"
	"brewsim/brew"
	"brewsim/brew/strategy"
	"brewsim/tape"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Matches    int
	Workers    int
	MasterSeed int64 // 0 picks a fresh one
	Spec       tape.MatchSpec
	Registry   *strategy.Registry
	Ledger     ledger.Service
	SaveTapes  bool
	Logger     *zap.Logger
}

type MatchOutcome struct {
	Index   int
	Seed    int64
	Result  brew.Result
	Leaders []brew.PlayerID
}

// Report aggregates a batch. Outcomes are ordered by match index, so two
// runs with the same master seed produce equal reports.
type Report struct {
	BatchID    string
	MasterSeed int64
	Outcomes   []MatchOutcome
	Wins       map[string]int // by seat name, a tie credits every leader
	MeanPoints map[string]float64
	StartedAt  time.Time
	FinishedAt time.Time
}

// Seeds derives one seed per match from the master seed.
func Seeds(master int64, n int) []int64 {
	rng := rand.New(rand.NewSource(master))
	out := make([]int64, n)
	for i := range out {
		s := rng.Int63()
		for s == 0 {
			s = rng.Int63()
		}
		out[i] = s
	}
	return out
}

// Run plays opts.Matches matches. The first failing match cancels the rest.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.Matches <= 0 {
		return nil, fmt.Errorf("matches must be > 0, got %d", opts.Matches)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Registry == nil {
		opts.Registry = strategy.NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MasterSeed == 0 {
		seed, err := brew.NewSeed()
		if err != nil {
			return nil, err
		}
		opts.MasterSeed = seed
	}

	report := &Report{
		BatchID:    ledger.NewBatchID(),
		MasterSeed: opts.MasterSeed,
		Outcomes:   make([]MatchOutcome, opts.Matches),
		StartedAt:  time.Now().UTC(),
	}
	log := opts.Logger.With(zap.String("batch", report.BatchID), zap.Int64("master_seed", opts.MasterSeed))
	log.Info("batch started", zap.Int("matches", opts.Matches), zap.Int("workers", opts.Workers))

	if opts.Ledger != nil {
		err := opts.Ledger.StartBatch(ctx, ledger.BatchSummary{
			BatchID:    report.BatchID,
			MasterSeed: report.MasterSeed,
			Matches:    opts.Matches,
			StartedAt:  report.StartedAt,
		})
		if err != nil {
			return nil, fmt.Errorf("start batch: %w", err)
		}
	}

	seeds := Seeds(opts.MasterSeed, opts.Matches)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := range seeds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := playOne(gctx, opts, report.BatchID, i, seeds[i])
			if err != nil {
				return fmt.Errorf("match %d (seed=%d): %w", i, seeds[i], err)
			}
			report.Outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("batch failed", zap.Error(err))
		if opts.Ledger != nil {
			ferr := opts.Ledger.FinishBatch(context.WithoutCancel(ctx), ledger.BatchSummary{
				BatchID:    report.BatchID,
				MasterSeed: report.MasterSeed,
				Matches:    opts.Matches,
				Status:     ledger.BatchFailed,
				StartedAt:  report.StartedAt,
				Summary:    map[string]any{"error": err.Error()},
			})
			if ferr != nil {
				log.Warn("closing failed batch in ledger", zap.Error(ferr))
			}
		}
		return nil, err
	}

	report.FinishedAt = time.Now().UTC()
	report.tally()
	if opts.Ledger != nil {
		err := opts.Ledger.FinishBatch(ctx, ledger.BatchSummary{
			BatchID:    report.BatchID,
			MasterSeed: report.MasterSeed,
			Matches:    opts.Matches,
			StartedAt:  report.StartedAt,
			Status:     ledger.BatchFinished,
			FinishedAt: report.FinishedAt,
			Wins:       report.Wins,
			Summary: map[string]any{
				"workers":     opts.Workers,
				"mean_points": report.MeanPoints,
				"fortune":     opts.Spec.Fortune,
				"rules":       opts.Spec.Rules,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("finish batch: %w", err)
		}
	}
	log.Info("batch finished", zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)))
	return report, nil
}

func playOne(ctx context.Context, opts Options, batchID string, index int, seed int64) (MatchOutcome, error) {
	spec := opts.Spec
	spec.Seed = seed

	var (
		res    brew.Result
		events []ledger.EventItem
	)
	if opts.SaveTapes {
		tp, err := tape.Generate(spec, opts.Registry)
		if err != nil {
			return MatchOutcome{}, err
		}
		res = tp.Result
		events = make([]ledger.EventItem, 0, len(tp.Events))
		for _, e := range tp.Events {
			events = append(events, ledger.EventItem{Seq: e.Seq, EventType: e.Type, EnvelopeB64: e.EnvelopeB64})
		}
	} else {
		m, err := tape.NewMatch(spec, opts.Registry, nil, nil)
		if err != nil {
			return MatchOutcome{}, err
		}
		res, err = m.Run()
		_ = m.Close()
		if err != nil {
			return MatchOutcome{}, err
		}
	}

	if opts.Ledger != nil {
		rec := ledger.NewMatchRecord(batchID, index, res)
		rec.Events = events
		if err := opts.Ledger.RecordMatch(ctx, rec); err != nil {
			return MatchOutcome{}, fmt.Errorf("record match: %w", err)
		}
	}
	return MatchOutcome{Index: index, Seed: seed, Result: res, Leaders: res.Leaders()}, nil
}

func (r *Report) tally() {
	r.Wins = map[string]int{}
	r.MeanPoints = map[string]float64{}
	totals := map[string]int{}
	for _, o := range r.Outcomes {
		for _, p := range o.Result.Players {
			totals[p.Name] += p.VictoryPoints
			if _, ok := r.Wins[p.Name]; !ok {
				r.Wins[p.Name] = 0
			}
		}
		for _, id := range o.Leaders {
			r.Wins[o.Result.Players[id].Name]++
		}
	}
	n := float64(len(r.Outcomes))
	for name, total := range totals {
		r.MeanPoints[name] = float64(total) / n
	}
}

// Standings returns seat names sorted by wins, then mean points, then name.
func (r *Report) Standings() []string {
	names := make([]string, 0, len(r.Wins))
	for name := range r.Wins {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := names[i], names[j]
		if r.Wins[a] != r.Wins[b] {
			return r.Wins[a] > r.Wins[b]
		}
		if r.MeanPoints[a] != r.MeanPoints[b] {
			return r.MeanPoints[a] > r.MeanPoints[b]
		}
		return a < b
	})
	return names
}
