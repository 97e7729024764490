package orchestration

import (
	"context"
	"io"
	"iter"
	"math"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/coinsim/internal/coin"
	apperrors "github.com/agbru/coinsim/internal/errors"
	"github.com/agbru/coinsim/internal/stats"
)

// ProgressBufferMultiplier sizes the progress channel per worker so slow
// displays rarely block workers.
const ProgressBufferMultiplier = 5

// DefaultHistogramBins is the number of histogram buckets of an experiment.
const DefaultHistogramBins = 20

// ExperimentConfig describes a batch of independent runs.
type ExperimentConfig struct {
	// Runs is the number of independent sessions.
	Runs int
	// Flips is the number of coins per run.
	Flips int
	// Probability is the heads probability.
	Probability float64
	// Workers bounds concurrency; 0 means runtime.NumCPU().
	Workers int
	// Confidence is used to count runs whose Wilson interval covers p.
	Confidence float64
	// Bins is the histogram resolution; 0 means DefaultHistogramBins.
	Bins int
	// Seed makes the experiment reproducible for a fixed worker count.
	Seed    uint64
	HasSeed bool
}

// ExperimentResult aggregates the heads proportion of every run.
type ExperimentResult struct {
	Config      ExperimentConfig
	Proportions []float64
	Mean        float64
	StdDev      float64
	// ExpectedStdDev is sqrt(p(1-p)/flips), the spread the runs should show.
	ExpectedStdDev float64
	// Covered counts runs whose Wilson interval contains p.
	Covered   int
	Histogram []stats.Bin
	Duration  time.Duration
}

// Coverage is the fraction of runs whose interval contains p.
func (r ExperimentResult) Coverage() float64 {
	if len(r.Proportions) == 0 {
		return 0
	}
	return float64(r.Covered) / float64(len(r.Proportions))
}

func (c ExperimentConfig) normalized() (ExperimentConfig, error) {
	if c.Runs < 1 {
		return c, apperrors.ValidationError{Field: "runs", Message: "must be at least 1", Cause: coin.ErrInvalidArgument}
	}
	if err := coin.Validate(c.Flips, c.Probability); err != nil {
		return c, err
	}
	if c.Flips == 0 {
		return c, apperrors.ValidationError{Field: "n", Message: "experiment needs at least one flip per run", Cause: coin.ErrInvalidArgument}
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	c.Workers = min(c.Workers, c.Runs)
	if c.Bins <= 0 {
		c.Bins = DefaultHistogramBins
	}
	if c.Confidence <= 0 || c.Confidence >= 1 {
		c.Confidence = stats.DefaultConfidence
	}
	return c, nil
}

// RunExperiment runs cfg.Runs independent tallies of cfg.Flips coins on a
// bounded worker pool. Run i is handled by worker i mod workers, and every
// worker owns its randomness source, so seeded experiments are reproducible.
func RunExperiment(ctx context.Context, cfg ExperimentConfig, reporter ProgressReporter, out io.Writer) (ExperimentResult, error) {
	cfg, err := cfg.normalized()
	if err != nil {
		return ExperimentResult{}, err
	}
	if reporter == nil {
		reporter = NullProgressReporter{}
	}

	baseSeed := cfg.Seed
	if !cfg.HasSeed {
		if baseSeed, err = coin.NewSeed(); err != nil {
			return ExperimentResult{}, err
		}
	}

	start := time.Now()
	proportions := make([]float64, cfg.Runs)
	covered := make([]bool, cfg.Runs)
	progressChan := make(chan ProgressUpdate, cfg.Workers*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go reporter.DisplayProgress(&displayWg, progressChan, cfg.Workers, out)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for w := range cfg.Workers {
		g.Go(func() error {
			gen := coin.NewGenerator(coin.NewSeededSource(baseSeed + uint64(w)))
			assigned := (cfg.Runs - w + cfg.Workers - 1) / cfg.Workers
			done := 0
			for run := w; run < cfg.Runs; run += cfg.Workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				state := coin.NewState()
				trials, err := gen.Trials(cfg.Flips, cfg.Probability)
				if err != nil {
					return err
				}
				if err := tally(gctx, state, trials); err != nil {
					return err
				}
				proportions[run], _ = state.Proportions()
				lo, hi := stats.WilsonInterval(state.HeadsCount, state.TotalFlips(), cfg.Confidence)
				covered[run] = cfg.Probability >= lo && cfg.Probability <= hi

				done++
				update := ProgressUpdate{WorkerIndex: w, Value: float64(done) / float64(assigned)}
				if done == assigned {
					progressChan <- update
					continue
				}
				select {
				case progressChan <- update:
				default:
				}
			}
			return nil
		})
	}

	err = g.Wait()
	close(progressChan)
	displayWg.Wait()
	if err != nil {
		return ExperimentResult{}, err
	}

	res := ExperimentResult{
		Config:         cfg,
		Proportions:    proportions,
		ExpectedStdDev: math.Sqrt(cfg.Probability * (1 - cfg.Probability) / float64(cfg.Flips)),
		Histogram:      stats.Histogram(proportions, cfg.Bins),
		Duration:       time.Since(start),
	}
	res.Mean, res.StdDev = stats.MeanStdDev(proportions)
	for _, c := range covered {
		if c {
			res.Covered++
		}
	}
	return res, nil
}

// tally records every outcome of trials into state, checking ctx every
// cancelCheckInterval draws.
func tally(ctx context.Context, state *coin.State, trials iter.Seq[coin.Outcome]) error {
	i := 0
	for o := range trials {
		if i%cancelCheckInterval == cancelCheckInterval-1 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		i++
		if o == coin.Heads {
			state.HeadsCount++
		} else {
			state.TailsCount++
		}
		state.LastOutcome = o
	}
	return nil
}
