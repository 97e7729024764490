package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/agbru/coinsim/internal/cli"
	apperrors "github.com/agbru/coinsim/internal/errors"
	"github.com/agbru/coinsim/internal/logging"
	"github.com/agbru/coinsim/internal/orchestration"
	"github.com/agbru/coinsim/internal/server"
	"github.com/agbru/coinsim/internal/tui"
)

// withLifecycle bounds ctx by the configured timeout and by SIGINT/SIGTERM.
func (a *Application) withLifecycle(ctx context.Context, timeout bool) (context.Context, context.CancelFunc) {
	cancelTimeout := context.CancelFunc(func() {})
	if timeout {
		ctx, cancelTimeout = context.WithTimeout(ctx, a.Config.Timeout)
	}
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	return ctx, func() {
		stopSignals()
		cancelTimeout()
	}
}

// progressReporter picks the spinner, or nothing in quiet mode.
func (a *Application) progressReporter(out io.Writer) (orchestration.ProgressReporter, io.Writer) {
	if a.Config.Quiet {
		return orchestration.NullProgressReporter{}, io.Discard
	}
	return cli.CLIProgressReporter{}, out
}

// runOneShot flips --flips coins and prints the result.
func (a *Application) runOneShot(ctx context.Context, out io.Writer) int {
	ctx, cancel := a.withLifecycle(ctx, true)
	defer cancel()

	sess, err := a.openSession(ctx)
	if err != nil {
		return apperrors.HandleError(err, a.ErrWriter)
	}

	reporter, progressOut := a.progressReporter(out)
	snap, err := cli.RunOneShot(ctx, sess, a.Config.Flips, reporter, progressOut)
	if err != nil {
		var partial *cli.PartialRunError
		if errors.As(err, &partial) {
			a.logger.Warn("one-shot run stopped early",
				logging.String("session", sess.ID()),
				logging.Int("committed", partial.Committed),
				logging.Int("requested", partial.Requested))
		}
		return apperrors.HandleError(err, a.ErrWriter)
	}

	cli.DisplayResult(out, snap, cli.OutputConfig{Quiet: a.Config.Quiet, Verbose: a.Config.Verbose})
	return apperrors.ExitSuccess
}

// runREPL starts the interactive prompt. --timeout bounds each command.
func (a *Application) runREPL(ctx context.Context, out io.Writer) int {
	ctx, cancel := a.withLifecycle(ctx, false)
	defer cancel()

	sess, err := a.openSession(ctx)
	if err != nil {
		return apperrors.HandleError(err, a.ErrWriter)
	}

	repl := cli.NewREPL(sess, cli.REPLConfig{
		Timeout:  a.Config.Timeout,
		Verbose:  a.Config.Verbose,
		MaxFlips: server.DefaultSecurityConfig().MaxFlips,
	})
	repl.SetInput(a.In)
	repl.SetOutput(out)
	repl.Start(ctx)
	return apperrors.ExitSuccess
}

// runTUI launches the interactive dashboard.
func (a *Application) runTUI(ctx context.Context) int {
	ctx, cancel := a.withLifecycle(ctx, false)
	defer cancel()

	sess, err := a.openSession(ctx)
	if err != nil {
		return apperrors.HandleError(err, a.ErrWriter)
	}
	return tui.Run(ctx, sess, Version)
}

// runServe serves the HTTP API until interrupted.
func (a *Application) runServe(ctx context.Context) int {
	ctx, cancel := a.withLifecycle(ctx, false)
	defer cancel()

	cfg := server.DefaultConfig()
	cfg.Addr = a.Config.Addr
	cfg.Probability = a.Config.Probability
	cfg.BatchSize = a.Config.Batch
	cfg.Confidence = a.Config.Confidence
	cfg.Seed, cfg.HasSeed = a.Config.Seed, a.Config.HasSeed

	if err := server.New(cfg, a.store, a.logger).Start(ctx); err != nil {
		return apperrors.HandleError(err, a.ErrWriter)
	}
	return apperrors.ExitSuccess
}

// runExperiment runs --runs independent tallies and prints their spread.
func (a *Application) runExperiment(ctx context.Context, out io.Writer) int {
	ctx, cancel := a.withLifecycle(ctx, true)
	defer cancel()

	reporter, progressOut := a.progressReporter(out)
	res, err := orchestration.RunExperiment(ctx, orchestration.ExperimentConfig{
		Runs:        a.Config.Runs,
		Flips:       a.Config.Flips,
		Probability: a.Config.Probability,
		Workers:     a.Config.Workers,
		Confidence:  a.Config.Confidence,
		Seed:        a.Config.Seed,
		HasSeed:     a.Config.HasSeed,
	}, reporter, progressOut)
	if err != nil {
		return apperrors.HandleError(err, a.ErrWriter)
	}

	if a.Config.Quiet {
		fmt.Fprintf(out, "%.6f %.6f %.6f\n", res.Mean, res.StdDev, res.Coverage())
		return apperrors.ExitSuccess
	}
	cli.DisplayExperiment(out, res)
	return apperrors.ExitSuccess
}
