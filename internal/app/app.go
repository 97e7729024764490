// Package app wires configuration, persistence and the front-ends into the
// coinsim command.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/agbru/coinsim/internal/cli"
	"github.com/agbru/coinsim/internal/coin"
	"github.com/agbru/coinsim/internal/config"
	apperrors "github.com/agbru/coinsim/internal/errors"
	"github.com/agbru/coinsim/internal/logging"
	"github.com/agbru/coinsim/internal/metrics"
	"github.com/agbru/coinsim/internal/orchestration"
	"github.com/agbru/coinsim/internal/store"
	"github.com/agbru/coinsim/internal/telemetry"
	"github.com/agbru/coinsim/internal/ui"
)

// tracingFlushTimeout bounds the export of pending spans at exit.
const tracingFlushTimeout = 5 * time.Second

// Application represents the coinsim application instance.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer
	// In feeds the REPL.
	In io.Reader

	store  store.Store
	logger logging.Logger
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithStore sets the session store instead of the one selected by --db.
// The application does not close a store it was given.
func WithStore(st store.Store) AppOption {
	return func(a *Application) { a.store = st }
}

// WithInput sets the reader the REPL reads commands from.
func WithInput(in io.Reader) AppOption {
	return func(a *Application) { a.In = in }
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter, In: os.Stdin}
	for _, opt := range opts {
		opt(app)
	}

	programName := "coinsim"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = cfg
	return app, nil
}

// Run executes the application based on the configured mode and returns
// the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.ShowVersion {
		PrintVersion(out)
		return apperrors.ExitSuccess
	}
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	ui.InitTheme(a.Config.NoColor)
	a.setupLogging()

	shutdownTracing, err := telemetry.Setup(ctx, a.Config.OTelEndpoint, "coinsim", Version)
	if err != nil {
		return apperrors.HandleError(apperrors.NewConfigError("tracing: %v", err), a.ErrWriter)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), tracingFlushTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			a.logger.Warn("failed to flush traces", logging.Err(err))
		}
	}()

	if a.store == nil {
		st, err := openStore(a.Config.DBPath)
		if err != nil {
			return apperrors.HandleError(err, a.ErrWriter)
		}
		defer func() {
			if err := st.Close(); err != nil {
				a.logger.Warn("failed to close store", logging.Err(err))
			}
		}()
		a.store = st
	}

	a.logger.Debug("starting", logging.String("mode", string(a.Config.Mode())), logging.String("version", Version))

	switch a.Config.Mode() {
	case config.ModeTUI:
		return a.runTUI(ctx)
	case config.ModeServe:
		return a.runServe(ctx)
	case config.ModeExperiment:
		return a.runExperiment(ctx, out)
	case config.ModeOneShot:
		return a.runOneShot(ctx, out)
	default:
		return a.runREPL(ctx, out)
	}
}

// setupLogging applies --log-level. The dashboard owns the terminal, so it
// only logs when debugging.
func (a *Application) setupLogging() {
	level, err := logging.ParseLevel(a.Config.LogLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)

	w := a.ErrWriter
	if a.Config.Mode() == config.ModeTUI && level > zerolog.DebugLevel {
		w = io.Discard
	}
	a.logger = logging.NewLogger(w, "coinsim")
}

func openStore(dbPath string) (store.Store, error) {
	if dbPath == "" {
		return store.NewMemoryStore(), nil
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, apperrors.WrapError(err, "open database %s", dbPath)
	}
	return st, nil
}

// openSession resumes --session from the store, or starts a new session.
func (a *Application) openSession(ctx context.Context) (*orchestration.Session, error) {
	opts := []orchestration.SessionOption{
		orchestration.WithProbability(a.Config.Probability),
		orchestration.WithBatchSize(a.Config.Batch),
		orchestration.WithConfidence(a.Config.Confidence),
		orchestration.WithStore(a.store),
		orchestration.WithObserver(metrics.NewMetrics()),
		orchestration.WithLogger(a.logger),
	}
	if a.Config.Session != "" {
		opts = append(opts, orchestration.WithID(a.Config.Session))
	}
	if a.Config.HasSeed {
		opts = append(opts, orchestration.WithSource(coin.NewSeededSource(a.Config.Seed)))
	}
	return orchestration.OpenSession(ctx, opts...)
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
