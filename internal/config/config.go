// Package config parses and validates the coinsim configuration.
//
// Values are resolved in priority order: command-line flags, COINSIM_*
// environment variables, an optional YAML file given with --config, and
// finally the built-in defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/coinsim/internal/errors"
)

// EnvPrefix is prepended to every environment variable override.
const EnvPrefix = "COINSIM_"

// Defaults.
const (
	DefaultProbability = 0.5
	DefaultBatch       = 100
	DefaultConfidence  = 0.95
	DefaultRuns        = 1000
	DefaultFlips       = 0
	DefaultAddr        = ":8080"
	DefaultTimeout     = 5 * time.Minute
	DefaultLogLevel    = "warn"
)

// Mode selects the front-end.
type Mode string

const (
	ModeOneShot    Mode = "oneshot"
	ModeREPL       Mode = "repl"
	ModeTUI        Mode = "tui"
	ModeServe      Mode = "serve"
	ModeExperiment Mode = "experiment"
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// Front-end selection. At most one may be set; with none set the
	// one-shot mode runs when Flips > 0 and the REPL otherwise.
	TUI        bool
	REPL       bool
	Serve      bool
	Experiment bool

	// Flips is the number of coins for one-shot mode and per experiment run.
	Flips int
	// Probability is the chance of heads for every trial.
	Probability float64
	// Batch is the size of a "flip batch" command.
	Batch int
	// Seed makes runs reproducible when HasSeed is true.
	Seed    uint64
	HasSeed bool

	// Session names a persisted session; empty means a fresh one.
	Session string
	// DBPath points to the SQLite database; empty keeps sessions in memory.
	DBPath string
	// Addr is the listen address of the HTTP server.
	Addr string

	Confidence float64
	Runs       int
	Workers    int

	Timeout time.Duration

	Quiet    bool
	Verbose  bool
	NoColor  bool
	LogLevel string

	// OTelEndpoint is the OTLP/HTTP collector URL receiving traces; empty
	// disables tracing.
	OTelEndpoint string

	Completion  string
	ConfigFile  string
	ShowVersion bool
}

// Default returns the configuration used when nothing is overridden.
func Default() AppConfig {
	return AppConfig{
		Flips:       DefaultFlips,
		Probability: DefaultProbability,
		Batch:       DefaultBatch,
		Addr:        DefaultAddr,
		Confidence:  DefaultConfidence,
		Runs:        DefaultRuns,
		Timeout:     DefaultTimeout,
		LogLevel:    DefaultLogLevel,
	}
}

// Mode returns the front-end selected by the configuration.
func (c AppConfig) Mode() Mode {
	switch {
	case c.TUI:
		return ModeTUI
	case c.Serve:
		return ModeServe
	case c.Experiment:
		return ModeExperiment
	case c.REPL:
		return ModeREPL
	case c.Flips > 0:
		return ModeOneShot
	default:
		return ModeREPL
	}
}

// Validate checks the semantic consistency of the configuration.
func (c AppConfig) Validate() error {
	modes := 0
	for _, set := range []bool{c.TUI, c.REPL, c.Serve, c.Experiment} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		return apperrors.NewConfigError("--tui, --repl, --serve and --experiment are mutually exclusive")
	}
	if math.IsNaN(c.Probability) || c.Probability < 0 || c.Probability > 1 {
		return apperrors.NewConfigError("probability must be within [0, 1], got %v", c.Probability)
	}
	if c.Batch < 1 {
		return apperrors.NewConfigError("batch size must be positive, got %d", c.Batch)
	}
	if c.Flips < 0 {
		return apperrors.NewConfigError("flips must not be negative, got %d", c.Flips)
	}
	if math.IsNaN(c.Confidence) || c.Confidence <= 0 || c.Confidence >= 1 {
		return apperrors.NewConfigError("confidence must be within (0, 1), got %v", c.Confidence)
	}
	if c.Runs < 1 {
		return apperrors.NewConfigError("runs must be at least 1, got %d", c.Runs)
	}
	if c.Workers < 0 {
		return apperrors.NewConfigError("workers must not be negative, got %d", c.Workers)
	}
	if c.Experiment && c.Flips < 1 {
		return apperrors.NewConfigError("--experiment needs --flips > 0")
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout must be positive, got %s", c.Timeout)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error", "disabled", "off":
	default:
		return apperrors.NewConfigError("unknown log level %q", c.LogLevel)
	}
	switch c.Completion {
	case "", "bash", "zsh", "fish":
	default:
		return apperrors.NewConfigError("unsupported completion shell %q (bash, zsh, fish)", c.Completion)
	}
	return nil
}

// ParseConfig parses args into an AppConfig and validates the result.
// Usage and parse errors are written to errorOutput.
func ParseConfig(programName string, args []string, errorOutput io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorOutput)

	// The config file is located first so its values can act as flag
	// defaults; flags and environment still win.
	configPath := findConfigFlag(args)
	if configPath == "" {
		configPath = getEnvString("CONFIG", "")
	}
	config := Default()
	if configPath != "" {
		loaded, err := LoadFile(configPath, config)
		if err != nil {
			return AppConfig{}, err
		}
		config = loaded
	}

	var seed seedFlag

	fs.BoolVar(&config.TUI, "tui", config.TUI, "Launch the interactive dashboard.")
	fs.BoolVar(&config.REPL, "repl", config.REPL, "Start the interactive command prompt.")
	fs.BoolVar(&config.Serve, "serve", config.Serve, "Serve the HTTP JSON API.")
	fs.BoolVar(&config.Experiment, "experiment", config.Experiment, "Run --runs independent sessions of --flips coins.")
	fs.IntVar(&config.Flips, "flips", config.Flips, "Number of coins to flip in one-shot mode.")
	fs.IntVar(&config.Flips, "n", config.Flips, "Number of coins to flip (shorthand).")
	fs.Float64Var(&config.Probability, "probability", config.Probability, "Probability of heads for each flip.")
	fs.Float64Var(&config.Probability, "p", config.Probability, "Probability of heads (shorthand).")
	fs.IntVar(&config.Batch, "batch", config.Batch, "Number of coins flipped by a batch command.")
	fs.Var(&seed, "seed", "Seed for reproducible runs (random when unset).")
	fs.StringVar(&config.Session, "session", config.Session, "Session id to resume or create.")
	fs.StringVar(&config.DBPath, "db", config.DBPath, "SQLite database for persisted sessions (in-memory when empty).")
	fs.StringVar(&config.Addr, "addr", config.Addr, "Listen address for --serve.")
	fs.Float64Var(&config.Confidence, "confidence", config.Confidence, "Confidence level of the Wilson interval.")
	fs.IntVar(&config.Runs, "runs", config.Runs, "Number of runs in experiment mode.")
	fs.IntVar(&config.Workers, "workers", config.Workers, "Concurrent experiment workers (0 = number of CPUs).")
	fs.DurationVar(&config.Timeout, "timeout", config.Timeout, "Maximum duration of a one-shot or experiment run.")
	fs.BoolVar(&config.Quiet, "quiet", config.Quiet, "Print only the heads and tails counts.")
	fs.BoolVar(&config.Quiet, "q", config.Quiet, "Quiet mode (shorthand).")
	fs.BoolVar(&config.Verbose, "verbose", config.Verbose, "Show the statistical summary in detail.")
	fs.BoolVar(&config.Verbose, "v", config.Verbose, "Verbose output (shorthand).")
	fs.BoolVar(&config.NoColor, "no-color", config.NoColor, "Disable colored output.")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "Log level: debug, info, warn, error.")
	fs.StringVar(&config.OTelEndpoint, "otel-endpoint", config.OTelEndpoint, "OTLP/HTTP traces URL, e.g. http://localhost:4318/v1/traces (tracing off when empty).")
	fs.StringVar(&config.Completion, "completion", "", "Print a completion script for bash, zsh or fish.")
	fs.StringVar(&config.ConfigFile, "config", configPath, "YAML configuration file.")
	fs.BoolVar(&config.ShowVersion, "version", false, "Print version information and exit.")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(errorOutput, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	applyEnvOverrides(&config, fs)
	resolveMode(&config, fs)
	if isFlagSet(fs, "seed") {
		config.Seed, config.HasSeed = seed.value, true
	}

	if err := config.Validate(); err != nil {
		return AppConfig{}, err
	}
	return config, nil
}

// findConfigFlag scans args for --config without parsing the whole set.
func findConfigFlag(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !strings.HasPrefix(arg, "-") || name != "config" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// seedFlag records whether --seed was given so that 0 stays a valid seed.
type seedFlag struct {
	value uint64
	set   bool
}

func (s *seedFlag) String() string {
	if s == nil || !s.set {
		return ""
	}
	return strconv.FormatUint(s.value, 10)
}

func (s *seedFlag) Set(v string) error {
	parsed, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return errors.New("seed must be a non-negative integer")
	}
	s.value, s.set = parsed, true
	return nil
}
