// This file contains environment variable utilities for configuration override.

package config

import (
	"flag"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// getEnvString returns the value of the environment variable with the given key
// (prefixed with EnvPrefix), or the default value if not set.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// isFlagSet checks if a flag was explicitly set on the command line.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
// Aliased flags may be given in either the short or the long form.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride declares a single environment variable override.
// Each entry maps an env key (without the COINSIM_ prefix) to the CLI flag
// name(s) it corresponds to and a function that applies the env value.
// Unparseable values are ignored and the previous value is kept.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string)
}

func intOverride(dst func(*AppConfig) *int) func(*AppConfig, string) {
	return func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst(c) = parsed
		}
	}
}

func floatOverride(dst func(*AppConfig) *float64) func(*AppConfig, string) {
	return func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			*dst(c) = parsed
		}
	}
}

func boolOverride(dst func(*AppConfig) *bool) func(*AppConfig, string) {
	return func(c *AppConfig, v string) {
		p := dst(c)
		*p = parseBoolEnv(v, *p)
	}
}

// envOverrides is the declarative table of all environment variable overrides.
var envOverrides = []envOverride{
	// Numeric overrides
	{"FLIPS", []string{"flips", "n"}, intOverride(func(c *AppConfig) *int { return &c.Flips })},
	{"BATCH", []string{"batch"}, intOverride(func(c *AppConfig) *int { return &c.Batch })},
	{"RUNS", []string{"runs"}, intOverride(func(c *AppConfig) *int { return &c.Runs })},
	{"WORKERS", []string{"workers"}, intOverride(func(c *AppConfig) *int { return &c.Workers })},
	{"PROBABILITY", []string{"probability", "p"}, floatOverride(func(c *AppConfig) *float64 { return &c.Probability })},
	{"CONFIDENCE", []string{"confidence"}, floatOverride(func(c *AppConfig) *float64 { return &c.Confidence })},
	{"SEED", []string{"seed"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Seed, c.HasSeed = parsed, true
		}
	}},

	// Duration overrides
	{"TIMEOUT", []string{"timeout"}, func(c *AppConfig, v string) {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.Timeout = parsed
		}
	}},

	// String overrides
	{"SESSION", []string{"session"}, func(c *AppConfig, v string) { c.Session = v }},
	{"DB", []string{"db"}, func(c *AppConfig, v string) { c.DBPath = v }},
	{"ADDR", []string{"addr"}, func(c *AppConfig, v string) { c.Addr = v }},
	{"LOG_LEVEL", []string{"log-level"}, func(c *AppConfig, v string) { c.LogLevel = v }},
	{"OTEL_ENDPOINT", []string{"otel-endpoint"}, func(c *AppConfig, v string) { c.OTelEndpoint = v }},

	// Boolean overrides
	{"TUI", []string{"tui"}, boolOverride(func(c *AppConfig) *bool { return &c.TUI })},
	{"REPL", []string{"repl"}, boolOverride(func(c *AppConfig) *bool { return &c.REPL })},
	{"SERVE", []string{"serve"}, boolOverride(func(c *AppConfig) *bool { return &c.Serve })},
	{"EXPERIMENT", []string{"experiment"}, boolOverride(func(c *AppConfig) *bool { return &c.Experiment })},
	{"QUIET", []string{"quiet", "q"}, boolOverride(func(c *AppConfig) *bool { return &c.Quiet })},
	{"VERBOSE", []string{"verbose", "v"}, boolOverride(func(c *AppConfig) *bool { return &c.Verbose })},
	{"NO_COLOR", []string{"no-color"}, boolOverride(func(c *AppConfig) *bool { return &c.NoColor })},
}

// parseBoolEnv parses a boolean environment variable value.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
// Returns defaultVal if the value is not recognized.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// This implements the priority: CLI flags > Environment variables > file > Defaults.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			o.apply(config, val)
		}
	}
}

// modeSelector ties a front-end flag to its environment key and field.
type modeSelector struct {
	flag   string
	envKey string
	field  func(*AppConfig) *bool
}

var modeSelectors = []modeSelector{
	{"tui", "TUI", func(c *AppConfig) *bool { return &c.TUI }},
	{"repl", "REPL", func(c *AppConfig) *bool { return &c.REPL }},
	{"serve", "SERVE", func(c *AppConfig) *bool { return &c.Serve }},
	{"experiment", "EXPERIMENT", func(c *AppConfig) *bool { return &c.Experiment }},
}

// resolveMode lets the highest-priority layer that selects a front-end
// decide alone: modes enabled on the command line clear the ones coming
// from the environment or the file, and modes enabled in the environment
// clear the ones coming from the file.
func resolveMode(config *AppConfig, fs *flag.FlagSet) {
	fromFlags := func(m modeSelector) bool {
		return isFlagSet(fs, m.flag) && *m.field(config)
	}
	fromEnv := func(m modeSelector) bool {
		return !isFlagSet(fs, m.flag) && parseBoolEnv(os.Getenv(EnvPrefix+m.envKey), false)
	}
	for _, selected := range []func(modeSelector) bool{fromFlags, fromEnv} {
		if !slices.ContainsFunc(modeSelectors, selected) {
			continue
		}
		for _, m := range modeSelectors {
			if !selected(m) {
				*m.field(config) = false
			}
		}
		return
	}
}
