package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"time"

	apperrors "github.com/agbru/coinsim/internal/errors"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the YAML layout. Pointer fields distinguish an absent
// key from a zero value so only present keys override the base config.
type fileConfig struct {
	TUI          *bool    `yaml:"tui"`
	REPL         *bool    `yaml:"repl"`
	Serve        *bool    `yaml:"serve"`
	Experiment   *bool    `yaml:"experiment"`
	Flips        *int     `yaml:"flips"`
	Probability  *float64 `yaml:"probability"`
	Batch        *int     `yaml:"batch"`
	Seed         *uint64  `yaml:"seed"`
	Session      *string  `yaml:"session"`
	DBPath       *string  `yaml:"db"`
	Addr         *string  `yaml:"addr"`
	Confidence   *float64 `yaml:"confidence"`
	Runs         *int     `yaml:"runs"`
	Workers      *int     `yaml:"workers"`
	Timeout      *string  `yaml:"timeout"`
	Quiet        *bool    `yaml:"quiet"`
	Verbose      *bool    `yaml:"verbose"`
	NoColor      *bool    `yaml:"no_color"`
	LogLevel     *string  `yaml:"log_level"`
	OTelEndpoint *string  `yaml:"otel_endpoint"`
}

// LoadFile reads a YAML configuration file and applies it on top of base.
func LoadFile(path string, base AppConfig) (AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AppConfig{}, apperrors.NewConfigError("read config %s: %v", path, err)
	}
	cfg, err := Decode(data, base)
	if err != nil {
		return AppConfig{}, apperrors.NewConfigError("parse config %s: %v", path, err)
	}
	cfg.ConfigFile = path
	return cfg, nil
}

// Decode applies a YAML document on top of base. Unknown keys are rejected.
func Decode(data []byte, base AppConfig) (AppConfig, error) {
	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return AppConfig{}, err
	}

	cfg := base
	setIf(&cfg.TUI, fc.TUI)
	setIf(&cfg.REPL, fc.REPL)
	setIf(&cfg.Serve, fc.Serve)
	setIf(&cfg.Experiment, fc.Experiment)
	setIf(&cfg.Flips, fc.Flips)
	setIf(&cfg.Probability, fc.Probability)
	setIf(&cfg.Batch, fc.Batch)
	setIf(&cfg.Session, fc.Session)
	setIf(&cfg.DBPath, fc.DBPath)
	setIf(&cfg.Addr, fc.Addr)
	setIf(&cfg.Confidence, fc.Confidence)
	setIf(&cfg.Runs, fc.Runs)
	setIf(&cfg.Workers, fc.Workers)
	setIf(&cfg.Quiet, fc.Quiet)
	setIf(&cfg.Verbose, fc.Verbose)
	setIf(&cfg.NoColor, fc.NoColor)
	setIf(&cfg.LogLevel, fc.LogLevel)
	setIf(&cfg.OTelEndpoint, fc.OTelEndpoint)
	if fc.Seed != nil {
		cfg.Seed, cfg.HasSeed = *fc.Seed, true
	}
	if fc.Timeout != nil {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return AppConfig{}, err
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
