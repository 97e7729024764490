package logging

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// TestFieldHelpers tests the Field constructor functions.
func TestFieldHelpers(t *testing.T) {
	testErr := errors.New("test error")
	tests := []struct {
		name      string
		field     Field
		wantKey   string
		wantValue any
	}{
		{"String", String("session", "abc"), "session", "abc"},
		{"Int", Int("flips", 100), "flips", 100},
		{"Uint64", Uint64("total", 12345678901234567890), "total", uint64(12345678901234567890)},
		{"Float64", Float64("p_heads", 0.5), "p_heads", 0.5},
		{"Bool", Bool("consistent", true), "consistent", true},
		{"Err", Err(testErr), "error", testErr},
		{"Err nil", Err(nil), "error", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.field.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", tt.field.Key, tt.wantKey)
			}
			if tt.field.Value != tt.wantValue {
				t.Errorf("Value = %v, want %v", tt.field.Value, tt.wantValue)
			}
		})
	}
}

// TestNewLogger tests the custom logger constructor.
func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "session")

	logger.Info("flipped")
	output := buf.String()

	if !strings.Contains(output, "session") {
		t.Errorf("NewLogger should include component field, got: %s", output)
	}
	if !strings.Contains(output, "flipped") {
		t.Errorf("NewLogger should include message, got: %s", output)
	}
}

func TestNewDefaultLogger(t *testing.T) {
	if NewDefaultLogger() == nil {
		t.Fatal("NewDefaultLogger returned nil")
	}
}

// TestZerologAdapter_Levels covers Info, Warn, Debug and Error output.
func TestZerologAdapter_Levels(t *testing.T) {
	tests := []struct {
		name     string
		log      func(l Logger)
		contains []string
	}{
		{
			name:     "info with fields",
			log:      func(l Logger) { l.Info("batch done", String("command", "batch"), Int("n", 100)) },
			contains: []string{"batch done", "batch", "100", "info"},
		},
		{
			name:     "warn",
			log:      func(l Logger) { l.Warn("store unavailable") },
			contains: []string{"store unavailable", "warn"},
		},
		{
			name:     "debug",
			log:      func(l Logger) { l.Debug("draw", Float64("u", 0.3)) },
			contains: []string{"draw", "0.3", "debug"},
		},
		{
			name:     "error with cause",
			log:      func(l Logger) { l.Error("save failed", errors.New("disk full"), String("id", "s1")) },
			contains: []string{"save failed", "disk full", "s1", "error"},
		},
		{
			name:     "error with nil cause",
			log:      func(l Logger) { l.Error("odd", nil) },
			contains: []string{"odd", "error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewZerologAdapter(zerolog.New(&buf).Level(zerolog.DebugLevel))
			tt.log(l)
			for _, want := range tt.contains {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output should contain %q, got: %s", want, buf.String())
				}
			}
		})
	}
}

func TestZerologAdapter_PrintfPrintln(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "test")

	logger.Printf("heads=%d tails=%d", 3, 7)
	logger.Println("reset", "done")

	out := buf.String()
	if !strings.Contains(out, "heads=3 tails=7") {
		t.Errorf("Printf should format message, got: %s", out)
	}
	if !strings.Contains(out, "reset done") {
		t.Errorf("Println should join arguments, got: %s", out)
	}
}

// TestZerologAdapter_applyFields tests field application with all supported types.
func TestZerologAdapter_applyFields(t *testing.T) {
	tests := []struct {
		name     string
		field    Field
		contains string
	}{
		{"string field", Field{Key: "str", Value: "hello"}, "hello"},
		{"int field", Field{Key: "num", Value: 42}, "42"},
		{"int64 field", Field{Key: "big", Value: int64(9223372036854775807)}, "9223372036854775807"},
		{"uint64 field", Field{Key: "huge", Value: uint64(18446744073709551615)}, "18446744073709551615"},
		{"float64 field", Field{Key: "pi", Value: 3.14}, "3.14"},
		{"error field", Field{Key: "err", Value: errors.New("oops")}, "oops"},
		{"bool field", Field{Key: "flag", Value: true}, "true"},
		{"interface field", Field{Key: "data", Value: struct{ X int }{X: 1}}, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewLogger(&buf, "test").Info("test", tt.field)
			if !strings.Contains(buf.String(), tt.contains) {
				t.Errorf("applyFields should handle %s, output: %s", tt.name, buf.String())
			}
		})
	}
}

func TestStdLoggerAdapter(t *testing.T) {
	tests := []struct {
		name     string
		log      func(l Logger)
		contains []string
	}{
		{"info", func(l Logger) { l.Info("flip", String("outcome", "H")) }, []string{"[INFO]", "flip", "outcome=H"}},
		{"debug", func(l Logger) { l.Debug("trace", Int("line", 42)) }, []string{"[DEBUG]", "trace", "line=42"}},
		{"warn", func(l Logger) { l.Warn("slow") }, []string{"[WARN]", "slow"}},
		{"error", func(l Logger) { l.Error("failed", errors.New("boom"), String("db", "sqlite")) }, []string{"[ERROR]", "failed", "boom", "sqlite"}},
		{"printf", func(l Logger) { l.Printf("value is %d", 123) }, []string{"value is 123"}},
		{"println", func(l Logger) { l.Println("a", "b", "c") }, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(NewStdLoggerAdapter(log.New(&buf, "", 0)))
			for _, want := range tt.contains {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output should contain %q, got: %s", want, buf.String())
				}
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"off", zerolog.Disabled, false},
		{"verbose", zerolog.NoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// TestLoggerInterface verifies both adapters implement the Logger interface.
func TestLoggerInterface(t *testing.T) {
	var buf bytes.Buffer
	var _ Logger = NewLogger(&buf, "test")
	var _ Logger = NewStdLoggerAdapter(log.New(&buf, "", 0))
	var _ Logger = Nop()
}
