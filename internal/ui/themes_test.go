package ui

import "testing"

// Tests in this file mutate the package theme and must not run in parallel.

func TestSetTheme(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())

	tests := []struct {
		name string
		want string
	}{
		{"dark", "dark"},
		{"light", "light"},
		{"none", "none"},
		{"neon", "dark"},
	}
	for _, tt := range tests {
		SetTheme(tt.name)
		if got := GetCurrentTheme().Name; got != tt.want {
			t.Errorf("SetTheme(%q) -> %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestInitTheme(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())

	t.Run("flag disables colors", func(t *testing.T) {
		InitTheme(true)
		if GetCurrentTheme().Name != "none" {
			t.Errorf("expected none theme, got %q", GetCurrentTheme().Name)
		}
		if ColorRed() != "" || ColorReset() != "" {
			t.Error("color accessors should be empty without colors")
		}
	})

	t.Run("NO_COLOR disables colors", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		InitTheme(false)
		if GetCurrentTheme().Name != "none" {
			t.Errorf("expected none theme, got %q", GetCurrentTheme().Name)
		}
	})
}

func TestGetCurrentTUITheme(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())

	SetTheme("none")
	if GetCurrentTUITheme() != NoColorTUITheme {
		t.Error("none theme should map to NoColorTUITheme")
	}
	SetTheme("light")
	if GetCurrentTUITheme() != LightTUITheme {
		t.Error("light theme should map to LightTUITheme")
	}
	SetTheme("dark")
	if GetCurrentTUITheme() != DarkTUITheme {
		t.Error("dark theme should map to DarkTUITheme")
	}
}

func TestPaintAndOutcomeColor(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())

	SetCurrentTheme(DarkTheme)
	if got := Paint(ColorGreen(), "ok"); got != DarkTheme.Success+"ok"+DarkTheme.Reset {
		t.Errorf("Paint() = %q", got)
	}
	if OutcomeColor(true) != DarkTheme.Heads || OutcomeColor(false) != DarkTheme.Tails {
		t.Error("unexpected outcome colors")
	}

	SetCurrentTheme(NoColorTheme)
	if got := Paint(ColorGreen(), "ok"); got != "ok" {
		t.Errorf("Paint() without colors = %q", got)
	}
}
