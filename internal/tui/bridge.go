package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/coinsim/internal/metrics"
	"github.com/agbru/coinsim/internal/orchestration"
	"github.com/agbru/coinsim/internal/sysmon"
)

// Executor is the part of orchestration.Session the dashboard drives.
type Executor interface {
	ID() string
	Probability() float64
	Snapshot() orchestration.Snapshot
	Execute(ctx context.Context, cmd orchestration.Command) (orchestration.Snapshot, error)
}

var _ Executor = (*orchestration.Session)(nil)

// SnapshotMsg carries the result of a successful command.
type SnapshotMsg struct {
	Snapshot orchestration.Snapshot
	Duration time.Duration
}

// ErrorMsg carries a failed command.
type ErrorMsg struct {
	Command string
	Err     error
}

// TickMsg drives the periodic refresh.
type TickMsg time.Time

// MemStatsMsg carries a runtime memory reading.
type MemStatsMsg metrics.MemorySnapshot

// SysStatsMsg carries a host and process resource reading.
type SysStatsMsg sysmon.Stats

// ContextCancelledMsg reports that the parent context is done.
type ContextCancelledMsg struct {
	Err error
}

// executeCmd runs one command against the session off the UI goroutine.
func executeCmd(ctx context.Context, sess Executor, cmd orchestration.Command) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		snap, err := sess.Execute(ctx, cmd)
		if err != nil {
			return ErrorMsg{Command: cmd.Name(), Err: err}
		}
		return SnapshotMsg{Snapshot: snap, Duration: time.Since(start)}
	}
}

// tickCmd returns a command that sends a TickMsg after 500ms.
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// sampleMemStatsCmd reads runtime memory stats.
func sampleMemStatsCmd() tea.Cmd {
	return func() tea.Msg {
		return MemStatsMsg(metrics.ReadMemory())
	}
}

// sampleSysStatsCmd reads host CPU and memory usage.
func sampleSysStatsCmd(s *sysmon.Sampler) tea.Cmd {
	return func() tea.Msg {
		return SysStatsMsg(s.Sample())
	}
}

// watchContextCmd waits for context cancellation and sends a message.
func watchContextCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCancelledMsg{Err: ctx.Err()}
	}
}
