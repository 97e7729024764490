// Package tui implements the interactive coin flip dashboard.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/agbru/coinsim/internal/errors"
	"github.com/agbru/coinsim/internal/metrics"
	"github.com/agbru/coinsim/internal/orchestration"
	"github.com/agbru/coinsim/internal/sysmon"
)

// Layout constants for the TUI dashboard.
const (
	headerHeight        = 1
	footerHeight        = 1
	minBodyHeight       = 12
	CoinPanelWidth      = 22
	ChartsHeightPercent = 55
)

// LayoutManager holds terminal dimensions and provides layout calculations.
type LayoutManager struct {
	width  int
	height int
}

func (l LayoutManager) bodyHeight() int {
	return max(l.height-headerHeight-footerHeight, minBodyHeight)
}

func (l LayoutManager) topHeight() int {
	return l.bodyHeight() * ChartsHeightPercent / 100
}

func (l LayoutManager) bottomHeight() int {
	return l.bodyHeight() - l.topHeight()
}

func (l LayoutManager) chartWidth() int {
	return max(l.width-CoinPanelWidth, 0)
}

// Model is the root bubbletea model for the dashboard.
type Model struct {
	header  HeaderModel
	coin    CoinModel
	chart   ChartModel
	summary SummaryModel
	trend   TrendModel
	footer  FooterModel
	help    help.Model

	keymap KeyMap
	LayoutManager

	ctx      context.Context
	session  Executor
	snapshot orchestration.Snapshot
	rate     *metrics.FlipRate
	sampler  *sysmon.Sampler

	// queue holds commands issued while another one is running, so every
	// key press becomes exactly one Execute call, in order.
	queue    []orchestration.Command
	busy     bool
	showHelp bool
	exitCode int
}

// NewModel creates a dashboard driving sess.
func NewModel(ctx context.Context, sess Executor, version string) Model {
	keymap := DefaultKeyMap()
	p := sess.Probability()
	m := Model{
		header:   NewHeaderModel(version, sess.ID(), p),
		coin:     NewCoinModel(),
		chart:    NewChartModel(p),
		summary:  NewSummaryModel(),
		trend:    NewTrendModel(p),
		footer:   NewFooterModel(keymap),
		help:     help.New(),
		keymap:   keymap,
		ctx:      ctx,
		session:  sess,
		rate:     metrics.NewFlipRate(0.3),
		sampler:  sysmon.NewSampler(),
		exitCode: apperrors.ExitSuccess,
	}
	m.apply(sess.Snapshot())
	return m
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), sampleMemStatsCmd(), sampleSysStatsCmd(m.sampler), watchContextCmd(m.ctx))
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutPanels()
		return m, nil

	case SnapshotMsg:
		m.footer.SetError(nil)
		m.summary.SetRate(m.rate.Add(msg.Snapshot.Flipped()))
		m.apply(msg.Snapshot)
		if msg.Snapshot.Command == orchestration.Reset().Name() {
			m.trend.Reset()
			m.rate.Reset()
		} else if msg.Snapshot.Flipped() > 0 {
			m.trend.Add(msg.Snapshot.Summary.PHeads)
		}
		return m.next()

	case ErrorMsg:
		m.footer.SetError(msg.Err)
		return m.next()

	case TickMsg:
		return m, tea.Batch(sampleMemStatsCmd(), sampleSysStatsCmd(m.sampler), tickCmd())

	case MemStatsMsg:
		m.summary.UpdateMemory(metrics.MemorySnapshot(msg))
		return m, nil

	case SysStatsMsg:
		m.summary.UpdateSystem(sysmon.Stats(msg))
		return m, nil

	case ContextCancelledMsg:
		if apperrors.IsContextError(msg.Err) {
			m.exitCode = apperrors.ExitErrorCanceled
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil

	case m.showHelp:
		// Any other key closes the overlay.
		m.showHelp = false
		m.help.ShowAll = false
		return m, nil

	case key.Matches(msg, m.keymap.Flip):
		return m.enqueue(orchestration.FlipOnce())

	case key.Matches(msg, m.keymap.Batch):
		return m.enqueue(orchestration.FlipBatch())

	case key.Matches(msg, m.keymap.Reset):
		return m.enqueue(orchestration.Reset())
	}

	return m, nil
}

// enqueue runs cmd now, or after the running command completes.
func (m Model) enqueue(cmd orchestration.Command) (tea.Model, tea.Cmd) {
	if m.busy {
		m.queue = append(m.queue, cmd)
		m.footer.SetBusy(true, len(m.queue))
		return m, nil
	}
	m.busy = true
	m.footer.SetBusy(true, 0)
	return m, executeCmd(m.ctx, m.session, cmd)
}

// next starts the oldest queued command, if any.
func (m Model) next() (tea.Model, tea.Cmd) {
	if len(m.queue) == 0 {
		m.busy = false
		m.footer.SetBusy(false, 0)
		return m, nil
	}
	cmd := m.queue[0]
	m.queue = m.queue[1:]
	m.footer.SetBusy(true, len(m.queue))
	return m, executeCmd(m.ctx, m.session, cmd)
}

// apply renders snap in every panel.
func (m *Model) apply(snap orchestration.Snapshot) {
	m.snapshot = snap
	m.coin.Show(snap.State.LastOutcome, snap.State.TotalFlips() > 0)
	m.chart.SetObserved(snap.Summary.PHeads, snap.Summary.PTails)
	m.chart.SetTheoretical(snap.Summary.TheoHeads, snap.Summary.TheoTails)
	m.summary.SetSummary(snap.Summary)
}

// View renders the entire dashboard.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	header := m.header.View()
	footer := m.footer.View()

	var body string
	if m.showHelp {
		overlay := helpOverlayStyle.Render(
			panelTitleStyle.Render("Keys") + "\n\n" + m.help.View(m.keymap))
		body = lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, overlay)
	} else {
		top := lipgloss.JoinHorizontal(lipgloss.Top, m.coin.View(), m.chart.View())
		bottom := lipgloss.JoinHorizontal(lipgloss.Top, m.summary.View(), m.trend.View())
		body = lipgloss.JoinVertical(lipgloss.Left, top, bottom)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) layoutPanels() {
	m.header.SetWidth(m.width)
	m.footer.SetWidth(m.width)
	m.help.Width = m.width
	m.coin.SetSize(CoinPanelWidth, m.topHeight())
	m.chart.SetSize(m.chartWidth(), m.topHeight())
	half := m.width / 2
	m.summary.SetSize(half, m.bottomHeight())
	m.trend.SetSize(m.width-half, m.bottomHeight())
}

// Snapshot returns the last rendered snapshot.
func (m Model) Snapshot() orchestration.Snapshot { return m.snapshot }

// Run is the public entry point for the TUI mode.
// It creates the bubbletea program, runs it, and returns the exit code.
func Run(ctx context.Context, sess Executor, version string) int {
	// Rebuild styles from the current ui theme (set by app.Run via InitTheme).
	initTUIStyles()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(ctx, sess, version), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return apperrors.ExitErrorGeneric
	}
	if m, ok := finalModel.(Model); ok {
		return m.exitCode
	}
	return apperrors.ExitSuccess
}
