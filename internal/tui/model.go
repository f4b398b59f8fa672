// Package tui is a terminal front end for machines without a tray or global
// hotkeys. It drives the same handlers the hotkeys do.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/muesli/reflow/truncate"

	"github.com/dgnsrekt/narrator/internal/capture"
	"github.com/dgnsrekt/narrator/internal/speed"
	"github.com/dgnsrekt/narrator/internal/state"
)

// RefreshInterval is how often the view rereads the shared state.
const RefreshInterval = 100 * time.Millisecond

const ellipsis = "…"

// Actions are the producer handlers the keys call.
type Actions interface {
	Read() error
	TogglePause()
	Stop()
	Faster() speed.Preset
	Slower() speed.Preset
	Exit()
	InFlight() int
	Last() (capture.Result, error)
}

// Source exposes the state the view displays.
type Source interface {
	Playback() state.PlaybackState
}

type tickMsg time.Time

// snapshot is what the view shows. It may lag the controller by one tick.
type snapshot struct {
	playback state.PlaybackState
	speed    string
	inFlight int
	lastText string
	lastErr  error
	cached   bool
}

// Model is the bubbletea model.
type Model struct {
	actions Actions
	source  Source
	nav     speed.Navigator

	snap    snapshot
	notice  string
	spinner spinner.Model
	help    help.Model
	width   int
}

// New returns a model reading playback from source and speed from nav.
func New(actions Actions, source Source, nav speed.Navigator) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = speedStyle

	m := Model{
		actions: actions,
		source:  source,
		nav:     nav,
		spinner: sp,
		help:    help.New(),
		width:   80,
	}
	m.refresh()
	return m
}

func tick() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.refresh()
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""

	switch {
	case key.Matches(msg, keys.Quit):
		m.actions.Exit()
		return m, tea.Quit

	case key.Matches(msg, keys.Read):
		log.Debug("Read requested from terminal")
		if err := m.actions.Read(); err != nil {
			m.notice = err.Error()
		}

	case key.Matches(msg, keys.Pause):
		m.actions.TogglePause()

	case key.Matches(msg, keys.Stop):
		m.actions.Stop()

	case key.Matches(msg, keys.Faster):
		m.actions.Faster()

	case key.Matches(msg, keys.Slower):
		m.actions.Slower()
	}

	m.refresh()
	return m, nil
}

func (m *Model) refresh() {
	res, err := m.actions.Last()
	m.snap = snapshot{
		playback: m.source.Playback(),
		speed:    m.nav.Current().Label,
		inFlight: m.actions.InFlight(),
		lastText: res.Text,
		lastErr:  err,
		cached:   res.Cached,
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("narrator"))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "  %s   speed %s", playbackLabel(m.snap.playback), speedStyle.Render(m.snap.speed))
	if m.snap.inFlight > 0 {
		fmt.Fprintf(&b, "   %s synthesizing", m.spinner.View())
	}
	b.WriteString("\n\n")

	width := uint(max(m.width-4, 10))
	switch {
	case m.snap.lastErr != nil:
		b.WriteString("  " + errorStyle.Render(truncate.StringWithTail(m.snap.lastErr.Error(), width, ellipsis)))
	case m.snap.lastText != "":
		line := truncate.StringWithTail(m.snap.lastText, width, ellipsis)
		b.WriteString("  " + textStyle.Render(line))
		if m.snap.cached {
			b.WriteString(subtleStyle.Render(" (cached)"))
		}
	default:
		b.WriteString("  " + subtleStyle.Render("copy some text and press r"))
	}
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString("  " + subtleStyle.Render(m.notice) + "\n")
	}

	b.WriteString("\n  " + m.help.View(keys) + "\n")
	return b.String()
}

func playbackLabel(p state.PlaybackState) string {
	switch p {
	case state.Playing:
		return playingStyle.Render("▶ playing")
	case state.Paused:
		return pausedStyle.Render("⏸ paused")
	default:
		return idleStyle.Render("■ idle")
	}
}

// Run starts the program and blocks until the user quits or ctx is done.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
