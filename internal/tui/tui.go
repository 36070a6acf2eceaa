// Package tui provides a Bubble Tea terminal browser for the version
// catalog: list the known releases, pick one, watch it download.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/ipsv/ipsv/internal/config"
	"github.com/ipsv/ipsv/internal/download"
	"github.com/ipsv/ipsv/internal/httpclient"
	"github.com/ipsv/ipsv/internal/version"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8B500"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// State represents the current UI state.
type State int

const (
	StateLoading State = iota
	StateBrowsing
	StateDownloading
	StateComplete
	StateError
)

// progressUpdate carries byte progress from the download callback.
type progressUpdate struct {
	written int64
	total   int64
}

// Message types
type (
	// CatalogMsg is sent once the catalog has been populated.
	CatalogMsg struct {
		Entries []*download.Meta
	}

	// ProgressMsg is sent while a version downloads.
	ProgressMsg progressUpdate

	// DownloadDoneMsg is sent when a download finishes.
	DownloadDoneMsg struct {
		Path string
		Err  error
	}
)

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	spinner  spinner.Model
	progress progress.Model
	settings *config.Settings
	manager  *download.Manager

	entries  []*download.Meta
	cursor   int
	selected *download.Meta

	resultPath string
	err        error
	written    int64
	total      int64

	progressCh chan progressUpdate

	ctx    context.Context
	cancel context.CancelFunc

	width  int
	height int
}

// NewModel creates a new TUI model over the given settings.
func NewModel(settings *config.Settings) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		state:      StateLoading,
		spinner:    sp,
		progress:   prog,
		settings:   settings,
		progressCh: make(chan progressUpdate, 16),
		ctx:        ctx,
		cancel:     cancel,
	}

	session, err := httpclient.New()
	if err != nil {
		m.state = StateError
		m.err = err
		return m
	}

	ch := m.progressCh
	m.manager = download.NewManager(
		download.IPSProfile{}, session, settings.Paths.Data, settings.LicenseURL,
		download.WithLogger(log.New(io.Discard)),
		download.WithProgressFunc(func(_ version.Version, written, total int64) {
			select {
			case ch <- progressUpdate{written: written, total: total}:
			default:
			}
		}),
	)

	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	if m.state == StateError {
		return nil
	}
	return tea.Batch(m.spinner.Tick, m.populateCatalog())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateDownloading {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			} else {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == StateBrowsing && m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.state == StateBrowsing && m.cursor < len(m.entries)-1 {
				m.cursor++
			}

		case "enter":
			if m.state == StateBrowsing && len(m.entries) > 0 {
				m.selected = m.entries[m.cursor]
				m.state = StateDownloading
				m.written, m.total = 0, 0
				return m, tea.Batch(m.getVersion(m.selected, true), m.waitForProgress(), m.spinner.Tick)
			}

		case "f":
			// Force a fresh download even when a cached copy exists.
			if m.state == StateBrowsing && len(m.entries) > 0 {
				m.selected = m.entries[m.cursor]
				m.state = StateDownloading
				m.written, m.total = 0, 0
				return m, tea.Batch(m.getVersion(m.selected, false), m.waitForProgress(), m.spinner.Tick)
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.state = StateBrowsing
				m.err = nil
				m.resultPath = ""
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case CatalogMsg:
		m.entries = msg.Entries
		m.cursor = len(m.entries) - 1 // start on the latest version
		if m.cursor < 0 {
			m.cursor = 0
		}
		m.state = StateBrowsing

	case ProgressMsg:
		m.written = msg.written
		m.total = msg.total
		if m.state == StateDownloading {
			cmds = append(cmds, m.waitForProgress())
			if m.total > 0 {
				cmds = append(cmds, m.progress.SetPercent(float64(m.written)/float64(m.total)))
			}
		}

	case DownloadDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.state = StateComplete
			m.resultPath = msg.Path
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("ipsv"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("IPS release cache"))
	b.WriteString("\n\n")

	switch m.state {
	case StateLoading:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(subtitleStyle.Render("Building version catalog..."))
		b.WriteString("\n")
	case StateBrowsing:
		b.WriteString(m.viewBrowsing())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(boxStyle.Render(fmt.Sprintf("Download complete\n\n%s", m.resultPath)))
		b.WriteString("\n")
	case StateError:
		b.WriteString(errorStyle.Render("Error:"))
		b.WriteString("\n\n")
		if m.err != nil {
			b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))

	return b.String()
}

func (m Model) viewBrowsing() string {
	var b strings.Builder

	if len(m.entries) == 0 {
		b.WriteString(infoStyle.Render("No versions available."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(subtitleStyle.Render("Available versions:"))
	b.WriteString("\n\n")

	for i, entry := range m.entries {
		marker := "  "
		line := entry.Version.String()
		if entry.Cached() {
			line += dimStyle.Render("  (cached)")
		} else {
			line += dimStyle.Render("  (remote)")
		}
		if i == len(m.entries)-1 {
			line += successStyle.Render("  latest")
		}
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
			line = cursorStyle.Render(entry.Version.String()) + line[len(entry.Version.String()):]
		}
		b.WriteString(marker + line + "\n")
	}

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Downloading %s...", m.selected.Version)))
	b.WriteString("\n\n")

	if m.total > 0 {
		b.WriteString(m.progress.ViewAs(float64(m.written) / float64(m.total)))
		b.WriteString("\n")
	}
	b.WriteString(infoStyle.Render(fmt.Sprintf("%.2f MB", float64(m.written)/1024/1024)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) helpText() string {
	switch m.state {
	case StateBrowsing:
		return "enter: download (cached ok) • f: force re-download • j/k: move • q: quit"
	case StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: back to list • q: quit"
	}
	return ""
}

// populateCatalog builds the catalog off the UI goroutine.
func (m Model) populateCatalog() tea.Cmd {
	return func() tea.Msg {
		m.manager.Populate(m.ctx)
		return CatalogMsg{Entries: m.manager.Versions()}
	}
}

// getVersion resolves one catalog entry, downloading as needed.
func (m Model) getVersion(meta *download.Meta, useCache bool) tea.Cmd {
	return func() tea.Msg {
		path, err := m.manager.Get(m.ctx, meta, useCache)
		return DownloadDoneMsg{Path: path, Err: err}
	}
}

// waitForProgress relays one progress update from the download callback.
func (m Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		return ProgressMsg(<-m.progressCh)
	}
}

// Run starts the TUI.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
