package reporter

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ppiankov/benchforge/internal/runner"
	"github.com/ppiankov/benchforge/internal/style"
	"github.com/ppiankov/benchforge/internal/target"
)

// TUI styles
var (
	headerStyle = style.Get(style.Bright)
	failedStyle = style.Get(style.Red)
	runStyle    = style.Get(style.Cyan)
	doneStyle   = style.Get(style.Green)
	dimStyle    = style.Get(style.Dim)
	pauseStyle  = style.Get(style.Yellow).Bold(true)
)

type tickMsg time.Time

// DoneMsg tells the TUI that the mode run has finished.
type DoneMsg struct{}

// TUIModel is the Bubbletea model for the full-screen mode display.
type TUIModel struct {
	mode       target.Mode
	taskCount  int
	targets    []target.Target
	getResults func() map[string]runner.Progress
	cancelRun  func() // called on 'q' to cancel the session context

	results map[string]runner.Progress
	paused  bool
	frame   int
	width   int
	height  int
	done    bool
}

// NewTUIModel creates a new TUI model.
func NewTUIModel(mode target.Mode, taskCount int, targets []target.Target, getResults func() map[string]runner.Progress, cancelRun func()) TUIModel {
	return TUIModel{
		mode:       mode,
		taskCount:  taskCount,
		targets:    targets,
		getResults: getResults,
		cancelRun:  cancelRun,
		results:    make(map[string]runner.Progress),
	}
}

// Init implements tea.Model.
func (m TUIModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancelRun != nil {
				m.cancelRun()
			}
			m.done = true
			return m, tea.Quit
		case "p", " ":
			m.paused = !m.paused
		}

	case tickMsg:
		if !m.paused {
			m.results = m.getResults()
		}
		m.frame++
		return m, tickCmd()

	case DoneMsg:
		m.results = m.getResults()
		m.done = true
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// View implements tea.Model.
func (m TUIModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	header := fmt.Sprintf("benchforge: %s benchmark, %d tasks", m.mode.Title(), m.taskCount)
	if m.paused {
		header += "  " + pauseStyle.Render("⏸ PAUSED")
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	var done, running, failed, queued int
	for _, t := range m.targets {
		switch m.results[t.ID].State {
		case runner.StateCompleted:
			done++
		case runner.StateRunning:
			running++
		case runner.StateFailed:
			failed++
		default:
			queued++
		}
	}
	b.WriteString(m.progressLine(done, running, failed, queued))
	b.WriteString("\n\n")

	lines := m.targetLines()
	vis := max(m.height-5, 3)
	for i, line := range lines {
		if i >= vis {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  ↓ %d more", len(lines)-vis)))
			b.WriteString("\n")
			break
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	used := 3 + min(len(lines), vis+1)
	for i := used; i < m.height-1; i++ {
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("  p: pause  q: stop session"))

	return b.String()
}

func (m TUIModel) targetLines() []string {
	spinner := spinnerFrames[m.frame%len(spinnerFrames)]
	lines := make([]string, 0, len(m.targets))
	for _, t := range m.targets {
		p := m.results[t.ID]
		name := fmt.Sprintf("%-12s", t.Name)
		switch p.State {
		case runner.StateCompleted:
			ms := int64(0)
			if p.Result != nil {
				ms = p.Result.ElapsedMs
			}
			lines = append(lines, doneStyle.Render(fmt.Sprintf("  ✓ %-8s %s %s", "done", name, formatMs(ms))))
		case runner.StateFailed:
			msg := ""
			if p.Result != nil {
				msg = p.Result.Error
			}
			if len(msg) > 60 {
				msg = msg[:60] + "..."
			}
			lines = append(lines, failedStyle.Render(fmt.Sprintf("  ✗ %-8s %s %s", "FAILED", name, msg)))
		case runner.StateRunning:
			elapsed := time.Since(p.StartedAt).Truncate(100 * time.Millisecond)
			lines = append(lines, runStyle.Render(fmt.Sprintf("  %s %-8s %s %s", spinner, "running", name, elapsed)))
		default:
			lines = append(lines, dimStyle.Render(fmt.Sprintf("  ─ %-8s %s", "queued", name)))
		}
	}
	return lines
}

func (m TUIModel) progressLine(done, running, failed, queued int) string {
	var parts []string
	if done > 0 {
		parts = append(parts, doneStyle.Render(fmt.Sprintf("%d done", done)))
	}
	if running > 0 {
		parts = append(parts, runStyle.Render(fmt.Sprintf("%d running", running)))
	}
	if failed > 0 {
		parts = append(parts, failedStyle.Render(fmt.Sprintf("%d failed", failed)))
	}
	if queued > 0 {
		parts = append(parts, dimStyle.Render(fmt.Sprintf("%d queued", queued)))
	}
	return "  " + strings.Join(parts, "  ")
}
