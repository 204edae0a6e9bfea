package progress

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/thalespaiva/bgphijack/pkg/asrel"
)

var (
	phaseStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			Width(14)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

// Messages delivered to the model by Display.
type (
	phaseStartedMsg struct {
		phase asrel.Phase
		total int
	}
	phaseProgressMsg struct {
		phase asrel.Phase
		done  int
	}
	phaseFinishedMsg struct {
		phase   asrel.Phase
		elapsed time.Duration
	}
	stopMsg struct{}
)

type phaseState struct {
	phase   asrel.Phase
	total   int
	done    int
	elapsed time.Duration
	closed  bool
}

func (s phaseState) percent() float64 {
	if s.closed || s.total == 0 {
		return 1
	}
	return float64(s.done) / float64(s.total)
}

// model renders one bar per phase, in the order phases started.
type model struct {
	phases []phaseState
	bar    progress.Model
}

func newModel() model {
	return model{bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) find(phase asrel.Phase) int {
	for i := range m.phases {
		if m.phases[i].phase == phase {
			return i
		}
	}
	return -1
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-30, 10), 60)

	case phaseStartedMsg:
		if i := m.find(msg.phase); i >= 0 {
			m.phases[i] = phaseState{phase: msg.phase, total: msg.total}
		} else {
			m.phases = append(m.phases, phaseState{phase: msg.phase, total: msg.total})
		}

	case phaseProgressMsg:
		if i := m.find(msg.phase); i >= 0 {
			m.phases[i].done = min(m.phases[i].done+msg.done, m.phases[i].total)
		}

	case phaseFinishedMsg:
		if i := m.find(msg.phase); i >= 0 {
			m.phases[i].done = m.phases[i].total
			m.phases[i].elapsed = msg.elapsed
			m.phases[i].closed = true
		}

	case stopMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	if len(m.phases) == 0 {
		return helpStyle.Render("waiting for corpus...") + "\n"
	}

	var b strings.Builder
	for _, s := range m.phases {
		b.WriteString(phaseStyle.Render(string(s.phase)))
		b.WriteString(m.bar.ViewAs(s.percent()))
		if s.closed {
			b.WriteString(doneStyle.Render(fmt.Sprintf("  %d paths in %s", s.total, s.elapsed.Round(time.Millisecond))))
		} else {
			b.WriteString(fmt.Sprintf("  %d/%d", s.done, s.total))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
