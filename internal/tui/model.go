package tui

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mediascrub/internal/processor"
)

const recentLines = 5

// Model renders batch progress from pipeline events. It quits once the
// pipeline reports completion or the event channel closes.
type Model struct {
	events  <-chan processor.Event
	cancel  func()
	started time.Time
	width   int

	progress    processor.ProgressState
	succeeded   int
	failed      int
	unsupported int
	bytesSaved  int64
	recent      []string

	summary    *processor.Summary
	cancelling bool
	quitting   bool
}

type doneMsg struct{}

type eventMsg processor.Event

// NewModel builds a Model reading from events. cancel is called when the user
// presses ctrl+c or q; the model keeps draining events until the pipeline
// finishes the file it is on.
func NewModel(events <-chan processor.Event, cancel func()) Model {
	return Model{events: events, cancel: cancel, started: time.Now()}
}

func (m Model) Init() tea.Cmd {
	return listenForEvents(m.events)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		m = m.apply(processor.Event(msg))
		if m.summary != nil {
			m.quitting = true
			return m, tea.Quit
		}
		return m, listenForEvents(m.events)
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if !m.cancelling && m.cancel != nil {
				m.cancel()
			}
			m.cancelling = true
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) apply(ev processor.Event) Model {
	switch ev.Kind {
	case processor.EventStart:
		m.progress.Total = ev.Progress.Total
	case processor.EventFileResult:
		res := ev.Result
		switch res.Outcome {
		case processor.OutcomeSuccess:
			m.succeeded++
			m.bytesSaved += res.BytesSaved
		case processor.OutcomeFailure:
			m.failed++
		default:
			m.unsupported++
		}
		m.recent = append(m.recent, resultLine(res))
		if len(m.recent) > recentLines {
			m.recent = m.recent[len(m.recent)-recentLines:]
		}
	case processor.EventProgress:
		m.progress = ev.Progress
	case processor.EventComplete:
		summary := ev.Summary
		m.summary = &summary
	}
	return m
}

// Summary returns the batch summary once the pipeline has reported it.
func (m Model) Summary() (processor.Summary, bool) {
	if m.summary == nil {
		return processor.Summary{}, false
	}
	return *m.summary, true
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = int(math.Min(60, float64(m.width-10)))
		if barWidth < 20 {
			barWidth = 20
		}
	}

	elapsed := time.Since(m.started).Round(time.Second)

	lines := []string{
		titleStyle.Render("mediascrub"),
		barStyle.Render(renderBar(barWidth, m.progress)) + " " + labelStyle.Render(ProgressText(m.progress)),
		labelStyle.Render(fmt.Sprintf("Cleaned: %d", m.succeeded)) +
			dimStyle.Render(fmt.Sprintf("  failed:%d  unsupported:%d  saved:%s", m.failed, m.unsupported, FormatBytes(m.bytesSaved))),
		dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
	}
	if len(m.recent) > 0 {
		lines = append(lines, "")
		lines = append(lines, m.recent...)
	}
	if m.cancelling {
		lines = append(lines, "", warnStyle.Render("Stopping after the current file..."))
	}
	return strings.Join(lines, "\n")
}

// ProgressText formats progress as "NN% (k/N)".
func ProgressText(p processor.ProgressState) string {
	return fmt.Sprintf("%d%% (%d/%d)", p.Percent(), p.Completed, p.Total)
}

func resultLine(res processor.StripResult) string {
	name := filepath.Base(res.Path)
	switch res.Outcome {
	case processor.OutcomeSuccess:
		return successStyle.Render("✓ ") + name
	case processor.OutcomeFailure:
		reason, _, _ := strings.Cut(res.Detail, "\n")
		return failStyle.Render("✗ ") + name + dimStyle.Render("  "+reason)
	default:
		return dimStyle.Render("- " + name + "  unsupported")
	}
}

func listenForEvents(events <-chan processor.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func renderBar(width int, p processor.ProgressState) string {
	ratio := 0.0
	if p.Total > 0 {
		ratio = float64(p.Completed) / float64(p.Total)
	}
	filled := int(math.Round(ratio * float64(width)))
	filled = min(max(filled, 0), width)
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle   = lipgloss.NewStyle().Foreground(ColorInk)
	barStyle     = lipgloss.NewStyle().Foreground(ColorAccentAlt)
	dimStyle     = lipgloss.NewStyle().Foreground(ColorDim)
	successStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	warnStyle    = lipgloss.NewStyle().Foreground(ColorWarn)
	failStyle    = lipgloss.NewStyle().Foreground(ColorFail)
)
