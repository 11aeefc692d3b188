package tui

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/satindergrewal/ripcheck/internal/render"
)

// ProgressMsg reports the progress of the task at Index.
type ProgressMsg struct {
	Index int
	Value float64
}

// DoneMsg reports that the task at Index finished.
type DoneMsg struct {
	Index  int
	Report render.Report
}

// FinishedMsg reports that every task has finished.
type FinishedMsg struct{}

type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

type row struct {
	label   string
	percent float64
	report  *render.Report
}

// Model is a Bubble Tea model with one progress bar per file.
type Model struct {
	title    string
	rows     []row
	bar      progress.Model
	cancel   context.CancelFunc
	quitting bool
	finished bool
}

// NewModel creates a model for files, in order. Quitting calls cancel.
func NewModel(title string, files []string, cancel context.CancelFunc) Model {
	rows := make([]row, len(files))
	for i, f := range files {
		rows[i] = row{label: filepath.Base(f)}
	}
	return Model{
		title:  title,
		rows:   rows,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		cancel: cancel,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-LabelStyle.GetWidth()-24, 10), 60)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}

	case ProgressMsg:
		if r := m.row(msg.Index); r != nil && msg.Value > r.percent {
			r.percent = msg.Value
		}

	case DoneMsg:
		if r := m.row(msg.Index); r != nil {
			report := msg.Report
			r.report = &report
			if report.Status == render.StatusOK {
				r.percent = 1
			}
		}

	case FinishedMsg:
		m.finished = true
		return m, tea.Quit
	}

	return m, nil
}

// row returns the row at i, or nil. Rows are shared by copies of the model.
func (m Model) row(i int) *row {
	if i < 0 || i >= len(m.rows) {
		return nil
	}
	return &m.rows[i]
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title))
	b.WriteString("\n")

	for _, r := range m.rows {
		b.WriteString(LabelStyle.Render(r.label))
		b.WriteString(m.bar.ViewAs(r.percent))
		if r.report != nil {
			b.WriteString("  ")
			if r.report.Checksum != "" {
				b.WriteString(ChecksumStyle.Render(r.report.Checksum))
				b.WriteString(" ")
			}
			b.WriteString(StatusStyle(r.report.Status).Render(string(r.report.Status)))
		}
		b.WriteString("\n")
	}

	if !m.finished && !m.quitting {
		b.WriteString(HelpStyle.Render("Press q or Ctrl+C to cancel"))
		b.WriteString("\n")
	}
	return b.String()
}

// Reports returns the reports received so far, in file order.
func (m Model) Reports() []render.Report {
	var out []render.Report
	for _, r := range m.rows {
		if r.report != nil {
			out = append(out, *r.report)
		}
	}
	return out
}

// Forward sends every value from ch to p as a ProgressMsg for index. It
// returns when ch is closed.
func Forward(p *tea.Program, index int, ch <-chan float64) {
	for v := range ch {
		p.Send(ProgressMsg{Index: index, Value: v})
	}
}
