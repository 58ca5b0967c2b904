// Package ui renders the terminal progress view of `viewc build` and
// `viewc check`.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"viewc/internal/buildpipeline"
)

type progressModel struct {
	title      string
	events     <-chan buildpipeline.Event
	final      buildpipeline.Stage
	spinner    spinner.Model
	prog       progress.Model
	items      []fileItem
	index      map[string]int
	stageLabel string
	width      int
	done       bool
}

type fileItem struct {
	path     string
	status   string
	stage    buildpipeline.Stage
	finished bool
}

type eventMsg buildpipeline.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders pipeline
// progress. A file counts as finished once it reaches final or fails.
// Files not listed up front are added when their first event arrives.
func NewProgressModel(title string, files []string, final buildpipeline.Stage, events <-chan buildpipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		final:   final,
		spinner: sp,
		prog:    prog,
		index:   make(map[string]int, len(files)),
		width:   80,
	}
	for _, file := range files {
		m.add(file)
	}
	return m
}

func (m *progressModel) add(file string) int {
	m.items = append(m.items, fileItem{path: file, status: "queued"})
	m.index[file] = len(m.items) - 1
	return len(m.items) - 1
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		ev := buildpipeline.Event(msg)
		cmd := m.applyEvent(ev)
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.stageLabel != "" {
		header = fmt.Sprintf("%s (%s)", header, m.stageLabel)
	}
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	nameWidth := max(m.width-statusWidth-4, 20)

	failed := 0
	for _, item := range m.items {
		if item.status == "error" {
			failed++
		}
		name := truncate(item.path, nameWidth)
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%12s", item.status))
		fmt.Fprintf(&b, "  %s %s\n", statusStyled, name)
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.ViewAs(m.percent()))
	}
	b.WriteString("\n")
	if failed > 0 {
		b.WriteString(styleStatus("error").Render(fmt.Sprintf("%d of %d files with errors", failed, len(m.items))))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev buildpipeline.Event) tea.Cmd {
	label := statusLabel(ev.Stage, ev.Status, ev.Cached)
	if ev.File == "" {
		if label != "" {
			m.stageLabel = label
		}
		return nil
	}
	idx, ok := m.index[ev.File]
	if !ok {
		idx = m.add(ev.File)
	}
	item := &m.items[idx]
	if item.finished && ev.Status != buildpipeline.StatusError {
		return nil
	}
	if label != "" {
		item.status = label
		item.stage = ev.Stage
	}
	switch ev.Status {
	case buildpipeline.StatusError:
		item.finished = true
	case buildpipeline.StatusDone:
		item.finished = ev.Stage == m.final
		if !item.finished {
			// Between stages the file is waiting for the next one.
			item.status = finishedLabel(ev.Stage)
		}
	}
	return m.prog.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range m.items {
		if item.finished {
			total++
			continue
		}
		total += progressFromStage(item.stage)
	}
	return total / float64(len(m.items))
}

func progressFromStage(stage buildpipeline.Stage) float64 {
	switch stage {
	case buildpipeline.StageParse:
		return 0.2
	case buildpipeline.StageCheck:
		return 0.5
	case buildpipeline.StageEmit:
		return 0.9
	default:
		return 0.0
	}
}

func statusLabel(stage buildpipeline.Stage, status buildpipeline.Status, cached bool) string {
	switch status {
	case buildpipeline.StatusQueued:
		return "queued"
	case buildpipeline.StatusDone:
		if cached {
			return "cached"
		}
		return "done"
	case buildpipeline.StatusError:
		return "error"
	case buildpipeline.StatusWorking:
		return stageLabel(stage)
	default:
		return ""
	}
}

func stageLabel(stage buildpipeline.Stage) string {
	switch stage {
	case buildpipeline.StageParse:
		return "parsing"
	case buildpipeline.StageCheck:
		return "checking"
	case buildpipeline.StageEmit:
		return "emitting"
	default:
		return ""
	}
}

func finishedLabel(stage buildpipeline.Stage) string {
	switch stage {
	case buildpipeline.StageParse:
		return "parsed"
	case buildpipeline.StageCheck:
		return "checked"
	default:
		return "done"
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done", "cached":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "parsing", "checking", "emitting":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
