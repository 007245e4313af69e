// Package tui renders live scan progress in the terminal. It consumes
// the scan's progress events from a channel and quits when the channel
// closes or the scan-finished event arrives.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sentinel/internal/progress"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

type eventMsg struct {
	event progress.Event
	ok    bool
}

type tickMsg time.Time

type uiModel struct {
	events <-chan progress.Event

	root       string
	status     string
	startedAt  time.Time
	finishedAt time.Time

	filesTotal int
	filesDone  int
	findings   int
	fileErrors int

	currentFile string
	showDetails bool
	done        bool

	logLines []string
	tick     int
}

func newModel(events <-chan progress.Event) uiModel {
	return uiModel{
		events:      events,
		status:      "running",
		showDetails: true,
		logLines:    make([]string, 0, 16),
	}
}

func waitForEvent(ch <-chan progress.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		return eventMsg{event: ev, ok: ok}
	}
}

func nextTick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m uiModel) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), nextTick())
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "d":
			m.showDetails = !m.showDetails
		case "q", "ctrl+c":
			if m.done {
				return m, tea.Quit
			}
		}
		return m, nil
	case eventMsg:
		if !msg.ok {
			m.done = true
			return m, tea.Quit
		}
		m.applyEvent(msg.event)
		if m.done {
			return m, tea.Quit
		}
		return m, waitForEvent(m.events)
	case tickMsg:
		m.tick++
		if m.done {
			return m, nil
		}
		return m, nextTick()
	default:
		return m, nil
	}
}

func (m uiModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Sentinel Scan"))
	b.WriteString("\n")
	if m.status == "running" {
		b.WriteString(fmt.Sprintf("Active: %s\n", runningStyle.Render(m.spinnerFrame())))
	}
	b.WriteString(fmt.Sprintf("Root: %s\n", valueOrDash(m.root)))
	b.WriteString(fmt.Sprintf("Status: %s\n", styleStatus(m.status).Render(strings.ToUpper(valueOrDash(m.status)))))
	b.WriteString(fmt.Sprintf("Files: %d/%d\n", m.filesDone, m.filesTotal))
	b.WriteString(fmt.Sprintf("Findings: %d\n", m.findings))
	if m.fileErrors > 0 {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Errors: %d", m.fileErrors)))
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("Elapsed: %s\n", m.elapsedString()))
	if m.currentFile != "" && m.status == "running" {
		b.WriteString(fmt.Sprintf("Scanning: %s\n", runningStyle.Render(m.currentFile)))
	}

	if m.showDetails {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Recent Files"))
		b.WriteString("\n")
		if len(m.logLines) == 0 {
			b.WriteString(idleStyle.Render("No activity yet."))
			b.WriteString("\n")
		} else {
			for _, line := range m.logLines {
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(helpStyle.Render("Press q to close"))
	} else {
		b.WriteString(helpStyle.Render("d toggle details"))
	}
	b.WriteString("\n")

	return b.String()
}

func (m *uiModel) applyEvent(e progress.Event) {
	switch e.Type {
	case progress.EventScanStarted:
		m.root = e.Root
		m.status = "running"
		m.filesTotal = e.FilesTotal
		if !e.At.IsZero() {
			m.startedAt = e.At
		}
		m.appendLine(e, fmt.Sprintf("scan started (%d files)", e.FilesTotal))
	case progress.EventScanWarning:
		m.appendLine(e, "warning: "+firstNonEmpty(e.Message, e.Error))
	case progress.EventFileStarted:
		m.currentFile = e.File
	case progress.EventFileFinished:
		m.filesDone++
		m.findings += e.FindingCount
		if e.FindingCount > 0 {
			m.appendLine(e, warnStyle.Render(fmt.Sprintf("%s: %d finding(s)", e.File, e.FindingCount)))
		} else {
			m.appendLine(e, okStyle.Render(e.File+": clean"))
		}
	case progress.EventFileError:
		m.filesDone++
		m.fileErrors++
		m.appendLine(e, errorStyle.Render(fmt.Sprintf("%s: %s", e.File, e.Error)))
	case progress.EventScanFinished:
		m.status = firstNonEmpty(e.Status, "complete")
		m.findings = e.FindingCount
		if !e.At.IsZero() {
			m.finishedAt = e.At
		}
		m.done = true
		m.appendLine(e, fmt.Sprintf("scan %s: %d finding(s) in %s",
			m.status, e.FindingCount, durationString(e.DurationMS)))
	}
}

func (m *uiModel) appendLine(e progress.Event, text string) {
	ts := e.At
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	line := fmt.Sprintf("[%s] %s", ts.Format("15:04:05"), strings.TrimSpace(text))
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > 12 {
		m.logLines = m.logLines[len(m.logLines)-12:]
	}
}

func (m uiModel) elapsedString() string {
	if m.startedAt.IsZero() {
		return "0s"
	}
	end := time.Now().UTC()
	if !m.finishedAt.IsZero() {
		end = m.finishedAt
	}
	return end.Sub(m.startedAt).Round(time.Second).String()
}

func (m uiModel) spinnerFrame() string {
	frames := []string{"-", "\\", "|", "/"}
	return frames[m.tick%len(frames)]
}

func durationString(ms int64) string {
	if ms <= 0 {
		return "0s"
	}
	return (time.Duration(ms) * time.Millisecond).Round(time.Millisecond).String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}

func valueOrDash(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "-"
	}
	return v
}

func styleStatus(status string) lipgloss.Style {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "complete":
		return okStyle
	case "incomplete":
		return warnStyle
	case "failed":
		return errorStyle
	case "running":
		return runningStyle
	default:
		return idleStyle
	}
}
