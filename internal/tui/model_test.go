package tui

import (
	"strings"
	"testing"
	"time"

	"sentinel/internal/progress"
)

func TestApplyEventLifecycle(t *testing.T) {
	m := newModel(nil)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	m.applyEvent(progress.Event{Type: progress.EventScanStarted, At: now, Root: "/repo", FilesTotal: 3})
	if m.root != "/repo" || m.filesTotal != 3 || m.status != "running" {
		t.Fatalf("after start: %+v", m)
	}

	m.applyEvent(progress.Event{Type: progress.EventFileStarted, File: "a.js"})
	if m.currentFile != "a.js" {
		t.Errorf("currentFile = %q", m.currentFile)
	}

	m.applyEvent(progress.Event{Type: progress.EventFileFinished, File: "a.js", FindingCount: 2})
	m.applyEvent(progress.Event{Type: progress.EventFileError, File: "b.js", Error: "permission denied"})
	if m.filesDone != 2 || m.findings != 2 || m.fileErrors != 1 {
		t.Fatalf("after files: done=%d findings=%d errors=%d", m.filesDone, m.findings, m.fileErrors)
	}

	m.applyEvent(progress.Event{
		Type:         progress.EventScanFinished,
		At:           now.Add(2 * time.Second),
		Status:       "complete",
		FindingCount: 2,
		DurationMS:   2000,
	})
	if !m.done || m.status != "complete" {
		t.Fatalf("after finish: done=%v status=%q", m.done, m.status)
	}
}

func TestViewShowsProgress(t *testing.T) {
	m := newModel(nil)
	m.applyEvent(progress.Event{Type: progress.EventScanStarted, Root: "/repo", FilesTotal: 5})
	m.applyEvent(progress.Event{Type: progress.EventFileFinished, File: "a.js", FindingCount: 1})

	view := m.View()
	for _, want := range []string{"Sentinel Scan", "/repo", "Files: 1/5", "Findings: 1"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestViewDetailsToggle(t *testing.T) {
	m := newModel(nil)
	m.applyEvent(progress.Event{Type: progress.EventFileFinished, File: "a.js"})

	if !strings.Contains(m.View(), "Recent Files") {
		t.Error("details shown by default")
	}
	m.showDetails = false
	if strings.Contains(m.View(), "Recent Files") {
		t.Error("details should hide when toggled off")
	}
}

func TestIncompleteStatusStyled(t *testing.T) {
	m := newModel(nil)
	m.applyEvent(progress.Event{Type: progress.EventScanFinished, Status: "incomplete", FindingCount: 1})
	if !strings.Contains(m.View(), "INCOMPLETE") {
		t.Error("incomplete status should surface in the view")
	}
}
