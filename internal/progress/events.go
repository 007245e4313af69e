package progress

import "time"

type EventType string

const (
	EventScanStarted  EventType = "scan_started"
	EventScanWarning  EventType = "scan_warning"
	EventScanFinished EventType = "scan_finished"
	EventFileStarted  EventType = "file_started"
	EventFileFinished EventType = "file_finished"
	EventFileError    EventType = "file_error"
)

type Event struct {
	Type         EventType `json:"type"`
	At           time.Time `json:"at"`
	Root         string    `json:"root,omitempty"`
	File         string    `json:"file,omitempty"`
	Language     string    `json:"language,omitempty"`
	Status       string    `json:"status,omitempty"`
	Message      string    `json:"message,omitempty"`
	Error        string    `json:"error,omitempty"`
	FindingCount int       `json:"finding_count,omitempty"`
	FilesTotal   int       `json:"files_total,omitempty"`
	FilesDone    int       `json:"files_done,omitempty"`
	DurationMS   int64     `json:"duration_ms,omitempty"`
}
