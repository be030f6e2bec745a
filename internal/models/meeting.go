package models

import (
	"strings"
	"time"
)

// Meeting is the owning record for a batch of chunks.
type Meeting struct {
	MeetingID    string    `json:"meeting_id"`
	Title        string    `json:"title"`
	Date         time.Time `json:"date"`
	Participants []string  `json:"participants,omitempty"`
	Platform     string    `json:"platform,omitempty"` // Teams, Zoom, Slack, ...
	Project      string    `json:"project,omitempty"`
	MeetingType  string    `json:"meeting_type,omitempty"` // standup, review, planning, ...
	Topics       []string  `json:"topics,omitempty"`
}

// Normalize trims the title and drops blank participants/topics.
func (m *Meeting) Normalize() {
	m.Title = strings.TrimSpace(m.Title)
	m.Participants = cleanList(m.Participants)
	m.Topics = cleanList(m.Topics)
}

// HistoricalMeeting is a prior meeting as supplied to the enrichment
// engine: metadata plus its stored chunks. The engine treats it as
// read-only input.
type HistoricalMeeting struct {
	MeetingID string        `json:"meeting_id"`
	Date      time.Time     `json:"date"`
	Topics    []string      `json:"topics,omitempty"`
	Chunks    []MemoryChunk `json:"chunks"`
}

// TranscriptJob is the message enqueued for asynchronous ingestion.
type TranscriptJob struct {
	Meeting    Meeting `json:"meeting"`
	Transcript string  `json:"transcript"`
	TraceID    string  `json:"trace_id,omitempty"`
}
