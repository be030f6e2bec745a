package models

import (
	"strings"
	"time"
)

// InteractionType classifies how a statement functions in the conversation.
type InteractionType string

const (
	InteractionRequest     InteractionType = "request"
	InteractionQuestion    InteractionType = "question"
	InteractionAnswer      InteractionType = "answer"
	InteractionDecision    InteractionType = "decision"
	InteractionCommitment  InteractionType = "commitment"
	InteractionUpdate      InteractionType = "update"
	InteractionExplanation InteractionType = "explanation"
	InteractionDiscussion  InteractionType = "discussion"
)

// ParseInteractionType maps a raw string onto the closed enum. Unknown
// values fall back to discussion rather than failing the chunk.
func ParseInteractionType(s string) InteractionType {
	switch InteractionType(strings.ToLower(strings.TrimSpace(s))) {
	case InteractionRequest, InteractionQuestion, InteractionAnswer, InteractionDecision,
		InteractionCommitment, InteractionUpdate, InteractionExplanation, InteractionDiscussion:
		return InteractionType(strings.ToLower(strings.TrimSpace(s)))
	default:
		return InteractionDiscussion
	}
}

// MemoryType classifies what kind of fact a chunk captures.
type MemoryType string

const (
	MemoryDecision   MemoryType = "decision"
	MemoryAction     MemoryType = "action"
	MemoryTopic      MemoryType = "topic"
	MemoryQuestion   MemoryType = "question"
	MemoryCommitment MemoryType = "commitment"
	MemoryReference  MemoryType = "reference"
	MemoryRisk       MemoryType = "risk"
	MemoryTemporal   MemoryType = "temporal"
	MemoryRequest    MemoryType = "request"
	MemoryTechnical  MemoryType = "technical"
)

// ParseMemoryType maps a raw string onto the closed enum, defaulting to topic.
func ParseMemoryType(s string) MemoryType {
	switch MemoryType(strings.ToLower(strings.TrimSpace(s))) {
	case MemoryDecision, MemoryAction, MemoryTopic, MemoryQuestion, MemoryCommitment,
		MemoryReference, MemoryRisk, MemoryTemporal, MemoryRequest, MemoryTechnical:
		return MemoryType(strings.ToLower(strings.TrimSpace(s)))
	default:
		return MemoryTopic
	}
}

// Defaults applied to chunk drafts with missing fields.
const (
	DefaultImportance = 5.0
	DefaultConfidence = 0.8
)

// TemporalReference is an explicit reference to past or future time.
// References with a concrete TargetDate decay ten times slower than
// inferred ones.
type TemporalReference struct {
	Type       string     `json:"type"` // past_reference | future_reference | deadline
	Text       string     `json:"text"`
	TargetDate *time.Time `json:"target_date,omitempty"`
	Confidence float64    `json:"confidence"`
}

// VersionInfo records that a chunk describes a version of a named artifact.
type VersionInfo struct {
	Artifact        string   `json:"artifact"`
	Version         string   `json:"version"`
	PreviousVersion string   `json:"previous_version,omitempty"`
	Changes         []string `json:"changes,omitempty"`
	Rationale       string   `json:"rationale,omitempty"`
}

// StructuredData holds extracted tables, schemas or specifications.
type StructuredData struct {
	Type    string `json:"type"`   // table | schema | specification | model | api
	Content string `json:"content"`
	Format  string `json:"format"` // markdown | json | yaml | sql
	Title   string `json:"title,omitempty"`
}

// MemoryChunk is the atomic extracted fact: one statement from a meeting
// with its speaker, temporal position and derived links.
type MemoryChunk struct {
	ChunkID   string    `json:"chunk_id"`
	MeetingID string    `json:"meeting_id"`
	Timestamp time.Time `json:"timestamp"`

	Speaker     string   `json:"speaker"`
	AddressedTo []string `json:"addressed_to,omitempty"` // empty = broadcast

	InteractionType InteractionType `json:"interaction_type"`
	MemoryType      MemoryType      `json:"memory_type"`

	Content     string `json:"content"`
	FullContext string `json:"full_context"`

	TemporalMarkers    []string            `json:"temporal_markers,omitempty"`
	TemporalReferences []TemporalReference `json:"temporal_references,omitempty"`
	TopicsDiscussed    []string            `json:"topics_discussed,omitempty"`
	EntitiesMentioned  []string            `json:"entities_mentioned,omitempty"`

	VersionInfo    *VersionInfo    `json:"version_info,omitempty"`
	StructuredData *StructuredData `json:"structured_data,omitempty"`

	ReferencesPast []PastReference `json:"references_past,omitempty"`
	CreatesFuture  []FutureLink    `json:"creates_future,omitempty"`
	DriftNotes     []DriftNote     `json:"drift_notes,omitempty"`

	ImportanceScore float64 `json:"importance_score"`
	Confidence      float64 `json:"confidence"`
}

// ClampUnit clamps a confidence value into [0,1].
func ClampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampImportance clamps an importance score into [1,10].
func ClampImportance(v float64) float64 {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}

// Normalize trims text fields, drops blank list entries, applies the
// documented defaults for missing required fields and clamps scores.
// Scores are clamped, never rejected.
func (c *MemoryChunk) Normalize() {
	c.Content = strings.TrimSpace(c.Content)
	c.FullContext = strings.TrimSpace(c.FullContext)
	c.AddressedTo = cleanList(c.AddressedTo)
	c.TemporalMarkers = cleanList(c.TemporalMarkers)
	c.TopicsDiscussed = cleanList(c.TopicsDiscussed)
	c.EntitiesMentioned = cleanList(c.EntitiesMentioned)

	c.InteractionType = ParseInteractionType(string(c.InteractionType))
	c.MemoryType = ParseMemoryType(string(c.MemoryType))

	if c.ImportanceScore == 0 {
		c.ImportanceScore = DefaultImportance
	}
	if c.Confidence == 0 {
		c.Confidence = DefaultConfidence
	}
	c.ImportanceScore = ClampImportance(c.ImportanceScore)
	c.Confidence = ClampUnit(c.Confidence)

	// A version record without an artifact name cannot be chained.
	if c.VersionInfo != nil && strings.TrimSpace(c.VersionInfo.Artifact) == "" {
		c.VersionInfo = nil
	}
}

// ContextText returns the richest text available for overlap scoring.
func (c *MemoryChunk) ContextText() string {
	if c.FullContext != "" {
		return c.FullContext
	}
	return c.Content
}

// IsTemporal reports whether the chunk carries any temporal significance.
func (c *MemoryChunk) IsTemporal() bool {
	return len(c.TemporalMarkers) > 0 || len(c.TemporalReferences) > 0 || c.VersionInfo != nil
}

// MentionsTerm reports whether the chunk lists term as a topic or entity.
func (c *MemoryChunk) MentionsTerm(term string) bool {
	t := strings.ToLower(strings.TrimSpace(term))
	for _, s := range c.TopicsDiscussed {
		if strings.ToLower(s) == t {
			return true
		}
	}
	for _, s := range c.EntitiesMentioned {
		if strings.ToLower(s) == t {
			return true
		}
	}
	return false
}

func cleanList(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if v := strings.TrimSpace(s); v != "" {
			out = append(out, v)
		}
	}
	return out
}
