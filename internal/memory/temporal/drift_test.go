package temporal

import (
	"fmt"
	"testing"
	"time"

	"MeetMind/internal/models"
)

func driftHistory(term string, contexts []string) []models.HistoricalMeeting {
	date := baseTime.Add(-30 * 24 * time.Hour)
	m := models.HistoricalMeeting{MeetingID: "m_hist", Date: date}
	for i, ctx := range contexts {
		m.Chunks = append(m.Chunks, models.MemoryChunk{
			ChunkID:         fmt.Sprintf("hist_%d", i),
			MeetingID:       "m_hist",
			Timestamp:       date.Add(time.Duration(i) * time.Hour),
			Content:         ctx,
			TopicsDiscussed: []string{term},
		})
	}
	return []models.HistoricalMeeting{m}
}

func TestDetectFlagsShiftedUsage(t *testing.T) {
	history := driftHistory("pipeline", []string{
		"jenkins build pipeline stages compile test deploy artifacts",
		"pipeline failure during deploy stage jenkins agent offline",
		"speeding up the build pipeline caching compile artifacts",
	})
	chunk := &models.MemoryChunk{
		ChunkID:         "now",
		MeetingID:       "m_now",
		Timestamp:       baseTime,
		Content:         "the ingestion pipeline drops malformed sensor events silently",
		TopicsDiscussed: []string{"pipeline"},
	}

	notes := NewDriftDetector(DriftConfig{}).Detect(chunk, NewCandidateIndex(history))
	if len(notes) != 1 {
		t.Fatalf("got %d drift notes, want 1", len(notes))
	}
	n := notes[0]
	if n.Term != "pipeline" {
		t.Fatalf("term = %q, want pipeline", n.Term)
	}
	if n.AverageOverlap >= 0.3 {
		t.Fatalf("average overlap = %v, want < 0.3", n.AverageOverlap)
	}
	if !n.DetectedAt.Equal(baseTime) {
		t.Fatalf("DetectedAt = %v, want chunk timestamp", n.DetectedAt)
	}
}

func TestDetectFlagsShiftedEntityUsage(t *testing.T) {
	history := driftHistory("pipeline", []string{
		"jenkins build pipeline stages compile test deploy artifacts",
		"pipeline failure during deploy stage jenkins agent offline",
		"speeding up the build pipeline caching compile artifacts",
	})
	// The term appears only as an entity on the new chunk; entities and
	// topics are judged the same way.
	chunk := &models.MemoryChunk{
		ChunkID:           "now",
		MeetingID:         "m_now",
		Timestamp:         baseTime,
		Content:           "the ingestion pipeline drops malformed sensor events silently",
		EntitiesMentioned: []string{"pipeline"},
	}

	notes := NewDriftDetector(DriftConfig{}).Detect(chunk, NewCandidateIndex(history))
	if len(notes) != 1 {
		t.Fatalf("got %d drift notes for an entity-only term, want 1", len(notes))
	}
	if notes[0].Term != "pipeline" {
		t.Fatalf("term = %q, want pipeline", notes[0].Term)
	}
}

func TestDetectDeduplicatesTopicAndEntity(t *testing.T) {
	history := driftHistory("pipeline", []string{
		"jenkins build pipeline stages compile test deploy artifacts",
		"pipeline failure during deploy stage jenkins agent offline",
		"speeding up the build pipeline caching compile artifacts",
	})
	chunk := &models.MemoryChunk{
		ChunkID:           "now",
		MeetingID:         "m_now",
		Timestamp:         baseTime,
		Content:           "the ingestion pipeline drops malformed sensor events silently",
		TopicsDiscussed:   []string{"pipeline"},
		EntitiesMentioned: []string{"Pipeline"},
	}

	if notes := NewDriftDetector(DriftConfig{}).Detect(chunk, NewCandidateIndex(history)); len(notes) != 1 {
		t.Fatalf("got %d drift notes for a term listed as both topic and entity, want 1", len(notes))
	}
}

func TestDetectSkipsThinHistory(t *testing.T) {
	history := driftHistory("pipeline", []string{
		"jenkins build pipeline stages compile test deploy",
		"pipeline failure during deploy stage",
	})
	chunk := &models.MemoryChunk{
		ChunkID:         "now",
		Timestamp:       baseTime,
		Content:         "the ingestion pipeline drops malformed sensor events",
		TopicsDiscussed: []string{"pipeline"},
	}

	if notes := NewDriftDetector(DriftConfig{}).Detect(chunk, NewCandidateIndex(history)); len(notes) != 0 {
		t.Fatalf("flagged drift with only 2 prior usages: %+v", notes)
	}
}

func TestDetectAcceptsConsistentUsage(t *testing.T) {
	history := driftHistory("pipeline", []string{
		"the ingestion pipeline drops malformed sensor events silently",
		"ingestion pipeline backpressure when sensor events burst",
		"retry policy for the ingestion pipeline sensor events queue",
	})
	chunk := &models.MemoryChunk{
		ChunkID:         "now",
		Timestamp:       baseTime,
		Content:         "the ingestion pipeline drops malformed sensor events silently",
		TopicsDiscussed: []string{"pipeline"},
	}

	if notes := NewDriftDetector(DriftConfig{}).Detect(chunk, NewCandidateIndex(history)); len(notes) != 0 {
		t.Fatalf("flagged drift for consistent usage: %+v", notes)
	}
}

func TestDetectComparesOnlyRecentUsages(t *testing.T) {
	// Seven usages: the five most recent match the chunk's vocabulary,
	// the two oldest do not. Only the recent window counts.
	contexts := []string{
		"jenkins build pipeline stages compile test deploy artifacts",
		"pipeline failure during deploy stage jenkins agent offline",
		"the ingestion pipeline drops malformed sensor events silently",
		"ingestion pipeline backpressure when sensor events burst arrive",
		"retry policy for the ingestion pipeline sensor events queue",
		"ingestion pipeline schema validation for malformed sensor events",
		"alerting when the ingestion pipeline drops sensor events",
	}
	history := driftHistory("pipeline", contexts)
	chunk := &models.MemoryChunk{
		ChunkID:         "now",
		Timestamp:       baseTime,
		Content:         "the ingestion pipeline drops malformed sensor events silently",
		TopicsDiscussed: []string{"pipeline"},
	}

	if notes := NewDriftDetector(DriftConfig{}).Detect(chunk, NewCandidateIndex(history)); len(notes) != 0 {
		t.Fatalf("old usages outside the window influenced the verdict: %+v", notes)
	}
}

func TestDetectSuggestsEquivalentTerm(t *testing.T) {
	history := driftHistory("pipeline", []string{
		"jenkins build pipeline stages compile test deploy artifacts",
		"pipeline failure during deploy stage jenkins agent offline",
		"speeding up the build pipeline caching compile artifacts",
	})
	for i := range history[0].Chunks {
		history[0].Chunks[i].TopicsDiscussed = append(history[0].Chunks[i].TopicsDiscussed, "ci")
	}
	chunk := &models.MemoryChunk{
		ChunkID:         "now",
		Timestamp:       baseTime,
		Content:         "the ingestion pipeline drops malformed sensor events silently",
		TopicsDiscussed: []string{"pipeline"},
	}

	notes := NewDriftDetector(DriftConfig{}).Detect(chunk, NewCandidateIndex(history))
	if len(notes) != 1 {
		t.Fatalf("got %d drift notes, want 1", len(notes))
	}
	if notes[0].Equivalent != "ci" {
		t.Fatalf("equivalent = %q, want ci", notes[0].Equivalent)
	}
}
