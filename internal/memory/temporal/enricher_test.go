package temporal

import (
	"math"
	"testing"
	"time"

	"MeetMind/internal/models"
)

func findRef(c *models.MemoryChunk, kind models.ReferenceKind) *models.PastReference {
	for i := range c.ReferencesPast {
		if c.ReferencesPast[i].Kind == kind {
			return &c.ReferencesPast[i]
		}
	}
	return nil
}

func TestEnrichResolvesAndReportsUnresolved(t *testing.T) {
	shared := "the design uses hexagonal grid layout for the dashboard panels"
	prior := histChunk("chunk_prior", baseTime.Add(-24*time.Hour), "Sarah", shared, "design")
	prior.FullContext = shared

	resolved := &models.MemoryChunk{
		ChunkID:     "chunk_1",
		MeetingID:   "m_now",
		Timestamp:   baseTime,
		Speaker:     "Sarah",
		Content:     "we should revisit the original design before the demo",
		FullContext: shared,
	}
	open := &models.MemoryChunk{
		ChunkID:   "chunk_2",
		MeetingID: "m_now",
		Timestamp: baseTime,
		Speaker:   "Marcus",
		Content:   "that estimate we discussed was optimistic",
	}

	e := NewEnricher(EnricherConfig{Now: func() time.Time { return baseTime }})
	report := e.Enrich([]*models.MemoryChunk{resolved, open}, oneMeeting(prior))

	if r := findRef(resolved, models.ReferenceImplicit); r == nil || r.TargetChunkID != "chunk_prior" {
		t.Fatalf("chunk_1 implicit link = %+v, want target chunk_prior", r)
	}
	if len(open.ReferencesPast) != 0 {
		t.Fatalf("chunk_2 got links despite no candidates: %+v", open.ReferencesPast)
	}
	if got := report.Unresolved["chunk_2"]; len(got) != 1 || got[0].Text != "estimate" {
		t.Fatalf("report.Unresolved[chunk_2] = %+v, want open reference to estimate", got)
	}
}

func TestEnrichLinksTemporalMarkers(t *testing.T) {
	prior := histChunk("chunk_prior", baseTime.Add(-7*24*time.Hour), "Sarah",
		"sprint planning notes", "planning")
	history := []models.HistoricalMeeting{{
		MeetingID: "m_prior",
		Date:      baseTime.Add(-7 * 24 * time.Hour),
		Chunks:    []models.MemoryChunk{prior},
	}}

	chunk := &models.MemoryChunk{
		ChunkID:         "chunk_1",
		MeetingID:       "m_now",
		Timestamp:       baseTime,
		Content:         "as we said last week the deadline moved",
		TemporalMarkers: []string{"last week"},
	}

	e := NewEnricher(EnricherConfig{Now: func() time.Time { return baseTime }})
	e.Enrich([]*models.MemoryChunk{chunk}, history)

	r := findRef(chunk, models.ReferenceTemporal)
	if r == nil {
		t.Fatalf("no temporal link: %+v", chunk.ReferencesPast)
	}
	if r.TargetChunkID != "chunk_prior" {
		t.Fatalf("temporal link target = %s, want chunk_prior", r.TargetChunkID)
	}
	if math.Abs(r.Confidence-markerLinkConfidence) > 1e-9 {
		t.Fatalf("temporal link confidence = %v, want %v", r.Confidence, markerLinkConfidence)
	}
}

func TestEnrichLinksTopicContinuation(t *testing.T) {
	prior := histChunk("chunk_prior", baseTime.Add(-48*time.Hour), "Sarah",
		"pricing model tiers and discounts", "pricing")

	chunk := &models.MemoryChunk{
		ChunkID:         "chunk_1",
		MeetingID:       "m_now",
		Timestamp:       baseTime,
		Content:         "pricing again: enterprise tier feedback came in",
		TopicsDiscussed: []string{"pricing"},
	}

	e := NewEnricher(EnricherConfig{Now: func() time.Time { return baseTime }})
	e.Enrich([]*models.MemoryChunk{chunk}, oneMeeting(prior))

	r := findRef(chunk, models.ReferenceTopicContinuation)
	if r == nil {
		t.Fatalf("no topic continuation link: %+v", chunk.ReferencesPast)
	}
	if r.TargetChunkID != "chunk_prior" {
		t.Fatalf("continuation target = %s, want chunk_prior", r.TargetChunkID)
	}
	// 0.8 decayed over the 2 days since the prior mention.
	want := markerLinkConfidence * math.Exp(-GeneralDecayRate*2)
	if math.Abs(r.Confidence-want) > 1e-9 {
		t.Fatalf("continuation confidence = %v, want %v", r.Confidence, want)
	}
}

func TestEnrichChainsVersionsAcrossMeetings(t *testing.T) {
	priorV1 := models.MemoryChunk{
		ChunkID:     "chunk_v1",
		MeetingID:   "m_prior",
		Timestamp:   baseTime.Add(-72 * time.Hour),
		Content:     "schema v1 drafted",
		VersionInfo: &models.VersionInfo{Artifact: "schema", Version: "v1"},
	}
	history := []models.HistoricalMeeting{{
		MeetingID: "m_prior",
		Date:      baseTime.Add(-72 * time.Hour),
		Chunks:    []models.MemoryChunk{priorV1},
	}}

	chunk := &models.MemoryChunk{
		ChunkID:     "chunk_v2",
		MeetingID:   "m_now",
		Timestamp:   baseTime,
		Content:     "schema v2 adds the audit columns",
		VersionInfo: &models.VersionInfo{Artifact: "schema", Version: "v2"},
	}

	e := NewEnricher(EnricherConfig{Now: func() time.Time { return baseTime }})
	e.Enrich([]*models.MemoryChunk{chunk}, history)

	r := findRef(chunk, models.ReferenceVersionEvolution)
	if r == nil || r.TargetChunkID != "chunk_v1" {
		t.Fatalf("version link = %+v, want target chunk_v1", r)
	}
	if r.Confidence != ChainConfidence {
		t.Fatalf("version link confidence = %v, want %v", r.Confidence, ChainConfidence)
	}
	if len(history[0].Chunks[0].CreatesFuture) != 1 {
		t.Fatalf("prior chunk forward links = %+v, want one", history[0].Chunks[0].CreatesFuture)
	}
}

func TestEnrichDecaysLinkConfidence(t *testing.T) {
	shared := "the design uses hexagonal grid layout for the dashboard panels"
	prior := histChunk("chunk_prior", baseTime.Add(-24*time.Hour), "Sarah", shared, "design")
	prior.FullContext = shared

	chunk := &models.MemoryChunk{
		ChunkID:     "chunk_1",
		MeetingID:   "m_now",
		Timestamp:   baseTime,
		Speaker:     "Sarah",
		Content:     "we should revisit the original design before the demo",
		FullContext: shared,
		VersionInfo: &models.VersionInfo{Artifact: "design", Version: "v2"},
	}
	priorV1 := models.MemoryChunk{
		ChunkID:     "chunk_v1",
		MeetingID:   "m_prior",
		Timestamp:   baseTime.Add(-24 * time.Hour),
		Content:     "design v1",
		VersionInfo: &models.VersionInfo{Artifact: "design", Version: "v1"},
	}
	history := oneMeeting(prior, priorV1)

	// Enrichment runs ten days after the meeting.
	later := baseTime.Add(10 * 24 * time.Hour)
	e := NewEnricher(EnricherConfig{Now: func() time.Time { return later }})
	e.Enrich([]*models.MemoryChunk{chunk}, history)

	impl := findRef(chunk, models.ReferenceImplicit)
	if impl == nil {
		t.Fatalf("no implicit link: %+v", chunk.ReferencesPast)
	}
	base := 0.5 + 0.3*math.Exp(-0.24) + 0.2
	want := base * math.Exp(-GeneralDecayRate*10)
	if math.Abs(impl.Confidence-want) > 1e-9 {
		t.Fatalf("decayed implicit confidence = %v, want %v", impl.Confidence, want)
	}

	chain := findRef(chunk, models.ReferenceVersionEvolution)
	if chain == nil || chain.Confidence != ChainConfidence {
		t.Fatalf("version link should stay pinned: %+v", chain)
	}
}

func TestEnrichDecaysDatedReferencesSlower(t *testing.T) {
	target := baseTime.Add(14 * 24 * time.Hour)
	chunk := &models.MemoryChunk{
		ChunkID:   "chunk_1",
		MeetingID: "m_now",
		Timestamp: baseTime,
		Content:   "release lands on the 24th, reviews by next friday",
		TemporalReferences: []models.TemporalReference{
			{Type: "deadline", Text: "on the 24th", TargetDate: &target, Confidence: 0.9},
			{Type: "future_reference", Text: "next friday", Confidence: 0.9},
		},
	}

	later := baseTime.Add(10 * 24 * time.Hour)
	e := NewEnricher(EnricherConfig{Now: func() time.Time { return later }})
	e.Enrich([]*models.MemoryChunk{chunk}, nil)

	dated := chunk.TemporalReferences[0].Confidence
	vague := chunk.TemporalReferences[1].Confidence
	if math.Abs(dated-0.9*math.Exp(-DatedDecayRate*10)) > 1e-9 {
		t.Fatalf("dated confidence = %v, want slow decay", dated)
	}
	if math.Abs(vague-0.9*math.Exp(-GeneralDecayRate*10)) > 1e-9 {
		t.Fatalf("vague confidence = %v, want fast decay", vague)
	}
	if dated <= vague {
		t.Fatalf("dated reference %v should outlast vague %v", dated, vague)
	}
}
