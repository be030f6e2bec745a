package query

import (
	"context"
	"fmt"
	"testing"

	"MeetMind/internal/models"
)

type stubRetriever struct {
	batches [][]models.MemoryChunk
	calls   int
	err     error
}

func (s *stubRetriever) Retrieve(ctx context.Context, plan models.QueryPlan, iteration int) ([]models.MemoryChunk, error) {
	if s.err != nil {
		return nil, s.err
	}
	defer func() { s.calls++ }()
	if s.calls < len(s.batches) {
		return s.batches[s.calls], nil
	}
	return nil, nil
}

func chunk(id string, importance float64) models.MemoryChunk {
	return models.MemoryChunk{ChunkID: id, ImportanceScore: importance}
}

func TestPlanQueryClassification(t *testing.T) {
	cases := []struct {
		query string
		want  models.QueryType
	}{
		{"what did we decide about pricing", models.QueryDecisionArchaeology},
		{"why did we pick the hexagonal layout", models.QueryDecisionArchaeology},
		{"what did Marcus commit to last week", models.QueryCommitmentTracking},
		{"help me prepare for the board meeting", models.QueryPreMeeting},
		{"what is missing from the launch deck", models.QueryGapAnalysis},
		{"does the auth change affect my project", models.QueryCrossProject},
		{"are we blocked on the migration", models.QueryStatusCheck},
		{"tell me about the hexagonal grid", models.QueryGeneral},
	}
	for _, tc := range cases {
		if got := PlanQuery(tc.query).QueryType; got != tc.want {
			t.Errorf("PlanQuery(%q) = %s, want %s", tc.query, got, tc.want)
		}
	}
}

func TestPlanQueryScopeAndEntities(t *testing.T) {
	plan := PlanQuery("what did Marcus commit to last week")
	if plan.TemporalScope != "last week" {
		t.Fatalf("scope = %q, want last week", plan.TemporalScope)
	}
	if len(plan.Entities) != 1 || plan.Entities[0] != "Marcus" {
		t.Fatalf("entities = %v, want [Marcus]", plan.Entities)
	}

	if got := PlanQuery("status of the migration").TemporalScope; got != "recent" {
		t.Fatalf("default scope = %q, want recent", got)
	}
}

func TestRunStopsWhenContextSufficient(t *testing.T) {
	r := &stubRetriever{batches: [][]models.MemoryChunk{
		{chunk("c1", 5), chunk("c2", 5), chunk("c3", 5), chunk("c4", 5), chunk("c5", 5)},
	}}
	o := NewOrchestrator(r, nil, nil)

	result, err := o.Run(context.Background(), "tell me about the roadmap")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.calls != 1 {
		t.Fatalf("retriever called %d times, want 1", r.calls)
	}
	if len(result.Chunks) != 5 {
		t.Fatalf("got %d chunks, want 5", len(result.Chunks))
	}
}

func TestRunIteratesWhileInsufficient(t *testing.T) {
	r := &stubRetriever{batches: [][]models.MemoryChunk{
		{chunk("c1", 5)},
		{chunk("c2", 5)},
		{chunk("c3", 5)},
		{chunk("c4", 5)},
		{chunk("c5", 5)}, // never reached: the iteration cap fires first
	}}
	o := NewOrchestrator(r, nil, nil)

	result, err := o.Run(context.Background(), "tell me about the roadmap")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Initial fetch plus MaxIterations extra ones.
	if r.calls != 1+MaxIterations {
		t.Fatalf("retriever called %d times, want %d", r.calls, 1+MaxIterations)
	}
	if len(result.Chunks) != 4 {
		t.Fatalf("got %d chunks, want 4", len(result.Chunks))
	}
}

func TestRunStopsOnEmptyBatch(t *testing.T) {
	r := &stubRetriever{batches: [][]models.MemoryChunk{
		{chunk("c1", 5)},
		{},
	}}
	o := NewOrchestrator(r, nil, nil)

	if _, err := o.Run(context.Background(), "tell me about the roadmap"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.calls != 2 {
		t.Fatalf("retriever called %d times, want 2 (stop on empty batch)", r.calls)
	}
}

func TestRunDeduplicatesFirstSeen(t *testing.T) {
	r := &stubRetriever{batches: [][]models.MemoryChunk{
		{chunk("c1", 5), chunk("c2", 5)},
		{chunk("c2", 5), chunk("c3", 5)},
		{chunk("c1", 5), chunk("c4", 5), chunk("c5", 5)},
	}}
	o := NewOrchestrator(r, nil, nil)

	result, err := o.Run(context.Background(), "tell me about the roadmap")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"c1", "c2", "c3", "c4", "c5"}
	if len(result.Chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d", len(result.Chunks), len(want))
	}
	for i, id := range want {
		if result.Chunks[i].ChunkID != id {
			t.Fatalf("chunk[%d] = %s, want %s (first-seen order)", i, result.Chunks[i].ChunkID, id)
		}
	}
}

func TestRunSortsByImportanceStable(t *testing.T) {
	r := &stubRetriever{batches: [][]models.MemoryChunk{
		{chunk("low", 3), chunk("high", 9), chunk("mid_a", 5), chunk("mid_b", 5), chunk("top", 10)},
	}}
	o := NewOrchestrator(r, nil, nil)

	result, err := o.Run(context.Background(), "tell me about the roadmap")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"top", "high", "mid_a", "mid_b", "low"}
	for i, id := range want {
		if result.Chunks[i].ChunkID != id {
			t.Fatalf("chunk[%d] = %s, want %s", i, result.Chunks[i].ChunkID, id)
		}
	}
}

func TestRunPropagatesRetrievalError(t *testing.T) {
	r := &stubRetriever{err: fmt.Errorf("store down")}
	o := NewOrchestrator(r, nil, nil)

	if _, err := o.Run(context.Background(), "anything"); err == nil {
		t.Fatal("expected retrieval error to propagate")
	}
}
