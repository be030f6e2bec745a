package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"MeetMind/internal/config"
	"MeetMind/internal/memory/store"
	"MeetMind/internal/models"
	"MeetMind/pkg/logger"

	"github.com/sirupsen/logrus"
)

var meetingDate = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

type stubExtractor struct {
	chunks []models.MemoryChunk
	err    error
}

func (s *stubExtractor) Extract(ctx context.Context, meeting models.Meeting, transcript string) ([]models.MemoryChunk, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.chunks, nil
}

// recorder tracks the order of pipeline side effects across both stores.
type recorder struct {
	ops []string
}

type stubChunkStore struct {
	rec     *recorder
	saveErr error
	results []models.MemoryChunk
}

func (s *stubChunkStore) SaveChunks(ctx context.Context, chunks []models.MemoryChunk) error {
	s.rec.ops = append(s.rec.ops, "vector_write")
	return s.saveErr
}

func (s *stubChunkStore) SearchChunks(ctx context.Context, query string, topK int) ([]models.MemoryChunk, error) {
	s.rec.ops = append(s.rec.ops, fmt.Sprintf("search_%d", topK))
	return s.results, nil
}

type stubGraphStore struct {
	rec        *recorder
	history    []models.HistoricalMeeting
	historyErr error
	related    []models.MemoryChunk
	saved      []models.MemoryChunk
}

func (s *stubGraphStore) SaveMeeting(ctx context.Context, meeting models.Meeting, chunks []models.MemoryChunk) error {
	s.rec.ops = append(s.rec.ops, "graph_write")
	s.saved = chunks
	return nil
}

func (s *stubGraphStore) GetChunk(ctx context.Context, chunkID string) (*models.MemoryChunk, error) {
	return nil, fmt.Errorf("chunk %s not found", chunkID)
}

func (s *stubGraphStore) RecentMeetings(ctx context.Context, before time.Time, limit int) ([]models.HistoricalMeeting, error) {
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	return s.history, nil
}

func (s *stubGraphStore) RelatedChunks(ctx context.Context, chunkIDs []string) ([]models.MemoryChunk, error) {
	s.rec.ops = append(s.rec.ops, "related")
	return s.related, nil
}

func (s *stubGraphStore) UnansweredQuestions(ctx context.Context, meetingID string) ([]models.MemoryChunk, error) {
	return nil, nil
}

func (s *stubGraphStore) ExpertiseProfiles(ctx context.Context) (map[string][]store.TopicCount, error) {
	return nil, nil
}

type stubNotifier struct {
	stages []string
}

func (s *stubNotifier) Notify(meetingID, stage string) {
	s.stages = append(s.stages, stage)
}

func testLogger() *logger.Logger {
	logger.Init(logrus.ErrorLevel)
	return logger.New("memory_service_test", "")
}

func newTestService(ext *stubExtractor, cs *stubChunkStore, gs *stubGraphStore, n *stubNotifier) *MemoryService {
	var notifier ProgressNotifier
	if n != nil {
		notifier = n
	}
	return NewMemoryService(ext, cs, gs, nil, notifier, config.EngineConfig{}, testLogger())
}

func TestIngestTranscriptPipeline(t *testing.T) {
	rec := &recorder{}
	ext := &stubExtractor{chunks: []models.MemoryChunk{
		{
			ChunkID: "m1_chunk_0", MeetingID: "m1", Timestamp: meetingDate,
			Speaker: "Sarah", Content: "We decided to cut the hexagonal grid.",
			MemoryType: models.MemoryDecision,
		},
		{
			ChunkID: "m1_chunk_1", MeetingID: "m1", Timestamp: meetingDate,
			Speaker: "Marcus", Content: "Remember that estimate we discussed? It doubled.",
			MemoryType: models.MemoryTopic,
		},
	}}
	cs := &stubChunkStore{rec: rec}
	gs := &stubGraphStore{rec: rec}
	n := &stubNotifier{}
	svc := newTestService(ext, cs, gs, n)

	result, err := svc.IngestTranscript(context.Background(), models.Meeting{MeetingID: "m1", Date: meetingDate}, "transcript")
	if err != nil {
		t.Fatalf("IngestTranscript: %v", err)
	}

	if result.MeetingID != "m1" || result.Chunks != 2 {
		t.Fatalf("result = %+v, want meeting m1 with 2 chunks", result)
	}
	// "that estimate we discussed" has no history to resolve against.
	if len(result.Unresolved) == 0 {
		t.Error("expected the implicit reference to be reported as unresolved")
	}

	wantOps := []string{"graph_write", "vector_write"}
	if len(rec.ops) != len(wantOps) {
		t.Fatalf("ops = %v, want %v", rec.ops, wantOps)
	}
	for i, op := range wantOps {
		if rec.ops[i] != op {
			t.Fatalf("ops[%d] = %s, want %s (graph write must precede vector write)", i, rec.ops[i], op)
		}
	}

	wantStages := []string{"extracting", "enriching", "storing", "done"}
	if len(n.stages) != len(wantStages) {
		t.Fatalf("stages = %v, want %v", n.stages, wantStages)
	}
	for i, stage := range wantStages {
		if n.stages[i] != stage {
			t.Fatalf("stages[%d] = %s, want %s", i, n.stages[i], stage)
		}
	}
}

func TestIngestTranscriptLinksAgainstHistory(t *testing.T) {
	rec := &recorder{}
	past := meetingDate.AddDate(0, 0, -7)
	gs := &stubGraphStore{rec: rec, history: []models.HistoricalMeeting{
		{
			MeetingID: "m0", Date: past,
			Chunks: []models.MemoryChunk{{
				ChunkID: "m0_chunk_0", MeetingID: "m0", Timestamp: past,
				Speaker: "Marcus", Content: "The estimate for the migration is three weeks of work.",
				TopicsDiscussed: []string{"estimate", "migration"},
			}},
		},
	}}
	ext := &stubExtractor{chunks: []models.MemoryChunk{{
		ChunkID: "m1_chunk_0", MeetingID: "m1", Timestamp: meetingDate,
		Speaker: "Marcus", Content: "That estimate we discussed for the migration was too optimistic, three weeks is not enough.",
		TopicsDiscussed: []string{"estimate", "migration"},
	}}}
	svc := newTestService(ext, &stubChunkStore{rec: rec}, gs, nil)

	result, err := svc.IngestTranscript(context.Background(), models.Meeting{MeetingID: "m1", Date: meetingDate}, "transcript")
	if err != nil {
		t.Fatalf("IngestTranscript: %v", err)
	}
	if result.Links == 0 {
		t.Error("expected at least one temporal link against the historical chunk")
	}
	if len(gs.saved) != 1 || len(gs.saved[0].ReferencesPast) == 0 {
		t.Error("expected the stored chunk to carry its resolved references")
	}
}

func TestIngestTranscriptSurvivesHistoryFailure(t *testing.T) {
	rec := &recorder{}
	ext := &stubExtractor{chunks: []models.MemoryChunk{{
		ChunkID: "m1_chunk_0", MeetingID: "m1", Timestamp: meetingDate,
		Speaker: "Sarah", Content: "Shipping is on track.",
	}}}
	gs := &stubGraphStore{rec: rec, historyErr: fmt.Errorf("neo4j down")}
	svc := newTestService(ext, &stubChunkStore{rec: rec}, gs, nil)

	result, err := svc.IngestTranscript(context.Background(), models.Meeting{MeetingID: "m1", Date: meetingDate}, "transcript")
	if err != nil {
		t.Fatalf("history failure should not fail ingestion: %v", err)
	}
	if result.Chunks != 1 {
		t.Fatalf("got %d chunks, want 1", result.Chunks)
	}
}

func TestIngestTranscriptPropagatesExtractionError(t *testing.T) {
	rec := &recorder{}
	ext := &stubExtractor{err: fmt.Errorf("model unavailable")}
	svc := newTestService(ext, &stubChunkStore{rec: rec}, &stubGraphStore{rec: rec}, nil)

	if _, err := svc.IngestTranscript(context.Background(), models.Meeting{MeetingID: "m1", Date: meetingDate}, "transcript"); err == nil {
		t.Fatal("expected extraction error to propagate")
	}
	if len(rec.ops) != 0 {
		t.Fatalf("no store writes expected after extraction failure, got %v", rec.ops)
	}
}

func TestIngestTranscriptRejectsMissingMeetingID(t *testing.T) {
	rec := &recorder{}
	svc := newTestService(&stubExtractor{}, &stubChunkStore{rec: rec}, &stubGraphStore{rec: rec}, nil)

	if _, err := svc.IngestTranscript(context.Background(), models.Meeting{}, "transcript"); err == nil {
		t.Fatal("expected an error for a meeting without an id")
	}
}

func TestRetrieveWidensOnLaterIterations(t *testing.T) {
	rec := &recorder{}
	cs := &stubChunkStore{rec: rec, results: []models.MemoryChunk{{ChunkID: "seed"}}}
	gs := &stubGraphStore{rec: rec, related: []models.MemoryChunk{{ChunkID: "linked"}}}
	svc := newTestService(&stubExtractor{}, cs, gs, nil)
	plan := models.QueryPlan{OriginalQuery: "what happened to the migration"}

	first, err := svc.Retrieve(context.Background(), plan, 0)
	if err != nil {
		t.Fatalf("Retrieve(0): %v", err)
	}
	if len(first) != 1 || first[0].ChunkID != "seed" {
		t.Fatalf("iteration 0 = %v, want the vector seed only", first)
	}

	second, err := svc.Retrieve(context.Background(), plan, 1)
	if err != nil {
		t.Fatalf("Retrieve(1): %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("iteration 1 returned %d chunks, want seed plus related", len(second))
	}

	wantOps := []string{"search_10", "search_10", "related"}
	if len(rec.ops) != len(wantOps) {
		t.Fatalf("ops = %v, want %v", rec.ops, wantOps)
	}
}
