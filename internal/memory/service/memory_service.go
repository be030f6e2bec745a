package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"MeetMind/internal/config"
	"MeetMind/internal/memory/extractor"
	"MeetMind/internal/memory/store"
	"MeetMind/internal/memory/temporal"
	"MeetMind/internal/models"
	"MeetMind/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// Defaults for the historical context feeding enrichment.
const (
	defaultHistoryMeetings = 20
	defaultHistoryCacheTTL = 300 * time.Second

	historyCacheKey = "meetmind:history:recent"
)

// ProgressNotifier receives ingestion progress events. The API layer
// fans them out to websocket subscribers; a nil notifier is fine.
type ProgressNotifier interface {
	Notify(meetingID, stage string)
}

// IngestResult summarizes what one transcript produced.
type IngestResult struct {
	MeetingID  string   `json:"meeting_id"`
	Chunks     int      `json:"chunks"`
	Links      int      `json:"links"`
	Unresolved []string `json:"unresolved,omitempty"` // open reference phrases
}

// MemoryService owns the ingestion pipeline and the retrieval surface:
// extract, enrich against history, store in both backends.
type MemoryService struct {
	extractor  extractor.Extractor
	chunkStore store.ChunkStore
	graphStore store.GraphStore
	cache      *redis.Client
	notifier   ProgressNotifier
	log        *logger.Logger

	enricher        *temporal.Enricher
	historyMeetings int
	historyTTL      time.Duration
}

// NewMemoryService wires the pipeline. cache and notifier may be nil.
func NewMemoryService(
	ext extractor.Extractor,
	chunkStore store.ChunkStore,
	graphStore store.GraphStore,
	cache *redis.Client,
	notifier ProgressNotifier,
	engineCfg config.EngineConfig,
	log *logger.Logger,
) *MemoryService {
	historyMeetings := engineCfg.HistoryMeetings
	if historyMeetings == 0 {
		historyMeetings = defaultHistoryMeetings
	}
	historyTTL := defaultHistoryCacheTTL
	if engineCfg.HistoryCacheSeconds > 0 {
		historyTTL = time.Duration(engineCfg.HistoryCacheSeconds) * time.Second
	}

	return &MemoryService{
		extractor:  ext,
		chunkStore: chunkStore,
		graphStore: graphStore,
		cache:      cache,
		notifier:   notifier,
		log:        log,
		enricher: temporal.NewEnricher(temporal.EnricherConfig{
			Resolver: temporal.ResolverConfig{
				WindowHours:   engineCfg.ResolverWindowHours,
				Threshold:     engineCfg.ResolverThreshold,
				MaxCandidates: engineCfg.CandidatesPerType,
			},
			Drift: temporal.DriftConfig{
				MinUsages:     engineCfg.DriftMinUsages,
				OverlapCutoff: engineCfg.DriftOverlapCutoff,
			},
		}),
		historyMeetings: historyMeetings,
		historyTTL:      historyTTL,
	}
}

// IngestTranscript runs the full pipeline for one meeting: extraction,
// enrichment against the historical context, then the dual write. The
// graph write happens before the vector write so a vector failure never
// leaves links pointing at missing graph nodes.
func (s *MemoryService) IngestTranscript(ctx context.Context, meeting models.Meeting, transcript string) (*IngestResult, error) {
	meeting.Normalize()
	if meeting.MeetingID == "" {
		return nil, fmt.Errorf("meeting has no id")
	}
	s.notify(meeting.MeetingID, "extracting")

	chunks, err := s.extractor.Extract(ctx, meeting, transcript)
	if err != nil {
		return nil, fmt.Errorf("extraction failed for meeting %s: %w", meeting.MeetingID, err)
	}

	s.notify(meeting.MeetingID, "enriching")
	history, err := s.HistoricalContext(ctx, meeting.Date)
	if err != nil {
		// Enrichment without history still yields valid chunks.
		s.log.WithError(models.ErrorInfo{Message: err.Error()}).
			Warn("failed to load historical context, enriching without it")
		history = nil
	}

	refs := make([]*models.MemoryChunk, len(chunks))
	for i := range chunks {
		refs[i] = &chunks[i]
	}
	report := s.enricher.Enrich(refs, history)

	s.notify(meeting.MeetingID, "storing")
	if err := s.graphStore.SaveMeeting(ctx, meeting, chunks); err != nil {
		return nil, fmt.Errorf("graph write failed for meeting %s: %w", meeting.MeetingID, err)
	}
	if err := s.chunkStore.SaveChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("vector write failed for meeting %s: %w", meeting.MeetingID, err)
	}
	s.invalidateHistoryCache(ctx)
	s.notify(meeting.MeetingID, "done")

	result := &IngestResult{MeetingID: meeting.MeetingID, Chunks: len(chunks)}
	for _, c := range chunks {
		result.Links += len(c.ReferencesPast)
	}
	for _, open := range report.Unresolved {
		for _, ref := range open {
			result.Unresolved = append(result.Unresolved, ref.ContextWindow)
		}
	}

	s.log.WithPayload(map[string]interface{}{
		"meeting_id": meeting.MeetingID,
		"chunks":     result.Chunks,
		"links":      result.Links,
		"unresolved": len(result.Unresolved),
	}).Info("meeting ingested")
	return result, nil
}

// HistoricalContext loads the recent meetings used as enrichment
// context, serving from the redis cache when fresh.
func (s *MemoryService) HistoricalContext(ctx context.Context, before time.Time) ([]models.HistoricalMeeting, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, historyCacheKey).Result(); err == nil {
			var history []models.HistoricalMeeting
			if json.Unmarshal([]byte(raw), &history) == nil {
				return filterBefore(history, before), nil
			}
		}
	}

	history, err := s.graphStore.RecentMeetings(ctx, time.Now(), s.historyMeetings)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(history); err == nil {
			s.cache.Set(ctx, historyCacheKey, raw, s.historyTTL)
		}
	}
	return filterBefore(history, before), nil
}

// GetChunk fetches one stored chunk by id.
func (s *MemoryService) GetChunk(ctx context.Context, chunkID string) (*models.MemoryChunk, error) {
	return s.graphStore.GetChunk(ctx, chunkID)
}

// OpenThreads returns the unanswered questions of a meeting.
func (s *MemoryService) OpenThreads(ctx context.Context, meetingID string) ([]models.MemoryChunk, error) {
	return s.graphStore.UnansweredQuestions(ctx, meetingID)
}

// ExpertiseProfiles returns who talks about what, per speaker.
func (s *MemoryService) ExpertiseProfiles(ctx context.Context) (map[string][]store.TopicCount, error) {
	return s.graphStore.ExpertiseProfiles(ctx)
}

// Retrieve implements query.Retriever: the initial iteration searches
// the vector store; later iterations widen through graph links from the
// chunks already found, then fall back to a broader vector search.
func (s *MemoryService) Retrieve(ctx context.Context, plan models.QueryPlan, iteration int) ([]models.MemoryChunk, error) {
	const baseTopK = 10

	if iteration == 0 {
		return s.chunkStore.SearchChunks(ctx, plan.OriginalQuery, baseTopK)
	}

	// Widen via the graph first: follow links out of what we already
	// matched on the query text.
	seed, err := s.chunkStore.SearchChunks(ctx, plan.OriginalQuery, baseTopK*iteration)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(seed))
	for _, c := range seed {
		ids = append(ids, c.ChunkID)
	}
	related, err := s.graphStore.RelatedChunks(ctx, ids)
	if err != nil {
		return nil, err
	}
	return append(seed, related...), nil
}

func (s *MemoryService) notify(meetingID, stage string) {
	if s.notifier != nil {
		s.notifier.Notify(meetingID, stage)
	}
}

func (s *MemoryService) invalidateHistoryCache(ctx context.Context) {
	if s.cache != nil {
		s.cache.Del(ctx, historyCacheKey)
	}
}

func filterBefore(history []models.HistoricalMeeting, before time.Time) []models.HistoricalMeeting {
	if before.IsZero() {
		return history
	}
	var out []models.HistoricalMeeting
	for _, m := range history {
		if m.Date.Before(before) {
			out = append(out, m)
		}
	}
	return out
}
