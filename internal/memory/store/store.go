package store

import (
	"context"
	"time"

	"MeetMind/internal/models"
)

// ChunkStore is the vector side of the dual write: chunks are embedded
// and stored for similarity search.
type ChunkStore interface {
	SaveChunks(ctx context.Context, chunks []models.MemoryChunk) error
	SearchChunks(ctx context.Context, query string, topK int) ([]models.MemoryChunk, error)
}

// GraphStore is the temporal side: meetings, chunks and the links
// between them live in the graph, which also serves the historical
// context for enrichment.
type GraphStore interface {
	SaveMeeting(ctx context.Context, meeting models.Meeting, chunks []models.MemoryChunk) error
	GetChunk(ctx context.Context, chunkID string) (*models.MemoryChunk, error)
	RecentMeetings(ctx context.Context, before time.Time, limit int) ([]models.HistoricalMeeting, error)
	RelatedChunks(ctx context.Context, chunkIDs []string) ([]models.MemoryChunk, error)
	UnansweredQuestions(ctx context.Context, meetingID string) ([]models.MemoryChunk, error)
	ExpertiseProfiles(ctx context.Context) (map[string][]TopicCount, error)
}

// TopicCount is one entry of a speaker's expertise profile: a topic and
// how often the speaker has spoken about it.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int64  `json:"count"`
}
