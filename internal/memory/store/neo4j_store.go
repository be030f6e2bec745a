package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	neo4jdb "MeetMind/internal/database/neo4j"
	"MeetMind/internal/models"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jStore is a GraphStore backed by Neo4j. Chunk nodes carry the
// full serialized chunk as a payload property plus the fields queries
// filter on; links become typed relationships so the graph can answer
// "what references what" without touching payloads.
type Neo4jStore struct {
	client *neo4jdb.Neo4jClient
}

// NewNeo4jStore creates a new Neo4jStore.
func NewNeo4jStore(client *neo4jdb.Neo4jClient) *Neo4jStore {
	return &Neo4jStore{client: client}
}

// SaveMeeting persists the meeting, its chunks and every enrichment
// link in one write transaction. MERGE keeps re-ingestion idempotent.
func (s *Neo4jStore) SaveMeeting(ctx context.Context, meeting models.Meeting, chunks []models.MemoryChunk) error {
	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		_, err := tx.Run(ctx, `
			MERGE (m:Meeting {meeting_id: $meeting_id})
			SET m.title = $title, m.date = $date, m.project = $project,
			    m.meeting_type = $meeting_type, m.participants = $participants
		`, map[string]interface{}{
			"meeting_id":   meeting.MeetingID,
			"title":        meeting.Title,
			"date":         meeting.Date.Unix(),
			"project":      meeting.Project,
			"meeting_type": meeting.MeetingType,
			"participants": meeting.Participants,
		})
		if err != nil {
			return nil, err
		}

		// Chain the new meeting after the latest earlier one.
		_, err = tx.Run(ctx, `
			MATCH (m:Meeting {meeting_id: $meeting_id})
			MATCH (prev:Meeting) WHERE prev.date < m.date
			WITH m, prev ORDER BY prev.date DESC LIMIT 1
			MERGE (prev)-[:PRECEDED]->(m)
		`, map[string]interface{}{"meeting_id": meeting.MeetingID})
		if err != nil {
			return nil, err
		}

		for _, c := range chunks {
			payload, err := json.Marshal(c)
			if err != nil {
				return nil, fmt.Errorf("failed to serialize chunk %s: %w", c.ChunkID, err)
			}
			_, err = tx.Run(ctx, `
				MATCH (m:Meeting {meeting_id: $meeting_id})
				MERGE (c:Chunk {chunk_id: $chunk_id})
				SET c.meeting_id = $meeting_id, c.speaker = $speaker,
				    c.timestamp = $timestamp, c.memory_type = $memory_type,
				    c.interaction_type = $interaction_type,
				    c.importance = $importance, c.topics = $topics,
				    c.payload = $payload
				MERGE (c)-[:SPOKEN_IN]->(m)
			`, map[string]interface{}{
				"meeting_id":       meeting.MeetingID,
				"chunk_id":         c.ChunkID,
				"speaker":          c.Speaker,
				"timestamp":        c.Timestamp.Unix(),
				"memory_type":      string(c.MemoryType),
				"interaction_type": string(c.InteractionType),
				"importance":       c.ImportanceScore,
				"topics":           c.TopicsDiscussed,
				"payload":          string(payload),
			})
			if err != nil {
				return nil, err
			}

			for _, ref := range c.ReferencesPast {
				if ref.TargetChunkID == "" {
					continue
				}
				rel := "REFERENCES_PAST"
				if ref.Kind == models.ReferenceVersionEvolution {
					rel = "EVOLVED_FROM"
				}
				_, err = tx.Run(ctx, fmt.Sprintf(`
					MATCH (c:Chunk {chunk_id: $chunk_id})
					MERGE (t:Chunk {chunk_id: $target_id})
					MERGE (c)-[r:%s]->(t)
					SET r.kind = $kind, r.confidence = $confidence, r.reference = $reference
				`, rel), map[string]interface{}{
					"chunk_id":   c.ChunkID,
					"target_id":  ref.TargetChunkID,
					"kind":       string(ref.Kind),
					"confidence": ref.Confidence,
					"reference":  ref.Reference,
				})
				if err != nil {
					return nil, err
				}
			}
		}
		return nil, nil
	})
	return err
}

// GetChunk fetches a single chunk by id.
func (s *Neo4jStore) GetChunk(ctx context.Context, chunkID string) (*models.MemoryChunk, error) {
	result, err := s.client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		res, err := tx.Run(ctx, `
			MATCH (c:Chunk {chunk_id: $chunk_id}) RETURN c.payload AS payload
		`, map[string]interface{}{"chunk_id": chunkID})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, fmt.Errorf("chunk %s not found: %w", chunkID, err)
		}
		payload, _ := record.Get("payload")
		return payload, nil
	})
	if err != nil {
		return nil, err
	}

	raw, ok := result.(string)
	if !ok || raw == "" {
		return nil, fmt.Errorf("chunk %s has no payload", chunkID)
	}
	var c models.MemoryChunk
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("failed to deserialize chunk %s: %w", chunkID, err)
	}
	return &c, nil
}

// RecentMeetings returns up to limit meetings held strictly before the
// given instant, newest first, each with its chunks. This is the
// historical context fed to enrichment.
func (s *Neo4jStore) RecentMeetings(ctx context.Context, before time.Time, limit int) ([]models.HistoricalMeeting, error) {
	result, err := s.client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		res, err := tx.Run(ctx, `
			MATCH (m:Meeting) WHERE m.date < $before
			WITH m ORDER BY m.date DESC LIMIT $limit
			OPTIONAL MATCH (c:Chunk)-[:SPOKEN_IN]->(m)
			RETURN m.meeting_id AS meeting_id, m.date AS date,
			       collect(c.payload) AS payloads
			ORDER BY date DESC
		`, map[string]interface{}{"before": before.Unix(), "limit": limit})
		if err != nil {
			return nil, err
		}

		var meetings []models.HistoricalMeeting
		for res.Next(ctx) {
			record := res.Record()
			id, _ := record.Get("meeting_id")
			date, _ := record.Get("date")
			payloads, _ := record.Get("payloads")

			m := models.HistoricalMeeting{
				MeetingID: id.(string),
				Date:      time.Unix(date.(int64), 0).UTC(),
			}
			for _, p := range payloads.([]interface{}) {
				raw, ok := p.(string)
				if !ok || raw == "" {
					continue
				}
				var c models.MemoryChunk
				if err := json.Unmarshal([]byte(raw), &c); err != nil {
					continue
				}
				m.Chunks = append(m.Chunks, c)
			}
			meetings = append(meetings, m)
		}
		return meetings, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load recent meetings: %w", err)
	}
	return result.([]models.HistoricalMeeting), nil
}

// RelatedChunks follows backward links one hop out from the given
// chunks and returns the distinct targets. Used to widen retrieval when
// initial context is insufficient.
func (s *Neo4jStore) RelatedChunks(ctx context.Context, chunkIDs []string) ([]models.MemoryChunk, error) {
	result, err := s.client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		res, err := tx.Run(ctx, `
			MATCH (c:Chunk) WHERE c.chunk_id IN $ids
			MATCH (c)-[:REFERENCES_PAST|EVOLVED_FROM]->(t:Chunk)
			WHERE t.payload IS NOT NULL
			RETURN DISTINCT t.payload AS payload
		`, map[string]interface{}{"ids": chunkIDs})
		if err != nil {
			return nil, err
		}
		return collectPayloads(ctx, res, "payload")
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load related chunks: %w", err)
	}
	return result.([]models.MemoryChunk), nil
}

// UnansweredQuestions returns the question chunks of a meeting that no
// later chunk links back to: the meeting's open threads.
func (s *Neo4jStore) UnansweredQuestions(ctx context.Context, meetingID string) ([]models.MemoryChunk, error) {
	result, err := s.client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		res, err := tx.Run(ctx, `
			MATCH (c:Chunk {meeting_id: $meeting_id})
			WHERE c.memory_type = 'question'
			  AND NOT (c)<-[:REFERENCES_PAST]-(:Chunk)
			RETURN c.payload AS payload
			ORDER BY c.timestamp
		`, map[string]interface{}{"meeting_id": meetingID})
		if err != nil {
			return nil, err
		}
		return collectPayloads(ctx, res, "payload")
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load unanswered questions: %w", err)
	}
	return result.([]models.MemoryChunk), nil
}

// ExpertiseProfiles aggregates who knows what: per speaker, the topics
// of their explanation, answer and decision chunks ordered by frequency.
// Merely mentioning a topic does not count as expertise.
func (s *Neo4jStore) ExpertiseProfiles(ctx context.Context) (map[string][]TopicCount, error) {
	result, err := s.client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		res, err := tx.Run(ctx, `
			MATCH (c:Chunk)
			WHERE c.speaker <> ''
			  AND c.interaction_type IN ['explanation', 'answer', 'decision']
			UNWIND c.topics AS topic
			RETURN c.speaker AS speaker, topic, count(*) AS mentions
			ORDER BY speaker, mentions DESC
		`, nil)
		if err != nil {
			return nil, err
		}

		profiles := make(map[string][]TopicCount)
		for res.Next(ctx) {
			record := res.Record()
			speaker, _ := record.Get("speaker")
			topic, _ := record.Get("topic")
			mentions, _ := record.Get("mentions")
			name := speaker.(string)
			profiles[name] = append(profiles[name], TopicCount{
				Topic: topic.(string),
				Count: mentions.(int64),
			})
		}
		return profiles, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load expertise profiles: %w", err)
	}
	return result.(map[string][]TopicCount), nil
}

func collectPayloads(ctx context.Context, res neo4j.ResultWithContext, field string) ([]models.MemoryChunk, error) {
	var chunks []models.MemoryChunk
	for res.Next(ctx) {
		payload, _ := res.Record().Get(field)
		raw, ok := payload.(string)
		if !ok || raw == "" {
			continue
		}
		var c models.MemoryChunk
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			continue
		}
		chunks = append(chunks, c)
	}
	return chunks, res.Err()
}
