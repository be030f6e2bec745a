package store

import (
	"context"
	"encoding/json"
	"fmt"

	"MeetMind/internal/database/milvus"
	"MeetMind/internal/embedding"
	"MeetMind/internal/models"
)

// MilvusStore is a ChunkStore backed by Milvus. Each chunk is stored as
// its embedding plus the full chunk serialized into a payload column,
// so search results round-trip without a second lookup.
type MilvusStore struct {
	client   *milvus.MilvusClient
	embedder embedding.Embedding
}

// NewMilvusStore creates a new MilvusStore.
func NewMilvusStore(client *milvus.MilvusClient, embedder embedding.Embedding) *MilvusStore {
	return &MilvusStore{client: client, embedder: embedder}
}

// SaveChunks embeds the chunks in one batch and inserts them.
func (s *MilvusStore) SaveChunks(ctx context.Context, chunks []models.MemoryChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	ids := make([]string, len(chunks))
	payloads := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.ContextText()
		ids[i] = c.ChunkID
		raw, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to serialize chunk %s: %w", c.ChunkID, err)
		}
		payloads[i] = string(raw)
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}

	if err := s.client.InsertChunks(ctx, ids, payloads, vectors); err != nil {
		return err
	}
	return s.client.Flush(ctx)
}

// SearchChunks embeds the query and returns the topK most similar
// chunks, deserialized from the payload column.
func (s *MilvusStore) SearchChunks(ctx context.Context, query string, topK int) ([]models.MemoryChunk, error) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := s.client.Search(ctx, topK, vector)
	if err != nil {
		return nil, err
	}

	var chunks []models.MemoryChunk
	for _, result := range results {
		var payloadCol int = -1
		for i, f := range result.Fields {
			if f.Name() == "payload" {
				payloadCol = i
				break
			}
		}
		if payloadCol < 0 {
			continue
		}
		for i := 0; i < result.ResultCount; i++ {
			raw, err := result.Fields[payloadCol].GetAsString(i)
			if err != nil {
				continue
			}
			var c models.MemoryChunk
			if err := json.Unmarshal([]byte(raw), &c); err != nil {
				continue
			}
			chunks = append(chunks, c)
		}
	}
	return chunks, nil
}
