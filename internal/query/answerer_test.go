package query

import (
	"context"
	"strings"
	"testing"
	"time"

	"MeetMind/internal/models"
)

type stubModel struct {
	prompt string
	reply  string
	calls  int
}

func (s *stubModel) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	s.calls++
	if len(req.Content) > 0 && len(req.Content[0].Parts) > 0 {
		s.prompt = req.Content[0].Parts[0].Text
	}
	return &models.GenerateContentResponse{
		Content: []models.Content{{Role: models.SpeakerModel, Parts: []*models.Part{{Text: s.reply}}}},
	}, nil
}

func (s *stubModel) GenerateContentStream(ctx context.Context, req *models.GenerateContentRequest) (<-chan *models.GenerateContentResponse, error) {
	ch := make(chan *models.GenerateContentResponse)
	close(ch)
	return ch, nil
}

func TestAnswerGroundsPromptInChunks(t *testing.T) {
	model := &stubModel{reply: "  The grid was cut for performance reasons.  "}
	a := NewLLMAnswerer(model)

	result := &models.QueryResult{
		QueryType: models.QueryDecisionArchaeology,
		Chunks: []models.MemoryChunk{{
			ChunkID:   "m1_chunk_0",
			MeetingID: "m1",
			Timestamp: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
			Speaker:   "Sarah",
			Content:   "We decided to cut the hexagonal grid.",
			ReferencesPast: []models.PastReference{{
				TargetChunkID: "m0_chunk_2",
				Reference:     "the original grid design",
			}},
		}},
	}

	answer, err := a.Answer(context.Background(), "why did we cut the grid", result)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer != "The grid was cut for performance reasons." {
		t.Fatalf("answer = %q, want the trimmed model reply", answer)
	}

	for _, want := range []string{
		"[m1 | 2025-03-10 | Sarah] We decided to cut the hexagonal grid.",
		"refers back to m0_chunk_2: the original grid design",
		answerFocus[models.QueryDecisionArchaeology],
		"Question: why did we cut the grid",
	} {
		if !strings.Contains(model.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestAnswerWithoutChunksSkipsModel(t *testing.T) {
	model := &stubModel{reply: "should not be used"}
	a := NewLLMAnswerer(model)

	answer, err := a.Answer(context.Background(), "anything", &models.QueryResult{QueryType: models.QueryGeneral})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if model.calls != 0 {
		t.Fatalf("model called %d times, want 0", model.calls)
	}
	if answer == "" {
		t.Fatal("expected a canned answer for an empty result")
	}
}
