package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"MeetMind/internal/llm"
	"MeetMind/internal/models"
	"MeetMind/pkg/logger"
)

const extractChunksPrompt = `You are an analyst converting a meeting transcript into structured memory chunks.

For every meaningful statement in the transcript, emit one chunk object. Capture decisions, commitments, questions, technical details and risks individually; merge small-talk into the nearest substantive chunk or drop it.

Return ONLY a JSON object of the form:
{"chunks": [
  {
    "speaker": "who said it",
    "addressed_to": ["names, empty for the whole room"],
    "interaction_type": "request|question|answer|decision|commitment|update|explanation|discussion",
    "memory_type": "decision|action|topic|question|commitment|reference|risk|temporal|request|technical",
    "content": "the statement, lightly cleaned",
    "full_context": "the statement with enough surrounding context to stand alone",
    "temporal_markers": ["last week", ...],
    "topics_discussed": ["topic", ...],
    "entities_mentioned": ["person or artifact", ...],
    "version_info": {"artifact": "", "version": "", "previous_version": "", "changes": [], "rationale": ""},
    "importance_score": 1-10,
    "confidence": 0-1
  }
]}

Omit version_info unless the statement concretely describes a version of a named artifact. Do not invent information that is not in the transcript.`

// LLMExtractor extracts chunks by prompting an LLM over the segmented
// transcript. When the model response cannot be parsed it falls back to
// rule-based chunks so ingestion degrades instead of failing.
type LLMExtractor struct {
	llm llm.LLM
	log *logger.Logger
}

// NewLLMExtractor creates a new LLMExtractor.
func NewLLMExtractor(client llm.LLM, log *logger.Logger) *LLMExtractor {
	return &LLMExtractor{llm: client, log: log}
}

// chunkDraft is the wire shape the model returns; it is normalized into
// a models.MemoryChunk afterwards.
type chunkDraft struct {
	Speaker           string              `json:"speaker"`
	AddressedTo       []string            `json:"addressed_to"`
	InteractionType   string              `json:"interaction_type"`
	MemoryType        string              `json:"memory_type"`
	Content           string              `json:"content"`
	FullContext       string              `json:"full_context"`
	TemporalMarkers   []string            `json:"temporal_markers"`
	TopicsDiscussed   []string            `json:"topics_discussed"`
	EntitiesMentioned []string            `json:"entities_mentioned"`
	VersionInfo       *models.VersionInfo `json:"version_info"`
	ImportanceScore   float64             `json:"importance_score"`
	Confidence        float64             `json:"confidence"`
}

// Extract segments the transcript, prompts the model and assembles the
// final chunks. Chunk ids are assigned sequentially within the meeting
// and timestamps inherit the meeting date.
func (e *LLMExtractor) Extract(ctx context.Context, meeting models.Meeting, transcript string) ([]models.MemoryChunk, error) {
	segments := SegmentTranscript(transcript)
	if len(segments) == 0 {
		return nil, fmt.Errorf("transcript for meeting %s has no content", meeting.MeetingID)
	}

	drafts, err := e.promptModel(ctx, segments)
	if err != nil {
		if e.log != nil {
			e.log.WithError(models.ErrorInfo{Message: err.Error()}).
				Warn("LLM extraction failed, falling back to rule-based chunks")
		}
		drafts = heuristicDrafts(segments)
	}

	chunks := make([]models.MemoryChunk, 0, len(drafts))
	for i, d := range drafts {
		c := models.MemoryChunk{
			ChunkID:           fmt.Sprintf("%s_chunk_%d", meeting.MeetingID, i),
			MeetingID:         meeting.MeetingID,
			Timestamp:         meeting.Date,
			Speaker:           strings.TrimSpace(d.Speaker),
			AddressedTo:       d.AddressedTo,
			InteractionType:   models.ParseInteractionType(d.InteractionType),
			MemoryType:        models.ParseMemoryType(d.MemoryType),
			Content:           d.Content,
			FullContext:       d.FullContext,
			TemporalMarkers:   d.TemporalMarkers,
			TopicsDiscussed:   d.TopicsDiscussed,
			EntitiesMentioned: d.EntitiesMentioned,
			VersionInfo:       d.VersionInfo,
			ImportanceScore:   d.ImportanceScore,
			Confidence:        d.Confidence,
		}
		if len(c.TemporalMarkers) == 0 {
			c.TemporalMarkers = TemporalMarkers(c.Content)
		}
		c.Normalize()
		if c.Content != "" {
			chunks = append(chunks, c)
		}
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks extracted for meeting %s", meeting.MeetingID)
	}
	return chunks, nil
}

func (e *LLMExtractor) promptModel(ctx context.Context, segments []Segment) ([]chunkDraft, error) {
	var sb strings.Builder
	sb.WriteString(extractChunksPrompt)
	sb.WriteString("\n\nTranscript:\n")
	for _, s := range segments {
		if s.Speaker != "" {
			sb.WriteString(s.Speaker)
			sb.WriteString(": ")
		}
		sb.WriteString(s.Text)
		sb.WriteString("\n")
	}

	raw, err := llm.Generate(ctx, e.llm, sb.String())
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	var response struct {
		Chunks []chunkDraft `json:"chunks"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal extraction response: %w", err)
	}
	if len(response.Chunks) == 0 {
		return nil, fmt.Errorf("model returned no chunks")
	}
	return response.Chunks, nil
}

// heuristicDrafts builds one draft per segment from surface cues.
func heuristicDrafts(segments []Segment) []chunkDraft {
	drafts := make([]chunkDraft, 0, len(segments))
	for _, s := range segments {
		it, mt := classifySegment(s.Text)
		draft := chunkDraft{
			Speaker:         s.Speaker,
			InteractionType: string(it),
			MemoryType:      string(mt),
			Content:         s.Text,
			TemporalMarkers: TemporalMarkers(s.Text),
		}
		if m := versionRe.FindStringSubmatch(s.Text); m != nil {
			draft.TopicsDiscussed = append(draft.TopicsDiscussed, "version "+m[1])
		}
		drafts = append(drafts, draft)
	}
	return drafts
}

// stripCodeFence removes a markdown code fence the model may wrap the
// JSON in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
