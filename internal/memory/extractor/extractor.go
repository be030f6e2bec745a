package extractor

import (
	"context"
	"regexp"
	"strings"

	"MeetMind/internal/models"
)

// Extractor turns a raw transcript into memory chunks for one meeting.
type Extractor interface {
	Extract(ctx context.Context, meeting models.Meeting, transcript string) ([]models.MemoryChunk, error)
}

var (
	temporalMarkerRe = regexp.MustCompile(`(?i)\b(yesterday|today|tomorrow|last (?:week|month|meeting|sprint|standup|time)|next (?:week|month|meeting|sprint)|this (?:week|month|sprint)|a few days ago)\b`)
	versionRe        = regexp.MustCompile(`(?i)\b(?:v|version\s+)(\d+(?:\.\d+)*)\b`)
	deadlineRe       = regexp.MustCompile(`(?i)\bby (?:end of |next |this )?\w+(?:day)?\b`)
)

// TemporalMarkers returns the normalized temporal phrases in text.
func TemporalMarkers(text string) []string {
	var markers []string
	seen := make(map[string]bool)
	for _, m := range temporalMarkerRe.FindAllString(text, -1) {
		key := strings.ToLower(m)
		if !seen[key] {
			seen[key] = true
			markers = append(markers, key)
		}
	}
	return markers
}

// classifySegment guesses interaction and memory type from surface
// cues. Used for chunks the LLM did not classify and by the heuristic
// fallback path.
func classifySegment(text string) (models.InteractionType, models.MemoryType) {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "we decided") || strings.Contains(lower, "decision") ||
		strings.Contains(lower, "let's go with") || strings.Contains(lower, "we agreed"):
		return models.InteractionDecision, models.MemoryDecision
	case strings.Contains(lower, "i'll ") || strings.Contains(lower, "i will ") ||
		strings.Contains(lower, "i can take") || deadlineRe.MatchString(lower):
		return models.InteractionCommitment, models.MemoryCommitment
	case strings.HasSuffix(strings.TrimSpace(text), "?"):
		return models.InteractionQuestion, models.MemoryQuestion
	case strings.Contains(lower, "update") || strings.Contains(lower, "status") ||
		strings.Contains(lower, "progress"):
		return models.InteractionUpdate, models.MemoryTopic
	case strings.Contains(lower, "risk") || strings.Contains(lower, "concern") ||
		strings.Contains(lower, "worried"):
		return models.InteractionDiscussion, models.MemoryRisk
	default:
		return models.InteractionDiscussion, models.MemoryTopic
	}
}
