package query

import (
	"context"
	"fmt"
	"strings"

	"MeetMind/internal/llm"
	"MeetMind/internal/models"
)

const answerPromptHeader = `You are a meeting-memory assistant. Answer the question using ONLY the retrieved meeting excerpts below. Cite speakers and meetings where it helps. If the excerpts do not contain the answer, say so plainly instead of guessing.`

// answerFocus gives the model a per-query-type instruction, mirroring
// how the query was classified.
var answerFocus = map[models.QueryType]string{
	models.QueryPreMeeting:          "Summarize what the asker needs to know walking into the meeting: open threads, prior decisions and anything promised to the attendees.",
	models.QueryGapAnalysis:         "List what was discussed or promised that the referenced material does not yet cover.",
	models.QueryCommitmentTracking:  "List each commitment with who made it, when, and any stated due date.",
	models.QueryDecisionArchaeology: "Reconstruct how the decision evolved across meetings, in order, with who argued for what.",
	models.QueryCrossProject:        "Point out where other projects' decisions or changes touch the asker's work.",
	models.QueryStatusCheck:         "Give the current state and call out anything blocked or overdue.",
	models.QueryGeneral:             "Answer directly and concisely.",
}

// LLMAnswerer synthesizes prose answers from retrieved chunks.
type LLMAnswerer struct {
	llm llm.LLM
}

func NewLLMAnswerer(client llm.LLM) *LLMAnswerer {
	return &LLMAnswerer{llm: client}
}

// Answer builds the grounding prompt and returns the model's prose.
// With no supporting chunks it answers without calling the model.
func (a *LLMAnswerer) Answer(ctx context.Context, query string, result *models.QueryResult) (string, error) {
	if len(result.Chunks) == 0 {
		return "No relevant meeting history was found for this question.", nil
	}

	var sb strings.Builder
	sb.WriteString(answerPromptHeader)
	sb.WriteString("\n\n")
	sb.WriteString(answerFocus[result.QueryType])
	sb.WriteString("\n\nRetrieved excerpts:\n")
	for _, c := range result.Chunks {
		sb.WriteString(fmt.Sprintf("- [%s | %s | %s] %s\n",
			c.MeetingID, c.Timestamp.Format("2006-01-02"), c.Speaker, c.ContextText()))
		for _, ref := range c.ReferencesPast {
			sb.WriteString(fmt.Sprintf("  (refers back to %s: %s)\n", ref.TargetChunkID, ref.Reference))
		}
	}
	sb.WriteString("\nQuestion: ")
	sb.WriteString(query)

	answer, err := llm.Generate(ctx, a.llm, sb.String())
	if err != nil {
		return "", fmt.Errorf("failed to synthesize answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}
