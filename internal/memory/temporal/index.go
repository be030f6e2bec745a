package temporal

import (
	"sort"
	"strings"
	"time"

	"MeetMind/internal/models"
)

// CandidateIndex is a per-call view over the historical context: every
// prior chunk, newest first, plus a term lookup for drift detection.
// It is built fresh for each enrichment call and owned by the caller;
// nothing in this package keeps state across calls.
type CandidateIndex struct {
	chunks []*models.MemoryChunk // newest first
	byTerm map[string][]*models.MemoryChunk
}

// NewCandidateIndex flattens the historical meetings into an index.
// The input is treated as read-only; chunks are referenced, not copied.
func NewCandidateIndex(history []models.HistoricalMeeting) *CandidateIndex {
	ix := &CandidateIndex{byTerm: make(map[string][]*models.MemoryChunk)}
	for i := range history {
		for j := range history[i].Chunks {
			c := &history[i].Chunks[j]
			ix.chunks = append(ix.chunks, c)
			for _, term := range c.TopicsDiscussed {
				key := strings.ToLower(strings.TrimSpace(term))
				ix.byTerm[key] = append(ix.byTerm[key], c)
			}
			for _, term := range c.EntitiesMentioned {
				key := strings.ToLower(strings.TrimSpace(term))
				ix.byTerm[key] = append(ix.byTerm[key], c)
			}
		}
	}
	newestFirst := func(list []*models.MemoryChunk) {
		sort.SliceStable(list, func(a, b int) bool {
			return list[a].Timestamp.After(list[b].Timestamp)
		})
	}
	newestFirst(ix.chunks)
	for _, list := range ix.byTerm {
		newestFirst(list)
	}
	return ix
}

// CandidatesFor returns up to max candidate targets for an implicit
// reference: historical chunks that lexically contain the referenced
// word and fit the reference kind. Chunks spoken strictly after the
// referencing chunk are never admitted. Candidates are ordered newest
// first, so bounding the pool keeps the most recent ones; age beyond
// the resolver's window is a scoring policy, not a cutoff here.
func (ix *CandidateIndex) CandidatesFor(ref ImplicitReference, before time.Time, max int) []*models.MemoryChunk {
	needle := strings.ToLower(ref.Text)
	var out []*models.MemoryChunk
	for _, c := range ix.chunks {
		if !before.IsZero() && c.Timestamp.After(before) {
			continue
		}
		if !strings.Contains(strings.ToLower(c.Content), needle) {
			continue
		}
		if !kindMatches(c, ref.Kind) {
			continue
		}
		out = append(out, c)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}

// UsagesOf returns up to max most recent historical chunks that mention
// the term as a topic or entity.
func (ix *CandidateIndex) UsagesOf(term string, max int) []*models.MemoryChunk {
	list := ix.byTerm[strings.ToLower(strings.TrimSpace(term))]
	if max > 0 && len(list) > max {
		list = list[:max]
	}
	return list
}

// kindMatches routes a candidate through the kind-appropriate index:
// decisions, artifacts, people and events each accept a different slice
// of the history.
func kindMatches(c *models.MemoryChunk, kind RefKind) bool {
	switch kind {
	case RefDecision:
		return c.MemoryType == models.MemoryDecision || c.InteractionType == models.InteractionDecision ||
			c.MemoryType == models.MemoryCommitment
	case RefArtifact:
		return c.VersionInfo != nil || c.MemoryType == models.MemoryTechnical ||
			c.StructuredData != nil || len(c.TopicsDiscussed) > 0
	case RefPerson:
		return c.Speaker != "" || len(c.EntitiesMentioned) > 0
	case RefEvent:
		return true
	default:
		return true
	}
}
