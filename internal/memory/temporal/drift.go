package temporal

import (
	"strings"

	"MeetMind/internal/models"
)

// DriftConfig tunes semantic drift detection. Zero values fall back to
// the documented defaults.
type DriftConfig struct {
	MinUsages     int     // history required before judging, default 3
	MaxUsages     int     // most recent usages compared, default 5
	OverlapCutoff float64 // average jaccard below this flags drift, default 0.3
}

func (c DriftConfig) withDefaults() DriftConfig {
	if c.MinUsages == 0 {
		c.MinUsages = 3
	}
	if c.MaxUsages == 0 {
		c.MaxUsages = 5
	}
	if c.OverlapCutoff == 0 {
		c.OverlapCutoff = 0.3
	}
	return c
}

// DriftDetector flags topics whose surrounding vocabulary has shifted
// away from how the topic was historically used. It annotates, never
// edits: topic lists stay untouched and drift is recorded as notes.
type DriftDetector struct {
	cfg DriftConfig
}

func NewDriftDetector(cfg DriftConfig) *DriftDetector {
	return &DriftDetector{cfg: cfg.withDefaults()}
}

// Detect compares each term of the chunk, topics and entities alike,
// against its most recent historical usages. Terms with too little
// history are skipped, not flagged. The returned notes carry a
// best-effort equivalent term: the topic most often co-listed in the
// historical usages that the current chunk does not list itself.
func (d *DriftDetector) Detect(chunk *models.MemoryChunk, ix *CandidateIndex) []models.DriftNote {
	words := tokenize(chunk.ContextText())

	var notes []models.DriftNote
	for _, topic := range driftTerms(chunk) {
		usages := d.priorUsages(chunk, topic, ix)
		if len(usages) < d.cfg.MinUsages {
			continue
		}
		total := 0.0
		for _, u := range usages {
			total += jaccard(words, tokenize(u.ContextText()))
		}
		avg := total / float64(len(usages))
		if avg >= d.cfg.OverlapCutoff {
			continue
		}
		notes = append(notes, models.DriftNote{
			Term:           topic,
			AverageOverlap: avg,
			Equivalent:     equivalentTerm(chunk, topic, usages),
			DetectedAt:     chunk.Timestamp,
		})
	}
	return notes
}

// driftTerms returns the chunk's topics and entities as one list, with
// duplicates across the two removed case-insensitively.
func driftTerms(chunk *models.MemoryChunk) []string {
	terms := make([]string, 0, len(chunk.TopicsDiscussed)+len(chunk.EntitiesMentioned))
	seen := make(map[string]bool)
	for _, list := range [][]string{chunk.TopicsDiscussed, chunk.EntitiesMentioned} {
		for _, t := range list {
			key := strings.ToLower(strings.TrimSpace(t))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			terms = append(terms, t)
		}
	}
	return terms
}

// priorUsages returns up to MaxUsages historical chunks mentioning the
// term, excluding the chunk under inspection and anything spoken after it.
func (d *DriftDetector) priorUsages(chunk *models.MemoryChunk, term string, ix *CandidateIndex) []*models.MemoryChunk {
	var out []*models.MemoryChunk
	for _, u := range ix.UsagesOf(term, 0) {
		if u.ChunkID == chunk.ChunkID || u.Timestamp.After(chunk.Timestamp) {
			continue
		}
		out = append(out, u)
		if len(out) >= d.cfg.MaxUsages {
			break
		}
	}
	return out
}

// equivalentTerm guesses what the drifted term now corresponds to: the
// most frequent co-listed topic across the historical usages that the
// current chunk does not already list. Empty when nothing qualifies.
func equivalentTerm(chunk *models.MemoryChunk, term string, usages []*models.MemoryChunk) string {
	self := strings.ToLower(strings.TrimSpace(term))
	counts := make(map[string]int)
	display := make(map[string]string)
	for _, u := range usages {
		for _, t := range u.TopicsDiscussed {
			key := strings.ToLower(strings.TrimSpace(t))
			if key == "" || key == self || chunk.MentionsTerm(key) {
				continue
			}
			counts[key]++
			display[key] = t
		}
	}
	best, bestCount := "", 0
	for key, n := range counts {
		if n > bestCount || (n == bestCount && key < best) {
			best, bestCount = key, n
		}
	}
	return display[best]
}
