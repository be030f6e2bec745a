package temporal

import (
	"math"
	"regexp"
	"time"

	"MeetMind/internal/models"
)

// RefKind is the inferred kind of an implicit reference.
type RefKind string

const (
	RefArtifact RefKind = "artifact"
	RefDecision RefKind = "decision"
	RefPerson   RefKind = "person"
	RefEvent    RefKind = "event"
)

// ImplicitReference is a vague textual pointer detected in a chunk. It
// lives only inside the resolver; resolved references become
// models.PastReference entries on the chunk.
type ImplicitReference struct {
	Text          string // the captured referent, e.g. "design"
	Kind          RefKind
	ContextWindow string // the full matched phrase
}

// Phrase patterns for implicit references, with the reference kind each
// one implies. Matching is case-insensitive over chunk content.
var implicitPatterns = []struct {
	re   *regexp.Regexp
	kind RefKind
}{
	{regexp.MustCompile(`(?i)\bthe original (\w+)`), RefArtifact},
	{regexp.MustCompile(`(?i)\bthat (\w+) we discussed\b`), RefDecision},
	{regexp.MustCompile(`(?i)\bour (\w+) approach\b`), RefDecision},
	{regexp.MustCompile(`(?i)\bthe (\w+) from last time\b`), RefEvent},
	{regexp.MustCompile(`(?i)\bthe previous (\w+)\b`), RefArtifact},
	{regexp.MustCompile(`(?i)\bthe (\w+) we agreed on\b`), RefDecision},
	{regexp.MustCompile(`(?i)\bas (\w+) mentioned\b`), RefPerson},
	{regexp.MustCompile(`(?i)\b(\w+)'s earlier (?:point|suggestion|proposal|comment)\b`), RefPerson},
	{regexp.MustCompile(`(?i)\bthe last (meeting|standup|review|sync)\b`), RefEvent},
}

// ExtractReferences detects implicit-reference phrases in content.
// Multiple phrases in one chunk are extracted (and later resolved)
// independently.
func ExtractReferences(content string) []ImplicitReference {
	var refs []ImplicitReference
	for _, p := range implicitPatterns {
		for _, m := range p.re.FindAllStringSubmatch(content, -1) {
			refs = append(refs, ImplicitReference{
				Text:          m[1],
				Kind:          p.kind,
				ContextWindow: m[0],
			})
		}
	}
	return refs
}

// ResolverConfig tunes reference resolution. Zero values fall back to
// the documented defaults.
type ResolverConfig struct {
	WindowHours   float64 // soft temporal-proximity window, default 168
	Threshold     float64 // minimum composite score to resolve, default 0.7
	MaxCandidates int     // pool bound per reference, default 5
}

func (c ResolverConfig) withDefaults() ResolverConfig {
	if c.WindowHours == 0 {
		c.WindowHours = 168
	}
	if c.Threshold == 0 {
		c.Threshold = 0.7
	}
	if c.MaxCandidates == 0 {
		c.MaxCandidates = 5
	}
	return c
}

// Resolver maps implicit references in a chunk to the most probable
// earlier chunk from the historical context.
type Resolver struct {
	cfg ResolverConfig
}

// NewResolver creates a resolver with the given tuning (zero values use
// defaults).
func NewResolver(cfg ResolverConfig) *Resolver {
	return &Resolver{cfg: cfg.withDefaults()}
}

// Resolution is the outcome for one chunk: references that resolved and
// those that did not. Unresolved references are reported for callers
// that want visibility into open references; they are never written to
// the chunk.
type Resolution struct {
	Resolved   []models.PastReference
	Unresolved []ImplicitReference
}

// Resolve scores every candidate for every implicit reference in the
// chunk and keeps the single best candidate per reference when it
// clears the threshold. An empty candidate pool is a no-op, not an
// error.
func (r *Resolver) Resolve(chunk *models.MemoryChunk, ix *CandidateIndex) Resolution {
	var res Resolution
	chunkWords := tokenize(chunk.ContextText())

	for _, ref := range ExtractReferences(chunk.Content) {
		pool := r.candidatePool(ref, chunk.Timestamp, ix)
		best, bestScore := r.pickBest(chunk, chunkWords, pool)
		if best == nil || bestScore < r.cfg.Threshold {
			res.Unresolved = append(res.Unresolved, ref)
			continue
		}
		res.Resolved = append(res.Resolved, models.PastReference{
			Kind:          models.ReferenceImplicit,
			Reference:     ref.ContextWindow,
			TargetChunkID: best.ChunkID,
			Confidence:    models.ClampUnit(bestScore),
		})
	}
	return res
}

// candidatePool bounds the scored pool. Candidates inside the temporal
// window fill the pool first; older ones are admitted only into the
// remaining slots. The window is a policy preference, never a hard
// cutoff — the only hard rule (no forward-in-time targets) is enforced
// by the index.
func (r *Resolver) candidatePool(ref ImplicitReference, at time.Time, ix *CandidateIndex) []*models.MemoryChunk {
	all := ix.CandidatesFor(ref, at, 0)
	window := time.Duration(r.cfg.WindowHours * float64(time.Hour))

	var recent, older []*models.MemoryChunk
	for _, c := range all {
		if c.Timestamp.IsZero() || at.Sub(c.Timestamp) <= window {
			recent = append(recent, c)
		} else {
			older = append(older, c)
		}
	}
	pool := append(recent, older...)
	if len(pool) > r.cfg.MaxCandidates {
		pool = pool[:r.cfg.MaxCandidates]
	}
	return pool
}

// pickBest returns the highest-scoring candidate. Ties break to the
// most recent timestamp, then the lexicographically smallest chunk id,
// so resolution is deterministic.
func (r *Resolver) pickBest(chunk *models.MemoryChunk, chunkWords map[string]struct{}, pool []*models.MemoryChunk) (*models.MemoryChunk, float64) {
	const eps = 1e-9
	var best *models.MemoryChunk
	bestScore := -1.0
	for _, cand := range pool {
		score := scoreCandidate(chunk, chunkWords, cand)
		switch {
		case score > bestScore+eps:
			best, bestScore = cand, score
		case math.Abs(score-bestScore) <= eps && best != nil:
			if cand.Timestamp.After(best.Timestamp) ||
				(cand.Timestamp.Equal(best.Timestamp) && cand.ChunkID < best.ChunkID) {
				best = cand
			}
		}
	}
	return best, bestScore
}

// scoreCandidate computes the composite score:
// 0.5·jaccard + 0.3·exp(-0.01·|Δhours|) + 0.2·same-speaker.
// When the candidate has no timestamp the temporal term is omitted and
// the remaining weights are renormalized proportionally.
func scoreCandidate(chunk *models.MemoryChunk, chunkWords map[string]struct{}, cand *models.MemoryChunk) float64 {
	overlap := jaccard(chunkWords, tokenize(cand.ContextText()))
	speaker := 0.0
	if cand.Speaker != "" && cand.Speaker == chunk.Speaker {
		speaker = 1.0
	}

	if cand.Timestamp.IsZero() {
		return (0.5*overlap + 0.2*speaker) / 0.7
	}
	hours := math.Abs(chunk.Timestamp.Sub(cand.Timestamp).Hours())
	proximity := math.Exp(-0.01 * hours)
	return 0.5*overlap + 0.3*proximity + 0.2*speaker
}
