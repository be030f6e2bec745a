package temporal

import (
	"fmt"
	"strings"
	"time"

	"MeetMind/internal/models"
)

// Confidence on links derived from explicit temporal markers and on
// topic-continuation links before decay.
const markerLinkConfidence = 0.8

// markerWindows maps a spoken temporal marker to the day range, counted
// back from the chunk, where the referenced meeting is expected.
var markerWindows = map[string]struct{ minDays, maxDays int }{
	"yesterday":      {1, 2},
	"last meeting":   {1, 30},
	"last standup":   {1, 7},
	"last week":      {4, 11},
	"last sprint":    {7, 21},
	"last month":     {20, 40},
	"a few days ago": {2, 6},
}

// EnricherConfig assembles the enrichment pipeline. Now is the clock
// used for confidence decay; nil means time.Now.
type EnricherConfig struct {
	Resolver ResolverConfig
	Drift    DriftConfig
	Now      func() time.Time
}

// Enricher runs the full linking pipeline over a freshly extracted
// meeting against its historical context. Stages always run in the same
// order: reference resolution, drift detection, version chains, then
// confidence recomputation — chains must see resolved chunks, and decay
// must see the final link set.
type Enricher struct {
	resolver *Resolver
	drift    *DriftDetector
	now      func() time.Time
}

func NewEnricher(cfg EnricherConfig) *Enricher {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Enricher{
		resolver: NewResolver(cfg.Resolver),
		drift:    NewDriftDetector(cfg.Drift),
		now:      now,
	}
}

// EnrichReport surfaces what resolution could not place: open implicit
// references per chunk id. Unresolved references never land on chunks.
type EnrichReport struct {
	Unresolved map[string][]ImplicitReference
}

// Enrich mutates the given chunks in place. Historical chunks are also
// touched where a chain crosses meetings: version links on prior chunks
// are rebuilt so the chain stays consistent end to end.
func (e *Enricher) Enrich(chunks []*models.MemoryChunk, history []models.HistoricalMeeting) EnrichReport {
	ix := NewCandidateIndex(history)
	report := EnrichReport{Unresolved: make(map[string][]ImplicitReference)}

	for _, c := range chunks {
		res := e.resolver.Resolve(c, ix)
		for _, ref := range res.Resolved {
			addPastReference(c, ref)
		}
		if len(res.Unresolved) > 0 {
			report.Unresolved[c.ChunkID] = res.Unresolved
		}
		e.linkTemporalMarkers(c, history)
		e.linkTopicContinuations(c, ix)
	}

	for _, c := range chunks {
		c.DriftNotes = e.drift.Detect(c, ix)
	}

	all := make([]*models.MemoryChunk, 0, len(chunks)+len(ix.chunks))
	all = append(all, chunks...)
	all = append(all, ix.chunks...)
	BuildVersionChains(all)

	now := e.now()
	for _, c := range chunks {
		recomputeConfidences(c, now)
	}
	return report
}

// linkTemporalMarkers turns spoken markers like "last week" into links
// to the meeting they most plausibly name: the most recent meeting
// whose date falls inside the marker's day window. The link targets the
// latest chunk of that meeting.
func (e *Enricher) linkTemporalMarkers(c *models.MemoryChunk, history []models.HistoricalMeeting) {
	for _, marker := range c.TemporalMarkers {
		w, ok := markerWindows[strings.ToLower(strings.TrimSpace(marker))]
		if !ok {
			continue
		}
		var best *models.HistoricalMeeting
		for i := range history {
			m := &history[i]
			age := c.Timestamp.Sub(m.Date)
			if age < time.Duration(w.minDays)*24*time.Hour || age > time.Duration(w.maxDays)*24*time.Hour {
				continue
			}
			if best == nil || m.Date.After(best.Date) {
				best = m
			}
		}
		if best == nil || len(best.Chunks) == 0 {
			continue
		}
		target := &best.Chunks[0]
		for i := range best.Chunks {
			if best.Chunks[i].Timestamp.After(target.Timestamp) {
				target = &best.Chunks[i]
			}
		}
		addPastReference(c, models.PastReference{
			Kind:          models.ReferenceTemporal,
			Reference:     fmt.Sprintf("%s → %s", marker, best.MeetingID),
			TargetChunkID: target.ChunkID,
			Confidence:    markerLinkConfidence,
		})
	}
}

// linkTopicContinuations links each topic of the chunk to the most
// recent prior chunk on the same topic in another meeting. Continuation
// confidence starts at the marker level and decays with the age of the
// prior mention.
func (e *Enricher) linkTopicContinuations(c *models.MemoryChunk, ix *CandidateIndex) {
	for _, topic := range c.TopicsDiscussed {
		for _, prev := range ix.UsagesOf(topic, 0) {
			if prev.MeetingID == c.MeetingID || prev.Timestamp.After(c.Timestamp) {
				continue
			}
			conf := NewConfidence(markerLinkConfidence, prev.Timestamp)
			addPastReference(c, models.PastReference{
				Kind:          models.ReferenceTopicContinuation,
				Reference:     topic,
				TargetChunkID: prev.ChunkID,
				Confidence:    conf.At(c.Timestamp),
			})
			break
		}
	}
}

// addPastReference appends a link unless an identical kind/target pair
// already exists, so re-enrichment does not duplicate links.
func addPastReference(c *models.MemoryChunk, ref models.PastReference) {
	for _, r := range c.ReferencesPast {
		if r.Kind == ref.Kind && r.TargetChunkID == ref.TargetChunkID && r.Reference == ref.Reference {
			return
		}
	}
	c.ReferencesPast = append(c.ReferencesPast, ref)
}

// recomputeConfidences applies decay as of now. Version-evolution links
// stay pinned at ChainConfidence; temporal references with an explicit
// target date decay at the slow dated rate; everything else decays at
// the general rate from the chunk's own timestamp.
func recomputeConfidences(c *models.MemoryChunk, now time.Time) {
	for i := range c.ReferencesPast {
		r := &c.ReferencesPast[i]
		if r.Kind == models.ReferenceVersionEvolution {
			r.Confidence = ChainConfidence
			continue
		}
		conf := NewConfidence(r.Confidence, c.Timestamp)
		r.Confidence = conf.At(now)
	}
	for i := range c.TemporalReferences {
		t := &c.TemporalReferences[i]
		var conf Confidence
		if t.TargetDate != nil {
			conf = NewDatedConfidence(t.Confidence, c.Timestamp)
		} else {
			conf = NewConfidence(t.Confidence, c.Timestamp)
		}
		t.Confidence = conf.At(now)
	}
}
