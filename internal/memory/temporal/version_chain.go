package temporal

import (
	"fmt"
	"sort"
	"strings"

	"MeetMind/internal/models"
)

// ChainConfidence is the fixed confidence on version-evolution links.
// Version chains come from explicit version metadata, not inference, so
// they neither decay nor vary by distance.
const ChainConfidence = 0.95

// BuildVersionChains links successive versions of each named artifact
// across the given chunks. Versions order lexicographically by version
// string; each consecutive pair gets a backward version_evolution
// reference on the newer chunk and a forward link on the older one.
//
// The builder first strips every existing version_evolution link, so
// running it repeatedly over the same chunks is idempotent and chains
// are rebuilt, not appended.
func BuildVersionChains(chunks []*models.MemoryChunk) {
	byArtifact := make(map[string][]*models.MemoryChunk)
	for _, c := range chunks {
		stripChainLinks(c)
		if c.VersionInfo == nil {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(c.VersionInfo.Artifact))
		if key == "" {
			continue
		}
		byArtifact[key] = append(byArtifact[key], c)
	}

	for _, chain := range byArtifact {
		if len(chain) < 2 {
			continue
		}
		// Lexicographic version order; timestamp then chunk id break ties
		// so equal version strings still chain deterministically.
		sort.SliceStable(chain, func(a, b int) bool {
			va, vb := chain[a].VersionInfo.Version, chain[b].VersionInfo.Version
			if va != vb {
				return va < vb
			}
			if !chain[a].Timestamp.Equal(chain[b].Timestamp) {
				return chain[a].Timestamp.Before(chain[b].Timestamp)
			}
			return chain[a].ChunkID < chain[b].ChunkID
		})

		for i := 1; i < len(chain); i++ {
			prev, next := chain[i-1], chain[i]
			desc := fmt.Sprintf("%s %s → %s",
				next.VersionInfo.Artifact, prev.VersionInfo.Version, next.VersionInfo.Version)
			next.ReferencesPast = append(next.ReferencesPast, models.PastReference{
				Kind:          models.ReferenceVersionEvolution,
				Reference:     desc,
				TargetChunkID: prev.ChunkID,
				Confidence:    ChainConfidence,
			})
			prev.CreatesFuture = append(prev.CreatesFuture, models.FutureLink{
				Kind:          models.FutureVersionEvolution,
				Description:   desc,
				TargetChunkID: next.ChunkID,
			})
		}
	}
}

func stripChainLinks(c *models.MemoryChunk) {
	past := c.ReferencesPast[:0]
	for _, r := range c.ReferencesPast {
		if r.Kind != models.ReferenceVersionEvolution {
			past = append(past, r)
		}
	}
	c.ReferencesPast = past

	future := c.CreatesFuture[:0]
	for _, f := range c.CreatesFuture {
		if f.Kind != models.FutureVersionEvolution {
			future = append(future, f)
		}
	}
	c.CreatesFuture = future
}
