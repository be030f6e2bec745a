package temporal

import (
	"testing"
	"time"

	"MeetMind/internal/models"
)

func versionChunk(id, artifact, version string, at time.Time) *models.MemoryChunk {
	return &models.MemoryChunk{
		ChunkID:   id,
		Timestamp: at,
		Content:   artifact + " " + version,
		VersionInfo: &models.VersionInfo{
			Artifact: artifact,
			Version:  version,
		},
	}
}

func TestBuildVersionChainsLinksConsecutiveVersions(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	v1 := versionChunk("c1", "API schema", "v1", at)
	v3 := versionChunk("c3", "API schema", "v3", at.Add(48*time.Hour))
	v2 := versionChunk("c2", "API schema", "v2", at.Add(24*time.Hour))

	BuildVersionChains([]*models.MemoryChunk{v1, v3, v2})

	if len(v1.ReferencesPast) != 0 {
		t.Fatalf("v1 has backward links: %+v", v1.ReferencesPast)
	}
	assertChainedTo := func(c *models.MemoryChunk, target string) {
		t.Helper()
		if len(c.ReferencesPast) != 1 {
			t.Fatalf("%s has %d backward links, want 1", c.ChunkID, len(c.ReferencesPast))
		}
		r := c.ReferencesPast[0]
		if r.Kind != models.ReferenceVersionEvolution || r.TargetChunkID != target {
			t.Fatalf("%s links to %s (%s), want %s", c.ChunkID, r.TargetChunkID, r.Kind, target)
		}
		if r.Confidence != ChainConfidence {
			t.Fatalf("%s chain confidence = %v, want %v", c.ChunkID, r.Confidence, ChainConfidence)
		}
	}
	assertChainedTo(v2, "c1")
	assertChainedTo(v3, "c2")

	if len(v1.CreatesFuture) != 1 || v1.CreatesFuture[0].TargetChunkID != "c2" {
		t.Fatalf("v1 forward links = %+v, want one to c2", v1.CreatesFuture)
	}
	if len(v2.CreatesFuture) != 1 || v2.CreatesFuture[0].TargetChunkID != "c3" {
		t.Fatalf("v2 forward links = %+v, want one to c3", v2.CreatesFuture)
	}
	if len(v3.CreatesFuture) != 0 {
		t.Fatalf("v3 forward links = %+v, want none", v3.CreatesFuture)
	}
}

func TestBuildVersionChainsIsIdempotent(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	v1 := versionChunk("c1", "schema", "v1", at)
	v2 := versionChunk("c2", "schema", "v2", at.Add(time.Hour))
	chunks := []*models.MemoryChunk{v1, v2}

	BuildVersionChains(chunks)
	BuildVersionChains(chunks)
	BuildVersionChains(chunks)

	if len(v2.ReferencesPast) != 1 {
		t.Fatalf("v2 accumulated %d backward links, want 1", len(v2.ReferencesPast))
	}
	if len(v1.CreatesFuture) != 1 {
		t.Fatalf("v1 accumulated %d forward links, want 1", len(v1.CreatesFuture))
	}
}

func TestBuildVersionChainsKeepsArtifactsApart(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	a := versionChunk("c1", "schema", "v1", at)
	b := versionChunk("c2", "roadmap", "v2", at.Add(time.Hour))

	BuildVersionChains([]*models.MemoryChunk{a, b})

	if len(a.CreatesFuture) != 0 || len(b.ReferencesPast) != 0 {
		t.Fatalf("distinct artifacts were chained: %+v / %+v", a.CreatesFuture, b.ReferencesPast)
	}
}

// Version order is lexicographic by version string, so "v10" sorts
// before "v2". Callers that need numeric ordering must zero-pad.
func TestBuildVersionChainsLexicographicOrder(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	v2 := versionChunk("c2", "schema", "v2", at)
	v10 := versionChunk("c10", "schema", "v10", at.Add(time.Hour))

	BuildVersionChains([]*models.MemoryChunk{v2, v10})

	if len(v2.ReferencesPast) != 1 || v2.ReferencesPast[0].TargetChunkID != "c10" {
		t.Fatalf("expected v10 < v2 lexicographically; v2 backward links = %+v", v2.ReferencesPast)
	}
}

func TestBuildVersionChainsPreservesOtherLinks(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	v1 := versionChunk("c1", "schema", "v1", at)
	v2 := versionChunk("c2", "schema", "v2", at.Add(time.Hour))
	v2.ReferencesPast = []models.PastReference{{
		Kind:          models.ReferenceImplicit,
		Reference:     "the original schema",
		TargetChunkID: "c0",
		Confidence:    0.8,
	}}

	BuildVersionChains([]*models.MemoryChunk{v1, v2})

	if len(v2.ReferencesPast) != 2 {
		t.Fatalf("v2 has %d backward links, want implicit + chain", len(v2.ReferencesPast))
	}
	if v2.ReferencesPast[0].Kind != models.ReferenceImplicit {
		t.Fatalf("implicit link was dropped: %+v", v2.ReferencesPast)
	}
}
