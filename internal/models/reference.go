package models

import "time"

// ReferenceKind tags a PastReference with its provenance. Consumers
// switch exhaustively on the kind; each kind fills only its own fields.
type ReferenceKind string

const (
	// ReferenceImplicit is a resolved vague phrase ("the original design").
	ReferenceImplicit ReferenceKind = "implicit"
	// ReferenceVersionEvolution links successive versions of one artifact.
	ReferenceVersionEvolution ReferenceKind = "version_evolution"
	// ReferenceTopicContinuation links a chunk to an earlier chunk on the
	// same topic.
	ReferenceTopicContinuation ReferenceKind = "topic_continuation"
	// ReferenceTemporal links a chunk to a prior meeting via an explicit
	// temporal marker ("last week").
	ReferenceTemporal ReferenceKind = "temporal_reference"
)

// PastReference is a backward link left on a chunk by the enrichment
// pipeline. TargetChunkID is empty only while a reference is unresolved;
// unresolved references are not persisted on the chunk.
type PastReference struct {
	Kind          ReferenceKind `json:"kind"`
	Reference     string        `json:"reference"` // the phrase or derived description
	TargetChunkID string        `json:"target_chunk_id,omitempty"`
	Confidence    float64       `json:"confidence"`
}

// FutureKind tags a FutureLink.
type FutureKind string

const (
	FutureAction           FutureKind = "action"
	FutureCommitment       FutureKind = "commitment"
	FutureFollowUp         FutureKind = "follow_up"
	FutureVersionEvolution FutureKind = "version_evolution"
)

// FutureLink is a forward link: work or evolution a chunk creates.
type FutureLink struct {
	Kind          FutureKind `json:"kind"`
	Description   string     `json:"description"`
	Owner         string     `json:"owner,omitempty"`
	Due           string     `json:"due,omitempty"`
	TargetChunkID string     `json:"target_chunk_id,omitempty"` // set for version_evolution
}

// DriftNote records that a term's surrounding vocabulary has shifted
// relative to its historical usage. It never mutates the topic list.
type DriftNote struct {
	Term           string    `json:"term"`
	AverageOverlap float64   `json:"average_overlap"`
	Equivalent     string    `json:"equivalent,omitempty"` // best-effort replacement term
	DetectedAt     time.Time `json:"detected_at"`
}
