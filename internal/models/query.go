package models

// QueryType is the closed set of query classifications. Unmatched
// queries always classify as QueryGeneral, so the orchestrator never
// lacks a plan.
type QueryType string

const (
	QueryPreMeeting          QueryType = "pre_meeting"
	QueryGapAnalysis         QueryType = "gap_analysis"
	QueryCommitmentTracking  QueryType = "commitment_tracking"
	QueryDecisionArchaeology QueryType = "decision_archaeology"
	QueryCrossProject        QueryType = "cross_project"
	QueryStatusCheck         QueryType = "status_check"
	QueryGeneral             QueryType = "general"
)

// QueryPlan is the classification of a natural-language query: a type
// plus a temporal scope driving retrieval strategy.
type QueryPlan struct {
	OriginalQuery string    `json:"original_query"`
	QueryType     QueryType `json:"query_type"`
	TemporalScope string    `json:"temporal_scope"` // default "recent"
	Entities      []string  `json:"entities,omitempty"`
}

// QueryResult is the orchestrator's hand-off to answer generation:
// which chunks support the query and how it was classified. Prose
// synthesis happens elsewhere.
type QueryResult struct {
	QueryType QueryType     `json:"query_type"`
	Chunks    []MemoryChunk `json:"chunks"`
	Answer    string        `json:"answer,omitempty"` // filled in by the answerer
}
