package query

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"MeetMind/internal/models"
	"MeetMind/pkg/logger"
)

// Retriever fetches candidate chunks for a query plan. The iteration
// counter starts at 0 for the initial fetch; later iterations may widen
// the search however the implementation sees fit.
type Retriever interface {
	Retrieve(ctx context.Context, plan models.QueryPlan, iteration int) ([]models.MemoryChunk, error)
}

// Answerer turns retrieved chunks into prose. Optional: without one the
// orchestrator returns chunks only.
type Answerer interface {
	Answer(ctx context.Context, query string, result *models.QueryResult) (string, error)
}

// Retrieval bounds. Fewer than MinChunks counts as insufficient context
// and triggers another iteration, up to MaxIterations extra fetches.
const (
	MinChunks     = 5
	MaxIterations = 3
)

// Orchestrator classifies a query, drives iterative retrieval and hands
// the supporting chunks to the answerer.
type Orchestrator struct {
	retriever Retriever
	answerer  Answerer
	log       *logger.Logger
}

func NewOrchestrator(retriever Retriever, answerer Answerer, log *logger.Logger) *Orchestrator {
	return &Orchestrator{retriever: retriever, answerer: answerer, log: log}
}

// classification rules, checked in order; the first hit wins.
var queryRules = []struct {
	qtype    models.QueryType
	keywords []string
}{
	{models.QueryPreMeeting, []string{"prepare", "before the", "upcoming", "board meeting", "next meeting", "brief me"}},
	{models.QueryGapAnalysis, []string{"slide", "deck", "missing", "gap", "haven't covered", "what's left"}},
	{models.QueryCommitmentTracking, []string{"commit", "promised", "action item", "follow up", "follow-up", "owes", "supposed to"}},
	{models.QueryDecisionArchaeology, []string{"decid", "why did we", "decision", "how did we end up", "rationale"}},
	{models.QueryCrossProject, []string{"cross", "affect my project", "other project", "other teams", "across projects"}},
	{models.QueryStatusCheck, []string{"status", "blocked", "blocker", "progress", "where are we", "how far"}},
}

var scopeMarkers = []string{"today", "yesterday", "this week", "last week", "this month", "last month", "this quarter", "last quarter"}

var entityPattern = regexp.MustCompile(`\b[A-Z][a-zA-Z0-9]+\b`)

// PlanQuery classifies a natural-language query into a retrieval plan.
// Unmatched queries classify as general; classification never fails.
func PlanQuery(q string) models.QueryPlan {
	plan := models.QueryPlan{
		OriginalQuery: q,
		QueryType:     models.QueryGeneral,
		TemporalScope: "recent",
	}

	lower := strings.ToLower(q)
	for _, rule := range queryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				plan.QueryType = rule.qtype
				break
			}
		}
		if plan.QueryType != models.QueryGeneral {
			break
		}
	}

	for _, marker := range scopeMarkers {
		if strings.Contains(lower, marker) {
			plan.TemporalScope = marker
			break
		}
	}

	// Capitalized words mid-query are treated as entities; the leading
	// word is skipped since it is capitalized by convention.
	seen := make(map[string]bool)
	for i, m := range entityPattern.FindAllStringIndex(q, -1) {
		if i == 0 && m[0] == 0 {
			continue
		}
		word := q[m[0]:m[1]]
		key := strings.ToLower(word)
		if !seen[key] {
			seen[key] = true
			plan.Entities = append(plan.Entities, word)
		}
	}
	return plan
}

// Run executes the retrieval loop: one initial fetch, then up to
// MaxIterations more while context stays insufficient. Duplicates keep
// their first-seen position; the final set sorts by importance, highest
// first, with equal scores keeping retrieval order.
func (o *Orchestrator) Run(ctx context.Context, q string) (*models.QueryResult, error) {
	plan := PlanQuery(q)
	if o.log != nil {
		o.log.WithPayload(map[string]interface{}{
			"query_type":     plan.QueryType,
			"temporal_scope": plan.TemporalScope,
		}).Info("query classified")
	}

	chunks, err := o.retriever.Retrieve(ctx, plan, 0)
	if err != nil {
		return nil, fmt.Errorf("initial retrieval failed: %w", err)
	}
	seen := make(map[string]bool)
	result := dedupAppend(nil, chunks, seen)

	for iteration := 1; iteration <= MaxIterations && len(result) < MinChunks; iteration++ {
		more, err := o.retriever.Retrieve(ctx, plan, iteration)
		if err != nil {
			return nil, fmt.Errorf("retrieval iteration %d failed: %w", iteration, err)
		}
		if len(more) == 0 {
			break
		}
		result = dedupAppend(result, more, seen)
	}

	sort.SliceStable(result, func(a, b int) bool {
		return result[a].ImportanceScore > result[b].ImportanceScore
	})

	out := &models.QueryResult{QueryType: plan.QueryType, Chunks: result}
	if o.answerer != nil {
		answer, err := o.answerer.Answer(ctx, q, out)
		if err != nil {
			return nil, fmt.Errorf("answer generation failed: %w", err)
		}
		out.Answer = answer
	}
	return out, nil
}

func dedupAppend(dst, src []models.MemoryChunk, seen map[string]bool) []models.MemoryChunk {
	for _, c := range src {
		if seen[c.ChunkID] {
			continue
		}
		seen[c.ChunkID] = true
		dst = append(dst, c)
	}
	return dst
}
