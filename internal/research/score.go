package research

import (
	"math"
	"strings"
)

// ScoreWeights are the fixed weights combining the sub-scores. They are
// configuration, not learned, and are normalized to sum to one.
type ScoreWeights struct {
	TermOverlap    float64
	Recency        float64
	SourcePriority float64
}

// DefaultScoreWeights favor textual relevance, then freshness.
var DefaultScoreWeights = ScoreWeights{TermOverlap: 0.5, Recency: 0.3, SourcePriority: 0.2}

func (w ScoreWeights) normalized() ScoreWeights {
	for _, v := range []float64{w.TermOverlap, w.Recency, w.SourcePriority} {
		if v < 0 {
			return DefaultScoreWeights
		}
	}
	sum := w.TermOverlap + w.Recency + w.SourcePriority
	if sum <= 0 {
		return DefaultScoreWeights
	}
	return ScoreWeights{
		TermOverlap:    w.TermOverlap / sum,
		Recency:        w.Recency / sum,
		SourcePriority: w.SourcePriority / sum,
	}
}

// recencyFloor is the neutral recency sub-score for items with no parseable
// publish date.
const recencyFloor = 0.25

// Scorer assigns each deduplicated item a relevance in [0,1] against the
// request context. Score is a pure function of its inputs: no clock reads,
// no external calls, no randomness.
type Scorer struct {
	weights ScoreWeights
	rank    map[string]int
	sources int
}

// NewScorer derives source priority ranks from adapter registration order.
func NewScorer(weights ScoreWeights, adapters []Adapter) *Scorer {
	rank := make(map[string]int, len(adapters))
	for i, ad := range adapters {
		rank[ad.ID()] = i
	}
	return &Scorer{weights: weights.normalized(), rank: rank, sources: len(adapters)}
}

// Score combines term overlap, recency decay and source priority into one
// relevance value with a named breakdown.
func (s *Scorer) Score(item DedupedItem, rc RequestContext) ScoredItem {
	overlap := s.termOverlap(item.Canonical.Body, rc)
	recency := s.recency(item.Canonical, rc)
	priority := s.sourcePriority(item.Canonical.SourceName)

	relevance := s.weights.TermOverlap*overlap +
		s.weights.Recency*recency +
		s.weights.SourcePriority*priority
	relevance = math.Max(0, math.Min(1, relevance))

	return ScoredItem{
		DedupedItem: item,
		Relevance:   relevance,
		Breakdown: map[string]float64{
			"term_overlap":    overlap,
			"recency":         recency,
			"source_priority": priority,
		},
	}
}

// termOverlap is the fraction of context terms present in the item body.
func (s *Scorer) termOverlap(body string, rc RequestContext) float64 {
	bodyTokens := toSet(tokenize(body))
	var total, matched int
	for _, term := range rc.Terms() {
		for _, tok := range tokenize(strings.ToLower(term)) {
			total++
			if _, ok := bodyTokens[tok]; ok {
				matched++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(matched) / float64(total)
}

// recency decays exponentially over the request's window; items published at
// the window edge score ~0.05 and older items approach zero, but none are
// discarded here.
func (s *Scorer) recency(item ResearchItem, rc RequestContext) float64 {
	if item.PublishedAt == nil {
		return recencyFloor
	}
	ageDays := rc.AsOf.Sub(*item.PublishedAt).Hours() / 24
	if ageDays <= 0 {
		return 1
	}
	window := float64(rc.RecencyDays)
	if window <= 0 {
		window = DefaultRecencyDays
	}
	return math.Exp(-3 * ageDays / window)
}

func (s *Scorer) sourcePriority(sourceID string) float64 {
	idx, ok := s.rank[sourceID]
	if !ok {
		return 0.5
	}
	return float64(s.sources-idx) / float64(s.sources)
}

// Rank exposes the static priority index for a source; unknown sources sort
// last. Used by the assembler as the final tie-break.
func (s *Scorer) Rank(sourceID string) int {
	if idx, ok := s.rank[sourceID]; ok {
		return idx
	}
	return s.sources
}
