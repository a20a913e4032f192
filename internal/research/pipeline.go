package research

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/heirclark17/talor/internal/telemetry"
)

// Options wires an Engine. Zero values fall back to package defaults.
type Options struct {
	AdapterTimeout time.Duration
	OverallTimeout time.Duration

	// Kinds maps source id to the item kind its output normalizes into.
	Kinds map[string]Kind

	SimilarityThreshold float64
	Weights             ScoreWeights

	Logger  *log.Logger
	Metrics *telemetry.Metrics
}

// Engine is the full research pipeline: fan-out, normalize, dedupe, score,
// assemble. It is stateless across requests; every intermediate belongs to
// the invocation that produced it.
type Engine struct {
	adapters  []Adapter
	agg       *Aggregator
	norm      *Normalizer
	dedupe    *Deduper
	scorer    *Scorer
	assembler *Assembler
	logger    *log.Logger
	metrics   *telemetry.Metrics
}

// NewEngine builds a pipeline over the registered adapters. Adapter order is
// priority order and fixes dedup canonical selection and score tie-breaks.
func NewEngine(adapters []Adapter, opts Options) (*Engine, error) {
	if len(adapters) == 0 {
		return nil, fmt.Errorf("research: at least one adapter required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "[RESEARCH] ", log.LstdFlags)
	}
	scorer := NewScorer(opts.Weights, adapters)
	return &Engine{
		adapters:  adapters,
		agg:       NewAggregator(adapters, opts.AdapterTimeout, opts.OverallTimeout, logger, opts.Metrics),
		norm:      NewNormalizer(opts.Kinds),
		dedupe:    NewDeduper(opts.SimilarityThreshold),
		scorer:    scorer,
		assembler: NewAssembler(scorer.Rank),
		logger:    logger,
		metrics:   opts.Metrics,
	}, nil
}

// Research runs one request through the pipeline and returns the ranked,
// cited collection with aggregate metadata. The only request-level failures
// are an invalid context and ErrNoResults; everything else degrades into the
// result's counts.
func (e *Engine) Research(ctx context.Context, rc RequestContext) (Result, error) {
	rc = rc.WithDefaults()
	if err := rc.Validate(); err != nil {
		e.count("invalid_context")
		return Result{}, err
	}

	started := time.Now()
	outcomes := e.agg.Aggregate(ctx, rc)
	if e.metrics != nil {
		e.metrics.AggregationDuration.Observe(time.Since(started).Seconds())
	}

	res := Result{StatusCounts: make(map[Status]int, 4)}
	usable := 0
	for _, out := range outcomes {
		res.StatusCounts[out.Status]++
		if out.Status == StatusOK {
			res.SourcesSucceeded++
			if len(out.Items) > 0 {
				usable++
			}
		} else {
			res.SourcesFailed++
		}
	}
	if usable == 0 {
		e.count("no_results")
		return res, ErrNoResults
	}

	// Outcomes arrive in registration order, so normalized items are already
	// in first-seen order for dedup.
	var items []ResearchItem
	for _, out := range outcomes {
		items = append(items, e.norm.Normalize(out)...)
	}

	deduped := e.dedupe.Dedupe(items)
	if e.metrics != nil && len(items) > len(deduped) {
		e.metrics.ItemsCollapsed.Add(float64(len(items) - len(deduped)))
	}

	scored := make([]ScoredItem, 0, len(deduped))
	for _, d := range deduped {
		scored = append(scored, e.scorer.Score(d, rc))
	}
	res.Items = e.assembler.Assemble(scored, rc.MaxItems)

	if e.metrics != nil {
		e.metrics.ItemsReturned.Observe(float64(len(res.Items)))
	}
	e.count("ok")
	e.logger.Printf("company=%q items=%d raw=%d clusters=%d sources_ok=%d sources_failed=%d",
		rc.CompanyName, len(res.Items), len(items), len(deduped), res.SourcesSucceeded, res.SourcesFailed)
	return res, nil
}

func (e *Engine) count(outcome string) {
	if e.metrics != nil {
		e.metrics.Requests.WithLabelValues(outcome).Inc()
	}
}
