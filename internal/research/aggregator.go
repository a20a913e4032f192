package research

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/heirclark17/talor/internal/telemetry"
)

// Adapter fetches and parses one external source. Implementations never
// propagate failures past their boundary: every error is downgraded into the
// returned outcome's status.
type Adapter interface {
	ID() string
	Priority() int
	Fetch(ctx context.Context, rc RequestContext) AdapterOutcome
}

const (
	DefaultAdapterTimeout = 8 * time.Second
	DefaultOverallTimeout = 20 * time.Second
)

var aggregatorTracer trace.Tracer = otel.Tracer("talor/internal/research")

// Aggregator fans a request out to every registered adapter concurrently and
// folds the results into one outcome list, tolerant of per-adapter failure.
type Aggregator struct {
	adapters       []Adapter
	adapterTimeout time.Duration
	overallTimeout time.Duration
	logger         *log.Logger
	metrics        *telemetry.Metrics
}

func NewAggregator(adapters []Adapter, adapterTimeout, overallTimeout time.Duration, logger *log.Logger, metrics *telemetry.Metrics) *Aggregator {
	if adapterTimeout <= 0 {
		adapterTimeout = DefaultAdapterTimeout
	}
	if overallTimeout <= 0 {
		overallTimeout = DefaultOverallTimeout
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Aggregator{
		adapters:       adapters,
		adapterTimeout: adapterTimeout,
		overallTimeout: overallTimeout,
		logger:         logger,
		metrics:        metrics,
	}
}

// Aggregate invokes every adapter under its own deadline, all bounded by the
// overall deadline. Outcomes come back in adapter registration order
// regardless of completion order. An adapter that never returns is recorded
// as a timeout once its deadline expires; siblings are unaffected.
func (a *Aggregator) Aggregate(ctx context.Context, rc RequestContext) []AdapterOutcome {
	ctx, cancel := context.WithTimeout(ctx, a.overallTimeout)
	defer cancel()

	ctx, span := aggregatorTracer.Start(ctx, "research.aggregate",
		trace.WithAttributes(
			attribute.String("company", rc.CompanyName),
			attribute.Int("adapters", len(a.adapters)),
		))
	defer span.End()

	outcomes := make([]AdapterOutcome, len(a.adapters))
	var wg sync.WaitGroup
	for i, ad := range a.adapters {
		wg.Add(1)
		go func(i int, ad Adapter) {
			defer wg.Done()
			outcomes[i] = a.fetchOne(ctx, ad, rc)
		}(i, ad)
	}
	wg.Wait()

	for _, out := range outcomes {
		if a.metrics != nil {
			a.metrics.AdapterOutcomes.WithLabelValues(out.SourceID, string(out.Status)).Inc()
		}
		if out.Status != StatusOK {
			span.AddEvent("adapter_failed", trace.WithAttributes(
				attribute.String("source", out.SourceID),
				attribute.String("status", string(out.Status)),
			))
		}
	}
	return outcomes
}

func (a *Aggregator) fetchOne(ctx context.Context, ad Adapter, rc RequestContext) AdapterOutcome {
	fetchCtx, cancel := context.WithTimeout(ctx, a.adapterTimeout)
	defer cancel()

	fetchCtx, span := aggregatorTracer.Start(fetchCtx, "research.fetch",
		trace.WithAttributes(attribute.String("source", ad.ID())))
	defer span.End()

	// The outcome channel is buffered so a fetch completing after the
	// deadline can still deliver and let its goroutine exit.
	done := make(chan AdapterOutcome, 1)
	go func() {
		done <- ad.Fetch(fetchCtx, rc)
	}()

	select {
	case out := <-done:
		if out.Status != StatusOK {
			span.SetStatus(codes.Error, out.Err)
		}
		span.SetAttributes(attribute.Int("items", len(out.Items)))
		return out
	case <-fetchCtx.Done():
		span.SetStatus(codes.Error, fetchCtx.Err().Error())
		a.logger.Printf("[RESEARCH] adapter %s cut off: %v", ad.ID(), fetchCtx.Err())
		return AdapterOutcome{SourceID: ad.ID(), Status: StatusTimeout, Err: fetchCtx.Err().Error()}
	}
}
