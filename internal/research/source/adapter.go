// Package source holds the concrete research adapters. Each adapter owns the
// parsing for exactly one external source and reports every failure through
// its AdapterOutcome status instead of returning errors.
package source

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strings"

	"github.com/heirclark17/talor/config"
	"github.com/heirclark17/talor/internal/research"
	"github.com/heirclark17/talor/internal/research/gate"
)

// errDisallowed marks a request refused by robots policy. Reported as a plain
// adapter error, never retried.
var errDisallowed = errors.New("disallowed by robots policy")

// Deps are the shared collaborators every adapter is constructed with.
type Deps struct {
	Gate   *gate.Gate
	HTTP   *HTTPClient
	Logger *log.Logger
}

type builder func(id string, cfg config.AdapterConfig, deps Deps) research.Adapter

var builders = map[string]builder{
	"newswire":  newNewswire,
	"websearch": newWebSearch,
	"pressroom": newPressroom,
	"qforum":    newQForum,
}

// Kinds returns the item kind each known adapter's output normalizes into.
func Kinds() map[string]research.Kind {
	return map[string]research.Kind{
		"newswire":  research.KindNews,
		"websearch": research.KindFact,
		"pressroom": research.KindNews,
		"qforum":    research.KindQuestion,
	}
}

// Build instantiates every enabled adapter from configuration, ordered by
// priority rank. The order doubles as the dedup first-seen order.
func Build(cfg config.SourcesConfig, deps Deps) ([]research.Adapter, error) {
	if deps.Gate == nil {
		return nil, fmt.Errorf("source: gate is required")
	}
	if deps.HTTP == nil {
		deps.HTTP = NewHTTPClient(cfg.HTTPTimeout, cfg.Retries, cfg.Backoff, cfg.UserAgent)
	}
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}

	var adapters []research.Adapter
	for id, ac := range cfg.Adapters {
		if !ac.Enabled {
			continue
		}
		mk, ok := builders[id]
		if !ok {
			return nil, fmt.Errorf("source: unknown adapter %q", id)
		}
		adapters = append(adapters, mk(id, ac, deps))
	}
	if len(adapters) == 0 {
		return nil, fmt.Errorf("source: no adapters enabled")
	}
	sort.SliceStable(adapters, func(i, j int) bool {
		if adapters[i].Priority() != adapters[j].Priority() {
			return adapters[i].Priority() < adapters[j].Priority()
		}
		return adapters[i].ID() < adapters[j].ID()
	})
	return adapters, nil
}

// base carries the pieces common to all adapters.
type base struct {
	id       string
	priority int
	gate     *gate.Gate
	http     *HTTPClient
	logger   *log.Logger
}

func (b base) ID() string    { return b.id }
func (b base) Priority() int { return b.priority }

// approve runs the politeness checks for one outbound request: robots first,
// then a bucket token for the domain.
func (b base) approve(ctx context.Context, rawURL string) error {
	ok, err := b.gate.Allowed(ctx, rawURL)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", errDisallowed, rawURL)
	}
	return b.gate.Acquire(ctx, rawURL)
}

// outcome converts an adapter-internal error into the matching status. Errors
// never cross the adapter boundary any other way.
func (b base) outcome(items []research.RawItem, err error) research.AdapterOutcome {
	out := research.AdapterOutcome{SourceID: b.id, Items: items}
	switch {
	case err == nil:
		out.Status = research.StatusOK
	case errors.Is(err, gate.ErrRateLimited):
		out.Status = research.StatusRateLimited
		out.Err = err.Error()
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		out.Status = research.StatusTimeout
		out.Err = err.Error()
	default:
		out.Status = research.StatusError
		out.Err = err.Error()
	}
	if out.Status != research.StatusOK {
		out.Items = nil
		b.logger.Printf("[SOURCE] %s: %s (%v)", b.id, out.Status, err)
	}
	return out
}

func maxResults(n, def int) int {
	if n > 0 {
		return n
	}
	return def
}

func escapeQuery(q string) string {
	return url.QueryEscape(strings.Join(strings.Fields(q), " "))
}
