package research

import (
	"strings"
	"time"
)

// Kind classifies a normalized research item.
type Kind string

const (
	KindQuestion Kind = "question"
	KindNews     Kind = "news"
	KindFact     Kind = "fact"
)

// Status reports how a single adapter invocation ended.
type Status string

const (
	StatusOK          Status = "ok"
	StatusTimeout     Status = "timeout"
	StatusRateLimited Status = "rate_limited"
	StatusError       Status = "error"
)

// RequestContext carries everything the engine knows about one research request.
// It is built once by the caller and read-only inside the pipeline.
type RequestContext struct {
	CompanyName  string
	Industry     string
	JobTitle     string
	RoleCategory string

	// RecencyDays bounds the recency scoring window. Items older than the
	// window are kept but score near zero on the recency sub-score.
	RecencyDays int

	// MaxItems caps the assembled result.
	MaxItems int

	// AsOf anchors recency decay so scoring stays a pure function of its
	// inputs. Callers normally leave it zero and WithDefaults pins it.
	AsOf time.Time
}

const (
	DefaultRecencyDays = 90
	DefaultMaxItems    = 30
)

// WithDefaults fills unset fields without mutating the receiver.
func (rc RequestContext) WithDefaults() RequestContext {
	out := rc
	if out.RecencyDays <= 0 {
		out.RecencyDays = DefaultRecencyDays
	}
	if out.MaxItems <= 0 {
		out.MaxItems = DefaultMaxItems
	}
	if out.AsOf.IsZero() {
		out.AsOf = time.Now().UTC()
	}
	return out
}

// Validate reports whether the context is usable at all. It runs before any
// adapter is invoked.
func (rc RequestContext) Validate() error {
	if strings.TrimSpace(rc.CompanyName) == "" {
		return &InvalidContextError{Field: "company_name", Reason: "is required"}
	}
	return nil
}

// Terms returns the non-empty context fields the scorer matches item bodies
// against.
func (rc RequestContext) Terms() []string {
	var terms []string
	for _, v := range []string{rc.CompanyName, rc.JobTitle, rc.Industry, rc.RoleCategory} {
		if s := strings.TrimSpace(v); s != "" {
			terms = append(terms, s)
		}
	}
	return terms
}

// RawItem is one record extracted by an adapter, in whatever shape the source
// offered it. It never leaves the adapter/normalizer boundary.
type RawItem struct {
	SourceID  string
	URL       string
	Title     string
	RawText   string
	FetchedAt time.Time

	// Fields carries source-specific extras (headline, question_text,
	// initiative_text, ...) that only the normalizer for that source reads.
	Fields map[string]string
}

// ResearchItem is the common schema every source is flattened into.
type ResearchItem struct {
	Kind        Kind
	Body        string
	SourceURL   string
	SourceName  string
	PublishedAt *time.Time
	Extra       map[string]string
}

// DedupedItem replaces a cluster of near-identical items from different
// sources. Citations preserve first-seen order and always include the
// canonical item first.
type DedupedItem struct {
	Canonical  ResearchItem
	Citations  []ResearchItem
	ClusterKey string
}

// ScoredItem is a deduplicated item plus its relevance against the request
// context. Breakdown exposes the named sub-scores for explainability.
type ScoredItem struct {
	DedupedItem
	Relevance float64
	Breakdown map[string]float64
}

// AdapterOutcome is the unit of partial failure: one per adapter per request.
type AdapterOutcome struct {
	SourceID string
	Items    []RawItem
	Status   Status
	Err      string
}

// Result is what the caller gets back: the ranked collection plus enough
// metadata to explain a small or empty result.
type Result struct {
	Items            []ScoredItem
	SourcesSucceeded int
	SourcesFailed    int
	StatusCounts     map[Status]int
}
