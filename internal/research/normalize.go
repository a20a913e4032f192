package research

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/heirclark17/talor/internal/urlnorm"
)

// Normalizer flattens each source's RawItems into the common ResearchItem
// schema. It is the only stage that knows source-specific field layouts.
type Normalizer struct {
	kinds map[string]Kind
}

// NewNormalizer builds a normalizer from a source-id to item-kind mapping,
// registered at startup alongside the adapters. Unmapped sources fall back
// to KindFact.
func NewNormalizer(kinds map[string]Kind) *Normalizer {
	if kinds == nil {
		kinds = map[string]Kind{}
	}
	return &Normalizer{kinds: kinds}
}

// Normalize maps one adapter outcome into validated ResearchItems. Items
// without a body or a verifiable URL are dropped; unparseable publish dates
// are kept with a nil PublishedAt rather than discarded.
func (n *Normalizer) Normalize(out AdapterOutcome) []ResearchItem {
	if out.Status != StatusOK || len(out.Items) == 0 {
		return nil
	}
	kind, ok := n.kinds[out.SourceID]
	if !ok {
		kind = KindFact
	}

	items := make([]ResearchItem, 0, len(out.Items))
	for _, raw := range out.Items {
		body := itemBody(raw)
		canonical, ok := validSourceURL(raw.URL)
		if body == "" || !ok {
			continue
		}
		item := ResearchItem{
			Kind:        kind,
			Body:        body,
			SourceURL:   canonical,
			SourceName:  raw.SourceID,
			PublishedAt: parsePublished(raw.Fields["published_at"]),
			Extra:       extraFields(raw),
		}
		items = append(items, item)
	}
	return items
}

func itemBody(raw RawItem) string {
	if q := strings.TrimSpace(raw.Fields["question_text"]); q != "" {
		return q
	}
	if t := strings.TrimSpace(raw.RawText); t != "" {
		return t
	}
	return strings.TrimSpace(raw.Title)
}

// validSourceURL canonicalises the item URL so the same article carried by
// two sources compares equal downstream. Items whose URL cannot be
// canonicalised are dropped; a finding without a verifiable source is
// worthless to the caller.
func validSourceURL(raw string) (string, bool) {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "", false
	}
	canonical, err := urlnorm.Canonical(raw)
	if err != nil {
		return "", false
	}
	return canonical, true
}

func parsePublished(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	t, err := dateparse.ParseAny(value)
	if err != nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

func extraFields(raw RawItem) map[string]string {
	extra := make(map[string]string)
	for k, v := range raw.Fields {
		if k == "published_at" || k == "question_text" {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			extra[k] = v
		}
	}
	if len(extra) == 0 {
		return nil
	}
	return extra
}
