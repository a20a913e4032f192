package research

import (
	"testing"
	"time"
)

func TestNormalizeMapsFields(t *testing.T) {
	t.Parallel()
	n := NewNormalizer(map[string]Kind{"newswire": KindNews, "qforum": KindQuestion})

	out := AdapterOutcome{
		SourceID: "newswire",
		Status:   StatusOK,
		Items: []RawItem{{
			SourceID: "newswire",
			URL:      "https://news.example.com/a",
			Title:    "Acme expands",
			RawText:  "Acme Corp announced a new platform.",
			Fields: map[string]string{
				"headline":     "Acme expands",
				"published_at": "2026-05-02T10:00:00Z",
				"outlet":       "Example Daily",
			},
		}},
	}

	items := n.Normalize(out)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	item := items[0]
	if item.Kind != KindNews {
		t.Fatalf("kind = %s, want news", item.Kind)
	}
	if item.Body != "Acme Corp announced a new platform." {
		t.Fatalf("unexpected body: %q", item.Body)
	}
	if item.SourceName != "newswire" {
		t.Fatalf("source name = %q, want newswire", item.SourceName)
	}
	if item.PublishedAt == nil || !item.PublishedAt.Equal(time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected published_at: %v", item.PublishedAt)
	}
	if item.Extra["outlet"] != "Example Daily" {
		t.Fatalf("expected outlet in extra, got %#v", item.Extra)
	}
}

func TestNormalizePrefersQuestionText(t *testing.T) {
	t.Parallel()
	n := NewNormalizer(map[string]Kind{"qforum": KindQuestion})
	out := AdapterOutcome{
		SourceID: "qforum",
		Status:   StatusOK,
		Items: []RawItem{{
			SourceID: "qforum",
			URL:      "https://forum.example.com/q/1",
			RawText:  "thread text with noise",
			Fields:   map[string]string{"question_text": "How would you scale the ingest service?"},
		}},
	}
	items := n.Normalize(out)
	if len(items) != 1 || items[0].Body != "How would you scale the ingest service?" {
		t.Fatalf("unexpected items: %#v", items)
	}
	if items[0].Kind != KindQuestion {
		t.Fatalf("kind = %s, want question", items[0].Kind)
	}
}

func TestNormalizeDropsInvalidItems(t *testing.T) {
	t.Parallel()
	n := NewNormalizer(nil)
	out := AdapterOutcome{
		SourceID: "websearch",
		Status:   StatusOK,
		Items: []RawItem{
			{SourceID: "websearch", URL: "https://ok.example.com", RawText: "kept"},
			{SourceID: "websearch", URL: "", RawText: "no url"},
			{SourceID: "websearch", URL: "not a url", RawText: "bad url"},
			{SourceID: "websearch", URL: "https://empty.example.com", RawText: "   "},
		},
	}
	items := n.Normalize(out)
	if len(items) != 1 || items[0].Body != "kept" {
		t.Fatalf("expected only the valid item, got %#v", items)
	}
	if items[0].Kind != KindFact {
		t.Fatalf("unmapped source should default to fact, got %s", items[0].Kind)
	}
}

func TestNormalizeKeepsUnparseableDates(t *testing.T) {
	t.Parallel()
	n := NewNormalizer(nil)
	out := AdapterOutcome{
		SourceID: "websearch",
		Status:   StatusOK,
		Items: []RawItem{{
			SourceID: "websearch",
			URL:      "https://ok.example.com",
			RawText:  "body",
			Fields:   map[string]string{"published_at": "three sleeps ago"},
		}},
	}
	items := n.Normalize(out)
	if len(items) != 1 {
		t.Fatalf("item with bad date must not be dropped, got %d items", len(items))
	}
	if items[0].PublishedAt != nil {
		t.Fatalf("expected nil published_at, got %v", items[0].PublishedAt)
	}
}

func TestNormalizeSkipsFailedOutcomes(t *testing.T) {
	t.Parallel()
	n := NewNormalizer(nil)
	out := AdapterOutcome{SourceID: "websearch", Status: StatusError, Items: []RawItem{{URL: "https://x.example.com", RawText: "x"}}}
	if items := n.Normalize(out); items != nil {
		t.Fatalf("failed outcome must normalize to nothing, got %#v", items)
	}
}
