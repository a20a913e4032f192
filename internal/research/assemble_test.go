package research

import (
	"testing"
	"time"
)

func scoredFixture(source string, relevance float64, published *time.Time) ScoredItem {
	it := ResearchItem{Kind: KindNews, Body: "body " + source, SourceURL: "https://" + source + ".example.com", SourceName: source, PublishedAt: published}
	return ScoredItem{
		DedupedItem: DedupedItem{Canonical: it, Citations: []ResearchItem{it}, ClusterKey: source},
		Relevance:   relevance,
	}
}

func TestAssembleSortsByRelevance(t *testing.T) {
	t.Parallel()
	a := NewAssembler(nil)
	items := []ScoredItem{
		scoredFixture("low", 0.2, nil),
		scoredFixture("high", 0.9, nil),
		scoredFixture("mid", 0.5, nil),
	}

	out := a.Assemble(items, 10)
	if out[0].Relevance != 0.9 || out[1].Relevance != 0.5 || out[2].Relevance != 0.2 {
		t.Fatalf("not sorted by descending relevance: %v, %v, %v", out[0].Relevance, out[1].Relevance, out[2].Relevance)
	}
}

func TestAssembleTieBreaks(t *testing.T) {
	t.Parallel()
	rank := map[string]int{"newswire": 0, "websearch": 1}
	a := NewAssembler(func(id string) int { return rank[id] })

	older := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	items := []ScoredItem{
		scoredFixture("websearch", 0.5, &older),
		scoredFixture("newswire", 0.5, &newer),
		scoredFixture("websearch", 0.5, nil),
	}

	out := a.Assemble(items, 10)
	if out[0].Canonical.PublishedAt == nil || !out[0].Canonical.PublishedAt.Equal(newer) {
		t.Fatalf("most recent item must win the tie, got %v", out[0].Canonical.PublishedAt)
	}
	if out[2].Canonical.PublishedAt != nil {
		t.Fatal("undated item must sort last among ties")
	}

	// Equal relevance and equal date: static source priority decides.
	same := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	items = []ScoredItem{
		scoredFixture("websearch", 0.5, &same),
		scoredFixture("newswire", 0.5, &same),
	}
	out = a.Assemble(items, 10)
	if out[0].Canonical.SourceName != "newswire" {
		t.Fatalf("priority tie-break failed, got %s first", out[0].Canonical.SourceName)
	}
}

func TestAssembleTruncatesAndPreservesInput(t *testing.T) {
	t.Parallel()
	a := NewAssembler(nil)
	items := []ScoredItem{
		scoredFixture("a", 0.1, nil),
		scoredFixture("b", 0.9, nil),
		scoredFixture("c", 0.5, nil),
	}

	out := a.Assemble(items, 2)
	if len(out) != 2 {
		t.Fatalf("got %d items, want 2", len(out))
	}
	if items[0].Canonical.SourceName != "a" {
		t.Fatal("input slice must not be reordered")
	}
}
