package research

import (
	"testing"
)

func item(source, url, body string) ResearchItem {
	return ResearchItem{Kind: KindNews, Body: body, SourceURL: url, SourceName: source}
}

func TestDedupeCollapsesCrossSourceDuplicates(t *testing.T) {
	t.Parallel()
	d := NewDeduper(0.8)
	items := []ResearchItem{
		item("newswire", "https://a.example.com/1", "Acme Corp launches new cloud platform for enterprise customers"),
		item("websearch", "https://b.example.com/1", "ACME CORP launches new cloud platform, for enterprise customers!"),
	}

	out := d.Dedupe(items)
	if len(out) != 1 {
		t.Fatalf("got %d clusters, want 1", len(out))
	}
	c := out[0]
	if len(c.Citations) != 2 {
		t.Fatalf("got %d citations, want 2", len(c.Citations))
	}
	if c.Canonical.SourceName != "newswire" {
		t.Fatalf("canonical source = %s, want earliest-seen newswire", c.Canonical.SourceName)
	}
	if c.Citations[0].SourceURL != c.Canonical.SourceURL {
		t.Fatal("canonical must be the first citation")
	}
	if c.ClusterKey == "" {
		t.Fatal("cluster key must not be empty")
	}
}

func TestDedupeNeverMergesSameSource(t *testing.T) {
	t.Parallel()
	d := NewDeduper(0.8)
	items := []ResearchItem{
		item("newswire", "https://a.example.com/1", "Acme Corp launches new cloud platform for enterprise customers"),
		item("newswire", "https://a.example.com/2", "Acme Corp launches new cloud platform for enterprise customers"),
	}

	out := d.Dedupe(items)
	if len(out) != 2 {
		t.Fatalf("same-source near-duplicates must stay separate, got %d clusters", len(out))
	}
}

func TestDedupeNoTwoCitationsShareASource(t *testing.T) {
	t.Parallel()
	d := NewDeduper(0.8)
	body := "Acme Corp hires hundreds of engineers for its platform division"
	items := []ResearchItem{
		item("newswire", "https://a.example.com/1", body),
		item("websearch", "https://b.example.com/1", body),
		item("websearch", "https://b.example.com/2", body),
		item("pressroom", "https://c.example.com/1", body),
	}

	out := d.Dedupe(items)
	for _, c := range out {
		seen := map[string]bool{}
		for _, cit := range c.Citations {
			if seen[cit.SourceName] {
				t.Fatalf("cluster %s has two citations from %s", c.ClusterKey, cit.SourceName)
			}
			seen[cit.SourceName] = true
		}
	}
	// The second websearch item cannot join the first cluster, so it starts
	// its own.
	if len(out) != 2 {
		t.Fatalf("got %d clusters, want 2", len(out))
	}
}

func TestDedupeKeepsDistinctFindings(t *testing.T) {
	t.Parallel()
	d := NewDeduper(0.8)
	items := []ResearchItem{
		item("newswire", "https://a.example.com/1", "Acme Corp announces quarterly earnings beat with record revenue"),
		item("websearch", "https://b.example.com/1", "Acme Corp opens a robotics research lab in Berlin"),
	}

	out := d.Dedupe(items)
	if len(out) != 2 {
		t.Fatalf("distinct findings must not merge, got %d clusters", len(out))
	}
	if out[0].Canonical.Body != items[0].Body || out[1].Canonical.Body != items[1].Body {
		t.Fatal("cluster output must preserve first-seen order")
	}
}

func TestDedupePreservesFirstSeenCitationOrder(t *testing.T) {
	t.Parallel()
	d := NewDeduper(0.8)
	body := "Acme Corp launches new cloud platform for enterprise customers"
	items := []ResearchItem{
		item("newswire", "https://a.example.com/1", body),
		item("websearch", "https://b.example.com/1", body),
		item("pressroom", "https://c.example.com/1", body),
	}

	out := d.Dedupe(items)
	if len(out) != 1 {
		t.Fatalf("got %d clusters, want 1", len(out))
	}
	want := []string{"newswire", "websearch", "pressroom"}
	for i, cit := range out[0].Citations {
		if cit.SourceName != want[i] {
			t.Fatalf("citation %d from %s, want %s", i, cit.SourceName, want[i])
		}
	}
}

func TestTokenizeFoldsCasePunctuationAndStopwords(t *testing.T) {
	t.Parallel()
	got := tokenize("The Quick, BROWN fox -- jumps over the lazy dog!")
	want := []string{"quick", "brown", "fox", "jumps", "over", "lazy", "dog"}
	if len(got) != len(want) {
		t.Fatalf("tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}
