package research

import (
	"testing"
	"time"
)

func scorerFixture() (*Scorer, RequestContext) {
	adapters := []Adapter{
		&stubAdapter{id: "newswire"},
		&stubAdapter{id: "websearch"},
		&stubAdapter{id: "qforum"},
	}
	rc := RequestContext{
		CompanyName: "Acme Corp",
		JobTitle:    "Backend Engineer",
		RecencyDays: 90,
		MaxItems:    10,
		AsOf:        time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	return NewScorer(DefaultScoreWeights, adapters), rc
}

func deduped(source, body string, published *time.Time) DedupedItem {
	it := ResearchItem{Kind: KindNews, Body: body, SourceURL: "https://x.example.com", SourceName: source, PublishedAt: published}
	return DedupedItem{Canonical: it, Citations: []ResearchItem{it}, ClusterKey: "k"}
}

func TestScoreIsDeterministic(t *testing.T) {
	t.Parallel()
	s, rc := scorerFixture()
	published := time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC)
	d := deduped("newswire", "Acme Corp hires backend engineer team in Berlin", &published)

	first := s.Score(d, rc)
	second := s.Score(d, rc)
	if first.Relevance != second.Relevance {
		t.Fatalf("score not deterministic: %.6f vs %.6f", first.Relevance, second.Relevance)
	}
	for k, v := range first.Breakdown {
		if second.Breakdown[k] != v {
			t.Fatalf("breakdown %s not deterministic", k)
		}
	}
}

func TestScoreBounds(t *testing.T) {
	t.Parallel()
	s, rc := scorerFixture()
	published := rc.AsOf
	d := deduped("newswire", "Acme Corp backend engineer", &published)

	got := s.Score(d, rc)
	if got.Relevance < 0 || got.Relevance > 1 {
		t.Fatalf("relevance %.4f out of [0,1]", got.Relevance)
	}
	for name, sub := range got.Breakdown {
		if sub < 0 || sub > 1 {
			t.Fatalf("sub-score %s = %.4f out of [0,1]", name, sub)
		}
	}
}

func TestScoreTermOverlap(t *testing.T) {
	t.Parallel()
	s, rc := scorerFixture()
	published := rc.AsOf

	onTopic := s.Score(deduped("newswire", "Acme Corp seeks a backend engineer", &published), rc)
	offTopic := s.Score(deduped("newswire", "Unrelated gardening tips for spring", &published), rc)
	if onTopic.Breakdown["term_overlap"] <= offTopic.Breakdown["term_overlap"] {
		t.Fatalf("on-topic overlap %.4f not above off-topic %.4f",
			onTopic.Breakdown["term_overlap"], offTopic.Breakdown["term_overlap"])
	}
	if offTopic.Breakdown["term_overlap"] != 0 {
		t.Fatalf("off-topic overlap = %.4f, want 0", offTopic.Breakdown["term_overlap"])
	}
}

func TestScoreRecencyDecay(t *testing.T) {
	t.Parallel()
	s, rc := scorerFixture()
	fresh := rc.AsOf.AddDate(0, 0, -5)
	edge := rc.AsOf.AddDate(0, 0, -90)
	ancient := rc.AsOf.AddDate(-2, 0, 0)

	freshScore := s.Score(deduped("newswire", "body text here", &fresh), rc).Breakdown["recency"]
	edgeScore := s.Score(deduped("newswire", "body text here", &edge), rc).Breakdown["recency"]
	ancientScore := s.Score(deduped("newswire", "body text here", &ancient), rc).Breakdown["recency"]

	if !(freshScore > edgeScore && edgeScore > ancientScore) {
		t.Fatalf("recency not monotonic: fresh=%.4f edge=%.4f ancient=%.4f", freshScore, edgeScore, ancientScore)
	}
	if edgeScore > 0.1 {
		t.Fatalf("window-edge recency = %.4f, want near zero", edgeScore)
	}
	// Old items are still scored, never discarded.
	if ancientScore < 0 {
		t.Fatalf("ancient recency = %.4f", ancientScore)
	}
}

func TestScoreUnknownDateGetsFloor(t *testing.T) {
	t.Parallel()
	s, rc := scorerFixture()
	got := s.Score(deduped("newswire", "body text here", nil), rc)
	if got.Breakdown["recency"] != recencyFloor {
		t.Fatalf("undated recency = %.4f, want %.4f", got.Breakdown["recency"], recencyFloor)
	}
}

func TestScoreSourcePriority(t *testing.T) {
	t.Parallel()
	s, rc := scorerFixture()
	published := rc.AsOf

	first := s.Score(deduped("newswire", "same body", &published), rc)
	last := s.Score(deduped("qforum", "same body", &published), rc)
	if first.Breakdown["source_priority"] <= last.Breakdown["source_priority"] {
		t.Fatalf("earlier-registered source must outrank later: %.4f vs %.4f",
			first.Breakdown["source_priority"], last.Breakdown["source_priority"])
	}
}
