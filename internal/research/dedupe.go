package research

import (
	"crypto/sha1"
	"encoding/hex"
	"hash/fnv"
	"strings"
)

// DefaultSimilarityThreshold is the token-overlap ratio above which two items
// from different sources are considered the same finding.
const DefaultSimilarityThreshold = 0.8

// stopwords excluded from similarity comparison. Small on purpose: the goal
// is insensitivity to filler, not linguistic completeness.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "have": {}, "in": {}, "is": {},
	"it": {}, "its": {}, "of": {}, "on": {}, "or": {}, "that": {}, "the": {},
	"to": {}, "was": {}, "were": {}, "will": {}, "with": {},
}

// Deduper clusters near-duplicate items originating from different sources.
// Items from the same source are never merged with each other.
type Deduper struct {
	threshold float64
}

func NewDeduper(threshold float64) *Deduper {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}
	return &Deduper{threshold: threshold}
}

type cluster struct {
	canonical ResearchItem
	members   []ResearchItem
	tokens    map[string]struct{}
	sources   map[string]struct{}
	key       string
}

// Dedupe collapses the input into clusters, preserving first-seen order for
// canonicals, citations and output. Input order is adapter registration
// order, so the earliest-registered source wins the canonical slot.
//
// Pairwise comparison only happens inside buckets keyed by a cheap shingled
// token hash, keeping the common case well under quadratic.
func (d *Deduper) Dedupe(items []ResearchItem) []DedupedItem {
	var ordered []*cluster
	buckets := make(map[uint64][]*cluster)

	for _, item := range items {
		tokens := tokenize(item.Body)
		key := shingleKey(tokens)

		var home *cluster
		if len(tokens) > 0 {
			for _, c := range buckets[key] {
				if _, same := c.sources[item.SourceName]; same {
					continue
				}
				if jaccard(tokens, c.tokens) >= d.threshold {
					home = c
					break
				}
			}
		}
		if home != nil {
			home.members = append(home.members, item)
			home.sources[item.SourceName] = struct{}{}
			continue
		}

		c := &cluster{
			canonical: item,
			members:   []ResearchItem{item},
			tokens:    toSet(tokens),
			sources:   map[string]struct{}{item.SourceName: {}},
			key:       clusterKey(tokens, item.SourceURL),
		}
		ordered = append(ordered, c)
		buckets[key] = append(buckets[key], c)
	}

	out := make([]DedupedItem, 0, len(ordered))
	for _, c := range ordered {
		out = append(out, DedupedItem{
			Canonical:  c.canonical,
			Citations:  c.members,
			ClusterKey: c.key,
		})
	}
	return out
}

// tokenize case-folds, strips punctuation, collapses whitespace and drops
// stopwords.
func tokenize(body string) []string {
	lowered := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return ' '
		}
	}, body)

	var tokens []string
	for _, tok := range strings.Fields(lowered) {
		if _, skip := stopwords[tok]; skip {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// shingleKey hashes adjacent token pairs and keeps the minimum, so texts
// sharing most of their shingles land in the same bucket.
func shingleKey(tokens []string) uint64 {
	if len(tokens) == 0 {
		return 0
	}
	min := uint64(1<<64 - 1)
	if len(tokens) == 1 {
		return hashToken(tokens[0])
	}
	for i := 0; i+1 < len(tokens); i++ {
		h := hashToken(tokens[i] + " " + tokens[i+1])
		if h < min {
			min = h
		}
	}
	return min
}

func hashToken(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func jaccard(tokens []string, set map[string]struct{}) float64 {
	if len(tokens) == 0 || len(set) == 0 {
		return 0
	}
	probe := toSet(tokens)
	inter := 0
	for t := range probe {
		if _, ok := set[t]; ok {
			inter++
		}
	}
	union := len(probe) + len(set) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func clusterKey(tokens []string, sourceURL string) string {
	basis := strings.Join(tokens, " ")
	if basis == "" {
		basis = sourceURL
	}
	sum := sha1.Sum([]byte(basis))
	return hex.EncodeToString(sum[:])
}
