package research

import "sort"

// Assembler orders and truncates the scored collection. It never mutates its
// input.
type Assembler struct {
	rank func(sourceID string) int
}

func NewAssembler(rank func(sourceID string) int) *Assembler {
	if rank == nil {
		rank = func(string) int { return 0 }
	}
	return &Assembler{rank: rank}
}

// Assemble stable-sorts by descending relevance, breaking ties by most
// recent publish date (unknown dates last), then by static source priority,
// and truncates to maxItems.
func (a *Assembler) Assemble(items []ScoredItem, maxItems int) []ScoredItem {
	out := make([]ScoredItem, len(items))
	copy(out, items)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Relevance != out[j].Relevance {
			return out[i].Relevance > out[j].Relevance
		}
		pi, pj := out[i].Canonical.PublishedAt, out[j].Canonical.PublishedAt
		switch {
		case pi != nil && pj != nil && !pi.Equal(*pj):
			return pi.After(*pj)
		case pi != nil && pj == nil:
			return true
		case pi == nil && pj != nil:
			return false
		}
		return a.rank(out[i].Canonical.SourceName) < a.rank(out[j].Canonical.SourceName)
	})

	if maxItems > 0 && len(out) > maxItems {
		out = out[:maxItems]
	}
	return out
}
