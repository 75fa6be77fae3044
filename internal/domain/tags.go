package domain

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// RankTags frequency-counts tags across per-record tag lists and returns
// them ranked by count descending. Ties are broken by first-seen order among
// the inputs, keeping output deterministic for identical inputs in identical
// order.
//
// Tag equality is exact-string by default; cfg can enable Unicode case
// folding and whitespace trimming, in which case the first-seen spelling is
// the one reported. Empty strings are ignored.
//
// Truncation to a top-N happens at the call site so the same ranking serves
// strengths, weaknesses, usage contexts, and comparison references uniformly.
func RankTags(lists [][]string, cfg TagConfig) []TagCount {
	var folder cases.Caser
	if !cfg.CaseSensitive {
		folder = cases.Fold()
	}

	counts := make(map[string]int)
	display := make(map[string]string)
	var order []string

	for _, list := range lists {
		for _, tag := range list {
			if cfg.TrimWhitespace {
				tag = strings.TrimSpace(tag)
			}
			if tag == "" {
				continue
			}

			key := tag
			if !cfg.CaseSensitive {
				key = folder.String(tag)
			}

			if _, seen := counts[key]; !seen {
				order = append(order, key)
				display[key] = tag
			}
			counts[key]++
		}
	}

	ranked := make([]TagCount, 0, len(order))
	for _, key := range order {
		ranked = append(ranked, TagCount{Tag: display[key], Count: counts[key]})
	}

	// Stable sort preserves first-seen order among equal counts.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })

	return ranked
}

// TopTags returns at most n entries from an already-ranked tag list.
// The returned slice shares backing storage with the input.
func TopTags(ranked []TagCount, n int) []TagCount {
	if n < 0 {
		n = 0
	}
	if len(ranked) <= n {
		return ranked
	}
	return ranked[:n]
}
