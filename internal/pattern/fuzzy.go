package pattern

import (
	"github.com/hbollon/go-edlib"
	"github.com/xgrep/xgrep/internal/config"
)

// FuzzyMatcher implements -Z approximate matching: the minimum edit-distance
// cost to transform a substring of the input into a match of the pattern,
// subject to which edit operations are allowed. The first character of the
// pattern must match exactly at the start of the match.
type FuzzyMatcher struct {
	pattern string
	spec    config.FuzzySpec
}

// NewFuzzyMatcher builds a fuzzy matcher for pattern under spec. Unlike the
// main regex Matcher, fuzzy matching operates on literal text; pattern is
// used as-is, not regex-compiled.
func NewFuzzyMatcher(pattern string, spec config.FuzzySpec) (*FuzzyMatcher, error) {
	return &FuzzyMatcher{pattern: pattern, spec: spec}, nil
}

// Best reports whether only minimum-cost matches per file should be kept.
func (f *FuzzyMatcher) Best() bool { return f.spec.Best }

// FuzzyMatch is one candidate window and its edit-distance cost.
type FuzzyMatch struct {
	Start, End int
	Cost       int
}

// FindAt scans b starting at byte offset `at` for the next window whose
// edit distance to the pattern is <= spec.MaxCost, anchored so the window's
// first byte equals the pattern's first byte (the anchoring optimization;
// an insertion before the first pattern character would otherwise make
// every offset a candidate and blow up the search).
func (f *FuzzyMatcher) FindAt(b []byte, at int) (FuzzyMatch, bool) {
	if len(f.pattern) == 0 {
		return FuzzyMatch{}, false
	}
	first := f.pattern[0]
	plen := len(f.pattern)
	k := f.spec.MaxCost

	for pos := at; pos < len(b); pos++ {
		if b[pos] != first {
			continue
		}
		best := FuzzyMatch{}
		found := false
		minLen := plen - k
		if minLen < 1 {
			minLen = 1
		}
		maxLen := plen + k
		for wlen := minLen; wlen <= maxLen; wlen++ {
			end := pos + wlen
			if end > len(b) {
				break
			}
			cost := f.cost(b[pos:end])
			if cost <= k && (!found || cost < best.Cost) {
				best = FuzzyMatch{Start: pos, End: end, Cost: cost}
				found = true
				if cost == 0 {
					break
				}
			}
		}
		if found {
			return best, true
		}
	}
	return FuzzyMatch{}, false
}

// cost computes the edit distance between window and the pattern, honoring
// which operations are allowed. When all three are allowed this is plain
// Levenshtein distance, computed by go-edlib; when restricted, a bounded
// dynamic-programming variant disallows the forbidden operation by pricing
// it as infinite.
func (f *FuzzyMatcher) cost(window []byte) int {
	if f.spec.AllowIns && f.spec.AllowDel && f.spec.AllowSub {
		return edlib.LevenshteinDistance(string(window), f.pattern)
	}
	return restrictedEditDistance(string(window), f.pattern, f.spec)
}

const infCost = 1 << 20

// restrictedEditDistance is a standard Levenshtein DP with disallowed
// operations priced at infCost, used when -Z's +/-/~ flags forbid one or
// more of insertion/deletion/substitution.
func restrictedEditDistance(a, b string, spec config.FuzzySpec) int {
	ra, rb := []rune(a), []rune(b)
	n, m := len(ra), len(rb)
	prev := make([]int, m+1)
	cur := make([]int, m+1)
	for j := 0; j <= m; j++ {
		prev[j] = j
	}
	for i := 1; i <= n; i++ {
		cur[0] = i
		for j := 1; j <= m; j++ {
			del, ins, sub := infCost, infCost, infCost
			if spec.AllowDel {
				del = prev[j] + 1
			}
			if spec.AllowIns {
				ins = cur[j-1] + 1
			}
			if ra[i-1] == rb[j-1] {
				sub = prev[j-1]
			} else if spec.AllowSub {
				sub = prev[j-1] + 1
			}
			cur[j] = min3(del, ins, sub)
		}
		prev, cur = cur, prev
	}
	if prev[m] >= infCost {
		return infCost
	}
	return prev[m]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
