package pattern

import (
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"github.com/xgrep/xgrep/internal/model"
)

// perlMatcher adapts *regexp2.Regexp (the -P Perl-compatible engine) to the
// Matcher interface. regexp2 reports
// match/group positions in rune offsets into the []rune it matched against,
// so FindAt converts between byte and rune offsets at the boundary.
type perlMatcher struct {
	re *regexp2.Regexp
}

func newPerlMatcher(expr string) (Matcher, error) {
	re, err := regexp2.Compile(expr, regexp2.RE2|regexp2.Unicode)
	if err != nil {
		return nil, err
	}
	return &perlMatcher{re: re}, nil
}

func (m *perlMatcher) FindAt(b []byte, at int) ([]model.CaptureSpan, bool) {
	if at > len(b) {
		return nil, false
	}
	s := string(b)
	runeAt := utf8.RuneCountInString(s[:at])

	match, err := m.re.FindStringMatchStartingAt(s, runeAt)
	if err != nil || match == nil {
		return nil, false
	}

	groups := match.Groups()
	spans := make([]model.CaptureSpan, len(groups))
	offsets := runeToByteOffsets(s)
	for i, g := range groups {
		if len(g.Captures) == 0 {
			spans[i] = model.CaptureSpan{Start: -1, End: -1}
			continue
		}
		c := g.Captures[0]
		spans[i] = model.CaptureSpan{
			Start: offsets[c.Index],
			End:   offsets[c.Index+c.Length],
		}
	}
	return spans, true
}

func (m *perlMatcher) NumSubexp() int { return m.re.GroupNumberCount() - 1 }

func (m *perlMatcher) SubexpNames() []string {
	names := make([]string, m.re.GroupNumberCount())
	for _, n := range m.re.GetGroupNames() {
		// GetGroupNames returns names for named groups only; map each back
		// to its numeric index via GroupNumberFromName.
		idx := m.re.GroupNumberFromName(n)
		if idx >= 0 && idx < len(names) {
			names[idx] = n
		}
	}
	return names
}

func (m *perlMatcher) String() string { return m.re.String() }

// runeToByteOffsets returns, for each rune index 0..RuneCount(s), the byte
// offset of that rune's start in s (with RuneCount(s) mapping to len(s)).
func runeToByteOffsets(s string) []int {
	offsets := make([]int, 0, len(s)+1)
	i := 0
	for i < len(s) {
		offsets = append(offsets, i)
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	offsets = append(offsets, len(s))
	return offsets
}
