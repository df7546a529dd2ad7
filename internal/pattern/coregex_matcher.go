package pattern

import (
	"github.com/coregx/coregex/meta"
	"github.com/xgrep/xgrep/internal/model"
)

// coregexMatcher adapts *meta.Engine to the Matcher interface. It depends on
// coregex's internal meta package directly rather than the top-level
// coregex.Regex wrapper, because only meta.Engine.FindSubmatchAt takes the
// full haystack alongside a start offset: zero-width assertions (^, $, \b,
// \B) are checked against the real preceding byte at that offset instead of
// a synthetic string-start produced by slicing.
type coregexMatcher struct {
	re   *meta.Engine
	expr string
}

func newCoregexMatcher(expr string) (Matcher, error) {
	re, err := meta.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &coregexMatcher{re: re, expr: expr}, nil
}

func (m *coregexMatcher) FindAt(b []byte, at int) ([]model.CaptureSpan, bool) {
	if at > len(b) {
		return nil, false
	}
	match := m.re.FindSubmatchAt(b, at)
	if match == nil {
		return nil, false
	}
	n := match.NumCaptures()
	spans := make([]model.CaptureSpan, n)
	for i := 0; i < n; i++ {
		idx := match.GroupIndex(i)
		if len(idx) < 2 {
			spans[i] = model.CaptureSpan{Start: -1, End: -1}
			continue
		}
		spans[i] = model.CaptureSpan{Start: idx[0], End: idx[1]}
	}
	return spans, true
}

func (m *coregexMatcher) NumSubexp() int { return m.re.NumCaptures() - 1 }

func (m *coregexMatcher) SubexpNames() []string { return m.re.SubexpNames() }

func (m *coregexMatcher) String() string { return m.expr }
