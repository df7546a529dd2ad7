package pattern

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xgrep/xgrep/internal/config"
)

func TestCompileSimpleLiteral(t *testing.T) {
	cfg := config.Default()
	cfg.Patterns = []string{"foo"}
	cfg.Flags.FixedStrings = true

	p, err := Compile(cfg)
	require.NoError(t, err)

	spans, ok := p.Matcher.FindAt([]byte("foo\nFoo\nbar\n"), 0)
	require.True(t, ok)
	require.Equal(t, 0, spans[0].Start)
	require.Equal(t, 3, spans[0].End)
}

func TestCompileIgnoreCase(t *testing.T) {
	cfg := config.Default()
	cfg.Patterns = []string{"foo"}
	cfg.Flags.IgnoreCase = true

	p, err := Compile(cfg)
	require.NoError(t, err)

	spans, ok := p.Matcher.FindAt([]byte("xxxFOOyyy"), 0)
	require.True(t, ok)
	require.Equal(t, 3, spans[0].Start)
	require.Equal(t, 6, spans[0].End)
}

func TestNegativePatternSuppression(t *testing.T) {
	cfg := config.Default()
	cfg.Patterns = []string{`\d+`}
	cfg.NegativePatterns = []string{`0\d+`, `555`}

	p, err := Compile(cfg)
	require.NoError(t, err)

	lines := [][]byte{[]byte("0"), []byte("01"), []byte("123"), []byte("555")}
	var matchedLines []int
	for i, line := range lines {
		spans, ok := p.Matcher.FindAt(line, 0)
		if !ok {
			continue
		}
		if p.Suppressed(line, 0, spans[0].Start, spans[0].End) {
			continue
		}
		matchedLines = append(matchedLines, i)
	}
	require.Equal(t, []int{0, 2}, matchedLines)
}

func TestFuzzyMatcher(t *testing.T) {
	spec := config.FuzzySpec{Enabled: true, MaxCost: 1, AllowIns: true, AllowDel: true, AllowSub: true}
	fm, err := NewFuzzyMatcher("foobar", spec)
	require.NoError(t, err)

	cases := []struct {
		input string
		cost  int
	}{
		{"foobar", 0},
		{"fobar", 1},
		{"foo_bar", 1},
	}
	for _, c := range cases {
		m, ok := fm.FindAt([]byte(c.input), 0)
		require.True(t, ok, c.input)
		require.Equal(t, c.cost, m.Cost, c.input)
	}
}

func TestFuseLongestLiteralFirst(t *testing.T) {
	cfg := config.Default()
	cfg.Patterns = []string{"a", "abcdef"}
	cfg.Flags.FixedStrings = true

	p, err := Compile(cfg)
	require.NoError(t, err)

	spans, ok := p.Matcher.FindAt([]byte("abcdef"), 0)
	require.True(t, ok)
	require.Equal(t, 0, spans[0].Start)
	require.Equal(t, 6, spans[0].End)
}
