package stream

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xgrep/xgrep/internal/config"
	"github.com/xgrep/xgrep/internal/model"
	"github.com/xgrep/xgrep/internal/pattern"
)

type recordingSink struct {
	matches     []model.MatchRecord
	context     []string
	separators  int
}

func (s *recordingSink) OnMatch(rec *model.MatchRecord) bool {
	s.matches = append(s.matches, *rec)
	return true
}
func (s *recordingSink) OnContextLine(source *model.InputSource, line int, text []byte) {
	s.context = append(s.context, string(text))
}
func (s *recordingSink) OnGroupSeparator() { s.separators++ }

func compilePattern(t *testing.T, lit string) *pattern.Pattern {
	t.Helper()
	cfg := config.Default()
	cfg.Patterns = []string{lit}
	p, err := pattern.Compile(cfg)
	require.NoError(t, err)
	return p
}

func TestScanFindsLineAndColumn(t *testing.T) {
	p := compilePattern(t, "world")
	src := &model.InputSource{Kind: model.SourceFile, Path: "greeting.txt"}

	sink := &recordingSink{}
	result, err := Scan(src, strings.NewReader("hello world\nsee you\n"), p, Options{TabWidth: 8, Unique: true}, sink)
	require.NoError(t, err)
	require.Equal(t, 1, result.MatchCount)
	require.Len(t, sink.matches, 1)
	require.Equal(t, 1, sink.matches[0].Line)
	require.Equal(t, 7, sink.matches[0].Column)
}

func TestScanContextAndGroupSeparator(t *testing.T) {
	p := compilePattern(t, "MATCH")
	src := &model.InputSource{Kind: model.SourceFile, Path: "f.txt"}

	content := "a\nb\nMATCH1\nc\nd\ne\nf\ng\nh\ni\nMATCH2\nj\n"
	sink := &recordingSink{}
	opts := Options{Before: 1, After: 1, Unique: true}
	_, err := Scan(src, strings.NewReader(content), p, opts, sink)
	require.NoError(t, err)
	require.Len(t, sink.matches, 2)
	// the two match groups are far apart, so a separator is expected.
	require.Equal(t, 1, sink.separators)
}

func TestScanMaxCountEarlyExit(t *testing.T) {
	p := compilePattern(t, "x")
	src := &model.InputSource{Kind: model.SourceFile, Path: "f.txt"}
	sink := &recordingSink{}
	opts := Options{MaxCount: 2, Unique: true}
	result, err := Scan(src, strings.NewReader("x\nx\nx\nx\n"), p, opts, sink)
	require.NoError(t, err)
	require.Equal(t, 2, result.MatchCount)
}

func TestScanInvertMatch(t *testing.T) {
	p := compilePattern(t, "foo")
	src := &model.InputSource{Kind: model.SourceFile, Path: "f.txt"}
	sink := &recordingSink{}
	opts := Options{InvertMatch: true, Unique: true}
	result, err := Scan(src, strings.NewReader("foo\nbar\nfoo\nbaz\n"), p, opts, sink)
	require.NoError(t, err)
	require.Equal(t, 2, result.MatchCount)
	require.Equal(t, 2, sink.matches[0].Line)
}

func TestScanMinMaxBuffersAndFilters(t *testing.T) {
	p := compilePattern(t, "x")
	src := &model.InputSource{Kind: model.SourceFile, Path: "f.txt"}
	sink := &recordingSink{}
	opts := Options{MinCount: 5, Unique: true}
	result, err := Scan(src, strings.NewReader("x\nx\nx\n"), p, opts, sink)
	require.NoError(t, err)
	require.Equal(t, 0, result.MatchCount)
	require.Empty(t, sink.matches)
}

func TestScanBinaryDetection(t *testing.T) {
	p := compilePattern(t, "x")
	src := &model.InputSource{Kind: model.SourceFile, Path: "f.bin"}
	sink := &recordingSink{}
	content := "abc\x00def\nx\n"
	result, err := Scan(src, strings.NewReader(content), p, Options{Unique: true}, sink)
	require.NoError(t, err)
	require.True(t, result.BinaryDetected)
}
