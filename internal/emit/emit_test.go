package emit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xgrep/xgrep/internal/config"
	"github.com/xgrep/xgrep/internal/model"
)

func sampleResult() *model.FileResult {
	src := &model.InputSource{Kind: model.SourceFile, Path: "hello.go"}
	return &model.FileResult{
		Source:           src,
		MatchCount:       1,
		MatchedLineCount: 1,
		Matches: []model.MatchRecord{{
			Source:        src,
			Line:          3,
			Column:        5,
			ByteOffset:    12,
			MatchStart:    4,
			MatchEnd:      9,
			MatchedBytes:  []byte("hello"),
			FullLineBytes: []byte("say hello world"),
		}},
	}
}

func TestEmitPlainBasic(t *testing.T) {
	cfg := config.Default()
	cfg.ShowLineNo = true
	var buf bytes.Buffer
	w := New(cfg, &buf, true)

	require.NoError(t, w.Emit(sampleResult()))
	out := buf.String()
	require.True(t, strings.Contains(out, "hello.go"))
	require.True(t, strings.Contains(out, "3"))
	require.True(t, strings.Contains(out, "say hello world"))
}

func TestEmitCountOnly(t *testing.T) {
	cfg := config.Default()
	cfg.CountOnly = true
	var buf bytes.Buffer
	w := New(cfg, &buf, true)

	require.NoError(t, w.Emit(sampleResult()))
	require.Equal(t, "hello.go:1\n", buf.String())
}

func TestEmitListFilesWithMatch(t *testing.T) {
	cfg := config.Default()
	cfg.ListFilesWithMatch = true
	var buf bytes.Buffer
	w := New(cfg, &buf, true)

	require.NoError(t, w.Emit(sampleResult()))
	require.Equal(t, "hello.go\n", buf.String())
}

func TestEmitFormatString(t *testing.T) {
	cfg := config.Default()
	cfg.Format = config.EmitFormatString
	cfg.FormatString = "%f:%n:%m\n"
	var buf bytes.Buffer
	w := New(cfg, &buf, true)

	require.NoError(t, w.Emit(sampleResult()))
	require.Equal(t, "hello.go:3:hello\n", buf.String())
}

func TestEmitReplace(t *testing.T) {
	cfg := config.Default()
	cfg.Format = config.EmitReplace
	cfg.ReplaceString = "[%m]"
	var buf bytes.Buffer
	w := New(cfg, &buf, true)

	require.NoError(t, w.Emit(sampleResult()))
	require.Equal(t, "say [hello] world\n", buf.String())
}

func TestEmitCSV(t *testing.T) {
	cfg := config.Default()
	cfg.Format = config.EmitCSV
	var buf bytes.Buffer
	w := New(cfg, &buf, true)

	require.NoError(t, w.Emit(sampleResult()))
	require.True(t, strings.Contains(buf.String(), "hello.go"))
	require.True(t, strings.Contains(buf.String(), "say hello world"))
}

func TestParsePaletteDefaults(t *testing.T) {
	p := ParsePalette("")
	require.NotNil(t, p.Match)
	require.NotNil(t, p.Filename)
}
