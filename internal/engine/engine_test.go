package engine

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xgrep/xgrep/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestRunFindsMatchAcrossDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "hello world\nnothing here\n")
	writeFile(t, dir, "sub/b.txt", "another world entirely\n")
	writeFile(t, dir, "sub/c.txt", "no match in this one\n")

	cfg := config.Default()
	cfg.Patterns = []string{"world"}
	cfg.Roots = []string{dir}
	cfg.ShowFilename = config.ShowFilenameAlways

	var out bytes.Buffer
	code, err := Run(context.Background(), cfg, &out, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 0, code)
	require.Contains(t, out.String(), "hello world")
	require.Contains(t, out.String(), "another world entirely")
	require.NotContains(t, out.String(), "no match in this one")
}

func TestRunNoMatchExitsOne(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "nothing to see here\n")

	cfg := config.Default()
	cfg.Patterns = []string{"zzznomatchzzz"}
	cfg.Roots = []string{dir}

	var out bytes.Buffer
	code, err := Run(context.Background(), cfg, &out, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 1, code)
	require.Empty(t, out.String())
}

func TestRunInvalidPatternIsUsageError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "x\n")

	cfg := config.Default()
	cfg.Patterns = []string{"("}
	cfg.Roots = []string{dir}

	var out bytes.Buffer
	code, err := Run(context.Background(), cfg, &out, zap.NewNop())
	require.Error(t, err)
	require.Equal(t, 2, code)
}

func TestRunQuietExitStopsAtFirstMatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "needle\n")

	cfg := config.Default()
	cfg.Patterns = []string{"needle"}
	cfg.Roots = []string{dir}
	cfg.QuietExit = true

	var out bytes.Buffer
	code, err := Run(context.Background(), cfg, &out, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 0, code)
	require.Empty(t, out.String())
}

func TestRunReadsStdinWhenNoRoots(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString("find me here\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	origStdin := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = origStdin }()

	cfg := config.Default()
	cfg.Patterns = []string{"find me"}

	var out bytes.Buffer
	code, err := Run(context.Background(), cfg, &out, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 0, code)
	require.Contains(t, out.String(), "find me here")
}
