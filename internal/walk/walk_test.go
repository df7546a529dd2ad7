package walk

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xgrep/xgrep/internal/config"
	"github.com/xgrep/xgrep/internal/model"
	"github.com/xgrep/xgrep/internal/pathselect"
)

func writeTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("hello"), 0o644))
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "c.go"), []byte("package sub"), 0o644))
	return dir
}

func TestPoolRunVisitsSelectedFiles(t *testing.T) {
	dir := writeTree(t)
	cfg := config.Default()
	cfg.Extensions = []string{"go"}
	cfg.Workers = 1

	sel, err := pathselect.New(cfg)
	require.NoError(t, err)

	var visited []string
	proc := func(ctx context.Context, s *model.InputSource) *model.FileResult {
		visited = append(visited, s.Path)
		return &model.FileResult{Source: s}
	}

	pool := NewPool(cfg, sel, proc, 4)
	var results []*model.FileResult
	done := make(chan struct{})
	go func() {
		for r := range pool.Results {
			results = append(results, r)
		}
		close(done)
	}()

	require.NoError(t, pool.Run(context.Background(), []string{dir}))
	<-done

	require.Len(t, visited, 2) // a.go and sub/c.go, not b.txt
	require.Len(t, results, 2)
}

func TestPoolRunConcurrent(t *testing.T) {
	dir := writeTree(t)
	cfg := config.Default()
	cfg.Workers = 4

	sel, err := pathselect.New(cfg)
	require.NoError(t, err)

	proc := func(ctx context.Context, s *model.InputSource) *model.FileResult {
		return &model.FileResult{Source: s}
	}

	pool := NewPool(cfg, sel, proc, 4)
	var count int
	done := make(chan struct{})
	go func() {
		for range pool.Results {
			count++
		}
		close(done)
	}()

	require.NoError(t, pool.Run(context.Background(), []string{dir}))
	<-done
	require.Equal(t, 3, count)
}
