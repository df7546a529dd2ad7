package output

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xgrep/xgrep/internal/config"
	"github.com/xgrep/xgrep/internal/model"
)

type fakeEmitter struct {
	order []string
}

func (f *fakeEmitter) Emit(r *model.FileResult) error {
	f.order = append(f.order, r.Source.Path)
	return nil
}

func result(path string, matchCount int, size int64) *model.FileResult {
	return &model.FileResult{
		Source:     &model.InputSource{Kind: model.SourceFile, Path: path},
		MatchCount: matchCount,
		Keys:       model.SortKey{Name: path, Size: size},
	}
}

func TestConsumeUnsortedPassesThrough(t *testing.T) {
	cfg := config.Default()
	em := &fakeEmitter{}
	c := New(cfg, em, func() {})

	ch := make(chan *model.FileResult, 3)
	ch <- result("b.go", 1, 10)
	ch <- result("a.go", 1, 5)
	close(ch)

	require.NoError(t, c.Consume(ch))
	require.Equal(t, []string{"b.go", "a.go"}, em.order)
}

func TestConsumeSortBySize(t *testing.T) {
	cfg := config.Default()
	cfg.Sort = config.SortSize
	em := &fakeEmitter{}
	c := New(cfg, em, func() {})

	ch := make(chan *model.FileResult, 3)
	ch <- result("big.go", 1, 100)
	ch <- result("small.go", 1, 1)
	ch <- result("mid.go", 1, 50)
	close(ch)

	require.NoError(t, c.Consume(ch))
	require.Equal(t, []string{"small.go", "mid.go", "big.go"}, em.order)
}

func TestConsumeMaxFilesCancels(t *testing.T) {
	cfg := config.Default()
	cfg.MaxFiles = 1
	cancelled := false
	em := &fakeEmitter{}
	c := New(cfg, em, func() { cancelled = true })

	ch := make(chan *model.FileResult, 2)
	ch <- result("a.go", 1, 1)
	ch <- result("b.go", 1, 1)
	close(ch)

	require.NoError(t, c.Consume(ch))
	require.True(t, cancelled)
}

func TestConsumeSkipsEmptyResults(t *testing.T) {
	cfg := config.Default()
	em := &fakeEmitter{}
	c := New(cfg, em, func() {})

	ch := make(chan *model.FileResult, 1)
	ch <- result("nomatch.go", 0, 1)
	close(ch)

	require.NoError(t, c.Consume(ch))
	require.Empty(t, em.order)
}
