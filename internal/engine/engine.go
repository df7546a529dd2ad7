// Package engine wires the compiled pattern, path selector, traversal/worker
// pool, output coordinator, and emitter into one end-to-end run, and
// computes the process exit code.
package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/xgrep/xgrep/internal/boolquery"
	"github.com/xgrep/xgrep/internal/config"
	"github.com/xgrep/xgrep/internal/emit"
	"github.com/xgrep/xgrep/internal/engineerr"
	"github.com/xgrep/xgrep/internal/model"
	"github.com/xgrep/xgrep/internal/output"
	"github.com/xgrep/xgrep/internal/pathselect"
	"github.com/xgrep/xgrep/internal/walk"
)

// Run executes one search: compiling patterns, selecting paths, walking
// cfg.Roots (or reading stdin if there are none), and emitting results to
// stdout. It returns the process exit code, never calling os.Exit itself —
// that discipline belongs to cmd/xgrep.
func Run(ctx context.Context, cfg *config.Config, stdout io.Writer, log *zap.Logger) (int, error) {
	pat, leaves, query, err := compilePatterns(cfg)
	if err != nil {
		return 2, err
	}

	selector, err := pathselect.New(cfg)
	if err != nil {
		return 2, engineerr.Usage(err)
	}
	for _, fs := range cfg.IncludeFS {
		registerFSRoot(selector, fs, true)
	}
	for _, fs := range cfg.ExcludeFS {
		registerFSRoot(selector, fs, false)
	}

	var pool *walk.Pool
	proc := func(procCtx context.Context, source *model.InputSource) *model.FileResult {
		processSource(procCtx, cfg, pat, leaves, query, selector, pool.Cancelled, source, func(r *model.FileResult) {
			if r != nil {
				pool.Results <- r
			}
		})
		return nil
	}
	pool = walk.NewPool(cfg, selector, proc, runtime.NumCPU())

	writer := emit.New(cfg, stdout, multiSource(cfg.Roots))
	var anyMatch, anyWarning bool
	stats := &statsEmitter{inner: writer, cfg: cfg, log: log, cancel: pool.Cancel, anyMatch: &anyMatch, anyWarning: &anyWarning}
	coord := output.New(cfg, stats, pool.Cancel)

	walkErrCh := make(chan error, 1)
	if len(cfg.Roots) == 0 {
		go func() {
			src := stdinSource(cfg)
			processSource(ctx, cfg, pat, leaves, query, selector, pool.Cancelled, src, func(r *model.FileResult) {
				if r != nil {
					pool.Results <- r
				}
			})
			close(pool.Results)
			walkErrCh <- nil
		}()
	} else {
		go func() { walkErrCh <- pool.Run(ctx, cfg.Roots) }()
	}

	coordErr := coord.Consume(pool.Results)
	walkErr := <-walkErrCh

	if walkErr != nil {
		return 2, engineerr.Resource(walkErr)
	}
	if coordErr != nil {
		return 2, coordErr
	}

	if cfg.Stats && query != nil {
		clauses := []*boolquery.Expr{query.CNF}
		if query.CNF.Op == boolquery.OpAnd {
			clauses = query.CNF.Children
		}
		for _, c := range clauses {
			fmt.Fprintln(os.Stderr, c)
		}
	}

	switch {
	case anyMatch:
		return 0, nil
	case anyWarning && !cfg.SuppressWarnings && !cfg.QuietExit:
		return 2, nil
	default:
		return 1, nil
	}
}

// registerFSRoot resolves path to a device number and records it against
// the selector's --include-fs/--exclude-fs set. A path that can't be
// stat'd is silently dropped from the filter rather than aborting the run —
// it simply never matches any traversed file's device.
func registerFSRoot(selector *pathselect.Selector, path string, include bool) {
	dev, ok := statDev(path)
	if !ok {
		return
	}
	selector.RegisterFSRoot(dev, include)
}

// statsEmitter decorates the emitter with the bookkeeping Run needs to pick
// an exit code and to trigger early cancellation once -l or -q has its
// answer (-L needs every source scanned, so it never cancels early).
type statsEmitter struct {
	inner  output.Emitter
	cfg    *config.Config
	log    *zap.Logger
	cancel func()

	anyMatch   *bool
	anyWarning *bool
}

func (s *statsEmitter) Emit(r *model.FileResult) error {
	if r.Err != nil {
		*s.anyWarning = true
		if !s.cfg.SuppressWarnings && s.log != nil {
			s.log.Warn("source error", zap.String("path", r.Source.DisplayPath()), zap.Error(r.Err))
		}
	}
	if r.MatchCount > 0 {
		*s.anyMatch = true
		if s.cfg.QuietExit || s.cfg.ListFilesWithMatch {
			s.cancel()
		}
	}
	return s.inner.Emit(r)
}
