// Package walk implements the traversal and worker pool: a recursive
// directory walk feeding a fixed pool of workers through per-worker
// work-stealing deques, with symlink policy, depth bounds, and a shared
// cancellation flag.
package walk

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/karrick/godirwalk"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/xgrep/xgrep/internal/config"
	"github.com/xgrep/xgrep/internal/model"
	"github.com/xgrep/xgrep/internal/pathselect"
)

// Processor is invoked once per InputSource by exactly one worker.
type Processor func(ctx context.Context, source *model.InputSource) *model.FileResult

// Pool runs the traversal and drives Processor over every file it selects.
type Pool struct {
	cfg      *config.Config
	selector *pathselect.Selector
	proc     Processor

	deques []*deque
	seen   sync.Map // dev/ino dedup seen-set

	cancelled atomic.Bool

	Results chan *model.FileResult
}

// NewPool builds a Pool with cfg.ResolvedWorkers(numCPU) worker deques.
func NewPool(cfg *config.Config, selector *pathselect.Selector, proc Processor, numCPU int) *Pool {
	n := cfg.ResolvedWorkers(numCPU)
	p := &Pool{
		cfg:      cfg,
		selector: selector,
		proc:     proc,
		deques:   make([]*deque, n),
		Results:  make(chan *model.FileResult, n*4),
	}
	for i := range p.deques {
		p.deques[i] = newDeque(1024)
	}
	return p
}

// Cancel sets the shared cancellation flag. The engine sets it on the first
// match under -l or -q and on --max-files saturation; a user signal cancels
// the ctx passed to Run instead.
func (p *Pool) Cancel() { p.cancelled.Store(true) }

// Cancelled reports the flag's current value; passed to stream.Options.Cancel.
func (p *Pool) Cancelled() bool { return p.cancelled.Load() }

// Run walks roots and processes every selected file, closing Results when
// done. -J1 (cfg.Workers==1) disables the pool and walks+processes roots
// in the user-specified order, single-threaded.
func (p *Pool) Run(ctx context.Context, roots []string) error {
	defer close(p.Results)

	if p.cfg.Workers == 1 {
		return p.runSequential(ctx, roots)
	}

	g, ctx := errgroup.WithContext(ctx)

	// Every Processor call holds one unit of sem, which is sized at twice
	// the worker count; a worker runs one call at a time, so the bound is
	// never reached.
	sem := semaphore.NewWeighted(int64(len(p.deques) * 2))

	producerDone := make(chan struct{})
	g.Go(func() error {
		defer close(producerDone)
		return p.produce(ctx, roots)
	})

	for i := range p.deques {
		i := i
		g.Go(func() error {
			return p.workerLoop(ctx, i, producerDone, sem)
		})
	}

	return g.Wait()
}

func (p *Pool) runSequential(ctx context.Context, roots []string) error {
	var items []*model.InputSource
	err := p.walkRoots(roots, func(s *model.InputSource) bool {
		items = append(items, s)
		return true
	})
	if err != nil {
		return err
	}
	for _, s := range items {
		if p.Cancelled() || ctx.Err() != nil {
			return nil
		}
		if r := p.proc(ctx, s); r != nil {
			p.Results <- r
		}
	}
	return nil
}

// produce walks roots, round-robin assigning discovered sources to worker
// deques: N bounded per-worker deques fed round-robin, avoiding a single
// shared-queue contention point.
func (p *Pool) produce(ctx context.Context, roots []string) error {
	next := 0
	return p.walkRoots(roots, func(s *model.InputSource) bool {
		if p.Cancelled() || ctx.Err() != nil {
			return false
		}
		for !p.deques[next%len(p.deques)].pushBottom(s) {
			next++
			if ctx.Err() != nil {
				return false
			}
		}
		next++
		return true
	})
}

func (p *Pool) workerLoop(ctx context.Context, idx int, producerDone <-chan struct{}, sem *semaphore.Weighted) error {
	own := p.deques[idx]
	for {
		if p.Cancelled() || ctx.Err() != nil {
			return nil
		}
		item, ok := own.popBottom()
		if !ok {
			item, ok = p.steal(idx)
		}
		if !ok {
			select {
			case <-producerDone:
				if p.allEmpty() {
					return nil
				}
			default:
			}
			runtime.Gosched()
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil
		}
		result := p.proc(ctx, item)
		sem.Release(1)
		if result != nil {
			select {
			case p.Results <- result:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (p *Pool) steal(from int) (*model.InputSource, bool) {
	for i := range p.deques {
		if i == from {
			continue
		}
		if item, ok := p.deques[i].popTop(); ok {
			return item, true
		}
	}
	return nil, false
}

func (p *Pool) allEmpty() bool {
	for _, d := range p.deques {
		if !d.empty() {
			return false
		}
	}
	return true
}

// walkRoots drives godirwalk over roots, applying symlink policy, depth
// bounds, the path selector, and dev/inode dedup, calling emit for every
// selected regular file.
func (p *Pool) walkRoots(roots []string, emit func(*model.InputSource) bool) error {
	for _, root := range roots {
		followRootSymlink := p.cfg.FollowSymlinks != config.SymlinkNone

		info, err := os.Lstat(root)
		if err != nil {
			// non-existent root path: hand it on so that opening it reports
			// a per-source warning, and continue with the rest
			emit(&model.InputSource{Kind: model.SourceFile, Path: root})
			continue
		}
		if info.Mode()&os.ModeSymlink != 0 && !followRootSymlink {
			continue
		}
		if !info.IsDir() {
			src := fileInputSource(root, info)
			if p.acceptSource(src) {
				emit(src)
			}
			continue
		}

		err = godirwalk.Walk(root, &godirwalk.Options{
			Unsorted:            true,
			FollowSymbolicLinks: p.cfg.FollowSymlinks == config.SymlinkAll,
			Callback: func(path string, de *godirwalk.Dirent) error {
				if path == root {
					return nil
				}
				rel, _ := filepath.Rel(root, path)
				depth := strings.Count(rel, string(filepath.Separator)) + 1

				if de.IsDir() {
					if !p.cfg.Recursive && depth >= 1 {
						return filepath.SkipDir
					}
					if !p.selector.AcceptDir(rel) {
						return filepath.SkipDir
					}
					if p.cfg.DepthMax > 0 && depth >= p.cfg.DepthMax {
						return filepath.SkipDir
					}
					_ = p.selector.EnterDir(path)
					return nil
				}

				isSymlink := de.ModeType()&os.ModeSymlink != 0
				if isSymlink && !p.allowSymlink(true) {
					return nil
				}
				if p.cfg.DepthMin > 0 && depth < p.cfg.DepthMin {
					return nil
				}
				if p.cfg.DepthMax > 0 && depth > p.cfg.DepthMax {
					return nil
				}

				info, err := os.Stat(path)
				if err != nil {
					// unreadable entry (e.g. a dangling symlink): hand it on
					// so that opening it reports a per-source warning
					if p.selector.Accept(rel, nil) && !emit(&model.InputSource{Kind: model.SourceFile, Path: path}) {
						return filepath.SkipDir
					}
					return nil
				}
				src := fileInputSource(path, info)
				if !p.acceptSource(src) {
					return nil
				}
				if !p.selector.Accept(rel, peekHead(path)) {
					return nil
				}
				if !emit(src) {
					return filepath.SkipDir
				}
				return nil
			},
			PostChildrenCallback: func(path string, de *godirwalk.Dirent) error {
				p.selector.LeaveDir(path)
				return nil
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Pool) allowSymlink(isDir bool) bool {
	switch p.cfg.FollowSymlinks {
	case config.SymlinkAll:
		return true
	case config.SymlinkFilesOnly:
		return !isDir
	default:
		return false
	}
}

// acceptSource applies dev/inode dedup and --include-fs/
// --exclude-fs filtering.
func (p *Pool) acceptSource(src *model.InputSource) bool {
	if !p.selector.AllowDev(src.Dev) {
		return false
	}
	key := [2]uint64{src.Dev, src.Ino}
	if _, loaded := p.seen.LoadOrStore(key, struct{}{}); loaded {
		return false
	}
	return true
}

func peekHead(path string) []byte {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	return buf[:n]
}
