// Package output implements the output coordinator: a
// fan-in point for per-source FileResults, with optional --sort=KEY
// buffering and --max-files cutoff.
package output

import (
	"sync"

	"github.com/tidwall/btree"

	"github.com/xgrep/xgrep/internal/config"
	"github.com/xgrep/xgrep/internal/model"
)

// Emitter renders one FileResult. Output writes through
// the emitter are assumed to be safe to call from the coordinator's own
// goroutine only (the coordinator never calls Emit concurrently).
type Emitter interface {
	Emit(r *model.FileResult) error
}

// Coordinator receives FileResults from the worker pool and forwards them
// to an Emitter, honoring --sort and --max-files.
type Coordinator struct {
	cfg    *config.Config
	emit   Emitter
	cancel func()

	mu           sync.Mutex
	tree         *btree.BTreeG[*model.FileResult]
	matchedFiles int

	// FirstErr is the first emitter error encountered; Consume stops
	// accepting new results once set, draining the channel so producers
	// don't block.
	FirstErr error
}

// New builds a Coordinator. cancel is called once --max-files sources
// have each produced >=1 match.
func New(cfg *config.Config, emit Emitter, cancel func()) *Coordinator {
	c := &Coordinator{cfg: cfg, emit: emit, cancel: cancel}
	if cfg.Sort != config.SortNone {
		c.tree = btree.NewBTreeG(lessFor(cfg.Sort, cfg.SortReverse))
	}
	return c
}

// Consume drains results until the channel closes, emitting either as
// they arrive or buffered and
// flushed in key order (--sort=KEY: "buffers results... and flushes in
// key order").
func (c *Coordinator) Consume(results <-chan *model.FileResult) error {
	for r := range results {
		if c.FirstErr != nil {
			continue // already failed; drain without doing more work
		}
		if c.cfg.Sort == config.SortNone {
			if err := c.emitOne(r); err != nil {
				c.FirstErr = err
			}
			continue
		}
		c.mu.Lock()
		c.tree.Set(r)
		c.mu.Unlock()
	}
	if c.cfg.Sort != config.SortNone && c.FirstErr == nil {
		c.tree.Scan(func(r *model.FileResult) bool {
			if err := c.emitOne(r); err != nil {
				c.FirstErr = err
				return false
			}
			return true
		})
	}
	return c.FirstErr
}

func (c *Coordinator) emitOne(r *model.FileResult) error {
	if r.Err != nil && len(r.Matches) == 0 && r.MatchCount == 0 {
		// A failed source with nothing recovered is still surfaced to the
		// emitter; the emitter decides how to
		// render a warning-only FileResult.
		return c.emit.Emit(r)
	}
	if r.MatchCount == 0 && !c.cfg.ListFilesWithoutMatch {
		return nil
	}
	if err := c.emit.Emit(r); err != nil {
		return err
	}
	if r.MatchCount > 0 {
		c.matchedFiles++
		if c.cfg.MaxFiles > 0 && c.matchedFiles >= c.cfg.MaxFiles {
			c.cancel()
		}
	}
	return nil
}

// lessFor builds the comparator for --sort=KEY, directories
// are not distinguished here (the traversal already interleaves them);
// reverse flips the comparison.
func lessFor(key config.SortKey, reverse bool) func(a, b *model.FileResult) bool {
	// path is the total-order tiebreaker: two FileResults can share a sort
	// key (same size, same mtime, same base name in different
	// directories) and the tree would otherwise treat them as equal and
	// silently replace one with the other.
	path := func(r *model.FileResult) string {
		if r.Source == nil {
			return ""
		}
		return r.Source.DisplayPath()
	}
	base := func(a, b *model.FileResult) bool {
		switch key {
		case config.SortSize:
			if a.Keys.Size != b.Keys.Size {
				return a.Keys.Size < b.Keys.Size
			}
		case config.SortUsed:
			if !a.Keys.Atime.Equal(b.Keys.Atime) {
				return a.Keys.Atime.Before(b.Keys.Atime)
			}
		case config.SortChanged:
			if !a.Keys.Mtime.Equal(b.Keys.Mtime) {
				return a.Keys.Mtime.Before(b.Keys.Mtime)
			}
		case config.SortCreated:
			if !a.Keys.Ctime.Equal(b.Keys.Ctime) {
				return a.Keys.Ctime.Before(b.Keys.Ctime)
			}
		case config.SortBest:
			if a.Keys.BestFuzzyCost != b.Keys.BestFuzzyCost {
				return a.Keys.BestFuzzyCost < b.Keys.BestFuzzyCost
			}
		default: // SortName
			if a.Keys.Name != b.Keys.Name {
				return a.Keys.Name < b.Keys.Name
			}
		}
		return path(a) < path(b)
	}
	if !reverse {
		return base
	}
	return func(a, b *model.FileResult) bool { return base(b, a) }
}
