package walk

import (
	"sync/atomic"

	"github.com/xgrep/xgrep/internal/model"
)

// deque is a fixed-capacity Chase-Lev work-stealing deque of
// *model.InputSource. The owning worker
// pushes and pops from the bottom (LIFO); thieves pop from the top
// (oldest first), using only atomic loads/CAS — no mutex on the hot path.
type deque struct {
	buf   []atomic.Pointer[model.InputSource]
	mask  int64
	top   atomic.Int64
	bottom atomic.Int64
}

func newDeque(capacityPow2 int) *deque {
	n := 1
	for n < capacityPow2 {
		n <<= 1
	}
	return &deque{buf: make([]atomic.Pointer[model.InputSource], n), mask: int64(n - 1)}
}

// pushBottom is called only by the owning worker/producer.
func (d *deque) pushBottom(item *model.InputSource) bool {
	b := d.bottom.Load()
	t := d.top.Load()
	if b-t >= int64(len(d.buf)) {
		return false // full; caller should block or grow elsewhere
	}
	d.buf[b&d.mask].Store(item)
	d.bottom.Store(b + 1)
	return true
}

// popBottom is called only by the owning worker; LIFO order.
func (d *deque) popBottom() (*model.InputSource, bool) {
	b := d.bottom.Load() - 1
	d.bottom.Store(b)
	t := d.top.Load()
	if t > b {
		d.bottom.Store(t)
		return nil, false
	}
	item := d.buf[b&d.mask].Load()
	if t == b {
		if !d.top.CompareAndSwap(t, t+1) {
			d.bottom.Store(t + 1)
			return nil, false
		}
		d.bottom.Store(t + 1)
	}
	return item, item != nil
}

// popTop is called by a thief stealing from another worker's deque; FIFO
// (oldest-first) order, so a thief takes the work least likely to still
// be hot in the owner's cache.
func (d *deque) popTop() (*model.InputSource, bool) {
	t := d.top.Load()
	b := d.bottom.Load()
	if t >= b {
		return nil, false
	}
	item := d.buf[t&d.mask].Load()
	if !d.top.CompareAndSwap(t, t+1) {
		return nil, false // lost the race to another thief or the owner
	}
	return item, item != nil
}

func (d *deque) empty() bool {
	return d.bottom.Load() <= d.top.Load()
}
