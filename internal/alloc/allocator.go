// Package alloc issues and recycles node identifiers.
//
// Identifiers are small decimal numbers rendered as strings ("1", "2", ...).
// Released ids are recycled LIFO before the counter is advanced, so graphs
// edited interactively keep compact id ranges. Every misuse (double release,
// stale reuse) is recovered locally with a logged warning: the allocator
// only manages a numbering convention and must never fail the caller.
package alloc

import (
	"log/slog"
	"sort"
	"strconv"
	"sync"
)

// Allocator hands out unique node ids. Safe for concurrent use.
// It is an injected instance, never a package-level singleton, so tests
// and multiple engines do not share hidden state.
type Allocator struct {
	mu       sync.Mutex
	next     uint64
	freeList []uint64
	live     map[uint64]struct{}
	logger   *slog.Logger
}

// New creates an allocator whose first issued id is "1".
func New(logger *slog.Logger) *Allocator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Allocator{
		next:   1,
		live:   make(map[uint64]struct{}),
		logger: logger,
	}
}

// Allocate returns a fresh id, recycling released ids LIFO before
// advancing the counter.
func (a *Allocator) Allocate() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	for len(a.freeList) > 0 {
		id := a.freeList[len(a.freeList)-1]
		a.freeList = a.freeList[:len(a.freeList)-1]

		if _, inUse := a.live[id]; inUse {
			// A double release put a live id on the free list. Discard it
			// instead of issuing a duplicate.
			a.logger.Warn("discarding free-list id still in use", "id", id)
			continue
		}
		a.live[id] = struct{}{}
		return strconv.FormatUint(id, 10)
	}

	id := a.next
	a.next++
	a.live[id] = struct{}{}
	return strconv.FormatUint(id, 10)
}

// RegisterExisting records an id that entered the graph from outside
// (bulk load, paste, undo). The counter is bumped past it so future
// allocations cannot collide.
func (a *Allocator) RegisterExisting(id string) {
	n, ok := a.parse(id, "register")
	if !ok {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.live[n]; exists {
		a.logger.Debug("skipping already-registered id", "id", id)
		return
	}
	a.live[n] = struct{}{}
	if n >= a.next {
		a.next = n + 1
	}
	// Purge from the free list so the id cannot be issued twice.
	for i, f := range a.freeList {
		if f == n {
			a.freeList = append(a.freeList[:i], a.freeList[i+1:]...)
			break
		}
	}
}

// Release returns an id to the pool. Unknown ids are ignored with a warning.
func (a *Allocator) Release(id string) {
	n, ok := a.parse(id, "release")
	if !ok {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.live[n]; !exists {
		a.logger.Warn("release of id that is not live", "id", id)
		return
	}
	delete(a.live, n)

	for _, f := range a.freeList {
		if f == n {
			// Already queued for reuse; releasing twice must not double-issue.
			return
		}
	}
	a.freeList = append(a.freeList, n)
}

// Resync clears all state and re-derives it from the given live ids,
// registering them in ascending order so the counter lands deterministically.
// Used after bulk load, undo and redo.
func (a *Allocator) Resync(liveIDs []string) {
	nums := make([]uint64, 0, len(liveIDs))
	for _, id := range liveIDs {
		if n, ok := a.parse(id, "resync"); ok {
			nums = append(nums, n)
		}
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })

	a.mu.Lock()
	a.next = 1
	a.freeList = nil
	a.live = make(map[uint64]struct{}, len(nums))
	a.mu.Unlock()

	for _, n := range nums {
		a.RegisterExisting(strconv.FormatUint(n, 10))
	}
}

// Live reports whether the id is currently issued.
func (a *Allocator) Live(id string) bool {
	n, ok := a.parse(id, "lookup")
	if !ok {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	_, exists := a.live[n]
	return exists
}

func (a *Allocator) parse(id string, op string) (uint64, bool) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		a.logger.Warn("ignoring non-numeric id", "op", op, "id", id)
		return 0, false
	}
	return n, true
}
