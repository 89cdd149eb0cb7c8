package alloc

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/internal/logging"
)

func newTestAllocator() *Allocator {
	return New(logging.NewNop())
}

func TestAllocate_Sequential(t *testing.T) {
	a := newTestAllocator()

	assert.Equal(t, "1", a.Allocate())
	assert.Equal(t, "2", a.Allocate())
	assert.Equal(t, "3", a.Allocate())
}

func TestAllocate_RecyclesReleasedIDs(t *testing.T) {
	a := newTestAllocator()
	a.Allocate() // 1
	a.Allocate() // 2
	a.Allocate() // 3

	a.Release("2")

	// The released id comes back before a new one is minted.
	assert.Equal(t, "2", a.Allocate())
	assert.Equal(t, "4", a.Allocate())
}

func TestAllocate_FreeListIsLIFO(t *testing.T) {
	a := newTestAllocator()
	for i := 0; i < 4; i++ {
		a.Allocate()
	}

	a.Release("1")
	a.Release("3")

	assert.Equal(t, "3", a.Allocate())
	assert.Equal(t, "1", a.Allocate())
}

func TestRelease_UnknownIDIsIgnored(t *testing.T) {
	a := newTestAllocator()
	a.Release("42") // never issued; must not panic or corrupt state

	assert.Equal(t, "1", a.Allocate())
}

func TestRelease_DoubleReleaseDoesNotDoubleIssue(t *testing.T) {
	a := newTestAllocator()
	a.Allocate() // 1
	a.Allocate() // 2

	a.Release("2")
	a.Release("2")

	assert.Equal(t, "2", a.Allocate())
	// A second pop must not hand out "2" again.
	assert.Equal(t, "3", a.Allocate())
}

func TestRegisterExisting_BumpsCounter(t *testing.T) {
	a := newTestAllocator()
	a.RegisterExisting("7")

	assert.Equal(t, "8", a.Allocate())
}

func TestRegisterExisting_PurgesFreeList(t *testing.T) {
	a := newTestAllocator()
	a.Allocate() // 1
	a.Release("1")

	// Id "1" re-enters from outside (e.g. undo); the free list copy must go.
	a.RegisterExisting("1")

	assert.Equal(t, "2", a.Allocate())
}

func TestRegisterExisting_AlreadyLiveIsNoop(t *testing.T) {
	a := newTestAllocator()
	a.Allocate() // 1
	a.RegisterExisting("1")

	assert.Equal(t, "2", a.Allocate())
}

func TestResync_DerivesCounterFromLiveSet(t *testing.T) {
	a := newTestAllocator()
	for i := 0; i < 5; i++ {
		a.Allocate()
	}
	a.Release("4")

	a.Resync([]string{"3", "10", "1"})

	// Nothing previously released survives a resync.
	assert.Equal(t, "11", a.Allocate())
	assert.True(t, a.Live("3"))
	assert.True(t, a.Live("10"))
	assert.False(t, a.Live("5"))
}

func TestResync_NextAllocateNeverCollides(t *testing.T) {
	a := newTestAllocator()
	loaded := []string{"2", "9", "4"}
	a.Resync(loaded)

	got := a.Allocate()
	for _, id := range loaded {
		require.NotEqual(t, id, got, "allocate after resync must not return a loaded id")
	}
}

func TestUniqueness_MixedSequence(t *testing.T) {
	a := newTestAllocator()
	issued := make(map[string]bool)

	claim := func(id string) {
		require.False(t, issued[id], "id %s issued twice while live", id)
		issued[id] = true
	}

	for i := 0; i < 10; i++ {
		claim(a.Allocate())
	}
	for i := 2; i <= 6; i += 2 {
		id := fmt.Sprintf("%d", i)
		a.Release(id)
		delete(issued, id)
	}
	a.RegisterExisting("15")
	claim("15")
	for i := 0; i < 10; i++ {
		claim(a.Allocate())
	}
}

func TestNonNumericIDsAreIgnored(t *testing.T) {
	a := newTestAllocator()
	a.RegisterExisting("not-a-number")
	a.Release("also-bad")

	assert.Equal(t, "1", a.Allocate())
	assert.False(t, a.Live("not-a-number"))
}
