package random

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamsAreDeterministic(t *testing.T) {
	a := New(42).Stream(3)
	b := New(42).Stream(3)
	for range 50 {
		require.Equal(t, a.Float64(), b.Float64())
	}
	assert.Equal(t, a.Hex(12), b.Hex(12))
	assert.Equal(t, a.UUID(), b.UUID())
	assert.Equal(t, a.Faker().Name(), b.Faker().Name())
}

// Drawing from one stream must not shift another.
func TestStreamsAreIndependentOfDrawOrder(t *testing.T) {
	master := New(7)
	_ = master.Stream(0).Float64()
	first := master.Stream(1).Float64()

	fresh := New(7)
	second := fresh.Stream(1).Float64()

	assert.Equal(t, first, second)
	assert.NotEqual(t, New(7).Stream(1).Float64(), New(7).Stream(2).Float64())
}

func TestDifferentSeedsDiverge(t *testing.T) {
	assert.NotEqual(t, New(1).Hex(16), New(2).Hex(16))
}

func TestBetweenIsInclusive(t *testing.T) {
	src := New(99)
	seenLo, seenHi := false, false
	for range 2000 {
		v := src.Between(3, 6)
		require.GreaterOrEqual(t, v, int64(3))
		require.LessOrEqual(t, v, int64(6))
		seenLo = seenLo || v == 3
		seenHi = seenHi || v == 6
	}
	assert.True(t, seenLo)
	assert.True(t, seenHi)
	assert.Equal(t, int64(5), src.Between(5, 5))
}

func TestOffsetStaysBelowBound(t *testing.T) {
	src := New(5)
	for range 1000 {
		off := src.Offset(3 * time.Second)
		require.Less(t, off, 3*time.Second)
		require.Equal(t, time.Duration(0), off%time.Second)
	}
	assert.Equal(t, time.Duration(0), src.Offset(500*time.Millisecond))
}

func TestSampleIsWithoutReplacement(t *testing.T) {
	src := New(11)
	for range 100 {
		idx := src.Sample(6, 6)
		seen := map[int]bool{}
		for _, i := range idx {
			require.False(t, seen[i])
			seen[i] = true
		}
	}
}

func TestHexAndMinter(t *testing.T) {
	src := New(3)
	h := src.Hex(7)
	assert.Len(t, h, 7)
	assert.Regexp(t, `^[0-9A-F]{7}$`, h)

	// A two-digit space forces collisions; the minter must still hand out unique ids.
	m := src.Minter()
	seen := map[string]bool{}
	for range 200 {
		id := m.Mint("TX-", 2)
		require.False(t, seen[id], id)
		seen[id] = true
	}
}
