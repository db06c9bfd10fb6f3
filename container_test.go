package roaring32

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainerThreshold(t *testing.T) {
	t.Run("ArrayBelowThreshold", func(t *testing.T) {
		c := newArrayContainer(0)
		for v := 0; v < arrayMaxSize-1; v++ {
			require.True(t, c.add(uint16(v)))
		}
		assert.True(t, c.isArray())
		assert.Equal(t, int32(arrayMaxSize-1), c.n)
	})

	t.Run("PromotesAtThreshold", func(t *testing.T) {
		c := newArrayContainer(0)
		for v := 0; v < arrayMaxSize; v++ {
			require.True(t, c.add(uint16(v)))
		}
		assert.False(t, c.isArray())
		assert.Equal(t, int32(arrayMaxSize), c.n)

		// Membership must survive the conversion.
		for v := 0; v < arrayMaxSize; v++ {
			assert.True(t, c.contains(uint16(v)))
		}
		assert.False(t, c.contains(uint16(arrayMaxSize)))
	})

	t.Run("DemotesBelowThreshold", func(t *testing.T) {
		c := newArrayContainer(0)
		for v := 0; v < arrayMaxSize; v++ {
			c.add(uint16(v))
		}
		require.False(t, c.isArray())

		require.True(t, c.remove(0))
		assert.True(t, c.isArray())
		assert.Equal(t, int32(arrayMaxSize-1), c.n)
		assert.False(t, c.contains(0))
		assert.True(t, c.contains(1))
	})

	t.Run("DuplicateAddAndMissingRemove", func(t *testing.T) {
		c := newArrayContainer(0)
		require.True(t, c.add(7))
		assert.False(t, c.add(7))
		assert.Equal(t, int32(1), c.n)

		assert.False(t, c.remove(8))
		require.True(t, c.remove(7))
		assert.Equal(t, int32(0), c.n)
	})
}

func TestContainerConversions(t *testing.T) {
	c := newArrayContainer(0)
	values := []uint16{0, 1, 63, 64, 65, 4095, 4096, 65535}
	for _, v := range values {
		c.add(v)
	}

	c.arrayToBitmap()
	require.False(t, c.isArray())
	assert.Equal(t, int32(len(values)), c.n)
	for _, v := range values {
		assert.True(t, c.contains(v))
	}

	c.bitmapToArray()
	require.True(t, c.isArray())
	assert.Equal(t, values, c.array)
}

func TestContainerRemoveRange(t *testing.T) {
	t.Run("Array", func(t *testing.T) {
		c := newArrayContainer(0)
		for v := 0; v < 100; v++ {
			c.add(uint16(v * 3))
		}

		removed := c.removeRange(30, 60) // multiples of 3 in [30, 60)
		assert.Equal(t, uint64(10), removed)
		assert.Equal(t, int32(90), c.n)
		assert.True(t, c.contains(27))
		assert.False(t, c.contains(30))
		assert.False(t, c.contains(57))
		assert.True(t, c.contains(60))

		assert.Zero(t, c.removeRange(30, 60))
	})

	t.Run("ArrayFullSpan", func(t *testing.T) {
		c := newArrayContainer(0)
		c.add(0)
		c.add(65535)

		assert.Equal(t, uint64(2), c.removeRange(0, maxRange))
		assert.Equal(t, int32(0), c.n)
	})

	t.Run("BitmapWordAligned", func(t *testing.T) {
		c := newBitmapContainer(0)
		for v := 0; v < 8192; v++ {
			c.add(uint16(v))
		}

		removed := c.removeRange(64, 4160) // whole words only
		assert.Equal(t, uint64(4096), removed)
		assert.Equal(t, int32(4096), c.n)
		assert.False(t, c.isArray())
		assert.True(t, c.contains(63))
		assert.False(t, c.contains(64))
		assert.False(t, c.contains(4159))
		assert.True(t, c.contains(4160))
	})

	t.Run("BitmapPartialWords", func(t *testing.T) {
		c := newBitmapContainer(0)
		for v := 0; v < 8192; v++ {
			c.add(uint16(v))
		}

		removed := c.removeRange(100, 4200)
		assert.Equal(t, uint64(4100), removed)
		assert.Equal(t, int32(8192-4100), c.n)
		assert.True(t, c.contains(99))
		assert.False(t, c.contains(100))
		assert.False(t, c.contains(4199))
		assert.True(t, c.contains(4200))

		// Dropped below the threshold: must be array form now.
		assert.True(t, c.isArray())
	})

	t.Run("BitmapRangeWithinOneWord", func(t *testing.T) {
		c := newBitmapContainer(0)
		for v := 0; v < 8192; v++ {
			c.add(uint16(v))
		}

		assert.Equal(t, uint64(2), c.removeRange(70, 72))
		assert.True(t, c.contains(69))
		assert.False(t, c.contains(70))
		assert.False(t, c.contains(71))
		assert.True(t, c.contains(72))
	})
}

func TestContainerSubsetOf(t *testing.T) {
	arrayWith := func(values ...uint16) *container {
		c := newArrayContainer(0)
		for _, v := range values {
			c.add(v)
		}
		return c
	}
	denseRange := func(lo, hi int) *container {
		c := newArrayContainer(0)
		for v := lo; v < hi; v++ {
			c.add(uint16(v))
		}
		return c
	}

	t.Run("ArrayInArray", func(t *testing.T) {
		sub := arrayWith(1, 5, 9)
		sup := arrayWith(1, 3, 5, 7, 9)
		assert.True(t, sub.subsetOf(sup))
		assert.False(t, sup.subsetOf(sub))
		assert.True(t, sub.subsetOf(sub))
		assert.False(t, arrayWith(1, 6).subsetOf(sup))
	})

	t.Run("ArrayInBitmap", func(t *testing.T) {
		sup := denseRange(0, 8192)
		require.False(t, sup.isArray())
		assert.True(t, arrayWith(0, 100, 8191).subsetOf(sup))
		assert.False(t, arrayWith(0, 8192).subsetOf(sup))
	})

	t.Run("BitmapInBitmap", func(t *testing.T) {
		sub := denseRange(1000, 8196)
		sup := denseRange(0, 16384)
		require.False(t, sub.isArray())
		require.False(t, sup.isArray())
		assert.True(t, sub.subsetOf(sup))
		assert.False(t, sup.subsetOf(sub))
	})

	t.Run("BitmapInArrayIsImpossible", func(t *testing.T) {
		// A bitmap store holds at least arrayMaxSize values, an array
		// store fewer: the cardinality check must reject immediately.
		assert.False(t, denseRange(0, 4096).subsetOf(arrayWith(1, 2, 3)))
	})

	t.Run("EmptyIsSubsetOfAnything", func(t *testing.T) {
		assert.True(t, newArrayContainer(0).subsetOf(arrayWith(1)))
		assert.True(t, newArrayContainer(0).subsetOf(denseRange(0, 5000)))
	})
}
