package roaring32

import (
	"math/bits"
	"slices"
)

const (
	// arrayMaxSize is the conversion threshold between the two container
	// representations. A container holding fewer than arrayMaxSize values
	// is smaller as a sorted uint16 array; at or above it the fixed-size
	// bitmap wins. The serialized format relies on the same threshold to
	// pick the on-disk layout, so the in-memory form must track it
	// without hysteresis.
	arrayMaxSize = 4096

	// bitmapN is the number of 64-bit words in a bitmap container
	// (65536 bits, one per possible low value).
	bitmapN = 1 << 16 / 64

	// maxRange is the exclusive upper bound of a container's value space.
	maxRange = 1 << 16
)

// container holds the low 16 bits of every member that shares one high
// 16-bit key. Exactly one of array and bitmap is non-nil; array is
// sorted, unique and ascending, bitmap is exactly bitmapN words.
//
// n caches the cardinality and is updated at every mutation site,
// including representation conversions. It is never recomputed by
// scanning.
type container struct {
	key    uint16
	n      int32
	array  []uint16
	bitmap []uint64
}

func newArrayContainer(key uint16) *container {
	return &container{key: key, array: make([]uint16, 0, 8)}
}

func newBitmapContainer(key uint16) *container {
	return &container{key: key, bitmap: make([]uint64, bitmapN)}
}

func (c *container) isArray() bool { return c.bitmap == nil }

// clone returns a deep copy. Containers are never shared between
// bitmaps, so every cross-bitmap transfer goes through here.
func (c *container) clone() *container {
	out := &container{key: c.key, n: c.n}
	if c.isArray() {
		out.array = slices.Clone(c.array)
	} else {
		out.bitmap = slices.Clone(c.bitmap)
	}
	return out
}

// add inserts a low value and reports whether it was absent. The store
// is promoted to bitmap form when the cardinality reaches arrayMaxSize.
func (c *container) add(v uint16) bool {
	if c.isArray() {
		i, ok := slices.BinarySearch(c.array, v)
		if ok {
			return false
		}
		c.array = slices.Insert(c.array, i, v)
		c.n++
		if c.n >= arrayMaxSize {
			c.arrayToBitmap()
		}
		return true
	}
	if c.bitmap[v>>6]&(1<<(v&63)) != 0 {
		return false
	}
	c.bitmap[v>>6] |= 1 << (v & 63)
	c.n++
	return true
}

// remove deletes a low value and reports whether it was present. A
// bitmap store is demoted back to array form as soon as the cardinality
// drops below arrayMaxSize.
func (c *container) remove(v uint16) bool {
	if c.isArray() {
		i, ok := slices.BinarySearch(c.array, v)
		if !ok {
			return false
		}
		c.array = slices.Delete(c.array, i, i+1)
		c.n--
		return true
	}
	if c.bitmap[v>>6]&(1<<(v&63)) == 0 {
		return false
	}
	c.bitmap[v>>6] &^= 1 << (v & 63)
	c.n--
	if c.n < arrayMaxSize {
		c.bitmapToArray()
	}
	return true
}

func (c *container) contains(v uint16) bool {
	if c.isArray() {
		_, ok := slices.BinarySearch(c.array, v)
		return ok
	}
	return c.bitmap[v>>6]&(1<<(v&63)) != 0
}

// arrayToBitmap swaps the store to bitmap form, preserving membership
// and the cached cardinality.
func (c *container) arrayToBitmap() {
	bitmap := make([]uint64, bitmapN)
	for _, v := range c.array {
		bitmap[v>>6] |= 1 << (v & 63)
	}
	c.array, c.bitmap = nil, bitmap
}

// bitmapToArray swaps the store to array form, preserving membership
// and the cached cardinality.
func (c *container) bitmapToArray() {
	array := make([]uint16, 0, c.n)
	for i, word := range c.bitmap {
		for word != 0 {
			array = append(array, uint16(i<<6+bits.TrailingZeros64(word)))
			word &= word - 1
		}
	}
	c.array, c.bitmap = array, nil
}

// optimize re-checks the threshold after a bulk operation has built or
// rewritten the store, converting if the active form is no longer the
// right one for the current cardinality.
func (c *container) optimize() {
	if c.isArray() {
		if c.n >= arrayMaxSize {
			c.arrayToBitmap()
		}
	} else if c.n < arrayMaxSize {
		c.bitmapToArray()
	}
}

// subsetOf reports whether every value in c is also in o. Keys are not
// compared; callers pair containers by key first.
func (c *container) subsetOf(o *container) bool {
	if c.n > o.n {
		return false
	}
	switch {
	case c.isArray() && o.isArray():
		// Merge scan, short-circuiting on the first value of c that is
		// missing from o.
		j := 0
		for _, v := range c.array {
			for j < len(o.array) && o.array[j] < v {
				j++
			}
			if j >= len(o.array) || o.array[j] != v {
				return false
			}
			j++
		}
		return true
	case c.isArray():
		for _, v := range c.array {
			if o.bitmap[v>>6]&(1<<(v&63)) == 0 {
				return false
			}
		}
		return true
	case !o.isArray():
		for i, word := range c.bitmap {
			if word&^o.bitmap[i] != 0 {
				return false
			}
		}
		return true
	default:
		// Bitmap inside array is impossible: the cardinality check above
		// already rejected it (bitmap n >= arrayMaxSize > array n).
		return false
	}
}

// removeRange clears all values in [lo, hi) where 0 <= lo < hi <=
// maxRange, and returns the number removed. The cached cardinality is
// decremented by exactly that count.
func (c *container) removeRange(lo, hi int) uint64 {
	if c.isArray() {
		i, _ := slices.BinarySearch(c.array, uint16(lo))
		j := len(c.array)
		if hi < maxRange {
			j, _ = slices.BinarySearch(c.array, uint16(hi))
		}
		removed := j - i
		if removed > 0 {
			c.array = slices.Delete(c.array, i, j)
			c.n -= int32(removed)
		}
		return uint64(removed)
	}

	var removed int32
	for w := lo >> 6; w <= (hi-1)>>6; w++ {
		mask := ^uint64(0)
		if base := w << 6; base < lo {
			mask <<= lo - base
		}
		if end := w<<6 + 64; end > hi {
			mask &= ^uint64(0) >> (end - hi)
		}
		removed += int32(bits.OnesCount64(c.bitmap[w] & mask))
		c.bitmap[w] &^= mask
	}
	c.n -= removed
	if c.n < arrayMaxSize {
		c.bitmapToArray()
	}
	return uint64(removed)
}

// each yields the container's values in ascending order, stopping early
// if yield returns false. It reports whether iteration ran to the end.
func (c *container) each(yield func(uint16) bool) bool {
	if c.isArray() {
		for _, v := range c.array {
			if !yield(v) {
				return false
			}
		}
		return true
	}
	for i, word := range c.bitmap {
		for word != 0 {
			if !yield(uint16(i<<6 + bits.TrailingZeros64(word))) {
				return false
			}
			word &= word - 1
		}
	}
	return true
}
