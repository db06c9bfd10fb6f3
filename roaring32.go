package roaring32

import (
	"iter"
	"slices"
)

// Bitmap is a compressed set of unsigned 32-bit integers.
//
// Values are partitioned by their high 16 bits into containers of at
// most 65536 members each. A container stores its members either as a
// sorted uint16 array (sparse) or as a 65536-bit vector (dense),
// switching representation at a fixed cardinality threshold. Containers
// are kept sorted by strictly ascending unique key; that ordering is
// what every merge-join below relies on.
//
// A Bitmap is not safe for concurrent use. Readers may run in parallel
// with each other, but never with a mutation on the same instance; that
// discipline is the caller's responsibility.
type Bitmap struct {
	containers []*container
}

// New creates an empty bitmap.
func New() *Bitmap {
	return &Bitmap{}
}

// indexOf locates the container for key in the ordered container slice.
func (b *Bitmap) indexOf(key uint16) (int, bool) {
	return slices.BinarySearchFunc(b.containers, key, func(c *container, k uint16) int {
		return int(c.key) - int(k)
	})
}

// Add inserts x and reports whether it was absent. The container for
// x's high 16 bits is created on first use.
func (b *Bitmap) Add(x uint32) bool {
	key := uint16(x >> 16)
	i, ok := b.indexOf(key)
	if !ok {
		b.containers = slices.Insert(b.containers, i, newArrayContainer(key))
	}
	return b.containers[i].add(uint16(x))
}

// Remove deletes x and reports whether it was present. A container
// whose last member is removed is spliced out of the bitmap.
func (b *Bitmap) Remove(x uint32) bool {
	i, ok := b.indexOf(uint16(x >> 16))
	if !ok {
		return false
	}
	c := b.containers[i]
	if !c.remove(uint16(x)) {
		return false
	}
	if c.n == 0 {
		b.containers = slices.Delete(b.containers, i, i+1)
	}
	return true
}

// Contains reports whether x is a member.
func (b *Bitmap) Contains(x uint32) bool {
	i, ok := b.indexOf(uint16(x >> 16))
	if !ok {
		return false
	}
	return b.containers[i].contains(uint16(x))
}

// Cardinality returns the number of members. It sums the cached
// per-container counts and never rescans storage.
func (b *Bitmap) Cardinality() uint64 {
	var n uint64
	for _, c := range b.containers {
		n += uint64(c.n)
	}
	return n
}

// IsEmpty reports whether the bitmap has no members.
func (b *Bitmap) IsEmpty() bool {
	return len(b.containers) == 0
}

// Clear removes all members.
func (b *Bitmap) Clear() {
	b.containers = nil
}

// Clone returns a deep copy.
func (b *Bitmap) Clone() *Bitmap {
	out := &Bitmap{containers: make([]*container, len(b.containers))}
	for i, c := range b.containers {
		out.containers[i] = c.clone()
	}
	return out
}

// ToArray returns all members in ascending order.
func (b *Bitmap) ToArray() []uint32 {
	out := make([]uint32, 0, b.Cardinality())
	for _, c := range b.containers {
		hb := uint32(c.key) << 16
		c.each(func(low uint16) bool {
			out = append(out, hb|uint32(low))
			return true
		})
	}
	return out
}

// Iterator returns an iterator over the members in ascending order.
func (b *Bitmap) Iterator() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		for _, c := range b.containers {
			hb := uint32(c.key) << 16
			if !c.each(func(low uint16) bool { return yield(hb | uint32(low)) }) {
				return
			}
		}
	}
}

// Or replaces b with the union of b and other. Containers unique to
// either side carry over (other's are deep-copied, containers are never
// shared); containers with a common key are combined.
func (b *Bitmap) Or(other *Bitmap) *Bitmap {
	merged := make([]*container, 0, len(b.containers)+len(other.containers))
	i, j := 0, 0
	for i < len(b.containers) && j < len(other.containers) {
		ca, cb := b.containers[i], other.containers[j]
		switch {
		case ca.key < cb.key:
			merged = append(merged, ca)
			i++
		case ca.key > cb.key:
			merged = append(merged, cb.clone())
			j++
		default:
			merged = append(merged, union(ca, cb))
			i, j = i+1, j+1
		}
	}
	merged = append(merged, b.containers[i:]...)
	for ; j < len(other.containers); j++ {
		merged = append(merged, other.containers[j].clone())
	}
	b.containers = merged
	return b
}

// And replaces b with the intersection of b and other. Containers whose
// key exists on only one side contribute nothing; combined containers
// that come out empty are dropped.
func (b *Bitmap) And(other *Bitmap) *Bitmap {
	merged := b.containers[:0]
	i, j := 0, 0
	for i < len(b.containers) && j < len(other.containers) {
		ca, cb := b.containers[i], other.containers[j]
		switch {
		case ca.key < cb.key:
			i++
		case ca.key > cb.key:
			j++
		default:
			if out := intersect(ca, cb); out.n > 0 {
				merged = append(merged, out)
			}
			i, j = i+1, j+1
		}
	}
	clearTail(b.containers[len(merged):])
	b.containers = merged
	return b
}

// AndNot replaces b with the difference b − other. Containers unique to
// b carry over, containers unique to other are ignored, and combined
// containers that come out empty are dropped.
func (b *Bitmap) AndNot(other *Bitmap) *Bitmap {
	merged := b.containers[:0]
	i, j := 0, 0
	for i < len(b.containers) && j < len(other.containers) {
		ca, cb := b.containers[i], other.containers[j]
		switch {
		case ca.key < cb.key:
			merged = append(merged, ca)
			i++
		case ca.key > cb.key:
			j++
		default:
			if out := difference(ca, cb); out.n > 0 {
				merged = append(merged, out)
			}
			i, j = i+1, j+1
		}
	}
	merged = append(merged, b.containers[i:]...)
	clearTail(b.containers[len(merged):])
	b.containers = merged
	return b
}

// Xor replaces b with the symmetric difference of b and other.
// Containers unique to either side carry over; combined containers that
// come out empty are dropped.
func (b *Bitmap) Xor(other *Bitmap) *Bitmap {
	merged := make([]*container, 0, len(b.containers)+len(other.containers))
	i, j := 0, 0
	for i < len(b.containers) && j < len(other.containers) {
		ca, cb := b.containers[i], other.containers[j]
		switch {
		case ca.key < cb.key:
			merged = append(merged, ca)
			i++
		case ca.key > cb.key:
			merged = append(merged, cb.clone())
			j++
		default:
			if out := symmetricDifference(ca, cb); out.n > 0 {
				merged = append(merged, out)
			}
			i, j = i+1, j+1
		}
	}
	merged = append(merged, b.containers[i:]...)
	for ; j < len(other.containers); j++ {
		merged = append(merged, other.containers[j].clone())
	}
	b.containers = merged
	return b
}

// clearTail nils out slots left behind by an in-place merge so the
// dropped containers become collectable.
func clearTail(tail []*container) {
	for i := range tail {
		tail[i] = nil
	}
}

// Or returns the union of a and b without mutating either input.
func Or(a, b *Bitmap) *Bitmap {
	return a.Clone().Or(b)
}

// And returns the intersection of a and b without mutating either
// input.
func And(a, b *Bitmap) *Bitmap {
	return a.Clone().And(b)
}

// AndNot returns the difference a − b without mutating either input.
func AndNot(a, b *Bitmap) *Bitmap {
	return a.Clone().AndNot(b)
}

// Xor returns the symmetric difference of a and b without mutating
// either input.
func Xor(a, b *Bitmap) *Bitmap {
	return a.Clone().Xor(b)
}

// IsSubset reports whether every member of b is also a member of other.
// The container sequences are merge-joined by key; a key present in b
// but absent from other fails immediately, and the scan short-circuits
// on the first failing container.
func (b *Bitmap) IsSubset(other *Bitmap) bool {
	j := 0
	for _, c := range b.containers {
		for j < len(other.containers) && other.containers[j].key < c.key {
			j++
		}
		if j >= len(other.containers) || other.containers[j].key != c.key {
			return false
		}
		if !c.subsetOf(other.containers[j]) {
			return false
		}
		j++
	}
	return true
}

// RemoveRange removes all members in [lo, hi) and returns how many were
// removed. Containers whose key range lies entirely inside [lo, hi) are
// dropped wholesale without touching their storage; the at most two
// containers straddling a boundary get a per-container range clear.
// Repeating the call removes nothing further.
func (b *Bitmap) RemoveRange(lo, hi uint32) uint64 {
	if lo >= hi {
		return 0
	}
	loKey, hiKey := uint16(lo>>16), uint16((hi-1)>>16)

	var removed uint64
	kept := b.containers[:0]
	for _, c := range b.containers {
		if c.key < loKey || c.key > hiKey {
			kept = append(kept, c)
			continue
		}
		start, end := 0, maxRange
		if c.key == loKey {
			start = int(lo & 0xffff)
		}
		if c.key == hiKey {
			end = int((hi-1)&0xffff) + 1
		}
		if start == 0 && end == maxRange {
			removed += uint64(c.n)
			continue
		}
		removed += c.removeRange(start, end)
		if c.n > 0 {
			kept = append(kept, c)
		}
	}
	clearTail(b.containers[len(kept):])
	b.containers = kept
	return removed
}
