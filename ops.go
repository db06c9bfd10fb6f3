package roaring32

import "math/bits"

// Pairwise container combinators. Each operation dispatches on the
// store pairing and runs a kernel specialized for it: sorted two-pointer
// merges for array/array, word-wise boolean ops for bitmap/bitmap, and
// bit probing for the mixed pairs. A mixed pair never materializes a
// third form; the array side is walked against the bitmap side
// directly.
//
// Kernels produce a fresh container with the left key and an exact
// cached cardinality, already converted to the correct store form. A
// result with n == 0 tells the caller to drop the container.

func union(a, b *container) *container {
	switch {
	case a.isArray() && b.isArray():
		return unionArrayArray(a, b)
	case a.isArray():
		return unionArrayBitmap(a, b)
	case b.isArray():
		out := unionArrayBitmap(b, a)
		out.key = a.key
		return out
	default:
		return unionBitmapBitmap(a, b)
	}
}

func unionArrayArray(a, b *container) *container {
	out := &container{key: a.key, array: make([]uint16, 0, len(a.array)+len(b.array))}
	i, j := 0, 0
	for i < len(a.array) && j < len(b.array) {
		va, vb := a.array[i], b.array[j]
		switch {
		case va < vb:
			out.array = append(out.array, va)
			i++
		case va > vb:
			out.array = append(out.array, vb)
			j++
		default:
			out.array = append(out.array, va)
			i, j = i+1, j+1
		}
	}
	out.array = append(out.array, a.array[i:]...)
	out.array = append(out.array, b.array[j:]...)
	out.n = int32(len(out.array))
	out.optimize()
	return out
}

func unionArrayBitmap(a, b *container) *container {
	out := b.clone()
	out.key = a.key
	for _, v := range a.array {
		if out.bitmap[v>>6]&(1<<(v&63)) == 0 {
			out.bitmap[v>>6] |= 1 << (v & 63)
			out.n++
		}
	}
	return out
}

func unionBitmapBitmap(a, b *container) *container {
	out := &container{key: a.key, bitmap: make([]uint64, bitmapN)}
	var n int32
	for i := range out.bitmap {
		w := a.bitmap[i] | b.bitmap[i]
		out.bitmap[i] = w
		n += int32(bits.OnesCount64(w))
	}
	out.n = n
	return out
}

func intersect(a, b *container) *container {
	switch {
	case a.isArray() && b.isArray():
		return intersectArrayArray(a, b)
	case a.isArray():
		return intersectArrayBitmap(a, b)
	case b.isArray():
		out := intersectArrayBitmap(b, a)
		out.key = a.key
		return out
	default:
		return intersectBitmapBitmap(a, b)
	}
}

func intersectArrayArray(a, b *container) *container {
	out := &container{key: a.key, array: []uint16{}}
	for i, j := 0, 0; i < len(a.array) && j < len(b.array); {
		va, vb := a.array[i], b.array[j]
		switch {
		case va < vb:
			i++
		case va > vb:
			j++
		default:
			out.array = append(out.array, va)
			i, j = i+1, j+1
		}
	}
	out.n = int32(len(out.array))
	return out
}

func intersectArrayBitmap(a, b *container) *container {
	out := &container{key: a.key, array: []uint16{}}
	for _, v := range a.array {
		if b.bitmap[v>>6]&(1<<(v&63)) != 0 {
			out.array = append(out.array, v)
		}
	}
	out.n = int32(len(out.array))
	return out
}

func intersectBitmapBitmap(a, b *container) *container {
	out := &container{key: a.key, bitmap: make([]uint64, bitmapN)}
	var n int32
	for i := range out.bitmap {
		w := a.bitmap[i] & b.bitmap[i]
		out.bitmap[i] = w
		n += int32(bits.OnesCount64(w))
	}
	out.n = n
	out.optimize()
	return out
}

func difference(a, b *container) *container {
	switch {
	case a.isArray() && b.isArray():
		return differenceArrayArray(a, b)
	case a.isArray():
		return differenceArrayBitmap(a, b)
	case b.isArray():
		return differenceBitmapArray(a, b)
	default:
		return differenceBitmapBitmap(a, b)
	}
}

func differenceArrayArray(a, b *container) *container {
	out := &container{key: a.key, array: []uint16{}}
	i, j := 0, 0
	for i < len(a.array) && j < len(b.array) {
		va, vb := a.array[i], b.array[j]
		switch {
		case va < vb:
			out.array = append(out.array, va)
			i++
		case va > vb:
			j++
		default:
			i, j = i+1, j+1
		}
	}
	out.array = append(out.array, a.array[i:]...)
	out.n = int32(len(out.array))
	return out
}

func differenceArrayBitmap(a, b *container) *container {
	out := &container{key: a.key, array: []uint16{}}
	for _, v := range a.array {
		if b.bitmap[v>>6]&(1<<(v&63)) == 0 {
			out.array = append(out.array, v)
		}
	}
	out.n = int32(len(out.array))
	return out
}

func differenceBitmapArray(a, b *container) *container {
	out := a.clone()
	for _, v := range b.array {
		if out.bitmap[v>>6]&(1<<(v&63)) != 0 {
			out.bitmap[v>>6] &^= 1 << (v & 63)
			out.n--
		}
	}
	out.optimize()
	return out
}

func differenceBitmapBitmap(a, b *container) *container {
	out := &container{key: a.key, bitmap: make([]uint64, bitmapN)}
	var n int32
	for i := range out.bitmap {
		w := a.bitmap[i] &^ b.bitmap[i]
		out.bitmap[i] = w
		n += int32(bits.OnesCount64(w))
	}
	out.n = n
	out.optimize()
	return out
}

func symmetricDifference(a, b *container) *container {
	switch {
	case a.isArray() && b.isArray():
		return xorArrayArray(a, b)
	case a.isArray():
		return xorArrayBitmap(a, b)
	case b.isArray():
		out := xorArrayBitmap(b, a)
		out.key = a.key
		return out
	default:
		return xorBitmapBitmap(a, b)
	}
}

func xorArrayArray(a, b *container) *container {
	out := &container{key: a.key, array: []uint16{}}
	i, j := 0, 0
	for i < len(a.array) && j < len(b.array) {
		va, vb := a.array[i], b.array[j]
		switch {
		case va < vb:
			out.array = append(out.array, va)
			i++
		case va > vb:
			out.array = append(out.array, vb)
			j++
		default:
			i, j = i+1, j+1
		}
	}
	out.array = append(out.array, a.array[i:]...)
	out.array = append(out.array, b.array[j:]...)
	out.n = int32(len(out.array))
	out.optimize()
	return out
}

func xorArrayBitmap(a, b *container) *container {
	out := b.clone()
	out.key = a.key
	for _, v := range a.array {
		if out.bitmap[v>>6]&(1<<(v&63)) != 0 {
			out.bitmap[v>>6] &^= 1 << (v & 63)
			out.n--
		} else {
			out.bitmap[v>>6] |= 1 << (v & 63)
			out.n++
		}
	}
	out.optimize()
	return out
}

func xorBitmapBitmap(a, b *container) *container {
	out := &container{key: a.key, bitmap: make([]uint64, bitmapN)}
	var n int32
	for i := range out.bitmap {
		w := a.bitmap[i] ^ b.bitmap[i]
		out.bitmap[i] = w
		n += int32(bits.OnesCount64(w))
	}
	out.n = n
	out.optimize()
	return out
}
