package roaring32

import "golang.org/x/sync/errgroup"

// FastOr returns the union of any number of bitmaps without mutating
// the inputs. With fewer than two inputs it degenerates to an empty
// bitmap or a clone.
func FastOr(bitmaps ...*Bitmap) *Bitmap {
	switch len(bitmaps) {
	case 0:
		return New()
	case 1:
		return bitmaps[0].Clone()
	}
	out := Or(bitmaps[0], bitmaps[1])
	for _, b := range bitmaps[2:] {
		out.Or(b)
	}
	return out
}

// ParOr returns the union of any number of bitmaps, computing partial
// unions on up to parallelism goroutines and folding the partials.
// parallelism <= 1, or too few inputs to split, falls back to FastOr.
// The inputs are not mutated and must not be mutated concurrently.
func ParOr(parallelism int, bitmaps ...*Bitmap) *Bitmap {
	if parallelism <= 1 || len(bitmaps) <= 2 {
		return FastOr(bitmaps...)
	}

	groups := parallelism
	if groups > len(bitmaps)/2 {
		groups = len(bitmaps) / 2
	}
	size := (len(bitmaps) + groups - 1) / groups

	var chunks [][]*Bitmap
	for lo := 0; lo < len(bitmaps); lo += size {
		chunks = append(chunks, bitmaps[lo:min(lo+size, len(bitmaps))])
	}

	partials := make([]*Bitmap, len(chunks))
	g := new(errgroup.Group)
	g.SetLimit(parallelism)
	for i, chunk := range chunks {
		g.Go(func() error {
			partials[i] = FastOr(chunk...)
			return nil
		})
	}
	// Workers never fail; Wait is only the join point.
	_ = g.Wait()

	return FastOr(partials...)
}
