// Package roaring32 implements compressed bitmaps (roaring bitmaps)
// over unsigned 32-bit integers.
//
// A roaring bitmap represents large, possibly sparse integer sets
// compactly and makes membership, cardinality and set algebra fast. It
// is the building block behind inverted-index filtering, analytics
// engines and database query execution, where unions and intersections
// over millions of IDs have to be cheap.
//
// # Quick Start
//
//	b := roaring32.New()
//	b.Add(1)
//	b.Add(2)
//	b.Add(1_000_000)
//
//	b.Contains(2)     // true
//	b.Cardinality()   // 3
//
//	other := roaring32.New()
//	other.Add(2)
//	both := roaring32.And(b, other) // {2}
//	_ = both
//
// # Serialization
//
// WriteTo and NewFromReader speak the interoperable roaring format, so
// bitmaps round-trip byte-for-byte with the official C/C++, Java, Go
// and Rust implementations. Run-length containers are not supported;
// streams that use them are detected and rejected with ErrRunContainer.
//
// # Concurrency
//
// A Bitmap carries no internal synchronization. Read operations may run
// concurrently with each other, but never with a mutation of the same
// instance.
//
// The snapshot subpackage adds a checksummed, optionally compressed
// snapshot file format on top of the portable serialization.
package roaring32
