// Package snapshot persists roaring bitmaps as self-describing
// snapshot files.
//
// A snapshot wraps the portable roaring serialization in a small
// header carrying a magic number, a format version, the compression
// codec and a CRC32 checksum of the stored payload. Loading verifies
// all of them before a bitmap is reconstructed, so storage corruption
// is detected instead of silently decoded.
//
// Snapshots are a stateless codec convenience. They provide no
// durability guarantees beyond the atomic file replacement done by
// SaveFile, and no concurrency control.
package snapshot
