// Package array defines the capability interface every physical array
// encoding implements, plus the canonical (Arrow-backed) encodings:
// primitive, chunked, and struct-of-columns. Compressed encodings live
// in subpackages of pkg/encoding and satisfy the same interface, so
// consumers never branch on the physical representation.
//
// Arrays are immutable after construction. Slicing and decoding produce
// new arrays; nothing is mutated in place, which makes every array safe
// for concurrent readers.
package array

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/XinyuZeng/vortex/pkg/dtype"
	verrors "github.com/XinyuZeng/vortex/pkg/errors"
	"github.com/XinyuZeng/vortex/pkg/scalar"
)

// Array is the capability contract shared by all physical encodings.
type Array interface {
	// Len returns the element count.
	Len() int
	// IsEmpty reports whether Len() == 0.
	IsEmpty() bool
	// DType returns the logical type, reconstructed from
	// encoding-specific state.
	DType() dtype.DType
	// ScalarAt decodes exactly one logical value. It is correct on
	// compressed encodings without decoding the rest of the array.
	// The index must satisfy 0 <= index < Len(); an out-of-range index
	// is a caller bug and panics.
	ScalarAt(index int) (scalar.Scalar, error)
	// IterArrow returns a lazy, finite, single-pass sequence of
	// canonical Arrow chunks covering the whole array.
	IterArrow() ChunkIterator
	// Slice returns a new array over the half-open range [start, stop).
	// It fails with a range error when start > stop or stop > Len().
	// The result is an independent value; the receiver may be dropped.
	Slice(start, stop int) (Array, error)
	// IntoCanonical fully decompresses into a directly addressable
	// representation.
	IntoCanonical() (Canonical, error)
	// IsValid reports whether the value at index is non-null.
	IsValid(index int) bool
	// LogicalValidity summarizes validity across the whole array.
	LogicalValidity() Validity
	// NBytes estimates the in-memory footprint of the encoded data.
	NBytes() int
}

// ChunkIterator walks a sequence of Arrow chunks, scanner style:
//
//	it := arr.IterArrow()
//	for it.Next() {
//		use(it.Chunk())
//	}
//	if err := it.Err(); err != nil { ... }
type ChunkIterator interface {
	Next() bool
	Chunk() arrow.Array
	Err() error
}

// CheckSliceBounds validates a half-open [start, stop) range against an
// array length.
func CheckSliceBounds(length, start, stop int) error {
	if start < 0 || start > stop || stop > length {
		return verrors.Newf(verrors.ErrorTypeRange,
			"slice bounds [%d, %d) out of range for array of length %d", start, stop, length)
	}
	return nil
}

func checkIndexBounds(length, index int) {
	if index < 0 || index >= length {
		panic(fmt.Sprintf("array: index %d out of range for array of length %d", index, length))
	}
}

// chunkSeq iterates a fixed, already materialized list of chunks.
type chunkSeq struct {
	chunks []arrow.Array
	cur    arrow.Array
}

// NewChunkSeq returns an iterator over an in-memory list of chunks.
func NewChunkSeq(chunks ...arrow.Array) ChunkIterator {
	return &chunkSeq{chunks: chunks}
}

func (it *chunkSeq) Next() bool {
	if len(it.chunks) == 0 {
		it.cur = nil
		return false
	}
	it.cur, it.chunks = it.chunks[0], it.chunks[1:]
	return true
}

func (it *chunkSeq) Chunk() arrow.Array { return it.cur }

func (it *chunkSeq) Err() error { return nil }

// deferredChunks defers materialization until the first Next call, so
// compressed encodings stay compressed until the iterator is actually
// driven.
type deferredChunks struct {
	load  func() ([]arrow.Array, error)
	inner ChunkIterator
	err   error
}

// NewDeferredChunks returns an iterator whose chunks are produced by
// load on first use. A load failure surfaces through Err.
func NewDeferredChunks(load func() ([]arrow.Array, error)) ChunkIterator {
	return &deferredChunks{load: load}
}

func (it *deferredChunks) Next() bool {
	if it.err != nil {
		return false
	}
	if it.inner == nil {
		chunks, err := it.load()
		if err != nil {
			it.err = err
			return false
		}
		it.inner = NewChunkSeq(chunks...)
	}
	return it.inner.Next()
}

func (it *deferredChunks) Chunk() arrow.Array {
	if it.inner == nil {
		return nil
	}
	return it.inner.Chunk()
}

func (it *deferredChunks) Err() error { return it.err }
