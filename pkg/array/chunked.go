package array

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	arrowarray "github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/XinyuZeng/vortex/pkg/dtype"
	"github.com/XinyuZeng/vortex/pkg/scalar"
)

// Chunked is an ordered list of same-typed chunks presented as one
// logical array. Its natural IterArrow boundaries are the chunk
// boundaries, which is what makes differently-chunked struct fields
// interesting to realign.
type Chunked struct {
	dt     dtype.DType
	chunks []Array
	length int
}

// NewChunked builds a chunked array. Every chunk must carry the declared
// logical type; a mismatch is a construction bug and panics.
func NewChunked(dt dtype.DType, chunks []Array) *Chunked {
	length := 0
	for i, c := range chunks {
		if !c.DType().Equal(dt) {
			panic(fmt.Sprintf("array: chunk %d has dtype %s, want %s", i, c.DType(), dt))
		}
		length += c.Len()
	}
	return &Chunked{dt: dt, chunks: append([]Array(nil), chunks...), length: length}
}

// NumChunks returns the number of chunks.
func (c *Chunked) NumChunks() int { return len(c.chunks) }

// Chunk returns chunk i.
func (c *Chunked) Chunk(i int) Array { return c.chunks[i] }

func (c *Chunked) Len() int { return c.length }

func (c *Chunked) IsEmpty() bool { return c.length == 0 }

func (c *Chunked) DType() dtype.DType { return c.dt }

// locate maps a logical index to (chunk, offset within chunk).
func (c *Chunked) locate(index int) (int, int) {
	for i, ch := range c.chunks {
		if index < ch.Len() {
			return i, index
		}
		index -= ch.Len()
	}
	panic(fmt.Sprintf("array: index %d out of range for chunked array of length %d", index, c.length))
}

func (c *Chunked) ScalarAt(index int) (scalar.Scalar, error) {
	checkIndexBounds(c.length, index)
	i, off := c.locate(index)
	return c.chunks[i].ScalarAt(off)
}

func (c *Chunked) IterArrow() ChunkIterator {
	return &chunkedIter{chunks: c.chunks}
}

func (c *Chunked) Slice(start, stop int) (Array, error) {
	if err := CheckSliceBounds(c.length, start, stop); err != nil {
		return nil, err
	}
	var out []Array
	offset := 0
	for _, ch := range c.chunks {
		lo, hi := start-offset, stop-offset
		offset += ch.Len()
		if hi <= 0 || lo >= ch.Len() {
			continue
		}
		if lo < 0 {
			lo = 0
		}
		if hi > ch.Len() {
			hi = ch.Len()
		}
		sliced, err := ch.Slice(lo, hi)
		if err != nil {
			return nil, err
		}
		out = append(out, sliced)
	}
	return NewChunked(c.dt, out), nil
}

// IntoCanonical concatenates the canonical form of every chunk into one
// contiguous array.
func (c *Chunked) IntoCanonical() (Canonical, error) {
	var parts []arrow.Array
	it := c.IterArrow()
	for it.Next() {
		parts = append(parts, it.Chunk())
	}
	if err := it.Err(); err != nil {
		return Canonical{}, err
	}
	if len(parts) == 0 {
		parts = append(parts, arrowarray.NewBuilder(memory.DefaultAllocator, c.dt.Arrow()).NewArray())
	}
	merged, err := arrowarray.Concatenate(parts, memory.DefaultAllocator)
	if err != nil {
		return Canonical{}, err
	}
	arr, err := FromArrow(c.dt, merged)
	if err != nil {
		return Canonical{}, err
	}
	return arr.IntoCanonical()
}

func (c *Chunked) IsValid(index int) bool {
	checkIndexBounds(c.length, index)
	i, off := c.locate(index)
	return c.chunks[i].IsValid(off)
}

func (c *Chunked) LogicalValidity() Validity {
	mask := make([]bool, 0, c.length)
	for _, ch := range c.chunks {
		v := ch.LogicalValidity()
		for i := 0; i < v.Len(); i++ {
			mask = append(mask, v.IsValid(i))
		}
	}
	return ValidityFromMask(mask)
}

func (c *Chunked) NBytes() int {
	n := 0
	for _, ch := range c.chunks {
		n += ch.NBytes()
	}
	return n
}

// chunkedIter chains the chunk sequences of each member chunk in order.
type chunkedIter struct {
	chunks []Array
	inner  ChunkIterator
	cur    arrow.Array
	err    error
}

func (it *chunkedIter) Next() bool {
	for {
		if it.err != nil {
			return false
		}
		if it.inner == nil {
			if len(it.chunks) == 0 {
				it.cur = nil
				return false
			}
			it.inner = it.chunks[0].IterArrow()
			it.chunks = it.chunks[1:]
		}
		if it.inner.Next() {
			it.cur = it.inner.Chunk()
			return true
		}
		if err := it.inner.Err(); err != nil {
			it.err = err
			it.cur = nil
			return false
		}
		it.inner = nil
	}
}

func (it *chunkedIter) Chunk() arrow.Array { return it.cur }

func (it *chunkedIter) Err() error { return it.err }
