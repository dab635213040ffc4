package array

import (
	"github.com/apache/arrow-go/v18/arrow"
	arrowarray "github.com/apache/arrow-go/v18/arrow/array"
)

// alignedIterator realigns the chunk sequences of a struct's fields.
// Each field chunks at its own natural boundaries, so at every step the
// iterator pulls the next available slice from each field, cuts all of
// them down to the shortest available length, and carries the remainder
// of any longer slice forward to the next step. The produced batches
// therefore always contain matching row ranges from every column.
type alignedIterator struct {
	names  []string
	fields []fieldChunks
	cur    arrow.Array
	err    error
}

// fieldChunks tracks one field's iterator plus the unconsumed remainder
// of its current chunk.
type fieldChunks struct {
	it  ChunkIterator
	rem arrow.Array
}

func newAlignedIterator(names []string, iters []ChunkIterator) *alignedIterator {
	fields := make([]fieldChunks, len(iters))
	for i, it := range iters {
		fields[i] = fieldChunks{it: it}
	}
	return &alignedIterator{names: names, fields: fields}
}

func (a *alignedIterator) Next() bool {
	if a.err != nil || len(a.fields) == 0 {
		a.cur = nil
		return false
	}

	// Refill every exhausted remainder. Empty chunks are skipped so a
	// zero-length chunk cannot stall progress.
	exhausted := 0
	for i := range a.fields {
		f := &a.fields[i]
		for f.rem == nil || f.rem.Len() == 0 {
			if !f.it.Next() {
				if err := f.it.Err(); err != nil {
					a.err = err
					a.cur = nil
					return false
				}
				f.rem = nil
				exhausted++
				break
			}
			f.rem = f.it.Chunk()
		}
	}
	if exhausted == len(a.fields) {
		a.cur = nil
		return false
	}
	if exhausted > 0 {
		// Field lengths are asserted equal at construction, so one
		// sequence ending before the others means a child iterator
		// produced the wrong number of rows.
		panic("array: struct field chunk sequences exhausted unevenly")
	}

	step := a.fields[0].rem.Len()
	for _, f := range a.fields[1:] {
		if f.rem.Len() < step {
			step = f.rem.Len()
		}
	}

	cols := make([]arrow.Array, len(a.fields))
	for i := range a.fields {
		f := &a.fields[i]
		if f.rem.Len() == step {
			cols[i] = f.rem
			f.rem = nil
		} else {
			cols[i] = arrowarray.NewSlice(f.rem, 0, int64(step))
			f.rem = arrowarray.NewSlice(f.rem, int64(step), int64(f.rem.Len()))
		}
	}

	// No null bitmap at the struct level: the struct itself is always
	// fully valid.
	batch, err := arrowarray.NewStructArray(cols, a.names)
	if err != nil {
		a.err = err
		a.cur = nil
		return false
	}
	a.cur = batch
	return true
}

func (a *alignedIterator) Chunk() arrow.Array { return a.cur }

func (a *alignedIterator) Err() error { return a.err }
