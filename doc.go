// Package vortex provides a compressed columnar array toolkit built on
// Apache Arrow: logical arrays with random access and slicing,
// lightweight compressed encodings that decode lazily, and a streaming
// message protocol for moving arrays between processes.
//
// # Architecture
//
// Every array, compressed or not, satisfies the same capability
// surface: length, logical type, per-element scalar access, zero-copy
// slicing, chunked Arrow iteration, validity, and decompression into a
// canonical in-memory form. Callers operate on arrays uniformly and
// pay decompression cost only when an operation requires materialized
// values.
//
// # Key Packages
//
//	pkg/dtype               - logical types: primitive width classes and struct composition
//	pkg/scalar              - single-element values with null tracking
//	pkg/array               - the Array capability interface; primitive, struct, and chunked arrays
//	pkg/encoding/fastlanes  - frame-of-reference compressed integers
//	pkg/encoding/roaring    - bitmap-compressed unsigned integers
//	pkg/ipc                 - length-framed message streams with one-message lookahead
//	pkg/errors              - structured error handling
//	pkg/logger              - structured logging
//	pkg/metrics             - decode and transport metrics
//	pkg/config              - YAML configuration with ${VAR_NAME} substitution
//
// # Quick Start
//
// Compress a column and read it back element by element:
//
//	values := array.PrimitiveFromInt64([]int64{100, 108, 116, 132}, nil)
//	compressed, err := fastlanes.Encode(values, scalar.Int64(100), 2)
//	if err != nil {
//	    return err
//	}
//	s, _ := compressed.ScalarAt(2) // scalar.Int64(116), no full decode
//	canonical, err := compressed.IntoCanonical()
//
// Stream arrays over any byte transport:
//
//	w := ipc.NewMessageWriter(conn)
//	w.WriteMessage(ctx, header)
//	w.WriteBuffers(ctx, body...)
//	w.Close()
//
//	r, err := ipc.NewMessageReader(ctx, conn)
//	for r.Peek() != nil {
//	    msg, err := r.Next(ctx)
//	    ...
//	}
package vortex
