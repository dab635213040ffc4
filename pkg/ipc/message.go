// Package ipc implements the streaming message protocol: a
// length-framed channel of self-describing headers, each followed by
// zero or more raw body buffers, layered over a byte-stream transport.
//
// Framing is a 4-byte little-endian length prefix followed by exactly
// that many bytes of header payload. The all-ones length 0xFFFFFFFF is
// the end-of-stream sentinel: no payload follows and no further
// messages exist. Body buffers follow their header as raw bytes whose
// sizes are declared in the header's buffer table.
package ipc

import (
	"github.com/goccy/go-json"

	"github.com/XinyuZeng/vortex/pkg/dtype"
	verrors "github.com/XinyuZeng/vortex/pkg/errors"
)

// CurrentVersion is the protocol version stamped into every header.
const CurrentVersion = 1

// endOfStream is the sentinel length prefix.
const endOfStream = ^uint32(0)

// lenPrefixSize is the size of the length prefix in bytes.
const lenPrefixSize = 4

// MessageKind discriminates header payloads.
type MessageKind string

const (
	// KindSchema announces the logical type of the arrays that follow.
	KindSchema MessageKind = "schema"
	// KindArray describes one array: its encoding, row count, and the
	// body buffers carrying its storage.
	KindArray MessageKind = "array"
)

// BufferDescriptor declares one body buffer.
type BufferDescriptor struct {
	// Length is the buffer's size on the wire, after any compression.
	Length uint64 `json:"length"`
	// UncompressedLength is the original size when the body is
	// compressed; zero otherwise.
	UncompressedLength uint64 `json:"uncompressed_length,omitempty"`
}

// Message is a self-describing header record.
type Message struct {
	Version  uint32             `json:"version"`
	Kind     MessageKind        `json:"kind"`
	Encoding string             `json:"encoding,omitempty"`
	DType    *WireDType         `json:"dtype,omitempty"`
	Length   int                `json:"length"`
	Buffers  []BufferDescriptor `json:"buffers,omitempty"`
	// Compression names the codec applied to the body buffers.
	Compression Compression `json:"compression,omitempty"`
	// Metadata carries encoding-specific parameters, e.g. the
	// reference and shift of a frame-of-reference array.
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// BodyLength returns the total wire size of the declared body buffers.
func (m *Message) BodyLength() uint64 {
	var n uint64
	for _, b := range m.Buffers {
		n += b.Length
	}
	return n
}

// Validate checks that the header is well-formed. A failed validation
// is a protocol error: once a header cannot be trusted, neither can the
// channel's byte alignment.
func (m *Message) Validate() error {
	if m.Version != CurrentVersion {
		return verrors.Newf(verrors.ErrorTypeProtocol, "unsupported message version %d", m.Version)
	}
	switch m.Kind {
	case KindSchema, KindArray:
	default:
		return verrors.Newf(verrors.ErrorTypeProtocol, "unknown message kind %q", m.Kind)
	}
	if m.Length < 0 {
		return verrors.Newf(verrors.ErrorTypeProtocol, "negative message length %d", m.Length)
	}
	if !m.Compression.valid() {
		return verrors.Newf(verrors.ErrorTypeProtocol, "unknown compression codec %q", m.Compression)
	}
	if m.DType != nil {
		if _, err := m.DType.DType(); err != nil {
			return err
		}
	}
	return nil
}

// EncodeMessage serializes a header to its wire payload.
func EncodeMessage(m *Message) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, verrors.Wrap(err, verrors.ErrorTypeInternal, "encoding message header")
	}
	return data, nil
}

// DecodeMessage parses and validates a header payload.
func DecodeMessage(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, verrors.Wrap(err, verrors.ErrorTypeProtocol, "malformed message header")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// WireDType is the serialized form of a logical type.
type WireDType struct {
	Kind     string       `json:"kind"` // "primitive" | "struct"
	PType    string       `json:"ptype,omitempty"`
	Nullable bool         `json:"nullable,omitempty"`
	Names    []string     `json:"names,omitempty"`
	Fields   []*WireDType `json:"fields,omitempty"`
}

// WireFromDType serializes a logical type.
func WireFromDType(dt dtype.DType) *WireDType {
	switch t := dt.(type) {
	case dtype.Primitive:
		return &WireDType{
			Kind:     "primitive",
			PType:    t.PType().String(),
			Nullable: bool(t.Nullability()),
		}
	case dtype.Struct:
		fields := make([]*WireDType, t.NumFields())
		for i := range fields {
			fields[i] = WireFromDType(t.Field(i))
		}
		return &WireDType{Kind: "struct", Names: t.Names(), Fields: fields}
	default:
		panic("ipc: unknown dtype variant")
	}
}

// DType reconstructs the logical type. Malformed type records are
// protocol errors.
func (w *WireDType) DType() (dtype.DType, error) {
	switch w.Kind {
	case "primitive":
		p, ok := dtype.ParsePType(w.PType)
		if !ok {
			return nil, verrors.Newf(verrors.ErrorTypeProtocol, "unknown ptype %q", w.PType)
		}
		return dtype.NewPrimitive(p, dtype.Nullability(w.Nullable)), nil
	case "struct":
		if len(w.Names) != len(w.Fields) {
			return nil, verrors.Newf(verrors.ErrorTypeProtocol,
				"struct type has %d names but %d fields", len(w.Names), len(w.Fields))
		}
		seen := make(map[string]struct{}, len(w.Names))
		for _, n := range w.Names {
			if _, dup := seen[n]; dup {
				return nil, verrors.Newf(verrors.ErrorTypeProtocol, "duplicate struct field name %q", n)
			}
			seen[n] = struct{}{}
		}
		fields := make([]dtype.DType, len(w.Fields))
		for i, f := range w.Fields {
			dt, err := f.DType()
			if err != nil {
				return nil, err
			}
			fields[i] = dt
		}
		return dtype.NewStruct(w.Names, fields), nil
	default:
		return nil, verrors.Newf(verrors.ErrorTypeProtocol, "unknown dtype kind %q", w.Kind)
	}
}
