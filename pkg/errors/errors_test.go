package errors

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAndIsType(t *testing.T) {
	err := New(ErrorTypeProtocol, "bad header")
	assert.Equal(t, "protocol: bad header", err.Error())
	assert.True(t, IsType(err, ErrorTypeProtocol))
	assert.False(t, IsType(err, ErrorTypeIO))
}

func TestWrapPreservesCause(t *testing.T) {
	err := Wrap(io.ErrUnexpectedEOF, ErrorTypeIO, "reading header")
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.True(t, IsType(err, ErrorTypeIO))
	assert.Contains(t, err.Error(), "unexpected EOF")
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeIO, "nothing"))
	assert.Nil(t, Wrapf(nil, ErrorTypeIO, "nothing %d", 1))
}

func TestWithDetail(t *testing.T) {
	err := Newf(ErrorTypeRange, "slice [%d, %d)", 3, 9).WithDetail("len", 5)
	assert.Equal(t, 5, err.Details["len"])
}

func TestIsTypeOnForeignError(t *testing.T) {
	assert.False(t, IsType(io.EOF, ErrorTypeIO))
}
