package osc

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/go-faster/errors"
)

// Wire sizes
const (
	Int32Size     = 4
	Float32Size   = 4
	TimestampSize = 8

	// MaxPacketSize is the largest UDP payload a single receive can return.
	MaxPacketSize = 65535
)

// ErrMalformed is returned for any decode failure: truncated buffer, bad
// length, missing sentinel, unknown type tag or argument/tag mismatch.
var ErrMalformed = errors.New("osc: malformed packet")

// Reader is a cursor over a caller-owned byte slice.
// Every read returns a view into the original buffer and advances past the
// consumed (padded) region. A failed read leaves the cursor untouched.
type Reader struct {
	buf []byte
}

// NewReader creates a cursor positioned at the start of b
func NewReader(b []byte) Reader {
	return Reader{buf: b}
}

// ReadString reads a NUL-terminated, 4-byte padded OSC string.
// The returned slice excludes the terminator and padding.
func (r *Reader) ReadString() ([]byte, error) {
	n := bytes.IndexByte(r.buf, 0)
	if n < 0 {
		return nil, ErrMalformed
	}
	padded := PaddedLen(n)
	if padded > len(r.buf) {
		return nil, ErrMalformed
	}
	s := r.buf[:n:n]
	r.buf = r.buf[padded:]
	return s, nil
}

// ReadInt32 reads a big-endian signed 32-bit integer
func (r *Reader) ReadInt32() (int32, error) {
	if len(r.buf) < Int32Size {
		return 0, ErrMalformed
	}
	v := int32(binary.BigEndian.Uint32(r.buf))
	r.buf = r.buf[Int32Size:]
	return v, nil
}

// ReadFloat32 reads a big-endian IEEE-754 single precision float
func (r *Reader) ReadFloat32() (float32, error) {
	if len(r.buf) < Float32Size {
		return 0, ErrMalformed
	}
	v := math.Float32frombits(binary.BigEndian.Uint32(r.buf))
	r.buf = r.buf[Float32Size:]
	return v, nil
}

// ReadTimestamp reads the 8-byte time tag as an opaque big-endian value.
// Seconds and fraction are not split.
func (r *Reader) ReadTimestamp() (uint64, error) {
	if len(r.buf) < TimestampSize {
		return 0, ErrMalformed
	}
	v := binary.BigEndian.Uint64(r.buf)
	r.buf = r.buf[TimestampSize:]
	return v, nil
}

// EOF reports whether no bytes remain
func (r *Reader) EOF() bool {
	return len(r.buf) == 0
}

// Len returns the number of unconsumed bytes
func (r *Reader) Len() int {
	return len(r.buf)
}

// Rest returns the unconsumed tail without advancing
func (r *Reader) Rest() []byte {
	return r.buf
}

// PaddedLen returns the wire size of a string with n content bytes:
// content plus at least one NUL, rounded up to a multiple of 4.
func PaddedLen(n int) int {
	return n/4*4 + 4
}
