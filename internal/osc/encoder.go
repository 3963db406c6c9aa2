package osc

import (
	"encoding/binary"
	"math"

	"github.com/go-faster/errors"
)

// AppendString appends s as a NUL-terminated string padded to 4 bytes
func AppendString(dst []byte, s string) []byte {
	dst = append(dst, s...)
	for i := len(s); i < PaddedLen(len(s)); i++ {
		dst = append(dst, 0)
	}
	return dst
}

// AppendInt32 appends a big-endian int32
func AppendInt32(dst []byte, v int32) []byte {
	return binary.BigEndian.AppendUint32(dst, uint32(v))
}

// AppendFloat32 appends a big-endian float32
func AppendFloat32(dst []byte, v float32) []byte {
	return binary.BigEndian.AppendUint32(dst, math.Float32bits(v))
}

// AppendMessage encodes a message with the given arguments.
// Supported argument types are int32, float32, string and []byte (sent as
// a string atom).
func AppendMessage(dst []byte, address string, args ...any) ([]byte, error) {
	tags := make([]byte, 0, len(args)+1)
	tags = append(tags, TagPrefix)
	for i, arg := range args {
		switch v := arg.(type) {
		case int32:
			tags = append(tags, TagInt32)
		case float32:
			tags = append(tags, TagFloat32)
		case string, []byte:
			tags = append(tags, TagString)
		default:
			return dst, errors.Errorf("argument %d: unsupported type %T", i, v)
		}
	}

	dst = AppendString(dst, address)
	dst = AppendString(dst, string(tags))
	for _, arg := range args {
		switch v := arg.(type) {
		case int32:
			dst = AppendInt32(dst, v)
		case float32:
			dst = AppendFloat32(dst, v)
		case string:
			dst = AppendString(dst, v)
		case []byte:
			dst = AppendString(dst, string(v))
		}
	}
	return dst, nil
}

// AppendBundle encodes a bundle holding already encoded messages
func AppendBundle(dst []byte, timestamp uint64, messages ...[]byte) []byte {
	dst = AppendString(dst, BundleTag)
	dst = binary.BigEndian.AppendUint64(dst, timestamp)
	for _, m := range messages {
		dst = AppendInt32(dst, int32(len(m)))
		dst = append(dst, m...)
	}
	return dst
}
