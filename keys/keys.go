package keys

import (
	"encoding/binary"
	"errors"
)

var (
	// ErrShortKey is returned when a key ends inside a component.
	ErrShortKey = errors.New("keys: key too short")

	// ErrBadEscape is returned for a 0x00 followed by a byte other than
	// 0x00 or 0xFF inside an encoded string.
	ErrBadEscape = errors.New("keys: invalid string escape")
)

const (
	escape     = 0x00
	escapedNul = 0xFF
	terminator = 0x00
)

// Uint64 encodes v as an 8-byte key.
func Uint64(v uint64) []byte { return AppendUint64(make([]byte, 0, 8), v) }

// AppendUint64 appends the encoding of v to dst.
func AppendUint64(dst []byte, v uint64) []byte { return binary.BigEndian.AppendUint64(dst, v) }

// Uint32 encodes v as a 4-byte key.
func Uint32(v uint32) []byte { return AppendUint32(make([]byte, 0, 4), v) }

// AppendUint32 appends the encoding of v to dst.
func AppendUint32(dst []byte, v uint32) []byte { return binary.BigEndian.AppendUint32(dst, v) }

// Int64 encodes v as an 8-byte key.
func Int64(v int64) []byte { return AppendInt64(make([]byte, 0, 8), v) }

// AppendInt64 appends the encoding of v to dst.
func AppendInt64(dst []byte, v int64) []byte {
	return binary.BigEndian.AppendUint64(dst, uint64(v)^(1<<63))
}

// Int32 encodes v as a 4-byte key.
func Int32(v int32) []byte { return AppendInt32(make([]byte, 0, 4), v) }

// AppendInt32 appends the encoding of v to dst.
func AppendInt32(dst []byte, v int32) []byte {
	return binary.BigEndian.AppendUint32(dst, uint32(v)^(1<<31))
}

// String encodes s as an escaped, terminated key.
func String(s string) []byte { return AppendString(make([]byte, 0, len(s)+2), s) }

// AppendString appends the encoding of s to dst.
func AppendString(dst []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		if s[i] == escape {
			dst = append(dst, escape, escapedNul)
			continue
		}
		dst = append(dst, s[i])
	}
	return append(dst, escape, terminator)
}

// DecodeUint64 decodes a leading Uint64 component and returns the rest.
func DecodeUint64(b []byte) (uint64, []byte, error) {
	if len(b) < 8 {
		return 0, b, ErrShortKey
	}
	return binary.BigEndian.Uint64(b), b[8:], nil
}

// DecodeUint32 decodes a leading Uint32 component and returns the rest.
func DecodeUint32(b []byte) (uint32, []byte, error) {
	if len(b) < 4 {
		return 0, b, ErrShortKey
	}
	return binary.BigEndian.Uint32(b), b[4:], nil
}

// DecodeInt64 decodes a leading Int64 component and returns the rest.
func DecodeInt64(b []byte) (int64, []byte, error) {
	u, rest, err := DecodeUint64(b)
	return int64(u ^ (1 << 63)), rest, err
}

// DecodeInt32 decodes a leading Int32 component and returns the rest.
func DecodeInt32(b []byte) (int32, []byte, error) {
	u, rest, err := DecodeUint32(b)
	return int32(u ^ (1 << 31)), rest, err
}

// DecodeString decodes a leading String component and returns the rest.
func DecodeString(b []byte) (string, []byte, error) {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != escape {
			out = append(out, b[i])
			continue
		}
		if i+1 >= len(b) {
			return "", b, ErrShortKey
		}
		switch b[i+1] {
		case terminator:
			return string(out), b[i+2:], nil
		case escapedNul:
			out = append(out, escape)
			i++
		default:
			return "", b, ErrBadEscape
		}
	}
	return "", b, ErrShortKey
}

// PrefixEnd returns the smallest key greater than every key starting with
// p, or nil if there is none (p is empty or all 0xFF).
func PrefixEnd(p []byte) []byte {
	end := append([]byte(nil), p...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xFF {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
