package wasm

import (
	"encoding/binary"

	apperrors "github.com/rustwasm/twiggy-sub000/pkg/errors"
)

// reader is a position-tracked cursor over a byte buffer. All reads return
// a parse error instead of panicking on truncated input.
type reader struct {
	data []byte
	pos  int
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

func (r *reader) len() int { return len(r.data) }

func (r *reader) done() bool { return r.pos >= len(r.data) }

func (r *reader) truncated(what string) error {
	return apperrors.Newf(apperrors.CodeParseError, "truncated %s at offset %d", what, r.pos)
}

func (r *reader) byte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, r.truncated("byte")
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, r.truncated("bytes")
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) skip(n int) error {
	if n < 0 || r.pos+n > len(r.data) {
		return r.truncated("skip")
	}
	r.pos += n
	return nil
}

func (r *reader) u32() (uint32, error) {
	var result uint64
	var shift uint
	for {
		b, err := r.byte()
		if err != nil {
			return 0, err
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
		if shift >= 35 {
			return 0, apperrors.Newf(apperrors.CodeParseError, "varuint32 too long at offset %d", r.pos)
		}
	}
	return uint32(result), nil
}

func (r *reader) s64() (int64, error) {
	var result int64
	var shift uint
	for {
		b, err := r.byte()
		if err != nil {
			return 0, err
		}
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			if shift < 64 && b&0x40 != 0 {
				result |= -1 << shift
			}
			break
		}
		if shift >= 70 {
			return 0, apperrors.Newf(apperrors.CodeParseError, "varint too long at offset %d", r.pos)
		}
	}
	return result, nil
}

func (r *reader) s32() (int32, error) {
	v, err := r.s64()
	return int32(v), err
}

func (r *reader) f32() error { return r.skip(4) }
func (r *reader) f64() error { return r.skip(8) }

func (r *reader) u32le() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// name reads a length-prefixed UTF-8 string.
func (r *reader) name() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	b, err := r.bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
