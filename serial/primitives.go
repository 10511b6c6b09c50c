package serial

import (
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/turtacn/recordstore/common/errors"
)

// Unsigned integers encode big-endian, unflipped: byte-wise order already
// matches numeric order for unsigned values.

type u8Codec struct{}

func (u8Codec) Size(reflect.Value) (int, error) { return 1, nil }
func (u8Codec) Encode(buf []byte, v reflect.Value) (int, error) {
	buf[0] = uint8(v.Uint())
	return 1, nil
}
func (u8Codec) Decode(buf []byte, v reflect.Value) (int, error) {
	if len(buf) < 1 {
		return 0, errors.ErrMalformedEncoding
	}
	v.SetUint(uint64(buf[0]))
	return 1, nil
}

type u16Codec struct{}

func (u16Codec) Size(reflect.Value) (int, error) { return 2, nil }
func (u16Codec) Encode(buf []byte, v reflect.Value) (int, error) {
	binary.BigEndian.PutUint16(buf, uint16(v.Uint()))
	return 2, nil
}
func (u16Codec) Decode(buf []byte, v reflect.Value) (int, error) {
	if len(buf) < 2 {
		return 0, errors.ErrMalformedEncoding
	}
	v.SetUint(uint64(binary.BigEndian.Uint16(buf)))
	return 2, nil
}

type u32Codec struct{}

func (u32Codec) Size(reflect.Value) (int, error) { return 4, nil }
func (u32Codec) Encode(buf []byte, v reflect.Value) (int, error) {
	binary.BigEndian.PutUint32(buf, uint32(v.Uint()))
	return 4, nil
}
func (u32Codec) Decode(buf []byte, v reflect.Value) (int, error) {
	if len(buf) < 4 {
		return 0, errors.ErrMalformedEncoding
	}
	v.SetUint(uint64(binary.BigEndian.Uint32(buf)))
	return 4, nil
}

type u64Codec struct{}

func (u64Codec) Size(reflect.Value) (int, error) { return 8, nil }
func (u64Codec) Encode(buf []byte, v reflect.Value) (int, error) {
	binary.BigEndian.PutUint64(buf, v.Uint())
	return 8, nil
}
func (u64Codec) Decode(buf []byte, v reflect.Value) (int, error) {
	if len(buf) < 8 {
		return 0, errors.ErrMalformedEncoding
	}
	v.SetUint(binary.BigEndian.Uint64(buf))
	return 8, nil
}

// Signed integers flip the sign bit before the big-endian write so that
// byte-wise comparison still matches numeric comparison (negative values
// sort before zero, zero before positive).

type i8Codec struct{}

func (i8Codec) Size(reflect.Value) (int, error) { return 1, nil }
func (i8Codec) Encode(buf []byte, v reflect.Value) (int, error) {
	buf[0] = uint8(v.Int()) ^ 0x80
	return 1, nil
}
func (i8Codec) Decode(buf []byte, v reflect.Value) (int, error) {
	if len(buf) < 1 {
		return 0, errors.ErrMalformedEncoding
	}
	v.SetInt(int64(int8(buf[0] ^ 0x80)))
	return 1, nil
}

type i16Codec struct{}

func (i16Codec) Size(reflect.Value) (int, error) { return 2, nil }
func (i16Codec) Encode(buf []byte, v reflect.Value) (int, error) {
	binary.BigEndian.PutUint16(buf, uint16(v.Int())^0x8000)
	return 2, nil
}
func (i16Codec) Decode(buf []byte, v reflect.Value) (int, error) {
	if len(buf) < 2 {
		return 0, errors.ErrMalformedEncoding
	}
	v.SetInt(int64(int16(binary.BigEndian.Uint16(buf) ^ 0x8000)))
	return 2, nil
}

type i32Codec struct{}

func (i32Codec) Size(reflect.Value) (int, error) { return 4, nil }
func (i32Codec) Encode(buf []byte, v reflect.Value) (int, error) {
	binary.BigEndian.PutUint32(buf, uint32(v.Int())^0x80000000)
	return 4, nil
}
func (i32Codec) Decode(buf []byte, v reflect.Value) (int, error) {
	if len(buf) < 4 {
		return 0, errors.ErrMalformedEncoding
	}
	v.SetInt(int64(int32(binary.BigEndian.Uint32(buf) ^ 0x80000000)))
	return 4, nil
}

type i64Codec struct{}

func (i64Codec) Size(reflect.Value) (int, error) { return 8, nil }
func (i64Codec) Encode(buf []byte, v reflect.Value) (int, error) {
	binary.BigEndian.PutUint64(buf, uint64(v.Int())^0x8000000000000000)
	return 8, nil
}
func (i64Codec) Decode(buf []byte, v reflect.Value) (int, error) {
	if len(buf) < 8 {
		return 0, errors.ErrMalformedEncoding
	}
	v.SetInt(int64(binary.BigEndian.Uint64(buf) ^ 0x8000000000000000))
	return 8, nil
}

// sizeCodec encodes Go's platform-sized uint/int as a fixed 8-byte
// big-endian value, the Go analogue of the source's "always 8 bytes for
// portability" size_t encoding. Applies to uint/uint64/int/int64 fields
// tagged "size".
type sizeCodec struct{}

func (sizeCodec) Size(reflect.Value) (int, error) { return 8, nil }
func (sizeCodec) Encode(buf []byte, v reflect.Value) (int, error) {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint64, reflect.Uint32, reflect.Uint16, reflect.Uint8:
		binary.BigEndian.PutUint64(buf, v.Uint())
	case reflect.Int, reflect.Int64, reflect.Int32, reflect.Int16, reflect.Int8:
		binary.BigEndian.PutUint64(buf, uint64(v.Int()))
	default:
		return 0, errors.ErrSchemaInvalid.New(fmt.Sprintf("size tag on non-integer kind %s", v.Kind()))
	}
	return 8, nil
}
func (sizeCodec) Decode(buf []byte, v reflect.Value) (int, error) {
	if len(buf) < 8 {
		return 0, errors.ErrMalformedEncoding
	}
	raw := binary.BigEndian.Uint64(buf)
	switch v.Kind() {
	case reflect.Uint, reflect.Uint64, reflect.Uint32, reflect.Uint16, reflect.Uint8:
		v.SetUint(raw)
	case reflect.Int, reflect.Int64, reflect.Int32, reflect.Int16, reflect.Int8:
		v.SetInt(int64(raw))
	default:
		return 0, errors.ErrSchemaInvalid.New(fmt.Sprintf("size tag on non-integer kind %s", v.Kind()))
	}
	return 8, nil
}

// charptrCodec encodes a Go string as a 4-byte big-endian length prefix
// followed by the raw bytes. The source's NUL-terminated char* plus
// SERIAL_ALLOC is replaced outright: Go strings already carry their own
// length, so there is no terminator to write or allocator to call.
type charptrCodec struct{}

func (charptrCodec) Size(v reflect.Value) (int, error) {
	return 4 + v.Len(), nil
}
func (charptrCodec) Encode(buf []byte, v reflect.Value) (int, error) {
	s := v.String()
	binary.BigEndian.PutUint32(buf, uint32(len(s)))
	copy(buf[4:], s)
	return 4 + len(s), nil
}
func (charptrCodec) Decode(buf []byte, v reflect.Value) (int, error) {
	if len(buf) < 4 {
		return 0, errors.ErrMalformedEncoding
	}
	n := binary.BigEndian.Uint32(buf)
	if uint64(len(buf)) < 4+uint64(n) {
		return 0, errors.ErrMalformedEncoding
	}
	v.SetString(string(buf[4 : 4+n]))
	return int(4 + n), nil
}
