// Package serial is the reflection-driven analogue of the source library's
// macro-based field codegen: given a struct whose fields carry `ser:"..."`
// tags, it computes an encoded size, encodes to bytes, and decodes from
// bytes, in declared field order. Every numeric encoding is big-endian and,
// for signed integers, sign-bit-flipped, so that byte-wise comparison of
// two encoded records matches numeric comparison of the original values —
// the property the kvstore and index packages depend on for ordered keys.
package serial

import (
	"fmt"
	"reflect"

	"github.com/turtacn/recordstore/common/errors"
)

// Codec knows how to size, encode, and decode one Go value kind. Codecs are
// registered under a tag name ("u8", "charptr", "timespec", or a
// caller-registered custom tag such as "uuid") and dispatched to by Schema.
type Codec interface {
	// Size returns the number of bytes Encode would write for v.
	Size(v reflect.Value) (int, error)
	// Encode writes v's encoding into buf, which is guaranteed to be at
	// least Size(v) bytes, and returns the number of bytes written.
	Encode(buf []byte, v reflect.Value) (int, error)
	// Decode reads an encoded value from buf into the addressable v and
	// returns the number of bytes consumed.
	Decode(buf []byte, v reflect.Value) (int, error)
}

var registry = map[string]Codec{}

func init() {
	registry["u8"] = u8Codec{}
	registry["u16"] = u16Codec{}
	registry["u32"] = u32Codec{}
	registry["u64"] = u64Codec{}
	registry["i8"] = i8Codec{}
	registry["i16"] = i16Codec{}
	registry["i32"] = i32Codec{}
	registry["i64"] = i64Codec{}
	registry["size"] = sizeCodec{}
	registry["charptr"] = charptrCodec{}
	registry["timespec"] = timespecCodec{}
}

// RegisterType adds a codec for a custom primitive tag, extending the set
// of scalar types a schema's fields may use. Mirrors the source header's
// documented extension point: define TYPE_SIZEOF_<tag>/TYPE_ENC_<tag>/
// TYPE_DEC_<tag> for a new tag. Panics on duplicate registration of one of
// the built-in tags, since that would silently change existing wire
// formats.
func RegisterType(tag string, codec Codec) {
	if _, builtin := builtinTags[tag]; builtin {
		panic(fmt.Sprintf("serial: cannot override built-in tag %q", tag))
	}
	registry[tag] = codec
}

var builtinTags = map[string]struct{}{
	"u8": {}, "u16": {}, "u32": {}, "u64": {},
	"i8": {}, "i16": {}, "i32": {}, "i64": {},
	"size": {}, "charptr": {}, "timespec": {},
}

func lookupCodec(tag string) (Codec, error) {
	c, ok := registry[tag]
	if !ok {
		return nil, errors.ErrSchemaInvalid.New(fmt.Sprintf("unknown field tag %q", tag))
	}
	return c, nil
}
