package serial

import (
	"fmt"
	"reflect"

	"github.com/turtacn/recordstore/common/errors"
)

// arrayCodec wraps an element Codec to handle a fixed-length Go array or
// slice field, replicating the source's ARRAY field kind (name, type,
// count): every element uses the same element tag, and count is fixed at
// schema-build time from either the Go array length or an explicit
// `count=N` tag on a slice field.
type arrayCodec struct {
	elem  Codec
	count int
}

func (a arrayCodec) Size(v reflect.Value) (int, error) {
	total := 0
	for i := 0; i < a.count; i++ {
		sz, err := a.elem.Size(v.Index(i))
		if err != nil {
			return 0, err
		}
		total += sz
	}
	return total, nil
}

func (a arrayCodec) Encode(buf []byte, v reflect.Value) (int, error) {
	if v.Len() != a.count {
		return 0, errors.ErrSchemaInvalid.New(fmt.Sprintf("array length %d does not match schema count %d", v.Len(), a.count))
	}
	off := 0
	for i := 0; i < a.count; i++ {
		n, err := a.elem.Encode(buf[off:], v.Index(i))
		if err != nil {
			return 0, err
		}
		off += n
	}
	return off, nil
}

func (a arrayCodec) Decode(buf []byte, v reflect.Value) (int, error) {
	if v.Kind() == reflect.Slice && v.Len() != a.count {
		v.Set(reflect.MakeSlice(v.Type(), a.count, a.count))
	}
	off := 0
	for i := 0; i < a.count; i++ {
		n, err := a.elem.Decode(buf[off:], v.Index(i))
		if err != nil {
			return 0, err
		}
		off += n
	}
	return off, nil
}

// VAR_ARRAY support: a slice field whose element count is carried by a
// separate, earlier field in the same record rather than fixed at
// schema-build time. Grounded on the source's SERIALISE_FIELD_PTR(name,
// type, count_field) construct (mime_serialise.h), which sizes a
// dynamically-allocated array of structs from a preceding uint64_t count
// field. Unlike arrayCodec, a var array has no fixed count to close over,
// so it isn't a standalone Codec: size/encode read the live slice length,
// and decode needs the already-decoded count field's value, both of which
// require the enclosing record value rather than just the field value.
// These are RecordSchema methods for that reason, called directly from
// sizeOf/encodeInto/decodeInto instead of going through codecFor.

// elementCodec resolves the Codec for one element of a var array, reusing
// codecFor's "record" handling for struct elements and a plain registry
// lookup for primitive elements.
func (s *RecordSchema) elementCodec(spec FieldSpec, elemType reflect.Type) (Codec, error) {
	if spec.Tag == "record" {
		nested, err := BuildSchema(reflect.New(elemType).Interface(), Hooks{})
		if err != nil {
			return nil, err
		}
		return recordCodec{schema: nested}, nil
	}
	return lookupCodec(spec.Tag)
}

func (s *RecordSchema) sizeOfVarArray(spec FieldSpec, fv reflect.Value) (int, error) {
	elemCodec, err := s.elementCodec(spec, fv.Type().Elem())
	if err != nil {
		return 0, err
	}
	total := 0
	for i := 0; i < fv.Len(); i++ {
		sz, err := elemCodec.Size(fv.Index(i))
		if err != nil {
			return 0, err
		}
		total += sz
	}
	return total, nil
}

func (s *RecordSchema) encodeVarArray(spec FieldSpec, buf []byte, fv reflect.Value) (int, error) {
	elemCodec, err := s.elementCodec(spec, fv.Type().Elem())
	if err != nil {
		return 0, err
	}
	off := 0
	for i := 0; i < fv.Len(); i++ {
		n, err := elemCodec.Encode(buf[off:], fv.Index(i))
		if err != nil {
			return 0, err
		}
		off += n
	}
	return off, nil
}

// decodeVarArray reads the element count from recv's already-decoded
// CountFieldIndex field (validated at schema-build time to precede this
// field), then decodes that many elements. A zero count leaves fv an empty,
// non-nil slice and consumes no bytes.
func (s *RecordSchema) decodeVarArray(spec FieldSpec, buf []byte, recv reflect.Value, fv reflect.Value) (int, error) {
	count, err := countFieldValue(recv.Field(spec.CountFieldIndex))
	if err != nil {
		return 0, err
	}
	elemCodec, err := s.elementCodec(spec, fv.Type().Elem())
	if err != nil {
		return 0, err
	}
	slice := reflect.MakeSlice(fv.Type(), count, count)
	off := 0
	for i := 0; i < count; i++ {
		if off > len(buf) {
			return 0, errors.ErrMalformedEncoding
		}
		n, err := elemCodec.Decode(buf[off:], slice.Index(i))
		if err != nil {
			return 0, err
		}
		off += n
	}
	fv.Set(slice)
	return off, nil
}

// countFieldValue reads an already-decoded integer field as a slice count.
func countFieldValue(v reflect.Value) (int, error) {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(v.Uint()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(v.Int()), nil
	default:
		return 0, errors.ErrSchemaInvalid.New(fmt.Sprintf("count field has non-integer kind %s", v.Kind()))
	}
}
