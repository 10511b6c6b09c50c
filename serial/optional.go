package serial

import (
	"reflect"

	"github.com/turtacn/recordstore/common/errors"
)

// optionalCodec wraps a nested RecordSchema to handle an optional
// sub-struct field. The source has no such concept — a substructure is
// always present; here a *T field with a nil value is the absence case.
// This is the Go-idiomatic replacement named in the design notes: a single
// discriminator byte (0 = absent, 1 = present) precedes the nested
// encoding, and an absent field costs exactly that one byte.
type optionalCodec struct {
	elemType reflect.Type // the pointed-to struct type
	schema   *RecordSchema
}

func (o optionalCodec) Size(v reflect.Value) (int, error) {
	if v.IsNil() {
		return 1, nil
	}
	sz, err := o.schema.sizeOf(v.Elem())
	if err != nil {
		return 0, err
	}
	return 1 + sz, nil
}

func (o optionalCodec) Encode(buf []byte, v reflect.Value) (int, error) {
	if v.IsNil() {
		buf[0] = 0
		return 1, nil
	}
	buf[0] = 1
	n, err := o.schema.encodeInto(buf[1:], v.Elem())
	if err != nil {
		return 0, err
	}
	return 1 + n, nil
}

func (o optionalCodec) Decode(buf []byte, v reflect.Value) (int, error) {
	if len(buf) < 1 {
		return 0, errors.ErrMalformedEncoding
	}
	if buf[0] == 0 {
		v.Set(reflect.Zero(v.Type()))
		return 1, nil
	}
	elem := reflect.New(o.elemType)
	n, err := o.schema.decodeInto(buf[1:], elem.Elem())
	if err != nil {
		return 0, err
	}
	v.Set(elem)
	return 1 + n, nil
}
