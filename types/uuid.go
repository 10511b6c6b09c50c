// Package types holds custom primitive types registered into the serial
// package's codec registry via serial.RegisterType, extending the set of
// scalar field tags a record schema may use beyond the built-in ones.
package types

import (
	"reflect"

	"github.com/google/uuid"

	"github.com/turtacn/recordstore/common/errors"
	"github.com/turtacn/recordstore/serial"
)

// UUID is a 16-byte universally unique identifier, usable as a `ser:"uuid"`
// struct field. Its wire encoding is the raw 16 bytes in RFC 4122 order,
// which happens to also sort byte-lexicographically the same way two
// uuid.UUID values compare under bytes.Compare — there is no sign bit or
// endianness concern since a UUID isn't a numeric magnitude.
type UUID [16]byte

// NewUUID generates a random (version 4) UUID.
func NewUUID() UUID {
	return UUID(uuid.New())
}

// ParseUUID parses the canonical string form ("xxxxxxxx-xxxx-...") into a UUID.
func ParseUUID(s string) (UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, errors.ErrSchemaInvalid.New("invalid uuid: " + err.Error())
	}
	return UUID(u), nil
}

func (u UUID) String() string {
	return uuid.UUID(u).String()
}

func init() {
	serial.RegisterType("uuid", uuidCodec{})
}

type uuidCodec struct{}

func (uuidCodec) Size(v reflect.Value) (int, error) { return 16, nil }

func (uuidCodec) Encode(buf []byte, v reflect.Value) (int, error) {
	u, ok := v.Interface().(UUID)
	if !ok {
		return 0, errors.ErrSchemaInvalid.New("uuid codec requires a types.UUID field")
	}
	copy(buf[:16], u[:])
	return 16, nil
}

func (uuidCodec) Decode(buf []byte, v reflect.Value) (int, error) {
	if len(buf) < 16 {
		return 0, errors.ErrMalformedEncoding
	}
	var u UUID
	copy(u[:], buf[:16])
	v.Set(reflect.ValueOf(u))
	return 16, nil
}
