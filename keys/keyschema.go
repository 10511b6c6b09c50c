// Package keys derives primary- and secondary-key sub-schemas from a
// parent serial.RecordSchema. This is the Go analogue of the source's
// SERIALISE_PRIMARY_KEY / SERIALISE_SECONDARY_KEY macros: instead of
// generating a new C struct and its own size/encode/decode trio per key,
// a KeySchema simply names an ordered subset of the parent record's
// fields and reuses the parent's own field codecs to encode them, so a
// key's byte order always agrees with the record's field order.
package keys

import (
	"reflect"

	"github.com/turtacn/recordstore/common/errors"
	"github.com/turtacn/recordstore/serial"
)

// KeySchema is an ordered subset of a record's fields, used either as the
// record's primary key or as one of its secondary keys. Name identifies
// the key for table naming ("<record>_<name>", e.g. "user_pk",
// "user_by_email").
type KeySchema struct {
	Name   string
	Fields []string
	parent *serial.RecordSchema
	codecs []serial.Codec
}

// NewKeySchema builds a KeySchema over fields (in the given order) of
// parent. Returns an error if any field name is not declared on parent.
func NewKeySchema(name string, parent *serial.RecordSchema, fields ...string) (*KeySchema, error) {
	if len(fields) == 0 {
		return nil, errors.ErrSchemaInvalid.New("key schema " + name + " must name at least one field")
	}
	codecs := make([]serial.Codec, len(fields))
	for i, f := range fields {
		c, err := parent.FieldCodec(f)
		if err != nil {
			return nil, err
		}
		codecs[i] = c
	}
	return &KeySchema{Name: name, Fields: fields, parent: parent, codecs: codecs}, nil
}

// Extract serializes rec's key fields, in schema order, into one
// byte slice suitable for use as a KV-table key. Two records whose key
// field tuples compare A.P < B.P also satisfy Extract(A) < Extract(B)
// byte-lexicographically, because every field reuses the record's own
// sortable per-field codec.
func (k *KeySchema) Extract(rec interface{}) ([]byte, error) {
	v := reflect.ValueOf(rec)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	total := 0
	for i, name := range k.Fields {
		fv := v.FieldByName(name)
		if !fv.IsValid() {
			return nil, errors.ErrSchemaInvalid.New("record has no field " + name)
		}
		sz, err := k.codecs[i].Size(fv)
		if err != nil {
			return nil, err
		}
		total += sz
	}

	buf := make([]byte, total)
	off := 0
	for i, name := range k.Fields {
		fv := v.FieldByName(name)
		n, err := k.codecs[i].Encode(buf[off:], fv)
		if err != nil {
			return nil, err
		}
		off += n
	}
	return buf, nil
}

// TableName returns the backend table name this key schema's entries are
// stored under, following the record-underscore-keyname convention.
func (k *KeySchema) TableName(recordName string) string {
	return recordName + "_" + k.Name
}
