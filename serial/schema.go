package serial

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/turtacn/recordstore/common/errors"
)

// FieldSpec describes one tagged struct field: its index into the struct,
// the primitive or structural tag it encodes as, and either the fixed
// element count (FIXED_ARRAY) or the name of a preceding field carrying
// the element count (VAR_ARRAY). This is the reflection-driven
// replacement for the source's (name, type[, count]) field-spec tuples
// passed to the SERIALISE(...) macro.
type FieldSpec struct {
	Name  string
	Index int
	Tag   string
	Count int

	// CountField is the name of the field whose decoded value sizes this
	// VAR_ARRAY field; empty for scalar and FIXED_ARRAY fields.
	CountField string
	// CountFieldIndex is CountField's struct field index, resolved and
	// validated (must precede this field) by BuildSchema.
	CountFieldIndex int
}

// Hooks lets a record customize size/encode/decode with lifecycle
// callbacks, the Go analogue of the source's SERIALISE_HOOK_BEFORE_*/
// AFTER_* macro extension points. Any hook left nil is skipped.
type Hooks struct {
	BeforeSize   func(rec interface{})
	AfterSize    func(rec interface{}, size int)
	BeforeEncode func(rec interface{})
	AfterEncode  func(rec interface{})
	BeforeDecode func(rec interface{})
	AfterDecode  func(rec interface{})
}

// RecordSchema walks a struct type's `ser`-tagged fields, in declaration
// order, and knows how to size, encode, and decode any value of that
// type. Built once per record type and reused across all operations,
// playing the role the macro-generated serialise_<name>/_size/deserialise_
// functions play in the source.
type RecordSchema struct {
	typ    reflect.Type
	Fields []FieldSpec
	Hooks  Hooks
}

var (
	schemaCache   = map[reflect.Type]*RecordSchema{}
	schemaCacheMu sync.Mutex
)

// BuildSchema constructs a RecordSchema for the type of proto (typically
// a pointer to a zero-value struct, e.g. BuildSchema(&User{}, hooks)).
// Schemas are cached per type; repeated calls with the same type return
// the same *RecordSchema with hooks from the first call.
func BuildSchema(proto interface{}, hooks Hooks) (*RecordSchema, error) {
	t := reflect.TypeOf(proto)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, errors.ErrSchemaInvalid.New("BuildSchema requires a struct or pointer-to-struct")
	}

	schemaCacheMu.Lock()
	defer schemaCacheMu.Unlock()
	if s, ok := schemaCache[t]; ok {
		return s, nil
	}

	s := &RecordSchema{typ: t, Hooks: hooks}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tagVal, ok := f.Tag.Lookup("ser")
		if !ok {
			continue
		}
		spec, err := parseFieldTag(f, tagVal, i)
		if err != nil {
			return nil, err
		}
		s.Fields = append(s.Fields, spec)
	}
	if err := s.validateVarArrays(); err != nil {
		return nil, err
	}
	schemaCache[t] = s
	return s, nil
}

func parseFieldTag(f reflect.StructField, tagVal string, index int) (FieldSpec, error) {
	parts := strings.Split(tagVal, ",")
	spec := FieldSpec{Name: f.Name, Index: index, Tag: parts[0], CountFieldIndex: -1}
	for _, opt := range parts[1:] {
		switch {
		case strings.HasPrefix(opt, "count="):
			n, err := strconv.Atoi(strings.TrimPrefix(opt, "count="))
			if err != nil {
				return spec, errors.ErrSchemaInvalid.New(fmt.Sprintf("field %s: invalid count option %q", f.Name, opt))
			}
			spec.Count = n
		case strings.HasPrefix(opt, "count_field="):
			spec.CountField = strings.TrimPrefix(opt, "count_field=")
		}
	}
	if spec.Tag != "optional" && spec.Tag != "record" && f.Type.Kind() == reflect.Array {
		spec.Count = f.Type.Len()
	}
	return spec, nil
}

// validateVarArrays checks that every VAR_ARRAY field's count_field names a
// field declared earlier in the schema, per spec: "the length field must
// appear earlier in the schema so the decoder can size the array before
// reading its contents". Resolves CountFieldIndex on success.
func (s *RecordSchema) validateVarArrays() error {
	for i, spec := range s.Fields {
		if spec.CountField == "" {
			continue
		}
		precedingIndex := -1
		for j := 0; j < i; j++ {
			if s.Fields[j].Name == spec.CountField {
				precedingIndex = s.Fields[j].Index
				break
			}
		}
		if precedingIndex >= 0 {
			s.Fields[i].CountFieldIndex = precedingIndex
			continue
		}
		for j := i; j < len(s.Fields); j++ {
			if s.Fields[j].Name == spec.CountField {
				return errors.ErrSchemaInvalid.New(fmt.Sprintf(
					"field %s: count field %q must precede the array field", spec.Name, spec.CountField))
			}
		}
		return errors.ErrSchemaInvalid.New(fmt.Sprintf(
			"field %s: unknown count field %q", spec.Name, spec.CountField))
	}
	return nil
}

// FieldSpecByName returns the FieldSpec declared for the named struct
// field, for callers (the keys package) that need to extract an ordered
// subset of a record's fields into a derived key schema.
func (s *RecordSchema) FieldSpecByName(name string) (FieldSpec, bool) {
	for _, spec := range s.Fields {
		if spec.Name == name {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// FieldCodec resolves the Codec for the named field, using the parent
// struct's own field type. Exported so key schemas can encode individual
// record fields with exactly the same byte representation the record
// itself would use, which is what makes primary/secondary key ordering
// agree with record field ordering.
func (s *RecordSchema) FieldCodec(name string) (Codec, error) {
	spec, ok := s.FieldSpecByName(name)
	if !ok {
		return nil, errors.ErrSchemaInvalid.New(fmt.Sprintf("no such field %q in schema for %s", name, s.typ.Name()))
	}
	f, ok := s.typ.FieldByName(name)
	if !ok {
		return nil, errors.ErrSchemaInvalid.New(fmt.Sprintf("no such field %q in type %s", name, s.typ.Name()))
	}
	return s.codecFor(spec, f.Type)
}

// codecFor resolves the Codec for one field, constructing array/optional/
// nested-record wrapper codecs as needed. Resolved lazily (not cached on
// FieldSpec) since optional/record fields need the field's own Go type to
// build their nested RecordSchema.
func (s *RecordSchema) codecFor(spec FieldSpec, fieldType reflect.Type) (Codec, error) {
	switch spec.Tag {
	case "optional":
		if fieldType.Kind() != reflect.Ptr || fieldType.Elem().Kind() != reflect.Struct {
			return nil, errors.ErrSchemaInvalid.New(fmt.Sprintf("field %s: optional requires a pointer-to-struct field", spec.Name))
		}
		elemType := fieldType.Elem()
		nested, err := BuildSchema(reflect.New(elemType).Interface(), Hooks{})
		if err != nil {
			return nil, err
		}
		return optionalCodec{elemType: elemType, schema: nested}, nil
	case "record":
		if fieldType.Kind() != reflect.Struct {
			return nil, errors.ErrSchemaInvalid.New(fmt.Sprintf("field %s: record requires a struct field", spec.Name))
		}
		nested, err := BuildSchema(reflect.New(fieldType).Interface(), Hooks{})
		if err != nil {
			return nil, err
		}
		return recordCodec{schema: nested}, nil
	default:
		elemTag := spec.Tag
		base, err := lookupCodec(elemTag)
		if err != nil {
			return nil, err
		}
		if spec.Count > 0 {
			return arrayCodec{elem: base, count: spec.Count}, nil
		}
		return base, nil
	}
}

// Size returns the total encoded length of rec.
func (s *RecordSchema) Size(rec interface{}) (int, error) {
	v := reflect.ValueOf(rec)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if s.Hooks.BeforeSize != nil {
		s.Hooks.BeforeSize(rec)
	}
	sz, err := s.sizeOf(v)
	if err != nil {
		return 0, err
	}
	if s.Hooks.AfterSize != nil {
		s.Hooks.AfterSize(rec, sz)
	}
	return sz, nil
}

func (s *RecordSchema) sizeOf(v reflect.Value) (int, error) {
	total := 0
	for _, spec := range s.Fields {
		fv := v.Field(spec.Index)
		if spec.CountField != "" {
			sz, err := s.sizeOfVarArray(spec, fv)
			if err != nil {
				return 0, err
			}
			total += sz
			continue
		}
		codec, err := s.codecFor(spec, fv.Type())
		if err != nil {
			return 0, err
		}
		sz, err := codec.Size(fv)
		if err != nil {
			return 0, err
		}
		total += sz
	}
	return total, nil
}

// Encode returns rec's wire encoding.
func (s *RecordSchema) Encode(rec interface{}) ([]byte, error) {
	v := reflect.ValueOf(rec)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if s.Hooks.BeforeEncode != nil {
		s.Hooks.BeforeEncode(rec)
	}
	sz, err := s.sizeOf(v)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, sz)
	if _, err := s.encodeInto(buf, v); err != nil {
		return nil, err
	}
	if s.Hooks.AfterEncode != nil {
		s.Hooks.AfterEncode(rec)
	}
	return buf, nil
}

func (s *RecordSchema) encodeInto(buf []byte, v reflect.Value) (int, error) {
	off := 0
	for _, spec := range s.Fields {
		fv := v.Field(spec.Index)
		if spec.CountField != "" {
			n, err := s.encodeVarArray(spec, buf[off:], fv)
			if err != nil {
				return 0, err
			}
			off += n
			continue
		}
		codec, err := s.codecFor(spec, fv.Type())
		if err != nil {
			return 0, err
		}
		n, err := codec.Encode(buf[off:], fv)
		if err != nil {
			return 0, err
		}
		off += n
	}
	return off, nil
}

// Decode populates rec (a pointer to the schema's struct type) from buf
// and returns the number of bytes consumed.
func (s *RecordSchema) Decode(buf []byte, rec interface{}) (int, error) {
	v := reflect.ValueOf(rec)
	if v.Kind() != reflect.Ptr {
		return 0, errors.ErrSchemaInvalid.New("Decode requires a pointer to the record type")
	}
	v = v.Elem()
	if s.Hooks.BeforeDecode != nil {
		s.Hooks.BeforeDecode(rec)
	}
	n, err := s.decodeInto(buf, v)
	if err != nil {
		return 0, err
	}
	if s.Hooks.AfterDecode != nil {
		s.Hooks.AfterDecode(rec)
	}
	return n, nil
}

func (s *RecordSchema) decodeInto(buf []byte, v reflect.Value) (int, error) {
	off := 0
	for _, spec := range s.Fields {
		fv := v.Field(spec.Index)
		if off > len(buf) {
			return 0, errors.ErrMalformedEncoding
		}
		if spec.CountField != "" {
			n, err := s.decodeVarArray(spec, buf[off:], v, fv)
			if err != nil {
				return 0, err
			}
			off += n
			continue
		}
		codec, err := s.codecFor(spec, fv.Type())
		if err != nil {
			return 0, err
		}
		n, err := codec.Decode(buf[off:], fv)
		if err != nil {
			return 0, err
		}
		off += n
	}
	return off, nil
}

// recordCodec wraps a nested RecordSchema for a required (non-optional)
// sub-struct field — composite fields with no discriminator byte.
type recordCodec struct {
	schema *RecordSchema
}

func (r recordCodec) Size(v reflect.Value) (int, error)   { return r.schema.sizeOf(v) }
func (r recordCodec) Encode(buf []byte, v reflect.Value) (int, error) {
	return r.schema.encodeInto(buf, v)
}
func (r recordCodec) Decode(buf []byte, v reflect.Value) (int, error) {
	return r.schema.decodeInto(buf, v)
}
