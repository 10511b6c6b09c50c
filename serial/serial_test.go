package serial_test

import (
	"bytes"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/recordstore/serial"
)

type scalarRecord struct {
	A uint8    `ser:"u8"`
	B uint16   `ser:"u16"`
	C uint32   `ser:"u32"`
	D uint64   `ser:"u64"`
	E int8     `ser:"i8"`
	F int16    `ser:"i16"`
	G int32    `ser:"i32"`
	H int64    `ser:"i64"`
	I uint64   `ser:"size"`
	J string   `ser:"charptr"`
	K serial.Timespec `ser:"timespec"`
}

func TestRoundTripScalars(t *testing.T) {
	schema, err := serial.BuildSchema(&scalarRecord{}, serial.Hooks{})
	require.NoError(t, err)

	rec := &scalarRecord{
		A: 7, B: 1000, C: 100000, D: 1 << 40,
		E: -5, F: -1000, G: -100000, H: -(1 << 40),
		I: 42, J: "hello world",
		K: serial.Timespec{Sec: 1700000000, Nsec: 123456789},
	}

	buf, err := schema.Encode(rec)
	require.NoError(t, err)

	sz, err := schema.Size(rec)
	require.NoError(t, err)
	assert.Equal(t, sz, len(buf))

	var got scalarRecord
	n, err := schema.Decode(buf, &got)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, *rec, got)
}

func TestSignedIntSortOrder(t *testing.T) {
	type rec struct {
		V int32 `ser:"i32"`
	}
	schema, err := serial.BuildSchema(&rec{}, serial.Hooks{})
	require.NoError(t, err)

	values := []int32{2, -2, 0, 1, -1}
	type encoded struct {
		v   int32
		buf []byte
	}
	var all []encoded
	for _, v := range values {
		buf, err := schema.Encode(&rec{V: v})
		require.NoError(t, err)
		all = append(all, encoded{v: v, buf: buf})
	}
	sort.Slice(all, func(i, j int) bool {
		return bytes.Compare(all[i].buf, all[j].buf) < 0
	})

	var got []int32
	for _, e := range all {
		got = append(got, e.v)
	}
	assert.Equal(t, []int32{-2, -1, 0, 1, 2}, got)
}

func TestTimespecSortOrder(t *testing.T) {
	type rec struct {
		TS serial.Timespec `ser:"timespec"`
	}
	schema, err := serial.BuildSchema(&rec{}, serial.Hooks{})
	require.NoError(t, err)

	values := []serial.Timespec{
		{Sec: 1, Nsec: 0},
		{Sec: -1, Nsec: 0},
		{Sec: 0, Nsec: 500000000},
		{Sec: 0, Nsec: 0},
	}
	type encoded struct {
		ts  serial.Timespec
		buf []byte
	}
	var all []encoded
	for _, v := range values {
		buf, err := schema.Encode(&rec{TS: v})
		require.NoError(t, err)
		all = append(all, encoded{ts: v, buf: buf})
	}
	sort.Slice(all, func(i, j int) bool {
		return bytes.Compare(all[i].buf, all[j].buf) < 0
	})

	expected := []serial.Timespec{
		{Sec: -1, Nsec: 0},
		{Sec: 0, Nsec: 0},
		{Sec: 0, Nsec: 500000000},
		{Sec: 1, Nsec: 0},
	}
	var got []serial.Timespec
	for _, e := range all {
		got = append(got, e.ts)
	}
	assert.Equal(t, expected, got)
}

func TestFixedArray(t *testing.T) {
	type rec struct {
		Vals [4]uint16 `ser:"u16"`
	}
	schema, err := serial.BuildSchema(&rec{}, serial.Hooks{})
	require.NoError(t, err)

	in := &rec{Vals: [4]uint16{1, 2, 3, 4}}
	buf, err := schema.Encode(in)
	require.NoError(t, err)
	assert.Equal(t, 8, len(buf))

	var out rec
	_, err = schema.Decode(buf, &out)
	require.NoError(t, err)
	assert.Equal(t, in.Vals, out.Vals)
}

type subRecord struct {
	Tag string `ser:"charptr"`
}

func TestOptionalSubStruct(t *testing.T) {
	type rec struct {
		Name    string     `ser:"charptr"`
		Profile *subRecord `ser:"optional"`
	}
	schema, err := serial.BuildSchema(&rec{}, serial.Hooks{})
	require.NoError(t, err)

	withSub := &rec{Name: "a", Profile: &subRecord{Tag: "x"}}
	buf, err := schema.Encode(withSub)
	require.NoError(t, err)
	var got rec
	_, err = schema.Decode(buf, &got)
	require.NoError(t, err)
	require.NotNil(t, got.Profile)
	assert.Equal(t, "x", got.Profile.Tag)

	withoutSub := &rec{Name: "b", Profile: nil}
	buf2, err := schema.Encode(withoutSub)
	require.NoError(t, err)
	var got2 rec
	_, err = schema.Decode(buf2, &got2)
	require.NoError(t, err)
	assert.Nil(t, got2.Profile)
}

func TestVarArrayOfPrimitives(t *testing.T) {
	type rec struct {
		Count uint64   `ser:"u64"`
		Vals  []uint32 `ser:"u32,count_field=Count"`
	}
	schema, err := serial.BuildSchema(&rec{}, serial.Hooks{})
	require.NoError(t, err)

	in := &rec{Count: 3, Vals: []uint32{10, 20, 30}}
	buf, err := schema.Encode(in)
	require.NoError(t, err)
	assert.Equal(t, 8+3*4, len(buf))

	var out rec
	n, err := schema.Decode(buf, &out)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, in.Vals, out.Vals)
}

func TestVarArrayZeroCount(t *testing.T) {
	type rec struct {
		Count uint64   `ser:"u64"`
		Vals  []uint32 `ser:"u32,count_field=Count"`
	}
	schema, err := serial.BuildSchema(&rec{}, serial.Hooks{})
	require.NoError(t, err)

	buf, err := schema.Encode(&rec{})
	require.NoError(t, err)
	assert.Equal(t, 8, len(buf))

	var out rec
	_, err = schema.Decode(buf, &out)
	require.NoError(t, err)
	assert.Empty(t, out.Vals)
}

func TestVarArrayLengthTakenFromLiveSliceOnEncode(t *testing.T) {
	// Count and slice length are independent on encode: the wire count
	// comes from len(Vals), not the Count field's own value, matching
	// "encode/size walk the live slice length".
	type rec struct {
		Count uint64   `ser:"u64"`
		Vals  []uint32 `ser:"u32,count_field=Count"`
	}
	schema, err := serial.BuildSchema(&rec{}, serial.Hooks{})
	require.NoError(t, err)

	buf, err := schema.Encode(&rec{Count: 2, Vals: []uint32{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, 8+3*4, len(buf))
}

func TestVarArrayCountFieldMustPrecedeArray(t *testing.T) {
	type badRec struct {
		Vals  []uint32 `ser:"u32,count_field=Count"`
		Count uint64   `ser:"u64"`
	}
	_, err := serial.BuildSchema(&badRec{}, serial.Hooks{})
	require.Error(t, err)
}

func TestVarArrayUnknownCountField(t *testing.T) {
	type badRec struct {
		Vals []uint32 `ser:"u32,count_field=NoSuchField"`
	}
	_, err := serial.BuildSchema(&badRec{}, serial.Hooks{})
	require.Error(t, err)
}

func TestHooksFireInOrder(t *testing.T) {
	type rec struct {
		V uint32 `ser:"u32"`
	}
	var events []string
	hooks := serial.Hooks{
		BeforeEncode: func(interface{}) { events = append(events, "before") },
		AfterEncode:  func(interface{}) { events = append(events, "after") },
	}
	schema, err := serial.BuildSchema(&rec{}, hooks)
	require.NoError(t, err)

	_, err = schema.Encode(&rec{V: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"before", "after"}, events)
}
