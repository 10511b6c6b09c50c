package serial

import (
	"encoding/binary"
	"reflect"

	"github.com/turtacn/recordstore/common/errors"
)

// Timespec is the Go analogue of struct timespec: a point in time as
// (seconds, nanoseconds-of-second). Seconds is constrained to 34 signed
// bits and Nsec to 30 unsigned bits by the packed encoding below — about
// 272 years either side of the epoch, which the source considered
// sufficient.
type Timespec struct {
	Sec  int64
	Nsec int32
}

const (
	nsecBits = 30
	secBits  = 34
	nsecMask = (uint64(1) << nsecBits) - 1
	secMask  = (uint64(1) << secBits) - 1
	signBit  = uint64(1) << 63
	secSign  = uint64(1) << (secBits - 1)
)

// timespecCodec packs (sec, nsec) into a single sortable 8-byte value:
// a 34-bit signed seconds field in the high bits, a 30-bit nanoseconds
// field in the low bits, then the whole 64-bit word's sign bit is flipped
// so two packed values compare the same way their (sec, nsec) pairs do.
type timespecCodec struct{}

func (timespecCodec) Size(reflect.Value) (int, error) { return 8, nil }

func (timespecCodec) Encode(buf []byte, v reflect.Value) (int, error) {
	ts, ok := v.Interface().(Timespec)
	if !ok {
		return 0, errors.ErrSchemaInvalid.New("timespec tag on non-Timespec field")
	}
	packed := EncodeTimespec(ts)
	binary.BigEndian.PutUint64(buf, packed)
	return 8, nil
}

func (timespecCodec) Decode(buf []byte, v reflect.Value) (int, error) {
	if len(buf) < 8 {
		return 0, errors.ErrMalformedEncoding
	}
	packed := binary.BigEndian.Uint64(buf)
	v.Set(reflect.ValueOf(DecodeTimespec(packed)))
	return 8, nil
}

// EncodeTimespec packs a Timespec into its sortable 64-bit wire form.
func EncodeTimespec(ts Timespec) uint64 {
	sec34 := uint64(ts.Sec) & secMask
	nsec30 := uint64(ts.Nsec) & nsecMask
	packed := (sec34 << nsecBits) | nsec30
	return packed ^ signBit
}

// DecodeTimespec unpacks a sortable 64-bit wire form into a Timespec.
func DecodeTimespec(packed uint64) Timespec {
	packed ^= signBit
	nsec30 := packed & nsecMask
	sec34 := (packed >> nsecBits) & secMask
	var sec int64
	if sec34&secSign != 0 {
		sec = int64(sec34 | ^secMask) // sign-extend the 34-bit field
	} else {
		sec = int64(sec34)
	}
	return Timespec{Sec: sec, Nsec: int32(nsec30)}
}
