// Package field provides the typed field descriptors packets
// use to declare their wire layout.
//
// A descriptor is bound to a pointer of a packet member:
//
//	func (h *Handshake) Fields() []proto.Field {
//		return []proto.Field{
//			field.VarInt(&h.ProtocolVersion),
//			field.StringMax(&h.ServerAddress, 255),
//			field.Uint16(&h.Port),
//			field.VarInt(&h.NextState),
//		}
//	}
package field

import (
	"fmt"
	"io"
	"math"

	"go.minekube.com/mcwire/pkg/proto"
	"go.minekube.com/mcwire/pkg/proto/util"
	"go.minekube.com/mcwire/pkg/util/uuid"
)

// Integer is any Go integer type a VarInt field can be bound to.
// Values are carried as their 32-bit two's complement.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

type descriptor struct {
	kind   proto.FieldKind
	encode func(io.Writer) error
	decode func(io.Reader) error
}

func (d *descriptor) Kind() proto.FieldKind     { return d.kind }
func (d *descriptor) Encode(wr io.Writer) error { return d.encode(wr) }
func (d *descriptor) Decode(rd io.Reader) error { return d.decode(rd) }

var _ proto.Field = (*descriptor)(nil)

func newField[T any](kind proto.FieldKind, p *T, enc func(io.Writer, T) error, dec func(io.Reader) (T, error)) proto.Field {
	return &descriptor{
		kind:   kind,
		encode: func(wr io.Writer) error { return enc(wr, *p) },
		decode: func(rd io.Reader) error {
			v, err := dec(rd)
			if err != nil {
				return err
			}
			*p = v
			return nil
		},
	}
}

// VarInt binds an integer member encoded as VarInt.
// Decoded values are sign-extended from 32 bits for signed types.
// Encoding a value outside [math.MinInt32, math.MaxUint32] fails
// with proto.ErrMalformedVarInt.
func VarInt[T Integer](p *T) proto.Field {
	return newField(proto.KindVarInt, p,
		func(wr io.Writer, v T) error {
			if !fitsVarInt(v) {
				return fmt.Errorf("%w: %d does not fit in 32 bits", proto.ErrMalformedVarInt, v)
			}
			return util.WriteVarInt(wr, uint32(v))
		},
		func(rd io.Reader) (T, error) {
			v, err := util.ReadVarInt(rd)
			return fromUint32[T](v), err
		})
}

// VarLong binds an integer member encoded as VarLong.
func VarLong[T Integer](p *T) proto.Field {
	return newField(proto.KindVarLong, p,
		func(wr io.Writer, v T) error { return util.WriteVarLong(wr, uint64(v)) },
		func(rd io.Reader) (T, error) {
			v, err := util.ReadVarLong(rd)
			return T(v), err
		})
}

func fitsVarInt[T Integer](v T) bool {
	if T(0)-1 < 0 {
		return int64(v) >= math.MinInt32 && int64(v) <= math.MaxUint32
	}
	return uint64(v) <= math.MaxUint32
}

// fromUint32 converts a decoded 32-bit value, sign-extending it
// when T is signed.
func fromUint32[T Integer](v uint32) T {
	if T(0)-1 < 0 {
		return T(int32(v))
	}
	return T(v)
}

// String binds a string member of at most util.DefaultMaxStringLen characters.
func String(p *string) proto.Field {
	return StringMax(p, util.DefaultMaxStringLen)
}

// StringMax binds a string member of at most max characters.
func StringMax(p *string, max int) proto.Field {
	return newField(proto.KindString, p,
		func(wr io.Writer, v string) error { return util.WriteStringMax(wr, v, max) },
		func(rd io.Reader) (string, error) { return util.ReadStringMax(rd, max) })
}

// Bytes binds a VarInt length-prefixed byte array.
func Bytes(p *[]byte) proto.Field {
	return BytesMax(p, util.DefaultMaxStringLen)
}

// BytesMax binds a VarInt length-prefixed byte array of at most max bytes.
func BytesMax(p *[]byte, max int) proto.Field {
	return newField(proto.KindBytes, p, util.WriteBytes,
		func(rd io.Reader) ([]byte, error) { return util.ReadBytesLen(rd, max) })
}

func Bool(p *bool) proto.Field {
	return newField(proto.KindBool, p, util.WriteBool, util.ReadBool)
}

func Int8(p *int8) proto.Field {
	return newField(proto.KindInt8, p, util.WriteInt8, util.ReadInt8)
}

func Uint8(p *uint8) proto.Field {
	return newField(proto.KindUint8, p, util.WriteUint8, util.ReadUint8)
}

func Int16(p *int16) proto.Field {
	return newField(proto.KindInt16, p, util.WriteInt16, util.ReadInt16)
}

func Uint16(p *uint16) proto.Field {
	return newField(proto.KindUint16, p, util.WriteUint16, util.ReadUint16)
}

func Int32(p *int32) proto.Field {
	return newField(proto.KindInt32, p, util.WriteInt32, util.ReadInt32)
}

func Int64(p *int64) proto.Field {
	return newField(proto.KindInt64, p, util.WriteInt64, util.ReadInt64)
}

func Float32(p *float32) proto.Field {
	return newField(proto.KindFloat32, p, util.WriteFloat32, util.ReadFloat32)
}

func Float64(p *float64) proto.Field {
	return newField(proto.KindFloat64, p, util.WriteFloat64, util.ReadFloat64)
}

func UUID(p *uuid.UUID) proto.Field {
	return newField(proto.KindUUID, p, util.WriteUUID, util.ReadUUID)
}

// Angle binds a rotation in degrees encoded as 1/256 turn steps.
func Angle(p *float32) proto.Field {
	return newField(proto.KindAngle, p, util.WriteAngle, util.ReadAngle)
}

// BlockPos is a block position as packed into a Position field.
type BlockPos struct{ X, Y, Z int }

func Position(p *BlockPos) proto.Field {
	return newField(proto.KindPosition, p,
		func(wr io.Writer, v BlockPos) error { return util.WritePosition(wr, v.X, v.Y, v.Z) },
		func(rd io.Reader) (BlockPos, error) {
			x, y, z, err := util.ReadPosition(rd)
			return BlockPos{x, y, z}, err
		})
}
