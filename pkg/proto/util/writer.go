package util

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"go.minekube.com/mcwire/pkg/proto"
	"go.minekube.com/mcwire/pkg/util/uuid"
)

func WriteString(wr io.Writer, val string) error {
	return WriteStringMax(wr, val, DefaultMaxStringLen)
}

// WriteStringMax writes val as VarInt length-prefixed UTF-8 string
// and refuses strings a peer would reject as longer than max characters.
func WriteStringMax(wr io.Writer, val string, max int) error {
	if !utf8.ValidString(val) {
		return proto.ErrInvalidUTF8
	}
	if n := utf8.RuneCountInString(val); n > max {
		return fmt.Errorf("%w: got %d characters, max. %d", proto.ErrStringTooLong, n, max)
	}
	if err := WriteVarInt(wr, uint32(len(val))); err != nil {
		return err
	}
	_, err := io.WriteString(wr, val)
	return err
}

// WriteBytes writes b prefixed with its VarInt length.
func WriteBytes(wr io.Writer, b []byte) error {
	if err := WriteVarInt(wr, uint32(len(b))); err != nil {
		return err
	}
	_, err := wr.Write(b)
	return err
}

// WriteBool writes 0x01 for true and 0x00 for false.
func WriteBool(wr io.Writer, val bool) error {
	if val {
		return WriteUint8(wr, 1)
	}
	return WriteUint8(wr, 0)
}

// equal to WriteUint8
func WriteInt8(wr io.Writer, val int8) error {
	return WriteUint8(wr, uint8(val))
}

func WriteUint8(wr io.Writer, val uint8) error {
	_, err := wr.Write([]byte{val})
	return err
}

func WriteInt16(wr io.Writer, val int16) error {
	return WriteUint16(wr, uint16(val))
}

func WriteUint16(wr io.Writer, val uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], val)
	_, err := wr.Write(b[:])
	return err
}

func WriteInt32(wr io.Writer, val int32) error {
	return WriteUint32(wr, uint32(val))
}

func WriteUint32(wr io.Writer, val uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], val)
	_, err := wr.Write(b[:])
	return err
}

func WriteInt64(wr io.Writer, val int64) error {
	return WriteUint64(wr, uint64(val))
}

func WriteUint64(wr io.Writer, val uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], val)
	_, err := wr.Write(b[:])
	return err
}

func WriteFloat32(wr io.Writer, val float32) error {
	return WriteUint32(wr, math.Float32bits(val))
}

func WriteFloat64(wr io.Writer, val float64) error {
	return WriteUint64(wr, math.Float64bits(val))
}

func WriteUUID(wr io.Writer, id uuid.UUID) error {
	_, err := wr.Write(id[:])
	return err
}

// WritePosition packs a block position into a 64-bit integer.
// Coordinates outside of their bit range are truncated.
func WritePosition(wr io.Writer, x, y, z int) error {
	v := (int64(x)&0x3FFFFFF)<<38 | (int64(z)&0x3FFFFFF)<<12 | int64(y)&0xFFF
	return WriteInt64(wr, v)
}

// WriteAngle writes degrees as a 1/256 turn step, wrapping around at 360.
func WriteAngle(wr io.Writer, degrees float32) error {
	steps := int64(math.Floor(float64(degrees) * 256 / 360))
	return WriteUint8(wr, uint8(steps&0xFF))
}
