package util

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"go.minekube.com/mcwire/pkg/proto"
	"go.minekube.com/mcwire/pkg/util/uuid"
)

// DefaultMaxStringLen is the maximum number of characters
// a protocol string may hold if not limited otherwise.
const DefaultMaxStringLen = 32767

func ReadString(rd io.Reader) (string, error) {
	return ReadStringMax(rd, DefaultMaxStringLen)
}

// ReadStringMax reads a VarInt length-prefixed UTF-8 string of at most max characters.
// The declared byte length is checked against max*4 before anything is allocated.
func ReadStringMax(rd io.Reader, max int) (string, error) {
	length, err := ReadVarInt(rd)
	if err != nil {
		return "", err
	}
	return readStringMax(rd, max, length)
}

func readStringMax(rd io.Reader, max int, length uint32) (string, error) {
	if uint64(length) > uint64(max)*4 { // *4 since UTF8 character has up to 4 bytes
		return "", fmt.Errorf("%w: got %d bytes, max. %d characters", proto.ErrStringTooLong, length, max)
	}
	str := make([]byte, length)
	if err := readFull(rd, str); err != nil {
		return "", err
	}
	if !utf8.Valid(str) {
		return "", proto.ErrInvalidUTF8
	}
	if n := utf8.RuneCount(str); n > max {
		return "", fmt.Errorf("%w: got %d characters, max. %d", proto.ErrStringTooLong, n, max)
	}
	return string(str), nil
}

func ReadBytes(rd io.Reader) ([]byte, error) {
	return ReadBytesLen(rd, DefaultMaxStringLen)
}

// ReadBytesLen reads a VarInt length-prefixed byte array of at most maxLength bytes.
func ReadBytesLen(rd io.Reader, maxLength int) ([]byte, error) {
	length, err := ReadVarInt(rd)
	if err != nil {
		return nil, err
	}
	if uint64(length) > uint64(maxLength) {
		return nil, fmt.Errorf("%w: byte array length %d is above given maximum %d",
			proto.ErrStringTooLong, length, maxLength)
	}
	b := make([]byte, length)
	if err = readFull(rd, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ReadBool reads a single byte, any non-zero value is true.
func ReadBool(rd io.Reader) (bool, error) {
	v, err := ReadUint8(rd)
	return v != 0, err
}

func ReadInt8(rd io.Reader) (int8, error) {
	v, err := ReadUint8(rd)
	return int8(v), err
}

func ReadUint8(rd io.Reader) (uint8, error) {
	var b [1]byte
	if err := readFull(rd, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func ReadInt16(rd io.Reader) (int16, error) {
	v, err := ReadUint16(rd)
	return int16(v), err
}

func ReadUint16(rd io.Reader) (uint16, error) {
	var b [2]byte
	if err := readFull(rd, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func ReadInt32(rd io.Reader) (int32, error) {
	v, err := ReadUint32(rd)
	return int32(v), err
}

func ReadUint32(rd io.Reader) (uint32, error) {
	var b [4]byte
	if err := readFull(rd, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func ReadInt64(rd io.Reader) (int64, error) {
	v, err := ReadUint64(rd)
	return int64(v), err
}

func ReadUint64(rd io.Reader) (uint64, error) {
	var b [8]byte
	if err := readFull(rd, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

func ReadFloat32(rd io.Reader) (float32, error) {
	v, err := ReadUint32(rd)
	return math.Float32frombits(v), err
}

func ReadFloat64(rd io.Reader) (float64, error) {
	v, err := ReadUint64(rd)
	return math.Float64frombits(v), err
}

// ReadUUID reads 16 bytes as UUID.
func ReadUUID(rd io.Reader) (id uuid.UUID, err error) {
	err = readFull(rd, id[:])
	return id, err
}

// ReadPosition reads a block position packed into a 64-bit integer
// as x (26 bits), z (26 bits) and y (12 bits), all signed.
func ReadPosition(rd io.Reader) (x, y, z int, err error) {
	v, err := ReadInt64(rd)
	if err != nil {
		return 0, 0, 0, err
	}
	x = int(v >> 38)
	y = int(v << 52 >> 52)
	z = int(v << 26 >> 38)
	return x, y, z, nil
}

// ReadAngle reads a rotation angle in steps of 1/256 of a full turn
// and returns it in degrees.
func ReadAngle(rd io.Reader) (float32, error) {
	v, err := ReadUint8(rd)
	return float32(v) * 360 / 256, err
}

// readFull reads exactly len(b) bytes, an ending stream
// fails with proto.ErrTruncatedInput.
func readFull(rd io.Reader, b []byte) error {
	_, err := io.ReadFull(rd, b)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: want %d bytes: %w", proto.ErrTruncatedInput, len(b), io.ErrUnexpectedEOF)
	}
	return err
}
