package util

import (
	"errors"
	"fmt"
	"io"

	"go.minekube.com/mcwire/pkg/proto"
)

// Encoding limits of variable length integers.
const (
	MaxVarIntLen  = 5
	MaxVarLongLen = 10
)

// WriteVarInt writes val as minimal length VarInt.
// Negative int32 values should be passed as uint32(int32(v))
// and are written as their two's complement.
func WriteVarInt(wr io.Writer, val uint32) error {
	var buf [MaxVarIntLen]byte
	_, err := wr.Write(AppendVarInt(buf[:0], val))
	return err
}

// AppendVarInt appends the VarInt encoding of val to b.
func AppendVarInt(b []byte, val uint32) []byte {
	for val >= 0x80 {
		b = append(b, byte(val)|0x80)
		val >>= 7
	}
	return append(b, byte(val))
}

// VarIntSize returns the number of bytes val occupies as VarInt.
func VarIntSize(val uint32) int {
	n := 1
	for val >= 0x80 {
		val >>= 7
		n++
	}
	return n
}

// ReadVarInt reads a VarInt.
func ReadVarInt(rd io.Reader) (uint32, error) {
	v, _, err := ReadVarIntReturnN(rd)
	return v, err
}

// ReadVarIntReturnN reads a VarInt and returns the number of bytes consumed
// from rd, which is also set when an error is returned.
//
// The input ending before the terminating byte, a fifth byte with the
// continuation bit set or a fifth byte carrying bits above bit 31
// all fail with proto.ErrMalformedVarInt.
func ReadVarIntReturnN(rd io.Reader) (result uint32, n int, err error) {
	for i := 0; i < MaxVarIntLen; i++ {
		b, err := readByte(rd)
		if err != nil {
			return 0, n, varIntReadErr(err)
		}
		n++
		if i == MaxVarIntLen-1 {
			if b&0x80 != 0 {
				return 0, n, fmt.Errorf("%w: continuation bit set on byte %d", proto.ErrMalformedVarInt, n)
			}
			if b&0x70 != 0 {
				return 0, n, fmt.Errorf("%w: value overflows 32 bits", proto.ErrMalformedVarInt)
			}
		}
		result |= uint32(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return result, n, nil
		}
	}
	// unreachable, the last iteration always returns
	return 0, n, proto.ErrMalformedVarInt
}

// WriteVarLong writes val as minimal length VarLong.
func WriteVarLong(wr io.Writer, val uint64) error {
	var buf [MaxVarLongLen]byte
	_, err := wr.Write(AppendVarLong(buf[:0], val))
	return err
}

// AppendVarLong appends the VarLong encoding of val to b.
func AppendVarLong(b []byte, val uint64) []byte {
	for val >= 0x80 {
		b = append(b, byte(val)|0x80)
		val >>= 7
	}
	return append(b, byte(val))
}

// ReadVarLong reads a VarLong of at most 10 bytes.
func ReadVarLong(rd io.Reader) (result uint64, err error) {
	for i := 0; i < MaxVarLongLen; i++ {
		b, err := readByte(rd)
		if err != nil {
			return 0, varIntReadErr(err)
		}
		if i == MaxVarLongLen-1 && b&0xFE != 0 {
			return 0, fmt.Errorf("%w: varlong too big", proto.ErrMalformedVarInt)
		}
		result |= uint64(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return result, nil
		}
	}
	return 0, proto.ErrMalformedVarInt
}

// varIntReadErr classifies an error of the underlying reader.
// An ending stream makes the VarInt malformed, other errors
// (deadlines, closed connections) are passed through.
func varIntReadErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", proto.ErrMalformedVarInt, io.ErrUnexpectedEOF)
	}
	return err
}

func readByte(rd io.Reader) (byte, error) {
	if br, ok := rd.(io.ByteReader); ok {
		return br.ReadByte()
	}
	var b [1]byte
	if _, err := io.ReadFull(rd, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}
