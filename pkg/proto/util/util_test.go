package util

import (
	"bytes"
	"math"
	"strings"
	"testing"

	pk "github.com/Tnze/go-mc/net/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.minekube.com/mcwire/pkg/proto"
	"go.minekube.com/mcwire/pkg/util/uuid"
)

func TestString(t *testing.T) {
	for _, s := range []string{"", "localhost", "play.example.com", "§aGr€€n ✓", strings.Repeat("x", 300)} {
		buf := new(bytes.Buffer)
		require.NoError(t, WriteString(buf, s))

		want := new(bytes.Buffer)
		_, err := pk.String(s).WriteTo(want)
		require.NoError(t, err)
		require.Equal(t, want.Bytes(), buf.Bytes())

		got, err := ReadString(buf)
		require.NoError(t, err)
		assert.Equal(t, s, got)
		assert.Zero(t, buf.Len(), "must consume exactly the declared length")
	}
}

func TestReadString_Errors(t *testing.T) {
	t.Run("invalid utf8", func(t *testing.T) {
		_, err := ReadString(bytes.NewReader([]byte{0x02, 0xC3, 0x28}))
		require.ErrorIs(t, err, proto.ErrInvalidUTF8)
	})
	t.Run("truncated", func(t *testing.T) {
		_, err := ReadString(bytes.NewReader([]byte{0x09, 'l', 'o', 'c'}))
		require.ErrorIs(t, err, proto.ErrTruncatedInput)
	})
	t.Run("declared length above max", func(t *testing.T) {
		// 5*4+1 bytes declared for a 5 character string
		_, err := ReadStringMax(bytes.NewReader([]byte{21}), 5)
		require.ErrorIs(t, err, proto.ErrStringTooLong)
	})
	t.Run("huge declared length is rejected before reading", func(t *testing.T) {
		_, err := ReadString(bytes.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}))
		require.ErrorIs(t, err, proto.ErrStringTooLong)
	})
	t.Run("too many characters", func(t *testing.T) {
		buf := new(bytes.Buffer)
		require.NoError(t, WriteString(buf, "abcdef"))
		_, err := ReadStringMax(buf, 5)
		require.ErrorIs(t, err, proto.ErrStringTooLong)
	})
	t.Run("malformed length", func(t *testing.T) {
		_, err := ReadString(bytes.NewReader([]byte{0x80}))
		require.ErrorIs(t, err, proto.ErrMalformedVarInt)
	})
}

func TestWriteString_Errors(t *testing.T) {
	require.ErrorIs(t, WriteString(new(bytes.Buffer), string([]byte{0xff})), proto.ErrInvalidUTF8)
	require.ErrorIs(t, WriteStringMax(new(bytes.Buffer), "toolong", 3), proto.ErrStringTooLong)
}

func TestFixedWidth(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, WriteBool(buf, true))
	require.NoError(t, WriteInt8(buf, -5))
	require.NoError(t, WriteUint8(buf, 200))
	require.NoError(t, WriteInt16(buf, math.MinInt16))
	require.NoError(t, WriteUint16(buf, 25565))
	require.NoError(t, WriteInt32(buf, -123456))
	require.NoError(t, WriteUint32(buf, math.MaxUint32))
	require.NoError(t, WriteInt64(buf, math.MinInt64))
	require.NoError(t, WriteUint64(buf, math.MaxUint64))
	require.NoError(t, WriteFloat32(buf, 3.5))
	require.NoError(t, WriteFloat64(buf, -0.125))

	require.Equal(t, 1+1+1+2+2+4+4+8+8+4+8, buf.Len())

	b, err := ReadBool(buf)
	require.NoError(t, err)
	assert.True(t, b)
	i8, err := ReadInt8(buf)
	require.NoError(t, err)
	assert.EqualValues(t, -5, i8)
	u8, err := ReadUint8(buf)
	require.NoError(t, err)
	assert.EqualValues(t, 200, u8)
	i16, err := ReadInt16(buf)
	require.NoError(t, err)
	assert.EqualValues(t, math.MinInt16, i16)
	u16, err := ReadUint16(buf)
	require.NoError(t, err)
	assert.EqualValues(t, 25565, u16)
	i32, err := ReadInt32(buf)
	require.NoError(t, err)
	assert.EqualValues(t, -123456, i32)
	u32, err := ReadUint32(buf)
	require.NoError(t, err)
	assert.EqualValues(t, uint32(math.MaxUint32), u32)
	i64, err := ReadInt64(buf)
	require.NoError(t, err)
	assert.EqualValues(t, int64(math.MinInt64), i64)
	u64, err := ReadUint64(buf)
	require.NoError(t, err)
	assert.EqualValues(t, uint64(math.MaxUint64), u64)
	f32, err := ReadFloat32(buf)
	require.NoError(t, err)
	assert.Equal(t, float32(3.5), f32)
	f64, err := ReadFloat64(buf)
	require.NoError(t, err)
	assert.Equal(t, -0.125, f64)
}

func TestUint16_BigEndian(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, WriteUint16(buf, 25565))
	assert.Equal(t, []byte{0x63, 0xDD}, buf.Bytes())
}

func TestReadBool_Lenient(t *testing.T) {
	for _, b := range []byte{0x01, 0x02, 0x7F, 0xFF} {
		v, err := ReadBool(bytes.NewReader([]byte{b}))
		require.NoError(t, err)
		assert.True(t, v)
	}
	v, err := ReadBool(bytes.NewReader([]byte{0x00}))
	require.NoError(t, err)
	assert.False(t, v)

	buf := new(bytes.Buffer)
	require.NoError(t, WriteBool(buf, true))
	assert.Equal(t, []byte{0x01}, buf.Bytes())
}

func TestTruncatedFixedWidth(t *testing.T) {
	_, err := ReadUint16(bytes.NewReader([]byte{0x01}))
	require.ErrorIs(t, err, proto.ErrTruncatedInput)
	_, err = ReadInt32(bytes.NewReader([]byte{0x01, 0x02, 0x03}))
	require.ErrorIs(t, err, proto.ErrTruncatedInput)
	_, err = ReadInt64(bytes.NewReader(nil))
	require.ErrorIs(t, err, proto.ErrTruncatedInput)
	_, err = ReadBool(bytes.NewReader(nil))
	require.ErrorIs(t, err, proto.ErrTruncatedInput)
	_, err = ReadUUID(bytes.NewReader(make([]byte, 15)))
	require.ErrorIs(t, err, proto.ErrTruncatedInput)
}

func TestBytes(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, WriteBytes(buf, []byte{0xff, 0x00, 0xfe}))
	assert.Equal(t, []byte{0x03, 0xff, 0x00, 0xfe}, buf.Bytes())
	got, err := ReadBytes(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0x00, 0xfe}, got)

	_, err = ReadBytesLen(bytes.NewReader([]byte{0x05, 1, 2, 3, 4, 5}), 4)
	require.ErrorIs(t, err, proto.ErrStringTooLong)
}

func TestUUID(t *testing.T) {
	id := uuid.OfflinePlayerUUID("Notch")
	buf := new(bytes.Buffer)
	require.NoError(t, WriteUUID(buf, id))
	assert.Equal(t, id[:], buf.Bytes())
	got, err := ReadUUID(buf)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestPosition(t *testing.T) {
	tests := []struct{ x, y, z int }{
		{0, 0, 0},
		{18357644, 831, -20882616},
		{-1, -1, -1},
		{-33554432, -2048, 33554431},
	}
	for _, tt := range tests {
		buf := new(bytes.Buffer)
		require.NoError(t, WritePosition(buf, tt.x, tt.y, tt.z))
		x, y, z, err := ReadPosition(buf)
		require.NoError(t, err)
		assert.Equal(t, tt, struct{ x, y, z int }{x, y, z})
	}

	// wiki.vg example
	buf := new(bytes.Buffer)
	require.NoError(t, WritePosition(buf, 18357644, 831, -20882616))
	assert.Equal(t, []byte{0b01000110, 0b00000111, 0b01100011, 0b00101100, 0b00010101, 0b10110100, 0b10000011, 0b00111111}, buf.Bytes())
}

func TestAngle(t *testing.T) {
	for steps := 0; steps < 256; steps++ {
		buf := new(bytes.Buffer)
		deg := float32(steps) * 360 / 256
		require.NoError(t, WriteAngle(buf, deg))
		require.Equal(t, []byte{byte(steps)}, buf.Bytes())
		got, err := ReadAngle(buf)
		require.NoError(t, err)
		require.Equal(t, deg, got)
	}
	buf := new(bytes.Buffer)
	require.NoError(t, WriteAngle(buf, 360))
	assert.Equal(t, []byte{0x00}, buf.Bytes())
}
