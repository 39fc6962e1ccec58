package util

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"testing"

	pk "github.com/Tnze/go-mc/net/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.minekube.com/mcwire/pkg/proto"
)

func TestVarInt_Minimal(t *testing.T) {
	tests := []struct {
		val  uint32
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{255, []byte{0xFF, 0x01}},
		{754, []byte{0xF2, 0x05}},
		{25565, []byte{0xDD, 0xC7, 0x01}},
		{2097151, []byte{0xFF, 0xFF, 0x7F}},
		{math.MaxInt32, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x07}},
		{math.MaxUint32, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}},
		{uint32(0xFFFFFF00), []byte{0x80, 0xFE, 0xFF, 0xFF, 0x0F}}, // int32(-256)
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.val), func(t *testing.T) {
			buf := new(bytes.Buffer)
			require.NoError(t, WriteVarInt(buf, tt.val))
			assert.Equal(t, tt.want, buf.Bytes())
			assert.Equal(t, tt.want, AppendVarInt(nil, tt.val))
			assert.Equal(t, len(tt.want), VarIntSize(tt.val))

			v, n, err := ReadVarIntReturnN(bytes.NewReader(tt.want))
			require.NoError(t, err)
			assert.Equal(t, tt.val, v)
			assert.Equal(t, len(tt.want), n)
		})
	}
}

func TestVarInt_RoundTrip(t *testing.T) {
	check := func(v uint32) {
		b := AppendVarInt(nil, v)
		got, n, err := ReadVarIntReturnN(bytes.NewReader(b))
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Equal(t, len(b), n)
	}
	// every group boundary
	for shift := 0; shift < 32; shift++ {
		p := uint32(1) << shift
		check(p - 1)
		check(p)
		check(p + 1)
	}
	check(math.MaxUint32)
	// strided sweep over the whole domain
	const stride = 65521
	for v := uint64(0); v <= math.MaxUint32; v += stride {
		check(uint32(v))
	}
}

func TestVarInt_MatchesGoMC(t *testing.T) {
	for _, v := range []int32{0, 1, 2, 127, 128, 255, 25565, 2097151, math.MaxInt32, -1, -256, math.MinInt32} {
		want := new(bytes.Buffer)
		_, err := pk.VarInt(v).WriteTo(want)
		require.NoError(t, err)
		assert.Equal(t, want.Bytes(), AppendVarInt(nil, uint32(v)), "value %d", v)
	}
}

func TestReadVarInt_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		n     int
	}{
		{"five continuation bytes", []byte{0x80, 0x80, 0x80, 0x80, 0x80}, 5},
		{"six bytes", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}, 5},
		{"overflow", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x1F}, 5},
		{"empty", nil, 0},
		{"ends after continuation", []byte{0x80}, 1},
		{"ends after three", []byte{0xFF, 0xFF, 0xFF}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, n, err := ReadVarIntReturnN(bytes.NewReader(tt.input))
			require.ErrorIs(t, err, proto.ErrMalformedVarInt)
			assert.Equal(t, tt.n, n)
		})
	}
}

func TestReadVarInt_EndingStreamWrapsUnexpectedEOF(t *testing.T) {
	_, err := ReadVarInt(bytes.NewReader([]byte{0x80, 0x80}))
	require.ErrorIs(t, err, proto.ErrMalformedVarInt)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

type onlyReader struct{ io.Reader }

func TestReadVarInt_NonByteReader(t *testing.T) {
	v, err := ReadVarInt(onlyReader{bytes.NewReader([]byte{0xDD, 0xC7, 0x01, 0xAA})})
	require.NoError(t, err)
	assert.EqualValues(t, 25565, v)

	_, err = ReadVarInt(onlyReader{bytes.NewReader([]byte{0xDD})})
	require.ErrorIs(t, err, proto.ErrMalformedVarInt)
}

func TestReadVarInt_TransportErrorPassesThrough(t *testing.T) {
	boom := fmt.Errorf("boom")
	_, err := ReadVarInt(onlyReader{io.MultiReader(bytes.NewReader([]byte{0x80}), errReader{boom})})
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, proto.ErrMalformedVarInt)
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func TestVarLong(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 1 << 35, math.MaxInt64, math.MaxUint64} {
		buf := new(bytes.Buffer)
		require.NoError(t, WriteVarLong(buf, v))

		want := new(bytes.Buffer)
		_, err := pk.VarLong(int64(v)).WriteTo(want)
		require.NoError(t, err)
		assert.Equal(t, want.Bytes(), buf.Bytes())

		got, err := ReadVarLong(buf)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	_, err := ReadVarLong(bytes.NewReader(bytes.Repeat([]byte{0x80}, 10)))
	require.ErrorIs(t, err, proto.ErrMalformedVarInt)
}
