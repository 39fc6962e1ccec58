package codec

import (
	"errors"
	"fmt"
	"io"

	"go.minekube.com/mcwire/pkg/proto"
	"go.minekube.com/mcwire/pkg/proto/util"
	"go.minekube.com/mcwire/pkg/util/errs"
)

// DefaultMaxFrameSize is the largest payload length a
// 3 byte VarInt can declare, the limit vanilla servers enforce.
const DefaultMaxFrameSize = 1<<21 - 1

// Frame returns payload prefixed with its VarInt length.
// See https://wiki.vg/Protocol#Packet_format for details
func Frame(payload []byte) []byte {
	return AppendFrame(make([]byte, 0, util.VarIntSize(uint32(len(payload)))+len(payload)), payload)
}

// AppendFrame appends the frame of payload to b.
func AppendFrame(b, payload []byte) []byte {
	b = util.AppendVarInt(b, uint32(len(payload)))
	return append(b, payload...)
}

// Deframe reads the VarInt length of the next frame and then exactly
// that many payload bytes from rd. It blocks until the whole frame
// is read or the transport fails.
//
// A length above max fails with proto.ErrFrameTooLarge before the payload is
// allocated. If the transport ends or is closed before the frame is complete
// the error wraps proto.ErrConnectionClosed.
func Deframe(rd io.Reader, max int) ([]byte, error) {
	payload, _, err := readVarIntFrame(rd, max)
	return payload, err
}

// readVarIntFrame returns the payload and the total number of bytes read.
func readVarIntFrame(rd io.Reader, max int) (payload []byte, n int, err error) {
	length, n, err := util.ReadVarIntReturnN(rd)
	if err != nil {
		if n == 0 && errs.IsConnClosedErr(err) {
			// Stream ended cleanly in between frames.
			return nil, n, fmt.Errorf("%w: %w", proto.ErrConnectionClosed, io.EOF)
		}
		if errs.IsConnClosedErr(err) {
			return nil, n, fmt.Errorf("%w: reading frame length: %w", proto.ErrConnectionClosed, err)
		}
		return nil, n, fmt.Errorf("error reading frame length: %w", err)
	}
	if max <= 0 {
		max = DefaultMaxFrameSize
	}
	if uint64(length) > uint64(max) {
		return nil, n, fmt.Errorf("%w: received frame length %d, max. %d", proto.ErrFrameTooLarge, length, max)
	}

	payload = make([]byte, length)
	m, err := io.ReadFull(rd, payload)
	n += m
	if err != nil {
		if errs.IsConnClosedErr(err) || errors.Is(err, proto.ErrConnectionClosed) {
			return nil, n, fmt.Errorf("%w: got %d of %d payload bytes: %w", proto.ErrConnectionClosed, m, length, err)
		}
		return nil, n, fmt.Errorf("error reading payload: %w", err)
	}
	return payload, n, nil
}
