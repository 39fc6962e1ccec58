package codec

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-logr/logr"

	"go.minekube.com/mcwire/pkg/proto"
	"go.minekube.com/mcwire/pkg/proto/state"
	"go.minekube.com/mcwire/pkg/util/errs"
)

// Decoder is a synchronized packet decoder.
type Decoder struct {
	log       logr.Logger
	hexDump   bool // for debugging
	direction proto.Direction

	mu           sync.Mutex // Protects following field and locked while reading a packet.
	rd           io.Reader  // The underlying reader.
	registry     *state.PacketRegistry
	state        *state.Registry
	maxFrameSize int
}

// NewDecoder returns a decoder reading packets bound to direction
// from r, starting in the handshake state.
func NewDecoder(r io.Reader, direction proto.Direction, log logr.Logger) *Decoder {
	return &Decoder{
		rd:           r,
		direction:    direction,
		state:        state.Handshake,
		registry:     state.FromDirection(direction, state.Handshake),
		maxFrameSize: DefaultMaxFrameSize,
		log:          log.WithName("decoder"),
		hexDump:      os.Getenv("HEXDUMP") == "true",
	}
}

// SetState switches the registry received packets are decoded with.
func (d *Decoder) SetState(s *state.Registry) {
	d.mu.Lock()
	d.state = s
	d.registry = state.FromDirection(d.direction, s)
	d.mu.Unlock()
}

// SetMaxFrameSize sets the largest accepted frame length.
// Values <= 0 reset it to DefaultMaxFrameSize.
func (d *Decoder) SetMaxFrameSize(max int) {
	if max <= 0 {
		max = DefaultMaxFrameSize
	}
	d.mu.Lock()
	d.maxFrameSize = max
	d.mu.Unlock()
}

// Decode reads the next packet from the underlying reader.
// It blocks other calls to Decode until return.
func (d *Decoder) Decode() (ctx *proto.PacketContext, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readPacket()
}

func (d *Decoder) readPacket() (ctx *proto.PacketContext, err error) {
	if d.log.V(1).Enabled() { // check enabled for performance reason
		defer func() {
			if ctx != nil && ctx.KnownPacket() {
				d.log.V(1).Info("decoded packet", "context", ctx.String())
				if d.hexDump {
					fmt.Println(hex.Dump(ctx.Payload))
				}
			}
		}()
	}

	payload, n, err := readVarIntFrame(d.rd, d.maxFrameSize)
	if err != nil {
		return nil, errs.WrapSilent(err)
	}
	ctx, err = Unmarshal(d.registry, payload)
	if err != nil {
		return nil, errs.WrapSilent(fmt.Errorf("error decoding %d byte frame: %w", n, err))
	}
	ctx.Size = n
	return ctx, nil
}
