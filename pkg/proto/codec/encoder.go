package codec

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-logr/logr"

	"go.minekube.com/mcwire/pkg/proto"
	"go.minekube.com/mcwire/pkg/proto/state"
	"go.minekube.com/mcwire/pkg/proto/util"
)

// Encoder is a synchronized packet encoder.
type Encoder struct {
	direction proto.Direction
	log       logr.Logger
	hexDump   bool // for debugging

	mu       sync.Mutex // Protects following fields
	wr       io.Writer  // the underlying writer to write successfully encoded packets to
	registry *state.PacketRegistry
	state    *state.Registry
}

// NewEncoder returns an encoder writing packets bound to direction
// to w, starting in the handshake state.
func NewEncoder(w io.Writer, direction proto.Direction, log logr.Logger) *Encoder {
	return &Encoder{
		log:       log.WithName("encoder"),
		hexDump:   os.Getenv("HEXDUMP") == "true",
		wr:        w,
		direction: direction,
		registry:  state.FromDirection(direction, state.Handshake),
		state:     state.Handshake,
	}
}

var bufPool = sync.Pool{New: func() any { return new(bytes.Buffer) }}

// WritePacket encodes the packet, frames it and writes
// the frame with a single write to the underlying writer.
func (e *Encoder) WritePacket(packet proto.Packet) (n int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufPool.Put(buf)

	packetID, err := marshal(buf, e.registry, packet)
	if err != nil {
		return 0, err
	}

	if e.log.V(1).Enabled() { // check enabled for performance reason
		ctx := &proto.PacketContext{
			Direction: e.direction,
			State:     e.state.State,
			PacketID:  packetID,
			Packet:    packet,
		}
		e.log.V(1).Info("encoded packet", "context", ctx.String(), "bytes", buf.Len())
		if e.hexDump {
			fmt.Println(hex.Dump(buf.Bytes()))
		}
	}

	return e.writeFrame(buf.Bytes()) // packet id + data
}

// Write frames payload and writes it to the underlying writer.
// The payload must start with the packet's id VarInt and then the packet's data.
func (e *Encoder) Write(payload []byte) (n int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writeFrame(payload)
}

func (e *Encoder) writeFrame(payload []byte) (int, error) {
	frame := make([]byte, 0, util.MaxVarIntLen+len(payload))
	return e.wr.Write(AppendFrame(frame, payload))
}

// SetState switches the registry packets are encoded with.
func (e *Encoder) SetState(s *state.Registry) {
	e.mu.Lock()
	e.state = s
	e.registry = state.FromDirection(e.direction, s)
	e.mu.Unlock()
}
