// Package codec serializes packets to their payload bytes using the
// field layout each packet declares, and frames payloads for the wire.
package codec

import (
	"bytes"
	"errors"
	"fmt"

	"go.minekube.com/mcwire/pkg/proto"
	"go.minekube.com/mcwire/pkg/proto/state"
	"go.minekube.com/mcwire/pkg/proto/util"
)

// Marshal encodes p as payload of the registry's state and direction:
// the packet id as VarInt followed by every field in declared order.
// A packet type not registered fails with proto.ErrIllegalPacketForState.
func Marshal(reg *state.PacketRegistry, p proto.Packet) ([]byte, error) {
	buf := new(bytes.Buffer)
	if _, err := marshal(buf, reg, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshal(buf *bytes.Buffer, reg *state.PacketRegistry, p proto.Packet) (proto.PacketID, error) {
	id, found := reg.PacketID(p)
	if !found {
		return -1, &proto.PacketError{
			State:     reg.State,
			Direction: reg.Direction,
			ID:        -1,
			Type:      proto.TypeOf(p),
			Err:       proto.ErrIllegalPacketForState,
		}
	}
	_ = util.WriteVarInt(buf, uint32(id))
	for i, f := range p.Fields() {
		if err := f.Encode(buf); err != nil {
			return id, fmt.Errorf("error encoding field %d (%s) of %T: %w", i, f.Kind(), p, err)
		}
	}
	return id, nil
}

// Unmarshal decodes a payload received in the registry's state and direction.
//
// An id without a registered packet fails with proto.ErrUnknownPacketID.
// A payload shorter or longer than the packet's fields fails with
// proto.ErrSchemaMismatch. A partially decoded packet is never returned.
func Unmarshal(reg *state.PacketRegistry, payload []byte) (*proto.PacketContext, error) {
	rd := bytes.NewReader(payload)
	id, err := util.ReadVarInt(rd)
	if err != nil {
		return nil, fmt.Errorf("error reading packet id: %w", err)
	}
	ctx := &proto.PacketContext{
		Direction: reg.Direction,
		State:     reg.State,
		PacketID:  proto.PacketID(id),
		Payload:   payload,
		Size:      util.VarIntSize(uint32(len(payload))) + len(payload),
	}
	p := reg.CreatePacket(ctx.PacketID)
	if p == nil {
		return nil, &proto.PacketError{
			State:     reg.State,
			Direction: reg.Direction,
			ID:        ctx.PacketID,
			Err:       proto.ErrUnknownPacketID,
		}
	}
	for i, f := range p.Fields() {
		if err = f.Decode(rd); err != nil {
			if errors.Is(err, proto.ErrTruncatedInput) || (errors.Is(err, proto.ErrMalformedVarInt) && rd.Len() == 0) {
				err = fmt.Errorf("%w: %w", proto.ErrSchemaMismatch, err)
			}
			return nil, &proto.PacketError{
				State:     reg.State,
				Direction: reg.Direction,
				ID:        ctx.PacketID,
				Type:      proto.TypeOf(p),
				Err:       fmt.Errorf("field %d (%s): %w", i, f.Kind(), err),
			}
		}
	}
	if rd.Len() != 0 {
		return nil, &proto.PacketError{
			State:     reg.State,
			Direction: reg.Direction,
			ID:        ctx.PacketID,
			Type:      proto.TypeOf(p),
			Err:       fmt.Errorf("%w: %d bytes left after last field", proto.ErrSchemaMismatch, rd.Len()),
		}
	}
	ctx.Packet = p
	return ctx, nil
}
