package packet

import (
	"go.minekube.com/mcwire/pkg/proto"
	"go.minekube.com/mcwire/pkg/proto/field"
)

type (
	StatusRequest  struct{}
	StatusResponse struct {
		Status string // JSON document
	}
	// StatusPing is sent by the client and echoed
	// back unchanged by the server as pong.
	StatusPing struct {
		RandomID int64
	}
)

func (*StatusRequest) Fields() []proto.Field {
	return nil // has no data
}

func (s *StatusResponse) Fields() []proto.Field {
	return []proto.Field{field.String(&s.Status)}
}

func (s *StatusPing) Fields() []proto.Field {
	return []proto.Field{field.Int64(&s.RandomID)}
}

var (
	_ proto.Packet = (*StatusRequest)(nil)
	_ proto.Packet = (*StatusResponse)(nil)
	_ proto.Packet = (*StatusPing)(nil)
)
