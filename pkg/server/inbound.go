package server

import (
	"net"

	"github.com/rs/xid"

	"go.minekube.com/mcwire/pkg/proto"
	"go.minekube.com/mcwire/pkg/util/netutil"
)

type inbound struct {
	id          xid.ID
	remoteAddr  net.Addr
	protocol    proto.Protocol
	virtualHost net.Addr
}

var _ Inbound = (*inbound)(nil)

func (i *inbound) ID() xid.ID               { return i.id }
func (i *inbound) RemoteAddr() net.Addr     { return i.remoteAddr }
func (i *inbound) Protocol() proto.Protocol { return i.protocol }
func (i *inbound) VirtualHost() net.Addr    { return i.virtualHost }

func virtualHost(host string, port uint16) net.Addr {
	return netutil.NewAddr("tcp", host, port)
}
