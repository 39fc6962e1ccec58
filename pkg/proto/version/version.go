// Package version names the Minecraft Java edition protocol versions
// known to the handshake. The handshake and status packets are identical
// across all of them, the number is only passed through.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"go.minekube.com/mcwire/pkg/proto"
)

var (
	Unknown          = &proto.Version{Protocol: -1, Names: s("Unknown")}
	Minecraft_1_7_2  = &proto.Version{Protocol: 4, Names: s("1.7.2", "1.7.3", "1.7.4", "1.7.5")}
	Minecraft_1_7_6  = &proto.Version{Protocol: 5, Names: s("1.7.6", "1.7.7", "1.7.8", "1.7.9", "1.7.10")}
	Minecraft_1_8    = &proto.Version{Protocol: 47, Names: s("1.8", "1.8.1", "1.8.2", "1.8.3", "1.8.4", "1.8.5", "1.8.6", "1.8.7", "1.8.8", "1.8.9")}
	Minecraft_1_9    = &proto.Version{Protocol: 107, Names: s("1.9")}
	Minecraft_1_9_4  = &proto.Version{Protocol: 110, Names: s("1.9.3", "1.9.4")}
	Minecraft_1_10   = &proto.Version{Protocol: 210, Names: s("1.10", "1.10.1", "1.10.2")}
	Minecraft_1_11   = &proto.Version{Protocol: 315, Names: s("1.11")}
	Minecraft_1_12_2 = &proto.Version{Protocol: 340, Names: s("1.12.2")}
	Minecraft_1_13   = &proto.Version{Protocol: 393, Names: s("1.13")}
	Minecraft_1_13_2 = &proto.Version{Protocol: 404, Names: s("1.13.2")}
	Minecraft_1_14   = &proto.Version{Protocol: 477, Names: s("1.14")}
	Minecraft_1_15   = &proto.Version{Protocol: 573, Names: s("1.15")}
	Minecraft_1_16   = &proto.Version{Protocol: 735, Names: s("1.16")}
	Minecraft_1_16_4 = &proto.Version{Protocol: 754, Names: s("1.16.4", "1.16.5")}
	Minecraft_1_17   = &proto.Version{Protocol: 755, Names: s("1.17")}
	Minecraft_1_18   = &proto.Version{Protocol: 757, Names: s("1.18", "1.18.1")}
	Minecraft_1_18_2 = &proto.Version{Protocol: 758, Names: s("1.18.2")}
	Minecraft_1_19   = &proto.Version{Protocol: 759, Names: s("1.19")}
	Minecraft_1_19_1 = &proto.Version{Protocol: 760, Names: s("1.19.1", "1.19.2")}
	Minecraft_1_19_3 = &proto.Version{Protocol: 761, Names: s("1.19.3")}
	Minecraft_1_19_4 = &proto.Version{Protocol: 762, Names: s("1.19.4")}
	Minecraft_1_20   = &proto.Version{Protocol: 763, Names: s("1.20", "1.20.1")}
	Minecraft_1_20_2 = &proto.Version{Protocol: 764, Names: s("1.20.2")}
	Minecraft_1_20_3 = &proto.Version{Protocol: 765, Names: s("1.20.3", "1.20.4")}
	Minecraft_1_20_5 = &proto.Version{Protocol: 766, Names: s("1.20.5", "1.20.6")}
	Minecraft_1_21   = &proto.Version{Protocol: 767, Names: s("1.21", "1.21.1")}
	Minecraft_1_21_2 = &proto.Version{Protocol: 768, Names: s("1.21.2", "1.21.3")}
	Minecraft_1_21_4 = &proto.Version{Protocol: 769, Names: s("1.21.4")}
	Minecraft_1_21_5 = &proto.Version{Protocol: 770, Names: s("1.21.5")}
	Minecraft_1_21_6 = &proto.Version{Protocol: 771, Names: s("1.21.6")}
	Minecraft_1_21_7 = &proto.Version{Protocol: 772, Names: s("1.21.7", "1.21.8")}

	// Versions ordered from lowest to highest
	Versions = []*proto.Version{
		Minecraft_1_7_2, Minecraft_1_7_6,
		Minecraft_1_8,
		Minecraft_1_9, Minecraft_1_9_4,
		Minecraft_1_10,
		Minecraft_1_11,
		Minecraft_1_12_2,
		Minecraft_1_13, Minecraft_1_13_2,
		Minecraft_1_14,
		Minecraft_1_15,
		Minecraft_1_16, Minecraft_1_16_4,
		Minecraft_1_17,
		Minecraft_1_18, Minecraft_1_18_2,
		Minecraft_1_19, Minecraft_1_19_1, Minecraft_1_19_3, Minecraft_1_19_4,
		Minecraft_1_20, Minecraft_1_20_2, Minecraft_1_20_3, Minecraft_1_20_5,
		Minecraft_1_21, Minecraft_1_21_2, Minecraft_1_21_4, Minecraft_1_21_5, Minecraft_1_21_6, Minecraft_1_21_7,
	}
)

var (
	ProtocolToVersion = func() map[proto.Protocol]*proto.Version {
		m := make(map[proto.Protocol]*proto.Version, len(Versions))
		for _, v := range Versions {
			m[v.Protocol] = v
		}
		return m
	}()
	nameToVersion = func() map[string]*proto.Version {
		m := make(map[string]*proto.Version)
		for _, v := range Versions {
			for _, n := range v.Names {
				m[n] = v
			}
		}
		return m
	}()

	// MinimumVersion is the lowest known version.
	MinimumVersion = Versions[0]
	// MaximumVersion is the highest known version.
	MaximumVersion = Versions[len(Versions)-1]
)

// Protocol is proto.Protocol with additional methods for Java edition.
type Protocol proto.Protocol

// Version gets the Version by the protocol id
// or returns the Unknown version if not found.
func (p Protocol) Version() *proto.Version {
	v, ok := ProtocolToVersion[proto.Protocol(p)]
	if !ok {
		v = Unknown
	}
	return v
}

func (p Protocol) String() string {
	v := p.Version()
	if v == Unknown {
		return strconv.Itoa(int(p))
	}
	return fmt.Sprintf("%s(%d)", v.String(), p)
}

// Unknown reports whether the protocol number is not a known version.
func (p Protocol) Unknown() bool {
	return p.Version() == Unknown
}

// Parse accepts a version name like "1.20.4" or a protocol number like "765".
// Unknown protocol numbers are accepted and returned as is.
func Parse(s string) (proto.Protocol, error) {
	s = strings.TrimSpace(s)
	if v, ok := nameToVersion[s]; ok {
		return v.Protocol, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("unknown version %q, expected a name like %q or a protocol number",
			s, MaximumVersion.LastName())
	}
	return proto.Protocol(n), nil
}

// helper func
func s(s ...string) []string { return s }
