package ping

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"go.minekube.com/common/minecraft/component"
	"go.minekube.com/common/minecraft/component/codec"
	"go.minekube.com/common/minecraft/component/codec/legacy"

	"go.minekube.com/mcwire/pkg/proto"
	"go.minekube.com/mcwire/pkg/proto/version"
)

var (
	// Json component codec supporting pre-1.16 clients
	jsonCodecPre116 = &codec.Json{}
	// Json component codec for 1.16+ clients emitting RGB colors
	jsonCodecModern = &codec.Json{
		NoDownsampleColor: true,
		NoLegacyHover:     true,
	}
	plainCodec = &codec.Plain{}
)

// JsonCodec returns the text component codec for the given protocol version.
// Colors are downsampled for clients that do not support RGB.
func JsonCodec(protocol proto.Protocol) codec.Codec {
	if protocol.GreaterEqual(version.Minecraft_1_16) {
		return jsonCodecModern
	}
	return jsonCodecPre116
}

// ParseText parses a text component from a json document
// or legacy text using '§' or '&' color codes.
func ParseText(protocol proto.Protocol, s string) (*component.Text, error) {
	var (
		c   component.Component
		err error
	)
	if strings.HasPrefix(strings.TrimSpace(s), "{") {
		c, err = JsonCodec(protocol).Unmarshal([]byte(s))
	} else if strings.HasPrefix(strings.TrimSpace(s), `"`) {
		// a plain json string is allowed as description
		var str string
		if err = json.Unmarshal([]byte(s), &str); err != nil {
			return nil, err
		}
		return ParseText(protocol, str)
	} else {
		c, err = (&legacy.Legacy{Char: pickLegacyChar(s)}).Unmarshal([]byte(s))
	}
	if err != nil {
		return nil, err
	}
	t, ok := c.(*component.Text)
	if !ok {
		return nil, errors.New("invalid text component")
	}
	return t, nil
}

func pickLegacyChar(s string) rune {
	if strings.ContainsRune(s, legacy.DefaultChar) {
		return legacy.DefaultChar
	}
	return legacy.AmpersandChar
}

// MarshalText marshals a text component into json for protocol.
func MarshalText(protocol proto.Protocol, t *component.Text) ([]byte, error) {
	buf := new(bytes.Buffer)
	err := JsonCodec(protocol).Marshal(buf, t)
	return buf.Bytes(), err
}

// MarshalLegacy marshals a text component into legacy text using '§' codes.
func MarshalLegacy(t *component.Text) (string, error) {
	b := new(strings.Builder)
	err := (&legacy.Legacy{}).Marshal(b, t)
	return b.String(), err
}

// MarshalPlain marshals a text component into plain text without formatting.
func MarshalPlain(t *component.Text) (string, error) {
	b := new(strings.Builder)
	err := plainCodec.Marshal(b, t)
	return b.String(), err
}
