// Package ping models the json document of a server list ping
// status response.
package ping

import (
	"encoding/json"
	"fmt"

	"go.minekube.com/common/minecraft/component"
	"gopkg.in/yaml.v3"

	"go.minekube.com/mcwire/pkg/proto"
	"go.minekube.com/mcwire/pkg/util/favicon"
	"go.minekube.com/mcwire/pkg/util/uuid"
)

// ServerPing is a 1.7 and above server list ping response.
type ServerPing struct {
	Version     Version         `json:"version,omitempty" yaml:"version,omitempty"`
	Players     *Players        `json:"players,omitempty" yaml:"players,omitempty"`
	Description *component.Text `json:"description" yaml:"description"`
	Favicon     favicon.Favicon `json:"favicon,omitempty" yaml:"favicon,omitempty"`
	// EnforcesSecureChat is sent by 1.19+ servers.
	EnforcesSecureChat bool `json:"enforcesSecureChat,omitempty" yaml:"enforcesSecureChat,omitempty"`
}

// Make sure ServerPing implements the interfaces at compile time.
var (
	_ json.Marshaler   = (*ServerPing)(nil)
	_ json.Unmarshaler = (*ServerPing)(nil)

	_ yaml.Marshaler   = (*ServerPing)(nil)
	_ yaml.Unmarshaler = (*ServerPing)(nil)
)

func (p *ServerPing) MarshalJSON() ([]byte, error) {
	desc := p.Description
	if desc == nil {
		desc = &component.Text{}
	}
	b, err := MarshalText(p.Version.Protocol, desc)
	if err != nil {
		return nil, fmt.Errorf("error encoding description: %w", err)
	}

	type Alias ServerPing
	return json.Marshal(&struct {
		Description json.RawMessage `json:"description"`
		*Alias
	}{
		Description: b,
		Alias:       (*Alias)(p),
	})
}

func (p *ServerPing) UnmarshalJSON(data []byte) error {
	type Alias ServerPing
	out := &struct {
		Alias
		Description json.RawMessage `json:"description"` // override description type
	}{}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("error decoding json: %w", err)
	}

	// Handle null or missing description
	if len(out.Description) == 0 || string(out.Description) == "null" {
		out.Alias.Description = &component.Text{} // empty component
	} else {
		var err error
		out.Alias.Description, err = ParseText(out.Version.Protocol, string(out.Description))
		if err != nil {
			return fmt.Errorf("error decoding description: %w", err)
		}
	}

	*p = ServerPing(out.Alias)
	return nil
}

// yamlServerPing is the yaml form of ServerPing
// with the description as legacy text.
type yamlServerPing struct {
	Version            Version         `yaml:"version,omitempty"`
	Players            *Players        `yaml:"players,omitempty"`
	Description        string          `yaml:"description"`
	Favicon            favicon.Favicon `yaml:"favicon,omitempty"`
	EnforcesSecureChat bool            `yaml:"enforcesSecureChat,omitempty"`
}

func (p *ServerPing) UnmarshalYAML(value *yaml.Node) error {
	out := new(yamlServerPing)
	if err := value.Decode(out); err != nil {
		return fmt.Errorf("error decoding yaml: %w", err)
	}
	desc, err := ParseText(out.Version.Protocol, out.Description)
	if err != nil {
		return fmt.Errorf("error decoding description: %w", err)
	}
	*p = ServerPing{
		Version:            out.Version,
		Players:            out.Players,
		Description:        desc,
		Favicon:            out.Favicon,
		EnforcesSecureChat: out.EnforcesSecureChat,
	}
	return nil
}

func (p *ServerPing) MarshalYAML() (any, error) {
	desc := p.Description
	if desc == nil {
		desc = &component.Text{}
	}
	s, err := MarshalLegacy(desc)
	if err != nil {
		return nil, fmt.Errorf("error encoding description: %w", err)
	}
	return &yamlServerPing{
		Version:            p.Version,
		Players:            p.Players,
		Description:        s,
		Favicon:            p.Favicon,
		EnforcesSecureChat: p.EnforcesSecureChat,
	}, nil
}

type Version struct {
	Protocol proto.Protocol `json:"protocol" yaml:"protocol"`
	Name     string         `json:"name" yaml:"name"`
}

type Players struct {
	Online int            `json:"online" yaml:"online"`
	Max    int            `json:"max" yaml:"max"`
	Sample []SamplePlayer `json:"sample,omitempty" yaml:"sample,omitempty"`
}

type SamplePlayer struct {
	Name string    `json:"name" yaml:"name"`
	ID   uuid.UUID `json:"id" yaml:"id"`
}

// Decode parses the status json received in a status response.
func Decode(status string) (*ServerPing, error) {
	p := new(ServerPing)
	if err := json.Unmarshal([]byte(status), p); err != nil {
		return nil, err
	}
	return p, nil
}

// Encode returns the status json to send in a status response.
func (p *ServerPing) Encode() (string, error) {
	b, err := json.Marshal(p)
	return string(b), err
}
