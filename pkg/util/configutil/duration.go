package configutil

import (
	"encoding"
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a configuration duration.
// It is a wrapper around time.Duration that implements the json and yaml interfaces.
//
//   - string is parsed using time.ParseDuration.
//   - numbers are interpreted as seconds.
type Duration time.Duration

// Make sure Duration implements the interfaces at compile time.
var (
	_ yaml.Marshaler   = (*Duration)(nil)
	_ yaml.Unmarshaler = (*Duration)(nil)
	_ json.Marshaler   = (*Duration)(nil)
	_ json.Unmarshaler = (*Duration)(nil)

	_ encoding.TextUnmarshaler = (*Duration)(nil)
)

// D returns the time.Duration.
func (d Duration) D() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var a any
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	return d.set(a)
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var a any
	if err := value.Decode(&a); err != nil {
		return err
	}
	return d.set(a)
}

func (d *Duration) UnmarshalText(text []byte) error {
	return d.set(string(text))
}

func (d *Duration) set(a any) error {
	switch v := a.(type) {
	case string:
		dur, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*d = Duration(dur)
	case float64:
		*d = Duration(v * float64(time.Second))
	case int:
		*d = Duration(time.Duration(v) * time.Second)
	case int64:
		*d = Duration(time.Duration(v) * time.Second)
	default:
		return fmt.Errorf("invalid duration type %T: %v", v, v)
	}
	return nil
}
