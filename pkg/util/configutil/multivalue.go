package configutil

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"gopkg.in/yaml.v3"
)

// SingleOrMulti is a type that can be either a single value or a slice of values.
type SingleOrMulti[T any] []T

var (
	_ yaml.Marshaler   = (*SingleOrMulti[string])(nil)
	_ yaml.Unmarshaler = (*SingleOrMulti[string])(nil)

	_ json.Marshaler   = (*SingleOrMulti[string])(nil)
	_ json.Unmarshaler = (*SingleOrMulti[string])(nil)
)

func (a *SingleOrMulti[T]) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var multi []T
		if err := value.Decode(&multi); err != nil {
			return err
		}
		*a = multi
		return nil
	}
	var single T
	if err := value.Decode(&single); err != nil {
		return err
	}
	*a = []T{single}
	return nil
}

func (a *SingleOrMulti[T]) UnmarshalJSON(b []byte) error {
	var multi []T
	if err := json.Unmarshal(b, &multi); err == nil {
		*a = multi
		return nil
	}
	var single T
	if err := json.Unmarshal(b, &single); err != nil {
		return err
	}
	*a = []T{single}
	return nil
}

func (a SingleOrMulti[T]) MarshalYAML() (any, error) {
	if a.IsMulti() {
		return []T(a), nil
	}
	return a.Single(), nil
}

func (a SingleOrMulti[T]) MarshalJSON() ([]byte, error) {
	if a.IsMulti() {
		return json.Marshal([]T(a))
	}
	return json.Marshal(a.Single())
}

// IsMulti reports whether more than one value is set.
func (a SingleOrMulti[T]) IsMulti() bool {
	return len(a) > 1
}

// Single returns the first value or the zero value.
func (a SingleOrMulti[T]) Single() T {
	if len(a) == 0 {
		var zero T
		return zero
	}
	return a[0]
}

func (a SingleOrMulti[T]) String() string {
	if a.IsMulti() {
		return fmt.Sprint([]T(a))
	}
	return fmt.Sprint(a.Single())
}

// Random returns a random value or the zero value if empty.
func (a SingleOrMulti[T]) Random() T {
	if len(a) == 0 {
		var zero T
		return zero
	}
	return a[rand.IntN(len(a))]
}
