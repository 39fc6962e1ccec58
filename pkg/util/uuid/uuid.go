// Package uuid is a thin layer over github.com/google/uuid with the
// text forms used by player samples in server list pings.
package uuid

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"

	guuid "github.com/google/uuid"
)

type UUID guuid.UUID

// Nil is the empty UUID, all zeros.
var Nil = UUID(guuid.Nil)

// String returns the string form of uuid,
// xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx.
func (i UUID) String() string {
	return guuid.UUID(i).String()
}

// Undashed returns the undashed string form of the uuid.
func (i UUID) Undashed() string {
	return hex.EncodeToString(i[:])
}

func (i UUID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(i.String())), nil
}

func (i *UUID) UnmarshalJSON(b []byte) (err error) {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("expected quoted uuid, but got %s: %w", b, err)
	}
	*i, err = Parse(s)
	return
}

// MarshalText implements encoding.TextMarshaler, used by yaml.
func (i UUID) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, used by yaml.
func (i *UUID) UnmarshalText(b []byte) (err error) {
	*i, err = ParseBytes(b)
	return
}

// Parse decodes s into a UUID or returns an error. Both the dashed and
// the undashed hex encoding are accepted.
func Parse(s string) (UUID, error) {
	id, err := guuid.Parse(s)
	return UUID(id), err
}

// ParseBytes is like Parse, except it parses a byte slice instead of a string.
func ParseBytes(b []byte) (UUID, error) {
	id, err := guuid.ParseBytes(b)
	return UUID(id), err
}

// OfflinePlayerUUID returns the name based v3 UUID offline mode
// servers assign to a player name.
func OfflinePlayerUUID(username string) UUID {
	const version = 3 // UUID v3
	id := md5.Sum([]byte("OfflinePlayer:" + username))
	id[6] = (id[6] & 0x0f) | uint8((version&0xf)<<4)
	id[8] = (id[8] & 0x3f) | 0x80 // RFC 4122 variant
	return id
}

// New creates a new random UUID or panics.
func New() UUID { return UUID(guuid.New()) }
