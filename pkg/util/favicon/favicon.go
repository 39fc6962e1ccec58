// Package favicon loads the server icon sent in status responses.
package favicon

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"strings"

	"github.com/nfnt/resize"
	"gopkg.in/yaml.v3"
)

// Size is the width and height of a server icon in pixels.
const Size = 64

// Favicon is 64x64 sized data uri image send in response to a server list ping.
// Refer to https://en.wikipedia.org/wiki/Data_URI_scheme for details.
// Example: "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAEAAAAABCAYAAABubagXAAAAEElEQVR42mP8z8BQzzCCAQB+lAGA+H8KEAAAAABJRU5ErkJggg=="
type Favicon string

// Make sure Favicon implements the interfaces at compile time.
var (
	_ yaml.Unmarshaler = (*Favicon)(nil)
	_ json.Unmarshaler = (*Favicon)(nil)
)

// UnmarshalJSON implements json.Unmarshaler.
func (f *Favicon) UnmarshalJSON(b []byte) (err error) {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*f, err = Parse(s)
	return err
}

// UnmarshalYAML implements yaml.Unmarshaler.
// The value may be a data uri or the path of an image file.
func (f *Favicon) UnmarshalYAML(value *yaml.Node) (err error) {
	var s string
	if err = value.Decode(&s); err != nil {
		return err
	}
	*f, err = Parse(s)
	return err
}

// FromImage converts an image.Image to Favicon,
// scaling it to 64x64 pixels if it is larger.
func FromImage(img image.Image) (Favicon, error) {
	if b := img.Bounds(); b.Dx() > Size || b.Dy() > Size {
		img = resize.Resize(Size, Size, img, resize.Bilinear)
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return "", err
	}
	return FromPNG(buf.Bytes()), nil
}

// FromFile takes the filename of a png, jpeg or gif image and converts it to Favicon.
func FromFile(filename string) (Favicon, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("error decoding image %s: %w", filename, err)
	}
	return FromImage(img)
}

const (
	dataImagePrefix = "data:image/"
	dataPNGPrefix   = dataImagePrefix + "png;base64,"
)

// Parse takes a data uri string or filename and converts it to Favicon.
// An empty string is no favicon.
func Parse(s string) (Favicon, error) {
	if s == "" {
		return "", nil
	}
	if strings.HasPrefix(s, dataImagePrefix) {
		return Favicon(s), nil
	}
	if stat, err := os.Stat(s); err == nil && !stat.IsDir() {
		f, err := FromFile(s)
		if err != nil {
			return "", fmt.Errorf("favicon: %w", err)
		}
		return f, nil
	}
	return "", fmt.Errorf("favicon: invalid format or file not found: %s", s)
}

// FromPNG takes the raw bytes of a png image and converts it to Favicon.
func FromPNG(b []byte) Favicon {
	return Favicon(dataPNGPrefix + base64.StdEncoding.EncodeToString(b))
}

// Bytes returns the raw png bytes of the favicon.
func (f Favicon) Bytes() ([]byte, error) {
	if !strings.HasPrefix(string(f), dataPNGPrefix) {
		return nil, errors.New("favicon: not a base64 png data uri")
	}
	return base64.StdEncoding.DecodeString(strings.TrimPrefix(string(f), dataPNGPrefix))
}

// Image decodes the favicon's image.
func (f Favicon) Image() (image.Image, error) {
	b, err := f.Bytes()
	if err != nil {
		return nil, err
	}
	return png.Decode(bytes.NewReader(b))
}
