package cell

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Decode fills p.Image from p.Data when only bytes are present
// Formats: PNG, JPEG, WebP
func Decode(p Payload) (Payload, error) {
	if p.Image != nil || len(p.Data) == 0 {
		return p, nil
	}
	img, _, err := image.Decode(bytes.NewReader(p.Data))
	if err != nil {
		return p, fmt.Errorf("decode tile (%d bytes): %w", len(p.Data), err)
	}
	p.Image = img
	return p, nil
}
