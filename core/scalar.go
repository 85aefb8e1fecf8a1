package lic

import (
	"fmt"
	"image"
	"math"
	"math/rand"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Channel selects which HSL channel of the effect image drives the filter.
type Channel int

const (
	// ChannelHue uses the hue of the effect image.
	ChannelHue Channel = iota
	// ChannelSaturation uses the saturation of the effect image.
	ChannelSaturation
	// ChannelBrightness uses the lightness of the effect image.
	ChannelBrightness
)

// ScalarField is a byte-valued map holding one HSL channel of the effect
// image. Out-of-range coordinates wrap around its extent, so the effect
// image tiles seamlessly regardless of its size relative to the target.
type ScalarField struct {
	data          []uint8
	width, height int
}

// ExtractScalarField converts every pixel of the effect image to the
// requested channel scaled to [0, 255] and perturbs it with uniform random
// noise in [-1, 1] to avoid unstructured areas. A nil rng disables the
// perturbation, which keeps the extraction deterministic.
func ExtractScalarField(img image.Image, ch Channel, rng *rand.Rand) (*ScalarField, error) {
	if ch < ChannelHue || ch > ChannelBrightness {
		return nil, fmt.Errorf("lic: invalid effect channel: %d", ch)
	}

	src := ImgToNRGBA(img)
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	sf := &ScalarField{
		data:   make([]uint8, width*height),
		width:  width,
		height: height,
	}

	index := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			offs := y*src.Stride + x*4

			// The alpha channel does not contribute to the effect map.
			col := colorful.Color{
				R: float64(src.Pix[offs+0]) / 255.0,
				G: float64(src.Pix[offs+1]) / 255.0,
				B: float64(src.Pix[offs+2]) / 255.0,
			}
			hue, sat, light := col.Hsl()

			var val float64
			switch ch {
			case ChannelHue:
				val = hue / 360.0 * 255.0
			case ChannelSaturation:
				val = sat * 255.0
			case ChannelBrightness:
				val = light * 255.0
			}

			if rng != nil {
				val += rng.Float64()*2.0 - 1.0
			}

			sf.data[index] = clampByte(math.Round(val))
			index++
		}
	}

	return sf, nil
}

// Bounds returns the width and height of the scalar field.
func (sf *ScalarField) Bounds() (width, height int) {
	return sf.width, sf.height
}

// Peek returns the scalar value at (x, y) with toroidal wraparound.
func (sf *ScalarField) Peek(x, y int) int {
	for x < 0 {
		x += sf.width
	}
	x %= sf.width

	for y < 0 {
		y += sf.height
	}
	y %= sf.height

	return int(sf.data[x+sf.width*y])
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
