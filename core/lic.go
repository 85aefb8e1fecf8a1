// Package lic implements the Van Gogh line integral convolution filter as
// described in Cabral et al. "Imaging vector fields using line integral
// convolution", Proceedings of ACM SIGGRAPH 93, p. 263-270: per-pixel
// streak textures integrated along an implicit flow field derived from the
// gradient of an effect image, convolving either a band-limited noise
// function or the source image itself.
package lic

import (
	"fmt"
	"image"
	"math/rand"
	"time"
)

// Operator selects how the flow direction is derived from the scalar field.
type Operator int

const (
	// OperatorDerivative follows the raw scalar field derivative.
	OperatorDerivative Operator = iota
	// OperatorGradient follows the level sets of the scalar field, the
	// derivative rotated a quarter turn.
	OperatorGradient
)

// ConvolveSource selects what the line integral convolves.
type ConvolveSource int

const (
	// ConvolveNoise convolves a pseudo-random noise field and modulates
	// the source pixel with the resulting intensity.
	ConvolveNoise ConvolveSource = iota
	// ConvolveImage convolves the source image itself.
	ConvolveImage
)

// ProgressFunc receives the fraction of completed work in [0, 1].
type ProgressFunc func(fraction float64)

// Params holds the filter settings for one run. MinValue and MaxValue are
// expressed in tenths: the run divides them by 10 before they bound the
// noise normalization, a convention kept from the original filter.
type Params struct {
	FilterLen float64 // half-length of the convolution filter, >= 0.1
	NoiseMag  float64 // noise cell size in pixels
	IntSteps  float64 // number of integration steps
	MinValue  float64 // lower normalization bound, in tenths
	MaxValue  float64 // upper normalization bound, in tenths
	Channel   Channel
	Operator  Operator
	Source    ConvolveSource
}

// DefaultParams returns the standard filter settings.
func DefaultParams() Params {
	return Params{
		FilterLen: 5,
		NoiseMag:  2,
		IntSteps:  25,
		MinValue:  -25,
		MaxValue:  25,
		Channel:   ChannelBrightness,
		Operator:  OperatorGradient,
		Source:    ConvolveImage,
	}
}

// Validate checks the parameter record for out-of-range selectors and
// degenerate numeric settings.
func (p *Params) Validate() error {
	switch p.Channel {
	case ChannelHue, ChannelSaturation, ChannelBrightness:
	default:
		return fmt.Errorf("lic: invalid effect channel: %d", p.Channel)
	}

	switch p.Operator {
	case OperatorDerivative, OperatorGradient:
	default:
		return fmt.Errorf("lic: invalid effect operator: %d", p.Operator)
	}

	switch p.Source {
	case ConvolveNoise, ConvolveImage:
	default:
		return fmt.Errorf("lic: invalid convolve source: %d", p.Source)
	}

	if p.IntSteps < 1 {
		return fmt.Errorf("lic: integration steps must be at least 1, got %g", p.IntSteps)
	}
	if p.MaxValue <= p.MinValue {
		return fmt.Errorf("lic: maximum value %g must exceed minimum value %g",
			p.MaxValue, p.MinValue)
	}

	return nil
}

// Processor runs the Van Gogh line integral convolution over a drawable.
// All of its state is per-run, so independent processors may run
// concurrently on independent drawables.
type Processor struct {
	Params

	// Progress, when set, is called with the completed fraction after
	// every processed row and once more with 1.0 at the end.
	Progress ProgressFunc

	// Rand drives the vector field generation and the scalar field
	// jitter. When nil, a time-seeded source is used.
	Rand *rand.Rand

	// NoJitter disables the random perturbation added during scalar
	// field extraction. Meant for reproducible runs.
	NoJitter bool
}

// NewProcessor returns a processor with the given filter settings.
func NewProcessor(params Params) *Processor {
	return &Processor{Params: params}
}

// Run executes the filter over the drawable's selection and commits the
// result. The effect image drives the flow field and may differ in size
// from the drawable; it is tiled, never scaled. A nil effect falls back to
// the drawable's own pixels. An empty selection is a silent no-op.
func (p *Processor) Run(d Drawable, effect image.Image) error {
	if err := p.Validate(); err != nil {
		return err
	}

	rect, ok := d.Selection()
	if !ok {
		return nil
	}

	rng := p.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	l := p.FilterLen
	if l < 0.1 {
		l = 0.1
	}

	var field *VectorField
	if p.Source == ConvolveNoise {
		field = NewVectorField(DefaultGridSize, DefaultGridSize, p.NoiseMag, p.NoiseMag)
		field.Generate(rng)
	}

	if effect == nil {
		effect = drawableImage(d)
	}

	var jitter *rand.Rand
	if !p.NoJitter {
		jitter = rng
	}
	sf, err := ExtractScalarField(effect, p.Channel, jitter)
	if err != nil {
		return err
	}

	cv := NewConvolver(ConvolverConfig{
		FilterLen: l,
		Steps:     p.IntSteps,
		MinV:      p.MinValue / 10.0,
		MaxV:      p.MaxValue / 10.0,
		Field:     field,
		Src:       d,
		Rect:      rect,
	})

	hasAlpha := d.HasAlpha()
	width, height := rect.Dx(), rect.Dy()

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Derivative of the scalar field at (x, y), rotated and
			// normalized per the operator selection.
			vx := float64(sf.GradX(x, y))
			vy := float64(sf.GradY(x, y))

			if p.Operator == OperatorGradient {
				vx, vy = Rotate90(vx, vy)
			}
			vx, vy = Normalize(vx, vy)

			var col RGBA
			if p.Source == ConvolveNoise {
				col = d.Peek(rect.Min.X+x, rect.Min.Y+y)
				col = col.mul(cv.NoiseIntensity(x, y, vx, vy), hasAlpha)
			} else {
				col = cv.ImageColor(x, y, vx, vy)
			}

			d.Poke(rect.Min.X+x, rect.Min.Y+y, col)
		}

		if p.Progress != nil {
			p.Progress(float64(y) / float64(height))
		}
	}

	if p.Progress != nil {
		p.Progress(1.0)
	}

	return d.Commit(rect)
}

// drawableImage snapshots the drawable's pixels. It backs the fallback when
// no separate effect image is supplied.
func drawableImage(d Drawable) *image.NRGBA {
	width, height := d.Size()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := d.Peek(x, y).clamp()
			offs := img.PixOffset(x, y)

			img.Pix[offs+0] = uint8(c.R*255.0 + 0.5)
			img.Pix[offs+1] = uint8(c.G*255.0 + 0.5)
			img.Pix[offs+2] = uint8(c.B*255.0 + 0.5)
			img.Pix[offs+3] = uint8(c.A*255.0 + 0.5)
		}
	}

	return img
}
