package lic

import (
	"image"
	"math"
)

// RGBA is a straight-alpha color with float components in [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// mul scales the color channels by f. The alpha channel is scaled too when
// withAlpha is set.
func (c RGBA) mul(f float64, withAlpha bool) RGBA {
	c.R *= f
	c.G *= f
	c.B *= f
	if withAlpha {
		c.A *= f
	}
	return c
}

// add accumulates o into c channel-wise, alpha included when withAlpha is set.
func (c RGBA) add(o RGBA, withAlpha bool) RGBA {
	c.R += o.R
	c.G += o.G
	c.B += o.B
	if withAlpha {
		c.A += o.A
	}
	return c
}

// clamp restricts every component into [0, 1].
func (c RGBA) clamp() RGBA {
	c.R = clamp01(c.R)
	c.G = clamp01(c.G)
	c.B = clamp01(c.B)
	c.A = clamp01(c.A)
	return c
}

func clamp01(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

// ConvolverConfig configures a Convolver for one run.
type ConvolverConfig struct {
	FilterLen float64         // filter half-length l, clamped to >= 0.1
	Steps     float64         // number of integration steps, >= 1
	MinV      float64         // lower noise normalization bound
	MaxV      float64         // upper noise normalization bound
	Field     *VectorField    // noise source, required by NoiseIntensity
	Src       Drawable        // color source, required by ImageColor
	Rect      image.Rectangle // processing rectangle, the wraparound extent
}

// Convolver evaluates the line integral convolution at single pixels. It is
// configured once per run and holds only read-only state, so a single
// instance may serve every pixel of a sweep.
type Convolver struct {
	l          float64
	step       float64
	minv, maxv float64
	field      *VectorField
	src        Drawable
	rect       image.Rectangle
	hasAlpha   bool
}

// NewConvolver builds a convolver from the run configuration.
func NewConvolver(cfg ConvolverConfig) *Convolver {
	l := cfg.FilterLen
	if l < 0.1 {
		l = 0.1
	}
	steps := cfg.Steps
	if steps < 1 {
		steps = 1
	}

	cv := &Convolver{
		l:     l,
		step:  2.0 * l / steps,
		minv:  cfg.MinV,
		maxv:  cfg.MaxV,
		field: cfg.Field,
		src:   cfg.Src,
		rect:  cfg.Rect,
	}
	if cfg.Src != nil {
		cv.hasAlpha = cfg.Src.HasAlpha()
	}
	return cv
}

// Filter is a simple triangle filter: 1 at u = 0, falling off linearly to 0
// at |u| = l and beyond.
func (cv *Convolver) Filter(u float64) float64 {
	f := 1.0 - math.Abs(u)/cv.l

	if f < 0.0 {
		return 0.0
	}
	return f
}

// NoiseIntensity integrates the filtered noise field along the flow
// direction (vx, vy) at pixel (x, y) with the trapezoidal rule, then maps
// the normalized result into [0.5, 1.0]. The caller modulates the source
// pixel with the returned intensity.
func (cv *Convolver) NoiseIntensity(x, y int, vx, vy float64) float64 {
	xx, yy := float64(x), float64(y)
	step := cv.step

	sum := 0.0
	f1 := cv.Filter(-cv.l) * cv.field.Noise(xx+cv.l*vx, yy+cv.l*vy)

	for u := -cv.l + step; u <= cv.l; u += step {
		f2 := cv.Filter(u) * cv.field.Noise(xx-u*vx, yy-u*vy)
		sum += (f1 + f2) * 0.5 * step
		f1 = f2
	}

	sum = (sum - cv.minv) / (cv.maxv - cv.minv)
	sum = clamp01(sum)

	return sum/2.0 + 0.5
}

// ImageColor integrates bilinearly resampled source colors along the flow
// direction (vx, vy) at pixel (x, y). The accumulated sum is divided by the
// filter length and clamped, which makes the convolution itself produce the
// final color.
func (cv *Convolver) ImageColor(x, y int, vx, vy float64) RGBA {
	xx, yy := float64(x), float64(y)
	step := cv.step
	alpha := cv.hasAlpha

	var col RGBA
	col1 := cv.resample(xx+cv.l*vx, yy+cv.l*vy).mul(cv.Filter(-cv.l), alpha)

	for u := -cv.l + step; u <= cv.l; u += step {
		col2 := cv.resample(xx-u*vx, yy-u*vy).mul(cv.Filter(u), alpha)
		col = col.add(col1.add(col2, alpha).mul(0.5*step, alpha), alpha)
		col1 = col2
	}

	return col.mul(1.0/cv.l, alpha).clamp()
}

// resample returns the bilinearly interpolated source color at continuous
// coordinates (u, v) relative to the processing rectangle. Integer sample
// positions wrap around the rectangle, so the image tiles seamlessly.
func (cv *Convolver) resample(u, v float64) RGBA {
	width := cv.rect.Dx()
	height := cv.rect.Dy()

	x1 := int(u)
	y1 := int(v)

	if x1 < 0 {
		x1 = (width - (-x1 % width)) % width
	} else {
		x1 %= width
	}
	if y1 < 0 {
		y1 = (height - (-y1 % height)) % height
	} else {
		y1 %= height
	}

	x2 := (x1 + 1) % width
	y2 := (y1 + 1) % height

	var pp [4]RGBA
	pp[0] = cv.src.Peek(cv.rect.Min.X+x1, cv.rect.Min.Y+y1)
	pp[1] = cv.src.Peek(cv.rect.Min.X+x2, cv.rect.Min.Y+y1)
	pp[2] = cv.src.Peek(cv.rect.Min.X+x1, cv.rect.Min.Y+y2)
	pp[3] = cv.src.Peek(cv.rect.Min.X+x2, cv.rect.Min.Y+y2)

	return bilinear(u, v, pp)
}

// bilinear blends the four samples surrounding (x, y) by the fractional
// parts of the coordinates.
func bilinear(x, y float64, p [4]RGBA) RGBA {
	ix := x - math.Floor(x)
	iy := y - math.Floor(y)

	m0 := RGBA{
		R: (1.0-ix)*p[0].R + ix*p[1].R,
		G: (1.0-ix)*p[0].G + ix*p[1].G,
		B: (1.0-ix)*p[0].B + ix*p[1].B,
		A: (1.0-ix)*p[0].A + ix*p[1].A,
	}
	m1 := RGBA{
		R: (1.0-ix)*p[2].R + ix*p[3].R,
		G: (1.0-ix)*p[2].G + ix*p[3].G,
		B: (1.0-ix)*p[2].B + ix*p[3].B,
		A: (1.0-ix)*p[2].A + ix*p[3].A,
	}

	return RGBA{
		R: (1.0-iy)*m0.R + iy*m1.R,
		G: (1.0-iy)*m0.G + iy*m1.G,
		B: (1.0-iy)*m0.B + iy*m1.B,
		A: (1.0-iy)*m0.A + iy*m1.A,
	}
}
