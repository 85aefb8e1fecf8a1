package lic

import (
	"image"

	"github.com/disintegration/imaging"
)

// Drawable is the narrow surface the pipeline needs from the hosting image
// environment. Implementations own the pixel buffers; the core never
// allocates or frees them.
type Drawable interface {
	// Size returns the full drawable extent in pixels.
	Size() (width, height int)
	// HasAlpha reports whether the drawable carries an alpha channel.
	HasAlpha() bool
	// Selection returns the processing rectangle, the intersection of the
	// drawable with any active selection. ok is false when it is empty.
	Selection() (r image.Rectangle, ok bool)
	// Peek reads the source color at (x, y).
	Peek(x, y int) RGBA
	// Poke writes the destination color at (x, y).
	Poke(x, y int, c RGBA)
	// Commit merges the written region back into the drawable.
	Commit(r image.Rectangle) error
}

// ImageDrawable adapts an in-memory image to the Drawable interface. Writes
// go to a shadow buffer and become visible on Commit, so the source pixels
// stay stable for the whole duration of a run.
type ImageDrawable struct {
	src      *image.NRGBA
	shadow   *image.NRGBA
	sel      image.Rectangle
	hasAlpha bool
}

// NewImageDrawable clones src into an NRGBA drawable whose bounds are
// anchored at the origin. The selection initially covers the whole image.
func NewImageDrawable(src image.Image) *ImageDrawable {
	img := imaging.Clone(src)

	return &ImageDrawable{
		src:      img,
		shadow:   imaging.Clone(img),
		sel:      img.Bounds(),
		hasAlpha: !img.Opaque(),
	}
}

// SetSelection restricts processing to r intersected with the image bounds.
func (d *ImageDrawable) SetSelection(r image.Rectangle) {
	d.sel = r.Intersect(d.src.Bounds())
}

// Size returns the image extent in pixels.
func (d *ImageDrawable) Size() (int, int) {
	b := d.src.Bounds()
	return b.Dx(), b.Dy()
}

// HasAlpha reports whether the image has any translucent pixel. Unlike
// hosts that track an alpha channel as part of the drawable type, alpha
// presence is inferred from pixel content here: a source whose pixels are
// all fully opaque is treated as alpha-free regardless of its color model,
// and its output stays fully opaque.
func (d *ImageDrawable) HasAlpha() bool {
	return d.hasAlpha
}

// Selection returns the active processing rectangle.
func (d *ImageDrawable) Selection() (image.Rectangle, bool) {
	return d.sel, !d.sel.Empty()
}

// Peek reads the source color at (x, y).
func (d *ImageDrawable) Peek(x, y int) RGBA {
	offs := d.src.PixOffset(x, y)
	pix := d.src.Pix[offs : offs+4 : offs+4]

	return RGBA{
		R: float64(pix[0]) / 255.0,
		G: float64(pix[1]) / 255.0,
		B: float64(pix[2]) / 255.0,
		A: float64(pix[3]) / 255.0,
	}
}

// Poke writes c into the shadow buffer at (x, y). Drawables without an
// alpha channel stay fully opaque.
func (d *ImageDrawable) Poke(x, y int, c RGBA) {
	c = c.clamp()
	if !d.hasAlpha {
		c.A = 1.0
	}

	offs := d.shadow.PixOffset(x, y)
	pix := d.shadow.Pix[offs : offs+4 : offs+4]

	pix[0] = uint8(c.R*255.0 + 0.5)
	pix[1] = uint8(c.G*255.0 + 0.5)
	pix[2] = uint8(c.B*255.0 + 0.5)
	pix[3] = uint8(c.A*255.0 + 0.5)
}

// Commit merges the shadow buffer region r back into the source image.
func (d *ImageDrawable) Commit(r image.Rectangle) error {
	r = r.Intersect(d.src.Bounds())

	for y := r.Min.Y; y < r.Max.Y; y++ {
		so := d.shadow.PixOffset(r.Min.X, y)
		do := d.src.PixOffset(r.Min.X, y)
		copy(d.src.Pix[do:do+r.Dx()*4], d.shadow.Pix[so:so+r.Dx()*4])
	}
	return nil
}

// Image returns the committed result.
func (d *ImageDrawable) Image() *image.NRGBA {
	return d.src
}
