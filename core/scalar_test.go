package lic_test

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	lic "github.com/licfx/vangogh/core"
)

// uniformImage builds a w by h image filled with a single color.
func uniformImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestScalarField_ChannelValuesShouldMatchHSL(t *testing.T) {
	cases := []struct {
		name    string
		col     color.NRGBA
		channel lic.Channel
		want    int
	}{
		{"red hue", color.NRGBA{255, 0, 0, 255}, lic.ChannelHue, 0},
		{"green hue", color.NRGBA{0, 255, 0, 255}, lic.ChannelHue, 85},
		{"red saturation", color.NRGBA{255, 0, 0, 255}, lic.ChannelSaturation, 255},
		{"gray saturation", color.NRGBA{128, 128, 128, 255}, lic.ChannelSaturation, 0},
		{"red brightness", color.NRGBA{255, 0, 0, 255}, lic.ChannelBrightness, 128},
		{"white brightness", color.NRGBA{255, 255, 255, 255}, lic.ChannelBrightness, 255},
		{"black brightness", color.NRGBA{0, 0, 0, 255}, lic.ChannelBrightness, 0},
	}

	for _, c := range cases {
		sf, err := lic.ExtractScalarField(uniformImage(2, 2, c.col), c.channel, nil)
		if err != nil {
			t.Fatalf("%s: unexpected extraction error: %v", c.name, err)
		}
		if got := sf.Peek(0, 0); got != c.want {
			t.Fatalf("%s: scalar value should be %d, got %d", c.name, c.want, got)
		}
	}
}

func TestScalarField_InvalidChannelShouldFail(t *testing.T) {
	img := uniformImage(2, 2, color.NRGBA{10, 20, 30, 255})

	if _, err := lic.ExtractScalarField(img, lic.Channel(9), nil); err == nil {
		t.Fatalf("extraction with an invalid channel selector should fail")
	}
}

func TestScalarField_PeekShouldWrapAround(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			v := uint8(40*x + 90*y)
			img.SetNRGBA(x, y, color.NRGBA{v, v, v, 255})
		}
	}

	sf, err := lic.ExtractScalarField(img, lic.ChannelBrightness, nil)
	if err != nil {
		t.Fatalf("unexpected extraction error: %v", err)
	}

	w, h := sf.Bounds()
	if w != 3 || h != 2 {
		t.Fatalf("scalar field should match the effect image size, got %dx%d", w, h)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			want := sf.Peek(x, y)
			if got := sf.Peek(x+w, y); got != want {
				t.Fatalf("peek at (%d+w,%d) should wrap to %d, got %d", x, y, want, got)
			}
			if got := sf.Peek(x, y-3*h); got != want {
				t.Fatalf("peek at (%d,%d-3h) should wrap to %d, got %d", x, y, want, got)
			}
		}
	}
}

func TestScalarField_JitterShouldBeReproducibleWithSameSeed(t *testing.T) {
	img := uniformImage(8, 8, color.NRGBA{100, 150, 200, 255})

	first, err := lic.ExtractScalarField(img, lic.ChannelBrightness, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("unexpected extraction error: %v", err)
	}
	second, err := lic.ExtractScalarField(img, lic.ChannelBrightness, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("unexpected extraction error: %v", err)
	}

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if first.Peek(x, y) != second.Peek(x, y) {
				t.Fatalf("same seed should produce the same jitter at (%d,%d)", x, y)
			}
		}
	}
}

func TestScalarField_JitterShouldStayWithinOneUnit(t *testing.T) {
	img := uniformImage(16, 16, color.NRGBA{128, 128, 128, 255})

	plain, err := lic.ExtractScalarField(img, lic.ChannelBrightness, nil)
	if err != nil {
		t.Fatalf("unexpected extraction error: %v", err)
	}
	jittered, err := lic.ExtractScalarField(img, lic.ChannelBrightness, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("unexpected extraction error: %v", err)
	}

	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			d := jittered.Peek(x, y) - plain.Peek(x, y)
			if d < -1 || d > 1 {
				t.Fatalf("jitter at (%d,%d) should stay within one unit, got %d", x, y, d)
			}
		}
	}
}
