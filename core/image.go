package lic

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/disintegration/imaging"
)

// GetImage reads an image off the file system and converts it to NRGBA.
func GetImage(path string) (*image.NRGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return DecodeImage(file)
}

// DecodeImage decodes an image from the reader and converts it to NRGBA.
func DecodeImage(r io.Reader) (*image.NRGBA, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return ImgToNRGBA(img), nil
}

// ImgToNRGBA converts any image type to *image.NRGBA with the bounds
// anchored at the origin.
func ImgToNRGBA(img image.Image) *image.NRGBA {
	if src, ok := img.(*image.NRGBA); ok && src.Bounds().Min == (image.Point{}) {
		return src
	}
	return imaging.Clone(img)
}
