package lic

import "math"

// The derivatives in the x and y direction use a variation of the Sobel
// convolution kernels:
//     |1 0 -1|     |  1   2   1|
// DX: |2 0 -2| DY: |  0   0   0|
//     |1 0 -1|     | -1  -2  -1|

// GradX returns the x derivative of the scalar field at (x, y).
func (sf *ScalarField) GradX(x, y int) int {
	val := 0

	val += sf.Peek(x-1, y-1)
	val -= sf.Peek(x+1, y-1)

	val += 2 * sf.Peek(x-1, y)
	val -= 2 * sf.Peek(x+1, y)

	val += sf.Peek(x-1, y+1)
	val -= sf.Peek(x+1, y+1)

	return val
}

// GradY returns the y derivative of the scalar field at (x, y).
func (sf *ScalarField) GradY(x, y int) int {
	val := 0

	val += sf.Peek(x-1, y-1)
	val += 2 * sf.Peek(x, y-1)
	val += sf.Peek(x+1, y-1)

	val -= sf.Peek(x-1, y+1)
	val -= 2 * sf.Peek(x, y+1)
	val -= sf.Peek(x+1, y+1)

	return val
}

// Normalize scales (vx, vy) to unit length. Near-zero vectors are returned
// unchanged, so a flat scalar field degrades to direction-free sampling
// instead of producing a NaN.
func Normalize(vx, vy float64) (float64, float64) {
	mag := math.Sqrt(vx*vx + vy*vy)
	if mag >= 1e-6 {
		return vx / mag, vy / mag
	}
	return vx, vy
}

// Rotate90 rotates the flow vector a quarter turn clockwise.
func Rotate90(vx, vy float64) (float64, float64) {
	return vy, -vx
}
