package lic

import (
	"math"
	"math/rand"
)

// DefaultGridSize is the default extent of the pseudo-random vector grid
// in both directions.
const DefaultGridSize = 40

// VectorField is a periodic grid of pseudo-random unit vectors. It serves
// as the white noise source for the line integral convolution: sampling it
// at continuous coordinates yields a smooth, band-limited noise value.
type VectorField struct {
	grid       [][2]float64
	numx, numy int
	dx, dy     float64
}

// NewVectorField allocates a vector field with a numx by numy grid and the
// given cell size. The grid is zeroed; call Generate before sampling.
func NewVectorField(numx, numy int, dx, dy float64) *VectorField {
	return &VectorField{
		grid: make([][2]float64, numx*numy),
		numx: numx,
		numy: numy,
		dx:   dx,
		dy:   dy,
	}
}

// Generate fills the grid with unit vectors pointing at uniformly random
// angles in [0, 2π).
func (vf *VectorField) Generate(rng *rand.Rand) {
	for i := 0; i < vf.numx; i++ {
		for j := 0; j < vf.numy; j++ {
			alpha := rng.Float64() * 2.0 * math.Pi
			vf.grid[j*vf.numx+i] = [2]float64{math.Cos(alpha), math.Sin(alpha)}
		}
	}
}

// Vector returns the unit vector stored at grid cell (i, j). Indices wrap
// around the grid, so the field is spatially periodic.
func (vf *VectorField) Vector(i, j int) (gx, gy float64) {
	for i < 0 {
		i += vf.numx
	}
	for j < 0 {
		j += vf.numy
	}
	i %= vf.numx
	j %= vf.numy

	g := vf.grid[j*vf.numx+i]
	return g[0], g[1]
}

// Cubic is a 2nd order cubic spline falloff: 1 at t = 0, 0 at |t| >= 1,
// with a continuous first derivative at the cell boundary.
func Cubic(t float64) float64 {
	at := math.Abs(t)

	if at < 1.0 {
		return at*at*(2.0*at-3.0) + 1.0
	}
	return 0.0
}

// omega is the contribution of grid cell (i, j) at fractional offsets
// (u, v) from the cell center.
func (vf *VectorField) omega(u, v float64, i, j int) float64 {
	gx, gy := vf.Vector(i, j)
	return Cubic(u) * Cubic(v) * (gx*u + gy*v)
}

// Noise evaluates the noise function at (x, y), a 2D variant of Perlin's
// noise function: the cubic-weighted sum over the four surrounding cells.
// The result is not bounded to [0, 1] a priori.
func (vf *VectorField) Noise(x, y float64) float64 {
	sti := int(math.Floor(x / vf.dx))
	stj := int(math.Floor(y / vf.dy))

	sum := 0.0
	for i := sti; i <= sti+1; i++ {
		for j := stj; j <= stj+1; j++ {
			sum += vf.omega((x-float64(i)*vf.dx)/vf.dx,
				(y-float64(j)*vf.dy)/vf.dy, i, j)
		}
	}

	return sum
}
