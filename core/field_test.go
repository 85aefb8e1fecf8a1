package lic_test

import (
	"math"
	"math/rand"
	"testing"

	lic "github.com/licfx/vangogh/core"
)

func TestVectorField_GeneratedVectorsShouldBeUnitLength(t *testing.T) {
	vf := lic.NewVectorField(lic.DefaultGridSize, lic.DefaultGridSize, 2.0, 2.0)
	vf.Generate(rand.New(rand.NewSource(1)))

	for i := 0; i < lic.DefaultGridSize; i++ {
		for j := 0; j < lic.DefaultGridSize; j++ {
			gx, gy := vf.Vector(i, j)
			mag := math.Sqrt(gx*gx + gy*gy)
			if math.Abs(mag-1.0) > 1e-9 {
				t.Fatalf("vector (%d,%d) should have unit length, got %v", i, j, mag)
			}
		}
	}
}

func TestVectorField_VectorShouldWrapAround(t *testing.T) {
	vf := lic.NewVectorField(lic.DefaultGridSize, lic.DefaultGridSize, 2.0, 2.0)
	vf.Generate(rand.New(rand.NewSource(1)))

	gx, gy := vf.Vector(3, 7)

	wx, wy := vf.Vector(3+lic.DefaultGridSize, 7-2*lic.DefaultGridSize)
	if gx != wx || gy != wy {
		t.Fatalf("grid indices should wrap around: got (%v,%v), want (%v,%v)", wx, wy, gx, gy)
	}
}

func TestVectorField_NoiseShouldBePeriodic(t *testing.T) {
	const dx, dy = 2.0, 2.0

	vf := lic.NewVectorField(lic.DefaultGridSize, lic.DefaultGridSize, dx, dy)
	vf.Generate(rand.New(rand.NewSource(7)))

	periodX := float64(lic.DefaultGridSize) * dx
	periodY := float64(lic.DefaultGridSize) * dy

	coords := [][2]float64{{0.3, 0.8}, {12.5, 33.1}, {-4.2, 9.9}, {70.0, 70.0}}
	for _, c := range coords {
		n := vf.Noise(c[0], c[1])

		if shifted := vf.Noise(c[0]+periodX, c[1]); math.Abs(shifted-n) > 1e-9 {
			t.Fatalf("noise at (%v+period,%v) should equal noise at (%v,%v): got %v, want %v",
				c[0], c[1], c[0], c[1], shifted, n)
		}
		if shifted := vf.Noise(c[0], c[1]+periodY); math.Abs(shifted-n) > 1e-9 {
			t.Fatalf("noise at (%v,%v+period) should equal noise at (%v,%v): got %v, want %v",
				c[0], c[1], c[0], c[1], shifted, n)
		}
	}
}

func TestCubic_ShouldInterpolateSmoothly(t *testing.T) {
	if got := lic.Cubic(0); got != 1.0 {
		t.Fatalf("cubic weight at 0 should be 1, got %v", got)
	}
	if got := lic.Cubic(1); got != 0.0 {
		t.Fatalf("cubic weight at 1 should be 0, got %v", got)
	}
	if got := lic.Cubic(-1); got != 0.0 {
		t.Fatalf("cubic weight at -1 should be 0, got %v", got)
	}
	if got := lic.Cubic(1.5); got != 0.0 {
		t.Fatalf("cubic weight beyond the cell should be 0, got %v", got)
	}

	// Monotonically decreasing on [0, 1].
	prev := lic.Cubic(0)
	for tt := 0.05; tt <= 1.0; tt += 0.05 {
		cur := lic.Cubic(tt)
		if cur > prev {
			t.Fatalf("cubic weight should decrease on [0,1]: w(%v)=%v > %v", tt, cur, prev)
		}
		prev = cur
	}
}

func BenchmarkVectorFieldNoise(b *testing.B) {
	vf := lic.NewVectorField(lic.DefaultGridSize, lic.DefaultGridSize, 2.0, 2.0)
	vf.Generate(rand.New(rand.NewSource(1)))

	var sum float64
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		sum += vf.Noise(float64(i%512)*0.37, float64(i%512)*0.53)
	}
	_ = sum
}
