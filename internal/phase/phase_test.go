package phase

import (
	"math"
	"testing"

	"github.com/hzaunick/smip/internal/array2"
	"github.com/hzaunick/smip/internal/bispectrum"
	"github.com/hzaunick/smip/internal/cnum"
)

func TestNextRecoIndexNeverRepeatsZero(t *testing.T) {
	r, phi, i, j := 0.0, 0.0, 0, 0
	r, phi, i, j = nextRecoIndex(r, phi, i, j)
	if i == 0 && j == 0 {
		t.Fatal("nextRecoIndex from (0,0) must advance to a new lattice point")
	}
	if r < 1 {
		t.Fatalf("radius should have advanced to >=1, got %v", r)
	}
}

func TestNextRecoIndexVisitsIncreasingRadii(t *testing.T) {
	r, phi, i, j := 0.0, 0.0, 0, 0
	lastR := 0.0
	for n := 0; n < 50; n++ {
		r, phi, i, j = nextRecoIndex(r, phi, i, j)
		if r < lastR {
			t.Fatalf("radius decreased: %v -> %v", lastR, r)
		}
		lastR = r
	}
	_ = phi
}

func realImage(xsize, ysize int, f func(x, y int) float64) *array2.Array2[float64] {
	img := array2.New[float64](xsize, ysize)
	for y := 0; y < ysize; y++ {
		for x := 0; x < xsize; x++ {
			_ = img.Set(x, y, f(x, y))
		}
	}
	return img
}

// TestReconstructProducesUnitModulusPhases builds the bispectrum of a
// simple real image from a naive DFT of it, reconstructs out to radius
// 3, and checks that every solved, non-degenerate phase has unit
// modulus and that at least one such phase exists, confirming the whole
// seed -> walk -> calc_phase pipeline is wired correctly.
func TestReconstructProducesUnitModulusPhases(t *testing.T) {
	const n = 9
	img := realImage(n, n, func(x, y int) float64 {
		return math.Cos(float64(x)*0.9) + 0.5*math.Sin(float64(y)*0.4)
	})

	fft := array2.New[complex128](n, n)
	// naive O(n^4) DFT is fine at this size and keeps this test free of
	// a dependency on the fftoracle package.
	minX, minY := img.MinSIndices()
	maxX, maxY := img.MaxSIndices()
	for fx := minX; fx <= maxX; fx++ {
		for fy := minY; fy <= maxY; fy++ {
			var sum complex128
			for x := minX; x <= maxX; x++ {
				for y := minY; y <= maxY; y++ {
					v, _ := img.GetSigned(x, y)
					angle := -2 * math.Pi * (float64(fx*x)/float64(n) + float64(fy*y)/float64(n))
					sum += complex(v, 0) * complex(math.Cos(angle), math.Sin(angle))
				}
			}
			_ = fft.SetSigned(fx, fy, sum)
		}
	}

	bispec := bispectrum.New[complex128]([4]int{n, n, n, n})
	if err := bispec.AccumulateFromFFT(fft); err != nil {
		t.Fatal(err)
	}

	phases, pm, err := Reconstruct[complex128](bispec, n, n, 3)
	if err != nil {
		t.Fatal(err)
	}

	checked := 0
	for x := -3; x <= 3; x++ {
		for y := -3; y <= 3; y++ {
			el, ok := pm.At(x, y)
			if !ok || !el.Flag {
				continue
			}
			p, err := phases.GetSigned(x, y)
			if err != nil {
				t.Fatal(err)
			}
			if cnum.Abs(p) < 1e-9 {
				continue // unsolved-but-flagged (zero consistency) is valid
			}
			if math.Abs(cnum.Abs(p)-1) > 1e-6 {
				t.Fatalf("phase at (%d,%d) has modulus %v, want 1", x, y, cnum.Abs(p))
			}
			checked++
		}
	}
	if checked == 0 {
		t.Fatal("expected at least one solved, non-degenerate phase")
	}
}

func TestReconstructSeedsDCNeighborhood(t *testing.T) {
	bispec := bispectrum.New[complex128]([4]int{8, 8, 8, 8})
	phases, pm, err := Reconstruct[complex128](bispec, 8, 8, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []struct{ x, y int }{{0, 0}, {1, 0}, {0, 1}, {-1, 0}, {0, -1}} {
		el, ok := pm.At(s.x, s.y)
		if !ok || !el.Flag {
			t.Fatalf("seed point (%d,%d) should be flagged solved", s.x, s.y)
		}
		v, err := phases.GetSigned(s.x, s.y)
		if err != nil {
			t.Fatal(err)
		}
		if cnum.Abs(v) < 0.999 || cnum.Abs(v) > 1.001 {
			t.Fatalf("seed phase at (%d,%d) should have unit modulus, got %v", s.x, s.y, v)
		}
	}
}
