// Package window builds separable apodization windows over an Array2,
// applied to the reconstructed phase map before the final inverse
// transform to taper high-frequency noise at the edge of the
// reconstructed aperture.
package window

import (
	"math"

	"github.com/hzaunick/smip/internal/array2"
	"github.com/hzaunick/smip/internal/smerr"
)

// GeneralHamming builds an xsize-by-ysize window whose value at signed
// coordinate (i,j) is the separable product
//
//	(alpha + (1-alpha)*cos(2*pi*i/aperture)) * (alpha + (1-alpha)*cos(2*pi*j/aperture))
//
// aperture must be strictly positive.
func GeneralHamming(xsize, ysize int, aperture, alpha float64) (*array2.Array2[float64], error) {
	if !(aperture > 0) {
		return nil, smerr.NewDomain("window.GeneralHamming", "aperture must be > 0")
	}
	w := array2.New[float64](xsize, ysize)
	trigarg := 2 * math.Pi / aperture
	c1, c2 := alpha, 1-alpha
	minX, minY := w.MinSIndices()
	maxX, maxY := w.MaxSIndices()
	for i := minX; i <= maxX; i++ {
		t1 := c1 + c2*math.Cos(trigarg*float64(i))
		for j := minY; j <= maxY; j++ {
			t2 := c1 + c2*math.Cos(trigarg*float64(j))
			if err := w.SetSigned(i, j, t1*t2); err != nil {
				return nil, err
			}
		}
	}
	return w, nil
}

// Hann builds a Hann window (alpha = 0.5).
func Hann(xsize, ysize int, aperture float64) (*array2.Array2[float64], error) {
	return GeneralHamming(xsize, ysize, aperture, 0.5)
}

// Hamming builds a Hamming window (alpha = 0.54).
func Hamming(xsize, ysize int, aperture float64) (*array2.Array2[float64], error) {
	return GeneralHamming(xsize, ysize, aperture, 0.54)
}
