// Package fftoracle adapts github.com/mjibson/go-dsp/fft, a 1-D FFT
// library, into the 2-D transform the reconstruction pipeline and the
// cross-correlator need. A 2-D DFT is separable: transforming every row
// and then every column of the result (in either order) yields the
// same answer as a native 2-D FFT, so this package never needs its own
// butterfly implementation.
//
// Array2's signed indexing already wraps negative coordinates the same
// way a standard FFT lays out negative frequencies in the upper half of
// its output, so no fftshift step is needed between this package and
// array2.
package fftoracle

import (
	"github.com/mjibson/go-dsp/fft"

	"github.com/hzaunick/smip/internal/array2"
	"github.com/hzaunick/smip/internal/smerr"
)

// Forward computes the 2-D discrete Fourier transform of img.
func Forward(img *array2.Array2[complex128]) (*array2.Array2[complex128], error) {
	return transform2D(img, fft.FFT)
}

// Inverse computes the 2-D inverse discrete Fourier transform of freq.
// The result is not scaled back to the spatial domain's original
// amplitude by this package beyond what go-dsp's IFFT already applies
// (1/N per axis, so 1/(xsize*ysize) overall).
func Inverse(freq *array2.Array2[complex128]) (*array2.Array2[complex128], error) {
	return transform2D(freq, fft.IFFT)
}

// ForwardReal is a convenience wrapper for real-valued spatial images.
func ForwardReal(img *array2.Array2[float64]) (*array2.Array2[complex128], error) {
	complexImg := array2.Convert[complex128](img, func(v float64) complex128 { return complex(v, 0) })
	return Forward(complexImg)
}

func transform2D(src *array2.Array2[complex128], transform1D func([]complex128) []complex128) (*array2.Array2[complex128], error) {
	xsize, ysize := src.Xsize(), src.Ysize()
	if xsize == 0 || ysize == 0 {
		return nil, smerr.NewDomain("fftoracle.transform2D", "array has zero extent")
	}

	rowsDone := array2.New[complex128](xsize, ysize)
	for y := 0; y < ysize; y++ {
		row, err := src.Row(y)
		if err != nil {
			return nil, err
		}
		out := transform1D(append([]complex128(nil), row...))
		dstRow, err := rowsDone.Row(y)
		if err != nil {
			return nil, err
		}
		copy(dstRow, out)
	}

	result := array2.New[complex128](xsize, ysize)
	col := make([]complex128, ysize)
	for x := 0; x < xsize; x++ {
		for y := 0; y < ysize; y++ {
			v, err := rowsDone.At(x, y)
			if err != nil {
				return nil, err
			}
			col[y] = v
		}
		out := transform1D(col)
		for y := 0; y < ysize; y++ {
			if err := result.Set(x, y, out[y]); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}
