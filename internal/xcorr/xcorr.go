// Package xcorr computes the 2-D cross-correlation between a reference
// frame and a candidate frame via the FFT convolution theorem, and
// extracts the integer displacement that best aligns them (video frame
// registration ahead of speckle-masking accumulation).
package xcorr

import (
	"math"

	"github.com/hzaunick/smip/internal/array2"
	"github.com/hzaunick/smip/internal/fftoracle"
	"github.com/hzaunick/smip/internal/smerr"
)

// readiness tracks how far CrossCorrelation has progressed, mirroring
// the three-state machine (none -> correlated -> shiftComputed) of the
// original: reading a result before the step that produces it is a
// programming error, reported as smerr.InvalidState rather than
// silently returning zero values.
type readiness int

const (
	readinessNone readiness = iota
	readinessCorrelated
	readinessShiftComputed
)

// CrossCorrelation computes the cross-correlation of a fixed reference
// frame against any number of candidate frames.
type CrossCorrelation struct {
	ref         *array2.Array2[float64]
	correlation *array2.Array2[float64]
	shiftX      int
	shiftY      int
	state       readiness
}

// New builds a CrossCorrelation bound to ref. ref is retained, not
// copied; do not mutate it afterward.
func New(ref *array2.Array2[float64]) *CrossCorrelation {
	return &CrossCorrelation{ref: ref, state: readinessNone}
}

// Correlate computes the cross-correlation of the reference frame
// against frame, via conj(FFT(ref)) * FFT(frame) transformed back to
// the spatial domain. frame must share the reference frame's extents.
func (c *CrossCorrelation) Correlate(frame *array2.Array2[float64]) error {
	if frame.Xsize() != c.ref.Xsize() || frame.Ysize() != c.ref.Ysize() {
		return smerr.NewDomain("xcorr.Correlate", "frame dimensions must match the reference frame")
	}

	refFreq, err := fftoracle.ForwardReal(c.ref)
	if err != nil {
		return err
	}
	frameFreq, err := fftoracle.ForwardReal(frame)
	if err != nil {
		return err
	}

	xsize, ysize := c.ref.Xsize(), c.ref.Ysize()
	product := array2.New[complex128](xsize, ysize)
	for y := 0; y < ysize; y++ {
		for x := 0; x < xsize; x++ {
			a, _ := refFreq.At(x, y)
			b, _ := frameFreq.At(x, y)
			if err := product.Set(x, y, cmplxConj(a)*b); err != nil {
				return err
			}
		}
	}

	back, err := fftoracle.Inverse(product)
	if err != nil {
		return err
	}
	correlation := array2.New[float64](xsize, ysize)
	for i, v := range back.Data() {
		correlation.Data()[i] = real(v)
	}
	c.correlation = correlation
	c.state = readinessCorrelated
	return nil
}

func cmplxConj(z complex128) complex128 { return complex(real(z), -imag(z)) }

// CorrelationArray returns the spatial-domain cross-correlation
// computed by the most recent Correlate call.
func (c *CrossCorrelation) CorrelationArray() (*array2.Array2[float64], error) {
	if c.state < readinessCorrelated {
		return nil, smerr.NewInvalidState("xcorr.CorrelationArray", "correlate has not been called")
	}
	return c.correlation, nil
}

// Displacement returns the integer (dx, dy) shift of the most recently
// correlated frame relative to the reference frame: the coordinate of
// the correlation array's maximum, unwrapped into a centered range.
func (c *CrossCorrelation) Displacement() (int, int, error) {
	if c.state < readinessCorrelated {
		return 0, 0, smerr.NewInvalidState("xcorr.Displacement", "correlate has not been called")
	}
	if c.state == readinessCorrelated {
		c.computeDisplacement()
	}
	return c.shiftX, c.shiftY, nil
}

func (c *CrossCorrelation) computeDisplacement() {
	data := c.correlation.Data()
	maxIdx := 0
	maxVal := math.Inf(-1)
	for i, v := range data {
		if v > maxVal {
			maxVal = v
			maxIdx = i
		}
	}
	stride := c.correlation.Xsize()
	ncols := c.correlation.Ncols()
	nrows := c.correlation.Nrows()

	x := maxIdx % stride
	y := maxIdx / stride
	if x >= (ncols+1)/2 {
		x -= ncols
	}
	if y >= (nrows+1)/2 {
		y -= nrows
	}
	c.shiftX, c.shiftY = x, y
	c.state = readinessShiftComputed
}

// Align is the one-shot convenience the original exposes as operator():
// correlate against frame and return its displacement, discarding the
// correlation array.
func (c *CrossCorrelation) Align(frame *array2.Array2[float64]) (int, int, error) {
	c.state = readinessNone
	if err := c.Correlate(frame); err != nil {
		return 0, 0, err
	}
	c.computeDisplacement()
	return c.shiftX, c.shiftY, nil
}

// Displacement is the static convenience form: build a correlator for
// ref and immediately align frame against it.
func Displacement(ref, frame *array2.Array2[float64]) (int, int, error) {
	return New(ref).Align(frame)
}
