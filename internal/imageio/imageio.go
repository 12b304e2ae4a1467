// Package imageio writes the pipeline's diagnostic and final images to
// PNG files: a 16-bit grayscale rendering for quantitative inspection,
// and a false-color heatmap for quick visual assessment, mirroring the
// pair of outputs (plain + "_falsecolor") the original writes for each
// of its four named images (sum, phases, power spectrum, reconstruction).
package imageio

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/hzaunick/smip/internal/array2"
	"github.com/hzaunick/smip/internal/smerr"
)

// MinMax returns the smallest and largest values in img.
func MinMax(img *array2.Array2[float64]) (min, max float64) {
	data := img.Data()
	if len(data) == 0 {
		return 0, 0
	}
	min, max = data[0], data[0]
	for _, v := range data[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// Normalized returns a copy of img linearly rescaled so its minimum
// maps to 0 and its maximum to 1. A constant image maps to all zeros.
func Normalized(img *array2.Array2[float64]) *array2.Array2[float64] {
	min, max := MinMax(img)
	span := max - min
	out := array2.New[float64](img.Xsize(), img.Ysize())
	if span == 0 {
		return out
	}
	for i, v := range img.Data() {
		out.Data()[i] = (v - min) / span
	}
	return out
}

// PeakNormalize returns a copy of img scaled so its largest-magnitude
// value maps to 1 (L-infinity normalization): every element divides by
// max(|v|), mirroring the original's normfact = abs(*minmax.second);
// result_image /= normfact. Unlike Normalized, a constant nonzero image
// stays a flat nonzero image rather than collapsing to zero. An
// all-zero image is returned unchanged.
func PeakNormalize(img *array2.Array2[float64]) *array2.Array2[float64] {
	peak := 0.0
	for _, v := range img.Data() {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	out := array2.New[float64](img.Xsize(), img.Ysize())
	if peak == 0 {
		return out
	}
	for i, v := range img.Data() {
		out.Data()[i] = v / peak
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// WriteGray16 min/max-normalizes img and writes it as a 16-bit
// grayscale PNG to path.
func WriteGray16(path string, img *array2.Array2[float64]) error {
	return WriteGray16Raw(path, Normalized(img))
}

// WriteGray16Raw writes img as a 16-bit grayscale PNG without
// rescaling it first; values are clamped to [0,1]. Use this for images
// the caller has already normalized, e.g. with PeakNormalize.
func WriteGray16Raw(path string, img *array2.Array2[float64]) error {
	out := image.NewGray16(image.Rect(0, 0, img.Xsize(), img.Ysize()))
	for y := 0; y < img.Ysize(); y++ {
		for x := 0; x < img.Xsize(); x++ {
			v, _ := img.At(x, y)
			out.SetGray16(x, y, color.Gray16{Y: uint16(clamp01(v) * 65535)})
		}
	}
	return writePNG(path, out)
}

// falseColorStops is a piecewise-linear blue -> cyan -> green -> yellow
// -> red colormap, sampled at 0, 0.25, 0.5, 0.75, 1.0.
var falseColorStops = [5]color.NRGBA{
	{R: 0, G: 0, B: 128, A: 255},
	{R: 0, G: 128, B: 255, A: 255},
	{R: 0, G: 220, B: 0, A: 255},
	{R: 255, G: 220, B: 0, A: 255},
	{R: 220, G: 0, B: 0, A: 255},
}

func falseColor(v float64) color.NRGBA {
	if v <= 0 {
		return falseColorStops[0]
	}
	if v >= 1 {
		return falseColorStops[len(falseColorStops)-1]
	}
	scaled := v * float64(len(falseColorStops)-1)
	lo := int(scaled)
	hi := lo + 1
	if hi >= len(falseColorStops) {
		return falseColorStops[len(falseColorStops)-1]
	}
	frac := scaled - float64(lo)
	a, b := falseColorStops[lo], falseColorStops[hi]
	lerp := func(x, y uint8) uint8 { return uint8(float64(x) + frac*(float64(y)-float64(x))) }
	return color.NRGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 255}
}

// WriteFalseColor min/max-normalizes img and writes it as an 8-bit
// false-color PNG to path.
func WriteFalseColor(path string, img *array2.Array2[float64]) error {
	return WriteFalseColorRaw(path, Normalized(img))
}

// WriteFalseColorRaw writes img as an 8-bit false-color PNG without
// rescaling it first; values are clamped to [0,1]. Use this for images
// the caller has already normalized, e.g. with PeakNormalize.
func WriteFalseColorRaw(path string, img *array2.Array2[float64]) error {
	out := image.NewNRGBA(image.Rect(0, 0, img.Xsize(), img.Ysize()))
	for y := 0; y < img.Ysize(); y++ {
		for x := 0; x < img.Xsize(); x++ {
			v, _ := img.At(x, y)
			out.SetNRGBA(x, y, falseColor(clamp01(v)))
		}
	}
	return writePNG(path, out)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return smerr.NewIO("imageio.writePNG", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return smerr.NewIO("imageio.writePNG", path, err)
	}
	return nil
}
