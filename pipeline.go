package smip

import (
	"errors"
	"math"
	"math/cmplx"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hzaunick/smip/internal/array2"
	"github.com/hzaunick/smip/internal/bispectrum"
	"github.com/hzaunick/smip/internal/fftoracle"
	"github.com/hzaunick/smip/internal/imageio"
	"github.com/hzaunick/smip/internal/logging"
	"github.com/hzaunick/smip/internal/phase"
	"github.com/hzaunick/smip/internal/videoio"
	"github.com/hzaunick/smip/internal/window"
	"github.com/hzaunick/smip/internal/xcorr"
)

// Result is everything the pipeline produces: the registered-and-
// averaged sum image, the averaged power spectrum, the reconstructed
// phases (nil unless SpeckleMasking is enabled), the phase-consistency
// map, the final reconstructed image, and the mean bispectrum itself.
type Result struct {
	SumImage           *array2.Array2[float64]
	PowerSpectrum      *array2.Array2[float64]
	Phases             *array2.Array2[complex64]
	PhaseAngle         *array2.Array2[float64]
	PhaseConsistency   *array2.Array2[float64]
	ReconstructedImage *array2.Array2[float64]
	Bispectrum         *bispectrum.Bispectrum[complex64]
	FramesProcessed    int
}

// WriteOutputs writes every non-nil image of r as a pair of PNGs
// (plain 16-bit grayscale and false-color) under dir, named after the
// original's output files minus their extension. The diagnostic images
// (sum, power spectrum, phase angle, phase consistency) are min/max-
// normalized; the reconstructed image arrives already peak-normalized
// (see Pipeline.Run) and is written as-is.
func (r *Result) WriteOutputs(dir string) error {
	diagnostic := []struct {
		name string
		img  *array2.Array2[float64]
	}{
		{"sum_image", r.SumImage},
		{"powerspec", r.PowerSpectrum},
		{"phases", r.PhaseAngle},
		{"phasecons", r.PhaseConsistency},
	}
	for _, n := range diagnostic {
		if n.img == nil {
			continue
		}
		if err := imageio.WriteGray16(filepath.Join(dir, n.name+".png"), n.img); err != nil {
			return err
		}
		if err := imageio.WriteFalseColor(filepath.Join(dir, n.name+"_falsecolor.png"), n.img); err != nil {
			return err
		}
	}
	if r.ReconstructedImage != nil {
		if err := imageio.WriteGray16Raw(filepath.Join(dir, "reco_image.png"), r.ReconstructedImage); err != nil {
			return err
		}
		if err := imageio.WriteFalseColorRaw(filepath.Join(dir, "reco_image_falsecolor.png"), r.ReconstructedImage); err != nil {
			return err
		}
	}
	return nil
}

// Pipeline runs the reconstruction end to end over a videoio.Source.
type Pipeline struct {
	Config Config
	Logger *zap.SugaredLogger
}

// New builds a Pipeline with a no-op logger; set Logger to get
// diagnostics.
func New(cfg Config) *Pipeline {
	return &Pipeline{Config: cfg}
}

func (p *Pipeline) logger() *zap.SugaredLogger {
	if p.Logger != nil {
		return p.Logger
	}
	return logging.Nop()
}

// Run is the package-level convenience entry point cmd/smip calls:
// build a Pipeline for cfg and run it against source, logging through
// logger (nil is fine; it runs silently).
func Run(cfg Config, source videoio.Source, logger *zap.SugaredLogger) (*Result, error) {
	p := &Pipeline{Config: cfg, Logger: logger}
	return p.Run(source)
}

// Run executes the ten pipeline steps: open the source and read the
// reference frame; build a zero sum image, power spectrum and
// bispectrum; register and accumulate every frame up to Config's frame
// budget; normalize the accumulators; reconstruct Fourier phases from
// the mean bispectrum; apodize them with a Hann window; combine with
// sqrt(power spectrum); inverse-transform to the reconstructed image;
// peak-normalize it so its largest magnitude is 1; and, if
// Config.OutputDir is set, write every output image and the
// bispectrum dump.
func (p *Pipeline) Run(source videoio.Source) (*Result, error) {
	cfg := p.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := p.logger()

	log.Infow("opening video source")
	defer source.Close()

	for i := 0; i < cfg.RefFrame; i++ {
		if _, err := source.NextFrame(cfg.ColorChannel); err != nil {
			return nil, err
		}
	}
	log.Infow("reading reference frame", "index", cfg.RefFrame)
	refRaw, err := source.NextFrame(cfg.ColorChannel)
	if err != nil {
		return nil, err
	}

	cropRect := cfg.Crop
	if cfg.Follow && cropRect.Width > 0 && cropRect.Height > 0 && cropRect.Left == 0 && cropRect.Top == 0 {
		bx, by := brightestPixel(refRaw.Image)
		cropRect.Left = clampInt(bx-cropRect.Width/2, 0, refRaw.Image.Xsize()-cropRect.Width)
		cropRect.Top = clampInt(by-cropRect.Height/2, 0, refRaw.Image.Ysize()-cropRect.Height)
	}

	refFrame, err := cropFrame(refRaw.Image, cropRect)
	if err != nil {
		return nil, err
	}
	nx, ny := refFrame.Xsize(), refFrame.Ysize()

	log.Infow("creating bispectrum", "depth", cfg.BispectrumDepth, "nx", nx, "ny", ny)
	bispec := bispectrum.New[complex64]([4]int{nx, ny, cfg.BispectrumDepth, cfg.BispectrumDepth})
	sumImage := array2.New[float64](nx, ny)
	powerSpec := array2.New[float64](nx, ny)
	corr := xcorr.New(refFrame)

	total := cfg.MaxFrames
	if n := source.NFrames(); n > 0 {
		if avail := n - cfg.RefFrame; avail < total {
			total = avail
		}
	}
	if total < 1 {
		total = 1
	}

	accumulate := func(frame *array2.Array2[float64], dx, dy int) error {
		if cfg.CalcSum {
			back := frame.Shifted(-dx, -dy)
			sum, err := array2.Add(sumImage, back)
			if err != nil {
				return err
			}
			sumImage = sum
		}
		freq, err := fftoracle.ForwardReal(frame)
		if err != nil {
			return err
		}
		if cfg.SpeckleMasking {
			freq64 := array2.Convert[complex64](freq, func(v complex128) complex64 { return complex64(v) })
			if err := bispec.AccumulateFromFFT(freq64); err != nil {
				return err
			}
		}
		pow := array2.New[float64](nx, ny)
		for i, v := range freq.Data() {
			pow.Data()[i] = real(v)*real(v) + imag(v)*imag(v)
		}
		sp, err := array2.Add(powerSpec, pow)
		if err != nil {
			return err
		}
		powerSpec = sp
		return nil
	}

	log.Infow("accumulating frame", "frame", 1, "total", total)
	if err := accumulate(refFrame, 0, 0); err != nil {
		return nil, err
	}

	framesProcessed := 1
	for i := 1; i < total; i++ {
		raw, err := source.NextFrame(cfg.ColorChannel)
		if err != nil {
			if errors.Is(err, videoio.ErrExhausted) {
				log.Infow("source exhausted early", "frames", framesProcessed)
				break
			}
			return nil, err
		}
		log.Debugw("read frame", "index", raw.Index)

		frameCropRect := cropRect
		if cfg.Follow && cropRect.Width > 0 && cropRect.Height > 0 {
			fdx, fdy, derr := xcorr.Displacement(refRaw.Image, raw.Image)
			if derr != nil {
				return nil, derr
			}
			frameCropRect.Left = clampInt(cropRect.Left+fdx, 0, raw.Image.Xsize()-cropRect.Width)
			frameCropRect.Top = clampInt(cropRect.Top+fdy, 0, raw.Image.Ysize()-cropRect.Height)
		}
		frame, err := cropFrame(raw.Image, frameCropRect)
		if err != nil {
			return nil, err
		}

		dx, dy := 0, 0
		if cfg.CalcSum {
			log.Infow("registering frame", "frame", i+1, "total", total)
			if err := corr.Correlate(frame); err != nil {
				return nil, err
			}
			dx, dy, err = corr.Displacement()
			if err != nil {
				return nil, err
			}
		}
		log.Infow("accumulating frame", "frame", i+1, "total", total)
		if err := accumulate(frame, dx, dy); err != nil {
			return nil, err
		}
		framesProcessed++
	}

	log.Infow("normalizing accumulators", "frames", framesProcessed)
	n := float64(framesProcessed)
	sumImage = sumImage.ScaleScalar(1.0 / n)
	powerSpec = powerSpec.ScaleScalar(1.0 / (n * float64(nx*ny)))

	result := &Result{
		SumImage:        sumImage,
		PowerSpectrum:   powerSpec,
		Bispectrum:      bispec,
		FramesProcessed: framesProcessed,
	}

	if !cfg.SpeckleMasking {
		if cfg.OutputDir != "" {
			if err := result.WriteOutputs(cfg.OutputDir); err != nil {
				return nil, err
			}
		}
		return result, nil
	}

	bispec.Scale(complex64(complex(1.0/n, 0)))

	if cfg.OutputDir != "" {
		path := filepath.Join(cfg.OutputDir, "bispectrum.dat")
		log.Infow("writing bispectrum dump", "path", path)
		if err := bispec.WriteFile(path); err != nil {
			return nil, err
		}
	}

	log.Infow("reconstructing phases from bispectrum")
	phases, pm, err := phase.Reconstruct[complex64](bispec, nx, ny, cfg.RecoRadius)
	if err != nil {
		return nil, err
	}
	result.Phases = phases
	result.PhaseAngle = phaseAngleImage(phases)
	result.PhaseConsistency = consistencyImage(pm, nx, ny)

	log.Infow("applying window function to phase map")
	win, err := window.Hann(nx, ny, 2*cfg.RecoRadius)
	if err != nil {
		return nil, err
	}
	winC := array2.Convert[complex64](win, func(v float64) complex64 { return complex(float32(v), 0) })
	apodized, err := array2.Mul(phases, winC)
	if err != nil {
		return nil, err
	}

	amplitude := array2.New[complex64](nx, ny)
	for i, v := range powerSpec.Data() {
		amplitude.Data()[i] = complex(float32(math.Sqrt(v)), 0)
	}
	combined, err := array2.Mul(amplitude, apodized)
	if err != nil {
		return nil, err
	}

	combined128 := array2.Convert[complex128](combined, func(v complex64) complex128 { return complex128(v) })
	log.Infow("fft back transform of combined spectrum")
	reco, err := fftoracle.Inverse(combined128)
	if err != nil {
		return nil, err
	}
	result.ReconstructedImage = imageio.PeakNormalize(magnitude(reco))

	if cfg.OutputDir != "" {
		log.Infow("writing output images", "dir", cfg.OutputDir)
		if err := result.WriteOutputs(cfg.OutputDir); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func phaseAngleImage(phases *array2.Array2[complex64]) *array2.Array2[float64] {
	out := array2.New[float64](phases.Xsize(), phases.Ysize())
	for i, v := range phases.Data() {
		out.Data()[i] = cmplx.Phase(complex128(v))
	}
	return out
}

func consistencyImage(pm *phase.Map, xsize, ysize int) *array2.Array2[float64] {
	out := array2.New[float64](xsize, ysize)
	minX, minY := out.MinSIndices()
	maxX, maxY := out.MaxSIndices()
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			el, ok := pm.At(x, y)
			if !ok {
				continue
			}
			_ = out.SetSigned(x, y, el.Consistency)
		}
	}
	return out
}

func magnitude(a *array2.Array2[complex128]) *array2.Array2[float64] {
	out := array2.New[float64](a.Xsize(), a.Ysize())
	for i, v := range a.Data() {
		out.Data()[i] = cmplx.Abs(v)
	}
	return out
}

func cropFrame(img *array2.Array2[float64], rect CropRect) (*array2.Array2[float64], error) {
	if rect.Width <= 0 || rect.Height <= 0 {
		return img, nil
	}
	return img.GetSubarray(rect.Left, rect.Top, rect.Width, rect.Height)
}

func brightestPixel(img *array2.Array2[float64]) (int, int) {
	bestX, bestY := 0, 0
	bestV := math.Inf(-1)
	for y := 0; y < img.Ysize(); y++ {
		for x := 0; x < img.Xsize(); x++ {
			v, _ := img.At(x, y)
			if v > bestV {
				bestV = v
				bestX, bestY = x, y
			}
		}
	}
	return bestX, bestY
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
