// Package smip implements speckle-masking image reconstruction: frames
// of a turbulence-degraded video are registered, their Fourier power
// spectra and bispectra are averaged, and a Weigelt bispectrum phase
// reconstruction recovers the diffraction-limited object phase that
// power-spectrum averaging alone throws away.
package smip

import (
	"github.com/hzaunick/smip/internal/smerr"
	"github.com/hzaunick/smip/internal/videoio"
)

// CropRect is a fixed crop box, in unsigned pixel coordinates of the
// source frame, applied before registration and accumulation. A zero
// Width or Height means "no crop: use the whole frame."
type CropRect struct {
	Left, Top, Width, Height int
}

// Config carries every pipeline parameter the CLI exposes.
type Config struct {
	// MaxFrames caps how many frames (including the reference) are
	// accumulated. A video shorter than this is accumulated in full.
	MaxFrames int
	// RefFrame is the index, within the source's frame sequence, used
	// as the fixed registration and bispectrum reference.
	RefFrame int
	// RecoRadius is the radius, in frequency pixels, the phase-
	// reconstruction walk covers.
	RecoRadius float64
	// BispectrumDepth is the extent of the bispectrum's third and
	// fourth dimensions.
	BispectrumDepth int
	// ColorChannel selects which plane of a multi-channel frame is
	// extracted.
	ColorChannel videoio.Channel
	// Crop restricts accumulation to a sub-rectangle of each frame.
	Crop CropRect
	// Follow re-centers Crop on every frame around the object located
	// in the reference frame, tracking it as it drifts; if Crop's
	// position was left at (0,0), the object is found automatically
	// as the brightest pixel of the reference frame.
	Follow bool
	// CalcSum enables registering each frame against the reference and
	// accumulating a back-shifted sum image.
	CalcSum bool
	// SpeckleMasking enables bispectrum accumulation and phase
	// reconstruction. Disabling it yields only the sum and power
	// spectrum outputs.
	SpeckleMasking bool
	// OutputDir is where WriteOutputs and the bispectrum dump are
	// written. Empty means the caller handles persistence itself.
	OutputDir string
	// Verbosity is the number of times -v was repeated on the CLI.
	Verbosity int
}

// DefaultConfig returns the original tool's defaults: up to 400 frames,
// reference frame 0, bispectrum depth 15, reconstruction radius twice
// the depth, white channel, both sum and speckle masking enabled.
func DefaultConfig() Config {
	const depth = 15
	return Config{
		MaxFrames:       400,
		RefFrame:        0,
		BispectrumDepth: depth,
		RecoRadius:      float64(2 * depth),
		ColorChannel:    videoio.ChannelWhite,
		CalcSum:         true,
		SpeckleMasking:  true,
	}
}

// Validate rejects a Config before any I/O is attempted.
func (c Config) Validate() error {
	if c.MaxFrames <= 0 {
		return smerr.NewDomain("smip.Config.Validate", "max frames must be > 0")
	}
	if c.RefFrame < 0 {
		return smerr.NewDomain("smip.Config.Validate", "reference frame index must be >= 0")
	}
	if c.BispectrumDepth <= 0 {
		return smerr.NewDomain("smip.Config.Validate", "bispectrum depth must be > 0")
	}
	if c.RecoRadius <= 0 {
		return smerr.NewDomain("smip.Config.Validate", "reconstruction radius must be > 0")
	}
	if c.Crop.Left < 0 || c.Crop.Top < 0 || c.Crop.Width < 0 || c.Crop.Height < 0 {
		return smerr.NewDomain("smip.Config.Validate", "crop rectangle must have non-negative offset and size")
	}
	return nil
}
