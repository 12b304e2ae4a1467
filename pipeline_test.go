package smip

import (
	"math"
	"testing"

	"github.com/hzaunick/smip/internal/array2"
	"github.com/hzaunick/smip/internal/videoio"
)

// syntheticFrames builds n identical frames holding a single bright
// point source at (cx, cy) on a zero background, the simplest input a
// bispectrum phase reconstruction can recover exactly.
func syntheticFrames(n, size, cx, cy int) []*array2.Array2[float64] {
	frames := make([]*array2.Array2[float64], n)
	for f := 0; f < n; f++ {
		img := array2.New[float64](size, size)
		_ = img.Set(cx, cy, 100)
		frames[f] = img
	}
	return frames
}

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig should validate, got %v", err)
	}
}

func TestConfigValidateRejectsNonPositiveDepth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BispectrumDepth = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for zero bispectrum depth")
	}
}

func TestConfigValidateRejectsNegativeCrop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Crop = CropRect{Left: -1, Top: 0, Width: 4, Height: 4}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for negative crop offset")
	}
}

func TestRunProducesNormalizedOutputs(t *testing.T) {
	frames := syntheticFrames(4, 9, 4, 4)
	src := videoio.NewMemorySource(frames)

	cfg := DefaultConfig()
	cfg.MaxFrames = 4
	cfg.BispectrumDepth = 3
	cfg.RecoRadius = 4

	result, err := Run(cfg, src, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.FramesProcessed != 4 {
		t.Fatalf("FramesProcessed = %d, want 4", result.FramesProcessed)
	}
	if result.ReconstructedImage == nil {
		t.Fatal("expected a reconstructed image when SpeckleMasking is enabled")
	}
	if result.Phases == nil || result.PhaseConsistency == nil {
		t.Fatal("expected phase outputs when SpeckleMasking is enabled")
	}

	for _, v := range result.PowerSpectrum.Data() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("power spectrum contains non-finite value %v", v)
		}
	}
}

func TestRunSkipsPhaseReconstructionWithoutSpeckleMasking(t *testing.T) {
	frames := syntheticFrames(3, 7, 3, 3)
	src := videoio.NewMemorySource(frames)

	cfg := DefaultConfig()
	cfg.MaxFrames = 3
	cfg.SpeckleMasking = false

	result, err := Run(cfg, src, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Phases != nil || result.ReconstructedImage != nil {
		t.Fatal("expected no phase outputs when SpeckleMasking is disabled")
	}
	if result.SumImage == nil || result.PowerSpectrum == nil {
		t.Fatal("expected sum and power spectrum outputs regardless of SpeckleMasking")
	}
}

func TestRunHonorsMaxFramesShorterThanSource(t *testing.T) {
	frames := syntheticFrames(10, 7, 3, 3)
	src := videoio.NewMemorySource(frames)

	cfg := DefaultConfig()
	cfg.MaxFrames = 3
	cfg.BispectrumDepth = 2
	cfg.RecoRadius = 2

	result, err := Run(cfg, src, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.FramesProcessed != 3 {
		t.Fatalf("FramesProcessed = %d, want 3", result.FramesProcessed)
	}
}

func TestRunStopsEarlyOnSourceExhaustion(t *testing.T) {
	frames := syntheticFrames(2, 7, 3, 3)
	src := videoio.NewMemorySource(frames)

	cfg := DefaultConfig()
	cfg.MaxFrames = 400
	cfg.BispectrumDepth = 2
	cfg.RecoRadius = 2

	result, err := Run(cfg, src, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.FramesProcessed != 2 {
		t.Fatalf("FramesProcessed = %d, want 2 (source only had 2 frames)", result.FramesProcessed)
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	src := videoio.NewMemorySource(syntheticFrames(1, 4, 2, 2))
	cfg := DefaultConfig()
	cfg.RecoRadius = 0
	if _, err := Run(cfg, src, nil); err == nil {
		t.Fatal("expected Run to reject an invalid config before touching the source")
	}
}

func TestCropRestrictsFrameExtent(t *testing.T) {
	frames := syntheticFrames(2, 10, 5, 5)
	src := videoio.NewMemorySource(frames)

	cfg := DefaultConfig()
	cfg.MaxFrames = 2
	cfg.BispectrumDepth = 2
	cfg.RecoRadius = 2
	cfg.Crop = CropRect{Left: 2, Top: 2, Width: 4, Height: 4}

	result, err := Run(cfg, src, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.SumImage.Xsize() != 4 || result.SumImage.Ysize() != 4 {
		t.Fatalf("sum image extent = %dx%d, want 4x4", result.SumImage.Xsize(), result.SumImage.Ysize())
	}
}
