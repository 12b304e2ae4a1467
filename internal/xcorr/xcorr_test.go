package xcorr

import (
	"testing"

	"github.com/hzaunick/smip/internal/array2"
)

func impulseImage(xsize, ysize, px, py int) *array2.Array2[float64] {
	img := array2.New[float64](xsize, ysize)
	_ = img.Set(px, py, 1)
	return img
}

func TestDisplacementBeforeCorrelateErrors(t *testing.T) {
	ref := impulseImage(8, 8, 4, 4)
	c := New(ref)
	if _, _, err := c.Displacement(); err == nil {
		t.Fatal("expected InvalidState error before Correlate")
	}
	if _, err := c.CorrelationArray(); err == nil {
		t.Fatal("expected InvalidState error before Correlate")
	}
}

func TestDimensionMismatchRejected(t *testing.T) {
	ref := impulseImage(8, 8, 4, 4)
	other := array2.New[float64](4, 4)
	c := New(ref)
	if err := c.Correlate(other); err == nil {
		t.Fatal("expected domain error for mismatched extents")
	}
}

func TestAlignRecoversShiftOfImpulse(t *testing.T) {
	ref := impulseImage(16, 16, 8, 8)
	shifted := impulseImage(16, 16, 10, 6)

	dx, dy, err := Displacement(ref, shifted)
	if err != nil {
		t.Fatal(err)
	}
	if dx != 2 || dy != -2 {
		t.Fatalf("Displacement = (%d,%d), want (2,-2)", dx, dy)
	}
}

func TestCorrelateThenDisplacementAgreesWithAlign(t *testing.T) {
	ref := impulseImage(16, 16, 8, 8)
	shifted := impulseImage(16, 16, 10, 6)

	c := New(ref)
	if err := c.Correlate(shifted); err != nil {
		t.Fatal(err)
	}
	dx, dy, err := c.Displacement()
	if err != nil {
		t.Fatal(err)
	}
	if dx != 2 || dy != -2 {
		t.Fatalf("Displacement = (%d,%d), want (2,-2)", dx, dy)
	}
}
