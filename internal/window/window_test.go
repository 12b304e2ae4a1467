package window

import (
	"math"
	"testing"
)

func TestHannAtOriginIsOne(t *testing.T) {
	w, err := Hann(8, 8, 8)
	if err != nil {
		t.Fatal(err)
	}
	v, err := w.GetSigned(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(v-1) > 1e-9 {
		t.Fatalf("Hann(0,0) = %v, want 1", v)
	}
}

func TestHammingAlphaFloor(t *testing.T) {
	w, err := Hamming(16, 16, 16)
	if err != nil {
		t.Fatal(err)
	}
	minX, minY := w.MinSIndices()
	v, err := w.GetSigned(minX, 0)
	if err != nil {
		t.Fatal(err)
	}
	_ = minY
	if v < 0.079 || v > 0.081 {
		// at i = -aperture/2, cos(pi) = -1, so value = alpha - (1-alpha) = 2*alpha - 1 = 0.08
		t.Fatalf("Hamming edge value = %v, want ~0.08", v)
	}
}

func TestNonPositiveApertureRejected(t *testing.T) {
	if _, err := Hann(8, 8, 0); err == nil {
		t.Fatal("expected domain error for zero aperture")
	}
	if _, err := Hann(8, 8, -1); err == nil {
		t.Fatal("expected domain error for negative aperture")
	}
}
