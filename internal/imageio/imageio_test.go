package imageio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hzaunick/smip/internal/array2"
)

func sampleImage() *array2.Array2[float64] {
	img := array2.New[float64](4, 4)
	for i := range img.Data() {
		img.Data()[i] = float64(i)
	}
	return img
}

func TestNormalizedRangeIsZeroOne(t *testing.T) {
	norm := Normalized(sampleImage())
	min, max := MinMax(norm)
	if min != 0 || max != 1 {
		t.Fatalf("normalized range = [%v,%v], want [0,1]", min, max)
	}
}

func TestNormalizedConstantImage(t *testing.T) {
	img := array2.NewFilled[float64](3, 3, 7)
	norm := Normalized(img)
	for _, v := range norm.Data() {
		if v != 0 {
			t.Fatalf("constant image should normalize to all zeros, got %v", v)
		}
	}
}

func TestPeakNormalizeRangeIsSignedUnitInterval(t *testing.T) {
	norm := PeakNormalize(sampleImage())
	_, max := MinMax(norm)
	if max != 1 {
		t.Fatalf("peak-normalized max = %v, want 1", max)
	}
}

func TestPeakNormalizeConstantNonzeroImageStaysFlatNonzero(t *testing.T) {
	img := array2.NewFilled[float64](3, 3, 7)
	norm := PeakNormalize(img)
	for _, v := range norm.Data() {
		if v != 1 {
			t.Fatalf("constant nonzero image should peak-normalize to all ones, got %v", v)
		}
	}
}

func TestPeakNormalizeZeroImageStaysZero(t *testing.T) {
	img := array2.New[float64](3, 3)
	norm := PeakNormalize(img)
	for _, v := range norm.Data() {
		if v != 0 {
			t.Fatalf("zero image should peak-normalize to all zeros, got %v", v)
		}
	}
}

func TestWriteGray16RawProducesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")
	if err := WriteGray16Raw(path, PeakNormalize(sampleImage())); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Fatal("expected non-empty PNG file")
	}
}

func TestWriteGray16ProducesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")
	if err := WriteGray16(path, sampleImage()); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Fatal("expected non-empty PNG file")
	}
}

func TestWriteFalseColorProducesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out_falsecolor.png")
	if err := WriteFalseColor(path, sampleImage()); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Fatal("expected non-empty PNG file")
	}
}
