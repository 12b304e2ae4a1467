package videoio

import (
	"errors"
	"testing"

	"github.com/hzaunick/smip/internal/array2"
)

func TestMemorySourceYieldsFramesInOrder(t *testing.T) {
	frames := []*array2.Array2[float64]{
		array2.NewFilled[float64](2, 2, 1),
		array2.NewFilled[float64](2, 2, 2),
	}
	src := NewMemorySource(frames)
	if src.NFrames() != 2 {
		t.Fatalf("NFrames() = %d, want 2", src.NFrames())
	}

	f0, err := src.NextFrame(ChannelWhite)
	if err != nil {
		t.Fatal(err)
	}
	if f0.Index != 0 {
		t.Fatalf("first frame index = %d, want 0", f0.Index)
	}
	v, _ := f0.Image.At(0, 0)
	if v != 1 {
		t.Fatalf("first frame value = %v, want 1", v)
	}

	f1, err := src.NextFrame(ChannelWhite)
	if err != nil {
		t.Fatal(err)
	}
	v, _ = f1.Image.At(0, 0)
	if v != 2 {
		t.Fatalf("second frame value = %v, want 2", v)
	}
}

func TestMemorySourceExhaustionWrapsSentinel(t *testing.T) {
	src := NewMemorySource(nil)
	_, err := src.NextFrame(ChannelWhite)
	if err == nil || !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected wrapped ErrExhausted, got %v", err)
	}
}
