package array2

import "testing"

func TestSignedIndexingWrapsNegative(t *testing.T) {
	a := New[float64](4, 4)
	if err := a.Set(3, 3, 42); err != nil {
		t.Fatal(err)
	}
	v, err := a.GetSigned(-1, -1)
	if err != nil {
		t.Fatal(err)
	}
	if v != 42 {
		t.Fatalf("GetSigned(-1,-1) = %v, want 42", v)
	}
}

func TestSignedIndexingOutOfRange(t *testing.T) {
	a := New[float64](4, 4)
	if _, err := a.GetSigned(-5, 0); err == nil {
		t.Fatal("expected bounds error for -5 on a 4-wide axis")
	}
}

func TestMinMaxSIndicesEvenOdd(t *testing.T) {
	even := New[int](4, 4)
	minX, minY := even.MinSIndices()
	maxX, maxY := even.MaxSIndices()
	if minX != -2 || minY != -2 || maxX != 1 || maxY != 1 {
		t.Fatalf("even extents: min=(%d,%d) max=(%d,%d)", minX, minY, maxX, maxY)
	}

	odd := New[int](5, 5)
	minX, minY = odd.MinSIndices()
	maxX, maxY = odd.MaxSIndices()
	if minX != -2 || minY != -2 || maxX != 2 || maxY != 2 {
		t.Fatalf("odd extents: min=(%d,%d) max=(%d,%d)", minX, minY, maxX, maxY)
	}
}

func TestRowWrapsOnNegativeIndex(t *testing.T) {
	a, err := NewFromRows([][]int{{1, 2}, {3, 4}, {5, 6}})
	if err != nil {
		t.Fatal(err)
	}
	row, err := a.Row(-1)
	if err != nil {
		t.Fatal(err)
	}
	if row[0] != 5 || row[1] != 6 {
		t.Fatalf("Row(-1) = %v, want last row", row)
	}
}

func TestShiftedClampsAtEdges(t *testing.T) {
	a, err := NewFromRows([][]int{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}})
	if err != nil {
		t.Fatal(err)
	}
	shifted := a.Shifted(1, 0)
	row0, _ := shifted.Row(0)
	if row0[0] != 0 || row0[1] != 1 || row0[2] != 2 {
		t.Fatalf("Shifted(1,0) row 0 = %v", row0)
	}
}

func TestAddDimensionMismatch(t *testing.T) {
	a := New[float64](2, 2)
	b := New[float64](3, 3)
	if _, err := Add(a, b); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestImportConverts(t *testing.T) {
	src := New[int](2, 2)
	src.Fill(3)
	var dst Array2[float64]
	if err := Import(&dst, src, func(v int) float64 { return float64(v) * 2 }); err != nil {
		t.Fatal(err)
	}
	v, err := dst.At(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if v != 6 {
		t.Fatalf("Import conversion = %v, want 6", v)
	}
}

func TestGetSubarrayOutOfBounds(t *testing.T) {
	a := New[float64](4, 4)
	if _, err := a.GetSubarray(2, 2, 3, 3); err == nil {
		t.Fatal("expected bounds error")
	}
}

func TestNewViewAliasesBackingSlice(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	view, err := NewView(data, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !view.IsReference() {
		t.Fatal("expected NewView to mark the array as a reference")
	}
	data[0] = 99
	v, err := view.At(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if v != 99 {
		t.Fatalf("view should alias the backing slice, got %v", v)
	}
}

func TestNewViewRejectsSizeMismatch(t *testing.T) {
	if _, err := NewView([]float64{1, 2, 3}, 2, 2); err == nil {
		t.Fatal("expected NewView to reject a size/extent mismatch")
	}
}

func TestResizeRejectsReferenceArray(t *testing.T) {
	view, err := NewView([]float64{1, 2, 3, 4}, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := view.Resize(3, 3); err == nil {
		t.Fatal("expected Resize to reject a non-owning view")
	}
}

func TestResizeReallocatesOwnedArray(t *testing.T) {
	a := New[float64](2, 2)
	if err := a.Resize(3, 3); err != nil {
		t.Fatal(err)
	}
	if a.Xsize() != 3 || a.Ysize() != 3 {
		t.Fatalf("Resize extents = %dx%d, want 3x3", a.Xsize(), a.Ysize())
	}
}

func TestImportRejectsResizeOfReferenceDestination(t *testing.T) {
	view, err := NewView([]float64{1, 2, 3, 4}, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	src := New[int](3, 3)
	if err := Import(view, src, func(v int) float64 { return float64(v) }); err == nil {
		t.Fatal("expected Import to reject reallocating a reference destination")
	}
}

func TestImportAllowsSameSizeReferenceDestination(t *testing.T) {
	view, err := NewView([]float64{1, 2, 3, 4}, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	src := New[int](2, 2)
	src.Fill(5)
	if err := Import(view, src, func(v int) float64 { return float64(v) }); err != nil {
		t.Fatal(err)
	}
	v, err := view.At(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if v != 5 {
		t.Fatalf("Import into same-size reference = %v, want 5", v)
	}
}
