// Package array2 implements a dense row-major 2-D array with both
// unsigned (col, row) and signed, DC-centered (x, y) addressing. The
// signed view wraps modulo the extent in each axis, which is what lets
// Fourier-domain code address frequency (0,0) at the array's "center"
// without ever reshuffling the backing storage.
package array2

import (
	"fmt"

	"github.com/hzaunick/smip/internal/smerr"
)

// Number is the set of element types Array2 accepts: anything the
// ordinary arithmetic operators apply to.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 | ~complex64 | ~complex128
}

// Array2 is a dense xsize*ysize grid of T stored row-major. The zero
// value is an empty, usable array.
type Array2[T Number] struct {
	data      []T
	xsize     int
	ysize     int
	reference bool
}

// New allocates an xsize-by-ysize array with every element at the zero
// value of T.
func New[T Number](xsize, ysize int) *Array2[T] {
	return &Array2[T]{data: make([]T, xsize*ysize), xsize: xsize, ysize: ysize}
}

// NewFilled allocates an xsize-by-ysize array with every element set to
// init.
func NewFilled[T Number](xsize, ysize int, init T) *Array2[T] {
	a := New[T](xsize, ysize)
	for i := range a.data {
		a.data[i] = init
	}
	return a
}

// NewFromRows builds an array from row-major literal data, one slice
// per row; every row must have the same length.
func NewFromRows[T Number](rows [][]T) (*Array2[T], error) {
	if len(rows) == 0 {
		return New[T](0, 0), nil
	}
	xsize := len(rows[0])
	a := New[T](xsize, len(rows))
	for y, row := range rows {
		if len(row) != xsize {
			return nil, smerr.NewDimensionMismatch("array2.NewFromRows", []int{xsize}, []int{len(row)})
		}
		copy(a.data[y*xsize:(y+1)*xsize], row)
	}
	return a, nil
}

// NewView wraps an existing slice as a non-owning Array2: it aliases
// data's backing array instead of copying it, and is marked so that
// Resize and Import (as a destination) refuse to reallocate it rather
// than silently detaching it from the storage it was meant to alias.
// Mirrors the original's set_at, which records m_is_reference and
// makes a subsequent resize throw.
func NewView[T Number](data []T, xsize, ysize int) (*Array2[T], error) {
	if xsize*ysize != len(data) {
		return nil, smerr.NewDimensionMismatch("array2.NewView", []int{xsize, ysize}, []int{len(data)})
	}
	return &Array2[T]{data: data, xsize: xsize, ysize: ysize, reference: true}, nil
}

// IsReference reports whether a is a non-owning view created by
// NewView, rather than storage it allocated itself.
func (a *Array2[T]) IsReference() bool { return a.reference }

// Resize reallocates a to the given extents, discarding its contents.
// It fails with a ReferenceArrayResize error if a is a non-owning view.
func (a *Array2[T]) Resize(xsize, ysize int) error {
	if a.reference {
		return smerr.NewReferenceArrayResize("array2.Resize")
	}
	a.data = make([]T, xsize*ysize)
	a.xsize = xsize
	a.ysize = ysize
	return nil
}

// Xsize returns the number of columns.
func (a *Array2[T]) Xsize() int { return a.xsize }

// Ysize returns the number of rows.
func (a *Array2[T]) Ysize() int { return a.ysize }

// Ncols is an alias for Xsize, matching the row/column naming used at
// call sites that iterate rows of columns.
func (a *Array2[T]) Ncols() int { return a.xsize }

// Nrows is an alias for Ysize.
func (a *Array2[T]) Nrows() int { return a.ysize }

// Len returns the total element count.
func (a *Array2[T]) Len() int { return len(a.data) }

// Data exposes the backing row-major slice for bulk access (FFT
// adapters, file I/O). Callers must not change its length.
func (a *Array2[T]) Data() []T { return a.data }

func (a *Array2[T]) stride() int { return a.xsize }

// wrapRow maps a possibly-negative row index into [0, ysize) the way
// the C++ original does: only a single wraparound, not a full modulo,
// since callers are expected to stay within one period.
func (a *Array2[T]) wrapRow(row int) (int, error) {
	urow := row
	if urow < 0 {
		urow += a.ysize
	}
	if urow < 0 || urow >= a.ysize {
		return 0, smerr.NewBounds("array2.Row", row)
	}
	return urow, nil
}

// Row returns the row-th row (wrapping a single negative step) as a
// slice sharing storage with the array.
func (a *Array2[T]) Row(row int) ([]T, error) {
	urow, err := a.wrapRow(row)
	if err != nil {
		return nil, err
	}
	start := urow * a.stride()
	return a.data[start : start+a.xsize], nil
}

// At returns the element at unsigned (col, row), erroring if either is
// out of range.
func (a *Array2[T]) At(col, row int) (T, error) {
	var zero T
	if col < 0 || col >= a.xsize || row < 0 || row >= a.ysize {
		return zero, smerr.NewBounds("array2.At", col, row)
	}
	return a.data[row*a.stride()+col], nil
}

// Set assigns the element at unsigned (col, row).
func (a *Array2[T]) Set(col, row int, val T) error {
	if col < 0 || col >= a.xsize || row < 0 || row >= a.ysize {
		return smerr.NewBounds("array2.Set", col, row)
	}
	a.data[row*a.stride()+col] = val
	return nil
}

// wrapSigned maps a signed x (or y) coordinate the way the C++ `at`
// does: add the corresponding extent once if negative, then bounds
// check. A coordinate more than one period out of range is an error,
// not a further wraparound.
func wrapSigned(v, extent int) (int, bool) {
	if v < 0 {
		v += extent
	}
	if v < 0 || v >= extent {
		return 0, false
	}
	return v, true
}

// GetSigned returns the element at centered coordinate (x, y), wrapping
// negative coordinates into the unsigned range.
func (a *Array2[T]) GetSigned(x, y int) (T, error) {
	var zero T
	ux, ok := wrapSigned(x, a.xsize)
	if !ok {
		return zero, smerr.NewBounds("array2.GetSigned", x, y)
	}
	uy, ok := wrapSigned(y, a.ysize)
	if !ok {
		return zero, smerr.NewBounds("array2.GetSigned", x, y)
	}
	return a.data[uy*a.stride()+ux], nil
}

// SetSigned assigns the element at centered coordinate (x, y).
func (a *Array2[T]) SetSigned(x, y int, val T) error {
	ux, ok := wrapSigned(x, a.xsize)
	if !ok {
		return smerr.NewBounds("array2.SetSigned", x, y)
	}
	uy, ok := wrapSigned(y, a.ysize)
	if !ok {
		return smerr.NewBounds("array2.SetSigned", x, y)
	}
	a.data[uy*a.stride()+ux] = val
	return nil
}

// MinSIndices returns the lower-left corner of the centered coordinate
// range: (-floor(xsize/2), -floor(ysize/2)).
func (a *Array2[T]) MinSIndices() (int, int) {
	return -(a.xsize >> 1), -(a.ysize >> 1)
}

// MaxSIndices returns the upper-right corner of the centered coordinate
// range.
func (a *Array2[T]) MaxSIndices() (int, int) {
	return -a.xsize/2 + a.xsize - 1, -a.ysize/2 + a.ysize - 1
}

// Clone returns a deep copy.
func (a *Array2[T]) Clone() *Array2[T] {
	out := New[T](a.xsize, a.ysize)
	copy(out.data, a.data)
	return out
}

// Fill sets every element to val.
func (a *Array2[T]) Fill(val T) {
	for i := range a.data {
		a.data[i] = val
	}
}

// sameShape reports whether b has identical extents to a.
func (a *Array2[T]) sameShape(b *Array2[T]) bool {
	return a.xsize == b.xsize && a.ysize == b.ysize
}

// Add returns a+b elementwise; both operands must share extents.
func Add[T Number](a, b *Array2[T]) (*Array2[T], error) {
	if !a.sameShape(b) {
		return nil, smerr.NewDimensionMismatch("array2.Add", []int{a.xsize, a.ysize}, []int{b.xsize, b.ysize})
	}
	out := New[T](a.xsize, a.ysize)
	for i := range out.data {
		out.data[i] = a.data[i] + b.data[i]
	}
	return out, nil
}

// Sub returns a-b elementwise; both operands must share extents.
func Sub[T Number](a, b *Array2[T]) (*Array2[T], error) {
	if !a.sameShape(b) {
		return nil, smerr.NewDimensionMismatch("array2.Sub", []int{a.xsize, a.ysize}, []int{b.xsize, b.ysize})
	}
	out := New[T](a.xsize, a.ysize)
	for i := range out.data {
		out.data[i] = a.data[i] - b.data[i]
	}
	return out, nil
}

// Mul returns a*b elementwise; both operands must share extents.
func Mul[T Number](a, b *Array2[T]) (*Array2[T], error) {
	if !a.sameShape(b) {
		return nil, smerr.NewDimensionMismatch("array2.Mul", []int{a.xsize, a.ysize}, []int{b.xsize, b.ysize})
	}
	out := New[T](a.xsize, a.ysize)
	for i := range out.data {
		out.data[i] = a.data[i] * b.data[i]
	}
	return out, nil
}

// Div returns a/b elementwise; both operands must share extents.
func Div[T Number](a, b *Array2[T]) (*Array2[T], error) {
	if !a.sameShape(b) {
		return nil, smerr.NewDimensionMismatch("array2.Div", []int{a.xsize, a.ysize}, []int{b.xsize, b.ysize})
	}
	out := New[T](a.xsize, a.ysize)
	for i := range out.data {
		out.data[i] = a.data[i] / b.data[i]
	}
	return out, nil
}

// AddScalar adds val to every element and returns a new array.
func (a *Array2[T]) AddScalar(val T) *Array2[T] {
	out := New[T](a.xsize, a.ysize)
	for i, v := range a.data {
		out.data[i] = v + val
	}
	return out
}

// ScaleScalar multiplies every element by val and returns a new array.
func (a *Array2[T]) ScaleScalar(val T) *Array2[T] {
	out := New[T](a.xsize, a.ysize)
	for i, v := range a.data {
		out.data[i] = v * val
	}
	return out
}

// Neg returns the elementwise negation.
func (a *Array2[T]) Neg() *Array2[T] {
	out := New[T](a.xsize, a.ysize)
	for i, v := range a.data {
		out.data[i] = -v
	}
	return out
}

// GetSubarray extracts the width-by-height window starting at
// (left, top), without wraparound: the window must lie entirely inside
// the array.
func (a *Array2[T]) GetSubarray(left, top, width, height int) (*Array2[T], error) {
	if left < 0 || top < 0 || left+width > a.xsize || top+height > a.ysize {
		return nil, smerr.NewBounds("array2.GetSubarray", left, top, width, height)
	}
	out := New[T](width, height)
	for y := 0; y < height; y++ {
		srcStart := (top+y)*a.stride() + left
		copy(out.data[y*width:(y+1)*width], a.data[srcStart:srcStart+width])
	}
	return out, nil
}

// Shifted returns a copy of a translated by (dx, dy), clamped at the
// edges: pixels that would come from outside the array are left at the
// zero value rather than wrapping around.
func (a *Array2[T]) Shifted(dx, dy int) *Array2[T] {
	out := New[T](a.xsize, a.ysize)
	startX := clamp(dx, 0, a.xsize-1)
	startY := clamp(dy, 0, a.ysize-1)
	endX := clamp(dx+a.xsize, 1, a.xsize)
	endY := clamp(dy+a.ysize, 1, a.ysize)

	for row := startY; row < endY; row++ {
		for col := startX; col < endX; col++ {
			v, _ := a.At(col-dx, row-dy)
			out.data[row*out.stride()+col] = v
		}
	}
	return out
}

// Shift translates a in place by (dx, dy); see Shifted.
func (a *Array2[T]) Shift(dx, dy int) {
	shifted := a.Shifted(dx, dy)
	a.data = shifted.data
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Import converts src elementwise into dst using conv, resizing dst to
// src's extents. Corresponds to the C++ `import` member with an
// explicit conversion functor; Go methods cannot add a type parameter
// beyond the receiver's, so this is a free function instead. If dst is
// a non-owning view (see NewView) and src's element count doesn't
// already match it, Import fails with ReferenceArrayResize rather than
// reallocating dst's backing slice out from under its owner.
func Import[T, U Number](dst *Array2[T], src *Array2[U], conv func(U) T) error {
	if len(dst.data) != len(src.data) {
		if dst.reference {
			return smerr.NewReferenceArrayResize("array2.Import")
		}
		dst.data = make([]T, len(src.data))
	}
	dst.xsize = src.xsize
	dst.ysize = src.ysize
	for i, v := range src.data {
		dst.data[i] = conv(v)
	}
	return nil
}

// Convert builds a new Array2[T] from src using conv. The destination
// is always freshly allocated to src's extents, so Import can never
// fail on it.
func Convert[T, U Number](src *Array2[U], conv func(U) T) *Array2[T] {
	dst := New[T](src.xsize, src.ysize)
	_ = Import(dst, src, conv)
	return dst
}

// String renders the array row by row, in the style of the original's
// stream-insertion operator.
func (a *Array2[T]) String() string {
	s := ""
	for y := 0; y < a.ysize; y++ {
		row, _ := a.Row(y)
		s += fmt.Sprintf("%v\n", row)
	}
	return s
}

// Range is an inclusive 2-D box of signed coordinates, as returned by
// Array2.SRange, for testing whether a coordinate pair falls inside an
// array's signed extent.
type Range struct {
	MinX, MinY int
	MaxX, MaxY int
}

// Contains reports whether (x, y) lies within the inclusive box.
func (r Range) Contains(x, y int) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// SRange returns the signed coordinate range covered by a, i.e.
// [MinSIndices, MaxSIndices].
func (a *Array2[T]) SRange() Range {
	minX, minY := a.MinSIndices()
	maxX, maxY := a.MaxSIndices()
	return Range{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}
