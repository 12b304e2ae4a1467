// Package bispectrum implements the four-dimensional frequency-domain
// bispectrum (a third-order moment) used by speckle masking: for a 2-D Fourier transform F,
// B(i,j,k,l) = F(i,j) * F(k,l) * conj(F(i+k,j+l)).
//
// A full bispectrum over an N-by-N image would need N^4 complex
// entries. Two symmetries cut that drastically: the Hermitian relation
// B(i,j,k,l) = conj(B(-i,-j,-k,-l)), and the triple-product swap
// B(i,j,k,l) = B(k,l,i,j). Bispectrum stores only one representative
// per symmetry orbit (a "fundamental wedge") and reconstructs every
// other element on lookup.
package bispectrum

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/hzaunick/smip/internal/array2"
	"github.com/hzaunick/smip/internal/cnum"
	"github.com/hzaunick/smip/internal/smerr"
)

// Indices is a four-component frequency-pair index (i, j, k, l), i.e.
// the pair of 2-D frequencies (i,j) and (k,l) the bispectrum entry is
// defined over.
type Indices struct {
	I, J, K, L int
}

func negate(x Indices) Indices { return Indices{-x.I, -x.J, -x.K, -x.L} }

// descriptor caches the derived sizing of a Bispectrum for a given
// dimsizes, mirroring compute_descriptor in the original.
type descriptor struct {
	sizes      [4]int
	baseSizes  [4]int
	baseSize   int
	totalSize  int
	minIndices Indices
	maxIndices Indices
}

func computeDescriptor(dimsizes [4]int) descriptor {
	var d descriptor
	for i, n := range dimsizes {
		d.sizes[i] = (n/2)*2 + 1
	}
	d.baseSizes[0] = d.sizes[0] - d.sizes[0]/2
	d.baseSizes[1] = d.sizes[1]
	d.baseSizes[2] = d.sizes[2] - d.sizes[2]/2
	d.baseSizes[3] = d.sizes[3]
	d.baseSize = d.baseSizes[0] * d.baseSizes[1] * d.baseSizes[2] * d.baseSizes[3]
	d.totalSize = d.sizes[0] * d.sizes[1] * d.sizes[2] * d.sizes[3]
	minArr := [4]int{}
	maxArr := [4]int{}
	for i, n := range d.sizes {
		minArr[i] = -n / 2
		maxArr[i] = n + minArr[i] - 1
	}
	d.minIndices = Indices{minArr[0], minArr[1], minArr[2], minArr[3]}
	d.maxIndices = Indices{maxArr[0], maxArr[1], maxArr[2], maxArr[3]}
	return d
}

// symmetryCase names which of the six symmetry-orbit representatives
// an (i,j,k,l) tuple falls into.
type symmetryCase int

const (
	caseT1 symmetryCase = iota
	caseT3
	caseT6
	caseT7
	caseT9
	caseT12
)

func classify(idx Indices) symmetryCase {
	switch {
	case idx.I <= 0 && idx.K <= 0:
		return caseT1
	case idx.I > 0 && idx.K > 0:
		return caseT7
	case idx.I > 0 && idx.K <= 0:
		if idx.I+idx.K > 0 {
			return caseT6
		}
		return caseT9
	default: // idx.I <= 0 && idx.K > 0
		if idx.I+idx.K > 0 {
			return caseT3
		}
		return caseT12
	}
}

// canonicalize maps any (i,j,k,l) onto the stored fundamental-wedge
// representative, reporting whether the lookup value must be
// conjugated to recover the requested element.
func canonicalize(idx Indices) (uv Indices, conjugate bool) {
	switch classify(idx) {
	case caseT1:
		return idx, false
	case caseT7:
		return negate(idx), true
	case caseT6:
		return Indices{-idx.I - idx.K, -idx.J - idx.L, idx.K, idx.L}, false
	case caseT9:
		return Indices{-idx.I, -idx.J, idx.K + idx.I, idx.L + idx.J}, true
	case caseT3:
		return Indices{idx.I, idx.J, -idx.I - idx.K, -idx.J - idx.L}, false
	case caseT12:
		return Indices{idx.K + idx.I, idx.L + idx.J, -idx.K, -idx.L}, true
	}
	panic("bispectrum: unreachable symmetry case")
}

// wrapComponent adds n if v is negative, matching calc_offset's single
// wraparound step.
func wrapComponent(v, n int) int {
	if v < 0 {
		return v + n
	}
	return v
}

// calcOffset maps a canonical (i,j,k,l) tuple to its storage address,
// by negating the i and k (ux, vx) axes, wrapping any negative
// component modulo its full (not base) size, then combining the four
// components via mixed-radix encoding with the base sizes.
func calcOffset(d descriptor, idx Indices) int {
	i := wrapComponent(-idx.I, d.sizes[0])
	j := wrapComponent(idx.J, d.sizes[1])
	k := wrapComponent(-idx.K, d.sizes[2])
	l := wrapComponent(idx.L, d.sizes[3])

	addr := i
	addr *= d.baseSizes[1]
	addr += j
	addr *= d.baseSizes[2]
	addr += k
	addr *= d.baseSizes[3]
	addr += l
	return addr
}

// calcIndices is the address-to-index inverse of calcOffset's mixed
// radix arithmetic. It is not generally the inverse of canonicalize:
// components that were wrapped during calcOffset come back in their
// wrapped (non-negative) form, not their original signed value. It
// exists to let callers enumerate storage in index order.
func calcIndices(d descriptor, addr int) Indices {
	temp := d.baseSize / d.baseSizes[0]
	rest := addr
	var idx Indices

	idx.I = -(rest / temp)
	temp *= -idx.I
	rest -= temp

	temp = d.baseSizes[2] * d.baseSizes[3]
	idx.J = rest / temp
	temp *= idx.J
	rest -= temp

	temp = d.baseSizes[3]
	idx.K = -(rest / temp)
	temp *= -idx.K
	rest -= temp

	idx.L = rest
	return idx
}

// Bispectrum stores the fundamental-wedge representatives of a 4-D
// bispectrum over complex entries of type C (complex64 or complex128).
type Bispectrum[C cnum.Complex] struct {
	dimsizes [4]int
	desc     descriptor
	data     []C
}

// New allocates a Bispectrum with dimension sizes (i,j,k,l) = dimsizes.
// The stored extents are derived as sizes = (dimsizes/2)*2+1 per axis,
// so an even and an odd dimsize produce the same stored size.
func New[C cnum.Complex](dimsizes [4]int) *Bispectrum[C] {
	d := computeDescriptor(dimsizes)
	return &Bispectrum[C]{
		dimsizes: dimsizes,
		desc:     d,
		data:     make([]C, d.baseSize),
	}
}

// Sizes returns the full (unreduced) per-axis extents.
func (b *Bispectrum[C]) Sizes() [4]int { return b.desc.sizes }

// BaseSizes returns the reduced per-axis extents actually stored.
func (b *Bispectrum[C]) BaseSizes() [4]int { return b.desc.baseSizes }

// BaseSize returns the number of stored elements.
func (b *Bispectrum[C]) BaseSize() int { return b.desc.baseSize }

// TotalSize returns the number of elements a full (unfolded)
// bispectrum of these dimensions would have.
func (b *Bispectrum[C]) TotalSize() int { return b.desc.totalSize }

// MinIndices returns the per-axis lower bound of addressable indices.
func (b *Bispectrum[C]) MinIndices() Indices { return b.desc.minIndices }

// MaxIndices returns the per-axis upper bound of addressable indices.
func (b *Bispectrum[C]) MaxIndices() Indices { return b.desc.maxIndices }

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// GetElement returns B(idx), transparently resolving through the
// symmetry folding and the (i,j) <-> (k,l) swap the original performs
// when the v-pair falls outside the stored range.
func (b *Bispectrum[C]) GetElement(idx Indices) (C, error) {
	var zero C
	maxIdx := b.desc.maxIndices

	if absInt(idx.K) > maxIdx.K || absInt(idx.L) > maxIdx.L {
		idx = Indices{idx.K, idx.L, idx.I, idx.J}
	}
	if absInt(idx.K) > maxIdx.K || absInt(idx.L) > maxIdx.L {
		return zero, errors.Wrapf(smerr.NewBounds("bispectrum.GetElement", idx.I, idx.J, idx.K, idx.L),
			"initial element access bounds check failed")
	}

	uv, conjugate := canonicalize(idx)
	if absInt(uv.K) > maxIdx.K || absInt(uv.L) > maxIdx.L {
		uv = Indices{uv.K, uv.L, uv.I, uv.J}
	}

	addr := calcOffset(b.desc, uv)
	if addr < 0 || addr >= b.desc.baseSize {
		return zero, errors.Wrapf(smerr.NewBounds("bispectrum.GetElement", idx.I, idx.J, idx.K, idx.L),
			"element address out of bounds")
	}
	if conjugate {
		return cnum.Conj(b.data[addr]), nil
	}
	return b.data[addr], nil
}

// PutElement stores value at the raw (already-canonical) offset for
// idx, without symmetry resolution; callers that don't already hold a
// canonical index should route through AccumulateFromFFT instead.
func (b *Bispectrum[C]) PutElement(idx Indices, value C) error {
	addr := calcOffset(b.desc, idx)
	if addr < 0 || addr >= b.desc.baseSize {
		return errors.Wrapf(smerr.NewBounds("bispectrum.PutElement", idx.I, idx.J, idx.K, idx.L),
			"put_element address out of bounds")
	}
	b.data[addr] = value
	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// AccumulateFromFFT adds the third-order moment of fft into every
// bispectrum entry it covers: for each (i,j) and (k,l) within range,
// B(i,j,k,l) += fft(i,j) * fft(k,l) * conj(fft(i+k,j+l)).
//
// It only visits i,k <= 0 because the triple-product and Hermitian
// symmetries make every other quadrant a reflection of one already
// visited; the full O(n^4) cost is unavoidable; restricting both i and
// k to one half just cuts the constant to about a quarter.
func (b *Bispectrum[C]) AccumulateFromFFT(fft *array2.Array2[C]) error {
	fMinX, fMinY := fft.MinSIndices()
	fMaxX, fMaxY := fft.MaxSIndices()
	md := b.desc.minIndices
	xd := b.desc.maxIndices

	min1 := maxInt(fMinX, md.I)
	min2 := maxInt(fMinY, md.J)
	min3 := maxInt(fMinX, md.K)
	min4 := maxInt(fMinY, md.L)
	max1 := minInt(fMaxX, xd.I)
	max2 := minInt(fMaxY, xd.J)
	max4 := minInt(fMaxY, xd.L)

	for i := min1; i <= 0; i++ {
		for j := min2; j <= max2; j++ {
			fij, err := fft.GetSigned(i, j)
			if err != nil {
				return err
			}
			for k := min3; k <= 0; k++ {
				for l := min4; l <= max4; l++ {
					if i+k < min1 || i+k > max1 || j+l < min2 || j+l > max2 {
						continue
					}
					fkl, err := fft.GetSigned(k, l)
					if err != nil {
						return err
					}
					fsum, err := fft.GetSigned(i+k, j+l)
					if err != nil {
						return err
					}
					t := fij * fkl * cnum.Conj(fsum)
					addr := calcOffset(b.desc, Indices{i, j, k, l})
					b.data[addr] += t
				}
			}
		}
	}
	return nil
}

// Scale multiplies every stored element by factor, in place. The
// pipeline uses it to turn an accumulated sum-of-triples into a mean
// by scaling with 1/N after N frames have been accumulated.
func (b *Bispectrum[C]) Scale(factor C) {
	for i := range b.data {
		b.data[i] *= factor
	}
}

// sameShape reports whether a and b were built with identical
// dimsizes, and so have identical storage layouts element for element.
func (b *Bispectrum[C]) sameShape(other *Bispectrum[C]) bool {
	return b.dimsizes == other.dimsizes
}

func dimensionMismatch(op string, a, b [4]int) error {
	return smerr.NewDimensionMismatch(op, a[:], b[:])
}

// Add returns a+b element for element over their raw storage; a and b
// must share dimsizes.
func Add[C cnum.Complex](a, b *Bispectrum[C]) (*Bispectrum[C], error) {
	if !a.sameShape(b) {
		return nil, dimensionMismatch("bispectrum.Add", a.dimsizes, b.dimsizes)
	}
	out := New[C](a.dimsizes)
	for i := range out.data {
		out.data[i] = a.data[i] + b.data[i]
	}
	return out, nil
}

// Sub returns a-b element for element over their raw storage; a and b
// must share dimsizes.
func Sub[C cnum.Complex](a, b *Bispectrum[C]) (*Bispectrum[C], error) {
	if !a.sameShape(b) {
		return nil, dimensionMismatch("bispectrum.Sub", a.dimsizes, b.dimsizes)
	}
	out := New[C](a.dimsizes)
	for i := range out.data {
		out.data[i] = a.data[i] - b.data[i]
	}
	return out, nil
}

// Mul returns a*b element for element over their raw storage; a and b
// must share dimsizes.
func Mul[C cnum.Complex](a, b *Bispectrum[C]) (*Bispectrum[C], error) {
	if !a.sameShape(b) {
		return nil, dimensionMismatch("bispectrum.Mul", a.dimsizes, b.dimsizes)
	}
	out := New[C](a.dimsizes)
	for i := range out.data {
		out.data[i] = a.data[i] * b.data[i]
	}
	return out, nil
}

// Div returns a/b element for element over their raw storage; a and b
// must share dimsizes.
func Div[C cnum.Complex](a, b *Bispectrum[C]) (*Bispectrum[C], error) {
	if !a.sameShape(b) {
		return nil, dimensionMismatch("bispectrum.Div", a.dimsizes, b.dimsizes)
	}
	out := New[C](a.dimsizes)
	for i := range out.data {
		out.data[i] = a.data[i] / b.data[i]
	}
	return out, nil
}

// headerFields is the number of uint64 fields in the fixed-size
// preamble of a bispectrum.dat file: element count followed by the four
// dimsizes, all little-endian.
const headerFields = 5

// WriteTo serializes the bispectrum as a flat binary dump: a
// headerFields uint64 header (base size, then the four dimsizes)
// followed by base_size complex128 values, real part then imaginary,
// little-endian. The original's C struct dump is not reproduced
// verbatim (it has no stable cross-platform layout); this format is
// this package's own, versioned by the header alone.
func (b *Bispectrum[C]) WriteTo(w io.Writer) (int64, error) {
	header := make([]uint64, headerFields)
	header[0] = uint64(b.desc.baseSize)
	for i, n := range b.dimsizes {
		header[i+1] = uint64(n)
	}
	var written int64
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return written, errors.Wrap(err, "bispectrum: write header")
	}
	written += int64(headerFields * 8)
	for _, v := range b.data {
		re, im := cnum.Real(v), cnum.Imag(v)
		if err := binary.Write(w, binary.LittleEndian, re); err != nil {
			return written, errors.Wrap(err, "bispectrum: write element")
		}
		if err := binary.Write(w, binary.LittleEndian, im); err != nil {
			return written, errors.Wrap(err, "bispectrum: write element")
		}
		written += 16
	}
	return written, nil
}

// ReadFrom deserializes a dump written by WriteTo, resizing the
// receiver to match the stored dimsizes.
func (b *Bispectrum[C]) ReadFrom(r io.Reader) (int64, error) {
	header := make([]uint64, headerFields)
	if err := binary.Read(r, binary.LittleEndian, header); err != nil {
		return 0, smerr.NewIO("bispectrum.ReadFrom", "", errors.Wrap(err, "read header"))
	}
	var dimsizes [4]int
	for i := range dimsizes {
		dimsizes[i] = int(header[i+1])
	}
	// recompute the descriptor from the dimsizes rather than trusting
	// header[0] (the stored base size) blindly.
	d := computeDescriptor(dimsizes)
	if header[0] != uint64(d.baseSize) {
		return 0, smerr.NewIO("bispectrum.ReadFrom", "", errors.Errorf(
			"header base size %d does not match dimsizes %v (expected %d)", header[0], dimsizes, d.baseSize))
	}

	b.dimsizes = dimsizes
	b.desc = d
	b.data = make([]C, d.baseSize)
	read := int64(headerFields * 8)
	for i := range b.data {
		var re, im float64
		if err := binary.Read(r, binary.LittleEndian, &re); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return read, smerr.NewIO("bispectrum.ReadFrom", "", err)
			}
			return read, errors.Wrap(err, "bispectrum: read element")
		}
		if err := binary.Read(r, binary.LittleEndian, &im); err != nil {
			return read, smerr.NewIO("bispectrum.ReadFrom", "", err)
		}
		b.data[i] = cnum.FromParts[C](re, im)
		read += 16
	}
	return read, nil
}

// WriteFile writes the bispectrum dump to path.
func (b *Bispectrum[C]) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return smerr.NewIO("bispectrum.WriteFile", path, err)
	}
	defer f.Close()
	if _, err := b.WriteTo(f); err != nil {
		return smerr.NewIO("bispectrum.WriteFile", path, err)
	}
	return nil
}

// ReadFile reads a bispectrum dump from path.
func (b *Bispectrum[C]) ReadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return smerr.NewIO("bispectrum.ReadFile", path, err)
	}
	defer f.Close()
	if _, err := b.ReadFrom(f); err != nil {
		return err
	}
	return nil
}
