// Package phase reconstructs the Fourier phase of an object from its
// bispectrum via the recursive phase-relation technique: starting from
// five seeded DC-adjacent phases, a radial walk visits every frequency
// pixel in order of increasing radius, estimating its phase as the
// circular mean of every bispectrum triple that relates it to
// already-solved neighbors.
package phase

import (
	"math"

	"github.com/hzaunick/smip/internal/array2"
	"github.com/hzaunick/smip/internal/bispectrum"
	"github.com/hzaunick/smip/internal/cnum"
)

// Epsilon is the magnitude below which a bispectrum entry or an
// accumulated phase estimate is treated as numerically zero.
const Epsilon = 1e-25

// Element is one entry of a PhaseMap: whether the corresponding
// frequency's phase has been solved, and how consistent the ensemble
// of bispectrum triples that produced it were (1 = perfect agreement,
// 0 = no usable triple or total cancellation).
type Element struct {
	Flag        bool
	Consistency float64
}

// Map records, for every frequency pixel in an xsize-by-ysize spatial
// grid, whether its phase has been solved and with what consistency.
// It uses the same signed, DC-centered addressing as Array2, but
// PhaseMapElement is not an arithmetic type so it cannot itself be an
// Array2[Element].
type Map struct {
	xsize, ysize int
	data         []Element
}

// NewMap allocates an all-unsolved phase map over an xsize-by-ysize
// grid.
func NewMap(xsize, ysize int) *Map {
	return &Map{xsize: xsize, ysize: ysize, data: make([]Element, xsize*ysize)}
}

func (m *Map) minMax() (minX, minY, maxX, maxY int) {
	minX, minY = -(m.xsize >> 1), -(m.ysize >> 1)
	maxX = -m.xsize/2 + m.xsize - 1
	maxY = -m.ysize/2 + m.ysize - 1
	return
}

// Contains reports whether (x, y) lies within the map's addressable
// signed range.
func (m *Map) Contains(x, y int) bool {
	minX, minY, maxX, maxY := m.minMax()
	return x >= minX && x <= maxX && y >= minY && y <= maxY
}

func (m *Map) wrap(x, y int) (int, int, bool) {
	ux, uy := x, y
	if ux < 0 {
		ux += m.xsize
	}
	if uy < 0 {
		uy += m.ysize
	}
	if ux < 0 || ux >= m.xsize || uy < 0 || uy >= m.ysize {
		return 0, 0, false
	}
	return ux, uy, true
}

// At returns the element at signed coordinate (x, y) and whether it is
// addressable.
func (m *Map) At(x, y int) (Element, bool) {
	ux, uy, ok := m.wrap(x, y)
	if !ok {
		return Element{}, false
	}
	return m.data[uy*m.xsize+ux], true
}

// Set assigns the element at signed coordinate (x, y); it is a no-op if
// the coordinate is out of range.
func (m *Map) Set(x, y int, el Element) {
	ux, uy, ok := m.wrap(x, y)
	if !ok {
		return
	}
	m.data[uy*m.xsize+ux] = el
}

// seedPhase is the phase value (1+0i) assigned to the DC bin and its
// four immediate neighbors before the radial walk begins.
func seedPhase[C cnum.Complex]() C { return cnum.FromParts[C](1, 0) }

// Reconstruct walks the frequency plane outward from DC, filling in
// phases[w] for every w up to recoRadius using the bispectrum triples
// that relate it to already-solved frequencies. It returns the
// reconstructed phase array (unit-modulus except where unsolved, which
// stay zero) and the phase map recording solved/consistency state.
func Reconstruct[C cnum.Complex](bispec *bispectrum.Bispectrum[C], xsize, ysize int, recoRadius float64) (*array2.Array2[C], *Map, error) {
	pm := NewMap(xsize, ysize)
	phases := array2.New[C](xsize, ysize)

	init := seedPhase[C]()
	seed := []struct{ x, y int }{{0, 0}, {1, 0}, {0, 1}, {-1, 0}, {0, -1}}
	for i, s := range seed {
		v := init
		if i >= 3 { // (-1,0) and (0,-1) seed with conj(init)
			v = cnum.Conj(init)
		}
		if err := phases.SetSigned(s.x, s.y, v); err != nil {
			return nil, nil, err
		}
		pm.Set(s.x, s.y, Element{Flag: true, Consistency: 1.0})
	}

	r, phi := 0.0, 0.0
	i, j := 0, 0
	for r <= recoRadius {
		r, phi, i, j = nextRecoIndex(r, phi, i, j)
		if r > recoRadius {
			break
		}
		if !pm.Contains(i, j) {
			continue
		}
		if el, _ := pm.At(i, j); el.Flag {
			continue
		}
		if err := calcPhase(bispec, phases, pm, i, j); err != nil {
			return nil, nil, err
		}
	}
	return phases, pm, nil
}

// nextRecoIndex advances the spiral walk state by one lattice point,
// reproducing the original's uneven-increment radial scan: phi grows
// by 1/(2*pi*r) each micro-step (roughly one pixel of arc length at
// radius r) until the floored (r*cos(phi), r*sin(phi)) lands on a new
// integer pair; r increases by 1 whenever phi wraps past 2*pi. Note
// that dphi is fixed for the whole call at the value implied by the
// entry radius, even if r grows partway through, exactly as the
// original computes it once per call.
func nextRecoIndex(r, phi float64, i, j int) (float64, float64, int, int) {
	const twoPi = 2 * math.Pi
	dphi := 1.0 / (twoPi * r)
	ii, jj := i, j
	for i == ii && j == jj {
		phi += dphi
		if phi > twoPi {
			phi = 0
			r++
		}
		ii = int(math.Floor(r * math.Cos(phi)))
		jj = int(math.Floor(r * math.Sin(phi)))
	}
	return r, phi, ii, jj
}

// calcPhase estimates the phase at frequency w = (wx, wy) as the
// circular mean, over every decomposition w = u + v with u and v
// already solved and (u,v) addressable in bispec, of
//
//	phases[u] * phases[v] * conj(unit(B(u,v)))
//
// skipping a decomposition whose bispectrum magnitude is within
// Epsilon of zero. w within 1 Manhattan step of DC, or outside the
// bispectrum's u-range, is left unsolved (the original seeds those
// five points directly instead).
func calcPhase[C cnum.Complex](bispec *bispectrum.Bispectrum[C], phases *array2.Array2[C], pm *Map, wx, wy int) error {
	if absInt(wx)+absInt(wy) <= 1 {
		return nil
	}
	uRange := indexRange{bispec.MinIndices().I, bispec.MinIndices().J, bispec.MaxIndices().I, bispec.MaxIndices().J}
	vRange := indexRange{bispec.MinIndices().K, bispec.MinIndices().L, bispec.MaxIndices().K, bispec.MaxIndices().L}
	if !uRange.contains(wx, wy) {
		return nil
	}

	minX, minY := phases.MinSIndices()
	maxX, maxY := phases.MaxSIndices()

	var sum C
	count := 0
	for ux := minX; ux <= maxX; ux++ {
		for uy := minY; uy <= maxY; uy++ {
			vx, vy := wx-ux, wy-uy
			if !vRange.contains(vx, vy) {
				continue
			}
			uEl, ok := pm.At(ux, uy)
			if !ok || !uEl.Flag {
				continue
			}
			vEl, ok := pm.At(vx, vy)
			if !ok || !vEl.Flag {
				continue
			}
			b, err := bispec.GetElement(bispectrum.Indices{I: ux, J: uy, K: vx, L: vy})
			if err != nil {
				return err
			}
			if cnum.Abs(b) <= Epsilon {
				continue
			}
			pu, err := phases.GetSigned(ux, uy)
			if err != nil {
				return err
			}
			pv, err := phases.GetSigned(vx, vy)
			if err != nil {
				return err
			}
			cand := pu * pv * cnum.Conj(cnum.Unit(b, Epsilon))
			sum += cnum.Unit(cand, Epsilon)
			count++
		}
	}

	if count == 0 {
		return nil
	}
	mean := cnum.Scale(sum, 1.0/float64(count))
	consistency := cnum.Abs(mean)
	el := Element{Flag: true, Consistency: consistency}
	pm.Set(wx, wy, el)
	if consistency > Epsilon {
		return phases.SetSigned(wx, wy, cnum.Scale(mean, 1.0/consistency))
	}
	var zero C
	return phases.SetSigned(wx, wy, zero)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

type indexRange struct {
	minX, minY, maxX, maxY int
}

func (r indexRange) contains(x, y int) bool {
	return x >= r.minX && x <= r.maxX && y >= r.minY && y <= r.maxY
}
