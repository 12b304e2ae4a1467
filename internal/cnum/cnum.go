// Package cnum supplies the small set of complex-number operations that
// Go's generics cannot express directly on a type parameter: Go permits
// real()/imag() only on the two builtin complex types, and a method
// cannot introduce a type parameter beyond its receiver's, so a generic
// conj or modulus has to dispatch on the concrete type at the call site.
package cnum

import "math"

// Complex constrains a type parameter to either builtin complex width.
type Complex interface {
	~complex64 | ~complex128
}

// Conj returns the complex conjugate of z, for either complex64 or
// complex128, without the caller needing to know which.
func Conj[C Complex](z C) C {
	switch v := any(z).(type) {
	case complex64:
		return any(complex(real(v), -imag(v))).(C)
	case complex128:
		return any(complex(real(v), -imag(v))).(C)
	default:
		panic("cnum: unreachable complex type")
	}
}

// Abs returns the modulus of z as a float64 regardless of width.
func Abs[C Complex](z C) float64 {
	switch v := any(z).(type) {
	case complex64:
		r, i := float64(real(v)), float64(imag(v))
		return math.Sqrt(r*r + i*i)
	case complex128:
		r, i := real(v), imag(v)
		return math.Sqrt(r*r + i*i)
	default:
		panic("cnum: unreachable complex type")
	}
}

// Unit returns z scaled to unit modulus, or the zero value if z is
// within epsilon of zero.
func Unit[C Complex](z C, epsilon float64) C {
	m := Abs(z)
	if m <= epsilon {
		var zero C
		return zero
	}
	return Scale(z, 1.0/m)
}

// Scale multiplies z by the real scalar s.
func Scale[C Complex](z C, s float64) C {
	switch v := any(z).(type) {
	case complex64:
		return any(complex64(complex(real(v)*float32(s), imag(v)*float32(s)))).(C)
	case complex128:
		return any(complex(real(v)*s, imag(v)*s)).(C)
	default:
		panic("cnum: unreachable complex type")
	}
}

// Real returns the real part of z as a float64.
func Real[C Complex](z C) float64 {
	switch v := any(z).(type) {
	case complex64:
		return float64(real(v))
	case complex128:
		return real(v)
	default:
		panic("cnum: unreachable complex type")
	}
}

// Imag returns the imaginary part of z as a float64.
func Imag[C Complex](z C) float64 {
	switch v := any(z).(type) {
	case complex64:
		return float64(imag(v))
	case complex128:
		return imag(v)
	default:
		panic("cnum: unreachable complex type")
	}
}

// FromParts builds a value of C from float64 real/imaginary parts.
func FromParts[C Complex](re, im float64) C {
	var zero C
	switch any(zero).(type) {
	case complex64:
		return any(complex(float32(re), float32(im))).(C)
	case complex128:
		return any(complex(re, im)).(C)
	default:
		panic("cnum: unreachable complex type")
	}
}
