// Package smerr defines the typed error kinds shared by every package in
// the reconstruction core. Callers use errors.As to recover a specific
// kind; call sites that add operation context wrap these with
// github.com/pkg/errors rather than losing the underlying type.
package smerr

import "fmt"

// BoundsError reports an out-of-range element access, signed or unsigned.
type BoundsError struct {
	Op      string
	Indices []int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s: index %v out of bounds", e.Op, e.Indices)
}

// NewBounds builds a BoundsError for operation op at the given indices.
func NewBounds(op string, indices ...int) *BoundsError {
	return &BoundsError{Op: op, Indices: append([]int(nil), indices...)}
}

// DimensionMismatch reports arithmetic between incompatibly shaped operands.
type DimensionMismatch struct {
	Op   string
	Want []int
	Got  []int
}

func (e *DimensionMismatch) Error() string {
	return fmt.Sprintf("%s: dimension mismatch, want %v got %v", e.Op, e.Want, e.Got)
}

// NewDimensionMismatch builds a DimensionMismatch.
func NewDimensionMismatch(op string, want, got []int) *DimensionMismatch {
	return &DimensionMismatch{Op: op, Want: want, Got: got}
}

// InvalidState reports a readiness-state violation, e.g. reading a
// cross-correlation result before correlate() has run.
type InvalidState struct {
	Op    string
	State string
}

func (e *InvalidState) Error() string {
	return fmt.Sprintf("%s: invalid state %q", e.Op, e.State)
}

// NewInvalidState builds an InvalidState.
func NewInvalidState(op, state string) *InvalidState {
	return &InvalidState{Op: op, State: state}
}

// DomainError reports an argument outside the function's domain, e.g. a
// non-positive window aperture or mismatched cross-correlation shapes.
type DomainError struct {
	Op      string
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// NewDomain builds a DomainError.
func NewDomain(op, message string) *DomainError {
	return &DomainError{Op: op, Message: message}
}

// IoError wraps an OS-level failure opening a video, writing an image, or
// reading/writing a bispectrum dump. It is the only kind meant to be
// user-visible and terminate the pipeline.
type IoError struct {
	Op   string
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// NewIO builds an IoError.
func NewIO(op, path string, err error) *IoError {
	return &IoError{Op: op, Path: path, Err: err}
}

// ReferenceArrayResize reports an attempt to resize, or assign a
// mismatched shape into, a non-owning (borrowed) Array2 view.
type ReferenceArrayResize struct {
	Op string
}

func (e *ReferenceArrayResize) Error() string {
	return fmt.Sprintf("%s: cannot resize or reassign a borrowed array view", e.Op)
}

// NewReferenceArrayResize builds a ReferenceArrayResize.
func NewReferenceArrayResize(op string) *ReferenceArrayResize {
	return &ReferenceArrayResize{Op: op}
}
