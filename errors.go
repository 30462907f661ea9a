// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strided

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch is matched by a ShapeMismatchError.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrIndexOutOfBounds is matched by IndexOutOfBoundsError and
	// SliceBoundsError.
	ErrIndexOutOfBounds = errors.New("index out of bounds")
	// ErrRankMismatch is matched by a RankMismatchError.
	ErrRankMismatch = errors.New("rank mismatch")
	// ErrInvalidShape is matched by a ShapeError.
	ErrInvalidShape = errors.New("invalid shape")
	// ErrInvalidLayout is matched by a LayoutError.
	ErrInvalidLayout = errors.New("invalid or unsupported memory layout/strides")
	// ErrNonContiguous is reported by operations requiring a layout
	// that the tensor (or view) does not have.
	ErrNonContiguous = errors.New("tensor is not contiguous in memory")
	// ErrUnsupportedOperation is matched by an UnsupportedOperationError.
	ErrUnsupportedOperation = errors.New("operation not supported")
)

// ShapeMismatchError reports that the length of a buffer disagrees with
// the number of elements required by a shape.
type ShapeMismatchError struct {
	Expected int
	Got      int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch: expected %d elements, got %d", e.Expected, e.Got)
}

func (e *ShapeMismatchError) Is(target error) bool { return target == ErrShapeMismatch }

// IndexOutOfBoundsError reports an index vector with a coordinate falling
// outside its axis extent, or an offset falling outside the backing buffer.
//
// Axis is the first offending axis, or -1 when every coordinate is within
// its extent but the resulting offset exceeds the buffer.
type IndexOutOfBoundsError struct {
	Index []int
	Dims  []int
	Axis  int
}

func (e *IndexOutOfBoundsError) Error() string {
	return fmt.Sprintf("index out of bounds: attempted index %v in tensor with dims %v", e.Index, e.Dims)
}

func (e *IndexOutOfBoundsError) Is(target error) bool { return target == ErrIndexOutOfBounds }

// RankMismatchError reports an index vector (or a list of IndexSpec)
// whose length differs from the rank of the tensor.
type RankMismatchError struct {
	Expected int
	Got      int
}

func (e *RankMismatchError) Error() string {
	return fmt.Sprintf("rank mismatch: expected %d indices, got %d", e.Expected, e.Got)
}

func (e *RankMismatchError) Is(target error) bool { return target == ErrRankMismatch }

// SliceBoundsError reports the first IndexSpec, scanning axes left to
// right, that does not fit the extent of its axis.
type SliceBoundsError struct {
	Axis int
	Spec IndexSpec
	Dim  int
}

func (e *SliceBoundsError) Error() string {
	return fmt.Sprintf("index out of bounds: slice %s on axis %d with size %d", e.Spec, e.Axis, e.Dim)
}

func (e *SliceBoundsError) Is(target error) bool { return target == ErrIndexOutOfBounds }

// ShapeError reports dimensions that cannot describe a tensor.
type ShapeError struct {
	Dims   []int
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid shape %v: %s", e.Dims, e.Reason)
}

func (e *ShapeError) Is(target error) bool { return target == ErrInvalidShape }

// LayoutError reports dims and strides addressing memory outside the
// buffer they are applied to.
type LayoutError struct {
	Dims    []int
	Strides []int
	Len     int
	Reason  string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("invalid layout: dims %v, strides %v over %d elements: %s", e.Dims, e.Strides, e.Len, e.Reason)
}

func (e *LayoutError) Is(target error) bool { return target == ErrInvalidLayout }

// UnsupportedOperationError reports an operation the receiver does not
// allow, such as writing through a read-only View.
type UnsupportedOperationError struct {
	Op string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("operation not supported: %s", e.Op)
}

func (e *UnsupportedOperationError) Is(target error) bool { return target == ErrUnsupportedOperation }
