// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strided

import (
	"log/slog"
)

// A Tensor owns a dense buffer of elements, laid out in row-major order.
//
// The rank of a Tensor is fixed at construction, and so are its dims and
// strides. The only way to change a Tensor, once built, is writing its
// elements, either directly or through a MutableView.
//
// A Tensor is not safe for concurrent use when any goroutine writes to it,
// or to any MutableView taken from it.
type Tensor[T any] struct {
	dims    []int
	strides []int
	data    []T
}

var (
	_ Core[int] = &Tensor[int]{}
	_ Core[int] = &View[int]{}
	_ Core[int] = &MutableView[int]{}
)

// New creates a new Tensor with the given dims, taking ownership of data.
//
// If the error returned is not nil, the Tensor is nil.
//
// The dims are copied before being assigned to the Tensor. An empty (or
// nil) dims slice describes a scalar, holding exactly one element.
// Extents must not be negative; zero extents are allowed and describe an
// empty tensor. The length of data must be equal to the product of all
// dims, otherwise a ShapeMismatchError is returned.
//
// Since data can possibly take a large amount of memory, its value is NOT
// copied: the caller must not use it any longer, other than through the
// Tensor and its views.
func New[T any](dims []int, data []T) (*Tensor[T], error) {
	expected, err := checkedNumElements(dims)
	if err != nil {
		logDebug("tensor construction failed", slog.Any("error", err))
		return nil, err
	}
	if got := len(data); got != expected {
		err = &ShapeMismatchError{Expected: expected, Got: got}
		logDebug("tensor construction failed", slog.Any("dims", dims), slog.Any("error", err))
		return nil, err
	}
	t := &Tensor[T]{
		dims:    cloneInts(dims),
		strides: rowMajorStrides(dims),
		data:    data,
	}
	logDebug("tensor created", layoutAttrs(t.dims, t.strides), slog.Int("len", expected))
	return t, nil
}

// Zeros creates a new Tensor with the given dims, allocating a buffer
// filled with the zero value of T.
//
// It only fails if dims are invalid (see New).
func Zeros[T any](dims []int) (*Tensor[T], error) {
	n, err := checkedNumElements(dims)
	if err != nil {
		logDebug("tensor construction failed", slog.Any("error", err))
		return nil, err
	}
	return New(dims, make([]T, n))
}

// IntoBuffer relinquishes the backing buffer to the caller.
//
// The Tensor is consumed: it is left with zero elements, and any checked
// access to it fails. Views taken before the call keep referring to the
// returned buffer.
func (t *Tensor[T]) IntoBuffer() []T {
	data := t.data
	logDebug("tensor buffer released", slog.Int("len", len(data)))
	rank := len(t.dims)
	if rank == 0 {
		rank = 1
	}
	t.dims = make([]int, rank)
	t.strides = rowMajorStrides(t.dims)
	t.data = nil
	return data
}

// Dims returns the extent of each axis.
// The returned slice must not be modified.
func (t *Tensor[T]) Dims() []int { return t.dims }

// Strides returns the row-major strides of the Tensor.
// The returned slice must not be modified.
func (t *Tensor[T]) Strides() []int { return t.strides }

// Data returns the whole backing buffer, without copy.
func (t *Tensor[T]) Data() []T { return t.data }

// MutableData returns the whole backing buffer, without copy.
// It never fails.
func (t *Tensor[T]) MutableData() ([]T, error) { return t.data, nil }

// Rank returns the number of axes.
func (t *Tensor[T]) Rank() int { return len(t.dims) }

// Len returns the number of elements.
func (t *Tensor[T]) Len() int { return len(t.data) }

// IsEmpty reports whether the Tensor has no elements.
func (t *Tensor[T]) IsEmpty() bool { return len(t.data) == 0 }

// IsContiguous reports whether the Tensor is laid out in row-major
// order with no gaps, which is always true for a Tensor.
func (t *Tensor[T]) IsContiguous() bool { return IsContiguous[T](t) }

// Offset translates an index vector to a position within Data.
// See the Offset function.
func (t *Tensor[T]) Offset(idx ...int) (int, error) { return Offset[T](t, idx) }

// Get returns the element at the given index. See the Get function.
func (t *Tensor[T]) Get(idx ...int) (T, error) { return Get[T](t, idx) }

// Set writes v at the given index. See the Set function.
func (t *Tensor[T]) Set(v T, idx ...int) error { return Set[T](t, idx, v) }

// GetUnchecked returns the element at the given index without validating
// it. See the GetUnchecked function.
func (t *Tensor[T]) GetUnchecked(idx ...int) T {
	return t.data[uncheckedOffset(t.strides, idx)]
}

// SetUnchecked writes v at the given index without validating it.
// See the SetUnchecked function.
func (t *Tensor[T]) SetUnchecked(v T, idx ...int) {
	t.data[uncheckedOffset(t.strides, idx)] = v
}

// View returns a read-only view of the whole Tensor.
func (t *Tensor[T]) View() *View[T] {
	v := &View[T]{window: t.window()}
	logDebug("view created", layoutAttrs(v.dims, v.strides))
	return v
}

// MutableView returns a read-write view of the whole Tensor.
// Writes through the view are visible through the Tensor, and vice versa.
func (t *Tensor[T]) MutableView() *MutableView[T] {
	v := &MutableView[T]{window: t.window()}
	logDebug("mutable view created", layoutAttrs(v.dims, v.strides))
	return v
}

// Slice returns a read-only view of the sub-window selected by specs,
// one for each axis. See IndexSpec.
func (t *Tensor[T]) Slice(specs ...IndexSpec) (*View[T], error) {
	w, err := t.window().slice(specs)
	if err != nil {
		return nil, err
	}
	return &View[T]{window: w}, nil
}

// SliceMut is like Slice, but it returns a read-write view.
func (t *Tensor[T]) SliceMut(specs ...IndexSpec) (*MutableView[T], error) {
	w, err := t.window().slice(specs)
	if err != nil {
		return nil, err
	}
	return &MutableView[T]{window: w}, nil
}

// String formats the elements of the Tensor. See Format.
func (t *Tensor[T]) String() string { return Format[T](t) }

// LogValue satisfies slog.LogValuer interface.
func (t *Tensor[T]) LogValue() slog.Value {
	return logValue[T](t)
}

func (t *Tensor[T]) window() window[T] {
	return window[T]{
		dims:    cloneInts(t.dims),
		strides: cloneInts(t.strides),
		data:    t.data[:len(t.data):len(t.data)],
	}
}

func logValue[T any](c Core[T]) slog.Value {
	return slog.GroupValue(
		slog.Any("dims", c.Dims()),
		slog.Any("strides", c.Strides()),
		slog.Int("len", Len(c)),
		slog.Bool("contiguous", IsContiguous(c)),
	)
}
