// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strided

import (
	"log/slog"
)

// window is the geometry shared by View and MutableView: dims and strides
// applied to a sub-slice of a buffer owned elsewhere.
//
// The data slice starts at the element addressed by the all-zeros index,
// and its length and capacity are exactly the span of dims and strides,
// so that a window can never reach memory beyond the one it was given.
type window[T any] struct {
	dims    []int
	strides []int
	data    []T
}

func newWindow[T any](dims, strides []int, data []T) (window[T], error) {
	n, err := span(dims, strides)
	if err != nil {
		e := err.(*LayoutError)
		e.Len = len(data)
		return window[T]{}, e
	}
	if n > len(data) {
		return window[T]{}, &LayoutError{
			Dims:    cloneInts(dims),
			Strides: cloneInts(strides),
			Len:     len(data),
			Reason:  "addressable range exceeds buffer length",
		}
	}
	return window[T]{
		dims:    cloneInts(dims),
		strides: cloneInts(strides),
		data:    data[:n:n],
	}, nil
}

// Dims returns the extent of each axis.
// The returned slice must not be modified.
func (w window[T]) Dims() []int { return w.dims }

// Strides returns the strides of each axis.
// The returned slice must not be modified.
func (w window[T]) Strides() []int { return w.strides }

// Data returns the portion of the referenced buffer addressable by the
// view, without copy.
func (w window[T]) Data() []T { return w.data }

// Rank returns the number of axes.
func (w window[T]) Rank() int { return len(w.dims) }

// Len returns the number of elements, that is the product of all dims.
func (w window[T]) Len() int { return numElements(w.dims) }

// IsEmpty reports whether the view has no elements.
func (w window[T]) IsEmpty() bool { return w.Len() == 0 }

// IsContiguous reports whether the view is laid out in row-major order
// with no gaps.
func (w window[T]) IsContiguous() bool { return isContiguous(w.dims, w.strides) }

// Offset translates an index vector to a position within Data.
// See the Offset function.
func (w window[T]) Offset(idx ...int) (int, error) { return offset(w.dims, w.strides, idx) }

// GetUnchecked returns the element at the given index without validating
// it. See the GetUnchecked function.
func (w window[T]) GetUnchecked(idx ...int) T {
	return w.data[uncheckedOffset(w.strides, idx)]
}

// A View is a read-only window over a buffer owned elsewhere, usually by
// a Tensor.
//
// A View does not copy any element: it observes every write made to the
// underlying buffer, through the owning Tensor or through any MutableView
// over the same memory. A View must not be used after the owner's buffer
// has been released with Tensor.IntoBuffer and reused by the caller for
// unrelated data.
//
// Every write attempt through a View fails with an error matching
// ErrUnsupportedOperation.
type View[T any] struct {
	window[T]
}

// NewView creates a View applying dims and strides to a buffer owned by
// the caller, starting at data[0].
//
// It fails with a LayoutError if lengths of dims and strides differ, if
// any of their values is negative, or if the largest offset addressable
// by them falls outside data. Strides are arbitrary otherwise: they may
// describe transposed, strided or overlapping layouts.
func NewView[T any](dims, strides []int, data []T) (*View[T], error) {
	w, err := newWindow(dims, strides, data)
	if err != nil {
		logDebug("view construction failed", slog.Any("error", err))
		return nil, err
	}
	logDebug("view created", layoutAttrs(w.dims, w.strides))
	return &View[T]{window: w}, nil
}

// MutableData always fails with an UnsupportedOperationError.
func (v *View[T]) MutableData() ([]T, error) {
	return nil, &UnsupportedOperationError{Op: "write access to a read-only view"}
}

// Get returns the element at the given index. See the Get function.
func (v *View[T]) Get(idx ...int) (T, error) { return Get[T](v, idx) }

// Set always fails: with an index error if idx is invalid, otherwise
// with an UnsupportedOperationError. Nothing is ever written.
func (v *View[T]) Set(val T, idx ...int) error { return Set[T](v, idx, val) }

// Slice returns a read-only view of the sub-window selected by specs.
// See IndexSpec.
func (v *View[T]) Slice(specs ...IndexSpec) (*View[T], error) {
	w, err := v.window.slice(specs)
	if err != nil {
		return nil, err
	}
	return &View[T]{window: w}, nil
}

// String formats the elements of the View. See Format.
func (v *View[T]) String() string { return Format[T](v) }

// LogValue satisfies slog.LogValuer interface.
func (v *View[T]) LogValue() slog.Value { return logValue[T](v) }

// A MutableView is a read-write window over a buffer owned elsewhere,
// usually by a Tensor.
//
// Writes through a MutableView are immediately visible through the owner
// and through any other view over the same memory, and vice versa.
//
// Nothing prevents the creation of several MutableViews over overlapping
// regions of the same buffer. Only one goroutine at a time may write to a
// region, and no goroutine may read it meanwhile: synchronizing accesses
// is up to the caller.
type MutableView[T any] struct {
	window[T]
}

// NewMutableView is like NewView, but it returns a read-write view.
func NewMutableView[T any](dims, strides []int, data []T) (*MutableView[T], error) {
	w, err := newWindow(dims, strides, data)
	if err != nil {
		logDebug("mutable view construction failed", slog.Any("error", err))
		return nil, err
	}
	logDebug("mutable view created", layoutAttrs(w.dims, w.strides))
	return &MutableView[T]{window: w}, nil
}

// MutableData returns the portion of the referenced buffer addressable
// by the view, without copy. It never fails.
func (v *MutableView[T]) MutableData() ([]T, error) { return v.data, nil }

// Get returns the element at the given index. See the Get function.
func (v *MutableView[T]) Get(idx ...int) (T, error) { return Get[T](v, idx) }

// Set writes val at the given index. See the Set function.
func (v *MutableView[T]) Set(val T, idx ...int) error { return Set[T](v, idx, val) }

// SetUnchecked writes val at the given index without validating it.
// See the SetUnchecked function.
func (v *MutableView[T]) SetUnchecked(val T, idx ...int) {
	v.data[uncheckedOffset(v.strides, idx)] = val
}

// View returns a read-only view over the same memory, with the same
// dims and strides.
func (v *MutableView[T]) View() *View[T] {
	return &View[T]{window: window[T]{
		dims:    cloneInts(v.dims),
		strides: cloneInts(v.strides),
		data:    v.data,
	}}
}

// Slice returns a read-only view of the sub-window selected by specs.
// See IndexSpec.
func (v *MutableView[T]) Slice(specs ...IndexSpec) (*View[T], error) {
	w, err := v.window.slice(specs)
	if err != nil {
		return nil, err
	}
	return &View[T]{window: w}, nil
}

// SliceMut is like Slice, but it returns a read-write view.
func (v *MutableView[T]) SliceMut(specs ...IndexSpec) (*MutableView[T], error) {
	w, err := v.window.slice(specs)
	if err != nil {
		return nil, err
	}
	return &MutableView[T]{window: w}, nil
}

// String formats the elements of the MutableView. See Format.
func (v *MutableView[T]) String() string { return Format[T](v) }

// LogValue satisfies slog.LogValuer interface.
func (v *MutableView[T]) LogValue() slog.Value { return logValue[T](v) }
