// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strided

import (
	"log/slog"
	"slices"
)

// Core is the minimal surface a storage-backed tensor exposes.
// Every indexing behavior of this package (Rank, Len, IsContiguous,
// Offset, Get, Set, ...) is derived from it, and works uniformly across
// Tensor, View and MutableView.
type Core[T any] interface {
	// Dims returns the extent of each axis.
	// The returned slice must not be modified.
	Dims() []int
	// Strides returns, for each axis, the number of buffer slots to advance
	// to move by one unit along that axis.
	// The returned slice must not be modified.
	Strides() []int
	// Data returns the backing buffer, starting at the element addressed
	// by the all-zeros index.
	Data() []T
	// MutableData is like Data, but for write access. Implementations not
	// allowing writes return an error matching ErrUnsupportedOperation.
	MutableData() ([]T, error)
}

// Rank returns the number of axes.
func Rank[T any](c Core[T]) int {
	return len(c.Dims())
}

// Len returns the number of elements, that is the product of all dims.
// It is 1 for a rank-0 (scalar) tensor, and 0 if any extent is 0.
func Len[T any](c Core[T]) int {
	return numElements(c.Dims())
}

// IsEmpty reports whether the tensor has no elements.
func IsEmpty[T any](c Core[T]) bool {
	return Len(c) == 0
}

// IsContiguous reports whether the strides describe a row-major layout
// with no gaps.
func IsContiguous[T any](c Core[T]) bool {
	return isContiguous(c.Dims(), c.Strides())
}

func isContiguous(dims, strides []int) bool {
	expected := 1
	for i := len(dims) - 1; i >= 0; i-- {
		if strides[i] != expected {
			return false
		}
		expected *= dims[i]
	}
	return true
}

// Offset translates an index vector to a position within Data.
//
// It fails with a RankMismatchError if len(idx) differs from the rank,
// or with an IndexOutOfBoundsError if any coordinate is negative or not
// lower than the extent of its axis.
func Offset[T any](c Core[T], idx []int) (int, error) {
	return offset(c.Dims(), c.Strides(), idx)
}

func offset(dims, strides, idx []int) (int, error) {
	if len(idx) != len(dims) {
		err := &RankMismatchError{Expected: len(dims), Got: len(idx)}
		logDebug("offset failed", slog.Any("index", idx), slog.Any("dims", dims), slog.Any("error", err))
		return 0, err
	}
	off := 0
	for i, v := range idx {
		if v < 0 || v >= dims[i] {
			err := &IndexOutOfBoundsError{Index: cloneInts(idx), Dims: cloneInts(dims), Axis: i}
			logDebug("offset failed", slog.Any("error", err))
			return 0, err
		}
		off += v * strides[i]
	}
	return off, nil
}

// Get returns the element at the given index.
//
// Besides the checks performed by Offset, the resulting offset is checked
// against the actual length of Data.
func Get[T any](c Core[T], idx []int) (T, error) {
	off, err := Offset(c, idx)
	if err != nil {
		var zero T
		return zero, err
	}
	data := c.Data()
	if off >= len(data) {
		var zero T
		err = &IndexOutOfBoundsError{Index: cloneInts(idx), Dims: cloneInts(c.Dims()), Axis: -1}
		logDebug("get failed", slog.Int("offset", off), slog.Any("error", err))
		return zero, err
	}
	return data[off], nil
}

// Set writes v at the given index.
//
// It performs the same checks as Get, and it additionally fails if c does
// not allow writes. On failure, nothing is written.
func Set[T any](c Core[T], idx []int, v T) error {
	off, err := Offset(c, idx)
	if err != nil {
		return err
	}
	data, err := c.MutableData()
	if err != nil {
		logDebug("set failed", slog.Any("index", idx), slog.Any("error", err))
		return err
	}
	if off >= len(data) {
		err = &IndexOutOfBoundsError{Index: cloneInts(idx), Dims: cloneInts(c.Dims()), Axis: -1}
		logDebug("set failed", slog.Int("offset", off), slog.Any("error", err))
		return err
	}
	data[off] = v
	return nil
}

// GetUnchecked returns the element at the given index without validating
// it. The caller must guarantee that len(idx) equals the rank and that
// every coordinate is within its extent, for example by a prior checked
// call, or by loop bounds derived from Dims. An invalid index either
// panics or silently addresses a wrong element.
func GetUnchecked[T any](c Core[T], idx []int) T {
	return c.Data()[uncheckedOffset(c.Strides(), idx)]
}

// SetUnchecked is the unchecked counterpart of Set, under the same
// contract as GetUnchecked. Unlike Set, it panics if c does not allow
// writes.
func SetUnchecked[T any](c Core[T], idx []int, v T) {
	data, err := c.MutableData()
	if err != nil {
		panic(err)
	}
	data[uncheckedOffset(c.Strides(), idx)] = v
}

func uncheckedOffset(strides, idx []int) int {
	off := 0
	for i, v := range idx {
		off += v * strides[i]
	}
	return off
}

// ForEachIndex calls fn with every valid index of a tensor with the given
// dims, in row-major order (last axis varying fastest). The same idx slice
// is reused across calls: fn must copy it to retain it. Iteration stops
// early if fn returns false.
func ForEachIndex(dims []int, fn func(idx []int) bool) {
	if numElements(dims) == 0 {
		return
	}
	idx := make([]int, len(dims))
	for {
		if !fn(idx) {
			return
		}
		axis := len(dims) - 1
		for ; axis >= 0; axis-- {
			idx[axis]++
			if idx[axis] < dims[axis] {
				break
			}
			idx[axis] = 0
		}
		if axis < 0 {
			return
		}
	}
}

// Elements returns a new slice with all the elements of c in row-major
// order.
func Elements[T any](c Core[T]) []T {
	dims, strides, data := c.Dims(), c.Strides(), c.Data()
	n := numElements(dims)
	out := make([]T, 0, n)
	if isContiguous(dims, strides) {
		return append(out, data[:n]...)
	}
	ForEachIndex(dims, func(idx []int) bool {
		out = append(out, data[uncheckedOffset(strides, idx)])
		return true
	})
	return out
}

// Equal reports whether a and b have the same dims and hold equal elements
// at every index. Strides are not compared.
func Equal[T comparable](a, b Core[T]) bool {
	dims := a.Dims()
	if !slices.Equal(dims, b.Dims()) {
		return false
	}
	as, bs := a.Strides(), b.Strides()
	ad, bd := a.Data(), b.Data()
	equal := true
	ForEachIndex(dims, func(idx []int) bool {
		equal = ad[uncheckedOffset(as, idx)] == bd[uncheckedOffset(bs, idx)]
		return equal
	})
	return equal
}
