// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package matrix bridges rank-2 float64 tensors and gonum dense matrices,
// without copying elements in either direction.
package matrix

import (
	"fmt"
	"slices"

	"github.com/nlpodyssey/strided"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

// Dense returns a *mat.Dense sharing the memory of c.
//
// The layout of c must be expressible as a gonum row-major matrix: the
// column stride must be 1, and the row stride must not be lower than the
// number of columns. Slicing a contiguous tensor along any axis with
// Range or Fixed preserves both conditions.
//
// If c is a read-only View, the returned matrix still aliases its memory:
// the caller must not modify it.
func Dense(c strided.Core[float64]) (*mat.Dense, error) {
	dims, strides := c.Dims(), c.Strides()
	if len(dims) != 2 {
		return nil, &strided.RankMismatchError{Expected: 2, Got: len(dims)}
	}
	rows, cols := dims[0], dims[1]
	if rows == 0 || cols == 0 {
		return nil, &strided.ShapeError{Dims: slices.Clone(dims), Reason: "matrices cannot have zero extent"}
	}

	stride := strides[0]
	if rows == 1 {
		stride = cols
	}
	if (cols > 1 && strides[1] != 1) || stride < cols {
		return nil, fmt.Errorf("%w: strides %v cannot back a %dx%d matrix", strided.ErrNonContiguous, strides, rows, cols)
	}

	data := c.Data()
	n := (rows-1)*stride + cols
	if len(data) < n {
		return nil, &strided.LayoutError{
			Dims:    slices.Clone(dims),
			Strides: slices.Clone(strides),
			Len:     len(data),
			Reason:  "addressable range exceeds buffer length",
		}
	}

	var m mat.Dense
	m.SetRawMatrix(blas64.General{
		Rows:   rows,
		Cols:   cols,
		Stride: stride,
		Data:   data[:n:n],
	})
	return &m, nil
}

// FromDense returns a MutableView over the raw storage of m, honoring its
// row stride. Writes through the view are visible through m, and vice
// versa.
func FromDense(m *mat.Dense) (*strided.MutableView[float64], error) {
	raw := m.RawMatrix()
	if raw.Rows == 0 || raw.Cols == 0 {
		return strided.NewMutableView([]int{raw.Rows, raw.Cols}, []int{raw.Cols, 1}, []float64(nil))
	}
	return strided.NewMutableView([]int{raw.Rows, raw.Cols}, []int{raw.Stride, 1}, raw.Data)
}
