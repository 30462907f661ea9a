// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package matrix

import (
	"testing"

	"github.com/nlpodyssey/strided"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func newTensor(t *testing.T, rows, cols int) *strided.Tensor[float64] {
	t.Helper()
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = float64(i + 1)
	}
	tensor, err := strided.New([]int{rows, cols}, data)
	require.NoError(t, err)
	return tensor
}

func TestDense_Tensor(t *testing.T) {
	tensor := newTensor(t, 2, 3)

	m, err := Dense(tensor)
	require.NoError(t, err)

	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.True(t, mat.Equal(m, mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})))

	m.Set(1, 2, 60)
	v, err := tensor.Get(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 60.0, v, "writes through the matrix reach the tensor")

	require.NoError(t, tensor.Set(10, 0, 0))
	assert.Equal(t, 10.0, m.At(0, 0), "writes through the tensor reach the matrix")
}

func TestDense_Slice(t *testing.T) {
	tensor := newTensor(t, 3, 4)

	view, err := tensor.Slice(strided.Range(1, 3), strided.Range(1, 3))
	require.NoError(t, err)

	m, err := Dense(view)
	require.NoError(t, err)
	assert.True(t, mat.Equal(m, mat.NewDense(2, 2, []float64{6, 7, 10, 11})))
	assert.Equal(t, 4, m.RawMatrix().Stride)

	row, err := tensor.Slice(strided.Fixed(2), strided.Full())
	require.NoError(t, err)
	m, err = Dense(row)
	require.NoError(t, err)
	assert.True(t, mat.Equal(m, mat.NewDense(1, 4, []float64{9, 10, 11, 12})))

	col, err := tensor.Slice(strided.Full(), strided.Fixed(1))
	require.NoError(t, err)
	m, err = Dense(col)
	require.NoError(t, err)
	assert.True(t, mat.Equal(m, mat.NewDense(3, 1, []float64{2, 6, 10})))

	var product mat.Dense
	product.Mul(m.T(), m)
	assert.Equal(t, 2.0*2+6*6+10*10, product.At(0, 0))
}

func TestDense_Errors(t *testing.T) {
	t.Run("rank", func(t *testing.T) {
		tensor, err := strided.Zeros[float64]([]int{2, 2, 2})
		require.NoError(t, err)
		_, err = Dense(tensor)
		assert.ErrorIs(t, err, strided.ErrRankMismatch)

		var e *strided.RankMismatchError
		require.ErrorAs(t, err, &e)
		assert.Equal(t, 2, e.Expected)
		assert.Equal(t, 3, e.Got)
	})

	t.Run("zero extent", func(t *testing.T) {
		tensor, err := strided.Zeros[float64]([]int{0, 3})
		require.NoError(t, err)
		_, err = Dense(tensor)
		assert.ErrorIs(t, err, strided.ErrInvalidShape)
	})

	t.Run("transposed", func(t *testing.T) {
		view, err := strided.NewView([]int{3, 2}, []int{1, 3}, []float64{1, 2, 3, 4, 5, 6})
		require.NoError(t, err)
		_, err = Dense(view)
		assert.ErrorIs(t, err, strided.ErrNonContiguous)
	})

	t.Run("broadcast rows", func(t *testing.T) {
		view, err := strided.NewView([]int{2, 3}, []int{0, 1}, []float64{1, 2, 3})
		require.NoError(t, err)
		_, err = Dense(view)
		assert.ErrorIs(t, err, strided.ErrNonContiguous)
	})
}

func TestFromDense(t *testing.T) {
	m := mat.NewDense(3, 4, nil)
	sub := m.Slice(1, 3, 1, 4).(*mat.Dense)

	view, err := FromDense(sub)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, view.Dims())
	assert.Equal(t, []int{4, 1}, view.Strides())
	assert.False(t, view.IsContiguous())

	require.NoError(t, view.Set(7, 1, 2))
	assert.Equal(t, 7.0, m.At(2, 3))

	m.Set(1, 1, -1)
	v, err := view.Get(0, 0)
	require.NoError(t, err)
	assert.Equal(t, -1.0, v)

	back, err := Dense(view)
	require.NoError(t, err)
	assert.True(t, mat.Equal(sub, back))
}

func TestFromDense_Empty(t *testing.T) {
	view, err := FromDense(&mat.Dense{})
	require.NoError(t, err)
	assert.True(t, view.IsEmpty())
	assert.Equal(t, []int{0, 0}, view.Dims())
}
