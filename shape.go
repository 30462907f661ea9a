// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strided

import (
	"math"
	"math/bits"
)

// numElements returns the product of all dims. An empty dims slice
// describes a scalar, holding exactly one element.
func numElements(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

// checkedNumElements is like numElements, but it fails on negative
// extents and on products not fitting the int type.
func checkedNumElements(dims []int) (int, error) {
	size := uint(1)
	for _, d := range dims {
		if d < 0 {
			return 0, &ShapeError{Dims: cloneInts(dims), Reason: "negative extent"}
		}
		var hi uint
		if hi, size = bits.Mul(size, uint(d)); hi != 0 || size > math.MaxInt {
			return 0, &ShapeError{Dims: cloneInts(dims), Reason: "element count overflows int"}
		}
	}
	return int(size), nil
}

// rowMajorStrides computes the strides of a row-major layout without
// padding: the last axis has stride 1, and each other axis advances by
// the product of the extents following it.
func rowMajorStrides(dims []int) []int {
	strides := make([]int, len(dims))
	acc := 1
	for i := len(dims) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= dims[i]
	}
	return strides
}

// span returns the number of buffer slots addressed by dims and strides
// starting from offset zero, that is the largest reachable offset plus
// one. It is zero if any extent is zero.
func span(dims, strides []int) (int, error) {
	if len(dims) != len(strides) {
		return 0, &LayoutError{Dims: cloneInts(dims), Strides: cloneInts(strides), Reason: "dims and strides lengths differ"}
	}
	for _, d := range dims {
		if d < 0 {
			return 0, &LayoutError{Dims: cloneInts(dims), Strides: cloneInts(strides), Reason: "negative extent"}
		}
		if d == 0 {
			return 0, nil
		}
	}
	last := uint(0)
	for i, s := range strides {
		if s < 0 {
			return 0, &LayoutError{Dims: cloneInts(dims), Strides: cloneInts(strides), Reason: "negative stride"}
		}
		hi, step := bits.Mul(uint(dims[i]-1), uint(s))
		var carry uint
		last, carry = bits.Add(last, step, 0)
		if hi != 0 || carry != 0 || last >= math.MaxInt {
			return 0, &LayoutError{Dims: cloneInts(dims), Strides: cloneInts(strides), Reason: "addressable range overflows int"}
		}
	}
	return int(last) + 1, nil
}

func cloneInts(s []int) []int {
	if s == nil {
		return nil
	}
	c := make([]int, len(s))
	copy(c, s)
	return c
}
