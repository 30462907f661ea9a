// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strided_test

import (
	"errors"
	"fmt"

	"github.com/nlpodyssey/strided"
)

func Example() {
	t, err := strided.New([]int{2, 3}, []int{1, 2, 3, 4, 5, 6})
	if err != nil {
		panic(err)
	}
	fmt.Println(t, t.Strides())

	v, err := t.Slice(strided.Full(), strided.Range(1, 3))
	if err != nil {
		panic(err)
	}
	fmt.Println(v, v.Dims(), v.IsContiguous())

	x, _ := v.Get(1, 0)
	fmt.Println(x)

	// Output:
	// [[1 2 3] [4 5 6]] [3 1]
	// [[2 3] [5 6]] [2 2] false
	// 5
}

func ExampleTensor_SliceMut() {
	t, err := strided.Zeros[float32]([]int{3, 3})
	if err != nil {
		panic(err)
	}
	col, err := t.SliceMut(strided.Range(1, 3), strided.Fixed(1))
	if err != nil {
		panic(err)
	}
	for i := 0; i < 2; i++ {
		_ = col.Set(1.5, i, 0)
	}
	fmt.Println(t)

	// Output:
	// [[0 0 0] [0 1.5 0] [0 1.5 0]]
}

func ExampleNewView() {
	buf := []string{"a", "b", "c", "d", "e", "f"}
	v, err := strided.NewView([]int{3, 2}, []int{1, 3}, buf)
	if err != nil {
		panic(err)
	}
	fmt.Println(v)

	_, err = v.Get(3, 0)
	fmt.Println(errors.Is(err, strided.ErrIndexOutOfBounds))

	// Output:
	// [[a d] [b e] [c f]]
	// true
}
