// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package safetensors_test

import (
	"bytes"
	"fmt"

	"github.com/nlpodyssey/strided"
	"github.com/nlpodyssey/strided/safetensors"
)

func Example() {
	t, err := strided.New([]int{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	if err != nil {
		panic(err)
	}
	last, err := t.Slice(strided.Full(), strided.Range(1, 3))
	if err != nil {
		panic(err)
	}

	var buf bytes.Buffer
	err = safetensors.Write(&buf, map[string]strided.Core[float32]{
		"t":    t,
		"last": last,
	}, map[string]string{"source": "example"})
	if err != nil {
		panic(err)
	}

	f, err := safetensors.Read[float32](&buf, 0)
	if err != nil {
		panic(err)
	}
	fmt.Println(f.Metadata["source"])
	fmt.Println(f.Tensors["t"])
	fmt.Println(f.Tensors["last"], f.Tensors["last"].IsContiguous())

	// Output:
	// example
	// [[1 2 3] [4 5 6]]
	// [[2 3] [5 6]] true
}
