// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strided

import (
	"fmt"
	"strings"
)

// Format returns a textual representation of the elements of c, nesting
// one pair of square brackets for each axis, with elements separated by a
// single space. For example, a 2x2 tensor is formatted as "[[1 2] [3 4]]".
// A rank-0 tensor is formatted as its sole element, without brackets.
//
// Elements are formatted with the "%v" verb, and accessed with Get only.
func Format[T any](c Core[T]) string {
	var sb strings.Builder
	dims := c.Dims()
	idx := make([]int, 0, len(dims))
	formatAxis(&sb, c, dims, idx)
	return sb.String()
}

func formatAxis[T any](sb *strings.Builder, c Core[T], dims, idx []int) {
	axis := len(idx)
	if axis == len(dims) {
		v, err := Get(c, idx)
		if err != nil {
			sb.WriteString("<invalid>")
			return
		}
		fmt.Fprintf(sb, "%v", v)
		return
	}
	sb.WriteByte('[')
	for i := 0; i < dims[axis]; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		formatAxis(sb, c, dims, append(idx, i))
	}
	sb.WriteByte(']')
}
