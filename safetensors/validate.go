// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package safetensors

import (
	"cmp"
	"fmt"
	"math"
	"math/bits"
	"slices"
)

// Validate checks whether the content of a Header is valid according to
// safetensors format, returning an error if a problem is encountered,
// otherwise nil.
//
// The Header is checked against the following rules:
//
//   - ByteBufferOffset must not be negative
//   - each key in Tensors must match the mapped TensorInfo.Name, and
//     must differ from the reserved "__metadata__" key
//   - the DataOffsets of all tensors must cover an entire contiguous
//     area of the byte-buffer, starting from offset 0, without overlaps
//   - the byte size described by DataOffsets must coincide with the one
//     computed from Shape and DType (an empty shape counts as 1 element)
//   - no overflow must occur at any step
func (h Header) Validate() error {
	if h.ByteBufferOffset < 0 {
		return fmt.Errorf("invalid byte-buffer offset negative value %d", h.ByteBufferOffset)
	}
	if err := validateTensorNames(h.Tensors); err != nil {
		return err
	}

	expectedBegin := 0
	for _, t := range sortedByOffsets(h.Tensors) {
		if err := validateTensor(t, expectedBegin); err != nil {
			return fmt.Errorf("invalid tensor %q: %w", t.Name, err)
		}
		expectedBegin = t.DataOffsets.End
	}
	return nil
}

// ByteBufferSize returns the size of the byte-buffer described by the
// header. The Header is expected to be valid.
func (h Header) ByteBufferSize() int {
	size := 0
	for _, t := range h.Tensors {
		size = max(size, t.DataOffsets.End)
	}
	return size
}

func sortedByOffsets(tm map[string]TensorInfo) []TensorInfo {
	ts := make([]TensorInfo, 0, len(tm))
	for _, t := range tm {
		ts = append(ts, t)
	}
	slices.SortFunc(ts, func(a, b TensorInfo) int {
		if c := cmp.Compare(a.DataOffsets.Begin, b.DataOffsets.Begin); c != 0 {
			return c
		}
		return cmp.Compare(a.DataOffsets.End, b.DataOffsets.End)
	})
	return ts
}

func validateTensorNames(tm map[string]TensorInfo) error {
	for k, t := range tm {
		if k != t.Name {
			return fmt.Errorf("tensor names mismatch: map key %q, TensorInfo.Name %q", k, t.Name)
		}
		if k == metadataKey {
			return fmt.Errorf("tensor name %q is reserved", k)
		}
	}
	return nil
}

func validateTensor(t TensorInfo, expectedBegin int) error {
	if t.DataOffsets.Begin != expectedBegin {
		return fmt.Errorf("expected data-offsets begin %d, actual %d", expectedBegin, t.DataOffsets.Begin)
	}
	if t.DataOffsets.End < t.DataOffsets.Begin {
		return fmt.Errorf("expected data-offsets end >= %d (begin), actual %d", t.DataOffsets.Begin, t.DataOffsets.End)
	}

	if err := t.DType.Validate(); err != nil {
		return err
	}
	byteSize, err := byteSizeFromShape(t.Shape, t.DType.Size())
	if err != nil {
		return err
	}
	if size := t.ByteSize(); size != byteSize {
		return fmt.Errorf("byte size computed from shape (%d) differs from data-offsets size (%d)", byteSize, size)
	}
	return nil
}

func byteSizeFromShape(shape Shape, elemSize int) (int, error) {
	n := uint(1)
	for _, v := range shape {
		if v < 0 {
			return 0, fmt.Errorf("shape contains negative value %d", v)
		}
		var hi uint
		if hi, n = bits.Mul(n, uint(v)); hi != 0 {
			return 0, fmt.Errorf("int overflow computing tensor elements size from shape")
		}
	}
	hi, size := bits.Mul(n, uint(elemSize))
	if hi != 0 || size > math.MaxInt {
		return 0, fmt.Errorf("tensor byte size computed from shape is too large for int type")
	}
	return int(size), nil
}
