// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package safetensors

import (
	"fmt"
	"io"

	"github.com/nlpodyssey/strided"
	"github.com/nlpodyssey/strided/dtype"
)

// File is the result of reading the full content of a safetensors data
// stream, with all tensors loaded in memory.
type File[T dtype.Element] struct {
	Tensors  map[string]*strided.Tensor[T]
	Metadata map[string]string
}

// Read reads and interprets the whole content of a safetensors data
// stream. After the header is read and validated, the data of each
// tensor is decoded into a new, owned strided.Tensor.
//
// All tensors must have the DType of T (see dtype.Of).
//
// If headerSizeLimit is set to a positive number, its value is used to
// limit the reading of the header, guarding against giant allocations
// caused by tampered or garbage data. A value of zero, or a negative
// number, has no limiting effect.
func Read[T dtype.Element](r io.Reader, headerSizeLimit int) (File[T], error) {
	head, err := readValidHeader(r, headerSizeLimit)
	if err != nil {
		return File[T]{}, err
	}

	f := File[T]{
		Tensors:  make(map[string]*strided.Tensor[T], len(head.Tensors)),
		Metadata: head.Metadata,
	}
	for _, info := range sortedByOffsets(head.Tensors) {
		if err = checkDType[T](info); err != nil {
			return File[T]{}, err
		}
		data := make([]byte, info.ByteSize())
		if _, err = io.ReadFull(r, data); err != nil {
			return File[T]{}, fmt.Errorf("failed to read data of tensor %q: %w", info.Name, err)
		}
		if f.Tensors[info.Name], err = newTensor[T](info, data); err != nil {
			return File[T]{}, err
		}
	}
	return f, nil
}

func readValidHeader(r io.Reader, sizeLimit int) (Header, error) {
	if sizeLimit > 0 {
		r = io.LimitReader(r, int64(sizeLimit))
	}
	head, err := ReadHeader(r)
	if err != nil {
		return Header{}, fmt.Errorf("failed to read safetensors header: %w", err)
	}
	if err = head.Validate(); err != nil {
		return Header{}, fmt.Errorf("safetensors header is invalid: %w", err)
	}
	return head, nil
}

func checkDType[T dtype.Element](info TensorInfo) error {
	if want := dtype.Of[T](); info.DType != want {
		return fmt.Errorf("tensor %q has dtype %s, expected %s", info.Name, info.DType, want)
	}
	return nil
}

func newTensor[T dtype.Element](info TensorInfo, data []byte) (*strided.Tensor[T], error) {
	elems, err := decodeElements[T](data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data of tensor %q: %w", info.Name, err)
	}
	t, err := strided.New(info.Shape, elems)
	if err != nil {
		return nil, fmt.Errorf("failed to build tensor %q: %w", info.Name, err)
	}
	return t, nil
}
