// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package safetensors

import (
	"encoding/binary"
	"fmt"
	"io"
	"slices"

	"github.com/nlpodyssey/strided"
	"github.com/nlpodyssey/strided/dtype"
)

// Write serializes the given tensors and additional metadata to
// safetensors format, writing the result to w.
//
// Tensors are stored in ascending name order. Any strided.Core is
// accepted: the elements of non-contiguous views are gathered in
// row-major order, so that reading them back yields a contiguous tensor
// with the same dims.
func Write[T dtype.Element](w io.Writer, tensors map[string]strided.Core[T], metadata map[string]string) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		names = append(names, name)
	}
	slices.Sort(names)

	head, err := makeValidHeader(names, tensors, metadata)
	if err != nil {
		return err
	}
	if err = writeHeader(w, head); err != nil {
		return err
	}
	for _, name := range names {
		if err = writeTensor(w, tensors[name], head.Tensors[name]); err != nil {
			return fmt.Errorf("failed to write data of tensor %q: %w", name, err)
		}
	}
	return nil
}

func makeValidHeader[T dtype.Element](names []string, tensors map[string]strided.Core[T], metadata map[string]string) (Header, error) {
	dt := dtype.Of[T]()
	head := Header{
		Tensors:  make(map[string]TensorInfo, len(names)),
		Metadata: metadata,
	}
	offset := 0
	for _, name := range names {
		c := tensors[name]
		if c == nil {
			return Header{}, fmt.Errorf("tensor %q is nil", name)
		}
		shape := Shape(slices.Clone(c.Dims()))
		if len(shape) == 0 {
			shape = nil
		}
		size, err := byteSizeFromShape(shape, dt.Size())
		if err != nil {
			return Header{}, fmt.Errorf("invalid tensor %q: %w", name, err)
		}
		head.Tensors[name] = TensorInfo{
			Name:        name,
			DType:       dt,
			Shape:       shape,
			DataOffsets: DataOffsets{Begin: offset, End: offset + size},
		}
		offset += size
	}
	if err := head.Validate(); err != nil {
		return Header{}, fmt.Errorf("failed to generate a valid header: %w", err)
	}
	return head, nil
}

var headerPadding = [8]byte{' ', ' ', ' ', ' ', ' ', ' ', ' ', ' '}

func writeHeader(w io.Writer, head Header) error {
	jsonHeader, err := head.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to JSON-encode header: %w", err)
	}

	// the byte-buffer is 8-byte aligned
	toAlign := (8 - len(jsonHeader)%8) % 8

	var size [8]byte
	binary.LittleEndian.PutUint64(size[:], uint64(len(jsonHeader)+toAlign))
	if _, err = w.Write(size[:]); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err = w.Write(jsonHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if toAlign > 0 {
		if _, err = w.Write(headerPadding[:toAlign]); err != nil {
			return fmt.Errorf("failed to write header padding: %w", err)
		}
	}
	return nil
}

func writeTensor[T dtype.Element](w io.Writer, c strided.Core[T], info TensorInfo) error {
	size := info.ByteSize()
	if size == 0 {
		return nil
	}
	buf := make([]byte, size)
	encodeElements(buf, strided.Elements(c))
	n, err := w.Write(buf)
	if err != nil {
		return err
	}
	if n != size {
		return fmt.Errorf("expected %d written bytes, actual %d", size, n)
	}
	return nil
}
