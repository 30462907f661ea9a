// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package safetensors

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/edsrzf/mmap-go"
	"github.com/nlpodyssey/strided"
	"github.com/nlpodyssey/strided/dtype"
)

// Mapped is a safetensors file mapped in memory, whose tensors are
// decoded on demand.
//
// Only the header is parsed when opening the file. Loading a tensor
// copies its data out of the mapping, so the obtained tensors remain
// valid after Close.
type Mapped struct {
	f    *os.File
	m    mmap.MMap
	head Header
}

// OpenMapped opens and memory-maps the safetensors file at path, and
// reads and validates its header. See Read for the meaning of
// headerSizeLimit.
func OpenMapped(path string, headerSizeLimit int) (_ *Mapped, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
		}
	}()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to memory-map %q: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = m.Unmap()
		}
	}()

	head, err := readValidHeader(bytes.NewReader(m), headerSizeLimit)
	if err != nil {
		return nil, err
	}
	if need := head.ByteBufferSize(); len(m)-head.ByteBufferOffset < need {
		return nil, fmt.Errorf("file %q is truncated: byte-buffer needs %d bytes, found %d", path, need, len(m)-head.ByteBufferOffset)
	}
	return &Mapped{f: f, m: m, head: head}, nil
}

// Names returns the names of all tensors, in ascending order.
func (m *Mapped) Names() []string {
	names := make([]string, 0, len(m.head.Tensors))
	for name := range m.head.Tensors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Metadata returns the free-form key/value string pairs of the header.
// It can be nil.
func (m *Mapped) Metadata() map[string]string {
	return m.head.Metadata
}

// Info returns the header information of a tensor, and whether it has
// been found.
func (m *Mapped) Info(name string) (TensorInfo, bool) {
	info, ok := m.head.Tensors[name]
	if ok {
		info.Shape = slices.Clone(info.Shape)
	}
	return info, ok
}

// Close unmaps the file from memory and closes it.
func (m *Mapped) Close() error {
	return errors.Join(m.m.Unmap(), m.f.Close())
}

// Load decodes the tensor with the given name into a new, owned
// strided.Tensor. The tensor DType must be the one of T.
func Load[T dtype.Element](m *Mapped, name string) (*strided.Tensor[T], error) {
	info, ok := m.head.Tensors[name]
	if !ok {
		return nil, fmt.Errorf("tensor %q not found", name)
	}
	if err := checkDType[T](info); err != nil {
		return nil, err
	}
	begin := m.head.ByteBufferOffset + info.DataOffsets.Begin
	end := m.head.ByteBufferOffset + info.DataOffsets.End
	return newTensor[T](info, m.m[begin:end])
}
