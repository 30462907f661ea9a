// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package safetensors

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/nlpodyssey/strided/dtype"
)

const metadataKey = "__metadata__"

// Header provides tensors information and metadata, as defined by
// the safetensors format.
type Header struct {
	Tensors  map[string]TensorInfo
	Metadata map[string]string
	// ByteBufferOffset is the byte index where the byte-buffer starts,
	// relative to the beginning of the whole data stream.
	ByteBufferOffset int
}

// TensorInfo describes a tensor stored in the byte-buffer.
type TensorInfo struct {
	Name        string
	DType       dtype.DType
	Shape       Shape
	DataOffsets DataOffsets
}

// ByteSize is the size of the tensor data, according to DataOffsets.
func (t TensorInfo) ByteSize() int {
	return t.DataOffsets.End - t.DataOffsets.Begin
}

// DataOffsets describes the "[Begin, End)" byte range of the tensor's data,
// relative to the beginning of the byte-buffer.
type DataOffsets struct {
	Begin int
	End   int
}

// MarshalJSON satisfies json.Marshaler interface, encoding the offsets as
// an array of two numbers.
func (a DataOffsets) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{a.Begin, a.End})
}

// Shape is the list of dims of a stored tensor.
type Shape []int

// MarshalJSON satisfies json.Marshaler interface. A nil Shape (scalar) is
// encoded as "[]" rather than "null".
func (s Shape) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]int(s))
}

type tensorJSON struct {
	DType       dtype.DType `json:"dtype"`
	Shape       Shape       `json:"shape"`
	DataOffsets DataOffsets `json:"data_offsets"`
}

// MarshalJSON satisfies json.Marshaler interface.
// Keys are sorted, so the encoding is deterministic.
func (h Header) MarshalJSON() ([]byte, error) {
	raw := make(map[string]any, len(h.Tensors)+1)
	if len(h.Metadata) > 0 {
		raw[metadataKey] = h.Metadata
	}
	for name, t := range h.Tensors {
		raw[name] = tensorJSON{DType: t.DType, Shape: t.Shape, DataOffsets: t.DataOffsets}
	}
	return json.Marshal(raw)
}

type rawDecodedHeader map[string]map[string]any

// ReadHeader reads and parses from r the initial part of a safetensors
// data stream, up to the beginning of the byte-buffer.
//
// No validation is performed on the obtained Header: see Header.Validate.
// The caller is responsible for limiting the amount of data read, for
// example with an io.LimitedReader.
func ReadHeader(r io.Reader) (Header, error) {
	size, err := readHeaderSize(r)
	switch {
	case err != nil:
		return Header{}, err
	case size < 2: // a bare minimum header is "{}"
		return Header{}, fmt.Errorf("header size too small: %d", size)
	case size > math.MaxInt-8: // 8 bytes are the uint64 size, already read
		return Header{}, fmt.Errorf("header size too large: %d", size)
	}

	raw, err := readAndDecodeJSON(r, int64(size))
	if err != nil {
		return Header{}, fmt.Errorf("failed to JSON-decode header: %w", err)
	}

	h, err := convertRawHeader(raw)
	if err != nil {
		return Header{}, err
	}
	h.ByteBufferOffset = 8 + int(size)
	return h, nil
}

func readHeaderSize(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("failed to read header size: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func readAndDecodeJSON(r io.Reader, size int64) (rawDecodedHeader, error) {
	dec := json.NewDecoder(&io.LimitedReader{R: r, N: size})
	dec.UseNumber()

	var raw rawDecodedHeader
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	// padding spaces may follow the JSON object
	if off := dec.InputOffset(); off != size {
		if _, err := dec.Token(); err == nil {
			return nil, fmt.Errorf("unexpected data at byte offset %d", off)
		} else if err != io.EOF {
			return nil, err
		}
	}
	return raw, nil
}

func convertRawHeader(raw rawDecodedHeader) (h Header, err error) {
	if rawMeta, ok := raw[metadataKey]; ok {
		delete(raw, metadataKey)
		if h.Metadata, err = convertRawMetadata(rawMeta); err != nil {
			return
		}
	}
	h.Tensors, err = convertRawTensors(raw)
	return
}

func convertRawMetadata(raw map[string]any) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	metadata := make(map[string]string, len(raw))
	for key, rawVal := range raw {
		s, ok := rawVal.(string)
		if !ok {
			return nil, fmt.Errorf("failed to interpret header metadata: found non-string value for key %q", key)
		}
		metadata[key] = s
	}
	return metadata, nil
}

func convertRawTensors(raw rawDecodedHeader) (map[string]TensorInfo, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	tensors := make(map[string]TensorInfo, len(raw))
	for name, rawVal := range raw {
		t, err := convertRawTensor(name, rawVal)
		if err != nil {
			return nil, fmt.Errorf("failed to interpret header tensor %q: %w", name, err)
		}
		tensors[name] = t
	}
	return tensors, nil
}

func convertRawTensor(name string, raw map[string]any) (t TensorInfo, err error) {
	t.Name = name
	if t.DType, err = convertRawDType(raw); err != nil {
		return
	}
	if t.Shape, err = convertRawShape(raw); err != nil {
		return
	}
	if t.DataOffsets, err = convertRawDataOffsets(raw); err != nil {
		return
	}
	if len(raw) != 3 {
		err = errors.New("JSON object contains unknown keys")
	}
	return
}

func convertRawDType(raw map[string]any) (dtype.DType, error) {
	rawDType, ok := raw["dtype"]
	if !ok {
		return 0, errors.New(`"dtype" is missing`)
	}
	s, ok := rawDType.(string)
	if !ok {
		return 0, errors.New(`found non-string "dtype" value`)
	}
	dt, err := dtype.Parse(s)
	if err != nil {
		return 0, fmt.Errorf(`invalid "dtype" value: %q`, s)
	}
	return dt, nil
}

func convertRawShape(raw map[string]any) (Shape, error) {
	rawShape, ok := raw["shape"]
	if !ok {
		return nil, errors.New(`"shape" is missing`)
	}
	items, ok := rawShape.([]any)
	if !ok {
		return nil, errors.New(`found non-array "shape" value`)
	}
	if len(items) == 0 {
		return nil, nil
	}
	shape := make(Shape, len(items))
	for i, item := range items {
		var err error
		if shape[i], err = convertNonNegInt(item); err != nil {
			return nil, fmt.Errorf(`failed to interpret "shape" value at index %d: %w`, i, err)
		}
	}
	return shape, nil
}

func convertRawDataOffsets(raw map[string]any) (DataOffsets, error) {
	rawOffsets, ok := raw["data_offsets"]
	if !ok {
		return DataOffsets{}, errors.New(`"data_offsets" is missing`)
	}
	items, ok := rawOffsets.([]any)
	if !ok {
		return DataOffsets{}, errors.New(`found non-array "data_offsets" value`)
	}
	if l := len(items); l != 2 {
		return DataOffsets{}, fmt.Errorf(`bad "data_offsets" length: expected 2, actual %d`, l)
	}
	var parsed [2]int
	for i, item := range items {
		var err error
		if parsed[i], err = convertNonNegInt(item); err != nil {
			return DataOffsets{}, fmt.Errorf(`failed to interpret "data_offsets" value at index %d: %w`, i, err)
		}
	}
	return DataOffsets{Begin: parsed[0], End: parsed[1]}, nil
}

func convertNonNegInt(value any) (int, error) {
	jNum, ok := value.(json.Number)
	if !ok {
		return 0, errors.New("value is not a number")
	}
	num, err := strconv.ParseInt(jNum.String(), 10, strconv.IntSize)
	if err != nil {
		return 0, fmt.Errorf("failed to convert value %q to int: %w", jNum.String(), err)
	}
	if num < 0 {
		return 0, fmt.Errorf("value is negative: %d", num)
	}
	return int(num), nil
}
