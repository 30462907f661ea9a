// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package safetensors

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/nlpodyssey/strided/dtype"
	"github.com/nlpodyssey/strided/float16"
)

var le = binary.LittleEndian

// encodeElements writes the little-endian representation of src into dst,
// which must be exactly len(src) * dtype.Of[T]().Size() bytes long.
func encodeElements[T dtype.Element](dst []byte, src []T) {
	switch s := any(src).(type) {
	case []bool:
		for i, v := range s {
			dst[i] = 0
			if v {
				dst[i] = 1
			}
		}
	case []uint8:
		copy(dst, s)
	case []int8:
		for i, v := range s {
			dst[i] = byte(v)
		}
	case []uint16:
		for i, v := range s {
			le.PutUint16(dst[i*2:], v)
		}
	case []int16:
		for i, v := range s {
			le.PutUint16(dst[i*2:], uint16(v))
		}
	case []float16.F16:
		for i, v := range s {
			le.PutUint16(dst[i*2:], uint16(v))
		}
	case []float16.BF16:
		for i, v := range s {
			le.PutUint16(dst[i*2:], uint16(v))
		}
	case []uint32:
		for i, v := range s {
			le.PutUint32(dst[i*4:], v)
		}
	case []int32:
		for i, v := range s {
			le.PutUint32(dst[i*4:], uint32(v))
		}
	case []float32:
		for i, v := range s {
			le.PutUint32(dst[i*4:], math.Float32bits(v))
		}
	case []uint64:
		for i, v := range s {
			le.PutUint64(dst[i*8:], v)
		}
	case []int64:
		for i, v := range s {
			le.PutUint64(dst[i*8:], uint64(v))
		}
	case []float64:
		for i, v := range s {
			le.PutUint64(dst[i*8:], math.Float64bits(v))
		}
	}
}

// decodeElements interprets src as little-endian elements of type T,
// returning a new slice. The length of src must be a multiple of the
// element size.
func decodeElements[T dtype.Element](src []byte) ([]T, error) {
	size := dtype.Of[T]().Size()
	if len(src)%size != 0 {
		return nil, fmt.Errorf("data size %d is not a multiple of element size %d", len(src), size)
	}
	out := make([]T, len(src)/size)

	switch d := any(out).(type) {
	case []bool:
		for i, b := range src {
			d[i] = b != 0
		}
	case []uint8:
		copy(d, src)
	case []int8:
		for i, b := range src {
			d[i] = int8(b)
		}
	case []uint16:
		for i := range d {
			d[i] = le.Uint16(src[i*2:])
		}
	case []int16:
		for i := range d {
			d[i] = int16(le.Uint16(src[i*2:]))
		}
	case []float16.F16:
		for i := range d {
			d[i] = float16.F16(le.Uint16(src[i*2:]))
		}
	case []float16.BF16:
		for i := range d {
			d[i] = float16.BF16(le.Uint16(src[i*2:]))
		}
	case []uint32:
		for i := range d {
			d[i] = le.Uint32(src[i*4:])
		}
	case []int32:
		for i := range d {
			d[i] = int32(le.Uint32(src[i*4:]))
		}
	case []float32:
		for i := range d {
			d[i] = math.Float32frombits(le.Uint32(src[i*4:]))
		}
	case []uint64:
		for i := range d {
			d[i] = le.Uint64(src[i*8:])
		}
	case []int64:
		for i := range d {
			d[i] = int64(le.Uint64(src[i*8:]))
		}
	case []float64:
		for i := range d {
			d[i] = math.Float64frombits(le.Uint64(src[i*8:]))
		}
	}
	return out, nil
}
