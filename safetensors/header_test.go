// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package safetensors

import (
	"bytes"
	"encoding/binary"
	"testing"
	"testing/iotest"

	"github.com/nlpodyssey/strided/dtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withSize prepends the little-endian size of header to it.
func withSize(header string) []byte {
	b := make([]byte, 8, 8+len(header))
	binary.LittleEndian.PutUint64(b, uint64(len(header)))
	return append(b, header...)
}

func TestReadHeader(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		h, err := ReadHeader(bytes.NewReader(withSize("{}")))
		require.NoError(t, err)
		assert.Equal(t, Header{ByteBufferOffset: 10}, h)
	})

	t.Run("tensors and metadata with padding", func(t *testing.T) {
		src := `{"__metadata__":{"k":"v"},"a":{"dtype":"F32","shape":[2,3],"data_offsets":[0,24]},"s":{"dtype":"U8","shape":[],"data_offsets":[24,25]}}    `
		h, err := ReadHeader(bytes.NewReader(withSize(src)))
		require.NoError(t, err)

		assert.Equal(t, map[string]string{"k": "v"}, h.Metadata)
		assert.Equal(t, 8+len(src), h.ByteBufferOffset)
		assert.Equal(t, map[string]TensorInfo{
			"a": {Name: "a", DType: dtype.F32, Shape: Shape{2, 3}, DataOffsets: DataOffsets{0, 24}},
			"s": {Name: "s", DType: dtype.U8, Shape: nil, DataOffsets: DataOffsets{24, 25}},
		}, h.Tensors)
		assert.NoError(t, h.Validate())
	})

	testCases := []struct {
		name string
		data []byte
		msg  string
	}{
		{"no size", []byte{1, 2, 3}, "failed to read header size: unexpected EOF"},
		{"too small", withSize("{"), "header size too small: 1"},
		{"truncated", withSize("{}")[:9], "failed to JSON-decode header: unexpected EOF"},
		{"trailing data", withSize(`{}  1`), "failed to JSON-decode header: unexpected data at byte offset 2"},
		{"non-string metadata", withSize(`{"__metadata__":{"k":1}}`), `failed to interpret header metadata: found non-string value for key "k"`},
		{"missing dtype", withSize(`{"a":{"shape":[],"data_offsets":[0,0]}}`), `failed to interpret header tensor "a": "dtype" is missing`},
		{"bad dtype", withSize(`{"a":{"dtype":"F128","shape":[],"data_offsets":[0,0]}}`), `failed to interpret header tensor "a": invalid "dtype" value: "F128"`},
		{"negative shape", withSize(`{"a":{"dtype":"U8","shape":[-1],"data_offsets":[0,0]}}`), `failed to interpret header tensor "a": failed to interpret "shape" value at index 0: value is negative: -1`},
		{"short offsets", withSize(`{"a":{"dtype":"U8","shape":[],"data_offsets":[0]}}`), `failed to interpret header tensor "a": bad "data_offsets" length: expected 2, actual 1`},
		{"unknown key", withSize(`{"a":{"dtype":"U8","shape":[],"data_offsets":[0,1],"x":0}}`), `failed to interpret header tensor "a": JSON object contains unknown keys`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadHeader(bytes.NewReader(tc.data))
			assert.EqualError(t, err, tc.msg)
		})
	}

	t.Run("reader error", func(t *testing.T) {
		_, err := ReadHeader(iotest.ErrReader(iotest.ErrTimeout))
		assert.ErrorIs(t, err, iotest.ErrTimeout)
	})
}

func TestHeader_Validate(t *testing.T) {
	info := func(name string, dt dtype.DType, shape Shape, begin, end int) TensorInfo {
		return TensorInfo{Name: name, DType: dt, Shape: shape, DataOffsets: DataOffsets{begin, end}}
	}
	testCases := []struct {
		name    string
		tensors []TensorInfo
		msg     string
	}{
		{"empty", nil, ""},
		{"scalar", []TensorInfo{info("a", dtype.I64, nil, 0, 8)}, ""},
		{"zero extent", []TensorInfo{info("a", dtype.I64, Shape{3, 0}, 0, 0), info("b", dtype.U8, Shape{1}, 0, 1)}, ""},
		{"contiguous", []TensorInfo{info("b", dtype.U16, Shape{2}, 4, 8), info("a", dtype.F32, Shape{1}, 0, 4)}, ""},
		{"gap", []TensorInfo{info("a", dtype.U8, Shape{2}, 0, 2), info("b", dtype.U8, Shape{2}, 3, 5)}, `invalid tensor "b": expected data-offsets begin 2, actual 3`},
		{"not from zero", []TensorInfo{info("a", dtype.U8, Shape{2}, 1, 3)}, `invalid tensor "a": expected data-offsets begin 0, actual 1`},
		{"reversed", []TensorInfo{info("a", dtype.U8, nil, 0, 1), info("b", dtype.U8, nil, 1, 0)}, `invalid tensor "b": expected data-offsets end >= 1 (begin), actual 0`},
		{"size mismatch", []TensorInfo{info("a", dtype.F32, Shape{2}, 0, 4)}, `invalid tensor "a": byte size computed from shape (8) differs from data-offsets size (4)`},
		{"invalid dtype", []TensorInfo{info("a", 0, nil, 0, 1)}, `invalid tensor "a": invalid DType(0)`},
		{"overflow", []TensorInfo{info("a", dtype.U8, Shape{1 << 62, 1 << 62}, 0, 1)}, `invalid tensor "a": int overflow computing tensor elements size from shape`},
		{"reserved name", []TensorInfo{info(metadataKey, dtype.U8, nil, 0, 1)}, `tensor name "__metadata__" is reserved`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := Header{Tensors: make(map[string]TensorInfo)}
			for _, ti := range tc.tensors {
				h.Tensors[ti.Name] = ti
			}
			err := h.Validate()
			if tc.msg == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tc.msg)
			}
		})
	}

	t.Run("name mismatch", func(t *testing.T) {
		h := Header{Tensors: map[string]TensorInfo{"a": {Name: "b", DType: dtype.U8, DataOffsets: DataOffsets{0, 1}}}}
		assert.EqualError(t, h.Validate(), `tensor names mismatch: map key "a", TensorInfo.Name "b"`)
	})

	t.Run("negative byte-buffer offset", func(t *testing.T) {
		assert.EqualError(t, Header{ByteBufferOffset: -1}.Validate(), "invalid byte-buffer offset negative value -1")
	})
}

func TestHeader_MarshalJSON(t *testing.T) {
	h := Header{
		Tensors: map[string]TensorInfo{
			"b": {Name: "b", DType: dtype.BF16, Shape: Shape{2}, DataOffsets: DataOffsets{1, 5}},
			"a": {Name: "a", DType: dtype.Bool, DataOffsets: DataOffsets{0, 1}},
		},
		Metadata: map[string]string{"format": "pt"},
	}
	b, err := h.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t,
		`{"__metadata__":{"format":"pt"},"a":{"dtype":"BOOL","shape":[],"data_offsets":[0,1]},"b":{"dtype":"BF16","shape":[2],"data_offsets":[1,5]}}`,
		string(b))

	back, err := ReadHeader(bytes.NewReader(withSize(string(b))))
	require.NoError(t, err)
	assert.Equal(t, h.Tensors, back.Tensors)
	assert.Equal(t, h.Metadata, back.Metadata)
	assert.Equal(t, 5, back.ByteBufferSize())
}
