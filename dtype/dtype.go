// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dtype enumerates the element data types a tensor can be stored
// with, and maps them to Go element types.
package dtype

import (
	"fmt"
	"strconv"

	"github.com/nlpodyssey/strided/float16"
)

// DType identifies the data type of the elements of a tensor, as stored
// in a safetensors file.
type DType uint8

const (
	// Bool is an 8-bit boolean.
	Bool DType = iota + 1
	// U8 is an 8-bit unsigned integer.
	U8
	// I8 is an 8-bit signed integer.
	I8
	// U16 is a 16-bit unsigned integer.
	U16
	// I16 is a 16-bit signed integer.
	I16
	// F16 is a 16-bit IEEE 754 half-precision float.
	F16
	// BF16 is a 16-bit bfloat16 float.
	BF16
	// U32 is a 32-bit unsigned integer.
	U32
	// I32 is a 32-bit signed integer.
	I32
	// F32 is a 32-bit float.
	F32
	// U64 is a 64-bit unsigned integer.
	U64
	// I64 is a 64-bit signed integer.
	I64
	// F64 is a 64-bit float.
	F64
)

var descriptors = [...]struct {
	name string
	size int
}{
	Bool: {"BOOL", 1},
	U8:   {"U8", 1},
	I8:   {"I8", 1},
	U16:  {"U16", 2},
	I16:  {"I16", 2},
	F16:  {"F16", 2},
	BF16: {"BF16", 2},
	U32:  {"U32", 4},
	I32:  {"I32", 4},
	F32:  {"F32", 4},
	U64:  {"U64", 8},
	I64:  {"I64", 8},
	F64:  {"F64", 8},
}

// Element is the set of Go types a DType maps to.
type Element interface {
	bool | uint8 | int8 | uint16 | int16 | float16.F16 | float16.BF16 |
		uint32 | int32 | float32 | uint64 | int64 | float64
}

// Of returns the DType of the element type T.
func Of[T Element]() DType {
	var v T
	switch any(v).(type) {
	case bool:
		return Bool
	case uint8:
		return U8
	case int8:
		return I8
	case uint16:
		return U16
	case int16:
		return I16
	case float16.F16:
		return F16
	case float16.BF16:
		return BF16
	case uint32:
		return U32
	case int32:
		return I32
	case float32:
		return F32
	case uint64:
		return U64
	case int64:
		return I64
	case float64:
		return F64
	}
	panic("unreachable")
}

// Parse returns the DType with the given name, such as "F32" or "BOOL".
func Parse(s string) (DType, error) {
	for dt := Bool; dt <= F64; dt++ {
		if descriptors[dt].name == s {
			return dt, nil
		}
	}
	return 0, fmt.Errorf("unknown DType %q", s)
}

// Validate returns an error if the DType is not valid, otherwise nil.
func (dt DType) Validate() error {
	if dt == 0 || dt > F64 {
		return fmt.Errorf("invalid DType(%d)", dt)
	}
	return nil
}

// String returns the name of the DType.
func (dt DType) String() string {
	if err := dt.Validate(); err != nil {
		return err.Error()
	}
	return descriptors[dt].name
}

// Size returns the size in bytes of one element of this data type,
// or -1 if the DType value is invalid.
func (dt DType) Size() int {
	if err := dt.Validate(); err != nil {
		return -1
	}
	return descriptors[dt].size
}

// MarshalText satisfies encoding.TextMarshaler interface.
func (dt DType) MarshalText() ([]byte, error) {
	if err := dt.Validate(); err != nil {
		return nil, err
	}
	return []byte(descriptors[dt].name), nil
}

// UnmarshalText satisfies encoding.TextUnmarshaler interface.
func (dt *DType) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return fmt.Errorf("failed to text-unmarshal DType: %w", err)
	}
	*dt = v
	return nil
}

// MarshalJSON satisfies json.Marshaler interface.
func (dt DType) MarshalJSON() ([]byte, error) {
	if err := dt.Validate(); err != nil {
		return nil, err
	}
	return []byte(strconv.Quote(descriptors[dt].name)), nil
}

// UnmarshalJSON satisfies json.Unmarshaler interface.
func (dt *DType) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("failed to JSON-unmarshal DType from value %s", b)
	}
	v, err := Parse(s)
	if err != nil {
		return fmt.Errorf("failed to JSON-unmarshal DType: %w", err)
	}
	*dt = v
	return nil
}
