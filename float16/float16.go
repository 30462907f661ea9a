// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package float16 provides 16-bit floating point element types, stored
// as raw bits, with conversions to and from float32.
package float16

import (
	"math"
	"strconv"
)

// F16 is an IEEE 754 half-precision (binary16) value, represented as raw
// bits.
type F16 uint16

// BF16 is a bfloat16 value, represented as raw bits: the upper half of a
// float32.
type BF16 uint16

// Float32 returns the exact float32 value of f.
func (f F16) Float32() float32 {
	sign := uint32(f&0x8000) << 16
	exp := uint32(f>>10) & 0x1f
	mant := uint32(f) & 0x3ff

	switch exp {
	case 0:
		if mant == 0 {
			return math.Float32frombits(sign)
		}
		// subnormal: mant * 2^-24
		v := float32(mant) * (1.0 / (1 << 24))
		return math.Float32frombits(sign | math.Float32bits(v))
	case 0x1f:
		return math.Float32frombits(sign | 0x7f800000 | mant<<13)
	}
	return math.Float32frombits(sign | (exp+112)<<23 | mant<<13)
}

// F16FromFloat32 converts f to the nearest F16 value, rounding ties to
// even. Values too large in magnitude become infinities; NaN stays NaN.
func F16FromFloat32(f float32) F16 {
	b := math.Float32bits(f)
	sign := uint16(b>>16) & 0x8000
	exp := int(b>>23) & 0xff
	mant := b & 0x7fffff

	if exp == 0xff {
		if mant != 0 {
			return F16(sign | 0x7e00 | uint16(mant>>13))
		}
		return F16(sign | 0x7c00)
	}

	e := exp - 127 + 15
	if e >= 0x1f {
		return F16(sign | 0x7c00)
	}
	if e <= 0 {
		shift := uint(14 - e)
		if shift > 24 {
			return F16(sign)
		}
		m := mant | 0x800000
		r := m >> shift
		rem := m & (1<<shift - 1)
		half := uint32(1) << (shift - 1)
		if rem > half || (rem == half && r&1 == 1) {
			r++
		}
		return F16(sign | uint16(r))
	}

	r := uint32(e)<<10 | mant>>13
	rem := mant & 0x1fff
	if rem > 0x1000 || (rem == 0x1000 && r&1 == 1) {
		r++
	}
	return F16(sign | uint16(r))
}

// String formats f as its shortest float32 decimal representation.
func (f F16) String() string {
	return strconv.FormatFloat(float64(f.Float32()), 'g', -1, 32)
}

// Float32 returns the exact float32 value of f.
func (f BF16) Float32() float32 {
	return math.Float32frombits(uint32(f) << 16)
}

// BF16FromFloat32 converts f to the nearest BF16 value, rounding ties to
// even. NaN stays NaN.
func BF16FromFloat32(f float32) BF16 {
	b := math.Float32bits(f)
	if b&0x7fffffff > 0x7f800000 {
		return BF16(b>>16 | 0x40)
	}
	b += 0x7fff + (b>>16)&1
	return BF16(b >> 16)
}

// String formats f as its shortest float32 decimal representation.
func (f BF16) String() string {
	return strconv.FormatFloat(float64(f.Float32()), 'g', -1, 32)
}
