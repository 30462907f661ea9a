// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strided

import (
	"fmt"
	"log/slog"
)

type specKind uint8

const (
	fullSpec specKind = iota
	fixedSpec
	rangeSpec
)

// IndexSpec selects a portion of a single axis when slicing.
//
// The zero value is equivalent to Full().
type IndexSpec struct {
	kind       specKind
	start, end int
}

// Fixed pins an axis to coordinate i. The axis is kept, with extent 1.
func Fixed(i int) IndexSpec {
	return IndexSpec{kind: fixedSpec, start: i, end: i + 1}
}

// Range selects the half-open interval [start, end) of an axis.
func Range(start, end int) IndexSpec {
	return IndexSpec{kind: rangeSpec, start: start, end: end}
}

// Full keeps an axis unchanged.
func Full() IndexSpec {
	return IndexSpec{}
}

// String returns a representation of the IndexSpec in the familiar
// "i", "start:end" and ":" notations.
func (s IndexSpec) String() string {
	switch s.kind {
	case fixedSpec:
		return fmt.Sprintf("%d", s.start)
	case rangeSpec:
		return fmt.Sprintf("%d:%d", s.start, s.end)
	default:
		return ":"
	}
}

// slice derives a new window from w and one IndexSpec for each axis.
//
// Axes are validated left to right, and the first invalid one is
// reported. Strides are carried over unchanged for all axes, including
// the ones pinned by Fixed: with extent 1, their stride never takes part
// in addressing.
func (w window[T]) slice(specs []IndexSpec) (window[T], error) {
	if len(specs) != len(w.dims) {
		err := &RankMismatchError{Expected: len(w.dims), Got: len(specs)}
		logDebug("slice failed", slog.Any("error", err))
		return window[T]{}, err
	}

	dims := cloneInts(w.dims)
	base := 0
	for i, spec := range specs {
		switch spec.kind {
		case fixedSpec:
			if spec.start < 0 || spec.start >= w.dims[i] {
				return window[T]{}, sliceBoundsError(i, spec, w.dims[i])
			}
			base += spec.start * w.strides[i]
			dims[i] = 1
		case rangeSpec:
			if spec.start < 0 || spec.end > w.dims[i] || spec.start >= spec.end {
				return window[T]{}, sliceBoundsError(i, spec, w.dims[i])
			}
			base += spec.start * w.strides[i]
			dims[i] = spec.end - spec.start
		}
	}

	strides := cloneInts(w.strides)
	n, err := span(dims, strides)
	if err != nil {
		// unreachable: dims and strides are a restriction of a valid window
		return window[T]{}, err
	}
	var data []T
	if n > 0 {
		data = w.data[base : base+n : base+n]
	} else {
		data = w.data[:0:0]
	}

	logDebug("slice created",
		slog.Any("specs", specs),
		layoutAttrs(dims, strides),
		slog.Int("baseOffset", base),
	)
	return window[T]{dims: dims, strides: strides, data: data}, nil
}

func sliceBoundsError(axis int, spec IndexSpec, dim int) error {
	err := &SliceBoundsError{Axis: axis, Spec: spec, Dim: dim}
	logDebug("slice failed", slog.Any("error", err))
	return err
}
