// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package strided implements dense N-dimensional arrays of elements
// (tensors), with stride-based addressing and non-owning views.
//
// A Tensor owns a row-major buffer. A View (read-only) or a MutableView
// (read-write) references a window of a buffer owned elsewhere, with its
// own dims and strides: views are obtained from a Tensor as a whole, or by
// slicing a Tensor or another view with one IndexSpec for each axis.
// No element is ever copied when creating views.
//
// All indexing behavior is derived from the small Core interface,
// implemented by all three types. Checked accessors (Offset, Get, Set)
// return typed errors and never panic; the unchecked variants skip any
// validation, and must only be used with indices already known to be
// valid.
//
// The package performs no arithmetic on elements.
package strided
