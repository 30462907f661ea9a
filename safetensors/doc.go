// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package safetensors stores strided tensors in safetensors format, and
// loads them back.
//
// A safetensors data stream starts with an 8-byte little-endian unsigned
// integer N, followed by N bytes of JSON header, followed by the
// byte-buffer holding the little-endian, row-major data of all tensors.
// The header maps each tensor name to its dtype, shape and data offsets
// within the byte-buffer; the special "__metadata__" key holds free-form
// string pairs.
//
// Write serializes any strided.Core, including non-contiguous views.
// Read loads a whole stream in memory, while Mapped memory-maps a file
// and decodes tensors on demand.
package safetensors
