// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strided

import (
	"context"
	"log/slog"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(slog.New(discardHandler{}))
}

// SetLogger sets the logger receiving the package's diagnostic records.
// A nil value restores the default logger, which discards everything.
//
// Records are emitted at debug level on construction, view creation and
// slicing, and whenever a checked operation fails. Successful element
// accesses are never logged. It is safe to call SetLogger concurrently
// with any other function of this package.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(discardHandler{})
	}
	logger.Store(l)
}

func logDebug(msg string, attrs ...slog.Attr) {
	l := logger.Load()
	ctx := context.Background()
	if !l.Enabled(ctx, slog.LevelDebug) {
		return
	}
	l.LogAttrs(ctx, slog.LevelDebug, msg, attrs...)
}

func layoutAttrs(dims, strides []int) slog.Attr {
	return slog.Group("layout", slog.Any("dims", dims), slog.Any("strides", strides))
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
