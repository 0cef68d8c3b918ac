// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sink provides destinations for framed trace bytes.
package sink

import (
	"io"

	"github.com/rtos-tracing/ktrace/wire"
	"go.uber.org/atomic"
)

// Writer passes trace bytes to an io.Writer. Each frame reaches the
// io.Writer in a single Write. After the first write error it discards
// everything; Err reports the error.
type Writer struct {
	w     io.Writer
	n     int64
	err   error
	frame []byte
}

var _ wire.VectorSink = (*Writer)(nil)

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Emit(p []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(p)
	w.n += int64(n)
	w.err = err
}

func (w *Writer) EmitVector(header, payload []byte) {
	if w.err != nil {
		return
	}
	w.frame = append(append(w.frame[:0], header...), payload...)
	w.Emit(w.frame)
}

// Written returns the number of bytes written.
func (w *Writer) Written() int64 { return w.n }

// Err returns the first write error.
func (w *Writer) Err() error { return w.err }

// Counter counts the bytes and frames it receives and keeps nothing.
// Its counters may be read from any goroutine.
type Counter struct {
	bytes  atomic.Uint64
	frames atomic.Uint64
}

var _ wire.VectorSink = (*Counter)(nil)

// Emit counts p without counting a frame.
func (c *Counter) Emit(p []byte) { c.bytes.Add(uint64(len(p))) }

func (c *Counter) EmitVector(header, payload []byte) {
	c.bytes.Add(uint64(len(header) + len(payload)))
	c.frames.Inc()
}

func (c *Counter) Bytes() uint64  { return c.bytes.Load() }
func (c *Counter) Frames() uint64 { return c.frames.Load() }
