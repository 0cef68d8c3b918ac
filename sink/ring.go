// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sink

import (
	"context"
	"io"
	"sync"

	"github.com/rtos-tracing/ktrace/wire"
	"go.uber.org/atomic"
	"golang.org/x/xerrors"
)

// Ring is a fixed-size byte queue between the encoder and a slower
// transport. Writes never block and never wait for the reader: a frame
// that does not fit is dropped whole and counted.
type Ring struct {
	mu    sync.Mutex
	buf   []byte
	start int // index of the oldest byte
	n     int // bytes queued

	ready   chan struct{}
	dropped atomic.Uint64
}

var _ wire.VectorSink = (*Ring)(nil)

// NewRing returns a Ring holding up to size bytes.
func NewRing(size int) *Ring {
	return &Ring{buf: make([]byte, size), ready: make(chan struct{}, 1)}
}

// Emit queues p as one unit.
func (r *Ring) Emit(p []byte) {
	r.EmitVector(nil, p)
}

// EmitVector queues a frame header and payload, or neither.
func (r *Ring) EmitVector(header, payload []byte) {
	r.mu.Lock()
	if len(header)+len(payload) > len(r.buf)-r.n {
		r.mu.Unlock()
		r.dropped.Inc()
		return
	}
	r.put(header)
	r.put(payload)
	r.mu.Unlock()
	select {
	case r.ready <- struct{}{}:
	default:
	}
}

func (r *Ring) put(p []byte) {
	for len(p) > 0 {
		end := (r.start + r.n) % len(r.buf)
		limit := len(r.buf)
		if end < r.start {
			limit = r.start
		}
		c := copy(r.buf[end:limit], p)
		r.n += c
		p = p[c:]
	}
}

// Read moves queued bytes into p. It does not block; with nothing queued
// it returns 0, nil.
func (r *Ring) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for len(p) > 0 && r.n > 0 {
		end := r.start + r.n
		if end > len(r.buf) {
			end = len(r.buf)
		}
		c := copy(p, r.buf[r.start:end])
		r.start = (r.start + c) % len(r.buf)
		r.n -= c
		p = p[c:]
		total += c
	}
	return total, nil
}

// Len returns the number of bytes queued.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

// Dropped returns the number of frames dropped for lack of space.
func (r *Ring) Dropped() uint64 { return r.dropped.Load() }

// Run copies queued bytes to w as they arrive until ctx is done, then
// copies what is left and returns nil. It returns the first write error.
func (r *Ring) Run(ctx context.Context, w io.Writer) error {
	buf := make([]byte, 4096)
	flush := func() error {
		for {
			n, _ := r.Read(buf)
			if n == 0 {
				return nil
			}
			if _, err := w.Write(buf[:n]); err != nil {
				return xerrors.Errorf("draining trace ring: %w", err)
			}
		}
	}
	for {
		select {
		case <-ctx.Done():
			return flush()
		case <-r.ready:
			if err := flush(); err != nil {
				return err
			}
		}
	}
}
