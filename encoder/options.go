// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encoder

import (
	"time"

	"github.com/go-logr/logr"
)

// Defaults used for zero Options fields.
const (
	DefaultProcessName        = "Kernel"
	DefaultSequenceID         = 1
	DefaultMaxInternedStrings = 32
	DefaultMaxTrackedThreads  = 32
	DefaultBufferSize         = 256
)

// Options configure an Encoder. The zero value selects the defaults.
type Options struct {
	// ProcessName names the root process track.
	ProcessName string

	// SequenceID is written as trusted_packet_sequence_id on every packet.
	SequenceID uint32

	// MaxInternedStrings is the capacity of each interning table.
	MaxInternedStrings int

	// MaxTrackedThreads is the number of threads whose descriptor state
	// is remembered.
	MaxTrackedThreads int

	// BufferSize is the size of the scratch buffer packets are encoded
	// into. Packets that do not fit are dropped.
	BufferSize int

	// GPIOTracing enables the gpio category and GPIO track topology.
	GPIOTracing bool

	// Emulation adds the Emulated track group and UART topology.
	Emulation bool

	// Enabled reports whether tracing may start. It is consulted once,
	// at the first start attempt. Nil means always.
	Enabled func() bool

	// Clock returns the current time in nanoseconds since boot.
	// Nil uses the time elapsed since the Encoder was created.
	Clock func() uint64

	Logger logr.Logger
}

func (o *Options) withDefaults() Options {
	var opts Options
	if o != nil {
		opts = *o
	}
	if opts.ProcessName == "" {
		opts.ProcessName = DefaultProcessName
	}
	if opts.SequenceID == 0 {
		opts.SequenceID = DefaultSequenceID
	}
	if opts.MaxInternedStrings <= 0 {
		opts.MaxInternedStrings = DefaultMaxInternedStrings
	}
	if opts.MaxTrackedThreads <= 0 {
		opts.MaxTrackedThreads = DefaultMaxTrackedThreads
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if opts.Enabled == nil {
		opts.Enabled = func() bool { return true }
	}
	if opts.Clock == nil {
		boot := time.Now()
		opts.Clock = func() uint64 { return uint64(time.Since(boot)) }
	}
	if opts.Logger.GetSink() == nil {
		opts.Logger = logr.Discard()
	}
	return opts
}
