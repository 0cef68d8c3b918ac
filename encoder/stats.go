// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encoder

import "go.uber.org/atomic"

// Stats is a snapshot of an Encoder's counters.
type Stats struct {
	Packets         uint64 // packets handed to the sink
	Bytes           uint64 // bytes handed to the sink, framing included
	Dropped         uint64 // packets that did not fit the encode buffer
	InternMisses    uint64 // names refused by a full interning table
	ThreadOverflows uint64 // descriptors whose thread could not be remembered
}

// counters are updated by the writer and may be read by any goroutine.
type counters struct {
	packets         atomic.Uint64
	bytes           atomic.Uint64
	dropped         atomic.Uint64
	internMisses    atomic.Uint64
	threadOverflows atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Packets:         c.packets.Load(),
		Bytes:           c.bytes.Load(),
		Dropped:         c.dropped.Load(),
		InternMisses:    c.internMisses.Load(),
		ThreadOverflows: c.threadOverflows.Load(),
	}
}
