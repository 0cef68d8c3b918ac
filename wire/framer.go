// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

// PacketTag is the key of Trace.packet: field 1, wire type 2
// (length-delimited).
const PacketTag = 0x0a

// MaxHeaderLen is the largest frame header the Framer produces.
const MaxHeaderLen = 1 + MaxVarintLen

// Sink receives raw trace bytes. Emit must not retain p after it returns.
//
// The encoder calls Emit from whatever context fired the kernel hook,
// including interrupt handlers, so implementations must not block.
type Sink interface {
	Emit(p []byte)
}

// VectorSink is a Sink that can accept a frame header and its payload in a
// single call. Sinks that may have to drop data under pressure implement it
// so that they drop whole frames instead of splitting one.
type VectorSink interface {
	Sink
	EmitVector(header, payload []byte)
}

// Framer wraps encoded packets in Trace.packet frames and hands them to a
// Sink. It keeps only the header scratch space; payloads are passed through.
//
// A Framer is not safe for concurrent use.
type Framer struct {
	sink   Sink
	vec    VectorSink
	header [MaxHeaderLen + 1]byte
}

// NewFramer returns a Framer that writes to s.
func NewFramer(s Sink) *Framer {
	f := &Framer{sink: s}
	f.vec, _ = s.(VectorSink)
	return f
}

// Emit writes one frame containing payload.
func (f *Framer) Emit(payload []byte) {
	h := append(f.header[:0], PacketTag)
	h = AppendVarint(h, uint64(len(payload)))
	if f.vec != nil {
		f.vec.EmitVector(h, payload)
		return
	}
	f.sink.Emit(h)
	f.sink.Emit(payload)
}

// FrameLen returns the number of bytes Emit writes for an n-byte payload.
func FrameLen(n int) int {
	return 1 + SizeVarint(uint64(n)) + n
}
