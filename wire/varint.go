// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wire frames encoded trace packets into the length-delimited
// stream that Perfetto reads as a top-level Trace message.
//
// A stream is a concatenation of frames, each one the key of the repeated
// Trace.packet field (0x0a), the payload length as a base-128 varint, and
// the encoded TracePacket itself. Concatenating two valid streams yields a
// valid stream, so frames can be appended to a sink with no trailer.
package wire

import "google.golang.org/protobuf/encoding/protowire"

// MaxVarintLen is the maximum length of a varint-encoded 64-bit value.
const MaxVarintLen = 10

// AppendVarint appends v to b as a base-128 varint: seven payload bits per
// byte, least significant group first, with the continuation bit set on
// every byte but the last.
//
// If b has room for the encoding, AppendVarint does not allocate.
func AppendVarint(b []byte, v uint64) []byte {
	return protowire.AppendVarint(b, v)
}

// EncodeVarint writes v into dst and returns the number of bytes used.
func EncodeVarint(dst *[MaxVarintLen]byte, v uint64) int {
	return len(protowire.AppendVarint(dst[:0], v))
}

// SizeVarint returns the encoded size of v.
func SizeVarint(v uint64) int {
	return protowire.SizeVarint(v)
}

// ConsumeVarint parses a varint from the front of b. It returns the value
// and the number of bytes read, or a negative length if b does not start
// with a valid varint.
func ConsumeVarint(b []byte) (uint64, int) {
	return protowire.ConsumeVarint(b)
}
