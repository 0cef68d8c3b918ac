// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package periph traces peripheral state on tracks derived from a static
// board description.
//
// The set of GPIO ports and UART instances is fixed when the tracers are
// created. Devices are identified by the name the kernel gives them; hooks
// for devices that are not on the board are ignored.
package periph

// Emitter is the part of an encoder the peripheral tracers write to.
type Emitter interface {
	EmitTrackDescriptor(uuid, parent uint64, name string)
	EmitCounterTrackDescriptor(uuid, parent uint64, name string)
	EmitCounter(uuid uint64, value int64)
}
