// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package periph

import "github.com/rtos-tracing/ktrace/track"

// UARTInstance describes one UART.
type UARTInstance struct {
	Device string `yaml:"device"`
	Name   string `yaml:"name"`

	// Base is the UUID of the device track; TX and RX follow it.
	// Zero selects the slot of the instance's position in the board.
	Base uint64 `yaml:"-"`
}

// UART owns the device, TX and RX tracks of a set of UARTs.
type UART struct {
	em          Emitter
	insts       []UARTInstance
	initialized bool
}

// NewUART returns the track owner for insts, writing to em.
func NewUART(em Emitter, insts []UARTInstance) *UART {
	u := &UART{em: em, insts: make([]UARTInstance, len(insts))}
	for i, in := range insts {
		if in.Base == 0 {
			in.Base, _, _ = track.UART(i)
		}
		if in.Name == "" {
			in.Name = in.Device
		}
		u.insts[i] = in
	}
	return u
}

// InitTracks writes, for every instance, a device track under the UART
// group and its TX and RX tracks. Only the first call has any effect.
func (u *UART) InitTracks() {
	if u.initialized {
		return
	}
	for _, in := range u.insts {
		u.em.EmitTrackDescriptor(in.Base, track.UARTGroup, in.Name)
		u.em.EmitTrackDescriptor(in.Base+1, in.Base, "TX")
		u.em.EmitTrackDescriptor(in.Base+2, in.Base, "RX")
	}
	u.initialized = true
}

// TrackUUIDs returns the device, TX and RX track UUIDs of dev.
func (u *UART) TrackUUIDs(dev string) (device, tx, rx uint64, ok bool) {
	for _, in := range u.insts {
		if in.Device == dev {
			return in.Base, in.Base + 1, in.Base + 2, true
		}
	}
	return 0, 0, 0, false
}
