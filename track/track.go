// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package track assigns the 64-bit track UUIDs of a kernel trace.
//
// UUIDs are plain integers derived from kernel entities, so the same
// entity always lands on the same track within a run and across runs of
// the same image. The layout is:
//
//	1                      process (root of the tree)
//	2                      ISR aggregate
//	3                      Trace, parent of the GPIO port groups
//	4                      Emulated, parent of emulated peripherals
//	5                      UART group
//	0x1000 + id            thread with identity id
//	0x2000 + 4*i + {0,1,2} UART device i and its TX and RX tracks
//	GPIOUUIDBase + 512*p   GPIO port p: +pin for pins, +256 for the port group
package track

// ThreadID is the kernel's identity for a thread, typically the address of
// its control block.
type ThreadID uint64

// Fixed track UUIDs.
const (
	Process   uint64 = 1
	ISR       uint64 = 2
	Trace     uint64 = 3
	Emulated  uint64 = 4
	UARTGroup uint64 = 5
)

const (
	ThreadUUIDBase uint64 = 0x1000
	UARTUUIDBase   uint64 = 0x2000

	// GPIOUUIDBase is above any kernel address a thread identity takes on
	// the supported targets, so port tracks cannot meet thread tracks.
	GPIOUUIDBase uint64 = 1 << 40

	// GPIOPortStride is the number of UUIDs reserved for each GPIO port.
	GPIOPortStride = 512

	// MaxGPIOPins is the number of pin slots in a port's range.
	MaxGPIOPins = 256

	uartStride = 4
)

// Thread returns the UUID of the track for thread id.
func Thread(id ThreadID) uint64 {
	return ThreadUUIDBase + uint64(id)
}

// UART returns the UUIDs of UART instance i and of its TX and RX tracks.
func UART(i int) (dev, tx, rx uint64) {
	dev = UARTUUIDBase + uint64(i)*uartStride
	return dev, dev + 1, dev + 2
}

// GPIOBase returns the UUID base of the GPIO port at position ordinal in
// device enumeration order.
func GPIOBase(ordinal int) uint64 {
	return GPIOUUIDBase + uint64(ordinal)*GPIOPortStride
}

// GPIOPort returns the UUID of the port group track for a port base.
func GPIOPort(base uint64) uint64 {
	return base + MaxGPIOPins
}

// GPIOPin returns the UUID of the counter track for pin on a port base.
func GPIOPin(base uint64, pin int) uint64 {
	return base + uint64(pin)
}
