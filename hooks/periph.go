// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hooks

// GPIO port hooks. Only the enter hooks of state-changing calls are
// traced: reads and exits write nothing.

func (t *Tracer) GPIOPortGetRawEnter(dev string) {}

func (t *Tracer) GPIOPortGetRawExit(dev string, ret int) {}

func (t *Tracer) GPIOPortSetMaskedRawEnter(dev string, mask, value uint32) {
	if t.initialized && t.gpio != nil {
		t.gpio.SetMasked(dev, mask, value)
	}
}

func (t *Tracer) GPIOPortSetMaskedRawExit(dev string, ret int) {}

func (t *Tracer) GPIOPortSetBitsRawEnter(dev string, pins uint32) {
	if t.initialized && t.gpio != nil {
		t.gpio.SetBits(dev, pins)
	}
}

func (t *Tracer) GPIOPortSetBitsRawExit(dev string, ret int) {}

func (t *Tracer) GPIOPortClearBitsRawEnter(dev string, pins uint32) {
	if t.initialized && t.gpio != nil {
		t.gpio.ClearBits(dev, pins)
	}
}

func (t *Tracer) GPIOPortClearBitsRawExit(dev string, ret int) {}

func (t *Tracer) GPIOPortToggleBitsEnter(dev string, pins uint32) {
	if t.initialized && t.gpio != nil {
		t.gpio.Toggle(dev, pins)
	}
}

func (t *Tracer) GPIOPortToggleBitsExit(dev string, ret int) {}

// UARTTx records a completed transmission of data on dev that started at
// start and lasted dur nanoseconds, as a slice on the device's TX track
// named by the transferred bytes.
func (t *Tracer) UARTTx(dev string, data []byte, start, dur uint64) {
	t.uartSlice(dev, data, start, dur, true)
}

// UARTRx is UARTTx for received data, on the RX track.
func (t *Tracer) UARTRx(dev string, data []byte, start, dur uint64) {
	t.uartSlice(dev, data, start, dur, false)
}

func (t *Tracer) uartSlice(dev string, data []byte, start, dur uint64, tx bool) {
	if !t.initialized || t.uart == nil {
		return
	}
	_, txUUID, rxUUID, ok := t.uart.TrackUUIDs(dev)
	if !ok {
		return
	}
	uuid := rxUUID
	if tx {
		uuid = txUUID
	}
	t.enc.EmitSliceWithDurationBytes(uuid, printable(t.uartName[:0], data), start, dur)
}

// printable appends data to buf with bytes outside printable ASCII
// replaced by '.', stopping when buf is full.
func printable(buf, data []byte) []byte {
	for _, c := range data {
		if len(buf) == cap(buf) {
			break
		}
		if c < ' ' || c > '~' {
			c = '.'
		}
		buf = append(buf, c)
	}
	return buf
}
