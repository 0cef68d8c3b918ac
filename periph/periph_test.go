// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package periph

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rtos-tracing/ktrace/track"
)

// log is an Emitter that records calls.
type log struct {
	calls []string
}

func (l *log) EmitTrackDescriptor(uuid, parent uint64, name string) {
	l.calls = append(l.calls, fmt.Sprintf("track %#x parent %#x %q", uuid, parent, name))
}

func (l *log) EmitCounterTrackDescriptor(uuid, parent uint64, name string) {
	l.calls = append(l.calls, fmt.Sprintf("counter-track %#x parent %#x %q", uuid, parent, name))
}

func (l *log) EmitCounter(uuid uint64, value int64) {
	l.calls = append(l.calls, fmt.Sprintf("counter %#x = %d", uuid, value))
}

func (l *log) take() []string {
	c := l.calls
	l.calls = nil
	return c
}

func TestGPIOInitTracks(t *testing.T) {
	l := &log{}
	g := NewGPIO(l, []GPIOPort{{Device: "gpio@0", Name: "gpio0", NGPIOs: 2}})
	g.InitTracks()
	g.InitTracks()
	base := track.GPIOBase(0)
	want := []string{
		fmt.Sprintf("track %#x parent 0x3 %q", base+256, "gpio0"),
		fmt.Sprintf("counter-track %#x parent %#x %q", base, base+256, "gpio0.00"),
		fmt.Sprintf("counter %#x = 0", base),
		fmt.Sprintf("counter-track %#x parent %#x %q", base+1, base+256, "gpio0.01"),
		fmt.Sprintf("counter %#x = 0", base+1),
	}
	if diff := cmp.Diff(want, l.take()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestGPIOEdges(t *testing.T) {
	l := &log{}
	g := NewGPIO(l, []GPIOPort{{Device: "a", NGPIOs: 4}, {Device: "b", NGPIOs: 8}})
	g.InitTracks()
	l.take()
	base := track.GPIOBase(0)

	g.SetBits("a", 0b0110)
	want := []string{
		fmt.Sprintf("counter %#x = 1", base+1),
		fmt.Sprintf("counter %#x = 1", base+2),
	}
	if diff := cmp.Diff(want, l.take()); diff != "" {
		t.Errorf("set bits (-want +got):\n%s", diff)
	}
	if s, _ := g.State("a"); s != 0b0110 {
		t.Errorf("state = %04b, want 0110", s)
	}

	g.Toggle("a", 0b0010)
	want = []string{fmt.Sprintf("counter %#x = 0", base+1)}
	if diff := cmp.Diff(want, l.take()); diff != "" {
		t.Errorf("toggle (-want +got):\n%s", diff)
	}
	if s, _ := g.State("a"); s != 0b0100 {
		t.Errorf("state = %04b, want 0100", s)
	}

	// No change, no samples.
	g.SetBits("a", 0b0100)
	g.ClearBits("a", 0b0001)
	if c := l.take(); len(c) != 0 {
		t.Errorf("unchanged pins emitted %v", c)
	}

	g.SetMasked("a", 0b1100, 0b1000)
	want = []string{
		fmt.Sprintf("counter %#x = 0", base+2),
		fmt.Sprintf("counter %#x = 1", base+3),
	}
	if diff := cmp.Diff(want, l.take()); diff != "" {
		t.Errorf("set masked (-want +got):\n%s", diff)
	}

	g.ClearBits("a", 0b1000)
	want = []string{fmt.Sprintf("counter %#x = 0", base+3)}
	if diff := cmp.Diff(want, l.take()); diff != "" {
		t.Errorf("clear bits (-want +got):\n%s", diff)
	}

	g.SetBits("b", 1)
	want = []string{fmt.Sprintf("counter %#x = 1", track.GPIOBase(1))}
	if diff := cmp.Diff(want, l.take()); diff != "" {
		t.Errorf("second port (-want +got):\n%s", diff)
	}
}

func TestGPIOIgnored(t *testing.T) {
	l := &log{}
	g := NewGPIO(l, []GPIOPort{{Device: "a", NGPIOs: 4}})
	g.SetBits("a", 1)
	if c := l.take(); len(c) != 0 {
		t.Errorf("uninitialized tracks emitted %v", c)
	}
	g.InitTracks()
	l.take()
	g.SetBits("nope", 1)
	if c := l.take(); len(c) != 0 {
		t.Errorf("unknown device emitted %v", c)
	}
	if _, ok := g.State("nope"); ok {
		t.Error("State found an unknown device")
	}
}

func TestGPIOPinsOutsidePort(t *testing.T) {
	l := &log{}
	g := NewGPIO(l, []GPIOPort{{Device: "a", NGPIOs: 2}})
	g.InitTracks()
	l.take()
	g.SetBits("a", 0b1110)
	want := []string{fmt.Sprintf("counter %#x = 1", track.GPIOBase(0)+1)}
	if diff := cmp.Diff(want, l.take()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestUART(t *testing.T) {
	l := &log{}
	u := NewUART(l, []UARTInstance{{Device: "uart0"}, {Device: "uart1", Name: "console"}})
	u.InitTracks()
	u.InitTracks()
	want := []string{
		`track 0x2000 parent 0x5 "uart0"`,
		`track 0x2001 parent 0x2000 "TX"`,
		`track 0x2002 parent 0x2000 "RX"`,
		`track 0x2004 parent 0x5 "console"`,
		`track 0x2005 parent 0x2004 "TX"`,
		`track 0x2006 parent 0x2004 "RX"`,
	}
	if diff := cmp.Diff(want, l.take()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	dev, tx, rx, ok := u.TrackUUIDs("uart1")
	if !ok || dev != 0x2004 || tx != 0x2005 || rx != 0x2006 {
		t.Errorf("TrackUUIDs(uart1) = %#x, %#x, %#x, %t", dev, tx, rx, ok)
	}
	if _, _, _, ok := u.TrackUUIDs("uart9"); ok {
		t.Error("TrackUUIDs found an unknown device")
	}
}
