// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hooks

import (
	"bytes"
	"testing"

	"github.com/go-logr/logr"
	"github.com/google/go-cmp/cmp"
	"github.com/rtos-tracing/ktrace/decode"
	"github.com/rtos-tracing/ktrace/encoder"
	"github.com/rtos-tracing/ktrace/pb"
	"github.com/rtos-tracing/ktrace/periph"
	"github.com/rtos-tracing/ktrace/track"
)

type kernel struct {
	cur     track.ThreadID
	running bool
	names   map[track.ThreadID]string
}

func (k *kernel) CurrentThread() (track.ThreadID, bool) { return k.cur, k.running }

func (k *kernel) ThreadName(id track.ThreadID) string { return k.names[id] }

func (k *kernel) switchTo(id track.ThreadID) {
	k.cur, k.running = id, true
}

type sink struct{ bytes.Buffer }

func (s *sink) Emit(p []byte) { s.Write(p) }

// discard is a sink that keeps nothing.
type discard struct{}

func (discard) Emit([]byte) {}

type fixture struct {
	t   *testing.T
	k   *kernel
	out *sink
	enc *encoder.Encoder
	tr  *Tracer
}

func newFixture(t *testing.T, opts *encoder.Options, board *periph.Board) *fixture {
	f := &fixture{t: t, k: &kernel{names: map[track.ThreadID]string{}}, out: &sink{}}
	if opts == nil {
		opts = &encoder.Options{}
	}
	var now uint64
	opts.Clock = func() uint64 { now += 100; return now }
	f.enc = encoder.New(f.out, opts)
	f.tr = New(f.enc, f.k, board, logr.Discard())
	return f
}

func (f *fixture) packets() []*pb.TracePacket {
	f.t.Helper()
	ps, err := decode.Read(bytes.NewReader(f.out.Bytes()))
	if err != nil {
		f.t.Fatal(err)
	}
	return ps
}

// summary is a one-line description of each packet, with interned ids
// resolved, for comparing hook output.
func (f *fixture) summary() []string {
	f.t.Helper()
	var out []string
	for _, p := range f.packets() {
		out = append(out, decode.Summary(p))
	}
	return out
}

func TestNotInitialized(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.k.switchTo(1)
	f.tr.ThreadCreate(1)
	f.tr.ThreadSwitchedIn()
	f.tr.ISREnter()
	f.tr.ISRExit()
	f.tr.Idle()
	f.tr.SemGiveEnter(7)
	f.tr.UARTTx("uart0", []byte("x"), 0, 1)
	if f.out.Len() != 0 {
		t.Errorf("hooks wrote %d bytes before Init", f.out.Len())
	}
}

func TestThreadLifecycle(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.tr.Init()
	f.tr.Init()
	const worker = track.ThreadID(0x20001000)
	f.k.names[worker] = "worker"
	f.tr.ThreadCreate(worker)
	f.k.switchTo(worker)
	f.tr.ThreadSwitchedIn()
	f.tr.ThreadSwitchedOut()

	want := []string{
		`descriptor uuid=1 name="Kernel" process(pid=1 name="Kernel") flags=1`,
		`descriptor uuid=3 parent=1 name="Trace"`,
		`descriptor uuid=536879104 parent=1 name="worker" thread(pid=1 tid=536875008 name="worker")`,
		`interned names=[1:"Running"] categories=[2:"thread"]`,
		`SLICE_BEGIN track=536879104 name_iid=1 categories=[2] flags=2`,
		`SLICE_END track=536879104 flags=2`,
	}
	if diff := cmp.Diff(want, f.summary()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestThreadCreateOnce(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.tr.Init()
	f.tr.ThreadCreate(5)
	f.tr.ThreadCreate(5)
	f.k.switchTo(5)
	f.tr.ThreadSwitchedIn()
	descs := 0
	for _, p := range f.packets() {
		if p.WhichData == pb.TracePacketTrackDescriptor && p.TrackDescriptor.HasThread {
			descs++
		}
	}
	if descs != 1 {
		t.Errorf("got %d thread descriptors, want 1", descs)
	}
}

func TestThreadRename(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.tr.Init()
	f.tr.ThreadCreate(5)
	f.k.names[5] = "renamed"
	f.tr.ThreadNameSet(5, 0)
	var names []string
	for _, p := range f.packets() {
		if p.TrackDescriptor.HasThread {
			names = append(names, p.TrackDescriptor.Thread.ThreadName)
		}
	}
	if diff := cmp.Diff([]string{"thread_0x5", "renamed"}, names); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestThreadOverflowRepeats(t *testing.T) {
	f := newFixture(t, &encoder.Options{MaxTrackedThreads: 1}, nil)
	f.tr.Init()
	f.k.switchTo(1)
	f.tr.ThreadSwitchedIn()
	f.k.switchTo(2)
	f.tr.ThreadSwitchedIn()
	f.tr.ThreadSwitchedIn()
	count := map[int32]int{}
	for _, p := range f.packets() {
		if p.TrackDescriptor.HasThread {
			count[p.TrackDescriptor.Thread.TID]++
		}
	}
	if count[1] != 1 || count[2] != 2 {
		t.Errorf("descriptor counts = %v, want 1:1 2:2", count)
	}
}

func TestNoCurrentThread(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.tr.Init()
	f.enc.Start()
	n := f.out.Len()
	f.tr.ThreadSwitchedIn()
	f.tr.ThreadSwitchedOut()
	f.tr.SemTakeEnter(1, 0)
	f.tr.MutexLockExit(1, 0, 0)
	if f.out.Len() != n {
		t.Error("hooks wrote packets with no current thread")
	}
}

func TestISR(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.tr.Init()
	f.tr.ISREnter()
	f.tr.ISRExit()
	f.tr.ISREnter()
	f.tr.ISRExit()
	want := []string{
		`descriptor uuid=1 name="Kernel" process(pid=1 name="Kernel") flags=1`,
		`descriptor uuid=3 parent=1 name="Trace"`,
		`descriptor uuid=2 parent=1 name="ISR"`,
		`interned names=[2:"ISR"] categories=[3:"isr"]`,
		`SLICE_BEGIN track=2 name_iid=2 categories=[3] flags=2`,
		`SLICE_END track=2 flags=2`,
		`SLICE_BEGIN track=2 name_iid=2 categories=[3] flags=2`,
		`SLICE_END track=2 flags=2`,
	}
	if diff := cmp.Diff(want, f.summary()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestISRDisabled(t *testing.T) {
	f := newFixture(t, &encoder.Options{Enabled: func() bool { return false }}, nil)
	f.tr.Init()
	f.tr.ISREnter()
	f.tr.ISRExit()
	f.tr.ISREnter()
	if f.out.Len() != 0 {
		t.Errorf("disabled trace wrote %d bytes", f.out.Len())
	}
	if f.tr.isrTrack {
		t.Error("ISR track marked written while tracing is disabled")
	}
}

func TestIdle(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.tr.Init()
	f.tr.Idle()
	f.tr.IdleExit()
	got := f.summary()
	want := []string{
		`interned names=[3:"Idle"] categories=[1:"kernel"]`,
		`INSTANT track=1 name_iid=3 categories=[1] flags=2`,
	}
	if diff := cmp.Diff(want, got[2:]); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSync(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.tr.Init()
	f.k.names[9] = "w"
	f.k.switchTo(9)
	f.tr.SemInit(1, 0)
	f.tr.SemGiveEnter(1)
	f.tr.SemGiveExit(1)
	f.tr.SemTakeEnter(1, 0)
	f.tr.SemTakeBlocking(1, 0)
	f.tr.SemTakeExit(1, 0, 0)
	f.tr.MutexInit(2, 0)
	f.tr.MutexLockEnter(2, 0)
	f.tr.MutexLockBlocking(2, 0)
	f.tr.MutexLockExit(2, 0, 0)
	f.tr.MutexUnlockEnter(2)
	f.tr.MutexUnlockExit(2, 0)

	var got []string
	for _, p := range f.packets() {
		if p.WhichData == pb.TracePacketTrackEvent {
			got = append(got, decode.Summary(p))
		}
	}
	// sync is category 4; event names are interned by Init in order.
	want := []string{
		`SLICE_BEGIN track=4105 name_iid=5 categories=[4] flags=2`,
		`SLICE_END track=4105 flags=2`,
		`SLICE_BEGIN track=4105 name_iid=4 categories=[4] flags=2`,
		`SLICE_END track=4105 flags=2`,
		`SLICE_BEGIN track=4105 name_iid=6 categories=[4] flags=2`,
		`SLICE_END track=4105 flags=2`,
		`SLICE_BEGIN track=4105 name_iid=7 categories=[4] flags=2`,
		`SLICE_END track=4105 flags=2`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func testBoard() *periph.Board {
	return &periph.Board{
		GPIO: []periph.GPIOPort{{Device: "gpio0", NGPIOs: 4}},
		UART: []periph.UARTInstance{{Device: "uart0"}},
	}
}

func TestGPIO(t *testing.T) {
	f := newFixture(t, &encoder.Options{GPIOTracing: true}, testBoard())
	f.tr.Init()
	f.enc.Start()
	n := len(f.packets())

	f.tr.GPIOPortGetRawEnter("gpio0")
	f.tr.GPIOPortSetBitsRawEnter("gpio0", 0b0110)
	f.tr.GPIOPortSetBitsRawExit("gpio0", 0)
	f.tr.GPIOPortToggleBitsEnter("gpio0", 0b0010)
	f.tr.GPIOPortToggleBitsExit("gpio0", 0)
	f.tr.GPIOPortClearBitsRawEnter("gpio0", 0b0100)
	f.tr.GPIOPortSetMaskedRawEnter("gpio0", 0b1000, 0b1000)

	base := track.GPIOBase(0)
	var got []string
	for _, p := range f.packets()[n:] {
		got = append(got, decode.Summary(p))
	}
	want := []string{
		decode.Summary(counter(base+1, 1)),
		decode.Summary(counter(base+2, 1)),
		decode.Summary(counter(base+1, 0)),
		decode.Summary(counter(base+2, 0)),
		decode.Summary(counter(base+3, 1)),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func counter(uuid uint64, v int64) *pb.TracePacket {
	return &pb.TracePacket{
		HasSequenceFlags: true,
		SequenceFlags:    pb.SeqNeedsIncrementalState,
		WhichData:        pb.TracePacketTrackEvent,
		TrackEvent: pb.TrackEvent{
			HasType: true, Type: pb.TypeCounter,
			HasTrackUUID: true, TrackUUID: uuid,
			WhichCounterValue: pb.TrackEventCounterValue, CounterValue: v,
		},
	}
}

func TestStartTopology(t *testing.T) {
	f := newFixture(t, &encoder.Options{GPIOTracing: true, Emulation: true}, testBoard())
	f.tr.Init()
	f.enc.Start()
	var names []string
	for _, p := range f.packets() {
		if p.WhichData == pb.TracePacketTrackDescriptor {
			names = append(names, p.TrackDescriptor.Name)
		}
	}
	want := []string{
		"Kernel", "Trace",
		"gpio0", "gpio0.00", "gpio0.01", "gpio0.02", "gpio0.03",
		"Emulated", "UART", "uart0", "TX", "RX",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestUART(t *testing.T) {
	f := newFixture(t, &encoder.Options{Emulation: true}, testBoard())
	f.tr.Init()
	f.enc.Start()
	n := len(f.packets())
	f.tr.UARTTx("uart0", []byte("hi\n"), 5000, 300)
	f.tr.UARTRx("uart0", []byte{0x01, 'k'}, 6000, 100)
	f.tr.UARTTx("uart9", []byte("lost"), 0, 1)

	ps := f.packets()[n:]
	if len(ps) != 4 {
		t.Fatalf("got %d packets, want 4", len(ps))
	}
	_, tx, rx := track.UART(0)
	for i, want := range []struct {
		uuid uint64
		typ  pb.EventType
		ts   uint64
		name string
	}{
		{tx, pb.TypeSliceBegin, 5000, "hi."},
		{tx, pb.TypeSliceEnd, 5300, ""},
		{rx, pb.TypeSliceBegin, 6000, ".k"},
		{rx, pb.TypeSliceEnd, 6100, ""},
	} {
		ev := ps[i].TrackEvent
		if ev.TrackUUID != want.uuid || ev.Type != want.typ || ps[i].Timestamp != want.ts || ev.Name != want.name {
			t.Errorf("packet %d: track %#x %v at %d name %q; want %#x %v at %d name %q",
				i, ev.TrackUUID, ev.Type, ps[i].Timestamp, ev.Name, want.uuid, want.typ, want.ts, want.name)
		}
	}
}

func TestUARTAllocs(t *testing.T) {
	enc := encoder.New(discard{}, &encoder.Options{Emulation: true})
	tr := New(enc, &kernel{names: map[track.ThreadID]string{}}, testBoard(), logr.Discard())
	tr.Init()
	data := []byte("hello\r\n")
	tr.UARTTx("uart0", data, 10, 20)

	allocs := testing.AllocsPerRun(100, func() {
		tr.UARTTx("uart0", data, 10, 20)
		tr.UARTRx("uart0", data, 40, 5)
	})
	if allocs != 0 {
		t.Errorf("UART hooks allocated %v times per run", allocs)
	}
}

func TestPrintable(t *testing.T) {
	var buf [4]byte
	if got := string(printable(buf[:0], []byte("ab\x00cdef"))); got != "ab.c" {
		t.Errorf("printable = %q, want %q", got, "ab.c")
	}
}
