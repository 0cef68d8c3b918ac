// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package encoder turns kernel trace events into framed Perfetto packets.
//
// An Encoder owns one scratch buffer, the interning tables and the thread
// descriptor set. Every packet is built into the scratch buffer, framed and
// handed to the sink before the call returns, so packets reach the sink in
// call order. Hot paths (slices, instants and counters) do not allocate.
//
// An Encoder has two one-way latches. Init clears the tables and interns
// the well known categories. Start writes the root track descriptors; it
// is attempted by every emit method and asks the Enabled predicate once.
// If the predicate refuses, every emit method does nothing.
//
// An Encoder is not safe for concurrent use. The kernel's own serialization
// of scheduler and interrupt hooks is expected to keep calls from
// overlapping; callers without such a guarantee must hold a lock.
package encoder

import (
	"strconv"
	"unicode/utf8"

	"github.com/go-logr/logr"
	"github.com/rtos-tracing/ktrace/intern"
	"github.com/rtos-tracing/ktrace/pb"
	"github.com/rtos-tracing/ktrace/track"
	"github.com/rtos-tracing/ktrace/wire"
)

// Well known categories, interned by Init in this order.
const (
	CategoryKernel = "kernel"
	CategoryThread = "thread"
	CategoryISR    = "isr"
	CategorySync   = "sync"
	CategoryGPIO   = "gpio"
)

// MaxNameLen bounds the track and inline event names written to the
// trace. Longer names are truncated.
const MaxNameLen = 64

// Topology emits the descriptors of a group of peripheral tracks.
type Topology interface {
	InitTracks()
}

// Encoder builds and emits trace packets. Create one with New.
type Encoder struct {
	opts   Options
	log    logr.Logger
	framer *wire.Framer
	buf    []byte

	pkt      pb.TracePacket
	catIIDs  [1]uint64
	iname    [1]pb.InternedString
	icat     [1]pb.InternedString
	names    *intern.Table
	cats     *intern.Table
	threads  *intern.ThreadSet
	gpio     Topology
	uart     Topology
	stats    counters
	warnDrop bool
	warnThr  bool

	initialized bool
	started     bool
	refused     bool
}

// New returns an Encoder writing to sink. A nil opts selects the defaults.
func New(sink wire.Sink, opts *Options) *Encoder {
	o := opts.withDefaults()
	return &Encoder{
		opts:    o,
		log:     o.Logger.WithName("encoder"),
		framer:  wire.NewFramer(sink),
		buf:     make([]byte, o.BufferSize),
		names:   intern.NewTable(o.MaxInternedStrings),
		cats:    intern.NewTable(o.MaxInternedStrings),
		threads: intern.NewThreadSet(o.MaxTrackedThreads),
	}
}

// SetTopology attaches the GPIO and UART track groups that Start
// initializes. Either may be nil.
func (e *Encoder) SetTopology(gpio, uart Topology) {
	e.gpio, e.uart = gpio, uart
}

// Init resets the encoder state and interns the well known categories.
// Only the first call has any effect.
func (e *Encoder) Init() {
	if e.initialized {
		return
	}
	e.names.Reset()
	e.cats.Reset()
	e.threads.Reset()

	e.InternCategory(CategoryKernel)
	e.InternCategory(CategoryThread)
	e.InternCategory(CategoryISR)
	e.InternCategory(CategorySync)
	if e.opts.GPIOTracing {
		e.InternCategory(CategoryGPIO)
	}
	e.initialized = true
	e.log.V(1).Info("initialized", "categories", e.cats.Len())
}

// Initialized reports whether Init has run.
func (e *Encoder) Initialized() bool { return e.initialized }

// Start starts the trace if it has not started yet and the Enabled
// predicate allows it. The predicate is consulted once; if it refuses,
// the encoder stays stopped for the rest of the run. Starting writes the
// process descriptor, the Trace track and the attached peripheral
// topology. Start reports whether the trace is running.
func (e *Encoder) Start() bool {
	if e.started {
		return true
	}
	if e.refused {
		return false
	}
	if !e.opts.Enabled() {
		e.refused = true
		e.log.V(1).Info("tracing disabled")
		return false
	}
	e.started = true
	e.emitProcessDescriptor()
	e.EmitTrackDescriptor(track.Trace, track.Process, "Trace")
	if e.opts.GPIOTracing && e.gpio != nil {
		e.gpio.InitTracks()
	}
	if e.opts.Emulation {
		e.EmitTrackDescriptor(track.Emulated, track.Process, "Emulated")
		e.EmitTrackDescriptor(track.UARTGroup, track.Emulated, "UART")
		if e.uart != nil {
			e.uart.InitTracks()
		}
	}
	e.log.Info("trace started", "process", e.opts.ProcessName, "sequence", e.opts.SequenceID)
	return true
}

// Started reports whether the trace is running.
func (e *Encoder) Started() bool { return e.started }

// Now returns the encoder clock.
func (e *Encoder) Now() uint64 { return e.opts.Clock() }

// Stats returns a snapshot of the encoder counters. It may be called from
// any goroutine.
func (e *Encoder) Stats() Stats { return e.stats.snapshot() }

// InternEventName returns the id of an event name, or 0 if it is empty or
// the table is full.
func (e *Encoder) InternEventName(name string) uint64 {
	return e.intern(e.names, name)
}

// InternCategory returns the id of a category, or 0 if it is empty or the
// table is full.
func (e *Encoder) InternCategory(name string) uint64 {
	return e.intern(e.cats, name)
}

func (e *Encoder) intern(t *intern.Table, name string) uint64 {
	id := t.Intern(name)
	if id == 0 && name != "" {
		e.stats.internMisses.Inc()
	}
	return id
}

// ThreadDescriptorEmitted reports whether a descriptor for thread id has
// been written and remembered.
func (e *Encoder) ThreadDescriptorEmitted(id track.ThreadID) bool {
	return e.threads.Emitted(uint64(id))
}

func (e *Encoder) emitProcessDescriptor() {
	p := e.packet()
	p.HasSequenceFlags, p.SequenceFlags = true, pb.SeqIncrementalStateCleared
	p.WhichData = pb.TracePacketTrackDescriptor
	d := &p.TrackDescriptor
	d.HasUUID, d.UUID = true, track.Process
	d.HasName, d.Name = true, intern.Truncate(e.opts.ProcessName, MaxNameLen)
	d.HasProcess = true
	d.Process = pb.ProcessDescriptor{
		HasPID: true, PID: 1,
		HasProcessName: true, ProcessName: d.Name,
	}
	e.emit()
}

// EmitThreadDescriptor writes the track descriptor of thread id and
// remembers that it has been written. An empty name is replaced by one
// derived from the identity.
//
// If the thread set is full the thread is not remembered, and callers
// checking ThreadDescriptorEmitted will write its descriptor again.
func (e *Encoder) EmitThreadDescriptor(id track.ThreadID, name string) {
	if !e.Start() {
		return
	}
	if name == "" {
		name = "thread_0x" + strconv.FormatUint(uint64(id), 16)
	}
	name = intern.Truncate(name, MaxNameLen)

	p := e.packet()
	p.WhichData = pb.TracePacketTrackDescriptor
	d := &p.TrackDescriptor
	d.HasUUID, d.UUID = true, track.Thread(id)
	d.HasParentUUID, d.ParentUUID = true, track.Process
	d.HasName, d.Name = true, name
	d.HasThread = true
	d.Thread = pb.ThreadDescriptor{
		HasPID: true, PID: 1,
		HasTID: true, TID: int32(id),
		HasThreadName: true, ThreadName: name,
	}
	if !e.emit() {
		return
	}
	if !e.threads.Mark(uint64(id)) {
		e.stats.threadOverflows.Inc()
		if !e.warnThr {
			e.warnThr = true
			e.log.Info("thread table full, descriptors will repeat", "capacity", e.opts.MaxTrackedThreads)
		}
	}
}

// EmitTrackDescriptor writes a plain track descriptor. A zero parent or an
// empty name is left out.
func (e *Encoder) EmitTrackDescriptor(uuid, parent uint64, name string) {
	if !e.Start() {
		return
	}
	e.trackDescriptor(uuid, parent, name)
	e.emit()
}

// EmitCounterTrackDescriptor writes the descriptor of a counter track
// measured in plain counts.
func (e *Encoder) EmitCounterTrackDescriptor(uuid, parent uint64, name string) {
	if !e.Start() {
		return
	}
	d := e.trackDescriptor(uuid, parent, name)
	d.HasParentUUID = true
	d.HasCounter = true
	d.Counter = pb.CounterDescriptor{HasUnit: true, Unit: pb.UnitCount}
	e.emit()
}

func (e *Encoder) trackDescriptor(uuid, parent uint64, name string) *pb.TrackDescriptor {
	p := e.packet()
	p.WhichData = pb.TracePacketTrackDescriptor
	d := &p.TrackDescriptor
	d.HasUUID, d.UUID = true, uuid
	if parent != 0 {
		d.HasParentUUID, d.ParentUUID = true, parent
	}
	if name != "" {
		d.HasName, d.Name = true, intern.Truncate(name, MaxNameLen)
	}
	return d
}

// EmitSliceBegin opens a slice named by an interned event name. Ids of 0
// are left out. If either id has not been defined in the trace yet, an
// interned data packet defining it is written first.
func (e *Encoder) EmitSliceBegin(uuid, nameIID, categoryIID uint64) {
	if !e.Start() {
		return
	}
	e.emitInterned(nameIID, categoryIID)
	ev := e.trackEvent(e.opts.Clock(), pb.TypeSliceBegin, uuid)
	e.setName(ev, nameIID, categoryIID)
	e.emit()
}

// EmitSliceBeginString opens a slice with an inline name.
func (e *Encoder) EmitSliceBeginString(uuid uint64, name string) {
	if !e.Start() {
		return
	}
	ev := e.trackEvent(e.opts.Clock(), pb.TypeSliceBegin, uuid)
	setInlineName(ev, name)
	e.emit()
}

// EmitSliceEnd closes the innermost open slice on a track.
func (e *Encoder) EmitSliceEnd(uuid uint64) {
	if !e.Start() {
		return
	}
	e.trackEvent(e.opts.Clock(), pb.TypeSliceEnd, uuid)
	e.emit()
}

// EmitSliceWithDuration writes a slice whose start and duration are already
// known: a begin at start and an end at start+dur.
func (e *Encoder) EmitSliceWithDuration(uuid uint64, name string, start, dur uint64) {
	if !e.Start() {
		return
	}
	ev := e.trackEvent(start, pb.TypeSliceBegin, uuid)
	setInlineName(ev, name)
	e.emit()
	e.trackEvent(start+dur, pb.TypeSliceEnd, uuid)
	e.emit()
}

// EmitSliceWithDurationBytes is EmitSliceWithDuration with the name given
// as bytes. name is only read during the call.
func (e *Encoder) EmitSliceWithDurationBytes(uuid uint64, name []byte, start, dur uint64) {
	if !e.Start() {
		return
	}
	ev := e.trackEvent(start, pb.TypeSliceBegin, uuid)
	if len(name) > 0 {
		ev.WhichNameField, ev.NameBytes = pb.TrackEventName, truncateBytes(name, MaxNameLen)
	}
	e.emit()
	e.trackEvent(start+dur, pb.TypeSliceEnd, uuid)
	e.emit()
}

// EmitInstant writes a zero-length event named by an interned event name.
func (e *Encoder) EmitInstant(uuid, nameIID, categoryIID uint64) {
	if !e.Start() {
		return
	}
	e.emitInterned(nameIID, categoryIID)
	ev := e.trackEvent(e.opts.Clock(), pb.TypeInstant, uuid)
	e.setName(ev, nameIID, categoryIID)
	e.emit()
}

// EmitCounter writes a sample on a counter track.
func (e *Encoder) EmitCounter(uuid uint64, value int64) {
	if !e.Start() {
		return
	}
	ev := e.trackEvent(e.opts.Clock(), pb.TypeCounter, uuid)
	ev.WhichCounterValue, ev.CounterValue = pb.TrackEventCounterValue, value
	e.emit()
}

// emitInterned writes the definitions of the given ids that are not in the
// trace yet, at most one of each kind.
func (e *Encoder) emitInterned(nameIID, categoryIID uint64) {
	needName := !e.names.Emitted(nameIID)
	needCat := !e.cats.Emitted(categoryIID)
	if !needName && !needCat {
		return
	}
	p := e.packet()
	p.WhichData = pb.TracePacketInternedData
	if needName {
		name, _ := e.names.Lookup(nameIID)
		e.iname[0] = pb.InternedString{HasIID: true, IID: nameIID, HasName: true, Name: name}
		p.InternedData.EventNames = e.iname[:]
	}
	if needCat {
		name, _ := e.cats.Lookup(categoryIID)
		e.icat[0] = pb.InternedString{HasIID: true, IID: categoryIID, HasName: true, Name: name}
		p.InternedData.EventCategories = e.icat[:]
	}
	if !e.emit() {
		return
	}
	if needName {
		e.names.MarkEmitted(nameIID)
	}
	if needCat {
		e.cats.MarkEmitted(categoryIID)
	}
}

// packet resets the scratch packet to the fields every packet carries.
func (e *Encoder) packet() *pb.TracePacket {
	e.pkt = pb.TracePacket{
		HasTimestamp:  true,
		Timestamp:     e.opts.Clock(),
		HasSequenceID: true,
		SequenceID:    e.opts.SequenceID,
	}
	return &e.pkt
}

func (e *Encoder) trackEvent(ts uint64, typ pb.EventType, uuid uint64) *pb.TrackEvent {
	p := &e.pkt
	*p = pb.TracePacket{
		HasTimestamp:     true,
		Timestamp:        ts,
		HasSequenceID:    true,
		SequenceID:       e.opts.SequenceID,
		HasSequenceFlags: true,
		SequenceFlags:    pb.SeqNeedsIncrementalState,
		WhichData:        pb.TracePacketTrackEvent,
	}
	ev := &p.TrackEvent
	ev.HasType, ev.Type = true, typ
	ev.HasTrackUUID, ev.TrackUUID = true, uuid
	return ev
}

func (e *Encoder) setName(ev *pb.TrackEvent, nameIID, categoryIID uint64) {
	if categoryIID != 0 {
		e.catIIDs[0] = categoryIID
		ev.CategoryIIDs = e.catIIDs[:]
	}
	if nameIID != 0 {
		ev.WhichNameField, ev.NameIID = pb.TrackEventNameIID, nameIID
	}
}

func setInlineName(ev *pb.TrackEvent, name string) {
	if name != "" {
		ev.WhichNameField, ev.Name = pb.TrackEventName, intern.Truncate(name, MaxNameLen)
	}
}

// truncateBytes cuts b to at most n bytes without splitting a UTF-8
// sequence.
func truncateBytes(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	for n > 0 && !utf8.RuneStart(b[n]) {
		n--
	}
	return b[:n]
}

// emit encodes the scratch packet and hands it to the sink. A packet that
// does not fit the buffer is dropped whole.
func (e *Encoder) emit() bool {
	n, err := e.pkt.MarshalTo(e.buf)
	if err != nil {
		e.stats.dropped.Inc()
		if !e.warnDrop {
			e.warnDrop = true
			e.log.Info("dropping packet", "err", err.Error(), "size", e.pkt.Size(), "buffer", len(e.buf))
		}
		return false
	}
	e.framer.Emit(e.buf[:n])
	e.stats.packets.Inc()
	e.stats.bytes.Add(uint64(wire.FrameLen(n)))
	return true
}
