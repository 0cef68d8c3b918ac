// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rtos-tracing/ktrace/encoder"
	"github.com/rtos-tracing/ktrace/pb"
	"github.com/rtos-tracing/ktrace/track"
	"github.com/rtos-tracing/ktrace/wire"
)

type sink struct{ bytes.Buffer }

func (s *sink) Emit(p []byte) { s.Write(p) }

// record runs fn against a fresh encoder whose clock advances 100ns per
// reading and returns the framed output.
func record(t *testing.T, fn func(e *encoder.Encoder)) []byte {
	t.Helper()
	var out sink
	var now uint64
	e := encoder.New(&out, &encoder.Options{
		ProcessName: "test",
		Clock:       func() uint64 { now += 100; return now },
	})
	e.Init()
	fn(e)
	return out.Bytes()
}

func TestBuild(t *testing.T) {
	data := record(t, func(e *encoder.Encoder) {
		run := e.InternEventName("Running")
		lock := e.InternEventName("mutex_lock")
		th := e.InternCategory(encoder.CategoryThread)
		sync := e.InternCategory(encoder.CategorySync)
		e.EmitThreadDescriptor(1, "main")
		e.EmitSliceBegin(track.Thread(1), run, th)
		e.EmitSliceBegin(track.Thread(1), lock, sync)
		e.EmitSliceEnd(track.Thread(1))
		e.EmitInstant(track.Process, run, 0)
		e.EmitCounter(track.GPIOPin(track.GPIOBase(0), 0), 1)
		e.EmitSliceEnd(track.Thread(1))
		e.EmitSliceEnd(track.Thread(1))
		e.EmitSliceBeginString(track.ISR, "open")
	})
	ps, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	tl := Build(ps)

	type slice struct {
		Name, Category string
		Depth          int
	}
	var got []slice
	for _, s := range tl.Slices {
		if s.End <= s.Start {
			t.Errorf("slice %q ends at %d before it starts at %d", s.Name, s.End, s.Start)
		}
		got = append(got, slice{s.Name, s.Category, s.Depth})
	}
	want := []slice{{"Running", "thread", 0}, {"mutex_lock", "sync", 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("slices (-want +got):\n%s", diff)
	}
	if tl.UnmatchedEnds != 1 {
		t.Errorf("UnmatchedEnds = %d, want 1", tl.UnmatchedEnds)
	}
	if len(tl.Open) != 1 || tl.Open[0].Name != "open" || tl.Open[0].Track != track.ISR {
		t.Errorf("Open = %+v", tl.Open)
	}
	if len(tl.Instants) != 1 || tl.Instants[0].Name != "Running" || tl.Instants[0].Category != "" {
		t.Errorf("Instants = %+v", tl.Instants)
	}
	if len(tl.Samples) != 1 || tl.Samples[0].Value != 1 {
		t.Errorf("Samples = %+v", tl.Samples)
	}
	if got := tl.Path(track.Thread(1)); got != "test/main" {
		t.Errorf("Path(thread) = %q, want test/main", got)
	}
	if got := tl.Path(track.Trace); got != "test/Trace" {
		t.Errorf("Path(Trace) = %q, want test/Trace", got)
	}
	if got := tl.Path(99); got != "99" {
		t.Errorf("Path(99) = %q, want 99", got)
	}
	if th := tl.Tracks[track.Thread(1)]; th.Kind != ThreadTrack || th.TID != 1 {
		t.Errorf("thread track = %+v", th)
	}
	var kids []uint64
	for _, c := range tl.Children(track.Process) {
		kids = append(kids, c.UUID)
	}
	if diff := cmp.Diff([]uint64{track.Trace, track.Thread(1)}, kids); diff != "" {
		t.Errorf("Children (-want +got):\n%s", diff)
	}
}

func TestBuildUnresolved(t *testing.T) {
	ps := []*pb.TracePacket{{
		WhichData: pb.TracePacketTrackEvent,
		TrackEvent: pb.TrackEvent{
			HasType: true, Type: pb.TypeInstant,
			WhichNameField: pb.TrackEventNameIID, NameIID: 7,
		},
	}}
	tl := Build(ps)
	if tl.Instants[0].Name != "iid:7" {
		t.Errorf("name = %q, want iid:7", tl.Instants[0].Name)
	}
}

func TestBuildClearsInterned(t *testing.T) {
	interned := &pb.TracePacket{
		WhichData: pb.TracePacketInternedData,
		InternedData: pb.InternedData{
			EventNames: []pb.InternedString{{HasIID: true, IID: 1, HasName: true, Name: "old"}},
		},
	}
	reset := &pb.TracePacket{
		HasSequenceFlags: true,
		SequenceFlags:    pb.SeqIncrementalStateCleared,
		WhichData:        pb.TracePacketTrackDescriptor,
		TrackDescriptor:  pb.TrackDescriptor{HasUUID: true, UUID: 1},
	}
	instant := &pb.TracePacket{
		WhichData: pb.TracePacketTrackEvent,
		TrackEvent: pb.TrackEvent{
			HasType: true, Type: pb.TypeInstant,
			WhichNameField: pb.TrackEventNameIID, NameIID: 1,
		},
	}
	tl := Build([]*pb.TracePacket{interned, instant, reset, instant})
	if tl.Instants[0].Name != "old" || tl.Instants[1].Name != "iid:1" {
		t.Errorf("names = %q, %q; want old, iid:1", tl.Instants[0].Name, tl.Instants[1].Name)
	}
}

func TestReadErrors(t *testing.T) {
	data := record(t, func(e *encoder.Encoder) { e.Start() })
	if _, err := Read(bytes.NewReader(data[:len(data)-1])); err == nil {
		t.Error("truncated trace decoded without error")
	}
	if _, err := Read(strings.NewReader("\x0b\x00")); !errors.Is(err, wire.ErrBadTag) {
		t.Errorf("err = %v, want ErrBadTag", err)
	}
	// A frame whose payload is not a valid message.
	if _, err := Read(strings.NewReader("\x0a\x01\x08")); err == nil {
		t.Error("bad payload decoded without error")
	}
}

func TestPrint(t *testing.T) {
	ps := []*pb.TracePacket{
		{
			HasTimestamp: true, Timestamp: 1500000000,
			HasSequenceID: true, SequenceID: 1,
			HasSequenceFlags: true, SequenceFlags: pb.SeqNeedsIncrementalState,
			WhichData: pb.TracePacketTrackEvent,
			TrackEvent: pb.TrackEvent{
				HasType: true, Type: pb.TypeSliceBegin,
				HasTrackUUID: true, TrackUUID: 2,
				CategoryIIDs:   []uint64{3},
				WhichNameField: pb.TrackEventNameIID, NameIID: 2,
			},
		},
		{
			WhichData: pb.TracePacketInternedData,
			InternedData: pb.InternedData{
				EventNames: []pb.InternedString{{HasIID: true, IID: 2, HasName: true, Name: "ISR"}},
			},
		},
	}
	var b strings.Builder
	if err := Print(&b, ps); err != nil {
		t.Fatal(err)
	}
	want := `
=== Packet 0 ===
  [raw size: 20 bytes]
  timestamp: 1500000000 ns (1.500000 s)
  sequence_id: 1
  sequence_flags: 2 (NEEDS_INCREMENTAL_STATE)
  track_event:
    type: SLICE_BEGIN
    track_uuid: 2
    name_iid: 2
    category_iids: [3]

=== Packet 1 ===
  [raw size: 11 bytes]
  interned_data:
    event_name: iid=2, name='ISR'
`
	if diff := cmp.Diff(want, b.String()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
