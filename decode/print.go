// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

import (
	"fmt"
	"io"
	"strings"

	"github.com/rtos-tracing/ktrace/pb"
)

// Print writes a readable dump of ps to w, one block per packet.
func Print(w io.Writer, ps []*pb.TracePacket) error {
	pw := &printer{w: w}
	for i, p := range ps {
		pw.packet(i, p)
	}
	return pw.err
}

type printer struct {
	w   io.Writer
	err error
}

func (pw *printer) printf(format string, args ...interface{}) {
	if pw.err != nil {
		return
	}
	_, pw.err = fmt.Fprintf(pw.w, format, args...)
}

func (pw *printer) packet(i int, p *pb.TracePacket) {
	pw.printf("\n=== Packet %d ===\n", i)
	pw.printf("  [raw size: %d bytes]\n", p.Size())
	if p.HasTimestamp {
		pw.printf("  timestamp: %d ns (%.6f s)\n", p.Timestamp, float64(p.Timestamp)/1e9)
	}
	if p.HasSequenceID {
		pw.printf("  sequence_id: %d\n", p.SequenceID)
	}
	if p.HasSequenceFlags {
		var flags []string
		if p.SequenceFlags&pb.SeqIncrementalStateCleared != 0 {
			flags = append(flags, "INCREMENTAL_STATE_CLEARED")
		}
		if p.SequenceFlags&pb.SeqNeedsIncrementalState != 0 {
			flags = append(flags, "NEEDS_INCREMENTAL_STATE")
		}
		pw.printf("  sequence_flags: %d (%s)\n", p.SequenceFlags, strings.Join(flags, ", "))
	}
	switch p.WhichData {
	case pb.TracePacketTrackDescriptor:
		d := &p.TrackDescriptor
		pw.printf("  track_descriptor:\n")
		pw.printf("    uuid: %d\n", d.UUID)
		if d.HasParentUUID {
			pw.printf("    parent_uuid: %d\n", d.ParentUUID)
		}
		if d.Name != "" {
			pw.printf("    name: '%s'\n", d.Name)
		}
		if d.HasProcess {
			pw.printf("    process: pid=%d, name='%s'\n", d.Process.PID, d.Process.ProcessName)
		}
		if d.HasThread {
			pw.printf("    thread: pid=%d, tid=%d, name='%s'\n", d.Thread.PID, d.Thread.TID, d.Thread.ThreadName)
		}
		if d.HasCounter {
			pw.printf("    counter: unit=%d\n", d.Counter.Unit)
		}
	case pb.TracePacketTrackEvent:
		ev := &p.TrackEvent
		pw.printf("  track_event:\n")
		pw.printf("    type: %v\n", ev.Type)
		if ev.HasTrackUUID {
			pw.printf("    track_uuid: %d\n", ev.TrackUUID)
		}
		switch ev.WhichNameField {
		case pb.TrackEventNameIID:
			pw.printf("    name_iid: %d\n", ev.NameIID)
		case pb.TrackEventName:
			pw.printf("    name: '%s'\n", ev.Name)
		}
		if len(ev.CategoryIIDs) > 0 {
			pw.printf("    category_iids: %v\n", ev.CategoryIIDs)
		}
		if ev.WhichCounterValue == pb.TrackEventCounterValue {
			pw.printf("    counter_value: %d\n", ev.CounterValue)
		}
	case pb.TracePacketInternedData:
		pw.printf("  interned_data:\n")
		for _, s := range p.InternedData.EventNames {
			pw.printf("    event_name: iid=%d, name='%s'\n", s.IID, s.Name)
		}
		for _, s := range p.InternedData.EventCategories {
			pw.printf("    event_category: iid=%d, name='%s'\n", s.IID, s.Name)
		}
	}
}
