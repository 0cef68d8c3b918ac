// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package decode reads framed kernel traces back on the host.
//
// Read splits a stream into packets, Build reconstructs the tracks, slices
// and counter samples they describe, and Print and Summary render packets
// as text for inspection and tests.
package decode

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rtos-tracing/ktrace/pb"
	"github.com/rtos-tracing/ktrace/wire"
	"golang.org/x/xerrors"
)

// Read decodes every packet of a framed trace.
func Read(r io.Reader) ([]*pb.TracePacket, error) {
	var ps []*pb.TracePacket
	err := Scan(r, func(p *pb.TracePacket) error {
		ps = append(ps, p)
		return nil
	})
	return ps, err
}

// Scan calls fn for each packet of a framed trace, stopping at the first
// error. Each packet passed to fn is newly allocated.
func Scan(r io.Reader, fn func(*pb.TracePacket) error) error {
	rd := wire.NewReader(r)
	for i := 0; ; i++ {
		off := rd.Offset()
		b, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return xerrors.Errorf("packet %d: %w", i, err)
		}
		p := new(pb.TracePacket)
		if err := p.Unmarshal(b); err != nil {
			return xerrors.Errorf("packet %d at offset %d: %w", i, off, err)
		}
		if err := fn(p); err != nil {
			return err
		}
	}
}

// Summary describes p on one line. Timestamps and sequence ids are left
// out so that summaries of equivalent packets compare equal.
func Summary(p *pb.TracePacket) string {
	var b strings.Builder
	switch p.WhichData {
	case pb.TracePacketTrackDescriptor:
		d := &p.TrackDescriptor
		fmt.Fprintf(&b, "descriptor uuid=%d", d.UUID)
		if d.HasParentUUID {
			fmt.Fprintf(&b, " parent=%d", d.ParentUUID)
		}
		if d.HasName {
			fmt.Fprintf(&b, " name=%q", d.Name)
		}
		if d.HasProcess {
			fmt.Fprintf(&b, " process(pid=%d name=%q)", d.Process.PID, d.Process.ProcessName)
		}
		if d.HasThread {
			fmt.Fprintf(&b, " thread(pid=%d tid=%d name=%q)", d.Thread.PID, d.Thread.TID, d.Thread.ThreadName)
		}
		if d.HasCounter {
			fmt.Fprintf(&b, " counter(unit=%d)", d.Counter.Unit)
		}
	case pb.TracePacketInternedData:
		b.WriteString("interned")
		writeInterned(&b, "names", p.InternedData.EventNames)
		writeInterned(&b, "categories", p.InternedData.EventCategories)
	case pb.TracePacketTrackEvent:
		ev := &p.TrackEvent
		fmt.Fprintf(&b, "%v track=%d", ev.Type, ev.TrackUUID)
		switch ev.WhichNameField {
		case pb.TrackEventNameIID:
			fmt.Fprintf(&b, " name_iid=%d", ev.NameIID)
		case pb.TrackEventName:
			fmt.Fprintf(&b, " name=%q", ev.Name)
		}
		if len(ev.CategoryIIDs) > 0 {
			fmt.Fprintf(&b, " categories=%v", ev.CategoryIIDs)
		}
		if ev.WhichCounterValue == pb.TrackEventCounterValue {
			fmt.Fprintf(&b, " value=%d", ev.CounterValue)
		}
	default:
		b.WriteString("empty")
	}
	if p.HasSequenceFlags {
		fmt.Fprintf(&b, " flags=%d", p.SequenceFlags)
	}
	return b.String()
}

func writeInterned(b *strings.Builder, label string, ss []pb.InternedString) {
	if len(ss) == 0 {
		return
	}
	fmt.Fprintf(b, " %s=[", label)
	for i, s := range ss {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(b, "%d:%q", s.IID, s.Name)
	}
	b.WriteByte(']')
}
