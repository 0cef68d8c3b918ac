// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pb

import (
	"golang.org/x/xerrors"
	"google.golang.org/protobuf/encoding/protowire"
)

// Unmarshal decodes a TracePacket from b, replacing the contents of p.
// Unknown fields are skipped. Strings are copied out of b.
func (p *TracePacket) Unmarshal(b []byte) error {
	*p = TracePacket{}
	return parse(b, func(f field) error {
		switch {
		case f.is(TracePacketTimestamp, protowire.VarintType):
			p.HasTimestamp, p.Timestamp = true, f.v
		case f.is(TracePacketSequenceID, protowire.VarintType):
			p.HasSequenceID, p.SequenceID = true, uint32(f.v)
		case f.is(TracePacketSequenceFlags, protowire.VarintType):
			p.HasSequenceFlags, p.SequenceFlags = true, SequenceFlags(f.v)
		case f.is(TracePacketTrackEvent, protowire.BytesType):
			p.WhichData = f.num
			return p.TrackEvent.unmarshal(f.b)
		case f.is(TracePacketInternedData, protowire.BytesType):
			p.WhichData = f.num
			return p.InternedData.unmarshal(f.b)
		case f.is(TracePacketTrackDescriptor, protowire.BytesType):
			p.WhichData = f.num
			return p.TrackDescriptor.unmarshal(f.b)
		}
		return nil
	})
}

func (d *TrackDescriptor) unmarshal(b []byte) error {
	return parse(b, func(f field) error {
		switch {
		case f.is(TrackDescriptorUUID, protowire.VarintType):
			d.HasUUID, d.UUID = true, f.v
		case f.is(TrackDescriptorParentUUID, protowire.VarintType):
			d.HasParentUUID, d.ParentUUID = true, f.v
		case f.is(TrackDescriptorName, protowire.BytesType):
			d.HasName, d.Name = true, string(f.b)
		case f.is(TrackDescriptorProcess, protowire.BytesType):
			d.HasProcess = true
			return d.Process.unmarshal(f.b)
		case f.is(TrackDescriptorThread, protowire.BytesType):
			d.HasThread = true
			return d.Thread.unmarshal(f.b)
		case f.is(TrackDescriptorCounter, protowire.BytesType):
			d.HasCounter = true
			return d.Counter.unmarshal(f.b)
		}
		return nil
	})
}

func (d *ProcessDescriptor) unmarshal(b []byte) error {
	return parse(b, func(f field) error {
		switch {
		case f.is(ProcessDescriptorPID, protowire.VarintType):
			d.HasPID, d.PID = true, int32(f.v)
		case f.is(ProcessDescriptorName, protowire.BytesType):
			d.HasProcessName, d.ProcessName = true, string(f.b)
		}
		return nil
	})
}

func (d *ThreadDescriptor) unmarshal(b []byte) error {
	return parse(b, func(f field) error {
		switch {
		case f.is(ThreadDescriptorPID, protowire.VarintType):
			d.HasPID, d.PID = true, int32(f.v)
		case f.is(ThreadDescriptorTID, protowire.VarintType):
			d.HasTID, d.TID = true, int32(f.v)
		case f.is(ThreadDescriptorName, protowire.BytesType):
			d.HasThreadName, d.ThreadName = true, string(f.b)
		}
		return nil
	})
}

func (d *CounterDescriptor) unmarshal(b []byte) error {
	return parse(b, func(f field) error {
		if f.is(CounterDescriptorUnit, protowire.VarintType) {
			d.HasUnit, d.Unit = true, CounterUnit(int32(f.v))
		}
		return nil
	})
}

func (d *InternedData) unmarshal(b []byte) error {
	return parse(b, func(f field) error {
		var s InternedString
		switch {
		case f.is(InternedDataEventCategories, protowire.BytesType):
			if err := s.unmarshal(f.b); err != nil {
				return err
			}
			d.EventCategories = append(d.EventCategories, s)
		case f.is(InternedDataEventNames, protowire.BytesType):
			if err := s.unmarshal(f.b); err != nil {
				return err
			}
			d.EventNames = append(d.EventNames, s)
		}
		return nil
	})
}

func (s *InternedString) unmarshal(b []byte) error {
	return parse(b, func(f field) error {
		switch {
		case f.is(InternedStringIID, protowire.VarintType):
			s.HasIID, s.IID = true, f.v
		case f.is(InternedStringName, protowire.BytesType):
			s.HasName, s.Name = true, string(f.b)
		}
		return nil
	})
}

func (e *TrackEvent) unmarshal(b []byte) error {
	return parse(b, func(f field) error {
		switch {
		case f.is(TrackEventCategoryIIDs, protowire.VarintType):
			e.CategoryIIDs = append(e.CategoryIIDs, f.v)
		case f.is(TrackEventCategoryIIDs, protowire.BytesType):
			// Packed encoding, as written by proto3 producers.
			for b := f.b; len(b) > 0; {
				v, n := protowire.ConsumeVarint(b)
				if n < 0 {
					return xerrors.Errorf("category_iids: %w", protowire.ParseError(n))
				}
				e.CategoryIIDs = append(e.CategoryIIDs, v)
				b = b[n:]
			}
		case f.is(TrackEventType, protowire.VarintType):
			e.HasType, e.Type = true, EventType(int32(f.v))
		case f.is(TrackEventTrackUUID, protowire.VarintType):
			e.HasTrackUUID, e.TrackUUID = true, f.v
		case f.is(TrackEventNameIID, protowire.VarintType):
			e.WhichNameField, e.NameIID, e.Name = f.num, f.v, ""
		case f.is(TrackEventName, protowire.BytesType):
			e.WhichNameField, e.Name, e.NameIID = f.num, string(f.b), 0
		case f.is(TrackEventCounterValue, protowire.VarintType):
			e.WhichCounterValue, e.CounterValue = f.num, int64(f.v)
		}
		return nil
	})
}

type field struct {
	num protowire.Number
	typ protowire.Type
	v   uint64
	b   []byte
}

func (f field) is(num protowire.Number, typ protowire.Type) bool {
	return f.num == num && f.typ == typ
}

// parse calls fn for each field of the message encoded in b.
func parse(b []byte, fn func(field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return xerrors.Errorf("pb: %w", protowire.ParseError(n))
		}
		b = b[n:]
		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.v, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			f.b, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return xerrors.Errorf("pb: field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}
