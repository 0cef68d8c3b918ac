// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pb

import (
	"errors"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrBufferTooSmall is returned by MarshalTo when the encoded message does
// not fit the destination buffer. Nothing is written in that case.
var ErrBufferTooSmall = errors.New("pb: buffer too small")

var errSizeMismatch = errors.New("pb: encoded size differs from Size")

// Size returns the encoded size of p.
func (p *TracePacket) Size() int {
	n := 0
	if p.HasTimestamp {
		n += sizeVarint(TracePacketTimestamp, p.Timestamp)
	}
	if p.HasSequenceID {
		n += sizeVarint(TracePacketSequenceID, uint64(p.SequenceID))
	}
	switch p.WhichData {
	case TracePacketTrackEvent:
		n += sizeMessage(TracePacketTrackEvent, p.TrackEvent.size())
	case TracePacketInternedData:
		n += sizeMessage(TracePacketInternedData, p.InternedData.size())
	}
	if p.HasSequenceFlags {
		n += sizeVarint(TracePacketSequenceFlags, uint64(p.SequenceFlags))
	}
	if p.WhichData == TracePacketTrackDescriptor {
		n += sizeMessage(TracePacketTrackDescriptor, p.TrackDescriptor.size())
	}
	return n
}

// MarshalTo encodes p into the front of buf and returns the number of bytes
// written. Fields are written in field-number order.
func (p *TracePacket) MarshalTo(buf []byte) (int, error) {
	n := p.Size()
	if n > len(buf) {
		return 0, ErrBufferTooSmall
	}
	b := buf[:0]
	if p.HasTimestamp {
		b = appendVarint(b, TracePacketTimestamp, p.Timestamp)
	}
	if p.HasSequenceID {
		b = appendVarint(b, TracePacketSequenceID, uint64(p.SequenceID))
	}
	switch p.WhichData {
	case TracePacketTrackEvent:
		b = appendHeader(b, TracePacketTrackEvent, p.TrackEvent.size())
		b = p.TrackEvent.appendTo(b)
	case TracePacketInternedData:
		b = appendHeader(b, TracePacketInternedData, p.InternedData.size())
		b = p.InternedData.appendTo(b)
	}
	if p.HasSequenceFlags {
		b = appendVarint(b, TracePacketSequenceFlags, uint64(p.SequenceFlags))
	}
	if p.WhichData == TracePacketTrackDescriptor {
		b = appendHeader(b, TracePacketTrackDescriptor, p.TrackDescriptor.size())
		b = p.TrackDescriptor.appendTo(b)
	}
	if len(b) != n {
		return 0, errSizeMismatch
	}
	return n, nil
}

func (d *TrackDescriptor) size() int {
	n := 0
	if d.HasUUID {
		n += sizeVarint(TrackDescriptorUUID, d.UUID)
	}
	if d.HasName {
		n += sizeBytes(TrackDescriptorName, len(d.Name))
	}
	if d.HasProcess {
		n += sizeMessage(TrackDescriptorProcess, d.Process.size())
	}
	if d.HasThread {
		n += sizeMessage(TrackDescriptorThread, d.Thread.size())
	}
	if d.HasParentUUID {
		n += sizeVarint(TrackDescriptorParentUUID, d.ParentUUID)
	}
	if d.HasCounter {
		n += sizeMessage(TrackDescriptorCounter, d.Counter.size())
	}
	return n
}

func (d *TrackDescriptor) appendTo(b []byte) []byte {
	if d.HasUUID {
		b = appendVarint(b, TrackDescriptorUUID, d.UUID)
	}
	if d.HasName {
		b = appendString(b, TrackDescriptorName, d.Name)
	}
	if d.HasProcess {
		b = appendHeader(b, TrackDescriptorProcess, d.Process.size())
		b = d.Process.appendTo(b)
	}
	if d.HasThread {
		b = appendHeader(b, TrackDescriptorThread, d.Thread.size())
		b = d.Thread.appendTo(b)
	}
	if d.HasParentUUID {
		b = appendVarint(b, TrackDescriptorParentUUID, d.ParentUUID)
	}
	if d.HasCounter {
		b = appendHeader(b, TrackDescriptorCounter, d.Counter.size())
		b = d.Counter.appendTo(b)
	}
	return b
}

func (d *ProcessDescriptor) size() int {
	n := 0
	if d.HasPID {
		n += sizeVarint(ProcessDescriptorPID, int32Bits(d.PID))
	}
	if d.HasProcessName {
		n += sizeBytes(ProcessDescriptorName, len(d.ProcessName))
	}
	return n
}

func (d *ProcessDescriptor) appendTo(b []byte) []byte {
	if d.HasPID {
		b = appendVarint(b, ProcessDescriptorPID, int32Bits(d.PID))
	}
	if d.HasProcessName {
		b = appendString(b, ProcessDescriptorName, d.ProcessName)
	}
	return b
}

func (d *ThreadDescriptor) size() int {
	n := 0
	if d.HasPID {
		n += sizeVarint(ThreadDescriptorPID, int32Bits(d.PID))
	}
	if d.HasTID {
		n += sizeVarint(ThreadDescriptorTID, int32Bits(d.TID))
	}
	if d.HasThreadName {
		n += sizeBytes(ThreadDescriptorName, len(d.ThreadName))
	}
	return n
}

func (d *ThreadDescriptor) appendTo(b []byte) []byte {
	if d.HasPID {
		b = appendVarint(b, ThreadDescriptorPID, int32Bits(d.PID))
	}
	if d.HasTID {
		b = appendVarint(b, ThreadDescriptorTID, int32Bits(d.TID))
	}
	if d.HasThreadName {
		b = appendString(b, ThreadDescriptorName, d.ThreadName)
	}
	return b
}

func (d *CounterDescriptor) size() int {
	if !d.HasUnit {
		return 0
	}
	return sizeVarint(CounterDescriptorUnit, int32Bits(int32(d.Unit)))
}

func (d *CounterDescriptor) appendTo(b []byte) []byte {
	if d.HasUnit {
		b = appendVarint(b, CounterDescriptorUnit, int32Bits(int32(d.Unit)))
	}
	return b
}

func (d *InternedData) size() int {
	n := 0
	for i := range d.EventCategories {
		n += sizeMessage(InternedDataEventCategories, d.EventCategories[i].size())
	}
	for i := range d.EventNames {
		n += sizeMessage(InternedDataEventNames, d.EventNames[i].size())
	}
	return n
}

func (d *InternedData) appendTo(b []byte) []byte {
	for i := range d.EventCategories {
		s := &d.EventCategories[i]
		b = appendHeader(b, InternedDataEventCategories, s.size())
		b = s.appendTo(b)
	}
	for i := range d.EventNames {
		s := &d.EventNames[i]
		b = appendHeader(b, InternedDataEventNames, s.size())
		b = s.appendTo(b)
	}
	return b
}

func (s *InternedString) size() int {
	n := 0
	if s.HasIID {
		n += sizeVarint(InternedStringIID, s.IID)
	}
	if s.HasName {
		n += sizeBytes(InternedStringName, len(s.Name))
	}
	return n
}

func (s *InternedString) appendTo(b []byte) []byte {
	if s.HasIID {
		b = appendVarint(b, InternedStringIID, s.IID)
	}
	if s.HasName {
		b = appendString(b, InternedStringName, s.Name)
	}
	return b
}

func (e *TrackEvent) size() int {
	n := 0
	for _, iid := range e.CategoryIIDs {
		n += sizeVarint(TrackEventCategoryIIDs, iid)
	}
	if e.HasType {
		n += sizeVarint(TrackEventType, int32Bits(int32(e.Type)))
	}
	if e.WhichNameField == TrackEventNameIID {
		n += sizeVarint(TrackEventNameIID, e.NameIID)
	}
	if e.HasTrackUUID {
		n += sizeVarint(TrackEventTrackUUID, e.TrackUUID)
	}
	if e.WhichNameField == TrackEventName {
		n += sizeBytes(TrackEventName, e.inlineNameLen())
	}
	if e.WhichCounterValue == TrackEventCounterValue {
		n += sizeVarint(TrackEventCounterValue, uint64(e.CounterValue))
	}
	return n
}

func (e *TrackEvent) appendTo(b []byte) []byte {
	for _, iid := range e.CategoryIIDs {
		b = appendVarint(b, TrackEventCategoryIIDs, iid)
	}
	if e.HasType {
		b = appendVarint(b, TrackEventType, int32Bits(int32(e.Type)))
	}
	if e.WhichNameField == TrackEventNameIID {
		b = appendVarint(b, TrackEventNameIID, e.NameIID)
	}
	if e.HasTrackUUID {
		b = appendVarint(b, TrackEventTrackUUID, e.TrackUUID)
	}
	if e.WhichNameField == TrackEventName {
		if e.NameBytes != nil {
			b = protowire.AppendTag(b, TrackEventName, protowire.BytesType)
			b = protowire.AppendBytes(b, e.NameBytes)
		} else {
			b = appendString(b, TrackEventName, e.Name)
		}
	}
	if e.WhichCounterValue == TrackEventCounterValue {
		b = appendVarint(b, TrackEventCounterValue, uint64(e.CounterValue))
	}
	return b
}

func (e *TrackEvent) inlineNameLen() int {
	if e.NameBytes != nil {
		return len(e.NameBytes)
	}
	return len(e.Name)
}

// int32Bits returns the varint payload of an int32 or enum field: negative
// values are sign-extended to 64 bits.
func int32Bits(v int32) uint64 {
	return uint64(int64(v))
}

func sizeVarint(num protowire.Number, v uint64) int {
	return protowire.SizeTag(num) + protowire.SizeVarint(v)
}

func sizeBytes(num protowire.Number, n int) int {
	return protowire.SizeTag(num) + protowire.SizeBytes(n)
}

func sizeMessage(num protowire.Number, n int) int {
	return sizeBytes(num, n)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// appendHeader writes the key and length of an embedded message whose body
// the caller appends next.
func appendHeader(b []byte, num protowire.Number, n int) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendVarint(b, uint64(n))
}
