// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pb holds the subset of Perfetto's trace schema that the kernel
// encoder produces.
//
// Messages are plain structs. Optional scalar fields carry an explicit Has
// flag, and oneof groups carry a Which discriminant holding the field number
// of the member that is set. Marshaling writes into a caller-supplied buffer
// and never allocates; a message that does not fit is rejected whole.
package pb

import (
	"strconv"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of perfetto.protos.TracePacket.
const (
	TracePacketTimestamp       protowire.Number = 8
	TracePacketSequenceID      protowire.Number = 10
	TracePacketTrackEvent      protowire.Number = 11
	TracePacketInternedData    protowire.Number = 12
	TracePacketSequenceFlags   protowire.Number = 13
	TracePacketTrackDescriptor protowire.Number = 60
)

// Field numbers of perfetto.protos.TrackDescriptor.
const (
	TrackDescriptorUUID       protowire.Number = 1
	TrackDescriptorName       protowire.Number = 2
	TrackDescriptorProcess    protowire.Number = 3
	TrackDescriptorThread     protowire.Number = 4
	TrackDescriptorParentUUID protowire.Number = 5
	TrackDescriptorCounter    protowire.Number = 8
)

// Field numbers of perfetto.protos.ProcessDescriptor.
const (
	ProcessDescriptorPID  protowire.Number = 1
	ProcessDescriptorName protowire.Number = 6
)

// Field numbers of perfetto.protos.ThreadDescriptor.
const (
	ThreadDescriptorPID  protowire.Number = 1
	ThreadDescriptorTID  protowire.Number = 2
	ThreadDescriptorName protowire.Number = 5
)

// Field numbers of perfetto.protos.CounterDescriptor.
const (
	CounterDescriptorUnit protowire.Number = 3
)

// Field numbers of perfetto.protos.InternedData, EventCategory and EventName.
const (
	InternedDataEventCategories protowire.Number = 1
	InternedDataEventNames      protowire.Number = 2

	InternedStringIID  protowire.Number = 1
	InternedStringName protowire.Number = 2
)

// Field numbers of perfetto.protos.TrackEvent.
const (
	TrackEventCategoryIIDs protowire.Number = 3
	TrackEventType         protowire.Number = 9
	TrackEventNameIID      protowire.Number = 10
	TrackEventTrackUUID    protowire.Number = 11
	TrackEventName         protowire.Number = 23
	TrackEventCounterValue protowire.Number = 30
)

// SequenceFlags are TracePacket.sequence_flags bits.
type SequenceFlags uint32

const (
	// SeqIncrementalStateCleared marks the first packet of a sequence:
	// interned data and descriptors from before it are forgotten.
	SeqIncrementalStateCleared SequenceFlags = 1

	// SeqNeedsIncrementalState marks a packet that refers to interned data
	// or tracks defined by earlier packets of the sequence.
	SeqNeedsIncrementalState SequenceFlags = 2
)

// EventType is TrackEvent.Type.
type EventType int32

const (
	TypeUnspecified EventType = 0
	TypeSliceBegin  EventType = 1
	TypeSliceEnd    EventType = 2
	TypeInstant     EventType = 3
	TypeCounter     EventType = 4
)

func (t EventType) String() string {
	switch t {
	case TypeUnspecified:
		return "UNSPECIFIED"
	case TypeSliceBegin:
		return "SLICE_BEGIN"
	case TypeSliceEnd:
		return "SLICE_END"
	case TypeInstant:
		return "INSTANT"
	case TypeCounter:
		return "COUNTER"
	}
	return "TYPE(" + strconv.Itoa(int(t)) + ")"
}

// CounterUnit is CounterDescriptor.Unit.
type CounterUnit int32

const (
	UnitUnspecified CounterUnit = 0
	UnitTimeNS      CounterUnit = 1
	UnitCount       CounterUnit = 2
	UnitSizeBytes   CounterUnit = 3
)
