// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pb

import "google.golang.org/protobuf/encoding/protowire"

// TracePacket is one record of the trace. Exactly one payload is selected by
// WhichData: TracePacketTrackEvent, TracePacketInternedData or
// TracePacketTrackDescriptor. The payload fields not selected are ignored.
type TracePacket struct {
	HasTimestamp bool
	Timestamp    uint64

	HasSequenceID bool
	SequenceID    uint32

	HasSequenceFlags bool
	SequenceFlags    SequenceFlags

	WhichData       protowire.Number
	TrackEvent      TrackEvent
	InternedData    InternedData
	TrackDescriptor TrackDescriptor
}

// TrackDescriptor names a track and places it in the track tree.
type TrackDescriptor struct {
	HasUUID bool
	UUID    uint64

	HasParentUUID bool
	ParentUUID    uint64

	HasName bool
	Name    string

	HasProcess bool
	Process    ProcessDescriptor

	HasThread bool
	Thread    ThreadDescriptor

	HasCounter bool
	Counter    CounterDescriptor
}

type ProcessDescriptor struct {
	HasPID bool
	PID    int32

	HasProcessName bool
	ProcessName    string
}

type ThreadDescriptor struct {
	HasPID bool
	PID    int32

	HasTID bool
	TID    int32

	HasThreadName bool
	ThreadName    string
}

// CounterDescriptor turns a track into a counter track.
type CounterDescriptor struct {
	HasUnit bool
	Unit    CounterUnit
}

// InternedData defines interned strings for later packets of the sequence.
type InternedData struct {
	EventCategories []InternedString
	EventNames      []InternedString
}

// InternedString is the shape shared by EventCategory and EventName.
type InternedString struct {
	HasIID bool
	IID    uint64

	HasName bool
	Name    string
}

// TrackEvent is a slice boundary, instant or counter sample on a track.
//
// The name is either interned (WhichNameField == TrackEventNameIID) or
// inline (WhichNameField == TrackEventName). An inline name is taken from
// NameBytes when it is not nil and from Name otherwise; Unmarshal always
// sets Name. The counter value is present when
// WhichCounterValue == TrackEventCounterValue.
type TrackEvent struct {
	HasType bool
	Type    EventType

	HasTrackUUID bool
	TrackUUID    uint64

	CategoryIIDs []uint64

	WhichNameField protowire.Number
	NameIID        uint64
	Name           string
	NameBytes      []byte

	WhichCounterValue protowire.Number
	CounterValue      int64
}
