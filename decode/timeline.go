// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

import (
	"cmp"
	"strconv"
	"strings"

	"github.com/rtos-tracing/ktrace/pb"
	"golang.org/x/exp/slices"
)

// TrackKind classifies a track by the descriptor that defined it.
type TrackKind int

const (
	PlainTrack TrackKind = iota
	ProcessTrack
	ThreadTrack
	CounterTrack
)

// Track is a track as last described by the trace.
type Track struct {
	UUID   uint64
	Parent uint64 // 0 for roots
	Name   string
	Kind   TrackKind
	PID    int32
	TID    int32
}

// Slice is a completed or still open interval on a track.
type Slice struct {
	Track    uint64
	Name     string
	Category string
	Start    uint64
	End      uint64 // 0 while open
	Depth    int    // nesting level on the track, 0 for outermost
}

// Instant is a zero-length event.
type Instant struct {
	Track    uint64
	Name     string
	Category string
	Time     uint64
}

// Sample is a counter value.
type Sample struct {
	Track uint64
	Time  uint64
	Value int64
}

// Timeline is the reconstructed content of a trace.
type Timeline struct {
	Tracks   map[uint64]*Track
	Slices   []Slice // completed slices ordered by start time
	Instants []Instant
	Samples  []Sample
	Open     []Slice // slices never ended, ordered by start time

	// UnmatchedEnds counts slice ends with no open slice on their track.
	UnmatchedEnds int
}

type iidKey struct {
	seq uint32
	iid uint64
}

// Build reconstructs the timeline described by ps, in order. Interned
// names are resolved per sequence and forgotten when a packet clears the
// sequence's incremental state. A name or category that cannot be
// resolved is rendered as "iid:N".
func Build(ps []*pb.TracePacket) *Timeline {
	tl := &Timeline{Tracks: map[uint64]*Track{}}
	names := map[iidKey]string{}
	cats := map[iidKey]string{}
	stacks := map[uint64][]Slice{}

	for _, p := range ps {
		seq := p.SequenceID
		if p.HasSequenceFlags && p.SequenceFlags&pb.SeqIncrementalStateCleared != 0 {
			clearSeq(names, seq)
			clearSeq(cats, seq)
		}
		switch p.WhichData {
		case pb.TracePacketTrackDescriptor:
			tl.addTrack(&p.TrackDescriptor)
		case pb.TracePacketInternedData:
			for _, s := range p.InternedData.EventNames {
				names[iidKey{seq, s.IID}] = s.Name
			}
			for _, s := range p.InternedData.EventCategories {
				cats[iidKey{seq, s.IID}] = s.Name
			}
		case pb.TracePacketTrackEvent:
			ev := &p.TrackEvent
			name := ev.Name
			if ev.WhichNameField == pb.TrackEventNameIID {
				name = resolve(names, seq, ev.NameIID)
			}
			var cat string
			if len(ev.CategoryIIDs) > 0 {
				cat = resolve(cats, seq, ev.CategoryIIDs[0])
			}
			uuid := ev.TrackUUID
			switch ev.Type {
			case pb.TypeSliceBegin:
				st := stacks[uuid]
				stacks[uuid] = append(st, Slice{Track: uuid, Name: name, Category: cat, Start: p.Timestamp, Depth: len(st)})
			case pb.TypeSliceEnd:
				st := stacks[uuid]
				if len(st) == 0 {
					tl.UnmatchedEnds++
					continue
				}
				s := st[len(st)-1]
				stacks[uuid] = st[:len(st)-1]
				s.End = p.Timestamp
				tl.Slices = append(tl.Slices, s)
			case pb.TypeInstant:
				tl.Instants = append(tl.Instants, Instant{Track: uuid, Name: name, Category: cat, Time: p.Timestamp})
			case pb.TypeCounter:
				tl.Samples = append(tl.Samples, Sample{Track: uuid, Time: p.Timestamp, Value: ev.CounterValue})
			}
		}
	}
	for _, st := range stacks {
		tl.Open = append(tl.Open, st...)
	}
	byStart := func(a, b Slice) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.Depth, b.Depth)
	}
	slices.SortStableFunc(tl.Slices, byStart)
	slices.SortStableFunc(tl.Open, byStart)
	return tl
}

func (tl *Timeline) addTrack(d *pb.TrackDescriptor) {
	t := &Track{UUID: d.UUID, Parent: d.ParentUUID, Name: d.Name}
	switch {
	case d.HasProcess:
		t.Kind, t.PID = ProcessTrack, d.Process.PID
		if t.Name == "" {
			t.Name = d.Process.ProcessName
		}
	case d.HasThread:
		t.Kind, t.PID, t.TID = ThreadTrack, d.Thread.PID, d.Thread.TID
		if t.Name == "" {
			t.Name = d.Thread.ThreadName
		}
	case d.HasCounter:
		t.Kind = CounterTrack
	}
	tl.Tracks[d.UUID] = t
}

// Path returns the names of a track and its ancestors joined by '/'.
// Undescribed tracks appear as their UUID.
func (tl *Timeline) Path(uuid uint64) string {
	var parts []string
	seen := map[uint64]bool{}
	for uuid != 0 && !seen[uuid] {
		seen[uuid] = true
		t, ok := tl.Tracks[uuid]
		if !ok {
			parts = append(parts, strconv.FormatUint(uuid, 10))
			break
		}
		name := t.Name
		if name == "" {
			name = strconv.FormatUint(uuid, 10)
		}
		parts = append(parts, name)
		uuid = t.Parent
	}
	slices.Reverse(parts)
	return strings.Join(parts, "/")
}

// Children returns the tracks whose parent is uuid, ordered by UUID.
func (tl *Timeline) Children(uuid uint64) []*Track {
	var ts []*Track
	for _, t := range tl.Tracks {
		if t.Parent == uuid {
			ts = append(ts, t)
		}
	}
	slices.SortFunc(ts, func(a, b *Track) int { return cmp.Compare(a.UUID, b.UUID) })
	return ts
}

func resolve(m map[iidKey]string, seq uint32, iid uint64) string {
	if s, ok := m[iidKey{seq, iid}]; ok {
		return s
	}
	return "iid:" + strconv.FormatUint(iid, 10)
}

func clearSeq(m map[iidKey]string, seq uint32) {
	for k := range m {
		if k.seq == seq {
			delete(m, k)
		}
	}
}
