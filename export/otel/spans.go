// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package otel exports decoded kernel traces to OpenTelemetry.
//
// Each track that carries events becomes a root span named by its path,
// with the track's slices as nested child spans. Instants and counter
// samples become span events on the track's root span.
package otel

import (
	"context"
	"sort"
	"time"

	"github.com/rtos-tracing/ktrace/decode"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName is the name of the tracer and meter this package
// obtains from its providers.
const InstrumentationName = "github.com/rtos-tracing/ktrace"

// Attribute keys set on exported spans.
const (
	TrackKey    = attribute.Key("ktrace.track")
	CategoryKey = attribute.Key("ktrace.category")
	DepthKey    = attribute.Key("ktrace.depth")
	ValueKey    = attribute.Key("ktrace.value")
)

// Exporter replays timelines as spans.
type Exporter struct {
	tracer trace.Tracer
	boot   time.Time
}

// NewExporter returns an Exporter creating spans with tp. Trace
// timestamps, which count from boot, are placed relative to boot.
func NewExporter(tp trace.TracerProvider, boot time.Time) *Exporter {
	return &Exporter{tracer: tp.Tracer(InstrumentationName), boot: boot}
}

func (x *Exporter) at(ns uint64) time.Time {
	return x.boot.Add(time.Duration(ns))
}

// trackEvents is everything that happened on one track.
type trackEvents struct {
	slices   []decode.Slice
	instants []decode.Instant
	samples  []decode.Sample
}

func (te *trackEvents) bounds() (start, end uint64) {
	first := true
	see := func(a, b uint64) {
		if first || a < start {
			start = a
		}
		if first || b > end {
			end = b
		}
		first = false
	}
	for _, s := range te.slices {
		see(s.Start, s.End)
	}
	for _, i := range te.instants {
		see(i.Time, i.Time)
	}
	for _, s := range te.samples {
		see(s.Time, s.Time)
	}
	return start, end
}

// Export creates the spans for tl and returns how many it created.
// Slices still open at the end of the trace are not exported.
func (x *Exporter) Export(ctx context.Context, tl *decode.Timeline) int {
	byTrack := map[uint64]*trackEvents{}
	get := func(uuid uint64) *trackEvents {
		te := byTrack[uuid]
		if te == nil {
			te = &trackEvents{}
			byTrack[uuid] = te
		}
		return te
	}
	for _, s := range tl.Slices {
		te := get(s.Track)
		te.slices = append(te.slices, s)
	}
	for _, i := range tl.Instants {
		te := get(i.Track)
		te.instants = append(te.instants, i)
	}
	for _, s := range tl.Samples {
		te := get(s.Track)
		te.samples = append(te.samples, s)
	}

	uuids := make([]uint64, 0, len(byTrack))
	for uuid := range byTrack {
		uuids = append(uuids, uuid)
	}
	sort.Slice(uuids, func(i, j int) bool { return uuids[i] < uuids[j] })

	n := 0
	for _, uuid := range uuids {
		n += x.exportTrack(ctx, tl.Path(uuid), uuid, byTrack[uuid])
	}
	return n
}

func (x *Exporter) exportTrack(ctx context.Context, path string, uuid uint64, te *trackEvents) int {
	start, end := te.bounds()
	track := TrackKey.Int64(int64(uuid))
	ctx, root := x.tracer.Start(ctx, path,
		trace.WithTimestamp(x.at(start)),
		trace.WithAttributes(track))
	n := 1

	// Slices arrive ordered by start time and then depth, so the
	// enclosing slice of one at depth d is the last one seen at d-1.
	var stack []context.Context
	for _, s := range te.slices {
		if s.Depth < len(stack) {
			stack = stack[:s.Depth]
		}
		parent := ctx
		if len(stack) > 0 {
			parent = stack[len(stack)-1]
		}
		attrs := []attribute.KeyValue{track, DepthKey.Int(s.Depth)}
		if s.Category != "" {
			attrs = append(attrs, CategoryKey.String(s.Category))
		}
		sctx, span := x.tracer.Start(parent, s.Name,
			trace.WithTimestamp(x.at(s.Start)),
			trace.WithAttributes(attrs...))
		span.End(trace.WithTimestamp(x.at(s.End)))
		stack = append(stack, sctx)
		n++
	}
	for _, i := range te.instants {
		opts := []trace.EventOption{trace.WithTimestamp(x.at(i.Time))}
		if i.Category != "" {
			opts = append(opts, trace.WithAttributes(CategoryKey.String(i.Category)))
		}
		root.AddEvent(i.Name, opts...)
	}
	for _, s := range te.samples {
		root.AddEvent("sample",
			trace.WithTimestamp(x.at(s.Time)),
			trace.WithAttributes(ValueKey.Int64(s.Value)))
	}
	root.End(trace.WithTimestamp(x.at(end)))
	return n
}
