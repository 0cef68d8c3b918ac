// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package otel

import (
	"context"

	"github.com/rtos-tracing/ktrace/encoder"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/xerrors"
)

// Metric names registered by RegisterStats.
const (
	PacketsMetric         = "ktrace.encoder.packets"
	BytesMetric           = "ktrace.encoder.bytes"
	DroppedMetric         = "ktrace.encoder.dropped"
	InternMissesMetric    = "ktrace.encoder.intern_misses"
	ThreadOverflowsMetric = "ktrace.encoder.thread_overflows"
)

// RegisterStats publishes the counters returned by stats as observable
// counters on meter. stats is called once per collection, from the
// collecting goroutine.
func RegisterStats(meter metric.Meter, stats func() encoder.Stats) (metric.Registration, error) {
	var err error
	counter := func(name, desc, unit string) metric.Int64ObservableCounter {
		if err != nil {
			return nil
		}
		var c metric.Int64ObservableCounter
		c, err = meter.Int64ObservableCounter(name, metric.WithDescription(desc), metric.WithUnit(unit))
		return c
	}
	packets := counter(PacketsMetric, "Trace packets written to the sink.", "{packet}")
	bytes := counter(BytesMetric, "Framed bytes written to the sink.", "By")
	dropped := counter(DroppedMetric, "Packets dropped because they did not fit the encode buffer.", "{packet}")
	misses := counter(InternMissesMetric, "Strings that could not be interned.", "{string}")
	overflows := counter(ThreadOverflowsMetric, "Thread descriptors written again because the thread set was full.", "{descriptor}")
	if err != nil {
		return nil, xerrors.Errorf("creating encoder instruments: %w", err)
	}

	reg, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		st := stats()
		o.ObserveInt64(packets, int64(st.Packets))
		o.ObserveInt64(bytes, int64(st.Bytes))
		o.ObserveInt64(dropped, int64(st.Dropped))
		o.ObserveInt64(misses, int64(st.InternMisses))
		o.ObserveInt64(overflows, int64(st.ThreadOverflows))
		return nil
	}, packets, bytes, dropped, misses, overflows)
	if err != nil {
		return nil, xerrors.Errorf("registering encoder stats: %w", err)
	}
	return reg, nil
}
