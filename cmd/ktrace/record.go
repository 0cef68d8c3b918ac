// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/rtos-tracing/ktrace/encoder"
	ktotel "github.com/rtos-tracing/ktrace/export/otel"
	"github.com/rtos-tracing/ktrace/internal/atomicfile"
	"github.com/rtos-tracing/ktrace/internal/sim"
	"github.com/rtos-tracing/ktrace/sink"
	"github.com/spf13/cobra"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

func (a *app) recordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Run the simulated kernel and write its trace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.record(cmd.Context(), cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringP("out", "o", "trace.pftrace", "output file, gzip compressed if it ends in .gz")
	f.String("board", "", "board description (YAML)")
	f.Uint64("seed", 1, "simulation seed")
	f.Int("steps", sim.DefaultSteps, "scheduling steps to simulate")
	f.Int("threads", sim.DefaultThreads, "worker threads")
	f.Int("ring-size", 64<<10, "bytes buffered between the encoder and the output file")
	f.String("process-name", encoder.DefaultProcessName, "name of the root process track")
	f.Bool("gpio", true, "trace the board's GPIO pins")
	f.Bool("emulation", true, "add the emulated UART tracks")
	f.Bool("metrics", false, "print the encoder metrics as collected through OpenTelemetry")
	return cmd
}

func (a *app) record(ctx context.Context, stdout io.Writer) error {
	board, err := loadBoard(a.v.GetString("board"))
	if err != nil {
		return err
	}
	out, err := atomicfile.Create(a.v.GetString("out"))
	if err != nil {
		return err
	}
	defer out.Abort()

	ring := sink.NewRing(a.v.GetInt("ring-size"))
	s := sim.New(ring, sim.Config{
		Threads: a.v.GetInt("threads"),
		Steps:   a.v.GetInt("steps"),
		Seed:    a.v.GetUint64("seed"),
		Board:   board,
		Encoder: encoder.Options{
			ProcessName: a.v.GetString("process-name"),
			GPIOTracing: a.v.GetBool("gpio"),
			Emulation:   a.v.GetBool("emulation"),
			Logger:      a.log,
		},
		Logger: a.log,
	})

	var reader *sdkmetric.ManualReader
	if a.v.GetBool("metrics") {
		reader = sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer mp.Shutdown(context.Background())
		if _, err := ktotel.RegisterStats(mp.Meter(ktotel.InstrumentationName), s.Encoder().Stats); err != nil {
			return err
		}
	}

	// The drain outlives the simulation so that it can flush what the
	// simulation queued last.
	drainCtx, stopDrain := context.WithCancel(context.Background())
	defer stopDrain()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stopDrain()
		return s.Run(gctx)
	})
	g.Go(func() error {
		return ring.Run(drainCtx, out)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if err := out.Commit(); err != nil {
		return err
	}

	st := s.Encoder().Stats()
	fmt.Fprintf(stdout, "wrote %s: %d packets, %d bytes, %d dropped by the encoder, %d dropped by the ring\n",
		out.Path(), st.Packets, st.Bytes, st.Dropped, ring.Dropped())
	a.log.Info("recorded", "path", out.Path(), "simulated", s.Now())

	if reader != nil {
		return printMetrics(ctx, stdout, reader)
	}
	return nil
}

func printMetrics(ctx context.Context, w io.Writer, reader *sdkmetric.ManualReader) error {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return xerrors.Errorf("collecting metrics: %w", err)
	}
	var lines []string
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				lines = append(lines, fmt.Sprintf("%s %d", m.Name, dp.Value))
			}
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
