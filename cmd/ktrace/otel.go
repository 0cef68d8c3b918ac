// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"time"

	"github.com/rtos-tracing/ktrace/decode"
	ktotel "github.com/rtos-tracing/ktrace/export/otel"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/xerrors"
)

func (a *app) otelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "otel TRACE",
		Short: "Print the slices of a trace as OpenTelemetry spans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			boot := time.Now()
			if s := a.v.GetString("boot"); s != "" {
				t, err := time.Parse(time.RFC3339Nano, s)
				if err != nil {
					return xerrors.Errorf("--boot: %w", err)
				}
				boot = t
			}
			ps, err := readTrace(args[0])
			if err != nil {
				return err
			}
			tl := decode.Build(ps)
			if len(tl.Open) > 0 || tl.UnmatchedEnds > 0 {
				a.log.Info("trace has unbalanced slices", "open", len(tl.Open), "unmatchedEnds", tl.UnmatchedEnds)
			}

			opts := []stdouttrace.Option{stdouttrace.WithWriter(cmd.OutOrStdout())}
			if a.v.GetBool("pretty") {
				opts = append(opts, stdouttrace.WithPrettyPrint())
			}
			exp, err := stdouttrace.New(opts...)
			if err != nil {
				return err
			}
			tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
			n := ktotel.NewExporter(tp, boot).Export(cmd.Context(), tl)
			if err := tp.Shutdown(cmd.Context()); err != nil {
				return xerrors.Errorf("flushing spans: %w", err)
			}
			a.log.V(1).Info("exported spans", "count", n)
			return nil
		},
	}
	cmd.Flags().String("boot", "", "wall clock time of boot (RFC 3339), default now")
	cmd.Flags().Bool("pretty", false, "indent the JSON output")
	return cmd
}
