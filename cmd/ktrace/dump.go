// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/rtos-tracing/ktrace/decode"
	"github.com/rtos-tracing/ktrace/pb"
	"github.com/spf13/cobra"
)

func (a *app) dumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump TRACE",
		Short: "Print the packets of a trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := readTrace(args[0])
			if err != nil {
				return err
			}
			a.log.V(1).Info("read trace", "path", args[0], "packets", len(ps))
			w := cmd.OutOrStdout()
			switch {
			case a.v.GetBool("tracks"):
				return printTracks(w, decode.Build(ps))
			case a.v.GetBool("summary"):
				return printSummary(w, ps)
			}
			return decode.Print(w, ps)
		},
	}
	cmd.Flags().Bool("tracks", false, "print the track tree with event counts instead of packets")
	cmd.Flags().Bool("summary", false, "print one line per packet")
	return cmd
}

func printSummary(w io.Writer, ps []*pb.TracePacket) error {
	for _, p := range ps {
		if _, err := fmt.Fprintf(w, "%d %s\n", p.Timestamp, decode.Summary(p)); err != nil {
			return err
		}
	}
	return nil
}

// printTracks writes the track forest, one track per line, indented by
// depth and annotated with the number of slices, instants and samples.
func printTracks(w io.Writer, tl *decode.Timeline) error {
	counts := map[uint64][3]int{}
	for _, s := range tl.Slices {
		c := counts[s.Track]
		c[0]++
		counts[s.Track] = c
	}
	for _, i := range tl.Instants {
		c := counts[i.Track]
		c[1]++
		counts[i.Track] = c
	}
	for _, s := range tl.Samples {
		c := counts[s.Track]
		c[2]++
		counts[s.Track] = c
	}
	var err error
	var walk func(parent uint64, depth int)
	walk = func(parent uint64, depth int) {
		for _, t := range tl.Children(parent) {
			if err != nil {
				return
			}
			c := counts[t.UUID]
			_, err = fmt.Fprintf(w, "%s%s [%d] slices=%d instants=%d samples=%d\n",
				strings.Repeat("  ", depth), t.Name, t.UUID, c[0], c[1], c[2])
			walk(t.UUID, depth+1)
		}
	}
	walk(0, 0)
	return err
}
