// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Ktrace records, inspects and converts kernel traces.
//
// Usage:
//
//	ktrace record [-o trace.pftrace] [--board board.yaml] [--seed n] [--steps n]
//	ktrace dump [--tracks] trace.pftrace
//	ktrace otel [--boot time] trace.pftrace
//
// The record command runs the simulated kernel with tracing hooks and
// writes the resulting Perfetto trace. Output files ending in ".gz" are
// gzip compressed, and every command reads them transparently.
//
// Flags can also be set in a YAML config file (--config) or through
// KTRACE_* environment variables, for example KTRACE_LOG_BACKEND=zerolog.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "ktrace: %v\n", err)
		os.Exit(1)
	}
}
