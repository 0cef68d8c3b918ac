// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rtos-tracing/ktrace/internal/logging"
	"github.com/rtos-tracing/ktrace/periph"
	"github.com/stretchr/testify/require"
)

func ktrace(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	t.Logf("ktrace %s\n%s", strings.Join(args, " "), errOut.String())
	return out.String(), err
}

func record(t *testing.T, name string, args ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	out, err := ktrace(t, append([]string{"record", "-o", path}, args...)...)
	require.NoError(t, err)
	require.Contains(t, out, "wrote "+path)
	return path
}

func TestRecordDump(t *testing.T) {
	path := record(t, "trace.pftrace.gz", "--board", "testdata/board.yaml", "--seed", "3", "--steps", "50")

	out, err := ktrace(t, "dump", path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "\n=== Packet 0 ===\n"), "dump output starts %q", out[:min(len(out), 40)])
	require.Contains(t, out, "sequence_flags: 1 (INCREMENTAL_STATE_CLEARED)")
	require.Contains(t, out, "process: pid=1, name='Kernel'")

	out, err = ktrace(t, "dump", "--summary", path)
	require.NoError(t, err)
	first, _, _ := strings.Cut(out, "\n")
	require.Contains(t, first, "descriptor uuid=1")

	out, err = ktrace(t, "dump", "--tracks", path)
	require.NoError(t, err)
	for _, want := range []string{
		"Kernel [1]",
		"\n  Trace [3]",
		"\n    gpio0 [",
		"\n      gpio0.03 [",
		"\n  Emulated [4]",
		"\n    UART [5]",
		"\n      console [8192]",
		"\n        TX [8193]",
		"\n  worker0 [",
	} {
		require.Contains(t, out, want)
	}
}

func TestRecordDeterministic(t *testing.T) {
	a := record(t, "a.pftrace", "--seed", "11")
	b := record(t, "b.pftrace", "--seed", "11")
	ab, err := os.ReadFile(a)
	require.NoError(t, err)
	bb, err := os.ReadFile(b)
	require.NoError(t, err)
	require.NotEmpty(t, ab)
	require.Equal(t, ab, bb)
}

func TestRecordMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.pftrace")
	out, err := ktrace(t, "record", "-o", path, "--metrics", "--steps", "10")
	require.NoError(t, err)
	require.Contains(t, out, "\nktrace.encoder.dropped 0\n")
	require.Contains(t, out, "\nktrace.encoder.packets ")
}

func TestOtel(t *testing.T) {
	path := record(t, "trace.pftrace", "--steps", "20")
	out, err := ktrace(t, "otel", "--boot", "2026-01-01T00:00:00Z", path)
	require.NoError(t, err)
	require.Contains(t, out, `"Name":"Running"`)
	require.Contains(t, out, `"Name":"Kernel/worker0"`)

	_, err = ktrace(t, "otel", "--boot", "yesterday", path)
	require.Error(t, err)
}

func TestLogBackendConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "ktrace.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("log-backend: syslog\n"), 0o644))
	_, err := ktrace(t, "--config", cfg, "record", "-o", filepath.Join(dir, "t.pftrace"))
	require.ErrorIs(t, err, logging.ErrUnknownBackend)

	t.Setenv("KTRACE_LOG_BACKEND", "journald")
	_, err = ktrace(t, "record", "-o", filepath.Join(dir, "t.pftrace"))
	require.ErrorIs(t, err, logging.ErrUnknownBackend)
}

func TestBadBoard(t *testing.T) {
	dir := t.TempDir()
	board := filepath.Join(dir, "board.yaml")
	require.NoError(t, os.WriteFile(board, []byte("gpio:\n  - name: nodevice\n"), 0o644))
	out := filepath.Join(dir, "t.pftrace")
	_, err := ktrace(t, "record", "-o", out, "--board", board)
	require.ErrorIs(t, err, periph.ErrBadBoard)
	_, err = os.Stat(out)
	require.True(t, os.IsNotExist(err), "failed record left %s behind", out)
}

func TestDumpMissing(t *testing.T) {
	_, err := ktrace(t, "dump", filepath.Join(t.TempDir(), "nope.pftrace"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
