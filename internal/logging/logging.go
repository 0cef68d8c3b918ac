// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logging builds logr loggers over the structured logging
// libraries the ktrace command can write to.
//
// Every backend maps logr verbosity onto its own levels the same way:
// V(0) messages are info, anything more verbose is debug, and Error is
// error. Messages above the configured verbosity are never formatted.
package logging

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-logr/logr"
	"golang.org/x/xerrors"
)

// ErrUnknownBackend is returned by New for an unrecognised backend name.
var ErrUnknownBackend = xerrors.New("unknown logging backend")

// DefaultBackend is used when New is given an empty backend name.
const DefaultBackend = "zap"

type newSink func(w io.Writer) logr.LogSink

var backends = map[string]newSink{
	"zap":     newZapSink,
	"logrus":  newLogrusSink,
	"zerolog": newZerologSink,
	"gokit":   newGokitSink,
}

// Backends returns the names accepted by New, sorted.
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New returns a logger writing to w through the named backend. Messages
// logged with V(n) for n > verbosity are discarded.
func New(backend string, w io.Writer, verbosity int) (logr.Logger, error) {
	if backend == "" {
		backend = DefaultBackend
	}
	mk, ok := backends[backend]
	if !ok {
		return logr.Discard(), xerrors.Errorf("%q: %w", backend, ErrUnknownBackend)
	}
	return logr.New(&filter{LogSink: mk(w), verbosity: verbosity}), nil
}

// filter applies the verbosity threshold in front of a backend sink so
// that the backends only deal with level mapping.
type filter struct {
	logr.LogSink
	verbosity int
}

func (f *filter) Enabled(level int) bool {
	return level <= f.verbosity && f.LogSink.Enabled(level)
}

func (f *filter) WithValues(keysAndValues ...any) logr.LogSink {
	return &filter{LogSink: f.LogSink.WithValues(keysAndValues...), verbosity: f.verbosity}
}

func (f *filter) WithName(name string) logr.LogSink {
	return &filter{LogSink: f.LogSink.WithName(name), verbosity: f.verbosity}
}

const (
	nameKey      = "logger"
	verbosityKey = "v"
	missingValue = "<no-value>"
)

// eachPair calls fn for every key/value pair. Non-string keys are
// formatted and a trailing key without a value gets a placeholder.
func eachPair(keysAndValues []any, fn func(key string, value any)) {
	for i := 0; i < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		var value any = missingValue
		if i+1 < len(keysAndValues) {
			value = keysAndValues[i+1]
		}
		fn(key, value)
	}
}

func joinName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
