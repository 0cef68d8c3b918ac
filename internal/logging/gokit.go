// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logging

import (
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/go-logr/logr"
)

type gokitSink struct {
	l    log.Logger
	name string
}

func newGokitSink(w io.Writer) logr.LogSink {
	l := log.NewLogfmtLogger(log.NewSyncWriter(w))
	return &gokitSink{l: log.With(l, "ts", log.DefaultTimestampUTC)}
}

func (s *gokitSink) Init(logr.RuntimeInfo) {}

func (s *gokitSink) Enabled(int) bool { return true }

func (s *gokitSink) Info(v int, msg string, keysAndValues ...any) {
	l := level.Info(s.l)
	if v > 0 {
		l = level.Debug(s.l)
	}
	l.Log(gokitPairs(keysAndValues, s.lead("msg", msg, verbosityKey, v)...)...)
}

func (s *gokitSink) Error(err error, msg string, keysAndValues ...any) {
	level.Error(s.l).Log(gokitPairs(keysAndValues, s.lead("msg", msg, "err", err)...)...)
}

func (s *gokitSink) WithValues(keysAndValues ...any) logr.LogSink {
	return &gokitSink{l: log.With(s.l, gokitPairs(keysAndValues)...), name: s.name}
}

func (s *gokitSink) WithName(name string) logr.LogSink {
	return &gokitSink{l: s.l, name: joinName(s.name, name)}
}

// lead puts the logger name, if any, in front of kv.
func (s *gokitSink) lead(kv ...any) []any {
	if s.name == "" {
		return kv
	}
	return append([]any{nameKey, s.name}, kv...)
}

// gokitPairs returns lead followed by the sanitised key/value pairs.
func gokitPairs(keysAndValues []any, lead ...any) []any {
	out := make([]any, 0, len(lead)+len(keysAndValues)+1)
	out = append(out, lead...)
	eachPair(keysAndValues, func(key string, value any) {
		out = append(out, key, value)
	})
	return out
}
