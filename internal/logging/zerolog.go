// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logging

import (
	"io"

	"github.com/go-logr/logr"
	"github.com/rs/zerolog"
)

type zerologSink struct {
	l    zerolog.Logger
	name string
}

func newZerologSink(w io.Writer) logr.LogSink {
	return &zerologSink{l: zerolog.New(w).With().Timestamp().Logger()}
}

func (s *zerologSink) Init(logr.RuntimeInfo) {}

func (s *zerologSink) Enabled(int) bool { return true }

func (s *zerologSink) Info(level int, msg string, keysAndValues ...any) {
	ev := s.l.Info()
	if level > 0 {
		ev = s.l.Debug()
	}
	eachPair(keysAndValues, func(key string, value any) {
		ev = ev.Interface(key, value)
	})
	s.named(ev).Int(verbosityKey, level).Msg(msg)
}

func (s *zerologSink) Error(err error, msg string, keysAndValues ...any) {
	ev := s.l.Error()
	eachPair(keysAndValues, func(key string, value any) {
		ev = ev.Interface(key, value)
	})
	s.named(ev).Err(err).Msg(msg)
}

func (s *zerologSink) WithValues(keysAndValues ...any) logr.LogSink {
	ctx := s.l.With()
	eachPair(keysAndValues, func(key string, value any) {
		ctx = ctx.Interface(key, value)
	})
	return &zerologSink{l: ctx.Logger(), name: s.name}
}

func (s *zerologSink) WithName(name string) logr.LogSink {
	return &zerologSink{l: s.l, name: joinName(s.name, name)}
}

func (s *zerologSink) named(ev *zerolog.Event) *zerolog.Event {
	if s.name == "" {
		return ev
	}
	return ev.Str(nameKey, s.name)
}
