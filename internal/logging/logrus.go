// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logging

import (
	"io"

	"github.com/go-logr/logr"
	"github.com/sirupsen/logrus"
)

type logrusSink struct {
	e    *logrus.Entry
	name string
}

func newLogrusSink(w io.Writer) logr.LogSink {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	return &logrusSink{e: logrus.NewEntry(l)}
}

func (s *logrusSink) Init(logr.RuntimeInfo) {}

func (s *logrusSink) Enabled(int) bool { return true }

func (s *logrusSink) Info(level int, msg string, keysAndValues ...any) {
	e := s.e.WithFields(logrusFields(keysAndValues)).WithField(verbosityKey, level)
	if level > 0 {
		e.Debug(msg)
		return
	}
	e.Info(msg)
}

func (s *logrusSink) Error(err error, msg string, keysAndValues ...any) {
	s.e.WithFields(logrusFields(keysAndValues)).WithError(err).Error(msg)
}

func (s *logrusSink) WithValues(keysAndValues ...any) logr.LogSink {
	return &logrusSink{e: s.e.WithFields(logrusFields(keysAndValues)), name: s.name}
}

func (s *logrusSink) WithName(name string) logr.LogSink {
	name = joinName(s.name, name)
	return &logrusSink{e: s.e.WithField(nameKey, name), name: name}
}

func logrusFields(keysAndValues []any) logrus.Fields {
	fields := make(logrus.Fields, len(keysAndValues)/2)
	eachPair(keysAndValues, func(key string, value any) {
		fields[key] = value
	})
	return fields
}
