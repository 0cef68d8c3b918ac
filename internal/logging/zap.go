// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logging

import (
	"io"

	"github.com/go-logr/logr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type zapSink struct {
	l *zap.Logger
}

func newZapSink(w io.Writer) logr.LogSink {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.AddSync(w), zapcore.DebugLevel)
	return &zapSink{l: zap.New(core)}
}

func (s *zapSink) Init(logr.RuntimeInfo) {}

func (s *zapSink) Enabled(int) bool { return true }

func (s *zapSink) Info(level int, msg string, keysAndValues ...any) {
	fields := zapFields(keysAndValues, zap.Int(verbosityKey, level))
	if level > 0 {
		s.l.Debug(msg, fields...)
		return
	}
	s.l.Info(msg, fields...)
}

func (s *zapSink) Error(err error, msg string, keysAndValues ...any) {
	s.l.Error(msg, zapFields(keysAndValues, zap.Error(err))...)
}

func (s *zapSink) WithValues(keysAndValues ...any) logr.LogSink {
	return &zapSink{l: s.l.With(zapFields(keysAndValues)...)}
}

func (s *zapSink) WithName(name string) logr.LogSink {
	return &zapSink{l: s.l.Named(name)}
}

// zapFields converts logr key/value pairs to zap fields, followed by extra.
func zapFields(keysAndValues []any, extra ...zapcore.Field) []zapcore.Field {
	fields := make([]zapcore.Field, 0, len(keysAndValues)/2+1+len(extra))
	eachPair(keysAndValues, func(key string, value any) {
		fields = append(fields, zap.Any(key, value))
	})
	return append(fields, extra...)
}
