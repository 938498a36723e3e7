// Package zap adapts a *zap.Logger to gridchain.Logger.
package zap

import (
	"go.uber.org/zap"

	"github.com/unkn0wn-root/gridchain"
)

type Logger struct{ L *zap.Logger }

var _ gridchain.Logger = Logger{}

func New(l *zap.Logger) Logger { return Logger{L: l} }

func (z Logger) Debug(msg string, f gridchain.Fields) { z.L.Debug(msg, zf(f)...) }
func (z Logger) Info(msg string, f gridchain.Fields)  { z.L.Info(msg, zf(f)...) }
func (z Logger) Warn(msg string, f gridchain.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z Logger) Error(msg string, f gridchain.Fields) { z.L.Error(msg, zf(f)...) }

func (z Logger) With(f gridchain.Fields) gridchain.Logger {
	return Logger{L: z.L.With(zf(f)...)}
}

func zf(f gridchain.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		out = append(out, zap.Any(k, v))
	}
	return out
}
