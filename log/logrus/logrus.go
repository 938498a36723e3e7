// Package logrus adapts a logrus entry to gridchain.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/gridchain"
)

type Logger struct{ E *logrus.Entry }

var _ gridchain.Logger = Logger{}

func New(l *logrus.Logger) Logger { return Logger{E: logrus.NewEntry(l)} }

func (l Logger) Debug(msg string, f gridchain.Fields) { l.E.WithFields(logrus.Fields(f)).Debug(msg) }
func (l Logger) Info(msg string, f gridchain.Fields)  { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l Logger) Warn(msg string, f gridchain.Fields)  { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l Logger) Error(msg string, f gridchain.Fields) { l.E.WithFields(logrus.Fields(f)).Error(msg) }

func (l Logger) With(f gridchain.Fields) gridchain.Logger {
	return Logger{E: l.E.WithFields(logrus.Fields(f))}
}
