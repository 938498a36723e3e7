package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/gridchain"
	gclogrus "github.com/unkn0wn-root/gridchain/log/logrus"
	gcslog "github.com/unkn0wn-root/gridchain/log/slog"
	gczap "github.com/unkn0wn-root/gridchain/log/zap"
)

// newLogger builds the pipeline logger named by format, writing JSON to w.
// The returned flush must run before the process exits.
func newLogger(format, level string, w io.Writer) (gridchain.Logger, func(), error) {
	switch format {
	case "zap", "":
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, nil, err
		}
		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(w),
			lvl,
		)
		l := zap.New(core).Named("gridchain")
		return gczap.New(l), func() { _ = l.Sync() }, nil

	case "logrus":
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, nil, err
		}
		l := logrus.New()
		l.SetOutput(w)
		l.SetLevel(lvl)
		l.SetFormatter(&logrus.JSONFormatter{})
		return gclogrus.New(l), func() {}, nil

	case "slog":
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, nil, err
		}
		l := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
		return gcslog.New(l), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown log format %q", format)
	}
}
