package logger

import (
	"io"
	"strings"

	"github.com/go-logr/logr"
	"go.uber.org/zap/zapcore"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// Level converts a LOG_LEVEL value into a zap level. Unknown values fall back to info.
func Level(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "panic":
		return zapcore.PanicLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// New returns a development-style logger writing to w (normally GinkgoWriter) and installs it as the
// controller-runtime logger so client warnings land in the same stream.
func New(level string, w io.Writer) logr.Logger {
	lvl := Level(level)
	log := zap.New(
		zap.WriteTo(w),
		zap.UseDevMode(lvl == zapcore.DebugLevel),
		zap.Level(lvl),
	)
	logf.SetLogger(log)
	return log.WithName("fleet-e2e")
}
