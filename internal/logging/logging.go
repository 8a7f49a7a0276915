// Package logging constructs the structured logr.Logger threaded through
// every long-lived component, replacing the teacher's package-level
// Debug bool + fmt.Printf/log.Printf idiom (session.go, arp/handler.go)
// with an injected leveled logger backed by zap.
package logging

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logr.Logger for the given module name at the requested
// level ("debug", "info", "warn", "error" — the Go analogue of the
// spec's RUST_LOG-style filter, spec §6). Unrecognized levels fall back
// to "info".
func New(module, level string) logr.Logger {
	zl, err := buildZap(level)
	if err != nil {
		zl = zap.NewNop()
	}
	return zapr.NewLogger(zl).WithName(module)
}

func buildZap(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// An unknown level comes back as InfoLevel alongside its error.
	lvl, _ := parseLevel(level)
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug", "trace":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("logging: unknown level %q", level)
	}
}
