package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Console returns the default logger: info and above, no caller or
// stack traces, written to stderr.
func Console(opts ...zap.Option) *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.TimeKey = ""
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return build(cfg, opts...)
}

// Development returns a debug-level logger with caller information.
func Development(opts ...zap.Option) *zap.SugaredLogger {
	opts = append(opts, zap.WithCaller(true))
	return build(zap.NewDevelopmentConfig(), opts...)
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func build(cfg zap.Config, opts ...zap.Option) *zap.SugaredLogger {
	l, err := cfg.Build(opts...)
	if err != nil {
		panic(err)
	}
	return l.Sugar()
}
