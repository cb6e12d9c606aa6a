package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config mirrors the env-driven logger configuration every service in this
// stack carries: level and output format are the only two knobs operators
// tend to flip.
type Config struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	DevMode    bool   `env:"LOG_DEV_MODE" envDefault:"false"`
	JSONOutput bool   `env:"LOG_JSON" envDefault:"true"`
}

// Logger is the narrow surface the rest of this module depends on, so that
// tests can swap in a no-op implementation without dragging in zap.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
	Logger() *zap.Logger
}

type zapLogger struct {
	sugar *zap.SugaredLogger
	base  *zap.Logger
}

// NewLogger builds a Logger from Config, following the teacher's convention
// of level-via-string and dev-mode-via-bool.
func NewLogger(cfg *Config) (Logger, error) {
	level := zapcore.InfoLevel
	if cfg != nil && cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			level = zapcore.InfoLevel
		}
	}

	var zcfg zap.Config
	if cfg != nil && cfg.DevMode {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	if cfg != nil && !cfg.JSONOutput {
		zcfg.Encoding = "console"
	}

	base, err := zcfg.Build()
	if err != nil {
		return nil, err
	}

	return &zapLogger{sugar: base.Sugar(), base: base}, nil
}

// NewNop returns a Logger that discards everything, for tests.
func NewNop() Logger {
	base := zap.NewNop()
	return &zapLogger{sugar: base.Sugar(), base: base}
}

func (l *zapLogger) Debugw(msg string, kv ...interface{}) { l.sugar.Debugw(msg, kv...) }
func (l *zapLogger) Infow(msg string, kv ...interface{})  { l.sugar.Infow(msg, kv...) }
func (l *zapLogger) Warnw(msg string, kv ...interface{})  { l.sugar.Warnw(msg, kv...) }
func (l *zapLogger) Errorw(msg string, kv ...interface{}) { l.sugar.Errorw(msg, kv...) }
func (l *zapLogger) Logger() *zap.Logger                  { return l.base }
