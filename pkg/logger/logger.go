package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It is a no-op until Init runs, so tests
// and library code can log without setup.
var Log = zap.NewNop()

// Init builds the global logger. Development mode writes colored console
// output at debug level; otherwise entries are JSON at info level. A
// non-empty level ("debug", "warn", ...) overrides either default.
func Init(isDevelopment bool, level string) error {
	var config zap.Config
	if isDevelopment {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "ts"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return err
		}
		config.Level = zap.NewAtomicLevelAt(lvl)
	}

	log, err := config.Build(
		zap.AddStacktrace(zap.ErrorLevel),
		zap.Fields(zap.String("service", "tradingzen-api")),
	)
	if err != nil {
		return err
	}

	Log = log
	return nil
}

// Sync flushes buffered entries. Call it before the process exits.
func Sync() {
	_ = Log.Sync()
}
