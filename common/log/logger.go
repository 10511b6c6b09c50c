// Package log defines the unified logging interface and default
// implementation for recordstore. All packages log through this interface
// to keep output consistent and configurable.
package log

import (
	"log"
	"os"
	"sync"

	"github.com/turtacn/recordstore/common/constants"
	"github.com/turtacn/recordstore/common/types/enum"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the interface for recordstore's unified logger.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Fatal(msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
	SetLevel(level enum.LogLevel)
}

// recordLogger implements Logger using Zap.
type recordLogger struct {
	zapLogger *zap.Logger
	atom      zap.AtomicLevel
	mu        sync.RWMutex
}

var globalLogger *recordLogger
var once sync.Once

// InitLogger initializes the global logger instance. Should be called once
// at process startup. If logFilePath is empty, logs go to stdout only.
func InitLogger(logFilePath string, level string) {
	once.Do(func() {
		parsedLevel, err := enum.ParseLogLevel(level)
		if err != nil {
			log.Printf("recordstore: invalid log level %q, using default %q", level, constants.DefaultLogLevel)
			parsedLevel, _ = enum.ParseLogLevel(constants.DefaultLogLevel)
		}
		atom := zap.NewAtomicLevelAt(toZapLevel(parsedLevel))

		consoleEncoderCfg := zap.NewDevelopmentEncoderConfig()
		consoleEncoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		consoleCore := zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleEncoderCfg),
			zapcore.AddSync(os.Stdout),
			atom,
		)

		cores := []zapcore.Core{consoleCore}

		if logFilePath != "" {
			fileEncoderCfg := zap.NewProductionEncoderConfig()
			fileEncoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
			fileCore := zapcore.NewCore(
				zapcore.NewJSONEncoder(fileEncoderCfg),
				zapcore.AddSync(&lumberjack.Logger{
					Filename:   logFilePath,
					MaxSize:    constants.LogFileMaxSizeMB,
					MaxBackups: constants.LogFileMaxBackups,
					MaxAge:     constants.LogFileMaxAgeDays,
					Compress:   true,
				}),
				atom,
			)
			cores = append(cores, fileCore)
		}

		zapLogger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
		globalLogger = &recordLogger{zapLogger: zapLogger, atom: atom}
		zap.ReplaceGlobals(zapLogger)
	})
}

// GetLogger returns the global Logger. Returns a no-op logger if InitLogger
// has not yet been called, so packages never need a nil check.
func GetLogger() Logger {
	if globalLogger == nil {
		return &noOpLogger{}
	}
	return globalLogger
}

func toZapLevel(level enum.LogLevel) zapcore.Level {
	switch level {
	case enum.LogLevelDebug:
		return zapcore.DebugLevel
	case enum.LogLevelInfo:
		return zapcore.InfoLevel
	case enum.LogLevelWarn:
		return zapcore.WarnLevel
	case enum.LogLevelError:
		return zapcore.ErrorLevel
	case enum.LogLevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *recordLogger) Debug(msg string, fields ...zap.Field) { l.zapLogger.Debug(msg, fields...) }
func (l *recordLogger) Info(msg string, fields ...zap.Field)  { l.zapLogger.Info(msg, fields...) }
func (l *recordLogger) Warn(msg string, fields ...zap.Field)  { l.zapLogger.Warn(msg, fields...) }
func (l *recordLogger) Error(msg string, fields ...zap.Field) { l.zapLogger.Error(msg, fields...) }
func (l *recordLogger) Fatal(msg string, fields ...zap.Field) { l.zapLogger.Fatal(msg, fields...) }

// With creates a child logger with added fields.
func (l *recordLogger) With(fields ...zap.Field) Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return &recordLogger{
		zapLogger: l.zapLogger.With(fields...),
		atom:      l.atom,
	}
}

// SetLevel dynamically sets the minimum logging level.
func (l *recordLogger) SetLevel(level enum.LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.atom.SetLevel(toZapLevel(level))
}

// noOpLogger discards everything. Used before InitLogger is called.
type noOpLogger struct{}

func (*noOpLogger) Debug(msg string, fields ...zap.Field) {}
func (*noOpLogger) Info(msg string, fields ...zap.Field)  {}
func (*noOpLogger) Warn(msg string, fields ...zap.Field)  {}
func (*noOpLogger) Error(msg string, fields ...zap.Field) {}
func (*noOpLogger) Fatal(msg string, fields ...zap.Field) { os.Exit(1) }
func (l *noOpLogger) With(fields ...zap.Field) Logger     { return l }
func (*noOpLogger) SetLevel(level enum.LogLevel)          {}
