package logger

import (
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sugar *zap.SugaredLogger
	atom  zap.AtomicLevel
)

// Options controls where log lines go. A zero value logs to stderr only.
type Options struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	NoColor    bool
}

func init() {
	atom = zap.NewAtomicLevelAt(zap.InfoLevel)
	sugar = zap.New(consoleCore(true), zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

func consoleCore(color bool) zapcore.Core {
	return zapcore.NewCore(encoder(color), zapcore.Lock(os.Stderr), atom)
}

func encoder(color bool) zapcore.Encoder {
	config := zap.NewDevelopmentEncoderConfig()
	if color {
		config.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	config.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
	config.CallerKey = "caller"
	config.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewConsoleEncoder(config)
}

// ParseLevel maps a config string to a zap level. Unknown values fall back to info.
func ParseLevel(l string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(l)) {
	case "DEBUG":
		return zap.DebugLevel
	case "WARN", "WARNING":
		return zap.WarnLevel
	case "ERROR":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// SetLevel sets the global log level
func SetLevel(l string) {
	atom.SetLevel(ParseLevel(l))
}

// Init rebuilds the global logger from opts. The stderr core is always present,
// a rotating file core is added when opts.File is set.
func Init(opts Options) {
	SetLevel(opts.Level)

	cores := []zapcore.Core{consoleCore(!opts.NoColor)}

	if opts.File != "" {
		w := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 10), // megabytes
			MaxBackups: orDefault(opts.MaxBackups, 3),
			MaxAge:     orDefault(opts.MaxAgeDays, 28), // days
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(encoder(false), w, atom))
	}

	sugar = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// Sync flushes buffered file output.
func Sync() {
	_ = sugar.Sync()
}

func Enabled(l zapcore.Level) bool {
	return atom.Enabled(l)
}

func Debug(format string, v ...interface{}) {
	sugar.Debugf(format, v...)
}

func Info(format string, v ...interface{}) {
	sugar.Infof(format, v...)
}

func Warn(format string, v ...interface{}) {
	sugar.Warnf(format, v...)
}

func Error(format string, v ...interface{}) {
	sugar.Errorf(format, v...)
}

func Fatal(format string, v ...interface{}) {
	sugar.Fatalf(format, v...)
}
