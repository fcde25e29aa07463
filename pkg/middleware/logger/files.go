package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogDir is where rotating log files are written; LOG_DIR overrides it.
func LogDir() string {
	if d := os.Getenv("LOG_DIR"); d != "" {
		return d
	}
	return "log"
}

// NewLog builds a JSON logger teed to stdout and a rotating file named n in LogDir.
func NewLog(n string) *zap.Logger {
	dir := LogDir()
	_ = os.MkdirAll(dir, 0o755)

	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	console := zapcore.Lock(os.Stdout)

	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(dir, n),
		MaxSize:    50, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
	})

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(cfg), w, zap.InfoLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(cfg), console, zap.InfoLevel),
	)
	return zap.New(core)
}
