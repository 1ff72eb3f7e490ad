package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger writes JSON logs to a rotating file under logDir.
func NewLogger(logDir string) (*zap.Logger, error) {
	core, err := fileCore(logDir, "timetablesvc.log")
	if err != nil {
		return nil, err
	}
	return zap.New(core), nil
}

// New is NewLogger teed to stderr, tagged with the service name.
func New(service, logDir string) (*zap.Logger, error) {
	file, err := fileCore(logDir, service+".log")
	if err != nil {
		return nil, err
	}
	console := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.Lock(os.Stderr), zap.InfoLevel)
	return zap.New(zapcore.NewTee(file, console)).With(zap.String("service", service)), nil
}

func fileCore(logDir, name string) (zapcore.Core, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}
	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(logDir, name),
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	})
	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), w, zap.InfoLevel), nil
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}
