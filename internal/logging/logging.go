package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New construye el logger de producción. Si logFile no está vacío, además escribe
// en un archivo rotado con lumberjack.
func New(logFile string) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), zap.InfoLevel),
	}
	if logFile != "" {
		cores = append(cores, zapcore.NewCore(encoder,
			zapcore.AddSync(&lumberjack.Logger{
				Filename: logFile, MaxSize: 100, MaxAge: 28, Compress: true,
			}),
			zap.InfoLevel,
		))
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}
