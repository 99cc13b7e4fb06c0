// Package logger holds the process-wide zap logger. Production mode
// (APP_ENV=prod) emits JSON at info level; anything else gets the
// colored development encoder at debug level.
package logger

import (
    "log"
    "os"

    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

var l *zap.Logger

// Init builds the global logger. Call once at startup before Get.
func Init() {
    var cfg zap.Config
    if os.Getenv("APP_ENV") == "prod" {
        cfg = zap.NewProductionConfig()
        cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
    } else {
        cfg = zap.NewDevelopmentConfig()
        cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
        cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
    }
    var err error
    l, err = cfg.Build()
    if err != nil {
        log.Fatalf("failed to initialize logger: %v", err)
    }
}

// Get returns the global logger, initializing it on first use.
func Get() *zap.Logger {
    if l == nil {
        Init()
    }
    return l
}
