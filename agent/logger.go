package agent

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log 是全局可用的 SugaredLogger，未显式注入 logger 的组件都使用它
var Log *zap.SugaredLogger

// InitLogger 初始化 zap 日志：控制台输出 + 本地文件（支持滚动）
// filePath 为空时只写控制台
func InitLogger(filePath string) error {
	encCfg := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stack",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}
	encoder := zapcore.NewConsoleEncoder(encCfg)

	// 控制台只看 Info 以上，文件保留 Debug 便于排查
	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), zapcore.InfoLevel),
	}
	if filePath != "" {
		// 文件滚动策略：10MB 每文件，保留3个备份
		lj := &lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   false,
		}
		cores = append(cores, zapcore.NewCore(encoder.Clone(), zapcore.AddSync(lj), zapcore.DebugLevel))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	Log = logger.Sugar()
	return nil
}

// SyncLogger 清理和同步缓冲
func SyncLogger() {
	if Log != nil {
		_ = Log.Sync()
	}
}

// loggerOr 返回注入的 logger；未注入时退回全局 Log，再退回 Nop
func loggerOr(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l != nil {
		return l
	}
	if Log != nil {
		return Log
	}
	return zap.NewNop().Sugar()
}
