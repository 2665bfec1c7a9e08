// Package logger 提供 pathmgr 的统一日志
//
// 基于标准库 log/slog，每个子系统一个缓存的 Logger：
//
//	var log = logger.Logger("pathselect")
//
//	log.Info("路径已切换", "peer", peer.ShortString(), "to", "direct")
//
// 环境变量:
//
//	# 全局 info，holepunch 子系统 debug
//	PATHMGR_LOG_LEVEL=nat.holepunch=debug,info
//
//	# JSON 输出
//	PATHMGR_LOG_FORMAT=json
package logger

import (
	"io"
	"log/slog"
	"sync"
)

var (
	// loggers 子系统 -> *slog.Logger
	loggers sync.Map

	// handlers 子系统 -> *levelHandler，用于运行时调整级别
	handlers sync.Map
)

// Logger 获取指定子系统的 Logger
//
// 同一子系统多次调用返回同一实例。
func Logger(subsystem string) *slog.Logger {
	if l, ok := loggers.Load(subsystem); ok {
		return l.(*slog.Logger)
	}

	cfg := ConfigFromEnv()
	h := newLevelHandler(subsystem, cfg.LevelFor(subsystem), cfg)
	actual, loaded := loggers.LoadOrStore(subsystem, slog.New(h))
	if !loaded {
		handlers.Store(subsystem, h)
	}
	return actual.(*slog.Logger)
}

// SetLevel 运行时调整子系统日志级别
func SetLevel(subsystem string, level slog.Level) {
	if h, ok := handlers.Load(subsystem); ok {
		h.(*levelHandler).setLevel(level)
	}
}

// SetAllLevels 调整所有已创建子系统的日志级别
func SetAllLevels(level slog.Level) {
	handlers.Range(func(_, v any) bool {
		v.(*levelHandler).setLevel(level)
		return true
	})
}

// SetOutput 设置日志输出目标
//
// 已创建的 Logger 同样会切换到新的输出。
func SetOutput(w io.Writer) {
	outputMu.Lock()
	output = w
	outputMu.Unlock()
}

// Discard 返回丢弃所有日志的 Logger（用于测试）
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}
