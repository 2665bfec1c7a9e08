package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

// 环境变量名
const (
	EnvLevel     = "PATHMGR_LOG_LEVEL"
	EnvFormat    = "PATHMGR_LOG_FORMAT"
	EnvAddSource = "PATHMGR_LOG_ADD_SOURCE"
)

// Format 日志格式
type Format int

const (
	// FormatText 文本格式（默认）
	FormatText Format = iota
	// FormatJSON JSON 格式
	FormatJSON
)

// Config 日志配置
type Config struct {
	DefaultLevel slog.Level
	Subsystems   map[string]slog.Level
	Format       Format
	AddSource    bool
}

// LevelFor 返回子系统的日志级别
func (c *Config) LevelFor(subsystem string) slog.Level {
	if lvl, ok := c.Subsystems[subsystem]; ok {
		return lvl
	}
	return c.DefaultLevel
}

var (
	envConfig     *Config
	envConfigOnce sync.Once
)

// ConfigFromEnv 解析并缓存环境变量配置
//
//   - PATHMGR_LOG_LEVEL: 子系统=级别,...,默认级别  例如 nat.holepunch=debug,warn
//   - PATHMGR_LOG_FORMAT: text | json
//   - PATHMGR_LOG_ADD_SOURCE: true | false
func ConfigFromEnv() *Config {
	envConfigOnce.Do(func() {
		envConfig = ParseConfig(os.Getenv(EnvLevel), os.Getenv(EnvFormat), os.Getenv(EnvAddSource))
	})
	return envConfig
}

// ParseConfig 从字符串解析配置
func ParseConfig(levelSpec, format, addSource string) *Config {
	cfg := &Config{
		DefaultLevel: slog.LevelInfo,
		Subsystems:   make(map[string]slog.Level),
		Format:       FormatText,
	}

	for _, part := range strings.Split(levelSpec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, lvlName, scoped := strings.Cut(part, "=")
		if !scoped {
			if lvl, ok := parseLevel(name); ok {
				cfg.DefaultLevel = lvl
			}
			continue
		}
		if lvl, ok := parseLevel(lvlName); ok {
			cfg.Subsystems[strings.TrimSpace(name)] = lvl
		}
	}

	if strings.EqualFold(strings.TrimSpace(format), "json") {
		cfg.Format = FormatJSON
	}

	switch strings.ToLower(strings.TrimSpace(addSource)) {
	case "1", "true", "yes":
		cfg.AddSource = true
	}

	return cfg
}

// parseLevel 解析级别名称
func parseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// ResetConfig 清除缓存的环境配置（仅用于测试）
func ResetConfig() {
	envConfigOnce = sync.Once{}
	envConfig = nil
}
