// Package config 提供路径管理器的配置
//
// 配置在进程内只构造一次，构造后不可变，并以只读方式共享给所有组件：
//   - MaxRelayRTTMs: 中继 RTT 超过该值才考虑打洞
//   - MinPunchSuccessRate: 成功率低于该值时暂停打洞（按 Peer 或全局）
//   - PunchBackoffMultiplier: 每次打洞失败后重试延迟的乘数
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//
//	// 从 JSON 加载（缺失字段取默认值）
//	cfg, err := config.FromJSON(data)
package config

import (
	"errors"
	"fmt"
	"math"
)

// 默认值（兼容性约定，不可更改）
const (
	// DefaultMaxRelayRTTMs 默认中继 RTT 阈值（毫秒）
	DefaultMaxRelayRTTMs uint64 = 200

	// DefaultMinPunchSuccessRate 默认最低打洞成功率
	DefaultMinPunchSuccessRate = 0.3

	// DefaultPunchBackoffMultiplier 默认退避乘数
	DefaultPunchBackoffMultiplier = 2.0
)

// 配置错误
var (
	ErrNilConfig             = errors.New("config: nil config")
	ErrInvalidSuccessRate    = errors.New("config: min_punch_success_rate must be within [0, 1]")
	ErrInvalidBackoffFactor  = errors.New("config: punch_backoff_multiplier must be >= 1")
	ErrInvalidRelayThreshold = errors.New("config: max_relay_rtt_ms must be > 0")
)

// Config 路径管理器配置
type Config struct {
	// MaxRelayRTTMs 中继 RTT 阈值（毫秒），超过才考虑打洞
	// 默认值: 200
	MaxRelayRTTMs uint64 `json:"max_relay_rtt_ms"`

	// MinPunchSuccessRate 最低打洞成功率
	// 样本足够且观测成功率低于此值时暂停打洞
	// 默认值: 0.3
	MinPunchSuccessRate float64 `json:"min_punch_success_rate"`

	// PunchBackoffMultiplier 打洞失败后的退避乘数
	// 默认值: 2.0
	PunchBackoffMultiplier float64 `json:"punch_backoff_multiplier"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	cfg := DefaultConfig()
	return &cfg
}

// DefaultConfig 返回默认配置值
func DefaultConfig() Config {
	return Config{
		MaxRelayRTTMs:          DefaultMaxRelayRTTMs,
		MinPunchSuccessRate:    DefaultMinPunchSuccessRate,
		PunchBackoffMultiplier: DefaultPunchBackoffMultiplier,
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if c.MaxRelayRTTMs == 0 {
		return ErrInvalidRelayThreshold
	}
	if math.IsNaN(c.MinPunchSuccessRate) || c.MinPunchSuccessRate < 0 || c.MinPunchSuccessRate > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidSuccessRate, c.MinPunchSuccessRate)
	}
	if math.IsNaN(c.PunchBackoffMultiplier) || math.IsInf(c.PunchBackoffMultiplier, 0) || c.PunchBackoffMultiplier < 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidBackoffFactor, c.PunchBackoffMultiplier)
	}
	return nil
}

// Clone 返回配置副本
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
