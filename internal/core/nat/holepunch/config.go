package holepunch

import "time"

// Config 打洞编排配置
type Config struct {
	// BaseBackoff 首次失败后的退避
	BaseBackoff time.Duration

	// MaxBackoff 退避上限
	MaxBackoff time.Duration

	// MaxConcurrent 全局同时进行的尝试数上限
	MaxConcurrent int

	// AttemptTimeout 无历史数据时的单次尝试超时
	AttemptTimeout time.Duration

	// MaxAttemptTimeout 由历史耗时推算的超时上限
	MaxAttemptTimeout time.Duration

	// ValidateTimeout 提升前直连验证的超时
	ValidateTimeout time.Duration

	// EvalInterval 周期评估间隔
	EvalInterval time.Duration

	// IdleExpiry 空闲状态回收时间
	IdleExpiry time.Duration

	// StartRate 每秒允许开始的尝试数
	StartRate float64

	// StartBurst 令牌桶容量
	StartBurst int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		BaseBackoff:       5 * time.Second,
		MaxBackoff:        10 * time.Minute,
		MaxConcurrent:     8,
		AttemptTimeout:    15 * time.Second,
		MaxAttemptTimeout: 30 * time.Second,
		ValidateTimeout:   5 * time.Second,
		EvalInterval:      5 * time.Second,
		IdleExpiry:        30 * time.Minute,
		StartRate:         4,
		StartBurst:        8,
	}
}

// Validate 修正非法值为默认值
func (c *Config) Validate() {
	def := DefaultConfig()
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = def.BaseBackoff
	}
	if c.MaxBackoff < c.BaseBackoff {
		c.MaxBackoff = c.BaseBackoff
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = def.MaxConcurrent
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = def.AttemptTimeout
	}
	if c.MaxAttemptTimeout < c.AttemptTimeout {
		c.MaxAttemptTimeout = c.AttemptTimeout
	}
	if c.ValidateTimeout <= 0 {
		c.ValidateTimeout = def.ValidateTimeout
	}
	if c.EvalInterval <= 0 {
		c.EvalInterval = def.EvalInterval
	}
	if c.IdleExpiry <= 0 {
		c.IdleExpiry = def.IdleExpiry
	}
	if c.StartRate <= 0 {
		c.StartRate = def.StartRate
	}
	if c.StartBurst <= 0 {
		c.StartBurst = def.StartBurst
	}
}
