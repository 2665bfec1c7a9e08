package relay

import "time"

// Config 中继建立配置
type Config struct {
	// ConnectTimeout 单次建立中继的超时
	ConnectTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		ConnectTimeout: 30 * time.Second,
	}
}

// Validate 修正非法值为默认值
func (c *Config) Validate() {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConfig().ConnectTimeout
	}
}
