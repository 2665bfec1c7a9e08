package metrics

// Config 指标存储配置
type Config struct {
	// WindowSize 每个 Peer 保留的最近尝试数
	WindowSize int

	// GlobalWindowSize 全局窗口大小
	GlobalWindowSize int

	// MaxPeers 同时跟踪的 Peer 上限（LRU 淘汰）
	MaxPeers int

	// EWMAAlpha RTT 与打洞耗时的平滑系数 (0-1]
	EWMAAlpha float64
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		WindowSize:       20,
		GlobalWindowSize: 256,
		MaxPeers:         4096,
		EWMAAlpha:        0.2,
	}
}

// Validate 修正非法值为默认值
func (c *Config) Validate() {
	def := DefaultConfig()
	if c.WindowSize <= 0 {
		c.WindowSize = def.WindowSize
	}
	if c.GlobalWindowSize <= 0 {
		c.GlobalWindowSize = def.GlobalWindowSize
	}
	if c.MaxPeers <= 0 {
		c.MaxPeers = def.MaxPeers
	}
	if c.EWMAAlpha <= 0 || c.EWMAAlpha > 1 {
		c.EWMAAlpha = def.EWMAAlpha
	}
}
