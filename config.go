package pathmgr

import "github.com/dep2p/go-pathmgr/config"

// Config 路径管理配置
type Config = config.Config

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return config.DefaultConfig()
}

// ConfigFromJSON 从 JSON 加载配置，缺失字段取默认值
func ConfigFromJSON(data []byte) (Config, error) {
	cfg, err := config.FromJSON(data)
	if err != nil {
		return Config{}, err
	}
	return *cfg, nil
}
