package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 描述客户端工具在启动阶段需要加载的核心配置。
type Config struct {
	Endpoint EndpointConfig `yaml:"endpoint"`
	Logger   LoggerConfig   `yaml:"logger"`
	Cache    CacheConfig    `yaml:"cache"`
	Audit    AuditConfig    `yaml:"audit"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Alerting AlertingConfig `yaml:"alerting"`
}

// EndpointConfig 包含访问区块链节点所需的 RPC 地址。
type EndpointConfig struct {
	// URL 支持 http(s)、ws(s) 以及 IPC 路径。
	URL string `yaml:"url"`
	// Transport 选择 http 或 dial；留空时按 URL 前缀推断。
	Transport string `yaml:"transport"`
}

// LoggerConfig 控制日志输出。
type LoggerConfig struct {
	Level       string   `yaml:"level"`
	Format      string   `yaml:"format"`
	OutputPaths []string `yaml:"output_paths"`
}

// CacheConfig 控制基于 Redis 的响应缓存。
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Address  string        `yaml:"address"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
	Methods  []string      `yaml:"methods"`
}

// AuditConfig 控制审计记录的落地方式。
type AuditConfig struct {
	// Driver 可选 none、mysql、amqp。
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	URL    string `yaml:"url"`
	Queue  string `yaml:"queue"`
}

// AlertingConfig 控制故障告警投递。
type AlertingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Webhook string `yaml:"webhook"`
}

// MetricsConfig 控制指标端点。
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// Load 负责解析指定路径的 YAML 配置文件。
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("配置文件路径为空")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults 在用户未填写部分字段时设置合理的默认值。
func (c *Config) applyDefaults() {
	if c.Endpoint.URL == "" {
		c.Endpoint.URL = "http://127.0.0.1:8545"
	}

	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}

	if c.Audit.Driver == "" {
		c.Audit.Driver = "none"
	}

	if c.Cache.TTL <= 0 {
		c.Cache.TTL = time.Hour
	}

	if c.Metrics.Address == "" {
		c.Metrics.Address = ":9190"
	}
}
