// Package config loads the adkit configuration: defaults, then a YAML file,
// then ADKIT_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/coderi421/adkit/internal/logger"
	"github.com/coderi421/adkit/soap"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "ADKIT_"

type Config struct {
	Service   ServiceConfig   `yaml:"service" envPrefix:"SERVICE_"`
	Log       logger.Config   `yaml:"log" envPrefix:"LOG_"`
	Server    ServerConfig    `yaml:"server" envPrefix:"SERVER_"`
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"TELEMETRY_"`
	Snapshot  SnapshotConfig  `yaml:"snapshot" envPrefix:"SNAPSHOT_"`
}

// ServiceConfig 远端广告服务
type ServiceConfig struct {
	Endpoint        string        `yaml:"endpoint" env:"ENDPOINT" validate:"required,url"`
	Version         string        `yaml:"version" env:"VERSION" validate:"required"`
	NetworkCode     string        `yaml:"networkCode" env:"NETWORK_CODE"`
	ApplicationName string        `yaml:"applicationName" env:"APPLICATION_NAME"`
	Token           string        `yaml:"token" env:"TOKEN"`
	Timeout         time.Duration `yaml:"timeout" env:"TIMEOUT" validate:"gt=0"`
	// SlowThreshold 超过这个时间的调用打 warn 日志
	SlowThreshold time.Duration `yaml:"slowThreshold" env:"SLOW_THRESHOLD"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr" env:"ADDR" validate:"required"`
	SessionStore string        `yaml:"sessionStore" env:"SESSION_STORE" validate:"oneof=memory redis"`
	RedisAddr    string        `yaml:"redisAddr" env:"REDIS_ADDR" validate:"required_if=SessionStore redis"`
	SessionTTL   time.Duration `yaml:"sessionTTL" env:"SESSION_TTL" validate:"gt=0"`
	// PanelCacheSize 每个进程缓存的面板结果数量
	PanelCacheSize int           `yaml:"panelCacheSize" env:"PANEL_CACHE_SIZE" validate:"gte=0"`
	GracePeriod    time.Duration `yaml:"gracePeriod" env:"GRACE_PERIOD"`
}

type TelemetryConfig struct {
	Exporter    string  `yaml:"exporter" env:"EXPORTER" validate:"oneof=none jaeger zipkin"`
	Endpoint    string  `yaml:"endpoint" env:"ENDPOINT" validate:"required_unless=Exporter none"`
	ServiceName string  `yaml:"serviceName" env:"SERVICE_NAME"`
	SampleRatio float64 `yaml:"sampleRatio" env:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

type SnapshotConfig struct {
	Driver string `yaml:"driver" env:"DRIVER" validate:"oneof=sqlite3 mysql"`
	DSN    string `yaml:"dsn" env:"DSN"`
}

// Default 没有配置文件的时候也能跑起来，只需要 token
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			Endpoint:        "https://www.google.com/apis/ads/publisher/" + soap.DefaultVersion,
			Version:         soap.DefaultVersion,
			ApplicationName: "adkit",
			Timeout:         time.Minute,
			SlowThreshold:   5 * time.Second,
		},
		Log: logger.Config{
			Level:       "info",
			Format:      "console",
			Output:      "stderr",
			ServiceName: "adkit",
		},
		Server: ServerConfig{
			Addr:           ":8080",
			SessionStore:   "memory",
			SessionTTL:     30 * time.Minute,
			PanelCacheSize: 128,
			GracePeriod:    10 * time.Second,
		},
		Telemetry: TelemetryConfig{
			Exporter:    "none",
			ServiceName: "adkit",
			SampleRatio: 1,
		},
		Snapshot: SnapshotConfig{
			Driver: "sqlite3",
			DSN:    "file:adkit.db?cache=shared",
		},
	}
}

// Load 按顺序叠加：默认值，path 指向的 YAML 文件，ADKIT_ 开头的环境变量。
// path 为空或者文件不存在的时候跳过文件这一层
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := mergeFromFile(cfg, path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: validation error: %w", err)
	}
	return nil
}
