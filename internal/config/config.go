package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type RPCConfig struct {
	MaxRetries  int           `mapstructure:"max_retries"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	CallTimeout time.Duration `mapstructure:"call_timeout"`
}

type HubConfig struct {
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	CallBudget int           `mapstructure:"call_budget"`
	CallWindow time.Duration `mapstructure:"call_window"`
}

type Config struct {
	Mode       string    `mapstructure:"mode"`
	Port       int       `mapstructure:"port"`
	StaticPath string    `mapstructure:"static_path"`
	Secret     string    `mapstructure:"secret"`
	RPC        RPCConfig `mapstructure:"rpc"`
	Hub        HubConfig `mapstructure:"hub"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("rpc.max_retries", 3)
	v.SetDefault("rpc.base_delay", "2s")
	v.SetDefault("rpc.call_timeout", "0s")
	v.SetDefault("hub.read_limit", 32768)
	v.SetDefault("hub.ping_period", "54s")
	v.SetDefault("hub.call_budget", 30)
	v.SetDefault("hub.call_window", "10s")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", fileName, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
