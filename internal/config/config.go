package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

type AgentConfig struct {
	Name            string `mapstructure:"name"`
	Version         string `mapstructure:"version"`
	HostVersion     string `mapstructure:"host_version"`
	AuthMode        bool   `mapstructure:"auth_mode"`
	ReportURL       string `mapstructure:"report_url"` // empty = default collection endpoint
	SettingsFile    string `mapstructure:"settings_file"`
	IntervalMinutes int    `mapstructure:"interval_minutes"`
	HealthPort      string `mapstructure:"health_port"`
}

type Config struct {
	Agent   AgentConfig   `mapstructure:"agent"`
	Logging LoggingConfig `mapstructure:"logging"`
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// env overrides: STATSLITE_AGENT_NAME etc. (optional)
	v.SetEnvPrefix("STATSLITE")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("agent.settings_file", "statslite.properties")
	v.SetDefault("agent.interval_minutes", 15)
	v.SetDefault("agent.health_port", "8085")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// quick sanity checks
	if cfg.Agent.Name == "" {
		return nil, fmt.Errorf("agent.name is required")
	}
	if cfg.Agent.IntervalMinutes < 1 {
		cfg.Agent.IntervalMinutes = 15
	}

	return &cfg, nil
}

func (a *AgentConfig) Interval() time.Duration {
	return time.Duration(a.IntervalMinutes) * time.Minute
}
