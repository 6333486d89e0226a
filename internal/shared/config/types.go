package config

import "fmt"

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Path            string `mapstructure:"path" validate:"required"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type DiscordConfig struct {
	Token  string `mapstructure:"token" validate:"required"`
	Status string `mapstructure:"status"`
}

// CooldownConfig describes one rate-limit policy: at most Rate events per
// PerSeconds-second window for a single key.
type CooldownConfig struct {
	Rate       int `mapstructure:"rate" validate:"gte=1"`
	PerSeconds int `mapstructure:"per_seconds" validate:"gte=1"`
}

type AutomodConfig struct {
	Spam       CooldownConfig `mapstructure:"spam"`
	SpamNotify CooldownConfig `mapstructure:"spam_notify"`
	SpamReport CooldownConfig `mapstructure:"spam_report"`
	Join       CooldownConfig `mapstructure:"join"`
	JoinReport CooldownConfig `mapstructure:"join_report"`

	BlankNameThreshold   int `mapstructure:"blank_name_threshold" validate:"gte=1"`
	RecentJoinHours      int `mapstructure:"recent_join_hours" validate:"gte=1"`
	ImmediateJoinMinutes int `mapstructure:"immediate_join_minutes" validate:"gte=1"`
	Intolerance          int `mapstructure:"intolerance" validate:"gte=0"`

	EvictIntervalMinutes int `mapstructure:"evict_interval_minutes" validate:"gte=1"`
}
