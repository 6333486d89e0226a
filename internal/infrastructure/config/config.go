package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	sharedConfig "warden/internal/shared/config"
)

type Config struct {
	Server   sharedConfig.ServerConfig   `mapstructure:"server"`
	Database sharedConfig.DatabaseConfig `mapstructure:"database"`
	Logger   sharedConfig.LoggerConfig   `mapstructure:"logger"`
	Discord  sharedConfig.DiscordConfig  `mapstructure:"discord"`
	Automod  sharedConfig.AutomodConfig  `mapstructure:"automod"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables
func Load(env string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	viper.SetEnvPrefix("WARDEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// The token can be supplied entirely through the environment, so a
		// missing config file is not fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		viper.Set("server.mode", env)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults (status API)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "release")

	// Database defaults
	viper.SetDefault("database.path", "warden.db")
	viper.SetDefault("database.max_idle_conns", 2)
	viper.SetDefault("database.max_open_conns", 10)
	viper.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	// Discord defaults (token must come from config or WARDEN_DISCORD_TOKEN)
	viper.SetDefault("discord.token", "")
	viper.SetDefault("discord.status", "watching the gates")

	// Automod cooldown policies
	viper.SetDefault("automod.spam.rate", 10)
	viper.SetDefault("automod.spam.per_seconds", 30)
	viper.SetDefault("automod.spam_notify.rate", 1)
	viper.SetDefault("automod.spam_notify.per_seconds", 10)
	viper.SetDefault("automod.spam_report.rate", 1)
	viper.SetDefault("automod.spam_report.per_seconds", 300)
	viper.SetDefault("automod.join.rate", 2)
	viper.SetDefault("automod.join.per_seconds", 3600)
	viper.SetDefault("automod.join_report.rate", 1)
	viper.SetDefault("automod.join_report.per_seconds", 900)

	// Automod heuristic thresholds
	viper.SetDefault("automod.blank_name_threshold", 2)
	viper.SetDefault("automod.recent_join_hours", 72)
	viper.SetDefault("automod.immediate_join_minutes", 60)
	viper.SetDefault("automod.intolerance", 1)

	// Bucket eviction
	viper.SetDefault("automod.evict_interval_minutes", 10)
}
