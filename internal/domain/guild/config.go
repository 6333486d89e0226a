// Package guild holds per-guild configuration: where moderation logs and
// member-facing notices go.
package guild

import "time"

// Config is the persisted per-guild channel configuration. Guilds without a
// row fall back to name-based channel discovery in the gateway adapter.
type Config struct {
	ID              uint   `gorm:"primarykey"`
	GuildID         string `gorm:"uniqueIndex;size:32;not null"`
	ModLogChannelID string `gorm:"size:32"`
	HomeChannelID   string `gorm:"size:32"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName sets the table name for GORM.
func (Config) TableName() string {
	return "guild_configs"
}

// Repository is the persistence port for guild configuration.
type Repository interface {
	// GetByGuildID returns the config for a guild, or a not-found error.
	GetByGuildID(guildID string) (*Config, error)
	// Upsert creates or updates the config for cfg.GuildID.
	Upsert(cfg *Config) error
	// List returns all configured guilds.
	List() ([]*Config, error)
}
