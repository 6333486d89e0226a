package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"warden/internal/domain/guild"
	apperrors "warden/internal/shared/errors"
	"warden/internal/shared/logger"
)

type guildConfigRepository struct {
	db  *gorm.DB
	log logger.Interface
}

// NewGuildConfigRepository creates a gorm-backed guild.Repository.
func NewGuildConfigRepository(db *gorm.DB, log logger.Interface) guild.Repository {
	return &guildConfigRepository{
		db:  db,
		log: log.Named("guildconfig"),
	}
}

func (r *guildConfigRepository) GetByGuildID(guildID string) (*guild.Config, error) {
	var cfg guild.Config
	err := r.db.Where("guild_id = ?", guildID).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("guild config not found", guildID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query guild config: %w", err)
	}
	return &cfg, nil
}

func (r *guildConfigRepository) Upsert(cfg *guild.Config) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"mod_log_channel_id", "home_channel_id", "updated_at"}),
	}).Create(cfg).Error
	if err != nil {
		return fmt.Errorf("failed to upsert guild config: %w", err)
	}
	r.log.Debug("guild config saved", "guild_id", cfg.GuildID)
	return nil
}

func (r *guildConfigRepository) List() ([]*guild.Config, error) {
	var configs []*guild.Config
	if err := r.db.Find(&configs).Error; err != nil {
		return nil, fmt.Errorf("failed to list guild configs: %w", err)
	}
	return configs, nil
}
