package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	apperrors "warden/internal/shared/errors"
)

// modLogChannelNames are the channel names tried when a guild has no
// configured mod-log channel.
var modLogChannelNames = []string{"mod-log", "modlog", "mod-logs"}

// ModLogChannels returns the guild's moderation-log channels: the configured
// one when present, otherwise any text channel with a conventional mod-log
// name.
func (s *Service) ModLogChannels(guildID string) []string {
	cfg, err := s.guilds.GetByGuildID(guildID)
	if err == nil && cfg.ModLogChannelID != "" {
		return []string{cfg.ModLogChannelID}
	}
	if err != nil && !apperrors.IsNotFoundError(err) {
		s.log.Warn("guild config lookup failed", "guild_id", guildID, "error", err)
	}

	var ids []string
	for _, ch := range s.textChannels(guildID) {
		name := strings.ToLower(ch.Name)
		for _, candidate := range modLogChannelNames {
			if name == candidate {
				ids = append(ids, ch.ID)
				break
			}
		}
	}
	return ids
}

// HomeChannels returns general-audience channels for member-facing notices,
// best candidate first: the configured home channel, the guild's system
// channel, then the first text channel.
func (s *Service) HomeChannels(guildID string) []string {
	var ids []string

	cfg, err := s.guilds.GetByGuildID(guildID)
	if err == nil && cfg.HomeChannelID != "" {
		ids = append(ids, cfg.HomeChannelID)
	} else if err != nil && !apperrors.IsNotFoundError(err) {
		s.log.Warn("guild config lookup failed", "guild_id", guildID, "error", err)
	}

	g, err := s.session.State.Guild(guildID)
	if err != nil {
		return ids
	}
	if g.SystemChannelID != "" {
		ids = append(ids, g.SystemChannelID)
	}
	for _, ch := range g.Channels {
		if ch.Type == discordgo.ChannelTypeGuildText {
			ids = append(ids, ch.ID)
			break
		}
	}
	return dedupe(ids)
}

func (s *Service) textChannels(guildID string) []*discordgo.Channel {
	g, err := s.session.State.Guild(guildID)
	if err != nil {
		return nil
	}
	var out []*discordgo.Channel
	for _, ch := range g.Channels {
		if ch.Type == discordgo.ChannelTypeGuildText {
			out = append(out, ch)
		}
	}
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
