package discord

import (
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"

	"warden/internal/automod"
	"warden/internal/shared/goroutine"
)

// purgeFetchLimit bounds how much channel history one purge inspects. Spam
// windows are tens of seconds; 100 messages is plenty.
const purgeFetchLimit = 100

// Service implements automod.Gateway.
var _ automod.Gateway = (*Service)(nil)

// DeleteMessage removes a single message.
func (s *Service) DeleteMessage(channelID, messageID string) error {
	if err := s.session.ChannelMessageDelete(channelID, messageID); err != nil {
		return classifyRESTError(err)
	}
	return nil
}

// PurgeByAuthor deletes the author's messages in the channel newer than
// since. Bulk deletion is used when more than one message qualifies; a
// failed bulk call falls back to one-by-one deletes so partial permissions
// still remove what they can.
func (s *Service) PurgeByAuthor(channelID, authorID string, since time.Time) (int, error) {
	messages, err := s.session.ChannelMessages(channelID, purgeFetchLimit, "", "", "")
	if err != nil {
		return 0, classifyRESTError(err)
	}

	var ids []string
	for _, m := range messages {
		if m.Author == nil || m.Author.ID != authorID {
			continue
		}
		if m.Timestamp.Before(since) {
			continue
		}
		ids = append(ids, m.ID)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if len(ids) > 1 {
		if err := s.session.ChannelMessagesBulkDelete(channelID, ids); err == nil {
			return len(ids), nil
		}
	}

	deleted := 0
	for _, id := range ids {
		err := s.session.ChannelMessageDelete(channelID, id)
		if err == nil {
			deleted++
			continue
		}
		if cerr := classifyRESTError(err); !errors.Is(cerr, automod.ErrUnknownMessage) {
			return deleted, cerr
		}
	}
	return deleted, nil
}

// Send posts a plain message, scheduling its removal when deleteAfter is
// positive.
func (s *Service) Send(channelID, content string, deleteAfter time.Duration) error {
	msg, err := s.session.ChannelMessageSend(channelID, content)
	if err != nil {
		return classifyRESTError(err)
	}
	if deleteAfter > 0 {
		messageID := msg.ID
		goroutine.SafeAfter(s.log, "auto-delete", deleteAfter, func() {
			if err := s.DeleteMessage(channelID, messageID); err != nil && !errors.Is(err, automod.ErrUnknownMessage) {
				s.log.Debug("auto-delete failed", "channel_id", channelID, "error", err)
			}
		})
	}
	return nil
}

// SendReport posts a moderator-facing embed.
func (s *Service) SendReport(channelID string, r automod.Report) error {
	embed := &discordgo.MessageEmbed{
		Title:       r.Title,
		Description: r.Description,
		Color:       r.Color,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	for _, f := range r.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: true,
		})
	}
	if _, err := s.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		return classifyRESTError(err)
	}
	return nil
}

// CanManageMessages reports whether the bot holds Manage Messages in the
// channel. Permission resolution failures count as no.
func (s *Service) CanManageMessages(channelID string) bool {
	if s.session.State == nil || s.session.State.User == nil {
		return false
	}
	perms, err := s.session.State.UserChannelPermissions(s.session.State.User.ID, channelID)
	if err != nil {
		return false
	}
	return perms&discordgo.PermissionManageMessages != 0
}
