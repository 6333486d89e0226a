// Package discord connects the automod coordinators to the Discord gateway
// via discordgo.
package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"warden/internal/automod"
	"warden/internal/automod/checks"
	"warden/internal/domain/guild"
	"warden/internal/shared/config"
	"warden/internal/shared/logger"
)

// Service owns the Discord session and routes gateway events into the
// coordinators.
type Service struct {
	session *discordgo.Session
	cfg     *config.DiscordConfig
	log     logger.Interface

	guilds guild.Repository
	spam   *automod.SpamGuard
	joins  *automod.JoinWatch

	started time.Time
}

// NewService creates the session and wires the event handlers. The session is
// not opened until Start.
func NewService(cfg *config.DiscordConfig, guilds guild.Repository, log logger.Interface) (*Service, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers

	svc := &Service{
		session: session,
		cfg:     cfg,
		log:     log.Named("discord"),
		guilds:  guilds,
	}

	session.AddHandler(svc.onReady)
	session.AddHandler(svc.onMessageCreate)
	session.AddHandler(svc.onGuildMemberAdd)
	session.AddHandler(svc.onGuildMemberRemove)

	return svc, nil
}

// SetCoordinators attaches the automod coordinators. Must be called before
// Start; the Service is the Gateway the coordinators talk back through, so
// construction is necessarily two-phase.
func (s *Service) SetCoordinators(spam *automod.SpamGuard, joins *automod.JoinWatch) {
	s.spam = spam
	s.joins = joins
}

// Start opens the gateway connection.
func (s *Service) Start() error {
	if s.spam == nil || s.joins == nil {
		return fmt.Errorf("coordinators not attached")
	}
	if err := s.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	s.started = time.Now()
	return nil
}

// Stop closes the gateway connection.
func (s *Service) Stop() error {
	return s.session.Close()
}

// GuildCount returns the number of guilds in the session state.
func (s *Service) GuildCount() int {
	if s.session.State == nil {
		return 0
	}
	return len(s.session.State.Guilds)
}

// Uptime returns how long the session has been open.
func (s *Service) Uptime() time.Duration {
	if s.started.IsZero() {
		return 0
	}
	return time.Since(s.started)
}

func (s *Service) onReady(session *discordgo.Session, _ *discordgo.Ready) {
	s.log.Info("gateway ready",
		"user", session.State.User.Username,
		"guilds", len(session.State.Guilds))

	if s.cfg.Status != "" {
		if err := session.UpdateWatchStatus(0, s.cfg.Status); err != nil {
			s.log.Warn("failed to set status", "error", err)
		}
	}
}

func (s *Service) onMessageCreate(session *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore DMs, bots and our own traffic.
	if m.GuildID == "" || m.Author == nil || m.Author.Bot {
		return
	}
	if session.State.User != nil && m.Author.ID == session.State.User.ID {
		return
	}

	s.spam.HandleMessage(automod.Message{
		ID:         m.ID,
		ChannelID:  m.ChannelID,
		GuildID:    m.GuildID,
		AuthorID:   m.Author.ID,
		AuthorName: m.Author.Username,
	}, time.Now())
}

func (s *Service) onGuildMemberAdd(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.User == nil || m.User.Bot {
		return
	}
	s.joins.HandleJoin(s.memberEvent(m.GuildID, m.Member), time.Now())
}

func (s *Service) onGuildMemberRemove(session *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if m.User == nil || m.User.Bot {
		return
	}
	member := m.Member
	// The remove payload usually lacks JoinedAt; the state cache still has
	// the member at this point.
	if cached, err := session.State.Member(m.GuildID, m.User.ID); err == nil && cached != nil {
		member = cached
	}
	s.joins.HandleLeave(s.memberEvent(m.GuildID, member), time.Now())
}

func (s *Service) memberEvent(guildID string, m *discordgo.Member) automod.MemberEvent {
	created, err := discordgo.SnowflakeTimestamp(m.User.ID)
	if err != nil {
		s.log.Warn("failed to parse snowflake", "user_id", m.User.ID, "error", err)
	}
	return automod.MemberEvent{
		GuildID: guildID,
		UserID:  m.User.ID,
		Member: checks.Member{
			DisplayName: displayName(m),
			CreatedAt:   created,
			JoinedAt:    m.JoinedAt,
		},
	}
}

func displayName(m *discordgo.Member) string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.User.GlobalName != "" {
		return m.User.GlobalName
	}
	return m.User.Username
}
