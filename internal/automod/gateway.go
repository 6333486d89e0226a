// Package automod contains the automated moderation core: cooldown-driven
// spam detection, heuristic member checks and the coordinators that turn
// detections into deletions, warnings and moderator reports.
package automod

import (
	"errors"
	"time"

	"warden/internal/automod/checks"
)

// Sentinel errors a Gateway implementation wraps around platform failures so
// the coordinators can degrade gracefully without knowing the platform's
// error codes.
var (
	// ErrUnknownMessage means the target message no longer exists. Deletes
	// racing the user (or another moderator) hit this constantly; it is
	// always safe to ignore.
	ErrUnknownMessage = errors.New("unknown message")
	// ErrMissingPermissions means the bot lacks the permission for the call.
	ErrMissingPermissions = errors.New("missing permissions")
)

// Message is the platform-independent view of an incoming message.
type Message struct {
	ID         string
	ChannelID  string
	GuildID    string
	AuthorID   string
	AuthorName string
}

// MemberEvent is the platform-independent view of a join or leave.
type MemberEvent struct {
	GuildID string
	UserID  string
	Member  checks.Member
}

// Report is a moderator-facing embed.
type Report struct {
	Title       string
	Description string
	Color       int
	Fields      []ReportField
}

// ReportField is one embed field.
type ReportField struct {
	Name  string
	Value string
}

// Gateway is the narrow surface of the chat platform the coordinators need.
// Calls may block on network I/O; coordinators always settle limiter state
// before invoking any of these.
type Gateway interface {
	// DeleteMessage removes a single message.
	DeleteMessage(channelID, messageID string) error
	// PurgeByAuthor bulk-deletes the author's messages in the channel newer
	// than since, returning how many were removed.
	PurgeByAuthor(channelID, authorID string, since time.Time) (int, error)
	// Send posts a plain message. A positive deleteAfter schedules its
	// removal after that duration.
	Send(channelID, content string, deleteAfter time.Duration) error
	// SendReport posts a moderator-facing embed.
	SendReport(channelID string, r Report) error
	// CanManageMessages reports whether the bot may delete others' messages
	// in the channel.
	CanManageMessages(channelID string) bool
	// ModLogChannels returns the guild's moderation-log channel IDs.
	ModLogChannels(guildID string) []string
	// HomeChannels returns the guild's general-audience channel IDs, best
	// candidate first.
	HomeChannels(guildID string) []string
}
