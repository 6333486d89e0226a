package automod

import (
	"errors"
	"fmt"
	"time"

	"warden/internal/automod/checks"
	"warden/internal/automod/ratelimit"
	"warden/internal/shared/goroutine"
	"warden/internal/shared/logger"
)

// reportPathNoticeTTL is the auto-delete for the in-channel warning on the
// purge path; the purge removes context anyway, so the notice can be short.
const reportPathNoticeTTL = 10 * time.Second

// SpamGuard watches message traffic and escalates spammers through three
// independent cooldowns:
//
//	spam    per author  — what counts as spamming at all
//	notify  per channel — how often the channel sees a warning
//	report  per guild   — how often moderators get an escalation
//
// The first over-limit message inside a report window costs the author only
// that message; a repeat escalation purges their recent history and pages
// the mod-log channel.
type SpamGuard struct {
	gw  Gateway
	log logger.Interface

	spam   *ratelimit.Limiter
	notify *ratelimit.Limiter
	report *ratelimit.Limiter

	// after schedules the detached follow-up purge; tests stub it out.
	after func(name string, delay time.Duration, fn func())
}

// NewSpamGuard builds the coordinator with its three cooldown policies.
func NewSpamGuard(gw Gateway, spam, notify, report ratelimit.Policy, log logger.Interface) *SpamGuard {
	g := &SpamGuard{
		gw:     gw,
		log:    log.Named("spamguard"),
		spam:   ratelimit.New("message-spam", spam),
		notify: ratelimit.New("spam-notify", notify),
		report: ratelimit.New("spam-report", report),
	}
	g.after = func(name string, delay time.Duration, fn func()) {
		goroutine.SafeAfter(g.log, name, delay, fn)
	}
	return g
}

// Limiters exposes the guard's cooldown buckets for stats and eviction.
func (g *SpamGuard) Limiters() []*ratelimit.Limiter {
	return []*ratelimit.Limiter{g.spam, g.notify, g.report}
}

// HandleMessage runs the spam state machine for one incoming message. All
// limiter decisions happen up front, before any gateway I/O.
func (g *SpamGuard) HandleMessage(msg Message, now time.Time) {
	retry := g.spam.Check(msg.AuthorID, now)
	if retry <= 0 {
		return
	}
	per := g.spam.Policy().Per

	deleted := 0
	escalated := g.report.Check(msg.GuildID, now) > 0

	if escalated {
		// Repeat escalation inside the report window: clear the author's
		// trailing spam burst and page the moderators.
		n, err := g.gw.PurgeByAuthor(msg.ChannelID, msg.AuthorID, now.Add(-per))
		deleted = n
		g.logDeleteErr("purge failed", msg, err)
		g.sendReport(msg, deleted)
	} else if g.gw.CanManageMessages(msg.ChannelID) {
		err := g.gw.DeleteMessage(msg.ChannelID, msg.ID)
		if err == nil {
			deleted = 1
		}
		g.logDeleteErr("delete failed", msg, err)
	}

	if g.notify.Check(msg.ChannelID, now) <= 0 {
		g.warn(msg, deleted, retry, per, escalated)
	}

	if escalated {
		// Messages sent between detection and the warning land after the
		// purge; sweep them once the spam window has drained.
		channelID, authorID := msg.ChannelID, msg.AuthorID
		g.after("spam-followup-purge", per+time.Second, func() {
			n, err := g.gw.PurgeByAuthor(channelID, authorID, time.Now().Add(-per))
			if err != nil && !errors.Is(err, ErrUnknownMessage) {
				g.log.Warn("follow-up purge failed", "channel_id", channelID, "error", err)
				return
			}
			if n > 0 {
				g.log.Info("follow-up purge", "channel_id", channelID, "author_id", authorID, "deleted", n)
			}
		})
	}
}

func (g *SpamGuard) warn(msg Message, deleted int, retry, per time.Duration, escalated bool) {
	var ttl time.Duration
	switch {
	case escalated:
		ttl = reportPathNoticeTTL
	case deleted > 0:
		ttl = per + 10*time.Second
	}

	content := fmt.Sprintf("<@%s> slow down.", msg.AuthorID)
	if deleted > 0 {
		content += fmt.Sprintf(" Removed %d message(s).", deleted)
	}
	content += fmt.Sprintf(" You can post again in %s.", retry.Round(time.Second))

	if err := g.gw.Send(msg.ChannelID, content, ttl); err != nil {
		g.log.Warn("spam warning send failed",
			"channel_id", msg.ChannelID,
			"author_id", msg.AuthorID,
			"error", err)
	}
}

func (g *SpamGuard) sendReport(msg Message, deleted int) {
	report := Report{
		Title:       "Spam escalation",
		Description: fmt.Sprintf("<@%s> kept spamming after a warning.", msg.AuthorID),
		Color:       checks.ColorRed,
		Fields: []ReportField{
			{Name: "User", Value: fmt.Sprintf("%s (%s)", msg.AuthorName, msg.AuthorID)},
			{Name: "Channel", Value: fmt.Sprintf("<#%s>", msg.ChannelID)},
			{Name: "Messages purged", Value: fmt.Sprintf("%d", deleted)},
		},
	}
	for _, channelID := range g.gw.ModLogChannels(msg.GuildID) {
		if err := g.gw.SendReport(channelID, report); err != nil {
			g.log.Warn("spam report send failed", "channel_id", channelID, "error", err)
		}
	}
}

// logDeleteErr logs delete/purge failures at a level matching their severity.
// Unknown-message means the target was already gone and is not worth noise;
// missing permissions is expected in locked-down channels and only degrades
// the response.
func (g *SpamGuard) logDeleteErr(what string, msg Message, err error) {
	switch {
	case err == nil, errors.Is(err, ErrUnknownMessage):
	case errors.Is(err, ErrMissingPermissions):
		g.log.Warn(what+": missing permissions", "channel_id", msg.ChannelID)
	default:
		g.log.Error(what, "channel_id", msg.ChannelID, "author_id", msg.AuthorID, "error", err)
	}
}
