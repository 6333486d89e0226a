package automod

import (
	"fmt"
	"sync"
	"time"

	"warden/internal/automod/checks"
	"warden/internal/automod/ratelimit"
	"warden/internal/shared/logger"
)

// JoinWatch handles member joins and leaves. Rapid rejoin patterns trip a
// per-user cooldown and turn into a guild escalation report (itself on a
// per-guild cooldown) instead of the routine join/leave log entry. Normal
// events get a mod-log embed summarizing the heuristic checks.
type JoinWatch struct {
	gw     Gateway
	log    logger.Interface
	engine *checks.Engine

	join   *ratelimit.Limiter
	report *ratelimit.Limiter

	intolerance int

	// naggedMu guards nagged: user IDs already prompted about an unreadable
	// display name. One prompt per user per process lifetime.
	naggedMu sync.Mutex
	nagged   map[string]struct{}
}

// NewJoinWatch builds the coordinator.
func NewJoinWatch(gw Gateway, engine *checks.Engine, join, report ratelimit.Policy, intolerance int, log logger.Interface) *JoinWatch {
	return &JoinWatch{
		gw:          gw,
		log:         log.Named("joinwatch"),
		engine:      engine,
		join:        ratelimit.New("join", join),
		report:      ratelimit.New("join-report", report),
		intolerance: intolerance,
		nagged:      make(map[string]struct{}),
	}
}

// Limiters exposes the watch's cooldown buckets for stats and eviction.
func (w *JoinWatch) Limiters() []*ratelimit.Limiter {
	return []*ratelimit.Limiter{w.join, w.report}
}

// HandleJoin processes a member join.
func (w *JoinWatch) HandleJoin(ev MemberEvent, now time.Time) {
	if w.join.Check(ev.UserID, now) > 0 {
		w.reportJoinSpam(ev, now)
		return
	}

	evals := w.engine.Run(checks.JoinChecks, ev.Member, now)
	w.postLog("Member joined", ev, evals)

	for _, e := range evals {
		if e.Name == checks.CheckBlankName && e.Result.Verdict == checks.Fail {
			w.nagBlankName(ev)
			break
		}
	}
}

// HandleLeave processes a member leave. Leaves feed the same per-user join
// cooldown: a join/leave/join cycle is the pattern being hunted.
func (w *JoinWatch) HandleLeave(ev MemberEvent, now time.Time) {
	if w.join.Check(ev.UserID, now) > 0 {
		w.reportJoinSpam(ev, now)
		return
	}

	evals := w.engine.Run(checks.LeaveChecks, ev.Member, now)
	w.postLog("Member left", ev, evals)
}

// reportJoinSpam suppresses the routine log entry and, at most once per
// report window per guild, pages the moderators.
func (w *JoinWatch) reportJoinSpam(ev MemberEvent, now time.Time) {
	if w.report.Check(ev.GuildID, now) > 0 {
		w.log.Debug("join-spam report suppressed", "guild_id", ev.GuildID, "user_id", ev.UserID)
		return
	}

	report := Report{
		Title:       "Join spam",
		Description: fmt.Sprintf("<@%s> is joining and leaving repeatedly.", ev.UserID),
		Color:       checks.ColorRed,
		Fields: []ReportField{
			{Name: "User", Value: fmt.Sprintf("%s (%s)", ev.Member.DisplayName, ev.UserID)},
			{Name: "Account created", Value: ev.Member.CreatedAt.UTC().Format(time.DateTime)},
		},
	}
	for _, channelID := range w.gw.ModLogChannels(ev.GuildID) {
		if err := w.gw.SendReport(channelID, report); err != nil {
			w.log.Warn("join-spam report send failed", "channel_id", channelID, "error", err)
		}
	}
}

func (w *JoinWatch) postLog(title string, ev MemberEvent, evals []checks.Evaluation) {
	failed := checks.Failed(evals)
	total := checks.Applicable(evals)

	report := Report{
		Title:       title,
		Description: fmt.Sprintf("<@%s> (%s)", ev.UserID, ev.Member.DisplayName),
		Color:       checks.SeverityColor(failed, total, w.intolerance),
	}
	for _, e := range evals {
		report.Fields = append(report.Fields, ReportField{
			Name:  e.Name,
			Value: fmt.Sprintf("%s: %s", e.Result.Verdict, e.Result.Detail),
		})
	}

	for _, channelID := range w.gw.ModLogChannels(ev.GuildID) {
		if err := w.gw.SendReport(channelID, report); err != nil {
			w.log.Warn("member log send failed", "channel_id", channelID, "error", err)
		}
	}
}

// nagBlankName asks the member, once, to pick a readable nickname. The
// dedup mark is set before the send so a slow gateway cannot double-post.
func (w *JoinWatch) nagBlankName(ev MemberEvent) {
	w.naggedMu.Lock()
	if _, done := w.nagged[ev.UserID]; done {
		w.naggedMu.Unlock()
		return
	}
	w.nagged[ev.UserID] = struct{}{}
	w.naggedMu.Unlock()

	homes := w.gw.HomeChannels(ev.GuildID)
	if len(homes) == 0 {
		return
	}
	content := fmt.Sprintf("<@%s> welcome! Your display name is hard to read or mention; please set a readable nickname.", ev.UserID)
	if err := w.gw.Send(homes[0], content, 0); err != nil {
		w.log.Warn("nickname prompt send failed", "channel_id", homes[0], "error", err)
	}
}
