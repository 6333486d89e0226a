package automod

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warden/internal/automod/checks"
	"warden/internal/automod/ratelimit"
	"warden/internal/shared/logger"
)

var (
	joinPolicy       = ratelimit.Policy{Rate: 2, Per: time.Hour}
	joinReportPolicy = ratelimit.Policy{Rate: 1, Per: 15 * time.Minute}
)

func newTestWatch(gw Gateway) *JoinWatch {
	engine := checks.NewEngine(checks.Config{
		BlankNameThreshold: 2,
		RecentJoin:         72 * time.Hour,
		ImmediateJoin:      time.Hour,
	})
	return NewJoinWatch(gw, engine, joinPolicy, joinReportPolicy, 1, logger.NewLogger())
}

func joinEvent(userID string, created, joined time.Time) MemberEvent {
	return MemberEvent{
		GuildID: "guild-1",
		UserID:  userID,
		Member: checks.Member{
			DisplayName: "regular name",
			CreatedAt:   created,
			JoinedAt:    joined,
		},
	}
}

func TestJoinWatch_NormalJoinLogsChecks(t *testing.T) {
	gw := newFakeGateway()
	gw.modLogs["guild-1"] = []string{"modlog-1"}
	w := newTestWatch(gw)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	ev := joinEvent("user-1", now.Add(-90*24*time.Hour), now)
	w.HandleJoin(ev, now)

	_, _, _, reports := gw.snapshot()
	require.Len(t, reports, 1)
	r := reports[0].Report
	assert.Equal(t, "Member joined", r.Title)
	require.Len(t, r.Fields, len(checks.JoinChecks))
	assert.Equal(t, checks.CheckBlankName, r.Fields[0].Name)
	assert.Contains(t, r.Fields[0].Value, "pass")
}

func TestJoinWatch_JoinSpamEscalates(t *testing.T) {
	gw := newFakeGateway()
	gw.modLogs["guild-1"] = []string{"modlog-1"}
	w := newTestWatch(gw)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	created := base.Add(-90 * 24 * time.Hour)

	w.HandleJoin(joinEvent("user-1", created, base), base)
	w.HandleJoin(joinEvent("user-1", created, base.Add(10*time.Minute)), base.Add(10*time.Minute))

	_, _, _, reports := gw.snapshot()
	require.Len(t, reports, 2, "first two joins log normally")

	// Third join within the hour: escalation report only, no join log.
	w.HandleJoin(joinEvent("user-1", created, base.Add(20*time.Minute)), base.Add(20*time.Minute))

	_, _, _, reports = gw.snapshot()
	require.Len(t, reports, 3)
	assert.Equal(t, "Join spam", reports[2].Report.Title)

	// Fourth join five minutes later: still join-spam, but the guild report
	// cooldown suppresses the duplicate page.
	w.HandleJoin(joinEvent("user-1", created, base.Add(25*time.Minute)), base.Add(25*time.Minute))

	_, _, _, reports = gw.snapshot()
	assert.Len(t, reports, 3)
}

func TestJoinWatch_LeaveFeedsSameCooldown(t *testing.T) {
	gw := newFakeGateway()
	gw.modLogs["guild-1"] = []string{"modlog-1"}
	w := newTestWatch(gw)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	created := base.Add(-90 * 24 * time.Hour)

	w.HandleJoin(joinEvent("user-1", created, base), base)
	w.HandleLeave(joinEvent("user-1", created, base), base.Add(5*time.Minute))
	// Third event within the hour is join-spam regardless of direction.
	w.HandleJoin(joinEvent("user-1", created, base.Add(6*time.Minute)), base.Add(6*time.Minute))

	_, _, _, reports := gw.snapshot()
	require.Len(t, reports, 3)
	assert.Equal(t, "Member joined", reports[0].Report.Title)
	assert.Equal(t, "Member left", reports[1].Report.Title)
	assert.Equal(t, "Join spam", reports[2].Report.Title)
}

func TestJoinWatch_LeaveRunsFastLeaveCheck(t *testing.T) {
	gw := newFakeGateway()
	gw.modLogs["guild-1"] = []string{"modlog-1"}
	w := newTestWatch(gw)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	ev := joinEvent("user-1", now.Add(-90*24*time.Hour), now.Add(-10*time.Minute))
	w.HandleLeave(ev, now)

	_, _, _, reports := gw.snapshot()
	require.Len(t, reports, 1)
	r := reports[0].Report
	assert.Equal(t, "Member left", r.Title)
	require.Len(t, r.Fields, 1)
	assert.Equal(t, checks.CheckFastLeave, r.Fields[0].Name)
	assert.Contains(t, r.Fields[0].Value, "fail")
}

func TestJoinWatch_BlankNameNagOnce(t *testing.T) {
	gw := newFakeGateway()
	gw.modLogs["guild-1"] = []string{"modlog-1"}
	gw.homes["guild-1"] = []string{"general", "random"}
	w := newTestWatch(gw)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	ev := joinEvent("user-1", base.Add(-90*24*time.Hour), base)
	ev.Member.DisplayName = "   "

	w.HandleJoin(ev, base)
	w.HandleJoin(ev, base.Add(30*time.Minute))

	_, _, sends, _ := gw.snapshot()
	require.Len(t, sends, 1, "nag exactly once")
	assert.Equal(t, "general", sends[0].ChannelID)
	assert.Contains(t, sends[0].Content, "<@user-1>")
	assert.Contains(t, sends[0].Content, "nickname")
}
