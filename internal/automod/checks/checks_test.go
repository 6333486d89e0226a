package checks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine() *Engine {
	return NewEngine(Config{
		BlankNameThreshold: 2,
		RecentJoin:         72 * time.Hour,
		ImmediateJoin:      time.Hour,
	})
}

func TestBlankName(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e := testEngine()

	tests := []struct {
		name    string
		display string
		want    Verdict
	}{
		{"all whitespace", "   ", Fail},
		{"two letters", "ab", Pass},
		{"letter plus emoji", "a😀", Fail},
		{"empty", "", Fail},
		{"single letter", "x", Fail},
		{"letters with spaces", " a b ", Pass},
		{"digits", "42", Pass},
		{"punctuation counts", "a!", Pass},
		{"zero width joiners", "​​​", Fail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.blankName(Member{DisplayName: tt.display}, now)
			assert.Equal(t, tt.want, res.Verdict, "detail: %s", res.Detail)
		})
	}
}

func TestFreshAccount(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e := testEngine()

	res := e.freshAccount(Member{CreatedAt: now.Add(-2 * time.Hour)}, now)
	assert.Equal(t, Fail, res.Verdict)
	assert.Contains(t, res.Detail, "ago")

	res = e.freshAccount(Member{CreatedAt: now.Add(-30 * 24 * time.Hour)}, now)
	assert.Equal(t, Pass, res.Verdict)
}

func TestImmediateJoin(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e := testEngine()
	oldJoin := now.Add(-4 * 24 * time.Hour) // recently-joined passes

	t.Run("join equals creation", func(t *testing.T) {
		res := e.immediateJoin(Member{CreatedAt: oldJoin, JoinedAt: oldJoin}, now)
		assert.Equal(t, Fail, res.Verdict)
	})

	t.Run("two hour gap passes", func(t *testing.T) {
		res := e.immediateJoin(Member{CreatedAt: oldJoin.Add(-2 * time.Hour), JoinedAt: oldJoin}, now)
		assert.Equal(t, Pass, res.Verdict)
	})

	t.Run("suppressed while recently joined", func(t *testing.T) {
		// Joined 5 minutes ago with a brand-new account: immediate-join would
		// fail on its own, but recently-joined already flags this member.
		justJoined := now.Add(-5 * time.Minute)
		res := e.immediateJoin(Member{CreatedAt: justJoined, JoinedAt: justJoined}, now)
		assert.Equal(t, NotApplicable, res.Verdict)
	})
}

func TestFastLeave(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e := testEngine()

	res := e.fastLeave(Member{JoinedAt: now.Add(-10 * time.Minute)}, now)
	assert.Equal(t, Fail, res.Verdict)

	res = e.fastLeave(Member{JoinedAt: now.Add(-3 * time.Hour)}, now)
	assert.Equal(t, Pass, res.Verdict)
}

func TestRunOrderAndUnknownNames(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e := testEngine()
	m := Member{DisplayName: "someone", CreatedAt: now.Add(-90 * 24 * time.Hour), JoinedAt: now.Add(-30 * 24 * time.Hour)}

	evals := e.Run([]string{CheckBlankName, "no-such-check", CheckFreshAccount}, m, now)
	require.Len(t, evals, 2)
	assert.Equal(t, CheckBlankName, evals[0].Name)
	assert.Equal(t, CheckFreshAccount, evals[1].Name)
}

func TestNames(t *testing.T) {
	e := testEngine()
	assert.Equal(t, []string{
		CheckBlankName,
		CheckFreshAccount,
		CheckRecentlyJoined,
		CheckImmediateJoin,
		CheckFastLeave,
	}, e.Names())
}
