// Package checks implements the heuristic member checks used by automod to
// flag likely spam or bot accounts.
package checks

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Verdict is the outcome of a single check.
type Verdict int

const (
	Pass Verdict = iota
	Fail
	// NotApplicable marks a check that was suppressed by another check's
	// outcome and should not count toward severity.
	NotApplicable
)

func (v Verdict) String() string {
	switch v {
	case Pass:
		return "pass"
	case Fail:
		return "fail"
	case NotApplicable:
		return "n/a"
	default:
		return "unknown"
	}
}

// Result pairs a verdict with a human-readable explanation.
type Result struct {
	Verdict Verdict
	Detail  string
}

// Member is a platform-independent snapshot of the member under inspection.
type Member struct {
	DisplayName string
	CreatedAt   time.Time
	JoinedAt    time.Time
}

// Check names, in registry order.
const (
	CheckBlankName      = "blank-nickname"
	CheckFreshAccount   = "fresh-account"
	CheckRecentlyJoined = "recently-joined"
	CheckImmediateJoin  = "immediate-join"
	CheckFastLeave      = "fast-leave"
)

// JoinChecks are run when a member joins.
var JoinChecks = []string{CheckBlankName, CheckFreshAccount, CheckImmediateJoin}

// LeaveChecks are run when a member leaves.
var LeaveChecks = []string{CheckFastLeave}

// Config holds the check thresholds.
type Config struct {
	// BlankNameThreshold is the minimum number of meaningful runes a display
	// name must contain.
	BlankNameThreshold int
	// RecentJoin bounds the fresh-account and recently-joined checks.
	RecentJoin time.Duration
	// ImmediateJoin bounds the immediate-join and fast-leave checks.
	ImmediateJoin time.Duration
}

// Func evaluates one heuristic against a member snapshot.
type Func func(m Member, now time.Time) Result

// Evaluation is one named check outcome.
type Evaluation struct {
	Name   string
	Result Result
}

// Engine is an ordered registry of named checks. It is static after
// construction and safe for concurrent use.
type Engine struct {
	cfg   Config
	names []string
	fns   map[string]Func
}

// NewEngine builds the registry with the standard five checks.
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		cfg: cfg,
		fns: make(map[string]Func),
	}
	e.register(CheckBlankName, e.blankName)
	e.register(CheckFreshAccount, e.freshAccount)
	e.register(CheckRecentlyJoined, e.recentlyJoined)
	e.register(CheckImmediateJoin, e.immediateJoin)
	e.register(CheckFastLeave, e.fastLeave)
	return e
}

func (e *Engine) register(name string, fn Func) {
	e.names = append(e.names, name)
	e.fns[name] = fn
}

// Names returns the registered check names in order.
func (e *Engine) Names() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// Run evaluates the named checks in the given order against the member.
// Unknown names are skipped.
func (e *Engine) Run(names []string, m Member, now time.Time) []Evaluation {
	evals := make([]Evaluation, 0, len(names))
	for _, name := range names {
		fn, ok := e.fns[name]
		if !ok {
			continue
		}
		evals = append(evals, Evaluation{Name: name, Result: fn(m, now)})
	}
	return evals
}

// blankName fails when the trimmed display name holds fewer meaningful runes
// than the threshold. Letters, numbers, punctuation and symbols count, with
// the exception of the So category (emoji and friends), which spammers use
// precisely because it renders as unreadable or invisible.
func (e *Engine) blankName(m Member, _ time.Time) Result {
	count := meaningfulRunes(m.DisplayName)
	if count < e.cfg.BlankNameThreshold {
		return Result{
			Verdict: Fail,
			Detail:  fmt.Sprintf("%d readable characters (need %d)", count, e.cfg.BlankNameThreshold),
		}
	}
	return Result{
		Verdict: Pass,
		Detail:  fmt.Sprintf("%d readable characters", count),
	}
}

func meaningfulRunes(name string) int {
	count := 0
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r), unicode.IsPunct(r):
			count++
		case unicode.IsSymbol(r) && !unicode.Is(unicode.So, r):
			count++
		}
	}
	return count
}

// freshAccount fails when the account was created less than RecentJoin ago.
func (e *Engine) freshAccount(m Member, now time.Time) Result {
	age := now.Sub(m.CreatedAt)
	if age < e.cfg.RecentJoin {
		return Result{Verdict: Fail, Detail: "account created " + humanDuration(age) + " ago"}
	}
	return Result{Verdict: Pass, Detail: "account created " + humanDuration(age) + " ago"}
}

// recentlyJoined fails when the member joined less than RecentJoin ago.
func (e *Engine) recentlyJoined(m Member, now time.Time) Result {
	since := now.Sub(m.JoinedAt)
	if since < e.cfg.RecentJoin {
		return Result{Verdict: Fail, Detail: "joined " + humanDuration(since) + " ago"}
	}
	return Result{Verdict: Pass, Detail: "joined " + humanDuration(since) + " ago"}
}

// immediateJoin fails when the gap between account creation and joining is
// under ImmediateJoin. While recently-joined is itself failing the verdict is
// NotApplicable so a very new join is not penalized twice; this precedence is
// load-bearing moderation behavior, keep it.
func (e *Engine) immediateJoin(m Member, now time.Time) Result {
	gap := m.JoinedAt.Sub(m.CreatedAt)
	detail := "joined " + humanDuration(gap) + " after account creation"
	if e.recentlyJoined(m, now).Verdict == Fail {
		return Result{Verdict: NotApplicable, Detail: detail}
	}
	if gap < e.cfg.ImmediateJoin {
		return Result{Verdict: Fail, Detail: detail}
	}
	return Result{Verdict: Pass, Detail: detail}
}

// fastLeave fails when the member leaves less than ImmediateJoin after
// joining, the classic raid-probing pattern.
func (e *Engine) fastLeave(m Member, now time.Time) Result {
	stay := now.Sub(m.JoinedAt)
	if stay < e.cfg.ImmediateJoin {
		return Result{Verdict: Fail, Detail: "left " + humanDuration(stay) + " after joining"}
	}
	return Result{Verdict: Pass, Detail: "left " + humanDuration(stay) + " after joining"}
}

func humanDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d >= 24*time.Hour:
		days := d / (24 * time.Hour)
		rest := (d % (24 * time.Hour)) / time.Hour
		return fmt.Sprintf("%dd%dh", days, rest)
	case d >= time.Hour:
		return fmt.Sprintf("%dh%dm", d/time.Hour, (d%time.Hour)/time.Minute)
	case d >= time.Minute:
		return fmt.Sprintf("%dm%ds", d/time.Minute, (d%time.Minute)/time.Second)
	default:
		return fmt.Sprintf("%ds", d/time.Second)
	}
}
