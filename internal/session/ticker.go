package session

import "time"

// Timer is a scheduled callback that can be cancelled
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type wallClock struct{}

func (wallClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Ticker is a single-shot, self-rescheduling progress timer.
//
// It is not safe for concurrent use; the owning session calls it with its
// lock held. Arming always cancels the previously armed timer, and each
// firing carries a token so a callback that lost the race with Disarm or a
// newer Arm can recognise itself as stale.
type Ticker struct {
	sched  Scheduler
	period time.Duration
	token  uint64
	timer  Timer
}

// NewTicker creates a disarmed ticker
func NewTicker(sched Scheduler, period time.Duration) *Ticker {
	if sched == nil {
		sched = wallClock{}
	}
	return &Ticker{sched: sched, period: period}
}

// Period returns the firing interval
func (t *Ticker) Period() time.Duration {
	return t.period
}

// Arm schedules fire after one period, replacing any armed timer
func (t *Ticker) Arm(fire func(token uint64)) {
	t.Disarm()
	tok := t.token
	t.timer = t.sched.AfterFunc(t.period, func() { fire(tok) })
}

// Disarm cancels the armed timer, if any
func (t *Ticker) Disarm() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.token++
}

// Armed reports whether a firing is pending
func (t *Ticker) Armed() bool {
	return t.timer != nil
}

// Claim consumes the pending firing identified by token. It returns false
// for firings that were disarmed or superseded.
func (t *Ticker) Claim(token uint64) bool {
	if t.timer == nil || token != t.token {
		return false
	}
	t.timer = nil
	t.token++
	return true
}
