// Package cooldown is the per-device submission rate limiter. It owns the
// single durable record holding the time of the last accepted submission.
package cooldown

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/itchan-dev/confessions/client/internal/kv"
	internal_errors "github.com/itchan-dev/confessions/shared/errors"
	"github.com/itchan-dev/confessions/shared/logger"
)

const Key = "submission_cooldown"

const calendarDay = "calendar_day"

// Window is either a fixed duration or "once per local calendar day".
type Window struct {
	Duration    time.Duration
	CalendarDay bool
}

// ParseWindow accepts a Go duration ("10s", "17m", "8h") or "calendar_day".
func ParseWindow(s string) (Window, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, calendarDay) {
		return Window{CalendarDay: true}, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return Window{}, fmt.Errorf("invalid cooldown %q: %w", s, err)
	}
	if d < 0 {
		return Window{}, fmt.Errorf("invalid cooldown %q: must not be negative", s)
	}
	return Window{Duration: d}, nil
}

func (w Window) String() string {
	if w.CalendarDay {
		return calendarDay
	}
	return w.Duration.String()
}

type record struct {
	LastSubmissionMs int64 `json:"last_submission_ms"`
}

type Limiter struct {
	store  kv.Store
	window Window
	now    func() time.Time
	loc    *time.Location
	log    *slog.Logger
}

type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithLocation sets the zone calendar days are computed in. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(l *Limiter) { l.loc = loc }
}

func New(store kv.Store, window Window, opts ...Option) *Limiter {
	l := &Limiter{
		store:  store,
		window: window,
		now:    time.Now,
		loc:    time.Local,
		log:    logger.Component("cooldown"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Limiter) Window() Window {
	return l.window
}

// CanSubmitNow reports whether a submission is allowed. Pure read.
func (l *Limiter) CanSubmitNow(ctx context.Context) bool {
	return l.Remaining(ctx) == 0
}

// Remaining is how long until the next submission is allowed, 0 if allowed now.
// Missing, unreadable or implausible records allow the submission.
func (l *Limiter) Remaining(ctx context.Context) time.Duration {
	last, ok := l.lastSubmission(ctx)
	if !ok {
		return 0
	}
	now := l.now()
	if last.After(now) {
		l.log.Warn("last submission is in the future, ignoring", "last", last, "now", now)
		return 0
	}

	if l.window.CalendarDay {
		lastLocal, nowLocal := last.In(l.loc), now.In(l.loc)
		if !sameDate(lastLocal, nowLocal) {
			return 0
		}
		y, m, d := nowLocal.Date()
		nextMidnight := time.Date(y, m, d+1, 0, 0, 0, 0, l.loc)
		return nextMidnight.Sub(nowLocal)
	}

	elapsed := now.Sub(last)
	if elapsed >= l.window.Duration {
		return 0
	}
	return l.window.Duration - elapsed
}

// Admit returns a *RateLimitError while the window is active.
func (l *Limiter) Admit(ctx context.Context) error {
	if remaining := l.Remaining(ctx); remaining > 0 {
		return &internal_errors.RateLimitError{Remaining: remaining}
	}
	return nil
}

// RecordSubmission overwrites the record with now. Call it only after the
// post was accepted by the remote store.
func (l *Limiter) RecordSubmission(ctx context.Context, now time.Time) error {
	if err := kv.Save(ctx, l.store, Key, record{LastSubmissionMs: now.UnixMilli()}); err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}
	return nil
}

func (l *Limiter) lastSubmission(ctx context.Context) (time.Time, bool) {
	var rec record
	found, err := kv.Load(ctx, l.store, Key, &rec)
	if errors.Is(err, kv.ErrCorrupted) {
		l.log.Warn("discarding corrupted cooldown record", "error", err)
		return time.Time{}, false
	}
	if err != nil {
		l.log.Warn("cooldown record unreadable, allowing submission", "error", err)
		return time.Time{}, false
	}
	if !found || rec.LastSubmissionMs <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(rec.LastSubmissionMs), true
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
