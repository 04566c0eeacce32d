// Package votes is the per-device vote ledger: at most one active vote per
// post, toggled by casting the same direction again.
package votes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/itchan-dev/confessions/client/internal/kv"
	"github.com/itchan-dev/confessions/shared/domain"
	"github.com/itchan-dev/confessions/shared/logger"
)

const Key = "vote_ledger"

// Transition is the result of one cast: the vote moved From -> To and the
// post's counters move by the deltas.
type Transition struct {
	PostId    domain.PostId
	From      domain.VoteDirection
	To        domain.VoteDirection
	UpDelta   int
	DownDelta int
}

// Apply moves the post's counters, never below zero.
func (t Transition) Apply(p *domain.Post) {
	p.Upvotes = max(p.Upvotes+t.UpDelta, 0)
	p.Downvotes = max(p.Downvotes+t.DownDelta, 0)
}

// next is the toggle state machine.
func next(from, cast domain.VoteDirection) Transition {
	t := Transition{From: from}
	if from == cast {
		t.To = domain.VoteNone
	} else {
		t.To = cast
	}
	t.UpDelta = delta(from, t.To, domain.VoteUp)
	t.DownDelta = delta(from, t.To, domain.VoteDown)
	return t
}

func delta(from, to, dir domain.VoteDirection) int {
	d := 0
	if from == dir {
		d--
	}
	if to == dir {
		d++
	}
	return d
}

type Ledger struct {
	mu      sync.Mutex
	store   kv.Store
	records map[domain.PostId]domain.VoteDirection
	log     *slog.Logger
}

func New(store kv.Store) *Ledger {
	return &Ledger{
		store:   store,
		records: make(map[domain.PostId]domain.VoteDirection),
		log:     logger.Component("votes"),
	}
}

// Load replaces the in-memory ledger with the durable one. A corrupted ledger
// is discarded.
func (l *Ledger) Load(ctx context.Context) error {
	records := make(map[domain.PostId]domain.VoteDirection)
	_, err := kv.Load(ctx, l.store, Key, &records)
	if errors.Is(err, kv.ErrCorrupted) {
		l.log.Warn("discarding corrupted vote ledger", "error", err)
		records = make(map[domain.PostId]domain.VoteDirection)
	} else if err != nil {
		return fmt.Errorf("failed to load vote ledger: %w", err)
	}

	for id, dir := range records {
		if !dir.Valid() {
			delete(records, id)
		}
	}

	l.mu.Lock()
	l.records = records
	l.mu.Unlock()
	return nil
}

// Current returns the device's vote on the post, VoteNone if there is none.
func (l *Ledger) Current(id domain.PostId) domain.VoteDirection {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.records[id]
}

// Cast applies one toggle and persists the ledger before returning. If
// persisting fails the ledger is left as it was.
func (l *Ledger) Cast(ctx context.Context, id domain.PostId, dir domain.VoteDirection) (Transition, error) {
	if !dir.Valid() {
		return Transition{}, fmt.Errorf("invalid vote direction %q", dir)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	t := next(l.records[id], dir)
	t.PostId = id
	if err := l.setLocked(ctx, id, t.To); err != nil {
		return Transition{}, err
	}
	l.log.Debug("vote cast", "post_id", id, "from", t.From, "to", t.To)
	return t, nil
}

// Restore puts the record for id back to dir (VoteNone deletes it).
func (l *Ledger) Restore(ctx context.Context, id domain.PostId, dir domain.VoteDirection) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.records[id] == dir {
		return nil
	}
	return l.setLocked(ctx, id, dir)
}

func (l *Ledger) setLocked(ctx context.Context, id domain.PostId, dir domain.VoteDirection) error {
	updated := maps.Clone(l.records)
	if dir == domain.VoteNone {
		delete(updated, id)
	} else {
		updated[id] = dir
	}
	if err := kv.Save(ctx, l.store, Key, updated); err != nil {
		return fmt.Errorf("failed to persist vote ledger: %w", err)
	}
	l.records = updated
	return nil
}
