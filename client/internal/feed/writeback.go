package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/itchan-dev/confessions/shared/domain"
	internal_errors "github.com/itchan-dev/confessions/shared/errors"
)

// pendingWrite tracks one post's unconfirmed votes. A burst starts with the
// first toggle after the last settled write and ends when a write settles
// with no newer toggle behind it.
type pendingWrite struct {
	// last confirmed state, restored if the burst cannot be written
	baseline     domain.PostCounts
	baselineVote domain.VoteDirection

	gen   uint64 // bumped on every toggle
	timer *time.Timer

	inFlight  bool
	firedGen  uint64
	firedVote domain.VoteDirection
	again     bool // trailing edge reached while a write was in flight
}

// ApplyVote toggles the device's vote on a post, updates the counters
// immediately and schedules the remote write for that post.
func (e *Engine) ApplyVote(ctx context.Context, id domain.PostId, dir domain.VoteDirection) (domain.Post, error) {
	if err := e.waitReady(ctx); err != nil {
		return domain.Post{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.Post{}, ErrClosed
	}
	i := e.indexLocked(id)
	if i < 0 {
		return domain.Post{}, internal_errors.ErrNotFound
	}

	before := e.posts[i].Counts()
	tr, err := e.ledger.Cast(ctx, id, dir)
	if err != nil {
		return domain.Post{}, fmt.Errorf("failed to cast vote: %w", err)
	}
	tr.Apply(&e.posts[i])

	pw, ok := e.pending[id]
	if !ok {
		pw = &pendingWrite{baseline: before, baselineVote: tr.From}
		e.pending[id] = pw
	}
	pw.gen++
	if pw.timer != nil {
		pw.timer.Stop()
	}
	gen := pw.gen
	pw.timer = time.AfterFunc(e.opts.Debounce, func() { e.fire(id, gen) })

	e.saveSnapshotLocked(ctx)
	e.log.Debug("vote applied", "post_id", id, "from", tr.From, "to", tr.To,
		"upvotes", e.posts[i].Upvotes, "downvotes", e.posts[i].Downvotes)
	return e.posts[i], nil
}

// fire is the trailing edge of the debounce timer for gen.
func (e *Engine) fire(id domain.PostId, gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pw, ok := e.pending[id]
	if !ok || pw.gen != gen || pw.timer == nil {
		return // superseded
	}
	pw.timer = nil
	if pw.inFlight {
		pw.again = true
		return
	}
	e.startWriteLocked(id, pw)
}

func (e *Engine) startWriteLocked(id domain.PostId, pw *pendingWrite) {
	i := e.indexLocked(id)
	if i < 0 {
		delete(e.pending, id)
		e.signalLocked()
		return
	}
	counts := e.posts[i].Counts()
	pw.inFlight = true
	pw.again = false
	pw.firedGen = pw.gen
	pw.firedVote = e.ledger.Current(id)

	go e.write(id, counts, pw.firedGen)
}

// write sends the counters that were current when the timer fired and
// reconciles the cache with the outcome.
func (e *Engine) write(id domain.PostId, counts domain.PostCounts, firedGen uint64) {
	// detached from the caller; the adapter enforces its own timeout
	ctx := context.Background()
	row, err := e.remote.UpdatePostCounts(ctx, id, counts.Upvotes, counts.Downvotes)

	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.signalLocked()

	pw := e.pending[id]
	pw.inFlight = false
	newer := pw.gen != firedGen
	i := e.indexLocked(id)

	switch {
	case err != nil && !newer:
		e.lastErr = err
		e.log.Warn("vote write failed, rolling back", "post_id", id, "error", err)
		if i >= 0 {
			e.posts[i].SetCounts(pw.baseline)
		}
		if rerr := e.ledger.Restore(ctx, id, pw.baselineVote); rerr != nil {
			e.log.Error("failed to restore vote record", "post_id", id, "error", rerr)
		}
		e.voteErrs[id] = err
		delete(e.pending, id)
		e.saveSnapshotLocked(ctx)
		return

	case err != nil:
		// the newer burst settles the post, so nothing is reported yet
		e.log.Warn("vote write failed, newer vote pending", "post_id", id, "error", err)

	case !newer:
		if i >= 0 {
			if row.Id == id {
				e.posts[i] = row
			} else {
				e.posts[i].SetCounts(row.Counts())
			}
		}
		delete(e.pending, id)
		delete(e.voteErrs, id)
		e.saveSnapshotLocked(ctx)
		e.log.Debug("vote write confirmed", "post_id", id, "upvotes", row.Upvotes, "downvotes", row.Downvotes)
		return

	default:
		pw.baseline = row.Counts()
		pw.baselineVote = pw.firedVote
	}

	if pw.again {
		e.startWriteLocked(id, pw)
	}
}

// VoteErr returns the error of the last vote write for the post that had to be
// rolled back, or nil once a later write for it has been confirmed. Refresh
// failures never show up here.
func (e *Engine) VoteErr(id domain.PostId) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.voteErrs[id]
}

func (e *Engine) signalLocked() {
	close(e.settled)
	e.settled = make(chan struct{})
}

// Flush sends every scheduled vote write now and waits until all of them,
// and any writes already in flight, have settled.
func (e *Engine) Flush(ctx context.Context) error {
	for {
		e.mu.Lock()
		if len(e.pending) == 0 {
			e.mu.Unlock()
			return nil
		}
		for id, pw := range e.pending {
			if pw.timer == nil {
				continue
			}
			pw.timer.Stop()
			pw.timer = nil
			if pw.inFlight {
				pw.again = true
			} else {
				e.startWriteLocked(id, pw)
			}
		}
		settled := e.settled
		e.mu.Unlock()

		select {
		case <-settled:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close flushes pending vote writes and rejects any further work.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	return e.Flush(ctx)
}
