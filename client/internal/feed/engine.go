// Package feed holds the device's cached copy of the confession feed, keeps it
// in sync with the remote post store and applies optimistic vote changes ahead
// of the debounced remote writes that confirm them.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/itchan-dev/confessions/client/internal/kv"
	"github.com/itchan-dev/confessions/client/internal/votes"
	"github.com/itchan-dev/confessions/shared/domain"
	"github.com/itchan-dev/confessions/shared/logger"
	"github.com/itchan-dev/confessions/shared/validation"
)

var ErrClosed = errors.New("feed engine is closed")

type RemoteStore interface {
	// ListPosts returns posts created strictly after since (all posts if nil), newest first.
	ListPosts(ctx context.Context, since *time.Time) ([]domain.Post, error)
	InsertPost(ctx context.Context, title domain.PostTitle, body domain.PostBody) (domain.Post, error)
	UpdatePostCounts(ctx context.Context, id domain.PostId, upvotes, downvotes int) (domain.Post, error)
}

type Limiter interface {
	Admit(ctx context.Context) error
	RecordSubmission(ctx context.Context, now time.Time) error
}

type VoteLedger interface {
	Current(id domain.PostId) domain.VoteDirection
	Cast(ctx context.Context, id domain.PostId, dir domain.VoteDirection) (votes.Transition, error)
	Restore(ctx context.Context, id domain.PostId, dir domain.VoteDirection) error
}

type Options struct {
	Debounce time.Duration
	Rules    validation.Rules
	Now      func() time.Time
}

const defaultDebounce = 300 * time.Millisecond

// State is a point-in-time copy of the feed.
type State struct {
	Posts   []domain.Post
	Loading bool
	Err     error
}

type Engine struct {
	remote  RemoteStore
	store   kv.Store
	limiter Limiter
	ledger  VoteLedger
	opts    Options
	log     *slog.Logger

	ready     chan struct{}
	readyOnce sync.Once

	// held from cooldown admission until the submission is recorded
	submitMu sync.Mutex

	mu       sync.Mutex
	posts    []domain.Post
	loading  int
	lastErr  error
	closed   bool
	pending  map[domain.PostId]*pendingWrite
	voteErrs map[domain.PostId]error // rolled back writes, cleared by a confirmed one
	// closed and replaced every time a remote vote write settles
	settled chan struct{}
}

func New(remote RemoteStore, store kv.Store, limiter Limiter, ledger VoteLedger, opts Options) *Engine {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		remote:   remote,
		store:    store,
		limiter:  limiter,
		ledger:   ledger,
		opts:     opts,
		log:      logger.Component("feed"),
		ready:    make(chan struct{}),
		pending:  make(map[domain.PostId]*pendingWrite),
		voteErrs: make(map[domain.PostId]error),
		settled:  make(chan struct{}),
	}
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		Posts:   append([]domain.Post(nil), e.posts...),
		Loading: e.loading > 0,
		Err:     e.lastErr,
	}
}

// Post returns the cached post with the given id.
func (e *Engine) Post(id domain.PostId) (domain.Post, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := e.indexLocked(id); i >= 0 {
		return e.posts[i], true
	}
	return domain.Post{}, false
}

// WarmStart installs the cached snapshot and runs the first refresh. Votes
// and submissions wait until it returns. The refresh error, if any, is
// returned and also kept in State.
func (e *Engine) WarmStart(ctx context.Context) error {
	defer e.readyOnce.Do(func() { close(e.ready) })

	if posts, ok := e.loadSnapshot(ctx); ok {
		e.mu.Lock()
		if len(e.posts) == 0 {
			e.posts = posts
		}
		e.mu.Unlock()
		e.log.Debug("snapshot installed", "posts", len(posts))
	}
	return e.Refresh(ctx)
}

// Refresh fetches posts newer than the newest cached one (everything when the
// cache is empty) and merges them in. On failure the cache is left untouched.
func (e *Engine) Refresh(ctx context.Context) error {
	e.mu.Lock()
	e.loading++
	var since *time.Time
	if len(e.posts) > 0 {
		watermark := e.posts[0].CreatedAt
		since = &watermark
	}
	e.mu.Unlock()

	fetched, err := e.remote.ListPosts(ctx, since)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.loading--
	if err != nil {
		e.lastErr = err
		e.log.Warn("refresh failed", "error", err)
		return err
	}

	e.posts = merge(e.posts, fetched)
	e.lastErr = nil
	e.log.Debug("refreshed", "fetched", len(fetched), "total", len(e.posts))
	if len(e.posts) > 0 {
		e.saveSnapshotLocked(ctx)
	}
	return nil
}

// Submit validates the confession, checks the cooldown, inserts it remotely
// and puts the stored post at the top of the feed. Rejections and remote
// failures leave the feed and the cooldown untouched.
func (e *Engine) Submit(ctx context.Context, title, body string) (domain.Post, error) {
	data, err := e.opts.Rules.Submission(title, body)
	if err != nil {
		e.log.Debug("submission rejected", "reason", err)
		return domain.Post{}, err
	}
	if err := e.waitReady(ctx); err != nil {
		return domain.Post{}, err
	}
	if e.isClosed() {
		return domain.Post{}, ErrClosed
	}

	e.submitMu.Lock()
	defer e.submitMu.Unlock()
	if err := e.limiter.Admit(ctx); err != nil {
		e.log.Debug("submission rejected", "reason", err)
		return domain.Post{}, err
	}

	post, err := e.remote.InsertPost(ctx, data.Title, data.Body)
	if err != nil {
		e.log.Warn("submission failed", "error", err)
		return domain.Post{}, err
	}

	e.mu.Lock()
	e.posts = merge(e.posts, []domain.Post{post})
	e.saveSnapshotLocked(ctx)
	e.mu.Unlock()

	if err := e.limiter.RecordSubmission(ctx, e.opts.Now()); err != nil {
		e.log.Warn("cooldown not recorded", "error", err)
	}
	e.log.Info("confession submitted", "post_id", post.Id)
	return post, nil
}

func (e *Engine) waitReady(ctx context.Context) error {
	select {
	case <-e.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for warm start: %w", ctx.Err())
	}
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func (e *Engine) indexLocked(id domain.PostId) int {
	for i := range e.posts {
		if e.posts[i].Id == id {
			return i
		}
	}
	return -1
}
