// Package board is the controller the UI layer talks to.
package board

import (
	"context"
	"fmt"

	"github.com/itchan-dev/confessions/client/internal/feed"
	"github.com/itchan-dev/confessions/client/internal/votes"
	"github.com/itchan-dev/confessions/shared/domain"
)

type Controller struct {
	engine *feed.Engine
	ledger *votes.Ledger
}

func New(engine *feed.Engine, ledger *votes.Ledger) *Controller {
	return &Controller{engine: engine, ledger: ledger}
}

// Start loads the vote ledger and warm starts the feed. A failed first
// refresh is not fatal: the cached feed is still served and the error is in
// State().Err.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.ledger.Load(ctx); err != nil {
		return fmt.Errorf("failed to start board: %w", err)
	}
	_ = c.engine.WarmStart(ctx)
	return nil
}

func (c *Controller) State() feed.State {
	return c.engine.State()
}

func (c *Controller) Refresh(ctx context.Context) error {
	return c.engine.Refresh(ctx)
}

func (c *Controller) Submit(ctx context.Context, title, body string) (domain.Post, error) {
	return c.engine.Submit(ctx, title, body)
}

func (c *Controller) VoteUp(ctx context.Context, id domain.PostId) (domain.Post, error) {
	return c.engine.ApplyVote(ctx, id, domain.VoteUp)
}

func (c *Controller) VoteDown(ctx context.Context, id domain.PostId) (domain.Post, error) {
	return c.engine.ApplyVote(ctx, id, domain.VoteDown)
}

func (c *Controller) CurrentUserVote(id domain.PostId) domain.VoteDirection {
	return c.ledger.Current(id)
}

// VoteError reports whether the last vote write for the post was rolled back.
// It is nil once a later write for the post is confirmed.
func (c *Controller) VoteError(id domain.PostId) error {
	return c.engine.VoteErr(id)
}

// Close sends any pending vote writes before returning.
func (c *Controller) Close(ctx context.Context) error {
	return c.engine.Close(ctx)
}
