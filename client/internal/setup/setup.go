package setup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/itchan-dev/confessions/client/internal/apiclient"
	"github.com/itchan-dev/confessions/client/internal/board"
	"github.com/itchan-dev/confessions/client/internal/cooldown"
	"github.com/itchan-dev/confessions/client/internal/feed"
	"github.com/itchan-dev/confessions/client/internal/kv"
	"github.com/itchan-dev/confessions/client/internal/votes"
	"github.com/itchan-dev/confessions/shared/config"
	"github.com/itchan-dev/confessions/shared/validation"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Store   *kv.SQLite
	Limiter *cooldown.Limiter
	Ledger  *votes.Ledger
	Engine  *feed.Engine
	Board   *board.Controller
}

// SetupDependencies initializes everything the board needs. Call Board.Start
// before using it and Close when done.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	window, err := cooldown.ParseWindow(cfg.Public.SubmitCooldown)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(cfg.Public.StatePath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	store, err := kv.OpenSQLite(cfg.Public.StatePath)
	if err != nil {
		return nil, err
	}

	remote := apiclient.New(cfg.Public.ApiURL, cfg.Public.RequestTimeout)
	limiter := cooldown.New(store, window)
	ledger := votes.New(store)
	engine := feed.New(remote, store, limiter, ledger, feed.Options{
		Debounce: cfg.Public.VoteDebounce,
		Rules: validation.Rules{
			MaxBodyWords:   cfg.Public.MaxBodyWords,
			MaxTitleLength: cfg.Public.MaxTitleLength,
		},
	})

	return &Dependencies{
		Store:   store,
		Limiter: limiter,
		Ledger:  ledger,
		Engine:  engine,
		Board:   board.New(engine, ledger),
	}, nil
}

// Close flushes pending vote writes and closes the device store.
func (d *Dependencies) Close(ctx context.Context) error {
	return errors.Join(d.Board.Close(ctx), d.Store.Close())
}
