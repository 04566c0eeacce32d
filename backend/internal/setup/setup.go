package setup

import (
	"github.com/itchan-dev/confessions/backend/internal/handler"
	"github.com/itchan-dev/confessions/backend/internal/service"
	"github.com/itchan-dev/confessions/backend/internal/storage/pg"
	"github.com/itchan-dev/confessions/shared/config"
	"github.com/itchan-dev/confessions/shared/validation"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config  *config.Config
	Storage *pg.Storage
	Handler *handler.Handler
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	rules := validation.Rules{
		MaxBodyWords:   cfg.Public.MaxBodyWords,
		MaxTitleLength: cfg.Public.MaxTitleLength,
	}
	post := service.NewPost(storage, rules)

	return &Dependencies{
		Config:  cfg,
		Storage: storage,
		Handler: handler.New(post, storage, cfg),
	}, nil
}
