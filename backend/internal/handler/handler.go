package handler

import (
	"context"

	"github.com/itchan-dev/confessions/backend/internal/service"
	"github.com/itchan-dev/confessions/shared/config"
)

// HealthChecker is satisfied by the storage.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	post   service.PostService
	health HealthChecker
	cfg    *config.Config
}

func New(post service.PostService, health HealthChecker, cfg *config.Config) *Handler {
	return &Handler{post: post, health: health, cfg: cfg}
}
