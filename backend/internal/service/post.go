package service

import (
	"context"
	"time"

	"github.com/itchan-dev/confessions/shared/domain"
	internal_errors "github.com/itchan-dev/confessions/shared/errors"
)

// to mock service in tests
type PostService interface {
	List(ctx context.Context, since *time.Time) ([]domain.Post, error)
	Create(ctx context.Context, title, body string) (domain.Post, error)
	UpdateCounts(ctx context.Context, id domain.PostId, counts domain.PostCounts) (domain.Post, error)
}

type Post struct {
	storage   PostStorage
	validator PostValidator
}

type PostStorage interface {
	ListPosts(ctx context.Context, since *time.Time) ([]domain.Post, error)
	CreatePost(ctx context.Context, data domain.PostCreationData) (domain.Post, error)
	UpdatePostCounts(ctx context.Context, id domain.PostId, counts domain.PostCounts) (domain.Post, error)
}

// PostValidator trims and strips a submission and rejects it if it is empty
// or too long.
type PostValidator interface {
	Submission(title, body string) (domain.PostCreationData, error)
}

func NewPost(storage PostStorage, validator PostValidator) PostService {
	return &Post{storage, validator}
}

func (p *Post) List(ctx context.Context, since *time.Time) ([]domain.Post, error) {
	return p.storage.ListPosts(ctx, since)
}

func (p *Post) Create(ctx context.Context, title, body string) (domain.Post, error) {
	data, err := p.validator.Submission(title, body)
	if err != nil {
		return domain.Post{}, err
	}
	return p.storage.CreatePost(ctx, data)
}

// UpdateCounts stores absolute counter values sent by a client.
func (p *Post) UpdateCounts(ctx context.Context, id domain.PostId, counts domain.PostCounts) (domain.Post, error) {
	if id == "" {
		return domain.Post{}, internal_errors.ErrNotFound
	}
	if counts.Upvotes < 0 || counts.Downvotes < 0 {
		return domain.Post{}, &internal_errors.ValidationError{Message: "Counts must not be negative"}
	}
	return p.storage.UpdatePostCounts(ctx, id, counts)
}
