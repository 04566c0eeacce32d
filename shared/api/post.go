package api

import "github.com/itchan-dev/confessions/shared/domain"

// Request DTOs shared by backend handlers and the client's api client

type CreatePostRequest struct {
	Title string `json:"title" validate:"required"`
	Body  string `json:"body" validate:"required"`
}

// Counts are absolute values, never deltas. Pointers so that a missing field is
// told apart from an explicit zero.
type UpdateCountsRequest struct {
	Upvotes   *int `json:"upvotes" validate:"required,min=0"`
	Downvotes *int `json:"downvotes" validate:"required,min=0"`
}

// Response DTOs

type PostsResponse struct {
	Posts []domain.Post `json:"posts"`
}
