package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/itchan-dev/confessions/shared/api"
	"github.com/itchan-dev/confessions/shared/domain"
	internal_errors "github.com/itchan-dev/confessions/shared/errors"
	"github.com/itchan-dev/confessions/shared/utils"
)

// === Post Methods ===

func (c *APIClient) ListPosts(ctx context.Context, since *time.Time) ([]domain.Post, error) {
	const op = "list"
	path := "/v1/posts"
	if since != nil {
		path += "?since=" + url.QueryEscape(since.UTC().Format(time.RFC3339Nano))
	}

	resp, err := c.do(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(op, resp)
	}
	var response api.PostsResponse
	if err := utils.Decode(resp.Body, &response); err != nil {
		return nil, &internal_errors.RemoteStoreError{Op: op, Message: "cannot decode posts response", Err: err}
	}
	return response.Posts, nil
}

func (c *APIClient) InsertPost(ctx context.Context, title domain.PostTitle, body domain.PostBody) (domain.Post, error) {
	const op = "insert"
	payload, err := json.Marshal(api.CreatePostRequest{Title: title, Body: body})
	if err != nil {
		return domain.Post{}, &internal_errors.RemoteStoreError{Op: op, Message: "cannot encode request", Err: err}
	}

	resp, err := c.do(ctx, op, http.MethodPost, "/v1/posts", bytes.NewReader(payload))
	if err != nil {
		return domain.Post{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return domain.Post{}, statusError(op, resp)
	}
	var post domain.Post
	if err := utils.Decode(resp.Body, &post); err != nil {
		return domain.Post{}, &internal_errors.RemoteStoreError{Op: op, Message: "cannot decode post", Err: err}
	}
	return post, nil
}

func (c *APIClient) UpdatePostCounts(ctx context.Context, id domain.PostId, upvotes, downvotes int) (domain.Post, error) {
	const op = "update"
	payload, err := json.Marshal(api.UpdateCountsRequest{Upvotes: &upvotes, Downvotes: &downvotes})
	if err != nil {
		return domain.Post{}, &internal_errors.RemoteStoreError{Op: op, Message: "cannot encode request", Err: err}
	}

	resp, err := c.do(ctx, op, http.MethodPatch, "/v1/posts/"+url.PathEscape(id), bytes.NewReader(payload))
	if err != nil {
		return domain.Post{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Post{}, statusError(op, resp)
	}
	var post domain.Post
	if err := utils.Decode(resp.Body, &post); err != nil {
		return domain.Post{}, &internal_errors.RemoteStoreError{Op: op, Message: "cannot decode post", Err: err}
	}
	return post, nil
}
