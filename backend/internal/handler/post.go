package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/itchan-dev/confessions/shared/api"
	"github.com/itchan-dev/confessions/shared/domain"
	"github.com/itchan-dev/confessions/shared/middleware/metrics"
	"github.com/itchan-dev/confessions/shared/utils"
)

// maxBodyBytes is far above any valid confession.
const maxBodyBytes = 64 << 10

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	var since *time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			http.Error(w, "since must be an RFC 3339 timestamp", http.StatusBadRequest)
			return
		}
		since = &t
	}

	posts, err := h.post.List(r.Context(), since)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	utils.WriteJSON(w, http.StatusOK, api.PostsResponse{Posts: posts})
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var body api.CreatePostRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	post, err := h.post.Create(r.Context(), body.Title, body.Body)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	metrics.PostCreated()
	utils.WriteJSON(w, http.StatusCreated, post)
}

func (h *Handler) UpdatePostCounts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "post")

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var body api.UpdateCountsRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	post, err := h.post.UpdateCounts(r.Context(), id, domain.PostCounts{Upvotes: *body.Upvotes, Downvotes: *body.Downvotes})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	metrics.CountsUpdated()
	utils.WriteJSON(w, http.StatusOK, post)
}
