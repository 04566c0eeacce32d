package feed

import (
	"context"
	"errors"
	"slices"

	"github.com/itchan-dev/confessions/client/internal/kv"
	"github.com/itchan-dev/confessions/shared/domain"
)

const SnapshotKey = "posts_cache"

// merge puts incoming posts that are not cached yet in front of the cached
// ones and restores created_at descending order. Cached entries win on id
// collisions; on equal timestamps the newer arrival comes first.
func merge(cached, incoming []domain.Post) []domain.Post {
	seen := make(map[domain.PostId]struct{}, len(cached)+len(incoming))
	for _, p := range cached {
		seen[p.Id] = struct{}{}
	}

	out := make([]domain.Post, 0, len(cached)+len(incoming))
	for _, p := range incoming {
		if _, ok := seen[p.Id]; ok {
			continue
		}
		seen[p.Id] = struct{}{}
		out = append(out, p)
	}
	out = append(out, cached...)

	slices.SortStableFunc(out, func(a, b domain.Post) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func (e *Engine) loadSnapshot(ctx context.Context) ([]domain.Post, bool) {
	var posts []domain.Post
	found, err := kv.Load(ctx, e.store, SnapshotKey, &posts)
	if errors.Is(err, kv.ErrCorrupted) {
		e.log.Warn("discarding corrupted post snapshot", "error", err)
		return nil, false
	}
	if err != nil {
		e.log.Warn("post snapshot unreadable", "error", err)
		return nil, false
	}
	if !found || len(posts) == 0 {
		return nil, false
	}

	valid := posts[:0]
	for _, p := range posts {
		if p.Id == "" || p.Upvotes < 0 || p.Downvotes < 0 {
			continue
		}
		valid = append(valid, p)
	}
	return merge(nil, valid), len(valid) > 0
}

// saveSnapshotLocked is best effort: the in-memory feed stays authoritative
// for this run when the write fails.
func (e *Engine) saveSnapshotLocked(ctx context.Context) {
	if err := kv.Save(ctx, e.store, SnapshotKey, e.posts); err != nil {
		e.log.Warn("failed to write post snapshot", "error", err)
	}
}
