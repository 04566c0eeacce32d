package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/itchan-dev/confessions/shared/domain"
	internal_errors "github.com/itchan-dev/confessions/shared/errors"
)

const (
	pqInvalidTextRepresentation = "22P02"
	pqCheckViolation            = "23514"
)

const postColumns = "id, title, body, created_at, upvotes, downvotes"

// =========================================================================
// Public Methods (satisfy the service.PostStorage interface)
// =========================================================================

// ListPosts returns posts created strictly after since (all when nil),
// newest first. Posts sharing a timestamp come in reverse insertion order.
func (s *Storage) ListPosts(ctx context.Context, since *time.Time) ([]domain.Post, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return s.listPosts(ctx, s.db, since)
}

// CreatePost inserts a confession; id, created_at and zero counters are
// assigned here.
func (s *Storage) CreatePost(ctx context.Context, data domain.PostCreationData) (domain.Post, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var post domain.Post
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		post, err = s.createPost(ctx, tx, data)
		return err
	})
	return post, err
}

// UpdatePostCounts overwrites both counters and returns the stored row.
func (s *Storage) UpdatePostCounts(ctx context.Context, id domain.PostId, counts domain.PostCounts) (domain.Post, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var post domain.Post
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		post, err = s.updatePostCounts(ctx, tx, id, counts)
		return err
	})
	return post, err
}

// =========================================================================
// Internal Methods (Core Database Logic)
// =========================================================================

func (s *Storage) listPosts(ctx context.Context, q Querier, since *time.Time) ([]domain.Post, error) {
	query := "SELECT " + postColumns + " FROM confessions"
	var args []any
	if since != nil {
		query += " WHERE created_at > $1"
		args = append(args, since.UTC())
	}
	query += " ORDER BY created_at DESC, seq DESC"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, nil
}

func (s *Storage) createPost(ctx context.Context, q Querier, data domain.PostCreationData) (domain.Post, error) {
	row := q.QueryRowContext(ctx,
		"INSERT INTO confessions(id, title, body) VALUES($1, $2, $3) RETURNING "+postColumns,
		uuid.NewString(), data.Title, data.Body)
	post, err := scanPost(row)
	if err != nil {
		return domain.Post{}, fmt.Errorf("failed to insert post: %w", err)
	}
	return post, nil
}

func (s *Storage) updatePostCounts(ctx context.Context, q Querier, id domain.PostId, counts domain.PostCounts) (domain.Post, error) {
	row := q.QueryRowContext(ctx,
		"UPDATE confessions SET upvotes = $2, downvotes = $3 WHERE id = $1 RETURNING "+postColumns,
		id, counts.Upvotes, counts.Downvotes)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Post{}, internal_errors.ErrNotFound
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case pqInvalidTextRepresentation: // id is not a uuid, so no such post
				return domain.Post{}, internal_errors.ErrNotFound
			case pqCheckViolation:
				return domain.Post{}, &internal_errors.ValidationError{Message: "Counts must not be negative"}
			}
		}
		return domain.Post{}, fmt.Errorf("failed to update post counts: %w", err)
	}
	return post, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (domain.Post, error) {
	var p domain.Post
	if err := row.Scan(&p.Id, &p.Title, &p.Body, &p.CreatedAt, &p.Upvotes, &p.Downvotes); err != nil {
		return domain.Post{}, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}
