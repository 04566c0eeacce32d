package feed

import (
	"context"
	"sync"
	"time"

	"github.com/itchan-dev/confessions/shared/domain"
)

type updateCall struct {
	Id     domain.PostId
	Counts domain.PostCounts
}

// MockRemoteStore records every call; unset funcs return zero values.
type MockRemoteStore struct {
	listFunc   func(ctx context.Context, since *time.Time) ([]domain.Post, error)
	insertFunc func(ctx context.Context, title, body string) (domain.Post, error)
	updateFunc func(ctx context.Context, id domain.PostId, up, down int) (domain.Post, error)

	mu          sync.Mutex
	listCalls   []*time.Time
	insertCalls []domain.PostCreationData
	updateCalls []updateCall
}

func (m *MockRemoteStore) ListPosts(ctx context.Context, since *time.Time) ([]domain.Post, error) {
	m.mu.Lock()
	m.listCalls = append(m.listCalls, since)
	m.mu.Unlock()
	if m.listFunc != nil {
		return m.listFunc(ctx, since)
	}
	return nil, nil
}

func (m *MockRemoteStore) InsertPost(ctx context.Context, title, body string) (domain.Post, error) {
	m.mu.Lock()
	m.insertCalls = append(m.insertCalls, domain.PostCreationData{Title: title, Body: body})
	m.mu.Unlock()
	if m.insertFunc != nil {
		return m.insertFunc(ctx, title, body)
	}
	return domain.Post{}, nil
}

func (m *MockRemoteStore) UpdatePostCounts(ctx context.Context, id domain.PostId, up, down int) (domain.Post, error) {
	m.mu.Lock()
	m.updateCalls = append(m.updateCalls, updateCall{Id: id, Counts: domain.PostCounts{Upvotes: up, Downvotes: down}})
	m.mu.Unlock()
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, up, down)
	}
	return domain.Post{Id: id, Upvotes: up, Downvotes: down}, nil
}

func (m *MockRemoteStore) ListCalls() []*time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*time.Time(nil), m.listCalls...)
}

func (m *MockRemoteStore) InsertCalls() []domain.PostCreationData {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.PostCreationData(nil), m.insertCalls...)
}

func (m *MockRemoteStore) UpdateCalls() []updateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]updateCall(nil), m.updateCalls...)
}
