package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/itchan-dev/confessions/shared/config"
	"github.com/itchan-dev/confessions/shared/domain"
)

// MockPostService mocks the service.PostService interface.
type MockPostService struct {
	listFunc         func(ctx context.Context, since *time.Time) ([]domain.Post, error)
	createFunc       func(ctx context.Context, title, body string) (domain.Post, error)
	updateCountsFunc func(ctx context.Context, id domain.PostId, counts domain.PostCounts) (domain.Post, error)
}

func (m *MockPostService) List(ctx context.Context, since *time.Time) ([]domain.Post, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, since)
	}
	return nil, nil
}

func (m *MockPostService) Create(ctx context.Context, title, body string) (domain.Post, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, title, body)
	}
	return domain.Post{}, nil
}

func (m *MockPostService) UpdateCounts(ctx context.Context, id domain.PostId, counts domain.PostCounts) (domain.Post, error) {
	if m.updateCountsFunc != nil {
		return m.updateCountsFunc(ctx, id, counts)
	}
	return domain.Post{}, nil
}

// MockHealthChecker mocks the HealthChecker interface.
type MockHealthChecker struct {
	PingFunc func(ctx context.Context) error
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

func newTestHandler(post *MockPostService) *Handler {
	return New(post, &MockHealthChecker{}, &config.Config{})
}

func createRequest(t *testing.T, method, url string, body []byte) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, url, bytes.NewBuffer(body))
}

// withURLParams sets chi route params the way the router would.
func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
