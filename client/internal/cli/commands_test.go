package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itchan-dev/confessions/shared/api"
	"github.com/itchan-dev/confessions/shared/domain"
	"github.com/itchan-dev/confessions/shared/logger"
)

type backend struct {
	mu         sync.Mutex
	posts      []domain.Post
	failList   bool
	failPatch  bool
	patchCalls int
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case r.Method == http.MethodGet:
		if b.failList {
			http.Error(w, "list temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(api.PostsResponse{Posts: b.posts})
	case r.Method == http.MethodPost:
		var req api.CreatePostRequest
		json.NewDecoder(r.Body).Decode(&req)
		p := domain.Post{Id: fmt.Sprintf("p%d", len(b.posts)+1), Title: req.Title, Body: req.Body, CreatedAt: time.Now().UTC()}
		b.posts = append([]domain.Post{p}, b.posts...)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(p)
	case r.Method == http.MethodPatch:
		b.patchCalls++
		if b.failPatch {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/v1/posts/")
		var req api.UpdateCountsRequest
		json.NewDecoder(r.Body).Decode(&req)
		for i := range b.posts {
			if b.posts[i].Id == id {
				b.posts[i].Upvotes, b.posts[i].Downvotes = *req.Upvotes, *req.Downvotes
				json.NewEncoder(w).Encode(b.posts[i])
				return
			}
		}
		http.Error(w, "Post not found", http.StatusNotFound)
	}
}

// setupConfig writes a config folder pointing at the test backend.
func setupConfig(t *testing.T, apiURL string) string {
	t.Helper()
	dir := t.TempDir()
	public := fmt.Sprintf(`api_url: %q
api_port: 8080
state_path: %q
submit_cooldown: "17m"
vote_debounce: 10ms
request_timeout: 2s
`, apiURL, filepath.Join(dir, "state.db"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "public.yaml"), []byte(public), 0o600))
	t.Cleanup(func() { logger.Initialize("info", false) })
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

type postsResponse struct {
	Status  string     `json:"status"`
	Data    []PostView `json:"data"`
	Warning string     `json:"warning"`
}

type postResponse struct {
	Status string   `json:"status"`
	Data   PostView `json:"data"`
}

func TestFeedCommand(t *testing.T) {
	b := &backend{posts: []domain.Post{
		{Id: "new", Title: "newer", Body: "b", CreatedAt: time.Date(2024, 3, 1, 12, 5, 0, 0, time.UTC)},
		{Id: "old", Title: "older", Body: "a", CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), Upvotes: 2},
	}}
	server := httptest.NewServer(b)
	defer server.Close()
	dir := setupConfig(t, server.URL)

	out, err := execute(t, "-c", dir, "--format", "json", "feed")
	require.NoError(t, err)

	var resp postsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "new", resp.Data[0].Id)
	assert.Equal(t, 2, resp.Data[1].Upvotes)
	assert.Empty(t, resp.Warning)

	out, err = execute(t, "-c", dir, "feed", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "newer")
	assert.NotContains(t, out, "older")
}

func TestFeedCommand_OfflineUsesCache(t *testing.T) {
	b := &backend{posts: []domain.Post{
		{Id: "cached", Title: "cached one", Body: "b", CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
	}}
	server := httptest.NewServer(b)
	dir := setupConfig(t, server.URL)

	_, err := execute(t, "-c", dir, "feed")
	require.NoError(t, err)
	server.Close()

	out, err := execute(t, "-c", dir, "--format", "json", "feed")
	require.NoError(t, err)

	var resp postsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "cached", resp.Data[0].Id)
	assert.Contains(t, resp.Warning, "showing cached confessions")
}

func TestSubmitVoteAndCooldown(t *testing.T) {
	b := &backend{}
	server := httptest.NewServer(b)
	defer server.Close()
	dir := setupConfig(t, server.URL)

	out, err := execute(t, "-c", dir, "--format", "json", "submit", "-t", "hello", "-b", "<p>my secret</p>")
	require.NoError(t, err)
	var submitted postResponse
	require.NoError(t, json.Unmarshal([]byte(out), &submitted))
	assert.Equal(t, "my secret", submitted.Data.Body)

	_, err = execute(t, "-c", dir, "submit", "-t", "again", "-b", "too soon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Slow down")

	out, err = execute(t, "-c", dir, "--format", "json", "up", submitted.Data.Id)
	require.NoError(t, err)
	var voted postResponse
	require.NoError(t, json.Unmarshal([]byte(out), &voted))
	assert.Equal(t, 1, voted.Data.Upvotes)
	assert.Equal(t, domain.VoteUp, voted.Data.MyVote)

	out, err = execute(t, "-c", dir, "--format", "json", "up", submitted.Data.Id)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &voted))
	assert.Equal(t, 0, voted.Data.Upvotes, "second up retracts")
	assert.Equal(t, domain.VoteNone, voted.Data.MyVote)

	b.mu.Lock()
	assert.Equal(t, 2, b.patchCalls)
	b.mu.Unlock()

	out, err = execute(t, "-c", dir, "--format", "json", "cooldown")
	require.NoError(t, err)
	var status struct {
		Data cooldownStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.False(t, status.Data.Allowed)
	assert.Equal(t, "17m0s", status.Data.Window)
	assert.Greater(t, status.Data.RemainingSeconds, int64(16*60))
}

func TestVoteCommand_FailedWriteIsReported(t *testing.T) {
	b := &backend{
		posts:     []domain.Post{{Id: "p1", Title: "t", Body: "b", CreatedAt: time.Now().UTC(), Upvotes: 3}},
		failPatch: true,
	}
	server := httptest.NewServer(b)
	defer server.Close()
	dir := setupConfig(t, server.URL)

	_, err := execute(t, "-c", dir, "down", "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vote not saved")

	out, err := execute(t, "-c", dir, "--format", "json", "feed")
	require.NoError(t, err)
	var resp postsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 0, resp.Data[0].Downvotes, "rolled back")
	assert.Equal(t, domain.VoteNone, resp.Data[0].MyVote)
}

func TestVoteCommand_SavedDespiteListOutage(t *testing.T) {
	b := &backend{posts: []domain.Post{{Id: "p1", Title: "t", Body: "b", CreatedAt: time.Now().UTC()}}}
	server := httptest.NewServer(b)
	defer server.Close()
	dir := setupConfig(t, server.URL)

	_, err := execute(t, "-c", dir, "feed")
	require.NoError(t, err)

	b.mu.Lock()
	b.failList = true
	b.mu.Unlock()

	out, err := execute(t, "-c", dir, "--format", "json", "up", "p1")
	require.NoError(t, err)
	var voted postResponse
	require.NoError(t, json.Unmarshal([]byte(out), &voted))
	assert.Equal(t, 1, voted.Data.Upvotes)
	assert.Equal(t, domain.VoteUp, voted.Data.MyVote)

	b.mu.Lock()
	defer b.mu.Unlock()
	assert.Equal(t, 1, b.patchCalls)
	assert.Equal(t, 1, b.posts[0].Upvotes)
}

func TestVoteCommand_UnknownPost(t *testing.T) {
	server := httptest.NewServer(&backend{})
	defer server.Close()
	dir := setupConfig(t, server.URL)

	_, err := execute(t, "-c", dir, "up", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Post not found")
}
