package routes

import (
	"Tuiter/internal/core/posts"
	"Tuiter/internal/core/reactions"
	"Tuiter/internal/core/users"
	"Tuiter/internal/db/memory"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReactionRouter(t *testing.T) (http.Handler, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.PutUser(ctx, &users.User{ID: "u1", Username: "alice"}))
	require.NoError(t, store.PutUser(ctx, &users.User{ID: "u2", Username: "bob"}))
	require.NoError(t, store.PutPost(ctx, &posts.Post{ID: "t1", Tuit: "hello", PostedBy: "u2"}))

	r := chi.NewRouter()
	RegisterReactionRoutes(r, reactions.NewReactionService(store))
	return r, store
}

func do(t *testing.T, h http.Handler, method, path string) (int, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, nil))

	var body map[string]interface{}
	if w.Code == http.StatusOK && w.Body.Len() > 0 && w.Body.Bytes()[0] == '[' {
		return w.Code, nil
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w.Code, body
}

func TestReactionRoutes_ToggleCycle(t *testing.T) {
	h, store := newReactionRouter(t)

	code, body := do(t, h, http.MethodPut, "/api/users/u1/likes/t1")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "liked", body["state"])
	assert.Equal(t, float64(1), body["likeCount"])

	code, body = do(t, h, http.MethodPut, "/api/users/u1/dislikes/t1")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "liked", body["previous"])
	assert.Equal(t, "disliked", body["state"])
	assert.Equal(t, float64(-1), body["likeCount"])

	_, body = do(t, h, http.MethodGet, "/api/users/u1/dislikes/t1")
	assert.Equal(t, "disliked", body["status"])
	_, body = do(t, h, http.MethodGet, "/api/users/u1/likes/t1")
	assert.Equal(t, "nothing", body["status"])
	_, body = do(t, h, http.MethodGet, "/api/users/u1/reactions/t1")
	assert.Equal(t, "disliked", body["state"])

	_, body = do(t, h, http.MethodGet, "/api/tuits/t1/reactions/count")
	assert.Equal(t, float64(0), body["likes"])
	assert.Equal(t, float64(1), body["dislikes"])

	code, body = do(t, h, http.MethodDelete, "/api/users/u1/dislikes/t1")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "neutral", body["state"])

	code, body = do(t, h, http.MethodDelete, "/api/users/u1/dislikes/t1")
	require.Equal(t, http.StatusOK, code, "undislike is idempotent")
	assert.Equal(t, "neutral", body["previous"])

	post, err := store.Posts().GetByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 0, post.Stats.Likes)
}

func TestReactionRoutes_Lists(t *testing.T) {
	h, _ := newReactionRouter(t)

	code, _ := do(t, h, http.MethodPut, "/api/users/u1/dislikes/t1")
	require.Equal(t, http.StatusOK, code)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tuits/t1/dislikes", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var dislikers []*users.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dislikers))
	require.Len(t, dislikers, 1)
	assert.Equal(t, "alice", dislikers[0].Username)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/u1/dislikes", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var disliked []*posts.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &disliked))
	require.Len(t, disliked, 1)
	assert.Equal(t, "t1", disliked[0].ID)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/u1/likes", nil))
	assert.Equal(t, "[]\n", w.Body.String())
}

func TestReactionRoutes_NotFound(t *testing.T) {
	h, _ := newReactionRouter(t)

	code, body := do(t, h, http.MethodPut, "/api/users/u1/likes/missing")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, reactions.CodeNotFound, body["error"])

	code, body = do(t, h, http.MethodPut, "/api/users/ghost/likes/t1")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User not found", body["message"])

	_, body = do(t, h, http.MethodGet, "/api/users/ghost/reactions/t1")
	assert.Equal(t, "neutral", body["state"])
}
