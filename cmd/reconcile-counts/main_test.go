package main

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"Tuiter/internal/config"
	"Tuiter/internal/core/posts"
	"Tuiter/internal/core/reactions"
	"Tuiter/internal/core/users"
	"Tuiter/internal/db/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.PutUser(ctx, &users.User{ID: "u1", Username: "u1"}))
	require.NoError(t, store.PutUser(ctx, &users.User{ID: "u2", Username: "u2"}))

	// t0..t4; odd tuits carry a stale counter
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("t%d", i)
		require.NoError(t, store.PutPost(ctx, &posts.Post{ID: id, PostedBy: "u1", Stats: posts.Stats{Likes: i % 2 * 10}}))
		require.NoError(t, store.AddLike(ctx, "u2", id))
	}
	for i := 0; i < 5; i += 2 {
		require.NoError(t, store.Posts().UpdateStats(ctx, fmt.Sprintf("t%d", i), posts.Stats{Likes: 1}))
	}
	return store
}

func TestReconcileAll_RepairsDrift(t *testing.T) {
	ctx := context.Background()
	store := seed(t)
	service := reactions.NewReactionService(store)

	s, err := reconcileAll(ctx, store.Posts(), service, 2, false)
	require.NoError(t, err)
	assert.Equal(t, summary{checked: 5, drifted: 2}, s)

	for i := 0; i < 5; i++ {
		post, err := store.Posts().GetByID(ctx, fmt.Sprintf("t%d", i))
		require.NoError(t, err)
		assert.Equal(t, 1, post.Stats.Likes)
	}
}

func TestReconcileAll_DryRunLeavesCounters(t *testing.T) {
	ctx := context.Background()
	store := seed(t)
	service := reactions.NewReactionService(store)

	s, err := reconcileAll(ctx, store.Posts(), service, 10, true)
	require.NoError(t, err)
	assert.Equal(t, 2, s.drifted)

	post, err := store.Posts().GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 10, post.Stats.Likes)
}

func TestValidateBatch(t *testing.T) {
	assert.NoError(t, validateBatch(1))
	assert.Error(t, validateBatch(0))
	assert.Error(t, validateBatch(-5))
}

func TestRun_MemoryBackend(t *testing.T) {
	cfg := &config.Config{StoreBackend: config.BackendMemory}
	assert.NoError(t, run(context.Background(), cfg, slog.Default(), 10, false))
}

func TestRun_UnknownBackendReturnsError(t *testing.T) {
	cfg := &config.Config{StoreBackend: "sqlite"}
	assert.Error(t, run(context.Background(), cfg, slog.Default(), 10, false))
}
