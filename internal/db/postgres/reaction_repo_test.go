package postgres

import (
	"Tuiter/internal/core/posts"
	"Tuiter/internal/core/reactions"
	"Tuiter/internal/db/migrations"
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to TEST_DATABASE_URL and runs migrations
func setupTestDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, migrations.Up(db), "Failed to run migrations")

	return db
}

type fixture struct {
	db     *sql.DB
	prefix string
}

// newFixture scopes every row the test creates under a random ID prefix
func newFixture(t *testing.T) *fixture {
	db := setupTestDB(t)
	f := &fixture{db: db, prefix: "test-" + uuid.NewString()[:8] + "-"}
	t.Cleanup(func() {
		like := f.prefix + "%"
		_, _ = db.Exec(`DELETE FROM likes WHERE user_id LIKE $1`, like)
		_, _ = db.Exec(`DELETE FROM dislikes WHERE user_id LIKE $1`, like)
		_, _ = db.Exec(`DELETE FROM tuits WHERE id LIKE $1`, like)
		_, _ = db.Exec(`DELETE FROM users WHERE id LIKE $1`, like)
		_ = db.Close()
	})
	return f
}

func (f *fixture) id(name string) string {
	return f.prefix + name
}

func (f *fixture) createUser(t *testing.T, name string) string {
	id := f.id(name)
	_, err := f.db.Exec(`INSERT INTO users (id, username) VALUES ($1, $1)`, id)
	require.NoError(t, err, "Failed to create test user")
	return id
}

func (f *fixture) createPost(t *testing.T, name, author string, likes int) string {
	id := f.id(name)
	_, err := f.db.Exec(`INSERT INTO tuits (id, tuit, posted_by, replies, likes) VALUES ($1, 'hello', $2, 5, $3)`, id, author, likes)
	require.NoError(t, err, "Failed to create test tuit")
	return id
}

func TestReactionRepo_AddRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := NewReactionStore(f.db)

	user := f.createUser(t, "alice")
	post := f.createPost(t, "t1", user, 0)

	require.NoError(t, store.AddDislike(ctx, user, post))
	err := store.AddDislike(ctx, user, post)
	assert.ErrorIs(t, err, reactions.ErrDuplicateReaction)

	has, err := store.HasDislike(ctx, user, post)
	require.NoError(t, err)
	assert.True(t, has)

	n, err := store.CountDislikes(ctx, post)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, store.RemoveDislike(ctx, user, post))
	require.NoError(t, store.RemoveDislike(ctx, user, post))

	has, err = store.HasDislike(ctx, user, post)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestReactionStore_RunInTx_Rollback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := NewReactionStore(f.db)

	user := f.createUser(t, "bob")
	post := f.createPost(t, "t1", user, 3)

	err := store.RunInTx(ctx, func(ctx context.Context, tx reactions.TxRepository) error {
		locked, err := tx.GetPostForUpdate(ctx, post)
		require.NoError(t, err)
		assert.Equal(t, 5, locked.Stats.Replies)

		require.NoError(t, tx.AddLike(ctx, user, post))
		require.NoError(t, tx.UpdatePostStats(ctx, post, posts.Stats{Replies: 5, Likes: 4}))
		return fmt.Errorf("abort")
	})
	require.Error(t, err)

	has, err := store.HasLike(ctx, user, post)
	require.NoError(t, err)
	assert.False(t, has)

	got, err := NewPostRepository(f.db).GetByID(ctx, post)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stats.Likes)
}

func TestReactionStore_GetPostForUpdate_Deleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := NewReactionStore(f.db)

	user := f.createUser(t, "carol")
	post := f.createPost(t, "t1", user, 0)
	_, err := f.db.Exec(`UPDATE tuits SET deleted_at = NOW() WHERE id = $1`, post)
	require.NoError(t, err)

	err = store.RunInTx(ctx, func(ctx context.Context, tx reactions.TxRepository) error {
		_, err := tx.GetPostForUpdate(ctx, post)
		return err
	})
	assert.ErrorIs(t, err, posts.ErrNotFound)
}

func TestReactionRepo_ListPostsDislikedByUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := NewReactionStore(f.db)

	user := f.createUser(t, "dave")
	author := f.createUser(t, "erin")
	live := f.createPost(t, "t1", author, 0)
	gone := f.createPost(t, "t2", author, 0)

	require.NoError(t, store.AddDislike(ctx, user, live))
	require.NoError(t, store.AddDislike(ctx, user, gone))
	_, err := f.db.Exec(`UPDATE tuits SET deleted_at = NOW() WHERE id = $1`, gone)
	require.NoError(t, err)

	disliked, err := store.ListPostsDislikedByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, disliked, 1)
	assert.Equal(t, live, disliked[0].ID)
	require.NotNil(t, disliked[0].Author)
	assert.Equal(t, author, disliked[0].Author.ID)

	dislikers, err := store.ListDislikersOfPost(ctx, live)
	require.NoError(t, err)
	require.Len(t, dislikers, 1)
	assert.Equal(t, user, dislikers[0].ID)

	none, err := store.ListPostsLikedByUser(ctx, user)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestReactionService_ConcurrentTogglesOnPostgres(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := reactions.NewReactionService(NewReactionStore(f.db))

	author := f.createUser(t, "author")
	post := f.createPost(t, "t1", author, 0)

	const reactors = 8
	const togglesEach = 5
	var wg sync.WaitGroup
	for i := 0; i < reactors; i++ {
		user := f.createUser(t, fmt.Sprintf("r%d", i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < togglesEach; j++ {
				_, err := svc.ToggleDislike(ctx, user, post)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	// five toggles each leave every reactor Disliked
	got, err := NewPostRepository(f.db).GetByID(ctx, post)
	require.NoError(t, err)
	assert.Equal(t, -reactors, got.Stats.Likes)
	assert.Equal(t, 5, got.Stats.Replies)
}

func TestPostRepo_ListIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := NewPostRepository(f.db)

	author := f.createUser(t, "frank")
	a := f.createPost(t, "a", author, 0)
	b := f.createPost(t, "b", author, 0)

	ids, err := repo.ListIDs(ctx, f.prefix, 10)
	require.NoError(t, err)
	assert.Contains(t, ids, a)
	assert.Contains(t, ids, b)

	_, err = repo.GetByID(ctx, f.id("missing"))
	assert.ErrorIs(t, err, posts.ErrNotFound)
}
