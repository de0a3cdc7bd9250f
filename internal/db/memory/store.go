// Package memory is an in-process reactions.Store.
// It backs the service tests and STORE_BACKEND=memory for local development.
package memory

import (
	"Tuiter/internal/core/posts"
	"Tuiter/internal/core/reactions"
	"Tuiter/internal/core/users"
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

type pair struct {
	userID string
	postID string
}

type record struct {
	reaction reactions.Reaction
	seq      uint64
}

type data struct {
	users    map[string]users.User
	posts    map[string]posts.Post
	likes    map[pair]record
	dislikes map[pair]record
	seq      uint64
}

func (d *data) clone() *data {
	c := &data{
		users:    make(map[string]users.User, len(d.users)),
		posts:    make(map[string]posts.Post, len(d.posts)),
		likes:    make(map[pair]record, len(d.likes)),
		dislikes: make(map[pair]record, len(d.dislikes)),
		seq:      d.seq,
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.posts {
		c.posts[k] = v
	}
	for k, v := range d.likes {
		c.likes[k] = v
	}
	for k, v := range d.dislikes {
		c.dislikes[k] = v
	}
	return c
}

// Store keeps users, tuits and both reaction relations in maps.
// A single-slot semaphore serializes every access, so a transaction sees
// no concurrent writers and a failed one is undone by restoring a snapshot.
type Store struct {
	sem  chan struct{}
	data *data
	now  func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		sem: make(chan struct{}, 1),
		data: &data{
			users:    make(map[string]users.User),
			posts:    make(map[string]posts.Post),
			likes:    make(map[pair]record),
			dislikes: make(map[pair]record),
		},
		now: time.Now,
	}
}

func (s *Store) acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) release() {
	<-s.sem
}

// with runs fn while holding the store
func (s *Store) with(ctx context.Context, fn func(v *view) error) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()
	return fn(&view{data: s.data, now: s.now})
}

// RunInTx runs fn with exclusive access. If fn fails, or ctx is done by the
// time it returns, every write it made is discarded.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx reactions.TxRepository) error) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	snapshot := s.data.clone()
	err := fn(ctx, &view{data: s.data, now: s.now})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// PutUser inserts or replaces a user
func (s *Store) PutUser(ctx context.Context, u *users.User) error {
	return s.with(ctx, func(v *view) error {
		v.data.users[u.ID] = *u
		return nil
	})
}

// PutPost inserts or replaces a tuit
func (s *Store) PutPost(ctx context.Context, p *posts.Post) error {
	return s.with(ctx, func(v *view) error {
		stored := *p
		stored.Author = nil
		v.data.posts[p.ID] = stored
		return nil
	})
}

// DeletePost soft-deletes a tuit. Reaction records pointing at it are kept.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	return s.with(ctx, func(v *view) error {
		p, ok := v.data.posts[id]
		if !ok {
			return posts.ErrNotFound
		}
		deletedAt := v.now().UTC()
		p.DeletedAt = &deletedAt
		v.data.posts[id] = p
		return nil
	})
}

// Posts exposes the tuit table as a posts.Repository
func (s *Store) Posts() posts.Repository {
	return &postRepo{store: s}
}

func (s *Store) HasLike(ctx context.Context, userID, postID string) (has bool, err error) {
	err = s.with(ctx, func(v *view) (err error) {
		has, err = v.HasLike(ctx, userID, postID)
		return err
	})
	return has, err
}

func (s *Store) HasDislike(ctx context.Context, userID, postID string) (has bool, err error) {
	err = s.with(ctx, func(v *view) (err error) {
		has, err = v.HasDislike(ctx, userID, postID)
		return err
	})
	return has, err
}

func (s *Store) AddLike(ctx context.Context, userID, postID string) error {
	return s.with(ctx, func(v *view) error {
		return v.AddLike(ctx, userID, postID)
	})
}

func (s *Store) RemoveLike(ctx context.Context, userID, postID string) error {
	return s.with(ctx, func(v *view) error {
		return v.RemoveLike(ctx, userID, postID)
	})
}

func (s *Store) AddDislike(ctx context.Context, userID, postID string) error {
	return s.with(ctx, func(v *view) error {
		return v.AddDislike(ctx, userID, postID)
	})
}

func (s *Store) RemoveDislike(ctx context.Context, userID, postID string) error {
	return s.with(ctx, func(v *view) error {
		return v.RemoveDislike(ctx, userID, postID)
	})
}

func (s *Store) CountLikes(ctx context.Context, postID string) (n int, err error) {
	err = s.with(ctx, func(v *view) (err error) {
		n, err = v.CountLikes(ctx, postID)
		return err
	})
	return n, err
}

func (s *Store) CountDislikes(ctx context.Context, postID string) (n int, err error) {
	err = s.with(ctx, func(v *view) (err error) {
		n, err = v.CountDislikes(ctx, postID)
		return err
	})
	return n, err
}

func (s *Store) ListDislikersOfPost(ctx context.Context, postID string) (out []*users.User, err error) {
	err = s.with(ctx, func(v *view) (err error) {
		out, err = v.ListDislikersOfPost(ctx, postID)
		return err
	})
	return out, err
}

func (s *Store) ListPostsDislikedByUser(ctx context.Context, userID string) (out []*posts.Post, err error) {
	err = s.with(ctx, func(v *view) (err error) {
		out, err = v.ListPostsDislikedByUser(ctx, userID)
		return err
	})
	return out, err
}

func (s *Store) ListLikersOfPost(ctx context.Context, postID string) (out []*users.User, err error) {
	err = s.with(ctx, func(v *view) (err error) {
		out, err = v.ListLikersOfPost(ctx, postID)
		return err
	})
	return out, err
}

func (s *Store) ListPostsLikedByUser(ctx context.Context, userID string) (out []*posts.Post, err error) {
	err = s.with(ctx, func(v *view) (err error) {
		out, err = v.ListPostsLikedByUser(ctx, userID)
		return err
	})
	return out, err
}

// view operates on the data without locking; the caller holds the store
type view struct {
	data *data
	now  func() time.Time
}

func (v *view) GetPostForUpdate(_ context.Context, postID string) (*posts.Post, error) {
	p, ok := v.data.posts[postID]
	if !ok || p.IsDeleted() {
		return nil, posts.ErrNotFound
	}
	return &p, nil
}

func (v *view) UserExists(_ context.Context, userID string) (bool, error) {
	_, ok := v.data.users[userID]
	return ok, nil
}

func (v *view) UpdatePostStats(_ context.Context, postID string, stats posts.Stats) error {
	p, ok := v.data.posts[postID]
	if !ok {
		return posts.ErrNotFound
	}
	p.Stats = stats
	v.data.posts[postID] = p
	return nil
}

func (v *view) HasLike(_ context.Context, userID, postID string) (bool, error) {
	_, ok := v.data.likes[pair{userID, postID}]
	return ok, nil
}

func (v *view) HasDislike(_ context.Context, userID, postID string) (bool, error) {
	_, ok := v.data.dislikes[pair{userID, postID}]
	return ok, nil
}

func (v *view) AddLike(_ context.Context, userID, postID string) error {
	return v.add(v.data.likes, reactions.KindLike, userID, postID)
}

func (v *view) RemoveLike(_ context.Context, userID, postID string) error {
	delete(v.data.likes, pair{userID, postID})
	return nil
}

func (v *view) AddDislike(_ context.Context, userID, postID string) error {
	return v.add(v.data.dislikes, reactions.KindDislike, userID, postID)
}

func (v *view) RemoveDislike(_ context.Context, userID, postID string) error {
	delete(v.data.dislikes, pair{userID, postID})
	return nil
}

func (v *view) add(relation map[pair]record, kind reactions.Kind, userID, postID string) error {
	key := pair{userID, postID}
	if _, exists := relation[key]; exists {
		return reactions.ErrDuplicateReaction
	}
	v.data.seq++
	relation[key] = record{
		reaction: reactions.Reaction{
			ID:        uuid.NewString(),
			Kind:      kind,
			UserID:    userID,
			PostID:    postID,
			CreatedAt: v.now().UTC(),
		},
		seq: v.data.seq,
	}
	return nil
}

func (v *view) CountLikes(_ context.Context, postID string) (int, error) {
	return countFor(v.data.likes, postID), nil
}

func (v *view) CountDislikes(_ context.Context, postID string) (int, error) {
	return countFor(v.data.dislikes, postID), nil
}

func (v *view) ListDislikersOfPost(_ context.Context, postID string) ([]*users.User, error) {
	return v.usersOf(v.data.dislikes, postID), nil
}

func (v *view) ListPostsDislikedByUser(_ context.Context, userID string) ([]*posts.Post, error) {
	return v.postsOf(v.data.dislikes, userID), nil
}

func (v *view) ListLikersOfPost(_ context.Context, postID string) ([]*users.User, error) {
	return v.usersOf(v.data.likes, postID), nil
}

func (v *view) ListPostsLikedByUser(_ context.Context, userID string) ([]*posts.Post, error) {
	return v.postsOf(v.data.likes, userID), nil
}

func (v *view) usersOf(relation map[pair]record, postID string) []*users.User {
	matched := newestFirst(relation, func(k pair) bool { return k.postID == postID })
	out := make([]*users.User, 0, len(matched))
	for _, r := range matched {
		u, ok := v.data.users[r.reaction.UserID]
		if !ok {
			continue
		}
		out = append(out, &u)
	}
	return out
}

func (v *view) postsOf(relation map[pair]record, userID string) []*posts.Post {
	matched := newestFirst(relation, func(k pair) bool { return k.userID == userID })
	out := make([]*posts.Post, 0, len(matched))
	for _, r := range matched {
		p, ok := v.data.posts[r.reaction.PostID]
		if !ok || p.IsDeleted() {
			continue
		}
		if author, ok := v.data.users[p.PostedBy]; ok {
			p.Author = &author
		}
		out = append(out, &p)
	}
	return out
}

func countFor(relation map[pair]record, postID string) int {
	n := 0
	for k := range relation {
		if k.postID == postID {
			n++
		}
	}
	return n
}

func newestFirst(relation map[pair]record, match func(pair) bool) []record {
	var out []record
	for k, r := range relation {
		if match(k) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq > out[j].seq })
	return out
}

type postRepo struct {
	store *Store
}

func (r *postRepo) GetByID(ctx context.Context, id string) (post *posts.Post, err error) {
	err = r.store.with(ctx, func(v *view) (err error) {
		post, err = v.GetPostForUpdate(ctx, id)
		return err
	})
	return post, err
}

func (r *postRepo) UpdateStats(ctx context.Context, id string, stats posts.Stats) error {
	return r.store.with(ctx, func(v *view) error {
		return v.UpdatePostStats(ctx, id, stats)
	})
}

func (r *postRepo) ListIDs(ctx context.Context, afterID string, limit int) ([]string, error) {
	var ids []string
	err := r.store.with(ctx, func(v *view) error {
		for id, p := range v.data.posts {
			if id > afterID && !p.IsDeleted() {
				ids = append(ids, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}
