package postgres

import (
	"Tuiter/internal/core/posts"
	"Tuiter/internal/core/reactions"
	"Tuiter/internal/core/users"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/lib/pq"
)

// uniqueViolation is the SQLSTATE for a unique constraint violation
const uniqueViolation = "23505"

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// relation names one of the reaction tables. Table names come from these
// constants only, never from input.
type relation string

const (
	likesTable    relation = "likes"
	dislikesTable relation = "dislikes"
)

type postgresReactionRepo struct {
	q querier
}

type postgresReactionStore struct {
	postgresReactionRepo
	db *sql.DB
}

// NewReactionStore creates a PostgreSQL-backed reaction store
func NewReactionStore(db *sql.DB) reactions.Store {
	return &postgresReactionStore{
		postgresReactionRepo: postgresReactionRepo{q: db},
		db:                   db,
	}
}

// RunInTx runs fn inside a database transaction
// The tuit row lock taken by GetPostForUpdate is held until commit or rollback
func (s *postgresReactionStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx reactions.TxRepository) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && rollbackErr != sql.ErrTxDone {
			log.Printf("Failed to rollback transaction: %v", rollbackErr)
		}
	}()

	if err := fn(ctx, &postgresReactionTx{postgresReactionRepo{q: tx}}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type postgresReactionTx struct {
	postgresReactionRepo
}

// GetPostForUpdate locks the live tuit row for the rest of the transaction
func (t *postgresReactionTx) GetPostForUpdate(ctx context.Context, postID string) (*posts.Post, error) {
	query := `SELECT ` + postColumns + ` FROM tuits t WHERE t.id = $1 AND t.deleted_at IS NULL FOR UPDATE`

	post, err := scanPost(t.q.QueryRowContext(ctx, query, postID))
	if err == sql.ErrNoRows {
		return nil, posts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock tuit: %w", err)
	}
	return post, nil
}

func (t *postgresReactionTx) UserExists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := t.q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return exists, nil
}

func (t *postgresReactionTx) UpdatePostStats(ctx context.Context, postID string, stats posts.Stats) error {
	return updateStats(ctx, t.q, postID, stats)
}

func (r *postgresReactionRepo) HasLike(ctx context.Context, userID, postID string) (bool, error) {
	return r.has(ctx, likesTable, userID, postID)
}

func (r *postgresReactionRepo) HasDislike(ctx context.Context, userID, postID string) (bool, error) {
	return r.has(ctx, dislikesTable, userID, postID)
}

func (r *postgresReactionRepo) AddLike(ctx context.Context, userID, postID string) error {
	return r.add(ctx, likesTable, userID, postID)
}

func (r *postgresReactionRepo) RemoveLike(ctx context.Context, userID, postID string) error {
	return r.remove(ctx, likesTable, userID, postID)
}

func (r *postgresReactionRepo) AddDislike(ctx context.Context, userID, postID string) error {
	return r.add(ctx, dislikesTable, userID, postID)
}

func (r *postgresReactionRepo) RemoveDislike(ctx context.Context, userID, postID string) error {
	return r.remove(ctx, dislikesTable, userID, postID)
}

func (r *postgresReactionRepo) CountLikes(ctx context.Context, postID string) (int, error) {
	return r.count(ctx, likesTable, postID)
}

func (r *postgresReactionRepo) CountDislikes(ctx context.Context, postID string) (int, error) {
	return r.count(ctx, dislikesTable, postID)
}

func (r *postgresReactionRepo) ListDislikersOfPost(ctx context.Context, postID string) ([]*users.User, error) {
	return r.usersOf(ctx, dislikesTable, postID)
}

func (r *postgresReactionRepo) ListPostsDislikedByUser(ctx context.Context, userID string) ([]*posts.Post, error) {
	return r.postsOf(ctx, dislikesTable, userID)
}

func (r *postgresReactionRepo) ListLikersOfPost(ctx context.Context, postID string) ([]*users.User, error) {
	return r.usersOf(ctx, likesTable, postID)
}

func (r *postgresReactionRepo) ListPostsLikedByUser(ctx context.Context, userID string) ([]*posts.Post, error) {
	return r.postsOf(ctx, likesTable, userID)
}

func (r *postgresReactionRepo) has(ctx context.Context, rel relation, userID, postID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM ` + string(rel) + ` WHERE user_id = $1 AND tuit_id = $2)`

	var exists bool
	if err := r.q.QueryRowContext(ctx, query, userID, postID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s: %w", rel, err)
	}
	return exists, nil
}

// add inserts a reaction row
// The unique constraint on (user_id, tuit_id) turns a repeat into ErrDuplicateReaction
func (r *postgresReactionRepo) add(ctx context.Context, rel relation, userID, postID string) error {
	query := `INSERT INTO ` + string(rel) + ` (user_id, tuit_id, created_at) VALUES ($1, $2, NOW())`

	if _, err := r.q.ExecContext(ctx, query, userID, postID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return reactions.ErrDuplicateReaction
		}
		return fmt.Errorf("failed to insert into %s: %w", rel, err)
	}
	return nil
}

func (r *postgresReactionRepo) remove(ctx context.Context, rel relation, userID, postID string) error {
	query := `DELETE FROM ` + string(rel) + ` WHERE user_id = $1 AND tuit_id = $2`

	if _, err := r.q.ExecContext(ctx, query, userID, postID); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", rel, err)
	}
	return nil
}

func (r *postgresReactionRepo) count(ctx context.Context, rel relation, postID string) (int, error) {
	query := `SELECT COUNT(*) FROM ` + string(rel) + ` WHERE tuit_id = $1`

	var n int
	if err := r.q.QueryRowContext(ctx, query, postID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", rel, err)
	}
	return n, nil
}

// usersOf resolves the users who reacted to a tuit, newest reaction first
func (r *postgresReactionRepo) usersOf(ctx context.Context, rel relation, postID string) ([]*users.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM ` + string(rel) + ` r
		JOIN users u ON u.id = r.user_id
		WHERE r.tuit_id = $1
		ORDER BY r.created_at DESC, r.id DESC`

	rows, err := r.q.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s by tuit: %w", rel, err)
	}
	defer closeRows(rows)

	result := []*users.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		result = append(result, user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return result, nil
}

// postsOf resolves the live tuits a user reacted to, with their authors,
// newest reaction first
func (r *postgresReactionRepo) postsOf(ctx context.Context, rel relation, userID string) ([]*posts.Post, error) {
	query := `
		SELECT ` + postColumns + `, ` + userColumns + `
		FROM ` + string(rel) + ` r
		JOIN tuits t ON t.id = r.tuit_id AND t.deleted_at IS NULL
		JOIN users u ON u.id = t.posted_by
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC, r.id DESC`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s by user: %w", rel, err)
	}
	defer closeRows(rows)

	result := []*posts.Post{}
	for rows.Next() {
		post, err := scanPostWithAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tuit row: %w", err)
		}
		result = append(result, post)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tuit rows: %w", err)
	}
	return result, nil
}

// scanPostWithAuthor reads a row of postColumns followed by userColumns
func scanPostWithAuthor(rows *sql.Rows) (*posts.Post, error) {
	var (
		image, youtube, avatarLogo, imageOverlay sql.NullString
		deletedAt                                sql.NullTime
		email, firstName, lastName               sql.NullString
		profilePhoto, biography                  sql.NullString
	)
	post := &posts.Post{}
	author := &users.User{}
	err := rows.Scan(
		&post.ID, &post.Tuit, &post.PostedBy, &post.PostedOn,
		&image, &youtube, &avatarLogo, &imageOverlay,
		&post.Stats.Replies, &post.Stats.Retuits, &post.Stats.Likes,
		&deletedAt,
		&author.ID, &author.Username, &email, &firstName, &lastName,
		&profilePhoto, &biography, &author.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	post.Image = nullableString(image)
	post.Youtube = nullableString(youtube)
	post.AvatarLogo = nullableString(avatarLogo)
	post.ImageOverlay = nullableString(imageOverlay)
	if deletedAt.Valid {
		post.DeletedAt = &deletedAt.Time
	}

	author.Email = email.String
	author.FirstName = firstName.String
	author.LastName = lastName.String
	author.ProfilePhoto = profilePhoto.String
	author.Biography = biography.String
	post.Author = author

	return post, nil
}
