package postgres

import (
	"Tuiter/internal/core/posts"
	"context"
	"database/sql"
	"fmt"
)

const postColumns = `t.id, t.tuit, t.posted_by, t.posted_on, t.image, t.youtube, t.avatar_logo,
	t.image_overlay, t.replies, t.retuits, t.likes, t.deleted_at`

type postgresPostRepo struct {
	db *sql.DB
}

// NewPostRepository creates a new PostgreSQL tuit repository
func NewPostRepository(db *sql.DB) posts.Repository {
	return &postgresPostRepo{db: db}
}

// GetByID retrieves a live tuit
// Returns ErrNotFound for missing and soft-deleted tuits
func (r *postgresPostRepo) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	query := `SELECT ` + postColumns + ` FROM tuits t WHERE t.id = $1 AND t.deleted_at IS NULL`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, posts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tuit: %w", err)
	}
	return post, nil
}

// UpdateStats overwrites the stats block of a tuit
func (r *postgresPostRepo) UpdateStats(ctx context.Context, id string, stats posts.Stats) error {
	return updateStats(ctx, r.db, id, stats)
}

// ListIDs pages through live tuit IDs in ascending order
func (r *postgresPostRepo) ListIDs(ctx context.Context, afterID string, limit int) ([]string, error) {
	query := `
		SELECT id FROM tuits
		WHERE id > $1 AND deleted_at IS NULL
		ORDER BY id
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list tuit IDs: %w", err)
	}
	defer closeRows(rows)

	ids := make([]string, 0, limit)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan tuit ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tuit IDs: %w", err)
	}

	return ids, nil
}

func updateStats(ctx context.Context, q querier, id string, stats posts.Stats) error {
	query := `
		UPDATE tuits
		SET replies = $2, retuits = $3, likes = $4
		WHERE id = $1`

	result, err := q.ExecContext(ctx, query, id, stats.Replies, stats.Retuits, stats.Likes)
	if err != nil {
		return fmt.Errorf("failed to update tuit stats: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rowsAffected == 0 {
		return posts.ErrNotFound
	}

	return nil
}

func scanPost(row scanner) (*posts.Post, error) {
	post := &posts.Post{}
	var image, youtube, avatarLogo, imageOverlay sql.NullString
	var deletedAt sql.NullTime
	err := row.Scan(
		&post.ID, &post.Tuit, &post.PostedBy, &post.PostedOn,
		&image, &youtube, &avatarLogo, &imageOverlay,
		&post.Stats.Replies, &post.Stats.Retuits, &post.Stats.Likes,
		&deletedAt,
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
	return post, nil
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
