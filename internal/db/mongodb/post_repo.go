package mongodb

import (
	"Tuiter/internal/core/posts"
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoPostRepo struct {
	tuits *mongo.Collection
}

// NewPostRepository creates a tuit repository over the tuits collection
func NewPostRepository(db *mongo.Database) posts.Repository {
	return &mongoPostRepo{tuits: db.Collection(TuitsCollection)}
}

func (r *mongoPostRepo) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	var post posts.Post
	err := r.tuits.FindOne(ctx, bson.M{"_id": id, "deletedAt": nil}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, posts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tuit: %w", err)
	}
	return &post, nil
}

func (r *mongoPostRepo) UpdateStats(ctx context.Context, id string, stats posts.Stats) error {
	return updateStats(ctx, r.tuits, id, stats)
}

func (r *mongoPostRepo) ListIDs(ctx context.Context, afterID string, limit int) ([]string, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.M{"_id": 1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.tuits.Find(ctx, bson.M{"_id": bson.M{"$gt": afterID}, "deletedAt": nil}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tuit IDs: %w", err)
	}

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode tuit IDs: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}
