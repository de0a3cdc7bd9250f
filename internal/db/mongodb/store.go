// Package mongodb stores users, tuits and reactions in MongoDB collections
// users, tuits, likes and dislikes
package mongodb

import (
	"Tuiter/internal/core/posts"
	"Tuiter/internal/core/reactions"
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	UsersCollection    = "users"
	TuitsCollection    = "tuits"
	LikesCollection    = "likes"
	DislikesCollection = "dislikes"
)

// Connect opens a client and verifies the deployment is reachable.
// Transactions need a replica set or sharded cluster.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the unique (tuit, user) indexes that back the
// one-record-per-pair rule, plus the per-user listing indexes
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, rel := range []relation{likesRelation, dislikesRelation} {
		_, err := db.Collection(rel.collection).Indexes().CreateMany(ctx, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "tuit", Value: 1}, {Key: rel.userField, Value: 1}},
				Options: options.Index().SetUnique(true).SetName("unique_" + rel.collection + "_tuit_user"),
			},
			{
				Keys: bson.D{{Key: rel.userField, Value: 1}, {Key: "createdAt", Value: -1}},
			},
		})
		if err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", rel.collection, err)
		}
	}
	return nil
}

type mongoReactionStore struct {
	mongoReactionRepo
	client *mongo.Client
}

// NewReactionStore creates a MongoDB-backed reaction store on db
func NewReactionStore(db *mongo.Database) reactions.Store {
	return &mongoReactionStore{
		mongoReactionRepo: newReactionRepo(db),
		client:            db.Client(),
	}
}

// RunInTx runs fn in a multi-document transaction.
// Every toggle first bumps stats.version on the tuit (GetPostForUpdate), so two
// transactions on the same tuit write-conflict and the driver retries the loser
// from the start.
func (s *mongoReactionStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx reactions.TxRepository) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(context.Background())

	tx := &mongoReactionTx{mongoReactionRepo: s.mongoReactionRepo}
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, tx)
	})
	return err
}

type mongoReactionTx struct {
	mongoReactionRepo
}

// GetPostForUpdate claims the live tuit by incrementing its version
func (t *mongoReactionTx) GetPostForUpdate(ctx context.Context, postID string) (*posts.Post, error) {
	var post posts.Post
	err := t.tuits.FindOneAndUpdate(ctx,
		bson.M{"_id": postID, "deletedAt": nil},
		bson.M{"$inc": bson.M{"stats.version": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, posts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim tuit: %w", err)
	}
	return &post, nil
}

func (t *mongoReactionTx) UserExists(ctx context.Context, userID string) (bool, error) {
	n, err := t.users.CountDocuments(ctx, bson.M{"_id": userID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return n > 0, nil
}

func (t *mongoReactionTx) UpdatePostStats(ctx context.Context, postID string, stats posts.Stats) error {
	return updateStats(ctx, t.tuits, postID, stats)
}

func updateStats(ctx context.Context, tuits *mongo.Collection, postID string, stats posts.Stats) error {
	result, err := tuits.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$set": bson.M{
			"stats.replies": stats.Replies,
			"stats.retuits": stats.Retuits,
			"stats.likes":   stats.Likes,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update tuit stats: %w", err)
	}
	if result.MatchedCount == 0 {
		return posts.ErrNotFound
	}
	return nil
}

var (
	_ reactions.Store  = (*mongoReactionStore)(nil)
	_ posts.Repository = (*mongoPostRepo)(nil)
)
