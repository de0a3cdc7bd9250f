package mongodb

import (
	"Tuiter/internal/core/posts"
	"Tuiter/internal/core/reactions"
	"Tuiter/internal/core/users"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// relation describes one reaction collection.
// likes documents carry likedBy, dislikes documents carry dislikedBy.
type relation struct {
	collection string
	userField  string
}

var (
	likesRelation    = relation{collection: LikesCollection, userField: "likedBy"}
	dislikesRelation = relation{collection: DislikesCollection, userField: "dislikedBy"}
)

func (rel relation) document(userID, postID string) bson.D {
	return bson.D{
		{Key: "_id", Value: uuid.NewString()},
		{Key: "tuit", Value: postID},
		{Key: rel.userField, Value: userID},
		{Key: "createdAt", Value: time.Now().UTC()},
	}
}

func (rel relation) filter(userID, postID string) bson.M {
	return bson.M{"tuit": postID, rel.userField: userID}
}

type mongoReactionRepo struct {
	users    *mongo.Collection
	tuits    *mongo.Collection
	likes    *mongo.Collection
	dislikes *mongo.Collection
}

func newReactionRepo(db *mongo.Database) mongoReactionRepo {
	return mongoReactionRepo{
		users:    db.Collection(UsersCollection),
		tuits:    db.Collection(TuitsCollection),
		likes:    db.Collection(LikesCollection),
		dislikes: db.Collection(DislikesCollection),
	}
}

func (r *mongoReactionRepo) coll(rel relation) *mongo.Collection {
	if rel == likesRelation {
		return r.likes
	}
	return r.dislikes
}

func (r *mongoReactionRepo) HasLike(ctx context.Context, userID, postID string) (bool, error) {
	return r.has(ctx, likesRelation, userID, postID)
}

func (r *mongoReactionRepo) HasDislike(ctx context.Context, userID, postID string) (bool, error) {
	return r.has(ctx, dislikesRelation, userID, postID)
}

func (r *mongoReactionRepo) AddLike(ctx context.Context, userID, postID string) error {
	return r.add(ctx, likesRelation, userID, postID)
}

func (r *mongoReactionRepo) RemoveLike(ctx context.Context, userID, postID string) error {
	return r.remove(ctx, likesRelation, userID, postID)
}

func (r *mongoReactionRepo) AddDislike(ctx context.Context, userID, postID string) error {
	return r.add(ctx, dislikesRelation, userID, postID)
}

func (r *mongoReactionRepo) RemoveDislike(ctx context.Context, userID, postID string) error {
	return r.remove(ctx, dislikesRelation, userID, postID)
}

func (r *mongoReactionRepo) CountLikes(ctx context.Context, postID string) (int, error) {
	return r.count(ctx, likesRelation, postID)
}

func (r *mongoReactionRepo) CountDislikes(ctx context.Context, postID string) (int, error) {
	return r.count(ctx, dislikesRelation, postID)
}

func (r *mongoReactionRepo) ListDislikersOfPost(ctx context.Context, postID string) ([]*users.User, error) {
	return r.usersOf(ctx, dislikesRelation, postID)
}

func (r *mongoReactionRepo) ListPostsDislikedByUser(ctx context.Context, userID string) ([]*posts.Post, error) {
	return r.postsOf(ctx, dislikesRelation, userID)
}

func (r *mongoReactionRepo) ListLikersOfPost(ctx context.Context, postID string) ([]*users.User, error) {
	return r.usersOf(ctx, likesRelation, postID)
}

func (r *mongoReactionRepo) ListPostsLikedByUser(ctx context.Context, userID string) ([]*posts.Post, error) {
	return r.postsOf(ctx, likesRelation, userID)
}

func (r *mongoReactionRepo) has(ctx context.Context, rel relation, userID, postID string) (bool, error) {
	n, err := r.coll(rel).CountDocuments(ctx, rel.filter(userID, postID), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", rel.collection, err)
	}
	return n > 0, nil
}

func (r *mongoReactionRepo) add(ctx context.Context, rel relation, userID, postID string) error {
	if _, err := r.coll(rel).InsertOne(ctx, rel.document(userID, postID)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return reactions.ErrDuplicateReaction
		}
		return fmt.Errorf("failed to insert into %s: %w", rel.collection, err)
	}
	return nil
}

func (r *mongoReactionRepo) remove(ctx context.Context, rel relation, userID, postID string) error {
	if _, err := r.coll(rel).DeleteOne(ctx, rel.filter(userID, postID)); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", rel.collection, err)
	}
	return nil
}

func (r *mongoReactionRepo) count(ctx context.Context, rel relation, postID string) (int, error) {
	n, err := r.coll(rel).CountDocuments(ctx, bson.M{"tuit": postID})
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", rel.collection, err)
	}
	return int(n), nil
}

// find returns reaction documents newest first
func (r *mongoReactionRepo) find(ctx context.Context, rel relation, filter bson.M) ([]bson.M, error) {
	cursor, err := r.coll(rel).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", rel.collection, err)
	}

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", rel.collection, err)
	}
	return docs, nil
}

// usersOf resolves the users who reacted to a tuit, newest reaction first.
// Reactions by users that no longer exist are skipped.
func (r *mongoReactionRepo) usersOf(ctx context.Context, rel relation, postID string) ([]*users.User, error) {
	docs, err := r.find(ctx, rel, bson.M{"tuit": postID})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		if id, ok := doc[rel.userField].(string); ok {
			ids = append(ids, id)
		}
	}

	byID, err := findUsers(ctx, r.users, ids)
	if err != nil {
		return nil, err
	}

	result := make([]*users.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			result = append(result, u)
		}
	}
	return result, nil
}

// postsOf resolves the live tuits a user reacted to, with their authors,
// newest reaction first
func (r *mongoReactionRepo) postsOf(ctx context.Context, rel relation, userID string) ([]*posts.Post, error) {
	docs, err := r.find(ctx, rel, bson.M{rel.userField: userID})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		if id, ok := doc["tuit"].(string); ok {
			ids = append(ids, id)
		}
	}

	byID, err := findLivePosts(ctx, r.tuits, ids)
	if err != nil {
		return nil, err
	}

	authorIDs := make([]string, 0, len(byID))
	for _, p := range byID {
		authorIDs = append(authorIDs, p.PostedBy)
	}
	authors, err := findUsers(ctx, r.users, authorIDs)
	if err != nil {
		return nil, err
	}

	result := make([]*posts.Post, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			continue
		}
		p.Author = authors[p.PostedBy]
		result = append(result, p)
	}
	return result, nil
}

func findUsers(ctx context.Context, coll *mongo.Collection, ids []string) (map[string]*users.User, error) {
	result := make(map[string]*users.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	var found []*users.User
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	for _, u := range found {
		result[u.ID] = u
	}
	return result, nil
}

func findLivePosts(ctx context.Context, coll *mongo.Collection, ids []string) (map[string]*posts.Post, error) {
	result := make(map[string]*posts.Post, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}, "deletedAt": nil})
	if err != nil {
		return nil, fmt.Errorf("failed to query tuits: %w", err)
	}

	var found []*posts.Post
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("failed to decode tuits: %w", err)
	}
	for _, p := range found {
		result[p.ID] = p
	}
	return result, nil
}
