package reactions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"Tuiter/internal/core/posts"
	"Tuiter/internal/core/users"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("Tuiter/internal/core/reactions")

type reactionService struct {
	store     Store
	publisher EventPublisher
	metrics   *Metrics
	logger    *slog.Logger
	now       func() time.Time
	timeout   time.Duration

	publishTimeout time.Duration
}

// DefaultPublishTimeout bounds event delivery after a committed change
const DefaultPublishTimeout = 2 * time.Second

// Option configures the reaction service
type Option func(*reactionService)

// WithPublisher sets the destination for committed reaction events
func WithPublisher(p EventPublisher) Option {
	return func(s *reactionService) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithMetrics enables Prometheus instrumentation
func WithMetrics(m *Metrics) Option {
	return func(s *reactionService) {
		s.metrics = m
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *reactionService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTimeout bounds every mutating operation, transaction included.
// Zero leaves the caller's context untouched.
func WithTimeout(d time.Duration) Option {
	return func(s *reactionService) {
		s.timeout = d
	}
}

// WithPublishTimeout bounds how long a committed change waits on the
// publisher before the response is returned. Zero keeps the default.
func WithPublishTimeout(d time.Duration) Option {
	return func(s *reactionService) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

// NewReactionService creates the reaction reconciler on top of store
func NewReactionService(store Store, opts ...Option) Service {
	s := &reactionService{
		store:     store,
		publisher: noopPublisher{},
		logger:    slog.Default(),
		now:       time.Now,

		publishTimeout: DefaultPublishTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *reactionService) ToggleDislike(ctx context.Context, userID, postID string) (*ToggleResult, error) {
	return s.apply(ctx, OpToggleDislike, userID, postID, dislikeToggle)
}

func (s *reactionService) ToggleLike(ctx context.Context, userID, postID string) (*ToggleResult, error) {
	return s.apply(ctx, OpToggleLike, userID, postID, likeToggle)
}

func (s *reactionService) Unlike(ctx context.Context, userID, postID string) (*ToggleResult, error) {
	return s.apply(ctx, OpUnlike, userID, postID, unlike)
}

func (s *reactionService) Undislike(ctx context.Context, userID, postID string) (*ToggleResult, error) {
	return s.apply(ctx, OpUndislike, userID, postID, undislike)
}

// apply runs one transition of the toggle protocol and reports it
func (s *reactionService) apply(ctx context.Context, op, userID, postID string, plan planner) (*ToggleResult, error) {
	ctx, span := tracer.Start(ctx, "reactions."+op, trace.WithAttributes(
		attribute.String("reaction.user_id", userID),
		attribute.String("reaction.post_id", postID),
	))
	defer span.End()

	started := time.Now()
	result, err := s.applyInTx(ctx, userID, postID, plan)
	s.metrics.observe(op, err, started)
	if err != nil {
		recordSpanError(span, err)
		s.logFailure(op, userID, postID, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("reaction.state", string(result.State)),
		attribute.Int("reaction.like_count", result.LikeCount),
	)

	s.logger.Debug("reaction applied",
		"op", op,
		"user", userID,
		"post", postID,
		"previous", result.Previous,
		"state", result.State,
		"like_count", result.LikeCount)

	if result.Changed() {
		s.publish(ctx, op, result)
	}
	return result, nil
}

// applyInTx performs the read-modify-write sequence inside one store transaction:
//  1. claim the tuit (serializes concurrent toggles on it)
//  2. check the user exists
//  3. derive the current state, failing closed if both records exist
//  4. re-derive the baseline as likes − dislikes from the relations
//  5. apply the record changes and write baseline + delta to the stats block
func (s *reactionService) applyInTx(ctx context.Context, userID, postID string, plan planner) (*ToggleResult, error) {
	if err := validatePair(userID, postID); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var result *ToggleResult
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx TxRepository) error {
		post, err := lockPost(ctx, tx, postID)
		if err != nil {
			return err
		}

		exists, err := tx.UserExists(ctx, userID)
		if err != nil {
			return storeError("look up user", err)
		}
		if !exists {
			return ErrUserNotFound
		}

		current, err := readState(ctx, tx, userID, postID)
		if err != nil {
			return err
		}

		baseline, err := readCounts(ctx, tx, postID)
		if err != nil {
			return err
		}

		t := plan(current)
		if err := applyTransition(ctx, tx, userID, postID, t); err != nil {
			return err
		}

		stats := post.Stats
		stats.Likes = baseline.Net() + t.delta()
		if err := tx.UpdatePostStats(ctx, postID, stats); err != nil {
			return storeError("update post stats", err)
		}

		result = &ToggleResult{
			PostID:    postID,
			UserID:    userID,
			Previous:  current,
			State:     t.next,
			LikeCount: stats.Likes,
		}
		return nil
	})
	if err != nil {
		return nil, storeError("reaction transaction", err)
	}
	return result, nil
}

func (s *reactionService) ReconcileCounter(ctx context.Context, postID string) (*ReconcileResult, error) {
	ctx, span := tracer.Start(ctx, "reactions."+OpReconcile, trace.WithAttributes(
		attribute.String("reaction.post_id", postID),
	))
	defer span.End()

	started := time.Now()
	result, err := s.reconcileInTx(ctx, postID)
	s.metrics.observe(OpReconcile, err, started)
	if err != nil {
		recordSpanError(span, err)
		s.logFailure(OpReconcile, "", postID, err)
		return nil, err
	}

	if result.Drifted() {
		s.metrics.driftRepaired()
		s.logger.Warn("like counter drift repaired",
			"post", postID,
			"previous", result.Previous,
			"current", result.Current)
	}
	return result, nil
}

func (s *reactionService) reconcileInTx(ctx context.Context, postID string) (*ReconcileResult, error) {
	if strings.TrimSpace(postID) == "" {
		return nil, NewValidationError("postId", "required")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var result *ReconcileResult
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx TxRepository) error {
		post, err := lockPost(ctx, tx, postID)
		if err != nil {
			return err
		}

		counts, err := readCounts(ctx, tx, postID)
		if err != nil {
			return err
		}

		result = &ReconcileResult{
			PostID:   postID,
			Previous: post.Stats.Likes,
			Current:  counts.Net(),
		}
		if !result.Drifted() {
			return nil
		}

		stats := post.Stats
		stats.Likes = counts.Net()
		return storeError("update post stats", tx.UpdatePostStats(ctx, postID, stats))
	})
	if err != nil {
		return nil, storeError("reconcile transaction", err)
	}
	return result, nil
}

func (s *reactionService) GetReactionState(ctx context.Context, userID, postID string) (State, error) {
	if err := validatePair(userID, postID); err != nil {
		return "", err
	}

	state, err := readState(ctx, s.store, userID, postID)
	if err != nil {
		s.logFailure("get_state", userID, postID, err)
		return "", err
	}
	return state, nil
}

func (s *reactionService) GetCounts(ctx context.Context, postID string) (*Counts, error) {
	if strings.TrimSpace(postID) == "" {
		return nil, NewValidationError("postId", "required")
	}

	counts, err := readCounts(ctx, s.store, postID)
	if err != nil {
		return nil, err
	}
	return &counts, nil
}

func (s *reactionService) ListDislikersOfPost(ctx context.Context, postID string) ([]*users.User, error) {
	if strings.TrimSpace(postID) == "" {
		return nil, NewValidationError("postId", "required")
	}

	dislikers, err := s.store.ListDislikersOfPost(ctx, postID)
	if err != nil {
		return nil, storeError("list dislikers", err)
	}
	return knownUsers(dislikers), nil
}

func (s *reactionService) ListPostsDislikedByUser(ctx context.Context, userID string) ([]*posts.Post, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, NewValidationError("userId", "required")
	}

	disliked, err := s.store.ListPostsDislikedByUser(ctx, userID)
	if err != nil {
		return nil, storeError("list disliked posts", err)
	}
	return livePosts(disliked), nil
}

func (s *reactionService) ListLikersOfPost(ctx context.Context, postID string) ([]*users.User, error) {
	if strings.TrimSpace(postID) == "" {
		return nil, NewValidationError("postId", "required")
	}

	likers, err := s.store.ListLikersOfPost(ctx, postID)
	if err != nil {
		return nil, storeError("list likers", err)
	}
	return knownUsers(likers), nil
}

func (s *reactionService) ListPostsLikedByUser(ctx context.Context, userID string) ([]*posts.Post, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, NewValidationError("userId", "required")
	}

	liked, err := s.store.ListPostsLikedByUser(ctx, userID)
	if err != nil {
		return nil, storeError("list liked posts", err)
	}
	return livePosts(liked), nil
}

func (s *reactionService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// publish runs after commit; a delivery failure is logged and never undoes the change.
// The caller's cancellation is dropped (the change is already committed) but
// delivery is bounded by publishTimeout.
func (s *reactionService) publish(ctx context.Context, op string, result *ToggleResult) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	event := Event{
		OccurredAt: s.now().UTC(),
		Op:         op,
		UserID:     result.UserID,
		PostID:     result.PostID,
		Previous:   result.Previous,
		State:      result.State,
		LikeCount:  result.LikeCount,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish reaction event",
			"op", op,
			"post", result.PostID,
			"error", err)
	}
}

func (s *reactionService) logFailure(op, userID, postID string, err error) {
	code := ErrorCode(err)
	attrs := []any{"op", op, "user", userID, "post", postID, "code", code, "error", err}
	switch code {
	case CodeInvariantViolation, CodeInternal, CodeDuplicateReaction:
		s.logger.Error("reaction operation failed", attrs...)
	case CodeStoreUnavailable:
		if isTimeout(err) {
			attrs = append(attrs, "timeout", true)
		}
		s.logger.Warn("reaction operation failed", attrs...)
	default:
		s.logger.Debug("reaction operation rejected", attrs...)
	}
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, ErrorCode(err))
}

func validatePair(userID, postID string) error {
	if strings.TrimSpace(userID) == "" {
		return NewValidationError("userId", "required")
	}
	if strings.TrimSpace(postID) == "" {
		return NewValidationError("postId", "required")
	}
	return nil
}

func lockPost(ctx context.Context, tx TxRepository, postID string) (*posts.Post, error) {
	post, err := tx.GetPostForUpdate(ctx, postID)
	if err != nil {
		if errors.Is(err, posts.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, storeError("lock post", err)
	}
	return post, nil
}

func readState(ctx context.Context, repo Repository, userID, postID string) (State, error) {
	liked, err := repo.HasLike(ctx, userID, postID)
	if err != nil {
		return "", storeError("check like", err)
	}
	disliked, err := repo.HasDislike(ctx, userID, postID)
	if err != nil {
		return "", storeError("check dislike", err)
	}

	state, err := stateOf(liked, disliked)
	if err != nil {
		return "", fmt.Errorf("user %s on post %s: %w", userID, postID, err)
	}
	return state, nil
}

func readCounts(ctx context.Context, repo Repository, postID string) (Counts, error) {
	likes, err := repo.CountLikes(ctx, postID)
	if err != nil {
		return Counts{}, storeError("count likes", err)
	}
	dislikes, err := repo.CountDislikes(ctx, postID)
	if err != nil {
		return Counts{}, storeError("count dislikes", err)
	}
	return Counts{Likes: likes, Dislikes: dislikes}, nil
}

// applyTransition removes before it adds so a pair never holds both records,
// even inside the transaction
func applyTransition(ctx context.Context, tx TxRepository, userID, postID string, t transition) error {
	if t.removeLike {
		if err := tx.RemoveLike(ctx, userID, postID); err != nil {
			return storeError("remove like", err)
		}
	}
	if t.removeDislike {
		if err := tx.RemoveDislike(ctx, userID, postID); err != nil {
			return storeError("remove dislike", err)
		}
	}
	if t.addLike {
		if err := tx.AddLike(ctx, userID, postID); err != nil {
			return storeError("add like", err)
		}
	}
	if t.addDislike {
		if err := tx.AddDislike(ctx, userID, postID); err != nil {
			return storeError("add dislike", err)
		}
	}
	return nil
}

func knownUsers(in []*users.User) []*users.User {
	out := make([]*users.User, 0, len(in))
	for _, u := range in {
		if u != nil {
			out = append(out, u)
		}
	}
	return out
}

// livePosts drops tuits that were deleted after the reaction was recorded
func livePosts(in []*posts.Post) []*posts.Post {
	out := make([]*posts.Post, 0, len(in))
	for _, p := range in {
		if p != nil && !p.IsDeleted() {
			out = append(out, p)
		}
	}
	return out
}
