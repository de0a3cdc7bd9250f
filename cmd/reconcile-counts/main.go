// cmd/reconcile-counts/main.go
// Rewrites every live tuit's like counter from its like and dislike records
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"Tuiter/internal/config"
	"Tuiter/internal/core/posts"
	"Tuiter/internal/core/reactions"
	"Tuiter/internal/db/backend"
)

func main() {
	batchSize := flag.Int("batch", 500, "tuits fetched per page")
	dryRun := flag.Bool("dry-run", false, "report drift without writing")
	flag.Parse()

	if err := validateBatch(*batchSize); err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	if err := run(context.Background(), cfg, logger, *batchSize, *dryRun); err != nil {
		log.Fatal(err)
	}
}

// run owns the store connection so it is closed on every exit path
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, batchSize int, dryRun bool) error {
	log.Printf("Connecting to %s store...", cfg.StoreBackend)
	store, err := backend.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := store.Close(ctx); err != nil {
			log.Printf("Failed to close store: %v", err)
		}
	}()

	service := reactions.NewReactionService(store.Reactions, reactions.WithLogger(logger))

	summary, err := reconcileAll(ctx, store.Posts, service, batchSize, dryRun)
	if err != nil {
		return fmt.Errorf("reconcile aborted after %d tuits: %w", summary.checked, err)
	}

	log.Printf("✓ Checked %d tuits, %d drifted, %d failed", summary.checked, summary.drifted, summary.failed)
	return nil
}

func validateBatch(n int) error {
	if n <= 0 {
		return fmt.Errorf("-batch must be positive, got %d", n)
	}
	return nil
}

type summary struct {
	checked int
	drifted int
	failed  int
}

// reconcileAll pages through live tuit IDs and repairs each counter.
// A failure on one tuit is logged and counted; listing failures abort.
func reconcileAll(ctx context.Context, postRepo posts.Repository, service reactions.Service, batchSize int, dryRun bool) (summary, error) {
	var s summary
	after := ""

	for {
		ids, err := postRepo.ListIDs(ctx, after, batchSize)
		if err != nil {
			return s, err
		}
		if len(ids) == 0 {
			return s, nil
		}

		for _, id := range ids {
			s.checked++
			drifted, err := reconcileOne(ctx, postRepo, service, id, dryRun)
			if err != nil {
				log.Printf("Warning: failed to reconcile %s: %v", id, err)
				s.failed++
				continue
			}
			if drifted {
				s.drifted++
			}
		}

		after = ids[len(ids)-1]
	}
}

func reconcileOne(ctx context.Context, postRepo posts.Repository, service reactions.Service, id string, dryRun bool) (bool, error) {
	if !dryRun {
		result, err := service.ReconcileCounter(ctx, id)
		if err != nil {
			return false, err
		}
		if result.Drifted() {
			log.Printf("Repaired %s: %d -> %d", id, result.Previous, result.Current)
		}
		return result.Drifted(), nil
	}

	post, err := postRepo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	counts, err := service.GetCounts(ctx, id)
	if err != nil {
		return false, err
	}
	if post.Stats.Likes != counts.Net() {
		log.Printf("Drift on %s: stored %d, records say %d", id, post.Stats.Likes, counts.Net())
		return true, nil
	}
	return false, nil
}
