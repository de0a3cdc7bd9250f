// Package backend opens the reaction store selected by configuration
package backend

import (
	"Tuiter/internal/config"
	"Tuiter/internal/core/posts"
	"Tuiter/internal/core/reactions"
	"Tuiter/internal/db/memory"
	"Tuiter/internal/db/migrations"
	"Tuiter/internal/db/mongodb"
	"Tuiter/internal/db/postgres"
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
)

// Backend bundles the stores of one database
type Backend struct {
	Reactions reactions.Store
	Posts     posts.Repository
	close     func(context.Context) error
}

// Close releases the database connection
func (b *Backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}

// Open connects to the configured backend, applying migrations or indexes
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		return openPostgres(ctx, cfg.DatabaseURL)
	case config.BackendMongo:
		return openMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.BackendMemory:
		return NewMemory(memory.NewStore()), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// NewMemory wraps an in-process store
func NewMemory(store *memory.Store) *Backend {
	return &Backend{
		Reactions: store,
		Posts:     store.Posts(),
	}
}

func openPostgres(ctx context.Context, dsn string) (*Backend, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Println("Connected to postgres")

	if err := migrations.Up(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Println("Migrations completed successfully")

	return &Backend{
		Reactions: postgres.NewReactionStore(db),
		Posts:     postgres.NewPostRepository(db),
		close:     func(context.Context) error { return db.Close() },
	}, nil
}

func openMongo(ctx context.Context, uri, database string) (*Backend, error) {
	client, err := mongodb.Connect(ctx, uri)
	if err != nil {
		return nil, err
	}
	log.Println("Connected to mongo")

	db := client.Database(database)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &Backend{
		Reactions: mongodb.NewReactionStore(db),
		Posts:     mongodb.NewPostRepository(db),
		close:     client.Disconnect,
	}, nil
}
