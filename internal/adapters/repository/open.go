package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/talentmatch/pkg/logger"
)

// Source selects and decorates a repository. DatabaseURL wins over
// FixturePath; RedisAddr adds the reference-data cache on top of either.
type Source struct {
	DatabaseURL string
	FixturePath string
	RedisAddr   string
	CacheTTL    time.Duration
}

// Open builds the repository described by src. The returned close func
// releases the database pool and Redis client, if any.
func Open(ctx context.Context, src Source, log logger.Logger) (CandidateRepository, func() error, error) {
	var (
		repo    CandidateRepository
		closers []func() error
	)

	switch {
	case src.DatabaseURL != "":
		db, err := OpenPostgres(ctx, src.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, db.Close)
		repo = NewPostgresStore(db)
	case src.FixturePath != "":
		store, err := LoadFixture(src.FixturePath)
		if err != nil {
			return nil, nil, err
		}
		repo = store
	default:
		return nil, nil, ErrNoSource
	}

	if src.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: src.RedisAddr})
		closers = append(closers, client.Close)
		opts := []CacheOption{WithTTL(src.CacheTTL)}
		if log != nil {
			opts = append(opts, WithCacheLogger(log))
		}
		repo = NewCachedRepository(repo, client, opts...)
	}

	closeAll := func() error {
		var first error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && first == nil {
				first = fmt.Errorf("close repository: %w", err)
			}
		}
		return first
	}
	return repo, closeAll, nil
}
