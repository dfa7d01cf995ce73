package rankctl

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	repository "github.com/okian/talentmatch/internal/adapters/repository"
	service "github.com/okian/talentmatch/internal/app"
	"github.com/okian/talentmatch/pkg/logger"
)

const dateLayout = "2006-01-02"

// RankOptions drives a single local ranking run.
type RankOptions struct {
	Brief       service.Request
	FixturePath string
	DSN         string
	RedisAddr   string
	Seed        int64
	AsOf        string
	MinAge      int
	JSON        bool
	Timeout     time.Duration
}

func (o RankOptions) validate() error {
	switch {
	case o.Brief.Segment == "":
		return fmt.Errorf("%w: --segment is required", ErrInvalidFlags)
	case o.Brief.Industry == "":
		return fmt.Errorf("%w: --industry is required", ErrInvalidFlags)
	case o.Brief.BudgetBand == "":
		return fmt.Errorf("%w: --budget-band is required", ErrInvalidFlags)
	case o.FixturePath == "" && o.DSN == "":
		return fmt.Errorf("%w: one of --fixture or --dsn is required", ErrInvalidFlags)
	}
	return nil
}

// RunRank ranks one brief against a fixture or database and writes the
// report to out.
func RunRank(ctx context.Context, opts RankOptions, out io.Writer) error {
	if err := opts.validate(); err != nil {
		return err
	}
	log := logger.Named("rankctl")
	runID := uuid.New().String()

	engineOpts := []service.Option{service.WithLogger(log), service.WithSeed(opts.Seed)}
	if opts.AsOf != "" {
		asOf, err := time.Parse(dateLayout, opts.AsOf)
		if err != nil {
			return fmt.Errorf("%w: --as-of must be YYYY-MM-DD: %w", ErrInvalidFlags, err)
		}
		engineOpts = append(engineOpts, service.WithClock(func() time.Time { return asOf }))
	}
	if opts.MinAge > 0 {
		engineOpts = append(engineOpts, service.WithMinRegulatedAge(opts.MinAge))
	}

	repo, closeRepo, err := repository.Open(ctx, repository.Source{
		DatabaseURL: opts.DSN,
		FixturePath: opts.FixturePath,
		RedisAddr:   opts.RedisAddr,
	}, log)
	if err != nil {
		return err
	}
	defer func() { _ = closeRepo() }()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	results, err := service.New(repo, engineOpts...).Rank(ctx, opts.Brief)
	if err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}
	log.Debug(ctx, "ranking finished", logger.String("run_id", runID), logger.Int("results", len(results)))

	rep := Report{RunID: runID, Brief: opts.Brief, Count: len(results), Results: results}
	if opts.JSON {
		return writeJSON(out, rep)
	}
	return writeTable(out, rep)
}
