// Package service provides the ranking engine that turns a campaign brief
// into an ordered talent list.
package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	repository "github.com/okian/talentmatch/internal/adapters/repository"
	"github.com/okian/talentmatch/internal/domain/budget"
	"github.com/okian/talentmatch/internal/domain/model"
	"github.com/okian/talentmatch/internal/domain/ranking"
	"github.com/okian/talentmatch/internal/domain/scoring"
	"github.com/okian/talentmatch/internal/domain/types"
	"github.com/okian/talentmatch/internal/tracing"
	"github.com/okian/talentmatch/pkg/logger"
	"github.com/okian/talentmatch/pkg/metrics"
)

// Request outcomes used as metric labels.
const (
	outcomeOK          = "ok"
	outcomeConfigError = "config_error"
	outcomeRepoError   = "repository_error"
	outcomeCanceled    = "canceled"
)

// Request is a campaign brief. Segment accepts a key ("F2"), label
// ("female 20-34") or id.
type Request struct {
	Segment    string `json:"segment"`
	Industry   string `json:"industry"`
	BudgetBand string `json:"budget_band"`
}

// Engine runs the ranking pipeline against a repository. It holds no
// per-request state and is safe for concurrent use.
type Engine struct {
	repo   repository.CandidateRepository
	scorer *scoring.ImageScorer

	// Configuration
	scorerOpts []scoring.Option
	seed       int64
	clock      func() time.Time

	// Counters
	requests       atomic.Int64
	failures       atomic.Int64
	lastResultSize atomic.Int64
	startedAt      time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSeed fixes the matching-score random source. Each request starts from
// the same seed, so equal inputs give equal outputs. Zero seeds from the clock.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// WithClock sets the source of the as-of date used for ages and contracts.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithMinRegulatedAge overrides the regulated-industry age gate.
func WithMinRegulatedAge(age int) Option {
	return func(e *Engine) {
		e.scorerOpts = append(e.scorerOpts, scoring.WithMinRegulatedAge(age))
	}
}

// WithAdjustmentTable overrides the image adjustment tiers.
func WithAdjustmentTable(table scoring.AdjustmentTable) Option {
	return func(e *Engine) {
		e.scorerOpts = append(e.scorerOpts, scoring.WithAdjustmentTable(table))
	}
}

// New constructs an Engine reading from repo.
func New(repo repository.CandidateRepository, opts ...Option) *Engine {
	e := &Engine{
		repo:      repo,
		clock:     time.Now,
		startedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.scorer = scoring.NewImageScorer(e.scorerOpts...)
	if e.logger == nil {
		e.logger = logger.Get()
	}
	return e
}

// Rank returns up to ranking.MaxResults talents for the brief. Unknown
// segments, industries and budget bands fail with ErrConfiguration; data
// source failures fail with ErrRepository.
func (e *Engine) Rank(ctx context.Context, req Request) (_ []types.RankedTalent, err error) {
	start := time.Now()
	ctx, end := tracing.StartSpan(ctx, "ranking.rank",
		attribute.String("segment", req.Segment),
		attribute.String("industry", req.Industry),
		attribute.String("budget_band", req.BudgetBand),
	)
	e.requests.Add(1)
	defer func() {
		end(err)
		metrics.RecordRankingRequest(outcomeOf(err))
		metrics.RecordRankingLatency(sinceMs(start))
		if err != nil {
			e.failures.Add(1)
			metrics.RecordErrorByComponent("engine", outcomeOf(err))
		}
	}()

	segment, ok := model.LookupSegment(req.Segment)
	if !ok {
		return nil, fmt.Errorf("%w: %w %q", ErrConfiguration, ErrUnknownSegment, req.Segment)
	}
	industry, band, err := e.resolveBrief(ctx, req)
	if err != nil {
		return nil, err
	}
	asOf := e.clock()

	// Candidates and curated slots only depend on the brief.
	var (
		candidates []model.Talent
		curatedIDs []model.TalentID
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var ferr error
		candidates, ferr = e.repo.FetchCandidates(gctx, segment, industry)
		return ferr
	})
	g.Go(func() error {
		var ferr error
		curatedIDs, ferr = e.repo.FetchRecommendedSlots(gctx, industry.ID)
		return ferr
	})
	if err = g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRepository, err)
	}
	curatedIDs = uniqueIDs(curatedIDs)

	// Stage 0
	stageStart := time.Now()
	pool, rejected := budget.Filter(candidates, band)
	metrics.RecordStageLatency("budget", sinceMs(stageStart))
	metrics.RecordBudgetRejected(rejected)
	metrics.UpdateCandidatePool("fetched", len(candidates))
	metrics.UpdateCandidatePool("budget", len(pool))
	e.logger.Debug(ctx, "budget filter applied",
		logger.Int("candidates", len(candidates)),
		logger.Int("rejected", rejected),
		logger.String("band", band.Name),
	)

	data, err := e.fetchScores(ctx, segment, pool, curatedIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRepository, err)
	}

	// Stage 1 and Stage 2 are independent.
	var (
		bases map[model.TalentID]float64
		image scoring.ImageResult
	)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		t := time.Now()
		bases = scoring.BasePowers(data.ids, data.segment)
		metrics.RecordStageLatency("base_power", sinceMs(t))
	}()
	go func() {
		defer wg.Done()
		t := time.Now()
		image = e.scorer.Score(pool, data.traits, industry, asOf)
		metrics.RecordStageLatency("image", sinceMs(t))
	}()
	wg.Wait()

	metrics.RecordRegulatedGated(image.Gated)
	metrics.UpdateCandidatePool("eligible", len(image.Eligible))
	if image.Degenerate {
		metrics.RecordDegenerateDistribution(string(image.Trait))
		e.logger.Warn(ctx, "trait distribution has a single value, image adjustment disabled",
			logger.String("industry", industry.Name),
			logger.String("trait", string(image.Trait)),
			logger.Int("pool", image.Distribution.Len()),
		)
	}

	// Stage 3-5
	stageStart = time.Now()
	names := make(map[model.TalentID]string, len(pool))
	for _, t := range pool {
		names[t.ID] = t.Name
	}
	entries := make([]ranking.Entry, 0, len(image.Eligible))
	for _, id := range image.Eligible {
		entries = append(entries, ranking.Entry{
			TalentID:   id,
			Name:       names[id],
			Base:       bases[id],
			Adjustment: image.Adjustments[id],
		})
	}
	ranked := ranking.Rank(entries, ranking.MaxResults)
	mapper := ranking.NewBandMapper(e.newRand())
	mapper.Apply(ranked)

	curated := e.curatedEntries(ctx, industry, curatedIDs, data, bases, image)
	merged := ranked
	if len(curated) > 0 {
		merged = ranking.MergeRecommended(ranked, curated, ranking.MaxResults)
		mapper.Apply(merged)
		metrics.RecordCuratedPlaced(len(curated))
	}
	metrics.RecordStageLatency("rank", sinceMs(stageStart))

	// Overlay
	if len(merged) > 0 {
		status, cerr := e.repo.FetchCompetitiveCmStatus(ctx, ranking.IDs(merged), industry.ID, asOf)
		if cerr != nil {
			return nil, fmt.Errorf("%w: %w", ErrRepository, cerr)
		}
		metrics.RecordCompetingCmFlagged(ranking.AnnotateCompetingCm(merged, status))
	}

	out := make([]types.RankedTalent, len(merged))
	for i, en := range merged {
		out[i] = types.RankedTalent{
			TalentID:                 int64(en.TalentID),
			Name:                     en.Name,
			Rank:                     en.Rank,
			MatchingScore:            en.MatchingScore,
			BasePowerScore:           en.Base,
			ImageAdjustment:          en.Adjustment,
			IsRecommended:            en.IsRecommended,
			IsCurrentlyInCompetingCm: en.InCompetingCm,
		}
	}

	e.lastResultSize.Store(int64(len(out)))
	metrics.UpdateLastResultSize(len(out))
	e.logger.Info(ctx, "ranking completed",
		logger.String("segment", segment.Key),
		logger.String("industry", industry.Name),
		logger.String("budget_band", band.Name),
		logger.Int("pool", len(pool)),
		logger.Int("gated", image.Gated),
		logger.Int("curated", len(curated)),
		logger.Int("results", len(out)),
		logger.Float64("duration_ms", sinceMs(start)),
	)
	return out, nil
}

// resolveBrief looks up the industry and budget band concurrently.
func (e *Engine) resolveBrief(ctx context.Context, req Request) (model.Industry, model.BudgetBand, error) {
	var (
		industry model.Industry
		band     model.BudgetBand
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		industry, err = e.repo.FetchIndustry(gctx, req.Industry)
		return err
	})
	g.Go(func() error {
		var err error
		band, err = e.repo.FetchBudgetBand(gctx, req.BudgetBand)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, repository.ErrUnknownIndustry) || errors.Is(err, repository.ErrUnknownBudgetBand) {
			return model.Industry{}, model.BudgetBand{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		return model.Industry{}, model.BudgetBand{}, fmt.Errorf("%w: %w", ErrRepository, err)
	}
	return industry, band, nil
}

// scoreData is everything the scoring stages read for one request.
type scoreData struct {
	ids     []model.TalentID // pool then curated, unique
	curated map[model.TalentID]model.Talent
	segment map[model.TalentID]model.SegmentScore
	traits  map[model.TalentID]model.TraitScores
}

// fetchScores loads curated talents and the segment and trait scores of the
// pool and curated ids before any scoring starts.
func (e *Engine) fetchScores(ctx context.Context, segment model.Segment, pool []model.Talent, curatedIDs []model.TalentID) (scoreData, error) {
	ids := make([]model.TalentID, 0, len(pool)+len(curatedIDs))
	for _, t := range pool {
		ids = append(ids, t.ID)
	}
	ids = uniqueIDs(append(ids, curatedIDs...))

	data := scoreData{ids: ids}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if len(curatedIDs) == 0 {
			data.curated = map[model.TalentID]model.Talent{}
			return nil
		}
		var err error
		data.curated, err = e.repo.FetchTalents(gctx, curatedIDs)
		return err
	})
	g.Go(func() error {
		var err error
		data.segment, err = e.repo.FetchSegmentScores(gctx, segment.ID, ids)
		return err
	})
	g.Go(func() error {
		var err error
		data.traits, err = e.repo.FetchImageTraitScores(gctx, segment.ID, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return scoreData{}, err
	}
	return data, nil
}

// curatedEntries scores the curated talents for the brief. They bypass the
// budget filter and the age gate; their adjustment is read against the
// pool's distribution. Unknown or inactive ids are skipped.
func (e *Engine) curatedEntries(ctx context.Context, industry model.Industry, ids []model.TalentID, data scoreData, bases map[model.TalentID]float64, image scoring.ImageResult) []ranking.Entry {
	out := make([]ranking.Entry, 0, len(ids))
	for _, id := range ids {
		t, ok := data.curated[id]
		if !ok || !t.Active {
			metrics.RecordCuratedMissing()
			e.logger.Warn(ctx, "curated talent unavailable, slot back-filled",
				logger.Int64("talent_id", int64(id)),
				logger.String("industry", industry.Name),
				logger.Bool("known", ok),
			)
			continue
		}
		adj, inPool := image.Adjustments[id]
		if !inPool {
			adj = e.scorer.AdjustmentFor(image, data.traits[id].Score(image.Trait))
		}
		out = append(out, ranking.Entry{
			TalentID:   id,
			Name:       t.Name,
			Base:       bases[id],
			Adjustment: adj,
		})
	}
	return out
}

func (e *Engine) newRand() *rand.Rand {
	seed := e.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed)) //nolint:gosec // matching scores are presentational, not security sensitive
}

// GetStats returns engine statistics for monitoring.
func (e *Engine) GetStats() map[string]interface{} {
	stats := map[string]interface{}{
		"requests":        e.requests.Load(),
		"failures":        e.failures.Load(),
		"lastResultSize":  e.lastResultSize.Load(),
		"seeded":          e.seed != 0,
		"minRegulatedAge": e.scorer.MinRegulatedAge(),
		"uptimeSeconds":   int64(time.Since(e.startedAt).Seconds()),
	}
	if s, ok := e.repo.(interface{ Stats() map[string]interface{} }); ok {
		stats["repository"] = s.Stats()
	}
	return stats
}

func uniqueIDs(ids []model.TalentID) []model.TalentID {
	seen := make(map[model.TalentID]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrConfiguration):
		return outcomeConfigError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return outcomeCanceled
	default:
		return outcomeRepoError
	}
}

func sinceMs(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
