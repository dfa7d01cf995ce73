package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/okian/talentmatch/internal/domain/model"
	"github.com/okian/talentmatch/internal/tracing"
	"github.com/okian/talentmatch/pkg/metrics"
)

// Table names.
const (
	tableTalents     = "talents"
	tableSegment     = "talent_segment_scores"
	tableImage       = "talent_image_scores"
	tableBands       = "budget_bands"
	tableIndustries  = "industries"
	tableCompeting   = "industry_competing_categories"
	tableRecommended = "recommended_slots"
	tableContracts   = "cm_contracts"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Querier is the subset of *sql.DB the store needs.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// PostgresStore reads the catalogue from Postgres.
type PostgresStore struct {
	db Querier
}

var _ CandidateRepository = (*PostgresStore)(nil)

// NewPostgresStore wires a database handle.
func NewPostgresStore(db Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres opens and pings a lib/pq connection pool.
func OpenPostgres(ctx context.Context, dsn string, opts ...PostgresOption) (*sql.DB, error) {
	o := postgresOptions{
		maxOpenConns:    defaultMaxOpenConns,
		maxIdleConns:    defaultMaxIdleConns,
		connMaxLifetime: defaultConnMaxLifetime,
	}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(o.maxOpenConns)
	db.SetMaxIdleConns(o.maxIdleConns)
	db.SetConnMaxLifetime(o.connMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func int64s(ids []model.TalentID) pq.Int64Array {
	out := make(pq.Int64Array, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

// run executes b and feeds each row to scan, wrapping the call in a DB span
// and recording latency and failures under method.
func (s *PostgresStore) run(ctx context.Context, method, table string, b sq.SelectBuilder, scan func(*sql.Rows) error) (err error) {
	start := time.Now()
	ctx, end := tracing.StartDBSpan(ctx, table, method)
	defer func() {
		end(err)
		metrics.RecordRepositoryQueryLatency(method, float64(time.Since(start).Microseconds())/1000)
		if err != nil {
			metrics.RecordRepositoryError(method)
		}
	}()

	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build %s query: %w", table, err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query %s: %w", table, err)
	}
	for rows.Next() {
		if err = scan(rows); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan %s: %w", table, err)
		}
	}
	if err = rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("rows iteration: %w", err)
	}
	if err = rows.Close(); err != nil {
		return fmt.Errorf("close rows: %w", err)
	}
	return nil
}

func talentColumns() []string {
	return []string{"id", "name", "normalized_name", "genre", "is_active", "fee_ceiling", "birth_date"}
}

func scanTalent(rows *sql.Rows) (model.Talent, error) {
	var (
		t     model.Talent
		id    int64
		genre sql.NullString
		norm  sql.NullString
		birth sql.NullTime
	)
	if err := rows.Scan(&id, &t.Name, &norm, &genre, &t.Active, &t.FeeCeiling, &birth); err != nil {
		return model.Talent{}, err
	}
	t.ID = model.TalentID(id)
	t.Genre = genre.String
	t.NormalizedName = norm.String
	if t.NormalizedName == "" {
		t.NormalizedName = model.NormalizeName(t.Name)
	}
	if birth.Valid {
		b := model.DateOf(birth.Time)
		t.BirthDate = &b
	}
	return t, nil
}

func candidatesQuery() sq.SelectBuilder {
	return psql.Select(talentColumns()...).
		From(tableTalents).
		Where(sq.Eq{"is_active": true}).
		OrderBy("id")
}

func talentsQuery(ids []model.TalentID) sq.SelectBuilder {
	return psql.Select(talentColumns()...).
		From(tableTalents).
		Where("id = ANY(?)", int64s(ids))
}

func segmentScoresQuery(segmentID int, ids []model.TalentID) sq.SelectBuilder {
	return psql.Select("talent_id", "popularity", "strength").
		From(tableSegment).
		Where(sq.Eq{"segment_id": segmentID}).
		Where("talent_id = ANY(?)", int64s(ids))
}

func imageScoresQuery(segmentID int, ids []model.TalentID) sq.SelectBuilder {
	return psql.Select("talent_id", "trait", "score").
		From(tableImage).
		Where(sq.Eq{"segment_id": segmentID}).
		Where("talent_id = ANY(?)", int64s(ids))
}

// nameMatches compares reference names the way the in-memory store does:
// case-insensitive, surrounding whitespace ignored.
func nameMatches(name string) sq.Sqlizer {
	return sq.Expr("lower(name) = lower(?)", strings.TrimSpace(name))
}

func budgetBandQuery(name string) sq.SelectBuilder {
	return psql.Select("name", "lower_bound", "upper_bound").
		From(tableBands).
		Where(nameMatches(name)).
		Limit(1)
}

func industryQuery(name string) sq.SelectBuilder {
	return psql.Select("id", "name", "required_trait", "is_regulated").
		From(tableIndustries).
		Where(nameMatches(name)).
		Limit(1)
}

func recommendedQuery(industryID int64) sq.SelectBuilder {
	return psql.Select("talent_id").
		From(tableRecommended).
		Where(sq.Eq{"industry_id": industryID}).
		OrderBy("slot").
		Limit(MaxRecommendedSlots)
}

func competingQuery(ids []model.TalentID, industryID int64, asOf time.Time) sq.SelectBuilder {
	return psql.Select("DISTINCT c.talent_id").
		From(tableContracts + " c").
		Join(tableCompeting + " ic ON ic.category = c.category").
		Where(sq.Eq{"ic.industry_id": industryID}).
		Where(sq.GtOrEq{"c.end_date": model.DateOf(asOf)}).
		Where("c.talent_id = ANY(?)", int64s(ids))
}

// FetchCandidates implements CandidateRepository.
func (s *PostgresStore) FetchCandidates(ctx context.Context, _ model.Segment, _ model.Industry) ([]model.Talent, error) {
	var out []model.Talent
	err := s.run(ctx, "FetchCandidates", tableTalents, candidatesQuery(), func(rows *sql.Rows) error {
		t, err := scanTalent(rows)
		if err != nil {
			return err
		}
		out = append(out, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FetchTalents implements CandidateRepository.
func (s *PostgresStore) FetchTalents(ctx context.Context, ids []model.TalentID) (map[model.TalentID]model.Talent, error) {
	out := make(map[model.TalentID]model.Talent, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	err := s.run(ctx, "FetchTalents", tableTalents, talentsQuery(ids), func(rows *sql.Rows) error {
		t, err := scanTalent(rows)
		if err != nil {
			return err
		}
		out[t.ID] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FetchSegmentScores implements CandidateRepository.
func (s *PostgresStore) FetchSegmentScores(ctx context.Context, segmentID int, ids []model.TalentID) (map[model.TalentID]model.SegmentScore, error) {
	out := make(map[model.TalentID]model.SegmentScore, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	err := s.run(ctx, "FetchSegmentScores", tableSegment, segmentScoresQuery(segmentID, ids), func(rows *sql.Rows) error {
		var (
			id       int64
			pop, str sql.NullFloat64
		)
		if err := rows.Scan(&id, &pop, &str); err != nil {
			return err
		}
		var row model.SegmentScore
		if pop.Valid {
			row.Popularity = &pop.Float64
		}
		if str.Valid {
			row.Strength = &str.Float64
		}
		out[model.TalentID(id)] = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FetchImageTraitScores implements CandidateRepository. Rows with an
// unrecognized trait are ignored.
func (s *PostgresStore) FetchImageTraitScores(ctx context.Context, segmentID int, ids []model.TalentID) (map[model.TalentID]model.TraitScores, error) {
	out := make(map[model.TalentID]model.TraitScores, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	err := s.run(ctx, "FetchImageTraitScores", tableImage, imageScoresQuery(segmentID, ids), func(rows *sql.Rows) error {
		var (
			id    int64
			name  string
			score sql.NullFloat64
		)
		if err := rows.Scan(&id, &name, &score); err != nil {
			return err
		}
		tr, err := model.ParseTrait(name)
		if err != nil {
			return nil //nolint:nilerr // unknown traits are skipped
		}
		tid := model.TalentID(id)
		if out[tid] == nil {
			out[tid] = model.TraitScores{}
		}
		out[tid][tr] = score.Float64
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FetchBudgetBand implements CandidateRepository.
func (s *PostgresStore) FetchBudgetBand(ctx context.Context, name string) (model.BudgetBand, error) {
	var (
		band  model.BudgetBand
		found bool
	)
	err := s.run(ctx, "FetchBudgetBand", tableBands, budgetBandQuery(name), func(rows *sql.Rows) error {
		found = true
		var lower, upper decimal.NullDecimal
		if err := rows.Scan(&band.Name, &lower, &upper); err != nil {
			return err
		}
		band.Lower, band.Upper = lower, upper
		return nil
	})
	if err != nil {
		return model.BudgetBand{}, err
	}
	if !found {
		return model.BudgetBand{}, fmt.Errorf("%w: %q", ErrUnknownBudgetBand, name)
	}
	return band, nil
}

// FetchIndustry implements CandidateRepository.
func (s *PostgresStore) FetchIndustry(ctx context.Context, name string) (model.Industry, error) {
	var (
		ind   model.Industry
		found bool
	)
	err := s.run(ctx, "FetchIndustry", tableIndustries, industryQuery(name), func(rows *sql.Rows) error {
		found = true
		var trait string
		if err := rows.Scan(&ind.ID, &ind.Name, &trait, &ind.Regulated); err != nil {
			return err
		}
		tr, err := model.ParseTrait(trait)
		if err != nil {
			return err
		}
		ind.RequiredTrait = tr
		return nil
	})
	if err != nil {
		return model.Industry{}, err
	}
	if !found {
		return model.Industry{}, fmt.Errorf("%w: %q", ErrUnknownIndustry, name)
	}
	return ind, nil
}

// FetchRecommendedSlots implements CandidateRepository.
func (s *PostgresStore) FetchRecommendedSlots(ctx context.Context, industryID int64) ([]model.TalentID, error) {
	var out []model.TalentID
	err := s.run(ctx, "FetchRecommendedSlots", tableRecommended, recommendedQuery(industryID), func(rows *sql.Rows) error {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		out = append(out, model.TalentID(id))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FetchCompetitiveCmStatus implements CandidateRepository.
func (s *PostgresStore) FetchCompetitiveCmStatus(ctx context.Context, ids []model.TalentID, industryID int64, asOf time.Time) (map[model.TalentID]bool, error) {
	out := make(map[model.TalentID]bool, len(ids))
	for _, id := range ids {
		out[id] = false
	}
	if len(ids) == 0 {
		return out, nil
	}
	err := s.run(ctx, "FetchCompetitiveCmStatus", tableContracts, competingQuery(ids, industryID, asOf), func(rows *sql.Rows) error {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		out[model.TalentID(id)] = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
