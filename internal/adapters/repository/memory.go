package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/okian/talentmatch/internal/domain/model"
	"github.com/okian/talentmatch/pkg/metrics"
)

// Dataset is the full content of an in-memory repository.
type Dataset struct {
	Talents       []model.Talent
	SegmentScores map[int]map[model.TalentID]model.SegmentScore // by segment id
	TraitScores   map[int]map[model.TalentID]model.TraitScores  // by segment id
	Industries    []model.Industry
	BudgetBands   []model.BudgetBand
	Recommended   map[int64][]model.TalentID // by industry id, slot order
	Competing     map[int64][]string         // competing CM categories by industry id
	Contracts     []model.CmContract
}

// MemoryStore serves a Dataset from memory. Industry and band names match
// case-insensitively.
type MemoryStore struct {
	mu sync.RWMutex

	talents    map[model.TalentID]model.Talent
	order      []model.TalentID
	segments   map[int]map[model.TalentID]model.SegmentScore
	traits     map[int]map[model.TalentID]model.TraitScores
	industries map[string]model.Industry
	bands      map[string]model.BudgetBand
	slots      map[int64][]model.TalentID
	competing  map[int64]map[string]struct{}
	contracts  map[model.TalentID][]model.CmContract
}

var _ CandidateRepository = (*MemoryStore)(nil)

// NewMemoryStore indexes ds. Talents keep their dataset order.
func NewMemoryStore(ds Dataset) *MemoryStore {
	s := &MemoryStore{
		talents:    make(map[model.TalentID]model.Talent, len(ds.Talents)),
		order:      make([]model.TalentID, 0, len(ds.Talents)),
		segments:   ds.SegmentScores,
		traits:     ds.TraitScores,
		industries: make(map[string]model.Industry, len(ds.Industries)),
		bands:      make(map[string]model.BudgetBand, len(ds.BudgetBands)),
		slots:      make(map[int64][]model.TalentID, len(ds.Recommended)),
		competing:  make(map[int64]map[string]struct{}, len(ds.Competing)),
		contracts:  make(map[model.TalentID][]model.CmContract),
	}
	for _, t := range ds.Talents {
		if _, dup := s.talents[t.ID]; !dup {
			s.order = append(s.order, t.ID)
		}
		s.talents[t.ID] = t
	}
	for _, ind := range ds.Industries {
		s.industries[nameKey(ind.Name)] = ind
	}
	for _, b := range ds.BudgetBands {
		s.bands[nameKey(b.Name)] = b
	}
	for id, ids := range ds.Recommended {
		s.slots[id] = append([]model.TalentID(nil), ids...)
	}
	for id, cats := range ds.Competing {
		set := make(map[string]struct{}, len(cats))
		for _, c := range cats {
			set[nameKey(c)] = struct{}{}
		}
		s.competing[id] = set
	}
	for _, c := range ds.Contracts {
		s.contracts[c.TalentID] = append(s.contracts[c.TalentID], c)
	}
	return s
}

func nameKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func observe(method string, start time.Time) {
	metrics.RecordRepositoryQueryLatency(method, float64(time.Since(start).Microseconds())/1000)
}

// FetchCandidates implements CandidateRepository.
func (s *MemoryStore) FetchCandidates(ctx context.Context, _ model.Segment, _ model.Industry) ([]model.Talent, error) {
	defer observe("FetchCandidates", time.Now())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Talent, 0, len(s.order))
	for _, id := range s.order {
		if t := s.talents[id]; t.Active {
			out = append(out, t)
		}
	}
	return out, nil
}

// FetchTalents implements CandidateRepository.
func (s *MemoryStore) FetchTalents(ctx context.Context, ids []model.TalentID) (map[model.TalentID]model.Talent, error) {
	defer observe("FetchTalents", time.Now())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[model.TalentID]model.Talent, len(ids))
	for _, id := range ids {
		if t, ok := s.talents[id]; ok {
			out[id] = t
		}
	}
	return out, nil
}

// FetchSegmentScores implements CandidateRepository.
func (s *MemoryStore) FetchSegmentScores(ctx context.Context, segmentID int, ids []model.TalentID) (map[model.TalentID]model.SegmentScore, error) {
	defer observe("FetchSegmentScores", time.Now())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.segments[segmentID]
	out := make(map[model.TalentID]model.SegmentScore, len(ids))
	for _, id := range ids {
		if row, ok := rows[id]; ok {
			out[id] = row
		}
	}
	return out, nil
}

// FetchImageTraitScores implements CandidateRepository.
func (s *MemoryStore) FetchImageTraitScores(ctx context.Context, segmentID int, ids []model.TalentID) (map[model.TalentID]model.TraitScores, error) {
	defer observe("FetchImageTraitScores", time.Now())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.traits[segmentID]
	out := make(map[model.TalentID]model.TraitScores, len(ids))
	for _, id := range ids {
		if row, ok := rows[id]; ok {
			out[id] = row
		}
	}
	return out, nil
}

// FetchBudgetBand implements CandidateRepository.
func (s *MemoryStore) FetchBudgetBand(ctx context.Context, name string) (model.BudgetBand, error) {
	defer observe("FetchBudgetBand", time.Now())
	if err := ctx.Err(); err != nil {
		return model.BudgetBand{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bands[nameKey(name)]
	if !ok {
		return model.BudgetBand{}, ErrUnknownBudgetBand
	}
	return b, nil
}

// FetchIndustry implements CandidateRepository.
func (s *MemoryStore) FetchIndustry(ctx context.Context, name string) (model.Industry, error) {
	defer observe("FetchIndustry", time.Now())
	if err := ctx.Err(); err != nil {
		return model.Industry{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ind, ok := s.industries[nameKey(name)]
	if !ok {
		return model.Industry{}, ErrUnknownIndustry
	}
	return ind, nil
}

// FetchRecommendedSlots implements CandidateRepository.
func (s *MemoryStore) FetchRecommendedSlots(ctx context.Context, industryID int64) ([]model.TalentID, error) {
	defer observe("FetchRecommendedSlots", time.Now())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.slots[industryID]
	if len(ids) > MaxRecommendedSlots {
		ids = ids[:MaxRecommendedSlots]
	}
	return append([]model.TalentID(nil), ids...), nil
}

// FetchCompetitiveCmStatus implements CandidateRepository.
func (s *MemoryStore) FetchCompetitiveCmStatus(ctx context.Context, ids []model.TalentID, industryID int64, asOf time.Time) (map[model.TalentID]bool, error) {
	defer observe("FetchCompetitiveCmStatus", time.Now())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	competing := s.competing[industryID]
	out := make(map[model.TalentID]bool, len(ids))
	for _, id := range ids {
		live := false
		for _, c := range s.contracts[id] {
			if _, ok := competing[nameKey(c.Category)]; ok && c.ActiveOn(asOf) {
				live = true
				break
			}
		}
		out[id] = live
	}
	return out, nil
}

// Stats summarizes the store contents.
func (s *MemoryStore) Stats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := 0
	for _, t := range s.talents {
		if t.Active {
			active++
		}
	}
	industries := make([]string, 0, len(s.industries))
	for _, ind := range s.industries {
		industries = append(industries, ind.Name)
	}
	sort.Strings(industries)
	bands := make([]string, 0, len(s.bands))
	for _, b := range s.bands {
		bands = append(bands, b.Name)
	}
	sort.Strings(bands)
	return map[string]interface{}{
		"talents":       len(s.talents),
		"activeTalents": active,
		"industries":    industries,
		"budgetBands":   bands,
	}
}
