package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/igsnforms-backend/internal/igsn"
	"github.com/yungbote/igsnforms-backend/internal/logger"
	"github.com/yungbote/igsnforms-backend/internal/repos"
	"github.com/yungbote/igsnforms-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

// In-memory doubles for the repo layer. They honor the same ordering and
// idempotence contracts as the postgres-backed implementations.

type fakeCounterRepo struct {
	mu   sync.Mutex
	seqs map[string]int64
}

func newFakeCounterRepo() *fakeCounterRepo {
	return &fakeCounterRepo{seqs: map[string]int64{}}
}

func (f *fakeCounterRepo) Increment(ctx context.Context, tx *gorm.DB, prefix string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seqs[prefix]++
	return f.seqs[prefix], nil
}

func (f *fakeCounterRepo) GetByPrefix(ctx context.Context, tx *gorm.DB, prefix string) (*types.PrefixCounter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seq, ok := f.seqs[prefix]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &types.PrefixCounter{Prefix: prefix, Seq: seq}, nil
}

type fakeDepositionRepo struct {
	mu            sync.Mutex
	byID          map[uuid.UUID]*types.Deposition
	byIGSN        map[string]*types.Deposition
	order         []string
	relations     map[uuid.UUID][]map[string]interface{}
	removedSweeps []string
}

func newFakeDepositionRepo() *fakeDepositionRepo {
	return &fakeDepositionRepo{
		byID:      map[uuid.UUID]*types.Deposition{},
		byIGSN:    map[string]*types.Deposition{},
		relations: map[uuid.UUID][]map[string]interface{}{},
	}
}

func (f *fakeDepositionRepo) store(deposition *types.Deposition) {
	if deposition.ID == uuid.Nil {
		deposition.ID = uuid.New()
	}
	f.byID[deposition.ID] = deposition
	f.byIGSN[deposition.IGSN] = deposition
	f.order = append(f.order, deposition.IGSN)
}

func (f *fakeDepositionRepo) Create(ctx context.Context, tx *gorm.DB, deposition *types.Deposition) (*types.Deposition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byIGSN[deposition.IGSN]; exists {
		return nil, fmt.Errorf("duplicate igsn %s", deposition.IGSN)
	}
	f.store(deposition)
	return deposition, nil
}

func (f *fakeDepositionRepo) CreateBulk(ctx context.Context, tx *gorm.DB, depositions []*types.Deposition) ([]*types.Deposition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, deposition := range depositions {
		if _, exists := f.byIGSN[deposition.IGSN]; exists {
			return nil, fmt.Errorf("duplicate igsn %s", deposition.IGSN)
		}
	}
	for _, deposition := range depositions {
		f.store(deposition)
	}
	return depositions, nil
}

func (f *fakeDepositionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Deposition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	deposition, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return deposition, nil
}

func (f *fakeDepositionRepo) GetByIGSN(ctx context.Context, tx *gorm.DB, igsnID string) (*types.Deposition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	deposition, ok := f.byIGSN[igsnID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return deposition, nil
}

func (f *fakeDepositionRepo) GetChildren(ctx context.Context, tx *gorm.DB, parentID uuid.UUID) ([]*types.Deposition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var children []*types.Deposition
	for _, igsnID := range f.order {
		deposition := f.byIGSN[igsnID]
		if deposition.ParentID != nil && *deposition.ParentID == parentID {
			children = append(children, deposition)
		}
	}
	return children, nil
}

// List mirrors the SQL contract: the access predicate applies before the
// limit/offset window.
func (f *fakeDepositionRepo) List(ctx context.Context, tx *gorm.DB, filter repos.DepositionFilter) ([]*types.Deposition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	admin := filter.Requester != nil && filter.Requester.Admin
	var out []*types.Deposition
	for _, igsnID := range f.order {
		deposition := f.byIGSN[igsnID]
		if !admin && !listVisible(deposition, filter) {
			continue
		}
		out = append(out, deposition)
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			out = nil
		} else {
			out = out[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func listVisible(deposition *types.Deposition, filter repos.DepositionFilter) bool {
	if deposition.Public && filter.MinLevel <= types.AccessRead {
		return true
	}
	if filter.Requester == nil {
		return false
	}
	return deposition.AccessList().LevelFor(filter.Requester.ID) >= filter.MinLevel
}

func (f *fakeDepositionRepo) Update(ctx context.Context, tx *gorm.DB, deposition *types.Deposition) (*types.Deposition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[deposition.ID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	f.byID[deposition.ID] = deposition
	f.byIGSN[deposition.IGSN] = deposition
	return deposition, nil
}

func (f *fakeDepositionRepo) UpdateAccess(ctx context.Context, tx *gorm.DB, id uuid.UUID, access datatypes.JSON, setPublic *bool, publicFlags datatypes.JSON) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	deposition, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	deposition.Access = access
	if setPublic != nil {
		deposition.Public = *setPublic
	}
	if publicFlags != nil {
		deposition.PublicFlags = publicFlags
	}
	return nil
}

func (f *fakeDepositionRepo) AddRelation(ctx context.Context, tx *gorm.DB, depositionID uuid.UUID, relation map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	target := relation["relatedIdentifier"]
	for _, existing := range f.relations[depositionID] {
		if existing["relatedIdentifier"] == target && existing["relationType"] == relation["relationType"] {
			return nil
		}
	}
	f.relations[depositionID] = append(f.relations[depositionID], relation)
	// The SQL implementation also matches children via parent_id.
	for _, deposition := range f.byID {
		if deposition.ParentID != nil && *deposition.ParentID == depositionID {
			f.relations[deposition.ID] = append(f.relations[deposition.ID], relation)
		}
	}
	return nil
}

func (f *fakeDepositionRepo) RemoveRelationsByTarget(ctx context.Context, tx *gorm.DB, relatedIdentifier string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removedSweeps = append(f.removedSweeps, relatedIdentifier)
	var affected int64
	for id, relations := range f.relations {
		var kept []map[string]interface{}
		for _, relation := range relations {
			if target, _ := relation["relatedIdentifier"].(string); target == relatedIdentifier || hasSuffix(target, relatedIdentifier) {
				continue
			}
			kept = append(kept, relation)
		}
		if len(kept) != len(relations) {
			f.relations[id] = kept
			affected++
		}
	}
	return affected, nil
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

type fakeSampleRepo struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*types.Sample
	created []*types.Sample
}

func newFakeSampleRepo() *fakeSampleRepo {
	return &fakeSampleRepo{byID: map[uuid.UUID]*types.Sample{}}
}

func (f *fakeSampleRepo) Create(ctx context.Context, tx *gorm.DB, sample *types.Sample) (*types.Sample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sample.ID == uuid.Nil {
		sample.ID = uuid.New()
	}
	f.byID[sample.ID] = sample
	f.created = append(f.created, sample)
	return sample, nil
}

func (f *fakeSampleRepo) CreateBulk(ctx context.Context, tx *gorm.DB, samples []*types.Sample) ([]*types.Sample, error) {
	for _, sample := range samples {
		if _, err := f.Create(ctx, tx, sample); err != nil {
			return nil, err
		}
	}
	return samples, nil
}

func (f *fakeSampleRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Sample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sample, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return sample, nil
}

// fakeSettings serves the compiled-in vocabulary without a database or
// cache behind it.
type fakeSettings struct {
	defaults igsn.MetadataDefaults
}

func (f *fakeSettings) GetVocabulary(ctx context.Context, tx *gorm.DB) (igsn.Vocabulary, error) {
	return igsn.DefaultVocabulary()
}

func (f *fakeSettings) SetInstitutions(ctx context.Context, tx *gorm.DB, institutions map[string]igsn.Institution) error {
	return nil
}

func (f *fakeSettings) SetMaterials(ctx context.Context, tx *gorm.DB, materials map[string]igsn.Material) error {
	return nil
}

func (f *fakeSettings) GetMetadataDefaults(ctx context.Context, tx *gorm.DB) igsn.MetadataDefaults {
	return f.defaults
}
