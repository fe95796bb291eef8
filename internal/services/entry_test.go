package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/igsnforms-backend/internal/igsn"
	"github.com/yungbote/igsnforms-backend/internal/types"
)

type fakeFormRepo struct {
	mu    sync.Mutex
	forms map[uuid.UUID]*types.Form
}

func newFakeFormRepo() *fakeFormRepo {
	return &fakeFormRepo{forms: map[uuid.UUID]*types.Form{}}
}

func (f *fakeFormRepo) Create(ctx context.Context, tx *gorm.DB, form *types.Form) (*types.Form, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if form.ID == uuid.Nil {
		form.ID = uuid.New()
	}
	f.forms[form.ID] = form
	return form, nil
}

func (f *fakeFormRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Form, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	form, ok := f.forms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return form, nil
}

func (f *fakeFormRepo) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*types.Form, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Form
	for _, form := range f.forms {
		out = append(out, form)
	}
	return out, nil
}

func (f *fakeFormRepo) Update(ctx context.Context, tx *gorm.DB, form *types.Form) (*types.Form, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forms[form.ID] = form
	return form, nil
}

func (f *fakeFormRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.forms, id)
	return nil
}

type fakeEntryRepo struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*types.FormEntry
	order []uuid.UUID
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{byID: map[uuid.UUID]*types.FormEntry{}}
}

func (f *fakeEntryRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.FormEntry) (*types.FormEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	f.byID[entry.ID] = entry
	f.order = append(f.order, entry.ID)
	return entry, nil
}

func (f *fakeEntryRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.FormEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return entry, nil
}

func (f *fakeEntryRepo) GetByUniqueID(ctx context.Context, tx *gorm.DB, formID uuid.UUID, uniqueID string) (*types.FormEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.order {
		entry := f.byID[id]
		if entry.FormID == formID && entry.UniqueID == uniqueID {
			return entry, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEntryRepo) ListByForm(ctx context.Context, tx *gorm.DB, formID uuid.UUID, limit, offset int) ([]*types.FormEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.FormEntry
	for _, id := range f.order {
		if f.byID[id].FormID == formID {
			out = append(out, f.byID[id])
		}
	}
	return out, nil
}

func (f *fakeEntryRepo) Update(ctx context.Context, tx *gorm.DB, entry *types.FormEntry) (*types.FormEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[entry.ID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	f.byID[entry.ID] = entry
	return entry, nil
}

func (f *fakeEntryRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
	return nil
}

type fakeChangesetRepo struct {
	mu      sync.Mutex
	created []*types.Changeset
}

func (f *fakeChangesetRepo) Create(ctx context.Context, tx *gorm.DB, changeset *types.Changeset) (*types.Changeset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if changeset.ID == uuid.Nil {
		changeset.ID = uuid.New()
	}
	f.created = append(f.created, changeset)
	return changeset, nil
}

func (f *fakeChangesetRepo) ListByEntry(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) ([]*types.Changeset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Changeset
	for _, changeset := range f.created {
		if changeset.EntryID == entryID {
			out = append(out, changeset)
		}
	}
	return out, nil
}

type entryFixture struct {
	*depositionFixture
	service    EntryService
	entries    *fakeEntryRepo
	forms      *fakeFormRepo
	changesets *fakeChangesetRepo
}

func newEntryFixture(t *testing.T) *entryFixture {
	t.Helper()
	base := newDepositionFixture(t)
	log := testLogger(t)
	entries := newFakeEntryRepo()
	forms := newFakeFormRepo()
	changesets := &fakeChangesetRepo{}
	registration := NewRegistrationService(nil, log, base.service)
	relations := NewRelationService(nil, log, base.depositions, testAPIBase)
	service := NewEntryService(nil, log, entries, forms, changesets, registration, relations, nil)
	return &entryFixture{
		depositionFixture: base,
		service:           service,
		entries:           entries,
		forms:             forms,
		changesets:        changesets,
	}
}

func (fx *entryFixture) formWith(t *testing.T, uniqueField string) *types.Form {
	t.Helper()
	form, err := fx.forms.Create(context.Background(), nil, &types.Form{
		Name:        "Sample intake",
		UniqueField: uniqueField,
		CreatorID:   fx.creator.ID,
	})
	if err != nil {
		t.Fatalf("create form: %v", err)
	}
	return form
}

func TestSaveEntryRegistersOnFirstSave(t *testing.T) {
	fx := newEntryFixture(t)
	ctx := context.Background()
	form := fx.formWith(t, "sample_name")

	entry, err := fx.service.SaveEntry(ctx, nil, form.ID, map[string]interface{}{
		"sample_name":  "S1",
		"igsn_request": true,
		"igsn_prefix":  "JHXMAA",
		"igsn_field":   "sample_igsn",
	}, fx.creator)
	if err != nil {
		t.Fatalf("SaveEntry: %v", err)
	}

	if got := igsn.AsString(entry.Data["sample_igsn"]); got != "JHXMAA00001" {
		t.Fatalf("designated field = %q, want JHXMAA00001", got)
	}
	if _, err := fx.depositions.GetByIGSN(ctx, nil, "JHXMAA00001"); err != nil {
		t.Fatalf("deposition not created: %v", err)
	}
}

func TestSaveEntryReplayDoesNotReallocate(t *testing.T) {
	fx := newEntryFixture(t)
	ctx := context.Background()
	form := fx.formWith(t, "sample_name")

	payload := func() map[string]interface{} {
		return map[string]interface{}{
			"sample_name":  "S1",
			"igsn_request": true,
			"igsn_prefix":  "JHXMAA",
			"igsn_suffix":  "",
			"igsn_field":   "sample_igsn",
		}
	}

	first, err := fx.service.SaveEntry(ctx, nil, form.ID, payload(), fx.creator)
	if err != nil {
		t.Fatalf("first SaveEntry: %v", err)
	}

	// Resubmitting the identical issuance request updates the existing
	// row without minting a second identifier.
	second, err := fx.service.SaveEntry(ctx, nil, form.ID, payload(), fx.creator)
	if err != nil {
		t.Fatalf("second SaveEntry: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("replay created a new entry %s, want update of %s", second.ID, first.ID)
	}

	counter, err := fx.counters.GetByPrefix(ctx, nil, "JHXMAA")
	if err != nil {
		t.Fatalf("counter: %v", err)
	}
	if counter.Seq != 1 {
		t.Fatalf("counter = %d, want 1", counter.Seq)
	}
	if _, err := fx.depositions.GetByIGSN(ctx, nil, "JHXMAA00002"); err == nil {
		t.Fatal("replay registered a second deposition")
	}
}

func TestSaveEntryUpdateRecordsChangeset(t *testing.T) {
	fx := newEntryFixture(t)
	ctx := context.Background()
	form := fx.formWith(t, "sample_name")

	entry, err := fx.service.SaveEntry(ctx, nil, form.ID, map[string]interface{}{
		"sample_name": "S1",
		"mass_g":      float64(12),
	}, fx.creator)
	if err != nil {
		t.Fatalf("first SaveEntry: %v", err)
	}

	if _, err := fx.service.SaveEntry(ctx, nil, form.ID, map[string]interface{}{
		"sample_name": "S1",
		"mass_g":      float64(14),
	}, fx.creator); err != nil {
		t.Fatalf("second SaveEntry: %v", err)
	}

	changesets, err := fx.service.ListChangesets(ctx, nil, entry.ID)
	if err != nil {
		t.Fatalf("ListChangesets: %v", err)
	}
	if len(changesets) != 1 {
		t.Fatalf("got %d changesets, want 1", len(changesets))
	}
}
