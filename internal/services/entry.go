package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wI2L/jsondiff"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/igsnforms-backend/internal/clients/gdrive"
	"github.com/yungbote/igsnforms-backend/internal/igsn"
	"github.com/yungbote/igsnforms-backend/internal/logger"
	"github.com/yungbote/igsnforms-backend/internal/repos"
	"github.com/yungbote/igsnforms-backend/internal/types"
)

// EntryService saves form entries and runs the hooks hanging off a save:
// IGSN registration on the first save, deposition linking after, a
// changeset row per update, and an optional Drive mirror of the entry
// file.
type EntryService interface {
	SaveEntry(ctx context.Context, tx *gorm.DB, formID uuid.UUID, data map[string]interface{}, creator *types.User) (*types.FormEntry, error)
	GetEntry(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.FormEntry, error)
	ListEntries(ctx context.Context, tx *gorm.DB, formID uuid.UUID, limit, offset int) ([]*types.FormEntry, error)
	DeleteEntry(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ListChangesets(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) ([]*types.Changeset, error)
}

type entryService struct {
	db            *gorm.DB
	log           *logger.Logger
	entryRepo     repos.FormEntryRepo
	formRepo      repos.FormRepo
	changesetRepo repos.ChangesetRepo
	registration  RegistrationService
	relations     RelationService
	drive         *gdrive.Client
}

func NewEntryService(
	db *gorm.DB,
	baseLog *logger.Logger,
	entryRepo repos.FormEntryRepo,
	formRepo repos.FormRepo,
	changesetRepo repos.ChangesetRepo,
	registration RegistrationService,
	relations RelationService,
	drive *gdrive.Client,
) EntryService {
	return &entryService{
		db:            db,
		log:           baseLog.With("service", "EntryService"),
		entryRepo:     entryRepo,
		formRepo:      formRepo,
		changesetRepo: changesetRepo,
		registration:  registration,
		relations:     relations,
		drive:         drive,
	}
}

// SaveEntry upserts by the form's unique field: a matching unique id
// updates the existing row, anything else inserts a new one.
func (s *entryService) SaveEntry(ctx context.Context, tx *gorm.DB, formID uuid.UUID, data map[string]interface{}, creator *types.User) (*types.FormEntry, error) {
	if creator == nil {
		return nil, fmt.Errorf("creator is required")
	}
	form, err := s.formRepo.GetByID(ctx, tx, formID)
	if err != nil {
		return nil, fmt.Errorf("load form %s: %w", formID, err)
	}

	uniqueID := ""
	if form.UniqueField != "" {
		uniqueID = igsn.AsString(data[form.UniqueField])
	}

	var existing *types.FormEntry
	if uniqueID != "" {
		existing, err = s.entryRepo.GetByUniqueID(ctx, tx, form.ID, uniqueID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if existing != nil {
		return s.updateEntry(ctx, tx, form, existing, data, creator)
	}
	return s.createEntry(ctx, tx, form, data, uniqueID, creator)
}

func (s *entryService) createEntry(ctx context.Context, tx *gorm.DB, form *types.Form, data map[string]interface{}, uniqueID string, creator *types.User) (*types.FormEntry, error) {
	entry := &types.FormEntry{
		FormID:    form.ID,
		Data:      datatypes.JSONMap(data),
		UniqueID:  uniqueID,
		CreatorID: creator.ID,
	}
	entry, err := s.entryRepo.Create(ctx, tx, entry)
	if err != nil {
		return nil, err
	}

	// Registration needs a persisted entry id; a rewrite of the data
	// (cleared flag, assigned identifier) goes back to the row.
	before := snapshotData(entry.Data)
	if err := s.registration.OnEntrySaving(ctx, tx, entry, creator); err != nil {
		return nil, err
	}
	if !bytes.Equal(before, snapshotData(entry.Data)) {
		if entry, err = s.entryRepo.Update(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	s.runPostSaveHooks(ctx, tx, form, entry)
	return entry, nil
}

func (s *entryService) updateEntry(ctx context.Context, tx *gorm.DB, form *types.Form, entry *types.FormEntry, data map[string]interface{}, creator *types.User) (*types.FormEntry, error) {
	previous := snapshotData(entry.Data)
	entry.Data = datatypes.JSONMap(data)
	entry.UpdatedAt = time.Now()

	// Registration never runs for an existing row: a replayed issuance
	// request on an update must not mint a second identifier.
	entry, err := s.entryRepo.Update(ctx, tx, entry)
	if err != nil {
		return nil, err
	}

	if err := s.recordChangeset(ctx, tx, entry, previous, creator); err != nil {
		s.log.Error("Changeset recording failed", "entry_id", entry.ID, "error", err)
	}
	s.mirrorEntry(ctx, form, entry)
	return entry, nil
}

func (s *entryService) GetEntry(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.FormEntry, error) {
	return s.entryRepo.GetByID(ctx, tx, id)
}

func (s *entryService) ListEntries(ctx context.Context, tx *gorm.DB, formID uuid.UUID, limit, offset int) ([]*types.FormEntry, error) {
	return s.entryRepo.ListByForm(ctx, tx, formID, limit, offset)
}

func (s *entryService) DeleteEntry(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if err := s.entryRepo.Delete(ctx, tx, id); err != nil {
		return err
	}
	if err := s.relations.OnEntryDeleted(ctx, tx, id); err != nil {
		s.log.Error("Relation cleanup failed after entry delete", "entry_id", id, "error", err)
	}
	return nil
}

func (s *entryService) ListChangesets(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) ([]*types.Changeset, error) {
	return s.changesetRepo.ListByEntry(ctx, tx, entryID)
}

// runPostSaveHooks links the entry to its deposition and mirrors the
// entry file. Both are best-effort; the saved entry must survive either
// failing.
func (s *entryService) runPostSaveHooks(ctx context.Context, tx *gorm.DB, form *types.Form, entry *types.FormEntry) {
	if err := s.relations.OnEntryCreated(ctx, tx, entry, form); err != nil {
		s.log.Error("Relation linking failed", "entry_id", entry.ID, "error", err)
	}
	s.mirrorEntry(ctx, form, entry)
}

func (s *entryService) recordChangeset(ctx context.Context, tx *gorm.DB, entry *types.FormEntry, previous []byte, creator *types.User) error {
	current := snapshotData(entry.Data)
	patch, err := jsondiff.CompareJSON(previous, current)
	if err != nil {
		return err
	}
	if len(patch) == 0 {
		return nil
	}
	diff, err := json.Marshal(patch)
	if err != nil {
		return err
	}
	creatorID := creator.ID
	_, err = s.changesetRepo.Create(ctx, tx, &types.Changeset{
		EntryID:   entry.ID,
		CreatorID: &creatorID,
		Diff:      datatypes.JSON(diff),
	})
	return err
}

// mirrorEntry serializes the entry data to Drive when the form names a
// folder and a client is configured.
func (s *entryService) mirrorEntry(ctx context.Context, form *types.Form, entry *types.FormEntry) {
	if s.drive == nil || form.DriveFolderID == "" {
		return
	}
	content, err := json.MarshalIndent(entry.Data, "", "  ")
	if err != nil {
		s.log.Error("Entry serialization failed", "entry_id", entry.ID, "error", err)
		return
	}
	relPath := entryFilePath(form, entry)
	if _, err := s.drive.Upload(ctx, form.DriveFolderID, relPath, bytes.NewReader(content), "application/json"); err != nil {
		s.log.Error("Drive mirror failed", "entry_id", entry.ID, "path", relPath, "error", err)
		return
	}
	s.log.Info("Mirrored entry file", "entry_id", entry.ID, "path", relPath)
}

// entryFilePath renders the form's path template, substituting {field}
// placeholders from the entry data.
func entryFilePath(form *types.Form, entry *types.FormEntry) string {
	name := form.EntryFileName
	if name == "" {
		name = "{id}.json"
	}
	dir := renderTemplate(form.PathTemplate, entry)
	return path.Join(dir, renderTemplate(name, entry))
}

func renderTemplate(template string, entry *types.FormEntry) string {
	out := strings.ReplaceAll(template, "{id}", entry.ID.String())
	out = strings.ReplaceAll(out, "{unique_id}", entry.UniqueID)
	for key, value := range entry.Data {
		placeholder := "{" + key + "}"
		if strings.Contains(out, placeholder) {
			out = strings.ReplaceAll(out, placeholder, igsn.AsString(value))
		}
	}
	return out
}

func snapshotData(data datatypes.JSONMap) []byte {
	raw, err := json.Marshal(data)
	if err != nil {
		return []byte("{}")
	}
	return raw
}
