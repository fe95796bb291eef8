package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/igsnforms-backend/internal/logger"
	"github.com/yungbote/igsnforms-backend/internal/types"
)

type FormEntryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *types.FormEntry) (*types.FormEntry, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.FormEntry, error)
	GetByUniqueID(ctx context.Context, tx *gorm.DB, formID uuid.UUID, uniqueID string) (*types.FormEntry, error)
	ListByForm(ctx context.Context, tx *gorm.DB, formID uuid.UUID, limit, offset int) ([]*types.FormEntry, error)
	Update(ctx context.Context, tx *gorm.DB, entry *types.FormEntry) (*types.FormEntry, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type formEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFormEntryRepo(db *gorm.DB, baseLog *logger.Logger) FormEntryRepo {
	repoLog := baseLog.With("repo", "FormEntryRepo")
	return &formEntryRepo{db: db, log: repoLog}
}

func (er *formEntryRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.FormEntry) (*types.FormEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	if err := transaction.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (er *formEntryRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.FormEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	var entry types.FormEntry
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (er *formEntryRepo) GetByUniqueID(ctx context.Context, tx *gorm.DB, formID uuid.UUID, uniqueID string) (*types.FormEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	var entry types.FormEntry
	if err := transaction.WithContext(ctx).
		Where("form_id = ? AND unique_id = ?", formID, uniqueID).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (er *formEntryRepo) ListByForm(ctx context.Context, tx *gorm.DB, formID uuid.UUID, limit, offset int) ([]*types.FormEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	query := transaction.WithContext(ctx).Where("form_id = ?", formID)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var entries []*types.FormEntry
	if err := query.Order("created_at ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (er *formEntryRepo) Update(ctx context.Context, tx *gorm.DB, entry *types.FormEntry) (*types.FormEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	if err := transaction.WithContext(ctx).Save(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (er *formEntryRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.FormEntry{}).Error
}
