package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/igsnforms-backend/internal/logger"
	"github.com/yungbote/igsnforms-backend/internal/types"
)

type ChangesetRepo interface {
	Create(ctx context.Context, tx *gorm.DB, changeset *types.Changeset) (*types.Changeset, error)
	ListByEntry(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) ([]*types.Changeset, error)
}

type changesetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChangesetRepo(db *gorm.DB, baseLog *logger.Logger) ChangesetRepo {
	repoLog := baseLog.With("repo", "ChangesetRepo")
	return &changesetRepo{db: db, log: repoLog}
}

func (cr *changesetRepo) Create(ctx context.Context, tx *gorm.DB, changeset *types.Changeset) (*types.Changeset, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if err := transaction.WithContext(ctx).Create(changeset).Error; err != nil {
		return nil, err
	}
	return changeset, nil
}

func (cr *changesetRepo) ListByEntry(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) ([]*types.Changeset, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var changesets []*types.Changeset
	if err := transaction.WithContext(ctx).
		Where("entry_id = ?", entryID).
		Order("created_at ASC").
		Find(&changesets).Error; err != nil {
		return nil, err
	}
	return changesets, nil
}
