package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/igsnforms-backend/internal/logger"
	"github.com/yungbote/igsnforms-backend/internal/types"
)

type FormRepo interface {
	Create(ctx context.Context, tx *gorm.DB, form *types.Form) (*types.Form, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Form, error)
	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*types.Form, error)
	Update(ctx context.Context, tx *gorm.DB, form *types.Form) (*types.Form, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type formRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFormRepo(db *gorm.DB, baseLog *logger.Logger) FormRepo {
	repoLog := baseLog.With("repo", "FormRepo")
	return &formRepo{db: db, log: repoLog}
}

func (fr *formRepo) Create(ctx context.Context, tx *gorm.DB, form *types.Form) (*types.Form, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	if err := transaction.WithContext(ctx).Create(form).Error; err != nil {
		return nil, err
	}
	return form, nil
}

func (fr *formRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Form, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	var form types.Form
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&form).Error; err != nil {
		return nil, err
	}
	return &form, nil
}

func (fr *formRepo) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*types.Form, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	query := transaction.WithContext(ctx).Model(&types.Form{})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var forms []*types.Form
	if err := query.Order("name ASC").Find(&forms).Error; err != nil {
		return nil, err
	}
	return forms, nil
}

func (fr *formRepo) Update(ctx context.Context, tx *gorm.DB, form *types.Form) (*types.Form, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	if err := transaction.WithContext(ctx).Save(form).Error; err != nil {
		return nil, err
	}
	return form, nil
}

func (fr *formRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Form{}).Error
}
