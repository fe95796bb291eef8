package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/igsnforms-backend/internal/logger"
	"github.com/yungbote/igsnforms-backend/internal/repos"
	"github.com/yungbote/igsnforms-backend/internal/types"
)

type FormService interface {
	CreateForm(ctx context.Context, tx *gorm.DB, form *types.Form) (*types.Form, error)
	GetForm(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Form, error)
	ListForms(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*types.Form, error)
	UpdateForm(ctx context.Context, tx *gorm.DB, form *types.Form) (*types.Form, error)
	DeleteForm(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type formService struct {
	db       *gorm.DB
	log      *logger.Logger
	formRepo repos.FormRepo
}

func NewFormService(db *gorm.DB, baseLog *logger.Logger, formRepo repos.FormRepo) FormService {
	return &formService{
		db:       db,
		log:      baseLog.With("service", "FormService"),
		formRepo: formRepo,
	}
}

func (fs *formService) CreateForm(ctx context.Context, tx *gorm.DB, form *types.Form) (*types.Form, error) {
	fs.log.Info("Creating form", "name", form.Name)
	return fs.formRepo.Create(ctx, tx, form)
}

func (fs *formService) GetForm(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Form, error) {
	return fs.formRepo.GetByID(ctx, tx, id)
}

func (fs *formService) ListForms(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*types.Form, error) {
	return fs.formRepo.List(ctx, tx, limit, offset)
}

func (fs *formService) UpdateForm(ctx context.Context, tx *gorm.DB, form *types.Form) (*types.Form, error) {
	return fs.formRepo.Update(ctx, tx, form)
}

func (fs *formService) DeleteForm(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return fs.formRepo.Delete(ctx, tx, id)
}
