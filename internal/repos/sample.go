package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/igsnforms-backend/internal/logger"
	"github.com/yungbote/igsnforms-backend/internal/types"
)

type SampleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sample *types.Sample) (*types.Sample, error)
	// CreateBulk inserts samples in one write and returns them in input
	// order, so callers can associate results by position.
	CreateBulk(ctx context.Context, tx *gorm.DB, samples []*types.Sample) ([]*types.Sample, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Sample, error)
}

type sampleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSampleRepo(db *gorm.DB, baseLog *logger.Logger) SampleRepo {
	repoLog := baseLog.With("repo", "SampleRepo")
	return &sampleRepo{db: db, log: repoLog}
}

func (sr *sampleRepo) Create(ctx context.Context, tx *gorm.DB, sample *types.Sample) (*types.Sample, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if err := transaction.WithContext(ctx).Create(sample).Error; err != nil {
		return nil, err
	}
	return sample, nil
}

func (sr *sampleRepo) CreateBulk(ctx context.Context, tx *gorm.DB, samples []*types.Sample) ([]*types.Sample, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if len(samples) == 0 {
		return []*types.Sample{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&samples).Error; err != nil {
		return nil, err
	}
	return samples, nil
}

func (sr *sampleRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Sample, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var sample types.Sample
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&sample).Error; err != nil {
		return nil, err
	}
	return &sample, nil
}
