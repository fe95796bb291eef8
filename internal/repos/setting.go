package repos

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/igsnforms-backend/internal/logger"
	"github.com/yungbote/igsnforms-backend/internal/types"
)

type SettingRepo interface {
	Get(ctx context.Context, tx *gorm.DB, key string) (*types.Setting, error)
	Set(ctx context.Context, tx *gorm.DB, key string, value datatypes.JSON) error
}

type settingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSettingRepo(db *gorm.DB, baseLog *logger.Logger) SettingRepo {
	repoLog := baseLog.With("repo", "SettingRepo")
	return &settingRepo{db: db, log: repoLog}
}

func (sr *settingRepo) Get(ctx context.Context, tx *gorm.DB, key string) (*types.Setting, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var setting types.Setting
	if err := transaction.WithContext(ctx).
		Where("key = ?", key).
		First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

func (sr *settingRepo) Set(ctx context.Context, tx *gorm.DB, key string, value datatypes.JSON) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	setting := types.Setting{Key: key, Value: value}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&setting).Error
}
