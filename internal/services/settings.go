package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/igsnforms-backend/internal/clients/redis"
	"github.com/yungbote/igsnforms-backend/internal/igsn"
	"github.com/yungbote/igsnforms-backend/internal/logger"
	"github.com/yungbote/igsnforms-backend/internal/repos"
	"github.com/yungbote/igsnforms-backend/internal/types"
)

const (
	cacheKeyInstitutions = "setting:" + types.SettingIGSNInstitutions
	cacheKeyMaterials    = "setting:" + types.SettingIGSNMaterials
)

// SettingsService serves the IGSN vocabularies and metadata boilerplate.
// Values live in the settings table, seeded from the built-in defaults on
// first read, with a redis cache in front (prefix validation runs on every
// allocation).
type SettingsService interface {
	GetVocabulary(ctx context.Context, tx *gorm.DB) (igsn.Vocabulary, error)
	SetInstitutions(ctx context.Context, tx *gorm.DB, institutions map[string]igsn.Institution) error
	SetMaterials(ctx context.Context, tx *gorm.DB, materials map[string]igsn.Material) error
	GetMetadataDefaults(ctx context.Context, tx *gorm.DB) igsn.MetadataDefaults
}

type settingsService struct {
	db          *gorm.DB
	log         *logger.Logger
	settingRepo repos.SettingRepo
	cache       *redis.Cache
	defaults    igsn.MetadataDefaults
}

func NewSettingsService(
	db *gorm.DB,
	baseLog *logger.Logger,
	settingRepo repos.SettingRepo,
	cache *redis.Cache,
	defaults igsn.MetadataDefaults,
) SettingsService {
	return &settingsService{
		db:          db,
		log:         baseLog.With("service", "SettingsService"),
		settingRepo: settingRepo,
		cache:       cache,
		defaults:    defaults,
	}
}

func (s *settingsService) GetVocabulary(ctx context.Context, tx *gorm.DB) (igsn.Vocabulary, error) {
	seed, err := igsn.DefaultVocabulary()
	if err != nil {
		return igsn.Vocabulary{}, err
	}

	vocab := igsn.Vocabulary{}

	institutions := map[string]igsn.Institution{}
	if err := s.getSetting(ctx, tx, types.SettingIGSNInstitutions, cacheKeyInstitutions, &institutions); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return igsn.Vocabulary{}, err
		}
		institutions = seed.Institutions
		s.seedSetting(ctx, tx, types.SettingIGSNInstitutions, institutions)
	}
	vocab.Institutions = institutions

	materials := map[string]igsn.Material{}
	if err := s.getSetting(ctx, tx, types.SettingIGSNMaterials, cacheKeyMaterials, &materials); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return igsn.Vocabulary{}, err
		}
		materials = seed.Materials
		s.seedSetting(ctx, tx, types.SettingIGSNMaterials, materials)
	}
	vocab.Materials = materials

	return vocab, nil
}

func (s *settingsService) SetInstitutions(ctx context.Context, tx *gorm.DB, institutions map[string]igsn.Institution) error {
	return s.setSetting(ctx, tx, types.SettingIGSNInstitutions, cacheKeyInstitutions, institutions)
}

func (s *settingsService) SetMaterials(ctx context.Context, tx *gorm.DB, materials map[string]igsn.Material) error {
	return s.setSetting(ctx, tx, types.SettingIGSNMaterials, cacheKeyMaterials, materials)
}

func (s *settingsService) GetMetadataDefaults(ctx context.Context, tx *gorm.DB) igsn.MetadataDefaults {
	return s.defaults
}

func (s *settingsService) getSetting(ctx context.Context, tx *gorm.DB, key, cacheKey string, dest interface{}) error {
	if s.cache != nil {
		hit, err := s.cache.GetJSON(ctx, cacheKey, dest)
		if err != nil {
			s.log.Warn("settings cache read failed", "key", key, "error", err)
		} else if hit {
			return nil
		}
	}

	setting, err := s.settingRepo.Get(ctx, tx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(setting.Value, dest); err != nil {
		return fmt.Errorf("decode setting %s: %w", key, err)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, dest); err != nil {
			s.log.Warn("settings cache write failed", "key", key, "error", err)
		}
	}
	return nil
}

func (s *settingsService) setSetting(ctx context.Context, tx *gorm.DB, key, cacheKey string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := s.settingRepo.Set(ctx, tx, key, datatypes.JSON(raw)); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, cacheKey); err != nil {
			s.log.Warn("settings cache invalidation failed", "key", key, "error", err)
		}
	}
	return nil
}

func (s *settingsService) seedSetting(ctx context.Context, tx *gorm.DB, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.log.Warn("settings seed encode failed", "key", key, "error", err)
		return
	}
	if err := s.settingRepo.Set(ctx, tx, key, datatypes.JSON(raw)); err != nil {
		s.log.Warn("settings seed write failed", "key", key, "error", err)
	}
}
