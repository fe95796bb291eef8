package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/igsnforms-backend/internal/igsn"
	"github.com/yungbote/igsnforms-backend/internal/logger"
	"github.com/yungbote/igsnforms-backend/internal/repos"
)

// AllocatorService mints root identifiers. Validation happens before any
// counter mutation; the counter repo's atomic increment serializes
// concurrent callers on the same prefix, so repeated calls return a
// strictly increasing, collision-free sequence.
type AllocatorService interface {
	AllocateIdentifier(ctx context.Context, tx *gorm.DB, prefix string) (string, error)
}

type allocatorService struct {
	db          *gorm.DB
	log         *logger.Logger
	counterRepo repos.PrefixCounterRepo
	settings    SettingsService
}

func NewAllocatorService(
	db *gorm.DB,
	baseLog *logger.Logger,
	counterRepo repos.PrefixCounterRepo,
	settings SettingsService,
) AllocatorService {
	return &allocatorService{
		db:          db,
		log:         baseLog.With("service", "AllocatorService"),
		counterRepo: counterRepo,
		settings:    settings,
	}
}

func (s *allocatorService) AllocateIdentifier(ctx context.Context, tx *gorm.DB, prefix string) (string, error) {
	vocab, err := s.settings.GetVocabulary(ctx, tx)
	if err != nil {
		return "", err
	}
	if err := igsn.ValidatePrefix(prefix, vocab); err != nil {
		return "", err
	}

	seq, err := s.counterRepo.Increment(ctx, tx, prefix)
	if err != nil {
		return "", err
	}

	identifier := igsn.FormatIdentifier(prefix, seq)
	s.log.Info("Allocated identifier", "igsn", identifier, "prefix", prefix, "seq", seq)
	return identifier, nil
}
