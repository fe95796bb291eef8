package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/igsnforms-backend/internal/igsn"
	"github.com/yungbote/igsnforms-backend/internal/logger"
	"github.com/yungbote/igsnforms-backend/internal/types"
)

// RegistrationService inspects entry data before it is saved and, when a
// registration is requested, allocates an identifier, creates the
// deposition (and batch), and rewrites the entry data in place.
type RegistrationService interface {
	OnEntrySaving(ctx context.Context, tx *gorm.DB, entry *types.FormEntry, creator *types.User) error
}

type registrationService struct {
	db          *gorm.DB
	log         *logger.Logger
	depositions DepositionService
}

func NewRegistrationService(db *gorm.DB, baseLog *logger.Logger, depositions DepositionService) RegistrationService {
	return &registrationService{
		db:          db,
		log:         baseLog.With("service", "RegistrationService"),
		depositions: depositions,
	}
}

func (s *registrationService) OnEntrySaving(ctx context.Context, tx *gorm.DB, entry *types.FormEntry, creator *types.User) error {
	// Only entries that already have an identity can anchor a deposition.
	if entry.ID == uuid.Nil {
		return nil
	}

	req, ok := igsn.ParseRegistrationRequest(entry.Data)
	if !ok {
		return nil
	}

	// A suffix that already resolves means a previous save won the race;
	// registration is idempotent per entry.
	if req.Suffix != "" {
		identifier := req.Prefix + req.Suffix
		if existing, err := s.depositions.GetByIGSN(ctx, tx, identifier); err == nil && existing != nil {
			s.log.Debug("IGSN already registered, skipping", "igsn", identifier)
			clearRequest(entry.Data, req, identifier)
			return nil
		}
	}

	metadata := map[string]interface{}{}
	if req.Title != "" {
		metadata["titles"] = []interface{}{map[string]interface{}{"title": req.Title}}
	}
	if req.Description != "" {
		metadata["descriptions"] = []interface{}{map[string]interface{}{
			"description":     req.Description,
			"descriptionType": "Abstract",
		}}
	}

	deposition, err := s.depositions.CreateDeposition(ctx, tx, CreateDepositionParams{
		Metadata: metadata,
		Creator:  creator,
		Prefix:   req.Prefix,
		Track:    req.Track,
	})
	if err != nil {
		return fmt.Errorf("register IGSN for entry %s: %w", entry.ID, err)
	}

	if len(req.BatchData) > 0 {
		// Batch problems must never lose the master registration.
		if err := s.depositions.CreateBatch(ctx, tx, deposition, req.BatchData, req.BatchMethod); err != nil {
			s.log.Error("Batch creation failed", "igsn", deposition.IGSN, "error", err)
		}
	}

	s.log.Info("Registered IGSN from entry", "igsn", deposition.IGSN, "entry_id", entry.ID)
	clearRequest(entry.Data, req, deposition.IGSN)
	return nil
}

// clearRequest rewrites the entry data so the request does not re-fire:
// the request flag drops, the suffix is recorded, and the designated
// field receives the identifier.
func clearRequest(data map[string]interface{}, req igsn.RegistrationRequest, identifier string) {
	suffix := identifier[igsn.PrefixLength:]
	if req.Nested {
		if nested := igsn.AsMap(data["igsn"]); nested != nil {
			nested["request"] = false
			nested["suffix"] = suffix
		}
	} else {
		// The flat shape may carry a nested igsn metadata object alongside
		// it; the rewrite still belongs to the flat keys the request used.
		data["igsn_request"] = false
		data["igsn_suffix"] = suffix
	}
	if req.Field != "" {
		data[req.Field] = identifier
	}
}
