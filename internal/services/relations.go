package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/igsnforms-backend/internal/igsn"
	"github.com/yungbote/igsnforms-backend/internal/logger"
	"github.com/yungbote/igsnforms-backend/internal/repos"
	"github.com/yungbote/igsnforms-backend/internal/types"
)

// RelationService links saved entries to the depositions they describe.
// A HasMetadata related identifier pointing at the entry's API URL is
// added on create and swept on delete.
type RelationService interface {
	OnEntryCreated(ctx context.Context, tx *gorm.DB, entry *types.FormEntry, form *types.Form) error
	OnEntryDeleted(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) error
}

type relationService struct {
	db             *gorm.DB
	log            *logger.Logger
	depositionRepo repos.DepositionRepo
	apiBaseURL     string
}

func NewRelationService(db *gorm.DB, baseLog *logger.Logger, depositionRepo repos.DepositionRepo, apiBaseURL string) RelationService {
	return &relationService{
		db:             db,
		log:            baseLog.With("service", "RelationService"),
		depositionRepo: depositionRepo,
		apiBaseURL:     apiBaseURL,
	}
}

func (s *relationService) OnEntryCreated(ctx context.Context, tx *gorm.DB, entry *types.FormEntry, form *types.Form) error {
	deposition, err := s.resolveDeposition(ctx, tx, entry.Data)
	if err != nil {
		return err
	}
	if deposition == nil {
		// Entries without an identifier reference are fine; nothing to link.
		return nil
	}

	relation := map[string]interface{}{
		"relationType":          "HasMetadata",
		"relatedIdentifier":     s.entryURL(entry.ID),
		"relatedIdentifierType": "URL",
		"relatedMetadataScheme": s.schemaURL(form.ID),
	}

	if err := s.depositionRepo.AddRelation(ctx, tx, deposition.ID, relation); err != nil {
		return fmt.Errorf("link entry %s to %s: %w", entry.ID, deposition.IGSN, err)
	}
	s.log.Info("Linked entry to deposition", "entry_id", entry.ID, "igsn", deposition.IGSN)
	return nil
}

func (s *relationService) OnEntryDeleted(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) error {
	affected, err := s.depositionRepo.RemoveRelationsByTarget(ctx, tx, "/entry/"+entryID.String())
	if err != nil {
		return fmt.Errorf("unlink entry %s: %w", entryID, err)
	}
	if affected > 0 {
		s.log.Info("Removed entry relations", "entry_id", entryID, "depositions", affected)
	}
	return nil
}

// resolveDeposition finds the deposition an entry refers to, either by a
// direct deposition id or by a prefix/suffix pair in the entry data. An
// unresolvable reference is logged and skipped rather than failing the
// entry save.
func (s *relationService) resolveDeposition(ctx context.Context, tx *gorm.DB, data map[string]interface{}) (*types.Deposition, error) {
	if raw := igsn.AsString(data["depositionId"]); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			s.log.Warn("Entry carries a malformed deposition id, skipping link", "deposition_id", raw)
			return nil, nil
		}
		deposition, err := s.depositionRepo.GetByID(ctx, tx, id)
		if err != nil {
			s.log.Warn("Entry references an unknown deposition, skipping link", "deposition_id", raw)
			return nil, nil
		}
		return deposition, nil
	}

	prefix, suffix := requestedIdentifier(data)
	if prefix == "" || suffix == "" {
		return nil, nil
	}
	identifier := prefix + suffix
	deposition, err := s.depositionRepo.GetByIGSN(ctx, tx, identifier)
	if err != nil {
		s.log.Warn("Entry references an unknown IGSN, skipping link", "igsn", identifier)
		return nil, nil
	}
	return deposition, nil
}

func requestedIdentifier(data map[string]interface{}) (string, string) {
	// A nested igsn object may hold only metadata while the request lived
	// in flat keys, so an incomplete nested pair falls through.
	if nested := igsn.AsMap(data["igsn"]); nested != nil {
		prefix, suffix := igsn.AsString(nested["prefix"]), igsn.AsString(nested["suffix"])
		if prefix != "" && suffix != "" {
			return prefix, suffix
		}
	}
	return igsn.AsString(data["igsn_prefix"]), igsn.AsString(data["igsn_suffix"])
}

func (s *relationService) entryURL(entryID uuid.UUID) string {
	return fmt.Sprintf("%s/entry/%s", s.apiBaseURL, entryID)
}

func (s *relationService) schemaURL(formID uuid.UUID) string {
	return fmt.Sprintf("%s/form/%s/schema", s.apiBaseURL, formID)
}
