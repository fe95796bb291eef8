package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/igsnforms-backend/internal/igsn"
	"github.com/yungbote/igsnforms-backend/internal/logger"
	"github.com/yungbote/igsnforms-backend/internal/repos"
	"github.com/yungbote/igsnforms-backend/internal/types"
)

type CreateDepositionParams struct {
	Metadata map[string]interface{}
	Creator  *types.User
	Prefix   string
	IGSN     string
	Parent   *types.Deposition
	Track    bool
}

// DepositionService owns the deposition hierarchy: master creation, batch
// fan-out, metadata updates, and recursive access management.
type DepositionService interface {
	CreateDeposition(ctx context.Context, tx *gorm.DB, params CreateDepositionParams) (*types.Deposition, error)
	CreateBatch(ctx context.Context, tx *gorm.DB, master *types.Deposition, data map[string]interface{}, method string) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Deposition, error)
	GetByIGSN(ctx context.Context, tx *gorm.DB, igsnID string) (*types.Deposition, error)
	List(ctx context.Context, tx *gorm.DB, filter repos.DepositionFilter, user *types.User, level int) ([]*types.Deposition, error)
	UpdateMetadata(ctx context.Context, tx *gorm.DB, id uuid.UUID, metadata map[string]interface{}) (*types.Deposition, error)
	SetAccess(ctx context.Context, tx *gorm.DB, id uuid.UUID, acl types.AccessList, recurse bool, setPublic *bool, publicFlags datatypes.JSON) error
	DisplayName(deposition *types.Deposition) string
}

type depositionService struct {
	db             *gorm.DB
	log            *logger.Logger
	depositionRepo repos.DepositionRepo
	sampleRepo     repos.SampleRepo
	allocator      AllocatorService
	settings       SettingsService
}

func NewDepositionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	depositionRepo repos.DepositionRepo,
	sampleRepo repos.SampleRepo,
	allocator AllocatorService,
	settings SettingsService,
) DepositionService {
	return &depositionService{
		db:             db,
		log:            baseLog.With("service", "DepositionService"),
		depositionRepo: depositionRepo,
		sampleRepo:     sampleRepo,
		allocator:      allocator,
		settings:       settings,
	}
}

func (s *depositionService) CreateDeposition(ctx context.Context, tx *gorm.DB, params CreateDepositionParams) (*types.Deposition, error) {
	if params.IGSN == "" && params.Prefix == "" {
		return nil, fmt.Errorf("either an IGSN or a prefix must be provided")
	}
	if params.IGSN != "" && params.Prefix != "" {
		return nil, fmt.Errorf("IGSN and prefix are mutually exclusive")
	}
	if params.Creator == nil {
		return nil, fmt.Errorf("creator is required")
	}

	metadata := params.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	igsn.FillMetadata(metadata, s.settings.GetMetadataDefaults(ctx, tx), time.Now())

	identifier := params.IGSN
	if identifier == "" {
		allocated, err := s.allocator.AllocateIdentifier(ctx, tx, params.Prefix)
		if err != nil {
			return nil, err
		}
		identifier = allocated
	}

	var acl types.AccessList
	var parentID *uuid.UUID
	if params.Parent != nil {
		// Sub-depositions start from their lineage's permissions.
		acl = params.Parent.AccessList()
		parentID = &params.Parent.ID
	}
	acl.Grant(params.Creator.ID, types.AccessAdmin)

	now := time.Now()
	deposition := &types.Deposition{
		IGSN:      identifier,
		CreatorID: params.Creator.ID,
		ParentID:  parentID,
		Metadata:  datatypes.JSONMap(metadata),
		State:     types.DepositionStateDraft,
		Track:     params.Track,
		Access:    types.EncodeAccess(acl),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if deposition.Track {
		sample, err := s.sampleRepo.Create(ctx, tx, &types.Sample{
			Name:      identifier,
			CreatorID: params.Creator.ID,
			Access:    deposition.Access,
			Events:    datatypes.JSON("[]"),
		})
		if err != nil {
			return nil, fmt.Errorf("create tracked sample: %w", err)
		}
		deposition.SampleID = &sample.ID
	}

	s.log.Info("Creating deposition", "igsn", identifier, "track", deposition.Track)
	return s.depositionRepo.Create(ctx, tx, deposition)
}

// CreateBatch expands a master deposition into its children. An empty
// strategy result is a soft failure: logged, nothing created, the master
// stays valid.
func (s *depositionService) CreateBatch(ctx context.Context, tx *gorm.DB, master *types.Deposition, data map[string]interface{}, method string) error {
	strategy, ok := igsn.LookupStrategy(method)
	if !ok {
		s.log.Error("Unknown batch method, creating no children", "method", method, "igsn", master.IGSN)
		return nil
	}
	indices := strategy.Compute(master, data)
	if len(indices) == 0 {
		s.log.Error("Missing required fields for batch creation", "method", method, "igsn", master.IGSN)
		return nil
	}

	baseMetadata, masterTitle := batchBaseMetadata(master)

	children := make([]*types.Deposition, 0, len(indices))
	for _, index := range indices {
		metadata := cloneMetadata(baseMetadata)
		metadata["titles"] = []interface{}{
			map[string]interface{}{"title": fmt.Sprintf("%s - %s", masterTitle, index.Suffix)},
		}
		if index.Local != nil {
			metadata["alternateIdentifiers"] = appendToList(metadata["alternateIdentifiers"], map[string]interface{}{
				"alternateIdentifier":     *index.Local,
				"alternateIdentifierType": "Local",
			})
		}

		children = append(children, &types.Deposition{
			IGSN:        igsn.ChildIdentifier(master.IGSN, index.Suffix),
			CreatorID:   master.CreatorID,
			ParentID:    &master.ID,
			Metadata:    datatypes.JSONMap(metadata),
			State:       types.DepositionStateDraft,
			Track:       master.Track,
			Access:      master.Access,
			Public:      master.Public,
			PublicFlags: master.PublicFlags,
			CreatedAt:   master.CreatedAt,
			UpdatedAt:   master.UpdatedAt,
		})
	}

	if master.Track && master.SampleID != nil {
		masterSample, err := s.sampleRepo.GetByID(ctx, tx, *master.SampleID)
		if err != nil {
			return fmt.Errorf("load master sample: %w", err)
		}
		samples := make([]*types.Sample, 0, len(children))
		for _, child := range children {
			samples = append(samples, &types.Sample{
				Name:        child.IGSN,
				Description: masterSample.Description,
				CreatorID:   masterSample.CreatorID,
				Access:      masterSample.Access,
				Events:      datatypes.JSON("[]"),
			})
		}
		created, err := s.sampleRepo.CreateBulk(ctx, tx, samples)
		if err != nil {
			return fmt.Errorf("create batch samples: %w", err)
		}
		// CreateBulk preserves input order, so association by position holds.
		for i, child := range children {
			child.SampleID = &created[i].ID
		}
	}

	s.log.Info("Creating batch", "igsn", master.IGSN, "children", len(children), "method", method)
	if _, err := s.depositionRepo.CreateBulk(ctx, tx, children); err != nil {
		return fmt.Errorf("create batch depositions: %w", err)
	}
	return nil
}

func (s *depositionService) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Deposition, error) {
	return s.depositionRepo.GetByID(ctx, tx, id)
}

func (s *depositionService) GetByIGSN(ctx context.Context, tx *gorm.DB, igsnID string) (*types.Deposition, error) {
	return s.depositionRepo.GetByIGSN(ctx, tx, igsnID)
}

// List filters to what the caller may see; the predicate runs inside the
// query so pagination windows never waste slots on hidden rows.
func (s *depositionService) List(ctx context.Context, tx *gorm.DB, filter repos.DepositionFilter, user *types.User, level int) ([]*types.Deposition, error) {
	filter.Requester = user
	filter.MinLevel = level
	return s.depositionRepo.List(ctx, tx, filter)
}

func (s *depositionService) UpdateMetadata(ctx context.Context, tx *gorm.DB, id uuid.UUID, metadata map[string]interface{}) (*types.Deposition, error) {
	deposition, err := s.depositionRepo.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	deposition.Metadata = datatypes.JSONMap(metadata)
	deposition.UpdatedAt = time.Now()
	return s.depositionRepo.Update(ctx, tx, deposition)
}

// SetAccess applies acl to the deposition and, when recurse is set, to
// every descendant in its subtree.
func (s *depositionService) SetAccess(ctx context.Context, tx *gorm.DB, id uuid.UUID, acl types.AccessList, recurse bool, setPublic *bool, publicFlags datatypes.JSON) error {
	encoded := types.EncodeAccess(acl)
	if err := s.depositionRepo.UpdateAccess(ctx, tx, id, encoded, setPublic, publicFlags); err != nil {
		return err
	}
	if !recurse {
		return nil
	}

	pending := []uuid.UUID{id}
	for len(pending) > 0 {
		current := pending[0]
		pending = pending[1:]

		children, err := s.depositionRepo.GetChildren(ctx, tx, current)
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := s.depositionRepo.UpdateAccess(ctx, tx, child.ID, encoded, setPublic, publicFlags); err != nil {
				return err
			}
			pending = append(pending, child.ID)
		}
	}
	return nil
}

// DisplayName renders "IGSN (local id) - title" for search results.
func (s *depositionService) DisplayName(deposition *types.Deposition) string {
	tag := deposition.IGSN
	if local := localIdentifier(deposition.Metadata); local != "" {
		tag = fmt.Sprintf("%s (%s)", deposition.IGSN, local)
	}
	title := metadataTitle(deposition.Metadata)
	if title == "" {
		return tag
	}
	return fmt.Sprintf("%s - %s", tag, title)
}

func batchBaseMetadata(master *types.Deposition) (map[string]interface{}, string) {
	metadata := cloneMetadata(master.Metadata)
	title := metadataTitle(metadata)
	delete(metadata, "titles")
	metadata["relatedIdentifiers"] = appendToList(metadata["relatedIdentifiers"], map[string]interface{}{
		"relationType":          "IsPartOf",
		"relatedIdentifier":     master.IGSN,
		"relatedIdentifierType": "IGSN",
	})
	return metadata, title
}

func metadataTitle(metadata map[string]interface{}) string {
	titles := igsn.AsSlice(metadata["titles"])
	if len(titles) == 0 {
		return ""
	}
	return igsn.AsString(igsn.AsMap(titles[0])["title"])
}

func localIdentifier(metadata map[string]interface{}) string {
	for _, raw := range igsn.AsSlice(metadata["alternateIdentifiers"]) {
		alt := igsn.AsMap(raw)
		if alt == nil {
			continue
		}
		if igsn.AsString(alt["alternateIdentifierType"]) == "Local" {
			return igsn.AsString(alt["alternateIdentifier"])
		}
	}
	return ""
}

// cloneMetadata deep-copies a metadata document through JSON so children
// never alias the master's containers.
func cloneMetadata(metadata map[string]interface{}) map[string]interface{} {
	if metadata == nil {
		return map[string]interface{}{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return map[string]interface{}{}
	}
	clone := map[string]interface{}{}
	if err := json.Unmarshal(raw, &clone); err != nil {
		return map[string]interface{}{}
	}
	return clone
}

func appendToList(list interface{}, item map[string]interface{}) []interface{} {
	return append(igsn.AsSlice(list), item)
}
