package repos

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/igsnforms-backend/internal/logger"
	"github.com/yungbote/igsnforms-backend/internal/types"
)

type DepositionFilter struct {
	IGSNPrefix string
	Query      string
	// Requester and MinLevel drive the access predicate. A nil Requester
	// is an anonymous caller; the zero MinLevel is read access.
	Requester *types.User
	MinLevel  int
	Limit     int
	Offset    int
}

type DepositionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, deposition *types.Deposition) (*types.Deposition, error)
	CreateBulk(ctx context.Context, tx *gorm.DB, depositions []*types.Deposition) ([]*types.Deposition, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Deposition, error)
	GetByIGSN(ctx context.Context, tx *gorm.DB, igsn string) (*types.Deposition, error)
	GetChildren(ctx context.Context, tx *gorm.DB, parentID uuid.UUID) ([]*types.Deposition, error)
	List(ctx context.Context, tx *gorm.DB, filter DepositionFilter) ([]*types.Deposition, error)
	Update(ctx context.Context, tx *gorm.DB, deposition *types.Deposition) (*types.Deposition, error)
	UpdateAccess(ctx context.Context, tx *gorm.DB, id uuid.UUID, access datatypes.JSON, setPublic *bool, publicFlags datatypes.JSON) error
	AddRelation(ctx context.Context, tx *gorm.DB, depositionID uuid.UUID, relation map[string]interface{}) error
	RemoveRelationsByTarget(ctx context.Context, tx *gorm.DB, relatedIdentifier string) (int64, error)
}

type depositionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDepositionRepo(db *gorm.DB, baseLog *logger.Logger) DepositionRepo {
	repoLog := baseLog.With("repo", "DepositionRepo")
	return &depositionRepo{db: db, log: repoLog}
}

func (dr *depositionRepo) Create(ctx context.Context, tx *gorm.DB, deposition *types.Deposition) (*types.Deposition, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	if err := transaction.WithContext(ctx).Create(deposition).Error; err != nil {
		return nil, err
	}
	return deposition, nil
}

// CreateBulk inserts all child records of a batch in a single write so the
// batch becomes visible to readers at once.
func (dr *depositionRepo) CreateBulk(ctx context.Context, tx *gorm.DB, depositions []*types.Deposition) ([]*types.Deposition, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	if len(depositions) == 0 {
		return []*types.Deposition{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&depositions).Error; err != nil {
		return nil, err
	}
	return depositions, nil
}

func (dr *depositionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Deposition, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var deposition types.Deposition
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&deposition).Error; err != nil {
		return nil, err
	}
	return &deposition, nil
}

func (dr *depositionRepo) GetByIGSN(ctx context.Context, tx *gorm.DB, igsn string) (*types.Deposition, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var deposition types.Deposition
	if err := transaction.WithContext(ctx).
		Where("igsn = ?", igsn).
		First(&deposition).Error; err != nil {
		return nil, err
	}
	return &deposition, nil
}

func (dr *depositionRepo) GetChildren(ctx context.Context, tx *gorm.DB, parentID uuid.UUID) ([]*types.Deposition, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var children []*types.Deposition
	if err := transaction.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("igsn ASC").
		Find(&children).Error; err != nil {
		return nil, err
	}
	return children, nil
}

func (dr *depositionRepo) List(ctx context.Context, tx *gorm.DB, filter DepositionFilter) ([]*types.Deposition, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	query := transaction.WithContext(ctx).Model(&types.Deposition{})
	if filter.IGSNPrefix != "" {
		query = query.Where("igsn LIKE ?", filter.IGSNPrefix+"%")
	}
	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		query = query.Where(`
			igsn ILIKE ?
			OR EXISTS (
				SELECT 1 FROM jsonb_array_elements(COALESCE(metadata->'titles', '[]'::jsonb)) t
				WHERE t->>'title' ILIKE ?
			)
			OR EXISTS (
				SELECT 1 FROM jsonb_array_elements(COALESCE(metadata->'descriptions', '[]'::jsonb)) d
				WHERE d->>'description' ILIKE ?
			)
			OR EXISTS (
				SELECT 1 FROM jsonb_array_elements(COALESCE(metadata->'alternateIdentifiers', '[]'::jsonb)) a
				WHERE a->>'alternateIdentifier' ILIKE ?
			)`,
			pattern, pattern, pattern, pattern)
	}
	// The access predicate runs in SQL so LIMIT/OFFSET windows only ever
	// hold rows the caller may see.
	if filter.Requester == nil || !filter.Requester.Admin {
		grantClause := `EXISTS (
			SELECT 1 FROM jsonb_array_elements(COALESCE(access->'users', '[]'::jsonb)) u
			WHERE u->>'user_id' = ? AND (u->>'level')::int >= ?
		)`
		includePublic := filter.MinLevel <= types.AccessRead
		switch {
		case filter.Requester == nil && includePublic:
			query = query.Where("public = true")
		case filter.Requester == nil:
			query = query.Where("1 = 0")
		case includePublic:
			query = query.Where("public = true OR "+grantClause,
				filter.Requester.ID.String(), filter.MinLevel)
		default:
			query = query.Where(grantClause, filter.Requester.ID.String(), filter.MinLevel)
		}
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var depositions []*types.Deposition
	if err := query.Order("igsn ASC").Find(&depositions).Error; err != nil {
		return nil, err
	}
	return depositions, nil
}

func (dr *depositionRepo) Update(ctx context.Context, tx *gorm.DB, deposition *types.Deposition) (*types.Deposition, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	if err := transaction.WithContext(ctx).Save(deposition).Error; err != nil {
		return nil, err
	}
	return deposition, nil
}

func (dr *depositionRepo) UpdateAccess(ctx context.Context, tx *gorm.DB, id uuid.UUID, access datatypes.JSON, setPublic *bool, publicFlags datatypes.JSON) error {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	updates := map[string]interface{}{"access": access}
	if setPublic != nil {
		updates["public"] = *setPublic
	}
	if publicFlags != nil {
		updates["public_flags"] = publicFlags
	}
	return transaction.WithContext(ctx).
		Model(&types.Deposition{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// AddRelation appends relation to the relatedIdentifiers of the deposition
// and all of its direct children. The containment guard gives the append set
// semantics: re-linking the same relation is a no-op.
func (dr *depositionRepo) AddRelation(ctx context.Context, tx *gorm.DB, depositionID uuid.UUID, relation map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	raw, err := json.Marshal(relation)
	if err != nil {
		return fmt.Errorf("marshal relation: %w", err)
	}
	wrapped := "[" + string(raw) + "]"

	return transaction.WithContext(ctx).Exec(`
		UPDATE deposition
		SET metadata = jsonb_set(
			COALESCE(metadata, '{}'::jsonb),
			'{relatedIdentifiers}',
			COALESCE(metadata->'relatedIdentifiers', '[]'::jsonb) || ?::jsonb
		),
		updated_at = now()
		WHERE (id = ? OR parent_id = ?)
		AND NOT COALESCE(metadata->'relatedIdentifiers', '[]'::jsonb) @> ?::jsonb`,
		string(raw), depositionID, depositionID, wrapped,
	).Error
}

// RemoveRelationsByTarget sweeps every deposition, dropping relatedIdentifier
// entries whose target ends with relatedIdentifier. Used when a linked entry
// is deleted; the entry may have been linked to any deposition, so the sweep
// is not scoped.
func (dr *depositionRepo) RemoveRelationsByTarget(ctx context.Context, tx *gorm.DB, relatedIdentifier string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	pattern := "%" + relatedIdentifier

	result := transaction.WithContext(ctx).Exec(`
		UPDATE deposition
		SET metadata = jsonb_set(
			metadata,
			'{relatedIdentifiers}',
			COALESCE((
				SELECT jsonb_agg(rel)
				FROM jsonb_array_elements(metadata->'relatedIdentifiers') rel
				WHERE rel->>'relatedIdentifier' NOT LIKE ?
			), '[]'::jsonb)
		),
		updated_at = now()
		WHERE EXISTS (
			SELECT 1
			FROM jsonb_array_elements(COALESCE(metadata->'relatedIdentifiers', '[]'::jsonb)) rel
			WHERE rel->>'relatedIdentifier' LIKE ?
		)`,
		pattern, pattern,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
