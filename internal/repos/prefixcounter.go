package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/igsnforms-backend/internal/logger"
	"github.com/yungbote/igsnforms-backend/internal/types"
)

type PrefixCounterRepo interface {
	// Increment bumps the counter for prefix by one and returns the
	// post-increment sequence. The row is created lazily at seq=0; both the
	// creation and the bump are race-safe against concurrent callers.
	Increment(ctx context.Context, tx *gorm.DB, prefix string) (int64, error)
	GetByPrefix(ctx context.Context, tx *gorm.DB, prefix string) (*types.PrefixCounter, error)
}

type prefixCounterRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPrefixCounterRepo(db *gorm.DB, baseLog *logger.Logger) PrefixCounterRepo {
	repoLog := baseLog.With("repo", "PrefixCounterRepo")
	return &prefixCounterRepo{db: db, log: repoLog}
}

func (pr *prefixCounterRepo) Increment(ctx context.Context, tx *gorm.DB, prefix string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	// Find-or-create must tolerate a concurrent duplicate attempt collapsing
	// to a single row.
	if err := transaction.WithContext(ctx).Exec(
		`INSERT INTO prefix_counter (prefix, seq) VALUES (?, 0) ON CONFLICT (prefix) DO NOTHING`,
		prefix,
	).Error; err != nil {
		return 0, err
	}

	// Increment and read back in one statement; a separate read would open a
	// window where two callers observe the same sequence.
	var seq int64
	if err := transaction.WithContext(ctx).Raw(
		`UPDATE prefix_counter SET seq = seq + 1 WHERE prefix = ? RETURNING seq`,
		prefix,
	).Scan(&seq).Error; err != nil {
		return 0, err
	}
	return seq, nil
}

func (pr *prefixCounterRepo) GetByPrefix(ctx context.Context, tx *gorm.DB, prefix string) (*types.PrefixCounter, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var counter types.PrefixCounter
	if err := transaction.WithContext(ctx).
		Where("prefix = ?", prefix).
		First(&counter).Error; err != nil {
		return nil, err
	}
	return &counter, nil
}
