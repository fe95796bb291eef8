package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Changeset is an append-only audit record of the JSON diff between an
// entry's previous and new data.
type Changeset struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EntryID   uuid.UUID      `gorm:"type:uuid;not null;index;column:entry_id" json:"entry_id"`
	CreatorID *uuid.UUID     `gorm:"type:uuid;column:creator_id" json:"creator_id,omitempty"`
	Diff      datatypes.JSON `gorm:"column:diff;type:jsonb" json:"diff"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (Changeset) TableName() string { return "changeset" }
