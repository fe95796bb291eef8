package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Sample is the physical-sample tracking record linked to a deposition when
// its track flag is set.
type Sample struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string         `gorm:"not null;index;column:name" json:"name"`
	Description string         `gorm:"column:description" json:"description"`
	CreatorID   uuid.UUID      `gorm:"type:uuid;not null;index;column:creator_id" json:"creator_id"`
	Access      datatypes.JSON `gorm:"column:access;type:jsonb" json:"access"`
	Events      datatypes.JSON `gorm:"column:events;type:jsonb" json:"events"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Sample) TableName() string { return "sample" }
