package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Deposition lifecycle states.
const (
	DepositionStateDraft     = "draft"
	DepositionStateSubmitted = "submitted"
)

type Deposition struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	IGSN        string            `gorm:"uniqueIndex;not null;column:igsn" json:"igsn"`
	CreatorID   uuid.UUID         `gorm:"type:uuid;not null;index;column:creator_id" json:"creator_id"`
	ParentID    *uuid.UUID        `gorm:"type:uuid;index;column:parent_id" json:"parent_id,omitempty"`
	Metadata    datatypes.JSONMap `gorm:"column:metadata;type:jsonb" json:"metadata"`
	State       string            `gorm:"not null;default:'draft';column:state" json:"state"`
	Submitted   bool              `gorm:"not null;default:false;column:submitted" json:"submitted"`
	Track       bool              `gorm:"not null;default:false;column:track" json:"track"`
	SampleID    *uuid.UUID        `gorm:"type:uuid;column:sample_id" json:"sample_id,omitempty"`
	Access      datatypes.JSON    `gorm:"column:access;type:jsonb" json:"access"`
	Public      bool              `gorm:"not null;default:false;column:public" json:"public"`
	PublicFlags datatypes.JSON    `gorm:"column:public_flags;type:jsonb" json:"public_flags,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:now()" json:"updated_at"`
}

func (Deposition) TableName() string { return "deposition" }

// AccessList decodes the deposition's stored ACL document.
func (d *Deposition) AccessList() AccessList {
	return DecodeAccess(d.Access)
}
