package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type FormEntry struct {
	ID        uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FormID    uuid.UUID         `gorm:"type:uuid;not null;index;column:form_id" json:"form_id"`
	Form      *Form             `gorm:"constraint:OnDelete:CASCADE;foreignKey:FormID;references:ID" json:"form,omitempty"`
	Data      datatypes.JSONMap `gorm:"column:data;type:jsonb" json:"data"`
	UniqueID  string            `gorm:"index;column:unique_id" json:"unique_id"`
	CreatorID uuid.UUID         `gorm:"type:uuid;not null;index;column:creator_id" json:"creator_id"`
	CreatedAt time.Time         `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:now()" json:"updated_at"`
}

func (FormEntry) TableName() string { return "entry" }
