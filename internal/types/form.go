package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Form struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name          string         `gorm:"not null;column:name" json:"name"`
	Description   string         `gorm:"column:description" json:"description"`
	Schema        datatypes.JSON `gorm:"column:schema;type:jsonb" json:"schema"`
	UniqueField   string         `gorm:"column:unique_field" json:"unique_field"`
	EntryFileName string         `gorm:"column:entry_file_name" json:"entry_file_name"`
	PathTemplate  string         `gorm:"column:path_template" json:"path_template"`
	DriveFolderID string         `gorm:"column:drive_folder_id" json:"drive_folder_id"`
	CreatorID     uuid.UUID      `gorm:"type:uuid;not null;index;column:creator_id" json:"creator_id"`
	CreatedAt     time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Form) TableName() string { return "form" }
