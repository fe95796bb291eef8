package types

import (
	"time"

	"gorm.io/datatypes"
)

// Setting keys for the IGSN vocabularies and metadata boilerplate.
const (
	SettingIGSNInstitutions = "igsn.institutions"
	SettingIGSNMaterials    = "igsn.materials"
	SettingIGSNPublisher    = "igsn.publisher"
	SettingIGSNClientID     = "igsn.client_id"
	SettingIGSNProviderID   = "igsn.provider_id"
)

type Setting struct {
	Key       string         `gorm:"primaryKey;column:key" json:"key"`
	Value     datatypes.JSON `gorm:"column:value;type:jsonb" json:"value"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Setting) TableName() string { return "setting" }
