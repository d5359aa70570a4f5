package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/danverhoeven/adledger-backend/pkg/enums"
)

// Preference captures per-user dashboard defaults.
type Preference struct {
	UserID             uuid.UUID         `gorm:"column:user_id;type:uuid;primaryKey"`
	DefaultCurrency    string            `gorm:"column:default_currency;type:char(3);not null;default:'USD'"`
	DefaultRangePreset enums.RangePreset `gorm:"column:default_range_preset;type:range_preset;not null;default:'30d'"`
	DefaultGranularity enums.Granularity `gorm:"column:default_granularity;type:granularity;not null;default:'day'"`
	IncludeArchived    bool              `gorm:"column:include_archived;not null;default:false"`
	Timezone           string            `gorm:"column:timezone;not null;default:'UTC'"`
	UpdatedAt          time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
