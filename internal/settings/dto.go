package settings

import (
	"time"

	"github.com/danverhoeven/adledger-backend/pkg/db/models"
	"github.com/danverhoeven/adledger-backend/pkg/enums"
)

// PreferenceView shapes saved preferences for API responses.
type PreferenceView struct {
	DefaultCurrency    string            `json:"default_currency"`
	DefaultRangePreset enums.RangePreset `json:"default_range_preset"`
	DefaultGranularity enums.Granularity `json:"default_granularity"`
	IncludeArchived    bool              `json:"include_archived"`
	Timezone           string            `json:"timezone"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// ViewOf projects a stored preference row into its API shape.
func ViewOf(pref *models.Preference) PreferenceView {
	return PreferenceView{
		DefaultCurrency:    pref.DefaultCurrency,
		DefaultRangePreset: pref.DefaultRangePreset,
		DefaultGranularity: pref.DefaultGranularity,
		IncludeArchived:    pref.IncludeArchived,
		Timezone:           pref.Timezone,
		UpdatedAt:          pref.UpdatedAt,
	}
}
