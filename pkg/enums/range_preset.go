package enums

import "fmt"

// RangePreset names a shorthand date window for dashboard queries.
type RangePreset string

const (
	RangePreset7D     RangePreset = "7d"
	RangePreset30D    RangePreset = "30d"
	RangePreset90D    RangePreset = "90d"
	RangePresetMTD    RangePreset = "mtd"
	RangePresetQTD    RangePreset = "qtd"
	RangePresetYTD    RangePreset = "ytd"
	RangePresetCustom RangePreset = "custom"
)

var validRangePresets = []RangePreset{
	RangePreset7D,
	RangePreset30D,
	RangePreset90D,
	RangePresetMTD,
	RangePresetQTD,
	RangePresetYTD,
	RangePresetCustom,
}

func (p RangePreset) String() string {
	return string(p)
}

func (p RangePreset) IsValid() bool {
	for _, candidate := range validRangePresets {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseRangePreset converts a raw string into a RangePreset, defaulting to 30d when empty.
func ParseRangePreset(value string) (RangePreset, error) {
	if value == "" {
		return RangePreset30D, nil
	}
	for _, candidate := range validRangePresets {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid range preset %q", value)
}
