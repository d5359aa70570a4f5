package enums

import "fmt"

// Granularity selects the time bucket size for chart aggregation.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

var validGranularities = []Granularity{
	GranularityDay,
	GranularityWeek,
	GranularityMonth,
}

func (g Granularity) String() string {
	return string(g)
}

func (g Granularity) IsValid() bool {
	for _, candidate := range validGranularities {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGranularity converts a raw string into a Granularity, defaulting to day when empty.
func ParseGranularity(value string) (Granularity, error) {
	if value == "" {
		return GranularityDay, nil
	}
	for _, candidate := range validGranularities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid granularity %q", value)
}
