package reports

import (
	"time"

	"github.com/danverhoeven/adledger-backend/pkg/enums"
	"github.com/danverhoeven/adledger-backend/pkg/errors"
)

// DateRange bounds a report query. Start and End are inclusive.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ToCalendarDate normalizes any timestamp to midnight UTC of its calendar
// day. Every aggregation step compares dates through this one conversion so
// time-of-day noise in stored values never splits a day.
func ToCalendarDate(value time.Time) time.Time {
	v := value.UTC()
	return time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
}

func startOfDay(value time.Time) time.Time {
	return ToCalendarDate(value)
}

func endOfDay(value time.Time) time.Time {
	v := value.UTC()
	return time.Date(v.Year(), v.Month(), v.Day(), 23, 59, 59, int(999*time.Millisecond), time.UTC)
}

// ResolvePresetRange turns a named preset into concrete bounds relative to
// now. The custom preset requires both bounds from the caller; a missing
// bound is rejected rather than silently defaulted, since a guessed window
// would render a report that looks right and is not.
func ResolvePresetRange(preset enums.RangePreset, now time.Time, custom *DateRange) (DateRange, error) {
	if !preset.IsValid() {
		return DateRange{}, errors.New(errors.CodeValidation, "unknown range preset").WithDetails(string(preset))
	}

	now = now.UTC()
	end := now

	var start time.Time
	switch preset {
	case enums.RangePreset7D:
		start = now.AddDate(0, 0, -7)
	case enums.RangePreset30D:
		start = now.AddDate(0, 0, -30)
	case enums.RangePreset90D:
		start = now.AddDate(0, 0, -90)
	case enums.RangePresetMTD:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	case enums.RangePresetQTD:
		quarterStart := time.Month((int(now.Month())-1)/3*3 + 1)
		start = time.Date(now.Year(), quarterStart, 1, 0, 0, 0, 0, time.UTC)
	case enums.RangePresetYTD:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	case enums.RangePresetCustom:
		if custom == nil || custom.Start.IsZero() || custom.End.IsZero() {
			return DateRange{}, errors.New(errors.CodeValidation, "custom range requires both start and end dates")
		}
		start = custom.Start
		end = custom.End
	}

	resolved := DateRange{Start: startOfDay(start), End: endOfDay(end)}
	if resolved.End.Before(resolved.Start) {
		return DateRange{}, errors.New(errors.CodeValidation, "range end precedes range start")
	}
	return resolved, nil
}
