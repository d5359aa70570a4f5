package reports

import (
	"time"

	"github.com/danverhoeven/adledger-backend/pkg/db/models"
	"github.com/danverhoeven/adledger-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// DerivedEntry is an Entry augmented with computed profit and ROI. It is
// recomputed on every read and never persisted.
type DerivedEntry struct {
	Entry   models.Entry
	Revenue decimal.Decimal
	Profit  decimal.Decimal
	ROIPct  *float64
}

// EffectiveRevenue resolves the amount an entry earned. The revenue column
// supersedes the legacy earnings column when both are set.
func EffectiveRevenue(entry models.Entry) decimal.Decimal {
	if entry.Revenue != nil {
		return *entry.Revenue
	}
	if entry.Earnings != nil {
		return *entry.Earnings
	}
	return decimal.Zero
}

// Derive computes profit and ROI for a single entry.
//
// A persisted profit value is authoritative: operators may pin a corrected
// profit that diverges from revenue minus spend, and derivation must not
// overwrite it. ROI is nil when spend is zero.
func Derive(entry models.Entry) DerivedEntry {
	revenue := EffectiveRevenue(entry)

	profit := revenue.Sub(entry.Spend)
	if entry.Profit != nil {
		profit = *entry.Profit
	}

	var roiPct *float64
	if entry.Spend.IsPositive() {
		roi, _ := profit.Div(entry.Spend).Mul(decimal.NewFromInt(100)).Float64()
		roiPct = &roi
	}

	return DerivedEntry{
		Entry:   entry,
		Revenue: revenue,
		Profit:  profit,
		ROIPct:  roiPct,
	}
}

// DeriveAll derives every entry in the slice, preserving order.
func DeriveAll(entries []models.Entry) []DerivedEntry {
	derived := make([]DerivedEntry, 0, len(entries))
	for _, entry := range entries {
		derived = append(derived, Derive(entry))
	}
	return derived
}

// FilterByDateRange keeps entries whose business date falls inside the range,
// inclusive on both ends.
func FilterByDateRange(entries []models.Entry, start, end time.Time) []models.Entry {
	filtered := make([]models.Entry, 0, len(entries))
	for _, entry := range entries {
		date := ToCalendarDate(entry.EntryDate)
		if date.Before(start) || date.After(end) {
			continue
		}
		filtered = append(filtered, entry)
	}
	return filtered
}

// FilterByStatus drops archived entries unless includeArchived is set.
func FilterByStatus(entries []models.Entry, includeArchived bool) []models.Entry {
	if includeArchived {
		return entries
	}
	filtered := make([]models.Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.Status != enums.EntryStatusActive {
			continue
		}
		filtered = append(filtered, entry)
	}
	return filtered
}
