package reports

import (
	"sort"
	"time"

	"github.com/danverhoeven/adledger-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

const (
	dayLabelFormat   = "Jan 2, 2006"
	weekStartFormat  = "Jan 2"
	monthLabelFormat = "Jan 2006"
)

// Bucket aggregates every derived entry sharing one time period.
type Bucket struct {
	Key      string          `json:"key"`
	Start    time.Time       `json:"start"`
	Spend    decimal.Decimal `json:"spend"`
	Earnings decimal.Decimal `json:"earnings"`
	Profit   decimal.Decimal `json:"profit"`
	ROI      float64         `json:"roi"`
	Count    int             `json:"count"`
}

// SummaryTotals holds scalar totals over a filtered set of derived entries.
type SummaryTotals struct {
	Count    int             `json:"count"`
	Spend    decimal.Decimal `json:"spend"`
	Earnings decimal.Decimal `json:"earnings"`
	Profit   decimal.Decimal `json:"profit"`
	AvgROI   *float64        `json:"avg_roi"`
}

type accumulator struct {
	start    time.Time
	spend    decimal.Decimal
	earnings decimal.Decimal
	count    int
}

// periodFor computes the label and period start for one entry under the given
// granularity.
//
// Weekly periods are 7-day windows anchored at each entry's own date, not ISO
// calendar weeks. Entries three days apart land in distinct windows even when
// an ISO calendar would share them. Dashboards have always rendered weeks this
// way, so the windowing is part of the report contract.
func periodFor(date time.Time, granularity enums.Granularity) (string, time.Time) {
	day := ToCalendarDate(date)
	switch granularity {
	case enums.GranularityWeek:
		end := day.AddDate(0, 0, 6)
		return day.Format(weekStartFormat) + " - " + end.Format(dayLabelFormat), day
	case enums.GranularityMonth:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return day.Format(monthLabelFormat), start
	default:
		return day.Format(dayLabelFormat), day
	}
}

// BucketBy groups derived entries into chart buckets and sorts them ascending
// by period start. Sorting is part of the contract: chart rendering assumes
// chronological buckets regardless of accumulation order.
func BucketBy(entries []DerivedEntry, granularity enums.Granularity) []Bucket {
	if !granularity.IsValid() {
		granularity = enums.GranularityDay
	}

	acc := make(map[string]*accumulator)
	for _, derived := range entries {
		key, start := periodFor(derived.Entry.EntryDate, granularity)
		current, ok := acc[key]
		if !ok {
			current = &accumulator{start: start}
			acc[key] = current
		}
		// Identical labels can surface differing computed starts around date
		// edge cases. Keep the earliest so ordering stays stable.
		if start.Before(current.start) {
			current.start = start
		}
		current.spend = current.spend.Add(derived.Entry.Spend)
		current.earnings = current.earnings.Add(derived.Revenue)
		current.count++
	}

	buckets := make([]Bucket, 0, len(acc))
	for key, current := range acc {
		profit := current.earnings.Sub(current.spend)
		roi := 0.0
		if current.spend.IsPositive() {
			roi, _ = profit.Div(current.spend).Mul(decimal.NewFromInt(100)).Float64()
		}
		buckets = append(buckets, Bucket{
			Key:      key,
			Start:    current.start,
			Spend:    current.spend,
			Earnings: current.earnings,
			Profit:   profit,
			ROI:      roi,
			Count:    current.count,
		})
	}

	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Start.Before(buckets[j].Start)
	})
	return buckets
}

// Summarize totals a set of derived entries. AvgROI averages per-entry ROI
// over entries with positive spend only; zero-spend entries are excluded from
// the mean, not counted as zero. With no qualifying entries AvgROI is nil.
func Summarize(entries []DerivedEntry) SummaryTotals {
	totals := SummaryTotals{Count: len(entries)}

	var roiSum float64
	var roiCount int
	for _, derived := range entries {
		totals.Spend = totals.Spend.Add(derived.Entry.Spend)
		totals.Earnings = totals.Earnings.Add(derived.Revenue)
		if derived.Entry.Spend.IsPositive() && derived.ROIPct != nil {
			roiSum += *derived.ROIPct
			roiCount++
		}
	}
	totals.Profit = totals.Earnings.Sub(totals.Spend)
	if roiCount > 0 {
		avg := roiSum / float64(roiCount)
		totals.AvgROI = &avg
	}
	return totals
}
