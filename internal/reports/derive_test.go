package reports

import (
	"testing"
	"time"

	"github.com/danverhoeven/adledger-backend/pkg/db/models"
	"github.com/danverhoeven/adledger-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func decPtr(value string) *decimal.Decimal {
	d := dec(value)
	return &d
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestDeriveZeroSpendYieldsNilROI(t *testing.T) {
	derived := Derive(models.Entry{
		Spend:   decimal.Zero,
		Revenue: decPtr("50"),
	})
	if derived.ROIPct != nil {
		t.Fatalf("expected nil ROI for zero spend, got %v", *derived.ROIPct)
	}
	if !derived.Profit.Equal(dec("50")) {
		t.Fatalf("expected profit 50, got %s", derived.Profit)
	}
}

func TestDerivePinnedProfitWins(t *testing.T) {
	derived := Derive(models.Entry{
		Spend:   dec("100"),
		Revenue: decPtr("150"),
		Profit:  decPtr("999"),
	})
	if !derived.Profit.Equal(dec("999")) {
		t.Fatalf("expected pinned profit 999, got %s", derived.Profit)
	}
	if derived.ROIPct == nil || *derived.ROIPct != 999 {
		t.Fatalf("expected ROI computed from pinned profit, got %v", derived.ROIPct)
	}
}

func TestDeriveRevenueSupersedesEarnings(t *testing.T) {
	derived := Derive(models.Entry{
		Spend:    dec("10"),
		Revenue:  decPtr("100"),
		Earnings: decPtr("50"),
	})
	if !derived.Revenue.Equal(dec("100")) {
		t.Fatalf("expected effective revenue 100, got %s", derived.Revenue)
	}
}

func TestDeriveFallsBackToEarningsThenZero(t *testing.T) {
	withEarnings := Derive(models.Entry{Spend: dec("10"), Earnings: decPtr("40")})
	if !withEarnings.Revenue.Equal(dec("40")) {
		t.Fatalf("expected earnings fallback 40, got %s", withEarnings.Revenue)
	}

	bare := Derive(models.Entry{Spend: dec("10")})
	if !bare.Revenue.IsZero() {
		t.Fatalf("expected zero effective revenue, got %s", bare.Revenue)
	}
	if !bare.Profit.Equal(dec("-10")) {
		t.Fatalf("expected profit -10, got %s", bare.Profit)
	}
	if bare.ROIPct == nil || *bare.ROIPct != -100 {
		t.Fatalf("expected ROI -100, got %v", bare.ROIPct)
	}
}

func TestDeriveIsIdempotent(t *testing.T) {
	entry := models.Entry{
		Spend:   dec("80"),
		Revenue: decPtr("120"),
	}
	first := Derive(entry)
	second := Derive(entry)
	if !first.Profit.Equal(second.Profit) {
		t.Fatalf("profit differs across derivations: %s vs %s", first.Profit, second.Profit)
	}
	if *first.ROIPct != *second.ROIPct {
		t.Fatalf("ROI differs across derivations: %f vs %f", *first.ROIPct, *second.ROIPct)
	}
}

func TestFilterByDateRangeInclusiveBounds(t *testing.T) {
	entries := []models.Entry{
		{EntryDate: date(2025, time.March, 1)},
		{EntryDate: date(2025, time.March, 10)},
		{EntryDate: date(2025, time.March, 31)},
		{EntryDate: date(2025, time.April, 1)},
	}
	got := FilterByDateRange(entries, date(2025, time.March, 1), date(2025, time.March, 31))
	if len(got) != 3 {
		t.Fatalf("expected 3 entries in range, got %d", len(got))
	}
	for _, entry := range got {
		if entry.EntryDate.Month() != time.March {
			t.Fatalf("unexpected entry date %s", entry.EntryDate)
		}
	}
}

func TestFilterByDateRangeNormalizesTimeOfDay(t *testing.T) {
	noisy := time.Date(2025, time.March, 31, 18, 45, 12, 0, time.UTC)
	entries := []models.Entry{{EntryDate: noisy}}
	got := FilterByDateRange(entries, date(2025, time.March, 1), date(2025, time.March, 31))
	if len(got) != 1 {
		t.Fatalf("expected entry with late timestamp to stay in range, got %d", len(got))
	}
}

func TestFilterByStatus(t *testing.T) {
	entries := []models.Entry{
		{Status: enums.EntryStatusActive},
		{Status: enums.EntryStatusArchived},
	}
	if got := FilterByStatus(entries, false); len(got) != 1 || got[0].Status != enums.EntryStatusActive {
		t.Fatalf("expected only active entries, got %v", got)
	}
	if got := FilterByStatus(entries, true); len(got) != 2 {
		t.Fatalf("expected all entries when archived included, got %d", len(got))
	}
}
