package reports

import (
	"testing"
	"time"

	"github.com/danverhoeven/adledger-backend/pkg/enums"
	"github.com/danverhoeven/adledger-backend/pkg/errors"
)

func TestToCalendarDateNormalizesToMidnightUTC(t *testing.T) {
	noisy := time.Date(2025, time.March, 15, 22, 13, 45, 123456, time.FixedZone("X", 3600))
	got := ToCalendarDate(noisy)
	want := time.Date(2025, time.March, 15, 21, 0, 0, 0, time.UTC)
	// 22:13 at UTC+1 is 21:13 UTC, so the calendar day is still the 15th.
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 || got.Nanosecond() != 0 {
		t.Fatalf("expected midnight, got %s", got)
	}
	if got.Day() != want.Day() || got.Month() != want.Month() {
		t.Fatalf("expected Mar 15, got %s", got)
	}
}

func TestResolvePresetRangeMTD(t *testing.T) {
	now := time.Date(2025, time.March, 15, 14, 30, 0, 0, time.UTC)
	rng, err := ResolvePresetRange(enums.RangePresetMTD, now, nil)
	if err != nil {
		t.Fatalf("resolve mtd: %v", err)
	}
	wantStart := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, time.March, 15, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	if !rng.Start.Equal(wantStart) {
		t.Fatalf("expected start %s, got %s", wantStart, rng.Start)
	}
	if !rng.End.Equal(wantEnd) {
		t.Fatalf("expected end %s, got %s", wantEnd, rng.End)
	}
}

func TestResolvePresetRangeRollingWindows(t *testing.T) {
	now := time.Date(2025, time.March, 15, 14, 30, 0, 0, time.UTC)
	cases := []struct {
		preset    enums.RangePreset
		wantStart time.Time
	}{
		{enums.RangePreset7D, time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC)},
		{enums.RangePreset30D, time.Date(2025, time.February, 13, 0, 0, 0, 0, time.UTC)},
		{enums.RangePreset90D, time.Date(2024, time.December, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		rng, err := ResolvePresetRange(tc.preset, now, nil)
		if err != nil {
			t.Fatalf("resolve %s: %v", tc.preset, err)
		}
		if !rng.Start.Equal(tc.wantStart) {
			t.Fatalf("%s: expected start %s, got %s", tc.preset, tc.wantStart, rng.Start)
		}
	}
}

func TestResolvePresetRangeQTDAndYTD(t *testing.T) {
	now := time.Date(2025, time.May, 20, 9, 0, 0, 0, time.UTC)

	qtd, err := ResolvePresetRange(enums.RangePresetQTD, now, nil)
	if err != nil {
		t.Fatalf("resolve qtd: %v", err)
	}
	if !qtd.Start.Equal(time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected quarter start Apr 1, got %s", qtd.Start)
	}

	ytd, err := ResolvePresetRange(enums.RangePresetYTD, now, nil)
	if err != nil {
		t.Fatalf("resolve ytd: %v", err)
	}
	if !ytd.Start.Equal(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected year start Jan 1, got %s", ytd.Start)
	}
}

func TestResolvePresetRangeCustom(t *testing.T) {
	now := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	custom := &DateRange{
		Start: time.Date(2025, time.January, 10, 11, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.January, 20, 4, 0, 0, 0, time.UTC),
	}
	rng, err := ResolvePresetRange(enums.RangePresetCustom, now, custom)
	if err != nil {
		t.Fatalf("resolve custom: %v", err)
	}
	if rng.Start.Hour() != 0 {
		t.Fatalf("expected custom start normalized to midnight, got %s", rng.Start)
	}
	if rng.End.Hour() != 23 || rng.End.Second() != 59 {
		t.Fatalf("expected custom end normalized to end of day, got %s", rng.End)
	}
}

func TestResolvePresetRangeCustomMissingBounds(t *testing.T) {
	now := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	cases := []*DateRange{
		nil,
		{Start: now},
		{End: now},
	}
	for i, custom := range cases {
		_, err := ResolvePresetRange(enums.RangePresetCustom, now, custom)
		if err == nil {
			t.Fatalf("case %d: expected error for missing custom bounds", i)
		}
		if typed := errors.As(err); typed == nil || typed.Code() != errors.CodeValidation {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestResolvePresetRangeRejectsInvertedCustom(t *testing.T) {
	now := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	custom := &DateRange{
		Start: time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
	if _, err := ResolvePresetRange(enums.RangePresetCustom, now, custom); err == nil {
		t.Fatal("expected error for inverted range")
	}
}

func TestResolvePresetRangeUnknownPreset(t *testing.T) {
	_, err := ResolvePresetRange(enums.RangePreset("fortnight"), time.Now(), nil)
	if err == nil {
		t.Fatal("expected error for unknown preset")
	}
}
