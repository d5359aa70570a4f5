package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/danverhoeven/adledger-backend/pkg/db/models"
	"github.com/danverhoeven/adledger-backend/pkg/enums"
	"github.com/danverhoeven/adledger-backend/pkg/metrics"
	"github.com/google/uuid"
)

// Query selects the window and shape of a report. A nil IncludeArchived
// means the caller expressed no choice and the saved default applies.
type Query struct {
	Preset          enums.RangePreset
	CustomStart     *time.Time
	CustomEnd       *time.Time
	Granularity     enums.Granularity
	IncludeArchived *bool
}

// SummaryReport carries scalar totals for the resolved window.
type SummaryReport struct {
	Range  DateRange     `json:"range"`
	Totals SummaryTotals `json:"totals"`
}

// ChartReport carries chronological buckets for the resolved window.
type ChartReport struct {
	Range       DateRange         `json:"range"`
	Granularity enums.Granularity `json:"granularity"`
	Buckets     []Bucket          `json:"buckets"`
}

// ExportFile is a generated spreadsheet ready to stream to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// EntrySource fetches a user's entries overlapping a date range. Entries come
// back already validated at the storage boundary; the pipeline does not
// re-check them.
type EntrySource interface {
	ListForRange(ctx context.Context, userID uuid.UUID, rng DateRange) ([]models.Entry, error)
}

// Defaults are the saved report preferences applied to whatever a query
// leaves unspecified.
type Defaults struct {
	RangePreset     enums.RangePreset
	Granularity     enums.Granularity
	IncludeArchived bool
}

// PreferenceSource resolves a user's saved report defaults.
type PreferenceSource interface {
	ReportDefaults(ctx context.Context, userID uuid.UUID) (Defaults, error)
}

// Service computes dashboard reports over stored entries.
type Service interface {
	Summary(ctx context.Context, userID uuid.UUID, query Query) (*SummaryReport, error)
	Chart(ctx context.Context, userID uuid.UUID, query Query) (*ChartReport, error)
	Export(ctx context.Context, userID uuid.UUID, query Query) (*ExportFile, error)
}

type service struct {
	entries     EntrySource
	preferences PreferenceSource
	metrics     *metrics.Metrics
	clock       func() time.Time
}

// Option tweaks service construction.
type Option func(*service)

// WithClock overrides the time source, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService wires a report service. The preference source and metrics may be
// nil; defaults then apply.
func NewService(entries EntrySource, preferences PreferenceSource, m *metrics.Metrics, opts ...Option) (Service, error) {
	if entries == nil {
		return nil, fmt.Errorf("entry source required")
	}
	svc := &service{
		entries:     entries,
		preferences: preferences,
		metrics:     m,
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *service) Summary(ctx context.Context, userID uuid.UUID, query Query) (*SummaryReport, error) {
	derived, rng, err := s.load(ctx, userID, &query)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveReport("summary", "", len(derived))
	return &SummaryReport{Range: rng, Totals: Summarize(derived)}, nil
}

func (s *service) Chart(ctx context.Context, userID uuid.UUID, query Query) (*ChartReport, error) {
	derived, rng, err := s.load(ctx, userID, &query)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveReport("chart", query.Granularity.String(), len(derived))
	return &ChartReport{
		Range:       rng,
		Granularity: query.Granularity,
		Buckets:     BucketBy(derived, query.Granularity),
	}, nil
}

func (s *service) Export(ctx context.Context, userID uuid.UUID, query Query) (*ExportFile, error) {
	derived, rng, err := s.load(ctx, userID, &query)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveReport("export", query.Granularity.String(), len(derived))
	return buildWorkbook(rng, derived, BucketBy(derived, query.Granularity), Summarize(derived))
}

// load resolves defaults and the date window, fetches the user's entries and
// runs the filter and derivation steps shared by every report shape. It
// mutates query in place so callers see the defaults that were applied.
func (s *service) load(ctx context.Context, userID uuid.UUID, query *Query) ([]DerivedEntry, DateRange, error) {
	if userID == uuid.Nil {
		return nil, DateRange{}, fmt.Errorf("user id is required")
	}

	s.applyDefaults(ctx, userID, query)

	var custom *DateRange
	if query.CustomStart != nil && query.CustomEnd != nil {
		custom = &DateRange{Start: *query.CustomStart, End: *query.CustomEnd}
	} else if query.CustomStart != nil || query.CustomEnd != nil {
		custom = &DateRange{}
		if query.CustomStart != nil {
			custom.Start = *query.CustomStart
		}
		if query.CustomEnd != nil {
			custom.End = *query.CustomEnd
		}
	}

	rng, err := ResolvePresetRange(query.Preset, s.clock(), custom)
	if err != nil {
		return nil, DateRange{}, err
	}

	entries, err := s.entries.ListForRange(ctx, userID, rng)
	if err != nil {
		return nil, DateRange{}, err
	}

	entries = FilterByDateRange(entries, rng.Start, rng.End)
	entries = FilterByStatus(entries, query.IncludeArchived != nil && *query.IncludeArchived)
	return DeriveAll(entries), rng, nil
}

func (s *service) applyDefaults(ctx context.Context, userID uuid.UUID, query *Query) {
	if query.Preset != "" && query.Granularity != "" && query.IncludeArchived != nil {
		return
	}
	var defaults Defaults
	if s.preferences != nil {
		if d, err := s.preferences.ReportDefaults(ctx, userID); err == nil {
			defaults = d
		}
	}
	if query.Preset == "" {
		query.Preset = defaults.RangePreset
		if query.Preset == "" {
			query.Preset = enums.RangePreset30D
		}
	}
	if query.Granularity == "" {
		query.Granularity = defaults.Granularity
		if query.Granularity == "" {
			query.Granularity = enums.GranularityDay
		}
	}
	if query.IncludeArchived == nil {
		archived := defaults.IncludeArchived
		query.IncludeArchived = &archived
	}
}
