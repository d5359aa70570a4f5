package settings

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/danverhoeven/adledger-backend/internal/reports"
	"github.com/danverhoeven/adledger-backend/pkg/db/models"
	"github.com/danverhoeven/adledger-backend/pkg/enums"
	"github.com/danverhoeven/adledger-backend/pkg/errors"
	"github.com/danverhoeven/adledger-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UpdatePreferencesInput patches a user's saved defaults. Nil fields keep
// their current values.
type UpdatePreferencesInput struct {
	DefaultCurrency    *string            `json:"default_currency,omitempty" validate:"omitempty,len=3"`
	DefaultRangePreset *enums.RangePreset `json:"default_range_preset,omitempty"`
	DefaultGranularity *enums.Granularity `json:"default_granularity,omitempty"`
	IncludeArchived    *bool              `json:"include_archived,omitempty"`
	Timezone           *string            `json:"timezone,omitempty"`
}

// Service manages per-user dashboard preferences.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Preference, error)
	Update(ctx context.Context, userID uuid.UUID, input UpdatePreferencesInput) (*models.Preference, error)
	ScheduleUpdate(ctx context.Context, userID uuid.UUID, input UpdatePreferencesInput) error
	ReportDefaults(ctx context.Context, userID uuid.UUID) (reports.Defaults, error)
	Close()
}

type service struct {
	repo     Repository
	logg     *logger.Logger
	autosave *autosaver
}

// NewService wires a settings service. Autosave batches rapid preference
// updates behind the configured delay; a zero delay writes through
// immediately.
func NewService(repo Repository, logg *logger.Logger, autosaveDelay time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("preference repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	svc := &service{repo: repo, logg: logg}
	svc.autosave = newAutosaver(autosaveDelay, svc.flush)
	return svc, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*models.Preference, error) {
	if userID == uuid.Nil {
		return nil, errors.New(errors.CodeUnauthorized, "user id is required")
	}
	pref, err := s.repo.Find(ctx, userID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return defaultPreference(userID), nil
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "load preferences")
	}
	return pref, nil
}

func (s *service) Update(ctx context.Context, userID uuid.UUID, input UpdatePreferencesInput) (*models.Preference, error) {
	pref, err := s.apply(ctx, userID, input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, pref); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "save preferences")
	}
	return pref, nil
}

// ScheduleUpdate validates now but defers the write, superseding any pending
// write for the same user.
func (s *service) ScheduleUpdate(ctx context.Context, userID uuid.UUID, input UpdatePreferencesInput) error {
	pref, err := s.apply(ctx, userID, input)
	if err != nil {
		return err
	}
	s.autosave.schedule(userID.String(), pref)
	return nil
}

func (s *service) ReportDefaults(ctx context.Context, userID uuid.UUID) (reports.Defaults, error) {
	pref, err := s.Get(ctx, userID)
	if err != nil {
		return reports.Defaults{}, err
	}
	return reports.Defaults{
		RangePreset:     pref.DefaultRangePreset,
		Granularity:     pref.DefaultGranularity,
		IncludeArchived: pref.IncludeArchived,
	}, nil
}

// Close flushes every pending autosave. Call on shutdown.
func (s *service) Close() {
	s.autosave.close()
}

func (s *service) apply(ctx context.Context, userID uuid.UUID, input UpdatePreferencesInput) (*models.Preference, error) {
	pref, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.DefaultCurrency != nil {
		if len(*input.DefaultCurrency) != 3 {
			return nil, errors.New(errors.CodeValidation, "currency must be a 3-letter code")
		}
		pref.DefaultCurrency = *input.DefaultCurrency
	}
	if input.DefaultRangePreset != nil {
		if !input.DefaultRangePreset.IsValid() {
			return nil, errors.New(errors.CodeValidation, "invalid range preset").WithDetails(string(*input.DefaultRangePreset))
		}
		pref.DefaultRangePreset = *input.DefaultRangePreset
	}
	if input.DefaultGranularity != nil {
		if !input.DefaultGranularity.IsValid() {
			return nil, errors.New(errors.CodeValidation, "invalid granularity").WithDetails(string(*input.DefaultGranularity))
		}
		pref.DefaultGranularity = *input.DefaultGranularity
	}
	if input.IncludeArchived != nil {
		pref.IncludeArchived = *input.IncludeArchived
	}
	if input.Timezone != nil {
		if _, err := time.LoadLocation(*input.Timezone); err != nil {
			return nil, errors.New(errors.CodeValidation, "unknown timezone").WithDetails(*input.Timezone)
		}
		pref.Timezone = *input.Timezone
	}
	return pref, nil
}

func (s *service) flush(pref *models.Preference) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Deferred writes have no caller left to report to, so a failed persist
	// must at least leave a trace.
	if err := s.repo.Upsert(ctx, pref); err != nil {
		logCtx := s.logg.WithUserID(ctx, pref.UserID.String())
		s.logg.Error(logCtx, "preferences.autosave.write_failed", err)
	}
}

func defaultPreference(userID uuid.UUID) *models.Preference {
	return &models.Preference{
		UserID:             userID,
		DefaultCurrency:    "USD",
		DefaultRangePreset: enums.RangePreset30D,
		DefaultGranularity: enums.GranularityDay,
		Timezone:           "UTC",
	}
}
