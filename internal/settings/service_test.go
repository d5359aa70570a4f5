package settings

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danverhoeven/adledger-backend/pkg/db/models"
	"github.com/danverhoeven/adledger-backend/pkg/enums"
	"github.com/danverhoeven/adledger-backend/pkg/errors"
	"github.com/danverhoeven/adledger-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubRepo struct {
	mu        sync.Mutex
	byUser    map[uuid.UUID]*models.Preference
	upserts   []*models.Preference
	upsertErr error
}

func newStubRepo() *stubRepo {
	return &stubRepo{byUser: make(map[uuid.UUID]*models.Preference)}
}

func (s *stubRepo) WithTx(*gorm.DB) Repository { return s }

func (s *stubRepo) Find(_ context.Context, userID uuid.UUID) (*models.Preference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pref, ok := s.byUser[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *pref
	return &copied, nil
}

func (s *stubRepo) Upsert(_ context.Context, pref *models.Preference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.byUser[pref.UserID] = pref
	s.upserts = append(s.upserts, pref)
	return nil
}

func (s *stubRepo) upsertCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.upserts)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "settings-test", Output: io.Discard})
}

func mustService(t *testing.T, repo Repository, delay time.Duration) Service {
	t.Helper()
	svc, err := NewService(repo, testLogger(), delay)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	t.Cleanup(svc.Close)
	return svc
}

func TestGetReturnsDefaultsForNewUser(t *testing.T) {
	svc := mustService(t, newStubRepo(), 0)
	pref, err := svc.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if pref.DefaultRangePreset != enums.RangePreset30D {
		t.Fatalf("expected 30d default, got %s", pref.DefaultRangePreset)
	}
	if pref.DefaultGranularity != enums.GranularityDay {
		t.Fatalf("expected day default, got %s", pref.DefaultGranularity)
	}
	if pref.DefaultCurrency != "USD" || pref.Timezone != "UTC" {
		t.Fatalf("unexpected defaults %+v", pref)
	}
}

func TestUpdatePersistsPatchedFields(t *testing.T) {
	repo := newStubRepo()
	svc := mustService(t, repo, 0)
	userID := uuid.New()

	preset := enums.RangePreset90D
	archived := true
	pref, err := svc.Update(context.Background(), userID, UpdatePreferencesInput{
		DefaultRangePreset: &preset,
		IncludeArchived:    &archived,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if pref.DefaultRangePreset != enums.RangePreset90D || !pref.IncludeArchived {
		t.Fatalf("patch not applied: %+v", pref)
	}
	if pref.DefaultCurrency != "USD" {
		t.Fatalf("expected untouched currency, got %q", pref.DefaultCurrency)
	}

	stored, err := repo.Find(context.Background(), userID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.DefaultRangePreset != enums.RangePreset90D {
		t.Fatalf("expected persisted preset, got %s", stored.DefaultRangePreset)
	}
}

func TestUpdateRejectsInvalidValues(t *testing.T) {
	svc := mustService(t, newStubRepo(), 0)
	userID := uuid.New()

	badPreset := enums.RangePreset("fortnight")
	if _, err := svc.Update(context.Background(), userID, UpdatePreferencesInput{DefaultRangePreset: &badPreset}); err == nil {
		t.Fatal("expected error for invalid preset")
	}

	badTZ := "Mars/Olympus"
	_, err := svc.Update(context.Background(), userID, UpdatePreferencesInput{Timezone: &badTZ})
	if typed := errors.As(err); typed == nil || typed.Code() != errors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestScheduleUpdateCoalescesBursts(t *testing.T) {
	repo := newStubRepo()
	svc := mustService(t, repo, 30*time.Millisecond)
	userID := uuid.New()

	for _, preset := range []enums.RangePreset{enums.RangePreset7D, enums.RangePreset30D, enums.RangePreset90D} {
		p := preset
		if err := svc.ScheduleUpdate(context.Background(), userID, UpdatePreferencesInput{DefaultRangePreset: &p}); err != nil {
			t.Fatalf("schedule: %v", err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for repo.upsertCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := repo.upsertCount(); got != 1 {
		t.Fatalf("expected one coalesced write, got %d", got)
	}

	stored, err := repo.Find(context.Background(), userID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.DefaultRangePreset != enums.RangePreset90D {
		t.Fatalf("expected last snapshot to win, got %s", stored.DefaultRangePreset)
	}
}

func TestCloseFlushesPendingWrites(t *testing.T) {
	repo := newStubRepo()
	svc, err := NewService(repo, testLogger(), time.Hour)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	userID := uuid.New()

	preset := enums.RangePreset7D
	if err := svc.ScheduleUpdate(context.Background(), userID, UpdatePreferencesInput{DefaultRangePreset: &preset}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if repo.upsertCount() != 0 {
		t.Fatal("write should still be pending")
	}

	svc.Close()
	if repo.upsertCount() != 1 {
		t.Fatalf("expected close to flush, got %d writes", repo.upsertCount())
	}
}

func TestScheduleUpdateLogsFailedFlush(t *testing.T) {
	repo := newStubRepo()
	repo.upsertErr = fmt.Errorf("connection reset")

	var logs bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "settings-test", Output: &logs})
	svc, err := NewService(repo, logg, 0)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	t.Cleanup(svc.Close)
	userID := uuid.New()

	// Zero delay writes through inside ScheduleUpdate, so the failed flush
	// has already happened by the time it returns.
	preset := enums.RangePreset7D
	if err := svc.ScheduleUpdate(context.Background(), userID, UpdatePreferencesInput{DefaultRangePreset: &preset}); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	out := logs.String()
	if !strings.Contains(out, "preferences.autosave.write_failed") {
		t.Fatalf("expected failed flush to be logged, got %q", out)
	}
	if !strings.Contains(out, userID.String()) {
		t.Fatalf("expected log to carry the user id, got %q", out)
	}
	if !strings.Contains(out, "connection reset") {
		t.Fatalf("expected log to carry the upsert error, got %q", out)
	}
}

func TestReportDefaults(t *testing.T) {
	repo := newStubRepo()
	svc := mustService(t, repo, 0)
	userID := uuid.New()

	preset := enums.RangePresetYTD
	gran := enums.GranularityMonth
	archived := true
	if _, err := svc.Update(context.Background(), userID, UpdatePreferencesInput{
		DefaultRangePreset: &preset,
		DefaultGranularity: &gran,
		IncludeArchived:    &archived,
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	defaults, err := svc.ReportDefaults(context.Background(), userID)
	if err != nil {
		t.Fatalf("report defaults: %v", err)
	}
	if defaults.RangePreset != enums.RangePresetYTD || defaults.Granularity != enums.GranularityMonth {
		t.Fatalf("unexpected defaults %+v", defaults)
	}
	if !defaults.IncludeArchived {
		t.Fatal("expected saved archived flag in report defaults")
	}
}
