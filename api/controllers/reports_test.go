package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danverhoeven/adledger-backend/api/middleware"
	"github.com/danverhoeven/adledger-backend/internal/reports"
	"github.com/danverhoeven/adledger-backend/pkg/enums"
)

type stubReportService struct {
	lastQuery reports.Query
	summary   *reports.SummaryReport
	chart     *reports.ChartReport
	file      *reports.ExportFile
	err       error
}

func (s *stubReportService) Summary(_ context.Context, _ uuid.UUID, query reports.Query) (*reports.SummaryReport, error) {
	s.lastQuery = query
	return s.summary, s.err
}

func (s *stubReportService) Chart(_ context.Context, _ uuid.UUID, query reports.Query) (*reports.ChartReport, error) {
	s.lastQuery = query
	return s.chart, s.err
}

func (s *stubReportService) Export(_ context.Context, _ uuid.UUID, query reports.Query) (*reports.ExportFile, error) {
	s.lastQuery = query
	return s.file, s.err
}

func TestReportSummaryParsesQuery(t *testing.T) {
	stub := &stubReportService{summary: &reports.SummaryReport{}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/summary?preset=custom&start=2025-03-01&end=2025-03-15&include_archived=true", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	rec := httptest.NewRecorder()
	ReportSummary(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.lastQuery.Preset != enums.RangePresetCustom {
		t.Fatalf("unexpected preset %q", stub.lastQuery.Preset)
	}
	if stub.lastQuery.CustomStart == nil || !stub.lastQuery.CustomStart.Equal(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected custom start %v", stub.lastQuery.CustomStart)
	}
	if stub.lastQuery.IncludeArchived == nil || !*stub.lastQuery.IncludeArchived {
		t.Fatal("include_archived not propagated")
	}
}

func TestReportSummaryLeavesOmittedArchivedChoiceUnset(t *testing.T) {
	stub := &stubReportService{summary: &reports.SummaryReport{}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/summary?preset=30d", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	rec := httptest.NewRecorder()
	ReportSummary(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.lastQuery.IncludeArchived != nil {
		t.Fatalf("expected nil include_archived when omitted, got %v", *stub.lastQuery.IncludeArchived)
	}
}

func TestReportChartRejectsUnknownGranularity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/chart?granularity=hourly", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	rec := httptest.NewRecorder()
	ReportChart(&stubReportService{chart: &reports.ChartReport{}}, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown granularity, got %d", rec.Code)
	}
}

func TestReportExportSetsDownloadHeaders(t *testing.T) {
	stub := &stubReportService{file: &reports.ExportFile{
		Filename:    "adledger-report-2025-03-01-to-2025-03-15.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        []byte("workbook-bytes"),
	}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/export?preset=30d", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	rec := httptest.NewRecorder()
	ReportExport(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != stub.file.ContentType {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="adledger-report-2025-03-01-to-2025-03-15.xlsx"` {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	if rec.Body.String() != "workbook-bytes" {
		t.Fatal("export body not streamed")
	}
}

func TestReportSummaryRequiresIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/summary", nil)
	rec := httptest.NewRecorder()
	ReportSummary(&stubReportService{summary: &reports.SummaryReport{}}, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}
}
