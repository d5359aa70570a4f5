package controllers

import (
	"fmt"
	"net/http"

	"github.com/danverhoeven/adledger-backend/api/middleware"
	"github.com/danverhoeven/adledger-backend/api/responses"
	"github.com/danverhoeven/adledger-backend/api/validators"
	"github.com/danverhoeven/adledger-backend/internal/reports"
	"github.com/danverhoeven/adledger-backend/pkg/enums"
	pkgerrors "github.com/danverhoeven/adledger-backend/pkg/errors"
	"github.com/danverhoeven/adledger-backend/pkg/logger"
)

// ReportSummary returns scalar totals for the resolved window.
func ReportSummary(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.UserUUIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query, err := reportQueryFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.Summary(r.Context(), userID, *query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

// ReportChart returns chronological buckets for the resolved window.
func ReportChart(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.UserUUIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query, err := reportQueryFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.Chart(r.Context(), userID, *query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

// ReportExport streams a spreadsheet of the resolved window.
func ReportExport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.UserUUIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query, err := reportQueryFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		file, err := svc.Export(r.Context(), userID, *query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", file.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(file.Data); err != nil && logg != nil {
			logg.Error(r.Context(), "report.export.write_failed", err)
		}
	}
}

func reportQueryFromRequest(r *http.Request) (*reports.Query, error) {
	var query reports.Query

	if raw := validators.QueryString(r, "preset"); raw != "" {
		preset, err := enums.ParseRangePreset(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid preset")
		}
		query.Preset = preset
	}

	if raw := validators.QueryString(r, "granularity"); raw != "" {
		granularity, err := enums.ParseGranularity(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid granularity")
		}
		query.Granularity = granularity
	}

	start, err := validators.ParseQueryDate(r, "start")
	if err != nil {
		return nil, err
	}
	end, err := validators.ParseQueryDate(r, "end")
	if err != nil {
		return nil, err
	}
	query.CustomStart = start
	query.CustomEnd = end

	includeArchived, err := validators.ParseQueryOptionalBool(r, "include_archived")
	if err != nil {
		return nil, err
	}
	query.IncludeArchived = includeArchived

	return &query, nil
}
