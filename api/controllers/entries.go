package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/danverhoeven/adledger-backend/api/middleware"
	"github.com/danverhoeven/adledger-backend/api/responses"
	"github.com/danverhoeven/adledger-backend/api/validators"
	"github.com/danverhoeven/adledger-backend/internal/entries"
	"github.com/danverhoeven/adledger-backend/pkg/enums"
	pkgerrors "github.com/danverhoeven/adledger-backend/pkg/errors"
	"github.com/danverhoeven/adledger-backend/pkg/logger"
	"github.com/danverhoeven/adledger-backend/pkg/pagination"
)

// EntryCreate records one day of spend and revenue.
func EntryCreate(svc entries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.UserUUIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body entries.CreateEntryInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Create(r.Context(), userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// EntryList returns a filtered, cursor-paginated page of entries.
func EntryList(svc entries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.UserUUIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := listInputFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), userID, *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// EntryDetail fetches one entry by id.
func EntryDetail(svc entries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, entryID, err := entryScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Get(r.Context(), userID, entryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// EntryUpdate patches an entry; omitted fields are untouched.
func EntryUpdate(svc entries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, entryID, err := entryScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body entries.UpdateEntryInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Update(r.Context(), userID, entryID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// EntryArchive soft-hides an entry from reports.
func EntryArchive(svc entries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, entryID, err := entryScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Archive(r.Context(), userID, entryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// EntryDelete removes an entry permanently.
func EntryDelete(svc entries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, entryID, err := entryScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), userID, entryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func entryScope(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	userID, err := middleware.UserUUIDFromContext(r.Context())
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	entryID, err := uuid.Parse(chi.URLParam(r, "entryId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid entry id")
	}
	return userID, entryID, nil
}

func listInputFromQuery(r *http.Request) (*entries.ListInput, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return nil, err
	}

	dateFrom, err := validators.ParseQueryDate(r, "date_from")
	if err != nil {
		return nil, err
	}
	dateTo, err := validators.ParseQueryDate(r, "date_to")
	if err != nil {
		return nil, err
	}
	includeArchived, err := validators.ParseQueryBool(r, "include_archived")
	if err != nil {
		return nil, err
	}

	var status *enums.EntryStatus
	if raw := validators.QueryString(r, "status"); raw != "" {
		parsed, err := enums.ParseEntryStatus(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		status = &parsed
	}

	return &entries.ListInput{
		Filters: entries.ListFilters{
			DateFrom:        dateFrom,
			DateTo:          dateTo,
			Status:          status,
			IncludeArchived: includeArchived,
			Query:           validators.QueryString(r, "q"),
		},
		Pagination: pagination.Params{
			Limit:  limit,
			Cursor: validators.QueryString(r, "cursor"),
		},
	}, nil
}
