package entries

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/danverhoeven/adledger-backend/internal/reports"
	"github.com/danverhoeven/adledger-backend/pkg/db/models"
	"github.com/danverhoeven/adledger-backend/pkg/enums"
	"github.com/danverhoeven/adledger-backend/pkg/errors"
	"github.com/danverhoeven/adledger-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultCurrency = "USD"

// Service defines CRUD and browse operations over a user's entries.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateEntryInput) (*EntryView, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*EntryView, error)
	Update(ctx context.Context, userID, id uuid.UUID, input UpdateEntryInput) (*EntryView, error)
	Archive(ctx context.Context, userID, id uuid.UUID) (*EntryView, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, input ListInput) (*ListResult, error)
}

type service struct {
	repo Repository
}

// NewService wires an entry service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("entry repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateEntryInput) (*EntryView, error) {
	if userID == uuid.Nil {
		return nil, errors.New(errors.CodeUnauthorized, "user id is required")
	}
	if input.EntryDate.IsZero() {
		return nil, errors.New(errors.CodeValidation, "entry date is required")
	}
	if input.Spend.IsNegative() {
		return nil, errors.New(errors.CodeValidation, "spend must not be negative")
	}
	currency := input.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	if len(currency) != 3 {
		return nil, errors.New(errors.CodeValidation, "currency must be a 3-letter code")
	}

	entry := &models.Entry{
		UserID:    userID,
		EntryDate: reports.ToCalendarDate(input.EntryDate),
		Spend:     input.Spend,
		Revenue:   input.Revenue,
		Earnings:  input.Earnings,
		Profit:    input.Profit,
		Status:    enums.EntryStatusActive,
		Currency:  currency,
		Notes:     input.Notes,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "create entry")
	}
	return viewOf(*entry), nil
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (*EntryView, error) {
	entry, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return viewOf(*entry), nil
}

func (s *service) Update(ctx context.Context, userID, id uuid.UUID, input UpdateEntryInput) (*EntryView, error) {
	entry, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.EntryDate != nil {
		entry.EntryDate = reports.ToCalendarDate(*input.EntryDate)
	}
	if input.Spend != nil {
		if input.Spend.IsNegative() {
			return nil, errors.New(errors.CodeValidation, "spend must not be negative")
		}
		entry.Spend = *input.Spend
	}
	if input.Revenue != nil {
		entry.Revenue = input.Revenue
	}
	if input.Earnings != nil {
		entry.Earnings = input.Earnings
	}
	if input.Profit != nil {
		entry.Profit = input.Profit
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, errors.New(errors.CodeValidation, "invalid entry status").WithDetails(string(*input.Status))
		}
		entry.Status = *input.Status
	}
	if input.Currency != nil {
		if len(*input.Currency) != 3 {
			return nil, errors.New(errors.CodeValidation, "currency must be a 3-letter code")
		}
		entry.Currency = *input.Currency
	}
	if input.Notes != nil {
		entry.Notes = *input.Notes
	}

	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "update entry")
	}
	return viewOf(*entry), nil
}

func (s *service) Archive(ctx context.Context, userID, id uuid.UUID) (*EntryView, error) {
	entry, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if entry.Status == enums.EntryStatusArchived {
		return nil, errors.New(errors.CodeStateConflict, "entry is already archived")
	}
	entry.Status = enums.EntryStatusArchived
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "archive entry")
	}
	return viewOf(*entry), nil
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.find(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "delete entry")
	}
	return nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, input ListInput) (*ListResult, error) {
	if userID == uuid.Nil {
		return nil, errors.New(errors.CodeUnauthorized, "user id is required")
	}
	if input.Filters.Status != nil && !input.Filters.Status.IsValid() {
		return nil, errors.New(errors.CodeValidation, "invalid entry status").WithDetails(string(*input.Filters.Status))
	}

	rows, err := s.repo.List(ctx, userID, input)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "list entries")
	}

	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	result := &ListResult{Entries: make([]EntryView, 0, len(rows))}
	if len(rows) > limit {
		last := rows[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		rows = rows[:limit]
	}
	for _, row := range rows {
		result.Entries = append(result.Entries, *viewOf(row))
	}
	return result, nil
}

func (s *service) find(ctx context.Context, userID, id uuid.UUID) (*models.Entry, error) {
	if userID == uuid.Nil {
		return nil, errors.New(errors.CodeUnauthorized, "user id is required")
	}
	if id == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "entry id is required")
	}
	entry, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "entry not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "load entry")
	}
	return entry, nil
}

// viewOf projects an entry through derivation into its response shape.
func viewOf(entry models.Entry) *EntryView {
	derived := reports.Derive(entry)
	return &EntryView{
		ID:        entry.ID.String(),
		EntryDate: reports.ToCalendarDate(entry.EntryDate),
		Spend:     entry.Spend,
		Revenue:   derived.Revenue,
		Profit:    derived.Profit,
		ROIPct:    derived.ROIPct,
		Status:    entry.Status,
		Currency:  entry.Currency,
		Notes:     entry.Notes,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}
}
