package entries

import (
	"time"

	"github.com/danverhoeven/adledger-backend/pkg/enums"
	"github.com/danverhoeven/adledger-backend/pkg/pagination"
	"github.com/shopspring/decimal"
)

// CreateEntryInput captures one day of spend/revenue to record.
type CreateEntryInput struct {
	EntryDate time.Time        `json:"entry_date" validate:"required"`
	Spend     decimal.Decimal  `json:"spend"`
	Revenue   *decimal.Decimal `json:"revenue,omitempty"`
	Earnings  *decimal.Decimal `json:"earnings,omitempty"`
	Profit    *decimal.Decimal `json:"profit,omitempty"`
	Currency  string           `json:"currency,omitempty" validate:"omitempty,len=3"`
	Notes     string           `json:"notes,omitempty"`
}

// UpdateEntryInput patches an existing entry. Nil fields are left untouched.
type UpdateEntryInput struct {
	EntryDate *time.Time         `json:"entry_date,omitempty"`
	Spend     *decimal.Decimal   `json:"spend,omitempty"`
	Revenue   *decimal.Decimal   `json:"revenue,omitempty"`
	Earnings  *decimal.Decimal   `json:"earnings,omitempty"`
	Profit    *decimal.Decimal   `json:"profit,omitempty"`
	Status    *enums.EntryStatus `json:"status,omitempty"`
	Currency  *string            `json:"currency,omitempty" validate:"omitempty,len=3"`
	Notes     *string            `json:"notes,omitempty"`
}

// ListFilters narrow the entries browse endpoint.
type ListFilters struct {
	DateFrom        *time.Time         `json:"date_from,omitempty"`
	DateTo          *time.Time         `json:"date_to,omitempty"`
	Status          *enums.EntryStatus `json:"status,omitempty"`
	IncludeArchived bool               `json:"include_archived,omitempty"`
	Query           string             `json:"q,omitempty"`
}

// ListInput combines filters with cursor pagination.
type ListInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// ListResult is one page of entries plus the cursor for the next page.
type ListResult struct {
	Entries    []EntryView `json:"entries"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// EntryView is an entry with its derived profit and ROI attached, shaped for
// API responses.
type EntryView struct {
	ID        string            `json:"id"`
	EntryDate time.Time         `json:"entry_date"`
	Spend     decimal.Decimal   `json:"spend"`
	Revenue   decimal.Decimal   `json:"revenue"`
	Profit    decimal.Decimal   `json:"profit"`
	ROIPct    *float64          `json:"roi_pct"`
	Status    enums.EntryStatus `json:"status"`
	Currency  string            `json:"currency"`
	Notes     string            `json:"notes,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
