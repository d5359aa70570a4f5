package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/danverhoeven/adledger-backend/pkg/enums"
)

// Entry records one day of advertising spend and revenue for a user.
//
// Revenue supersedes the legacy Earnings column when both are set. Profit, when
// present, is an operator-pinned override that reporting must never recompute.
type Entry struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	EntryDate time.Time         `gorm:"column:entry_date;type:date;not null"`
	Spend     decimal.Decimal   `gorm:"column:spend;type:numeric(14,2);not null"`
	Revenue   *decimal.Decimal  `gorm:"column:revenue;type:numeric(14,2)"`
	Earnings  *decimal.Decimal  `gorm:"column:earnings;type:numeric(14,2)"`
	Profit    *decimal.Decimal  `gorm:"column:profit;type:numeric(14,2)"`
	Status    enums.EntryStatus `gorm:"column:status;type:entry_status;not null;default:'active'"`
	Currency  string            `gorm:"column:currency;type:char(3);not null;default:'USD'"`
	Notes     string            `gorm:"column:notes"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
