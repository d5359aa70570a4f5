package entries

import (
	"context"
	"strings"

	"github.com/danverhoeven/adledger-backend/internal/reports"
	"github.com/danverhoeven/adledger-backend/pkg/db/models"
	"github.com/danverhoeven/adledger-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.Entry) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*models.Entry, error)
	Update(ctx context.Context, entry *models.Entry) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, input ListInput) ([]models.Entry, error)
	ListForRange(ctx context.Context, userID uuid.UUID, rng reports.DateRange) ([]models.Entry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an entry repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindByID(ctx context.Context, userID, id uuid.UUID) (*models.Entry, error) {
	var entry models.Entry
	if err := r.db.WithContext(ctx).
		First(&entry, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) Update(ctx context.Context, entry *models.Entry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *repository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Entry{}).Error
}

func (r *repository) List(ctx context.Context, userID uuid.UUID, input ListInput) ([]models.Entry, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Entry{}).
		Where("user_id = ?", userID)

	filters := input.Filters
	if filters.DateFrom != nil {
		query = query.Where("entry_date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("entry_date <= ?", *filters.DateTo)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	} else if !filters.IncludeArchived {
		query = query.Where("status = ?", "active")
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		query = query.Where("notes ILIKE ?", "%"+q+"%")
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Entry
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(input.Pagination.Limit)).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListForRange(ctx context.Context, userID uuid.UUID, rng reports.DateRange) ([]models.Entry, error) {
	var rows []models.Entry
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND entry_date >= ? AND entry_date <= ?", userID, rng.Start, rng.End).
		Order("entry_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
