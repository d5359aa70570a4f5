package networks

import (
	"context"
	"time"

	"github.com/danverhoeven/adledger-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for network connections.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, conn *models.NetworkConnection) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*models.NetworkConnection, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.NetworkConnection, error)
	Update(ctx context.Context, conn *models.NetworkConnection) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	ListExpiringTokens(ctx context.Context, before time.Time) ([]models.NetworkConnection, error)
	ListUncheckedSince(ctx context.Context, since time.Time) ([]models.NetworkConnection, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a connection repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, conn *models.NetworkConnection) error {
	return r.db.WithContext(ctx).Create(conn).Error
}

func (r *repository) FindByID(ctx context.Context, userID, id uuid.UUID) (*models.NetworkConnection, error) {
	var conn models.NetworkConnection
	if err := r.db.WithContext(ctx).
		First(&conn, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.NetworkConnection, error) {
	var conns []models.NetworkConnection
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&conns).Error; err != nil {
		return nil, err
	}
	return conns, nil
}

func (r *repository) Update(ctx context.Context, conn *models.NetworkConnection) error {
	return r.db.WithContext(ctx).Save(conn).Error
}

func (r *repository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.NetworkConnection{}).Error
}

func (r *repository) ListExpiringTokens(ctx context.Context, before time.Time) ([]models.NetworkConnection, error) {
	var conns []models.NetworkConnection
	if err := r.db.WithContext(ctx).
		Where("auth_kind = ? AND status = ? AND token_expiry IS NOT NULL AND token_expiry <= ?",
			"oauth", "connected", before).
		Order("token_expiry ASC").
		Find(&conns).Error; err != nil {
		return nil, err
	}
	return conns, nil
}

func (r *repository) ListUncheckedSince(ctx context.Context, since time.Time) ([]models.NetworkConnection, error) {
	var conns []models.NetworkConnection
	if err := r.db.WithContext(ctx).
		Where("status <> ? AND (last_checked_at IS NULL OR last_checked_at < ?)", "disabled", since).
		Order("last_checked_at ASC NULLS FIRST").
		Find(&conns).Error; err != nil {
		return nil, err
	}
	return conns, nil
}
