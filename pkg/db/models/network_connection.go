package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/danverhoeven/adledger-backend/pkg/enums"
)

// NetworkConnection stores credentials for a third-party ad or CPA network account.
type NetworkConnection struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	NetworkType   enums.NetworkType      `gorm:"column:network_type;type:network_type;not null"`
	Provider      string                 `gorm:"column:provider;not null"`
	Status        enums.ConnectionStatus `gorm:"column:status;type:connection_status;not null;default:'connected'"`
	AuthKind      enums.AuthKind         `gorm:"column:auth_kind;type:auth_kind;not null"`
	APIKey        *string                `gorm:"column:api_key"`
	AccessToken   *string                `gorm:"column:access_token"`
	RefreshToken  *string                `gorm:"column:refresh_token"`
	TokenExpiry   *time.Time             `gorm:"column:token_expiry"`
	LastCheckedAt *time.Time             `gorm:"column:last_checked_at"`
	LastError     *string                `gorm:"column:last_error"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
