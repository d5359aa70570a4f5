package networks

import (
	"time"

	"github.com/danverhoeven/adledger-backend/pkg/enums"
	"github.com/google/uuid"
)

// ConnectAPIKeyInput links a network account authenticated by a static key.
type ConnectAPIKeyInput struct {
	NetworkType enums.NetworkType `json:"network_type" validate:"required"`
	Provider    string            `json:"provider" validate:"required"`
	APIKey      string            `json:"api_key" validate:"required"`
}

// BeginOAuthInput starts the OAuth authorization flow for a provider.
type BeginOAuthInput struct {
	NetworkType enums.NetworkType `json:"network_type" validate:"required"`
	Provider    string            `json:"provider" validate:"required"`
}

// BeginOAuthResult carries the authorization URL the client must visit and
// the state value that the callback will echo.
type BeginOAuthResult struct {
	AuthURL string `json:"auth_url"`
	State   string `json:"state"`
}

// CompleteOAuthInput finishes the flow with the code from the callback.
type CompleteOAuthInput struct {
	NetworkType enums.NetworkType `json:"network_type" validate:"required"`
	Provider    string            `json:"provider" validate:"required"`
	Code        string            `json:"code" validate:"required"`
}

// ConnectionView is a credential-free projection of a stored connection.
type ConnectionView struct {
	ID            uuid.UUID              `json:"id"`
	NetworkType   enums.NetworkType      `json:"network_type"`
	Provider      string                 `json:"provider"`
	Status        enums.ConnectionStatus `json:"status"`
	AuthKind      enums.AuthKind         `json:"auth_kind"`
	TokenExpiry   *time.Time             `json:"token_expiry,omitempty"`
	LastCheckedAt *time.Time             `json:"last_checked_at,omitempty"`
	LastError     *string                `json:"last_error,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}
