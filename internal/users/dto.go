package users

import (
	"time"

	"github.com/danverhoeven/adledger-backend/pkg/db/models"
	"github.com/google/uuid"
)

// UserView is the account shape returned to API clients. The password hash
// never leaves this package.
type UserView struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// FromModel projects a user row into its response shape.
func FromModel(user *models.User) UserView {
	if user == nil {
		return UserView{}
	}
	return UserView{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
	}
}
