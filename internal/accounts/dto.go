package accounts

import (
	"github.com/google/uuid"

	"github.com/tavola-app/tavola-backend/pkg/db/models"
)

// MemberDTO is the projection returned by the group membership endpoints.
type MemberDTO struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Roles    []string  `json:"roles"`
}

func memberFromModel(user models.User) MemberDTO {
	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, r.Role.String())
	}
	return MemberDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Roles:    roles,
	}
}
