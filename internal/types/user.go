package types

import (
	"github.com/docket-dev/docket/internal/auth"
	"github.com/docket-dev/docket/internal/models"
)

// BearerToken is the verified token of the current request.
type BearerToken struct {
	Raw    string
	Claims *auth.Claims
}

// AuthenticatedUser is the identity attached to a request by the access
// gate. It never carries credential material.
type AuthenticatedUser struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}
}
