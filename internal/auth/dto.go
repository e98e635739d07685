package auth

import (
	"github.com/google/uuid"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
)

// RegisterInput captures a signup request.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Role     enums.UserRole
	NGOID    *uuid.UUID
}

// LoginInput captures a login request.
type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool
}

// Session is the issued credential pair returned to clients.
type Session struct {
	User  *models.User
	Token string
}

// Profile is the authenticated user's own view, with the organization name
// resolved for staff accounts.
type Profile struct {
	User    *models.User
	NGOName *string
}

// UpdateProfileInput carries the self-service profile fields. Nil fields are
// left unchanged.
type UpdateProfileInput struct {
	FullName  *string
	AvatarURL *string
}
