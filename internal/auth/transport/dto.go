// Package transport defines the request and response DTOs for the auth module.
package transport

import "time"

// RegisterRequest creates a new account. All accounts start as students.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=50"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1,max=50"`
	Bio       *string `json:"bio" validate:"omitempty,max=500"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

// SetRoleRequest changes a user's role (admin only).
type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=STUDENT INSTRUCTOR ADMIN"`
}

// UserIDParams binds the :id path parameter.
type UserIDParams struct {
	ID string `uri:"id" validate:"required,uuid"`
}

// TokenPairResponse carries a freshly issued token pair.
type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RegisterResponse reports the created account and whether the verification
// email went out. Email delivery failures never fail registration.
type RegisterResponse struct {
	User           UserResponse `json:"user"`
	EmailDelivered bool         `json:"emailDelivered"`
}

type UserResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type ProfileResponse struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	FirstName *string   `json:"firstName"`
	LastName  *string   `json:"lastName"`
	Bio       *string   `json:"bio"`
	AvatarURL *string   `json:"avatarUrl"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AvatarResponse reports the stored avatar after an upload.
type AvatarResponse struct {
	AvatarURL string `json:"avatarUrl"`
}
