package dto

import (
	"strings"
	"time"

	"github.com/clientdesk/backend/internal/models"
	"github.com/google/uuid"
)

type RegisterRequest struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8,strongpassword"`
	BusinessType string `json:"businessType"`
}

func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.BusinessType = strings.TrimSpace(r.BusinessType)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// UpdateClientRequest is a partial update: absent fields stay as they are,
// present fields must not be blank.
type UpdateClientRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1"`
	Email        *string `json:"email" validate:"omitempty,email"`
	BusinessType *string `json:"businessType" validate:"omitempty,min=1"`
}

func (r *UpdateClientRequest) Normalize() {
	trim := func(s *string) {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	trim(r.Name)
	trim(r.BusinessType)
	if r.Email != nil {
		*r.Email = strings.ToLower(strings.TrimSpace(*r.Email))
	}
}

type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// UserResponse is the public projection returned by register and login.
type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	BusinessType *string   `json:"businessType"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		BusinessType: u.BusinessType,
	}
}

// ClientResponse is what the admin endpoints see. It never carries the
// password hash.
type ClientResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	BusinessType *string    `json:"businessType"`
	Status       string     `json:"status"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func NewClientResponse(u *models.User) ClientResponse {
	return ClientResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		BusinessType: u.BusinessType,
		Status:       u.Status,
		LastLoginAt:  u.LastLoginAt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   bool        `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type HealthInfo struct {
	URL string `json:"url"`
}

type HealthResponse struct {
	Message string     `json:"message"`
	Error   string     `json:"error,omitempty"`
	Info    HealthInfo `json:"info"`
}
