package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clientdesk/backend/internal/models"
	"github.com/clientdesk/backend/internal/repository"
	"github.com/clientdesk/backend/internal/security"
)

// AdminSeed describes the administrator created out of band. Admins cannot be
// created or promoted through the HTTP API.
type AdminSeed struct {
	Email    string
	Name     string
	Password string
}

// EnsureAdmin creates the admin account unless a user with that email already
// exists. It reports whether a user was created.
func EnsureAdmin(ctx context.Context, users repository.UserRepository, hasher security.PasswordHasher, seed AdminSeed) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(seed.Email))
	if email == "" || seed.Password == "" {
		return false, errors.New("admin email and password are required")
	}
	if len(seed.Password) < 8 {
		return false, errors.New("admin password must be at least 8 characters")
	}

	_, err := users.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := hasher.Hash(seed.Password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	name := seed.Name
	if name == "" {
		name = "Admin User"
	}

	admin := &models.User{
		Email:    email,
		Name:     name,
		Password: hash,
		IsAdmin:  true,
		Status:   models.StatusActive,
	}
	if err := users.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return false, nil
		}
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
