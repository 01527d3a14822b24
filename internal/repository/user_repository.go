package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clientdesk/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// ClientFields carries a partial update. Nil fields are left untouched.
type ClientFields struct {
	Email        *string
	Name         *string
	BusinessType *string
}

func (f ClientFields) Empty() bool {
	return f.Email == nil && f.Name == nil && f.BusinessType == nil
}

// UserRepository is the credential store behind the account service.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	ListClients(ctx context.Context) ([]models.User, error)
	UpdateClient(ctx context.Context, id uuid.UUID, fields ClientFields) (*models.User, error)
	DeleteClient(ctx context.Context, id uuid.UUID) error
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Status == "" {
		user.Status = models.StatusActive
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *GormUserRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login_at", at)
	if res.Error != nil {
		return fmt.Errorf("update last login: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormUserRepository) ListClients(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Where("is_admin = ?", false).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return users, nil
}

// UpdateClient applies the supplied fields to a non-admin user. An unknown id
// and an admin id both yield ErrNotFound.
func (r *GormUserRepository) UpdateClient(ctx context.Context, id uuid.UUID, fields ClientFields) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("is_admin = ?", false).First(&user, "id = ?", id).Error; err != nil {
			return err
		}
		if fields.Empty() {
			return nil
		}
		updates := map[string]interface{}{}
		if fields.Email != nil {
			updates["email"] = *fields.Email
		}
		if fields.Name != nil {
			updates["name"] = *fields.Name
		}
		if fields.BusinessType != nil {
			updates["business_type"] = *fields.BusinessType
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&user, "id = ?", id).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormUserRepository) DeleteClient(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND is_admin = ?", id, false).Delete(&models.User{})
	if res.Error != nil {
		return fmt.Errorf("delete client: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateEmail
	default:
		return err
	}
}
