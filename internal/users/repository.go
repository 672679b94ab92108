// Package user holds account persistence used by auth middleware and the
// listing service.
package user

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/vijayg-dev/warehouse-listing-backend/pkg/db/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads an account by ID.
func (r *Repository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail loads an account by its normalized email address.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		First(&user, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindActiveByID loads the account only when it is active.
func (r *Repository) FindActiveByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		First(&user, "id = ? AND is_active = ?", id, true).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
