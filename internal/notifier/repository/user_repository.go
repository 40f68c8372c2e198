package repository

import (
	"context"
	"errors"

	"tickrflow/internal/entity"

	"gorm.io/gorm"
)

// UserRepository defines read access to the externally-owned user store.
type UserRepository interface {
	FindAllForNewsEmail(ctx context.Context) ([]entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

// NewUserRepository creates a new GORM-based user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

type userRepository struct {
	db *gorm.DB
}

// FindAllForNewsEmail returns every user eligible for the daily digest:
// those with both an email and a name.
func (r *userRepository) FindAllForNewsEmail(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Where("email IS NOT NULL AND email <> '' AND name <> ''").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// FindByEmail returns the user with the given email, or nil when no such
// user exists.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
