package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"suggestboard/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

// FindOne returns (nil, nil) when no user matches.
func (r *UserRepository) FindOne(ctx context.Context, f UserFilter) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where(f.where()).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) FindAll(ctx context.Context, f UserFilter) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Where(f.where()).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users failed: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, changes UserChanges, f UserFilter) (int64, error) {
	where := f.where()
	if len(where) == 0 {
		return 0, ErrEmptyFilter
	}
	res := r.db.WithContext(ctx).Model(&model.User{}).Where(where).Updates(changes.values())
	if res.Error != nil {
		return 0, fmt.Errorf("update user failed: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *UserRepository) Destroy(ctx context.Context, f UserFilter) (int64, error) {
	where := f.where()
	if len(where) == 0 {
		return 0, ErrEmptyFilter
	}
	res := r.db.WithContext(ctx).Where(where).Delete(&model.User{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete user failed: %w", res.Error)
	}
	return res.RowsAffected, nil
}
