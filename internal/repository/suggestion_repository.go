package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"suggestboard/internal/model"
)

type SuggestionRepository struct {
	db *gorm.DB
}

func NewSuggestionRepository(db *gorm.DB) *SuggestionRepository {
	return &SuggestionRepository{db: db}
}

func (r *SuggestionRepository) Create(ctx context.Context, suggestion *model.Suggestion) error {
	if err := r.db.WithContext(ctx).Create(suggestion).Error; err != nil {
		return fmt.Errorf("create suggestion failed: %w", err)
	}
	return nil
}

func (r *SuggestionRepository) FindOne(ctx context.Context, f SuggestionFilter) (*model.Suggestion, error) {
	var suggestion model.Suggestion
	if err := r.db.WithContext(ctx).Where(f.where()).First(&suggestion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query suggestion failed: %w", err)
	}
	return &suggestion, nil
}

func (r *SuggestionRepository) FindAll(ctx context.Context, f SuggestionFilter) ([]model.Suggestion, error) {
	var suggestions []model.Suggestion
	if err := r.db.WithContext(ctx).Where(f.where()).Find(&suggestions).Error; err != nil {
		return nil, fmt.Errorf("list suggestions failed: %w", err)
	}
	return suggestions, nil
}

func (r *SuggestionRepository) Destroy(ctx context.Context, f SuggestionFilter) (int64, error) {
	where := f.where()
	if len(where) == 0 {
		return 0, ErrEmptyFilter
	}
	res := r.db.WithContext(ctx).Where(where).Delete(&model.Suggestion{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete suggestion failed: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *SuggestionRepository) Update(ctx context.Context, changes SuggestionChanges, f SuggestionFilter) (int64, error) {
	where := f.where()
	if len(where) == 0 {
		return 0, ErrEmptyFilter
	}
	res := r.db.WithContext(ctx).Model(&model.Suggestion{}).Where(where).Updates(changes.values())
	if res.Error != nil {
		return 0, fmt.Errorf("update suggestion failed: %w", res.Error)
	}
	return res.RowsAffected, nil
}
