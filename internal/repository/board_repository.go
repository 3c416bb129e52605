package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"suggestboard/internal/model"
)

type BoardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

func (r *BoardRepository) Create(ctx context.Context, board *model.Board) error {
	if err := r.db.WithContext(ctx).Create(board).Error; err != nil {
		return fmt.Errorf("create board failed: %w", err)
	}
	return nil
}

func (r *BoardRepository) FindOne(ctx context.Context, f BoardFilter) (*model.Board, error) {
	var board model.Board
	if err := r.db.WithContext(ctx).Where(f.where()).First(&board).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query board failed: %w", err)
	}
	return &board, nil
}

func (r *BoardRepository) FindAll(ctx context.Context, f BoardFilter) ([]model.Board, error) {
	var boards []model.Board
	if err := r.db.WithContext(ctx).Where(f.where()).Find(&boards).Error; err != nil {
		return nil, fmt.Errorf("list boards failed: %w", err)
	}
	return boards, nil
}

func (r *BoardRepository) Destroy(ctx context.Context, f BoardFilter) (int64, error) {
	where := f.where()
	if len(where) == 0 {
		return 0, ErrEmptyFilter
	}
	res := r.db.WithContext(ctx).Where(where).Delete(&model.Board{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete board failed: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *BoardRepository) Update(ctx context.Context, changes BoardChanges, f BoardFilter) (int64, error) {
	where := f.where()
	if len(where) == 0 {
		return 0, ErrEmptyFilter
	}
	res := r.db.WithContext(ctx).Model(&model.Board{}).Where(where).Updates(changes.values())
	if res.Error != nil {
		return 0, fmt.Errorf("update board failed: %w", res.Error)
	}
	return res.RowsAffected, nil
}
