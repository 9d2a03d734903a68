package post

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"promptstudio/internal/pkg/pagination"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByAuthor returns one page of the author's posts, newest first.
func (r *Repository) ListByAuthor(ctx context.Context, authorID int64, params pagination.Params) ([]Post, int64, error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&Post{}).Where("author_id = ?", authorID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	posts := make([]Post, 0, params.Limit())
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("id DESC").
		Offset(params.Offset()).
		Limit(params.Limit()).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Post, error) {
	var p Post
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) Create(ctx context.Context, p *Post) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Update writes title and body only; author_id is immutable.
func (r *Repository) Update(ctx context.Context, p *Post) error {
	return r.db.WithContext(ctx).Model(p).Select("title", "body", "updated_at").Updates(p).Error
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}
