package post

import (
	"context"

	"promptstudio/internal/pkg/pagination"
)

type RepositoryInterface interface {
	ListByAuthor(ctx context.Context, authorID int64, params pagination.Params) ([]Post, int64, error)
	GetByID(ctx context.Context, id int64) (*Post, error)
	Create(ctx context.Context, p *Post) error
	Update(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id int64) error
}
