package post

import (
	"context"
	"fmt"

	"promptstudio/internal/pkg/pagination"
)

type Service struct {
	repo RepositoryInterface
}

func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID int64, params pagination.Params) (*pagination.Page[Post], error) {
	items, total, err := s.repo.ListByAuthor(ctx, userID, params)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return &pagination.Page[Post]{Items: items, Total: total, Params: params}, nil
}

// Create stores a post owned by userID.
func (s *Service) Create(ctx context.Context, userID int64, req *CreatePostRequest) (*Post, error) {
	p := &Post{
		AuthorID: userID,
		Title:    req.Title,
		Body:     req.Body,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}

// Authorize loads a post and checks that userID owns it.
func (s *Service) Authorize(ctx context.Context, userID, postID int64) (*Post, error) {
	p, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != userID {
		return nil, ErrForbidden
	}
	return p, nil
}

// Update applies req to a post already returned by Authorize.
func (s *Service) Update(ctx context.Context, p *Post, req *UpdatePostRequest) (*Post, error) {
	p.Title = req.Title
	p.Body = req.Body
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, userID, postID int64) error {
	if _, err := s.Authorize(ctx, userID, postID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, postID)
}
