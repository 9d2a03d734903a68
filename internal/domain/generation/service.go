package generation

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"promptstudio/internal/inference"
	"promptstudio/internal/pkg/logger"
	"promptstudio/internal/pkg/pagination"
)

// StorageNamespace is where uploaded images live on the file store.
const StorageNamespace = "uploads/images"

type Service struct {
	repo      RepositoryInterface
	files     FileStore
	generator inference.PromptGenerator
}

func NewService(repo RepositoryInterface, files FileStore, generator inference.PromptGenerator) *Service {
	return &Service{repo: repo, files: files, generator: generator}
}

func (s *Service) List(ctx context.Context, userID int64, q ListQuery) (*pagination.Page[ImageGeneration], error) {
	items, total, err := s.repo.List(ctx, userID, q)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	return &pagination.Page[ImageGeneration]{Items: items, Total: total, Params: q.Params}, nil
}

// Create validates and stores the image, asks the model for a prompt and
// records the result. The stored file is removed if a later step fails.
func (s *Service) Create(ctx context.Context, userID int64, filename string, r io.Reader) (*ImageGeneration, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	info, err := ValidateImage(data)
	if err != nil {
		return nil, err
	}

	rel, err := s.files.Put(StorageNamespace, StorageFilename(filename, info.Extension), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	prompt, err := s.generator.GeneratePromptFromImage(ctx, data, info.MimeType)
	if err != nil {
		s.discard(rel)
		return nil, &InferenceError{Err: err}
	}

	gen := &ImageGeneration{
		UserID:           userID,
		ImagePath:        rel,
		GeneratedPrompt:  prompt,
		OriginalFilename: filename,
		FileSize:         int64(len(data)),
		MimeType:         info.MimeType,
	}
	if err := s.repo.Create(ctx, gen); err != nil {
		s.discard(rel)
		return nil, fmt.Errorf("save generation: %w", err)
	}

	logger.Info("image generation created", logger.Fields{
		"generation_id": gen.ID,
		"user_id":       userID,
		"mime_type":     info.MimeType,
		"file_size":     gen.FileSize,
	})
	return gen, nil
}

func (s *Service) ToResponse(g *ImageGeneration) GenerationResponse {
	return GenerationResponse{
		ID:               g.ID,
		ImagePath:        g.ImagePath,
		ImageURL:         s.files.URL(g.ImagePath),
		GeneratedPrompt:  g.GeneratedPrompt,
		OriginalFilename: g.OriginalFilename,
		FileSize:         g.FileSize,
		MimeType:         g.MimeType,
		CreatedAt:        g.CreatedAt,
		UpdatedAt:        g.UpdatedAt,
	}
}

func (s *Service) discard(rel string) {
	if err := s.files.Delete(rel); err != nil {
		logger.Error("failed to remove stored image", logger.Fields{"path": rel, "error": err.Error()})
	}
}
