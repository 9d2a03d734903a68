package generation

import (
	"context"
	"io"
)

type RepositoryInterface interface {
	List(ctx context.Context, userID int64, q ListQuery) ([]ImageGeneration, int64, error)
	Create(ctx context.Context, g *ImageGeneration) error
}

// FileStore is the subset of the disk store the service needs.
type FileStore interface {
	Put(namespace, name string, r io.Reader) (string, error)
	Delete(rel string) error
	URL(rel string) string
}
