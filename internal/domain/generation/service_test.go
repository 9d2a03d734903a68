package generation

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"promptstudio/internal/storage"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) List(ctx context.Context, userID int64, q ListQuery) ([]ImageGeneration, int64, error) {
	args := m.Called(ctx, userID, q)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]ImageGeneration), args.Get(1).(int64), args.Error(2)
}

func (m *mockRepo) Create(ctx context.Context, g *ImageGeneration) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) GeneratePromptFromImage(ctx context.Context, image []byte, mimeType string) (string, error) {
	args := m.Called(ctx, image, mimeType)
	return args.String(0), args.Error(1)
}

func storedFiles(t *testing.T, root string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(root, "uploads", "images"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestService_Create_Success(t *testing.T) {
	root := t.TempDir()
	repo := new(mockRepo)
	gen := new(mockGenerator)
	svc := NewService(repo, storage.NewDisk(root, "/storage"), gen)

	img := pngOf(t, 120, 120, true)
	gen.On("GeneratePromptFromImage", mock.Anything, img, "image/png").Return("a noisy grey square", nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*generation.ImageGeneration")).
		Run(func(args mock.Arguments) { args.Get(1).(*ImageGeneration).ID = 9 }).
		Return(nil)

	g, err := svc.Create(context.Background(), 3, "noise.png", bytes.NewReader(img))
	require.NoError(t, err)

	assert.Equal(t, int64(3), g.UserID)
	assert.Equal(t, "a noisy grey square", g.GeneratedPrompt)
	assert.Equal(t, "noise.png", g.OriginalFilename)
	assert.Equal(t, int64(len(img)), g.FileSize)
	assert.Equal(t, "image/png", g.MimeType)
	assert.Regexp(t, `^uploads/images/noise_[0-9a-f]{32}\.png$`, g.ImagePath)

	stored, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(g.ImagePath)))
	require.NoError(t, err)
	assert.Equal(t, img, stored)

	resp := svc.ToResponse(g)
	assert.Equal(t, "/storage/"+g.ImagePath, resp.ImageURL)

	repo.AssertExpectations(t)
	gen.AssertExpectations(t)
}

func TestService_Create_InferenceFailureRemovesFile(t *testing.T) {
	root := t.TempDir()
	repo := new(mockRepo)
	gen := new(mockGenerator)
	svc := NewService(repo, storage.NewDisk(root, "/storage"), gen)

	gen.On("GeneratePromptFromImage", mock.Anything, mock.Anything, "image/png").Return("", errors.New("timeout"))

	_, err := svc.Create(context.Background(), 3, "noise.png", bytes.NewReader(pngOf(t, 120, 120, true)))
	var ierr *InferenceError
	require.ErrorAs(t, err, &ierr)
	assert.EqualError(t, ierr.Err, "timeout")

	assert.Empty(t, storedFiles(t, root))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Create_RepositoryFailureRemovesFile(t *testing.T) {
	root := t.TempDir()
	repo := new(mockRepo)
	gen := new(mockGenerator)
	svc := NewService(repo, storage.NewDisk(root, "/storage"), gen)

	gen.On("GeneratePromptFromImage", mock.Anything, mock.Anything, mock.Anything).Return("prompt", nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	_, err := svc.Create(context.Background(), 3, "noise.png", bytes.NewReader(pngOf(t, 120, 120, true)))
	assert.Error(t, err)
	assert.Empty(t, storedFiles(t, root))
}

func TestService_Create_InvalidImageStoresNothing(t *testing.T) {
	root := t.TempDir()
	gen := new(mockGenerator)
	svc := NewService(new(mockRepo), storage.NewDisk(root, "/storage"), gen)

	_, err := svc.Create(context.Background(), 3, "tiny.png", bytes.NewReader(pngOf(t, 50, 50, true)))
	assert.Equal(t, msgDimensions, validationMessage(t, err))

	assert.Empty(t, storedFiles(t, root))
	gen.AssertNotCalled(t, "GeneratePromptFromImage", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Create_OversizedStreamIsCut(t *testing.T) {
	svc := NewService(new(mockRepo), storage.NewDisk(t.TempDir(), "/storage"), new(mockGenerator))

	_, err := svc.Create(context.Background(), 3, "big.jpg", bytes.NewReader(jpegOfSize(11*1024*1024)))
	assert.Equal(t, msgTooLarge, validationMessage(t, err))
}
