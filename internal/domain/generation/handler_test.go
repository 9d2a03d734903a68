package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"promptstudio/internal/database"
	"promptstudio/internal/storage"
)

const (
	userA int64 = 1
	userB int64 = 2
)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	root   string
	gen    *mockGenerator
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&ImageGeneration{}))

	root := t.TempDir()
	gen := new(mockGenerator)
	h := NewHandler(NewService(NewRepository(db), storage.NewDisk(root, "/storage"), gen))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id, err := strconv.ParseInt(c.GetHeader("X-Test-User-ID"), 10, 64); err == nil {
			c.Set("user_id", id)
		}
		c.Next()
	})
	h.RegisterRoutes(r.Group("/api/v1"))

	return &testEnv{router: r, db: db, root: root, gen: gen}
}

func upload(t *testing.T, r http.Handler, field, filename string, data []byte, userID int64) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/image-generations", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Test-User-ID", strconv.FormatInt(userID, 10))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

type errorEnvelope struct {
	Error struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func imageError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	return env.Error.Details["image"]
}

func countRows(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&ImageGeneration{}).Count(&n).Error)
	return n
}

func TestCreate_Success(t *testing.T) {
	env := setupTestRouter(t)
	img := pngOf(t, 120, 120, true)
	env.gen.On("GeneratePromptFromImage", mock.Anything, img, "image/png").Return("a cat on a sofa", nil)

	rr := upload(t, env.router, "image", "My Cat.png", img, userA)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp struct {
		Data GenerationResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "a cat on a sofa", resp.Data.GeneratedPrompt)
	assert.Equal(t, "My Cat.png", resp.Data.OriginalFilename)
	assert.Equal(t, int64(len(img)), resp.Data.FileSize)
	assert.Equal(t, "image/png", resp.Data.MimeType)
	assert.Regexp(t, `^uploads/images/My_Cat_[0-9a-f]{32}\.png$`, resp.Data.ImagePath)
	assert.Equal(t, "/storage/"+resp.Data.ImagePath, resp.Data.ImageURL)

	var stored ImageGeneration
	require.NoError(t, env.db.First(&stored, resp.Data.ID).Error)
	assert.Equal(t, userA, stored.UserID)

	_, err := os.Stat(filepath.Join(env.root, filepath.FromSlash(stored.ImagePath)))
	assert.NoError(t, err)
}

func TestCreate_RejectsSmallDimensions(t *testing.T) {
	env := setupTestRouter(t)

	rr := upload(t, env.router, "image", "tiny.png", pngOf(t, 50, 50, true), userA)
	assert.Equal(t, msgDimensions, imageError(t, rr))
	assert.Equal(t, int64(0), countRows(t, env.db))
}

func TestCreate_RejectsOversizedJPEG(t *testing.T) {
	env := setupTestRouter(t)

	rr := upload(t, env.router, "image", "huge.jpg", jpegOfSize(11*1024*1024), userA)
	assert.Equal(t, msgTooLarge, imageError(t, rr))
	assert.Equal(t, int64(0), countRows(t, env.db))
}

func TestCreate_MissingImage(t *testing.T) {
	env := setupTestRouter(t)

	rr := upload(t, env.router, "", "", nil, userA)
	assert.Equal(t, msgRequired, imageError(t, rr))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/image-generations", nil)
	req.Header.Set("X-Test-User-ID", "1")
	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	assert.Equal(t, msgRequired, imageError(t, rr))
}

func TestCreate_InferenceFailure(t *testing.T) {
	env := setupTestRouter(t)
	env.gen.On("GeneratePromptFromImage", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("upstream 500"))

	rr := upload(t, env.router, "image", "cat.png", pngOf(t, 120, 120, true), userA)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "INFERENCE_FAILED")
	assert.Equal(t, int64(0), countRows(t, env.db))
	assert.Empty(t, storedFiles(t, env.root))
}

func seedGeneration(t *testing.T, db *gorm.DB, userID int64, prompt, filename string, size int64, createdAt time.Time) {
	t.Helper()
	require.NoError(t, NewRepository(db).Create(context.Background(), &ImageGeneration{
		UserID:           userID,
		ImagePath:        "uploads/images/" + filename,
		GeneratedPrompt:  prompt,
		OriginalFilename: filename,
		FileSize:         size,
		MimeType:         "image/png",
		CreatedAt:        createdAt,
	}))
}

func list(t *testing.T, r http.Handler, query string, userID int64) ([]GenerationResponse, int64) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/image-generations"+query, nil)
	req.Header.Set("X-Test-User-ID", strconv.FormatInt(userID, 10))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var env struct {
		Data []GenerationResponse `json:"data"`
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env.Data, env.Meta.Total
}

func seedHistory(t *testing.T, db *gorm.DB) {
	t.Helper()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	seedGeneration(t, db, userA, "A black CAT on a roof", "roof.png", 3000, base)
	seedGeneration(t, db, userA, "a sunset over the sea", "sea.png", 9000, base.Add(time.Hour))
	seedGeneration(t, db, userA, "Two cats playing", "cats.png", 1500, base.Add(2*time.Hour))
	seedGeneration(t, db, userA, "100% bicat_ratio", "pct.png", 5000, base.Add(3*time.Hour))
	seedGeneration(t, db, userB, "a cat owned by someone else", "other.png", 7000, base.Add(4*time.Hour))
}

func TestList_SearchIsCaseInsensitiveAndOwnerScoped(t *testing.T) {
	env := setupTestRouter(t)
	seedHistory(t, env.db)

	items, total := list(t, env.router, "?search=cat", userA)
	assert.Equal(t, int64(3), total)
	for _, it := range items {
		assert.Contains(t, []string{"roof.png", "cats.png", "pct.png"}, it.OriginalFilename)
	}

	items, _ = list(t, env.router, "?search=100%25", userA)
	require.Len(t, items, 1)
	assert.Equal(t, "pct.png", items[0].OriginalFilename)

	items, _ = list(t, env.router, "?search=k_c", userA)
	assert.Empty(t, items)
}

func TestList_SortDescendingFileSize(t *testing.T) {
	env := setupTestRouter(t)
	seedHistory(t, env.db)

	items, _ := list(t, env.router, "?sort=-file_size", userA)
	require.Len(t, items, 4)
	for i := 1; i < len(items); i++ {
		assert.GreaterOrEqual(t, items[i-1].FileSize, items[i].FileSize)
	}

	items, _ = list(t, env.router, "?sort=original_filename", userA)
	require.Len(t, items, 4)
	assert.Equal(t, "cats.png", items[0].OriginalFilename)
	assert.Equal(t, "sea.png", items[3].OriginalFilename)
}

func TestList_UnknownSortFallsBackToNewestFirst(t *testing.T) {
	env := setupTestRouter(t)
	seedHistory(t, env.db)

	for _, q := range []string{"", "?sort=password", "?sort=-user_id"} {
		items, _ := list(t, env.router, q, userA)
		require.Len(t, items, 4, q)
		assert.Equal(t, "pct.png", items[0].OriginalFilename, q)
		assert.Equal(t, "roof.png", items[3].OriginalFilename, q)
	}
}

func TestList_Pagination(t *testing.T) {
	env := setupTestRouter(t)
	seedHistory(t, env.db)

	items, total := list(t, env.router, "?per_page=3&page=2", userA)
	assert.Equal(t, int64(4), total)
	require.Len(t, items, 1)
	assert.Equal(t, "roof.png", items[0].OriginalFilename)
}
