package generation

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"promptstudio/internal/pkg/logger"
	"promptstudio/internal/pkg/pagination"
	"promptstudio/internal/pkg/response"
)

// maxRequestBody caps what is read from the wire. Anything between
// MaxImageSize and this limit is rejected by ValidateImage.
const maxRequestBody = 2 * MaxImageSize

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /api/v1/image-generations
// @Summary List my image generations
// @Tags Image Generations
// @Produce json
// @Security BearerAuth
// @Param search query string false "Case-insensitive match on generated_prompt"
// @Param sort query string false "created_at, generated_prompt, original_filename or file_size; prefix with - for descending" default(-created_at)
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Page size (max 100)" default(15)
// @Success 200 {object} response.Response{data=[]GenerationResponse}
// @Failure 401 {object} response.Response
// @Router /image-generations [get]
func (h *Handler) List(c *gin.Context) {
	q := ListQuery{
		Search: strings.TrimSpace(c.Query("search")),
		Sort:   ParseSort(c.Query("sort")),
		Params: pagination.FromQuery(c),
	}

	page, err := h.service.List(c.Request.Context(), c.GetInt64("user_id"), q)
	if err != nil {
		h.internalError(c, err)
		return
	}

	items := make([]GenerationResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, h.service.ToResponse(&page.Items[i]))
	}
	response.Paginated(c, items, page.Meta())
}

// Create handles POST /api/v1/image-generations
// @Summary Generate a prompt from an image
// @Description Stores the image, sends it to the vision model and saves the returned prompt.
// @Tags Image Generations
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "jpeg, png, gif or svg; 1KB to 10MB; 100x100 to 10000x10000 px"
// @Success 201 {object} response.Response{data=GenerationResponse}
// @Failure 422 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /image-generations [post]
func (h *Handler) Create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBody)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			h.validationError(c, invalidImage(msgTooLarge))
		case errors.Is(err, http.ErrMissingFile):
			h.validationError(c, invalidImage(msgRequired))
		default:
			if c.ContentType() != gin.MIMEMultipartPOSTForm {
				h.validationError(c, invalidImage(msgRequired))
				return
			}
			h.validationError(c, invalidImage(msgInvalid))
		}
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.validationError(c, invalidImage(msgInvalid))
		return
	}
	defer file.Close()

	gen, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), fileHeader.Filename, file)
	if err != nil {
		var verr *ValidationError
		var ierr *InferenceError
		switch {
		case errors.As(err, &verr):
			h.validationError(c, verr)
		case errors.As(err, &ierr):
			logger.Error("prompt generation failed", logger.Fields{
				"error":   ierr.Error(),
				"user_id": c.GetInt64("user_id"),
			})
			response.Error(c, http.StatusBadGateway, "INFERENCE_FAILED", "Failed to generate a prompt from the image")
		default:
			h.internalError(c, err)
		}
		return
	}

	response.Success(c, http.StatusCreated, h.service.ToResponse(gen))
}

func (h *Handler) validationError(c *gin.Context, err *ValidationError) {
	response.ValidationFailed(c, map[string]string{err.Field: err.Message})
}

func (h *Handler) internalError(c *gin.Context, err error) {
	logger.Error("image generation request failed", logger.Fields{
		"error":   err.Error(),
		"path":    c.Request.URL.Path,
		"user_id": c.GetInt64("user_id"),
	})
	response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}
