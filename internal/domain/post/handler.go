package post

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"promptstudio/internal/pkg/logger"
	"promptstudio/internal/pkg/pagination"
	"promptstudio/internal/pkg/response"
	"promptstudio/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /api/v1/posts
// @Summary List my posts
// @Tags Posts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Page size (max 100)" default(15)
// @Success 200 {object} response.Response{data=[]Post}
// @Failure 401 {object} response.Response
// @Router /posts [get]
func (h *Handler) List(c *gin.Context) {
	page, err := h.service.List(c.Request.Context(), c.GetInt64("user_id"), pagination.FromQuery(c))
	if err != nil {
		h.internalError(c, err)
		return
	}
	response.Paginated(c, page.Items, page.Meta())
}

// Create handles POST /api/v1/posts
// @Summary Create post
// @Description The author is always the authenticated user; author_id in the body is ignored.
// @Tags Posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePostRequest true "Post"
// @Success 201 {object} response.Response{data=Post}
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /posts [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), &req)
	if err != nil {
		h.internalError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

// Get handles GET /api/v1/posts/:id
// @Summary Get post
// @Tags Posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} response.Response{data=Post}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /posts/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}

	p, err := h.service.Authorize(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// Update handles PUT/PATCH /api/v1/posts/:id
// @Summary Update post
// @Description Ownership is checked before the body is validated.
// @Tags Posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body UpdatePostRequest true "Post"
// @Success 200 {object} response.Response{data=Post}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /posts/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}

	p, err := h.service.Authorize(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	var req UpdatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err = h.service.Update(c.Request.Context(), p, &req)
	if err != nil {
		h.internalError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// Delete handles DELETE /api/v1/posts/:id
// @Summary Delete post
// @Tags Posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 204
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /posts/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.GetInt64("user_id"), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrPostNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Post not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access forbidden")
	default:
		h.internalError(c, err)
	}
}

func (h *Handler) internalError(c *gin.Context, err error) {
	logger.Error("post request failed", logger.Fields{
		"error":   err.Error(),
		"path":    c.Request.URL.Path,
		"user_id": c.GetInt64("user_id"),
	})
	response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}

func postID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return 0, false
	}
	return id, true
}

// bindJSON decodes and validates the body. An empty body is validated as an
// empty payload so missing fields surface as 422.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return false
	}
	if errs := validator.Validate(dst); errs != nil {
		response.ValidationFailed(c, errs)
		return false
	}
	return true
}
