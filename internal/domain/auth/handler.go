package auth

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"promptstudio/internal/pkg/logger"
	"promptstudio/internal/pkg/response"
	"promptstudio/internal/pkg/validator"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Login issues an access token for valid credentials.
// @Summary		Login
// @Description	Exchanges email and password for a bearer token. Five failed attempts per email and IP lock the pair for the decay window.
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		body	body		LoginRequest	true	"credentials"
// @Success		200		{object}	response.Response{data=LoginResponse}
// @Failure		302		"already authenticated"
// @Failure		422		{object}	response.Response
// @Router		/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationFailed(c, errs)
		return
	}

	result, err := h.service.Login(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		var lockout *LockoutError
		switch {
		case errors.As(err, &lockout):
			seconds := int(math.Ceil(lockout.RetryAfter.Seconds()))
			response.ValidationFailed(c, map[string]string{
				"email": fmt.Sprintf("Too many login attempts. Please try again in %d seconds.", seconds),
			})
		case errors.Is(err, ErrInvalidCredentials):
			response.ValidationFailed(c, map[string]string{
				"email": "These credentials do not match our records.",
			})
		default:
			logger.Error("login failed", logger.Fields{"error": err.Error()})
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to login")
		}
		return
	}

	response.Success(c, http.StatusOK, LoginResponse{
		User:  ToUserResponse(result.User),
		Token: result.AccessToken,
	})
}

// Me returns the authenticated user.
// @Summary		Current user
// @Tags		Auth
// @Security	BearerAuth
// @Produce		json
// @Success		200	{object}	response.Response{data=UserResponse}
// @Failure		401	{object}	response.Response
// @Router		/user [get]
func (h *Handler) Me(c *gin.Context) {
	user, err := h.service.Me(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		logger.Error("load current user failed", logger.Fields{"error": err.Error()})
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load user")
		return
	}

	response.Success(c, http.StatusOK, ToUserResponse(user))
}
