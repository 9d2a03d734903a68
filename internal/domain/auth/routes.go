package auth

import "github.com/gin-gonic/gin"

// RegisterPublicRoutes mounts login behind the guest-only guard.
func (h *Handler) RegisterPublicRoutes(api *gin.RouterGroup, guest gin.HandlerFunc) {
	api.POST("/login", guest, h.Login)
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.GET("/user", h.Me)
}
