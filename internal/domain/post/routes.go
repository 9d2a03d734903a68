package post

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	posts := protected.Group("/posts")
	{
		posts.GET("", h.List)
		posts.POST("", h.Create)
		posts.GET("/:id", h.Get)
		posts.PUT("/:id", h.Update)
		posts.PATCH("/:id", h.Update)
		posts.DELETE("/:id", h.Delete)
	}
}
