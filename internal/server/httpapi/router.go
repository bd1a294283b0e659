package httpapi

import "github.com/gin-gonic/gin"

// NewRouter builds the route table. The status probe is public; everything
// else requires a valid bearer token.
func NewRouter(secretKey []byte, h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api/sync/status", h.Status)

	api := r.Group("/api")
	api.Use(Auth(secretKey))
	{
		api.POST("/sync/push", h.Push)
		api.POST("/sync/pull", h.Pull)
		api.POST("/photos/presign", h.PresignPhoto)
	}
	return r
}
