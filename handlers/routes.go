package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/dollpublish/dollpublish/internal/document/service"
	"github.com/dollpublish/dollpublish/internal/overrides"
)

// Handler serves the management API under /_moon and /_files and the public site.
type Handler struct {
	docs  *service.Service
	files *overrides.Store
}

func New(docs *service.Service, files *overrides.Store) *Handler {
	return &Handler{docs: docs, files: files}
}

// Register mounts every route on r. guard runs in order before each authenticated route;
// it must end with middleware.RequireCredentials.
func (h *Handler) Register(r *gin.Engine, guard ...gin.HandlerFunc) {
	moon := r.Group("/_moon", guard...)
	moon.POST("/publish", h.Publish)
	moon.POST("/publish/:id", h.Republish)
	moon.POST("/unpublish/:id", h.Unpublish)
	moon.GET("/detail/:id", h.Detail)

	files := r.Group("/_files", guard...)
	files.GET("/:filename", h.GetFile)
	files.PUT("/:filename", h.PutFile)

	r.GET("/:username/", h.Index)
	r.GET("/:username/:id/", h.View)
	r.GET("/:username/:id/attachments/:file", h.Attachment)
}
