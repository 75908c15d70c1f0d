package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dollpublish/dollpublish/internal/apperr"
	"github.com/dollpublish/dollpublish/pkg/middleware"
)

// GetFile returns the caller's raw template.html or index.html.
func (h *Handler) GetFile(c *gin.Context) {
	b, err := h.files.Get(middleware.Username(c), c.Param("filename"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", b)
}

// PutFile replaces the caller's template.html or index.html with the request body.
func (h *Handler) PutFile(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		respondError(c, apperr.Invalid("unreadable body"))
		return
	}
	if err := h.files.Put(middleware.Username(c), c.Param("filename"), body); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}
