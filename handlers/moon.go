package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dollpublish/dollpublish/internal/apperr"
	"github.com/dollpublish/dollpublish/internal/document"
	"github.com/dollpublish/dollpublish/pkg/middleware"
)

// publishRequest mirrors document.Document with every field but attachments required.
type publishRequest struct {
	Name        *string            `json:"name"`
	Path        *string            `json:"path"`
	Metadata    *document.Metadata `json:"metadata"`
	Content     *string            `json:"content"`
	Attachments map[string]string  `json:"attachments"`
}

func bindDocument(c *gin.Context) (*document.Document, error) {
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, apperr.Invalid("malformed document: %v", err)
	}
	switch {
	case req.Name == nil:
		return nil, apperr.Invalid("missing field name")
	case req.Path == nil:
		return nil, apperr.Invalid("missing field path")
	case req.Metadata == nil:
		return nil, apperr.Invalid("missing field metadata")
	case req.Content == nil:
		return nil, apperr.Invalid("missing field content")
	}
	return &document.Document{
		Name:        *req.Name,
		Path:        *req.Path,
		Metadata:    *req.Metadata,
		Content:     *req.Content,
		Attachments: req.Attachments,
	}, nil
}

// Publish stores a new document, or replaces the one named by metadata.id.
func (h *Handler) Publish(c *gin.Context) {
	doc, err := bindDocument(c)
	if err != nil {
		respondError(c, err)
		return
	}
	meta, err := h.docs.Publish(c.Request.Context(), middleware.Username(c), doc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}

// Republish stores the document at the id in the path.
func (h *Handler) Republish(c *gin.Context) {
	doc, err := bindDocument(c)
	if err != nil {
		respondError(c, err)
		return
	}
	meta, err := h.docs.Republish(c.Request.Context(), middleware.Username(c), c.Param("id"), doc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}

func (h *Handler) Unpublish(c *gin.Context) {
	meta, err := h.docs.Unpublish(c.Request.Context(), middleware.Username(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}

func (h *Handler) Detail(c *gin.Context) {
	doc, err := h.docs.Detail(c.Request.Context(), middleware.Username(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}
