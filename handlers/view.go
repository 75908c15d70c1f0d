package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dollpublish/dollpublish/internal/overrides"
)

const htmlContentType = "text/html; charset=utf-8"

// Index serves the owner's uploaded index.html.
func (h *Handler) Index(c *gin.Context) {
	b, err := h.files.Get(c.Param("username"), overrides.IndexFile)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, htmlContentType, b)
}

// View renders a published document as a full HTML page.
func (h *Handler) View(c *gin.Context) {
	page, err := h.docs.View(c.Request.Context(), c.Param("username"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, htmlContentType, []byte(page))
}

func (h *Handler) Attachment(c *gin.Context) {
	b, ctype, err := h.docs.Attachment(c.Request.Context(), c.Param("username"), c.Param("id"), c.Param("file"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, ctype, b)
}
