package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/dollpublish/dollpublish/internal/apperr"
	"github.com/dollpublish/dollpublish/pkg/logger"
)

// respondError writes {"error": msg} with the status class of err. Causes of internal
// errors are logged, never returned.
func respondError(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status >= 500 {
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": apperr.Message(err)})
}
