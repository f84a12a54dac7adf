package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// serverError hides internal error text in release mode; details are only
// useful (and safe) during development.
func serverError(c *gin.Context, message string, err error) {
	body := gin.H{"error": message}
	if gin.Mode() != gin.ReleaseMode && err != nil {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}
