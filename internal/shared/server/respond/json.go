package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status. Bodies carry user
// documents and generated PDFs, so intermediaries must not store them.
func JSON(c *gin.Context, status int, payload any) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

// NoContent answers 204 without a body.
func NoContent(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.AbortWithStatus(http.StatusNoContent)
}
