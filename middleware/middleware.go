package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tieubaoca/docproc-be/types"
)

// APIKeyMiddleware guards admin routes with a static key passed in the
// X-API-Key header.
func APIKeyMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, types.DataResponse{
				Status:  "error",
				Message: "Admin API is not configured",
			})
			return
		}

		provided := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, types.DataResponse{
				Status:  "error",
				Message: "Invalid API key",
			})
			return
		}

		c.Next()
	}
}
