package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// APIKeyAuth guards the admin surface. Accepted keys are configured as
// bcrypt hashes so a leaked environment dump does not hand out admin
// access.
func APIKeyAuth(keyHashes []string) gin.HandlerFunc {
	hashes := make([][]byte, len(keyHashes))
	for i, h := range keyHashes {
		hashes[i] = []byte(h)
	}

	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			return
		}

		for _, hash := range hashes {
			if bcrypt.CompareHashAndPassword(hash, []byte(key)) == nil {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
	}
}
