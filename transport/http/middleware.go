package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/portcullis-gate/portcullis/service"
)

// SessionMiddleware creates middleware that gates access on a valid session
// cookie. Requests without one are denied; the reason is never detailed.
func SessionMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cred, err := c.Cookie(SessionCookie)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		address, err := authService.CheckSession(c.Request.Context(), cred)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		// Set the user address in the context
		c.Set("userAddress", address)

		c.Next()
	}
}
