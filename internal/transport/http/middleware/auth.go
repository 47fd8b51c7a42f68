package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const errNotAuthorized = "Not authorized to access this route"

// TokenVerifier is the subset of AuthUsecase the middleware needs.
type TokenVerifier interface {
	VerifyToken(rawToken string) (string, error)
}

// Auth validates a Bearer session token and sets "userID" in the gin
// context. Missing, malformed, expired, and mis-signed tokens all
// produce the same 401.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c)
			return
		}

		userID, err := verifier.VerifyToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": errNotAuthorized,
	})
}
