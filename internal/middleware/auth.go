package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/textify/internal/models"
)

// userContextKey is where JWTAuth stores the authenticated user.
const userContextKey = "textify.user"

// TokenAuthenticator verifies a bearer token and returns its owner.
type TokenAuthenticator interface {
	Authenticate(token string) (models.PublicUser, error)
}

// JWTAuth returns middleware that requires a valid session token.
// The token should be provided in the Authorization header as "Bearer <token>".
// Requests without a valid token are rejected before any handler runs.
func JWTAuth(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			return
		}

		user, err := auth.Authenticate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
				"code":  "AUTH_INVALID_TOKEN",
			})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by JWTAuth.
func CurrentUser(c *gin.Context) (models.PublicUser, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return models.PublicUser{}, false
	}
	user, ok := v.(models.PublicUser)
	return user, ok
}

// bearerToken extracts the token or aborts the request with 401.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "Authorization header required",
			"code":  "AUTH_REQUIRED",
		})
		return "", false
	}

	// Expect "Bearer <token>" format
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid authorization format. Use: Bearer <token>",
			"code":  "AUTH_INVALID_FORMAT",
		})
		return "", false
	}

	return strings.TrimSpace(parts[1]), true
}
