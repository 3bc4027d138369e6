package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/your-org/sightline/internal/models"
	"github.com/your-org/sightline/internal/storage"
)

const userContextKey = "sightline.user"

// Middleware validates the Authorization header bearer token and resolves it
// to a stored user. Requests without a valid token are rejected with 401; a
// token for a user that no longer exists is rejected too.
func Middleware(issuer *Issuer, store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			unauthorized(c, "missing bearer token")
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			unauthorized(c, "malformed authorization header")
			return
		}

		username, err := issuer.Verify(token)
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}

		user, err := store.GetUserByUsername(c.Request.Context(), username)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if user == nil {
			unauthorized(c, "user not found")
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the user resolved by Middleware for this request.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
