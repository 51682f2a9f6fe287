package middleware

import (
	"net/http"
	"strings"

	"go-pos-local/internal/auth"
	"go-pos-local/internal/models"

	"github.com/gin-gonic/gin"
)

// SessionSource reports the user currently logged in at the terminal.
type SessionSource interface {
	CurrentUser() (models.User, bool)
}

// AuthMiddleware checks for a valid JWT token that belongs to the terminal's
// active session. Logging out at the terminal invalidates older tokens.
func AuthMiddleware(sessions SessionSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get the token from the "Authorization" header
		// Format: "Bearer <token>"
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		// 2. Remove the "Bearer " prefix
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer"})
			c.Abort()
			return
		}

		// 3. Validate the token using our auth package
		claims, err := auth.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// 4. The token must still match the session held by the terminal
		user, ok := sessions.CurrentUser()
		if !ok || user.ID != claims.UserID {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session has ended, please log in again"})
			c.Abort()
			return
		}

		// 5. Store user info in the context for the next handler to use
		c.Set("userID", user.ID)
		c.Set("role", string(user.Role))
		c.Set("user", user)

		c.Next()
	}
}

// RequireRole is a secondary guard that checks for specific permissions
func RequireRole(allowedRole models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || role != string(allowedRole) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get("user")
	if !ok {
		return models.User{}, false
	}
	u, ok := v.(models.User)
	return u, ok
}
