package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"example.com/freightline/services/settlement/internal/auth"
	"example.com/freightline/services/settlement/internal/models"
	"example.com/freightline/services/settlement/internal/service"
)

// UserContextKey is the gin context key the authenticated user is stored under
const UserContextKey = "current_user"

// Protect validates the bearer token and loads the account onto the context
func Protect(tokens *auth.Manager, svc service.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid Authorization header format. Expected: 'Bearer {token}'",
			})
			c.Abort()
			return
		}

		claims, err := tokens.VerifyToken(parts[1])
		if err != nil {
			log.WithError(err).Warn("Invalid token")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		user, err := svc.GetUser(c.Request.Context(), claims.UserID)
		if err != nil {
			log.WithError(err).Warn("Token for unknown account")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(UserContextKey, user)
		c.Next()
	}
}

// RequireElevated restricts a route to roles that may manage carriers
// and settlements. Must run after Protect.
func RequireElevated() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		if !user.Role.Elevated() {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentUser returns the authenticated account, or nil outside Protect
func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get(UserContextKey)
	if !ok {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
