package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stationdesk/stationdesk/internal/auth"
	"github.com/stationdesk/stationdesk/internal/rbac"
)

// RequireAdmin ensures the authenticated user holds the admin role
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.UserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		isAdmin, err := rbac.IsAdmin(user.ID)
		if err != nil || !isAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
