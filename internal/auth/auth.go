package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/stationdesk/stationdesk/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrAccountDisabled    = errors.New("account disabled")
)

// UserContextKey is the key used to store the authenticated user in the Gin context
const UserContextKey = "user"

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Authenticator is an interface for authentication providers
type Authenticator interface {
	// Login authenticates a user and returns a JWT token
	Login(username, password string) (*LoginResponse, error)

	// Middleware returns a Gin middleware for authentication
	Middleware() gin.HandlerFunc

	// GetUserFromContext extracts the authenticated user from the Gin context
	GetUserFromContext(c *gin.Context) (*models.User, error)
}

// UserFromContext returns the authenticated user stored by the auth
// middleware, if any. This is the actor boundary consumed by the audit
// subsystem: no user in context means the request is anonymous.
func UserFromContext(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(UserContextKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
