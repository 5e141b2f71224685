package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stationdesk/stationdesk/internal/auth"
)

// Login godoc
// @Summary Authenticate with username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body auth.LoginRequest true "Credentials"
// @Success 200 {object} auth.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func Login(authenticator auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req auth.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}

		resp, err := authenticator.Login(req.Username, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrAccountDisabled) {
				c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
				return
			}
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "login failed"})
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

// GetCurrentUser godoc
// @Summary Get the currently authenticated user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
func GetCurrentUser(authenticator auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := authenticator.GetUserFromContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			return
		}

		c.JSON(http.StatusOK, user)
	}
}
