package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fabienng71/Rclx-sub001/models"
	"github.com/fabienng71/Rclx-sub001/repository"
	"github.com/fabienng71/Rclx-sub001/utils"
)

// LoginHandler godoc
// @Summary Login user
// @Description Authenticate with email and password and return a 30 minute access token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/login [post]
func LoginHandler(creds *repository.CredentialStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, "Invalid input", http.StatusBadRequest)
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		origin := models.LoginOrigin{IPAddress: c.ClientIP(), UserAgent: c.Request.UserAgent()}
		res, err := creds.Authenticate(ctx, req.Email, req.Password, origin)
		if err != nil {
			// Unknown email and wrong password look the same from outside.
			if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidCredential) {
				utils.ErrorResponse(c, "Invalid email or password", http.StatusUnauthorized)
				return
			}
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.LoginResponse{
			Message:     "Login successful",
			AccessToken: res.Token,
			ExpiresAt:   res.ExpiresAt,
			IsAdmin:     res.User.IsAdmin(),
			User:        res.User,
		})
	}
}

// MeHandler godoc
// @Summary Current user
// @Description Return the account behind the bearer token
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /api/me [get]
func MeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			utils.ErrorResponse(c, "Not authenticated", http.StatusUnauthorized)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
