package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fabienng71/Rclx-sub001/models"
	"github.com/fabienng71/Rclx-sub001/repository"
	"github.com/fabienng71/Rclx-sub001/utils"
)

const currentUserKey = "currentUser"

// RequireAuth validates the bearer token and loads the caller into the gin context.
func RequireAuth(creds *repository.CredentialStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			utils.ErrorResponse(c, "Missing Authorization header", http.StatusUnauthorized)
			return
		}

		userID, err := creds.VerifyToken(token)
		if err != nil {
			utils.ErrorResponse(c, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()
		user, err := creds.GetUser(ctx, userID)
		if err != nil {
			// Deleted accounts lose access immediately, even with a live token.
			if errors.Is(err, repository.ErrNotFound) {
				utils.ErrorResponse(c, "Invalid session", http.StatusUnauthorized)
				return
			}
			log.Printf("auth: failed to load user %s: %v", userID, err)
			utils.ErrorResponse(c, "Failed to validate session", http.StatusInternalServerError)
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok || !user.IsAdmin() {
			utils.ErrorResponse(c, "Admin access required", http.StatusForbidden)
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func currentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

// respondError maps store errors onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		utils.ErrorResponse(c, err.Error(), http.StatusNotFound)
	case errors.Is(err, repository.ErrDuplicateEmail), errors.Is(err, repository.ErrDuplicateQuotation):
		utils.ErrorResponse(c, err.Error(), http.StatusConflict)
	case errors.Is(err, repository.ErrInvalidCredential):
		utils.ErrorResponse(c, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, repository.ErrValidation):
		utils.ErrorResponse(c, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("request %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		utils.ErrorResponse(c, "Internal server error", http.StatusInternalServerError)
	}
}
