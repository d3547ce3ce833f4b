package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fabienng71/Rclx-sub001/models"
	"github.com/fabienng71/Rclx-sub001/repository"
	"github.com/fabienng71/Rclx-sub001/utils"
)

// GetUsersHandler godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.User
// @Failure 403 {object} models.ErrorResponse
// @Router /api/users [get]
func GetUsersHandler(creds *repository.CredentialStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		users, err := creds.ListUsers(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

// GetUserHandler godoc
// @Summary Get user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /api/users/{id} [get]
func GetUserHandler(creds *repository.CredentialStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		user, err := creds.GetUser(ctx, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// CreateUserHandler godoc
// @Summary Create user
// @Description Create an account. Role defaults to "user".
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateUserInput true "New account"
// @Success 201 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/users [post]
func CreateUserHandler(creds *repository.CredentialStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.CreateUserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.ErrorResponse(c, "Invalid input: "+err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		user, err := creds.CreateUser(ctx, input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

// UpdateUserHandler godoc
// @Summary Update user
// @Description Merge the supplied fields into the account. A new password is re-hashed.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body models.UpdateUserInput true "Fields to change"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/users/{id} [put]
func UpdateUserHandler(creds *repository.CredentialStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch models.UpdateUserInput
		if err := c.ShouldBindJSON(&patch); err != nil {
			utils.ErrorResponse(c, "Invalid input: "+err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		user, err := creds.UpdateUser(ctx, c.Param("id"), patch)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// DeleteUserHandler godoc
// @Summary Delete user
// @Description Permanently remove an account. Saved quotations keep their sender details.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/users/{id} [delete]
func DeleteUserHandler(creds *repository.CredentialStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if me, ok := currentUser(c); ok && me.ID == id {
			utils.ErrorResponse(c, "You cannot delete your own account", http.StatusBadRequest)
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		if err := creds.DeleteUser(ctx, id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.MessageResponse{Message: "User deleted"})
	}
}
