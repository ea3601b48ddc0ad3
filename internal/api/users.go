package api

import (
	"net/http" // HTTP status codes

	"finance_tracker/internal/middleware" // Authenticated principal
	"finance_tracker/internal/service"    // User use cases

	"github.com/gin-gonic/gin" // Gin web framework
)

// Request struct for registration and login
type CredentialsRequest struct {
	Username string `json:"username"` // Checked by the user service
	Password string `json:"password"` // Checked by the user service
}

// Response struct for authentication
type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

// Request struct for changing the password
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"` // Current password
	NewPassword string `json:"newPassword" binding:"required"` // Replacement password
}

// RegisterHandler creates a CLIENT account
func RegisterHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CredentialsRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		user, err := users.Register(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CredentialsRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		token, err := users.Authenticate(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}

// ChangePasswordHandler replaces the caller's password
func ChangePasswordHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			respondStatus(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		var req ChangePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "oldPassword and newPassword are required")
			return
		}
		user, err := users.ChangePassword(c.Request.Context(), p, req.OldPassword, req.NewPassword)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// GetUserHandler returns a user by username
func GetUserHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.GetUser(c.Request.Context(), c.Param("username"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// DeleteUserHandler deletes a user and its transactions. Admins may delete anyone.
func DeleteUserHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			respondStatus(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		deleted, err := users.DeleteUser(c.Request.Context(), p, c.Param("username"))
		if err != nil {
			respondError(c, err)
			return
		}
		if !deleted {
			respondStatus(c, http.StatusInternalServerError, "User could not be deleted")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
	}
}
