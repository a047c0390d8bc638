package api

import (
	"net/http" // HTTP status codes
	"time"     // Token lifetime

	"joja_garden/internal/domain"     // Importing domain models
	"joja_garden/internal/utils"      // Utility functions
	"joja_garden/internal/validation" // CPF normalization

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// LoginRequest carries the CPF in "username", as OAuth2 password forms do
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"` // CPF, punctuation allowed
	Password string `form:"password" json:"password" binding:"required"`
}

// TokenResponse is the bearer token handed out on login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// LoginHandler authenticates by CPF and password and returns a JWT
func LoginHandler(db *gorm.DB, jwtSecret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		// Accepts urlencoded forms and JSON bodies
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message(err)})
			return
		}
		var user domain.User
		err := db.WithContext(c.Request.Context()).
			Where("cpf = ?", validation.NormalizeCPF(req.Username)).
			First(&user).Error
		// Same answer for unknown CPF and wrong password
		if err != nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
			logrus.WithField("client_ip", c.ClientIP()).Warn("Login failed")
			c.Header("WWW-Authenticate", "Bearer")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid CPF or password"})
			return
		}
		token, err := utils.GenerateJWT(user.ID, user.Role, user.CPF, jwtSecret, ttl)
		if err != nil {
			serverError(c, "Failed to generate token", err, logrus.Fields{"user_id": user.ID})
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("User logged in")
		c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
	}
}
