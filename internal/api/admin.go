package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"joja_garden/internal/domain"     // Importing domain models
	"joja_garden/internal/middleware" // Auth context helpers
	"joja_garden/internal/utils"      // Utility functions
	"joja_garden/internal/validation" // CPF normalization

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// CreateAdminRequest is the body of POST /admins
type CreateAdminRequest struct {
	Name         string `json:"name" binding:"required"`
	CPF          string `json:"cpf" binding:"required,cpf"`
	Password     string `json:"password" binding:"required,password"`
	Registration string `json:"registration"`
}

// CreateAdminHandler registers an administrator. While no administrator
// exists anyone may create the first one; afterwards only administrators can.
func CreateAdminHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var admins int64
		if err := db.WithContext(ctx).Model(&domain.User{}).Where("role = ?", domain.RoleAdmin).Count(&admins).Error; err != nil {
			serverError(c, "Failed to count administrators", err, nil)
			return
		}
		if admins > 0 && !callerIsAdmin(c, db) {
			return
		}
		var req CreateAdminRequest
		if !bindJSON(c, &req) {
			return
		}
		cpf := validation.NormalizeCPF(req.CPF)
		taken, err := cpfTaken(c, db, cpf)
		if err != nil {
			serverError(c, "Failed to check CPF", err, nil)
			return
		}
		if taken {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A user with this CPF is already registered"})
			return
		}
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			serverError(c, "Failed to hash password", err, nil)
			return
		}
		admin := domain.User{
			Name:         req.Name,
			CPF:          cpf,
			PasswordHash: hash,
			Role:         domain.RoleAdmin,
			Registration: req.Registration,
		}
		if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
			serverError(c, "Failed to create administrator", err, nil)
			return
		}
		logrus.WithFields(logrus.Fields{"admin_id": admin.ID, "bootstrap": admins == 0}).Info("Administrator created")
		c.JSON(http.StatusCreated, admin)
	}
}

// GetAdminHandler returns one administrator
func GetAdminHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var admin domain.User
		err := db.WithContext(c.Request.Context()).Where("id = ? AND role = ?", id, domain.RoleAdmin).First(&admin).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Administrator not found"})
			return
		} else if err != nil {
			serverError(c, "Failed to load administrator", err, logrus.Fields{"admin_id": id})
			return
		}
		c.JSON(http.StatusOK, admin)
	}
}

// DeleteAdminHandler removes another administrator's account
func DeleteAdminHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		callerID, _ := middleware.CurrentUserID(c)
		if id == callerID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Administrators cannot delete their own account"})
			return
		}
		res := db.WithContext(c.Request.Context()).Where("role = ?", domain.RoleAdmin).Delete(&domain.User{}, id)
		if res.Error != nil {
			serverError(c, "Failed to delete administrator", res.Error, logrus.Fields{"admin_id": id})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Administrator not found"})
			return
		}
		logrus.WithFields(logrus.Fields{"admin_id": id, "deleted_by": callerID}).Info("Administrator deleted")
		c.JSON(http.StatusOK, gin.H{"message": "Administrator deleted"})
	}
}

// callerIsAdmin answers 401/403 itself when the caller is not an administrator
func callerIsAdmin(c *gin.Context, db *gorm.DB) bool {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return false
	}
	var user domain.User
	if err := db.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil || !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only administrators can perform this action"})
		return false
	}
	return true
}

// cpfTaken reports whether any account already uses cpf
func cpfTaken(c *gin.Context, db *gorm.DB, cpf string) (bool, error) {
	var n int64
	err := db.WithContext(c.Request.Context()).Model(&domain.User{}).Where("cpf = ?", cpf).Count(&n).Error
	return n > 0, err
}
