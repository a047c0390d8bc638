package api

import (
	"errors"   // Error inspection
	"fmt"      // Message formatting
	"net/http" // HTTP status codes
	"strings"  // String manipulation
	"time"     // Planting dates

	"joja_garden/internal/domain"     // Importing domain models
	"joja_garden/internal/middleware" // Auth context helpers
	"joja_garden/internal/utils"      // Utility functions
	"joja_garden/internal/validation" // Field validators

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// CreateUserRequest is the body of POST /users
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	CPF      string `json:"cpf" binding:"required,cpf"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,password"`
	Address  string `json:"address"`
}

// ChangePasswordRequest is the body of PUT /me/password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ResetPasswordRequest is the body of PUT /users/:id/password
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,password"`
}

// AssignPlantRequest is the body of POST /users/:id/plants
type AssignPlantRequest struct {
	CatalogPlantID uint   `json:"catalog_plant_id" binding:"required"`
	Nickname       string `json:"nickname"`
	PlantedOn      string `json:"planted_on"` // YYYY-MM-DD, defaults to today
}

// CreateUserHandler lets an administrator register a regular user
func CreateUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateUserRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx := c.Request.Context()
		cpf := validation.NormalizeCPF(req.CPF)
		email := strings.ToLower(strings.TrimSpace(req.Email))
		taken, err := cpfTaken(c, db, cpf)
		if err != nil {
			serverError(c, "Failed to check CPF", err, nil)
			return
		}
		if taken {
			c.JSON(http.StatusBadRequest, gin.H{"error": "CPF already registered"})
			return
		}
		var n int64
		if err := db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
			serverError(c, "Failed to check email", err, nil)
			return
		}
		if n > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
			return
		}
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			serverError(c, "Failed to hash password", err, nil)
			return
		}
		user := domain.User{
			Name:         req.Name,
			CPF:          cpf,
			PasswordHash: hash,
			Role:         domain.RoleUser,
			Email:        &email,
			Address:      req.Address,
		}
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			serverError(c, "Failed to create user", err, nil)
			return
		}
		adminID, _ := middleware.CurrentUserID(c)
		logrus.WithFields(logrus.Fields{"user_id": user.ID, "created_by": adminID}).Info("User created")
		c.JSON(http.StatusCreated, user)
	}
}

// ListUsersHandler returns a page of accounts, optionally filtered by role
func ListUsersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize, offset := pagination(c)
		query := db.WithContext(c.Request.Context()).Model(&domain.User{})
		if role := c.Query("role"); role != "" {
			query = query.Where("role = ?", role)
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			serverError(c, "Failed to count users", err, nil)
			return
		}
		var users []domain.User
		if err := query.Order("id").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
			serverError(c, "Failed to fetch users", err, nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"users":       users,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": (int(total) + pageSize - 1) / pageSize,
		})
	}
}

// LookupUserHandler finds an account by CPF
func LookupUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := userByCPFQuery(c, db)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// EmailByCPFHandler tells an anonymous caller which address a password
// recovery for this CPF would be sent to, masked.
func EmailByCPFHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := userByCPFQuery(c, db)
		if !ok {
			return
		}
		if user.Email == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": maskEmail(*user.Email)})
	}
}

// DeleteUserHandler removes a regular user together with everything they own
func DeleteUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var user domain.User
		err := db.WithContext(c.Request.Context()).Where("id = ? AND role = ?", id, domain.RoleUser).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("User with ID %d not found", id)})
			return
		} else if err != nil {
			serverError(c, "Failed to load user", err, logrus.Fields{"user_id": id})
			return
		}
		err = db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			plantIDs := tx.Model(&domain.UserPlant{}).Select("id").Where("user_id = ?", id)
			if err := tx.Where("user_plant_id IN (?)", plantIDs).Delete(&domain.Action{}).Error; err != nil {
				return err
			}
			if err := tx.Where("user_plant_id IN (?)", plantIDs).Delete(&domain.Image{}).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", id).Delete(&domain.UserPlant{}).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", id).Delete(&domain.Garden{}).Error; err != nil {
				return err
			}
			return tx.Delete(&user).Error
		})
		if err != nil {
			serverError(c, "Failed to delete user", err, logrus.Fields{"user_id": id})
			return
		}
		adminID, _ := middleware.CurrentUserID(c)
		logrus.WithFields(logrus.Fields{"user_id": id, "deleted_by": adminID}).Info("User deleted")
		c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
	}
}

// ResetPasswordHandler lets an administrator set a new password for any account
func ResetPasswordHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req ResetPasswordRequest
		if !bindJSON(c, &req) {
			return
		}
		var user domain.User
		if err := db.WithContext(c.Request.Context()).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("User with ID %d not found", id)})
				return
			}
			serverError(c, "Failed to load user", err, logrus.Fields{"user_id": id})
			return
		}
		if !setPassword(c, db, &user, req.NewPassword) {
			return
		}
		adminID, _ := middleware.CurrentUserID(c)
		logrus.WithFields(logrus.Fields{"user_id": id, "reset_by": adminID}).Info("Password reset")
		c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
	}
}

// MeHandler returns the caller's account
func MeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, db)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// ChangePasswordHandler replaces the caller's password after checking the current one
func ChangePasswordHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ChangePasswordRequest
		if !bindJSON(c, &req) {
			return
		}
		user, ok := currentUser(c, db)
		if !ok {
			return
		}
		if !utils.CheckPassword(user.PasswordHash, req.CurrentPassword) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "The current password is incorrect"})
			return
		}
		if req.NewPassword == req.CurrentPassword {
			c.JSON(http.StatusBadRequest, gin.H{"error": "The new password must differ from the current one"})
			return
		}
		if !validation.ValidPassword(req.NewPassword) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid password: it needs at least 8 characters, no spaces, one digit and one uppercase letter"})
			return
		}
		if !setPassword(c, db, user, req.NewPassword) {
			return
		}
		logrus.WithField("user_id", user.ID).Info("Password changed")
		c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
	}
}

// AssignPlantHandler gives a regular user a plant from the catalog
func AssignPlantHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req AssignPlantRequest
		if !bindJSON(c, &req) {
			return
		}
		plantedOn, err := parseTimeOr(req.PlantedOn, today())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "planted_on must be a date (YYYY-MM-DD)"})
			return
		}
		ctx := c.Request.Context()
		var owner domain.User
		err = db.WithContext(ctx).Where("id = ? AND role = ?", userID, domain.RoleUser).First(&owner).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User does not exist"})
			return
		} else if err != nil {
			serverError(c, "Failed to load user", err, logrus.Fields{"user_id": userID})
			return
		}
		var catalog domain.CatalogPlant
		err = db.WithContext(ctx).First(&catalog, req.CatalogPlantID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Plant is not registered in the catalog"})
			return
		} else if err != nil {
			serverError(c, "Failed to load catalog plant", err, logrus.Fields{"catalog_plant_id": req.CatalogPlantID})
			return
		}
		nickname := strings.TrimSpace(req.Nickname)
		if nickname == "" {
			nickname = catalog.Name
		}
		plant := domain.UserPlant{
			Nickname:       nickname,
			PlantedOn:      plantedOn,
			UserID:         owner.ID,
			CatalogPlantID: catalog.ID,
		}
		if err := db.WithContext(ctx).Create(&plant).Error; err != nil {
			serverError(c, "Failed to add plant", err, logrus.Fields{"user_id": userID, "catalog_plant_id": catalog.ID})
			return
		}
		plant.CatalogPlant = catalog
		logrus.WithFields(logrus.Fields{
			"user_id":          owner.ID,
			"plant_id":         plant.ID,
			"catalog_plant_id": catalog.ID,
		}).Info("Plant assigned to user")
		c.JSON(http.StatusCreated, plant)
	}
}

// userByCPFQuery resolves the ?cpf= query parameter to an account
func userByCPFQuery(c *gin.Context, db *gorm.DB) (*domain.User, bool) {
	cpf := c.Query("cpf")
	if !validation.ValidCPF(cpf) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid CPF format"})
		return nil, false
	}
	var user domain.User
	err := db.WithContext(c.Request.Context()).Where("cpf = ?", validation.NormalizeCPF(cpf)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return nil, false
	} else if err != nil {
		serverError(c, "Failed to load user", err, nil)
		return nil, false
	}
	return &user, true
}

// setPassword hashes and stores a new password
func setPassword(c *gin.Context, db *gorm.DB, user *domain.User, password string) bool {
	hash, err := utils.HashPassword(password)
	if err != nil {
		serverError(c, "Failed to hash password", err, logrus.Fields{"user_id": user.ID})
		return false
	}
	if err := db.WithContext(c.Request.Context()).Model(user).Update("password_hash", hash).Error; err != nil {
		serverError(c, "Failed to update password", err, logrus.Fields{"user_id": user.ID})
		return false
	}
	return true
}

// maskEmail hides all but the first character of the local part
func maskEmail(email string) string {
	local, domainPart, found := strings.Cut(email, "@")
	if !found || local == "" {
		return "***"
	}
	return local[:1] + strings.Repeat("*", len(local)-1) + "@" + domainPart
}

func today() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
