package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Date parsing

	"joja_garden/internal/domain"     // Importing domain models
	"joja_garden/internal/middleware" // Auth context helpers
	"joja_garden/internal/validation" // Binding error messages

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Pagination bounds shared by list endpoints
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// bindJSON binds the request body and answers 400 when it is malformed or invalid
func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message(err)})
		return false
	}
	return true
}

// paramID parses a numeric path parameter
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// pagination reads page and page_size, falling back to sane defaults
func pagination(c *gin.Context) (page, pageSize, offset int) {
	page, pageSize = 1, defaultPageSize
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.Query("page_size")); err == nil && v > 0 && v <= maxPageSize {
		pageSize = v
	}
	return page, pageSize, (page - 1) * pageSize
}

// parseTimeOr accepts RFC 3339 timestamps and plain YYYY-MM-DD dates; an empty
// string yields fallback.
func parseTimeOr(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

// currentUserID returns the caller id set by the JWT middleware
func currentUserID(c *gin.Context) (uint, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return userID, ok
}

// currentUser loads the caller's account
func currentUser(c *gin.Context, db *gorm.DB) (*domain.User, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, false
	}
	var user domain.User
	if err := db.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Account no longer exists"})
			return nil, false
		}
		serverError(c, "Failed to load account", err, logrus.Fields{"user_id": userID})
		return nil, false
	}
	return &user, true
}

// ownedPlant loads a user plant owned by userID; anything else is a 404
func ownedPlant(c *gin.Context, db *gorm.DB, userID, plantID uint) (*domain.UserPlant, bool) {
	var plant domain.UserPlant
	err := db.WithContext(c.Request.Context()).
		Preload("CatalogPlant").
		Where("id = ? AND user_id = ?", plantID, userID).
		First(&plant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Plant not found"})
			return nil, false
		}
		serverError(c, "Failed to load plant", err, logrus.Fields{"user_id": userID, "plant_id": plantID})
		return nil, false
	}
	return &plant, true
}

// serverError logs err with its context and answers a generic 500
func serverError(c *gin.Context, msg string, err error, fields logrus.Fields) {
	entry := logrus.WithFields(fields).WithField("request_id", middleware.GetRequestID(c))
	entry.WithError(err).Error(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
