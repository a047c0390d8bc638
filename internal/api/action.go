package api

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation
	"time"     // Default action time

	"joja_garden/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// ActionRequest is the body of POST /plants/:id/actions
type ActionRequest struct {
	Type        domain.ActionType `json:"type" binding:"required"`
	Description string            `json:"description"`
	PerformedAt string            `json:"performed_at"` // RFC 3339 or YYYY-MM-DD, defaults to now
}

// CreateActionHandler records a care action on one of the caller's plants
func CreateActionHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ActionRequest
		if !bindJSON(c, &req) {
			return
		}
		if !req.Type.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "type must be one of watering, pruning, fertilizing"})
			return
		}
		performedAt, err := parseTimeOr(req.PerformedAt, time.Now())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "performed_at must be RFC 3339 or YYYY-MM-DD"})
			return
		}
		plant, ok := plantFromPath(c, db)
		if !ok {
			return
		}
		action := domain.Action{
			Type:        req.Type,
			Description: strings.TrimSpace(req.Description),
			PerformedAt: performedAt,
			UserPlantID: plant.ID,
		}
		if err := db.WithContext(c.Request.Context()).Create(&action).Error; err != nil {
			serverError(c, "Failed to record action", err, logrus.Fields{"plant_id": plant.ID})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   plant.UserID,
			"plant_id":  plant.ID,
			"action_id": action.ID,
			"type":      action.Type,
		}).Info("Care action recorded")
		c.JSON(http.StatusCreated, action)
	}
}

// ListActionsHandler returns a plant's care history, newest first
func ListActionsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		plant, ok := plantFromPath(c, db)
		if !ok {
			return
		}
		var actions []domain.Action
		err := db.WithContext(c.Request.Context()).
			Where("user_plant_id = ?", plant.ID).
			Order("performed_at DESC").Order("id DESC").
			Find(&actions).Error
		if err != nil {
			serverError(c, "Failed to fetch actions", err, logrus.Fields{"plant_id": plant.ID})
			return
		}
		c.JSON(http.StatusOK, actions)
	}
}
