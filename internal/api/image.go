package api

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation
	"time"     // Default capture time

	"joja_garden/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// ImageRequest is the body of POST /plants/:id/images
type ImageRequest struct {
	URL         string `json:"url" binding:"required,url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	TakenAt     string `json:"taken_at"` // RFC 3339 or YYYY-MM-DD, defaults to now
}

// CreateImageHandler adds a photo to one of the caller's plants
func CreateImageHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ImageRequest
		if !bindJSON(c, &req) {
			return
		}
		takenAt, err := parseTimeOr(req.TakenAt, time.Now())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "taken_at must be RFC 3339 or YYYY-MM-DD"})
			return
		}
		plant, ok := plantFromPath(c, db)
		if !ok {
			return
		}
		image := domain.Image{
			Title:       strings.TrimSpace(req.Title),
			Description: strings.TrimSpace(req.Description),
			URL:         req.URL,
			TakenAt:     takenAt,
			UserPlantID: plant.ID,
		}
		if err := db.WithContext(c.Request.Context()).Create(&image).Error; err != nil {
			serverError(c, "Failed to save image", err, logrus.Fields{"plant_id": plant.ID})
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": plant.UserID, "plant_id": plant.ID, "image_id": image.ID}).Info("Image added")
		c.JSON(http.StatusCreated, image)
	}
}

// ListImagesHandler returns a plant's gallery, newest first
func ListImagesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		plant, ok := plantFromPath(c, db)
		if !ok {
			return
		}
		var images []domain.Image
		err := db.WithContext(c.Request.Context()).
			Where("user_plant_id = ?", plant.ID).
			Order("taken_at DESC").Order("id DESC").
			Find(&images).Error
		if err != nil {
			serverError(c, "Failed to fetch images", err, logrus.Fields{"plant_id": plant.ID})
			return
		}
		c.JSON(http.StatusOK, images)
	}
}

// DeleteImageHandler removes a photo from a plant's gallery
func DeleteImageHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		plant, ok := plantFromPath(c, db)
		if !ok {
			return
		}
		imageID, ok := paramID(c, "image_id")
		if !ok {
			return
		}
		res := db.WithContext(c.Request.Context()).
			Where("id = ? AND user_plant_id = ?", imageID, plant.ID).
			Delete(&domain.Image{})
		if res.Error != nil {
			serverError(c, "Failed to delete image", res.Error, logrus.Fields{"plant_id": plant.ID, "image_id": imageID})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": plant.UserID, "plant_id": plant.ID, "image_id": imageID}).Info("Image deleted")
		c.JSON(http.StatusOK, gin.H{"message": "Image deleted"})
	}
}
