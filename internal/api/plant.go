package api

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation
	"time"     // Schedule reference time

	"joja_garden/internal/care"   // Care schedule
	"joja_garden/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// UpdatePlantRequest is the body of PUT /plants/:id
type UpdatePlantRequest struct {
	Nickname  *string `json:"nickname"`
	PlantedOn *string `json:"planted_on"`
}

// ListMyPlantsHandler returns the caller's plants with their catalog data
func ListMyPlantsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var plants []domain.UserPlant
		err := db.WithContext(c.Request.Context()).
			Preload("CatalogPlant").
			Where("user_id = ?", userID).
			Order("id").
			Find(&plants).Error
		if err != nil {
			serverError(c, "Failed to fetch plants", err, logrus.Fields{"user_id": userID})
			return
		}
		c.JSON(http.StatusOK, plants)
	}
}

// GetPlantHandler returns one of the caller's plants
func GetPlantHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		plant, ok := plantFromPath(c, db)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, plant)
	}
}

// UpdatePlantHandler renames a plant or corrects its planting date
func UpdatePlantHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdatePlantRequest
		if !bindJSON(c, &req) {
			return
		}
		plant, ok := plantFromPath(c, db)
		if !ok {
			return
		}
		updates := map[string]any{}
		if req.Nickname != nil {
			plant.Nickname = strings.TrimSpace(*req.Nickname)
			updates["nickname"] = plant.Nickname
		}
		if req.PlantedOn != nil {
			plantedOn, err := parseTimeOr(*req.PlantedOn, plant.PlantedOn)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "planted_on must be a date (YYYY-MM-DD)"})
				return
			}
			plant.PlantedOn = plantedOn
			updates["planted_on"] = plantedOn
		}
		if len(updates) > 0 {
			if err := db.WithContext(c.Request.Context()).Model(plant).Updates(updates).Error; err != nil {
				serverError(c, "Failed to update plant", err, logrus.Fields{"plant_id": plant.ID})
				return
			}
		}
		logrus.WithFields(logrus.Fields{"user_id": plant.UserID, "plant_id": plant.ID}).Info("Plant updated")
		c.JSON(http.StatusOK, plant)
	}
}

// DeletePlantHandler removes a plant with its care history and gallery
func DeletePlantHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		plant, ok := plantFromPath(c, db)
		if !ok {
			return
		}
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("user_plant_id = ?", plant.ID).Delete(&domain.Action{}).Error; err != nil {
				return err
			}
			if err := tx.Where("user_plant_id = ?", plant.ID).Delete(&domain.Image{}).Error; err != nil {
				return err
			}
			return tx.Delete(&domain.UserPlant{}, plant.ID).Error
		})
		if err != nil {
			serverError(c, "Failed to delete plant", err, logrus.Fields{"plant_id": plant.ID})
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": plant.UserID, "plant_id": plant.ID}).Info("Plant deleted")
		c.JSON(http.StatusOK, gin.H{"message": "Plant deleted"})
	}
}

// ScheduleHandler tells when each care action is next due
func ScheduleHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		plant, ok := plantFromPath(c, db)
		if !ok {
			return
		}
		var history []domain.Action
		if err := db.WithContext(c.Request.Context()).Where("user_plant_id = ?", plant.ID).Find(&history).Error; err != nil {
			serverError(c, "Failed to fetch actions", err, logrus.Fields{"plant_id": plant.ID})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"plant_id": plant.ID,
			"schedule": care.Schedule(*plant, history, time.Now()),
		})
	}
}

// plantFromPath loads the caller's plant named by the :id path parameter
func plantFromPath(c *gin.Context, db *gorm.DB) (*domain.UserPlant, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, false
	}
	plantID, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	return ownedPlant(c, db, userID, plantID)
}
