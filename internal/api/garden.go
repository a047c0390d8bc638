package api

import (
	"errors"   // Error inspection
	"fmt"      // Message formatting
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"joja_garden/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// GardenRequest is the body of POST /gardens
type GardenRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateGardenHandler creates a garden for the caller
func CreateGardenHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req GardenRequest
		if !bindJSON(c, &req) {
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}
		ctx := c.Request.Context()
		var n int64
		if err := db.WithContext(ctx).Model(&domain.Garden{}).Where("user_id = ? AND name = ?", userID, name).Count(&n).Error; err != nil {
			serverError(c, "Failed to check gardens", err, logrus.Fields{"user_id": userID})
			return
		}
		if n > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A garden with this name already exists"})
			return
		}
		garden := domain.Garden{Name: name, UserID: userID, Plants: []domain.UserPlant{}}
		if err := db.WithContext(ctx).Create(&garden).Error; err != nil {
			serverError(c, "Failed to create garden", err, logrus.Fields{"user_id": userID})
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": userID, "garden_id": garden.ID}).Info("Garden created")
		c.JSON(http.StatusCreated, garden)
	}
}

// ListGardensHandler returns the caller's gardens and the plants in them
func ListGardensHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var gardens []domain.Garden
		err := db.WithContext(c.Request.Context()).
			Preload("Plants.CatalogPlant").
			Where("user_id = ?", userID).
			Order("id").
			Find(&gardens).Error
		if err != nil {
			serverError(c, "Failed to fetch gardens", err, logrus.Fields{"user_id": userID})
			return
		}
		c.JSON(http.StatusOK, gardens)
	}
}

// GetGardenHandler returns one of the caller's gardens
func GetGardenHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		garden, ok := gardenFromPath(c, db, true)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, garden)
	}
}

// AddPlantToGardenHandler moves one of the caller's plants into one of their gardens
func AddPlantToGardenHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		garden, ok := gardenFromPath(c, db, false)
		if !ok {
			return
		}
		plantID, ok := paramID(c, "plant_id")
		if !ok {
			return
		}
		plant, ok := ownedPlant(c, db, garden.UserID, plantID)
		if !ok {
			return
		}
		if plant.GardenID != nil && *plant.GardenID == garden.ID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "The plant already belongs to this garden"})
			return
		}
		if err := db.WithContext(c.Request.Context()).Model(plant).Update("garden_id", garden.ID).Error; err != nil {
			serverError(c, "Failed to add plant to garden", err, logrus.Fields{"garden_id": garden.ID, "plant_id": plant.ID})
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": garden.UserID, "garden_id": garden.ID, "plant_id": plant.ID}).Info("Plant added to garden")
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Plant %s was added to garden %s", plant.Nickname, garden.Name)})
	}
}

// RemovePlantFromGardenHandler takes a plant out of a garden without deleting it
func RemovePlantFromGardenHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		garden, ok := gardenFromPath(c, db, false)
		if !ok {
			return
		}
		plantID, ok := paramID(c, "plant_id")
		if !ok {
			return
		}
		res := db.WithContext(c.Request.Context()).Model(&domain.UserPlant{}).
			Where("id = ? AND user_id = ? AND garden_id = ?", plantID, garden.UserID, garden.ID).
			Update("garden_id", nil)
		if res.Error != nil {
			serverError(c, "Failed to remove plant from garden", res.Error, logrus.Fields{"garden_id": garden.ID, "plant_id": plantID})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Plant not found in this garden"})
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": garden.UserID, "garden_id": garden.ID, "plant_id": plantID}).Info("Plant removed from garden")
		c.JSON(http.StatusOK, gin.H{"message": "Plant removed from garden"})
	}
}

// DeleteGardenHandler deletes an empty garden
func DeleteGardenHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		garden, ok := gardenFromPath(c, db, false)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		var n int64
		if err := db.WithContext(ctx).Model(&domain.UserPlant{}).Where("garden_id = ?", garden.ID).Count(&n).Error; err != nil {
			serverError(c, "Failed to check garden", err, logrus.Fields{"garden_id": garden.ID})
			return
		}
		if n > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "The garden must be empty to be deleted"})
			return
		}
		if err := db.WithContext(ctx).Delete(garden).Error; err != nil {
			serverError(c, "Failed to delete garden", err, logrus.Fields{"garden_id": garden.ID})
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": garden.UserID, "garden_id": garden.ID}).Info("Garden deleted")
		c.JSON(http.StatusOK, gin.H{"message": "Garden deleted"})
	}
}

// gardenFromPath loads the caller's garden named by :id
func gardenFromPath(c *gin.Context, db *gorm.DB, withPlants bool) (*domain.Garden, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, false
	}
	gardenID, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	query := db.WithContext(c.Request.Context())
	if withPlants {
		query = query.Preload("Plants.CatalogPlant")
	}
	var garden domain.Garden
	err := query.Where("id = ? AND user_id = ?", gardenID, userID).First(&garden).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Garden not found"})
		return nil, false
	} else if err != nil {
		serverError(c, "Failed to load garden", err, logrus.Fields{"garden_id": gardenID})
		return nil, false
	}
	return &garden, true
}
