package api

import (
	"errors"   // Error inspection
	"fmt"      // Cache key formatting
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation
	"time"     // Cache TTL

	"joja_garden/internal/domain" // Importing domain models
	"joja_garden/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// Catalog cache keys, all under catalogCachePrefix
const (
	catalogCachePrefix  = "catalog:"
	defaultCatalogLimit = 25
)

// CatalogPlantRequest is the body of POST /catalog and PUT /catalog/:id.
// Interval fields default to the usual care intervals when omitted.
type CatalogPlantRequest struct {
	Name                string `json:"name" binding:"required"`
	ScientificName      string `json:"scientific_name" binding:"required"`
	Category            string `json:"category"`
	Family              string `json:"family"`
	Description         string `json:"description"`
	CareInstructions    string `json:"care_instructions"`
	ImageURL            string `json:"image_url"`
	WateringInterval    *int   `json:"watering_interval_days" binding:"omitempty,gte=1"`
	PruningInterval     *int   `json:"pruning_interval_days" binding:"omitempty,gte=1"`
	FertilizingInterval *int   `json:"fertilizing_interval_days" binding:"omitempty,gte=1"`
}

// apply copies the request onto p, keeping p's intervals where none were sent
func (r *CatalogPlantRequest) apply(p *domain.CatalogPlant) {
	p.Name = strings.TrimSpace(r.Name)
	p.ScientificName = strings.TrimSpace(r.ScientificName)
	p.Category = r.Category
	p.Family = r.Family
	p.Description = r.Description
	p.CareInstructions = r.CareInstructions
	p.ImageURL = r.ImageURL
	if r.WateringInterval != nil {
		p.WateringInterval = *r.WateringInterval
	}
	if r.PruningInterval != nil {
		p.PruningInterval = *r.PruningInterval
	}
	if r.FertilizingInterval != nil {
		p.FertilizingInterval = *r.FertilizingInterval
	}
}

// CreateCatalogPlantHandler adds a species to the catalog
func CreateCatalogPlantHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CatalogPlantRequest
		if !bindJSON(c, &req) {
			return
		}
		plant := domain.CatalogPlant{
			WateringInterval:    domain.DefaultWateringInterval,
			PruningInterval:     domain.DefaultPruningInterval,
			FertilizingInterval: domain.DefaultFertilizingInterval,
		}
		req.apply(&plant)
		if !catalogFieldsValid(c, db, &plant) {
			return
		}
		if err := db.WithContext(c.Request.Context()).Create(&plant).Error; err != nil {
			serverError(c, "Failed to add plant to catalog", err, nil)
			return
		}
		invalidateCatalog(c, rdb)
		logrus.WithFields(logrus.Fields{"catalog_plant_id": plant.ID, "scientific_name": plant.ScientificName}).Info("Catalog plant created")
		c.JSON(http.StatusCreated, plant)
	}
}

// ListCatalogHandler returns a slice of the catalog, cached in Redis
func ListCatalogHandler(db *gorm.DB, rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		skip, limit := 0, defaultCatalogLimit
		if v, err := strconv.Atoi(c.Query("skip")); err == nil && v >= 0 {
			skip = v
		}
		if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= maxPageSize {
			limit = v
		}
		ctx := c.Request.Context()
		cacheKey := fmt.Sprintf("%slist:skip=%d:limit=%d", catalogCachePrefix, skip, limit)
		var plants []domain.CatalogPlant
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &plants); err == nil && found {
			c.Header("X-Cache", "HIT")
			c.JSON(http.StatusOK, plants)
			return
		}
		if err := db.WithContext(ctx).Order("id").Offset(skip).Limit(limit).Find(&plants).Error; err != nil {
			serverError(c, "Failed to fetch catalog", err, nil)
			return
		}
		if err := utils.SetCache(ctx, rdb, cacheKey, plants, ttl); err != nil {
			logrus.WithError(err).Warn("Failed to cache catalog page")
		}
		c.Header("X-Cache", "MISS")
		c.JSON(http.StatusOK, plants)
	}
}

// GetCatalogPlantHandler returns one catalog plant, cached in Redis
func GetCatalogPlantHandler(db *gorm.DB, rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		cacheKey := fmt.Sprintf("%sitem:%d", catalogCachePrefix, id)
		var plant domain.CatalogPlant
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &plant); err == nil && found {
			c.Header("X-Cache", "HIT")
			c.JSON(http.StatusOK, plant)
			return
		}
		if !loadCatalogPlant(c, db, id, &plant) {
			return
		}
		if err := utils.SetCache(ctx, rdb, cacheKey, plant, ttl); err != nil {
			logrus.WithError(err).Warn("Failed to cache catalog plant")
		}
		c.Header("X-Cache", "MISS")
		c.JSON(http.StatusOK, plant)
	}
}

// UpdateCatalogPlantHandler replaces a catalog plant's fields
func UpdateCatalogPlantHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req CatalogPlantRequest
		if !bindJSON(c, &req) {
			return
		}
		var plant domain.CatalogPlant
		if !loadCatalogPlant(c, db, id, &plant) {
			return
		}
		req.apply(&plant)
		if !catalogFieldsValid(c, db, &plant) {
			return
		}
		if err := db.WithContext(c.Request.Context()).Save(&plant).Error; err != nil {
			serverError(c, "Failed to update catalog plant", err, logrus.Fields{"catalog_plant_id": id})
			return
		}
		invalidateCatalog(c, rdb)
		logrus.WithField("catalog_plant_id", id).Info("Catalog plant updated")
		c.JSON(http.StatusOK, plant)
	}
}

// DeleteCatalogPlantHandler removes a species nobody owns
func DeleteCatalogPlantHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var plant domain.CatalogPlant
		if !loadCatalogPlant(c, db, id, &plant) {
			return
		}
		ctx := c.Request.Context()
		var owned int64
		if err := db.WithContext(ctx).Model(&domain.UserPlant{}).Where("catalog_plant_id = ?", id).Count(&owned).Error; err != nil {
			serverError(c, "Failed to check plant usage", err, logrus.Fields{"catalog_plant_id": id})
			return
		}
		if owned > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Plant is owned by users and cannot be removed"})
			return
		}
		if err := db.WithContext(ctx).Delete(&plant).Error; err != nil {
			serverError(c, "Failed to delete catalog plant", err, logrus.Fields{"catalog_plant_id": id})
			return
		}
		invalidateCatalog(c, rdb)
		logrus.WithField("catalog_plant_id", id).Info("Catalog plant deleted")
		c.JSON(http.StatusOK, gin.H{"message": "Catalog plant deleted"})
	}
}

// catalogFieldsValid enforces a non-blank, unique scientific name
func catalogFieldsValid(c *gin.Context, db *gorm.DB, p *domain.CatalogPlant) bool {
	if p.Name == "" || p.ScientificName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and scientific_name are required"})
		return false
	}
	var n int64
	err := db.WithContext(c.Request.Context()).Model(&domain.CatalogPlant{}).
		Where("scientific_name = ? AND id <> ?", p.ScientificName, p.ID).
		Count(&n).Error
	if err != nil {
		serverError(c, "Failed to check catalog", err, nil)
		return false
	}
	if n > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A plant with the same scientific name already exists"})
		return false
	}
	return true
}

func loadCatalogPlant(c *gin.Context, db *gorm.DB, id uint, dest *domain.CatalogPlant) bool {
	err := db.WithContext(c.Request.Context()).First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Catalog plant not found"})
		return false
	} else if err != nil {
		serverError(c, "Failed to load catalog plant", err, logrus.Fields{"catalog_plant_id": id})
		return false
	}
	return true
}

// invalidateCatalog drops every cached catalog page and item
func invalidateCatalog(c *gin.Context, rdb *redis.Client) {
	if err := utils.DeleteCachePattern(c.Request.Context(), rdb, catalogCachePrefix+"*"); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate catalog cache")
	}
}
