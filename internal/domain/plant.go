package domain

import "time"

// Default care intervals in days
const (
	DefaultWateringInterval    = 2
	DefaultPruningInterval     = 30
	DefaultFertilizingInterval = 15
)

// CatalogPlant is a species template any user can own a copy of
type CatalogPlant struct {
	ID                  uint   `gorm:"primaryKey" json:"id"`
	Name                string `gorm:"not null" json:"name"`
	ScientificName      string `gorm:"size:191;uniqueIndex;not null" json:"scientific_name"`
	Category            string `json:"category"`
	Family              string `json:"family"`
	Description         string `gorm:"type:text" json:"description"`
	CareInstructions    string `gorm:"type:text" json:"care_instructions"`
	ImageURL            string `json:"image_url"`
	WateringInterval    int    `gorm:"not null;default:2" json:"watering_interval_days"`
	PruningInterval     int    `gorm:"not null;default:30" json:"pruning_interval_days"`
	FertilizingInterval int    `gorm:"not null;default:15" json:"fertilizing_interval_days"`
}

// UserPlant is a catalog plant owned by one user, optionally placed in a garden
type UserPlant struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	Nickname       string       `json:"nickname"`
	PlantedOn      time.Time    `json:"planted_on"`
	UserID         uint         `gorm:"not null;index" json:"user_id"`
	CatalogPlantID uint         `gorm:"not null;index" json:"catalog_plant_id"`
	CatalogPlant   CatalogPlant `json:"catalog_plant"`
	GardenID       *uint        `gorm:"index" json:"garden_id"`
}
