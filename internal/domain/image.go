package domain

import "time"

// Image Model, one photo of a plant's gallery
type Image struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `gorm:"not null" json:"url"`
	TakenAt     time.Time `gorm:"index" json:"taken_at"`
	UserPlantID uint      `gorm:"not null;index" json:"user_plant_id"`
}
