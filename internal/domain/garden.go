package domain

// Garden Model
type Garden struct {
	ID     uint        `gorm:"primaryKey" json:"id"`                                          // Primary key
	Name   string      `gorm:"size:120;not null;uniqueIndex:idx_garden_owner_name" json:"name"` // Unique per owner
	UserID uint        `gorm:"not null;uniqueIndex:idx_garden_owner_name" json:"user_id"`       // Owner
	Plants []UserPlant `json:"plants"`                                                        // Plants placed in this garden
}
