package domain

import "time"

// ActionType is the kind of care performed on a plant
type ActionType string

// Known care actions
const (
	ActionWatering    ActionType = "watering"
	ActionPruning     ActionType = "pruning"
	ActionFertilizing ActionType = "fertilizing"
)

// ActionTypes lists every care action in display order
var ActionTypes = []ActionType{ActionWatering, ActionPruning, ActionFertilizing}

// Valid reports whether t is a known care action
func (t ActionType) Valid() bool {
	for _, known := range ActionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Action Model, one entry of a plant's care history
type Action struct {
	ID          uint       `gorm:"primaryKey" json:"id"`                // Primary key
	Type        ActionType `gorm:"size:16;not null" json:"type"`        // Care action kind
	Description string     `json:"description"`                         // Free text
	PerformedAt time.Time  `gorm:"index" json:"performed_at"`           // When it happened
	UserPlantID uint       `gorm:"not null;index" json:"user_plant_id"` // Plant it was performed on
}
