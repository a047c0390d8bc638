// Package care derives when each care action is next due for a plant from its
// catalog intervals and its recorded history.
package care

import (
	"time"

	"joja_garden/internal/domain"
)

// Due is the schedule entry for one action type
type Due struct {
	Type         domain.ActionType `json:"type"`
	IntervalDays int               `json:"interval_days"`
	LastDone     *time.Time        `json:"last_done"`
	NextDue      time.Time         `json:"next_due"`
	Overdue      bool              `json:"overdue"`
}

// Interval returns the catalog interval in days for an action type, falling
// back to the default when the catalog value is not positive.
func Interval(p domain.CatalogPlant, t domain.ActionType) int {
	var days, fallback int
	switch t {
	case domain.ActionWatering:
		days, fallback = p.WateringInterval, domain.DefaultWateringInterval
	case domain.ActionPruning:
		days, fallback = p.PruningInterval, domain.DefaultPruningInterval
	case domain.ActionFertilizing:
		days, fallback = p.FertilizingInterval, domain.DefaultFertilizingInterval
	default:
		return 0
	}
	if days <= 0 {
		return fallback
	}
	return days
}

// Schedule computes the next due date of every action type. Counting starts
// at the latest action of that type, or at the planting date when the plant
// has none.
func Schedule(plant domain.UserPlant, history []domain.Action, now time.Time) []Due {
	last := make(map[domain.ActionType]time.Time, len(domain.ActionTypes))
	for _, a := range history {
		if prev, ok := last[a.Type]; !ok || a.PerformedAt.After(prev) {
			last[a.Type] = a.PerformedAt
		}
	}

	out := make([]Due, 0, len(domain.ActionTypes))
	for _, t := range domain.ActionTypes {
		days := Interval(plant.CatalogPlant, t)
		d := Due{Type: t, IntervalDays: days}
		from := plant.PlantedOn
		if at, ok := last[t]; ok {
			d.LastDone = &at
			from = at
		}
		d.NextDue = from.AddDate(0, 0, days)
		d.Overdue = now.After(d.NextDue)
		out = append(out, d)
	}
	return out
}
