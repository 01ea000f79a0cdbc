package generator

import (
	"fmt"
	"strings"

	"github.com/wayfarerhq/wayfarer/internal/model"
)

// requiredSlots are the time slots every generated day must cover. Extra
// slots are allowed.
var requiredSlots = []string{"Morning", "Afternoon", "Evening"}

// validateItinerary checks a generated plan against the request before it may
// be stored as the job's result: exactly expectedDays entries numbered 1..N
// in order, a theme per day, and each day covering the required time slots
// with usable descriptions and locations.
func validateItinerary(days []model.Day, expectedDays int) error {
	if len(days) != expectedDays {
		return fmt.Errorf("expected %d days, got %d", expectedDays, len(days))
	}

	for i, day := range days {
		number := i + 1
		if day.Day != number {
			return fmt.Errorf("day %d is numbered %d", number, day.Day)
		}
		if strings.TrimSpace(day.Theme) == "" {
			return fmt.Errorf("day %d has no theme", number)
		}
		if len(day.Activities) == 0 {
			return fmt.Errorf("day %d has no activities", number)
		}

		slots := make(map[string]bool, len(day.Activities))
		for _, activity := range day.Activities {
			slots[activity.Time] = true
			if strings.TrimSpace(activity.Description) == "" {
				return fmt.Errorf("day %d has an activity without a description", number)
			}
			if strings.TrimSpace(activity.Location) == "" {
				return fmt.Errorf("day %d has an activity without a location", number)
			}
		}
		for _, slot := range requiredSlots {
			if !slots[slot] {
				return fmt.Errorf("day %d has no %s activity", number, strings.ToLower(slot))
			}
		}
	}

	return nil
}
