package handlers

import (
	"time"

	"github.com/Zdenek156/bereifung24-scheduling/internal/models"
	"github.com/Zdenek156/bereifung24-scheduling/internal/timezone"
)

// resolves the workshop's official timezone
func locationFromWorkshop(shop *models.Workshop) *time.Location {
	if shop != nil && shop.Timezone != "" {
		if loc, err := time.LoadLocation(shop.Timezone); err == nil {
			return loc
		}
	}

	loc, _ := time.LoadLocation(timezone.DefaultTimezone)
	return loc
}

func parseDateInWorkshop(shop *models.Workshop, dateStr string) (time.Time, error) {
	return time.ParseInLocation(
		"2006-01-02",
		dateStr,
		locationFromWorkshop(shop),
	)
}
