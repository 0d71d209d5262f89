package handlers

import (
	"testing"
	"time"

	"github.com/Zdenek156/bereifung24-scheduling/internal/models"
)

func TestParseDateInWorkshop(t *testing.T) {
	shop := &models.Workshop{ID: 1, Timezone: "America/New_York"}

	date, err := parseDateInWorkshop(shop, "2026-03-02")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := date.Location().String(); got != "America/New_York" {
		t.Errorf("location = %q", got)
	}
	if date.Hour() != 0 || date.Day() != 2 {
		t.Errorf("date = %v, want local midnight on the 2nd", date)
	}

	if _, err := parseDateInWorkshop(shop, "02.03.2026"); err == nil {
		t.Error("non-ISO date must be rejected")
	}
}

func TestLocationFromWorkshopFallsBackToDefault(t *testing.T) {
	cases := []struct {
		name string
		shop *models.Workshop
	}{
		{"nil workshop", nil},
		{"empty timezone", &models.Workshop{ID: 1}},
		{"unknown timezone", &models.Workshop{ID: 1, Timezone: "Mars/Olympus"}},
	}

	berlin, _ := time.LoadLocation("Europe/Berlin")
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := locationFromWorkshop(tc.shop); got.String() != berlin.String() {
				t.Errorf("location = %q, want Europe/Berlin", got)
			}
		})
	}
}
