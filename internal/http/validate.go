package httpapi

import (
	"errors"
	"fmt"

	"github.com/example/provider-matching/internal/models"
)

// validateCriteria enforces the boundary contract: service type is required,
// budget must be positive when present, and a location must carry both
// coordinates. The core treats a missing budget as "no price signal".
func validateCriteria(c models.Criteria) error {
	if c.ServiceTypeID == "" {
		return errors.New("service_type_id is required")
	}
	if c.Budget != nil && *c.Budget <= 0 {
		return fmt.Errorf("budget must be positive, got %v", *c.Budget)
	}
	if c.Location != nil {
		if err := validateCoord(c.Location.Lat, c.Location.Lon); err != nil {
			return fmt.Errorf("location: %w", err)
		}
	}
	switch c.Urgency {
	case "", models.UrgencyLow, models.UrgencyNormal, models.UrgencyHigh, models.UrgencyUrgent:
	default:
		return fmt.Errorf("unknown urgency %q", c.Urgency)
	}
	return nil
}

func validatePing(p models.LocationPing) error {
	if p.ProviderID == "" {
		return errors.New("provider_id is required")
	}
	return validateCoord(p.Lat, p.Lon)
}

func validateCoord(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %v out of range", lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("longitude %v out of range", lon)
	}
	return nil
}
