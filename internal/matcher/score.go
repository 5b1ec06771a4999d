package matcher

import (
	"math"
	"strings"

	"github.com/example/provider-matching/internal/models"
)

// Factor weights. They must sum to exactly 1.0; TestWeightsSumToOne guards this.
// The location weight is reserved but its factor is not computed during the
// per-provider pass: distance is attached after ranking, for display only.
const (
	weightRating         = 0.25
	weightExperience     = 0.20
	weightAvailability   = 0.15
	weightPrice          = 0.15
	weightLocation       = 0.10
	weightSpecialization = 0.10
	weightHistory        = 0.05
)

const (
	reasonExcellentRating = "Excellent rating"
	reasonExperience      = "Extensive experience"
	reasonAvailable       = "Available now"
	reasonPriceFit        = "Price within budget"
	reasonSpecializes     = "Specializes in your need"
	reasonWorkedBefore    = "You've worked with this provider before"
)

// experienceSaturation is the completed-job count at which the experience
// factor reaches 1.
const experienceSaturation = 50

// Score computes the weighted compatibility of one candidate provider against
// a request and the client's derived patterns. Pure and deterministic; all
// inputs are pre-fetched by the caller.
func Score(p models.CandidateProvider, criteria models.Criteria, patterns models.UserPatterns) models.ScoreBreakdown {
	b := models.ScoreBreakdown{Reasons: []string{}}

	b.Rating = math.Min(p.Rating/5, 1)
	if p.Rating >= 4.5 {
		b.Reasons = append(b.Reasons, reasonExcellentRating)
	}

	b.Experience = math.Min(float64(p.CompletedJobs)/experienceSaturation, 1)
	if p.CompletedJobs >= 20 {
		b.Reasons = append(b.Reasons, reasonExperience)
	}

	if p.IsAvailable {
		b.Availability = 1
		b.Reasons = append(b.Reasons, reasonAvailable)
	}

	if criteria.Budget != nil && *criteria.Budget > 0 && len(p.Services) > 0 {
		var sum float64
		for _, svc := range p.Services {
			sum += svc.Price
		}
		avg := sum / float64(len(p.Services))
		priceDiff := math.Abs(avg-*criteria.Budget) / *criteria.Budget
		b.PriceMatch = math.Max(0, 1-priceDiff)
		if priceDiff < 0.2 {
			b.Reasons = append(b.Reasons, reasonPriceFit)
		}
	}

	matching := specializedServices(p.Services, criteria.Description)
	denom := len(p.Services)
	if denom < 1 {
		denom = 1
	}
	b.Specialization = float64(matching) / float64(denom)
	if matching > 0 {
		b.Reasons = append(b.Reasons, reasonSpecializes)
	}

	if _, ok := patterns.LoyaltyToProviders[p.UserID]; ok {
		b.UserHistory = 1
		b.Reasons = append(b.Reasons, reasonWorkedBefore)
	}

	b.Total = b.Rating*weightRating +
		b.Experience*weightExperience +
		b.Availability*weightAvailability +
		b.PriceMatch*weightPrice +
		b.Location*weightLocation +
		b.Specialization*weightSpecialization +
		b.UserHistory*weightHistory
	return b
}

// specializedServices counts the provider services relevant to the request:
// either the service description mentions the request text, or one of the
// service's tags appears in the request text. Matching is lower-cased rather
// than locale-collated so results are stable across platforms.
func specializedServices(services []models.ServiceOffering, description string) int {
	needle := strings.ToLower(strings.TrimSpace(description))
	if needle == "" {
		return 0
	}
	count := 0
	for _, svc := range services {
		if strings.Contains(strings.ToLower(svc.Description), needle) {
			count++
			continue
		}
		for _, tag := range svc.Tags {
			if tag != "" && strings.Contains(needle, strings.ToLower(tag)) {
				count++
				break
			}
		}
	}
	return count
}
