package patterns

import (
	"sort"

	"github.com/example/provider-matching/internal/models"
)

// maxServiceTypes caps how many favored service types a profile carries.
const maxServiceTypes = 3

// Analyze derives a behavioral profile from a client's past requests.
// It is a pure function: empty history yields the zero profile, never an error.
func Analyze(history []models.HistoryRecord) models.UserPatterns {
	p := models.UserPatterns{LoyaltyToProviders: make(map[string]int)}
	if len(history) == 0 {
		return p
	}

	var (
		priced      bool
		ratingSum   float64
		ratingCount int
		completed   int
	)
	typeCounts := make(map[string]int)
	typeOrder := make([]string, 0, len(history))

	for _, h := range history {
		if h.Price != nil {
			if !priced {
				p.PreferredPriceRange.Min = *h.Price
				p.PreferredPriceRange.Max = *h.Price
				priced = true
			} else {
				if *h.Price < p.PreferredPriceRange.Min {
					p.PreferredPriceRange.Min = *h.Price
				}
				if *h.Price > p.PreferredPriceRange.Max {
					p.PreferredPriceRange.Max = *h.Price
				}
			}
		}
		if h.Review != nil {
			ratingSum += h.Review.Rating
			ratingCount++
		}
		if _, seen := typeCounts[h.ServiceTypeID]; !seen {
			typeOrder = append(typeOrder, h.ServiceTypeID)
		}
		typeCounts[h.ServiceTypeID]++
		if h.ProviderID != "" {
			p.LoyaltyToProviders[h.ProviderID]++
		}
		if h.Status == models.StatusCompleted {
			completed++
		}
	}

	if ratingCount > 0 {
		p.AverageRatingGiven = ratingSum / float64(ratingCount)
	}
	p.CompletionRate = float64(completed) / float64(len(history))

	// stable sort keeps first-encountered order among equal counts
	sort.SliceStable(typeOrder, func(i, j int) bool {
		return typeCounts[typeOrder[i]] > typeCounts[typeOrder[j]]
	})
	n := maxServiceTypes
	if n > len(typeOrder) {
		n = len(typeOrder)
	}
	p.MostUsedServiceTypes = append([]string(nil), typeOrder[:n]...)

	return p
}
