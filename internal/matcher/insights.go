package matcher

import (
	"sort"

	"github.com/example/provider-matching/internal/models"
)

// Ranking policy. These are fixed behavior, not per-call options: changing
// either changes which providers a client sees.
const (
	minMatchScore  = 0.3
	maxMatches     = 10
	maxTopReasons  = 3
	nearbyRadiusKm = 5.0
)

const (
	recommendHigherRated = "Consider higher-rated providers to improve your experience"
	recommendNearby      = "Nearby providers are available"
)

// rank filters out weak matches, orders the rest by score, and caps the list.
func rank(results []models.MatchResult, minScore float64, limit int) []models.MatchResult {
	out := make([]models.MatchResult, 0, len(results))
	for _, r := range results {
		if r.MatchingScore > minScore {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MatchingScore > out[j].MatchingScore
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// summarize builds aggregate insights over the final ranked match list.
func summarize(matches []models.MatchResult, patterns models.UserPatterns) models.MatchingInsights {
	ins := models.MatchingInsights{
		TotalMatches:    len(matches),
		TopReasons:      []string{},
		Recommendations: []string{},
	}

	if len(matches) > 0 {
		var sum float64
		for _, m := range matches {
			sum += m.MatchingScore
		}
		ins.AverageMatchScore = sum / float64(len(matches))
	}

	ins.TopReasons = topReasons(matches)

	var prices []float64
	for _, m := range matches {
		for _, svc := range m.Provider.Services {
			prices = append(prices, svc.Price)
		}
	}
	if len(prices) > 0 {
		min, max, sum := prices[0], prices[0], 0.0
		for _, p := range prices {
			if p < min {
				min = p
			}
			if p > max {
				max = p
			}
			sum += p
		}
		ins.PriceAnalysis = models.PriceAnalysis{
			AveragePrice: sum / float64(len(prices)),
			PriceRange:   models.PriceRange{Min: min, Max: max},
		}
	}

	if patterns.CompletionRate < 0.8 {
		ins.Recommendations = append(ins.Recommendations, recommendHigherRated)
	}
	for _, m := range matches {
		if m.DistanceKm != nil && *m.DistanceKm < nearbyRadiusKm {
			ins.Recommendations = append(ins.Recommendations, recommendNearby)
			break
		}
	}

	return ins
}

// topReasons counts reason frequency across matches and keeps the most
// common three, first-seen order breaking ties.
func topReasons(matches []models.MatchResult) []string {
	counts := make(map[string]int)
	order := []string{}
	for _, m := range matches {
		for _, r := range m.Reasons {
			if _, seen := counts[r]; !seen {
				order = append(order, r)
			}
			counts[r]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxTopReasons {
		order = order[:maxTopReasons]
	}
	return order
}
