package matcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/provider-matching/internal/geo"
	"github.com/example/provider-matching/internal/models"
	"github.com/example/provider-matching/internal/observability"
	"github.com/example/provider-matching/internal/patterns"
	"github.com/example/provider-matching/internal/storage"
)

// Dispatcher notifies a provider that it topped a match.
type Dispatcher interface {
	Offer(providerID string, offer models.MatchOffer) error
}

// historyLimit bounds how much history feeds the pattern analyzer.
const historyLimit = 50

// defaultLocationMaxAge is how far back the live-location feed is trusted.
const defaultLocationMaxAge = 24 * time.Hour

// Service orchestrates one matching call: history → patterns → parallel
// scoring → ranking → location attachment → insights.
type Service struct {
	History   storage.HistoryStore
	Providers storage.ProviderDirectory
	Locations geo.Feed
	Dispatch  Dispatcher // optional

	MinScore       float64       // 0 means the fixed policy default
	MaxMatches     int           // 0 means the fixed policy default
	LocationMaxAge time.Duration // 0 means the fixed policy default
}

func (s *Service) Match(ctx context.Context, requestID, clientID string, criteria models.Criteria) (*models.MatchResponse, error) {
	start := time.Now()
	defer func() {
		observability.MatchLatency.Observe(time.Since(start).Seconds())
	}()

	minScore := s.MinScore
	if minScore <= 0 {
		minScore = minMatchScore
	}
	limit := s.MaxMatches
	if limit <= 0 {
		limit = maxMatches
	}
	maxAge := s.LocationMaxAge
	if maxAge <= 0 {
		maxAge = defaultLocationMaxAge
	}

	history, err := s.History.RecentHistory(ctx, clientID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", clientID, err)
	}
	pats := patterns.Analyze(history)

	cands, err := s.Providers.Candidates(ctx, criteria.ServiceTypeID)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates for %s: %w", criteria.ServiceTypeID, err)
	}

	// Scoring is pure, so candidates are scored concurrently into a
	// pre-sized slice; the rank step re-sorts, so completion order is
	// irrelevant.
	scored := make([]models.MatchResult, len(cands))
	var wg sync.WaitGroup
	for i, p := range cands {
		wg.Add(1)
		go func(i int, p models.CandidateProvider) {
			defer wg.Done()
			b := Score(p, criteria, pats)
			scored[i] = models.MatchResult{
				Provider:      p,
				MatchingScore: b.Total,
				Breakdown:     b,
				Reasons:       b.Reasons,
			}
		}(i, p)
	}
	wg.Wait()
	observability.CandidatesScored.Add(float64(len(cands)))

	matches := rank(scored, minScore, limit)
	s.attachLocations(ctx, matches, criteria, maxAge)

	resp := &models.MatchResponse{
		Matches:      matches,
		Insights:     summarize(matches, pats),
		UserPatterns: pats,
	}

	if len(matches) > 0 {
		observability.MatchesTotal.Inc()
		if s.Dispatch != nil {
			best := matches[0]
			// best-effort notification, the response does not depend on it
			_ = s.Dispatch.Offer(best.Provider.UserID, models.MatchOffer{
				RequestID:     requestID,
				ProviderID:    best.Provider.UserID,
				ServiceTypeID: criteria.ServiceTypeID,
				Score:         best.MatchingScore,
			})
		}
	}
	return resp, nil
}

// attachLocations decorates ranked matches with their most recent live
// location and, when the request carries coordinates, the distance to it.
// Feed failures degrade to matches without location data.
func (s *Service) attachLocations(ctx context.Context, matches []models.MatchResult, criteria models.Criteria, maxAge time.Duration) {
	if s.Locations == nil || len(matches) == 0 {
		return
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.Provider.UserID)
	}
	locs, err := s.Locations.Recent(ctx, ids, maxAge)
	if err != nil {
		return
	}
	for i := range matches {
		loc, ok := locs[matches[i].Provider.UserID]
		if !ok {
			continue
		}
		l := loc
		matches[i].Location = &l
		if criteria.Location != nil {
			d := geo.HaversineKm(criteria.Location.Lat, criteria.Location.Lon, loc.Lat, loc.Lon)
			matches[i].DistanceKm = &d
		}
	}
}
