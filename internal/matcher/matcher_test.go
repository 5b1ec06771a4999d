package matcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/provider-matching/internal/geo"
	"github.com/example/provider-matching/internal/models"
	"github.com/example/provider-matching/internal/storage"
)

type capturingDispatch struct {
	offers []models.MatchOffer
}

func (c *capturingDispatch) Offer(providerID string, offer models.MatchOffer) error {
	c.offers = append(c.offers, offer)
	return nil
}

func newTestService(store *storage.MemoryStore, feed geo.Feed, d Dispatcher) *Service {
	return &Service{History: store, Providers: store, Locations: feed, Dispatch: d}
}

func TestMatchRanksProvidersAndNotifiesBest(t *testing.T) {
	store := storage.NewMemoryStore()
	store.AddProviders("plumbing",
		models.CandidateProvider{UserID: "weak", Rating: 1, IsAvailable: false},
		models.CandidateProvider{
			UserID: "strong", Rating: 5, IsAvailable: true, CompletedJobs: 50,
			Services: []models.ServiceOffering{{Price: 100, Description: "pipe repair", Tags: []string{"pipes"}}},
		},
		models.CandidateProvider{UserID: "middling", Rating: 4, IsAvailable: true, CompletedJobs: 10},
	)
	disp := &capturingDispatch{}
	svc := newTestService(store, geo.NewMemoryFeed(), disp)

	b := 100.0
	resp, err := svc.Match(context.Background(), "req1", "client1", models.Criteria{
		ServiceTypeID: "plumbing",
		Description:   "pipe repair",
		Budget:        &b,
	})
	require.NoError(t, err)
	// "weak" is filtered upstream by availability; "strong" outranks "middling"
	require.Len(t, resp.Matches, 2)
	assert.Equal(t, "strong", resp.Matches[0].Provider.UserID)
	assert.Equal(t, "middling", resp.Matches[1].Provider.UserID)
	assert.Greater(t, resp.Matches[0].MatchingScore, resp.Matches[1].MatchingScore)

	require.Len(t, disp.offers, 1)
	assert.Equal(t, "strong", disp.offers[0].ProviderID)
	assert.Equal(t, "req1", disp.offers[0].RequestID)
}

func TestMatchNoCandidates(t *testing.T) {
	svc := newTestService(storage.NewMemoryStore(), geo.NewMemoryFeed(), nil)

	resp, err := svc.Match(context.Background(), "req1", "client1", models.Criteria{ServiceTypeID: "gardening"})
	require.NoError(t, err)
	assert.Empty(t, resp.Matches)
	assert.Zero(t, resp.Insights.TotalMatches)
	assert.Zero(t, resp.Insights.AverageMatchScore)
}

func TestMatchAttachesLocationAndDistance(t *testing.T) {
	store := storage.NewMemoryStore()
	store.AddProviders("plumbing", models.CandidateProvider{UserID: "p1", Rating: 5, IsAvailable: true, CompletedJobs: 50})
	feed := geo.NewMemoryFeed()
	require.NoError(t, feed.Upsert(context.Background(), models.LocationPing{
		ProviderID: "p1", Lat: 40.42, Lon: -3.70, Timestamp: time.Now(),
	}))
	svc := newTestService(store, feed, nil)

	resp, err := svc.Match(context.Background(), "req1", "client1", models.Criteria{
		ServiceTypeID: "plumbing",
		Location:      &models.Coord{Lat: 40.4168, Lon: -3.7038},
	})
	require.NoError(t, err)
	require.Len(t, resp.Matches, 1)
	require.NotNil(t, resp.Matches[0].Location)
	require.NotNil(t, resp.Matches[0].DistanceKm)
	assert.Less(t, *resp.Matches[0].DistanceKm, 5.0)
	assert.Contains(t, resp.Insights.Recommendations, recommendNearby)
}

func TestMatchIgnoresStaleLocations(t *testing.T) {
	store := storage.NewMemoryStore()
	store.AddProviders("plumbing", models.CandidateProvider{UserID: "p1", Rating: 5, IsAvailable: true})
	feed := geo.NewMemoryFeed()
	require.NoError(t, feed.Upsert(context.Background(), models.LocationPing{
		ProviderID: "p1", Lat: 40.42, Lon: -3.70, Timestamp: time.Now().Add(-48 * time.Hour),
	}))
	svc := newTestService(store, feed, nil)

	resp, err := svc.Match(context.Background(), "req1", "client1", models.Criteria{
		ServiceTypeID: "plumbing",
		Location:      &models.Coord{Lat: 40.4168, Lon: -3.7038},
	})
	require.NoError(t, err)
	require.Len(t, resp.Matches, 1)
	assert.Nil(t, resp.Matches[0].Location)
	assert.Nil(t, resp.Matches[0].DistanceKm)
}

func TestMatchUsesClientHistory(t *testing.T) {
	store := storage.NewMemoryStore()
	store.AddHistory("client1",
		models.HistoryRecord{ServiceTypeID: "plumbing", ProviderID: "loyal", Status: models.StatusCompleted, CreatedAt: time.Now()},
		models.HistoryRecord{ServiceTypeID: "plumbing", ProviderID: "loyal", Status: models.StatusCompleted, CreatedAt: time.Now()},
	)
	store.AddProviders("plumbing",
		models.CandidateProvider{UserID: "loyal", Rating: 4, IsAvailable: true},
		models.CandidateProvider{UserID: "other", Rating: 4, IsAvailable: true},
	)
	svc := newTestService(store, geo.NewMemoryFeed(), nil)

	resp, err := svc.Match(context.Background(), "req1", "client1", models.Criteria{ServiceTypeID: "plumbing"})
	require.NoError(t, err)
	require.Len(t, resp.Matches, 2)
	assert.Equal(t, "loyal", resp.Matches[0].Provider.UserID)
	assert.Contains(t, resp.Matches[0].Reasons, "You've worked with this provider before")
	assert.Equal(t, map[string]int{"loyal": 2}, resp.UserPatterns.LoyaltyToProviders)
	assert.InDelta(t, 1.0, resp.UserPatterns.CompletionRate, 1e-9)
}

func TestMatchParallelScoringIsDeterministic(t *testing.T) {
	store := storage.NewMemoryStore()
	for i := 0; i < 40; i++ {
		store.AddProviders("plumbing", models.CandidateProvider{
			UserID: string(rune('a' + i%26)), Rating: float64(i%5) + 1, IsAvailable: true, CompletedJobs: i,
		})
	}
	svc := newTestService(store, geo.NewMemoryFeed(), nil)

	first, err := svc.Match(context.Background(), "req1", "client1", models.Criteria{ServiceTypeID: "plumbing"})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := svc.Match(context.Background(), "req1", "client1", models.Criteria{ServiceTypeID: "plumbing"})
		require.NoError(t, err)
		assert.Equal(t, first.Matches, again.Matches)
	}
}
