package patterns

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/provider-matching/internal/models"
)

func price(v float64) *float64 { return &v }

func TestAnalyzeEmptyHistory(t *testing.T) {
	p := Analyze(nil)
	assert.Zero(t, p.PreferredPriceRange.Min)
	assert.Zero(t, p.PreferredPriceRange.Max)
	assert.Zero(t, p.AverageRatingGiven)
	assert.Zero(t, p.CompletionRate)
	assert.Empty(t, p.MostUsedServiceTypes)
	assert.Empty(t, p.LoyaltyToProviders)
}

func TestAnalyzePriceRangeSkipsUnpriced(t *testing.T) {
	h := []models.HistoryRecord{
		{ServiceTypeID: "plumbing", Price: price(120)},
		{ServiceTypeID: "plumbing"},
		{ServiceTypeID: "plumbing", Price: price(80)},
		{ServiceTypeID: "plumbing", Price: price(200)},
	}
	p := Analyze(h)
	assert.Equal(t, 80.0, p.PreferredPriceRange.Min)
	assert.Equal(t, 200.0, p.PreferredPriceRange.Max)
}

func TestAnalyzeNoPricedRecords(t *testing.T) {
	h := []models.HistoryRecord{{ServiceTypeID: "plumbing"}, {ServiceTypeID: "electric"}}
	p := Analyze(h)
	assert.Zero(t, p.PreferredPriceRange.Min)
	assert.Zero(t, p.PreferredPriceRange.Max)
}

func TestAnalyzeAverageRating(t *testing.T) {
	h := []models.HistoryRecord{
		{ServiceTypeID: "a", Review: &models.Review{Rating: 5}},
		{ServiceTypeID: "a"},
		{ServiceTypeID: "a", Review: &models.Review{Rating: 3}},
	}
	p := Analyze(h)
	assert.InDelta(t, 4.0, p.AverageRatingGiven, 1e-9)
}

func TestAnalyzeTopServiceTypesStableOrder(t *testing.T) {
	h := []models.HistoryRecord{
		{ServiceTypeID: "cleaning"},
		{ServiceTypeID: "plumbing"},
		{ServiceTypeID: "plumbing"},
		{ServiceTypeID: "electric"},
		{ServiceTypeID: "painting"},
	}
	p := Analyze(h)
	// plumbing leads; cleaning/electric tie at 1 but cleaning was seen first
	assert.Equal(t, []string{"plumbing", "cleaning", "electric"}, p.MostUsedServiceTypes)
}

func TestAnalyzeLoyaltySkipsUnassigned(t *testing.T) {
	h := []models.HistoryRecord{
		{ServiceTypeID: "a", ProviderID: "p1"},
		{ServiceTypeID: "a", ProviderID: "p1"},
		{ServiceTypeID: "a"},
		{ServiceTypeID: "a", ProviderID: "p2"},
	}
	p := Analyze(h)
	assert.Equal(t, map[string]int{"p1": 2, "p2": 1}, p.LoyaltyToProviders)
}

func TestAnalyzeCompletionRate(t *testing.T) {
	now := time.Now()
	h := []models.HistoryRecord{
		{ServiceTypeID: "a", Status: models.StatusCompleted, CreatedAt: now},
		{ServiceTypeID: "a", Status: models.StatusCancelled, CreatedAt: now},
		{ServiceTypeID: "a", Status: models.StatusCompleted, CreatedAt: now},
		{ServiceTypeID: "a", Status: models.StatusPending, CreatedAt: now},
	}
	p := Analyze(h)
	assert.InDelta(t, 0.5, p.CompletionRate, 1e-9)
}
