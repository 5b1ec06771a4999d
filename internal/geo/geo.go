package geo

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/example/provider-matching/internal/models"
)

// Feed exposes recent provider locations to the matcher and handlers.
type Feed interface {
	// Recent returns the most recent location per provider id, dropping
	// entries older than maxAge.
	Recent(ctx context.Context, providerIDs []string, maxAge time.Duration) (map[string]models.ProviderLocation, error)
	Upsert(ctx context.Context, ping models.LocationPing) error
}

// MemoryFeed keeps the latest ping per provider in memory. Used for tests
// and local runs without Redis.
type MemoryFeed struct {
	mu   sync.RWMutex
	last map[string]models.ProviderLocation
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{last: make(map[string]models.ProviderLocation)}
}

func (f *MemoryFeed) Upsert(ctx context.Context, ping models.LocationPing) error {
	ts := ping.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if prev, ok := f.last[ping.ProviderID]; ok && prev.LastUpdate.After(ts) {
		return nil
	}
	f.last[ping.ProviderID] = models.ProviderLocation{Lat: ping.Lat, Lon: ping.Lon, LastUpdate: ts}
	return nil
}

func (f *MemoryFeed) Recent(ctx context.Context, providerIDs []string, maxAge time.Duration) (map[string]models.ProviderLocation, error) {
	cutoff := time.Now().Add(-maxAge)
	out := make(map[string]models.ProviderLocation, len(providerIDs))
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, id := range providerIDs {
		loc, ok := f.last[id]
		if !ok || loc.LastUpdate.Before(cutoff) {
			continue
		}
		out[id] = loc
	}
	return out, nil
}

// HaversineKm is the great-circle distance between two points in kilometers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}
