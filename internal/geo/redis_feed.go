package geo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/provider-matching/internal/models"
)

// RedisFeed implements Feed on top of Redis GEO commands plus a metadata
// hash per provider for the last-update timestamp.
type RedisFeed struct {
	client *redis.Client
	key    string
}

func NewRedisFeed(addr, password, key string) *RedisFeed {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &RedisFeed{client: c, key: key}
}

func (r *RedisFeed) Upsert(ctx context.Context, ping models.LocationPing) error {
	ts := ping.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	if _, err := r.client.GeoAdd(ctx, r.key, &redis.GeoLocation{Longitude: ping.Lon, Latitude: ping.Lat, Name: ping.ProviderID}).Result(); err != nil {
		return fmt.Errorf("geoadd %s: %w", ping.ProviderID, err)
	}
	err := r.client.HSet(ctx, locKey(ping.ProviderID), map[string]interface{}{
		"lat":     strconv.FormatFloat(ping.Lat, 'f', -1, 64),
		"lon":     strconv.FormatFloat(ping.Lon, 'f', -1, 64),
		"updated": ts.Format(time.RFC3339Nano),
	}).Err()
	if err != nil {
		return fmt.Errorf("hset %s: %w", ping.ProviderID, err)
	}
	return nil
}

func (r *RedisFeed) Recent(ctx context.Context, providerIDs []string, maxAge time.Duration) (map[string]models.ProviderLocation, error) {
	cutoff := time.Now().Add(-maxAge)
	out := make(map[string]models.ProviderLocation, len(providerIDs))
	for _, id := range providerIDs {
		m, err := r.client.HGetAll(ctx, locKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("hgetall %s: %w", id, err)
		}
		if len(m) == 0 {
			continue
		}
		loc, ok := parseLocation(m)
		if !ok || loc.LastUpdate.Before(cutoff) {
			continue
		}
		out[id] = loc
	}
	return out, nil
}

func parseLocation(m map[string]string) (models.ProviderLocation, bool) {
	lat, err1 := strconv.ParseFloat(m["lat"], 64)
	lon, err2 := strconv.ParseFloat(m["lon"], 64)
	ts, err3 := time.Parse(time.RFC3339Nano, m["updated"])
	if err1 != nil || err2 != nil || err3 != nil {
		return models.ProviderLocation{}, false
	}
	return models.ProviderLocation{Lat: lat, Lon: lon, LastUpdate: ts}, true
}

func locKey(id string) string { return "provider:loc:" + id }
