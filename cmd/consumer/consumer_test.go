package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/provider-matching/internal/models"
)

// fakeUpdater implements RedisUpdater for tests
type fakeUpdater struct {
	failGeo  int // number of times to fail GeoAdd before succeeding
	failH    int // number of times to fail HSet before succeeding
	geoCalls int
	hCalls   int
}

func (f *fakeUpdater) GeoAdd(ctx context.Context, key string, loc *redis.GeoLocation) error {
	f.geoCalls++
	if f.geoCalls <= f.failGeo {
		return errors.New("geo fail")
	}
	return nil
}

func (f *fakeUpdater) HSet(ctx context.Context, key string, values map[string]interface{}) error {
	f.hCalls++
	if f.hCalls <= f.failH {
		return errors.New("hset fail")
	}
	return nil
}

func TestUpdateRedisWithRetry_SucceedsAfterRetries(t *testing.T) {
	f := &fakeUpdater{failGeo: 1, failH: 1}
	p := models.LocationPing{ProviderID: "p1", Lat: 1, Lon: 2, Timestamp: time.Now()}
	ctx := context.Background()
	start := time.Now()
	if err := updateRedisWithRetry(ctx, f, "providers_geo", p, 3, 10*time.Millisecond); err != nil {
		t.Fatalf("expected success, got err=%v", err)
	}
	if f.geoCalls < 2 || f.hCalls < 2 {
		t.Fatalf("expected retries, got geo=%d h=%d", f.geoCalls, f.hCalls)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Fatalf("expected at least one backoff")
	}
}

func TestUpdateRedisWithRetry_FailsWhenExhausted(t *testing.T) {
	f := &fakeUpdater{failGeo: 5, failH: 0}
	p := models.LocationPing{ProviderID: "p1", Lat: 1, Lon: 2, Timestamp: time.Now()}
	ctx := context.Background()
	if err := updateRedisWithRetry(ctx, f, "providers_geo", p, 3, 5*time.Millisecond); err == nil {
		t.Fatalf("expected error after retries")
	}
}

func TestValidPing(t *testing.T) {
	cases := []struct {
		name string
		ping models.LocationPing
		want bool
	}{
		{"ok", models.LocationPing{ProviderID: "p", Lat: 40.4, Lon: -3.7}, true},
		{"missing id", models.LocationPing{Lat: 1, Lon: 1}, false},
		{"lat out of range", models.LocationPing{ProviderID: "p", Lat: 91, Lon: 0}, false},
		{"lon out of range", models.LocationPing{ProviderID: "p", Lat: 0, Lon: -181}, false},
	}
	for _, tc := range cases {
		if got := validPing(tc.ping); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}
