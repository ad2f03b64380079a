// Package cache holds the Redis-backed read-through cache for derived data:
// day-grouped itinerary views and featured-route graphs. Cached values are
// always derived; the flat rows in Postgres remain the source of truth.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neexbeast/tripweave/internal/itinerary"
	"github.com/neexbeast/tripweave/internal/route"
)

const (
	dayViewTTL = 10 * time.Minute
	routeTTL   = time.Hour
)

// Connect parses redisURL, creates a client, and verifies connectivity with
// a ping.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return client, nil
}

// Cache wraps a Redis client with typed get/set/delete per key space.
type Cache struct {
	client *redis.Client
}

// NewCache constructs a Cache.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func dayViewKey(itineraryID int64) string {
	return "itinerary:days:" + strconv.FormatInt(itineraryID, 10)
}

func routeKey(routeID int64) string {
	return "route:graph:" + strconv.FormatInt(routeID, 10)
}

// GetDayView retrieves a cached day-grouped view. A miss is nil, nil.
func (c *Cache) GetDayView(ctx context.Context, itineraryID int64) ([]itinerary.DayGroup, error) {
	val, err := c.client.Get(ctx, dayViewKey(itineraryID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get day view %d: %w", itineraryID, err)
	}

	var days []itinerary.DayGroup
	if err := json.Unmarshal([]byte(val), &days); err != nil {
		return nil, fmt.Errorf("unmarshaling cached day view %d: %w", itineraryID, err)
	}
	if days == nil {
		days = []itinerary.DayGroup{}
	}
	return days, nil
}

// SetDayView stores a day-grouped view. An empty view is cached too: an
// itinerary with no items is a valid, frequent read.
func (c *Cache) SetDayView(ctx context.Context, itineraryID int64, days []itinerary.DayGroup) error {
	if days == nil {
		days = []itinerary.DayGroup{}
	}
	b, err := json.Marshal(days)
	if err != nil {
		return fmt.Errorf("marshaling day view %d: %w", itineraryID, err)
	}
	if err := c.client.Set(ctx, dayViewKey(itineraryID), b, dayViewTTL).Err(); err != nil {
		return fmt.Errorf("cache set day view %d: %w", itineraryID, err)
	}
	return nil
}

// DeleteDayView drops the cached view; every write path calls this.
func (c *Cache) DeleteDayView(ctx context.Context, itineraryID int64) error {
	if err := c.client.Del(ctx, dayViewKey(itineraryID)).Err(); err != nil {
		return fmt.Errorf("cache delete day view %d: %w", itineraryID, err)
	}
	return nil
}

// GetRouteGraph retrieves a cached featured-route graph. A miss is nil, nil.
func (c *Cache) GetRouteGraph(ctx context.Context, routeID int64) (*route.Graph, error) {
	val, err := c.client.Get(ctx, routeKey(routeID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get route graph %d: %w", routeID, err)
	}

	var g route.Graph
	if err := json.Unmarshal([]byte(val), &g); err != nil {
		return nil, fmt.Errorf("unmarshaling cached route graph %d: %w", routeID, err)
	}
	return &g, nil
}

// SetRouteGraph stores a featured-route graph.
func (c *Cache) SetRouteGraph(ctx context.Context, routeID int64, g *route.Graph) error {
	if g == nil {
		return nil
	}
	b, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshaling route graph %d: %w", routeID, err)
	}
	if err := c.client.Set(ctx, routeKey(routeID), b, routeTTL).Err(); err != nil {
		return fmt.Errorf("cache set route graph %d: %w", routeID, err)
	}
	return nil
}

// DeleteRouteGraph drops a cached route graph, for when curation changes a
// route out from under the TTL.
func (c *Cache) DeleteRouteGraph(ctx context.Context, routeID int64) error {
	if err := c.client.Del(ctx, routeKey(routeID)).Err(); err != nil {
		return fmt.Errorf("cache delete route graph %d: %w", routeID, err)
	}
	return nil
}
