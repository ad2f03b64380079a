package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/tripweave/internal/cache"
	"github.com/neexbeast/tripweave/internal/itinerary"
	"github.com/neexbeast/tripweave/internal/route"
)

func newTestCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewCache(client), mr
}

func sampleDays() []itinerary.DayGroup {
	refID := int64(10)
	return []itinerary.DayGroup{
		{DayNumber: 1, Items: []itinerary.Item{
			{ID: 1, ItineraryID: 12, DayNumber: 1, OrderNumber: 1, Type: itinerary.TypeScenic, RefID: &refID, Name: "Dom Luis bridge"},
			{ID: 2, ItineraryID: 12, DayNumber: 1, OrderNumber: 2, Type: itinerary.TypeActivity, Name: "Lunch"},
		}},
		{DayNumber: 3, Items: []itinerary.Item{
			{ID: 3, ItineraryID: 12, DayNumber: 3, OrderNumber: 1, Type: itinerary.TypeActivity, Name: "Wine tasting"},
		}},
	}
}

func TestDayView_SetGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetDayView(ctx, 12, sampleDays()))

	got, err := c.GetDayView(ctx, 12)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].DayNumber)
	assert.Equal(t, "Dom Luis bridge", got[0].Items[0].Name)
	require.NotNil(t, got[0].Items[0].RefID)
	assert.Equal(t, int64(10), *got[0].Items[0].RefID)
	assert.Equal(t, 3, got[1].DayNumber)
}

func TestDayView_MissIsNilNil(t *testing.T) {
	c, _ := newTestCache(t)

	got, err := c.GetDayView(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDayView_EmptyViewIsCached(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetDayView(ctx, 12, nil))

	got, err := c.GetDayView(ctx, 12)
	require.NoError(t, err)
	require.NotNil(t, got, "an empty plan must be a cache hit, not a miss")
	assert.Empty(t, got)
}

func TestDayView_Delete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetDayView(ctx, 12, sampleDays()))
	require.NoError(t, c.DeleteDayView(ctx, 12))

	got, err := c.GetDayView(ctx, 12)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDayView_Expires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetDayView(ctx, 12, sampleDays()))
	mr.FastForward(11 * time.Minute)

	got, err := c.GetDayView(ctx, 12)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRouteGraph_SetGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	scenicID := int64(10)
	g := &route.Graph{
		Route: route.FeaturedRoute{ID: 5, Name: "Coastal Classics", Active: true},
		Spots: []route.Spot{
			{ID: 1, RouteID: 5, OrderNumber: 1, ScenicID: &scenicID},
			{ID: 2, RouteID: 5, OrderNumber: 2, Name: "Secret beach"},
		},
	}
	require.NoError(t, c.SetRouteGraph(ctx, 5, g))

	got, err := c.GetRouteGraph(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Coastal Classics", got.Route.Name)
	require.Len(t, got.Spots, 2)
	assert.True(t, got.Spots[1].Custom())
}

func TestRouteGraph_MissIsNilNil(t *testing.T) {
	c, _ := newTestCache(t)

	got, err := c.GetRouteGraph(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRouteGraph_Delete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetRouteGraph(ctx, 5, &route.Graph{Route: route.FeaturedRoute{ID: 5}}))
	require.NoError(t, c.DeleteRouteGraph(ctx, 5))

	got, err := c.GetRouteGraph(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestKeySpacesDoNotCollide(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetDayView(ctx, 5, sampleDays()))
	require.NoError(t, c.SetRouteGraph(ctx, 5, &route.Graph{Route: route.FeaturedRoute{ID: 5}}))

	assert.True(t, mr.Exists("itinerary:days:5"))
	assert.True(t, mr.Exists("route:graph:5"))
}
