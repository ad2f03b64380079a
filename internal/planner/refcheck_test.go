package planner_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/tripweave/internal/itinerary"
	"github.com/neexbeast/tripweave/internal/planner"
)

func waitForRefCheck(t *testing.T, refs *fakeRefs) int64 {
	t.Helper()
	select {
	case id := <-refs.calls:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("referential check was never consulted")
		return 0
	}
}

func TestAddItem_StrictModeRejectsMissingRef(t *testing.T) {
	svc, d := newServiceWithMode(t, itinerary.RefCheckStrict)
	d.headers.byID[12] = storedHeader(12, 7, itinerary.VisibilityPrivate)
	d.refs.exists = false

	_, err := svc.AddItem(context.Background(), 12, 7, itinerary.Item{
		DayNumber: 1, OrderNumber: 1, Type: itinerary.TypeScenic, RefID: i64p(999), Name: "Ghost spot",
	})
	require.True(t, itinerary.IsValidation(err))
	assert.Contains(t, err.Error(), "does not exist")
	assert.Empty(t, d.items.inserted, "a dangling reference must never reach the store")
	assert.Equal(t, int64(999), waitForRefCheck(t, d.refs))
}

func TestAddItem_StrictModePassesWithExistingRef(t *testing.T) {
	svc, d := newServiceWithMode(t, itinerary.RefCheckStrict)
	d.headers.byID[12] = storedHeader(12, 7, itinerary.VisibilityPrivate)

	_, err := svc.AddItem(context.Background(), 12, 7, itinerary.Item{
		DayNumber: 1, OrderNumber: 1, Type: itinerary.TypeScenic, RefID: i64p(10), Name: "Cliff walk",
	})
	require.NoError(t, err)
	require.Len(t, d.items.inserted, 1)
	assert.Equal(t, int64(10), waitForRefCheck(t, d.refs))
}

func TestAddItem_StrictModeSkipsActivity(t *testing.T) {
	svc, d := newServiceWithMode(t, itinerary.RefCheckStrict)
	d.headers.byID[12] = storedHeader(12, 7, itinerary.VisibilityPrivate)

	_, err := svc.AddItem(context.Background(), 12, 7, itinerary.Item{
		DayNumber: 1, OrderNumber: 1, Type: itinerary.TypeActivity, Name: "Picnic",
	})
	require.NoError(t, err)
	require.Len(t, d.items.inserted, 1)
	assert.Empty(t, d.refs.calls, "an item without a linked entity has nothing to verify")
}

func TestUpdateItem_StrictModeRejectsMissingRef(t *testing.T) {
	svc, d := newServiceWithMode(t, itinerary.RefCheckStrict)
	d.headers.byID[12] = storedHeader(12, 7, itinerary.VisibilityPrivate)
	d.refs.exists = false

	_, err := svc.UpdateItem(context.Background(), 12, 7, itinerary.Item{
		ID: 3, DayNumber: 1, OrderNumber: 1, Type: itinerary.TypeHotel, RefID: i64p(888), Name: "Ghost hotel",
	})
	require.True(t, itinerary.IsValidation(err))
	assert.Empty(t, d.items.updated, "a dangling reference must never reach the store")
}

func TestAddItem_StrictModeCheckerFailurePropagates(t *testing.T) {
	svc, d := newServiceWithMode(t, itinerary.RefCheckStrict)
	d.headers.byID[12] = storedHeader(12, 7, itinerary.VisibilityPrivate)
	d.refs.err = fmt.Errorf("connection refused")

	_, err := svc.AddItem(context.Background(), 12, 7, itinerary.Item{
		DayNumber: 1, OrderNumber: 1, Type: itinerary.TypeScenic, RefID: i64p(10), Name: "Cliff walk",
	})
	require.Error(t, err)
	assert.Empty(t, d.items.inserted)
}

func TestAddItem_LazyModeVerifiesAfterWrite(t *testing.T) {
	svc, d := newServiceWithMode(t, itinerary.RefCheckLazy)
	d.headers.byID[12] = storedHeader(12, 7, itinerary.VisibilityPrivate)
	d.refs.exists = false
	d.items.flat = []itinerary.Item{
		{ID: 3, ItineraryID: 12, DayNumber: 1, OrderNumber: 1, Type: itinerary.TypeScenic, RefID: i64p(999), Name: "Ghost spot"},
	}

	_, err := svc.AddItem(context.Background(), 12, 7, itinerary.Item{
		DayNumber: 1, OrderNumber: 1, Type: itinerary.TypeScenic, RefID: i64p(999), Name: "Ghost spot",
	})
	require.NoError(t, err, "lazy mode never blocks the write")
	require.Len(t, d.items.inserted, 1, "the item is persisted even if its reference dangles")

	assert.Equal(t, int64(999), waitForRefCheck(t, d.refs))
	assert.Empty(t, d.items.updated, "verification only logs, it never mutates rows")
	assert.Empty(t, d.items.removed)
}

func TestRemoveItem_LazyModeReverifies(t *testing.T) {
	svc, d := newServiceWithMode(t, itinerary.RefCheckLazy)
	d.headers.byID[12] = storedHeader(12, 7, itinerary.VisibilityPrivate)
	d.items.flat = []itinerary.Item{
		{ID: 4, ItineraryID: 12, DayNumber: 1, OrderNumber: 1, Type: itinerary.TypeHotel, RefID: i64p(20), Name: "Harbor hotel"},
	}

	require.NoError(t, svc.RemoveItem(context.Background(), 12, 7, 3))
	assert.Equal(t, int64(20), waitForRefCheck(t, d.refs))
}

func TestReplaceItinerary_LazyModeVerifiesSuppliedDays(t *testing.T) {
	svc, d := newServiceWithMode(t, itinerary.RefCheckLazy)
	d.headers.byID[12] = storedHeader(12, 7, itinerary.VisibilityPrivate)
	d.items.flat = []itinerary.Item{
		{ID: 5, ItineraryID: 12, DayNumber: 1, OrderNumber: 1, Type: itinerary.TypeScenic, RefID: i64p(10), Name: "Cliff walk"},
	}

	days := []itinerary.DayGroup{{DayNumber: 1, Items: []itinerary.Item{
		{DayNumber: 1, OrderNumber: 1, Type: itinerary.TypeScenic, RefID: i64p(10), Name: "Cliff walk"},
	}}}
	_, err := svc.ReplaceItinerary(context.Background(), 12, 7, planner.HeaderPatch{}, &days)
	require.NoError(t, err)
	assert.Equal(t, int64(10), waitForRefCheck(t, d.refs))
}

func TestReplaceItinerary_LazyModeIdleWithoutDays(t *testing.T) {
	svc, d := newServiceWithMode(t, itinerary.RefCheckLazy)
	d.headers.byID[12] = storedHeader(12, 7, itinerary.VisibilityPrivate)

	_, err := svc.ReplaceItinerary(context.Background(), 12, 7, planner.HeaderPatch{}, nil)
	require.NoError(t, err)

	select {
	case id := <-d.refs.calls:
		t.Fatalf("header-only write must not trigger verification, got check for %d", id)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestAddItem_LazyModeCheckerFailureStaysInternal(t *testing.T) {
	svc, d := newServiceWithMode(t, itinerary.RefCheckLazy)
	d.headers.byID[12] = storedHeader(12, 7, itinerary.VisibilityPrivate)
	d.refs.err = fmt.Errorf("connection refused")
	d.items.flat = []itinerary.Item{
		{ID: 3, ItineraryID: 12, DayNumber: 1, OrderNumber: 1, Type: itinerary.TypeScenic, RefID: i64p(10), Name: "Cliff walk"},
	}

	_, err := svc.AddItem(context.Background(), 12, 7, itinerary.Item{
		DayNumber: 1, OrderNumber: 1, Type: itinerary.TypeScenic, RefID: i64p(10), Name: "Cliff walk",
	})
	require.NoError(t, err, "checker failures are logged, never surfaced to the caller")
	waitForRefCheck(t, d.refs)
}
