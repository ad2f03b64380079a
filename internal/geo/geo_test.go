package geo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/tripweave/internal/geo"
)

func TestResolve_OverrideWins(t *testing.T) {
	override := &geo.Point{Lon: 10, Lat: 20}
	master := &geo.Point{Lon: 99, Lat: 88}

	got, ok := geo.Resolve(override, master)
	require.True(t, ok)
	assert.Equal(t, []float64{10, 20}, got.Pair())
}

func TestResolve_FallsBackToMaster(t *testing.T) {
	master := &geo.Point{Lon: 99, Lat: 88}

	got, ok := geo.Resolve(nil, master)
	require.True(t, ok)
	assert.Equal(t, 99.0, got.Lon)
	assert.Equal(t, 88.0, got.Lat)
}

func TestResolve_Unresolved(t *testing.T) {
	_, ok := geo.Resolve(nil, nil)
	assert.False(t, ok, "no source means unresolved, not an error")
}

func TestResolve_ZeroOverrideIsAPosition(t *testing.T) {
	got, ok := geo.Resolve(&geo.Point{}, &geo.Point{Lon: 5, Lat: 6})
	require.True(t, ok)
	assert.Equal(t, []float64{0, 0}, got.Pair(), "a real 0,0 stays distinguishable from unresolved")
}

func TestPair_LongitudeFirst(t *testing.T) {
	p := geo.Point{Lon: -9.14, Lat: 38.72}
	assert.Equal(t, []float64{-9.14, 38.72}, p.Pair())
}
