// Package geo resolves effective coordinates for plan stops.
package geo

// Point is a geographic position. The pair form is always longitude-first;
// the named fields expose the same values for callers that prefer them.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Pair returns the position as a [lon, lat] slice.
func (p Point) Pair() []float64 { return []float64{p.Lon, p.Lat} }

// Resolve picks the effective coordinates for a stop under a strict priority:
// an override on the join row wins over the linked master entity's own
// position. When neither source is present the stop is unresolved, which is a
// valid outcome (ok=false) distinct from a real position at 0,0. Resolve
// never fails on missing input.
func Resolve(override, master *Point) (Point, bool) {
	if override != nil {
		return *override, true
	}
	if master != nil {
		return *master, true
	}
	return Point{}, false
}
