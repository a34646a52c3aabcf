// Package rings builds concentric geodesic distance rings around a center.
package rings

import (
	"errors"
	"fmt"
	"math"

	"github.com/litescript/ls-twinmap/internal/geo"
)

const (
	// DefaultSegments is the number of samples taken around each circle.
	DefaultSegments = 120

	// minSegments is the smallest tessellation that still forms a polygon.
	minSegments = 3
)

// DefaultRadii are the ring radii in meters, ascending.
var DefaultRadii = []float64{100, 200, 300, 400, 500, 600, 700, 800, 900, 1000, 1500, 2000}

// ErrInvalidCenter is returned when a ring set is requested around a
// non-finite center.
var ErrInvalidCenter = errors.New("rings: center is not a finite coordinate")

// Ring is one closed polygon of constant distance from the set center.
type Ring struct {
	Index     int         // Position in the radius ordering
	Radius    float64     // Radius in meters, unique within a set
	Polygon   []geo.Point // Closed: first point repeated as last
	Label     geo.Point   // Point on the ring at bearing 0
	ShowLabel bool        // Every other ring by index, starting at 0
}

// Label is a distance tag placed on a ring at bearing 0.
type Label struct {
	Index  int
	Radius float64
	Point  geo.Point
	Text   string
}

// Set is the ordered collection of rings generated for one center.
type Set struct {
	Center   geo.Point
	Segments int
	Rings    []Ring

	byRadius map[float64]int
}

// Build tessellates one ring per radius around center.
//
// Radii that are not finite, not positive, or already present are skipped;
// the remaining rings keep the index they had in radii, so label parity does
// not shift when an entry is dropped. A non-finite center yields an empty set
// and ErrInvalidCenter.
func Build(center geo.Point, radii []float64, segments int) (Set, error) {
	if segments < minSegments {
		segments = DefaultSegments
	}

	set := Set{
		Center:   center,
		Segments: segments,
		byRadius: make(map[float64]int, len(radii)),
	}
	if !center.Valid() {
		return set, ErrInvalidCenter
	}

	set.Rings = make([]Ring, 0, len(radii))
	for i, r := range radii {
		if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
			continue
		}
		if _, dup := set.byRadius[r]; dup {
			continue
		}

		set.byRadius[r] = len(set.Rings)
		set.Rings = append(set.Rings, Ring{
			Index:     i,
			Radius:    r,
			Polygon:   Circle(center, r, segments),
			Label:     geo.Destination(center, 0, r),
			ShowLabel: i%2 == 0,
		})
	}

	return set, nil
}

// Circle samples a closed polygon of the given radius around center.
func Circle(center geo.Point, radiusMeters float64, segments int) []geo.Point {
	if segments < minSegments {
		segments = DefaultSegments
	}

	step := 360.0 / float64(segments)
	coords := make([]geo.Point, 0, segments+1)
	for i := 0; i < segments; i++ {
		coords = append(coords, geo.Destination(center, step*float64(i), radiusMeters))
	}
	return append(coords, coords[0])
}

// Len returns the number of rings in the set.
func (s Set) Len() int {
	return len(s.Rings)
}

// Empty reports whether the set holds no rings.
func (s Set) Empty() bool {
	return len(s.Rings) == 0
}

// Lookup returns the ring with the given radius.
func (s Set) Lookup(radius float64) (Ring, bool) {
	idx, ok := s.byRadius[radius]
	if !ok {
		return Ring{}, false
	}
	return s.Rings[idx], true
}

// Contains reports whether the set has a ring with the given radius.
func (s Set) Contains(radius float64) bool {
	_, ok := s.byRadius[radius]
	return ok
}

// Radii returns the radii of the set in order.
func (s Set) Radii() []float64 {
	radii := make([]float64, len(s.Rings))
	for i, r := range s.Rings {
		radii[i] = r.Radius
	}
	return radii
}

// Labels returns the visible distance labels: one per ring at an even index.
func (s Set) Labels() []Label {
	var labels []Label
	for _, r := range s.Rings {
		if !r.ShowLabel {
			continue
		}
		labels = append(labels, Label{
			Index:  r.Index,
			Radius: r.Radius,
			Point:  r.Label,
			Text:   FormatRadius(r.Radius),
		})
	}
	return labels
}

// FormatRadius renders a radius for display, e.g. "500 m".
func FormatRadius(meters float64) string {
	if meters == math.Trunc(meters) {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.1f m", meters)
}
