package viewport

import (
	"time"

	"github.com/litescript/ls-twinmap/internal/geo"
	"github.com/litescript/ls-twinmap/internal/rings"
)

// EventKind identifies a signal emitted by a host viewport.
type EventKind int

const (
	EventMoved          EventKind = iota // Camera center/zoom/bearing changed
	EventZoomSettled                     // A zoom gesture or animation came to rest
	EventRotated                         // Bearing changed
	EventPointerEntered                  // Pointer entered the ring layer
	EventPointerMoved                    // Pointer moved over the ring layer
	EventPointerLeft                     // Pointer left the ring layer
)

func (k EventKind) String() string {
	switch k {
	case EventMoved:
		return "moved"
	case EventZoomSettled:
		return "zoom-settled"
	case EventRotated:
		return "rotated"
	case EventPointerEntered:
		return "pointer-entered"
	case EventPointerMoved:
		return "pointer-moved"
	case EventPointerLeft:
		return "pointer-left"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers of a Handle.
type Event struct {
	Kind EventKind

	// Radius is the ring under the pointer for EventPointerMoved.
	// HasRadius is false when the host could not resolve a ring.
	Radius    float64
	HasRadius bool
}

// Camera describes a camera command. Nil fields are left unchanged.
// A zero Duration applies the change immediately.
type Camera struct {
	Center   *geo.Point
	Zoom     *float64
	Bearing  *float64
	Pitch    *float64
	Duration time.Duration
}

// Handle is the host renderer's view of one map viewport.
type Handle interface {
	Center() geo.Point
	Zoom() float64
	Bearing() float64
	Pitch() float64

	// EaseTo moves the camera, animating over cam.Duration.
	EaseTo(cam Camera)

	// SetTranslationEnabled toggles pan input.
	SetTranslationEnabled(enabled bool)

	// SetRingData replaces the ring overlay geometry.
	SetRingData(set rings.Set)

	// SetFeatureState toggles the highlight of the ring keyed by radius.
	SetFeatureState(radius float64, highlighted bool)

	// AddMarker places a distance label on the viewport.
	AddMarker(label rings.Label) Marker

	// Subscribe registers fn for events of the given kind and returns a
	// function that removes the subscription.
	Subscribe(kind EventKind, fn func(Event)) (unsubscribe func())
}

// Marker is a label overlay owned by a viewport.
type Marker interface {
	SetPosition(p geo.Point)
	SetActive(active bool)
	Remove()
}

// Float returns a pointer to v, for Camera fields.
func Float(v float64) *float64 {
	return &v
}

// At returns a pointer to p, for Camera.Center.
func At(p geo.Point) *geo.Point {
	return &p
}
