// Package viewport holds per-viewport state, its lock/reset/rotate
// transitions, and the lifecycle of the overlays it owns on a host handle.
package viewport

import (
	"math"
	"time"

	"github.com/litescript/ls-twinmap/internal/geo"
	"github.com/litescript/ls-twinmap/internal/rings"
)

// ID names a viewport.
type ID string

const (
	Left  ID = "left"
	Right ID = "right"
)

// Config is the static setup of one viewport.
type Config struct {
	ID            ID
	Label         string
	InitialCenter geo.Point
	AllowRotation bool
}

// State is a snapshot of one viewport's record.
type State struct {
	ID            ID
	Label         string
	Center        geo.Point
	Zoom          float64
	Bearing       float64 // Always normalized to (-180, 180]
	Pitch         float64
	Locked        bool
	LockedCenter  geo.Point
	InitialCenter geo.Point
	AllowRotation bool
	HoveredRadius *float64
}

// Viewport is the live record for one host viewport. It owns the label
// markers it placed and the subscriptions registered with Track; Close
// releases both.
//
// A Viewport is not safe for concurrent use.
type Viewport struct {
	handle Handle
	state  State

	rings        rings.Set
	featureState map[float64]bool
	markers      map[int]Marker // keyed by ring index

	unsubscribe []func()
	closed      bool
}

// New creates the record for cfg, reading the camera from h.
func New(cfg Config, h Handle) *Viewport {
	v := &Viewport{
		handle: h,
		state: State{
			ID:            cfg.ID,
			Label:         cfg.Label,
			Center:        cfg.InitialCenter,
			LockedCenter:  cfg.InitialCenter,
			InitialCenter: cfg.InitialCenter,
			AllowRotation: cfg.AllowRotation,
		},
		featureState: make(map[float64]bool),
		markers:      make(map[int]Marker),
	}
	v.Refresh()
	return v
}

// ID returns the viewport id.
func (v *Viewport) ID() ID {
	return v.state.ID
}

// Handle returns the host handle.
func (v *Viewport) Handle() Handle {
	return v.handle
}

// State returns a copy of the current record.
func (v *Viewport) State() State {
	s := v.state
	if s.HoveredRadius != nil {
		r := *s.HoveredRadius
		s.HoveredRadius = &r
	}
	return s
}

// Rings returns the current ring set.
func (v *Viewport) Rings() rings.Set {
	return v.rings
}

// HasRings reports whether a ring set is attached.
func (v *Viewport) HasRings() bool {
	return !v.closed && !v.rings.Empty()
}

// Closed reports whether Close has run.
func (v *Viewport) Closed() bool {
	return v.closed
}

// Track records an unsubscribe function to run on Close.
func (v *Viewport) Track(unsubscribe func()) {
	if unsubscribe == nil {
		return
	}
	if v.closed {
		unsubscribe()
		return
	}
	v.unsubscribe = append(v.unsubscribe, unsubscribe)
}

// Refresh copies the camera from the handle into the record.
func (v *Viewport) Refresh() {
	if v.closed || v.handle == nil {
		return
	}
	if c := v.handle.Center(); c.Valid() {
		v.state.Center = c
	}
	v.state.Zoom = v.handle.Zoom()
	v.state.Bearing = geo.NormalizeBearing(v.handle.Bearing())
	v.state.Pitch = v.handle.Pitch()
}

// ApplyRings replaces the overlay geometry, repositions the label markers
// and re-applies any active highlight that still exists in the new set.
func (v *Viewport) ApplyRings(set rings.Set) {
	if v.closed {
		return
	}
	v.rings = set
	v.handle.SetRingData(set)

	for _, label := range set.Labels() {
		m, ok := v.markers[label.Index]
		if !ok {
			m = v.handle.AddMarker(label)
			if m == nil {
				continue
			}
			v.markers[label.Index] = m
		}
		m.SetPosition(label.Point)
	}

	for radius, on := range v.featureState {
		if on && set.Contains(radius) {
			v.handle.SetFeatureState(radius, true)
		}
	}
}

// SetActiveRing toggles the highlight of one ring and its label marker.
// It returns false when the radius is not in the current ring set.
func (v *Viewport) SetActiveRing(radius float64, active bool) bool {
	if v.closed {
		return false
	}
	ring, ok := v.rings.Lookup(radius)
	if !ok {
		return false
	}

	if active {
		v.featureState[radius] = true
	} else {
		delete(v.featureState, radius)
	}
	v.handle.SetFeatureState(radius, active)

	if m, ok := v.markers[ring.Index]; ok {
		m.SetActive(active)
	}
	return true
}

// Highlighted reports whether the ring with the given radius is active.
func (v *Viewport) Highlighted(radius float64) bool {
	return v.featureState[radius]
}

// HoveredRadius returns the radius recorded by the last hover.
func (v *Viewport) HoveredRadius() (float64, bool) {
	if v.state.HoveredRadius == nil {
		return 0, false
	}
	return *v.state.HoveredRadius, true
}

// SetHoveredRadius records the hovered radius; ok=false clears it.
func (v *Viewport) SetHoveredRadius(radius float64, ok bool) {
	if !ok || math.IsNaN(radius) || math.IsInf(radius, 0) {
		v.state.HoveredRadius = nil
		return
	}
	v.state.HoveredRadius = &radius
}

// Locked reports whether the center is locked.
func (v *Viewport) Locked() bool {
	return v.state.Locked
}

// Lock captures the current center and disables pan input. Zoom and, when
// allowed, rotation stay active.
func (v *Viewport) Lock() bool {
	if v.closed || v.state.Locked {
		return false
	}
	v.Refresh()
	v.state.Locked = true
	v.state.LockedCenter = v.state.Center
	v.handle.SetTranslationEnabled(false)
	return true
}

// Unlock re-enables pan input. The center is not restored.
func (v *Viewport) Unlock() bool {
	if v.closed || !v.state.Locked {
		return false
	}
	v.state.Locked = false
	v.handle.SetTranslationEnabled(true)
	return true
}

// Reset returns to the initial center at zoom with zero pitch, unlocked.
// Bearing goes to 0 only when rotation is allowed; otherwise the current
// bearing is kept.
func (v *Viewport) Reset(zoom float64, duration time.Duration) {
	if v.closed {
		return
	}
	if v.state.Locked {
		v.state.Locked = false
		v.handle.SetTranslationEnabled(true)
	}
	v.state.LockedCenter = v.state.InitialCenter

	bearing := geo.NormalizeBearing(v.handle.Bearing())
	if v.state.AllowRotation {
		bearing = 0
		v.state.Bearing = 0
	}

	v.handle.EaseTo(Camera{
		Center:   At(v.state.InitialCenter),
		Zoom:     Float(zoom),
		Bearing:  Float(bearing),
		Pitch:    Float(0),
		Duration: duration,
	})
}

// RotateTo sets the bearing immediately. It is refused when rotation is not
// allowed for this viewport.
func (v *Viewport) RotateTo(bearing float64) bool {
	if v.closed || !v.state.AllowRotation || math.IsNaN(bearing) || math.IsInf(bearing, 0) {
		return false
	}
	bearing = geo.NormalizeBearing(bearing)
	v.handle.EaseTo(Camera{Bearing: Float(bearing)})
	v.state.Bearing = bearing
	return true
}

// ResetBearing eases the bearing back to north.
func (v *Viewport) ResetBearing(duration time.Duration) bool {
	if v.closed || !v.state.AllowRotation {
		return false
	}
	v.handle.EaseTo(Camera{Bearing: Float(0), Duration: duration})
	return true
}

// Close removes every owned marker and runs every tracked unsubscribe
// function. It is safe to call more than once.
func (v *Viewport) Close() {
	if v.closed {
		return
	}
	v.closed = true

	for idx, m := range v.markers {
		m.Remove()
		delete(v.markers, idx)
	}
	for _, unsub := range v.unsubscribe {
		unsub()
	}
	v.unsubscribe = nil
	v.featureState = make(map[float64]bool)
	v.state.HoveredRadius = nil
}
