// Package viewporttest provides an in-memory viewport.Handle for tests.
package viewporttest

import (
	"github.com/litescript/ls-twinmap/internal/geo"
	"github.com/litescript/ls-twinmap/internal/rings"
	"github.com/litescript/ls-twinmap/internal/viewport"
)

// Handle is a fake host viewport. Camera commands apply instantly and emit
// the same events a real host would after the change.
type Handle struct {
	CenterValue  geo.Point
	ZoomValue    float64
	BearingValue float64
	PitchValue   float64

	TranslationEnabled bool

	RingData      rings.Set
	RingDataCalls int
	FeatureState  map[float64]bool
	Markers       []*Marker
	Commands      []viewport.Camera

	// SettleOnJump makes zero-duration zoom commands emit
	// EventZoomSettled before EaseTo returns.
	SettleOnJump bool

	subs   map[viewport.EventKind]map[int]func(viewport.Event)
	nextID int
}

// NewHandle returns a handle at center and zoom with pan input enabled.
func NewHandle(center geo.Point, zoom float64) *Handle {
	return &Handle{
		CenterValue:        center,
		ZoomValue:          zoom,
		TranslationEnabled: true,
		FeatureState:       make(map[float64]bool),
		subs:               make(map[viewport.EventKind]map[int]func(viewport.Event)),
	}
}

func (h *Handle) Center() geo.Point { return h.CenterValue }
func (h *Handle) Zoom() float64      { return h.ZoomValue }
func (h *Handle) Bearing() float64   { return h.BearingValue }
func (h *Handle) Pitch() float64     { return h.PitchValue }

// EaseTo records the command and applies it immediately.
func (h *Handle) EaseTo(cam viewport.Camera) {
	h.Commands = append(h.Commands, cam)

	zoomed := cam.Zoom != nil && *cam.Zoom != h.ZoomValue
	rotated := cam.Bearing != nil && *cam.Bearing != h.BearingValue

	if cam.Center != nil {
		h.CenterValue = *cam.Center
	}
	if cam.Zoom != nil {
		h.ZoomValue = *cam.Zoom
	}
	if cam.Bearing != nil {
		h.BearingValue = *cam.Bearing
	}
	if cam.Pitch != nil {
		h.PitchValue = *cam.Pitch
	}

	h.Emit(viewport.Event{Kind: viewport.EventMoved})
	if rotated {
		h.Emit(viewport.Event{Kind: viewport.EventRotated})
	}
	if zoomed && cam.Duration == 0 && h.SettleOnJump {
		h.Emit(viewport.Event{Kind: viewport.EventZoomSettled})
	}
}

// ZoomCommands returns the commands that carried a zoom.
func (h *Handle) ZoomCommands() []viewport.Camera {
	var out []viewport.Camera
	for _, c := range h.Commands {
		if c.Zoom != nil {
			out = append(out, c)
		}
	}
	return out
}

func (h *Handle) SetTranslationEnabled(enabled bool) {
	h.TranslationEnabled = enabled
}

func (h *Handle) SetRingData(set rings.Set) {
	h.RingData = set
	h.RingDataCalls++
}

func (h *Handle) SetFeatureState(radius float64, highlighted bool) {
	h.FeatureState[radius] = highlighted
}

func (h *Handle) AddMarker(label rings.Label) viewport.Marker {
	m := &Marker{Label: label, Position: label.Point}
	h.Markers = append(h.Markers, m)
	return m
}

func (h *Handle) Subscribe(kind viewport.EventKind, fn func(viewport.Event)) func() {
	if h.subs[kind] == nil {
		h.subs[kind] = make(map[int]func(viewport.Event))
	}
	id := h.nextID
	h.nextID++
	h.subs[kind][id] = fn
	return func() { delete(h.subs[kind], id) }
}

// Subscribers returns the number of live subscriptions across all kinds.
func (h *Handle) Subscribers() int {
	n := 0
	for _, m := range h.subs {
		n += len(m)
	}
	return n
}

// Emit delivers ev to every subscriber of its kind.
func (h *Handle) Emit(ev viewport.Event) {
	for _, fn := range h.subs[ev.Kind] {
		fn(ev)
	}
}

// Pan simulates a drag. It does nothing while translation is disabled.
func (h *Handle) Pan(to geo.Point) bool {
	if !h.TranslationEnabled {
		return false
	}
	h.CenterValue = to
	h.Emit(viewport.Event{Kind: viewport.EventMoved})
	return true
}

// SetZoom simulates the end of a user zoom gesture.
func (h *Handle) SetZoom(z float64) {
	h.ZoomValue = z
	h.Emit(viewport.Event{Kind: viewport.EventMoved})
	h.Emit(viewport.Event{Kind: viewport.EventZoomSettled})
}

// Marker is a fake label marker.
type Marker struct {
	Label    rings.Label
	Position geo.Point
	Active   bool
	Removed  bool
	Removals int
}

func (m *Marker) SetPosition(p geo.Point) { m.Position = p }
func (m *Marker) SetActive(active bool)   { m.Active = active }
func (m *Marker) Remove() {
	m.Removed = true
	m.Removals++
}
