// Package state wires the viewports, zoom sync and highlight coordinator into
// the single object the host renderer talks to.
package state

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/litescript/ls-twinmap/internal/geo"
	"github.com/litescript/ls-twinmap/internal/highlight"
	"github.com/litescript/ls-twinmap/internal/logging"
	"github.com/litescript/ls-twinmap/internal/metrics"
	"github.com/litescript/ls-twinmap/internal/rings"
	"github.com/litescript/ls-twinmap/internal/viewport"
	"github.com/litescript/ls-twinmap/internal/zoomsync"
)

var (
	ErrClosed           = errors.New("state: manager is closed")
	ErrDuplicateID      = errors.New("state: viewport already attached")
	ErrTooManyViewports = errors.New("state: only two viewports can be attached")
)

// EventType represents the kind of activity recorded in the event log.
type EventType string

const (
	EventLocked        EventType = "LOCKED"
	EventUnlocked      EventType = "UNLOCKED"
	EventReset         EventType = "RESET"
	EventRotated       EventType = "ROTATED"
	EventBearingReset  EventType = "BEARING_RESET"
	EventZoomMirrored  EventType = "ZOOM_MIRRORED"
	EventHighlight     EventType = "HIGHLIGHT"
	EventHighlightGone EventType = "HIGHLIGHT_CLEARED"
)

// Event is one entry of the activity log.
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Viewport  viewport.ID `json:"viewport,omitempty"`
	Target    viewport.ID `json:"target,omitempty"`
	Radius    float64     `json:"radius,omitempty"`
	Zoom      float64     `json:"zoom,omitempty"`
	Bearing   float64     `json:"bearing,omitempty"`
}

// Config holds configuration for the state manager.
type Config struct {
	Radii                []float64
	Segments             int
	InitialZoom          float64
	ZoomEpsilon          float64
	ResetDuration        time.Duration
	ResetBearingDuration time.Duration
	MaxEvents            int
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Radii:                rings.DefaultRadii,
		Segments:             rings.DefaultSegments,
		InitialZoom:          15,
		ZoomEpsilon:          zoomsync.DefaultEpsilon,
		ResetDuration:        500 * time.Millisecond,
		ResetBearingDuration: 300 * time.Millisecond,
		MaxEvents:            50,
	}
}

// Manager owns both viewports and routes host signals to them.
//
// The manager is driven from the host's event loop goroutine. Handles may
// deliver events synchronously from inside camera commands, so no method
// holds a lock while calling into a handle.
type Manager struct {
	cfg Config
	log *logging.Logger
	now func() time.Time

	viewports map[viewport.ID]*viewport.Viewport
	order     []viewport.ID

	zoom      *zoomsync.Controller
	highlight *highlight.Coordinator

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	closed bool
}

// NewManager creates a manager. The scheduler releases the zoom guard at the
// next frame; log may be nil.
func NewManager(cfg Config, scheduler zoomsync.Scheduler, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.Discard()
	}
	if len(cfg.Radii) == 0 {
		cfg.Radii = rings.DefaultRadii
	}
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}

	m := &Manager{
		cfg:       cfg,
		log:       log.With("state"),
		now:       time.Now,
		viewports: make(map[viewport.ID]*viewport.Viewport, 2),
		zoom:      zoomsync.NewController(scheduler, cfg.ZoomEpsilon),
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
	}
	m.highlight = highlight.NewCoordinator(m.targets)
	return m
}

// Attach creates the record for cfg on h, subscribes to the handle's events
// and draws the initial rings around the configured initial center.
func (m *Manager) Attach(cfg viewport.Config, h viewport.Handle) error {
	if m.closed {
		return ErrClosed
	}
	if _, ok := m.viewports[cfg.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, cfg.ID)
	}
	if !m.zoom.Register(cfg.ID, h) {
		return fmt.Errorf("%w: %s", ErrTooManyViewports, cfg.ID)
	}

	id := cfg.ID
	v := viewport.New(cfg, h)
	m.viewports[id] = v
	m.order = append(m.order, id)

	v.Track(h.Subscribe(viewport.EventMoved, func(viewport.Event) {
		m.OnCenterChanged(id)
	}))
	v.Track(h.Subscribe(viewport.EventZoomSettled, func(viewport.Event) {
		m.OnZoomSettled(id)
	}))
	v.Track(h.Subscribe(viewport.EventRotated, func(viewport.Event) {
		m.OnRotated(id)
	}))
	v.Track(h.Subscribe(viewport.EventPointerEntered, func(viewport.Event) {
		m.log.Debug("pointer entered ring layer on %s", id)
	}))
	v.Track(h.Subscribe(viewport.EventPointerMoved, func(ev viewport.Event) {
		m.OnHoverCandidate(id, ev.Radius, ev.HasRadius)
	}))
	v.Track(h.Subscribe(viewport.EventPointerLeft, func(viewport.Event) {
		m.OnHoverLeave(id)
	}))

	m.rebuild(v, cfg.InitialCenter)
	m.log.Info("attached viewport %s at %s (rotation=%t)", id, cfg.InitialCenter, cfg.AllowRotation)
	return nil
}

// Detach closes one viewport. Unknown ids are ignored.
func (m *Manager) Detach(id viewport.ID) {
	v, ok := m.viewports[id]
	if !ok {
		return
	}
	v.Close()
	m.zoom.Unregister(id)
	delete(m.viewports, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.log.Info("detached viewport %s", id)
}

// Close detaches every viewport. It is safe to call more than once.
func (m *Manager) Close() {
	if m.closed {
		return
	}
	for _, id := range append([]viewport.ID(nil), m.order...) {
		m.Detach(id)
	}
	m.closed = true
}

// Viewport returns the live record for id.
func (m *Manager) Viewport(id viewport.ID) (*viewport.Viewport, bool) {
	v, ok := m.viewports[id]
	return v, ok
}

// IDs returns the attached viewport ids in attach order.
func (m *Manager) IDs() []viewport.ID {
	return append([]viewport.ID(nil), m.order...)
}

// BuildRingSet generates the configured rings around center.
func (m *Manager) BuildRingSet(center geo.Point) (rings.Set, error) {
	return rings.Build(center, m.cfg.Radii, m.cfg.Segments)
}

// Rings returns the ring set currently drawn on id.
func (m *Manager) Rings(id viewport.ID) (rings.Set, bool) {
	v, ok := m.viewports[id]
	if !ok || !v.HasRings() {
		return rings.Set{}, false
	}
	return v.Rings(), true
}

func (m *Manager) rebuild(v *viewport.Viewport, center geo.Point) {
	id := string(v.ID())
	set, err := m.BuildRingSet(center)
	if err != nil {
		metrics.RingBuildErrors.WithLabelValues(id).Inc()
		m.log.Warn("skip ring rebuild on %s around %s: %v", id, center, err)
		return
	}
	v.ApplyRings(set)
	metrics.RingBuilds.WithLabelValues(id).Inc()
}

// SetActiveRing toggles the highlight of one ring on one viewport.
func (m *Manager) SetActiveRing(id viewport.ID, radius float64, active bool) bool {
	v, ok := m.viewports[id]
	if !ok {
		return false
	}
	return v.SetActiveRing(radius, active)
}

// OnCenterChanged refreshes the camera record and regenerates the rings
// around the viewport's current center.
func (m *Manager) OnCenterChanged(id viewport.ID) {
	v, ok := m.viewports[id]
	if !ok || v.Closed() {
		return
	}
	center := v.Handle().Center()
	v.Refresh()
	m.rebuild(v, center)
}

// OnZoomSettled mirrors the settled zoom of id into its sibling.
func (m *Manager) OnZoomSettled(id viewport.ID) {
	v, ok := m.viewports[id]
	if !ok || v.Closed() {
		return
	}
	v.Refresh()

	before := m.zoom.Stats()
	if m.zoom.Settled(id) {
		target, _ := m.zoom.Sibling(id)
		zoom := v.State().Zoom
		metrics.ZoomMirrors.Inc()
		m.addEvent(Event{Type: EventZoomMirrored, Viewport: id, Target: target, Zoom: zoom})
		m.log.Debug("mirrored zoom %.3f from %s to %s", zoom, id, target)
		return
	}
	if m.zoom.Stats().Suppressed > before.Suppressed {
		metrics.ZoomSuppressed.Inc()
		m.log.Debug("suppressed zoom settle on %s", id)
	}
}

// OnRotated records the viewport's new bearing.
func (m *Manager) OnRotated(id viewport.ID) {
	v, ok := m.viewports[id]
	if !ok || v.Closed() {
		return
	}
	v.Refresh()
}

// OnHoverCandidate highlights radius in every viewport. ok=false, or a
// non-finite radius, clears the highlight instead.
func (m *Manager) OnHoverCandidate(id viewport.ID, radius float64, ok bool) {
	if _, known := m.viewports[id]; !known {
		return
	}
	if !ok {
		radius = math.NaN()
	}

	before := m.highlight.Changes()
	m.highlight.Hover(radius)
	if m.highlight.Changes() == before {
		return
	}

	metrics.HighlightChanges.Inc()
	if r, active := m.highlight.Current(); active {
		m.addEvent(Event{Type: EventHighlight, Viewport: id, Radius: r})
	} else {
		m.addEvent(Event{Type: EventHighlightGone, Viewport: id})
	}
}

// OnHoverLeave clears the highlight in every viewport.
func (m *Manager) OnHoverLeave(id viewport.ID) {
	m.OnHoverCandidate(id, 0, false)
}

// Lock pins the current center of id.
func (m *Manager) Lock(id viewport.ID) bool {
	v, ok := m.viewports[id]
	if !ok || !v.Lock() {
		return false
	}
	m.transition(id, EventLocked)
	return true
}

// Unlock re-enables panning of id.
func (m *Manager) Unlock(id viewport.ID) bool {
	v, ok := m.viewports[id]
	if !ok || !v.Unlock() {
		return false
	}
	m.transition(id, EventUnlocked)
	return true
}

// ToggleLock locks an unlocked viewport and unlocks a locked one. It returns
// the new lock state.
func (m *Manager) ToggleLock(id viewport.ID) bool {
	v, ok := m.viewports[id]
	if !ok {
		return false
	}
	if v.Locked() {
		m.Unlock(id)
	} else {
		m.Lock(id)
	}
	return v.Locked()
}

// Reset flies id back to its initial view and unlocks it.
func (m *Manager) Reset(id viewport.ID) {
	v, ok := m.viewports[id]
	if !ok || v.Closed() {
		return
	}
	v.Reset(m.cfg.InitialZoom, m.cfg.ResetDuration)
	m.transition(id, EventReset)
}

// RotateTo sets the bearing of a rotation-enabled viewport.
func (m *Manager) RotateTo(id viewport.ID, bearing float64) bool {
	v, ok := m.viewports[id]
	if !ok || !v.RotateTo(bearing) {
		return false
	}
	m.addEvent(Event{Type: EventRotated, Viewport: id, Bearing: v.State().Bearing})
	metrics.ViewportTransitions.WithLabelValues(string(id), string(EventRotated)).Inc()
	return true
}

// ResetBearing eases a rotation-enabled viewport back to north.
func (m *Manager) ResetBearing(id viewport.ID) bool {
	v, ok := m.viewports[id]
	if !ok || !v.ResetBearing(m.cfg.ResetBearingDuration) {
		return false
	}
	m.transition(id, EventBearingReset)
	return true
}

func (m *Manager) transition(id viewport.ID, kind EventType) {
	m.addEvent(Event{Type: kind, Viewport: id})
	metrics.ViewportTransitions.WithLabelValues(string(id), string(kind)).Inc()
	m.log.Info("%s %s", id, kind)
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = m.now()
	}
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		result[i] = m.events[(m.eventWriteAt+i)%m.maxEvents]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// Snapshot is a copy of the manager's state for display.
type Snapshot struct {
	Viewports     []viewport.State // Attach order
	HoveredRadius *float64
	ZoomApplying  bool
	Zoom          zoomsync.Stats
	Events        []Event
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() Snapshot {
	snap := Snapshot{
		Viewports:    make([]viewport.State, 0, len(m.order)),
		ZoomApplying: m.zoom.Applying(),
		Zoom:         m.zoom.Stats(),
		Events:       m.getEventsOrdered(),
	}
	for _, id := range m.order {
		snap.Viewports = append(snap.Viewports, m.viewports[id].State())
	}
	if r, ok := m.highlight.Current(); ok {
		snap.HoveredRadius = &r
	}
	return snap
}

// State returns the record of one viewport.
func (m *Manager) State(id viewport.ID) (viewport.State, bool) {
	v, ok := m.viewports[id]
	if !ok {
		return viewport.State{}, false
	}
	return v.State(), true
}

func (m *Manager) targets() []highlight.Target {
	out := make([]highlight.Target, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.viewports[id])
	}
	return out
}
