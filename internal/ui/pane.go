package ui

import (
	"math"
	"time"

	"github.com/litescript/ls-twinmap/internal/geo"
	"github.com/litescript/ls-twinmap/internal/rings"
	"github.com/litescript/ls-twinmap/internal/viewport"
)

const (
	minZoom = 0.0
	maxZoom = 22.0
)

// camera is the full camera record of a pane.
type camera struct {
	center  geo.Point
	zoom    float64
	bearing float64
	pitch   float64
}

// cameraAnim is an in-flight EaseTo.
type cameraAnim struct {
	from     camera
	to       camera
	start    time.Time
	duration time.Duration
	zooming  bool
	rotating bool
}

// MapPane is one terminal map viewport. It implements viewport.Handle.
type MapPane struct {
	id    viewport.ID
	label string

	width  int
	height int

	cam         camera
	anim        *cameraAnim
	translation bool
	now         func() time.Time

	rings    rings.Set
	features map[float64]bool
	markers  []*labelMarker

	subs    map[viewport.EventKind]map[int]func(viewport.Event)
	nextSub int

	pointerInside bool
}

// NewMapPane creates a pane showing center at zoom.
func NewMapPane(id viewport.ID, label string, center geo.Point, zoom float64) *MapPane {
	return &MapPane{
		id:          id,
		label:       label,
		cam:         camera{center: center, zoom: clampZoom(zoom)},
		translation: true,
		now:         time.Now,
		features:    make(map[float64]bool),
		subs:        make(map[viewport.EventKind]map[int]func(viewport.Event)),
	}
}

// ID returns the viewport id shown by the pane.
func (p *MapPane) ID() viewport.ID { return p.id }

// SetSize sets the canvas size in cells.
func (p *MapPane) SetSize(width, height int) {
	p.width = max(width, 0)
	p.height = max(height, 0)
}

func (p *MapPane) Center() geo.Point { return p.cam.center }
func (p *MapPane) Zoom() float64      { return p.cam.zoom }
func (p *MapPane) Bearing() float64   { return p.cam.bearing }
func (p *MapPane) Pitch() float64     { return p.cam.pitch }

// Animating reports whether a camera animation is running.
func (p *MapPane) Animating() bool { return p.anim != nil }

// EaseTo moves the camera. A zero duration jumps and fires the resulting
// events before returning; otherwise the move is animated by Advance.
func (p *MapPane) EaseTo(c viewport.Camera) {
	target := p.cam
	if p.anim != nil {
		target = p.anim.to
	}
	if c.Center != nil && c.Center.Valid() {
		target.center = *c.Center
	}
	if c.Zoom != nil && !math.IsNaN(*c.Zoom) {
		target.zoom = clampZoom(*c.Zoom)
	}
	if c.Bearing != nil && !math.IsNaN(*c.Bearing) && !math.IsInf(*c.Bearing, 0) {
		target.bearing = geo.NormalizeBearing(*c.Bearing)
	}
	if c.Pitch != nil && !math.IsNaN(*c.Pitch) {
		target.pitch = *c.Pitch
	}

	if c.Duration <= 0 {
		prev := p.cam
		p.anim = nil
		p.cam = target
		p.emit(viewport.Event{Kind: viewport.EventMoved})
		if target.bearing != prev.bearing {
			p.emit(viewport.Event{Kind: viewport.EventRotated})
		}
		if target.zoom != prev.zoom {
			p.emit(viewport.Event{Kind: viewport.EventZoomSettled})
		}
		return
	}

	p.anim = &cameraAnim{
		from:     p.cam,
		to:       target,
		start:    p.now(),
		duration: c.Duration,
		zooming:  target.zoom != p.cam.zoom,
		rotating: target.bearing != p.cam.bearing,
	}
}

// Advance steps the running animation to now. It returns true while the
// camera moved.
func (p *MapPane) Advance(now time.Time) bool {
	a := p.anim
	if a == nil {
		return false
	}

	t := float64(now.Sub(a.start)) / float64(a.duration)
	if t >= 1.0 {
		p.anim = nil
		p.cam = a.to
		p.emit(viewport.Event{Kind: viewport.EventMoved})
		if a.rotating {
			p.emit(viewport.Event{Kind: viewport.EventRotated})
		}
		if a.zooming {
			p.emit(viewport.Event{Kind: viewport.EventZoomSettled})
		}
		return true
	}
	if t < 0 {
		t = 0
	}

	// Ease-out cubic
	t = 1 - math.Pow(1-t, 3)

	p.cam = camera{
		center: geo.Point{
			Lon: geo.NormalizeLongitude(lerpAngle(a.from.center.Lon, a.to.center.Lon, t)),
			Lat: lerp(a.from.center.Lat, a.to.center.Lat, t),
		},
		zoom:    lerp(a.from.zoom, a.to.zoom, t),
		bearing: lerpAngle(a.from.bearing, a.to.bearing, t),
		pitch:   lerp(a.from.pitch, a.to.pitch, t),
	}
	p.emit(viewport.Event{Kind: viewport.EventMoved})
	if a.rotating {
		p.emit(viewport.Event{Kind: viewport.EventRotated})
	}
	return true
}

// ZoomBy starts an animated zoom gesture. The settle event fires when the
// animation ends.
func (p *MapPane) ZoomBy(delta float64, duration time.Duration) {
	base := p.cam.zoom
	if p.anim != nil {
		base = p.anim.to.zoom
	}
	p.EaseTo(viewport.Camera{Zoom: viewport.Float(base + delta), Duration: duration})
}

// Pan moves the center by a number of cells in screen space. It is refused
// while translation input is disabled.
func (p *MapPane) Pan(dCol, dRow int) bool {
	if !p.translation || (dCol == 0 && dRow == 0) {
		return false
	}

	mpp := metersPerPixel(p.cam.center.Lat, p.cam.zoom)
	x := float64(dCol) * mpp * pxPerCol
	y := -float64(dRow) * mpp * pxPerRow

	// Screen offsets back into east/north.
	b := p.cam.bearing * math.Pi / 180
	east := x*math.Cos(b) + y*math.Sin(b)
	north := -x*math.Sin(b) + y*math.Cos(b)

	dist := math.Hypot(east, north)
	brg := math.Atan2(east, north) * 180 / math.Pi
	p.anim = nil
	p.cam.center = geo.Destination(p.cam.center, brg, dist)
	p.emit(viewport.Event{Kind: viewport.EventMoved})
	return true
}

func (p *MapPane) SetTranslationEnabled(enabled bool) {
	p.translation = enabled
}

// TranslationEnabled reports whether pan input is accepted.
func (p *MapPane) TranslationEnabled() bool {
	return p.translation
}

func (p *MapPane) SetRingData(set rings.Set) {
	p.rings = set
	for r := range p.features {
		if !set.Contains(r) {
			delete(p.features, r)
		}
	}
}

func (p *MapPane) SetFeatureState(radius float64, highlighted bool) {
	if highlighted {
		p.features[radius] = true
		return
	}
	delete(p.features, radius)
}

func (p *MapPane) AddMarker(label rings.Label) viewport.Marker {
	m := &labelMarker{pane: p, label: label, pos: label.Point}
	p.markers = append(p.markers, m)
	return m
}

func (p *MapPane) Subscribe(kind viewport.EventKind, fn func(viewport.Event)) func() {
	if p.subs[kind] == nil {
		p.subs[kind] = make(map[int]func(viewport.Event))
	}
	id := p.nextSub
	p.nextSub++
	p.subs[kind][id] = fn
	return func() { delete(p.subs[kind], id) }
}

func (p *MapPane) emit(ev viewport.Event) {
	for _, fn := range p.subs[ev.Kind] {
		fn(ev)
	}
}

// PointerAt reports the pointer at a canvas cell and emits the ring-layer
// pointer events.
func (p *MapPane) PointerAt(col, row int) {
	radius, ok := p.RingAt(col, row)
	if !ok {
		p.PointerLeave()
		return
	}
	if !p.pointerInside {
		p.pointerInside = true
		p.emit(viewport.Event{Kind: viewport.EventPointerEntered})
	}
	p.emit(viewport.Event{Kind: viewport.EventPointerMoved, Radius: radius, HasRadius: true})
}

// PointerLeave ends a hover over the ring layer.
func (p *MapPane) PointerLeave() {
	if !p.pointerInside {
		return
	}
	p.pointerInside = false
	p.emit(viewport.Event{Kind: viewport.EventPointerLeft})
}

// labelMarker is a ring distance label drawn on the pane canvas.
type labelMarker struct {
	pane    *MapPane
	label   rings.Label
	pos     geo.Point
	active  bool
	removed bool
}

func (m *labelMarker) SetPosition(p geo.Point) { m.pos = p }
func (m *labelMarker) SetActive(active bool)   { m.active = active }

func (m *labelMarker) Remove() {
	if m.removed {
		return
	}
	m.removed = true
	markers := m.pane.markers
	for i, other := range markers {
		if other == m {
			m.pane.markers = append(markers[:i], markers[i+1:]...)
			break
		}
	}
}

func clampZoom(z float64) float64 {
	return math.Max(minZoom, math.Min(maxZoom, z))
}
