package ui

import (
	"math"
	"testing"
	"time"

	"github.com/litescript/ls-twinmap/internal/geo"
	"github.com/litescript/ls-twinmap/internal/rings"
	"github.com/litescript/ls-twinmap/internal/viewport"
)

var paris = geo.Point{Lon: 2.30137, Lat: 48.83886}

// recorder counts events by kind.
type recorder map[viewport.EventKind]int

func record(p *MapPane) recorder {
	r := recorder{}
	for _, k := range []viewport.EventKind{
		viewport.EventMoved, viewport.EventZoomSettled, viewport.EventRotated,
		viewport.EventPointerEntered, viewport.EventPointerMoved, viewport.EventPointerLeft,
	} {
		kind := k
		p.Subscribe(kind, func(viewport.Event) { r[kind]++ })
	}
	return r
}

func fixedClock(t0 time.Time) func() time.Time {
	return func() time.Time { return t0 }
}

func TestMapPane_JumpFiresSettleSynchronously(t *testing.T) {
	p := NewMapPane(viewport.Left, "Left", paris, 15)
	ev := record(p)

	p.EaseTo(viewport.Camera{Zoom: viewport.Float(16)})

	if p.Zoom() != 16 {
		t.Errorf("zoom = %v, want 16", p.Zoom())
	}
	if ev[viewport.EventZoomSettled] != 1 {
		t.Errorf("settle events = %d, want 1", ev[viewport.EventZoomSettled])
	}
	if ev[viewport.EventMoved] != 1 {
		t.Errorf("moved events = %d, want 1", ev[viewport.EventMoved])
	}

	// Same zoom again: nothing settles.
	p.EaseTo(viewport.Camera{Zoom: viewport.Float(16)})
	if ev[viewport.EventZoomSettled] != 1 {
		t.Errorf("unchanged zoom settled again")
	}
}

func TestMapPane_AnimatedZoom(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	p := NewMapPane(viewport.Left, "Left", paris, 15)
	p.now = fixedClock(t0)
	ev := record(p)

	p.ZoomBy(1, 200*time.Millisecond)
	if p.Zoom() != 15 || !p.Animating() {
		t.Fatalf("zoom should start animating, zoom=%v animating=%v", p.Zoom(), p.Animating())
	}

	p.Advance(t0.Add(100 * time.Millisecond))
	// Ease-out cubic at t=0.5 is 0.875.
	if math.Abs(p.Zoom()-15.875) > 1e-9 {
		t.Errorf("mid-animation zoom = %v, want 15.875", p.Zoom())
	}
	if ev[viewport.EventZoomSettled] != 0 {
		t.Error("settle fired before the animation ended")
	}

	// A second gesture stacks on the target, not the current zoom.
	p.ZoomBy(1, 200*time.Millisecond)
	p.Advance(t0.Add(300 * time.Millisecond))
	if p.Zoom() != 17 || p.Animating() {
		t.Errorf("final zoom = %v animating=%v, want 17 and stopped", p.Zoom(), p.Animating())
	}
	if ev[viewport.EventZoomSettled] != 1 {
		t.Errorf("settle events = %d, want 1", ev[viewport.EventZoomSettled])
	}
	if p.Advance(t0.Add(time.Second)) {
		t.Error("Advance without an animation should report false")
	}
}

func TestMapPane_AnimatedRotationTakesShortPath(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	p := NewMapPane(viewport.Right, "Right", paris, 15)
	p.now = fixedClock(t0)
	p.EaseTo(viewport.Camera{Bearing: viewport.Float(170)})
	ev := record(p)

	p.EaseTo(viewport.Camera{Bearing: viewport.Float(-170), Duration: 300 * time.Millisecond})
	p.Advance(t0.Add(150 * time.Millisecond))

	b := geo.NormalizeBearing(p.Bearing())
	if math.Abs(b) < 170 {
		t.Errorf("mid bearing = %v, expected to cross 180 not 0", b)
	}
	p.Advance(t0.Add(300 * time.Millisecond))
	if p.Bearing() != -170 {
		t.Errorf("final bearing = %v, want -170", p.Bearing())
	}
	if ev[viewport.EventRotated] != 2 {
		t.Errorf("rotated events = %d, want 2", ev[viewport.EventRotated])
	}
}

func TestMapPane_Pan(t *testing.T) {
	p := NewMapPane(viewport.Left, "Left", paris, 15)
	ev := record(p)

	if !p.Pan(0, -2) {
		t.Fatal("Pan refused while translation is enabled")
	}
	mpp := metersPerPixel(paris.Lat, 15)
	want := 2 * mpp * pxPerRow
	if d := geo.Distance(paris, p.Center()); math.Abs(d-want) > 0.01 {
		t.Errorf("pan distance = %v, want %v", d, want)
	}
	if p.Center().Lat <= paris.Lat {
		t.Error("panning up should move the center north")
	}
	if ev[viewport.EventMoved] != 1 {
		t.Errorf("moved events = %d, want 1", ev[viewport.EventMoved])
	}

	p.SetTranslationEnabled(false)
	before := p.Center()
	if p.Pan(4, 0) {
		t.Error("Pan should be refused while translation is disabled")
	}
	if p.Center() != before {
		t.Error("center moved while translation is disabled")
	}
}

func TestMapPane_PanFollowsBearing(t *testing.T) {
	p := NewMapPane(viewport.Right, "Right", paris, 15)
	p.EaseTo(viewport.Camera{Bearing: viewport.Float(90)})

	// With east at the top of the screen, "up" goes east.
	p.Pan(0, -2)
	east, north := geo.LocalOffset(paris, p.Center())
	if east <= 0 || math.Abs(north) > 0.5 {
		t.Errorf("offset = (%v, %v), want due east", east, north)
	}
}

func TestMapPane_Markers(t *testing.T) {
	p := NewMapPane(viewport.Left, "Left", paris, 15)
	set, err := rings.Build(paris, []float64{100, 200, 300}, 36)
	if err != nil {
		t.Fatal(err)
	}

	var markers []viewport.Marker
	for _, l := range set.Labels() {
		markers = append(markers, p.AddMarker(l))
	}
	if len(p.markers) != 2 {
		t.Fatalf("markers = %d, want 2", len(p.markers))
	}

	markers[0].SetActive(true)
	if !p.markers[0].active {
		t.Error("SetActive not applied")
	}

	markers[0].Remove()
	markers[0].Remove()
	if len(p.markers) != 1 || p.markers[0].label.Radius != 300 {
		t.Errorf("remaining markers = %+v", p.markers)
	}
}

func TestMapPane_Subscribe(t *testing.T) {
	p := NewMapPane(viewport.Left, "Left", paris, 15)
	calls := 0
	unsub := p.Subscribe(viewport.EventMoved, func(viewport.Event) { calls++ })

	p.Pan(1, 0)
	unsub()
	p.Pan(1, 0)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestMapPane_FeatureStateFollowsRingData(t *testing.T) {
	p := NewMapPane(viewport.Left, "Left", paris, 15)
	set, _ := rings.Build(paris, []float64{100, 200}, 36)
	p.SetRingData(set)

	p.SetFeatureState(200, true)
	if !p.features[200] {
		t.Fatal("feature state not recorded")
	}

	smaller, _ := rings.Build(paris, []float64{100}, 36)
	p.SetRingData(smaller)
	if p.features[200] {
		t.Error("feature state for a vanished ring should be dropped")
	}
}
