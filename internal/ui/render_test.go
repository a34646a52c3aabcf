package ui

import (
	"math"
	"strings"
	"testing"

	"github.com/litescript/ls-twinmap/internal/geo"
	"github.com/litescript/ls-twinmap/internal/rings"
	"github.com/litescript/ls-twinmap/internal/viewport"
)

func TestMetersPerPixel(t *testing.T) {
	if got := metersPerPixel(0, 0); math.Abs(got-156543.03392) > 1e-6 {
		t.Errorf("equator zoom 0 = %v", got)
	}
	// Each zoom level halves the resolution.
	a := metersPerPixel(48.8, 15)
	b := metersPerPixel(48.8, 16)
	if math.Abs(a/b-2) > 1e-9 {
		t.Errorf("zoom ratio = %v, want 2", a/b)
	}
}

func TestProject(t *testing.T) {
	p := NewMapPane(viewport.Right, "Right", paris, 15)
	p.SetSize(80, 40)

	col, row := p.project(paris)
	if col != 40 || row != 20 {
		t.Errorf("center projects to (%v, %v), want (40, 20)", col, row)
	}

	tests := []struct {
		bearing float64
		towards float64 // compass direction of the test point
		wantDC  float64 // expected sign of column change
		wantDR  float64 // expected sign of row change
		desc    string
	}{
		{0, 0, 0, -1, "north is up"},
		{0, 90, 1, 0, "east is right"},
		{90, 90, 0, -1, "bearing 90 puts east up"},
		{90, 0, -1, 0, "bearing 90 puts north left"},
		{180, 0, 0, 1, "bearing 180 puts north down"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			p.cam.bearing = tt.bearing
			c, r := p.project(geo.Destination(paris, tt.towards, 200))
			dc, dr := c-40, r-20
			if !sameSign(dc, tt.wantDC) || !sameSign(dr, tt.wantDR) {
				t.Errorf("offset (%.2f, %.2f), want signs (%v, %v)", dc, dr, tt.wantDC, tt.wantDR)
			}
		})
	}
}

func sameSign(v, want float64) bool {
	switch {
	case want > 0:
		return v > 0.5
	case want < 0:
		return v < -0.5
	default:
		return math.Abs(v) < 0.5
	}
}

func TestProject_Scale(t *testing.T) {
	p := NewMapPane(viewport.Left, "Left", paris, 15)
	p.SetSize(80, 40)

	mpp := metersPerPixel(paris.Lat, 15)
	col, _ := p.project(geo.Destination(paris, 90, 10*mpp*pxPerCol))
	if math.Abs(col-50) > 0.05 {
		t.Errorf("10 columns east projects to col %v, want 50", col)
	}
}

func TestRasterize_RingsAndHits(t *testing.T) {
	p := NewMapPane(viewport.Left, "Left", paris, 15)
	p.SetSize(80, 40)
	set, err := rings.Build(paris, []float64{100, 200}, 120)
	if err != nil {
		t.Fatal(err)
	}
	p.SetRingData(set)

	// Point on the 200 m ring, due east.
	col, row := p.project(geo.Destination(paris, 90, 200))
	c, r := int(math.Round(col)), int(math.Round(row))

	radius, ok := p.RingAt(c, r)
	if !ok || radius != 200 {
		t.Errorf("RingAt(%d, %d) = %v, %v, want 200", c, r, radius, ok)
	}
	if _, ok := p.RingAt(40, 20); ok {
		t.Error("center cell should not hit a ring")
	}

	ras := p.rasterize()
	if got := ras.cells[r*ras.width+c].r; got != glyphRing {
		t.Errorf("dim ring glyph = %q, want %q", got, glyphRing)
	}

	p.SetFeatureState(200, true)
	ras = p.rasterize()
	if got := ras.cells[r*ras.width+c]; got.r != glyphRingActive || !got.bold {
		t.Errorf("highlighted ring cell = %+v", got)
	}
	if got := ras.cells[20*ras.width+40].r; got != glyphCenter {
		t.Errorf("center glyph = %q, want %q", got, glyphCenter)
	}
}

func TestRasterize_LabelsAnchoredLeft(t *testing.T) {
	p := NewMapPane(viewport.Left, "Left", paris, 15)
	p.SetSize(80, 40)
	set, _ := rings.Build(paris, []float64{500}, 120)
	p.SetRingData(set)
	label := set.Labels()[0]
	p.AddMarker(label)

	col, row := p.project(label.Point)
	ras := p.rasterize()
	c, r := int(math.Round(col)), int(math.Round(row))

	var got strings.Builder
	for i := 0; i < len([]rune(label.Text)); i++ {
		got.WriteRune(ras.cells[r*ras.width+c+i].r)
	}
	if got.String() != "500 m" {
		t.Errorf("label text at marker = %q, want %q", got.String(), "500 m")
	}
}

func TestRasterize_ZeroSize(t *testing.T) {
	p := NewMapPane(viewport.Left, "Left", paris, 15)
	set, _ := rings.Build(paris, rings.DefaultRadii, 120)
	p.SetRingData(set)

	if s := p.rasterize().String(); s != "" {
		t.Errorf("zero-size canvas rendered %q", s)
	}
	if _, ok := p.RingAt(0, 0); ok {
		t.Error("zero-size canvas should not hit")
	}
}

func TestRasterize_FarZoomDoesNotHang(t *testing.T) {
	p := NewMapPane(viewport.Left, "Left", paris, 22)
	p.SetSize(80, 40)
	set, _ := rings.Build(paris, rings.DefaultRadii, 120)
	p.SetRingData(set)

	// At zoom 22 every ring is far outside the canvas.
	ras := p.rasterize()
	for i, h := range ras.hit {
		if h != 0 {
			t.Fatalf("unexpected ring hit at cell %d", i)
		}
	}
}

func TestRenderBearingSlider(t *testing.T) {
	tests := []struct {
		value int
		knob  int
	}{
		{-180, 0},
		{0, 9},
		{180, 18},
		{90, 14},
	}
	for _, tt := range tests {
		out := renderBearingSlider(tt.value, 19)
		idx := strings.IndexRune(out, '●')
		if idx < 0 {
			t.Fatalf("slider(%d) has no knob: %q", tt.value, out)
		}
		// Count runes before the knob, skipping any style prefix.
		prefix := out[:idx]
		if n := strings.Count(prefix, "─"); n != tt.knob {
			t.Errorf("slider(%d) knob at %d, want %d", tt.value, n, tt.knob)
		}
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{0, 0},
		{180, 180},
		{-180, 180},
		{360, 0},
		{350, -10},
		{370, 10},
		{-190, 170},
		{540, 180},
		{1e20, geo.NormalizeBearing(1e20)},
		{-1e20, geo.NormalizeBearing(-1e20)},
	}

	for _, tt := range tests {
		got := normalizeAngle(tt.input)
		if math.Abs(got-tt.expected) > 0.001 {
			t.Errorf("normalizeAngle(%v) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestLerpAngle_ShortestPath(t *testing.T) {
	tests := []struct {
		from     float64
		to       float64
		t        float64
		expected float64
	}{
		{0, 90, 0.5, 45},
		{350, 10, 0.5, 360},
		{350, 10, 1.0, 370},
		{10, 350, 0.5, 0},
		{170, -170, 0.5, 180},
	}

	for _, tt := range tests {
		got := lerpAngle(tt.from, tt.to, tt.t)
		if math.Abs(got-tt.expected) > 0.001 {
			t.Errorf("lerpAngle(%v, %v, %v) = %v, want %v", tt.from, tt.to, tt.t, got, tt.expected)
		}
	}
}

func TestMapPane_View(t *testing.T) {
	p := NewMapPane(viewport.Right, "Right", paris, 15)
	p.SetSize(40, 10)
	r := 500.0

	out := p.View(viewport.State{
		Center:        paris,
		Bearing:       -170,
		Locked:        true,
		AllowRotation: true,
		HoveredRadius: &r,
	}, true)

	for _, want := range []string{"Right", "-170°", "locked", "ring 500 m", "●"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
