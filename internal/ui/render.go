package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-twinmap/internal/geo"
	"github.com/litescript/ls-twinmap/internal/rings"
	"github.com/litescript/ls-twinmap/internal/viewport"
)

const (
	// Web-Mercator ground resolution at zoom 0 on the equator, m/px.
	groundResolution = 156543.03392

	// Terminal cell size in pixels.
	pxPerCol = 8.0
	pxPerRow = 16.0

	glyphRing       = '·'
	glyphRingActive = '•'
	glyphCenter     = '+'

	colorRing        = "60"  // muted purple
	colorRingActive  = "229" // bright gold
	colorLabel       = "245"
	colorLabelActive = "229"
	colorCenter      = "135" // violet
	colorEmpty       = "236"
)

// metersPerPixel is the ground resolution at lat and zoom.
func metersPerPixel(lat, zoom float64) float64 {
	return groundResolution * math.Cos(lat*math.Pi/180) / math.Pow(2, zoom)
}

// project maps a geographic point to fractional canvas coordinates. The
// pane's bearing is the compass direction at the top of the canvas.
func (p *MapPane) project(pt geo.Point) (col, row float64) {
	east, north := geo.LocalOffset(p.cam.center, pt)
	mpp := metersPerPixel(p.cam.center.Lat, p.cam.zoom)

	b := p.cam.bearing * math.Pi / 180
	x := east*math.Cos(b) - north*math.Sin(b)
	y := east*math.Sin(b) + north*math.Cos(b)

	col = float64(p.width)/2 + x/(mpp*pxPerCol)
	row = float64(p.height)/2 - y/(mpp*pxPerRow)
	return col, row
}

type cell struct {
	r     rune
	color lipgloss.Color
	bold  bool
}

// raster is a drawn canvas plus the ring under each cell.
type raster struct {
	width  int
	height int
	cells  []cell
	hit    []float64 // ring radius per cell, 0 = none
}

func newRaster(width, height int) *raster {
	r := &raster{
		width:  width,
		height: height,
		cells:  make([]cell, width*height),
		hit:    make([]float64, width*height),
	}
	for i := range r.cells {
		r.cells[i] = cell{r: ' ', color: colorEmpty}
	}
	return r
}

func (r *raster) in(col, row int) bool {
	return col >= 0 && col < r.width && row >= 0 && row < r.height
}

func (r *raster) set(col, row int, c cell) {
	if r.in(col, row) {
		r.cells[row*r.width+col] = c
	}
}

// line plots a segment between two fractional positions.
func (r *raster) line(c0, r0, c1, r1 float64, c cell, radius float64) {
	// Skip segments entirely off one side of the canvas.
	if (c0 < -1 && c1 < -1) || (r0 < -1 && r1 < -1) ||
		(c0 > float64(r.width) && c1 > float64(r.width)) ||
		(r0 > float64(r.height) && r1 > float64(r.height)) {
		return
	}

	dc, dr := c1-c0, r1-r0
	steps := int(math.Ceil(math.Max(math.Abs(dc), math.Abs(dr))))
	if limit := 4 * (r.width + r.height); steps > limit {
		steps = limit
	}
	if steps < 1 {
		steps = 1
	}

	for s := 0; s <= steps; s++ {
		f := float64(s) / float64(steps)
		col := int(math.Round(c0 + dc*f))
		row := int(math.Round(r0 + dr*f))
		if !r.in(col, row) {
			continue
		}
		i := row*r.width + col
		r.cells[i] = c
		r.hit[i] = radius
	}
}

func (r *raster) text(col, row int, s string, c cell) {
	for i, ch := range []rune(s) {
		c.r = ch
		r.set(col+i, row, c)
	}
}

// rasterize draws rings, the center mark and the label markers.
func (p *MapPane) rasterize() *raster {
	r := newRaster(p.width, p.height)
	if p.width == 0 || p.height == 0 {
		return r
	}

	// Dim rings first so highlighted ones end up on top.
	for _, pass := range []bool{false, true} {
		for _, ring := range p.rings.Rings {
			if p.features[ring.Radius] != pass {
				continue
			}
			c := cell{r: glyphRing, color: colorRing}
			if pass {
				c = cell{r: glyphRingActive, color: colorRingActive, bold: true}
			}
			for i := 1; i < len(ring.Polygon); i++ {
				c0, r0 := p.project(ring.Polygon[i-1])
				c1, r1 := p.project(ring.Polygon[i])
				r.line(c0, r0, c1, r1, c, ring.Radius)
			}
		}
	}

	cc, cr := p.project(p.cam.center)
	r.set(int(math.Round(cc)), int(math.Round(cr)), cell{r: glyphCenter, color: colorCenter, bold: true})

	// Labels are anchored on their left edge.
	for _, m := range p.markers {
		col, row := p.project(m.pos)
		c := cell{color: colorLabel}
		if m.active {
			c = cell{color: colorLabelActive, bold: true}
		}
		r.text(int(math.Round(col)), int(math.Round(row)), m.label.Text, c)
	}
	return r
}

// RingAt returns the radius of the ring drawn at a canvas cell. Cells next
// to a ring count as a hit.
func (p *MapPane) RingAt(col, row int) (float64, bool) {
	r := p.rasterize()
	for _, dc := range []int{0, -1, 1} {
		c := col + dc
		if !r.in(c, row) {
			continue
		}
		if radius := r.hit[row*r.width+c]; radius > 0 {
			return radius, true
		}
	}
	return 0, false
}

// String renders the raster, one style per run of equal cells.
func (r *raster) String() string {
	var b strings.Builder
	for row := 0; row < r.height; row++ {
		line := r.cells[row*r.width : (row+1)*r.width]
		start := 0
		for i := 1; i <= len(line); i++ {
			if i < len(line) && line[i].color == line[start].color && line[i].bold == line[start].bold {
				continue
			}
			run := make([]rune, 0, i-start)
			for _, c := range line[start:i] {
				run = append(run, c.r)
			}
			style := lipgloss.NewStyle().Foreground(line[start].color).Bold(line[start].bold)
			b.WriteString(style.Render(string(run)))
			start = i
		}
		if row < r.height-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// View renders the pane: header, canvas and status line inside a border.
func (p *MapPane) View(st viewport.State, focused bool) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorRingActive))

	lock := dimStyle.Render("free")
	if st.Locked {
		lock = accentStyle.Render("locked")
	}
	header := fmt.Sprintf("%s %s %s %s",
		titleStyle.Render(p.label),
		dimStyle.Render(fmt.Sprintf("z%.1f", p.cam.zoom)),
		dimStyle.Render(viewport.FormatBearing(st.Bearing)),
		lock,
	)

	var status string
	if st.HoveredRadius != nil {
		status = accentStyle.Render("ring " + rings.FormatRadius(*st.HoveredRadius))
	} else {
		status = dimStyle.Render(st.Center.String())
	}
	if st.AllowRotation {
		status += " " + renderBearingSlider(viewport.SliderValue(st.Bearing), 19)
	}

	line := lipgloss.NewStyle().MaxWidth(p.width)
	body := line.Render(header) + "\n" + p.rasterize().String() + "\n" + line.Render(status)

	border := lipgloss.Color("60")
	if focused {
		border = lipgloss.Color("#9D4EDD")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Render(body)
}

// renderBearingSlider draws a -180..180 track with a knob at value.
func renderBearingSlider(value, width int) string {
	if width < 3 {
		return ""
	}
	pos := int(math.Round(float64(value+180) / 360 * float64(width-1)))
	pos = max(0, min(width-1, pos))

	track := []rune(strings.Repeat("─", width))
	track[pos] = '●'
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	return dimStyle.Render(string(track))
}

// normalizeAngle wraps angle to the -180..+180 range
func normalizeAngle(a float64) float64 {
	return geo.NormalizeBearing(a)
}

// lerpAngle interpolates between angles, taking shortest path
func lerpAngle(a, b, t float64) float64 {
	diff := normalizeAngle(b - a)
	return a + diff*t
}

// lerp linear interpolation
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
