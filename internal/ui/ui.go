// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-twinmap/internal/state"
	"github.com/litescript/ls-twinmap/internal/version"
	"github.com/litescript/ls-twinmap/internal/viewport"
)

const (
	frameRate = 30 * time.Millisecond

	titleRows  = 1
	footerRows = 2
	paneChrome = 4 // border top/bottom, header, status

	panCols = 4
	panRows = 2
)

// FrameMsg advances camera animations and runs deferred callbacks.
type FrameMsg time.Time

func frameCmd() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

// Controls are the input step sizes.
type Controls struct {
	InitialZoom  float64
	ZoomStep     float64
	ZoomDuration time.Duration
	RotateStep   float64
}

// DefaultControls returns the stock input steps.
func DefaultControls() Controls {
	return Controls{
		InitialZoom:  15,
		ZoomStep:     1,
		ZoomDuration: 200 * time.Millisecond,
		RotateStep:   15,
	}
}

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	state  *state.Manager
	frames *FrameScheduler
	ctl    Controls

	panes []*MapPane
	focus int

	// UI state
	width     int
	height    int
	ready     bool
	statusMsg string
}

// New creates a pane per viewport and attaches it to mgr. frames must be the
// scheduler mgr was created with.
func New(mgr *state.Manager, frames *FrameScheduler, views []viewport.Config, ctl Controls) (Model, error) {
	m := Model{
		state:  mgr,
		frames: frames,
		ctl:    ctl,
	}
	for _, vc := range views {
		p := NewMapPane(vc.ID, vc.Label, vc.InitialCenter, ctl.InitialZoom)
		if err := mgr.Attach(vc, p); err != nil {
			return Model{}, fmt.Errorf("attach %s: %w", vc.ID, err)
		}
		m.panes = append(m.panes, p)
	}
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return frameCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		w, h := m.canvasSize()
		for _, p := range m.panes {
			p.SetSize(w, h)
		}

	case FrameMsg:
		m.frame(time.Time(msg))
		return m, frameCmd()
	}

	return m, nil
}

// frame advances every pane, then runs the callbacks queued before this
// frame. Callbacks queued while advancing wait for the next frame.
func (m *Model) frame(now time.Time) {
	pending := m.frames.take()
	for _, p := range m.panes {
		p.Advance(now)
	}
	for _, fn := range pending {
		fn()
	}
}

func (m *Model) focused() *MapPane {
	if len(m.panes) == 0 {
		return nil
	}
	return m.panes[m.focus]
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	p := m.focused()
	if p == nil {
		if s := msg.String(); s == "q" || s == "ctrl+c" {
			return tea.Quit
		}
		return nil
	}
	id := p.ID()

	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit

	case "tab":
		m.focus = (m.focus + 1) % len(m.panes)
		m.statusMsg = ""

	case "up", "k":
		m.pan(p, 0, -panRows)
	case "down", "j":
		m.pan(p, 0, panRows)
	case "left", "h":
		m.pan(p, -panCols, 0)
	case "right", "l":
		m.pan(p, panCols, 0)

	case "+", "=":
		p.ZoomBy(m.ctl.ZoomStep, m.ctl.ZoomDuration)
	case "-", "_":
		p.ZoomBy(-m.ctl.ZoomStep, m.ctl.ZoomDuration)

	case "[":
		m.rotate(id, -m.ctl.RotateStep)
	case "]":
		m.rotate(id, m.ctl.RotateStep)

	case "b":
		if !m.state.ResetBearing(id) {
			m.statusMsg = fmt.Sprintf("rotation is disabled on %s", id)
		}

	case " ", "space":
		if m.state.ToggleLock(id) {
			m.statusMsg = fmt.Sprintf("%s locked", id)
		} else {
			m.statusMsg = fmt.Sprintf("%s unlocked", id)
		}

	case "r":
		m.state.Reset(id)
		m.statusMsg = fmt.Sprintf("%s reset", id)
	}
	return nil
}

func (m *Model) pan(p *MapPane, dCol, dRow int) {
	if !p.Pan(dCol, dRow) && !p.TranslationEnabled() {
		m.statusMsg = fmt.Sprintf("%s is locked", p.ID())
	}
}

func (m *Model) rotate(id viewport.ID, delta float64) {
	st, ok := m.state.State(id)
	if !ok {
		return
	}
	if !m.state.RotateTo(id, st.Bearing+delta) {
		m.statusMsg = fmt.Sprintf("rotation is disabled on %s", id)
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	idx, col, row, inside := m.paneAt(msg.X, msg.Y)

	switch {
	case msg.Button == tea.MouseButtonWheelUp && inside:
		m.panes[idx].ZoomBy(m.ctl.ZoomStep, m.ctl.ZoomDuration)
	case msg.Button == tea.MouseButtonWheelDown && inside:
		m.panes[idx].ZoomBy(-m.ctl.ZoomStep, m.ctl.ZoomDuration)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && inside:
		m.focus = idx
	}

	if msg.Action != tea.MouseActionMotion {
		return
	}
	// Leave the other panes first so their leave does not clear the new
	// highlight.
	for i, p := range m.panes {
		if !inside || i != idx {
			p.PointerLeave()
		}
	}
	if inside {
		m.panes[idx].PointerAt(col, row)
	}
}

// canvasSize returns the map canvas size of one pane.
func (m Model) canvasSize() (int, int) {
	if len(m.panes) == 0 {
		return 0, 0
	}
	outer := m.width / len(m.panes)
	return max(outer-2, 0), max(m.height-titleRows-footerRows-paneChrome, 0)
}

// paneAt maps a screen position to a pane canvas cell.
func (m Model) paneAt(x, y int) (idx, col, row int, ok bool) {
	w, h := m.canvasSize()
	if w == 0 || h == 0 {
		return 0, 0, 0, false
	}
	outer := w + 2
	idx = x / outer
	if idx < 0 || idx >= len(m.panes) {
		return 0, 0, 0, false
	}
	col = x - idx*outer - 1
	row = y - titleRows - 2
	if col < 0 || col >= w || row < 0 || row >= h {
		return 0, 0, 0, false
	}
	return idx, col, row, true
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	views := make([]string, 0, len(m.panes))
	for i, p := range m.panes {
		st, _ := m.state.State(p.ID())
		views = append(views, p.View(st, i == m.focus))
	}

	return m.renderTitle() + "\n" +
		lipgloss.JoinHorizontal(lipgloss.Top, views...) + "\n" +
		m.renderFooter()
}

func (m Model) renderTitle() string {
	title := "ls-twinmap"
	runes := []rune(title)

	var b strings.Builder
	b.WriteString(" ")
	for col, r := range runes {
		style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(gradientColor(col, len(runes))))
		b.WriteString(style.Render(string(r)))
	}
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render(fmt.Sprintf(" v%s · distance rings", version.Version)))
	return b.String()
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	help := dimStyle.Render("tab: focus | arrows/hjkl: pan | +/-: zoom | [ ]: rotate | b: north | space: lock | r: reset | q: quit")

	status := ""
	if snap := m.state.Snapshot(); snap.HoveredRadius != nil {
		status = accentStyle.Render(fmt.Sprintf("hover %.0f m", *snap.HoveredRadius))
	}
	if m.statusMsg != "" {
		if status != "" {
			status += dimStyle.Render("  |  ")
		}
		status += dimStyle.Render(m.statusMsg)
	}
	return "  " + help + "\n  " + status
}

// gradientColor returns a blue to pink color across width.
func gradientColor(col, width int) string {
	xRatio := 0.0
	if width > 1 {
		xRatio = float64(col) / float64(width-1)
	}

	// Blue (#3B82F6) -> Purple (#8B5CF6) -> Magenta (#D946EF)
	var r, g, b float64
	if xRatio < 0.5 {
		t := xRatio / 0.5
		r = 59 + t*(139-59)
		g = 130 + t*(92-130)
		b = 246
	} else {
		t := (xRatio - 0.5) / 0.5
		r = 139 + t*(217-139)
		g = 92 + t*(70-92)
		b = 246 + t*(239-246)
	}
	return fmt.Sprintf("#%02X%02X%02X", int(r), int(g), int(b))
}
