// Package highlight keeps the hovered ring emphasized in every viewport at
// once, so the same distance band can be compared across panels.
package highlight

import "math"

// Target is a viewport that can show a ring highlight.
type Target interface {
	HasRings() bool
	SetActiveRing(radius float64, active bool) bool
	HoveredRadius() (float64, bool)
	SetHoveredRadius(radius float64, ok bool)
}

// Coordinator mirrors one hovered radius across all targets.
type Coordinator struct {
	targets func() []Target

	current    float64
	hasCurrent bool
	changes    int
}

// NewCoordinator creates a coordinator over the targets returned by list,
// which is consulted on every update so targets may come and go.
func NewCoordinator(list func() []Target) *Coordinator {
	return &Coordinator{targets: list}
}

// Current returns the radius highlighted everywhere, if any.
func (c *Coordinator) Current() (float64, bool) {
	return c.current, c.hasCurrent
}

// Changes returns how many updates changed the highlighted radius.
func (c *Coordinator) Changes() int {
	return c.changes
}

// Hover clears the previous highlight in every target and, when radius is
// finite, highlights it everywhere. A non-finite radius acts like Clear.
func (c *Coordinator) Hover(radius float64) {
	valid := !math.IsNaN(radius) && !math.IsInf(radius, 0)

	if valid != c.hasCurrent || (valid && radius != c.current) {
		c.changes++
	}

	for _, t := range c.list() {
		if !t.HasRings() {
			continue
		}

		if prev, ok := t.HoveredRadius(); ok {
			t.SetActiveRing(prev, false)
		}

		if !valid {
			t.SetHoveredRadius(0, false)
			continue
		}

		t.SetActiveRing(radius, true)
		t.SetHoveredRadius(radius, true)
	}

	c.current, c.hasCurrent = radius, valid
	if !valid {
		c.current = 0
	}
}

// Clear removes the highlight from every target.
func (c *Coordinator) Clear() {
	c.Hover(math.NaN())
}

func (c *Coordinator) list() []Target {
	if c.targets == nil {
		return nil
	}
	return c.targets()
}
