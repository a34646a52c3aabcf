// Package zoomsync mirrors settled zoom levels between two viewports.
package zoomsync

import (
	"math"

	"github.com/litescript/ls-twinmap/internal/viewport"
)

// DefaultEpsilon is the zoom difference below which two viewports are
// considered in sync.
const DefaultEpsilon = 1e-6

// Zoomer is the part of a viewport handle the controller needs.
type Zoomer interface {
	Zoom() float64
	EaseTo(cam viewport.Camera)
}

// Scheduler runs a callback at the next rendering frame boundary.
type Scheduler interface {
	NextFrame(fn func())
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(fn func())

// NextFrame calls f(fn).
func (f SchedulerFunc) NextFrame(fn func()) { f(fn) }

// Stats counts controller decisions.
type Stats struct {
	Mirrored   int // Zoom commands issued to a sibling
	Suppressed int // Settle signals dropped while the guard was held
	InSync     int // Settle signals that needed no mirror
}

// Controller copies the zoom of a viewport that finished zooming into its
// sibling.
//
// A single guard covers both viewports. It is taken in the same call that
// issues the mirrored command and is only released on the next frame, so the
// settle signal the mirrored command provokes in the sibling is ignored
// instead of echoing back.
type Controller struct {
	scheduler Scheduler
	epsilon   float64

	ids   [2]viewport.ID
	peers map[viewport.ID]Zoomer

	applying bool
	stats    Stats
}

// NewController creates a controller. A non-positive epsilon falls back to
// DefaultEpsilon.
func NewController(s Scheduler, epsilon float64) *Controller {
	if epsilon <= 0 || math.IsNaN(epsilon) {
		epsilon = DefaultEpsilon
	}
	return &Controller{
		scheduler: s,
		epsilon:   epsilon,
		peers:     make(map[viewport.ID]Zoomer, 2),
	}
}

// Register adds a viewport. At most two viewports take part; a third
// registration is refused.
func (c *Controller) Register(id viewport.ID, z Zoomer) bool {
	if _, ok := c.peers[id]; ok {
		c.peers[id] = z
		return true
	}
	if len(c.peers) >= 2 {
		return false
	}
	c.ids[len(c.peers)] = id
	c.peers[id] = z
	return true
}

// Unregister removes a viewport.
func (c *Controller) Unregister(id viewport.ID) {
	if _, ok := c.peers[id]; !ok {
		return
	}
	delete(c.peers, id)
	if c.ids[0] == id {
		c.ids[0], c.ids[1] = c.ids[1], ""
	} else {
		c.ids[1] = ""
	}
}

// Sibling returns the other registered viewport.
func (c *Controller) Sibling(id viewport.ID) (viewport.ID, bool) {
	if _, ok := c.peers[id]; !ok {
		return "", false
	}
	other := c.ids[0]
	if other == id {
		other = c.ids[1]
	}
	if _, ok := c.peers[other]; !ok || other == "" {
		return "", false
	}
	return other, true
}

// Applying reports whether the guard is held.
func (c *Controller) Applying() bool {
	return c.applying
}

// Stats returns the decision counters.
func (c *Controller) Stats() Stats {
	return c.stats
}

// Settled handles a zoom-settled signal from origin. It returns true when a
// mirrored zoom command was issued.
func (c *Controller) Settled(origin viewport.ID) bool {
	if c.applying {
		c.stats.Suppressed++
		return false
	}

	src, ok := c.peers[origin]
	if !ok {
		return false
	}
	targetID, ok := c.Sibling(origin)
	if !ok {
		return false
	}
	dst := c.peers[targetID]

	zoom := src.Zoom()
	if math.Abs(zoom-dst.Zoom()) < c.epsilon {
		c.stats.InSync++
		return false
	}

	c.applying = true
	c.stats.Mirrored++
	dst.EaseTo(viewport.Camera{Zoom: viewport.Float(zoom)})
	c.release()
	return true
}

func (c *Controller) release() {
	if c.scheduler == nil {
		c.applying = false
		return
	}
	c.scheduler.NextFrame(func() {
		c.applying = false
	})
}
