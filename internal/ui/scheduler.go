package ui

// FrameScheduler defers callbacks to the next frame tick. It implements
// zoomsync.Scheduler; the Model drains it once per frame.
type FrameScheduler struct {
	queue []func()
}

// NewFrameScheduler creates an empty scheduler.
func NewFrameScheduler() *FrameScheduler {
	return &FrameScheduler{}
}

func (s *FrameScheduler) NextFrame(fn func()) {
	if fn != nil {
		s.queue = append(s.queue, fn)
	}
}

// take removes and returns the queued callbacks.
func (s *FrameScheduler) take() []func() {
	q := s.queue
	s.queue = nil
	return q
}

// Pending returns the number of queued callbacks.
func (s *FrameScheduler) Pending() int {
	return len(s.queue)
}
