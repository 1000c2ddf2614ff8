// Package scheduler paces every other subsystem against CPU cycles. It is
// a deterministic priority queue of future events keyed by absolute cycle,
// grounded in the "CPU owns a scheduler handle and ticks through it" idiom
// seen in the retrieval pack's gomeboy CPU (internal/scheduler import) and
// in go-jeebie's events package, adapted to a deterministic sorted slice
// instead of a buffered channel.
package scheduler

import "sort"

// Tag identifies an event's handler so a later Add with the same Tag
// replaces any still-pending occurrence.
type Tag int

// Handler is invoked when its event's scheduled cycle is reached. Handlers
// may schedule further events; if those land at or before the cycle
// currently being drained, they fire within the same Tick call.
type Handler func()

type event struct {
	tag     Tag
	cycle   uint64
	seq     uint64
	handler Handler
}

// Scheduler holds the pending event set and the monotonic "now" cursor.
type Scheduler struct {
	now     uint64
	nextSeq uint64
	events  []event
}

// New creates an empty Scheduler with now=0.
func New() *Scheduler {
	return &Scheduler{}
}

// Now returns the current absolute cycle.
func (s *Scheduler) Now() uint64 {
	return s.now
}

// Add schedules handler to fire at now+delay. If an event with the same
// tag is already pending, it is replaced.
func (s *Scheduler) Add(tag Tag, delay uint64, handler Handler) {
	s.Remove(tag)
	s.nextSeq++
	e := event{tag: tag, cycle: s.now + delay, seq: s.nextSeq, handler: handler}
	// Keep events sorted by (cycle, seq) at insertion time; event volume
	// per Tick is small (DMA/timer/APU/video), so an insertion sort beats
	// the bookkeeping of a heap for no real cost.
	idx := sort.Search(len(s.events), func(i int) bool {
		return less(e, s.events[i])
	})
	s.events = append(s.events, event{})
	copy(s.events[idx+1:], s.events[idx:])
	s.events[idx] = e
}

// Remove cancels any pending event with the given tag. A miss is a no-op.
func (s *Scheduler) Remove(tag Tag) {
	for i, e := range s.events {
		if e.tag == tag {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return
		}
	}
}

// Pending reports whether an event with the given tag is currently queued.
func (s *Scheduler) Pending(tag Tag) bool {
	for _, e := range s.events {
		if e.tag == tag {
			return true
		}
	}
	return false
}

// CycleOf returns the absolute cycle an event is scheduled for, and
// whether it is pending at all.
func (s *Scheduler) CycleOf(tag Tag) (uint64, bool) {
	for _, e := range s.events {
		if e.tag == tag {
			return e.cycle, true
		}
	}
	return 0, false
}

// Tick advances now by n, firing every event whose cycle has been reached,
// in (cycle, insertion-order) order. Handlers scheduled during the drain
// that land at or before the new now fire within the same call.
func (s *Scheduler) Tick(n uint64) {
	s.now += n
	for len(s.events) > 0 && s.events[0].cycle <= s.now {
		e := s.events[0]
		s.events = s.events[1:]
		e.handler()
	}
}

func less(a, b event) bool {
	if a.cycle != b.cycle {
		return a.cycle < b.cycle
	}
	return a.seq < b.seq
}
