package shelf

import (
	"sort"
	"time"
)

// Handle identifies a scheduled frame callback or timer. The zero Handle is
// never issued and cancelling it is a no-op.
type Handle uint64

type scheduled struct {
	id        Handle
	at        time.Time
	fn        func()
	cancelled bool
}

// Scheduler is the single-threaded frame and timer queue that drives every
// deferred mutation in the engine: inertia frames, viewport animations, the
// drag safety timeout, and the hover debounce. Nothing runs until the owner
// calls Tick, normally once per rendered frame, so all callbacks execute on
// the caller's goroutine.
type Scheduler struct {
	now    func() time.Time
	nextID Handle
	frames []*scheduled
	timers []*scheduled
	live   map[Handle]*scheduled
}

// NewScheduler creates a Scheduler reading time from clock. A nil clock
// uses time.Now.
func NewScheduler(clock func() time.Time) *Scheduler {
	if clock == nil {
		clock = time.Now
	}
	return &Scheduler{now: clock, live: make(map[Handle]*scheduled)}
}

// Now returns the scheduler's current time.
func (s *Scheduler) Now() time.Time {
	return s.now()
}

// RequestFrame queues fn to run on the next Tick.
func (s *Scheduler) RequestFrame(fn func()) Handle {
	e := s.add(time.Time{}, fn)
	s.frames = append(s.frames, e)
	return e.id
}

// After queues fn to run on the first Tick at or after now+d.
func (s *Scheduler) After(d time.Duration, fn func()) Handle {
	e := s.add(s.now().Add(d), fn)
	i := sort.Search(len(s.timers), func(i int) bool {
		return s.timers[i].at.After(e.at)
	})
	s.timers = append(s.timers, nil)
	copy(s.timers[i+1:], s.timers[i:])
	s.timers[i] = e
	return e.id
}

func (s *Scheduler) add(at time.Time, fn func()) *scheduled {
	s.nextID++
	e := &scheduled{id: s.nextID, at: at, fn: fn}
	s.live[e.id] = e
	return e
}

// Cancel removes a pending frame callback or timer. Cancelling a handle that
// already ran, was already cancelled, or is zero does nothing.
func (s *Scheduler) Cancel(h Handle) {
	e, ok := s.live[h]
	if !ok {
		return
	}
	e.cancelled = true
	delete(s.live, h)
}

// Pending returns the number of frame callbacks and timers still queued.
func (s *Scheduler) Pending() int {
	return len(s.live)
}

// Tick runs every frame callback queued before this call, then every timer
// whose deadline has passed, in deadline order. Callbacks scheduled from
// inside Tick run on a later Tick.
func (s *Scheduler) Tick() {
	limit := s.nextID

	frames := s.frames
	s.frames = nil
	for _, e := range frames {
		if e.cancelled {
			continue
		}
		delete(s.live, e.id)
		e.fn()
	}

	now := s.now()
	for {
		i := s.nextDueTimer(now, limit)
		if i < 0 {
			break
		}
		e := s.timers[i]
		s.timers = append(s.timers[:i], s.timers[i+1:]...)
		delete(s.live, e.id)
		e.fn()
	}
	s.compactTimers()
}

// nextDueTimer returns the index of the earliest live timer due at now that
// was scheduled before limit, or -1.
func (s *Scheduler) nextDueTimer(now time.Time, limit Handle) int {
	for i, e := range s.timers {
		if e.at.After(now) {
			return -1
		}
		if e.cancelled || e.id > limit {
			continue
		}
		return i
	}
	return -1
}

func (s *Scheduler) compactTimers() {
	n := 0
	for _, e := range s.timers {
		if !e.cancelled {
			s.timers[n] = e
			n++
		}
	}
	for i := n; i < len(s.timers); i++ {
		s.timers[i] = nil
	}
	s.timers = s.timers[:n]
}
