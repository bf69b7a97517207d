package shelf

import "time"

// defaultWheelInterval bounds wheel zoom to roughly 60 updates per second.
const defaultWheelInterval = time.Second / 60

// throttle admits at most one event per interval. Values from rejected events
// are accumulated and released with the next admitted event or an explicit
// flush, so the running sum is never lost.
type throttle struct {
	interval time.Duration
	last     time.Time
	admitted bool
	pending  float64
	hasValue bool
}

// admit records v at time now. It returns the accumulated total and true if
// the event is admitted, or false if it was folded into the pending sum.
func (t *throttle) admit(now time.Time, v float64) (float64, bool) {
	t.pending += v
	t.hasValue = true
	if t.admitted && now.Sub(t.last) < t.interval {
		return 0, false
	}
	t.admitted = true
	t.last = now
	return t.take()
}

// flush releases any pending sum regardless of timing.
func (t *throttle) flush(now time.Time) (float64, bool) {
	if !t.hasValue {
		return 0, false
	}
	t.last = now
	t.admitted = true
	return t.take()
}

func (t *throttle) take() (float64, bool) {
	v := t.pending
	t.pending = 0
	t.hasValue = false
	return v, true
}

func (t *throttle) reset() {
	*t = throttle{interval: t.interval}
}
