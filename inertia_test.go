package shelf

import (
	"math"
	"testing"
)

// runFrames ticks s until nothing is pending or limit ticks have run, and
// returns the number of ticks.
func runFrames(s *Scheduler, limit int) int {
	n := 0
	for s.Pending() > 0 && n < limit {
		s.Tick()
		n++
	}
	return n
}

func TestInertia_SettlesWithinBound(t *testing.T) {
	tests := []struct {
		name string
		v    Vec2
	}{
		{"fast x", Vec2{40, 0}},
		{"fast diagonal", Vec2{-25, 60}},
		{"slow", Vec2{0.6, 0}},
		{"below threshold", Vec2{0.1, 0.1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(newFakeClock().Now)
			in := NewInertia(s, InertiaConfig{})
			applied := 0
			settled := 0
			in.Start(tt.v, func(Vec2) { applied++ }, func() { settled++ })

			want := TicksToSettle(tt.v, InertiaConfig{})
			got := runFrames(s, 10000)
			if got != want {
				t.Errorf("ticks = %d, TicksToSettle = %d", got, want)
			}
			if settled != 1 {
				t.Errorf("settled %d times, want 1", settled)
			}
			if applied != want-1 {
				t.Errorf("applied %d deltas, want %d", applied, want-1)
			}
			if in.Running() {
				t.Error("still running after settle")
			}
		})
	}
}

func TestInertia_DeltasDecay(t *testing.T) {
	s := NewScheduler(newFakeClock().Now)
	in := NewInertia(s, InertiaConfig{})
	var deltas []Vec2
	in.Start(Vec2{10, -10}, func(d Vec2) { deltas = append(deltas, d) }, nil)
	runFrames(s, 1000)

	if len(deltas) == 0 {
		t.Fatal("no deltas applied")
	}
	if !approxEqual(deltas[0].X, 9.5, epsilon) || !approxEqual(deltas[0].Y, -9.5, epsilon) {
		t.Errorf("first delta = %v, want (9.5,-9.5)", deltas[0])
	}
	for i := 1; i < len(deltas); i++ {
		if math.Abs(deltas[i].X) >= math.Abs(deltas[i-1].X) {
			t.Fatalf("delta %d (%v) did not decay from %v", i, deltas[i], deltas[i-1])
		}
	}
}

func TestInertia_CancelIsIdempotent(t *testing.T) {
	s := NewScheduler(newFakeClock().Now)
	in := NewInertia(s, InertiaConfig{})
	in.Cancel()

	settled := false
	in.Start(Vec2{30, 0}, func(Vec2) {}, func() { settled = true })
	s.Tick()
	in.Cancel()
	in.Cancel()
	runFrames(s, 100)

	if settled {
		t.Error("onSettled called after Cancel")
	}
	if in.Running() || s.Pending() != 0 {
		t.Errorf("Running = %v, Pending = %d after Cancel", in.Running(), s.Pending())
	}

	var nilInertia *Inertia
	nilInertia.Cancel()
}

func TestInertia_RestartReplacesRun(t *testing.T) {
	s := NewScheduler(newFakeClock().Now)
	in := NewInertia(s, InertiaConfig{})
	first, second := 0, 0
	in.Start(Vec2{30, 0}, func(Vec2) { first++ }, nil)
	in.Start(Vec2{0, 30}, func(Vec2) { second++ }, nil)
	runFrames(s, 1000)
	if first != 0 {
		t.Errorf("replaced run applied %d deltas", first)
	}
	if second == 0 {
		t.Error("new run applied no deltas")
	}
}

func TestInertia_NaNVelocitySettlesImmediately(t *testing.T) {
	s := NewScheduler(newFakeClock().Now)
	in := NewInertia(s, InertiaConfig{})
	settled := false
	in.Start(Vec2{math.NaN(), 1}, func(Vec2) { t.Error("applied NaN delta") }, func() { settled = true })
	if !settled || in.Running() || s.Pending() != 0 {
		t.Errorf("settled = %v, running = %v, pending = %d", settled, in.Running(), s.Pending())
	}
}

func TestTicksToSettle(t *testing.T) {
	tests := []struct {
		v    Vec2
		want int
	}{
		{Vec2{0, 0}, 1},
		{Vec2{0.52, 0}, 1}, // 0.494 < 0.5 on the first frame
		{Vec2{1, 0}, 14},   // 0.95^14 = 0.488
	}
	for _, tt := range tests {
		if got := TicksToSettle(tt.v, InertiaConfig{}); got != tt.want {
			t.Errorf("TicksToSettle(%v) = %d, want %d", tt.v, got, tt.want)
		}
	}
}
