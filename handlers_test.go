package shelf

import (
	"testing"
	"time"
)

func TestListeners_OrderAndRemove(t *testing.T) {
	var l listeners[int]
	var got []string
	l.add(func(v int) { got = append(got, "a") })
	h := l.add(func(v int) { got = append(got, "b") })
	l.add(func(v int) { got = append(got, "c") })

	l.emit(1)
	h.Remove()
	h.Remove()
	l.emit(2)

	want := "abcac"
	var s string
	for _, g := range got {
		s += g
	}
	if s != want {
		t.Errorf("call order = %q, want %q", s, want)
	}
	if l.count() != 2 {
		t.Errorf("count = %d, want 2", l.count())
	}
}

func TestListeners_ChangesDuringEmitApplyNextTime(t *testing.T) {
	var l listeners[int]
	calls := 0
	var self CallbackHandle
	self = l.add(func(int) {
		calls++
		self.Remove()
		l.add(func(int) { calls += 10 })
	})
	l.emit(0)
	if calls != 1 {
		t.Fatalf("calls = %d after first emit, want 1", calls)
	}
	l.emit(0)
	if calls != 11 {
		t.Errorf("calls = %d after second emit, want 11", calls)
	}
}

func TestListeners_NestedEmit(t *testing.T) {
	var l listeners[int]
	var seen []int
	l.add(func(v int) {
		seen = append(seen, v)
		if v == 0 {
			l.emit(1)
		}
	})
	l.add(func(v int) { seen = append(seen, v+100) })
	l.emit(0)
	// Outer: 0, nested: 1, 101, outer continues: 100.
	want := []int{0, 1, 101, 100}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("seen = %v, want %v", seen, want)
		}
	}
}

func TestCallbackHandle_ZeroValue(t *testing.T) {
	var h CallbackHandle
	h.Remove()
}

func TestThrottle(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	th := throttle{interval: 10 * time.Millisecond}

	if v, ok := th.admit(base, 1); !ok || v != 1 {
		t.Fatalf("first admit = %v, %v", v, ok)
	}
	if _, ok := th.admit(base.Add(3*time.Millisecond), 2); ok {
		t.Fatal("admitted inside the interval")
	}
	if v, ok := th.admit(base.Add(12*time.Millisecond), 4); !ok || v != 6 {
		t.Errorf("admit after interval = %v, %v; want 6 (2+4)", v, ok)
	}
	if _, ok := th.flush(base.Add(20 * time.Millisecond)); ok {
		t.Error("flush with nothing pending returned a value")
	}
	th.admit(base.Add(21*time.Millisecond), 5)
	if v, ok := th.flush(base.Add(22 * time.Millisecond)); !ok || v != 5 {
		t.Errorf("flush = %v, %v; want 5", v, ok)
	}
}

func TestPositionHistory(t *testing.T) {
	h := newPositionHistory(2)
	h.push(Vec2{1, 0})
	h.push(Vec2{2, 0})
	h.push(Vec2{3, 0})
	if h.len() != 2 {
		t.Fatalf("len = %d, want 2", h.len())
	}
	if p, _ := h.pop(); p.X != 3 {
		t.Errorf("pop = %v, want (3,0)", p)
	}
	if p, _ := h.pop(); p.X != 2 {
		t.Errorf("pop = %v, want (2,0)", p)
	}
	if _, ok := h.pop(); ok {
		t.Error("pop on empty history succeeded")
	}
	if newPositionHistory(0).limit != defaultHistorySize {
		t.Error("zero limit did not default")
	}
}
