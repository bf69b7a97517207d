package shelf

import "math"

const (
	defaultInertiaDecay     = 0.95
	defaultInertiaThreshold = 0.5
)

// InertiaConfig tunes the momentum animation. Zero fields take defaults.
type InertiaConfig struct {
	// Decay multiplies the velocity every frame. Must be in (0, 1).
	Decay float64
	// StopThreshold ends the animation once both velocity components are
	// below it in magnitude.
	StopThreshold float64
}

func (c InertiaConfig) withDefaults() InertiaConfig {
	if c.Decay <= 0 || c.Decay >= 1 {
		c.Decay = defaultInertiaDecay
	}
	if c.StopThreshold <= 0 {
		c.StopThreshold = defaultInertiaThreshold
	}
	return c
}

// Inertia animates a release velocity down to rest, applying one delta per
// scheduler frame. At most one animation runs per Inertia; starting a new one
// replaces the old.
type Inertia struct {
	sched    *Scheduler
	cfg      InertiaConfig
	frame    Handle
	velocity Vec2
	apply    func(Vec2)
	settled  func()
	running  bool
}

// NewInertia creates an Inertia driven by sched.
func NewInertia(sched *Scheduler, cfg InertiaConfig) *Inertia {
	return &Inertia{sched: sched, cfg: cfg.withDefaults()}
}

// Start begins decaying v. Each frame the velocity is multiplied by the decay
// constant; once it drops below the stop threshold on both axes onSettled is
// called and the animation ends, otherwise applyDelta receives the decayed
// velocity. Either callback may be nil.
func (in *Inertia) Start(v Vec2, applyDelta func(Vec2), onSettled func()) {
	in.Cancel()
	if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) {
		if onSettled != nil {
			onSettled()
		}
		return
	}
	in.velocity = v
	in.apply = applyDelta
	in.settled = onSettled
	in.running = true
	in.frame = in.sched.RequestFrame(in.step)
}

func (in *Inertia) step() {
	in.frame = 0
	in.velocity = in.velocity.Mul(in.cfg.Decay)
	if math.Abs(in.velocity.X) < in.cfg.StopThreshold && math.Abs(in.velocity.Y) < in.cfg.StopThreshold {
		settled := in.settled
		in.stop()
		if settled != nil {
			settled()
		}
		return
	}
	if in.apply != nil {
		in.apply(in.velocity)
	}
	// apply may have cancelled or restarted us.
	if in.running && in.frame == 0 {
		in.frame = in.sched.RequestFrame(in.step)
	}
}

// Cancel stops the animation without calling onSettled. Safe to call at any
// time, any number of times.
func (in *Inertia) Cancel() {
	if in == nil {
		return
	}
	in.sched.Cancel(in.frame)
	in.stop()
}

func (in *Inertia) stop() {
	in.frame = 0
	in.running = false
	in.apply = nil
	in.settled = nil
	in.velocity = Vec2{}
}

// Running reports whether an animation is in flight.
func (in *Inertia) Running() bool {
	return in != nil && in.running
}

// Velocity returns the current animation velocity, zero when idle.
func (in *Inertia) Velocity() Vec2 {
	return in.velocity
}

// TicksToSettle returns the number of frames an animation started with v
// runs before settling under cfg.
func TicksToSettle(v Vec2, cfg InertiaConfig) int {
	cfg = cfg.withDefaults()
	m := math.Max(math.Abs(v.X), math.Abs(v.Y))
	if m < cfg.StopThreshold/cfg.Decay {
		return 1
	}
	// Smallest n with m*decay^n < threshold.
	n := math.Log(cfg.StopThreshold/m) / math.Log(cfg.Decay)
	return int(math.Floor(n)) + 1
}
