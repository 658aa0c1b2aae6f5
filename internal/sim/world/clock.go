package world

// AppState is the top-level application state. Simulation systems run only in
// StatePlaying; the tick counter does not advance otherwise.
type AppState uint8

const (
	StateMainMenu AppState = iota
	StatePlaying
	StatePaused
)

// GameClock tracks in-game time. Hour is fractional; speed selects the wall
// clock multiplier used by the fixed-timestep driver.
type GameClock struct {
	Day    int
	Hour   float64
	Speed  int // 0 paused, 1..3 multiplier
	Paused bool
}

// SlowTickTimer gates subsystems whose cadence is per-day rather than
// per-frame. The period is global and saved with the simulation.
type SlowTickTimer struct {
	Period      int
	accumulated int
	fire        bool
}

func (t *SlowTickTimer) advance() {
	t.accumulated++
	if t.accumulated >= t.Period {
		t.accumulated = 0
		t.fire = true
	} else {
		t.fire = false
	}
}

// ShouldRun reports whether this tick is a slow tick.
func (t *SlowTickTimer) ShouldRun() bool { return t.fire }

func (w *World) systemClock() {
	w.clock.Hour += 1.0 / float64(w.params.TicksPerHour)
	for w.clock.Hour >= 24 {
		w.clock.Hour -= 24
		w.clock.Day++
	}
}
