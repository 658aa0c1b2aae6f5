package world

import (
	"testing"

	"megacity.sim/internal/sim/tuning"
)

func newMenuWorld(t *testing.T) *World {
	t.Helper()
	w, err := New(Config{Params: tuning.Default()})
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	return w
}

func newPlayingWorld(t *testing.T, seed int64) *World {
	t.Helper()
	w := newMenuWorld(t)
	w.Submit(GameAction{Kind: ActionNewGame, Seed: seed, CityName: "Testburg"}, SourcePlayer, 0)
	w.Step()
	if w.State() != StatePlaying {
		t.Fatalf("state after NewGame = %v, want playing", w.State())
	}
	return w
}

// flatten levels the generated terrain to grass so placement tests do not
// depend on the noise field. Only valid before any roads or buildings exist.
func flatten(w *World) {
	for i := 0; i < GridSize*GridSize; i++ {
		c := w.grid.AtIndex(i)
		c.Terrain = TerrainGrass
		c.Elevation = 0.5
	}
}

func mustApply(t *testing.T, w *World, a GameAction) {
	t.Helper()
	if code, msg := w.applyAction(a); code != CodeOK {
		t.Fatalf("%s: code %s msg %q", a.Kind, code, msg)
	}
}

func TestMenuStepDoesNotAdvanceTick(t *testing.T) {
	w := newMenuWorld(t)
	for i := 0; i < 5; i++ {
		w.Step()
	}
	if w.Tick() != 0 {
		t.Errorf("tick advanced to %d in main menu", w.Tick())
	}
	if w.State() != StateMainMenu {
		t.Errorf("state = %v", w.State())
	}
}

func TestNewGameResetsAndStartsPlaying(t *testing.T) {
	w := newPlayingWorld(t, 7)
	if w.Tick() != 0 {
		t.Errorf("tick = %d right after NewGame, want 0", w.Tick())
	}
	if w.CityName() != "Testburg" {
		t.Errorf("city name = %q", w.CityName())
	}
	if got, want := w.Budget().Treasury, tuning.Default().StartingTreasury; got != want {
		t.Errorf("treasury = %v, want %v", got, want)
	}
	if c := w.Clock(); c.Hour != 8 || c.Speed != 1 || c.Paused {
		t.Errorf("clock = %+v", c)
	}

	w.Step()
	if w.Tick() != 1 {
		t.Errorf("tick = %d after one playing step", w.Tick())
	}
}

func TestPausedStepOnlyExecutesActions(t *testing.T) {
	w := newPlayingWorld(t, 7)
	w.Submit(GameAction{Kind: ActionSetPaused, Paused: true}, SourcePlayer, 0)
	w.Step() // pause applies during this tick
	before := w.Tick()

	w.Submit(GameAction{Kind: ActionSetSpeed, Speed: 2}, SourcePlayer, 0)
	w.Step()
	if w.Tick() != before {
		t.Errorf("tick advanced from %d to %d while paused", before, w.Tick())
	}
	// The queued action still executed: speed 2 unpauses.
	if c := w.Clock(); c.Speed != 2 || c.Paused {
		t.Errorf("clock after unpause action = %+v", c)
	}
	w.Step()
	if w.Tick() != before+1 {
		t.Errorf("tick = %d after unpausing, want %d", w.Tick(), before+1)
	}
}

func TestActionPriorityThenSubmissionOrder(t *testing.T) {
	w := newPlayingWorld(t, 7)

	// The high-priority action dequeues first, so the low-priority one wins.
	w.Submit(GameAction{Kind: ActionSetSpeed, Speed: 1}, SourcePlayer, 0)
	w.Submit(GameAction{Kind: ActionSetSpeed, Speed: 2}, SourceAgent, 5)
	w.Step()
	if got := w.Clock().Speed; got != 1 {
		t.Errorf("speed = %d, want 1 (low priority applies last)", got)
	}

	// Equal priority keeps submission order.
	w.Submit(GameAction{Kind: ActionSetSpeed, Speed: 2}, SourcePlayer, 0)
	w.Submit(GameAction{Kind: ActionSetSpeed, Speed: 3}, SourcePlayer, 0)
	w.Step()
	if got := w.Clock().Speed; got != 3 {
		t.Errorf("speed = %d, want 3 (FIFO within priority)", got)
	}
}

func TestResultLogRecordsFailures(t *testing.T) {
	w := newPlayingWorld(t, 7)
	w.Submit(GameAction{Kind: ActionSetSpeed, Speed: 9}, SourcePlayer, 0)
	w.Step()

	recent := w.resultLog.Recent(1)
	if len(recent) != 1 {
		t.Fatalf("recent results = %d entries", len(recent))
	}
	r := recent[0]
	if r.OK || r.Code != CodeInvalid || r.Kind != ActionSetSpeed {
		t.Errorf("result = %+v", r)
	}
}

func TestSameSeedSameActionsSameDigests(t *testing.T) {
	run := func() *World {
		w := newPlayingWorld(t, 42)
		w.Submit(GameAction{Kind: ActionPlaceGridRoad, RoadType: RoadLocal,
			Pos: CellPos{X: 60, Y: 60}, ToPos: CellPos{X: 90, Y: 60}}, SourcePlayer, 0)
		w.Submit(GameAction{Kind: ActionZone, ZoneType: ZoneResidentialLow,
			Pos: CellPos{X: 61, Y: 61}, ToPos: CellPos{X: 80, Y: 63}}, SourcePlayer, 0)
		w.Submit(GameAction{Kind: ActionPlaceUtility, UtilityType: UtilityWindFarm,
			Pos: CellPos{X: 70, Y: 66}}, SourcePlayer, 0)
		return w
	}
	a := run()
	b := run()

	steps := 2*a.params.SlowTickPeriod + 7
	for i := 0; i < steps; i++ {
		a.Step()
		b.Step()
		if i%25 != 0 {
			continue
		}
		da, db := a.StateDigest(), b.StateDigest()
		if da != db {
			t.Fatalf("digest diverged at tick %d:\n  a=%s\n  b=%s", a.Tick(), da, db)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := newPlayingWorld(t, 1)
	b := newPlayingWorld(t, 2)
	if a.StateDigest() == b.StateDigest() {
		t.Error("different seeds produced identical initial digests")
	}
}

func TestNoticesDrainOnce(t *testing.T) {
	w := newPlayingWorld(t, 7)
	w.pushNotice("first")
	w.pushNotice("second")
	got := w.Notices()
	if len(got) != 2 || got[0] != "first" {
		t.Errorf("notices = %v", got)
	}
	if again := w.Notices(); len(again) != 0 {
		t.Errorf("second drain = %v, want empty", again)
	}
}

func TestNoticeBacklogBounded(t *testing.T) {
	w := newPlayingWorld(t, 7)
	for i := 0; i < 200; i++ {
		w.pushNotice("x")
	}
	if n := len(w.notices); n > 64 {
		t.Errorf("notice backlog grew to %d", n)
	}
}
