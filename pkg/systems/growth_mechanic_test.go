package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/decker502/matreshka/pkg/components"
	"github.com/decker502/matreshka/pkg/config"
	"github.com/decker502/matreshka/pkg/ecs"
	"github.com/decker502/matreshka/pkg/game"
)

func growthProfile(target int) config.DifficultyProfile {
	return config.DifficultyProfile{
		TimeLimit:    60,
		VictoryBonus: 300,
		Growth:       &config.GrowthParams{GrowRate: 0.5, SizeFactor: 0.33, TargetDolls: target},
	}
}

func newGrowthSession(t *testing.T, target int) (*game.Session, *GrowthMechanic, *recordingFeedback) {
	t.Helper()
	m := NewGrowthMechanic(ecs.NewEntityManager(), rand.New(rand.NewSource(7)))
	s, _, fb := newTestSession(t, m, growthProfile(target))
	s.Start()
	return s, m, fb
}

func TestGrowthAccuracyPerfectSettle(t *testing.T) {
	acc := GrowthAccuracy(0.33, 1.0, 0.33)
	if acc != 1 {
		t.Fatalf("accuracy = %v, want 1", acc)
	}
	if bonus := game.AccuracyBonus(acc); bonus != 50 {
		t.Errorf("bonus = %d, want 50", bonus)
	}
	if acc := GrowthAccuracy(2, 1.0, 0.33); acc != 0 {
		t.Errorf("far off accuracy = %v, want 0", acc)
	}
}

func TestBoundaryScale(t *testing.T) {
	got := BoundaryScale(config.Rect{W: 800, H: 400}, 0.5)
	if got != 1 {
		t.Errorf("BoundaryScale = %v, want 1", got)
	}
}

func TestGrowthSetupSeedsBoundary(t *testing.T) {
	_, m, _ := newGrowthSession(t, 3)

	stack := m.Stack()
	want := BoundaryScale(config.PlayArea, 0.33)
	if len(stack) != 1 || stack[0] != want {
		t.Fatalf("stack = %v, want [%v]", stack, want)
	}
	if got := m.CurrentScale(); math.Abs(got-want*0.4*0.33) > 1e-12 {
		t.Errorf("spawn scale = %v, want %v", got, want*0.4*0.33)
	}
	if m.IsGrowing() {
		t.Error("should not grow before input")
	}
}

func TestGrowthSettleAwardsPoints(t *testing.T) {
	s, m, fb := newGrowthSession(t, 3)
	cx, cy := config.PlayArea.Center()

	s.Input(pointer(game.PointerDown, cx, cy))
	advance(s, 0.25)
	s.Input(pointer(game.PointerUp, cx, cy))

	// 0.129 + 0.125 ≈ 0.254，目标 0.322，精度约 0.79 → +25
	if got := s.Score(); got != 155 {
		t.Errorf("score = %d, want 155", got)
	}
	if m.Collected() != 1 || len(m.Stack()) != 2 {
		t.Errorf("collected=%d stack=%v", m.Collected(), m.Stack())
	}
	if fb.count(game.CueSuccess) != 1 {
		t.Errorf("expected one success cue, got %v", fb.cues)
	}
	if s.Phase() != game.PhaseRunning {
		t.Errorf("phase = %s, want running", s.Phase())
	}
}

func TestGrowthTouchingOutlineWhileGrowingFails(t *testing.T) {
	s, m, _ := newGrowthSession(t, 3)
	cx, cy := config.PlayArea.Center()

	s.Input(pointer(game.PointerDown, cx, cy))
	advance(s, 3)

	if s.Phase() != game.PhaseEnded {
		t.Fatalf("phase = %s, want ended", s.Phase())
	}
	if r := s.LastResults(); r == nil || r.Victory {
		t.Errorf("expected defeat, got %+v", r)
	}
	if m.IsGrowing() {
		t.Error("growth should stop after failure")
	}
}

func TestGrowthReleaseExactlyOnOutlineFails(t *testing.T) {
	s, m, _ := newGrowthSession(t, 3)
	cx, cy := config.PlayArea.Center()

	s.Input(pointer(game.PointerDown, cx, cy))
	m.currentDoll().Scale = m.Stack()[0]
	s.Input(pointer(game.PointerUp, cx, cy))

	if s.Phase() != game.PhaseEnded || s.LastResults().Victory {
		t.Fatalf("release at the outline should lose, phase=%s", s.Phase())
	}
	if s.Score() != 0 {
		t.Errorf("score = %d, want 0", s.Score())
	}
}

func TestGrowthVictoryAtTarget(t *testing.T) {
	s, m, _ := newGrowthSession(t, 1)
	cx, cy := config.PlayArea.Center()

	s.Input(pointer(game.PointerDown, cx, cy))
	advance(s, 0.25)
	s.Input(pointer(game.PointerUp, cx, cy))

	r := s.LastResults()
	if r == nil || !r.Victory {
		t.Fatalf("expected victory, got %+v", r)
	}
	// 155 + 满时间胜利奖励 300
	if r.Score != 455 {
		t.Errorf("final score = %d, want 455", r.Score)
	}
	if m.Collected() != 1 {
		t.Errorf("collected = %d", m.Collected())
	}
}

func TestGrowthIgnoresPressOutsidePlayArea(t *testing.T) {
	s, m, _ := newGrowthSession(t, 3)
	s.Input(pointer(game.PointerDown, 10, 10))
	if m.IsGrowing() {
		t.Error("press on the HUD should not start growing")
	}
}

func TestGrowthColorsNeverRepeat(t *testing.T) {
	s, m, _ := newGrowthSession(t, 6)
	cx, cy := config.PlayArea.Center()

	prev := m.currentDoll().Color
	for i := 0; i < 4; i++ {
		s.Input(pointer(game.PointerDown, cx, cy))
		s.Update(testFrame)
		s.Input(pointer(game.PointerUp, cx, cy))
		if s.Phase() != game.PhaseRunning {
			t.Fatalf("round %d ended unexpectedly", i)
		}
		next := m.currentDoll().Color
		if next == prev || next == config.ReservedColor {
			t.Fatalf("round %d: color %s after %s", i, next, prev)
		}
		prev = next
	}
}

func TestGrowthRestartRebuildsBoard(t *testing.T) {
	s, m, _ := newGrowthSession(t, 3)
	cx, cy := config.PlayArea.Center()
	s.Input(pointer(game.PointerDown, cx, cy))
	advance(s, 0.25)
	s.Input(pointer(game.PointerUp, cx, cy))

	s.Restart()
	if m.Collected() != 0 || len(m.Stack()) != 1 {
		t.Errorf("restart should reset progress: collected=%d stack=%v", m.Collected(), m.Stack())
	}
	// 外框和当前套娃
	if n := len(ecs.GetEntitiesWith1[*components.GrowthDollComponent](m.em)); n != 2 {
		t.Errorf("doll entities after restart = %d, want 2", n)
	}
}

// TestGrowthPauseStopsGrowing 暂停时放大停止，恢复后不会继续长大
func TestGrowthPauseStopsGrowing(t *testing.T) {
	s, m, _ := newGrowthSession(t, 3)
	cx, cy := config.PlayArea.Center()

	s.Input(pointer(game.PointerDown, cx, cy))
	advance(s, 0.125)
	s.RequestPause()
	s.Input(pointer(game.PointerUp, cx, cy))
	if m.IsGrowing() {
		t.Fatal("pause should stop growing")
	}
	scale := m.CurrentScale()

	s.RequestResume()
	advance(s, 0.25)
	if got := m.CurrentScale(); got != scale {
		t.Errorf("doll kept growing after resume: %v -> %v", scale, got)
	}
	if m.Collected() != 0 || s.Score() != 0 {
		t.Errorf("nothing should settle, collected=%d score=%d", m.Collected(), s.Score())
	}

	s.Input(pointer(game.PointerDown, cx, cy))
	if !m.IsGrowing() {
		t.Error("a new press after resume should grow again")
	}
}
