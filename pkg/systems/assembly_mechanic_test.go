package systems

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/decker502/matreshka/pkg/components"
	"github.com/decker502/matreshka/pkg/config"
	"github.com/decker502/matreshka/pkg/ecs"
	"github.com/decker502/matreshka/pkg/game"
)

func assemblyProfile(count int) config.DifficultyProfile {
	return config.DifficultyProfile{
		TimeLimit: 100,
		Assembly: &config.AssemblyParams{
			DollCount:           count,
			BasePoints:          100,
			MinSize:             80,
			SpeedMultiplier:     1,
			TimeBonusMultiplier: 2,
		},
	}
}

// newAssemblySession 创建会话并把漂浮的套娃排成网格，避免互相遮挡
func newAssemblySession(t *testing.T, count int) (*game.Session, *AssemblyMechanic, *recordingFeedback) {
	t.Helper()
	m := NewAssemblyMechanic(ecs.NewEntityManager(), rand.New(rand.NewSource(11)))
	s, _, fb := newTestSession(t, m, assemblyProfile(count))
	s.Start()
	for i, id := range m.Pieces() {
		setPiecePosition(t, m, id, 100+float64(i%4)*150, 200+float64(i/4)*200)
	}
	return s, m, fb
}

func setPiecePosition(t *testing.T, m *AssemblyMechanic, id ecs.EntityID, x, y float64) {
	t.Helper()
	pos, ok := ecs.GetComponent[*components.PositionComponent](m.em, id)
	if !ok {
		t.Fatalf("piece %d has no position", id)
	}
	pos.X, pos.Y = x, y
}

func pieceComp(t *testing.T, m *AssemblyMechanic, id ecs.EntityID) *components.PieceComponent {
	t.Helper()
	p, ok := ecs.GetComponent[*components.PieceComponent](m.em, id)
	if !ok {
		t.Fatalf("entity %d is not a piece", id)
	}
	return p
}

func pieceBySize(t *testing.T, m *AssemblyMechanic, size float64) ecs.EntityID {
	t.Helper()
	for _, id := range m.Pieces() {
		if pieceComp(t, m, id).Size == size {
			return id
		}
	}
	t.Fatalf("no piece of size %v", size)
	return 0
}

func piecePos(t *testing.T, m *AssemblyMechanic, id ecs.EntityID) (float64, float64) {
	t.Helper()
	pos, ok := ecs.GetComponent[*components.PositionComponent](m.em, id)
	if !ok {
		t.Fatalf("piece %d has no position", id)
	}
	return pos.X, pos.Y
}

// dragFromTo 从 (fx, fy) 按下，移动并在 (tx, ty) 松开
func dragFromTo(s *game.Session, fx, fy, tx, ty float64) {
	s.Input(pointer(game.PointerDown, fx, fy))
	s.Input(pointer(game.PointerMove, (fx+tx)/2, (fy+ty)/2))
	s.Input(pointer(game.PointerMove, tx, ty))
	s.Input(pointer(game.PointerUp, tx, ty))
}

func dragPiece(t *testing.T, s *game.Session, m *AssemblyMechanic, id ecs.EntityID, tx, ty float64) {
	t.Helper()
	x, y := piecePos(t, m, id)
	dragFromTo(s, x, y, tx, ty)
}

func assemblyCenter() (float64, float64) { return config.AssemblyZone.Center() }

func TestChildSizes(t *testing.T) {
	got := ChildSizes(5, 80)
	want := []float64{176, 152, 128, 104, 80}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ChildSizes(5, 80) = %v, want %v", got, want)
	}
	if ChildSizes(0, 80) != nil {
		t.Error("zero count should give no sizes")
	}
}

func TestCanPlaceInAssembly(t *testing.T) {
	tests := []struct {
		name     string
		ordering []float64
		size     float64
		want     bool
	}{
		{"empty ordering accepts a child", nil, 176, true},
		{"empty ordering rejects a piece as big as the mother", nil, 240, false},
		{"smaller than the last", []float64{176, 128}, 104, true},
		{"equal to the last", []float64{176, 128}, 128, false},
		{"bigger than the last", []float64{176, 128}, 152, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanPlaceInAssembly(tt.ordering, tt.size, config.AssemblyMotherSize); got != tt.want {
				t.Errorf("CanPlaceInAssembly(%v, %v) = %v, want %v", tt.ordering, tt.size, got, tt.want)
			}
		})
	}
}

func TestClassifyDrop(t *testing.T) {
	ax, ay := assemblyCenter()
	tests := []struct {
		x, y float64
		want DropZone
	}{
		{300, 300, DropPlay},
		{ax, ay, DropAssembly},
		{628, 300, DropNone},
		{config.AssemblyPlayZone.X, 300, DropNone},
		{config.AssemblyZone.X, ay, DropNone},
		{ax, 10, DropNone},
	}
	for _, tt := range tests {
		if got := ClassifyDrop(tt.x, tt.y); got != tt.want {
			t.Errorf("ClassifyDrop(%v, %v) = %s, want %s", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestStepFloatBounces(t *testing.T) {
	bounds := config.Rect{X: 0, Y: 0, W: 100, H: 100}

	pos, vel, bounced := StepFloat(
		components.PositionComponent{X: 95, Y: 50},
		components.VelocityComponent{VX: 600, VY: 0},
		bounds, 1.0/60, nil)
	if !bounced || pos.X != 100 || vel.VX != -600 {
		t.Errorf("right wall: pos=%v vel=%v bounced=%v", pos, vel, bounced)
	}

	pos, vel, bounced = StepFloat(
		components.PositionComponent{X: 50, Y: 2},
		components.VelocityComponent{VX: 0, VY: -600},
		bounds, 1.0/60, nil)
	if !bounced || pos.Y != 0 || vel.VY != 600 {
		t.Errorf("top wall: pos=%v vel=%v bounced=%v", pos, vel, bounced)
	}

	pos, _, bounced = StepFloat(
		components.PositionComponent{X: 50, Y: 50},
		components.VelocityComponent{VX: 60, VY: 60},
		bounds, 0.5, nil)
	if bounced || pos.X != 80 || pos.Y != 80 {
		t.Errorf("free flight: pos=%v bounced=%v", pos, bounced)
	}
}

func TestStepFloatStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	bounds := FloatBounds(config.AssemblyPlayZone, 176)
	pos := components.PositionComponent{X: bounds.X + 10, Y: bounds.Y + 10}
	vel := RandomVelocity(rng, FloatSpeed(1.8))
	speed2 := vel.VX*vel.VX + vel.VY*vel.VY

	for i := 0; i < 5000; i++ {
		pos, vel, _ = StepFloat(pos, vel, bounds, testFrame, rng)
		if !bounds.Contains(pos.X, pos.Y) {
			t.Fatalf("step %d: %v left %v", i, pos, bounds)
		}
	}
	if got := vel.VX*vel.VX + vel.VY*vel.VY; got < speed2*0.999 || got > speed2*1.001 {
		t.Errorf("speed changed: %v -> %v", speed2, got)
	}
}

func TestAssemblySetup(t *testing.T) {
	_, m, _ := newAssemblySession(t, 5)

	mother := pieceComp(t, m, m.Mother())
	if !mother.IsMother || mother.Size != config.AssemblyMotherSize || mother.Color != config.ReservedColor {
		t.Errorf("mother = %+v", mother)
	}
	seen := map[float64]bool{}
	for _, id := range m.Pieces() {
		p := pieceComp(t, m, id)
		if p.IsMother || p.IsInMother || p.Color == config.ReservedColor {
			t.Errorf("bad child %+v", p)
		}
		seen[p.Size] = true
	}
	if len(seen) != 5 {
		t.Errorf("expected 5 distinct sizes, got %v", seen)
	}
	if len(m.Ordering()) != 0 {
		t.Error("ordering should start empty")
	}
}

func TestAssemblyPlacementAndRejection(t *testing.T) {
	s, m, fb := newAssemblySession(t, 3)
	ax, ay := assemblyCenter()

	big := pieceBySize(t, m, 160)
	dragPiece(t, s, m, big, ax, ay)
	if got := m.OrderingSizes(); !reflect.DeepEqual(got, []float64{160}) {
		t.Fatalf("ordering = %v", got)
	}
	// floor((100 + floor(100/100*2*100)) * 1)
	if s.Score() != 300 {
		t.Errorf("score = %d, want 300", s.Score())
	}
	if !pieceComp(t, m, m.Mother()).IsOpen {
		t.Error("mother should open when the first piece goes in")
	}

	small := pieceBySize(t, m, 80)
	dragPiece(t, s, m, small, ax, ay)
	if !pieceComp(t, m, big).IsOpen {
		t.Error("previous top should open")
	}

	mid := pieceBySize(t, m, 120)
	ox, oy := piecePos(t, m, mid)
	errorsBefore := fb.count(game.CueError)
	dragPiece(t, s, m, mid, ax, ay)

	if got := m.OrderingSizes(); !reflect.DeepEqual(got, []float64{160, 80}) {
		t.Errorf("rejected insertion changed the ordering: %v", got)
	}
	if s.Score() != 600 {
		t.Errorf("rejected insertion changed the score: %d", s.Score())
	}
	if fb.count(game.CueError) != errorsBefore+1 {
		t.Errorf("expected an error cue, got %v", fb.cues)
	}
	if p := pieceComp(t, m, mid); p.IsInMother {
		t.Error("rejected piece must stay floating")
	}
	if x, y := piecePos(t, m, mid); x != ox || y != oy {
		t.Errorf("rejected piece at (%v, %v), want origin (%v, %v)", x, y, ox, oy)
	}
}

func TestAssemblyRemoveTopPiece(t *testing.T) {
	s, m, _ := newAssemblySession(t, 3)
	ax, ay := assemblyCenter()
	big := pieceBySize(t, m, 160)
	mid := pieceBySize(t, m, 120)
	dragPiece(t, s, m, big, ax, ay)
	dragPiece(t, s, m, mid, ax, ay)

	dragFromTo(s, ax, ay, 300, 500)

	if got := m.OrderingSizes(); !reflect.DeepEqual(got, []float64{160}) {
		t.Fatalf("ordering = %v, want [160]", got)
	}
	// 600 - floor(100*0.3)
	if s.Score() != 570 {
		t.Errorf("score = %d, want 570", s.Score())
	}
	p := pieceComp(t, m, mid)
	if p.IsInMother || p.IsOpen {
		t.Errorf("removed piece = %+v", p)
	}
	if pieceComp(t, m, big).IsOpen {
		t.Error("new top should close")
	}
	x, y := piecePos(t, m, mid)
	if !FloatBounds(config.AssemblyPlayZone, 120).Contains(x, y) {
		t.Errorf("removed piece at (%v, %v) outside float bounds", x, y)
	}
}

func TestAssemblyDragRedirectsToTop(t *testing.T) {
	s, m, _ := newAssemblySession(t, 3)
	ax, ay := assemblyCenter()
	big := pieceBySize(t, m, 160)
	mid := pieceBySize(t, m, 120)
	dragPiece(t, s, m, big, ax, ay)
	dragPiece(t, s, m, mid, ax, ay)

	// 只落在大套娃上、不在顶层套娃上的点
	_, bigH := config.PieceExtent(160)
	_, midH := config.PieceExtent(120)
	y := ay + (bigH/2+midH/2)/2
	s.Input(pointer(game.PointerDown, ax, y))
	if got := m.Dragging(); got != mid {
		t.Fatalf("dragging %d, want top piece %d", got, mid)
	}
	s.Input(pointer(game.PointerUp, ax, y))

	if got := m.OrderingSizes(); !reflect.DeepEqual(got, []float64{160, 120}) {
		t.Errorf("drop back on the assembly should cancel, ordering = %v", got)
	}
	if x, yy := piecePos(t, m, mid); x != ax || yy != ay {
		t.Errorf("cancelled piece moved to (%v, %v)", x, yy)
	}
}

func TestAssemblyMotherIsNotDraggable(t *testing.T) {
	s, m, _ := newAssemblySession(t, 3)
	ax, ay := assemblyCenter()
	s.Input(pointer(game.PointerDown, ax, ay))
	if m.Dragging() != 0 {
		t.Error("mother must not be draggable")
	}
}

func TestAssemblyDropOutsideZonesCancels(t *testing.T) {
	s, m, _ := newAssemblySession(t, 3)
	id := m.Pieces()[0]
	ox, oy := piecePos(t, m, id)

	dragPiece(t, s, m, id, 628, 300)
	if x, y := piecePos(t, m, id); x != ox || y != oy {
		t.Errorf("cancelled drop moved the piece to (%v, %v)", x, y)
	}
	if pieceComp(t, m, id).IsInMother || s.Score() != 0 {
		t.Error("cancelled drop changed state")
	}

	dragPiece(t, s, m, id, 320, 500)
	if x, y := piecePos(t, m, id); x != 320 || y != 500 {
		t.Errorf("play zone drop should move the piece, got (%v, %v)", x, y)
	}
}

func TestAssemblyVictory(t *testing.T) {
	s, m, _ := newAssemblySession(t, 3)
	ax, ay := assemblyCenter()
	for _, size := range []float64{160, 120, 80} {
		dragPiece(t, s, m, pieceBySize(t, m, size), ax, ay)
	}
	r := s.LastResults()
	if r == nil || !r.Victory {
		t.Fatalf("expected victory, got %+v", r)
	}
	if r.Score != 900 {
		t.Errorf("score = %d, want 900", r.Score)
	}
}

func TestAssemblyFloatingStaysInPlayZone(t *testing.T) {
	s, m, _ := newAssemblySession(t, 5)
	advance(s, 5)
	for _, id := range m.Pieces() {
		p := pieceComp(t, m, id)
		x, y := piecePos(t, m, id)
		if !FloatBounds(config.AssemblyPlayZone, p.Size).Contains(x, y) {
			t.Errorf("piece %v at (%v, %v) left the play zone", p.Size, x, y)
		}
	}
}

func TestAssemblyOrderingInvariantUnderRandomDrops(t *testing.T) {
	s, m, _ := newAssemblySession(t, 7)
	rng := rand.New(rand.NewSource(99))
	ax, ay := assemblyCenter()
	targets := [][2]float64{{ax, ay}, {300, 400}, {628, 300}}

	for step := 0; step < 300 && s.Phase() == game.PhaseRunning; step++ {
		pieces := m.Pieces()
		id := pieces[rng.Intn(len(pieces))]
		target := targets[rng.Intn(len(targets))]
		dragPiece(t, s, m, id, target[0], target[1])

		sizes := m.OrderingSizes()
		for i := range sizes {
			limit := config.AssemblyMotherSize
			if i > 0 {
				limit = sizes[i-1]
			}
			if sizes[i] >= limit {
				t.Fatalf("step %d: ordering %v is not strictly decreasing", step, sizes)
			}
		}
		if s.Score() < 0 {
			t.Fatalf("step %d: negative score", step)
		}
	}
}

// TestAssemblyPauseCancelsDrag 拖动中暂停：松开事件丢失，恢复后按下的套娃才是被拖动的套娃
func TestAssemblyPauseCancelsDrag(t *testing.T) {
	s, m, _ := newAssemblySession(t, 3)
	a, b := m.Pieces()[0], m.Pieces()[1]
	ax, ay := piecePos(t, m, a)
	bx, by := piecePos(t, m, b)

	s.Input(pointer(game.PointerDown, ax, ay))
	s.Input(pointer(game.PointerMove, ax+80, ay+60))
	if m.Dragging() != a {
		t.Fatalf("dragging %d, want %d", m.Dragging(), a)
	}

	s.RequestPause()
	s.Input(pointer(game.PointerUp, ax+80, ay+60))
	if m.Dragging() != 0 {
		t.Errorf("pause should cancel the drag, still dragging %d", m.Dragging())
	}
	if x, y := piecePos(t, m, a); x != ax || y != ay {
		t.Errorf("cancelled piece at (%v, %v), want origin (%v, %v)", x, y, ax, ay)
	}

	s.RequestResume()
	if s.Phase() != game.PhaseRunning {
		t.Fatalf("phase = %s, want running", s.Phase())
	}
	s.Input(pointer(game.PointerDown, bx, by))
	if m.Dragging() != b {
		t.Fatalf("dragging %d, want the newly pressed piece %d", m.Dragging(), b)
	}
	s.Input(pointer(game.PointerMove, 300, 300))
	if x, y := piecePos(t, m, b); x != 300 || y != 300 {
		t.Errorf("pressed piece at (%v, %v), want (300, 300)", x, y)
	}
	if x, y := piecePos(t, m, a); x != ax || y != ay {
		t.Errorf("old piece moved to (%v, %v)", x, y)
	}
}
