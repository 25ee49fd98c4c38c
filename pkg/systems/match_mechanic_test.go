package systems

import (
	"math/rand"
	"testing"

	"github.com/decker502/matreshka/pkg/components"
	"github.com/decker502/matreshka/pkg/config"
	"github.com/decker502/matreshka/pkg/ecs"
	"github.com/decker502/matreshka/pkg/game"
)

// newMatchSession 使用固定牌面 [A,B,B,A] 的 2x2 网格
func newMatchSession(t *testing.T) (*game.Session, *MatchMechanic, *recordingFeedback) {
	t.Helper()
	m := NewMatchMechanic(ecs.NewEntityManager(), rand.New(rand.NewSource(1)))
	m.deck = []config.DollColor{"red", "blue", "blue", "red"}
	s, _, fb := newTestSession(t, m, config.DifficultyProfile{
		TimeLimit:    100,
		VictoryBonus: 500,
		Match:        &config.MatchParams{Pairs: 2, Cols: 2, Rows: 2},
	})
	s.Start()
	return s, m, fb
}

func clickCard(t *testing.T, s *game.Session, em *ecs.EntityManager, id ecs.EntityID) {
	t.Helper()
	pos, ok := ecs.GetComponent[*components.PositionComponent](em, id)
	if !ok {
		t.Fatalf("card %d has no position", id)
	}
	s.Input(pointer(game.PointerDown, pos.X, pos.Y))
	s.Input(pointer(game.PointerUp, pos.X, pos.Y))
}

func card(t *testing.T, em *ecs.EntityManager, id ecs.EntityID) *components.CardComponent {
	t.Helper()
	c, ok := ecs.GetComponent[*components.CardComponent](em, id)
	if !ok {
		t.Fatalf("entity %d is not a card", id)
	}
	return c
}

func TestDealPairs(t *testing.T) {
	deck := DealPairs(rand.New(rand.NewSource(3)), 6)
	if len(deck) != 12 {
		t.Fatalf("deck size = %d, want 12", len(deck))
	}
	counts := map[config.DollColor]int{}
	for _, c := range deck {
		if c == config.ReservedColor {
			t.Errorf("reserved color dealt")
		}
		counts[c]++
	}
	if len(counts) != 6 {
		t.Errorf("distinct values = %d, want 6", len(counts))
	}
	for c, n := range counts {
		if n != 2 {
			t.Errorf("%s appears %d times", c, n)
		}
	}
}

func TestMatchPairResolves(t *testing.T) {
	s, m, fb := newMatchSession(t)
	cards := m.Cards()

	clickCard(t, s, m.em, cards[0])
	clickCard(t, s, m.em, cards[3])
	if !m.Locked() {
		t.Fatal("selection should lock while resolving")
	}
	advance(s, 0.4)

	if !card(t, m.em, cards[0]).Matched || !card(t, m.em, cards[3]).Matched {
		t.Fatal("cards 0 and 3 should be matched")
	}
	// 100 + round(100/100*50)
	if s.Score() != 150 {
		t.Errorf("score = %d, want 150", s.Score())
	}
	if fb.count(game.CueSuccess) != 1 {
		t.Errorf("cues = %v", fb.cues)
	}

	advance(s, 0.3)
	if m.Locked() {
		t.Error("selection should unlock after the pair settles")
	}
}

func TestMatchMismatchFlipsBack(t *testing.T) {
	s, m, fb := newMatchSession(t)
	cards := m.Cards()

	clickCard(t, s, m.em, cards[0])
	clickCard(t, s, m.em, cards[1])
	advance(s, 0.4)

	a, b := card(t, m.em, cards[0]), card(t, m.em, cards[1])
	if a.Matched || b.Matched {
		t.Fatal("A and B must not match")
	}
	if !a.Revealed || !b.Revealed {
		t.Fatal("cards stay visible until the flip-back delay")
	}
	if s.Score() != 0 {
		t.Errorf("score clamps at 0, got %d", s.Score())
	}
	if fb.count(game.CueError) != 1 {
		t.Errorf("cues = %v", fb.cues)
	}

	advance(s, 0.5)
	if a.Revealed || b.Revealed {
		t.Error("both cards should be hidden again")
	}
	if m.Locked() {
		t.Error("selection should unlock after flipping back")
	}
}

func TestMatchClicksIgnoredWhileResolving(t *testing.T) {
	s, m, _ := newMatchSession(t)
	cards := m.Cards()

	clickCard(t, s, m.em, cards[0])
	clickCard(t, s, m.em, cards[0])
	if m.Locked() {
		t.Fatal("clicking a revealed card must not count as the second pick")
	}
	clickCard(t, s, m.em, cards[1])
	clickCard(t, s, m.em, cards[2])
	if card(t, m.em, cards[2]).Revealed {
		t.Error("third card must stay hidden while resolving")
	}
}

func TestMatchVictoryAfterAllPairs(t *testing.T) {
	s, m, _ := newMatchSession(t)
	cards := m.Cards()

	clickCard(t, s, m.em, cards[0])
	clickCard(t, s, m.em, cards[3])
	advance(s, 0.75)
	clickCard(t, s, m.em, cards[1])
	clickCard(t, s, m.em, cards[2])
	advance(s, 0.75)

	r := s.LastResults()
	if r == nil || !r.Victory {
		t.Fatalf("expected victory, got %+v", r)
	}
	if m.PairsFound() != 2 {
		t.Errorf("pairs found = %d", m.PairsFound())
	}
	// 点击已配对的卡片不会再改变状态
	clickCard(t, s, m.em, cards[0])
	if !card(t, m.em, cards[0]).Matched {
		t.Error("matched card changed after the game ended")
	}
}

func TestMatchDefeatOnTimeout(t *testing.T) {
	s, _, _ := newMatchSession(t)
	advance(s, 101)
	r := s.LastResults()
	if r == nil || r.Victory {
		t.Fatalf("expected defeat, got %+v", r)
	}
}

func TestLayoutGridCentersCards(t *testing.T) {
	area := config.Rect{X: 0, Y: 0, W: 400, H: 400}
	pos := LayoutGrid(area, 4, 2, 2)
	if len(pos) != 4 {
		t.Fatalf("got %d positions", len(pos))
	}
	midX := (pos[0].X + pos[1].X) / 2
	midY := (pos[0].Y + pos[2].Y) / 2
	if midX != 200 || midY != 200 {
		t.Errorf("grid center = (%v, %v), want (200, 200)", midX, midY)
	}
	if pos[1].X-pos[0].X != config.CardWidth+config.CardSpacing {
		t.Errorf("column spacing = %v", pos[1].X-pos[0].X)
	}
}
