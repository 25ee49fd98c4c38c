package systems

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/decker502/matreshka/pkg/components"
	"github.com/decker502/matreshka/pkg/config"
	"github.com/decker502/matreshka/pkg/ecs"
	"github.com/decker502/matreshka/pkg/game"
)

// 第二关时间和计分常量
const (
	matchResolveDelay  = 0.4 // 翻开第二张后等待判定
	matchSettleDelay   = 0.3 // 配对成功后解除锁定
	matchFlipBackDelay = 0.5 // 配对失败后翻回
	matchBasePoints    = 100
	matchMaxTimeBonus  = 50
	matchPenalty       = 25
)

// MatchMechanic 第二关：翻牌找出颜色相同的两个套娃
//
// 选择缓冲最多保存两张已翻开但未判定的卡片，判定期间所有点击被忽略。
type MatchMechanic struct {
	em     *ecs.EntityManager
	rng    *rand.Rand
	params config.MatchParams

	cards      []ecs.EntityID // 按网格位置排列
	first      ecs.EntityID
	second     ecs.EntityID
	locked     bool
	pairsFound int
	attempts   int
	mistakes   int

	// deck 非空时 Setup 使用固定牌面而不是随机发牌
	deck []config.DollColor
}

// NewMatchMechanic 创建第二关玩法
func NewMatchMechanic(em *ecs.EntityManager, rng *rand.Rand) *MatchMechanic {
	return &MatchMechanic{em: em, rng: newRand(rng)}
}

// DealPairs 随机选择 pairs 种颜色，每种两张，均匀洗牌
func DealPairs(rng *rand.Rand, pairs int) []config.DollColor {
	colors := shuffledColors(rng)
	if pairs > len(colors) {
		pairs = len(colors)
	}
	deck := make([]config.DollColor, 0, pairs*2)
	for _, c := range colors[:pairs] {
		deck = append(deck, c, c)
	}
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}

// Level 关卡标识
func (m *MatchMechanic) Level() config.LevelID { return config.LevelMatch }

// Setup 发牌并把卡片排成网格，全部背面朝上
func (m *MatchMechanic) Setup(s *game.Session) {
	clearEntitiesWith[*components.CardComponent](m.em)

	m.params = *s.Profile().Match
	m.first, m.second = 0, 0
	m.locked = false
	m.pairsFound = 0
	m.attempts = 0
	m.mistakes = 0

	deck := m.deck
	if len(deck) == 0 {
		deck = DealPairs(m.rng, m.params.Pairs)
	} else {
		m.params.Pairs = len(deck) / 2
	}

	positions := LayoutGrid(config.PlayArea, len(deck), m.params.Cols, m.params.Rows)
	m.cards = m.cards[:0]
	for i, color := range deck {
		id := m.em.CreateEntity()
		pos := positions[i]
		ecs.AddComponent(m.em, id, &pos)
		ecs.AddComponent(m.em, id, &components.CardComponent{
			Index: i,
			Value: string(color),
			Color: color,
		})
		m.cards = append(m.cards, id)
	}
	log.Printf("[MatchMechanic] Setup: %d pairs in a %dx%d grid", m.params.Pairs, m.params.Cols, m.params.Rows)
}

// OnStart 无需额外处理
func (m *MatchMechanic) OnStart(s *game.Session) {}

// OnInput 点击翻牌
func (m *MatchMechanic) OnInput(s *game.Session, ev game.InputEvent) {
	if ev.Kind != game.PointerDown {
		return
	}
	if id := cardAt(m.em, ev.X, ev.Y); id != 0 {
		m.flip(s, id)
	}
}

// flip 翻开一张卡片；已翻开、已配对或判定中的点击都是空操作
func (m *MatchMechanic) flip(s *game.Session, id ecs.EntityID) {
	if m.locked {
		return
	}
	card, ok := ecs.GetComponent[*components.CardComponent](m.em, id)
	if !ok || card.Revealed || card.Matched {
		return
	}

	card.Revealed = true
	s.Cue(game.CueClick)

	if m.first == 0 {
		m.first = id
		return
	}
	m.second = id
	m.locked = true
	s.After(matchResolveDelay, func() { m.resolve(s) })
}

// resolve 判定选择缓冲中的两张卡片
func (m *MatchMechanic) resolve(s *game.Session) {
	a, okA := ecs.GetComponent[*components.CardComponent](m.em, m.first)
	b, okB := ecs.GetComponent[*components.CardComponent](m.em, m.second)
	if !okA || !okB {
		m.resetSelection()
		return
	}
	m.attempts++
	x, y := m.midpoint()

	if a.Value == b.Value {
		a.Matched, b.Matched = true, true
		m.pairsFound++
		points := s.Award(matchBasePoints, s.TimeBonus(matchMaxTimeBonus))
		s.Popup(x, y, points)
		s.Cue(game.CueSuccess)
		log.Printf("[MatchMechanic] Pair %s found (%d/%d, +%d)", a.Value, m.pairsFound, m.params.Pairs, points)

		s.After(matchSettleDelay, func() {
			m.resetSelection()
			if m.pairsFound >= m.params.Pairs {
				s.End(true)
			}
		})
		return
	}

	m.mistakes++
	taken := s.Penalize(matchPenalty)
	s.Popup(x, y, -taken)
	s.Cue(game.CueError)
	log.Printf("[MatchMechanic] Mismatch %s/%s (-%d)", a.Value, b.Value, taken)

	s.After(matchFlipBackDelay, func() {
		a.Revealed, b.Revealed = false, false
		m.resetSelection()
	})
}

func (m *MatchMechanic) resetSelection() {
	m.first, m.second = 0, 0
	m.locked = false
}

func (m *MatchMechanic) midpoint() (float64, float64) {
	pa, okA := ecs.GetComponent[*components.PositionComponent](m.em, m.first)
	pb, okB := ecs.GetComponent[*components.PositionComponent](m.em, m.second)
	if !okA || !okB {
		return config.PlayArea.Center()
	}
	return (pa.X + pb.X) / 2, (pa.Y+pb.Y)/2 - config.CardHeight/2
}

// OnTick 第二关不关心整秒
func (m *MatchMechanic) OnTick(s *game.Session, remaining int) {}

// OnFrame 第二关没有逐帧逻辑
func (m *MatchMechanic) OnFrame(s *game.Session, dt float64) {}

// Cards 按网格位置排列的卡片实体
func (m *MatchMechanic) Cards() []ecs.EntityID {
	return append([]ecs.EntityID(nil), m.cards...)
}

// PairsFound 已找到的对数
func (m *MatchMechanic) PairsFound() int { return m.pairsFound }

// Locked 是否处于判定中
func (m *MatchMechanic) Locked() bool { return m.locked }

// Progress HUD 进度文字
func (m *MatchMechanic) Progress() string {
	return fmt.Sprintf("Pairs: %d/%d", m.pairsFound, m.params.Pairs)
}

// DescribeRules 规则说明
func (m *MatchMechanic) DescribeRules() []string {
	return []string{
		"Click two dolls to reveal their colors.",
		"Dolls of the same color stay open and earn points.",
		"A wrong pair costs points and flips back.",
		"Find all pairs before time runs out.",
	}
}

// Stats 结果统计
func (m *MatchMechanic) Stats(s *game.Session) []game.StatLine {
	accuracy := 0
	if m.attempts > 0 {
		accuracy = game.RoundHalfUp(float64(m.pairsFound) / float64(m.attempts) * 100)
	}
	return []game.StatLine{
		{Label: "Pairs found", Value: fmt.Sprintf("%d/%d", m.pairsFound, m.params.Pairs)},
		{Label: "Attempts", Value: fmt.Sprintf("%d", m.attempts)},
		{Label: "Accuracy", Value: fmt.Sprintf("%d%%", accuracy)},
	}
}
