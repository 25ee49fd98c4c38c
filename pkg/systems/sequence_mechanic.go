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

// 第三关时间和计分常量
const (
	sequenceCheckDelay    = 0.5 // 翻开后等待判定
	sequenceUnlockDelay   = 0.3 // 判定后恢复点击
	sequenceResetDelay    = 0.5 // 出错后全部翻回
	sequenceMaxTimeBonus  = 30
	sequenceComboPerLevel = 5
	sequencePenalty       = 20
)

// SequenceMechanic 第三关：按单词字母顺序翻开套娃
//
// 游标指向下一个应翻开的字母。任何错误都会在延迟后把所有卡片翻回并把游标归零。
type SequenceMechanic struct {
	em     *ecs.EntityManager
	rng    *rand.Rand
	params config.SequenceParams

	word       string
	cards      []ecs.EntityID
	cursor     int
	canClick   bool
	previewing bool
	mistakes   int

	// word 固定时跳过随机选词（测试用）
	fixedWord string
}

// NewSequenceMechanic 创建第三关玩法
func NewSequenceMechanic(em *ecs.EntityManager, rng *rand.Rand) *SequenceMechanic {
	return &SequenceMechanic{em: em, rng: newRand(rng)}
}

// Level 关卡标识
func (m *SequenceMechanic) Level() config.LevelID { return config.LevelSequence }

// ManualCountdown 预览结束后才开始倒计时
func (m *SequenceMechanic) ManualCountdown() bool { return true }

// Setup 选词，每个字母一张卡片，卡片顺序和颜色都随机
func (m *SequenceMechanic) Setup(s *game.Session) {
	clearEntitiesWith[*components.CardComponent](m.em)

	m.params = *s.Profile().Sequence
	m.cursor = 0
	m.canClick = false
	m.previewing = false
	m.mistakes = 0

	m.word = m.fixedWord
	if m.word == "" {
		m.word = m.params.Words[m.rng.Intn(len(m.params.Words))]
	}

	letters := []rune(m.word)
	m.rng.Shuffle(len(letters), func(i, j int) { letters[i], letters[j] = letters[j], letters[i] })
	colors := shuffledColors(m.rng)

	cols := len(letters)
	rows := 1
	if cols > 5 {
		cols = (len(letters) + 1) / 2
		rows = 2
	}
	positions := LayoutGrid(config.PlayArea, len(letters), cols, rows)

	m.cards = m.cards[:0]
	for i, r := range letters {
		id := m.em.CreateEntity()
		pos := positions[i]
		ecs.AddComponent(m.em, id, &pos)
		ecs.AddComponent(m.em, id, &components.CardComponent{
			Index: i,
			Value: string(r),
			Color: colors[i%len(colors)],
		})
		m.cards = append(m.cards, id)
	}
	log.Printf("[SequenceMechanic] Setup: word %q with %d cards", m.word, len(m.cards))
}

// OnStart 展示单词一段时间，然后开始倒计时并允许点击
func (m *SequenceMechanic) OnStart(s *game.Session) {
	m.previewing = true
	m.canClick = false
	s.After(m.params.PreviewSeconds, func() {
		m.previewing = false
		m.canClick = true
		s.StartCountdown()
		log.Printf("[SequenceMechanic] Preview finished, input enabled")
	})
}

// OnInput 点击翻开卡片
func (m *SequenceMechanic) OnInput(s *game.Session, ev game.InputEvent) {
	if ev.Kind != game.PointerDown {
		return
	}
	if id := cardAt(m.em, ev.X, ev.Y); id != 0 {
		m.reveal(s, id)
	}
}

func (m *SequenceMechanic) reveal(s *game.Session, id ecs.EntityID) {
	if !m.canClick {
		return
	}
	card, ok := ecs.GetComponent[*components.CardComponent](m.em, id)
	if !ok || card.Revealed {
		return
	}
	card.Revealed = true
	m.canClick = false
	s.Cue(game.CueClick)
	s.After(sequenceCheckDelay, func() { m.check(s, id) })
}

// check 判定翻开的字母是否为下一个期望字母
func (m *SequenceMechanic) check(s *game.Session, id ecs.EntityID) {
	card, ok := ecs.GetComponent[*components.CardComponent](m.em, id)
	if !ok {
		m.canClick = true
		return
	}
	x, y := m.popupPoint(id)
	expected := string([]rune(m.word)[m.cursor])

	if card.Value == expected {
		m.cursor++
		points := s.Award(m.params.BasePoints, s.TimeBonus(sequenceMaxTimeBonus))
		points += s.AddPoints(m.cursor * sequenceComboPerLevel)
		s.Popup(x, y, points)
		s.Cue(game.CueSuccess)
		log.Printf("[SequenceMechanic] Letter %s correct (%d/%d, +%d)", card.Value, m.cursor, len([]rune(m.word)), points)

		if m.cursor >= len([]rune(m.word)) {
			s.End(true)
			return
		}
		s.After(sequenceUnlockDelay, func() { m.canClick = true })
		return
	}

	m.mistakes++
	taken := s.Penalize(sequencePenalty)
	s.Popup(x, y, -taken)
	s.Cue(game.CueError)
	log.Printf("[SequenceMechanic] Letter %s wrong, expected %s (-%d)", card.Value, expected, taken)

	s.After(sequenceResetDelay, func() {
		m.hideAll()
		m.cursor = 0
		s.After(sequenceUnlockDelay, func() { m.canClick = true })
	})
}

func (m *SequenceMechanic) hideAll() {
	for _, id := range m.cards {
		if card, ok := ecs.GetComponent[*components.CardComponent](m.em, id); ok {
			card.Revealed = false
		}
	}
}

func (m *SequenceMechanic) popupPoint(id ecs.EntityID) (float64, float64) {
	if pos, ok := ecs.GetComponent[*components.PositionComponent](m.em, id); ok {
		return pos.X, pos.Y - config.CardHeight/2
	}
	return config.PlayArea.Center()
}

// OnTick 第三关不关心整秒
func (m *SequenceMechanic) OnTick(s *game.Session, remaining int) {}

// OnFrame 第三关没有逐帧逻辑
func (m *SequenceMechanic) OnFrame(s *game.Session, dt float64) {}

// Word 目标单词，整局都显示在信息栏
func (m *SequenceMechanic) Word() string { return m.word }

// Cursor 已正确翻开的字母数
func (m *SequenceMechanic) Cursor() int { return m.cursor }

// CanClick 当前是否接受点击
func (m *SequenceMechanic) CanClick() bool { return m.canClick }

// Previewing 是否处于开局预览
func (m *SequenceMechanic) Previewing() bool { return m.previewing }

// Cards 卡片实体（屏幕顺序）
func (m *SequenceMechanic) Cards() []ecs.EntityID {
	return append([]ecs.EntityID(nil), m.cards...)
}

// Progress HUD 进度文字
func (m *SequenceMechanic) Progress() string {
	if m.previewing {
		return fmt.Sprintf("Remember: %s", m.word)
	}
	return fmt.Sprintf("Word: %s  %d/%d", m.word, m.cursor, len([]rune(m.word)))
}

// DescribeRules 规则说明
func (m *SequenceMechanic) DescribeRules() []string {
	return []string{
		"Remember the word shown at the top.",
		"Open the dolls in the order of the word's letters.",
		"Each correct letter earns more than the previous one.",
		"A mistake closes every doll and you start over.",
	}
}

// Stats 结果统计
func (m *SequenceMechanic) Stats(s *game.Session) []game.StatLine {
	return []game.StatLine{
		{Label: "Word", Value: m.word},
		{Label: "Letters", Value: fmt.Sprintf("%d/%d", m.cursor, len([]rune(m.word)))},
		{Label: "Mistakes", Value: fmt.Sprintf("%d", m.mistakes)},
	}
}
