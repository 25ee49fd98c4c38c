package systems

import (
	"fmt"
	"log"
	"math"
	"math/rand"

	"github.com/decker502/matreshka/pkg/components"
	"github.com/decker502/matreshka/pkg/config"
	"github.com/decker502/matreshka/pkg/ecs"
	"github.com/decker502/matreshka/pkg/game"
)

// growthBasePoints 每放下一个套娃的基础分（精度奖励另加）
const growthBasePoints = 100

// growthMaxTimeBonus 每放下一个套娃的剩余时间奖励上限
const growthMaxTimeBonus = 30

// growthSpawnRatio 新套娃的初始尺寸相对上一个的比例（还要乘 sizeFactor）
const growthSpawnRatio = 0.4

// GrowthMechanic 第一关：按住放大套娃，在碰到上一个套娃轮廓之前松开
//
// 套娃栈的第一个元素是根据游戏区域计算出的黑色外框，
// 之后每放下一个套娃就把它的缩放压入栈顶。
type GrowthMechanic struct {
	em     *ecs.EntityManager
	rng    *rand.Rand
	params config.GrowthParams

	stack     []float64 // 已放下的缩放，stack[0] 为外框
	current   ecs.EntityID
	growing   bool
	collected int
	accuracy  float64 // 精度累计，用于结果统计
	lastColor config.DollColor
}

// NewGrowthMechanic 创建第一关玩法
// rng 可为 nil
func NewGrowthMechanic(em *ecs.EntityManager, rng *rand.Rand) *GrowthMechanic {
	return &GrowthMechanic{em: em, rng: newRand(rng)}
}

// BoundaryScale 外框缩放：min(宽, 高) / 参考尺寸 * sizeFactor
func BoundaryScale(area config.Rect, sizeFactor float64) float64 {
	return math.Min(area.W, area.H) / config.GrowthReferenceSize * sizeFactor
}

// GrowthAccuracy 计算放下时的精度
// 目标尺寸为 previous*sizeFactor，结果在 [0, 1]
func GrowthAccuracy(scale, previous, sizeFactor float64) float64 {
	target := previous * sizeFactor
	if target <= 0 {
		return 0
	}
	return math.Max(0, 1-math.Abs(scale-target)/target)
}

// Level 关卡标识
func (m *GrowthMechanic) Level() config.LevelID { return config.LevelGrowth }

// Setup 生成外框和第一个待放大的套娃
func (m *GrowthMechanic) Setup(s *game.Session) {
	clearEntitiesWith[*components.GrowthDollComponent](m.em)

	m.params = *s.Profile().Growth
	m.stack = m.stack[:0]
	m.current = 0
	m.growing = false
	m.collected = 0
	m.accuracy = 0
	m.lastColor = config.ReservedColor

	boundary := BoundaryScale(config.PlayArea, m.params.SizeFactor)
	m.createDoll(config.ReservedColor, boundary, true)
	m.stack = append(m.stack, boundary)
	m.spawn()

	log.Printf("[GrowthMechanic] Setup: boundary=%.3f target=%d rate=%.2f", boundary, m.params.TargetDolls, m.params.GrowRate)
}

// OnStart 无需额外处理，玩家按下即开始放大
func (m *GrowthMechanic) OnStart(s *game.Session) {}

// OnInput 按下开始放大，松开放下套娃
func (m *GrowthMechanic) OnInput(s *game.Session, ev game.InputEvent) {
	switch ev.Kind {
	case game.PointerDown:
		if m.growing || m.current == 0 || !config.PlayArea.Contains(ev.X, ev.Y) {
			return
		}
		m.growing = true
	case game.PointerUp:
		if !m.growing {
			return
		}
		m.growing = false
		m.release(s)
	}
}

// OnPause 暂停时停止放大，恢复后需要重新按下
func (m *GrowthMechanic) OnPause(s *game.Session) {
	m.growing = false
}

// OnTick 第一关不关心整秒
func (m *GrowthMechanic) OnTick(s *game.Session, remaining int) {}

// OnFrame 按帧间隔放大当前套娃
func (m *GrowthMechanic) OnFrame(s *game.Session, dt float64) {
	if !m.growing {
		return
	}
	doll := m.currentDoll()
	if doll == nil {
		return
	}
	doll.Scale += m.params.GrowRate * dt
	if doll.Scale >= m.previous() {
		log.Printf("[GrowthMechanic] Doll touched the outline while growing (%.3f >= %.3f)", doll.Scale, m.previous())
		m.growing = false
		s.Cue(game.CueError)
		s.End(false)
	}
}

// release 松开时判定：碰到轮廓失败，否则放下并计分
func (m *GrowthMechanic) release(s *game.Session) {
	doll := m.currentDoll()
	if doll == nil {
		return
	}
	previous := m.previous()
	if doll.Scale >= previous {
		log.Printf("[GrowthMechanic] Released on the outline (%.3f >= %.3f)", doll.Scale, previous)
		s.Cue(game.CueError)
		s.End(false)
		return
	}

	acc := GrowthAccuracy(doll.Scale, previous, m.params.SizeFactor)
	points := s.Award(growthBasePoints+game.AccuracyBonus(acc), s.TimeBonus(growthMaxTimeBonus))
	doll.Settled = true
	m.stack = append(m.stack, doll.Scale)
	m.collected++
	m.accuracy += acc
	m.current = 0

	cx, cy := config.PlayArea.Center()
	s.Popup(cx, cy-doll.Scale*config.GrowthBaseSize/2, points)
	s.Cue(game.CueSuccess)
	log.Printf("[GrowthMechanic] Settled doll %d/%d at %.3f (accuracy %.2f, +%d)",
		m.collected, m.params.TargetDolls, doll.Scale, acc, points)

	if m.collected >= m.params.TargetDolls {
		s.End(true)
		return
	}
	m.spawn()
}

// spawn 生成下一个待放大的套娃，颜色与上一个不同
func (m *GrowthMechanic) spawn() {
	color := config.RandomColorExcept(m.rng, m.lastColor)
	m.lastColor = color
	m.current = m.createDoll(color, m.previous()*growthSpawnRatio*m.params.SizeFactor, false)
}

func (m *GrowthMechanic) createDoll(color config.DollColor, scale float64, boundary bool) ecs.EntityID {
	cx, cy := config.PlayArea.Center()
	id := m.em.CreateEntity()
	ecs.AddComponent(m.em, id, &components.PositionComponent{X: cx, Y: cy})
	ecs.AddComponent(m.em, id, &components.GrowthDollComponent{
		Color:      color,
		Scale:      scale,
		IsBoundary: boundary,
		Settled:    boundary,
	})
	return id
}

func (m *GrowthMechanic) currentDoll() *components.GrowthDollComponent {
	if m.current == 0 {
		return nil
	}
	doll, ok := ecs.GetComponent[*components.GrowthDollComponent](m.em, m.current)
	if !ok {
		return nil
	}
	return doll
}

func (m *GrowthMechanic) previous() float64 {
	return m.stack[len(m.stack)-1]
}

// Stack 已放下的缩放（含外框）
func (m *GrowthMechanic) Stack() []float64 {
	return append([]float64(nil), m.stack...)
}

// CurrentScale 当前套娃的缩放，没有时为 0
func (m *GrowthMechanic) CurrentScale() float64 {
	if doll := m.currentDoll(); doll != nil {
		return doll.Scale
	}
	return 0
}

// IsGrowing 是否正在放大
func (m *GrowthMechanic) IsGrowing() bool { return m.growing }

// Collected 已收集的套娃数量
func (m *GrowthMechanic) Collected() int { return m.collected }

// Progress HUD 显示的进度文字
func (m *GrowthMechanic) Progress() string {
	return fmt.Sprintf("Dolls: %d/%d", m.collected, m.params.TargetDolls)
}

// DescribeRules 规则说明
func (m *GrowthMechanic) DescribeRules() []string {
	return []string{
		"Press and hold to grow the doll.",
		"Release before it touches the outline of the previous doll.",
		"The closer to the ideal size, the more points you get.",
		"Collect the target number of dolls before time runs out.",
	}
}

// Stats 结果统计
func (m *GrowthMechanic) Stats(s *game.Session) []game.StatLine {
	avg := 0.0
	if m.collected > 0 {
		avg = m.accuracy / float64(m.collected)
	}
	return []game.StatLine{
		{Label: "Dolls collected", Value: fmt.Sprintf("%d/%d", m.collected, m.params.TargetDolls)},
		{Label: "Average accuracy", Value: fmt.Sprintf("%d%%", game.RoundHalfUp(avg*100))},
	}
}
