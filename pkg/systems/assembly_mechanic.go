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

// removalPenaltyRatio 从组装区取回套娃时扣除的基础分比例
const removalPenaltyRatio = 0.3

// DropZone 拖放落点分类
type DropZone int

const (
	DropNone DropZone = iota
	DropPlay
	DropAssembly
)

// String 返回落点名称
func (z DropZone) String() string {
	switch z {
	case DropPlay:
		return "play"
	case DropAssembly:
		return "assembly"
	}
	return "none"
}

// ClassifyDrop 按包围盒判断落点：先漂浮区，再组装区，边界上不算
func ClassifyDrop(x, y float64) DropZone {
	switch {
	case config.AssemblyPlayZone.ContainsStrict(x, y):
		return DropPlay
	case config.AssemblyZone.ContainsStrict(x, y):
		return DropAssembly
	}
	return DropNone
}

// ChildSizes 第 i 个子套娃尺寸为 round(200 - step*(i+1))，step = (200-minSize)/count
// 返回值严格递减
func ChildSizes(count int, minSize float64) []float64 {
	if count <= 0 {
		return nil
	}
	step := (config.AssemblyLargestChildSize - minSize) / float64(count)
	sizes := make([]float64, count)
	for i := range sizes {
		sizes[i] = math.Round(config.AssemblyLargestChildSize - step*float64(i+1))
	}
	return sizes
}

// CanPlaceInAssembly 组装顺序为空（直接放进母体）或尺寸严格小于最后放入的套娃时才允许放入
func CanPlaceInAssembly(orderingSizes []float64, size, motherSize float64) bool {
	if len(orderingSizes) == 0 {
		return size < motherSize
	}
	return size < orderingSizes[len(orderingSizes)-1]
}

// pieceDrag 当前拖拽
type pieceDrag struct {
	piece            ecs.EntityID
	offsetX, offsetY float64
	originX, originY float64
	fromAssembly     bool
}

// AssemblyMechanic 第四关：把漂浮的套娃按从大到小的顺序拖进母体
//
// 组装顺序（不含母体）中的尺寸始终严格递减，每次插入前检查，移除只会从末尾进行。
// 拖动组装区中非顶层的套娃会被改为拖动顶层套娃。
type AssemblyMechanic struct {
	em     *ecs.EntityManager
	rng    *rand.Rand
	params config.AssemblyParams

	mother   ecs.EntityID
	pieces   []ecs.EntityID // 子套娃，按创建顺序
	ordering []ecs.EntityID
	drag     *pieceDrag
	speed    float64

	placed   int
	removed  int
	rejected int
}

// NewAssemblyMechanic 创建第四关玩法
func NewAssemblyMechanic(em *ecs.EntityManager, rng *rand.Rand) *AssemblyMechanic {
	return &AssemblyMechanic{em: em, rng: newRand(rng)}
}

// Level 关卡标识
func (m *AssemblyMechanic) Level() config.LevelID { return config.LevelAssembly }

// Setup 生成母体和打乱顺序的子套娃
func (m *AssemblyMechanic) Setup(s *game.Session) {
	clearEntitiesWith[*components.PieceComponent](m.em)

	m.params = *s.Profile().Assembly
	m.ordering = m.ordering[:0]
	m.pieces = m.pieces[:0]
	m.drag = nil
	m.placed, m.removed, m.rejected = 0, 0, 0
	m.speed = FloatSpeed(m.params.SpeedMultiplier)

	ax, ay := config.AssemblyZone.Center()
	m.mother = m.em.CreateEntity()
	ecs.AddComponent(m.em, m.mother, &components.PositionComponent{X: ax, Y: ay})
	ecs.AddComponent(m.em, m.mother, &components.PieceComponent{
		Color:    config.ReservedColor,
		Size:     config.AssemblyMotherSize,
		IsMother: true,
	})

	sizes := ChildSizes(m.params.DollCount, m.params.MinSize)
	m.rng.Shuffle(len(sizes), func(i, j int) { sizes[i], sizes[j] = sizes[j], sizes[i] })
	colors := shuffledColors(m.rng)

	for i, size := range sizes {
		bounds := FloatBounds(config.AssemblyPlayZone, size)
		id := m.em.CreateEntity()
		ecs.AddComponent(m.em, id, &components.PositionComponent{
			X: bounds.X + m.rng.Float64()*bounds.W,
			Y: bounds.Y + m.rng.Float64()*bounds.H,
		})
		vel := RandomVelocity(m.rng, m.speed)
		ecs.AddComponent(m.em, id, &vel)
		ecs.AddComponent(m.em, id, &components.PieceComponent{
			Color: colors[i%len(colors)],
			Size:  size,
		})
		m.pieces = append(m.pieces, id)
	}
	log.Printf("[AssemblyMechanic] Setup: %d pieces, sizes %v, speed %.0fpx/s", len(sizes), sizes, m.speed)
}

// OnStart 无需额外处理
func (m *AssemblyMechanic) OnStart(s *game.Session) {}

// OnTick 第四关不关心整秒
func (m *AssemblyMechanic) OnTick(s *game.Session, remaining int) {}

// OnFrame 推进所有漂浮中的套娃（被拖拽的除外）
func (m *AssemblyMechanic) OnFrame(s *game.Session, dt float64) {
	for _, id := range m.pieces {
		if m.drag != nil && m.drag.piece == id {
			continue
		}
		piece, pos, vel := m.floatParts(id)
		if piece == nil || piece.IsInMother {
			continue
		}
		*pos, *vel, _ = StepFloat(*pos, *vel, FloatBounds(config.AssemblyPlayZone, piece.Size), dt, m.rng)
	}
}

func (m *AssemblyMechanic) floatParts(id ecs.EntityID) (*components.PieceComponent, *components.PositionComponent, *components.VelocityComponent) {
	piece, ok := ecs.GetComponent[*components.PieceComponent](m.em, id)
	if !ok {
		return nil, nil, nil
	}
	pos, ok := ecs.GetComponent[*components.PositionComponent](m.em, id)
	if !ok {
		return nil, nil, nil
	}
	vel, ok := ecs.GetComponent[*components.VelocityComponent](m.em, id)
	if !ok {
		return nil, nil, nil
	}
	return piece, pos, vel
}

// OnInput 拖放协议：按下选中、移动跟随、松开按落点处理
func (m *AssemblyMechanic) OnInput(s *game.Session, ev game.InputEvent) {
	switch ev.Kind {
	case game.PointerDown:
		m.beginDrag(s, ev.X, ev.Y)
	case game.PointerMove:
		if m.drag == nil {
			return
		}
		if pos, ok := ecs.GetComponent[*components.PositionComponent](m.em, m.drag.piece); ok {
			pos.X = ev.X + m.drag.offsetX
			pos.Y = ev.Y + m.drag.offsetY
		}
	case game.PointerUp:
		if m.drag == nil {
			return
		}
		drag := m.drag
		m.drag = nil
		m.drop(s, drag, ev.X, ev.Y)
	}
}

// OnPause 取消进行中的拖动，套娃回到按下前的位置
// 暂停期间的松开事件不会送达
func (m *AssemblyMechanic) OnPause(s *game.Session) {
	if m.drag == nil {
		return
	}
	log.Printf("[AssemblyMechanic] Drag of piece %d cancelled by pause", m.drag.piece)
	m.restore(m.drag)
	m.drag = nil
}

// PieceAt 返回 (x, y) 处可拖动的套娃
// 组装区中的任何子套娃都会被替换为顶层套娃；母体不可拖动
func (m *AssemblyMechanic) PieceAt(x, y float64) ecs.EntityID {
	for i := len(m.pieces) - 1; i >= 0; i-- {
		id := m.pieces[i]
		piece, ok := ecs.GetComponent[*components.PieceComponent](m.em, id)
		if !ok || piece.IsInMother {
			continue
		}
		if m.pieceRect(id, piece.Size).Contains(x, y) {
			return id
		}
	}
	for _, id := range m.ordering {
		piece, ok := ecs.GetComponent[*components.PieceComponent](m.em, id)
		if ok && m.pieceRect(id, piece.Size).Contains(x, y) {
			return m.ordering[len(m.ordering)-1]
		}
	}
	return 0
}

func (m *AssemblyMechanic) pieceRect(id ecs.EntityID, size float64) config.Rect {
	pos, ok := ecs.GetComponent[*components.PositionComponent](m.em, id)
	if !ok {
		return config.Rect{}
	}
	w, h := config.PieceExtent(size)
	return config.Rect{X: pos.X - w/2, Y: pos.Y - h/2, W: w, H: h}
}

func (m *AssemblyMechanic) beginDrag(s *game.Session, x, y float64) {
	if m.drag != nil {
		return
	}
	id := m.PieceAt(x, y)
	if id == 0 {
		return
	}
	piece, _ := ecs.GetComponent[*components.PieceComponent](m.em, id)
	pos, ok := ecs.GetComponent[*components.PositionComponent](m.em, id)
	if !ok {
		return
	}
	m.drag = &pieceDrag{
		piece:        id,
		offsetX:      pos.X - x,
		offsetY:      pos.Y - y,
		originX:      pos.X,
		originY:      pos.Y,
		fromAssembly: piece.IsInMother,
	}
	s.Cue(game.CueClick)
}

// drop 按落点处理一次拖放
func (m *AssemblyMechanic) drop(s *game.Session, drag *pieceDrag, x, y float64) {
	piece, ok := ecs.GetComponent[*components.PieceComponent](m.em, drag.piece)
	if !ok {
		return
	}
	zone := ClassifyDrop(x, y)

	switch {
	case zone == DropAssembly && !piece.IsInMother:
		if m.place(s, drag.piece, piece) {
			return
		}
		m.rejected++
		s.Cue(game.CueError)
		log.Printf("[AssemblyMechanic] Rejected piece of size %.0f (ordering %v)", piece.Size, m.OrderingSizes())
		m.restore(drag)
	case zone == DropPlay && piece.IsInMother:
		m.removeTop(s, x, y)
	case zone == DropPlay:
		m.release(drag.piece, piece.Size, x, y)
	default:
		m.restore(drag)
	}
}

// place 放入组装区；违反尺寸顺序时返回 false 且不做任何修改
func (m *AssemblyMechanic) place(s *game.Session, id ecs.EntityID, piece *components.PieceComponent) bool {
	if !CanPlaceInAssembly(m.OrderingSizes(), piece.Size, config.AssemblyMotherSize) {
		return false
	}

	previous := m.mother
	if n := len(m.ordering); n > 0 {
		previous = m.ordering[n-1]
	}
	if prev, ok := ecs.GetComponent[*components.PieceComponent](m.em, previous); ok {
		prev.IsOpen = true
	}

	m.ordering = append(m.ordering, id)
	piece.IsInMother = true
	piece.IsOpen = false
	ax, ay := config.AssemblyZone.Center()
	if pos, ok := ecs.GetComponent[*components.PositionComponent](m.em, id); ok {
		pos.X, pos.Y = ax, ay
	}
	m.placed++

	limit := s.Profile().TimeLimit
	timeBonus := 0
	if limit > 0 {
		timeBonus = int(math.Floor(float64(s.TimeRemaining()) / float64(limit) * m.params.TimeBonusMultiplier * 100))
	}
	points := s.AddPoints(game.ScaleFloor(m.params.BasePoints+timeBonus, s.Profile().ScoreMultiplier))
	_, h := config.PieceExtent(config.AssemblyMotherSize)
	s.Popup(ax, ay-h/2, points)
	s.Cue(game.CueSuccess)
	log.Printf("[AssemblyMechanic] Placed size %.0f (%d/%d, +%d)", piece.Size, len(m.ordering), m.params.DollCount, points)

	if len(m.ordering) >= m.params.DollCount {
		s.End(true)
	}
	return true
}

// removeTop 把顶层套娃取回漂浮区并扣分
func (m *AssemblyMechanic) removeTop(s *game.Session, x, y float64) {
	n := len(m.ordering)
	if n == 0 {
		return
	}
	id := m.ordering[n-1]
	m.ordering = m.ordering[:n-1]

	newTop := m.mother
	if len(m.ordering) > 0 {
		newTop = m.ordering[len(m.ordering)-1]
	}
	if top, ok := ecs.GetComponent[*components.PieceComponent](m.em, newTop); ok {
		top.IsOpen = false
	}

	piece, ok := ecs.GetComponent[*components.PieceComponent](m.em, id)
	if !ok {
		return
	}
	piece.IsInMother = false
	piece.IsOpen = false
	m.release(id, piece.Size, x, y)
	m.removed++

	penalty := game.ScaleFloor(int(math.Floor(float64(m.params.BasePoints)*removalPenaltyRatio)), s.Profile().ScoreMultiplier)
	taken := s.Penalize(penalty)
	s.Popup(x, y, -taken)
	s.Cue(game.CueError)
	log.Printf("[AssemblyMechanic] Removed size %.0f from the assembly (-%d)", piece.Size, taken)
}

// release 把套娃放到漂浮区的落点并重新随机方向
func (m *AssemblyMechanic) release(id ecs.EntityID, size, x, y float64) {
	if pos, ok := ecs.GetComponent[*components.PositionComponent](m.em, id); ok {
		pos.X, pos.Y = ClampToBounds(x, y, FloatBounds(config.AssemblyPlayZone, size))
	}
	if vel, ok := ecs.GetComponent[*components.VelocityComponent](m.em, id); ok {
		*vel = RandomVelocity(m.rng, m.speed)
	}
}

// restore 取消拖拽，套娃回到原位和原状态
func (m *AssemblyMechanic) restore(drag *pieceDrag) {
	if pos, ok := ecs.GetComponent[*components.PositionComponent](m.em, drag.piece); ok {
		pos.X, pos.Y = drag.originX, drag.originY
	}
}

// Ordering 组装顺序（不含母体）
func (m *AssemblyMechanic) Ordering() []ecs.EntityID {
	return append([]ecs.EntityID(nil), m.ordering...)
}

// OrderingSizes 组装顺序中各套娃的尺寸
func (m *AssemblyMechanic) OrderingSizes() []float64 {
	sizes := make([]float64, 0, len(m.ordering))
	for _, id := range m.ordering {
		if piece, ok := ecs.GetComponent[*components.PieceComponent](m.em, id); ok {
			sizes = append(sizes, piece.Size)
		}
	}
	return sizes
}

// Pieces 子套娃实体
func (m *AssemblyMechanic) Pieces() []ecs.EntityID {
	return append([]ecs.EntityID(nil), m.pieces...)
}

// Mother 母体实体
func (m *AssemblyMechanic) Mother() ecs.EntityID { return m.mother }

// Dragging 正在拖动的套娃，没有时为 0
func (m *AssemblyMechanic) Dragging() ecs.EntityID {
	if m.drag == nil {
		return 0
	}
	return m.drag.piece
}

// Progress HUD 进度文字
func (m *AssemblyMechanic) Progress() string {
	return fmt.Sprintf("Assembled: %d/%d", len(m.ordering), m.params.DollCount)
}

// DescribeRules 规则说明
func (m *AssemblyMechanic) DescribeRules() []string {
	return []string{
		"Drag the floating dolls into the big black doll.",
		"Each doll must be smaller than the last one you placed.",
		"Drag the top doll back out to fix a mistake, but it costs points.",
		"Assemble every doll before time runs out.",
	}
}

// Stats 结果统计
func (m *AssemblyMechanic) Stats(s *game.Session) []game.StatLine {
	return []game.StatLine{
		{Label: "Assembled", Value: fmt.Sprintf("%d/%d", len(m.ordering), m.params.DollCount)},
		{Label: "Wrong drops", Value: fmt.Sprintf("%d", m.rejected)},
		{Label: "Taken back", Value: fmt.Sprintf("%d", m.removed)},
	}
}
