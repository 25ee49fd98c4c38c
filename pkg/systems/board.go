package systems

import (
	"math/rand"

	"github.com/decker502/matreshka/pkg/components"
	"github.com/decker502/matreshka/pkg/config"
	"github.com/decker502/matreshka/pkg/ecs"
)

// clearEntitiesWith 立即删除所有拥有 T 组件的实体
// 其他实体（对话框、飘字）不受影响
func clearEntitiesWith[T any](em *ecs.EntityManager) {
	ids := ecs.GetEntitiesWith1[T](em)
	if len(ids) == 0 {
		return
	}
	for _, id := range ids {
		em.DestroyEntity(id)
	}
	em.RemoveMarkedEntities()
}

// newRand 为玩法创建随机源，rng 为 nil 时使用时间种子
func newRand(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewSource(rand.Int63()))
}

// LayoutGrid 计算 cols×rows 卡片网格在 area 中居中后的各卡片中心
// 返回值按行优先排列，只返回前 count 个位置
func LayoutGrid(area config.Rect, count, cols, rows int) []components.PositionComponent {
	if cols <= 0 {
		cols = count
	}
	if rows <= 0 {
		rows = (count + cols - 1) / cols
	}
	gridW := float64(cols)*config.CardWidth + float64(cols-1)*config.CardSpacing
	gridH := float64(rows)*config.CardHeight + float64(rows-1)*config.CardSpacing
	cx, cy := area.Center()
	left := cx - gridW/2
	top := cy - gridH/2

	out := make([]components.PositionComponent, 0, count)
	for i := 0; i < count; i++ {
		col, row := i%cols, i/cols
		out = append(out, components.PositionComponent{
			X: left + float64(col)*(config.CardWidth+config.CardSpacing) + config.CardWidth/2,
			Y: top + float64(row)*(config.CardHeight+config.CardSpacing) + config.CardHeight/2,
		})
	}
	return out
}

// cardAt 返回包含 (x, y) 的卡片，没有则返回 0
func cardAt(em *ecs.EntityManager, x, y float64) ecs.EntityID {
	for _, id := range ecs.GetEntitiesWith2[*components.CardComponent, *components.PositionComponent](em) {
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		if cardRect(pos).Contains(x, y) {
			return id
		}
	}
	return 0
}

// cardRect 卡片的屏幕矩形
func cardRect(pos *components.PositionComponent) config.Rect {
	return config.Rect{
		X: pos.X - config.CardWidth/2,
		Y: pos.Y - config.CardHeight/2,
		W: config.CardWidth,
		H: config.CardHeight,
	}
}

// shuffledColors 打乱后的可用颜色
func shuffledColors(rng *rand.Rand) []config.DollColor {
	colors := config.PlayableColors()
	rng.Shuffle(len(colors), func(i, j int) { colors[i], colors[j] = colors[j], colors[i] })
	return colors
}
