package components

import "image/color"

// ScorePopupComponent 得分飘字
// 位置来自同一实体的 PositionComponent，存在时间由 LifetimeComponent 控制
type ScorePopupComponent struct {
	Text      string
	Color     color.RGBA
	RiseSpeed float64 // 像素/秒，向上
}
