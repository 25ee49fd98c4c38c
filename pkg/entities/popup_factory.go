package entities

import (
	"fmt"
	"image/color"

	"github.com/decker502/matreshka/pkg/components"
	"github.com/decker502/matreshka/pkg/ecs"
)

// 得分飘字参数
const (
	PopupLifetime  = 1.0  // 秒
	PopupRiseSpeed = 48.0 // 像素/秒
)

var (
	popupGainColor = color.RGBA{R: 46, G: 204, B: 113, A: 255}
	popupLossColor = color.RGBA{R: 231, G: 76, B: 60, A: 255}
)

// NewScorePopupEntity 在 (x, y) 创建一个上升并消失的得分飘字
// delta 为 0 时不创建实体
func NewScorePopupEntity(em *ecs.EntityManager, x, y float64, delta int) (ecs.EntityID, error) {
	if em == nil {
		return 0, fmt.Errorf("entity manager cannot be nil")
	}
	if delta == 0 {
		return 0, nil
	}

	label := fmt.Sprintf("+%d", delta)
	clr := popupGainColor
	if delta < 0 {
		label = fmt.Sprintf("%d", delta)
		clr = popupLossColor
	}

	entity := em.CreateEntity()
	ecs.AddComponent(em, entity, &components.PositionComponent{X: x, Y: y})
	ecs.AddComponent(em, entity, &components.ScorePopupComponent{
		Text:      label,
		Color:     clr,
		RiseSpeed: PopupRiseSpeed,
	})
	ecs.AddComponent(em, entity, &components.LifetimeComponent{MaxLifetime: PopupLifetime})
	return entity, nil
}
