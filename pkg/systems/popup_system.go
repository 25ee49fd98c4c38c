package systems

import (
	"github.com/decker502/matreshka/pkg/components"
	"github.com/decker502/matreshka/pkg/ecs"
	"github.com/decker502/matreshka/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// PopupSystem 得分飘字：向上移动并逐渐淡出
// 删除由 LifetimeSystem 负责
type PopupSystem struct {
	entityManager *ecs.EntityManager
}

// NewPopupSystem 创建飘字系统
func NewPopupSystem(em *ecs.EntityManager) *PopupSystem {
	return &PopupSystem{entityManager: em}
}

// Update 移动所有飘字，上升速度随存在时间减慢
func (s *PopupSystem) Update(deltaTime float64) {
	ids := ecs.GetEntitiesWith2[*components.ScorePopupComponent, *components.PositionComponent](s.entityManager)
	for _, id := range ids {
		popup, _ := ecs.GetComponent[*components.ScorePopupComponent](s.entityManager, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)
		speed := popup.RiseSpeed
		if life, ok := ecs.GetComponent[*components.LifetimeComponent](s.entityManager, id); ok && life.MaxLifetime > 0 {
			speed = utils.Lerp(popup.RiseSpeed, 0, utils.EaseOutCubic(life.CurrentLifetime/life.MaxLifetime))
		}
		pos.Y -= speed * deltaTime
	}
}

// Alpha 返回飘字当前的不透明度（0-1），后半段开始淡出
func (s *PopupSystem) Alpha(id ecs.EntityID) float64 {
	life, ok := ecs.GetComponent[*components.LifetimeComponent](s.entityManager, id)
	if !ok || life.MaxLifetime <= 0 {
		return 1
	}
	t := utils.Clamp01(life.CurrentLifetime / life.MaxLifetime)
	if t < 0.5 {
		return 1
	}
	return 1 - utils.EaseInQuad((t-0.5)*2)
}

// Draw 绘制所有飘字
func (s *PopupSystem) Draw(screen *ebiten.Image) {
	ids := ecs.GetEntitiesWith2[*components.ScorePopupComponent, *components.PositionComponent](s.entityManager)
	for _, id := range ids {
		popup, _ := ecs.GetComponent[*components.ScorePopupComponent](s.entityManager, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)

		a := s.Alpha(id)
		drawFadedText(screen, popup.Text, pos.X+1, pos.Y+1, colorShadow, text.AlignCenter, a)
		drawFadedText(screen, popup.Text, pos.X, pos.Y, popup.Color, text.AlignCenter, a)
	}
}
