package systems

import (
	"github.com/decker502/matreshka/pkg/components"
	"github.com/decker502/matreshka/pkg/ecs"
	"github.com/decker502/matreshka/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
)

// ButtonSystem 按钮交互系统
// 负责处理按钮的悬停、按下和点击
//
// 职责：
//   - 检测指针悬停（更新按钮状态为 UIHovered）
//   - 指针在按钮内释放时触发 OnClick
//   - 根据 Enabled 状态决定是否响应交互
type ButtonSystem struct {
	entityManager *ecs.EntityManager
}

// NewButtonSystem 创建按钮交互系统
func NewButtonSystem(em *ecs.EntityManager) *ButtonSystem {
	return &ButtonSystem{
		entityManager: em,
	}
}

// Update 读取 ebiten 输入并更新按钮
// 返回本帧是否有按钮被点击
func (s *ButtonSystem) Update(deltaTime float64) bool {
	x, y := utils.CursorPosition()
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) || len(ebiten.AppendTouchIDs(nil)) > 0
	released, rx, ry := utils.IsPointerJustReleased()
	if released {
		x, y = rx, ry
	}
	return s.Apply(float64(x), float64(y), pressed, released)
}

// Apply 用给定的指针状态更新按钮
// 每次最多触发一个按钮（回调可能重建按钮列表）
func (s *ButtonSystem) Apply(x, y float64, pressed, released bool) bool {
	var clicked func()
	for _, id := range ecs.GetEntitiesWith1[*components.ButtonComponent](s.entityManager) {
		button, _ := ecs.GetComponent[*components.ButtonComponent](s.entityManager, id)

		if !button.Enabled {
			button.State = components.UIDisabled
			continue
		}
		if !button.Contains(x, y) {
			button.State = components.UINormal
			continue
		}

		switch {
		case released:
			button.State = components.UIHovered
			if clicked == nil && button.OnClick != nil {
				clicked = button.OnClick
			}
		case pressed:
			button.State = components.UIClicked
		default:
			button.State = components.UIHovered
		}
	}

	if clicked == nil {
		return false
	}
	clicked()
	return true
}

// HoveredButton 返回指针下的可用按钮，没有时返回 0
func (s *ButtonSystem) HoveredButton(x, y float64) ecs.EntityID {
	for _, id := range ecs.GetEntitiesWith1[*components.ButtonComponent](s.entityManager) {
		button, _ := ecs.GetComponent[*components.ButtonComponent](s.entityManager, id)
		if button.Enabled && button.Contains(x, y) {
			return id
		}
	}
	return 0
}
