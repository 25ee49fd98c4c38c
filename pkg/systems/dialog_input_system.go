package systems

import (
	"log"
	"sort"

	"github.com/decker502/matreshka/pkg/components"
	"github.com/decker502/matreshka/pkg/ecs"
	"github.com/decker502/matreshka/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
)

// DialogInputSystem 对话框输入系统
//
// 职责：
//   - 更新按钮悬停和按下状态
//   - 鼠标释放（或触摸抬起）时触发最上层对话框的按钮
//
// 对话框是模态的，点击外部不会关闭它。
type DialogInputSystem struct {
	entityManager *ecs.EntityManager
}

// NewDialogInputSystem 创建对话框输入系统
func NewDialogInputSystem(em *ecs.EntityManager) *DialogInputSystem {
	return &DialogInputSystem{entityManager: em}
}

// Update 读取 ebiten 输入
// 返回 true 表示本帧存在对话框（调用方应屏蔽其他输入）
func (s *DialogInputSystem) Update(deltaTime float64) bool {
	if !s.HasDialog() {
		return false
	}

	mouseX, mouseY := utils.CursorPosition()
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) || len(ebiten.AppendTouchIDs(nil)) > 0
	s.UpdateHover(float64(mouseX), float64(mouseY), pressed)

	if released, x, y := utils.IsPointerJustReleased(); released {
		s.HandleRelease(float64(x), float64(y))
	}
	return true
}

// HasDialog 是否存在可见对话框
func (s *DialogInputSystem) HasDialog() bool {
	return s.topDialog() != 0
}

// UpdateHover 更新最上层对话框的悬停/按下按钮
func (s *DialogInputSystem) UpdateHover(x, y float64, pressed bool) {
	id := s.topDialog()
	if id == 0 {
		return
	}
	dialog, _ := ecs.GetComponent[*components.DialogComponent](s.entityManager, id)
	pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)

	dialog.HoveredButtonIdx = buttonIndexAt(dialog, pos.X, pos.Y, x, y)
	if pressed && dialog.HoveredButtonIdx >= 0 {
		dialog.PressedButtonIdx = dialog.HoveredButtonIdx
	} else {
		dialog.PressedButtonIdx = -1
	}
}

// HandleRelease 在 (x, y) 释放指针，命中按钮时触发回调
// 返回是否触发了按钮
func (s *DialogInputSystem) HandleRelease(x, y float64) bool {
	id := s.topDialog()
	if id == 0 {
		return false
	}
	dialog, _ := ecs.GetComponent[*components.DialogComponent](s.entityManager, id)
	pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)

	idx := buttonIndexAt(dialog, pos.X, pos.Y, x, y)
	if idx < 0 {
		return false
	}
	btn := dialog.Buttons[idx]
	log.Printf("[DialogInputSystem] Button '%s' clicked", btn.Label)
	if btn.OnClick != nil {
		btn.OnClick()
	}
	return true
}

// topDialog 返回 ID 最大（最上层）的可见对话框
func (s *DialogInputSystem) topDialog() ecs.EntityID {
	ids := ecs.GetEntitiesWith2[*components.DialogComponent, *components.PositionComponent](s.entityManager)
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	for _, id := range ids {
		dialog, _ := ecs.GetComponent[*components.DialogComponent](s.entityManager, id)
		if dialog.IsVisible {
			return id
		}
	}
	return 0
}

func buttonIndexAt(dialog *components.DialogComponent, dialogX, dialogY, x, y float64) int {
	for i := range dialog.Buttons {
		btn := &dialog.Buttons[i]
		bx, by := dialogX+btn.X, dialogY+btn.Y
		if x >= bx && x <= bx+btn.Width && y >= by && y <= by+btn.Height {
			return i
		}
	}
	return -1
}
