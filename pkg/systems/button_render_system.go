package systems

import (
	"github.com/decker502/matreshka/pkg/components"
	"github.com/decker502/matreshka/pkg/config"
	"github.com/decker502/matreshka/pkg/ecs"
	"github.com/decker502/matreshka/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// ButtonRenderSystem 按钮渲染系统
//
// 职责：
//   - 渲染按钮背景，根据状态选择颜色（hover/pressed/disabled）
//   - 渲染按钮文字（居中），有 Detail 时显示为第二行小字
type ButtonRenderSystem struct {
	entityManager *ecs.EntityManager
}

// NewButtonRenderSystem 创建按钮渲染系统
func NewButtonRenderSystem(em *ecs.EntityManager) *ButtonRenderSystem {
	return &ButtonRenderSystem{
		entityManager: em,
	}
}

// Draw 渲染所有按钮
func (s *ButtonRenderSystem) Draw(screen *ebiten.Image) {
	for _, id := range ecs.GetEntitiesWith1[*components.ButtonComponent](s.entityManager) {
		s.DrawButton(screen, id)
	}
}

// DrawButton 渲染单个按钮实体
func (s *ButtonRenderSystem) DrawButton(screen *ebiten.Image, entityID ecs.EntityID) {
	button, ok := ecs.GetComponent[*components.ButtonComponent](s.entityManager, entityID)
	if !ok {
		return
	}

	fill := colorPanel
	switch button.State {
	case components.UIHovered:
		fill = colorHover
	case components.UIClicked:
		fill = colorPressed
	case components.UIDisabled:
		fill = colorDisabled
	}
	edge := colorPanelEdge
	if button.Accent != "" {
		edge = config.DollColor(button.Accent).RGBA()
	}
	drawPanel(screen, button.X, button.Y, button.Width, button.Height, fill, edge, 2)

	cx := button.X + button.Width/2
	labelColor := colorInk
	if !button.Enabled {
		labelColor = colorMuted
	}
	if button.Detail == "" {
		drawText(screen, button.Label, cx, button.Y+(button.Height-utils.LineHeight)/2, labelColor, text.AlignCenter)
		return
	}
	top := button.Y + (button.Height-2*utils.LineHeight)/2
	drawText(screen, button.Label, cx, top, labelColor, text.AlignCenter)
	drawText(screen, button.Detail, cx, top+utils.LineHeight, colorMuted, text.AlignCenter)
}
