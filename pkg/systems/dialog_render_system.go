package systems

import (
	"sort"

	"github.com/decker502/matreshka/pkg/components"
	"github.com/decker502/matreshka/pkg/config"
	"github.com/decker502/matreshka/pkg/ecs"
	"github.com/decker502/matreshka/pkg/entities"
	"github.com/decker502/matreshka/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// DialogRenderSystem 对话框渲染系统
//
// 职责：
//   - 渲染半透明遮罩（覆盖整个屏幕，只画一次）
//   - 渲染对话框面板、标题、正文和按钮
//
// 对话框按实体 ID 升序绘制，后创建的在上层。
type DialogRenderSystem struct {
	entityManager *ecs.EntityManager
}

// NewDialogRenderSystem 创建对话框渲染系统
func NewDialogRenderSystem(em *ecs.EntityManager) *DialogRenderSystem {
	return &DialogRenderSystem{entityManager: em}
}

// Draw 渲染所有可见对话框
func (s *DialogRenderSystem) Draw(screen *ebiten.Image) {
	ids := ecs.GetEntitiesWith2[*components.DialogComponent, *components.PositionComponent](s.entityManager)
	if len(ids) == 0 {
		return
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	overlayDrawn := false
	for _, id := range ids {
		dialog, _ := ecs.GetComponent[*components.DialogComponent](s.entityManager, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)
		if !dialog.IsVisible {
			continue
		}
		if !overlayDrawn {
			drawPanel(screen, 0, 0, config.ScreenWidth, config.ScreenHeight, colorOverlay, nil, 0)
			overlayDrawn = true
		}
		s.drawDialog(screen, dialog, pos.X, pos.Y)
	}
}

func (s *DialogRenderSystem) drawDialog(screen *ebiten.Image, dialog *components.DialogComponent, x, y float64) {
	accent := config.DollColor(dialog.Accent).RGBA()
	drawPanel(screen, x+4, y+4, dialog.Width, dialog.Height, colorShadow, nil, 0)
	drawPanel(screen, x, y, dialog.Width, dialog.Height, colorPanel, accent, 3)

	// 标题栏
	drawPanel(screen, x, y, dialog.Width, entities.DialogTitleHeight, accent, nil, 0)
	drawShadowText(screen, dialog.Title, x+dialog.Width/2, y+(entities.DialogTitleHeight-utils.LineHeight)/2, colorPanel)

	lineY := y + entities.DialogTitleHeight + entities.DialogPadding/2
	for _, line := range dialog.Lines {
		drawText(screen, line, x+entities.DialogPadding, lineY, colorInk, text.AlignStart)
		lineY += utils.LineHeight
	}

	for i := range dialog.Buttons {
		btn := &dialog.Buttons[i]
		fill := colorPanel
		switch {
		case i == dialog.PressedButtonIdx:
			fill = colorPressed
		case i == dialog.HoveredButtonIdx:
			fill = colorHover
		}
		bx, by := x+btn.X, y+btn.Y
		drawPanel(screen, bx, by, btn.Width, btn.Height, fill, accent, 2)
		drawText(screen, btn.Label, bx+btn.Width/2, by+(btn.Height-utils.LineHeight)/2, colorInk, text.AlignCenter)
	}
}
