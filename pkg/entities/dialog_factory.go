package entities

import (
	"fmt"

	"github.com/decker502/matreshka/pkg/components"
	"github.com/decker502/matreshka/pkg/config"
	"github.com/decker502/matreshka/pkg/ecs"
	"github.com/decker502/matreshka/pkg/utils"
)

// 对话框布局常量（与 DialogRenderSystem 保持一致）
const (
	DialogWidth         = 520.0
	DialogPadding       = 24.0
	DialogTitleHeight   = 56.0
	DialogButtonWidth   = 128.0
	DialogButtonHeight  = 36.0
	DialogButtonSpacing = 16.0
	dialogButtonArea    = DialogButtonHeight + DialogPadding*2
	dialogMaxLines      = 26
)

// ButtonSpec 对话框按钮定义
type ButtonSpec struct {
	Label   string
	OnClick func()
}

// NewDialogEntity 创建居中的模态对话框实体
//
// 正文按对话框宽度自动换行，高度随行数增长；按钮在底部水平居中。
//
// 参数：
//   - em: 实体管理器
//   - kind: 对话框类型
//   - title: 标题
//   - lines: 正文，每项一行（空字符串表示空行）
//   - accent: 标题颜色名
//   - buttons: 按钮，至少一个
//
// 返回：
//   - 对话框实体ID
//   - 错误信息
func NewDialogEntity(
	em *ecs.EntityManager,
	kind components.DialogKind,
	title string,
	lines []string,
	accent string,
	buttons []ButtonSpec,
) (ecs.EntityID, error) {
	if em == nil {
		return 0, fmt.Errorf("entity manager cannot be nil")
	}
	if len(buttons) == 0 {
		return 0, fmt.Errorf("dialog %q needs at least one button", title)
	}

	wrapped := WrapDialogLines(lines)
	width, height := CalculateDialogSize(len(wrapped))

	x := float64(config.ScreenWidth)/2 - width/2
	y := float64(config.ScreenHeight)/2 - height/2

	entity := em.CreateEntity()
	ecs.AddComponent(em, entity, &components.PositionComponent{X: x, Y: y})
	ecs.AddComponent(em, entity, &components.DialogComponent{
		Kind:             kind,
		Title:            title,
		Lines:            wrapped,
		Accent:           accent,
		Buttons:          layoutDialogButtons(buttons, width, height),
		Width:            width,
		Height:           height,
		IsVisible:        true,
		HoveredButtonIdx: -1,
		PressedButtonIdx: -1,
	})
	return entity, nil
}

// WrapDialogLines 按对话框正文宽度换行，超出最大行数的部分被截断
func WrapDialogLines(lines []string) []string {
	maxWidth := DialogWidth - DialogPadding*2
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			out = append(out, "")
			continue
		}
		out = append(out, utils.WrapText(line, utils.DefaultFace(), maxWidth)...)
	}
	if len(out) > dialogMaxLines {
		out = append(out[:dialogMaxLines-1], "...")
	}
	return out
}

// CalculateDialogSize 根据正文行数计算对话框大小
func CalculateDialogSize(lineCount int) (width, height float64) {
	height = DialogTitleHeight + float64(lineCount)*utils.LineHeight + dialogButtonArea
	if height < 180 {
		height = 180
	}
	return DialogWidth, height
}

func layoutDialogButtons(specs []ButtonSpec, width, height float64) []components.DialogButton {
	n := float64(len(specs))
	total := n*DialogButtonWidth + (n-1)*DialogButtonSpacing
	left := width/2 - total/2
	top := height - DialogPadding - DialogButtonHeight

	buttons := make([]components.DialogButton, 0, len(specs))
	for i, spec := range specs {
		buttons = append(buttons, components.DialogButton{
			Label:   spec.Label,
			OnClick: spec.OnClick,
			X:       left + float64(i)*(DialogButtonWidth+DialogButtonSpacing),
			Y:       top,
			Width:   DialogButtonWidth,
			Height:  DialogButtonHeight,
		})
	}
	return buttons
}
