package entities

import (
	"github.com/decker502/matreshka/pkg/components"
	"github.com/decker502/matreshka/pkg/ecs"
)

// NewButtonEntity 创建矩形按钮实体（菜单和信息栏共用）
//
// 参数：
//   - em: 实体管理器
//   - x, y, w, h: 左上角和尺寸（屏幕坐标）
//   - label: 按钮文字
//   - detail: 第二行小字，可为空
//   - accent: 边框颜色名
//   - onClick: 点击回调
//
// 返回：
//   - 按钮实体ID
func NewButtonEntity(em *ecs.EntityManager, x, y, w, h float64, label, detail, accent string, onClick func()) ecs.EntityID {
	entity := em.CreateEntity()
	ecs.AddComponent(em, entity, &components.ButtonComponent{
		X:       x,
		Y:       y,
		Width:   w,
		Height:  h,
		Label:   label,
		Detail:  detail,
		Accent:  accent,
		State:   components.UINormal,
		Enabled: true,
		OnClick: onClick,
	})
	return entity
}
