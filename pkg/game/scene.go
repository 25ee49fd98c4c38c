package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene 一个画面（主菜单或某个关卡）
type Scene interface {
	// Update 推进一帧，deltaTime 单位为秒
	Update(deltaTime float64)
	// Draw 绘制到 screen
	Draw(screen *ebiten.Image)
}

// Leaver 是可选接口，场景被替换或程序退出时调用 OnLeave
// 关卡场景用它结束会话、取消延迟回调
type Leaver interface {
	OnLeave()
}
