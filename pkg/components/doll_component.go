package components

import "github.com/decker502/matreshka/pkg/config"

// GrowthDollComponent 第一关中的一个套娃
// Scale 为相对 config.GrowthBaseSize 的缩放
type GrowthDollComponent struct {
	Color      config.DollColor
	Scale      float64
	IsBoundary bool // 黑色外框娃，开局生成，不参与计数
	Settled    bool // 已放下，尺寸固定
}

// PieceComponent 第四关中的一个套娃
type PieceComponent struct {
	Color      config.DollColor
	Size       float64 // 逻辑尺寸（母娃 240，子娃 < 200）
	IsMother   bool
	IsInMother bool // 已放入组装区
	IsOpen     bool // 组装区里最外层的娃打开显示内部
}

// CardComponent 第二、三关的卡片
type CardComponent struct {
	Index    int              // 网格中的位置
	Value    string           // 配对值或字母
	Color    config.DollColor // 正面颜色
	Revealed bool             // 正面朝上
	Matched  bool             // 已配对（第二关）
}
