package config

// 布局配置常量
// 所有坐标都是逻辑屏幕坐标，ebiten 负责缩放到实际窗口

const (
	// ScreenWidth 逻辑屏幕宽度
	ScreenWidth = 960
	// ScreenHeight 逻辑屏幕高度
	ScreenHeight = 640

	// HUDHeight 顶部信息栏高度（关卡名、时间、分数）
	HUDHeight = 48.0
)

// Rect 轴对齐矩形
type Rect struct {
	X, Y, W, H float64
}

// ContainsStrict 点是否严格位于矩形内部（边界上不算）
func (r Rect) ContainsStrict(x, y float64) bool {
	return x > r.X && x < r.X+r.W && y > r.Y && y < r.Y+r.H
}

// Contains 点是否位于矩形内（含边界）
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// Center 返回矩形中心
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// PlayArea 关卡可用区域（信息栏以下）
var PlayArea = Rect{X: 0, Y: HUDHeight, W: ScreenWidth, H: ScreenHeight - HUDHeight}

// 第一关布局
const (
	// GrowthBaseSize 缩放为 1.0 时套娃的绘制高度
	GrowthBaseSize = 200.0
	// GrowthReferenceSize 计算边界缩放时的参考尺寸
	GrowthReferenceSize = 200.0
)

// 第二、三关卡片布局
const (
	CardWidth   = 96.0
	CardHeight  = 128.0
	CardSpacing = 16.0
)

// 第四关布局
const (
	// AssemblyMotherSize 母体套娃尺寸
	AssemblyMotherSize = 240.0
	// AssemblyLargestChildSize 子套娃尺寸计算的上界
	AssemblyLargestChildSize = 200.0
	// PieceDrawScale 尺寸到绘制高度的换算系数
	PieceDrawScale = 0.6
	// PieceAspect 套娃宽高比
	PieceAspect = 0.62
	// BaseFloatSpeed 速度倍率为 1 时每 1/60 秒移动的像素数
	BaseFloatSpeed = 7.0
)

// AssemblyPlayZone 自由漂浮区域
var AssemblyPlayZone = Rect{X: 16, Y: HUDHeight + 16, W: 600, H: ScreenHeight - HUDHeight - 32}

// AssemblyZone 组装区域（母体所在位置）
var AssemblyZone = Rect{X: 640, Y: HUDHeight + 96, W: 300, H: 400}

// PieceExtent 返回尺寸对应的绘制宽高
func PieceExtent(size float64) (w, h float64) {
	h = size * PieceDrawScale
	return h * PieceAspect, h
}
