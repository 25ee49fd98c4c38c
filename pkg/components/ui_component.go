package components

// UIState 按钮交互状态
type UIState int

const (
	UINormal UIState = iota
	UIHovered
	UIClicked
	UIDisabled
)

// ButtonComponent 菜单按钮
// 坐标为左上角
type ButtonComponent struct {
	X       float64
	Y       float64
	Width   float64
	Height  float64
	Label   string
	Detail  string // 第二行小字（如最佳成绩）
	Accent  string // 边框颜色名
	State   UIState
	Enabled bool
	OnClick func()
}

// Contains 点是否在按钮内
func (b *ButtonComponent) Contains(x, y float64) bool {
	return x >= b.X && x <= b.X+b.Width && y >= b.Y && y <= b.Y+b.Height
}
