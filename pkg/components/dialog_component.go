package components

// DialogKind 对话框类型
type DialogKind int

const (
	// DialogMessage 普通消息（开始、暂停、规则）
	DialogMessage DialogKind = iota
	// DialogResults 一局结束后的结果面板
	DialogResults
)

// DialogComponent 模态对话框
// 对话框左上角位于同一实体的 PositionComponent，按钮坐标相对对话框
type DialogComponent struct {
	Kind      DialogKind
	Title     string
	Lines     []string // 正文，每行一条
	Accent    string   // 标题颜色名，对应 config.DollColor
	Buttons   []DialogButton
	Width     float64
	Height    float64
	IsVisible bool

	HoveredButtonIdx int // -1 表示没有
	PressedButtonIdx int
}

// DialogButton 对话框按钮
type DialogButton struct {
	Label   string
	OnClick func()
	X       float64
	Y       float64
	Width   float64
	Height  float64
}
