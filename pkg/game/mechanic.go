package game

import "github.com/decker502/matreshka/pkg/config"

// InputKind 指针事件类型
type InputKind int

const (
	PointerDown InputKind = iota
	PointerMove
	PointerUp
)

// InputEvent 归一化后的指针事件（鼠标和触摸统一为同一套事件）
type InputEvent struct {
	Kind InputKind
	X, Y float64
}

// Mechanic 关卡玩法
//
// Session 负责状态机、计时和计分规则，Mechanic 只负责本关的棋盘和输入语义。
// 所有回调都在 ebiten 的 Update 协程上执行。
type Mechanic interface {
	// Level 关卡标识
	Level() config.LevelID
	// Setup 建立（或重建）空闲状态下的棋盘，Restart 时会再次调用
	Setup(s *Session)
	// OnStart 会话进入 Running 时调用
	OnStart(s *Session)
	// OnInput 仅在 Running 时收到输入
	OnInput(s *Session, ev InputEvent)
	// OnTick 倒计时每秒回调
	OnTick(s *Session, remaining int)
	// OnFrame 每帧回调（仅 Running）
	OnFrame(s *Session, dt float64)
	// DescribeRules 规则说明文字
	DescribeRules() []string
	// Stats 结果面板的统计行
	Stats(s *Session) []StatLine
}

// CountdownController 可选接口：返回 true 的玩法自己调用 Session.StartCountdown
// （例如先展示预览再开始计时）
type CountdownController interface {
	ManualCountdown() bool
}

// PauseListener 可选接口：会话暂停时调用
// 玩法在这里结束进行中的指针交互（拖动、按住），暂停期间的松开事件不会送达
type PauseListener interface {
	OnPause(s *Session)
}
