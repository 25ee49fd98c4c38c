// Package utils 提供通用工具函数
package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// DragState 指针拖拽状态
type DragState int

const (
	// DragStateNone 无拖拽
	DragStateNone DragState = iota
	// DragStateStarted 刚按下（只持续一帧）
	DragStateStarted
	// DragStateDragging 按住中
	DragStateDragging
	// DragStateEnded 刚释放（只持续一帧）
	DragStateEnded
)

// PointerSample 一帧的指针采样
type PointerSample struct {
	JustPressed bool // 本帧新按下
	Pressed     bool // 仍然按住
	X, Y        int
	TouchID     ebiten.TouchID // 鼠标为 -1
}

// DragInfo 拖拽信息
type DragInfo struct {
	State              DragState
	StartX, StartY     int
	CurrentX, CurrentY int
	Moved              bool // 本帧位置有变化
	TouchID            ebiten.TouchID
}

// DragManager 跟踪单个指针（鼠标或第一个触摸点）的按下、移动、释放
type DragManager struct {
	info DragInfo
}

// NewDragManager 创建拖拽管理器
func NewDragManager() *DragManager {
	return &DragManager{info: DragInfo{TouchID: -1}}
}

// Update 读取 ebiten 输入并推进状态，每帧调用一次
func (dm *DragManager) Update() DragInfo {
	return dm.Feed(dm.sample())
}

func (dm *DragManager) sample() PointerSample {
	if dm.info.State == DragStateStarted || dm.info.State == DragStateDragging {
		if dm.info.TouchID >= 0 {
			for _, id := range ebiten.AppendTouchIDs(nil) {
				if id == dm.info.TouchID {
					x, y := ebiten.TouchPosition(id)
					return PointerSample{Pressed: true, X: x, Y: y, TouchID: id}
				}
			}
			// 触摸已抬起，使用最后位置
			return PointerSample{X: dm.info.CurrentX, Y: dm.info.CurrentY, TouchID: dm.info.TouchID}
		}
		x, y := ebiten.CursorPosition()
		return PointerSample{Pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft), X: x, Y: y, TouchID: -1}
	}

	if ids := inpututil.AppendJustPressedTouchIDs(nil); len(ids) > 0 {
		x, y := ebiten.TouchPosition(ids[0])
		return PointerSample{JustPressed: true, Pressed: true, X: x, Y: y, TouchID: ids[0]}
	}
	x, y := ebiten.CursorPosition()
	return PointerSample{
		JustPressed: inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		Pressed:     ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		X:           x,
		Y:           y,
		TouchID:     -1,
	}
}

// Feed 用一帧采样推进状态机
//
// 状态转换：
//   - None/Ended + JustPressed -> Started
//   - Started/Dragging + Pressed -> Dragging
//   - Started/Dragging + 松开 -> Ended
//   - Ended -> None
func (dm *DragManager) Feed(s PointerSample) DragInfo {
	switch dm.info.State {
	case DragStateNone, DragStateEnded:
		if s.JustPressed {
			dm.info = DragInfo{
				State:    DragStateStarted,
				StartX:   s.X,
				StartY:   s.Y,
				CurrentX: s.X,
				CurrentY: s.Y,
				TouchID:  s.TouchID,
			}
		} else {
			dm.Reset()
		}

	case DragStateStarted, DragStateDragging:
		dm.info.Moved = s.X != dm.info.CurrentX || s.Y != dm.info.CurrentY
		dm.info.CurrentX, dm.info.CurrentY = s.X, s.Y
		if s.Pressed {
			dm.info.State = DragStateDragging
		} else {
			dm.info.State = DragStateEnded
		}
	}
	return dm.info
}

// Reset 回到无拖拽状态
func (dm *DragManager) Reset() {
	dm.info = DragInfo{State: DragStateNone, TouchID: -1}
}

// Info 当前拖拽信息
func (dm *DragManager) Info() DragInfo {
	return dm.info
}

// IsDragging 是否按住中
func (dm *DragManager) IsDragging() bool {
	return dm.info.State == DragStateDragging
}

var lastTouchX, lastTouchY int

// UpdateLastTouchPosition 记录最后一次触摸位置，每帧调用
// 触摸抬起的那一帧已经读不到位置
func UpdateLastTouchPosition() {
	if ids := ebiten.AppendTouchIDs(nil); len(ids) > 0 {
		lastTouchX, lastTouchY = ebiten.TouchPosition(ids[0])
	}
}

// IsPointerJustReleased 本帧是否释放了指针（触摸或鼠标左键）
// 返回是否释放以及释放位置
func IsPointerJustReleased() (bool, int, int) {
	if ids := inpututil.AppendJustReleasedTouchIDs(nil); len(ids) > 0 {
		return true, lastTouchX, lastTouchY
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		return true, x, y
	}
	return false, 0, 0
}

// IsRightClick 本帧是否右键点击
func IsRightClick() bool {
	return inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight)
}

// CursorPosition 当前指针位置（优先触摸）
func CursorPosition() (int, int) {
	if ids := ebiten.AppendTouchIDs(nil); len(ids) > 0 {
		return ebiten.TouchPosition(ids[0])
	}
	return ebiten.CursorPosition()
}
