package utils

import "time"

// MaxFrameDelta 单帧最大时长（秒），超过时截断，避免切后台后时间跳变
const MaxFrameDelta = 0.1

// FrameTimer 测量两次 Tick 之间的真实时间
type FrameTimer struct {
	now  func() time.Time
	last time.Time
}

// NewFrameTimer 创建计时器，now 为 nil 时使用 time.Now
func NewFrameTimer(now func() time.Time) *FrameTimer {
	if now == nil {
		now = time.Now
	}
	return &FrameTimer{now: now}
}

// Tick 返回距上次 Tick 的秒数，截断到 [0, MaxFrameDelta]
// 第一次调用（或 Reset 之后）返回 0
func (ft *FrameTimer) Tick() float64 {
	t := ft.now()
	if ft.last.IsZero() {
		ft.last = t
		return 0
	}
	dt := t.Sub(ft.last).Seconds()
	ft.last = t
	if dt < 0 {
		return 0
	}
	if dt > MaxFrameDelta {
		return MaxFrameDelta
	}
	return dt
}

// Reset 丢弃基准时间，下一次 Tick 返回 0
func (ft *FrameTimer) Reset() {
	ft.last = time.Time{}
}
