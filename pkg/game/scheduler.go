package game

import "sort"

// scheduledTask 延迟执行的回调
type scheduledTask struct {
	seq        int
	remaining  float64
	generation uint64
	fn         func()
}

// Scheduler 帧驱动的延迟回调队列
//
// 回调只在 Advance 中执行，CancelAll 之后所有已排队（包括本帧已到期但尚未执行）
// 的回调都会被丢弃。
type Scheduler struct {
	tasks      []*scheduledTask
	nextSeq    int
	generation uint64
}

// NewScheduler 创建空队列
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// After 在 delay 秒后执行 fn
func (s *Scheduler) After(delay float64, fn func()) {
	if fn == nil {
		return
	}
	s.nextSeq++
	s.tasks = append(s.tasks, &scheduledTask{
		seq:        s.nextSeq,
		remaining:  delay,
		generation: s.generation,
		fn:         fn,
	})
}

// Advance 推进 dt 秒并按到期先后执行回调
// 回调里新排队的任务最早在下一次 Advance 执行
func (s *Scheduler) Advance(dt float64) {
	if len(s.tasks) == 0 {
		return
	}

	gen := s.generation
	due := make([]*scheduledTask, 0)
	kept := make([]*scheduledTask, 0, len(s.tasks))
	for _, t := range s.tasks {
		t.remaining -= dt
		if t.remaining <= 1e-9 {
			due = append(due, t)
		} else {
			kept = append(kept, t)
		}
	}
	s.tasks = kept

	sort.SliceStable(due, func(i, j int) bool {
		if due[i].remaining != due[j].remaining {
			return due[i].remaining < due[j].remaining
		}
		return due[i].seq < due[j].seq
	})

	for _, t := range due {
		if s.generation != gen || t.generation != gen {
			return
		}
		t.fn()
	}
}

// CancelAll 丢弃所有待执行回调
func (s *Scheduler) CancelAll() {
	s.generation++
	s.tasks = nil
}

// Pending 待执行回调数量
func (s *Scheduler) Pending() int {
	return len(s.tasks)
}
