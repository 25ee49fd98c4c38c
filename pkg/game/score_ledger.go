package game

import "math"

// ScoreLedger 记录一局的分数
// 总分永远不小于 0
type ScoreLedger struct {
	total int
}

// NewScoreLedger 创建分数为 0 的账本
func NewScoreLedger() *ScoreLedger {
	return &ScoreLedger{}
}

// Total 当前总分
func (l *ScoreLedger) Total() int {
	return l.total
}

// Reset 清零
func (l *ScoreLedger) Reset() {
	l.total = 0
}

// Award 计算 round(base*multiplier) + timeBonus 并计入总分，返回本次得分
// 本次得分不会为负
func (l *ScoreLedger) Award(base int, multiplier float64, timeBonus int) int {
	points := RoundHalfUp(float64(base)*multiplier) + timeBonus
	if points < 0 {
		points = 0
	}
	l.total += points
	return points
}

// Penalize 扣分，总分最低为 0；返回实际扣除的分数
func (l *ScoreLedger) Penalize(amount int) int {
	if amount < 0 {
		amount = -amount
	}
	return -l.Add(-amount)
}

// Add 加上有符号的分数，结果截断到 0；返回实际变化量
func (l *ScoreLedger) Add(points int) int {
	before := l.total
	l.total += points
	if l.total < 0 {
		l.total = 0
	}
	return l.total - before
}

// RoundHalfUp 四舍五入（.5 向上）
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// TimeBonus 按剩余时间比例计算奖励：round(remaining/limit*max)
func TimeBonus(remaining, limit, max int) int {
	if limit <= 0 || remaining <= 0 || max <= 0 {
		return 0
	}
	if remaining > limit {
		remaining = limit
	}
	return RoundHalfUp(float64(remaining) / float64(limit) * float64(max))
}

// AccuracyBonus 按精度分档奖励（乘倍率之前）
func AccuracyBonus(accuracy float64) int {
	switch {
	case accuracy > 0.9:
		return 50
	case accuracy > 0.7:
		return 25
	case accuracy > 0.5:
		return 10
	}
	return 0
}

// ScaleFloor 返回 floor(points*multiplier)，负数同样向下取整
func ScaleFloor(points int, multiplier float64) int {
	return int(math.Floor(float64(points) * multiplier))
}
