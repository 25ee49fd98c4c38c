package utils

import "math"

// 缓动函数，输入进度 t ∈ [0, 1]

// EaseOutCubic 开始快、结束慢，用于飘字上升减速
func EaseOutCubic(t float64) float64 {
	return 1 - math.Pow(1-Clamp01(t), 3)
}

// EaseInQuad 开始慢、结束快，用于飘字淡出
func EaseInQuad(t float64) float64 {
	t = Clamp01(t)
	return t * t
}

// Lerp 线性插值
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp01 限制到 [0, 1]
func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
