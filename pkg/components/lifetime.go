package components

// LifetimeComponent 限时存在的实体（如得分飘字）
type LifetimeComponent struct {
	MaxLifetime     float64 // 秒
	CurrentLifetime float64
	IsExpired       bool
}
