package components

// PositionComponent 实体中心点的屏幕坐标
type PositionComponent struct {
	X float64
	Y float64
}

// VelocityComponent 速度（像素/秒）
type VelocityComponent struct {
	VX float64
	VY float64
}
