package systems

import (
	"math"
	"math/rand"

	"github.com/decker502/matreshka/pkg/components"
	"github.com/decker502/matreshka/pkg/config"
)

// bounceReshuffleChance 碰壁后重新随机方向的概率
const bounceReshuffleChance = 0.3

// FloatSpeed 漂浮速度（像素/秒）
// 速度倍率为 1 时每 1/60 秒移动 config.BaseFloatSpeed 像素
func FloatSpeed(multiplier float64) float64 {
	return config.BaseFloatSpeed * multiplier * 60
}

// RandomVelocity 随机方向、给定速率的速度
func RandomVelocity(rng *rand.Rand, speed float64) components.VelocityComponent {
	angle := rng.Float64() * 2 * math.Pi
	return components.VelocityComponent{VX: math.Cos(angle) * speed, VY: math.Sin(angle) * speed}
}

// FloatBounds 尺寸为 size 的套娃中心可活动的范围
func FloatBounds(zone config.Rect, size float64) config.Rect {
	w, h := config.PieceExtent(size)
	b := config.Rect{X: zone.X + w/2, Y: zone.Y + h/2, W: zone.W - w, H: zone.H - h}
	if b.W < 0 {
		b.X, b.W = zone.X+zone.W/2, 0
	}
	if b.H < 0 {
		b.Y, b.H = zone.Y+zone.H/2, 0
	}
	return b
}

// ClampToBounds 把点限制在范围内
func ClampToBounds(x, y float64, bounds config.Rect) (float64, float64) {
	return math.Min(math.Max(x, bounds.X), bounds.X+bounds.W),
		math.Min(math.Max(y, bounds.Y), bounds.Y+bounds.H)
}

// StepFloat 推进一个漂浮套娃 dt 秒
//
// 碰到边界时位置被截断、对应速度分量指向内侧；发生碰撞时以 30% 的概率
// 重新随机两个分量的符号，避免套娃沿固定轨道循环。rng 为 nil 时不做扰动。
// 返回新的位置、速度以及本步是否碰壁。
func StepFloat(pos components.PositionComponent, vel components.VelocityComponent, bounds config.Rect, dt float64, rng *rand.Rand) (components.PositionComponent, components.VelocityComponent, bool) {
	pos.X += vel.VX * dt
	pos.Y += vel.VY * dt

	bounced := false
	if pos.X < bounds.X {
		pos.X = bounds.X
		vel.VX = math.Abs(vel.VX)
		bounced = true
	} else if pos.X > bounds.X+bounds.W {
		pos.X = bounds.X + bounds.W
		vel.VX = -math.Abs(vel.VX)
		bounced = true
	}
	if pos.Y < bounds.Y {
		pos.Y = bounds.Y
		vel.VY = math.Abs(vel.VY)
		bounced = true
	} else if pos.Y > bounds.Y+bounds.H {
		pos.Y = bounds.Y + bounds.H
		vel.VY = -math.Abs(vel.VY)
		bounced = true
	}

	if bounced && rng != nil && rng.Float64() > 1-bounceReshuffleChance {
		vel.VX = randomSign(rng) * math.Abs(vel.VX)
		vel.VY = randomSign(rng) * math.Abs(vel.VY)
	}
	return pos, vel, bounced
}

func randomSign(rng *rand.Rand) float64 {
	if rng.Intn(2) == 0 {
		return -1
	}
	return 1
}
