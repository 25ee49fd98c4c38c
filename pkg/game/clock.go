package game

// Clock 关卡倒计时
//
// 由帧驱动：每帧调用 Advance(dt) 累积真实流逝时间，每满一秒触发一次 tick。
// 暂停期间不累积时间；倒计时归零时到期回调只触发一次，之后不再 tick，
// 直到下一次 Start。
type Clock struct {
	limit     int
	remaining int
	running   bool
	paused    bool
	expired   bool
	accum     float64

	onTick    func(remaining int)
	onExpired func()
}

// NewClock 创建未启动的倒计时
func NewClock() *Clock {
	return &Clock{}
}

// OnTick 设置每秒回调，参数为剩余秒数
func (c *Clock) OnTick(fn func(remaining int)) {
	c.onTick = fn
}

// OnExpired 设置到期回调
func (c *Clock) OnExpired(fn func()) {
	c.onExpired = fn
}

// Start 以 limit 秒重新开始倒计时
func (c *Clock) Start(limit int) {
	c.limit = limit
	c.remaining = limit
	c.running = true
	c.paused = false
	c.expired = false
	c.accum = 0

	if limit <= 0 {
		c.remaining = 0
		c.expire()
	}
}

// Pause 暂停计时，Start 之前调用无效
func (c *Clock) Pause() {
	if c.running {
		c.paused = true
	}
}

// Resume 恢复计时
func (c *Clock) Resume() {
	c.paused = false
}

// Stop 停止计时，可重复调用
func (c *Clock) Stop() {
	c.running = false
	c.paused = false
	c.accum = 0
}

// Advance 累积 dt 秒，每满一秒调用一次 Tick
func (c *Clock) Advance(dt float64) {
	if !c.running || c.paused || dt <= 0 {
		return
	}
	c.accum += dt
	for c.accum >= 1.0 && c.running && !c.paused {
		c.accum -= 1.0
		c.Tick()
	}
}

// Tick 推进一秒；剩余时间为 0、已停止或暂停时不做任何事
func (c *Clock) Tick() {
	if !c.running || c.paused || c.expired || c.remaining <= 0 {
		return
	}
	c.remaining--
	if c.onTick != nil {
		c.onTick(c.remaining)
	}
	if c.remaining == 0 {
		c.expire()
	}
}

func (c *Clock) expire() {
	if c.expired {
		return
	}
	c.expired = true
	c.running = false
	if c.onExpired != nil {
		c.onExpired()
	}
}

// Remaining 剩余秒数
func (c *Clock) Remaining() int { return c.remaining }

// Limit 本次倒计时的总秒数
func (c *Clock) Limit() int { return c.limit }

// IsRunning 是否在计时（暂停时仍为 true）
func (c *Clock) IsRunning() bool { return c.running }

// IsPaused 是否暂停
func (c *Clock) IsPaused() bool { return c.paused }

// Expired 是否已经到期
func (c *Clock) Expired() bool { return c.expired }
