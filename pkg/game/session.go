package game

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/decker502/matreshka/pkg/config"
	"github.com/google/uuid"
)

// Phase 会话阶段
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhasePaused
	PhaseEnded
)

// String 返回阶段名称
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	case PhaseEnded:
		return "ended"
	}
	return "unknown"
}

// SessionState 一局游戏的显式状态记录
type SessionState struct {
	ID            string
	Phase         Phase
	TimeRemaining int
	Score         int
	StartedAt     time.Time
	// Generation 每次 Restart 递增，旧一代的延迟回调会被丢弃
	Generation uint64
}

// SessionConfig 创建会话所需的协作者
type SessionConfig struct {
	Profile     config.DifficultyProfile
	Mechanic    Mechanic
	Persistence Persistence
	Modal       Modal

	// 以下可选
	Leaderboard Leaderboard
	Feedback    Feedback
	CurrentUser string
	// OnExit 结果或暂停对话框中点击 "Menu" 时调用
	OnExit func()
	// Now 时间源，测试可替换
	Now func() time.Time
}

// Session 通用的计时关卡状态机：Idle → Running ⇄ Paused → Ended
type Session struct {
	level       config.LevelID
	profile     config.DifficultyProfile
	mechanic    Mechanic
	persistence Persistence
	leaderboard Leaderboard
	modal       Modal
	feedback    Feedback
	currentUser string
	onExit      func()
	now         func() time.Time

	clock     *Clock
	ledger    *ScoreLedger
	scheduler *Scheduler

	state            SessionState
	countdownStarted bool
	saveFailed       bool
	lastResults      *Results
}

// NewSession 创建处于 Idle 阶段的会话并建立棋盘
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Mechanic == nil {
		return nil, errors.New("session requires a mechanic")
	}
	if cfg.Persistence == nil {
		return nil, errors.New("session requires persistence")
	}
	if cfg.Modal == nil {
		return nil, errors.New("session requires a modal")
	}
	if cfg.Profile.TimeLimit <= 0 {
		return nil, fmt.Errorf("invalid time limit %d", cfg.Profile.TimeLimit)
	}

	s := &Session{
		level:       cfg.Mechanic.Level(),
		profile:     cfg.Profile,
		mechanic:    cfg.Mechanic,
		persistence: cfg.Persistence,
		leaderboard: cfg.Leaderboard,
		modal:       cfg.Modal,
		feedback:    cfg.Feedback,
		currentUser: cfg.CurrentUser,
		onExit:      cfg.OnExit,
		now:         cfg.Now,
		clock:       NewClock(),
		ledger:      NewScoreLedger(),
		scheduler:   NewScheduler(),
	}
	if s.feedback == nil {
		s.feedback = noFeedback{}
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.clock.OnTick(s.handleTick)
	s.clock.OnExpired(func() {
		log.Printf("[Session] %s time is up", s.level)
		s.End(false)
	})
	s.modal.OnPauseRequested(s.pause)
	s.modal.OnResumeRequested(s.resume)

	s.state = s.freshState(0)
	s.mechanic.Setup(s)

	log.Printf("[Session] Created %s session %s (%s, %ds)", s.level, s.state.ID, s.profile.Name, s.profile.TimeLimit)
	return s, nil
}

func (s *Session) freshState(generation uint64) SessionState {
	return SessionState{
		ID:            uuid.NewString(),
		Phase:         PhaseIdle,
		TimeRemaining: s.profile.TimeLimit,
		Generation:    generation,
	}
}

// ShowIntro 在 Idle 阶段显示规则和开始按钮
func (s *Session) ShowIntro() {
	if s.state.Phase != PhaseIdle {
		return
	}
	body := append([]string{}, s.mechanic.DescribeRules()...)
	body = append(body, "", fmt.Sprintf("Difficulty: %s   Time: %ds", s.profile.Name, s.profile.TimeLimit))
	s.modal.ShowBlockingMessage(s.level.Title(), body, []Action{
		{Label: "Start", Run: s.Start},
	})
}

// Start 开始游戏，仅在 Idle 阶段有效
func (s *Session) Start() {
	if s.state.Phase != PhaseIdle {
		return
	}
	s.state.Phase = PhaseRunning
	s.state.StartedAt = s.now()
	s.state.TimeRemaining = s.profile.TimeLimit
	s.countdownStarted = false

	log.Printf("[Session] %s started (generation %d)", s.level, s.state.Generation)

	s.mechanic.OnStart(s)
	if s.state.Phase != PhaseRunning {
		return
	}

	if cc, ok := s.mechanic.(CountdownController); ok && cc.ManualCountdown() {
		return
	}
	s.StartCountdown()
}

// StartCountdown 启动倒计时，每局只生效一次
func (s *Session) StartCountdown() {
	if s.countdownStarted || (s.state.Phase != PhaseRunning && s.state.Phase != PhasePaused) {
		return
	}
	s.countdownStarted = true
	s.clock.Start(s.profile.TimeLimit)
	if s.state.Phase == PhasePaused {
		s.clock.Pause()
	}
}

// CountdownStarted 倒计时是否已启动
func (s *Session) CountdownStarted() bool {
	return s.countdownStarted
}

// RequestPause 打开暂停对话框，仅在 Running 阶段有效
func (s *Session) RequestPause() {
	if s.state.Phase != PhaseRunning {
		return
	}
	s.modal.ShowBlockingMessage("Paused", []string{
		s.level.Title(),
		fmt.Sprintf("Score: %d   Time left: %ds", s.ledger.Total(), s.state.TimeRemaining),
	}, []Action{
		{Label: "Continue"},
		{Label: "Restart", Run: s.Restart},
		{Label: "Menu", Run: s.Exit},
	})
}

// RequestResume 关闭对话框继续游戏，仅在 Paused 阶段有效
func (s *Session) RequestResume() {
	if s.state.Phase != PhasePaused {
		return
	}
	s.modal.Close()
}

// TogglePause Escape 键的统一处理
func (s *Session) TogglePause() {
	switch s.state.Phase {
	case PhaseRunning:
		s.RequestPause()
	case PhasePaused:
		s.RequestResume()
	}
}

// ShowRules 显示规则；游戏进行中会暂停
func (s *Session) ShowRules() {
	switch s.state.Phase {
	case PhaseIdle:
		s.ShowIntro()
	case PhaseRunning, PhasePaused:
		s.modal.ShowBlockingMessage("How to play", s.mechanic.DescribeRules(), []Action{
			{Label: "Continue"},
		})
	}
}

// pause 由模态对话框的暂停钩子调用
func (s *Session) pause() {
	if s.state.Phase != PhaseRunning {
		return
	}
	s.state.Phase = PhasePaused
	s.clock.Pause()
	if pl, ok := s.mechanic.(PauseListener); ok {
		pl.OnPause(s)
	}
	log.Printf("[Session] %s paused at %ds", s.level, s.state.TimeRemaining)
}

// resume 由模态对话框的恢复钩子调用
func (s *Session) resume() {
	if s.state.Phase != PhasePaused {
		return
	}
	s.state.Phase = PhaseRunning
	s.clock.Resume()
	log.Printf("[Session] %s resumed", s.level)
}

// Input 把指针事件转交给玩法，仅在 Running 阶段有效
func (s *Session) Input(ev InputEvent) {
	if s.state.Phase != PhaseRunning {
		return
	}
	s.mechanic.OnInput(s, ev)
}

// Update 每帧推进延迟回调、倒计时和玩法逻辑，仅在 Running 阶段有效
func (s *Session) Update(dt float64) {
	if s.state.Phase != PhaseRunning {
		return
	}
	s.scheduler.Advance(dt)
	if s.state.Phase != PhaseRunning {
		return
	}
	s.clock.Advance(dt)
	if s.state.Phase != PhaseRunning {
		return
	}
	s.mechanic.OnFrame(s, dt)
	s.state.Score = s.ledger.Total()
}

func (s *Session) handleTick(remaining int) {
	s.state.TimeRemaining = remaining
	s.mechanic.OnTick(s, remaining)
}

// After 在 delay 秒后执行 fn；会话结束、重开或不在 Running 阶段时回调被丢弃
func (s *Session) After(delay float64, fn func()) {
	gen := s.state.Generation
	s.scheduler.After(delay, func() {
		if s.state.Generation != gen || s.state.Phase != PhaseRunning {
			return
		}
		fn()
	})
}

// End 结束本局，只有第一次调用生效
func (s *Session) End(victory bool) {
	if s.state.Phase != PhaseRunning && s.state.Phase != PhasePaused {
		return
	}
	s.state.Phase = PhaseEnded
	s.scheduler.CancelAll()
	s.clock.Stop()

	if victory {
		bonus := TimeBonus(s.state.TimeRemaining, s.profile.TimeLimit, s.profile.VictoryBonus)
		s.ledger.Add(bonus)
		s.feedback.Cue(CueVictory)
	} else {
		s.feedback.Cue(CueDefeat)
	}
	s.state.Score = s.ledger.Total()

	results := Results{
		Level:       s.level,
		Difficulty:  s.profile.Name,
		Victory:     victory,
		Score:       s.state.Score,
		CurrentUser: s.currentUser,
	}

	best, err := s.persistence.BestScore(s.level)
	if err != nil {
		log.Printf("[Session] Warning: failed to read best score for %s: %v", s.level, err)
		s.saveFailed = true
	} else if s.state.Score > best {
		if err := s.persistence.SetBestScore(s.level, s.state.Score); err != nil {
			log.Printf("[Session] Warning: failed to save best score for %s: %v", s.level, err)
			s.saveFailed = true
		} else {
			results.NewRecord = true
			best = s.state.Score
		}
	}
	results.BestScore = best
	results.SaveFailed = s.saveFailed

	if victory && s.leaderboard != nil {
		top, err := s.leaderboard.TopScores(s.level, LeaderboardSize)
		if err != nil {
			log.Printf("[Session] Warning: failed to load leaderboard for %s: %v", s.level, err)
		} else {
			results.Leaderboard = top
		}
	}

	results.Stats = append(s.mechanic.Stats(s), StatLine{
		Label: "Time",
		Value: fmt.Sprintf("%ds", s.profile.TimeLimit-s.state.TimeRemaining),
	})
	results.Actions = []Action{
		{Label: "Restart", Run: s.Restart},
		{Label: "Menu", Run: s.Exit},
	}

	log.Printf("[Session] %s ended: victory=%v score=%d best=%d newRecord=%v",
		s.level, victory, results.Score, results.BestScore, results.NewRecord)

	s.lastResults = &results
	s.modal.ShowResults(results)
}

// Restart 丢弃当前局的所有延迟回调，重建棋盘后立即开始新一局
func (s *Session) Restart() {
	s.scheduler.CancelAll()
	s.clock.Stop()
	s.ledger.Reset()
	s.state = s.freshState(s.state.Generation + 1)
	s.countdownStarted = false
	s.saveFailed = false
	s.lastResults = nil
	if s.modal.IsOpen() {
		s.modal.Close()
	}

	log.Printf("[Session] %s restarted as %s (generation %d)", s.level, s.state.ID, s.state.Generation)

	s.mechanic.Setup(s)
	s.Start()
}

// Exit 放弃本局并返回菜单
func (s *Session) Exit() {
	s.scheduler.CancelAll()
	s.clock.Stop()
	s.state.Generation++
	s.state.Phase = PhaseEnded
	if s.modal.IsOpen() {
		s.modal.Close()
	}
	if s.onExit != nil {
		s.onExit()
	}
}

// Cue 播放反馈提示
func (s *Session) Cue(c Cue) {
	s.feedback.Cue(c)
}

// Popup 在 (x, y) 显示分数变化
func (s *Session) Popup(x, y float64, delta int) {
	if delta == 0 {
		return
	}
	s.feedback.Popup(x, y, delta)
}

// Award 按当前难度倍率计分，返回本次得分
func (s *Session) Award(base, timeBonus int) int {
	points := s.ledger.Award(base, s.profile.ScoreMultiplier, timeBonus)
	s.state.Score = s.ledger.Total()
	return points
}

// Penalize 扣分，返回实际扣除值
func (s *Session) Penalize(amount int) int {
	taken := s.ledger.Penalize(amount)
	s.state.Score = s.ledger.Total()
	return taken
}

// AddPoints 加减分（截断到 0），返回实际变化量
func (s *Session) AddPoints(points int) int {
	delta := s.ledger.Add(points)
	s.state.Score = s.ledger.Total()
	return delta
}

// TimeBonus 按剩余时间比例计算奖励
func (s *Session) TimeBonus(max int) int {
	return TimeBonus(s.state.TimeRemaining, s.profile.TimeLimit, max)
}

// State 返回状态副本
func (s *Session) State() SessionState {
	st := s.state
	st.Score = s.ledger.Total()
	return st
}

// Phase 当前阶段
func (s *Session) Phase() Phase { return s.state.Phase }

// Level 关卡标识
func (s *Session) Level() config.LevelID { return s.level }

// Profile 难度参数
func (s *Session) Profile() config.DifficultyProfile { return s.profile }

// Score 当前总分
func (s *Session) Score() int { return s.ledger.Total() }

// TimeRemaining 剩余秒数
func (s *Session) TimeRemaining() int { return s.state.TimeRemaining }

// SaveFailed 本局成绩是否保存失败
func (s *Session) SaveFailed() bool { return s.saveFailed }

// LastResults 最近一次结束时的结果，未结束为 nil
func (s *Session) LastResults() *Results { return s.lastResults }

// PendingCallbacks 待执行的延迟回调数量
func (s *Session) PendingCallbacks() int { return s.scheduler.Pending() }
