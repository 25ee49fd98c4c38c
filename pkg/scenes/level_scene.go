package scenes

import (
	"fmt"
	"image/color"
	"log"

	"github.com/decker502/matreshka/pkg/config"
	"github.com/decker502/matreshka/pkg/ecs"
	"github.com/decker502/matreshka/pkg/entities"
	"github.com/decker502/matreshka/pkg/game"
	"github.com/decker502/matreshka/pkg/modules"
	"github.com/decker502/matreshka/pkg/systems"
	"github.com/decker502/matreshka/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// 信息栏按钮布局（右上角）
const (
	hudButtonWidth   = 84.0
	hudButtonHeight  = 32.0
	hudButtonSpacing = 8.0
)

var levelBackground = color.RGBA{R: 244, G: 236, B: 220, A: 255}

// progressReporter 在信息栏显示进度的玩法实现该接口
type progressReporter interface {
	Progress() string
}

// dragReporter 有可拖动套娃的玩法实现该接口
type dragReporter interface {
	Dragging() ecs.EntityID
}

// LevelScene 关卡场景，运行一局会话
//
// 每帧先分发快捷键、对话框输入、信息栏按钮和指针事件，
// 然后推进会话和特效系统。
type LevelScene struct {
	services   *Services
	level      config.LevelID
	difficulty config.Difficulty

	entityManager *ecs.EntityManager
	mechanic      game.Mechanic
	session       *game.Session
	dialogs       *modules.DialogModule

	buttonSystem       *systems.ButtonSystem
	buttonRenderSystem *systems.ButtonRenderSystem
	dollRenderSystem   *systems.DollRenderSystem
	popupSystem        *systems.PopupSystem
	lifetimeSystem     *systems.LifetimeSystem
	hudRenderSystem    *systems.HUDRenderSystem

	drag *utils.DragManager

	left bool
}

// levelFeedback 通过音频管理器播放提示音，并生成得分飘字
type levelFeedback struct {
	audio *game.AudioManager
	em    *ecs.EntityManager
}

func (f levelFeedback) Cue(c game.Cue) {
	if f.audio != nil {
		f.audio.Cue(c)
	}
}

func (f levelFeedback) Popup(x, y float64, delta int) {
	if _, err := entities.NewScorePopupEntity(f.em, x, y, delta); err != nil {
		log.Printf("[LevelScene] Warning: failed to create popup: %v", err)
	}
}

// NewLevelScene 创建关卡场景并打开开始对话框
// 设置中关闭了开局说明时直接开始
//
// 参数：
//   - services: 共享服务，Store 和 Difficulty 必须提供
//   - level: 关卡
//   - difficulty: 难度
func NewLevelScene(services *Services, level config.LevelID, difficulty config.Difficulty) (*LevelScene, error) {
	if services == nil || services.Store == nil || services.Difficulty == nil {
		return nil, fmt.Errorf("level scene requires a store and a difficulty config")
	}
	profile, err := services.Difficulty.Profile(level, difficulty)
	if err != nil {
		return nil, fmt.Errorf("load %s profile: %w", level, err)
	}

	em := ecs.NewEntityManager()
	mechanic, err := newMechanic(level, em, services.newRand())
	if err != nil {
		return nil, err
	}

	scene := &LevelScene{
		services:           services,
		level:              level,
		difficulty:         difficulty,
		entityManager:      em,
		mechanic:           mechanic,
		dialogs:            modules.NewDialogModule(em),
		buttonSystem:       systems.NewButtonSystem(em),
		buttonRenderSystem: systems.NewButtonRenderSystem(em),
		dollRenderSystem:   systems.NewDollRenderSystem(em),
		popupSystem:        systems.NewPopupSystem(em),
		lifetimeSystem:     systems.NewLifetimeSystem(em),
		hudRenderSystem:    systems.NewHUDRenderSystem(2*hudButtonWidth + 2*hudButtonSpacing),
		drag:               utils.NewDragManager(),
	}

	scene.session, err = game.NewSession(game.SessionConfig{
		Profile:     profile,
		Mechanic:    mechanic,
		Persistence: services.Store,
		Modal:       scene.dialogs,
		Leaderboard: services.Store,
		Feedback:    levelFeedback{audio: services.Audio, em: em},
		CurrentUser: services.Store.CurrentUser(),
		OnExit:      scene.backToMenu,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s session: %w", level, err)
	}

	scene.createHUDButtons()

	if services.Settings == nil || services.Settings.Settings().ShowIntro {
		scene.session.ShowIntro()
	} else {
		scene.session.Start()
	}

	log.Printf("[LevelScene] Created %s (%s)", level, difficulty)
	return scene, nil
}

func (s *LevelScene) createHUDButtons() {
	x := config.ScreenWidth - hudButtonSpacing - hudButtonWidth
	y := (config.HUDHeight - hudButtonHeight) / 2
	entities.NewButtonEntity(s.entityManager, x, y, hudButtonWidth, hudButtonHeight, "Rules", "", "", s.session.ShowRules)
	x -= hudButtonWidth + hudButtonSpacing
	entities.NewButtonEntity(s.entityManager, x, y, hudButtonWidth, hudButtonHeight, "Pause", "", "", s.session.RequestPause)
}

// backToMenu 会话的退出回调
func (s *LevelScene) backToMenu() {
	if s.left || s.services.SceneManager == nil {
		return
	}
	s.services.SceneManager.ShowMenu()
}

// Session 当前会话
func (s *LevelScene) Session() *game.Session { return s.session }

// Dialogs 对话框模块
func (s *LevelScene) Dialogs() *modules.DialogModule { return s.dialogs }

// Update 推进一帧
func (s *LevelScene) Update(deltaTime float64) {
	utils.UpdateLastTouchPosition()
	s.handleKeys()

	switch {
	case s.dialogs.Update(deltaTime):
		s.drag.Reset()
	case s.buttonSystem.Update(deltaTime):
		s.drag.Reset()
	default:
		s.Feed(s.drag.Update())
	}

	s.Step(deltaTime)
}

// handleKeys Esc 暂停/继续，F1 或右键显示规则
func (s *LevelScene) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		s.session.TogglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) || utils.IsRightClick() {
		s.session.ShowRules()
	}
}

// Feed 把拖动状态转换为会话的指针事件
func (s *LevelScene) Feed(info utils.DragInfo) {
	ev := game.InputEvent{X: float64(info.CurrentX), Y: float64(info.CurrentY)}
	switch info.State {
	case utils.DragStateStarted:
		ev.Kind = game.PointerDown
	case utils.DragStateDragging:
		if !info.Moved {
			return
		}
		ev.Kind = game.PointerMove
	case utils.DragStateEnded:
		ev.Kind = game.PointerUp
	default:
		return
	}
	s.session.Input(ev)
}

// Step 推进会话和特效，不读取输入
func (s *LevelScene) Step(deltaTime float64) {
	s.session.Update(deltaTime)
	s.popupSystem.Update(deltaTime)
	s.lifetimeSystem.Update(deltaTime)
	s.entityManager.RemoveMarkedEntities()

	if d, ok := s.mechanic.(dragReporter); ok {
		s.dollRenderSystem.SetFocus(d.Dragging())
	}
}

// HUDInfo 信息栏显示的数据
func (s *LevelScene) HUDInfo() systems.HUDInfo {
	info := systems.HUDInfo{
		Title:         s.level.Title(),
		TimeRemaining: s.session.TimeRemaining(),
		TimeLimit:     s.session.Profile().TimeLimit,
		Score:         s.session.Score(),
	}
	if p, ok := s.mechanic.(progressReporter); ok {
		info.Progress = p.Progress()
	}
	if s.session.Phase() == game.PhasePaused {
		info.Phase = "Paused"
	}
	return info
}

// Draw 绘制关卡
func (s *LevelScene) Draw(screen *ebiten.Image) {
	screen.Fill(levelBackground)
	s.dollRenderSystem.Draw(screen)
	s.popupSystem.Draw(screen)
	s.hudRenderSystem.Draw(screen, s.HUDInfo())
	s.buttonRenderSystem.Draw(screen)
	s.dialogs.Draw(screen)
}

// OnLeave 场景被替换时放弃当前会话
func (s *LevelScene) OnLeave() {
	if s.left {
		return
	}
	s.left = true
	s.session.Exit()
	log.Printf("[LevelScene] Left %s", s.level)
}
