package scenes

import (
	"fmt"
	"image/color"
	"log"
	"strconv"

	"github.com/decker502/matreshka/pkg/components"
	"github.com/decker502/matreshka/pkg/config"
	"github.com/decker502/matreshka/pkg/ecs"
	"github.com/decker502/matreshka/pkg/entities"
	"github.com/decker502/matreshka/pkg/game"
	"github.com/decker502/matreshka/pkg/modules"
	"github.com/decker502/matreshka/pkg/systems"
	"github.com/decker502/matreshka/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// 菜单布局
const (
	menuLevelWidth    = 200.0
	menuLevelHeight   = 120.0
	menuLevelSpacing  = 24.0
	menuLevelTop      = 180.0
	menuOptionWidth   = 200.0
	menuOptionHeight  = 40.0
	menuOptionSpacing = 16.0
	menuOptionTop     = 360.0
)

// volumeSteps 音量按钮循环的档位
var volumeSteps = []float64{0, 0.2, 0.4, 0.6, 0.8, 1}

var (
	menuBackground = color.RGBA{R: 250, G: 240, B: 225, A: 255}
	menuInk        = color.RGBA{R: 60, G: 44, B: 40, A: 255}
)

// MenuScene 主菜单：带最佳成绩的关卡选择，以及当前用户的偏好设置
type MenuScene struct {
	services *Services

	entityManager      *ecs.EntityManager
	buttonSystem       *systems.ButtonSystem
	buttonRenderSystem *systems.ButtonRenderSystem
	dialogs            *modules.DialogModule

	buttons []ecs.EntityID
}

// NewMenuScene 创建主菜单
func NewMenuScene(services *Services) *MenuScene {
	em := ecs.NewEntityManager()
	scene := &MenuScene{
		services:           services,
		entityManager:      em,
		buttonSystem:       systems.NewButtonSystem(em),
		buttonRenderSystem: systems.NewButtonRenderSystem(em),
		dialogs:            modules.NewDialogModule(em),
	}
	scene.rebuild()
	return scene
}

// rebuild 按当前偏好和成绩重建全部按钮
func (s *MenuScene) rebuild() {
	for _, id := range s.buttons {
		s.entityManager.DestroyEntity(id)
	}
	s.entityManager.RemoveMarkedEntities()
	s.buttons = s.buttons[:0]

	total := float64(len(config.AllLevels))*menuLevelWidth + float64(len(config.AllLevels)-1)*menuLevelSpacing
	x := config.ScreenWidth/2 - total/2
	for i, level := range config.AllLevels {
		level := level
		detail := fmt.Sprintf("Best: %d", s.bestScore(level))
		label := fmt.Sprintf("%d. %s", i+1, level.Title())
		s.addButton(x, menuLevelTop, menuLevelWidth, menuLevelHeight, label, detail, s.accentFor(i), func() {
			s.StartLevel(level)
		})
		x += menuLevelWidth + menuLevelSpacing
	}

	options := []struct {
		label   string
		accent  string
		onClick func()
	}{
		{"Difficulty: " + string(s.Difficulty()), "", s.CycleDifficulty},
		{"Avatar: " + string(s.Avatar()), string(s.Avatar()), s.CycleAvatar},
		{fmt.Sprintf("Volume: %d%%", int(s.Volume()*100+0.5)), "", s.CycleVolume},
		{"Sound: " + onOff(s.soundEnabled()), "", s.ToggleSound},
		{"Rules first: " + onOff(s.introEnabled()), "", s.ToggleIntro},
		{"Reset progress", "red", s.ConfirmReset},
	}
	cols := 3
	rowWidth := float64(cols)*menuOptionWidth + float64(cols-1)*menuOptionSpacing
	for i, opt := range options {
		ox := config.ScreenWidth/2 - rowWidth/2 + float64(i%cols)*(menuOptionWidth+menuOptionSpacing)
		oy := menuOptionTop + float64(i/cols)*(menuOptionHeight+menuOptionSpacing)
		s.addButton(ox, oy, menuOptionWidth, menuOptionHeight, opt.label, "", opt.accent, opt.onClick)
	}
}

func (s *MenuScene) addButton(x, y, w, h float64, label, detail, accent string, onClick func()) {
	s.buttons = append(s.buttons, entities.NewButtonEntity(s.entityManager, x, y, w, h, label, detail, accent, onClick))
}

func (s *MenuScene) accentFor(i int) string {
	colors := config.PlayableColors()
	return string(colors[i%len(colors)])
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func (s *MenuScene) bestScore(level config.LevelID) int {
	if s.services.Store == nil {
		return 0
	}
	best, err := s.services.Store.BestScore(level)
	if err != nil {
		log.Printf("[MenuScene] Warning: failed to read best score for %s: %v", level, err)
		return 0
	}
	return best
}

func (s *MenuScene) preference(field string) string {
	def, _ := game.DefaultPreference(field)
	if s.services.Store == nil {
		return def
	}
	v, err := s.services.Store.UserPreference(field)
	if err != nil || v == "" {
		return def
	}
	return v
}

func (s *MenuScene) setPreference(field, value string) {
	if s.services.Store == nil {
		return
	}
	if err := s.services.Store.SetUserPreference(field, value); err != nil {
		log.Printf("[MenuScene] Warning: failed to save %s: %v", field, err)
		s.dialogs.ShowBlockingMessage("Not saved", []string{err.Error()}, nil)
	}
}

// Difficulty 当前用户的难度
func (s *MenuScene) Difficulty() config.Difficulty {
	return userDifficulty(s.services.Store)
}

// Avatar 当前用户的头像颜色
func (s *MenuScene) Avatar() config.DollColor {
	return config.DollColor(s.preference(game.PrefAvatarColor))
}

// Volume 当前用户的音量（0-1）
func (s *MenuScene) Volume() float64 {
	return game.VolumeOf(s.preference(game.PrefVolume))
}

func (s *MenuScene) soundEnabled() bool {
	return s.services.Settings == nil || s.services.Settings.Settings().SoundEnabled
}

func (s *MenuScene) introEnabled() bool {
	return s.services.Settings == nil || s.services.Settings.Settings().ShowIntro
}

// CycleDifficulty 切换到下一个难度
func (s *MenuScene) CycleDifficulty() {
	s.setPreference(game.PrefDifficulty, string(s.Difficulty().Next()))
	s.rebuild()
}

// CycleAvatar 切换到下一个头像颜色
func (s *MenuScene) CycleAvatar() {
	s.setPreference(game.PrefAvatarColor, string(s.Avatar().NextColor()))
	s.rebuild()
}

// CycleVolume 切换到下一档音量，并用新音量播放点击音
func (s *MenuScene) CycleVolume() {
	next := volumeSteps[0]
	current := s.Volume()
	for _, v := range volumeSteps {
		if v > current+0.001 {
			next = v
			break
		}
	}
	s.setPreference(game.PrefVolume, strconv.FormatFloat(next, 'f', 2, 64))
	if s.services.Audio != nil {
		s.services.Audio.Cue(game.CueClick)
	}
	s.rebuild()
}

// ToggleSound 开关本机的提示音
func (s *MenuScene) ToggleSound() {
	if s.services.Settings != nil {
		s.services.Settings.Update(func(gs *game.GameSettings) { gs.SoundEnabled = !gs.SoundEnabled })
	}
	s.rebuild()
}

// ToggleIntro 开关每关开始前的规则对话框
func (s *MenuScene) ToggleIntro() {
	if s.services.Settings != nil {
		s.services.Settings.Update(func(gs *game.GameSettings) { gs.ShowIntro = !gs.ShowIntro })
	}
	s.rebuild()
}

// ConfirmReset 清空当前用户成绩前先确认
func (s *MenuScene) ConfirmReset() {
	s.dialogs.ShowBlockingMessage("Reset progress", []string{
		"All of your best scores will be deleted.",
		"This cannot be undone.",
	}, []game.Action{
		{Label: "Reset", Run: s.ResetProgress},
		{Label: "Cancel"},
	})
}

// ResetProgress 清空当前用户的成绩
func (s *MenuScene) ResetProgress() {
	if s.services.Store == nil {
		return
	}
	if err := s.services.Store.ResetProgress(); err != nil {
		log.Printf("[MenuScene] Warning: reset failed: %v", err)
		s.dialogs.ShowBlockingMessage("Reset failed", []string{err.Error()}, nil)
		return
	}
	log.Printf("[MenuScene] Progress reset for %q", s.services.Store.CurrentUser())
	s.rebuild()
}

// StartLevel 以当前难度进入关卡
func (s *MenuScene) StartLevel(level config.LevelID) {
	if s.services.Settings != nil {
		s.services.Settings.Update(func(gs *game.GameSettings) { gs.LastLevel = level })
	}
	if s.services.SceneManager == nil {
		return
	}
	if err := s.services.SceneManager.LoadLevel(level, s.Difficulty()); err != nil {
		s.dialogs.ShowBlockingMessage("Cannot start level", []string{err.Error()}, nil)
	}
}

// Button 按文字查找菜单按钮，找不到返回 nil
func (s *MenuScene) Button(label string) *components.ButtonComponent {
	for _, id := range s.buttons {
		if b, ok := ecs.GetComponent[*components.ButtonComponent](s.entityManager, id); ok && b.Label == label {
			return b
		}
	}
	return nil
}

// Update 处理对话框、按钮和 1-4 关卡快捷键
func (s *MenuScene) Update(deltaTime float64) {
	utils.UpdateLastTouchPosition()
	if s.dialogs.Update(deltaTime) {
		s.entityManager.RemoveMarkedEntities()
		return
	}
	if !s.buttonSystem.Update(deltaTime) {
		for i, key := range []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4} {
			if inpututil.IsKeyJustPressed(key) {
				s.StartLevel(config.AllLevels[i])
				break
			}
		}
	}
	s.entityManager.RemoveMarkedEntities()
}

// Draw 绘制菜单
func (s *MenuScene) Draw(screen *ebiten.Image) {
	screen.Fill(menuBackground)

	title := &text.DrawOptions{}
	title.LayoutOptions.PrimaryAlign = text.AlignCenter
	title.GeoM.Scale(3, 3)
	title.GeoM.Translate(config.ScreenWidth/2, 60)
	title.ColorScale.ScaleWithColor(menuInk)
	text.Draw(screen, "Matreshka", utils.DefaultFace(), title)

	player := "Player: guest"
	if s.services.Store != nil && s.services.Store.CurrentUser() != "" {
		player = "Player: " + s.services.Store.CurrentUser()
	}
	op := &text.DrawOptions{}
	op.LayoutOptions.PrimaryAlign = text.AlignCenter
	op.GeoM.Translate(config.ScreenWidth/2, 130)
	op.ColorScale.ScaleWithColor(s.Avatar().RGBA())
	text.Draw(screen, player, utils.DefaultFace(), op)

	hint := &text.DrawOptions{}
	hint.LayoutOptions.PrimaryAlign = text.AlignCenter
	hint.GeoM.Translate(config.ScreenWidth/2, config.ScreenHeight-32)
	hint.ColorScale.ScaleWithColor(menuInk)
	hint.ColorScale.ScaleAlpha(0.6)
	text.Draw(screen, ControlsHint(), utils.DefaultFace(), hint)

	s.buttonRenderSystem.Draw(screen)
	s.dialogs.Draw(screen)
}

// ControlsHint 菜单底部的操作提示
func ControlsHint() string {
	if utils.IsMobile() {
		return "Tap a level to play. Use the Pause and Rules buttons during a game."
	}
	return "Keys 1-4 start a level. Esc pauses, F1 or right click shows the rules, F11 toggles fullscreen."
}
