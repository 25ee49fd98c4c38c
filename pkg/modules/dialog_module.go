package modules

import (
	"fmt"
	"log"
	"strings"

	"github.com/decker502/matreshka/pkg/components"
	"github.com/decker502/matreshka/pkg/ecs"
	"github.com/decker502/matreshka/pkg/entities"
	"github.com/decker502/matreshka/pkg/game"
	"github.com/decker502/matreshka/pkg/systems"
	"github.com/hajimehoshi/ebiten/v2"
)

// 对话框标题颜色
const (
	accentMessage = "bordo"
	accentVictory = "green"
	accentDefeat  = "red"
)

// DialogModule 模态对话框模块，实现 game.Modal
//
// 同一时间只有一个对话框。按钮点击时先关闭对话框，再执行按钮动作，
// 所以动作里可以立即打开下一个对话框。
//
// 使用场景：
//   - LevelScene: 开始说明、暂停、规则、结果面板
//   - MenuScene: 重置确认、错误提示
type DialogModule struct {
	entityManager *ecs.EntityManager

	inputSystem  *systems.DialogInputSystem
	renderSystem *systems.DialogRenderSystem

	dialogEntity ecs.EntityID

	onPause  func()
	onResume func()
}

// NewDialogModule 创建对话框模块
func NewDialogModule(em *ecs.EntityManager) *DialogModule {
	return &DialogModule{
		entityManager: em,
		inputSystem:   systems.NewDialogInputSystem(em),
		renderSystem:  systems.NewDialogRenderSystem(em),
	}
}

// OnPauseRequested 设置暂停钩子（阻塞消息打开时调用）
func (m *DialogModule) OnPauseRequested(fn func()) { m.onPause = fn }

// OnResumeRequested 设置恢复钩子（Close 时调用）
func (m *DialogModule) OnResumeRequested(fn func()) { m.onResume = fn }

// ShowBlockingMessage 打开消息对话框并调用暂停钩子
// 已有对话框时直接替换
func (m *DialogModule) ShowBlockingMessage(title string, body []string, actions []game.Action) {
	if err := m.open(components.DialogMessage, title, body, accentMessage, actions); err != nil {
		log.Printf("[DialogModule] Error: failed to show %q: %v", title, err)
		return
	}
	if m.onPause != nil {
		m.onPause()
	}
}

// ShowResults 打开结果面板，替换已有对话框，不调用任何钩子
func (m *DialogModule) ShowResults(results game.Results) {
	title, accent := "Game over", accentDefeat
	if results.Victory {
		title, accent = "Level complete!", accentVictory
	}
	if err := m.open(components.DialogResults, title, ResultLines(results), accent, results.Actions); err != nil {
		log.Printf("[DialogModule] Error: failed to show results: %v", err)
	}
}

// Close 关闭对话框并调用恢复钩子；没有对话框时什么都不做
func (m *DialogModule) Close() {
	if m.dialogEntity == 0 {
		return
	}
	m.discard()
	if m.onResume != nil {
		m.onResume()
	}
}

// IsOpen 是否有打开的对话框
func (m *DialogModule) IsOpen() bool {
	return m.dialogEntity != 0
}

// Update 处理对话框输入
// 返回 true 表示对话框拦截了本帧输入
func (m *DialogModule) Update(deltaTime float64) bool {
	if !m.IsOpen() {
		return false
	}
	m.inputSystem.Update(deltaTime)
	return true
}

// HandleRelease 在 (x, y) 释放指针（测试和键盘快捷操作使用）
func (m *DialogModule) HandleRelease(x, y float64) bool {
	return m.inputSystem.HandleRelease(x, y)
}

// Draw 绘制遮罩和对话框
func (m *DialogModule) Draw(screen *ebiten.Image) {
	m.renderSystem.Draw(screen)
}

// Dialog 当前对话框组件，没有时返回 nil
func (m *DialogModule) Dialog() *components.DialogComponent {
	if m.dialogEntity == 0 {
		return nil
	}
	dialog, ok := ecs.GetComponent[*components.DialogComponent](m.entityManager, m.dialogEntity)
	if !ok {
		return nil
	}
	return dialog
}

// Trigger 按标签点击当前对话框的按钮，返回是否找到
func (m *DialogModule) Trigger(label string) bool {
	dialog := m.Dialog()
	if dialog == nil {
		return false
	}
	for _, b := range dialog.Buttons {
		if b.Label == label {
			if b.OnClick != nil {
				b.OnClick()
			}
			return true
		}
	}
	return false
}

func (m *DialogModule) open(kind components.DialogKind, title string, body []string, accent string, actions []game.Action) error {
	if len(actions) == 0 {
		actions = []game.Action{{Label: "OK"}}
	}
	m.discard()

	specs := make([]entities.ButtonSpec, 0, len(actions))
	for _, action := range actions {
		action := action
		specs = append(specs, entities.ButtonSpec{
			Label:   action.Label,
			OnClick: func() { m.activate(action) },
		})
	}

	id, err := entities.NewDialogEntity(m.entityManager, kind, title, body, accent, specs)
	if err != nil {
		return fmt.Errorf("create dialog: %w", err)
	}
	m.dialogEntity = id
	log.Printf("[DialogModule] Opened %q with %d button(s)", title, len(specs))
	return nil
}

// activate 先关闭对话框再执行动作
func (m *DialogModule) activate(action game.Action) {
	m.Close()
	if action.Run != nil {
		action.Run()
	}
}

// discard 删除当前对话框实体，不调用钩子
// 实体在帧末才真正删除，先隐藏以免同一帧内仍被绘制或点击
func (m *DialogModule) discard() {
	if m.dialogEntity == 0 {
		return
	}
	if dialog, ok := ecs.GetComponent[*components.DialogComponent](m.entityManager, m.dialogEntity); ok {
		dialog.IsVisible = false
	}
	m.entityManager.DestroyEntity(m.dialogEntity)
	m.dialogEntity = 0
}

// ResultLines 结果面板正文
func ResultLines(r game.Results) []string {
	lines := []string{
		fmt.Sprintf("%s (%s)", r.Level.Title(), r.Difficulty),
		"",
		fmt.Sprintf("Score: %d", r.Score),
	}
	best := fmt.Sprintf("Best: %d", r.BestScore)
	if r.NewRecord {
		best += "   New record!"
	}
	lines = append(lines, best)
	if r.SaveFailed {
		lines = append(lines, "Your score could not be saved.")
	}

	if len(r.Stats) > 0 {
		lines = append(lines, "")
		for _, st := range r.Stats {
			lines = append(lines, fmt.Sprintf("%s: %s", st.Label, st.Value))
		}
	}

	if len(r.Leaderboard) > 0 {
		lines = append(lines, "", "Leaderboard")
		for i, e := range r.Leaderboard {
			row := fmt.Sprintf("%2d. %-16s %6d", i+1, e.Username, e.Score)
			if r.CurrentUser != "" && strings.EqualFold(e.Username, r.CurrentUser) {
				row += "  < you"
			}
			lines = append(lines, row)
		}
	}
	return lines
}
