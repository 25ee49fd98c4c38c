package game

import (
	"log"

	"github.com/decker502/matreshka/pkg/config"
	"github.com/hajimehoshi/ebiten/v2"
)

// SceneFactory 创建场景，避免 game 包依赖 scenes 包
type SceneFactory interface {
	NewMenu() Scene
	NewLevel(level config.LevelID, difficulty config.Difficulty) (Scene, error)
}

// SceneManager 管理当前场景
// 切换请求在下一次 Update 开始时生效，当前帧的 Update 不会被打断
type SceneManager struct {
	currentScene Scene
	pending      Scene
	factory      SceneFactory
}

// NewSceneManager 创建空的场景管理器，使用 SwitchTo 设置初始场景
func NewSceneManager() *SceneManager {
	return &SceneManager{}
}

// SetSceneFactory 设置场景工厂
func (sm *SceneManager) SetSceneFactory(factory SceneFactory) {
	sm.factory = factory
}

// SwitchTo 请求切换场景
// 还没有当前场景时立即生效
func (sm *SceneManager) SwitchTo(scene Scene) {
	if sm.currentScene == nil {
		sm.currentScene = scene
		return
	}
	sm.pending = scene
}

// CurrentScene 当前场景，可能为 nil
func (sm *SceneManager) CurrentScene() Scene {
	return sm.currentScene
}

// ShowMenu 返回主菜单
func (sm *SceneManager) ShowMenu() {
	if sm.factory == nil {
		log.Printf("[SceneManager] Error: scene factory not set")
		return
	}
	sm.SwitchTo(sm.factory.NewMenu())
}

// LoadLevel 进入指定关卡
func (sm *SceneManager) LoadLevel(level config.LevelID, difficulty config.Difficulty) error {
	if sm.factory == nil {
		log.Printf("[SceneManager] Error: scene factory not set")
		return nil
	}
	scene, err := sm.factory.NewLevel(level, difficulty)
	if err != nil {
		log.Printf("[SceneManager] Error: failed to create %s (%s): %v", level, difficulty, err)
		return err
	}
	log.Printf("[SceneManager] Loading %s (%s)", level, difficulty)
	sm.SwitchTo(scene)
	return nil
}

// Update 先应用待切换的场景，再更新当前场景
func (sm *SceneManager) Update(deltaTime float64) {
	if sm.pending != nil {
		if leaver, ok := sm.currentScene.(Leaver); ok {
			leaver.OnLeave()
		}
		sm.currentScene = sm.pending
		sm.pending = nil
	}
	if sm.currentScene != nil {
		sm.currentScene.Update(deltaTime)
	}
}

// Draw 绘制当前场景
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.currentScene != nil {
		sm.currentScene.Draw(screen)
	}
}

// Shutdown 程序退出时通知当前场景
func (sm *SceneManager) Shutdown() {
	if leaver, ok := sm.currentScene.(Leaver); ok {
		leaver.OnLeave()
	}
}
