package game

import (
	"fmt"
	"log"

	"github.com/decker502/matreshka/pkg/config"
	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// GameSettings 设备级设置，与用户无关
// 音量属于用户偏好，保存在用户记录里
type GameSettings struct {
	SoundEnabled bool           `yaml:"soundEnabled"`
	Fullscreen   bool           `yaml:"fullscreen"`
	ShowIntro    bool           `yaml:"showIntro"` // 开局前显示规则对话框
	LastLevel    config.LevelID `yaml:"lastLevel"` // 主菜单默认选中的关卡
}

// DefaultSettings 默认设置
func DefaultSettings() *GameSettings {
	return &GameSettings{
		SoundEnabled: true,
		ShowIntro:    true,
		LastLevel:    config.LevelGrowth,
	}
}

const (
	settingsObject   = "settings"
	settingsProperty = "device"
)

// SettingsManager 设备设置的加载与保存
// gdataManager 为 nil 时只在内存中生效
type SettingsManager struct {
	gdataManager *gdata.Manager
	settings     *GameSettings
}

// NewSettingsManager 创建设置管理器，加载失败时回退到默认值
func NewSettingsManager(gdataManager *gdata.Manager) *SettingsManager {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}
	if err := sm.Load(); err != nil {
		log.Printf("[SettingsManager] Warning: %v (using defaults)", err)
	}
	return sm
}

// Load 从 gdata 读取设置
func (sm *SettingsManager) Load() error {
	sm.settings = DefaultSettings()
	if sm.gdataManager == nil || !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if _, err := config.ParseLevelID(string(loaded.LastLevel)); err != nil {
		loaded.LastLevel = config.LevelGrowth
	}
	sm.settings = loaded
	return nil
}

// Save 写入 gdata
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}
	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Settings 当前设置（可直接修改，之后调用 Save 持久化）
func (sm *SettingsManager) Settings() *GameSettings {
	return sm.settings
}

// Update 修改设置并立即保存
func (sm *SettingsManager) Update(fn func(s *GameSettings)) {
	fn(sm.settings)
	if err := sm.Save(); err != nil {
		log.Printf("[SettingsManager] Warning: %v", err)
	}
}
