package game

import (
	"errors"
	"testing"

	"github.com/decker502/matreshka/pkg/config"
	"github.com/hajimehoshi/ebiten/v2"
)

// MockScene 记录调用情况
type MockScene struct {
	name         string
	updateCalled int
	drawCalled   bool
	left         bool
	deltaTime    float64
}

func (m *MockScene) Update(deltaTime float64) {
	m.updateCalled++
	m.deltaTime = deltaTime
}

func (m *MockScene) Draw(screen *ebiten.Image) {
	m.drawCalled = true
}

func (m *MockScene) OnLeave() {
	m.left = true
}

type mockFactory struct {
	levels []config.LevelID
	fail   bool
}

func (f *mockFactory) NewMenu() Scene {
	return &MockScene{name: "menu"}
}

func (f *mockFactory) NewLevel(level config.LevelID, d config.Difficulty) (Scene, error) {
	if f.fail {
		return nil, errors.New("boom")
	}
	f.levels = append(f.levels, level)
	return &MockScene{name: string(level) + "/" + string(d)}, nil
}

func TestSceneManagerFirstSwitchIsImmediate(t *testing.T) {
	sm := NewSceneManager()
	scene := &MockScene{}
	sm.SwitchTo(scene)

	if sm.CurrentScene() != scene {
		t.Error("First SwitchTo should set the scene immediately")
	}
	sm.Update(0.016)
	if scene.updateCalled != 1 || scene.deltaTime != 0.016 {
		t.Errorf("Expected one update with dt 0.016, got %d/%v", scene.updateCalled, scene.deltaTime)
	}
	sm.Draw(nil)
	if !scene.drawCalled {
		t.Error("Draw was not forwarded")
	}
}

func TestSceneManagerNoScene(t *testing.T) {
	sm := NewSceneManager()
	sm.Update(0.016) // 不应 panic
	sm.Draw(nil)
	sm.Shutdown()
}

// 切换在下一帧生效，旧场景收到 OnLeave
func TestSceneManagerDeferredSwitch(t *testing.T) {
	sm := NewSceneManager()
	first := &MockScene{}
	second := &MockScene{}
	sm.SwitchTo(first)
	sm.SwitchTo(second)

	if sm.CurrentScene() != first {
		t.Fatal("Second switch should be deferred")
	}
	sm.Update(0.016)
	if !first.left {
		t.Error("Old scene should receive OnLeave")
	}
	if first.updateCalled != 0 || second.updateCalled != 1 {
		t.Errorf("Expected only the new scene to update, got %d/%d", first.updateCalled, second.updateCalled)
	}
}

func TestSceneManagerLoadLevel(t *testing.T) {
	sm := NewSceneManager()
	f := &mockFactory{}
	sm.SetSceneFactory(f)
	sm.ShowMenu()

	if err := sm.LoadLevel(config.LevelMatch, config.DifficultyHard); err != nil {
		t.Fatalf("LoadLevel failed: %v", err)
	}
	sm.Update(0.016)

	cur, ok := sm.CurrentScene().(*MockScene)
	if !ok || cur.name != "level2/hard" {
		t.Errorf("Expected level2/hard scene, got %+v", sm.CurrentScene())
	}

	f.fail = true
	if err := sm.LoadLevel(config.LevelSequence, config.DifficultyEasy); err == nil {
		t.Error("Expected factory error to be returned")
	}
	sm.Update(0.016)
	if sm.CurrentScene() != cur {
		t.Error("Failed load should keep the current scene")
	}
}
