package scenes

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/decker502/matreshka/pkg/config"
	"github.com/decker502/matreshka/pkg/ecs"
	"github.com/decker502/matreshka/pkg/game"
	"github.com/decker502/matreshka/pkg/systems"
)

// Scene 是 game.Scene 的别名
type Scene = game.Scene

// Services 各场景共享的服务
type Services struct {
	SceneManager *game.SceneManager
	Store        game.UserStore
	Settings     *game.SettingsManager
	Audio        *game.AudioManager
	Difficulty   *config.DifficultyConfig
	// Seed 关卡随机种子，0 表示使用当前时间
	Seed int64
}

func (s *Services) newRand() *rand.Rand {
	seed := s.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Factory 实现 game.SceneFactory
type Factory struct {
	services *Services
}

// NewFactory 创建场景工厂并注册到场景管理器
func NewFactory(services *Services) *Factory {
	f := &Factory{services: services}
	if services.SceneManager != nil {
		services.SceneManager.SetSceneFactory(f)
	}
	return f
}

// NewMenu 创建主菜单
func (f *Factory) NewMenu() game.Scene {
	return NewMenuScene(f.services)
}

// NewLevel 以指定难度创建关卡场景
func (f *Factory) NewLevel(level config.LevelID, difficulty config.Difficulty) (game.Scene, error) {
	return NewLevelScene(f.services, level, difficulty)
}

// newMechanic 创建关卡对应的玩法
func newMechanic(level config.LevelID, em *ecs.EntityManager, rng *rand.Rand) (game.Mechanic, error) {
	switch level {
	case config.LevelGrowth:
		return systems.NewGrowthMechanic(em, rng), nil
	case config.LevelMatch:
		return systems.NewMatchMechanic(em, rng), nil
	case config.LevelSequence:
		return systems.NewSequenceMechanic(em, rng), nil
	case config.LevelAssembly:
		return systems.NewAssemblyMechanic(em, rng), nil
	}
	return nil, fmt.Errorf("unknown level %q", level)
}

// userDifficulty 读取当前用户的难度偏好
func userDifficulty(store game.UserStore) config.Difficulty {
	if store == nil {
		return config.DefaultDifficulty
	}
	pref, err := store.UserPreference(game.PrefDifficulty)
	if err != nil {
		log.Printf("[Scenes] Warning: failed to read difficulty: %v", err)
		return config.DefaultDifficulty
	}
	d, _ := config.ParseDifficulty(pref)
	return d
}
