// Package app 提供游戏应用的核心包装器
//
// 该包将游戏初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/decker502/matreshka/pkg/config"
	"github.com/decker502/matreshka/pkg/game"
	"github.com/decker502/matreshka/pkg/scenes"
	"github.com/decker502/matreshka/pkg/storage/sqlite"
	"github.com/decker502/matreshka/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"
)

// DefaultProfile 没有指定用户且没有上次登录用户时使用的本地档案
const DefaultProfile = "player"

// DifficultyConfigPath 嵌入的难度配置
const DifficultyConfigPath = "data/difficulty.yaml"

// App 是游戏应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager *game.SceneManager
	store        game.UserStore
	frameTimer   *utils.FrameTimer
	verbose      bool

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化游戏应用
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入资源。
func NewApp(cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app config is required")
	}
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	difficulty, err := config.LoadEmbeddedDifficultyConfig(DifficultyConfigPath)
	if err != nil {
		return nil, fmt.Errorf("难度配置加载失败: %w", err)
	}

	storageDir, err := utils.PrepareStorage()
	if err != nil {
		log.Printf("[App] Warning: %v", err)
	}

	// gdata 打开失败时降级为内存存储
	gdataManager, err := gdata.Open(gdata.Config{AppName: cfg.AppName})
	if err != nil {
		log.Printf("[App] Warning: gdata unavailable, progress will not be saved: %v", err)
		gdataManager = nil
	}

	settings := game.NewSettingsManager(gdataManager)

	store, err := OpenStore(cfg, gdataManager, storageDir)
	if err != nil {
		return nil, fmt.Errorf("存档加载失败: %w", err)
	}

	if err := SignIn(store, cfg.User, cfg.Password); err != nil {
		store.Close()
		return nil, fmt.Errorf("登录失败: %w", err)
	}
	if cfg.Difficulty != "" {
		if err := store.SetUserPreference(game.PrefDifficulty, cfg.Difficulty); err != nil {
			log.Printf("[App] Warning: failed to set difficulty: %v", err)
		}
	}

	audioContext := audio.NewContext(game.SampleRate)
	audioManager := game.NewAudioManager(audioContext, settings, func() float64 {
		pref, err := store.UserPreference(game.PrefVolume)
		if err != nil {
			return game.VolumeOf("")
		}
		return game.VolumeOf(pref)
	})
	log.Printf("[App] AudioManager initialized")

	sceneManager := game.NewSceneManager()
	services := &scenes.Services{
		SceneManager: sceneManager,
		Store:        store,
		Settings:     settings,
		Audio:        audioManager,
		Difficulty:   difficulty,
	}
	scenes.NewFactory(services)

	sceneManager.ShowMenu()
	if cfg.Level != "" {
		level, err := config.ParseLevelID(cfg.Level)
		if err != nil {
			store.Close()
			return nil, err
		}
		pref, _ := store.UserPreference(game.PrefDifficulty)
		d, _ := config.ParseDifficulty(pref)
		log.Printf("[App] Starting level: %s (%s)", level, d)
		if err := sceneManager.LoadLevel(level, d); err != nil {
			store.Close()
			return nil, err
		}
	}

	return &App{
		sceneManager: sceneManager,
		store:        store,
		frameTimer:   utils.NewFrameTimer(nil),
		verbose:      cfg.Verbose,
	}, nil
}

// OpenStore 按配置打开存档后端
//
// 参数：
//   - cfg: 应用配置（Store、SQLitePath）
//   - gdataManager: gdata 管理器，可为 nil
//   - storageDir: 平台存档目录，相对的 sqlite 路径放在这里；为空则使用当前目录
func OpenStore(cfg *config.AppConfig, gdataManager *gdata.Manager, storageDir string) (game.UserStore, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		path := cfg.SQLitePath
		if storageDir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(storageDir, path)
		}
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	case config.StoreGdata, "":
		store, err := game.NewSaveManager(gdataManager)
		if err != nil {
			return nil, fmt.Errorf("open gdata store: %w", err)
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// SignIn 选择启动时的用户
//
// 规则：
//   - 指定了用户和密码：登录；用户不存在时注册
//   - 只指定用户：使用本地无密码档案（不存在则创建）
//   - 都没指定：保留上次登录的用户，没有时使用 DefaultProfile
func SignIn(store game.UserStore, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		if store.CurrentUser() != "" {
			return nil
		}
		return store.UseProfile(DefaultProfile)
	}
	if password == "" {
		return store.UseProfile(username)
	}

	exists, err := userExists(store, username)
	if err != nil {
		return err
	}
	if !exists {
		log.Printf("[App] Registering new user %s", username)
		return store.Register(username, password)
	}
	return store.Login(username, password)
}

func userExists(store game.UserStore, username string) (bool, error) {
	users, err := store.Users()
	if err != nil {
		return false, fmt.Errorf("list users: %w", err)
	}
	for _, u := range users {
		if strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

// Update 更新游戏逻辑
// 每个 tick 调用一次，使用真实帧间隔推进场景
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(config.ScreenWidth, config.ScreenHeight)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
			log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
		} else {
			ebiten.SetFullscreen(true)
		}
	}

	a.sceneManager.Update(a.frameTimer.Tick())
	return nil
}

// Draw 绘制游戏画面
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 全屏时两侧填充黑色，使用线性滤波缩放
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回游戏的逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.ScreenWidth, config.ScreenHeight
}

// Close 结束当前场景并关闭存档
func (a *App) Close() error {
	a.sceneManager.Shutdown()
	return a.store.Close()
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
