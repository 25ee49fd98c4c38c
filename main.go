package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/decker502/matreshka/pkg/app"
	"github.com/decker502/matreshka/pkg/config"
	"github.com/decker502/matreshka/pkg/embedded"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	verbose    = flag.Bool("verbose", false, "显示详细调试信息")
	level      = flag.String("level", "", "直接进入关卡（level1..level4 或 1..4）")
	user       = flag.String("user", "", "使用的用户档案")
	password   = flag.String("password", "", "用户密码，为空使用本地无密码档案")
	difficulty = flag.String("difficulty", "", "覆盖难度：easy, medium, hard")
	store      = flag.String("store", "", "存档后端：gdata 或 sqlite")
	sqlitePath = flag.String("sqlite", "", "sqlite 数据库文件")
)

// loadConfig 读取环境变量，再用命令行参数覆盖
func loadConfig() (*config.AppConfig, error) {
	cfg := &config.AppConfig{}
	if err := config.ParseEnv(cfg); err != nil {
		return nil, err
	}
	if *verbose {
		cfg.Verbose = true
	}
	if *level != "" {
		cfg.Level = *level
	}
	if *user != "" {
		cfg.User = *user
	}
	if *password != "" {
		cfg.Password = *password
	}
	if *difficulty != "" {
		cfg.Difficulty = *difficulty
	}
	if *store != "" {
		cfg.Store = *store
	}
	if *sqlitePath != "" {
		cfg.SQLitePath = *sqlitePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置错误: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	// 初始化嵌入资源（dataFS 在 embed.go 中声明）
	embedded.Init(dataFS)

	gameApp, err := app.NewApp(cfg)
	if err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("游戏初始化失败: %v", err)
	}

	ebiten.SetWindowSize(config.ScreenWidth, config.ScreenHeight)
	ebiten.SetWindowTitle("Matreshka")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	runErr := ebiten.RunGame(gameApp)
	if err := gameApp.Close(); err != nil {
		log.Printf("[Main] close: %v", err)
	}
	if runErr != nil {
		log.SetOutput(os.Stderr)
		log.Fatal(runErr)
	}
}
