package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// 存档后端
const (
	StoreGdata  = "gdata"
	StoreSQLite = "sqlite"
)

// AppConfig 应用启动配置，来自环境变量，命令行参数可以覆盖
type AppConfig struct {
	// Store 存档后端：gdata（默认，跨平台用户目录）或 sqlite
	Store string `env:"MATRESHKA_STORE" envDefault:"gdata"`
	// SQLitePath sqlite 后端的数据库文件
	SQLitePath string `env:"MATRESHKA_SQLITE_PATH" envDefault:"matreshka.db"`
	// AppName gdata 使用的应用名（决定存档目录）
	AppName string `env:"MATRESHKA_APP_NAME" envDefault:"matreshka"`
	// User 启动时使用的用户档案
	User string `env:"MATRESHKA_USER"`
	// Password 用户密码，为空表示本地无密码档案
	Password string `env:"MATRESHKA_PASSWORD"`
	// Level 直接进入的关卡（如 "level4"），为空则显示主菜单
	Level string `env:"MATRESHKA_LEVEL"`
	// Difficulty 启动时覆盖用户的难度偏好
	Difficulty string `env:"MATRESHKA_DIFFICULTY"`
	// Verbose 启用详细日志
	Verbose bool `env:"MATRESHKA_VERBOSE" envDefault:"false"`
}

// ParseEnv 从环境变量加载配置
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadAppConfig 读取环境变量并校验
func LoadAppConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验存档后端和关卡参数
func (c *AppConfig) Validate() error {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	switch c.Store {
	case StoreGdata:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite store requires MATRESHKA_SQLITE_PATH")
		}
	default:
		return fmt.Errorf("store must be one of: gdata, sqlite, got %q", c.Store)
	}
	if c.Level != "" {
		if _, err := ParseLevelID(c.Level); err != nil {
			return err
		}
	}
	if c.Difficulty != "" {
		if _, ok := ParseDifficulty(c.Difficulty); !ok {
			return fmt.Errorf("difficulty must be one of: easy, medium, hard, got %q", c.Difficulty)
		}
	}
	return nil
}
