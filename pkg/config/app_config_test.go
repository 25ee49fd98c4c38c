package config

import (
	"strings"
	"testing"
)

// TestLoadAppConfigDefaults 测试未设置环境变量时的默认值
func TestLoadAppConfigDefaults(t *testing.T) {
	cfg, err := LoadAppConfig()
	if err != nil {
		t.Fatalf("LoadAppConfig() error: %v", err)
	}
	if cfg.Store != StoreGdata {
		t.Errorf("Store: got %q, want %q", cfg.Store, StoreGdata)
	}
	if cfg.SQLitePath != "matreshka.db" {
		t.Errorf("SQLitePath: got %q, want matreshka.db", cfg.SQLitePath)
	}
	if cfg.Verbose {
		t.Error("Verbose: got true, want false")
	}
}

// TestLoadAppConfigFromEnv 测试环境变量覆盖
func TestLoadAppConfigFromEnv(t *testing.T) {
	t.Setenv("MATRESHKA_STORE", "SQLite")
	t.Setenv("MATRESHKA_SQLITE_PATH", "/tmp/scores.db")
	t.Setenv("MATRESHKA_LEVEL", "4")
	t.Setenv("MATRESHKA_VERBOSE", "true")

	cfg, err := LoadAppConfig()
	if err != nil {
		t.Fatalf("LoadAppConfig() error: %v", err)
	}
	if cfg.Store != StoreSQLite {
		t.Errorf("Store: got %q, want %q", cfg.Store, StoreSQLite)
	}
	if cfg.SQLitePath != "/tmp/scores.db" {
		t.Errorf("SQLitePath: got %q", cfg.SQLitePath)
	}
	if !cfg.Verbose {
		t.Error("Verbose: got false, want true")
	}
	if cfg.AppName != "matreshka" {
		t.Errorf("AppName default: got %q", cfg.AppName)
	}
}

// TestParseEnvError 测试类型错误时的错误前缀
func TestParseEnvError(t *testing.T) {
	t.Setenv("MATRESHKA_VERBOSE", "not-a-bool")

	var cfg AppConfig
	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

// TestAppConfigValidate 测试校验规则
func TestAppConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     AppConfig
		wantErr bool
	}{
		{"gdata ok", AppConfig{Store: "gdata"}, false},
		{"unknown store", AppConfig{Store: "redis"}, true},
		{"sqlite without path", AppConfig{Store: "sqlite"}, true},
		{"bad level", AppConfig{Store: "gdata", Level: "level9"}, true},
		{"bad difficulty", AppConfig{Store: "gdata", Difficulty: "insane"}, true},
		{"level and difficulty", AppConfig{Store: "gdata", Level: "level2", Difficulty: "hard"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
