//go:build android

package utils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// PrepareStorage 创建并检查 /data/data/<包名>/saves
// gdata 不会预先创建该目录；sqlite 文件也放在这里
func PrepareStorage() (string, error) {
	cmdline, err := os.ReadFile("/proc/self/cmdline")
	if err != nil {
		return "", fmt.Errorf("failed to detect Android app: %w", err)
	}
	app := string(bytes.Trim(bytes.SplitN(cmdline, []byte{0}, 2)[0], "\n"))
	if app == "" {
		return "", fmt.Errorf("failed to detect Android app: empty cmdline")
	}

	dir := filepath.Join("/data/data", app, "saves")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create saves directory %s: %w", dir, err)
	}
	probe := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return "", fmt.Errorf("saves directory %s is not writable: %w", dir, err)
	}
	_ = os.Remove(probe)
	return dir, nil
}
