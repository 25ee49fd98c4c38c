//go:build !mobile

package utils

import "os"

// IsMobile 是否按移动端处理输入提示
// 桌面端可设置 MATRESHKA_MOBILE_EMULATE=1 模拟
func IsMobile() bool {
	return os.Getenv("MATRESHKA_MOBILE_EMULATE") == "1"
}
