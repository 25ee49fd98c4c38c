//go:build !android

package utils

// PrepareStorage 非 Android 平台由 gdata 自己创建目录，返回空路径
func PrepareStorage() (string, error) {
	return "", nil
}
