//go:build !mobile

// stub.go - 桌面构建时的占位文件
//
// ebitenmobile 绑定代码（mobile.go、embed.go）只在 -tags mobile 时编译，
// 这里保证 ./... 在桌面端也能正常构建。
package mobile

// Dummy 是一个空导出函数，确保包在非移动端构建时也能被引用
func Dummy() {}
