// Package migrations 嵌入成绩库的 SQL 迁移文件
package migrations

import "embed"

// FS 按文件名排序的迁移文件
//
//go:embed *.sql
var FS embed.FS
