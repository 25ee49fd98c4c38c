package utils

import (
	"strings"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

// LineHeight 默认字体的行高（像素）
const LineHeight = 16

var defaultFace text.Face

// DefaultFace 界面使用的位图字体（basicfont 7x13）
func DefaultFace() text.Face {
	if defaultFace == nil {
		defaultFace = text.NewGoXFace(basicfont.Face7x13)
	}
	return defaultFace
}

// WrapText 按单词换行，单个单词超宽时单独成行
//
// 参数:
//   - s: 文本
//   - face: 字体，为 nil 时不换行
//   - maxWidth: 最大宽度（像素）
func WrapText(s string, face text.Face, maxWidth float64) []string {
	if face == nil || maxWidth <= 0 || MeasureText(s, face) <= maxWidth {
		return []string{s}
	}

	var lines []string
	current := ""
	for _, word := range strings.Fields(s) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if current != "" && MeasureText(candidate, face) > maxWidth {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// MeasureText 文本宽度
func MeasureText(s string, face text.Face) float64 {
	if s == "" || face == nil {
		return 0
	}
	w, _ := text.Measure(s, face, 0)
	return w
}
