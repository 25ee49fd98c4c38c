package systems

import (
	"fmt"
	"image/color"

	"github.com/decker502/matreshka/pkg/config"
	"github.com/decker502/matreshka/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	colorHUD      = color.RGBA{R: 60, G: 44, B: 40, A: 255}
	colorHUDText  = color.RGBA{R: 250, G: 240, B: 220, A: 255}
	colorTimeOK   = color.RGBA{R: 106, G: 176, B: 76, A: 255}
	colorTimeLow  = color.RGBA{R: 214, G: 48, B: 49, A: 255}
	colorTimeBack = color.RGBA{R: 30, G: 22, B: 20, A: 255}
)

// lowTimeFraction 剩余时间低于该比例时计时条变红
const lowTimeFraction = 0.2

// HUDInfo 信息栏显示的数据
type HUDInfo struct {
	Title         string
	TimeRemaining int
	TimeLimit     int
	Score         int
	Progress      string // 关卡自定义进度，可为空
	Phase         string
}

// HUDRenderSystem 绘制顶部信息栏：关卡名、剩余时间、分数和进度
// 信息栏上的按钮由 ButtonRenderSystem 绘制
type HUDRenderSystem struct {
	// RightInset 右侧为按钮保留的宽度
	RightInset float64
}

// NewHUDRenderSystem 创建信息栏渲染系统
func NewHUDRenderSystem(rightInset float64) *HUDRenderSystem {
	return &HUDRenderSystem{RightInset: rightInset}
}

// Draw 绘制信息栏
func (s *HUDRenderSystem) Draw(screen *ebiten.Image, info HUDInfo) {
	vector.DrawFilledRect(screen, 0, 0, config.ScreenWidth, float32(config.HUDHeight), colorHUD, false)

	textY := (config.HUDHeight - utils.LineHeight) / 2
	drawText(screen, info.Title, 16, textY, colorHUDText, text.AlignStart)

	// 计时条
	barX, barY, barW, barH := 220.0, config.HUDHeight/2-6, 180.0, 12.0
	vector.DrawFilledRect(screen, float32(barX), float32(barY), float32(barW), float32(barH), colorTimeBack, false)
	fraction := TimeFraction(info.TimeRemaining, info.TimeLimit)
	barColor := colorTimeOK
	if fraction <= lowTimeFraction {
		barColor = colorTimeLow
	}
	vector.DrawFilledRect(screen, float32(barX), float32(barY), float32(barW*fraction), float32(barH), barColor, false)
	drawText(screen, FormatClock(info.TimeRemaining), barX+barW+12, textY, colorHUDText, text.AlignStart)

	status := fmt.Sprintf("Score: %d", info.Score)
	if info.Progress != "" {
		status = info.Progress + "   " + status
	}
	if info.Phase != "" {
		status = "[" + info.Phase + "]  " + status
	}
	drawText(screen, status, config.ScreenWidth-s.RightInset-16, textY, colorHUDText, text.AlignEnd)
}

// TimeFraction 剩余时间比例，限制在 [0, 1]
func TimeFraction(remaining, limit int) float64 {
	if limit <= 0 {
		return 0
	}
	return utils.Clamp01(float64(remaining) / float64(limit))
}

// FormatClock 把秒数格式化为 m:ss
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
