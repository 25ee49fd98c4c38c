package systems

import (
	"image/color"

	"github.com/decker502/matreshka/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	colorPanel     = color.RGBA{R: 250, G: 246, B: 236, A: 255}
	colorPanelEdge = color.RGBA{R: 90, G: 70, B: 60, A: 255}
	colorInk       = color.RGBA{R: 40, G: 34, B: 30, A: 255}
	colorMuted     = color.RGBA{R: 120, G: 110, B: 100, A: 255}
	colorShadow    = color.RGBA{R: 0, G: 0, B: 0, A: 120}
	colorOverlay   = color.RGBA{R: 0, G: 0, B: 0, A: 150}
	colorHover     = color.RGBA{R: 255, G: 236, B: 200, A: 255}
	colorPressed   = color.RGBA{R: 230, G: 210, B: 170, A: 255}
	colorDisabled  = color.RGBA{R: 210, G: 205, B: 200, A: 255}
)

// drawText 在 (x, y) 绘制一行文字，y 为行顶
func drawText(screen *ebiten.Image, s string, x, y float64, clr color.Color, align text.Align) {
	drawFadedText(screen, s, x, y, clr, align, 1)
}

// drawFadedText 同 drawText，alpha 额外缩放不透明度
func drawFadedText(screen *ebiten.Image, s string, x, y float64, clr color.Color, align text.Align, alpha float64) {
	if s == "" || alpha <= 0 {
		return
	}
	op := &text.DrawOptions{}
	op.LayoutOptions.PrimaryAlign = align
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	op.ColorScale.ScaleAlpha(float32(alpha))
	text.Draw(screen, s, utils.DefaultFace(), op)
}

// drawShadowText 带 1px 阴影的居中文字
func drawShadowText(screen *ebiten.Image, s string, cx, y float64, clr color.Color) {
	drawText(screen, s, cx+1, y+1, colorShadow, text.AlignCenter)
	drawText(screen, s, cx, y, clr, text.AlignCenter)
}

// drawPanel 带边框的矩形面板
func drawPanel(screen *ebiten.Image, x, y, w, h float64, fill, edge color.Color, strokeWidth float32) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), fill, false)
	if strokeWidth > 0 {
		vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), strokeWidth, edge, false)
	}
}
