package systems

import (
	"image/color"
	"sort"

	"github.com/decker502/matreshka/pkg/components"
	"github.com/decker502/matreshka/pkg/config"
	"github.com/decker502/matreshka/pkg/ecs"
	"github.com/decker502/matreshka/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	colorFace     = color.RGBA{R: 255, G: 228, B: 196, A: 255}
	colorCardBack = color.RGBA{R: 120, G: 72, B: 60, A: 255}
	colorCardFace = color.RGBA{R: 255, G: 252, B: 245, A: 255}
	colorZone     = color.RGBA{R: 0, G: 0, B: 0, A: 28}
)

// cardLetterScale 卡片字母的放大倍数（基础字体只有 13px）
const cardLetterScale = 4.0

// DollRenderSystem 绘制关卡中的套娃和卡片
//
// 绘制顺序：
//  1. 第一关的套娃（外框、已放下的轮廓、当前填充）
//  2. 第二、三关的卡片
//  3. 第四关的区域、组装区里的套娃（从外到内）、漂浮的套娃、正在拖拽的套娃
type DollRenderSystem struct {
	entityManager *ecs.EntityManager
	focus         ecs.EntityID
}

// NewDollRenderSystem 创建套娃渲染系统
func NewDollRenderSystem(em *ecs.EntityManager) *DollRenderSystem {
	return &DollRenderSystem{entityManager: em}
}

// SetFocus 指定最后绘制的实体（正在拖拽的套娃），0 表示没有
func (s *DollRenderSystem) SetFocus(id ecs.EntityID) {
	s.focus = id
}

// Draw 绘制全部套娃和卡片
func (s *DollRenderSystem) Draw(screen *ebiten.Image) {
	s.drawGrowthDolls(screen)
	s.drawCards(screen)
	s.drawPieces(screen)
}

func (s *DollRenderSystem) drawGrowthDolls(screen *ebiten.Image) {
	ids := ecs.GetEntitiesWith2[*components.GrowthDollComponent, *components.PositionComponent](s.entityManager)
	for _, id := range ids {
		doll, _ := ecs.GetComponent[*components.GrowthDollComponent](s.entityManager, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)
		h := config.GrowthBaseSize * doll.Scale
		if doll.Settled {
			strokeDoll(screen, pos.X, pos.Y, h, doll.Color.RGBA(), 3)
			continue
		}
		fillDoll(screen, pos.X, pos.Y, h, doll.Color.RGBA(), 1)
	}
}

func (s *DollRenderSystem) drawCards(screen *ebiten.Image) {
	ids := ecs.GetEntitiesWith2[*components.CardComponent, *components.PositionComponent](s.entityManager)
	for _, id := range ids {
		card, _ := ecs.GetComponent[*components.CardComponent](s.entityManager, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)
		r := cardRect(pos)

		if !card.Revealed && !card.Matched {
			drawPanel(screen, r.X, r.Y, r.W, r.H, colorCardBack, colorPanelEdge, 2)
			vector.StrokeCircle(screen, float32(pos.X), float32(pos.Y), float32(r.W/4), 2, colorCardFace, true)
			continue
		}

		alpha := 1.0
		if card.Matched {
			alpha = 0.45
		}
		if config.IsValidDollColor(card.Value) {
			// 配对卡片：白底，画一个对应颜色的套娃
			drawPanel(screen, r.X, r.Y, r.W, r.H, colorCardFace, colorPanelEdge, 2)
			fillDoll(screen, pos.X, pos.Y, r.H*0.75, fadeColor(card.Color.RGBA(), alpha), alpha)
			continue
		}
		// 字母卡片：彩色底，大号字母
		drawPanel(screen, r.X, r.Y, r.W, r.H, fadeColor(card.Color.RGBA(), alpha), colorPanelEdge, 2)
		drawLetter(screen, card.Value, pos.X, pos.Y)
	}
}

func (s *DollRenderSystem) drawPieces(screen *ebiten.Image) {
	ids := ecs.GetEntitiesWith2[*components.PieceComponent, *components.PositionComponent](s.entityManager)
	if len(ids) == 0 {
		return
	}

	zone := config.AssemblyZone
	drawPanel(screen, zone.X, zone.Y, zone.W, zone.H, colorZone, colorPanelEdge, 2)

	var assembled, floating []ecs.EntityID
	for _, id := range ids {
		if id == s.focus {
			continue
		}
		piece, _ := ecs.GetComponent[*components.PieceComponent](s.entityManager, id)
		if piece.IsMother || piece.IsInMother {
			assembled = append(assembled, id)
		} else {
			floating = append(floating, id)
		}
	}
	// 外层先画，内层叠在上面
	sort.SliceStable(assembled, func(i, j int) bool {
		a, _ := ecs.GetComponent[*components.PieceComponent](s.entityManager, assembled[i])
		b, _ := ecs.GetComponent[*components.PieceComponent](s.entityManager, assembled[j])
		return a.Size > b.Size
	})

	for _, id := range assembled {
		s.drawPiece(screen, id)
	}
	for _, id := range floating {
		s.drawPiece(screen, id)
	}
	if s.focus != 0 && ecs.HasComponent[*components.PieceComponent](s.entityManager, s.focus) {
		s.drawPiece(screen, s.focus)
	}
}

func (s *DollRenderSystem) drawPiece(screen *ebiten.Image, id ecs.EntityID) {
	piece, _ := ecs.GetComponent[*components.PieceComponent](s.entityManager, id)
	pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)
	_, h := config.PieceExtent(piece.Size)
	clr := piece.Color.RGBA()
	if piece.IsOpen {
		// 打开的娃：下半身留在原处，上半身抬起并半透明
		strokeDoll(screen, pos.X, pos.Y, h, clr, 2)
		fillDoll(screen, pos.X, pos.Y-h*0.35, h, fadeColor(clr, 0.35), 0.35)
		return
	}
	fillDoll(screen, pos.X, pos.Y, h, clr, 1)
}

// dollShape 套娃轮廓：底部身体圆、顶部头圆和中间躯干
type dollShape struct {
	bodyX, bodyY, bodyR float32
	headX, headY, headR float32
	torsoX, torsoY      float32
	torsoW, torsoH      float32
}

func shapeOf(cx, cy, h float64) dollShape {
	w := h * config.PieceAspect
	bodyR := w / 2
	headR := w * 0.36
	bodyY := cy + h/2 - bodyR
	headY := cy - h/2 + headR
	return dollShape{
		bodyX: float32(cx), bodyY: float32(bodyY), bodyR: float32(bodyR),
		headX: float32(cx), headY: float32(headY), headR: float32(headR),
		torsoX: float32(cx - w*0.42), torsoY: float32(headY),
		torsoW: float32(w * 0.84), torsoH: float32(bodyY - headY),
	}
}

// fillDoll 绘制填充的套娃，(cx, cy) 为中心，h 为高度
func fillDoll(screen *ebiten.Image, cx, cy, h float64, clr color.RGBA, alpha float64) {
	if h <= 0 {
		return
	}
	sh := shapeOf(cx, cy, h)
	vector.DrawFilledCircle(screen, sh.bodyX, sh.bodyY, sh.bodyR, clr, true)
	vector.DrawFilledRect(screen, sh.torsoX, sh.torsoY, sh.torsoW, sh.torsoH, clr, true)
	vector.DrawFilledCircle(screen, sh.headX, sh.headY, sh.headR, clr, true)
	vector.DrawFilledCircle(screen, sh.headX, sh.headY+sh.headR*0.15, sh.headR*0.7, fadeColor(colorFace, alpha), true)
}

// strokeDoll 绘制套娃轮廓
func strokeDoll(screen *ebiten.Image, cx, cy, h float64, clr color.RGBA, width float32) {
	if h <= 0 {
		return
	}
	sh := shapeOf(cx, cy, h)
	vector.StrokeCircle(screen, sh.bodyX, sh.bodyY, sh.bodyR, width, clr, true)
	vector.StrokeCircle(screen, sh.headX, sh.headY, sh.headR, width, clr, true)
	vector.StrokeLine(screen, sh.torsoX, sh.torsoY, sh.torsoX, sh.torsoY+sh.torsoH, width, clr, true)
	vector.StrokeLine(screen, sh.torsoX+sh.torsoW, sh.torsoY, sh.torsoX+sh.torsoW, sh.torsoY+sh.torsoH, width, clr, true)
}

func drawLetter(screen *ebiten.Image, letter string, cx, cy float64) {
	op := &text.DrawOptions{}
	op.LayoutOptions.PrimaryAlign = text.AlignCenter
	op.GeoM.Translate(0, -utils.LineHeight/2)
	op.GeoM.Scale(cardLetterScale, cardLetterScale)
	op.GeoM.Translate(cx, cy)
	op.ColorScale.ScaleWithColor(colorPanel)
	text.Draw(screen, letter, utils.DefaultFace(), op)
}

// fadeColor 按 alpha 缩放预乘颜色
func fadeColor(c color.RGBA, alpha float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * alpha),
		G: uint8(float64(c.G) * alpha),
		B: uint8(float64(c.B) * alpha),
		A: uint8(float64(c.A) * alpha),
	}
}
