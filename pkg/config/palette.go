package config

import (
	"image/color"
	"math/rand"
)

// DollColor 套娃颜色名称，同时用作头像颜色
type DollColor string

// 黑色保留给第一关边界套娃和第四关母体
const ReservedColor DollColor = "black"

// DefaultAvatarColor 新用户默认头像颜色
const DefaultAvatarColor DollColor = "red"

// DollColors 全部套娃颜色（顺序即菜单循环顺序）
var DollColors = []DollColor{
	"black", "red", "pink", "orange", "bordo",
	"sea", "blue", "green", "yellow", "turquoise",
}

var dollRGBA = map[DollColor]color.RGBA{
	"black":     {R: 40, G: 40, B: 48, A: 255},
	"red":       {R: 214, G: 48, B: 49, A: 255},
	"pink":      {R: 253, G: 121, B: 168, A: 255},
	"orange":    {R: 240, G: 147, B: 43, A: 255},
	"bordo":     {R: 128, G: 0, B: 32, A: 255},
	"sea":       {R: 46, G: 139, B: 87, A: 255},
	"blue":      {R: 9, G: 132, B: 227, A: 255},
	"green":     {R: 106, G: 176, B: 76, A: 255},
	"yellow":    {R: 253, G: 203, B: 110, A: 255},
	"turquoise": {R: 0, G: 206, B: 201, A: 255},
}

// RGBA 返回颜色值，未知名称返回灰色
func (c DollColor) RGBA() color.RGBA {
	if rgba, ok := dollRGBA[c]; ok {
		return rgba
	}
	return color.RGBA{R: 128, G: 128, B: 128, A: 255}
}

// IsValidDollColor 判断名称是否为已知颜色
func IsValidDollColor(name string) bool {
	_, ok := dollRGBA[DollColor(name)]
	return ok
}

// NextColor 返回循环中的下一个颜色
func (c DollColor) NextColor() DollColor {
	for i, known := range DollColors {
		if known == c {
			return DollColors[(i+1)%len(DollColors)]
		}
	}
	return DefaultAvatarColor
}

// PlayableColors 除保留色外的全部颜色
func PlayableColors() []DollColor {
	out := make([]DollColor, 0, len(DollColors)-1)
	for _, c := range DollColors {
		if c != ReservedColor {
			out = append(out, c)
		}
	}
	return out
}

// RandomColorExcept 随机选择一个非保留色，且不等于 previous
func RandomColorExcept(rng *rand.Rand, previous DollColor) DollColor {
	candidates := PlayableColors()
	for {
		c := candidates[rng.Intn(len(candidates))]
		if c != previous {
			return c
		}
	}
}
