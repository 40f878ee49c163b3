package birch

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float32
}

// ColorWhite is the default vertex tint.
var ColorWhite = Color{1, 1, 1, 1}

// toRGBA converts to a premultiplied color.RGBA for ebiten.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A)*255 + 0.5),
		G: uint8(clamp01(c.G*c.A)*255 + 0.5),
		B: uint8(clamp01(c.B*c.A)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// BlendMode selects a compositing operation. Each maps to a specific ebiten.Blend value.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota // source-over (standard alpha blending)
	BlendAdd                     // additive / lighter
	BlendNone                    // opaque copy (skip blending)
)

// EbitenBlend returns the ebiten.Blend value corresponding to this BlendMode.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendAdd:
		return ebiten.BlendLighter
	case BlendNone:
		return ebiten.BlendCopy
	default:
		return ebiten.BlendSourceOver
	}
}

// String returns the config name of the blend mode.
func (b BlendMode) String() string {
	switch b {
	case BlendAdd:
		return "add"
	case BlendNone:
		return "none"
	default:
		return "normal"
	}
}

// parseBlendMode maps a config name to a BlendMode. Empty selects BlendNormal.
func parseBlendMode(name string) (BlendMode, bool) {
	switch name {
	case "", "normal":
		return BlendNormal, true
	case "add":
		return BlendAdd, true
	case "none":
		return BlendNone, true
	}
	return BlendNormal, false
}

// DrawState is the global pipeline state activated once per frame before
// traversal. These are configuration constants, never derived from the scene.
type DrawState struct {
	CullFace   bool // drop back faces (counter-clockwise is front)
	DepthWrite bool // resolve visibility by depth
	Blend      BlendMode
}

// DefaultDrawState matches the original helicopter scene: back-face culling,
// depth writes, alpha blending.
var DefaultDrawState = DrawState{CullFace: true, DepthWrite: true, Blend: BlendNormal}

// Size is a window or framebuffer size in pixels.
type Size struct {
	Width, Height int
}
