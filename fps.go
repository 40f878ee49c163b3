package birch

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsOverlay displays the current FPS, TPS and draw count in the top-left
// corner. The text is refreshed every ~0.5 seconds.
type fpsOverlay struct {
	img        *ebiten.Image
	lastUpdate float64
	draws      int
}

// update accumulates dt and redraws the text when due.
func (o *fpsOverlay) update(dt float64, draws int) {
	o.draws = draws
	o.lastUpdate += dt
	if o.img != nil && o.lastUpdate < 0.5 {
		return
	}
	o.lastUpdate = 0

	if o.img == nil {
		// 120x48 is enough for "FPS: 60.0\nTPS: 60.0\nDraws: 1000"
		o.img = ebiten.NewImage(120, 48)
	}
	o.img.Clear()
	// Semi-transparent background for readability
	o.img.Fill(color.RGBA{0, 0, 0, 128})

	fps := ebiten.ActualFPS()
	tps := ebiten.ActualTPS()
	ebitenutil.DebugPrint(o.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nDraws: %d", fps, tps, o.draws))
}

// draw composites the overlay onto screen.
func (o *fpsOverlay) draw(screen *ebiten.Image) {
	if o.img == nil {
		return
	}
	screen.DrawImage(o.img, nil)
}
