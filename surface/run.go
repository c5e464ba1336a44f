package surface

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/phanxgames/warpgate"
)

// RunConfig configures the window created by Run.
type RunConfig struct {
	Title         string
	Width, Height int
	ShowFPS       bool
	ScreenshotDir string
	DrawWorld     DrawWorldFunc
	// UpdateFunc runs every tick after the engine has updated. A non-nil
	// error ends the game loop.
	UpdateFunc func() error
}

var portalKeys = []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5}

type game struct {
	engine   *warpgate.Engine
	renderer *Renderer
	cfg      RunConfig
}

// Run opens a window and drives e until the window closes or UpdateFunc
// returns an error.
//
// Controls: click a portal or press its number key to travel, F3 toggles
// debug mode, F12 saves a screenshot.
func Run(e *warpgate.Engine, cfg RunConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 960, 540
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	e.SetFrameRate(ebiten.TPS())

	r := NewRenderer(e, nil)
	r.DrawWorld = cfg.DrawWorld
	if cfg.ScreenshotDir != "" {
		r.ScreenshotDir = cfg.ScreenshotDir
	}
	e.SetScreenshotFunc(r.Screenshot)
	defer e.Close()

	return ebiten.RunGame(&game{engine: e, renderer: r, cfg: cfg})
}

func (g *game) Update() error {
	g.processInput()
	g.engine.Update()
	if g.cfg.UpdateFunc != nil {
		return g.cfg.UpdateFunc()
	}
	return nil
}

func (g *game) processInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.engine.SetDebugMode(!g.engine.DebugMode())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		g.renderer.Screenshot(time.Now().Format("150405.000"))
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if p, ok := g.engine.PortalAt(float64(x), float64(y)); ok {
			g.engine.EnterPortal(p)
			return
		}
	}
	portals := g.engine.Portals()
	for i, key := range portalKeys {
		if i < len(portals) && inpututil.IsKeyJustPressed(key) {
			g.engine.EnterPortal(portals[i])
			return
		}
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen)
	if g.cfg.ShowFPS {
		f := g.engine.Frame()
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f\n%s %s %.2f",
			ebiten.ActualFPS(), ebiten.ActualTPS(), f.World, f.Phase, f.Progress))
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}
