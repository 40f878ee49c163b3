package birch

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/errors"
)

// FrameDevice is a Device that draws into an ebiten image between Begin and
// Flush. App brackets every Draw with them.
type FrameDevice interface {
	Device
	Begin(target *ebiten.Image)
	Flush()
}

// EntityStore is the interface for optional ECS integration. When set on an
// App, every pressed action is forwarded to the ECS.
type EntityStore interface {
	EmitEvent(event ActionEvent)
}

// ActionEvent reports an action whose key went down during a frame.
type ActionEvent struct {
	Action  Action
	Frame   uint64
	Elapsed float64 // scene time when the press was consumed
	// DoorsOpen is the door state after the press was applied.
	DoorsOpen bool
}

// App runs a helicopter scene. It implements ebiten.Game and can also be
// stepped directly with Frame for headless runs.
type App struct {
	Scene    *HelicopterScene
	Renderer *Renderer
	Controls Controls
	Bindings KeyBindings
	Input    InputBuffer
	// Script, when set, replaces keyboard and mouse polling.
	Script *InputScript

	device  Device
	mouse   MousePoller
	showFPS bool
	fps     fpsOverlay
	size    Size
	err     error
	store   EntityStore
	frame   uint64
}

// NewApp builds the scene described by cfg on dev.
func NewApp(cfg Config, dev Device) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cam, err := NewCamera(cfg.CameraConfig())
	if err != nil {
		return nil, errors.Wrap(err, "new app")
	}
	bindings, err := cfg.KeyBindings()
	if err != nil {
		return nil, errors.Wrap(err, "new app")
	}
	sc := cfg.SceneConfig()
	hs, err := BuildHelicopterScene(dev, cam, DefaultSceneAssets(sc), sc)
	if err != nil {
		return nil, errors.Wrap(err, "new app")
	}
	hs.SetDebugMode(cfg.Debug)

	r := NewRenderer(dev, hs.Program, hs.Graph(), hs.Root())
	r.ClearColor = cfg.ClearColor()
	r.Alpha = cfg.Render.Alpha
	r.State = cfg.DrawState()
	r.SetDebugMode(cfg.Debug)

	return &App{
		Scene:    hs,
		Renderer: r,
		Controls: cfg.ControlSettings(),
		Bindings: bindings,
		device:   dev,
		showFPS:  cfg.Window.ShowFPS,
		size:     Size{cfg.Window.Width, cfg.Window.Height},
	}, nil
}

// Camera returns the scene camera.
func (a *App) Camera() *Camera {
	return a.Scene.Camera()
}

// SetEntityStore sets the optional ECS bridge.
func (a *App) SetEntityStore(store EntityStore) {
	a.store = store
}

// Update implements ebiten.Game. A render error from the previous Draw is
// returned here and ends the game loop.
func (a *App) Update() error {
	if a.err != nil {
		return a.err
	}
	a.poll()
	dt := 1 / float64(ebiten.TPS())
	if err := a.Step(dt); err != nil {
		return err
	}
	if a.showFPS {
		a.fps.update(dt, len(a.Renderer.Commands()))
	}
	return nil
}

// Draw implements ebiten.Game.
func (a *App) Draw(screen *ebiten.Image) {
	if a.err != nil {
		return
	}
	fd, framed := a.device.(FrameDevice)
	if framed {
		fd.Begin(screen)
	}
	if err := a.Renderer.Render(a.Camera()); err != nil {
		a.err = err
		return
	}
	if framed {
		fd.Flush()
	}
	if a.showFPS {
		a.fps.draw(screen)
	}
}

// Layout implements ebiten.Game. Size changes reach the camera through the
// input buffer on the next Update.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != a.size.Width || outsideHeight != a.size.Height {
		a.size = Size{outsideWidth, outsideHeight}
		a.Input.PublishResize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

func (a *App) poll() {
	if a.Script != nil {
		a.Script.Step(&a.Input)
		return
	}
	held, pressed := a.Bindings.PollKeys()
	dx, dy := a.mouse.Poll()
	a.Input.Publish(InputState{Held: held, Pressed: pressed, MouseDX: dx, MouseDY: dy})
}

// Step consumes one input snapshot and advances the scene by dt seconds.
func (a *App) Step(dt float64) error {
	s := a.Input.Take()
	if err := a.Controls.Apply(a.Camera(), s, float32(dt)); err != nil {
		return err
	}
	if s.Pressed.Has(ActionToggleDoors) {
		a.Scene.ToggleDoors()
	}
	a.emitPressed(s.Pressed)
	a.Scene.Update(dt)
	a.frame++
	return nil
}

func (a *App) emitPressed(pressed ActionSet) {
	if a.store == nil || pressed == 0 {
		return
	}
	for act := Action(0); act < numActions; act++ {
		if pressed.Has(act) {
			a.store.EmitEvent(ActionEvent{
				Action:    act,
				Frame:     a.frame,
				Elapsed:   a.Scene.Elapsed(),
				DoorsOpen: a.Scene.DoorsOpen(),
			})
		}
	}
}

// Frame runs one headless frame: the script (if any) feeds the input buffer,
// the scene advances by dt and is rendered. Keyboard and mouse are not polled.
func (a *App) Frame(dt float64) error {
	if a.Script != nil {
		a.Script.Step(&a.Input)
	}
	if err := a.Step(dt); err != nil {
		return err
	}
	return a.Renderer.Render(a.Camera())
}

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title         string
	Width, Height int
}

// RunConfig returns the window settings.
func (c Config) RunConfig() RunConfig {
	return RunConfig{Title: c.Window.Title, Width: c.Window.Width, Height: c.Window.Height}
}

// Run opens a resizable window and runs app until it returns an error or
// the window is closed.
func Run(app *App, rc RunConfig) error {
	ebiten.SetWindowTitle(rc.Title)
	ebiten.SetWindowSize(rc.Width, rc.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(app)
}
