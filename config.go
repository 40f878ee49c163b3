package birch

import (
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the complete runtime configuration of a helicopter scene
// application. It is decoded from YAML; DefaultConfig supplies every field, so
// a file only needs to name what it changes.
//
//	window:
//	  title: Helicopters
//	  width: 1280
//	  height: 720
//	camera:
//	  position: [0, 200, -5]
//	  pitch: -1.57
//	controls:
//	  bindings:
//	    W: move_forward
//	scene:
//	  helicopters: 8
//	render:
//	  clear_color: [0.035, 0.046, 0.078]
type Config struct {
	Window   WindowConfig `yaml:"window"`
	Camera   CameraFile   `yaml:"camera"`
	Controls ControlsFile `yaml:"controls"`
	Scene    SceneFile    `yaml:"scene"`
	Render   RenderFile   `yaml:"render"`
	Debug    bool         `yaml:"debug"`
}

// WindowConfig describes the application window.
type WindowConfig struct {
	Title   string `yaml:"title"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	ShowFPS bool   `yaml:"show_fps"`
}

// CameraFile is the camera section of a config file.
type CameraFile struct {
	Position   []float32 `yaml:"position"`
	Yaw        float32   `yaml:"yaw"`
	Pitch      float32   `yaml:"pitch"`
	Roll       float32   `yaml:"roll"`
	FovY       float32   `yaml:"fovy"`
	Near       float32   `yaml:"near"`
	Far        float32   `yaml:"far"`
	WrapAngles bool      `yaml:"wrap_angles"`
}

// ControlsFile is the controls section of a config file. Bindings map key
// names ("W", "ArrowUp", "ShiftLeft") to action names ("move_forward").
// A non-empty map replaces the default bindings entirely.
type ControlsFile struct {
	MoveSpeed        float32           `yaml:"move_speed"`
	RotateSpeed      float32           `yaml:"rotate_speed"`
	MouseSensitivity float32           `yaml:"mouse_sensitivity"`
	Bindings         map[string]string `yaml:"bindings"`
}

// SceneFile is the scene section of a config file.
type SceneFile struct {
	Helicopters    int     `yaml:"helicopters"`
	PhaseOffset    float64 `yaml:"phase_offset"`
	Altitude       float32 `yaml:"altitude"`
	Spacing        float32 `yaml:"spacing"`
	MainRotorSpeed float64 `yaml:"main_rotor_speed"`
	TailRotorSpeed float64 `yaml:"tail_rotor_speed"`
	DoorSlide      float32 `yaml:"door_slide"`
	DoorDuration   float32 `yaml:"door_duration"`
	TerrainCells   int     `yaml:"terrain_cells"`
	TerrainSize    float32 `yaml:"terrain_size"`
}

// RenderFile is the render section of a config file.
type RenderFile struct {
	ClearColor []float32 `yaml:"clear_color"`
	Alpha      float32   `yaml:"alpha"`
	CullFace   bool      `yaml:"cull_face"`
	DepthWrite bool      `yaml:"depth_write"`
	Blend      string    `yaml:"blend"`
}

// DefaultConfig returns the settings of the original helicopter scene.
func DefaultConfig() Config {
	cam := DefaultCameraConfig(1)
	ctl := DefaultControls()
	sc := DefaultSceneConfig()
	bindings := make(map[string]string)
	for k, a := range DefaultKeyBindings() {
		bindings[k.String()] = a.String()
	}
	return Config{
		Window: WindowConfig{Title: "Helicopters", Width: 1280, Height: 720, ShowFPS: true},
		Camera: CameraFile{
			Position:   []float32{cam.Position[0], cam.Position[1], cam.Position[2]},
			Yaw:        cam.Yaw,
			Pitch:      cam.Pitch,
			Roll:       cam.Roll,
			FovY:       cam.FovY,
			Near:       cam.Near,
			Far:        cam.Far,
			WrapAngles: cam.WrapAngles,
		},
		Controls: ControlsFile{
			MoveSpeed:        ctl.MoveSpeed,
			RotateSpeed:      ctl.RotateSpeed,
			MouseSensitivity: ctl.MouseSensitivity,
			Bindings:         bindings,
		},
		Scene: SceneFile{
			Helicopters:    sc.Helicopters,
			PhaseOffset:    sc.PhaseOffset,
			Altitude:       sc.Altitude,
			Spacing:        sc.Spacing,
			MainRotorSpeed: sc.MainRotorSpeed,
			TailRotorSpeed: sc.TailRotorSpeed,
			DoorSlide:      sc.DoorSlide,
			DoorDuration:   sc.DoorDuration,
			TerrainCells:   sc.TerrainCells,
			TerrainSize:    sc.TerrainSize,
		},
		Render: RenderFile{
			ClearColor: []float32{DefaultClearColor.R, DefaultClearColor.G, DefaultClearColor.B},
			Alpha:      0.9,
			CullFace:   DefaultDrawState.CullFace,
			DepthWrite: DefaultDrawState.DepthWrite,
			Blend:      DefaultDrawState.Blend.String(),
		},
	}
}

// LoadConfig decodes YAML from r over DefaultConfig. Unknown fields are
// rejected and the result is validated.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	bindings := cfg.Controls.Bindings
	cfg.Controls.Bindings = nil // decoding merges into a non-nil map
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if len(cfg.Controls.Bindings) == 0 {
		cfg.Controls.Bindings = bindings
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads and decodes the YAML file at path.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "open config")
	}
	defer f.Close()
	cfg, err := LoadConfig(f)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate fails fast on settings that cannot produce a working scene.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Errorf("config: window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if len(c.Camera.Position) != 3 {
		return errors.Errorf("config: camera position needs 3 components, got %d", len(c.Camera.Position))
	}
	if err := validateProjection(c.aspect(), c.Camera.FovY, c.Camera.Near, c.Camera.Far); err != nil {
		return errors.Wrap(err, "config: camera")
	}
	if len(c.Render.ClearColor) != 3 && len(c.Render.ClearColor) != 4 {
		return errors.Errorf("config: clear color needs 3 or 4 components, got %d", len(c.Render.ClearColor))
	}
	if _, ok := parseBlendMode(c.Render.Blend); !ok {
		return errors.Errorf("config: unknown blend mode %q", c.Render.Blend)
	}
	if c.Scene.Helicopters < 0 {
		return errors.Errorf("config: helicopter count %d", c.Scene.Helicopters)
	}
	if c.Scene.DoorDuration <= 0 {
		return errors.Errorf("config: door duration %v", c.Scene.DoorDuration)
	}
	if _, err := ParseKeyBindings(c.Controls.Bindings); err != nil {
		return errors.Wrap(err, "config: controls")
	}
	return nil
}

func (c Config) aspect() float32 {
	return float32(c.Window.Width) / float32(c.Window.Height)
}

// CameraConfig returns the camera settings with the window's aspect ratio.
func (c Config) CameraConfig() CameraConfig {
	p := c.Camera.Position
	return CameraConfig{
		Position:    mgl32.Vec3{p[0], p[1], p[2]},
		Yaw:         c.Camera.Yaw,
		Pitch:       c.Camera.Pitch,
		Roll:        c.Camera.Roll,
		AspectRatio: c.aspect(),
		FovY:        c.Camera.FovY,
		Near:        c.Camera.Near,
		Far:         c.Camera.Far,
		WrapAngles:  c.Camera.WrapAngles,
	}
}

// ControlSettings returns the movement settings.
func (c Config) ControlSettings() Controls {
	return Controls{
		MoveSpeed:        c.Controls.MoveSpeed,
		RotateSpeed:      c.Controls.RotateSpeed,
		MouseSensitivity: c.Controls.MouseSensitivity,
	}
}

// KeyBindings returns the parsed bindings, or the defaults when none are set.
func (c Config) KeyBindings() (KeyBindings, error) {
	if len(c.Controls.Bindings) == 0 {
		return DefaultKeyBindings(), nil
	}
	return ParseKeyBindings(c.Controls.Bindings)
}

// DrawState returns the render pipeline state.
func (c Config) DrawState() DrawState {
	blend, _ := parseBlendMode(c.Render.Blend)
	return DrawState{CullFace: c.Render.CullFace, DepthWrite: c.Render.DepthWrite, Blend: blend}
}

// ClearColor returns the frame clear color. A three-component color is opaque.
func (c Config) ClearColor() Color {
	cc := c.Render.ClearColor
	col := Color{cc[0], cc[1], cc[2], 1}
	if len(cc) == 4 {
		col.A = cc[3]
	}
	return col
}

// SceneConfig returns the scene assembly settings.
func (c Config) SceneConfig() SceneConfig {
	s := c.Scene
	return SceneConfig{
		Helicopters:    s.Helicopters,
		PhaseOffset:    s.PhaseOffset,
		Altitude:       s.Altitude,
		Spacing:        s.Spacing,
		MainRotorSpeed: s.MainRotorSpeed,
		TailRotorSpeed: s.TailRotorSpeed,
		DoorSlide:      s.DoorSlide,
		DoorDuration:   s.DoorDuration,
		TerrainCells:   s.TerrainCells,
		TerrainSize:    s.TerrainSize,
	}
}
