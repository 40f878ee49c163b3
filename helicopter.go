package birch

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/tanema/gween/ease"
)

// Helicopter holds the node handles of one helicopter. Root is the node the
// path track moves; its children are Body, Door, MainRotor and TailRotor in
// that order.
type Helicopter struct {
	Root, Body, Door, MainRotor, TailRotor NodeID

	doorTween *TweenGroup
}

// SceneAssets is the geometry a helicopter scene is built from.
type SceneAssets struct {
	Terrain    Mesh
	Helicopter HelicopterMeshes
}

// DefaultSceneAssets returns the procedural terrain and helicopter.
func DefaultSceneAssets(cfg SceneConfig) SceneAssets {
	return SceneAssets{
		Terrain:    TerrainMesh(cfg.TerrainCells, cfg.TerrainSize, LunarHeight),
		Helicopter: NewHelicopterMeshes(),
	}
}

// SceneConfig controls how BuildHelicopterScene lays out and animates the scene.
type SceneConfig struct {
	Helicopters int
	// PhaseOffset is the time offset in seconds between consecutive
	// helicopters on the shared path.
	PhaseOffset float64
	Altitude    float32
	// Spacing spreads the helicopters along X before the first update.
	Spacing float32

	MainRotorSpeed float64 // radians per second
	TailRotorSpeed float64

	DoorSlide    float32 // how far the door slides back along Z when open
	DoorDuration float32 // seconds

	TerrainCells int
	TerrainSize  float32

	// Path is the flight path, SimpleHeading when nil.
	Path PathFunc
}

// DefaultSceneConfig returns the original scene layout.
func DefaultSceneConfig() SceneConfig {
	return SceneConfig{
		Helicopters:    5,
		PhaseOffset:    0.75,
		Altitude:       20,
		Spacing:        50,
		MainRotorSpeed: 5000,
		TailRotorSpeed: 5000,
		DoorSlide:      1.6,
		DoorDuration:   0.8,
		TerrainCells:   64,
		TerrainSize:    400,
	}
}

// HelicopterScene is a Scene with a terrain and a flight of helicopters.
type HelicopterScene struct {
	*Scene
	Terrain     NodeID
	Helicopters []Helicopter
	Program     *Program

	doorsOpen    bool
	doorSlide    float32
	doorDuration float32
}

// BuildHelicopterScene uploads every mesh once, links the scene program and
// assembles root → terrain → helicopters. Each helicopter follows the path
// with its own phase; both rotors spin.
func BuildHelicopterScene(dev Device, cam *Camera, assets SceneAssets, cfg SceneConfig) (*HelicopterScene, error) {
	if cfg.Helicopters < 0 {
		return nil, errors.Errorf("build scene: helicopter count %d", cfg.Helicopters)
	}
	program, err := LinkProgram(dev, SceneShader)
	if err != nil {
		return nil, errors.Wrap(err, "build scene")
	}

	upload := func(name string, m Mesh) (Drawable, error) {
		d, err := UploadMesh(dev, name, m)
		return d, errors.Wrap(err, "build scene")
	}
	terrain, err := upload("terrain", assets.Terrain)
	if err != nil {
		return nil, err
	}
	h := assets.Helicopter
	body, err := upload("body", h.Body)
	if err != nil {
		return nil, err
	}
	door, err := upload("door", h.Door)
	if err != nil {
		return nil, err
	}
	mainRotor, err := upload("main rotor", h.MainRotor)
	if err != nil {
		return nil, err
	}
	tailRotor, err := upload("tail rotor", h.TailRotor)
	if err != nil {
		return nil, err
	}

	s := NewScene(cam)
	g := s.Graph()
	hs := &HelicopterScene{
		Scene:        s,
		Terrain:      g.NewDrawable("terrain", terrain),
		Program:      program,
		Helicopters:  make([]Helicopter, 0, cfg.Helicopters),
		doorSlide:    cfg.DoorSlide,
		doorDuration: cfg.DoorDuration,
	}
	g.AddChild(s.Root(), hs.Terrain)

	for i := 0; i < cfg.Helicopters; i++ {
		heli := Helicopter{
			Root:      g.NewGroup(fmt.Sprintf("helicopter %d", i)),
			Body:      g.NewDrawable("body", body),
			Door:      g.NewDrawable("door", door),
			MainRotor: g.NewDrawable("main rotor", mainRotor),
			TailRotor: g.NewDrawable("tail rotor", tailRotor),
		}
		g.AddChild(hs.Terrain, heli.Root)
		g.AddChild(heli.Root, heli.Body)
		g.AddChild(heli.Root, heli.Door)
		g.AddChild(heli.Root, heli.MainRotor)
		g.AddChild(heli.Root, heli.TailRotor)
		g.SetPivot(heli.Door, DoorPivot)
		g.SetPivot(heli.TailRotor, TailRotorPivot)
		g.SetPosition(heli.Root, mgl32.Vec3{float32(i) * cfg.Spacing, cfg.Altitude, 0})

		s.Animator().Add(
			&PathTrack{Node: heli.Root, Path: cfg.Path, Phase: float64(i) * cfg.PhaseOffset, Altitude: cfg.Altitude},
			&SpinTrack{Node: heli.MainRotor, Axis: AxisY, Speed: cfg.MainRotorSpeed},
			&SpinTrack{Node: heli.TailRotor, Axis: AxisX, Speed: cfg.TailRotorSpeed},
		)
		hs.Helicopters = append(hs.Helicopters, heli)
	}
	return hs, nil
}

// DoorsOpen reports whether the doors are open or opening.
func (hs *HelicopterScene) DoorsOpen() bool {
	return hs.doorsOpen
}

// ToggleDoors slides every door open or closed. A door still moving is
// retargeted from where it is.
func (hs *HelicopterScene) ToggleDoors() {
	hs.doorsOpen = !hs.doorsOpen
	var z float32
	if hs.doorsOpen {
		z = hs.doorSlide
	}
	g := hs.Graph()
	for i := range hs.Helicopters {
		heli := &hs.Helicopters[i]
		if heli.doorTween != nil {
			heli.doorTween.Done = true
		}
		to := g.Node(heli.Door).Position
		to[2] = z
		heli.doorTween = TweenPosition(g, heli.Door, to, hs.doorDuration, ease.OutCubic)
		hs.AddTween(heli.doorTween)
	}
}
