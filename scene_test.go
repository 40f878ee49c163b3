package birch

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween/ease"
)

func TestNewSceneRoot(t *testing.T) {
	s := NewScene(nil)
	if !s.Graph().Has(s.Root()) {
		t.Fatal("root should be a node of the graph")
	}
	if s.Graph().Node(s.Root()).Name != "root" {
		t.Errorf("root name = %q", s.Graph().Node(s.Root()).Name)
	}
}

func TestSceneUpdateAdvancesTime(t *testing.T) {
	s := NewScene(nil)
	id := s.Graph().NewGroup("rotor")
	s.Graph().AddChild(s.Root(), id)
	s.Animator().Add(&SpinTrack{Node: id, Axis: AxisY, Speed: 1})
	s.Update(0.25)
	s.Update(0.25)
	s.Update(-1)
	if s.Elapsed() != 0.5 {
		t.Errorf("Elapsed = %v, want 0.5", s.Elapsed())
	}
	assertNear(t, "rotor yaw", s.Graph().Node(id).Rotation[1], 0.5)
}

func TestSceneDropsFinishedTweens(t *testing.T) {
	s := NewScene(nil)
	id := s.Graph().NewGroup("n")
	s.AddTween(TweenPosition(s.Graph(), id, mgl32.Vec3{1, 0, 0}, 0.1, ease.Linear))
	s.AddTween(TweenPosition(s.Graph(), id, mgl32.Vec3{1, 0, 0}, 1, ease.Linear))
	s.Update(0.2)
	if s.NumTweens() != 1 {
		t.Errorf("tweens = %d, want 1", s.NumTweens())
	}
	s.Update(1)
	if s.NumTweens() != 0 {
		t.Errorf("tweens = %d, want 0", s.NumTweens())
	}
}

// --- Helicopter scene ---

func buildTestScene(t *testing.T, n int) (*HelicopterScene, *CaptureDevice) {
	t.Helper()
	dev := NewCaptureDevice()
	cfg := DefaultSceneConfig()
	cfg.Helicopters = n
	cfg.TerrainCells = 4
	hs, err := BuildHelicopterScene(dev, newTestCamera(t), DefaultSceneAssets(cfg), cfg)
	if err != nil {
		t.Fatalf("BuildHelicopterScene: %v", err)
	}
	return hs, dev
}

func TestBuildHelicopterSceneStructure(t *testing.T) {
	hs, dev := buildTestScene(t, 5)
	g := hs.Graph()

	if dev.NumBuffers() != 5 {
		t.Errorf("buffers = %d, want 5 (each mesh uploaded once)", dev.NumBuffers())
	}
	if len(hs.Helicopters) != 5 {
		t.Fatalf("helicopters = %d, want 5", len(hs.Helicopters))
	}
	if g.Node(hs.Terrain).Parent() != hs.Root() || g.Node(hs.Terrain).NumChildren() != 5 {
		t.Error("terrain should sit under root and carry every helicopter")
	}
	for i, h := range hs.Helicopters {
		want := []NodeID{h.Body, h.Door, h.MainRotor, h.TailRotor}
		root := g.Node(h.Root)
		if root.Parent() != hs.Terrain || root.NumChildren() != 4 {
			t.Fatalf("helicopter %d: bad structure", i)
		}
		for k, id := range want {
			if g.ChildAt(h.Root, k) != id {
				t.Errorf("helicopter %d child %d = %d, want %d", i, k, g.ChildAt(h.Root, k), id)
			}
		}
		assertVec(t, "tail pivot", g.Node(h.TailRotor).Pivot, mgl32.Vec3{0.35, 2.3, 10.4})
		assertVec(t, "door pivot", g.Node(h.Door).Pivot, mgl32.Vec3{-1, 0, 0})
		assertVec(t, "spread", root.Position, mgl32.Vec3{float32(i) * 50, 20, 0})
	}
	// Every body shares one buffer.
	if g.Node(hs.Helicopters[0].Body).Drawable != g.Node(hs.Helicopters[4].Body).Drawable {
		t.Error("bodies should share a drawable")
	}
	if hs.Animator().Len() != 15 {
		t.Errorf("tracks = %d, want 15", hs.Animator().Len())
	}
}

func TestHelicopterSceneAnimates(t *testing.T) {
	hs, _ := buildTestScene(t, 3)
	hs.Update(2)
	g := hs.Graph()
	for i, h := range hs.Helicopters {
		want := SimpleHeading(2 + float64(i)*0.75)
		assertVec(t, "position", g.Node(h.Root).Position, mgl32.Vec3{want.X, 20, want.Z})
		spin := &SpinTrack{Speed: 5000}
		assertNear(t, "main rotor", g.Node(h.MainRotor).Rotation[1], spin.Angle(2))
		assertNear(t, "tail rotor", g.Node(h.TailRotor).Rotation[0], spin.Angle(2))
	}
}

func TestTailRotorHubStaysOnAxis(t *testing.T) {
	hs, _ := buildTestScene(t, 1)
	g := hs.Graph()
	h := hs.Helicopters[0]
	for _, dt := range []float64{0.01, 0.013, 0.2} {
		hs.Update(dt)
		// The spinning rotor leaves its hub where the helicopter root puts it.
		want := TransformPoint(g.WorldMatrix(h.Root), TailRotorPivot)
		assertVec(t, "hub", g.LocalToWorld(h.TailRotor, TailRotorPivot), want)
	}
}

func TestToggleDoors(t *testing.T) {
	hs, _ := buildTestScene(t, 2)
	g := hs.Graph()
	hs.ToggleDoors()
	if !hs.DoorsOpen() || hs.NumTweens() != 2 {
		t.Fatalf("open = %v tweens = %d", hs.DoorsOpen(), hs.NumTweens())
	}
	hs.Update(0.4)
	// Reverse mid-slide: the old tweens are dropped and the doors head home.
	hs.ToggleDoors()
	hs.Update(0)
	if hs.NumTweens() != 2 {
		t.Errorf("tweens = %d, want 2 after retarget", hs.NumTweens())
	}
	hs.Update(0.8)
	for _, h := range hs.Helicopters {
		assertNear(t, "door z", g.Node(h.Door).Position[2], 0)
	}

	hs.ToggleDoors()
	hs.Update(1)
	for _, h := range hs.Helicopters {
		assertNear(t, "door z", g.Node(h.Door).Position[2], 1.6)
	}
	if hs.NumTweens() != 0 {
		t.Errorf("tweens = %d, want 0", hs.NumTweens())
	}
}

func TestBuildHelicopterSceneRejectsBadMesh(t *testing.T) {
	cfg := DefaultSceneConfig()
	assets := DefaultSceneAssets(cfg)
	assets.Helicopter.Door = Mesh{}
	if _, err := BuildHelicopterScene(NewCaptureDevice(), newTestCamera(t), assets, cfg); err == nil {
		t.Error("expected error for invalid door mesh")
	}
}

func TestHelicopterSceneRenders(t *testing.T) {
	hs, dev := buildTestScene(t, 5)
	r := NewRenderer(dev, hs.Program, hs.Graph(), hs.Root())
	hs.Update(1.5)
	if err := r.Render(hs.Camera()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	// Terrain plus four parts per helicopter.
	if got := len(dev.Draws()); got != 1+5*4 {
		t.Errorf("draws = %d, want 21", got)
	}
}
