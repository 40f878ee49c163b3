package birch

import (
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/errors"
)

// --- Actions ---

func TestActionNamesRoundTrip(t *testing.T) {
	for a := Action(0); a < numActions; a++ {
		got, err := ParseAction(a.String())
		if err != nil || got != a {
			t.Errorf("ParseAction(%q) = %v, %v", a.String(), got, err)
		}
	}
	if _, err := ParseAction("barrel_roll"); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("err = %v, want ErrUnknownAction", err)
	}
}

func TestActionSet(t *testing.T) {
	var s ActionSet
	s = s.With(ActionMoveForward).With(ActionToggleDoors).With(ActionMoveForward)
	if !s.Has(ActionMoveForward) || !s.Has(ActionToggleDoors) || s.Has(ActionRollLeft) {
		t.Errorf("set = %b", s)
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
}

// --- Key bindings ---

func TestParseKey(t *testing.T) {
	tests := map[string]ebiten.Key{
		"W":         ebiten.KeyW,
		"space":     ebiten.KeySpace,
		"ArrowUp":   ebiten.KeyArrowUp,
		"shiftleft": ebiten.KeyShiftLeft,
	}
	for name, want := range tests {
		got, err := ParseKey(name)
		if err != nil || got != want {
			t.Errorf("ParseKey(%q) = %v, %v, want %v", name, got, err, want)
		}
	}
	if _, err := ParseKey("Hyper"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("err = %v, want ErrUnknownKey", err)
	}
}

func TestDefaultKeyBindingsCoverActions(t *testing.T) {
	var covered ActionSet
	for _, a := range DefaultKeyBindings() {
		covered = covered.With(a)
	}
	if covered.Len() != int(numActions) {
		t.Errorf("default bindings cover %d of %d actions", covered.Len(), numActions)
	}
}

func TestParseKeyBindings(t *testing.T) {
	kb, err := ParseKeyBindings(map[string]string{"I": "move_forward", "K": "move_back"})
	if err != nil {
		t.Fatalf("ParseKeyBindings: %v", err)
	}
	if kb[ebiten.KeyI] != ActionMoveForward || kb[ebiten.KeyK] != ActionMoveBack {
		t.Errorf("bindings = %v", kb)
	}
	if _, err := ParseKeyBindings(map[string]string{"I": "fly"}); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("err = %v, want ErrUnknownAction", err)
	}
}

// --- InputBuffer ---

func TestInputBufferMerge(t *testing.T) {
	var b InputBuffer
	b.Publish(InputState{Held: ActionSet(0).With(ActionMoveForward), Pressed: ActionSet(0).With(ActionToggleDoors), MouseDX: 2})
	b.Publish(InputState{Held: ActionSet(0).With(ActionMoveBack), MouseDX: 3, MouseDY: -1})
	b.PublishResize(800, 600)

	s := b.Take()
	if s.Held.Has(ActionMoveForward) || !s.Held.Has(ActionMoveBack) {
		t.Errorf("Held = %b, want latest set only", s.Held)
	}
	if !s.Pressed.Has(ActionToggleDoors) {
		t.Error("press lost in merge")
	}
	if s.MouseDX != 5 || s.MouseDY != -1 {
		t.Errorf("mouse = (%v, %v), want (5, -1)", s.MouseDX, s.MouseDY)
	}
	if !s.Resized || s.Width != 800 || s.Height != 600 {
		t.Errorf("resize = %v %dx%d", s.Resized, s.Width, s.Height)
	}

	next := b.Take()
	if !next.Held.Has(ActionMoveBack) {
		t.Error("held keys should carry over")
	}
	if next.Pressed != 0 || next.MouseDX != 0 || next.Resized {
		t.Errorf("one-shot input carried over: %+v", next)
	}
}

func TestInputBufferConcurrent(t *testing.T) {
	var b InputBuffer
	var wg sync.WaitGroup
	const producers, events = 4, 250
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < events; i++ {
				b.Publish(InputState{MouseDX: 1})
			}
		}()
	}
	var total float64
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for {
		select {
		case <-done:
			total += b.Take().MouseDX
			if total != producers*events {
				t.Errorf("total = %v, want %d", total, producers*events)
			}
			return
		default:
			total += b.Take().MouseDX
		}
	}
}

// --- Controls ---

func TestControlsApplyMovement(t *testing.T) {
	cam := newTestCamera(t)
	c := Controls{MoveSpeed: 50, RotateSpeed: 3}
	s := InputState{Held: ActionSet(0).With(ActionMoveForward).With(ActionMoveUp).With(ActionYawRight)}
	c.Apply(cam, s, 0.1)
	assertVec(t, "Position", cam.Position, mgl32.Vec3{0, 5, -5})
	assertNear(t, "Yaw", cam.Yaw, 0.3)
}

func TestControlsOpposingCancel(t *testing.T) {
	cam := newTestCamera(t)
	s := InputState{Held: ActionSet(0).With(ActionMoveLeft).With(ActionMoveRight).With(ActionRollLeft).With(ActionRollRight)}
	DefaultControls().Apply(cam, s, 1)
	assertVec(t, "Position", cam.Position, mgl32.Vec3{})
	assertNear(t, "Roll", cam.Roll, 0)
}

func TestControlsMouseLook(t *testing.T) {
	cam := newTestCamera(t)
	c := Controls{MouseSensitivity: 0.01}
	c.Apply(cam, InputState{MouseDX: 10, MouseDY: -5}, 1.0/60)
	assertNear(t, "Yaw", cam.Yaw, 0.1)
	assertNear(t, "Pitch", cam.Pitch, -0.05)
}

func TestControlsResize(t *testing.T) {
	cam := newTestCamera(t)
	if err := DefaultControls().Apply(cam, InputState{Resized: true, Width: 1000, Height: 500}, 0); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	assertNear(t, "AspectRatio", cam.AspectRatio(), 2)
	// A minimised window reports 0x0; the aspect ratio keeps its last value.
	if err := DefaultControls().Apply(cam, InputState{Resized: true}, 0); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	assertNear(t, "AspectRatio", cam.AspectRatio(), 2)
}
