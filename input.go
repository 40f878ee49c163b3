package birch

import (
	"math/bits"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/pkg/errors"
)

// --- Actions ---

// Action is a camera or scene control bound to a key.
type Action uint8

const (
	ActionMoveForward Action = iota
	ActionMoveBack
	ActionMoveLeft
	ActionMoveRight
	ActionMoveUp
	ActionMoveDown
	ActionYawLeft
	ActionYawRight
	ActionPitchUp
	ActionPitchDown
	ActionRollLeft
	ActionRollRight
	ActionToggleDoors

	numActions
)

var actionNames = [numActions]string{
	"move_forward", "move_back", "move_left", "move_right", "move_up", "move_down",
	"yaw_left", "yaw_right", "pitch_up", "pitch_down", "roll_left", "roll_right",
	"toggle_doors",
}

// String returns the action's config name.
func (a Action) String() string {
	if a < numActions {
		return actionNames[a]
	}
	return "unknown"
}

var (
	// ErrUnknownAction is returned by ParseAction for unrecognized names.
	ErrUnknownAction = errors.New("birch: unknown action")
	// ErrUnknownKey is returned by ParseKey for unrecognized key names.
	ErrUnknownKey = errors.New("birch: unknown key")
)

// ParseAction returns the action with the given config name.
func ParseAction(name string) (Action, error) {
	for i, n := range actionNames {
		if n == name {
			return Action(i), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownAction, "%q", name)
}

// ActionSet is a bitmask of actions.
type ActionSet uint32

// Has reports whether a is in the set.
func (s ActionSet) Has(a Action) bool {
	return s&(1<<a) != 0
}

// With returns the set with a added.
func (s ActionSet) With(a Action) ActionSet {
	return s | 1<<a
}

// Len returns the number of actions in the set.
func (s ActionSet) Len() int {
	return bits.OnesCount32(uint32(s))
}

// --- Snapshot buffer ---

// InputState is one frame's worth of input. Held lists actions whose keys
// are down, Pressed those whose keys went down since the previous Take.
type InputState struct {
	Held, Pressed    ActionSet
	MouseDX, MouseDY float64
	Resized          bool
	Width, Height    int
}

// InputBuffer hands input from a producer (event polling, scripts) to the
// frame loop. Publish merges into the pending snapshot; Take swaps it out.
// Both are safe to call from different goroutines.
type InputBuffer struct {
	mu      sync.Mutex
	pending InputState
	back    InputState
}

// Publish merges s into the pending snapshot: the held set is replaced,
// presses accumulate, mouse deltas are summed and the latest resize wins.
func (b *InputBuffer) Publish(s InputState) {
	b.mu.Lock()
	p := &b.pending
	p.Held = s.Held
	p.Pressed |= s.Pressed
	p.MouseDX += s.MouseDX
	p.MouseDY += s.MouseDY
	if s.Resized {
		p.Resized = true
		p.Width, p.Height = s.Width, s.Height
	}
	b.mu.Unlock()
}

// PublishResize records a framebuffer resize without touching key state.
func (b *InputBuffer) PublishResize(width, height int) {
	b.mu.Lock()
	b.pending.Resized = true
	b.pending.Width, b.pending.Height = width, height
	b.mu.Unlock()
}

// Take returns the pending snapshot and starts a new one. The held set carries
// over so keys stay down until the producer reports otherwise.
func (b *InputBuffer) Take() InputState {
	b.mu.Lock()
	b.back, b.pending = b.pending, InputState{Held: b.pending.Held}
	b.mu.Unlock()
	return b.back
}

// --- Controls ---

// Controls maps an input snapshot onto camera motion.
type Controls struct {
	MoveSpeed        float32 // units per second
	RotateSpeed      float32 // radians per second
	MouseSensitivity float32 // radians per pixel
}

// DefaultControls returns the tripod controls of the helicopter demo.
func DefaultControls() Controls {
	return Controls{MoveSpeed: 50, RotateSpeed: 3, MouseSensitivity: 0.005}
}

// Apply moves and turns cam for dt seconds of s. A resize updates the aspect
// ratio; zero-size resizes (a minimised window) are ignored. A resize the
// camera rejects is returned.
func (c Controls) Apply(cam *Camera, s InputState, dt float32) error {
	m := c.MoveSpeed * dt
	r := c.RotateSpeed * dt
	var dx, dy, dz float32
	var yaw, pitch, roll float32
	h := s.Held
	if h.Has(ActionMoveForward) {
		dz -= m
	}
	if h.Has(ActionMoveBack) {
		dz += m
	}
	if h.Has(ActionMoveLeft) {
		dx -= m
	}
	if h.Has(ActionMoveRight) {
		dx += m
	}
	if h.Has(ActionMoveUp) {
		dy += m
	}
	if h.Has(ActionMoveDown) {
		dy -= m
	}
	if h.Has(ActionYawLeft) {
		yaw -= r
	}
	if h.Has(ActionYawRight) {
		yaw += r
	}
	if h.Has(ActionPitchUp) {
		pitch -= r
	}
	if h.Has(ActionPitchDown) {
		pitch += r
	}
	if h.Has(ActionRollLeft) {
		roll -= r
	}
	if h.Has(ActionRollRight) {
		roll += r
	}
	yaw += float32(s.MouseDX) * c.MouseSensitivity
	pitch += float32(s.MouseDY) * c.MouseSensitivity

	if dx != 0 || dy != 0 || dz != 0 {
		cam.Translate(dx, dy, dz)
	}
	if yaw != 0 || pitch != 0 || roll != 0 {
		cam.Rotate(yaw, pitch, roll)
	}
	if s.Resized && s.Width > 0 && s.Height > 0 {
		if err := cam.Resize(s.Width, s.Height); err != nil {
			return errors.Wrap(err, "apply resize")
		}
	}
	return nil
}

// --- Key bindings ---

// KeyBindings maps keys to actions. Several keys may share an action.
type KeyBindings map[ebiten.Key]Action

// DefaultKeyBindings returns WASD movement, Space/Shift for up and down,
// arrows for yaw and pitch, Q/E for roll and O for the doors.
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		ebiten.KeyW:          ActionMoveForward,
		ebiten.KeyS:          ActionMoveBack,
		ebiten.KeyA:          ActionMoveLeft,
		ebiten.KeyD:          ActionMoveRight,
		ebiten.KeySpace:      ActionMoveUp,
		ebiten.KeyShiftLeft:  ActionMoveDown,
		ebiten.KeyArrowLeft:  ActionYawLeft,
		ebiten.KeyArrowRight: ActionYawRight,
		ebiten.KeyArrowUp:    ActionPitchUp,
		ebiten.KeyArrowDown:  ActionPitchDown,
		ebiten.KeyQ:          ActionRollLeft,
		ebiten.KeyE:          ActionRollRight,
		ebiten.KeyO:          ActionToggleDoors,
	}
}

// ParseKey returns the ebiten key with the given name, compared without
// regard to case ("W", "space", "ArrowUp", "ShiftLeft").
func ParseKey(name string) (ebiten.Key, error) {
	for k := ebiten.Key(0); k <= ebiten.KeyMax; k++ {
		if strings.EqualFold(k.String(), name) {
			return k, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownKey, "%q", name)
}

// ParseKeyBindings converts key name → action name pairs.
func ParseKeyBindings(names map[string]string) (KeyBindings, error) {
	kb := make(KeyBindings, len(names))
	for keyName, actionName := range names {
		k, err := ParseKey(keyName)
		if err != nil {
			return nil, err
		}
		a, err := ParseAction(actionName)
		if err != nil {
			return nil, errors.Wrapf(err, "binding for key %q", keyName)
		}
		kb[k] = a
	}
	return kb, nil
}

// --- Polling ---

// MousePoller turns absolute cursor positions into per-frame deltas while
// the left mouse button is held.
type MousePoller struct {
	lastX, lastY int
	tracking     bool
}

// Poll returns the cursor motion since the previous call.
func (m *MousePoller) Poll() (dx, dy float64) {
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		m.tracking = false
		return 0, 0
	}
	x, y := ebiten.CursorPosition()
	if m.tracking {
		dx, dy = float64(x-m.lastX), float64(y-m.lastY)
	}
	m.lastX, m.lastY, m.tracking = x, y, true
	return dx, dy
}

// PollKeys reads the bound keys from ebiten. Must be called from the game's
// Update.
func (kb KeyBindings) PollKeys() (held, pressed ActionSet) {
	for k, a := range kb {
		if ebiten.IsKeyPressed(k) {
			held = held.With(a)
		}
		if inpututil.IsKeyJustPressed(k) {
			pressed = pressed.With(a)
		}
	}
	return held, pressed
}
