package birch

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// --- Procedural path ---

// Heading is a position on the ground plane and an orientation, produced by a
// path function for a moving object.
type Heading struct {
	X, Z             float32
	Pitch, Yaw, Roll float32
}

// Rotation returns the heading as per-axis node angles (pitch on X, yaw on Y,
// roll on Z).
func (h Heading) Rotation() mgl32.Vec3 {
	return mgl32.Vec3{h.Pitch, h.Yaw, h.Roll}
}

const (
	headingStep         = 0.05
	headingPathSize     = 15.0
	headingCircuitSpeed = 0.8
)

// HeadingPeriod is the period in seconds of SimpleHeading.
const HeadingPeriod = 2 * math.Pi / headingCircuitSpeed

// SimpleHeading traces a closed figure-eight over the ground plane. The
// object pitches forward in proportion to its speed, banks with the curve and
// yaws to face its direction of travel, found by looking a short step ahead.
func SimpleHeading(t float64) Heading {
	w := headingCircuitSpeed
	x := headingPathSize * math.Sin(2*t*w)
	xNext := headingPathSize * math.Sin(2*(t+headingStep)*w)
	z := 3 * headingPathSize * math.Cos(t*w)
	zNext := 3 * headingPathSize * math.Cos((t+headingStep)*w)
	dx, dz := xNext-x, zNext-z

	return Heading{
		X:     float32(x),
		Z:     float32(z),
		Roll:  float32(0.5 * math.Cos(t*w)),
		Pitch: float32(-0.175 * math.Hypot(dx, dz)),
		Yaw:   float32(math.Pi + math.Atan2(dx, dz)),
	}
}

// PathFunc maps elapsed time in seconds to a heading.
type PathFunc func(t float64) Heading

// --- Tracks ---

// Track mutates node transform fields from elapsed simulation time. Tracks
// only write positions and rotations; they never change the tree.
type Track interface {
	Apply(g *Graph, elapsed float64)
}

// PathTrack moves a node along a path at a fixed altitude. Phase shifts the
// node along the path so several nodes can share it without colliding.
type PathTrack struct {
	Node     NodeID
	Path     PathFunc
	Phase    float64
	Altitude float32
}

// Apply implements Track.
func (p *PathTrack) Apply(g *Graph, elapsed float64) {
	path := p.Path
	if path == nil {
		path = SimpleHeading
	}
	h := path(elapsed + p.Phase)
	n := g.Node(p.Node)
	n.Position = mgl32.Vec3{h.X, p.Altitude, h.Z}
	n.Rotation = h.Rotation()
}

// SpinTrack spins a node about one local axis at Speed radians per second.
// The angle is derived from elapsed time, not accumulated, and wrapped into
// [-pi, pi], so it stays precise over long runs.
type SpinTrack struct {
	Node  NodeID
	Axis  Axis
	Speed float64
}

// Angle returns the spin angle at elapsed seconds.
func (s *SpinTrack) Angle(elapsed float64) float32 {
	return float32(math.Remainder(s.Speed*elapsed, 2*math.Pi))
}

// Apply implements Track.
func (s *SpinTrack) Apply(g *Graph, elapsed float64) {
	g.Node(s.Node).Rotation[s.Axis] = s.Angle(elapsed)
}

// Animator applies its tracks in insertion order once per frame.
type Animator struct {
	tracks []Track
}

// Add appends tracks.
func (a *Animator) Add(tracks ...Track) {
	a.tracks = append(a.tracks, tracks...)
}

// Len returns the number of tracks.
func (a *Animator) Len() int {
	return len(a.tracks)
}

// Update applies every track for the given elapsed time.
func (a *Animator) Update(g *Graph, elapsed float64) {
	for _, t := range a.tracks {
		t.Apply(g, elapsed)
	}
}

// --- Tweens ---

// TweenGroup animates up to 4 float32 fields on a Node simultaneously.
// Create one via the convenience constructors (TweenPosition, TweenRotation,
// TweenScale) and call Update(dt) each frame, or hand it to Scene.AddTween.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float32
	Done   bool
}

// Update advances all tweens by dt seconds and writes values to the target fields.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = val
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
}

func tweenVec3(v *mgl32.Vec3, to mgl32.Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 3}
	for i := 0; i < 3; i++ {
		g.tweens[i] = gween.New(v[i], to[i], duration, fn)
		g.fields[i] = &v[i]
	}
	return g
}

// TweenPosition creates a TweenGroup that animates the node's local position
// to the given target over the specified duration using the easing function.
func TweenPosition(g *Graph, id NodeID, to mgl32.Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	return tweenVec3(&g.Node(id).Position, to, duration, fn)
}

// TweenRotation creates a TweenGroup that animates the node's Euler angles.
func TweenRotation(g *Graph, id NodeID, to mgl32.Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	return tweenVec3(&g.Node(id).Rotation, to, duration, fn)
}

// TweenScale creates a TweenGroup that animates the node's scale.
func TweenScale(g *Graph, id NodeID, to mgl32.Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	return tweenVec3(&g.Node(id).Scale, to, duration, fn)
}
