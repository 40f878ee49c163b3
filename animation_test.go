package birch

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween/ease"
)

func angleDiff(a, b float32) float64 {
	return math.Abs(math.Remainder(float64(a-b), 2*math.Pi))
}

// --- SimpleHeading ---

func TestSimpleHeadingPeriodic(t *testing.T) {
	for _, ts := range []float64{0, 0.3, 1.7, 4.2, 6.9} {
		a := SimpleHeading(ts)
		b := SimpleHeading(ts + HeadingPeriod)
		assertNear(t, "X", a.X, b.X)
		assertNear(t, "Z", a.Z, b.Z)
		assertNear(t, "Pitch", a.Pitch, b.Pitch)
		assertNear(t, "Roll", a.Roll, b.Roll)
		if d := angleDiff(a.Yaw, b.Yaw); d > epsilon {
			t.Errorf("Yaw(%v) differs by %v after one period", ts, d)
		}
	}
}

func TestSimpleHeadingAtZero(t *testing.T) {
	h := SimpleHeading(0)
	assertNear(t, "X", h.X, 0)
	assertNear(t, "Z", h.Z, 45)
	assertNear(t, "Roll", h.Roll, 0.5)
	if h.Pitch >= 0 {
		t.Errorf("Pitch = %v, want forward (negative) pitch while moving", h.Pitch)
	}
}

func TestSimpleHeadingBounded(t *testing.T) {
	for ts := 0.0; ts < HeadingPeriod; ts += 0.1 {
		h := SimpleHeading(ts)
		if math.Abs(float64(h.X)) > 15+epsilon || math.Abs(float64(h.Z)) > 45+epsilon {
			t.Fatalf("heading at %v out of bounds: %+v", ts, h)
		}
	}
}

// --- Tracks ---

func TestPathTrack(t *testing.T) {
	g := NewGraph()
	id := g.NewGroup("heli")
	track := &PathTrack{Node: id, Phase: 0.75, Altitude: 20}
	track.Apply(g, 2)
	h := SimpleHeading(2.75)
	n := g.Node(id)
	assertVec(t, "Position", n.Position, mgl32.Vec3{h.X, 20, h.Z})
	assertVec(t, "Rotation", n.Rotation, mgl32.Vec3{h.Pitch, h.Yaw, h.Roll})
}

func TestPathTrackCustomPath(t *testing.T) {
	g := NewGraph()
	id := g.NewGroup("n")
	track := &PathTrack{Node: id, Path: func(t float64) Heading {
		return Heading{X: float32(t), Z: 1}
	}}
	track.Apply(g, 3)
	assertVec(t, "Position", g.Node(id).Position, mgl32.Vec3{3, 0, 1})
}

func TestSpinTrackAxis(t *testing.T) {
	g := NewGraph()
	id := g.NewGroup("rotor")
	g.SetRotation(id, mgl32.Vec3{0.1, 0, 0.3})
	track := &SpinTrack{Node: id, Axis: AxisY, Speed: 2}
	track.Apply(g, 0.5)
	assertVec(t, "Rotation", g.Node(id).Rotation, mgl32.Vec3{0.1, 1, 0.3})
}

func TestSpinTrackWrapsLongRuns(t *testing.T) {
	track := &SpinTrack{Axis: AxisX, Speed: 5000}
	for _, elapsed := range []float64{1, 1000, 86400} {
		a := track.Angle(elapsed)
		if a < -math.Pi || a > math.Pi {
			t.Errorf("Angle(%v) = %v, want within [-pi, pi]", elapsed, a)
		}
		if d := angleDiff(a, float32(math.Mod(5000*elapsed, 2*math.Pi))); d > 1e-3 {
			t.Errorf("Angle(%v) off by %v", elapsed, d)
		}
	}
}

func TestAnimatorAppliesInOrder(t *testing.T) {
	g := NewGraph()
	id := g.NewGroup("n")
	var a Animator
	a.Add(
		&SpinTrack{Node: id, Axis: AxisY, Speed: 1},
		&PathTrack{Node: id, Path: func(float64) Heading { return Heading{Yaw: 0.25} }},
	)
	if a.Len() != 2 {
		t.Fatalf("Len = %d, want 2", a.Len())
	}
	a.Update(g, 1)
	// The path track runs last and overwrites the spin.
	assertNear(t, "Yaw", g.Node(id).Rotation[1], 0.25)
}

// --- Tweens ---

func TestTweenPositionReachesTarget(t *testing.T) {
	g := NewGraph()
	id := g.NewGroup("door")
	tw := TweenPosition(g, id, mgl32.Vec3{0, 0, 1.6}, 1, ease.Linear)
	tw.Update(0.5)
	assertNear(t, "mid Z", g.Node(id).Position[2], 0.8)
	if tw.Done {
		t.Error("tween done too early")
	}
	tw.Update(0.6)
	assertVec(t, "Position", g.Node(id).Position, mgl32.Vec3{0, 0, 1.6})
	if !tw.Done {
		t.Error("tween should be done")
	}
	tw.Update(1)
	assertVec(t, "Position after done", g.Node(id).Position, mgl32.Vec3{0, 0, 1.6})
}

func TestTweenRotationAndScale(t *testing.T) {
	g := NewGraph()
	id := g.NewGroup("n")
	rot := TweenRotation(g, id, mgl32.Vec3{1, 2, 3}, 0.5, ease.OutCubic)
	scale := TweenScale(g, id, mgl32.Vec3{2, 2, 2}, 0.5, ease.Linear)
	rot.Update(1)
	scale.Update(1)
	assertVec(t, "Rotation", g.Node(id).Rotation, mgl32.Vec3{1, 2, 3})
	assertVec(t, "Scale", g.Node(id).Scale, mgl32.Vec3{2, 2, 2})
}
