package birch

import "github.com/go-gl/mathgl/mgl32"

// Axis selects one of the three local rotation axes.
type Axis uint8

const (
	AxisX Axis = iota // pitch
	AxisY             // yaw
	AxisZ             // roll
)

// Unit returns the unit vector of the axis.
func (a Axis) Unit() mgl32.Vec3 {
	switch a {
	case AxisX:
		return mgl32.Vec3{1, 0, 0}
	case AxisY:
		return mgl32.Vec3{0, 1, 0}
	default:
		return mgl32.Vec3{0, 0, 1}
	}
}

// Transform is a node's local placement. Rotation holds one Euler angle per
// axis in radians. Pivot is the point in the node's local frame that the
// rotation is applied about.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
	Pivot    mgl32.Vec3
}

// IdentityTransform returns a transform with unit scale and everything else zero.
func IdentityTransform() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}}
}

// Translation returns the matrix translating by v.
func Translation(v mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(v[0], v[1], v[2])
}

// Rotation returns the matrix rotating by angle radians about axis.
// The axis does not need to be normalized.
func Rotation(angle float32, axis mgl32.Vec3) mgl32.Mat4 {
	return mgl32.HomogRotate3D(angle, axis.Normalize())
}

// Scaling returns the matrix scaling each axis by the components of v.
func Scaling(v mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Scale3D(v[0], v[1], v[2])
}

// EulerRotation composes per-axis angles as Rz(r.z) * Rx(r.x) * Ry(r.y).
// This is the single rotation order used everywhere in birch: a column vector
// is yawed first, then pitched, then rolled.
func EulerRotation(r mgl32.Vec3) mgl32.Mat4 {
	return mgl32.HomogRotate3DZ(r[2]).
		Mul4(mgl32.HomogRotate3DX(r[0])).
		Mul4(mgl32.HomogRotate3DY(r[1]))
}

// PivotedRotation returns Translate(pivot) * EulerRotation(r) * Translate(-pivot),
// a rotation that leaves pivot fixed.
func PivotedRotation(r, pivot mgl32.Vec3) mgl32.Mat4 {
	rot := EulerRotation(r)
	if pivot == (mgl32.Vec3{}) {
		return rot
	}
	return Translation(pivot).Mul4(rot).Mul4(Translation(pivot.Mul(-1)))
}

// Matrix computes the local matrix of the transform:
//
//	Translate(Position) * Translate(Pivot) * R * Translate(-Pivot) * Scale(Scale)
//
// with R = Rz * Rx * Ry. The node's subtree is scaled, rotated about the pivot
// and only then moved by Position.
func (t Transform) Matrix() mgl32.Mat4 {
	return Translation(t.Position).
		Mul4(PivotedRotation(t.Rotation, t.Pivot)).
		Mul4(Scaling(t.Scale))
}

// TransformPoint applies m to the point p (w = 1) without a perspective divide.
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// TransformDirection applies m to the direction d (w = 0).
func TransformDirection(m mgl32.Mat4, d mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(d.Vec4(0)).Vec3()
}
