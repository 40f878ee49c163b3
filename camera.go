package birch

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// ErrInvalidProjection is returned when a camera is configured with a field of
// view, aspect ratio or clip range that cannot produce a usable projection.
var ErrInvalidProjection = errors.New("birch: invalid projection")

// CameraConfig holds the initial placement and projection of a Camera.
type CameraConfig struct {
	Position         mgl32.Vec3
	Yaw, Pitch, Roll float32 // radians

	AspectRatio float32
	FovY        float32 // vertical field of view in radians
	Near, Far   float32

	// WrapAngles keeps yaw, pitch and roll in [-pi, pi] as they accumulate.
	WrapAngles bool
}

// DefaultCameraConfig returns the helicopter scene's overhead camera: high above
// the terrain, pitched straight down.
func DefaultCameraConfig(aspect float32) CameraConfig {
	return CameraConfig{
		Position:    mgl32.Vec3{0, 200, -5},
		Pitch:       -1.57,
		AspectRatio: aspect,
		FovY:        1.2,
		Near:        1,
		Far:         1000,
		WrapAngles:  true,
	}
}

func validateProjection(aspect, fovY, near, far float32) error {
	switch {
	case !(aspect > 0) || math.IsInf(float64(aspect), 0):
		return errors.Wrapf(ErrInvalidProjection, "aspect ratio %v", aspect)
	case !(fovY > 0) || fovY >= math.Pi:
		return errors.Wrapf(ErrInvalidProjection, "field of view %v", fovY)
	case !(near > 0):
		return errors.Wrapf(ErrInvalidProjection, "near plane %v", near)
	case !(near < far) || math.IsInf(float64(far), 0):
		return errors.Wrapf(ErrInvalidProjection, "near %v must be less than far %v", near, far)
	}
	return nil
}

// Camera is a free-flying perspective camera. Create it with NewCamera. Position and the three
// orientation angles may be written directly; the view matrix is always
// derived from them on demand. Projection parameters go through setters so
// the cached projection matrix can be invalidated.
type Camera struct {
	Position mgl32.Vec3
	// Yaw rotates about Y, Pitch about X and Roll about Z, in radians.
	Yaw, Pitch, Roll float32

	// WrapAngles keeps the orientation angles in [-pi, pi] after Rotate.
	WrapAngles bool

	aspect, fovY, near, far float32

	projection mgl32.Mat4
	dirty      bool
}

// NewCamera creates a camera, failing fast on invalid projection parameters.
func NewCamera(cfg CameraConfig) (*Camera, error) {
	if err := validateProjection(cfg.AspectRatio, cfg.FovY, cfg.Near, cfg.Far); err != nil {
		return nil, err
	}
	return &Camera{
		Position:   cfg.Position,
		Yaw:        cfg.Yaw,
		Pitch:      cfg.Pitch,
		Roll:       cfg.Roll,
		WrapAngles: cfg.WrapAngles,
		aspect:     cfg.AspectRatio,
		fovY:       cfg.FovY,
		near:       cfg.Near,
		far:        cfg.Far,
		dirty:      true,
	}, nil
}

// Translate moves the camera by (dx, dy, dz) in world space.
func (c *Camera) Translate(dx, dy, dz float32) {
	c.Position = c.Position.Add(mgl32.Vec3{dx, dy, dz})
}

// Rotate adds to the yaw, pitch and roll angles.
func (c *Camera) Rotate(dyaw, dpitch, droll float32) {
	c.Yaw += dyaw
	c.Pitch += dpitch
	c.Roll += droll
	if c.WrapAngles {
		c.Yaw = wrapAngle(c.Yaw)
		c.Pitch = wrapAngle(c.Pitch)
		c.Roll = wrapAngle(c.Roll)
	}
}

// wrapAngle maps a into [-pi, pi]. The matrices built from the result are the
// same as from a, up to rounding.
func wrapAngle(a float32) float32 {
	return float32(math.Remainder(float64(a), 2*math.Pi))
}

// AspectRatio returns the current width/height ratio.
func (c *Camera) AspectRatio() float32 { return c.aspect }

// FovY returns the vertical field of view in radians.
func (c *Camera) FovY() float32 { return c.fovY }

// Near returns the near clip distance.
func (c *Camera) Near() float32 { return c.near }

// Far returns the far clip distance.
func (c *Camera) Far() float32 { return c.far }

// SetAspectRatio changes the aspect ratio and invalidates the projection.
func (c *Camera) SetAspectRatio(aspect float32) error {
	if err := validateProjection(aspect, c.fovY, c.near, c.far); err != nil {
		return err
	}
	if aspect != c.aspect {
		c.aspect = aspect
		c.dirty = true
	}
	return nil
}

// Resize sets the aspect ratio from a framebuffer size.
func (c *Camera) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.Wrapf(ErrInvalidProjection, "framebuffer %dx%d", width, height)
	}
	return c.SetAspectRatio(float32(width) / float32(height))
}

// SetPerspective changes the field of view and clip planes.
func (c *Camera) SetPerspective(fovY, near, far float32) error {
	if err := validateProjection(c.aspect, fovY, near, far); err != nil {
		return err
	}
	c.fovY, c.near, c.far = fovY, near, far
	c.dirty = true
	return nil
}

// WorldTransform is the camera's placement in the world:
//
//	Translate(Position) * Ry(Yaw) * Rx(Pitch) * Rz(Roll)
func (c *Camera) WorldTransform() mgl32.Mat4 {
	return Translation(c.Position).
		Mul4(mgl32.HomogRotate3DY(c.Yaw)).
		Mul4(mgl32.HomogRotate3DX(c.Pitch)).
		Mul4(mgl32.HomogRotate3DZ(c.Roll))
}

// ViewMatrix is the inverse of WorldTransform:
//
//	Rz(-Roll) * Rx(-Pitch) * Ry(-Yaw) * Translate(-Position)
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.HomogRotate3DZ(-c.Roll).
		Mul4(mgl32.HomogRotate3DX(-c.Pitch)).
		Mul4(mgl32.HomogRotate3DY(-c.Yaw)).
		Mul4(Translation(c.Position.Mul(-1)))
}

// ProjectionMatrix returns the perspective projection, recomputing it only
// after the aspect ratio or perspective changed. A camera not built by
// NewCamera (the zero value) has no valid projection and returns identity.
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	if validateProjection(c.aspect, c.fovY, c.near, c.far) != nil {
		return mgl32.Ident4()
	}
	if c.dirty {
		c.projection = mgl32.Perspective(c.fovY, c.aspect, c.near, c.far)
		c.dirty = false
	}
	return c.projection
}

// ViewProjectionMatrix returns ProjectionMatrix() * ViewMatrix().
func (c *Camera) ViewProjectionMatrix() mgl32.Mat4 {
	return c.ProjectionMatrix().Mul4(c.ViewMatrix())
}

// Forward returns the world-space direction the camera looks along (-Z in
// camera space).
func (c *Camera) Forward() mgl32.Vec3 {
	return TransformDirection(c.WorldTransform(), mgl32.Vec3{0, 0, -1})
}
