package birch

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/errors"
)

// --- Vertex stage helpers ---

func TestClipRejectBehindCamera(t *testing.T) {
	in := mgl32.Vec4{0, 0, 0, 1}
	behind := mgl32.Vec4{0, 0, 0, -1}
	if clipReject(in, in, in) {
		t.Error("visible triangle rejected")
	}
	if !clipReject(in, in, behind) {
		t.Error("triangle crossing the camera plane kept")
	}
}

func TestClipRejectOutside(t *testing.T) {
	right := mgl32.Vec4{2, 0, 0, 1}
	if !clipReject(right, right, right) {
		t.Error("triangle right of the frustum kept")
	}
	// Straddling the right plane stays.
	if clipReject(right, mgl32.Vec4{0, 0, 0, 1}, right) {
		t.Error("straddling triangle rejected")
	}
	nearCut := mgl32.Vec4{0, 0, -2, 1}
	if !clipReject(nearCut, mgl32.Vec4{0, 0, 0, 1}, mgl32.Vec4{0, 0, 0, 1}) {
		t.Error("triangle crossing the near plane kept")
	}
}

func TestIsBackFace(t *testing.T) {
	a, b, c := mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}
	if isBackFace(a, b, c) {
		t.Error("counter-clockwise triangle culled")
	}
	if !isBackFace(a, c, b) {
		t.Error("clockwise triangle kept")
	}
}

func TestNDCToScreen(t *testing.T) {
	x, y := ndcToScreen(mgl32.Vec3{-1, 1, 0}, 640, 480)
	assertNear(t, "top-left x", x, 0)
	assertNear(t, "top-left y", y, 0)
	x, y = ndcToScreen(mgl32.Vec3{1, -1, 0}, 640, 480)
	assertNear(t, "bottom-right x", x, 640)
	assertNear(t, "bottom-right y", y, 480)
}

func TestShade(t *testing.T) {
	c := Color{1, 0.5, 0.2, 1}
	lit := shade(c, lightDir)
	assertNear(t, "lit R", lit.R, 1)
	dark := shade(c, lightDir.Mul(-1))
	assertNear(t, "ambient R", dark.R, ambient)
	assertNear(t, "ambient G", dark.G, 0.5*ambient)
}

// --- Device ---

func TestEbitenDeviceUniformTable(t *testing.T) {
	d := NewEbitenDevice()
	d.shaders = append(d.shaders, nil) // program 1 without compiling
	if d.UniformLocation(1, UniformAlpha) != ebitenLocAlpha ||
		d.UniformLocation(1, UniformMVP) != ebitenLocMVP ||
		d.UniformLocation(1, UniformModel) != ebitenLocModel {
		t.Error("unexpected uniform slots")
	}
	if d.UniformLocation(1, "uTime") != InvalidLocation {
		t.Error("unknown uniform should be invalid")
	}
	if d.UniformLocation(2, UniformAlpha) != InvalidLocation {
		t.Error("unknown program should resolve nothing")
	}
	if err := d.UseProgram(9); !errors.Is(err, ErrUnknownProgram) {
		t.Errorf("err = %v, want ErrUnknownProgram", err)
	}
}

func TestEbitenDeviceDrawQueuesVisibleTriangles(t *testing.T) {
	d := NewEbitenDevice()
	h, err := d.CreateBufferObject(BoxMesh(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}, ColorWhite))
	if err != nil {
		t.Fatalf("CreateBufferObject: %v", err)
	}
	if err := d.DrawIndexed(h, 36); !errors.Is(err, ErrNoTarget) {
		t.Errorf("err = %v, want ErrNoTarget", err)
	}

	d.Begin(ebiten.NewImage(64, 64))
	proj := mgl32.Perspective(1.2, 1, 1, 100)
	d.SetUniformMat4(ebitenLocMVP, proj.Mul4(mgl32.Translate3D(0, 0, -5)))
	if err := d.DrawIndexed(h, 36); err != nil {
		t.Fatalf("DrawIndexed: %v", err)
	}
	// Looking straight at a box only its front face survives culling.
	if d.Pending() != 2 {
		t.Errorf("pending = %d, want 2", d.Pending())
	}

	d.SetDrawState(DrawState{CullFace: false, DepthWrite: true})
	if err := d.DrawIndexed(h, 36); err != nil {
		t.Fatalf("DrawIndexed: %v", err)
	}
	if d.Pending() != 2+12 {
		t.Errorf("pending = %d, want 14 without culling", d.Pending())
	}

	d.Clear(DefaultClearColor)
	if d.Pending() != 0 {
		t.Error("Clear should drop queued triangles")
	}
}

func TestEbitenDeviceDrawBehindCameraIsEmpty(t *testing.T) {
	d := NewEbitenDevice()
	h, err := d.CreateBufferObject(BoxMesh(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}, ColorWhite))
	if err != nil {
		t.Fatal(err)
	}
	d.Begin(ebiten.NewImage(64, 64))
	proj := mgl32.Perspective(1.2, 1, 1, 100)
	d.SetUniformMat4(ebitenLocMVP, proj.Mul4(mgl32.Translate3D(0, 0, 5)))
	if err := d.DrawIndexed(h, 36); err != nil {
		t.Fatal(err)
	}
	if d.Pending() != 0 {
		t.Errorf("pending = %d, want 0", d.Pending())
	}
}

func TestEbitenDeviceDrawErrors(t *testing.T) {
	d := NewEbitenDevice()
	h, err := d.CreateBufferObject(BoxMesh(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, ColorWhite))
	if err != nil {
		t.Fatal(err)
	}
	if err := d.DrawIndexed(h+1, 3); !errors.Is(err, ErrUnknownBuffer) {
		t.Errorf("err = %v, want ErrUnknownBuffer", err)
	}
	if err := d.DrawIndexed(h, 37); !errors.Is(err, ErrDrawOutOfRange) {
		t.Errorf("err = %v, want ErrDrawOutOfRange", err)
	}
	if _, err := d.CreateBufferObject(Mesh{}); !errors.Is(err, ErrInvalidMesh) {
		t.Errorf("err = %v, want ErrInvalidMesh", err)
	}
}
