package birch

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/errors"
)

// --- Kage shader source ---
// The vertex stage runs on the CPU; Kage only supplies the fragment stage.
// Vertex colors arrive straight (alpha 1) and leave premultiplied.

const sceneShaderSrc = `//kage:unit pixels
package main

var Alpha float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	return color * Alpha
}
`

// SceneShader is the program every helicopter scene links.
var SceneShader = ShaderSource{Name: "scene", Fragment: []byte(sceneShaderSrc)}

// ErrNoTarget is returned by EbitenDevice.DrawIndexed outside Begin/Flush.
var ErrNoTarget = errors.New("birch: no render target, call Begin first")

// Fixed uniform slots of the ebiten device.
const (
	ebitenLocAlpha UniformLocation = iota
	ebitenLocMVP
	ebitenLocModel
)

// lightDir is the world-space direction towards the single directional light.
var lightDir = mgl32.Vec3{0.3, 1, 0.2}.Normalize()

const ambient = 0.35

type screenTriangle struct {
	v       [3]ebiten.Vertex
	depth   float32
	alpha   float32
	program ProgramID
}

// EbitenDevice implements Device on top of ebiten. Vertices are transformed
// and lit on the CPU, triangles are clipped, culled and sorted far to near,
// then submitted with DrawTrianglesShader32 in the Kage fragment program.
// Frames are bracketed by Begin and Flush.
type EbitenDevice struct {
	meshes  []Mesh
	shaders []*ebiten.Shader // shaders[program-1]
	current ProgramID

	state DrawState
	alpha float32
	mvp   mgl32.Mat4
	model mgl32.Mat4

	target        *ebiten.Image
	width, height float32

	tris      []screenTriangle
	batchVert []ebiten.Vertex
	batchInd  []uint32
	uniforms  map[string]any
	triOp     ebiten.DrawTrianglesShaderOptions
}

// NewEbitenDevice returns a device with no buffers or programs.
func NewEbitenDevice() *EbitenDevice {
	return &EbitenDevice{
		state:    DefaultDrawState,
		alpha:    1,
		mvp:      mgl32.Ident4(),
		model:    mgl32.Ident4(),
		tris:     make([]screenTriangle, 0, 1024),
		uniforms: make(map[string]any, 1),
	}
}

// Begin starts a frame drawing into target.
func (d *EbitenDevice) Begin(target *ebiten.Image) {
	d.target = target
	b := target.Bounds()
	d.width, d.height = float32(b.Dx()), float32(b.Dy())
	d.tris = d.tris[:0]
}

// Clear implements Device. Pending triangles are discarded.
func (d *EbitenDevice) Clear(c Color) {
	d.tris = d.tris[:0]
	if d.target != nil {
		d.target.Fill(c.toRGBA())
	}
}

// CreateBufferObject implements Device. The mesh stays CPU-resident.
func (d *EbitenDevice) CreateBufferObject(m Mesh) (BufferHandle, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	d.meshes = append(d.meshes, m)
	return BufferHandle(len(d.meshes)), nil
}

// LinkProgram implements Device by compiling the Kage fragment source.
// An empty fragment stage selects the scene shader.
func (d *EbitenDevice) LinkProgram(src ShaderSource) (ProgramID, error) {
	frag := src.Fragment
	if len(frag) == 0 {
		frag = SceneShader.Fragment
	}
	s, err := ebiten.NewShader(frag)
	if err != nil {
		return 0, errors.Wrapf(err, "compile shader %q", src.Name)
	}
	d.shaders = append(d.shaders, s)
	return ProgramID(len(d.shaders)), nil
}

// UseProgram implements Device.
func (d *EbitenDevice) UseProgram(p ProgramID) error {
	if p == 0 || int(p) > len(d.shaders) {
		return errors.Wrapf(ErrUnknownProgram, "program %d", p)
	}
	d.current = p
	return nil
}

// UniformLocation implements Device.
func (d *EbitenDevice) UniformLocation(p ProgramID, name string) UniformLocation {
	if p == 0 || int(p) > len(d.shaders) {
		return InvalidLocation
	}
	switch name {
	case UniformAlpha:
		return ebitenLocAlpha
	case UniformMVP:
		return ebitenLocMVP
	case UniformModel:
		return ebitenLocModel
	}
	return InvalidLocation
}

// SetDrawState implements Device.
func (d *EbitenDevice) SetDrawState(s DrawState) {
	d.state = s
}

// SetUniform1f implements Device.
func (d *EbitenDevice) SetUniform1f(loc UniformLocation, v float32) {
	if loc == ebitenLocAlpha {
		d.alpha = v
	}
}

// SetUniformMat4 implements Device.
func (d *EbitenDevice) SetUniformMat4(loc UniformLocation, m mgl32.Mat4) {
	switch loc {
	case ebitenLocMVP:
		d.mvp = m
	case ebitenLocModel:
		d.model = m
	}
}

// DrawIndexed implements Device. Triangles are queued until Flush.
func (d *EbitenDevice) DrawIndexed(buffer BufferHandle, indexCount int32) error {
	if buffer == 0 || int(buffer) > len(d.meshes) {
		return errors.Wrapf(ErrUnknownBuffer, "buffer %d", buffer)
	}
	m := &d.meshes[buffer-1]
	if indexCount < 0 || int(indexCount) > len(m.Indices) {
		return errors.Wrapf(ErrDrawOutOfRange, "draw %d indices from buffer %d", indexCount, buffer)
	}
	if d.target == nil {
		return ErrNoTarget
	}

	for i := 0; i+2 < int(indexCount); i += 3 {
		var clip [3]mgl32.Vec4
		for k := 0; k < 3; k++ {
			clip[k] = clipPosition(d.mvp, m.Position(int(m.Indices[i+k])))
		}
		if clipReject(clip[0], clip[1], clip[2]) {
			continue
		}
		var ndc [3]mgl32.Vec3
		for k := 0; k < 3; k++ {
			ndc[k] = clip[k].Vec3().Mul(1 / clip[k][3])
		}
		if d.state.CullFace && isBackFace(ndc[0], ndc[1], ndc[2]) {
			continue
		}

		tri := screenTriangle{
			depth:   (ndc[0][2] + ndc[1][2] + ndc[2][2]) / 3,
			alpha:   d.alpha,
			program: d.current,
		}
		for k := 0; k < 3; k++ {
			idx := int(m.Indices[i+k])
			x, y := ndcToScreen(ndc[k], d.width, d.height)
			c := shade(m.Color(idx), TransformDirection(d.model, m.normal(idx)))
			tri.v[k] = ebiten.Vertex{
				DstX: x, DstY: y,
				ColorR: c.R, ColorG: c.G, ColorB: c.B, ColorA: 1,
			}
		}
		d.tris = append(d.tris, tri)
	}
	return nil
}

// Flush submits the queued triangles to the target. With depth writes on,
// triangles are drawn far to near.
func (d *EbitenDevice) Flush() {
	if d.target == nil || len(d.tris) == 0 {
		d.tris = d.tris[:0]
		return
	}
	if d.state.DepthWrite {
		sort.SliceStable(d.tris, func(i, j int) bool {
			return d.tris[i].depth > d.tris[j].depth
		})
	}

	d.batchVert = d.batchVert[:0]
	d.batchInd = d.batchInd[:0]
	run := d.tris[0]
	for i := range d.tris {
		t := &d.tris[i]
		if t.program != run.program || t.alpha != run.alpha {
			d.flushBatch(run.program, run.alpha)
			run = *t
		}
		base := uint32(len(d.batchVert))
		d.batchVert = append(d.batchVert, t.v[0], t.v[1], t.v[2])
		d.batchInd = append(d.batchInd, base, base+1, base+2)
	}
	d.flushBatch(run.program, run.alpha)
	d.tris = d.tris[:0]
}

// flushBatch submits accumulated vertices as a single DrawTrianglesShader32 call.
func (d *EbitenDevice) flushBatch(program ProgramID, alpha float32) {
	if len(d.batchVert) == 0 {
		return
	}
	d.uniforms["Alpha"] = alpha
	d.triOp.Uniforms = d.uniforms
	d.triOp.Blend = d.state.Blend.EbitenBlend()
	d.target.DrawTrianglesShader32(d.batchVert, d.batchInd, d.shaders[program-1], &d.triOp)

	d.batchVert = d.batchVert[:0]
	d.batchInd = d.batchInd[:0]
}

// Pending returns the number of triangles queued since Begin.
func (d *EbitenDevice) Pending() int {
	return len(d.tris)
}

// --- Vertex stage helpers ---

func (m *Mesh) normal(i int) mgl32.Vec3 {
	return mgl32.Vec3{m.Normals[3*i], m.Normals[3*i+1], m.Normals[3*i+2]}
}

func clipPosition(mvp mgl32.Mat4, p mgl32.Vec3) mgl32.Vec4 {
	return mvp.Mul4x1(p.Vec4(1))
}

// clipReject reports whether a triangle must be dropped: it touches or
// crosses the near plane, or lies entirely outside one clip plane.
func clipReject(a, b, c mgl32.Vec4) bool {
	if a[3] <= 0 || b[3] <= 0 || c[3] <= 0 {
		return true
	}
	for axis := 0; axis < 3; axis++ {
		if a[axis] > a[3] && b[axis] > b[3] && c[axis] > c[3] {
			return true
		}
		if a[axis] < -a[3] && b[axis] < -b[3] && c[axis] < -c[3] {
			return true
		}
	}
	return a[2] < -a[3] || b[2] < -b[3] || c[2] < -c[3]
}

// isBackFace reports whether the NDC triangle is wound clockwise.
func isBackFace(a, b, c mgl32.Vec3) bool {
	return (b[0]-a[0])*(c[1]-a[1])-(b[1]-a[1])*(c[0]-a[0]) <= 0
}

// ndcToScreen maps NDC x, y to pixels with the origin at the top left.
func ndcToScreen(p mgl32.Vec3, width, height float32) (x, y float32) {
	return (p[0] + 1) * 0.5 * width, (1 - p[1]) * 0.5 * height
}

// shade applies ambient plus Lambert lighting from lightDir.
func shade(c Color, normal mgl32.Vec3) Color {
	l := float32(0)
	if normal.Len() > 0 {
		l = normal.Normalize().Dot(lightDir)
	}
	if l < 0 {
		l = 0
	}
	k := ambient + (1-ambient)*l
	return Color{clamp01(c.R * k), clamp01(c.G * k), clamp01(c.B * k), c.A}
}
