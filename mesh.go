package birch

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// ErrInvalidMesh is returned by Mesh.Validate for inconsistent geometry.
var ErrInvalidMesh = errors.New("birch: invalid mesh")

// Mesh is one part's geometry as supplied to CreateBufferObject. Vertices,
// Colors and Normals are flat xyz / rgb triples with one entry per vertex.
// Indices form counter-clockwise front-facing triangles.
type Mesh struct {
	Vertices   []float32
	Indices    []uint32
	Colors     []float32
	Normals    []float32
	IndexCount int32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// Validate checks that the attribute streams agree with each other and that
// every index refers to a vertex.
func (m *Mesh) Validate() error {
	switch {
	case len(m.Vertices) == 0:
		return errors.Wrap(ErrInvalidMesh, "no vertices")
	case len(m.Vertices)%3 != 0:
		return errors.Wrapf(ErrInvalidMesh, "vertex stream length %d is not a multiple of 3", len(m.Vertices))
	case len(m.Colors) != len(m.Vertices):
		return errors.Wrapf(ErrInvalidMesh, "%d color components for %d vertex components", len(m.Colors), len(m.Vertices))
	case len(m.Normals) != len(m.Vertices):
		return errors.Wrapf(ErrInvalidMesh, "%d normal components for %d vertex components", len(m.Normals), len(m.Vertices))
	case len(m.Indices) == 0 || len(m.Indices)%3 != 0:
		return errors.Wrapf(ErrInvalidMesh, "index count %d is not a positive multiple of 3", len(m.Indices))
	case int(m.IndexCount) != len(m.Indices):
		return errors.Wrapf(ErrInvalidMesh, "index count %d does not match %d indices", m.IndexCount, len(m.Indices))
	}
	n := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= n {
			return errors.Wrapf(ErrInvalidMesh, "index %d at %d out of range (%d vertices)", idx, i, n)
		}
	}
	return nil
}

// Position returns vertex i.
func (m *Mesh) Position(i int) mgl32.Vec3 {
	return mgl32.Vec3{m.Vertices[3*i], m.Vertices[3*i+1], m.Vertices[3*i+2]}
}

// Color returns the color of vertex i.
func (m *Mesh) Color(i int) Color {
	return Color{m.Colors[3*i], m.Colors[3*i+1], m.Colors[3*i+2], 1}
}

// UploadMesh validates m and creates its buffer object on dev.
func UploadMesh(dev Device, name string, m Mesh) (Drawable, error) {
	if err := m.Validate(); err != nil {
		return Drawable{}, errors.Wrapf(err, "mesh %q", name)
	}
	h, err := dev.CreateBufferObject(m)
	if err != nil {
		return Drawable{}, errors.Wrapf(err, "upload mesh %q", name)
	}
	return Drawable{Buffer: h, IndexCount: m.IndexCount}, nil
}

// --- builders ---

func (m *Mesh) addVertex(p, n mgl32.Vec3, c Color) uint32 {
	idx := uint32(len(m.Vertices) / 3)
	m.Vertices = append(m.Vertices, p[0], p[1], p[2])
	m.Normals = append(m.Normals, n[0], n[1], n[2])
	m.Colors = append(m.Colors, c.R, c.G, c.B)
	return idx
}

func (m *Mesh) addTriangle(a, b, c uint32) {
	m.Indices = append(m.Indices, a, b, c)
	m.IndexCount = int32(len(m.Indices))
}

// addQuad adds the rectangle a-b-c-d (given in either cyclic order) as two
// triangles wound counter-clockwise around normal.
func (m *Mesh) addQuad(a, b, c, d, normal mgl32.Vec3, col Color) {
	if b.Sub(a).Cross(c.Sub(a)).Dot(normal) < 0 {
		b, d = d, b
	}
	ia := m.addVertex(a, normal, col)
	ib := m.addVertex(b, normal, col)
	ic := m.addVertex(c, normal, col)
	id := m.addVertex(d, normal, col)
	m.addTriangle(ia, ib, ic)
	m.addTriangle(ia, ic, id)
}

// BoxMesh returns an axis-aligned box between lo and hi with flat normals.
func BoxMesh(lo, hi mgl32.Vec3, col Color) Mesh {
	var m Mesh
	x0, y0, z0 := lo[0], lo[1], lo[2]
	x1, y1, z1 := hi[0], hi[1], hi[2]
	v := func(x, y, z float32) mgl32.Vec3 { return mgl32.Vec3{x, y, z} }

	m.addQuad(v(x1, y0, z0), v(x1, y1, z0), v(x1, y1, z1), v(x1, y0, z1), mgl32.Vec3{1, 0, 0}, col)
	m.addQuad(v(x0, y0, z0), v(x0, y0, z1), v(x0, y1, z1), v(x0, y1, z0), mgl32.Vec3{-1, 0, 0}, col)
	m.addQuad(v(x0, y1, z0), v(x0, y1, z1), v(x1, y1, z1), v(x1, y1, z0), mgl32.Vec3{0, 1, 0}, col)
	m.addQuad(v(x0, y0, z0), v(x1, y0, z0), v(x1, y0, z1), v(x0, y0, z1), mgl32.Vec3{0, -1, 0}, col)
	m.addQuad(v(x0, y0, z1), v(x1, y0, z1), v(x1, y1, z1), v(x0, y1, z1), mgl32.Vec3{0, 0, 1}, col)
	m.addQuad(v(x0, y0, z0), v(x0, y1, z0), v(x1, y1, z0), v(x1, y0, z0), mgl32.Vec3{0, 0, -1}, col)
	return m
}

// MergeMeshes concatenates meshes into one, rebasing indices.
func MergeMeshes(meshes ...Mesh) Mesh {
	var out Mesh
	for _, m := range meshes {
		base := uint32(out.VertexCount())
		out.Vertices = append(out.Vertices, m.Vertices...)
		out.Colors = append(out.Colors, m.Colors...)
		out.Normals = append(out.Normals, m.Normals...)
		for _, idx := range m.Indices {
			out.Indices = append(out.Indices, base+idx)
		}
	}
	out.IndexCount = int32(len(out.Indices))
	return out
}

// HeightFunc returns the terrain height at (x, z).
type HeightFunc func(x, z float32) float32

// LunarHeight is a gently cratered surface used by the demo terrain.
func LunarHeight(x, z float32) float32 {
	fx, fz := float64(x), float64(z)
	h := 3*math.Sin(fx*0.05)*math.Cos(fz*0.04) +
		1.5*math.Sin(fx*0.13+fz*0.07) +
		0.6*math.Cos(fz*0.31-fx*0.11)
	return float32(h)
}

// TerrainMesh builds a cells x cells height field spanning size units on X
// and Z, centred on the origin, with smooth normals and height-shaded color.
func TerrainMesh(cells int, size float32, height HeightFunc) Mesh {
	if cells < 1 {
		cells = 1
	}
	if height == nil {
		height = func(float32, float32) float32 { return 0 }
	}
	var m Mesh
	step := size / float32(cells)
	half := size / 2
	const eps = 0.5
	for j := 0; j <= cells; j++ {
		for i := 0; i <= cells; i++ {
			x := -half + float32(i)*step
			z := -half + float32(j)*step
			y := height(x, z)
			dx := (height(x+eps, z) - height(x-eps, z)) / (2 * eps)
			dz := (height(x, z+eps) - height(x, z-eps)) / (2 * eps)
			n := mgl32.Vec3{-dx, 1, -dz}.Normalize()
			shade := 0.45 + 0.05*y
			m.addVertex(mgl32.Vec3{x, y, z}, n, Color{shade, shade, shade * 1.05, 1})
		}
	}
	row := uint32(cells + 1)
	for j := 0; j < cells; j++ {
		for i := 0; i < cells; i++ {
			i00 := uint32(j)*row + uint32(i)
			i10 := i00 + 1
			i01 := i00 + row
			i11 := i01 + 1
			m.addTriangle(i00, i01, i11)
			m.addTriangle(i00, i11, i10)
		}
	}
	return m
}

// Pivots of the helicopter parts, in the helicopter's local frame.
var (
	TailRotorPivot = mgl32.Vec3{0.35, 2.3, 10.4}
	DoorPivot      = mgl32.Vec3{-1, 0, 0}
)

// HelicopterMeshes holds the four parts of a helicopter.
type HelicopterMeshes struct {
	Body, Door, MainRotor, TailRotor Mesh
}

// NewHelicopterMeshes builds a blocky helicopter facing -Z with the tail
// boom along +Z. The main rotor spins about the local Y axis through the
// origin and the tail rotor about X through TailRotorPivot.
func NewHelicopterMeshes() HelicopterMeshes {
	hull := Color{0.32, 0.42, 0.30, 1}
	glass := Color{0.55, 0.75, 0.85, 1}
	blade := Color{0.12, 0.12, 0.12, 1}
	door := Color{0.40, 0.50, 0.36, 1}
	v := func(x, y, z float32) mgl32.Vec3 { return mgl32.Vec3{x, y, z} }

	body := MergeMeshes(
		BoxMesh(v(-1, 0, -3), v(1, 2, 3), hull),
		BoxMesh(v(-0.9, 0.9, -3.6), v(0.9, 1.9, -3), glass),
		BoxMesh(v(-0.25, 1.6, 3), v(0.25, 2.1, 10.2), hull),
		BoxMesh(v(-0.1, 2.1, 9.6), v(0.1, 3.2, 10.4), hull),
		BoxMesh(v(-0.15, 2.0, -0.15), v(0.15, 2.4, 0.15), blade),
	)
	tp := TailRotorPivot
	return HelicopterMeshes{
		Body: body,
		Door: BoxMesh(v(-1.08, 0.3, -1), v(-1.0, 1.7, 0.6), door),
		MainRotor: MergeMeshes(
			BoxMesh(v(-6, 2.4, -0.2), v(6, 2.5, 0.2), blade),
			BoxMesh(v(-0.2, 2.4, -6), v(0.2, 2.5, 6), blade),
		),
		TailRotor: MergeMeshes(
			BoxMesh(v(tp[0]-0.05, tp[1]-0.1, tp[2]-0.9), v(tp[0]+0.05, tp[1]+0.1, tp[2]+0.9), blade),
			BoxMesh(v(tp[0]-0.05, tp[1]-0.9, tp[2]-0.1), v(tp[0]+0.05, tp[1]+0.9, tp[2]+0.1), blade),
		),
	}
}
