package birch

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// BufferHandle identifies a GPU buffer object holding one mesh's positions,
// colors, normals and indices. Zero is never a valid handle.
type BufferHandle uint32

// ProgramID identifies a linked shader program.
type ProgramID uint32

// UniformLocation is a resolved uniform slot in a linked program.
type UniformLocation int32

// InvalidLocation is returned for uniform names the program does not have.
// Writes to it are silently dropped.
const InvalidLocation UniformLocation = -1

// Vertex attribute slots bound by CreateBufferObject.
const (
	AttribPosition = 0
	AttribColor    = 1
	AttribNormal   = 2
)

// Uniform names resolved by every Program.
const (
	UniformAlpha = "uAlpha"
	UniformMVP   = "uMVPMatrix"
	UniformModel = "uModelMatrix"
)

var (
	// ErrUnknownBuffer is returned when drawing a handle the device never created.
	ErrUnknownBuffer = errors.New("birch: unknown buffer handle")
	// ErrDrawOutOfRange is returned when a draw asks for more indices than the
	// buffer holds.
	ErrDrawOutOfRange = errors.New("birch: index count out of range")
	// ErrUnknownProgram is returned when activating a program that was never linked.
	ErrUnknownProgram = errors.New("birch: unknown program")
)

// ShaderSource carries the sources handed to Device.LinkProgram. A device
// uses the stages it supports and ignores the rest.
type ShaderSource struct {
	Name     string
	Vertex   []byte
	Fragment []byte
}

// Device is the GPU boundary the renderer drives. Implementations own buffer
// creation, program linking and draw submission; birch only sequences calls.
type Device interface {
	// Clear clears the color and depth buffers.
	Clear(c Color)
	// CreateBufferObject uploads a mesh: positions to attribute slot 0,
	// colors to 1, normals to 2 (3 x float32 each, tightly packed) and the
	// indices as a uint32 element buffer.
	CreateBufferObject(m Mesh) (BufferHandle, error)
	// LinkProgram compiles and links a shader program.
	LinkProgram(src ShaderSource) (ProgramID, error)
	// UseProgram activates a program for the following uniform writes and draws.
	UseProgram(p ProgramID) error
	// UniformLocation resolves name in p, or returns InvalidLocation.
	UniformLocation(p ProgramID, name string) UniformLocation
	// SetDrawState applies face culling, depth write and blending.
	SetDrawState(s DrawState)
	SetUniform1f(loc UniformLocation, v float32)
	SetUniformMat4(loc UniformLocation, m mgl32.Mat4)
	// DrawIndexed draws indexCount indices from buffer as triangles.
	DrawIndexed(buffer BufferHandle, indexCount int32) error
}

// Program is a linked shader program with its uniform locations resolved
// once at link time.
type Program struct {
	ID   ProgramID
	Name string

	dev   Device
	alpha UniformLocation
	mvp   UniformLocation
	model UniformLocation
}

// LinkProgram links src on dev and resolves the alpha, model-view-projection
// and model uniforms.
func LinkProgram(dev Device, src ShaderSource) (*Program, error) {
	id, err := dev.LinkProgram(src)
	if err != nil {
		return nil, errors.Wrapf(err, "link program %q", src.Name)
	}
	return &Program{
		ID:    id,
		Name:  src.Name,
		dev:   dev,
		alpha: dev.UniformLocation(id, UniformAlpha),
		mvp:   dev.UniformLocation(id, UniformMVP),
		model: dev.UniformLocation(id, UniformModel),
	}, nil
}

// Use activates the program.
func (p *Program) Use() error {
	return p.dev.UseProgram(p.ID)
}

// SetAlpha writes the opacity uniform.
func (p *Program) SetAlpha(a float32) {
	if p.alpha == InvalidLocation {
		return
	}
	p.dev.SetUniform1f(p.alpha, a)
}

// SetMVP writes the model-view-projection matrix uniform.
func (p *Program) SetMVP(m mgl32.Mat4) {
	if p.mvp == InvalidLocation {
		return
	}
	p.dev.SetUniformMat4(p.mvp, m)
}

// SetModel writes the model (world) matrix uniform.
func (p *Program) SetModel(m mgl32.Mat4) {
	if p.model == InvalidLocation {
		return
	}
	p.dev.SetUniformMat4(p.model, m)
}

// Locations returns the resolved alpha, mvp and model locations.
func (p *Program) Locations() (alpha, mvp, model UniformLocation) {
	return p.alpha, p.mvp, p.model
}
