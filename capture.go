package birch

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// CaptureOpKind identifies a recorded device call.
type CaptureOpKind uint8

const (
	OpClear CaptureOpKind = iota
	OpUseProgram
	OpDrawState
	OpUniform1f
	OpUniformMat4
	OpDraw
)

// CaptureOp is one recorded device call. Only the fields relevant to Kind are set.
type CaptureOp struct {
	Kind       CaptureOpKind
	Color      Color
	Program    ProgramID
	State      DrawState
	Location   UniformLocation
	Float      float32
	Matrix     mgl32.Mat4
	Buffer     BufferHandle
	IndexCount int32
}

// CapturedDraw is a draw call together with the uniforms in effect when it
// was issued.
type CapturedDraw struct {
	Buffer     BufferHandle
	IndexCount int32
	Program    ProgramID
	Alpha      float32
	MVP        mgl32.Mat4
	Model      mgl32.Mat4
}

// CaptureDevice is an in-memory Device that records every call. It validates
// handles and index ranges the way a GPU driver would reject them, which makes
// it suitable for tests and headless runs.
type CaptureDevice struct {
	// Uniforms lists the uniform names every linked program exposes. Names
	// not listed resolve to InvalidLocation.
	Uniforms []string

	meshes   []Mesh // meshes[handle-1]
	programs []ShaderSource
	current  ProgramID
	values   map[UniformLocation]any

	ops   []CaptureOp
	draws []CapturedDraw
}

// NewCaptureDevice returns a device whose programs expose the alpha, mvp and
// model uniforms.
func NewCaptureDevice() *CaptureDevice {
	return &CaptureDevice{
		Uniforms: []string{UniformAlpha, UniformMVP, UniformModel},
		values:   make(map[UniformLocation]any),
	}
}

func (d *CaptureDevice) record(op CaptureOp) {
	d.ops = append(d.ops, op)
}

// Clear implements Device.
func (d *CaptureDevice) Clear(c Color) {
	d.record(CaptureOp{Kind: OpClear, Color: c})
}

// CreateBufferObject implements Device.
func (d *CaptureDevice) CreateBufferObject(m Mesh) (BufferHandle, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	d.meshes = append(d.meshes, m)
	return BufferHandle(len(d.meshes)), nil
}

// LinkProgram implements Device.
func (d *CaptureDevice) LinkProgram(src ShaderSource) (ProgramID, error) {
	d.programs = append(d.programs, src)
	return ProgramID(len(d.programs)), nil
}

// UseProgram implements Device.
func (d *CaptureDevice) UseProgram(p ProgramID) error {
	if p == 0 || int(p) > len(d.programs) {
		return errors.Wrapf(ErrUnknownProgram, "program %d", p)
	}
	d.current = p
	d.record(CaptureOp{Kind: OpUseProgram, Program: p})
	return nil
}

// UniformLocation implements Device.
func (d *CaptureDevice) UniformLocation(p ProgramID, name string) UniformLocation {
	if p == 0 || int(p) > len(d.programs) {
		return InvalidLocation
	}
	for i, u := range d.Uniforms {
		if u == name {
			return UniformLocation(i)
		}
	}
	return InvalidLocation
}

// SetDrawState implements Device.
func (d *CaptureDevice) SetDrawState(s DrawState) {
	d.record(CaptureOp{Kind: OpDrawState, State: s})
}

// SetUniform1f implements Device.
func (d *CaptureDevice) SetUniform1f(loc UniformLocation, v float32) {
	if loc == InvalidLocation {
		return
	}
	d.values[loc] = v
	d.record(CaptureOp{Kind: OpUniform1f, Location: loc, Float: v})
}

// SetUniformMat4 implements Device.
func (d *CaptureDevice) SetUniformMat4(loc UniformLocation, m mgl32.Mat4) {
	if loc == InvalidLocation {
		return
	}
	d.values[loc] = m
	d.record(CaptureOp{Kind: OpUniformMat4, Location: loc, Matrix: m})
}

// DrawIndexed implements Device.
func (d *CaptureDevice) DrawIndexed(buffer BufferHandle, indexCount int32) error {
	if buffer == 0 || int(buffer) > len(d.meshes) {
		return errors.Wrapf(ErrUnknownBuffer, "buffer %d", buffer)
	}
	if indexCount < 0 || int(indexCount) > len(d.meshes[buffer-1].Indices) {
		return errors.Wrapf(ErrDrawOutOfRange, "draw %d indices from buffer %d", indexCount, buffer)
	}
	d.record(CaptureOp{Kind: OpDraw, Buffer: buffer, IndexCount: indexCount})
	d.draws = append(d.draws, CapturedDraw{
		Buffer:     buffer,
		IndexCount: indexCount,
		Program:    d.current,
		Alpha:      d.float(UniformAlpha),
		MVP:        d.mat(UniformMVP),
		Model:      d.mat(UniformModel),
	})
	return nil
}

func (d *CaptureDevice) float(name string) float32 {
	v, _ := d.values[d.UniformLocation(d.current, name)].(float32)
	return v
}

func (d *CaptureDevice) mat(name string) mgl32.Mat4 {
	v, _ := d.values[d.UniformLocation(d.current, name)].(mgl32.Mat4)
	return v
}

// Ops returns every recorded call in order.
func (d *CaptureDevice) Ops() []CaptureOp {
	return d.ops
}

// Draws returns the recorded draw calls in order.
func (d *CaptureDevice) Draws() []CapturedDraw {
	return d.draws
}

// NumBuffers returns how many buffer objects were created.
func (d *CaptureDevice) NumBuffers() int {
	return len(d.meshes)
}

// Mesh returns the mesh uploaded under h.
func (d *CaptureDevice) Mesh(h BufferHandle) (Mesh, bool) {
	if h == 0 || int(h) > len(d.meshes) {
		return Mesh{}, false
	}
	return d.meshes[h-1], true
}

// Reset drops the recorded calls but keeps buffers and programs.
func (d *CaptureDevice) Reset() {
	d.ops = d.ops[:0]
	d.draws = d.draws[:0]
}
