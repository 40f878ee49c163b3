package birch

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// DrawCommand is a single draw emitted during scene traversal.
type DrawCommand struct {
	Node     NodeID
	Drawable Drawable
	World    mgl32.Mat4
	MVP      mgl32.Mat4
	// Order is the node's 1-based pre-order position in the traversal.
	Order int
}

// DefaultClearColor is the dark blue-black night sky of the helicopter scene.
var DefaultClearColor = Color{0.035, 0.046, 0.078, 1}

// Renderer draws one scene graph from a camera. It never writes to nodes and
// keeps no scene state beyond the root handle.
type Renderer struct {
	ClearColor Color
	Alpha      float32
	State      DrawState

	device  Device
	program *Program
	graph   *Graph
	root    NodeID

	commands []DrawCommand
	debug    bool
}

// NewRenderer creates a renderer for the tree under root.
func NewRenderer(dev Device, program *Program, g *Graph, root NodeID) *Renderer {
	if !g.Has(root) {
		panic("birch: renderer root is not a node of the graph")
	}
	return &Renderer{
		ClearColor: DefaultClearColor,
		Alpha:      0.9,
		State:      DefaultDrawState,
		device:     dev,
		program:    program,
		graph:      g,
		root:       root,
		commands:   make([]DrawCommand, 0, 64),
	}
}

// Root returns the handle the renderer traverses from.
func (r *Renderer) Root() NodeID {
	return r.root
}

// SetDebugMode enables per-frame timing on stderr.
func (r *Renderer) SetDebugMode(enabled bool) {
	r.debug = enabled
}

// Render clears the frame, activates the program and draw state, then
// traverses the tree in pre-order and draws every drawable node with
// mvp = viewProjection * world. Any device failure aborts the frame.
func (r *Renderer) Render(cam *Camera) error {
	var stats debugStats
	var t0 time.Time
	if r.debug {
		t0 = time.Now()
	}

	r.device.Clear(r.ClearColor)
	if err := r.program.Use(); err != nil {
		return errors.Wrap(err, "render")
	}
	r.device.SetDrawState(r.State)
	r.program.SetAlpha(r.Alpha)

	vp := cam.ViewProjectionMatrix()
	r.commands = r.commands[:0]
	order := 0
	r.traverse(r.root, vp, mgl32.Ident4(), &order)

	if r.debug {
		stats.traverseTime = time.Since(t0)
		stats.nodeCount = order
		stats.drawCount = len(r.commands)
		t0 = time.Now()
	}

	for i := range r.commands {
		cmd := &r.commands[i]
		r.program.SetMVP(cmd.MVP)
		r.program.SetModel(cmd.World)
		if err := r.device.DrawIndexed(cmd.Drawable.Buffer, cmd.Drawable.IndexCount); err != nil {
			return errors.Wrapf(err, "draw node %d", cmd.Node)
		}
	}

	if r.debug {
		stats.submitTime = time.Since(t0)
		debugLog(stats)
	}
	return nil
}

// traverse walks the tree depth-first composing world = parent * local and
// emits a command for each drawable node.
func (r *Renderer) traverse(id NodeID, vp, parent mgl32.Mat4, order *int) {
	n := r.graph.Node(id)
	world := parent.Mul4(n.LocalMatrix())
	*order++
	if n.IsDrawable() {
		r.commands = append(r.commands, DrawCommand{
			Node:     id,
			Drawable: n.Drawable,
			World:    world,
			MVP:      vp.Mul4(world),
			Order:    *order,
		})
	}
	for _, child := range n.children {
		r.traverse(child, vp, world, order)
	}
}

// Commands returns the draws of the last Render in submission order. The
// returned slice MUST NOT be mutated and is reused by the next Render.
func (r *Renderer) Commands() []DrawCommand {
	return r.commands
}
