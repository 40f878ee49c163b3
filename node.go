package birch

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// NodeID is a stable handle to a node in a Graph. The zero value refers to no node.
type NodeID uint32

// NoNode is the invalid handle returned for "no parent" and failed lookups.
const NoNode NodeID = 0

// Drawable references GPU-resident geometry. Many nodes may share one
// Drawable; the buffers behind it are created once.
type Drawable struct {
	Buffer     BufferHandle
	IndexCount int32
}

// Valid reports whether the drawable would issue a draw call.
func (d Drawable) Valid() bool {
	return d.Buffer != 0 && d.IndexCount > 0
}

// Node is one element of the scene graph. Its local transform fields may be
// written freely between frames; world matrices are composed lazily during
// traversal and never cached. The tree structure is owned by the Graph and
// can only be changed through it.
type Node struct {
	// Identity
	ID   NodeID
	Name string

	// Transform (local)
	Transform

	// Drawable is zero for group nodes.
	Drawable Drawable

	// Metadata
	UserData any

	// Hierarchy, maintained by Graph.
	parent   NodeID
	children []NodeID
}

// IsDrawable reports whether the node issues a draw call when traversed.
func (n *Node) IsDrawable() bool {
	return n.Drawable.Valid()
}

// Parent returns the parent handle, or NoNode for a detached node or a root.
func (n *Node) Parent() NodeID {
	return n.parent
}

// Children returns the child handles in insertion order. The returned slice
// MUST NOT be mutated by the caller.
func (n *Node) Children() []NodeID {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// LocalMatrix returns the node's local transform matrix.
func (n *Node) LocalMatrix() mgl32.Mat4 {
	return n.Transform.Matrix()
}

// --- Graph ---

// Graph is an arena of nodes addressed by NodeID. Every node has at most one
// parent and the parent links never form a cycle; AddChild enforces both.
// A Graph is not safe for concurrent use.
type Graph struct {
	nodes []*Node // nodes[id-1]
	debug bool
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

func (g *Graph) newNode(name string, d Drawable) NodeID {
	id := NodeID(len(g.nodes) + 1)
	g.nodes = append(g.nodes, &Node{
		ID:        id,
		Name:      name,
		Transform: IdentityTransform(),
		Drawable:  d,
	})
	return id
}

// NewGroup creates a node with no geometry, used for hierarchical grouping.
func (g *Graph) NewGroup(name string) NodeID {
	return g.newNode(name, Drawable{})
}

// NewDrawable creates a node that is drawn whenever it is reached during
// traversal, provided d.IndexCount > 0.
func (g *Graph) NewDrawable(name string, d Drawable) NodeID {
	return g.newNode(name, d)
}

// Len returns the number of nodes in the arena.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Has reports whether id refers to a node of this graph.
func (g *Graph) Has(id NodeID) bool {
	return id != NoNode && int(id) <= len(g.nodes)
}

// Node returns the node for id. The pointer stays valid for the life of the
// graph. Panics if id is not a node of this graph.
func (g *Graph) Node(id NodeID) *Node {
	if !g.Has(id) {
		panic(fmt.Sprintf("birch: invalid node handle %d", id))
	}
	return g.nodes[id-1]
}

// AddChild appends child to parent's children. From then on child is owned
// by parent exclusively.
// Panics if either handle is invalid, if child == parent, if child already has
// a parent, or if child is an ancestor of parent (cycle). Use RemoveChild
// first to move a subtree.
func (g *Graph) AddChild(parent, child NodeID) {
	p := g.Node(parent)
	c := g.Node(child)
	if parent == child {
		panic("birch: cannot add a node as its own child")
	}
	if c.parent != NoNode {
		panic(fmt.Sprintf("birch: node %d (%q) already has parent %d", child, c.Name, c.parent))
	}
	if g.isAncestor(child, parent) {
		panic("birch: adding child would create a cycle")
	}
	c.parent = parent
	p.children = append(p.children, child)
	if g.debug {
		debugCheckTreeDepth(g, child)
		debugCheckChildCount(p)
	}
}

// RemoveChild detaches child from parent. The child keeps its own subtree.
// Panics if child's parent is not parent.
func (g *Graph) RemoveChild(parent, child NodeID) {
	p := g.Node(parent)
	c := g.Node(child)
	if c.parent != parent {
		panic("birch: child's parent is not this node")
	}
	for i, id := range p.children {
		if id == child {
			copy(p.children[i:], p.children[i+1:])
			p.children = p.children[:len(p.children)-1]
			break
		}
	}
	c.parent = NoNode
}

// ChildAt returns the index-th child of id.
func (g *Graph) ChildAt(id NodeID, index int) NodeID {
	n := g.Node(id)
	if index < 0 || index >= len(n.children) {
		panic("birch: child index out of range")
	}
	return n.children[index]
}

// Find returns the first node named name in pre-order below and including
// root, or NoNode.
func (g *Graph) Find(root NodeID, name string) NodeID {
	found := NoNode
	g.Walk(root, func(id NodeID, n *Node, _ int) bool {
		if found != NoNode {
			return false
		}
		if n.Name == name {
			found = id
			return false
		}
		return true
	})
	return found
}

// SetLocalTransform replaces all local transform fields of id. Nothing is
// recomputed until the next traversal.
func (g *Graph) SetLocalTransform(id NodeID, position, rotation, scale, pivot mgl32.Vec3) {
	n := g.Node(id)
	n.Transform = Transform{Position: position, Rotation: rotation, Scale: scale, Pivot: pivot}
}

// SetPosition sets the local position of id.
func (g *Graph) SetPosition(id NodeID, position mgl32.Vec3) {
	g.Node(id).Position = position
}

// SetRotation sets the local Euler angles of id.
func (g *Graph) SetRotation(id NodeID, rotation mgl32.Vec3) {
	g.Node(id).Rotation = rotation
}

// SetPivot sets the reference point id rotates about.
func (g *Graph) SetPivot(id NodeID, pivot mgl32.Vec3) {
	g.Node(id).Pivot = pivot
}

// WorldMatrix composes the local matrices from the top of id's tree down to id.
func (g *Graph) WorldMatrix(id NodeID) mgl32.Mat4 {
	n := g.Node(id)
	local := n.LocalMatrix()
	if n.parent == NoNode {
		return local
	}
	return g.WorldMatrix(n.parent).Mul4(local)
}

// LocalToWorld converts a point in id's local frame to world space.
func (g *Graph) LocalToWorld(id NodeID, p mgl32.Vec3) mgl32.Vec3 {
	return TransformPoint(g.WorldMatrix(id), p)
}

// --- Helpers ---

// isAncestor reports whether candidate is node or one of its ancestors.
func (g *Graph) isAncestor(candidate, node NodeID) bool {
	for p := node; p != NoNode; p = g.nodes[p-1].parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// depth returns the number of nodes from id up to the top of its tree.
func (g *Graph) depth(id NodeID) int {
	d := 0
	for p := id; p != NoNode; p = g.nodes[p-1].parent {
		d++
	}
	return d
}
