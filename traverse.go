package birch

import "github.com/go-gl/mathgl/mgl32"

// WalkFunc is called for each node in pre-order. depth is 0 for the walk's
// root. Returning false skips the node's children.
type WalkFunc func(id NodeID, n *Node, depth int) bool

// Walk visits root and its descendants depth-first in pre-order, children in
// insertion order.
func (g *Graph) Walk(root NodeID, fn WalkFunc) {
	g.walk(root, 0, fn)
}

func (g *Graph) walk(id NodeID, depth int, fn WalkFunc) {
	n := g.Node(id)
	if !fn(id, n, depth) {
		return
	}
	for _, child := range n.children {
		g.walk(child, depth+1, fn)
	}
}

// WorldFunc receives each node with its composed world matrix.
type WorldFunc func(id NodeID, n *Node, world mgl32.Mat4)

// WalkWorld visits root and its descendants in pre-order, composing
// world = parentWorld * local at every node. parentWorld is the accumulated
// matrix above root, usually the identity.
func (g *Graph) WalkWorld(root NodeID, parentWorld mgl32.Mat4, fn WorldFunc) {
	n := g.Node(root)
	world := parentWorld.Mul4(n.LocalMatrix())
	fn(root, n, world)
	for _, child := range n.children {
		g.WalkWorld(child, world, fn)
	}
}

// Descendants returns the handles below and including root in pre-order.
func (g *Graph) Descendants(root NodeID) []NodeID {
	var ids []NodeID
	g.Walk(root, func(id NodeID, _ *Node, _ int) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}
