package birch

import (
	"fmt"
	"os"
	"time"
)

// debugStats holds per-frame timing and draw metrics.
// Only populated when the renderer's debug mode is on.
type debugStats struct {
	traverseTime time.Duration
	submitTime   time.Duration
	nodeCount    int
	drawCount    int
}

// debugLog prints timing and draw stats to stderr.
func debugLog(stats debugStats) {
	total := stats.traverseTime + stats.submitTime
	_, _ = fmt.Fprintf(os.Stderr,
		"[birch] traverse: %v | submit: %v | total: %v\n",
		stats.traverseTime, stats.submitTime, total)
	_, _ = fmt.Fprintf(os.Stderr,
		"[birch] nodes: %d | draw calls: %d\n",
		stats.nodeCount, stats.drawCount)
}

// SetDebugMode enables tree depth and child count warnings in AddChild.
func (g *Graph) SetDebugMode(enabled bool) {
	g.debug = enabled
}

// debugCheckTreeDepth warns on stderr if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(g *Graph, id NodeID) {
	depth := g.depth(id)
	if depth > debugMaxTreeDepth {
		_, _ = fmt.Fprintf(os.Stderr, "[birch] warning: tree depth %d exceeds %d (node %q)\n",
			depth, debugMaxTreeDepth, g.Node(id).Name)
	}
}

// debugCheckChildCount warns on stderr if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		_, _ = fmt.Fprintf(os.Stderr, "[birch] warning: node %q has %d children (threshold %d)\n",
			n.Name, len(n.children), debugMaxChildCount)
	}
}
