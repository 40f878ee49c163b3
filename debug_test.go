package birch

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

// captureStderr runs fn with os.Stderr redirected and returns what it wrote.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	oldStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stderr = w
	fn()
	w.Close()
	os.Stderr = oldStderr

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

// ---- Debug mode tests ------------------------------------------------------

func TestDebugMode_TreeDepthWarning(t *testing.T) {
	g := NewGraph()
	g.SetDebugMode(true)

	output := captureStderr(t, func() {
		// Build a chain deeper than debugMaxTreeDepth (32).
		current := g.NewGroup("root")
		for i := 0; i < debugMaxTreeDepth+5; i++ {
			child := g.NewGroup(fmt.Sprintf("depth_%d", i))
			g.AddChild(current, child)
			current = child
		}
	})

	if !strings.Contains(output, "warning: tree depth") {
		t.Errorf("expected tree depth warning in stderr, got: %q", output)
	}
}

func TestDebugMode_ChildCountWarning(t *testing.T) {
	g := NewGraph()
	g.SetDebugMode(true)

	output := captureStderr(t, func() {
		parent := g.NewGroup("many_children")
		for i := 0; i < debugMaxChildCount+1; i++ {
			g.AddChild(parent, g.NewGroup(fmt.Sprintf("c_%d", i)))
		}
	})

	if !strings.Contains(output, "warning: node") || !strings.Contains(output, "children") {
		t.Errorf("expected child count warning in stderr, got: %q", output)
	}
}

func TestDebugMode_OffIsSilent(t *testing.T) {
	g := NewGraph()
	output := captureStderr(t, func() {
		current := g.NewGroup("root")
		for i := 0; i < debugMaxTreeDepth+5; i++ {
			child := g.NewGroup("deep")
			g.AddChild(current, child)
			current = child
		}
	})
	if output != "" {
		t.Errorf("expected no output with debug off, got: %q", output)
	}
}

func TestDebugStats_AllFieldsPopulated(t *testing.T) {
	stats := debugStats{
		traverseTime: 2 * time.Millisecond,
		submitTime:   3 * time.Millisecond,
		nodeCount:    26,
		drawCount:    21,
	}
	output := captureStderr(t, func() { debugLog(stats) })
	for _, want := range []string{"[birch]", "traverse: 2ms", "submit: 3ms", "total: 5ms", "nodes: 26", "draw calls: 21"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q: %q", want, output)
		}
	}
}

func TestRendererDebugLogsFrame(t *testing.T) {
	hs, dev := buildTestScene(t, 1)
	r := NewRenderer(dev, hs.Program, hs.Graph(), hs.Root())
	r.SetDebugMode(true)
	var err error
	output := captureStderr(t, func() { err = r.Render(hs.Camera()) })
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(output, "draw calls: 5") {
		t.Errorf("expected frame stats, got: %q", output)
	}
}
