package birch

import (
	"fmt"
	"os"
)

// Scene is the top-level object that owns the node graph, the root group,
// the camera, the animation tracks and the running tweens.
type Scene struct {
	graph    *Graph
	root     NodeID
	camera   *Camera
	animator Animator
	tweens   []*TweenGroup
	elapsed  float64
	debug    bool
}

// NewScene creates a new scene with a pre-created root group viewed by cam.
func NewScene(cam *Camera) *Scene {
	g := NewGraph()
	return &Scene{
		graph:  g,
		root:   g.NewGroup("root"),
		camera: cam,
	}
}

// Root returns the scene's root group.
func (s *Scene) Root() NodeID {
	return s.root
}

// Graph returns the node arena.
func (s *Scene) Graph() *Graph {
	return s.graph
}

// Camera returns the scene camera.
func (s *Scene) Camera() *Camera {
	return s.camera
}

// Animator returns the scene's track list.
func (s *Scene) Animator() *Animator {
	return &s.animator
}

// AddTween runs tw from the next Update until it is done.
func (s *Scene) AddTween(tw *TweenGroup) {
	s.tweens = append(s.tweens, tw)
}

// NumTweens returns the number of tweens still running.
func (s *Scene) NumTweens() int {
	return len(s.tweens)
}

// Elapsed returns the simulation time in seconds.
func (s *Scene) Elapsed() float64 {
	return s.elapsed
}

// SetDebugMode enables graph warnings on stderr.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	s.graph.SetDebugMode(enabled)
}

// Update advances simulation time by dt seconds, applies every track at the
// new time and steps the running tweens. Negative steps are ignored.
func (s *Scene) Update(dt float64) {
	if dt < 0 {
		dt = 0
	}
	s.elapsed += dt
	s.animator.Update(s.graph, s.elapsed)

	n := 0
	for _, tw := range s.tweens {
		tw.Update(float32(dt))
		if !tw.Done {
			s.tweens[n] = tw
			n++
		}
	}
	for i := n; i < len(s.tweens); i++ {
		s.tweens[i] = nil
	}
	if s.debug && n != len(s.tweens) {
		_, _ = fmt.Fprintf(os.Stderr, "[birch] %d tweens finished at t=%.3f\n", len(s.tweens)-n, s.elapsed)
	}
	s.tweens = s.tweens[:n]
}
