// Package birch is a small hierarchical 3D scene renderer for [Ebitengine].
//
// Birch provides the transform math, a free-flying perspective camera, an
// arena scene graph with pivoted local transforms, time-driven animation
// tracks and a renderer that walks the graph depth-first and issues one
// indexed draw per drawable node through a [Device].
//
// # Quick start
//
// The simplest way to get started is [NewApp] and [Run], which build the
// helicopter scene and open a window:
//
//	cfg := birch.DefaultConfig()
//	app, err := birch.NewApp(cfg, birch.NewEbitenDevice())
//	if err != nil {
//		log.Fatal(err)
//	}
//	log.Fatal(birch.Run(app, cfg.RunConfig()))
//
// For headless use, drive the same App with [App.Frame] on a
// [CaptureDevice] and inspect the recorded draws.
//
// # Scene graph
//
// Nodes live in a [Graph] and are addressed by [NodeID]. Each node has a
// position, Euler rotation, scale and pivot; its world matrix is
// parent world × T(position) × T(pivot) × Rz × Rx × Ry × T(-pivot) × S(scale),
// composed during traversal and never cached.
//
//	g := birch.NewGraph()
//	root := g.NewGroup("root")
//	body := g.NewDrawable("body", drawable)
//	g.AddChild(root, body)
//	g.SetPivot(body, mgl32.Vec3{0.35, 2.3, 10.4})
//
// Structural mistakes (a second parent, a cycle, a stale handle) panic.
//
// # Key features
//
// Birch includes procedural terrain and helicopter meshes, path and spin
// tracks, 3D tweens (via [gween]), YAML configuration, rebindable keyboard
// controls and JSON input scripts for automated runs. Pressed actions can be
// forwarded to an ECS through [App.SetEntityStore]; the ecs subpackage
// provides a Donburi adapter.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package birch
