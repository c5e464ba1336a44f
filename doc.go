// Package warpgate is a world-to-world transition engine for [Ebitengine]
// scenes: a camera glides toward a portal, the screen flashes white, the
// camera punches through a field of light streaks, and the destination world
// is committed once the warp ends.
//
// # Quick start
//
// The simplest way to get started is [surface.Run], which creates a window and
// game loop for you:
//
//	engine, err := warpgate.NewEngine(warpgate.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	surface.Run(engine, surface.RunConfig{Title: "Portals", Width: 960, Height: 540})
//
// For full control, call [Engine.Update] once per host frame and read
// [Engine.Frame], [Engine.Camera] and [Engine.Streaks] to draw.
//
// # Phases
//
// A transition runs idle → approach → flash → warp → idle. Each timed phase
// lasts a fixed [Durations] entry and its progress is measured against the
// engine [Clock], never against frame counts. Requests made while a
// transition is in flight are dropped. The [WorldStore] changes exactly once
// per transition, when warp finishes.
//
// # Configuration
//
// Every tunable lives in a YAML [Config]. [DefaultConfig] returns the
// embedded defaults; [LoadConfig] overlays a file on top of them and [Watcher]
// reloads it while the program runs.
//
// # Testing
//
// Pass a [ManualClock] with [WithClock] to step time by hand, or attach a
// JSON script with [Engine.SetTestRunner].
//
// [Ebitengine]: https://ebitengine.org
package warpgate
