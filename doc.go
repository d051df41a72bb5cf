/*
Package canvas is an interaction and positioning engine for layered 2D scenes: a set of independently positioned objects stacked by z-index, with cascading activation behavior and freeform drag editing.

It separates the scene description (registry), the runtime state (activation, positions, history), and the I/O (asset fetching, event delivery). The host owns rendering and input devices; the engine owns every rule about what a click, a drag, or an activation does to the scene.

# Concept

Objects are declared once in a registry: id, z-index, asset paths, initial position, and an optional cascade ("activating this object activates those, staggered"). The engine loads assets through a bounded LRU cache, drives activation through timer-backed cascades, and commits position edits through a store with linear undo/redo and grid snapping. Every state change surfaces as an event for the rendering layer.

# Key Features

  - Bounded asset cache: strict LRU over loaded entries, deduplicated in-flight loads, per-path retryable failures.
  - Cascading activation: staggered delayed ripple on, synchronous ripple off, deterministic under a fake clock.
  - Position history: full-snapshot undo/redo, redo truncation on edit, named presets, reset to registry layout.
  - Drag editing: one live session, uncommitted preview, grid-snapped commit on release.
  - Hexagonal layout: registry, fetcher, and event sink are ports; file, memory, HTTP, Redis, and MCP adapters ship in pkg/adapters.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/oliver-os/canvas"
		"github.com/oliver-os/canvas/pkg/adapters/file"
	)

	func main() {
		loader, err := file.NewLoader("./scene/registry.yaml")
		if err != nil {
			log.Fatal(err)
		}

		eng, err := canvas.New(
			canvas.WithRegistry(loader),
			canvas.WithFetcher(file.NewFetcher("./scene/assets")),
		)
		if err != nil {
			log.Fatal(err)
		}
		defer eng.Close()

		ctx := context.Background()
		if err := eng.LoadRegistry(ctx); err != nil {
			log.Fatal(err)
		}
		if failed, err := eng.LoadAssets(ctx); err != nil {
			log.Fatal(err)
		} else if failed > 0 {
			log.Printf("%d assets failed to load", failed)
		}

		// Main loop: route input, then render the snapshot.
		if _, _, err := eng.Click(120, 80); err != nil {
			log.Fatal(err)
		}
		for _, obj := range eng.Snapshot().Objects {
			log.Printf("%s at (%g,%g) %s", obj.ID, obj.Position.X, obj.Position.Y, obj.Activation)
		}
	}
*/
package canvas
