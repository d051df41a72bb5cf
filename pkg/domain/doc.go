/*
Package domain contains the core domain models for the canvas engine.

It defines the immutable object descriptors supplied by the registry, the
positioning primitives (positions, grid snapping, presets), activation
states, render snapshots, and the event types emitted to the host. This
package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - ObjectConfig: Registry descriptor for one layered object (ID, z-index, assets, cascade).
  - Position: Placement and size of an object, with optional grid snap.
  - ObjectSnapshot / CanvasSnapshot: Read-only views handed to the rendering layer.
  - Event / LifecycleHooks: Fire-and-forget notifications for hosts and telemetry.
*/
package domain
